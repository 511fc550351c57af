package constants

import "time"

const (
	DatabaseTypeMySQL      = "mysql"
	DatabaseTypePostgreSQL = "postgresql"
	DatabaseTypeYugabyteDB = "yugabytedb"
	DatabaseTypeClickhouse = "clickhouse"
)

const DatabaseConnctionTTL = 10 * time.Minute // 10 minutes for database connection & schema

// GetDefaultPort returns the port used when a connect request omits one.
func GetDefaultPort(dbType string) string {
	switch dbType {
	case DatabaseTypePostgreSQL:
		return "5432"
	case DatabaseTypeYugabyteDB:
		return "5433"
	case DatabaseTypeClickhouse:
		return "9000"
	default:
		return "3306"
	}
}

// GetDialectName is the name the prompt uses for the database engine.
func GetDialectName(dbType string) string {
	switch dbType {
	case DatabaseTypePostgreSQL:
		return "PostgreSQL"
	case DatabaseTypeYugabyteDB:
		return "YugabyteDB (PostgreSQL-compatible)"
	case DatabaseTypeClickhouse:
		return "ClickHouse"
	default:
		return "MySQL"
	}
}
