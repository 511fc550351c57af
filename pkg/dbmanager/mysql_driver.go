package dbmanager

import (
	"context"
	"net"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
)

type MySQLDriver struct {
	logger *zap.Logger
}

func NewMySQLDriver(logger *zap.Logger) DatabaseDriver {
	return &MySQLDriver{logger: logger.Named("mysql")}
}

// BuildMySQLDSN renders the go-sql-driver DSN for a connect request.
func BuildMySQLDSN(config ConnectionConfig) string {
	user, password := credentials(config)

	cfg := mysqldriver.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(config.Host, config.Port)
	cfg.DBName = config.Database
	cfg.ParseTime = true
	cfg.Timeout = 10 * time.Second
	return cfg.FormatDSN()
}

func (d *MySQLDriver) Connect(ctx context.Context, config ConnectionConfig) (*Connection, error) {
	return openGorm(ctx, mysql.Open(BuildMySQLDSN(config)), config, poolSettings{
		maxIdle:     5,
		maxOpen:     20,
		maxLifetime: time.Hour,
	}, d.logger)
}

func (d *MySQLDriver) Disconnect(conn *Connection) error {
	return closeGorm(conn)
}

func (d *MySQLDriver) Ping(ctx context.Context, conn *Connection) error {
	return pingGorm(ctx, conn)
}
