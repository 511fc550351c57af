package dbmanager

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
)

// PostgresDriver serves PostgreSQL and YugabyteDB.
type PostgresDriver struct {
	logger *zap.Logger
}

func NewPostgresDriver(logger *zap.Logger) DatabaseDriver {
	return &PostgresDriver{logger: logger.Named("postgresql")}
}

func BuildPostgresDSN(config ConnectionConfig) string {
	user, password := credentials(config)
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable connect_timeout=10",
		config.Host, config.Port, user, password, config.Database)
}

func (d *PostgresDriver) Connect(ctx context.Context, config ConnectionConfig) (*Connection, error) {
	return openGorm(ctx, postgres.Open(BuildPostgresDSN(config)), config, poolSettings{
		maxIdle:     10,
		maxOpen:     50,
		maxLifetime: time.Hour,
	}, d.logger)
}

func (d *PostgresDriver) Disconnect(conn *Connection) error {
	return closeGorm(conn)
}

func (d *PostgresDriver) Ping(ctx context.Context, conn *Connection) error {
	return pingGorm(ctx, conn)
}
