package dbmanager

import (
	"context"
	"net"
	"net/url"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/clickhouse"
)

type ClickHouseDriver struct {
	logger *zap.Logger
}

func NewClickHouseDriver(logger *zap.Logger) DatabaseDriver {
	return &ClickHouseDriver{logger: logger.Named("clickhouse")}
}

func BuildClickHouseDSN(config ConnectionConfig) string {
	user, password := credentials(config)
	dsn := url.URL{
		Scheme:   "clickhouse",
		User:     url.UserPassword(user, password),
		Host:     net.JoinHostPort(config.Host, config.Port),
		Path:     "/" + config.Database,
		RawQuery: "dial_timeout=10s&max_execution_time=60",
	}
	return dsn.String()
}

func (d *ClickHouseDriver) Connect(ctx context.Context, config ConnectionConfig) (*Connection, error) {
	return openGorm(ctx, clickhouse.Open(BuildClickHouseDSN(config)), config, poolSettings{
		maxIdle:     5,
		maxOpen:     20,
		maxLifetime: time.Hour,
	}, d.logger)
}

func (d *ClickHouseDriver) Disconnect(conn *Connection) error {
	return closeGorm(conn)
}

func (d *ClickHouseDriver) Ping(ctx context.Context, conn *Connection) error {
	return pingGorm(ctx, conn)
}
