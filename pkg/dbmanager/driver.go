package dbmanager

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DatabaseDriver interface that all database drivers must implement
type DatabaseDriver interface {
	Connect(ctx context.Context, config ConnectionConfig) (*Connection, error)
	Disconnect(conn *Connection) error
	Ping(ctx context.Context, conn *Connection) error
}

type poolSettings struct {
	maxIdle     int
	maxOpen     int
	maxLifetime time.Duration
}

// openGorm opens, configures and pings a gorm connection. The caller builds
// the dialector so that each driver keeps its own DSN format.
func openGorm(ctx context.Context, dialector gorm.Dialector, config ConnectionConfig, pool poolSettings, logger *zap.Logger) (*Connection, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Error("Driver -> Connect -> connection failed", zap.String("host", config.Host), zap.Error(err))
		return nil, fmt.Errorf("failed to connect to %s: %w", config.Type, err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(pool.maxIdle)
	sqlDB.SetMaxOpenConns(pool.maxOpen)
	sqlDB.SetConnMaxLifetime(pool.maxLifetime)

	// Test connection with ping
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		logger.Error("Driver -> Connect -> ping failed", zap.String("host", config.Host), zap.Error(err))
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	logger.Info("Driver -> Connect -> connection verified",
		zap.String("type", config.Type),
		zap.String("host", config.Host),
		zap.String("database", config.Database))

	return &Connection{
		DB:       db,
		LastUsed: time.Now(),
		Status:   StatusConnected,
		Config:   config,
	}, nil
}

func closeGorm(conn *Connection) error {
	if conn == nil || conn.DB == nil {
		return nil
	}
	sqlDB, err := conn.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func pingGorm(ctx context.Context, conn *Connection) error {
	sqlDB, err := conn.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func credentials(config ConnectionConfig) (string, string) {
	var user, password string
	if config.Username != nil {
		user = *config.Username
	}
	if config.Password != nil {
		password = *config.Password
	}
	return user, password
}
