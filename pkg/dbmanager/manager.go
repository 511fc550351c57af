package dbmanager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"query-genie/pkg/redis"
)

const (
	defaultCleanupInterval = 2 * time.Minute  // Check every 2 minutes
	defaultIdleTimeout     = 10 * time.Minute // Close after 10 minutes of inactivity
	connKeyPrefix          = "conn:"
)

// ManagerConfig tunes idle handling. Zero values fall back to defaults.
type ManagerConfig struct {
	IdleTimeout     time.Duration
	CleanupInterval time.Duration
	SchemaCacheTTL  time.Duration
}

// Manager owns one database connection per session.
type Manager struct {
	connections     map[string]*Connection    // sessionID -> connection
	drivers         map[string]DatabaseDriver // type -> driver
	listeners       []ConnectionListener
	mu              sync.RWMutex
	redisRepo       redis.IRedisRepositories
	schemas         *SchemaStorageService
	idleTimeout     time.Duration
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	logger          *zap.Logger
}

// NewManager creates a new connection manager and starts its idle cleanup.
func NewManager(redisRepo redis.IRedisRepositories, cfg ManagerConfig, logger *zap.Logger) *Manager {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaultCleanupInterval
	}

	m := &Manager{
		connections:     make(map[string]*Connection),
		drivers:         make(map[string]DatabaseDriver),
		redisRepo:       redisRepo,
		schemas:         NewSchemaStorageService(redisRepo, cfg.SchemaCacheTTL),
		idleTimeout:     cfg.IdleTimeout,
		cleanupInterval: cfg.CleanupInterval,
		stopCleanup:     make(chan struct{}),
		logger:          logger.Named("dbmanager"),
	}

	m.clearStaleState()

	// Start cleanup routine
	go m.startCleanupRoutine()
	return m
}

// RegisterDriver registers a new database driver
func (m *Manager) RegisterDriver(dbType string, driver DatabaseDriver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[dbType] = driver
}

// Connect opens a connection for the session. An existing connection for the
// same session is replaced and closed.
func (m *Manager) Connect(ctx context.Context, sessionID string, config ConnectionConfig) error {
	m.mu.RLock()
	driver, exists := m.drivers[config.Type]
	m.mu.RUnlock()
	if !exists {
		return fmt.Errorf("unsupported database type: %s", config.Type)
	}

	// Dial outside the lock.
	conn, err := driver.Connect(ctx, config)
	if err != nil {
		return err
	}
	conn.SessionID = sessionID
	conn.LastUsed = time.Now()

	m.mu.Lock()
	previous := m.connections[sessionID]
	m.connections[sessionID] = conn
	m.mu.Unlock()

	if previous != nil {
		m.closeConnection(sessionID, previous, "replaced by new connection")
	}

	if err := m.schemas.Invalidate(ctx, sessionID); err != nil {
		m.logger.Warn("Manager -> Connect -> failed to invalidate schema cache", zap.Error(err))
	}
	m.cacheConnectionState(ctx, sessionID)

	m.logger.Info("Manager -> Connect -> session connected",
		zap.String("session_id", sessionID),
		zap.String("type", config.Type),
		zap.String("database", config.Database))
	return nil
}

// Disconnect closes the session's database connection
func (m *Manager) Disconnect(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	conn, exists := m.connections[sessionID]
	delete(m.connections, sessionID)
	m.mu.Unlock()

	if !exists {
		return ErrConnectionNotFound
	}

	m.closeConnection(sessionID, conn, "closed by user")
	if err := m.schemas.Invalidate(ctx, sessionID); err != nil {
		m.logger.Warn("Manager -> Disconnect -> failed to invalidate schema cache", zap.Error(err))
	}
	m.notifyListeners(sessionID, StatusDisconnected, "Connection closed by user")
	return nil
}

// Subscribe registers a listener for disconnections, including the ones made
// by the idle cleanup. Listeners run outside the manager's lock.
func (m *Manager) Subscribe(listener ConnectionListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, listener)
}

func (m *Manager) notifyListeners(sessionID string, status ConnectionStatus, reason string) {
	m.mu.RLock()
	listeners := make([]ConnectionListener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()

	for _, listener := range listeners {
		listener(sessionID, status, reason)
	}
}

// GetExecutor returns the session's database capability.
func (m *Manager) GetExecutor(sessionID string) (Executor, error) {
	m.mu.RLock()
	conn, exists := m.connections[sessionID]
	var status ConnectionStatus
	var dbType string
	if exists {
		status = conn.Status
		dbType = conn.Config.Type
	}
	m.mu.RUnlock()

	if !exists {
		return nil, ErrConnectionNotFound
	}
	if status != StatusConnected {
		return nil, fmt.Errorf("connection is not active")
	}

	sqlDB, err := conn.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}

	if err := m.UpdateLastUsed(sessionID); err != nil {
		return nil, err
	}
	return NewSQLExecutor(sqlDB, dbType, sessionID, m, m.schemas, m.logger), nil
}

// IsConnected reports whether the session has an active connection.
func (m *Manager) IsConnected(sessionID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conn, exists := m.connections[sessionID]
	return exists && conn.Status == StatusConnected
}

// ActiveConnections returns the number of open session connections.
func (m *Manager) ActiveConnections() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// UpdateLastUsed updates the last used timestamp for a connection
func (m *Manager) UpdateLastUsed(sessionID string) error {
	m.mu.Lock()
	conn, exists := m.connections[sessionID]
	if exists {
		conn.LastUsed = time.Now()
	}
	m.mu.Unlock()

	if !exists {
		return ErrConnectionNotFound
	}

	// Refresh Redis TTL
	if err := m.redisRepo.Expire(connKeyPrefix+sessionID, m.idleTimeout, context.Background()); err != nil {
		m.logger.Debug("Manager -> UpdateLastUsed -> failed to refresh connection TTL", zap.Error(err))
	}
	return nil
}

// startCleanupRoutine periodically checks for and closes inactive connections
func (m *Manager) startCleanupRoutine() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup(time.Now())
		case <-m.stopCleanup:
			return
		}
	}
}

// cleanup closes connections idle for longer than the idle timeout.
func (m *Manager) cleanup(now time.Time) {
	idle := make(map[string]*Connection)

	m.mu.Lock()
	for sessionID, conn := range m.connections {
		if now.Sub(conn.LastUsed) > m.idleTimeout {
			idle[sessionID] = conn
			delete(m.connections, sessionID)
		}
	}
	m.mu.Unlock()

	for sessionID, conn := range idle {
		m.logger.Info("Manager -> cleanup -> closing idle connection",
			zap.String("session_id", sessionID),
			zap.Time("last_used", conn.LastUsed))
		m.closeConnection(sessionID, conn, "closed due to inactivity")
		if err := m.schemas.Invalidate(context.Background(), sessionID); err != nil {
			m.logger.Warn("Manager -> cleanup -> failed to invalidate schema cache", zap.Error(err))
		}
		m.notifyListeners(sessionID, StatusDisconnected, "Connection closed due to inactivity")
	}
}

// Stop gracefully stops the manager and closes every connection.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCleanup)
	})

	m.mu.Lock()
	connections := m.connections
	m.connections = make(map[string]*Connection)
	m.mu.Unlock()

	for sessionID, conn := range connections {
		m.closeConnection(sessionID, conn, "manager stopped")
	}
}

func (m *Manager) closeConnection(sessionID string, conn *Connection, reason string) {
	m.mu.Lock()
	driver, exists := m.drivers[conn.Config.Type]
	conn.Status = StatusDisconnected
	m.mu.Unlock()

	if exists {
		if err := driver.Disconnect(conn); err != nil {
			m.logger.Error("Manager -> closeConnection -> failed to disconnect",
				zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	if err := m.redisRepo.Del(connKeyPrefix+sessionID, context.Background()); err != nil {
		m.logger.Warn("Manager -> closeConnection -> failed to remove connection state from cache", zap.Error(err))
	}

	m.logger.Info("Manager -> closeConnection -> connection closed",
		zap.String("session_id", sessionID),
		zap.String("reason", reason))
}

func (m *Manager) cacheConnectionState(ctx context.Context, sessionID string) {
	if err := m.redisRepo.Set(connKeyPrefix+sessionID, []byte(StatusConnected), m.idleTimeout, ctx); err != nil {
		m.logger.Warn("Manager -> failed to cache connection state", zap.Error(err))
	}
}

// clearStaleState removes connection keys left by a previous process; the
// connections they describe no longer exist.
func (m *Manager) clearStaleState() {
	ctx := context.Background()
	keys, err := m.redisRepo.ScanKeys(connKeyPrefix+"*", ctx)
	if err != nil {
		m.logger.Warn("Manager -> clearStaleState -> scan failed", zap.Error(err))
		return
	}
	for _, key := range keys {
		if err := m.redisRepo.Del(key, ctx); err != nil {
			m.logger.Warn("Manager -> clearStaleState -> delete failed", zap.String("key", key), zap.Error(err))
		}
	}
	if len(keys) > 0 {
		m.logger.Info("Manager -> clearStaleState -> removed stale connection keys", zap.Int("count", len(keys)))
	}
}
