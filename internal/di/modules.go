package di

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"query-genie/config"
	"query-genie/internal/apis/handlers"
	"query-genie/internal/constants"
	"query-genie/internal/observability"
	"query-genie/internal/services"
	"query-genie/internal/utils"
	"query-genie/pkg/dbmanager"
	"query-genie/pkg/llm"
	"query-genie/pkg/redis"
)

var DiContainer *dig.Container

func Initialize(logger *zap.Logger) {
	DiContainer = dig.New()

	if err := DiContainer.Provide(func() *zap.Logger { return logger }); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}

	// Redis backs the schema cache and connection state. Without a host the
	// same repository contract is served from memory.
	var redisRepo redis.IRedisRepositories
	if config.Env.RedisHost != "" {
		redisClient, err := redis.RedisClient(config.Env.RedisHost, config.Env.RedisPort, config.Env.RedisUsername, config.Env.RedisPassword, logger)
		if err != nil {
			log.Fatalf("Failed to initialize Redis client: %v", err)
		}
		redisRepo = redis.NewRedisRepositories(redisClient)
	} else {
		logger.Info("REDIS_HOST not set, keeping schema cache in process")
		redisRepo = redis.NewMemoryRepositories()
	}

	if err := DiContainer.Provide(func() redis.IRedisRepositories { return redisRepo }); err != nil {
		log.Fatalf("Failed to provide Redis repositories: %v", err)
	}

	if err := DiContainer.Provide(func() utils.JWTService {
		return utils.NewJWTService(config.Env.JWTSecret, config.Env.SessionTTL)
	}); err != nil {
		log.Fatalf("Failed to provide JWT service: %v", err)
	}

	// Provide DB Manager
	if err := DiContainer.Provide(func(redisRepo redis.IRedisRepositories, logger *zap.Logger) *dbmanager.Manager {
		manager := dbmanager.NewManager(redisRepo, dbmanager.ManagerConfig{
			IdleTimeout:     config.Env.DBIdleTimeout,
			CleanupInterval: config.Env.DBCleanupInterval,
			SchemaCacheTTL:  config.Env.SchemaCacheTTL,
		}, logger)
		// Register database drivers
		manager.RegisterDriver(constants.DatabaseTypeMySQL, dbmanager.NewMySQLDriver(logger))
		manager.RegisterDriver(constants.DatabaseTypePostgreSQL, dbmanager.NewPostgresDriver(logger))
		manager.RegisterDriver(constants.DatabaseTypeYugabyteDB, dbmanager.NewPostgresDriver(logger)) // Use same driver for both
		manager.RegisterDriver(constants.DatabaseTypeClickhouse, dbmanager.NewClickHouseDriver(logger))

		if err := observability.RegisterActiveSessions(prometheus.DefaultRegisterer, manager.ActiveConnections); err != nil {
			logger.Warn("Failed to register active sessions gauge", zap.Error(err))
		}
		return manager
	}); err != nil {
		log.Fatalf("Failed to provide DB manager: %v", err)
	}

	// Add LLM Manager
	if err := DiContainer.Provide(func(logger *zap.Logger) *llm.Manager {
		manager := llm.NewManager(logger)
		err := manager.RegisterClient(config.Env.LLMProvider, llm.Config{
			Provider:    config.Env.LLMProvider,
			Model:       config.Env.LLMModel,
			APIKey:      config.Env.LLMAPIKey(),
			BaseURL:     config.Env.LLMBaseURL(),
			MaxTokens:   config.Env.LLMMaxTokens,
			Temperature: constants.LLMTemperature,
			Timeout:     config.Env.LLMTimeout,
		})
		if err != nil {
			log.Fatalf("Failed to register %s client: %v", config.Env.LLMProvider, err)
		}
		return manager
	}); err != nil {
		log.Fatalf("Failed to provide LLM manager: %v", err)
	}

	if err := DiContainer.Provide(func(llmManager *llm.Manager, logger *zap.Logger) (*llm.SQLGenerator, error) {
		client, err := llmManager.GetClient(config.Env.LLMProvider)
		if err != nil {
			return nil, err
		}
		return llm.NewSQLGenerator(client, logger), nil
	}); err != nil {
		log.Fatalf("Failed to provide SQL generator: %v", err)
	}

	if err := DiContainer.Provide(services.NewSessionStore); err != nil {
		log.Fatalf("Failed to provide session store: %v", err)
	}

	// Provide services
	if err := DiContainer.Provide(func(
		dbManager *dbmanager.Manager,
		generator *llm.SQLGenerator,
		jwtService utils.JWTService,
		sessions *services.SessionStore,
		logger *zap.Logger,
	) services.QueryService {
		return services.NewQueryService(dbManager, generator, jwtService, sessions, config.Env.DefaultDBType, logger)
	}); err != nil {
		log.Fatalf("Failed to provide query service: %v", err)
	}

	// Provide handlers
	if err := DiContainer.Provide(func(queryService services.QueryService) *handlers.QueryHandler {
		return handlers.NewQueryHandler(queryService)
	}); err != nil {
		log.Fatalf("Failed to provide query handler: %v", err)
	}
}

// GetQueryHandler retrieves the QueryHandler from the DI container
func GetQueryHandler() (*handlers.QueryHandler, error) {
	var handler *handlers.QueryHandler
	err := DiContainer.Invoke(func(h *handlers.QueryHandler) {
		handler = h
	})
	if err != nil {
		return nil, err
	}
	return handler, nil
}

func GetJWTService() (utils.JWTService, error) {
	var service utils.JWTService
	err := DiContainer.Invoke(func(s utils.JWTService) {
		service = s
	})
	return service, err
}

// GetDBManager is used on shutdown to close every open connection.
func GetDBManager() (*dbmanager.Manager, error) {
	var manager *dbmanager.Manager
	err := DiContainer.Invoke(func(m *dbmanager.Manager) {
		manager = m
	})
	return manager, err
}
