package service

import (
	"context"
	"database/sql"
	"fmt"

	"healthpulse-engine/common/database"
	"healthpulse-engine/common/mqtt"
	rediscommon "healthpulse-engine/common/redis"
	"healthpulse-engine/internal/assistant"
	"healthpulse-engine/internal/config"
	"healthpulse-engine/internal/consumer"
	"healthpulse-engine/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// EngineService 评分引擎服务（整合各层）
type EngineService struct {
	config      *config.Config
	db          *sql.DB
	redisClient *redis.Client
	mqttClient  *mqtt.Client
	logger      *zap.Logger

	// 各层组件
	health          *HealthService
	readingConsumer *consumer.ReadingConsumer
}

// NewEngineService 创建评分引擎服务
func NewEngineService(cfg *config.Config, logger *zap.Logger) (*EngineService, error) {
	ctx := context.Background()

	// 1. 连接数据库
	db, err := database.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.Migrations.Enabled {
		if err := database.RunMigrations(&cfg.Database, cfg.Migrations.Dir); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("Database migrations applied", zap.String("dir", cfg.Migrations.Dir))
	}

	// 2. 连接 Redis
	redisClient := rediscommon.NewRedisClient(&cfg.Redis)
	if err := rediscommon.Ping(ctx, redisClient); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	// 3. 连接 MQTT（未配置 broker 时不推送）
	var (
		mqttClient *mqtt.Client
		notifier   Notifier = NopNotifier{}
	)
	if cfg.MQTT.Broker != "" {
		mqttClient, err = mqtt.NewClient(&cfg.MQTT, logger)
		if err != nil {
			db.Close()
			redisClient.Close()
			return nil, err
		}
		notifier = NewMQTTNotifier(
			mqttClient,
			cfg.MQTT.QoS,
			cfg.Engine.Topics.PatientScore,
			cfg.Engine.Topics.ProviderAlerts,
			logger,
		)
	}

	// 4. 创建 Repository / Cache 层
	store := repository.NewRecordStore(db, logger)
	cache := consumer.NewScoreCache(
		consumer.NewRedisKVStore(redisClient),
		cfg.Engine.Cache.ScoreTTL,
		cfg.Engine.Cache.LockTTL,
		logger,
	)
	publisher := consumer.NewReadingPublisher(redisClient, cfg.Engine.Stream.Name)

	assistantClient := assistant.NewClient(assistant.Config{
		APIKey:            cfg.Assistant.APIKey,
		BaseURL:           cfg.Assistant.BaseURL,
		Model:             cfg.Assistant.Model,
		Timeout:           cfg.Assistant.Timeout,
		RequestsPerMinute: cfg.Assistant.RequestsPerMinute,
		RetryCount:        2,
	}, logger)

	// 5. 创建 Service 层
	health := NewHealthService(store, cache, notifier, publisher, assistantClient, logger)

	// 6. 创建 ReadingConsumer
	readingConsumer := consumer.NewReadingConsumer(
		redisClient,
		health,
		logger,
		cfg.Engine.Stream.Name,
		cfg.Engine.Stream.Group,
		cfg.Engine.Stream.Consumer,
		cfg.Engine.Stream.BatchSize,
		cfg.Engine.Stream.BlockTimeout,
	)

	return &EngineService{
		config:          cfg,
		db:              db,
		redisClient:     redisClient,
		mqttClient:      mqttClient,
		logger:          logger,
		health:          health,
		readingConsumer: readingConsumer,
	}, nil
}

// Health 健康评分服务（供上层接口调用）
func (s *EngineService) Health() *HealthService {
	return s.health
}

// Start 启动服务，阻塞直到 ctx 取消
func (s *EngineService) Start(ctx context.Context) error {
	s.logger.Info("Starting healthpulse engine",
		zap.String("stream", s.config.Engine.Stream.Name),
		zap.Bool("mqtt_enabled", s.mqttClient != nil),
		zap.Bool("mqtt_connected", s.mqttClient != nil && s.mqttClient.IsConnected()),
	)

	if err := s.readingConsumer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start reading consumer: %w", err)
	}

	return nil
}

// Stop 停止服务
func (s *EngineService) Stop() error {
	s.logger.Info("Stopping healthpulse engine")

	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}

	// 关闭数据库连接
	if err := database.Close(s.db); err != nil {
		s.logger.Error("Failed to close database",
			zap.Error(err),
		)
	}

	// 关闭 Redis 连接
	if err := rediscommon.Close(s.redisClient); err != nil {
		s.logger.Error("Failed to close redis",
			zap.Error(err),
		)
	}

	return nil
}
