package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"healthpulse-engine/common/config"
)

// Config 评分引擎服务配置
type Config struct {
	Database config.DatabaseConfig
	Redis    config.RedisConfig
	MQTT     config.MQTTConfig

	// 评分引擎特定配置
	Engine struct {
		// 读数事件流（Redis Streams）
		Stream struct {
			Name         string        // 读数事件流名称，如 "healthpulse:readings"
			Group        string        // 消费者组
			Consumer     string        // 消费者名称（多实例时需要唯一）
			BatchSize    int64         // 每次读取消息数
			BlockTimeout time.Duration // XREADGROUP 阻塞时间
		}

		// Redis 缓存配置
		Cache struct {
			ScoreTTL time.Duration // 最新评分缓存 TTL
			LockTTL  time.Duration // 患者评分锁 TTL
		}

		// MQTT 推送主题
		Topics struct {
			PatientScore   string // 如 "healthpulse/patient/%s/score"
			ProviderAlerts string // 如 "healthpulse/provider/%s/alerts"
		}
	}

	Assistant struct {
		APIKey            string
		BaseURL           string
		Model             string
		Timeout           time.Duration
		RequestsPerMinute int
	}

	Migrations struct {
		Enabled bool
		Dir     string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	// 默认值
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "healthpulse"
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxConns = 20
	cfg.Database.MaxIdle = 5
	cfg.Database.LoadFromEnv("DB")

	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "healthpulse-engine"
	cfg.MQTT.QoS = 1
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.Engine.Stream.Name = getEnv("READING_STREAM", "healthpulse:readings")
	cfg.Engine.Stream.Group = getEnv("READING_GROUP", "healthpulse-engine")
	cfg.Engine.Stream.Consumer = getEnv("READING_CONSUMER", defaultConsumerName())
	cfg.Engine.Stream.BatchSize = int64(getEnvInt("READING_BATCH_SIZE", 10))
	cfg.Engine.Stream.BlockTimeout = getEnvDuration("READING_BLOCK_TIMEOUT", 5*time.Second)

	cfg.Engine.Cache.ScoreTTL = getEnvDuration("CACHE_SCORE_TTL", 10*time.Minute)
	cfg.Engine.Cache.LockTTL = getEnvDuration("CACHE_LOCK_TTL", 30*time.Second)

	cfg.Engine.Topics.PatientScore = getEnv("MQTT_TOPIC_PATIENT_SCORE", "healthpulse/patient/%s/score")
	cfg.Engine.Topics.ProviderAlerts = getEnv("MQTT_TOPIC_PROVIDER_ALERTS", "healthpulse/provider/%s/alerts")

	cfg.Assistant.APIKey = getEnv("GEMINI_API_KEY", "")
	cfg.Assistant.BaseURL = getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")
	cfg.Assistant.Model = getEnv("GEMINI_MODEL", "gemini-pro")
	cfg.Assistant.Timeout = getEnvDuration("GEMINI_TIMEOUT", 30*time.Second)
	cfg.Assistant.RequestsPerMinute = getEnvInt("GEMINI_RPM", 60)

	cfg.Migrations.Enabled = getEnv("MIGRATIONS_ENABLED", "true") == "true"
	cfg.Migrations.Dir = getEnv("MIGRATIONS_DIR", "migrations")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Engine.Stream.Name == "" || c.Engine.Stream.Group == "" {
		return fmt.Errorf("reading stream name and group are required")
	}
	if c.Engine.Stream.BatchSize <= 0 {
		return fmt.Errorf("reading batch size must be positive, got %d", c.Engine.Stream.BatchSize)
	}
	if c.Engine.Cache.LockTTL <= 0 {
		return fmt.Errorf("scoring lock ttl must be positive")
	}
	if c.Assistant.RequestsPerMinute <= 0 {
		return fmt.Errorf("assistant requests per minute must be positive")
	}
	return nil
}

func defaultConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "healthpulse-engine-1"
	}
	return "healthpulse-engine-" + host
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}

// getEnvDuration 支持 "30s" / "5m" 等格式
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
