package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Worker   WorkerConfig
	Queues   map[string]int
	Recovery RecoveryConfig
	Cron     CronConfig
	Metrics  MetricsConfig
	Auth     AuthConfig
	LogLevel string
}

// ServerConfig describes the admin HTTP surface (internal/adminapi), not
// the task-dispatch main loop — that runs in-process and has no bind
// address of its own.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type WorkerConfig struct {
	Concurrency     int
	ShutdownTimeout time.Duration
}

type RecoveryConfig struct {
	TimeoutMs  int64
	CheckEvery time.Duration
}

type CronConfig struct {
	CheckEvery time.Duration
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

type AuthConfig struct {
	Enabled   bool
	JWTSecret string
	APIKeys   []string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/cppq")

	setDefaults()

	viper.SetEnvPrefix("CPPQ")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if len(cfg.Queues) == 0 {
		cfg.Queues = map[string]int{"default": 10}
	}

	return &cfg, nil
}

func setDefaults() {
	// Server (admin HTTP) defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8081)
	viper.SetDefault("server.readtimeout", 30*time.Second)
	viper.SetDefault("server.writetimeout", 30*time.Second)
	viper.SetDefault("server.idletimeout", 120*time.Second)

	// Redis defaults
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.poolsize", 100)
	viper.SetDefault("redis.minidleconns", 10)
	viper.SetDefault("redis.maxretries", 3)
	viper.SetDefault("redis.dialtimeout", 5*time.Second)
	viper.SetDefault("redis.readtimeout", 3*time.Second)
	viper.SetDefault("redis.writetimeout", 3*time.Second)

	// Worker defaults
	viper.SetDefault("worker.concurrency", 10)
	viper.SetDefault("worker.shutdowntimeout", 30*time.Second)

	// Queues: name -> priority. No flat default key works well through env
	// binding, so an empty map is backfilled with {"default": 10} after
	// Unmarshal (see Load).
	viper.SetDefault("queues", map[string]int{})

	// Recovery defaults
	viper.SetDefault("recovery.timeoutms", 30000)
	viper.SetDefault("recovery.checkevery", 10*time.Second)

	// Cron defaults
	viper.SetDefault("cron.checkevery", 5*time.Second)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")

	// Auth defaults
	viper.SetDefault("auth.enabled", false)
	viper.SetDefault("auth.jwtsecret", "")
	viper.SetDefault("auth.apikeys", []string{})

	// Logging defaults
	viper.SetDefault("loglevel", "info")
}
