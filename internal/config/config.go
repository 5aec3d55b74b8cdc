package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	// DefaultResultTTL is how long the property listing query result is cached.
	DefaultResultTTL = time.Hour
	// DefaultResponseTTL is how long a rendered listing response is cached.
	DefaultResponseTTL = 15 * time.Minute
)

type Config struct {
	Server struct {
		Port    int    `mapstructure:"port"`
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`
	LogLevel string `mapstructure:"log_level"`
	Metrics  struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Store struct {
		Provider string `mapstructure:"provider"` // "postgres" or "memory"
		DSN      string `mapstructure:"dsn"`
	} `mapstructure:"store"`
	Cache struct {
		Provider       string `mapstructure:"provider"` // "redis" or "memory"
		Size           int    `mapstructure:"size"`     // Maximum number of entries for the memory provider
		MaxTTL         string `mapstructure:"max_ttl"`  // Go duration string like "1h", "24h", etc.
		Group          string `mapstructure:"group"`
		KeyPrefix      string `mapstructure:"key_prefix"`
		ResultTTL      string `mapstructure:"result_ttl"`
		ResponseTTL    string `mapstructure:"response_ttl"`
		CoalesceMisses bool   `mapstructure:"coalesce_misses"`
		Redis          struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
		Breaker struct {
			FailureThreshold uint   `mapstructure:"failure_threshold"`
			Delay            string `mapstructure:"delay"`
		} `mapstructure:"breaker"`
	} `mapstructure:"cache"`
	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
	Tracing struct {
		Enabled    bool    `mapstructure:"enabled"`
		Endpoint   string  `mapstructure:"endpoint"`
		SampleRate float64 `mapstructure:"sample_rate"`
	} `mapstructure:"tracing"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	// Parse and set log level from config
	level := zerolog.InfoLevel // default
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Debug().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Add specific environment variable for log level
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("store.provider", "postgres")
	v.SetDefault("store.dsn", "")
	v.SetDefault("cache.provider", "redis")
	v.SetDefault("cache.size", 1000)
	v.SetDefault("cache.max_ttl", "24h")
	v.SetDefault("cache.group", "default")
	v.SetDefault("cache.key_prefix", "plcache:")
	v.SetDefault("cache.result_ttl", DefaultResultTTL.String())
	v.SetDefault("cache.response_ttl", DefaultResponseTTL.String())
	v.SetDefault("cache.coalesce_misses", false)
	v.SetDefault("cache.redis.address", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 1)
	v.SetDefault("cache.breaker.failure_threshold", 5)
	v.SetDefault("cache.breaker.delay", "10s")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.sample_rate", 1.0)
}

// ParseDuration parses a Go duration string, logging and falling back to def
// when the value is empty or invalid.
func ParseDuration(field, value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logger.Warn().Err(err).Str("field", field).Str("value", value).Dur("default", def).Msg("Invalid duration, using default")
		return def
	}
	return d
}

func GetConfig() *Config {
	return globalConfig
}

func GetLogger() zerolog.Logger {
	return logger
}
