package config

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Search  SearchConfig
	Breaker BreakerConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type DBConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	TimeZone       string
	MigrationsPath string
	AutoMigrate    bool
}

type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	StatusTTL time.Duration
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// SearchConfig tunes the branch search and recommendation engine
type SearchConfig struct {
	DefaultMaxResults      int
	MaxWorkers             int
	BranchTimeout          time.Duration
	Timeout                time.Duration
	ConflictTolerance      time.Duration
	EmptyScheduleAvailable bool
	ConflictFailOpen       bool
}

type BreakerConfig struct {
	FailureThreshold uint32
	Interval         time.Duration
	OpenTimeout      time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// A missing .env is fine when everything comes from the environment
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isNotExist(err) {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Port:     viper.GetString("APP_PORT"),
			Env:      viper.GetString("APP_ENV"),
			LogLevel: viper.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			Host:           viper.GetString("DB_HOST"),
			Port:           viper.GetString("DB_PORT"),
			User:           viper.GetString("DB_USER"),
			Password:       viper.GetString("DB_PASSWORD"),
			Name:           viper.GetString("DB_NAME"),
			TimeZone:       viper.GetString("DB_TIMEZONE"),
			MigrationsPath: viper.GetString("DB_MIGRATIONS_PATH"),
			AutoMigrate:    viper.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:      viper.GetString("REDIS_HOST"),
			Port:      viper.GetString("REDIS_PORT"),
			Password:  viper.GetString("REDIS_PASSWORD"),
			DB:        viper.GetInt("REDIS_DB"),
			StatusTTL: durationOr("REDIS_STATUS_TTL", 0),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: durationOr("JWT_ACCESS_EXPIRY", 15*time.Minute),
		},
		Search: SearchConfig{
			DefaultMaxResults:      viper.GetInt("SEARCH_DEFAULT_MAX_RESULTS"),
			MaxWorkers:             viper.GetInt("SEARCH_MAX_WORKERS"),
			BranchTimeout:          durationOr("SEARCH_BRANCH_TIMEOUT", 3*time.Second),
			Timeout:                durationOr("SEARCH_TIMEOUT", 10*time.Second),
			ConflictTolerance:      time.Duration(viper.GetInt("SEARCH_CONFLICT_TOLERANCE_MINUTES")) * time.Minute,
			EmptyScheduleAvailable: viper.GetBool("SEARCH_EMPTY_SCHEDULE_AVAILABLE"),
			ConflictFailOpen:       viper.GetBool("SEARCH_CONFLICT_FAIL_OPEN"),
		},
		Breaker: BreakerConfig{
			FailureThreshold: viper.GetUint32("BREAKER_FAILURE_THRESHOLD"),
			Interval:         durationOr("BREAKER_INTERVAL", time.Minute),
			OpenTimeout:      durationOr("BREAKER_OPEN_TIMEOUT", 30*time.Second),
		},
	}

	return config, nil
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_TIMEZONE", "Asia/Manila")
	viper.SetDefault("DB_MIGRATIONS_PATH", "migrations")
	viper.SetDefault("DB_AUTO_MIGRATE", false)
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SEARCH_DEFAULT_MAX_RESULTS", 5)
	viper.SetDefault("SEARCH_MAX_WORKERS", 8)
	viper.SetDefault("SEARCH_CONFLICT_TOLERANCE_MINUTES", 30)
	viper.SetDefault("SEARCH_EMPTY_SCHEDULE_AVAILABLE", true)
	viper.SetDefault("SEARCH_CONFLICT_FAIL_OPEN", true)
	viper.SetDefault("BREAKER_FAILURE_THRESHOLD", 5)
}

func durationOr(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
