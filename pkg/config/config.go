package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Sheets       SheetsConfig
	Attribution  AttributionConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHEETBRIDGE_APP_ENV" required:"true"`
	Port         string `envconfig:"SHEETBRIDGE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHEETBRIDGE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHEETBRIDGE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"SHEETBRIDGE_DB_DSN" required:"true"`

	MaxOpenConns    int           `envconfig:"SHEETBRIDGE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHEETBRIDGE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHEETBRIDGE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHEETBRIDGE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHEETBRIDGE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHEETBRIDGE_REDIS_ADDR"`
	Password     string        `envconfig:"SHEETBRIDGE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHEETBRIDGE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHEETBRIDGE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHEETBRIDGE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHEETBRIDGE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHEETBRIDGE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHEETBRIDGE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SheetsConfig struct {
	// ServiceAccountJSON holds the raw service-account credential blob
	// (issuer identity + signing key) pasted from the Google console.
	ServiceAccountJSON string        `envconfig:"SHEETBRIDGE_SHEETS_SERVICE_ACCOUNT_JSON"`
	TokenEndpoint      string        `envconfig:"SHEETBRIDGE_SHEETS_TOKEN_ENDPOINT"`
	APIEndpoint        string        `envconfig:"SHEETBRIDGE_SHEETS_API_ENDPOINT"`
	HTTPTimeout        time.Duration `envconfig:"SHEETBRIDGE_SHEETS_HTTP_TIMEOUT" default:"30s"`
	DefaultSheetName   string        `envconfig:"SHEETBRIDGE_SHEETS_DEFAULT_SHEET_NAME" default:"Sheet1"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHEETBRIDGE_AUTO_MIGRATE" default:"false"`
}

type AttributionConfig struct {
	DurableTTL    time.Duration `envconfig:"SHEETBRIDGE_ATTRIBUTION_DURABLE_TTL" default:"4320h"`
	SessionTTL    time.Duration `envconfig:"SHEETBRIDGE_ATTRIBUTION_SESSION_TTL" default:"24h"`
	CookieDomain  string        `envconfig:"SHEETBRIDGE_ATTRIBUTION_COOKIE_DOMAIN"`
	SecureCookies bool          `envconfig:"SHEETBRIDGE_ATTRIBUTION_SECURE_COOKIES" default:"false"`
}
