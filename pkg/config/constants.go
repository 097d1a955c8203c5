package config

const (
	EnvPrefix = "SHEETBRIDGE"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv   = "SHEETBRIDGE_APP_ENV"
	EnvPort     = "SHEETBRIDGE_APP_PORT"
	EnvDBDSN    = "SHEETBRIDGE_DB_DSN"
	EnvRedisURL = "SHEETBRIDGE_REDIS_URL"
)
