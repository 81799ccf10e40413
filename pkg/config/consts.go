package config

// EnvPrefix is passed to envconfig; variables are matched by their explicit
// envconfig tags below, so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv     = "GILDEDLANE_APP_ENV"
	EnvPort       = "GILDEDLANE_APP_PORT"
	EnvDBDSN      = "GILDEDLANE_DB_DSN"
	EnvDBHost     = "GILDEDLANE_DB_HOST"
	EnvDBUser     = "GILDEDLANE_DB_USER"
	EnvDBName     = "GILDEDLANE_DB_NAME"
	EnvRedisURL   = "GILDEDLANE_REDIS_URL"
	EnvJWTSecret  = "GILDEDLANE_JWT_SECRET"
	EnvJWTIssuer  = "GILDEDLANE_JWT_ISSUER"
	EnvJWTExpMins = "GILDEDLANE_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
