package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names.
const EnvPrefix = "NILE"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv = "NILE_APP_ENV"
	EnvPort   = "NILE_APP_PORT"

	EnvDBDSN  = "NILE_DB_DSN"
	EnvDBHost = "NILE_DB_HOST"
	EnvDBUser = "NILE_DB_USER"
	EnvDBName = "NILE_DB_NAME"

	EnvRedisURL = "NILE_REDIS_URL"

	EnvJWTSecret  = "NILE_JWT_SECRET"
	EnvJWTIssuer  = "NILE_JWT_ISSUER"
	EnvJWTExpMins = "NILE_JWT_EXPIRATION_MINUTES"

	EnvMerchantBaseURL = "NILE_MERCHANT_API_BASE_URL"
	EnvOrderBaseURL    = "NILE_ORDER_API_BASE_URL"
	EnvUpstreamAPIKey  = "NILE_UPSTREAM_API_KEY"

	EnvRabbitURL   = "NILE_RABBITMQ_URL"
	EnvRabbitQueue = "NILE_RABBITMQ_QUEUE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
