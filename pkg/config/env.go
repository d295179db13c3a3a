package config

// EnvPrefix is handed to envconfig; every field carries its full variable name.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverRedis    = "redis"
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv        = "STOREFRONT_APP_ENV"
	EnvPort          = "STOREFRONT_APP_PORT"
	EnvStorageDriver = "STOREFRONT_STORAGE_DRIVER"
	EnvRedisURL      = "STOREFRONT_REDIS_URL"
	EnvRedisAddr     = "STOREFRONT_REDIS_ADDR"
	EnvDBDSN         = "STOREFRONT_DB_DSN"
	EnvOrderAPIURL   = "STOREFRONT_ORDER_API_BASE_URL"
	EnvJWTSecret     = "STOREFRONT_JWT_SECRET"
	EnvCORSOrigins   = "STOREFRONT_CORS_ALLOWED_ORIGINS"
	EnvPaymentMethod = "STOREFRONT_CHECKOUT_PAYMENT_METHOD"
)
