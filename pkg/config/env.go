package config

const EnvPrefix = "DIMENSIONALZ"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "DIMENSIONALZ_APP_ENV"
	EnvPort     = "DIMENSIONALZ_APP_PORT"
	EnvLogLevel = "DIMENSIONALZ_LOG_LEVEL"

	EnvDBDSN  = "DIMENSIONALZ_DB_DSN"
	EnvDBHost = "DIMENSIONALZ_DB_HOST"
	EnvDBUser = "DIMENSIONALZ_DB_USER"
	EnvDBName = "DIMENSIONALZ_DB_NAME"

	EnvRedisURL = "DIMENSIONALZ_REDIS_URL"

	EnvJWTSecret = "DIMENSIONALZ_JWT_SECRET"
	EnvJWTIssuer = "DIMENSIONALZ_JWT_ISSUER"

	EnvCheckoutSessionTimeout = "DIMENSIONALZ_CHECKOUT_SESSION_TIMEOUT"
	EnvCheckoutPortalTTL      = "DIMENSIONALZ_CHECKOUT_PORTAL_TTL"
	EnvCheckoutPaymentTTL     = "DIMENSIONALZ_CHECKOUT_PAYMENT_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
