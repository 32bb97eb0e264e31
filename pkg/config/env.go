package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DataBackendLocalStore = "localstore"
	DataBackendProxy      = "proxy"
	DataBackendDirect     = "direct"

	LocalStoreDriverBolt  = "bolt"
	LocalStoreDriverRedis = "redis"
)

const (
	EnvAppEnv   = "STOREFRONT_APP_ENV"
	EnvPort     = "STOREFRONT_APP_PORT"
	EnvLogLevel = "STOREFRONT_LOG_LEVEL"

	EnvDataBackend      = "STOREFRONT_DATA_BACKEND"
	EnvLocalStoreDriver = "STOREFRONT_LOCALSTORE_DRIVER"
	EnvBoltPath         = "STOREFRONT_BOLT_PATH"
	EnvProxyURL         = "STOREFRONT_PROXY_URL"

	EnvDBDSN  = "STOREFRONT_DB_DSN"
	EnvDBHost = "STOREFRONT_DB_HOST"
	EnvDBUser = "STOREFRONT_DB_USER"
	EnvDBName = "STOREFRONT_DB_NAME"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvUseSQLite     = "STOREFRONT_USE_SQLITE"
	EnvProxyEndpoint = "STOREFRONT_PROXY_ENDPOINT"

	EnvAdminUsername     = "STOREFRONT_ADMIN_USERNAME"
	EnvAdminPasswordHash = "STOREFRONT_ADMIN_PASSWORD_HASH"
	EnvJWTSecret         = "STOREFRONT_JWT_SECRET"

	EnvWhatsAppNumber = "STOREFRONT_WHATSAPP_NUMBER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
