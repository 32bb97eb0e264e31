package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Data         DataConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Admin        AdminConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Checkout     CheckoutConfig
	Cart         CartConfig
	Media        MediaConfig
	Housekeeping HousekeepingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Data.validate(); err != nil {
		return nil, err
	}
	if cfg.NeedsDB() && !cfg.FeatureFlags.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// NeedsDB reports whether a SQL connection must be opened: either the
// direct backend is selected or this process serves the proxy endpoint.
func (c Config) NeedsDB() bool {
	return c.Data.Backend == DataBackendDirect || c.FeatureFlags.ProxyEndpoint
}

// NeedsRedis reports whether a Redis connection must be opened.
func (c Config) NeedsRedis() bool {
	if c.Redis.URL == "" && c.Redis.Address == "" {
		return false
	}
	return true
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`

	CORSOrigins     []string      `envconfig:"STOREFRONT_CORS_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `envconfig:"STOREFRONT_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DataConfig selects the backend behind the products and customers
// repositories. It is read once at boot.
type DataConfig struct {
	Backend           string        `envconfig:"STOREFRONT_DATA_BACKEND" default:"localstore"`
	LocalStoreDriver  string        `envconfig:"STOREFRONT_LOCALSTORE_DRIVER" default:"bolt"`
	BoltPath          string        `envconfig:"STOREFRONT_BOLT_PATH" default:"storefront.db"`
	ProxyURL          string        `envconfig:"STOREFRONT_PROXY_URL"`
	ProxyTimeout      time.Duration `envconfig:"STOREFRONT_PROXY_TIMEOUT" default:"10s"`
	ProxyEndpointPath string        `envconfig:"STOREFRONT_PROXY_ENDPOINT_PATH" default:"/api/data-proxy"`
}

func (d *DataConfig) validate() error {
	d.Backend = strings.ToLower(strings.TrimSpace(d.Backend))
	d.LocalStoreDriver = strings.ToLower(strings.TrimSpace(d.LocalStoreDriver))

	switch d.Backend {
	case DataBackendLocalStore:
		switch d.LocalStoreDriver {
		case LocalStoreDriverBolt:
			if strings.TrimSpace(d.BoltPath) == "" {
				return fmt.Errorf("%s is required for the bolt driver", EnvBoltPath)
			}
		case LocalStoreDriverRedis:
		default:
			return fmt.Errorf("unsupported %s %q", EnvLocalStoreDriver, d.LocalStoreDriver)
		}
	case DataBackendProxy:
		if strings.TrimSpace(d.ProxyURL) == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvProxyURL, EnvDataBackend, DataBackendProxy)
		}
		if _, err := url.ParseRequestURI(d.ProxyURL); err != nil {
			return fmt.Errorf("invalid %s: %w", EnvProxyURL, err)
		}
	case DataBackendDirect:
	default:
		return fmt.Errorf("unsupported %s %q", EnvDataBackend, d.Backend)
	}
	return nil
}

type DBConfig struct {
	DSN    string `envconfig:"STOREFRONT_DB_DSN"`
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOREFRONT_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREFRONT_DB_USER"`
	LegacyPassword string `envconfig:"STOREFRONT_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREFRONT_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"STOREFRONT_SQLITE_PATH" default:"storefront.sqlite"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite     bool `envconfig:"STOREFRONT_USE_SQLITE" default:"false"`
	AutoMigrate   bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
	ProxyEndpoint bool `envconfig:"STOREFRONT_PROXY_ENDPOINT" default:"false"`
}

type AdminConfig struct {
	Username       string        `envconfig:"STOREFRONT_ADMIN_USERNAME"`
	PasswordHash   string        `envconfig:"STOREFRONT_ADMIN_PASSWORD_HASH"`
	LoginWindow    time.Duration `envconfig:"STOREFRONT_ADMIN_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit   int           `envconfig:"STOREFRONT_ADMIN_LOGIN_IP_LIMIT" default:"10"`
	LoginUserLimit int           `envconfig:"STOREFRONT_ADMIN_LOGIN_USER_LIMIT" default:"5"`
	ReloadTimeout  time.Duration `envconfig:"STOREFRONT_ADMIN_RELOAD_TIMEOUT" default:"15s"`
}

// Enabled reports whether admin routes can be served at all.
func (a AdminConfig) Enabled() bool {
	return strings.TrimSpace(a.Username) != "" && strings.TrimSpace(a.PasswordHash) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"STOREFRONT_JWT_SECRET"`
	Issuer            string `envconfig:"STOREFRONT_JWT_ISSUER" default:"grameenmart"`
	ExpirationMinutes int    `envconfig:"STOREFRONT_JWT_EXPIRATION_MINUTES" default:"720"`
}

// TTL is the lifetime of an admin token.
func (j JWTConfig) TTL() time.Duration {
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STOREFRONT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STOREFRONT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STOREFRONT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOREFRONT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOREFRONT_ARGON_KEY_LEN" default:"32"`
}

type CheckoutConfig struct {
	WhatsAppNumber string `envconfig:"STOREFRONT_WHATSAPP_NUMBER" default:"919744083698"`
	StoreName      string `envconfig:"STOREFRONT_STORE_NAME" default:"Grameen Mart"`
	DeliveryNote   string `envconfig:"STOREFRONT_DELIVERY_NOTE" default:"Within 15 minutes"`
}

type CartConfig struct {
	SessionTTL time.Duration `envconfig:"STOREFRONT_CART_SESSION_TTL" default:"72h"`
}

// HousekeepingConfig drives the in-process job scheduler. A zero interval
// turns it off.
type HousekeepingConfig struct {
	Interval       time.Duration `envconfig:"STOREFRONT_HOUSEKEEPING_INTERVAL" default:"15m"`
	ReloadBindings bool          `envconfig:"STOREFRONT_HOUSEKEEPING_RELOAD_BINDINGS" default:"false"`
}

type MediaConfig struct {
	MaxImageMB int `envconfig:"STOREFRONT_MAX_IMAGE_MB" default:"5"`
}

// MaxImageBytes returns the upload ceiling for product images.
func (m MediaConfig) MaxImageBytes() int64 {
	if m.MaxImageMB <= 0 {
		return 5 << 20
	}
	return int64(m.MaxImageMB) << 20
}

// ResolveDSN fills DSN from the legacy host/user/name parts when it is not
// set directly. Tools that always talk to Postgres call it after Load.
func (db *DBConfig) ResolveDSN() error {
	return db.ensureDSN()
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
