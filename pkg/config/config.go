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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Checkout     CheckoutConfig
	Stripe       StripeConfig
	Outbox       OutboxConfig
	PubSub       PubSubConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.useSQLite()
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DIMENSIONALZ_APP_ENV" required:"true"`
	Port         string `envconfig:"DIMENSIONALZ_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DIMENSIONALZ_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DIMENSIONALZ_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DIMENSIONALZ_DB_DSN"`
	Driver string `envconfig:"DIMENSIONALZ_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DIMENSIONALZ_DB_HOST"`
	LegacyPort     int    `envconfig:"DIMENSIONALZ_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DIMENSIONALZ_DB_USER"`
	LegacyPassword string `envconfig:"DIMENSIONALZ_DB_PASSWORD"`
	LegacyName     string `envconfig:"DIMENSIONALZ_DB_NAME"`
	LegacySSLMode  string `envconfig:"DIMENSIONALZ_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DIMENSIONALZ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DIMENSIONALZ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DIMENSIONALZ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DIMENSIONALZ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DIMENSIONALZ_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DIMENSIONALZ_REDIS_ADDR"`
	Password     string        `envconfig:"DIMENSIONALZ_REDIS_PASSWORD"`
	DB           int           `envconfig:"DIMENSIONALZ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DIMENSIONALZ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DIMENSIONALZ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DIMENSIONALZ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DIMENSIONALZ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DIMENSIONALZ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DIMENSIONALZ_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"DIMENSIONALZ_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"DIMENSIONALZ_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DIMENSIONALZ_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DIMENSIONALZ_AUTO_MIGRATE" default:"false"`
}

// CheckoutConfig bounds every waiting phase of the checkout state machine.
type CheckoutConfig struct {
	SessionTimeout   time.Duration `envconfig:"DIMENSIONALZ_CHECKOUT_SESSION_TIMEOUT" default:"10s"`
	PortalTTL        time.Duration `envconfig:"DIMENSIONALZ_CHECKOUT_PORTAL_TTL" default:"15m"`
	PaymentTTL       time.Duration `envconfig:"DIMENSIONALZ_CHECKOUT_PAYMENT_TTL" default:"1h"`
	SynchronizingTTL time.Duration `envconfig:"DIMENSIONALZ_CHECKOUT_SYNC_TTL" default:"5m"`
	Currency         string        `envconfig:"DIMENSIONALZ_CHECKOUT_CURRENCY" default:"usd"`
	SuccessURL       string        `envconfig:"DIMENSIONALZ_CHECKOUT_SUCCESS_URL" default:"http://localhost:3000/checkout/success?session_id={CHECKOUT_SESSION_ID}"`
	CancelURL        string        `envconfig:"DIMENSIONALZ_CHECKOUT_CANCEL_URL" default:"http://localhost:3000/checkout"`
	InitiateLimit    int64         `envconfig:"DIMENSIONALZ_CHECKOUT_INITIATE_LIMIT" default:"10"`
	InitiateWindow   time.Duration `envconfig:"DIMENSIONALZ_CHECKOUT_INITIATE_WINDOW" default:"1m"`
}

func (c CheckoutConfig) validate() error {
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvCheckoutSessionTimeout)
	}
	if c.PortalTTL <= c.SessionTimeout {
		return fmt.Errorf("%s must exceed %s", EnvCheckoutPortalTTL, EnvCheckoutSessionTimeout)
	}
	if c.PaymentTTL <= 0 || c.SynchronizingTTL <= 0 {
		return fmt.Errorf("checkout ttls must be positive")
	}
	return nil
}

type StripeConfig struct {
	APIKey string `envconfig:"DIMENSIONALZ_STRIPE_API_KEY"`
	Secret string `envconfig:"DIMENSIONALZ_STRIPE_SECRET"`
	Env    string `envconfig:"DIMENSIONALZ_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"DIMENSIONALZ_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"DIMENSIONALZ_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"DIMENSIONALZ_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type PubSubConfig struct {
	ProjectID   string `envconfig:"DIMENSIONALZ_GCP_PROJECT_ID"`
	OrdersTopic string `envconfig:"DIMENSIONALZ_PUBSUB_ORDERS_TOPIC" default:"dmz-order-events"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"DIMENSIONALZ_CRON_INTERVAL" default:"1m"`
	LockName string        `envconfig:"DIMENSIONALZ_CRON_LOCK_NAME" default:"cron-worker"`
	LockTTL  time.Duration `envconfig:"DIMENSIONALZ_CRON_LOCK_TTL" default:"5m"`

	// OutboxRetention is how long published outbox rows are kept.
	OutboxRetention time.Duration `envconfig:"DIMENSIONALZ_CRON_OUTBOX_RETENTION" default:"720h"`
}

const defaultSQLiteDSN = "file:dimensionalz.db?_foreign_keys=on"

// useSQLite switches to the local sqlite file. An explicit postgres DSN is ignored.
func (db *DBConfig) useSQLite() {
	if db.Driver != "sqlite" || db.DSN == "" || strings.HasPrefix(db.DSN, "postgres") {
		db.DSN = defaultSQLiteDSN
	}
	db.Driver = "sqlite"
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
