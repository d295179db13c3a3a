package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Storage  StorageConfig
	Redis    RedisConfig
	DB       DBConfig
	OrderAPI OrderAPIConfig
	Session  SessionConfig
	JWT      JWTConfig
	Checkout CheckoutConfig
	CORS     CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(cfg.Redis, cfg.DB); err != nil {
		return nil, err
	}
	if _, err := enums.ParsePaymentMethod(cfg.Checkout.PaymentMethod); err != nil {
		return nil, fmt.Errorf("%s: %w", EnvPaymentMethod, err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorageConfig selects where carts are persisted and under which keys.
type StorageConfig struct {
	Driver     string        `envconfig:"STOREFRONT_STORAGE_DRIVER" default:"memory"`
	CartKey    string        `envconfig:"STOREFRONT_STORAGE_CART_KEY" default:"cart"`
	ProfileKey string        `envconfig:"STOREFRONT_STORAGE_PROFILE_KEY" default:"user"`
	TTL        time.Duration `envconfig:"STOREFRONT_STORAGE_TTL" default:"720h"`
}

func (s StorageConfig) NormalizedDriver() string {
	return strings.ToLower(strings.TrimSpace(s.Driver))
}

func (s StorageConfig) validate(redisCfg RedisConfig, dbCfg DBConfig) error {
	switch s.NormalizedDriver() {
	case StorageDriverMemory:
		return nil
	case StorageDriverRedis:
		if redisCfg.URL == "" && redisCfg.Address == "" {
			return fmt.Errorf("%s or %s is required for the redis storage driver", EnvRedisURL, EnvRedisAddr)
		}
		return nil
	case StorageDriverPostgres, StorageDriverSQLite:
		if dbCfg.DSN == "" {
			return fmt.Errorf("%s is required for the %s storage driver", EnvDBDSN, s.NormalizedDriver())
		}
		return nil
	default:
		return fmt.Errorf("unsupported storage driver %q", s.Driver)
	}
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

type DBConfig struct {
	DSN             string        `envconfig:"STOREFRONT_DB_DSN"`
	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	AutoMigrate     bool          `envconfig:"STOREFRONT_DB_AUTO_MIGRATE" default:"false"`
}

// OrderAPIConfig points at the remote order-creation backend.
type OrderAPIConfig struct {
	BaseURL string        `envconfig:"STOREFRONT_ORDER_API_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"STOREFRONT_ORDER_API_TIMEOUT" default:"10s"`
}

type SessionConfig struct {
	CookieName    string        `envconfig:"STOREFRONT_SESSION_COOKIE_NAME" default:"sf_cart_scope"`
	CookieSecure  bool          `envconfig:"STOREFRONT_SESSION_COOKIE_SECURE" default:"false"`
	CookieMaxAge  time.Duration `envconfig:"STOREFRONT_SESSION_COOKIE_MAX_AGE" default:"720h"`
	IdleTTL       time.Duration `envconfig:"STOREFRONT_SESSION_IDLE_TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"STOREFRONT_SESSION_SWEEP_INTERVAL" default:"5m"`
}

// JWTConfig is optional; without a secret, token claims are read unverified.
type JWTConfig struct {
	Secret string `envconfig:"STOREFRONT_JWT_SECRET"`
	Issuer string `envconfig:"STOREFRONT_JWT_ISSUER"`
}

type CheckoutConfig struct {
	PaymentMethod string        `envconfig:"STOREFRONT_CHECKOUT_PAYMENT_METHOD" default:"cash_on_delivery"`
	SubmitTimeout time.Duration `envconfig:"STOREFRONT_CHECKOUT_SUBMIT_TIMEOUT" default:"15s"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"STOREFRONT_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}
