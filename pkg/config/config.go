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
	Checkout     CheckoutConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GILDEDLANE_APP_ENV" required:"true"`
	Port         string `envconfig:"GILDEDLANE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GILDEDLANE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GILDEDLANE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GILDEDLANE_DB_DSN"`
	Driver string `envconfig:"GILDEDLANE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GILDEDLANE_DB_HOST"`
	LegacyPort     int    `envconfig:"GILDEDLANE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GILDEDLANE_DB_USER"`
	LegacyPassword string `envconfig:"GILDEDLANE_DB_PASSWORD"`
	LegacyName     string `envconfig:"GILDEDLANE_DB_NAME"`
	LegacySSLMode  string `envconfig:"GILDEDLANE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GILDEDLANE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GILDEDLANE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GILDEDLANE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GILDEDLANE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GILDEDLANE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GILDEDLANE_REDIS_ADDR"`
	Password     string        `envconfig:"GILDEDLANE_REDIS_PASSWORD"`
	DB           int           `envconfig:"GILDEDLANE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GILDEDLANE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GILDEDLANE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GILDEDLANE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GILDEDLANE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GILDEDLANE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GILDEDLANE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GILDEDLANE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"GILDEDLANE_JWT_EXPIRATION_MINUTES" required:"true"`
}

type CheckoutConfig struct {
	VerificationCodeTTL time.Duration `envconfig:"GILDEDLANE_CHECKOUT_VERIFICATION_CODE_TTL" default:"10m"`
	VerificationTTL     time.Duration `envconfig:"GILDEDLANE_CHECKOUT_VERIFICATION_TTL" default:"24h"`
	ShippingFee         int           `envconfig:"GILDEDLANE_CHECKOUT_SHIPPING_FEE" default:"0"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GILDEDLANE_AUTO_MIGRATE" default:"false"`
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
