package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Checkout CheckoutConfig
	Gateway  GatewayConfig
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
	Env          string `envconfig:"BOIGHOR_APP_ENV" required:"true"`
	Port         string `envconfig:"BOIGHOR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BOIGHOR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BOIGHOR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BOIGHOR_DB_DSN"`
	Driver string `envconfig:"BOIGHOR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BOIGHOR_DB_HOST"`
	LegacyPort     int    `envconfig:"BOIGHOR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BOIGHOR_DB_USER"`
	LegacyPassword string `envconfig:"BOIGHOR_DB_PASSWORD"`
	LegacyName     string `envconfig:"BOIGHOR_DB_NAME"`
	LegacySSLMode  string `envconfig:"BOIGHOR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BOIGHOR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOIGHOR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOIGHOR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOIGHOR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BOIGHOR_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BOIGHOR_REDIS_ADDR"`
	Password     string        `envconfig:"BOIGHOR_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOIGHOR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOIGHOR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOIGHOR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOIGHOR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOIGHOR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOIGHOR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BOIGHOR_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BOIGHOR_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BOIGHOR_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BOIGHOR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BOIGHOR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BOIGHOR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BOIGHOR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BOIGHOR_ARGON_KEY_LEN" default:"32"`
}

type CheckoutConfig struct {
	ShippingCharge string `envconfig:"BOIGHOR_SHIPPING_CHARGE" default:"50.00"`
	Currency       string `envconfig:"BOIGHOR_CURRENCY" default:"BDT"`
}

type GatewayConfig struct {
	StoreID       string        `envconfig:"BOIGHOR_GATEWAY_STORE_ID"`
	StorePassword string        `envconfig:"BOIGHOR_GATEWAY_STORE_PASSWORD"`
	Sandbox       bool          `envconfig:"BOIGHOR_GATEWAY_SANDBOX" default:"true"`
	Timeout       time.Duration `envconfig:"BOIGHOR_GATEWAY_TIMEOUT" default:"10s"`
	SuccessURL    string        `envconfig:"BOIGHOR_GATEWAY_SUCCESS_URL"`
	FailURL       string        `envconfig:"BOIGHOR_GATEWAY_FAIL_URL"`
	CancelURL     string        `envconfig:"BOIGHOR_GATEWAY_CANCEL_URL"`
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
