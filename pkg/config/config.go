package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TILLVIEW_DB_DSN"
	EnvDBHost = "TILLVIEW_DB_HOST"
	EnvDBUser = "TILLVIEW_DB_USER"
	EnvDBName = "TILLVIEW_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Settlement   SettlementConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TILLVIEW_APP_ENV" required:"true"`
	Port         string `envconfig:"TILLVIEW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TILLVIEW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TILLVIEW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TILLVIEW_DB_DSN"`
	Driver string `envconfig:"TILLVIEW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TILLVIEW_DB_HOST"`
	LegacyPort     int    `envconfig:"TILLVIEW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TILLVIEW_DB_USER"`
	LegacyPassword string `envconfig:"TILLVIEW_DB_PASSWORD"`
	LegacyName     string `envconfig:"TILLVIEW_DB_NAME"`
	LegacySSLMode  string `envconfig:"TILLVIEW_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"TILLVIEW_DB_SQLITE_PATH" default:"tillview.db"`

	MaxOpenConns    int           `envconfig:"TILLVIEW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TILLVIEW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TILLVIEW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TILLVIEW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TILLVIEW_REDIS_URL"`
	Address      string        `envconfig:"TILLVIEW_REDIS_ADDR"`
	Password     string        `envconfig:"TILLVIEW_REDIS_PASSWORD"`
	DB           int           `envconfig:"TILLVIEW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TILLVIEW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TILLVIEW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TILLVIEW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TILLVIEW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TILLVIEW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TILLVIEW_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TILLVIEW_AUTO_MIGRATE" default:"false"`
}

type SettlementConfig struct {
	// FollowUpDueOffset is how far after settlement a partial-payment
	// follow-up falls due when the cashier did not pick a date.
	FollowUpDueOffset time.Duration `envconfig:"TILLVIEW_SETTLEMENT_FOLLOWUP_DUE_OFFSET" default:"24h"`
	// InstallmentSpacingDays separates consecutive installments in a plan.
	InstallmentSpacingDays int           `envconfig:"TILLVIEW_SETTLEMENT_INSTALLMENT_SPACING_DAYS" default:"30"`
	SessionTTL             time.Duration `envconfig:"TILLVIEW_CHECKOUT_SESSION_TTL" default:"12h"`
	IdempotencyTTL         time.Duration `envconfig:"TILLVIEW_SETTLEMENT_IDEMPOTENCY_TTL" default:"168h"`
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
