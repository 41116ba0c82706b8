package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SUQLY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SUQLY_DB_DSN"
	EnvDBHost = "SUQLY_DB_HOST"
	EnvDBUser = "SUQLY_DB_USER"
	EnvDBName = "SUQLY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	WhatsApp     WhatsAppConfig
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
	Env          string `envconfig:"SUQLY_APP_ENV" required:"true"`
	Port         string `envconfig:"SUQLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SUQLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SUQLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SUQLY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SUQLY_DB_DSN"`
	Driver string `envconfig:"SUQLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SUQLY_DB_HOST"`
	LegacyPort     int    `envconfig:"SUQLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SUQLY_DB_USER"`
	LegacyPassword string `envconfig:"SUQLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"SUQLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"SUQLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SUQLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SUQLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SUQLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SUQLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SUQLY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SUQLY_REDIS_ADDR"`
	Password     string        `envconfig:"SUQLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"SUQLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SUQLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SUQLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SUQLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SUQLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SUQLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SUQLY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SUQLY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SUQLY_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SUQLY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SUQLY_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SUQLY_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SUQLY_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SUQLY_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"SUQLY_PUBSUB_DOMAIN_TOPIC" default:"suqly-domain-events"`
	DomainSubscription string `envconfig:"SUQLY_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SUQLY_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SUQLY_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SUQLY_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type WhatsAppConfig struct {
	BaseURL            string `envconfig:"SUQLY_WHATSAPP_BASE_URL" default:"https://wa.me"`
	DefaultCountryCode string `envconfig:"SUQLY_WHATSAPP_COUNTRY_CODE" default:"964"`
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
