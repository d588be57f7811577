package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"STUDIOHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"STUDIOHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STUDIOHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STUDIOHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"STUDIOHUB_DB_DSN"`

	Host     string `envconfig:"STUDIOHUB_DB_HOST"`
	Port     int    `envconfig:"STUDIOHUB_DB_PORT" default:"5432"`
	User     string `envconfig:"STUDIOHUB_DB_USER"`
	Password string `envconfig:"STUDIOHUB_DB_PASSWORD"`
	Name     string `envconfig:"STUDIOHUB_DB_NAME"`
	SSLMode  string `envconfig:"STUDIOHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STUDIOHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STUDIOHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STUDIOHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STUDIOHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("database DSN or host/user/name settings are required")
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	if d.Password != "" {
		u.User = url.UserPassword(d.User, d.Password)
	} else {
		u.User = url.User(d.User)
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"STUDIOHUB_REDIS_URL"`
	Address      string        `envconfig:"STUDIOHUB_REDIS_ADDR"`
	Password     string        `envconfig:"STUDIOHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"STUDIOHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STUDIOHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STUDIOHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STUDIOHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STUDIOHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STUDIOHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STUDIOHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STUDIOHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STUDIOHUB_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STUDIOHUB_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"STUDIOHUB_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	EnrollmentTopic string `envconfig:"STUDIOHUB_PUBSUB_ENROLLMENT_TOPIC" default:"enrollment-events"`
}

type OutboxConfig struct {
	PollInterval time.Duration `envconfig:"STUDIOHUB_OUTBOX_POLL_INTERVAL" default:"5s"`
	BatchSize    int           `envconfig:"STUDIOHUB_OUTBOX_BATCH_SIZE" default:"50"`
}
