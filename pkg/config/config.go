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

	EnvDBDSN  = "CATALOGO_DB_DSN"
	EnvDBHost = "CATALOGO_DB_HOST"
	EnvDBUser = "CATALOGO_DB_USER"
	EnvDBName = "CATALOGO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Media        MediaConfig
	PubSub       PubSubConfig
	Cron         CronConfig
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
	Env          string `envconfig:"CATALOGO_APP_ENV" required:"true"`
	Port         string `envconfig:"CATALOGO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CATALOGO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CATALOGO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CATALOGO_DB_DSN"`
	Driver string `envconfig:"CATALOGO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CATALOGO_DB_HOST"`
	LegacyPort     int    `envconfig:"CATALOGO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CATALOGO_DB_USER"`
	LegacyPassword string `envconfig:"CATALOGO_DB_PASSWORD"`
	LegacyName     string `envconfig:"CATALOGO_DB_NAME"`
	LegacySSLMode  string `envconfig:"CATALOGO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CATALOGO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CATALOGO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CATALOGO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CATALOGO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CATALOGO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CATALOGO_REDIS_ADDR"`
	Password     string        `envconfig:"CATALOGO_REDIS_PASSWORD"`
	DB           int           `envconfig:"CATALOGO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CATALOGO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CATALOGO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CATALOGO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CATALOGO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CATALOGO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CATALOGO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CATALOGO_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CATALOGO_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CATALOGO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CATALOGO_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CATALOGO_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"CATALOGO_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CATALOGO_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName     string        `envconfig:"CATALOGO_GCS_BUCKET_NAME" required:"true"`
	RequestTimeout time.Duration `envconfig:"CATALOGO_GCS_REQUEST_TIMEOUT" default:"30s"`
	DeleteTimeout  time.Duration `envconfig:"CATALOGO_GCS_DELETE_TIMEOUT" default:"10s"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"CATALOGO_MAX_UPLOAD_MB" default:"50"`
}

// MaxUploadBytes returns the upload cap in bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	return int64(m.MaxUploadMB) * 1024 * 1024
}

type PubSubConfig struct {
	MediaDeletionSubscription string `envconfig:"CATALOGO_PUBSUB_MEDIA_DELETION_SUBSCRIPTION" required:"true"`
}

type CronConfig struct {
	Interval          time.Duration `envconfig:"CATALOGO_CRON_INTERVAL" default:"1h"`
	LockTTL           time.Duration `envconfig:"CATALOGO_CRON_LOCK_TTL" default:"50m"`
	OrphanMaxAttempts int           `envconfig:"CATALOGO_CRON_ORPHAN_MAX_ATTEMPTS" default:"10"`
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
