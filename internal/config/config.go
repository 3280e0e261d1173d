package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	"ingest-service/internal/ingest/model"
	"ingest-service/internal/source"
	"ingest-service/internal/store"
)

// Config is read from INGEST_* environment variables.
type Config struct {
	Host            string        `envconfig:"HOST" default:"127.0.0.1" validate:"required"`
	Port            int           `envconfig:"PORT" default:"8082" validate:"min=1,max=65535"`
	AllowOrigins    []string      `envconfig:"ALLOW_ORIGINS" default:"*"`
	MaxUploadMB     int           `envconfig:"MAX_UPLOAD_MB" default:"64" validate:"min=1,max=1024"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE" default:"logs/ingest-service.log"`

	Store  StoreConfig  `envconfig:"STORE"`
	Source SourceConfig `envconfig:"SOURCE"`

	// DefaultYear, 0 for none, stamps records whose sheet names no year.
	DefaultYear    int    `envconfig:"DEFAULT_YEAR" validate:"omitempty,min=1900,max=2999"`
	Concurrency    int    `envconfig:"CONCURRENCY" default:"4" validate:"min=1,max=64"`
	VocabularyFile string `envconfig:"VOCABULARY_FILE"`
}

type StoreConfig struct {
	Driver      string `envconfig:"DRIVER" default:"sqlite" validate:"oneof=sqlite postgres memory"`
	SQLitePath  string `envconfig:"SQLITE_PATH"` // empty: XDG data dir
	PostgresDSN string `envconfig:"POSTGRES_DSN" validate:"required_if=Driver postgres"`
}

type SourceConfig struct {
	Driver      string `envconfig:"DRIVER" default:"fs" validate:"oneof=fs s3"`
	DataDir     string `envconfig:"DATA_DIR" default:"data" validate:"required_if=Driver fs"`
	S3Bucket    string `envconfig:"S3_BUCKET" validate:"required_if=Driver s3"`
	S3Prefix    string `envconfig:"S3_PREFIX"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3PathStyle bool   `envconfig:"S3_PATH_STYLE"`
}

const envPrefix = "INGEST"

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func (c Config) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) << 20 }

func (c Config) DefaultYearPtr() *int {
	if c.DefaultYear == 0 {
		return nil
	}
	return model.IntPtr(c.DefaultYear)
}

func (c Config) StoreOptions() store.Options {
	return store.Options{Driver: c.Store.Driver, SQLitePath: c.Store.SQLitePath, PostgresDSN: c.Store.PostgresDSN}
}

func (c Config) S3Config() source.S3Config {
	return source.S3Config{
		Bucket:    c.Source.S3Bucket,
		Prefix:    c.Source.S3Prefix,
		Region:    c.Source.S3Region,
		Endpoint:  c.Source.S3Endpoint,
		PathStyle: c.Source.S3PathStyle,
	}
}
