package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/Veraticus/lensline/internal/common"
	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	Logging  LoggingConfig
	API      APIConfig
	Database DatabaseConfig
	Blob     BlobConfig
	Metrics  MetricsConfig
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// APIConfig points at the remote analysis service.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
	Offline bool
}

// DatabaseConfig locates the local SQLite database.
type DatabaseConfig struct {
	Path string
}

// BlobConfig selects where uploaded images are kept for synthesized records.
type BlobConfig struct {
	Backend string
	Dir     string
	MinIO   MinIOConfig
}

// MinIOConfig configures the S3-compatible blob backend.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// MetricsConfig controls the Prometheus textfile output.
type MetricsConfig struct {
	Textfile string
}

// Blob backends.
const (
	BlobBackendFile  = "file"
	BlobBackendMinIO = "minio"
)

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("api.base_url", "http://localhost:8000/api")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.offline", false)
	v.SetDefault("database.path", filepath.Join(DataDir(), AppName+".db"))
	v.SetDefault("blob.backend", BlobBackendFile)
	v.SetDefault("blob.dir", filepath.Join(DataDir(), "blobs"))
	v.SetDefault("blob.minio.bucket", AppName+"-uploads")
	v.SetDefault("blob.minio.use_ssl", true)
}

// Load reads the configuration from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		API: APIConfig{
			BaseURL: v.GetString("api.base_url"),
			Timeout: v.GetDuration("api.timeout"),
			Offline: v.GetBool("api.offline"),
		},
		Database: DatabaseConfig{
			Path: ExpandPath(v.GetString("database.path")),
		},
		Blob: BlobConfig{
			Backend: v.GetString("blob.backend"),
			Dir:     ExpandPath(v.GetString("blob.dir")),
			MinIO: MinIOConfig{
				Endpoint:  v.GetString("blob.minio.endpoint"),
				AccessKey: v.GetString("blob.minio.access_key"),
				SecretKey: v.GetString("blob.minio.secret_key"),
				Bucket:    v.GetString("blob.minio.bucket"),
				Region:    v.GetString("blob.minio.region"),
				UseSSL:    v.GetBool("blob.minio.use_ssl"),
			},
		},
		Metrics: MetricsConfig{
			Textfile: ExpandPath(v.GetString("metrics.textfile")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if !c.API.Offline {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: api.base_url %q must be an absolute http(s) URL", common.ErrInvalidConfig, c.API.BaseURL)
		}
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("%w: api.timeout must be positive", common.ErrInvalidConfig)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}

	switch c.Blob.Backend {
	case BlobBackendFile:
		if c.Blob.Dir == "" {
			return fmt.Errorf("%w: blob.dir", common.ErrMissingConfig)
		}
	case BlobBackendMinIO:
		if c.Blob.MinIO.Endpoint == "" || c.Blob.MinIO.Bucket == "" {
			return fmt.Errorf("%w: blob.minio.endpoint and blob.minio.bucket", common.ErrMissingConfig)
		}
	default:
		return fmt.Errorf("%w: blob.backend %q (want file or minio)", common.ErrInvalidConfig, c.Blob.Backend)
	}

	return nil
}
