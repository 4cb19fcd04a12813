package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultFile is read from the working directory when no --config is given.
const DefaultFile = "checkmate.yaml"

// EnvPrefix namespaces environment overrides, e.g. CHECKMATE_DB_DSN.
const EnvPrefix = "CHECKMATE_"

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const minSessionSecret = 32

type Config struct {
	Port string `koanf:"port"`

	// Database
	DBDriver string `koanf:"db_driver"`
	DBDSN    string `koanf:"db_dsn"`

	// Auth
	SessionSecret string `koanf:"session_secret"`

	// Worker pool
	WorkerCount  int `koanf:"worker_count"`
	MaxQueueSize int `koanf:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `koanf:"job_ttl"`

	// PDF
	PDFFallbackPdftotext bool `koanf:"pdf_fallback_pdftotext"`

	LogLevel string `koanf:"log_level"`
}

func defaults() map[string]any {
	return map[string]any{
		"port":                   "8090",
		"db_driver":              DriverSQLite,
		"db_dsn":                 "checkmate.db",
		"session_secret":         "",
		"worker_count":           4,
		"max_queue_size":         100,
		"max_upload_bytes":       int64(52428800), // 50MB
		"job_ttl":                "1h",
		"pdf_fallback_pdftotext": true,
		"log_level":              "info",
	}
}

// Load resolves configuration. Precedence, lowest first: defaults, YAML file,
// CHECKMATE_* environment, explicitly set flags. path may be empty, in which
// case DefaultFile is used if it exists.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))

	return cfg, nil
}

// Validate checks settings the server cannot start without. CLI commands that
// never touch sessions call ValidateDB instead.
func (c Config) Validate() error {
	if err := c.ValidateDB(); err != nil {
		return err
	}
	if len(c.SessionSecret) < minSessionSecret {
		return fmt.Errorf("session_secret must be at least %d characters", minSessionSecret)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c Config) ValidateDB() error {
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported db_driver %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("db_dsn is required")
	}
	return nil
}

// ParseLevel maps log_level to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q", s)
	}
	return lvl, nil
}
