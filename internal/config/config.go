package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is loaded once at start-up and treated as read-only afterwards.
// Precedence: environment (RESUME_*) > config file > defaults.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Render    RenderConfig    `mapstructure:"render"`
	Export    ExportConfig    `mapstructure:"export"`
	Enhancer  EnhancerConfig  `mapstructure:"enhancer"`
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	BodyLimit    int           `mapstructure:"bodyLimit"`
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string { return s.Host + ":" + s.Port }

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RenderConfig struct {
	// StyleFile replaces the embedded stylesheet when set.
	StyleFile string `mapstructure:"styleFile"`
}

type MarginsConfig struct {
	Top    float64 `mapstructure:"top"`
	Right  float64 `mapstructure:"right"`
	Bottom float64 `mapstructure:"bottom"`
	Left   float64 `mapstructure:"left"`
}

type ExportConfig struct {
	PageSize      string        `mapstructure:"pageSize"`
	Margins       MarginsConfig `mapstructure:"margins"`
	MaxFieldRunes int           `mapstructure:"maxFieldRunes"`
	MaxPages      int           `mapstructure:"maxPages"`
	ChromePath    string        `mapstructure:"chromePath"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Attempts      int           `mapstructure:"attempts"`
}

type EnhancerConfig struct {
	VocabularyFile string       `mapstructure:"vocabularyFile"`
	Remote         RemoteConfig `mapstructure:"remote"`
}

// RemoteConfig points at an optional inference service. When disabled the
// heuristic enhancer answers every request.
type RemoteConfig struct {
	Enabled bool                 `mapstructure:"enabled"`
	URL     string               `mapstructure:"url"`
	Timeout time.Duration        `mapstructure:"timeout"`
	Breaker CircuitBreakerConfig `mapstructure:"breaker"`
}

type CircuitBreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // allowed while half-open
	Interval         time.Duration `mapstructure:"interval"`         // closed-state count reset
	Timeout          time.Duration `mapstructure:"timeout"`          // open before half-open
	MinRequests      uint32        `mapstructure:"minRequests"`      // before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // 0.0-1.0
}

type RateLimitConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	RequestsPerMin int  `mapstructure:"requestsPerMin"`
	Burst          int  `mapstructure:"burst"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration. An empty path searches /etc/resume-builder/,
// $HOME/.resume-builder and the working directory for config.yaml; a missing
// file there is not an error. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RESUME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/resume-builder/")
		v.AddConfigPath("$HOME/.resume-builder")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.Server.BodyLimit <= 0 {
		errs = append(errs, errors.New("server.bodyLimit must be positive"))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", c.Log.Format))
	}

	switch strings.ToLower(c.Export.PageSize) {
	case "letter", "a4":
	default:
		errs = append(errs, fmt.Errorf("export.pageSize must be letter or a4, got %q", c.Export.PageSize))
	}
	m := c.Export.Margins
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		errs = append(errs, errors.New("export.margins must not be negative"))
	}
	if c.Export.MaxFieldRunes <= 0 {
		errs = append(errs, errors.New("export.maxFieldRunes must be positive"))
	}
	if c.Export.MaxPages <= 0 {
		errs = append(errs, errors.New("export.maxPages must be positive"))
	}
	if c.Export.Attempts < 1 {
		errs = append(errs, errors.New("export.attempts must be at least 1"))
	}
	if c.Export.Timeout <= 0 {
		errs = append(errs, errors.New("export.timeout must be positive"))
	}

	if r := c.Enhancer.Remote; r.Enabled {
		if r.URL == "" {
			errs = append(errs, errors.New("enhancer.remote.url is required when the remote enhancer is enabled"))
		}
		if t := r.Breaker.FailureThreshold; t <= 0 || t > 1 {
			errs = append(errs, fmt.Errorf("enhancer.remote.breaker.failureThreshold must be in (0,1], got %v", t))
		}
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerMin <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("rateLimit.requestsPerMin and rateLimit.burst must be positive"))
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path))
	}

	return errors.Join(errs...)
}

// ParseLevel maps a config level name onto slog.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}
