package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/psantana5/vidgen/pkg/logging"
	"github.com/psantana5/vidgen/pkg/models"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. VIDGEN_BACKEND_URL
const EnvPrefix = "VIDGEN"

// Config is the effective vidgen configuration
type Config struct {
	BackendURL      string        `mapstructure:"backend_url"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	PollTerminal    bool          `mapstructure:"poll_terminal"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	DefaultDuration int           `mapstructure:"default_duration"`
	DefaultRefine   bool          `mapstructure:"default_refine"`
	ListenAddr      string        `mapstructure:"listen_addr"`
	SubmitRPS       float64       `mapstructure:"submit_rps"`
	SubmitBurst     int           `mapstructure:"submit_burst"`
	Output          string        `mapstructure:"output"`
	Log             LogConfig     `mapstructure:"log"`
	Tracing         TracingConfig `mapstructure:"tracing"`
	TLS             TLSConfig     `mapstructure:"tls"`
}

// LogConfig controls pkg/logging
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Dir    string `mapstructure:"dir"`
}

// TracingConfig controls OTLP export
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// TLSConfig enables HTTPS on the listeners and private-CA trust for the
// backend client
type TLSConfig struct {
	CertFile   string `mapstructure:"cert_file"`
	KeyFile    string `mapstructure:"key_file"`
	SelfSigned bool   `mapstructure:"self_signed"`
	CAFile     string `mapstructure:"ca_file"`
}

// Enabled reports whether listeners should serve HTTPS
func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" && t.KeyFile != ""
}

// SetDefaults registers every key with its default so env overrides resolve
func SetDefaults(v *viper.Viper) {
	v.SetDefault("backend_url", "http://localhost:8081")
	v.SetDefault("poll_interval", 3*time.Second)
	v.SetDefault("poll_terminal", false)
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("default_duration", models.DefaultDurationSeconds)
	v.SetDefault("default_refine", true)
	v.SetDefault("listen_addr", ":8090")
	v.SetDefault("submit_rps", 1.0)
	v.SetDefault("submit_burst", 3)
	v.SetDefault("output", "table")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.dir", "")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("tls.cert_file", "")
	v.SetDefault("tls.key_file", "")
	v.SetDefault("tls.self_signed", false)
	v.SetDefault("tls.ca_file", "")
}

// NewViper builds a viper instance with defaults, VIDGEN_* env binding and,
// if present, the YAML config file. An explicit cfgFile must exist; the
// default $HOME/.vidgen/config.yaml is optional.
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
		return v, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".vidgen"))
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

// Load decodes and validates the configuration held by v
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail at runtime
func (c Config) Validate() error {
	if c.BackendURL != "" {
		u, err := url.Parse(c.BackendURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("backend_url %q must be an absolute http(s) URL", c.BackendURL)
		}
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative, got %s", c.RequestTimeout)
	}
	if c.SubmitBurst < 1 {
		return fmt.Errorf("submit_burst must be at least 1, got %d", c.SubmitBurst)
	}
	switch c.Output {
	case "table", "json":
	default:
		return fmt.Errorf("output must be table or json, got %q", c.Output)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be between 0 and 1, got %g", c.Tracing.SampleRatio)
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return errors.New("tls.cert_file and tls.key_file must be set together")
	}
	if c.TLS.SelfSigned && !c.TLS.Enabled() {
		return errors.New("tls.self_signed needs tls.cert_file and tls.key_file to write to")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// NewLogger builds the logger described by the log section. With a log
// directory configured, entries are also appended to <dir>/vidgen/<component>.log.
func (c Config) NewLogger(component string) (*logging.Logger, error) {
	level := logging.ParseLevel(c.Log.Level)
	jsonFormat := c.Log.Format == "json"
	if c.Log.Dir != "" {
		return logging.NewFileLogger(c.Log.Dir, component, level, jsonFormat)
	}
	return logging.NewLogger(level, jsonFormat).WithField("component", component), nil
}

// Display is the printable form of Config used by `vidgen config show`
type Display struct {
	BackendURL      string  `json:"backend_url" yaml:"backend_url"`
	PollInterval    string  `json:"poll_interval" yaml:"poll_interval"`
	PollTerminal    bool    `json:"poll_terminal" yaml:"poll_terminal"`
	RequestTimeout  string  `json:"request_timeout" yaml:"request_timeout"`
	DefaultDuration int     `json:"default_duration" yaml:"default_duration"`
	DefaultRefine   bool    `json:"default_refine" yaml:"default_refine"`
	ListenAddr      string  `json:"listen_addr" yaml:"listen_addr"`
	SubmitRPS       float64 `json:"submit_rps" yaml:"submit_rps"`
	SubmitBurst     int     `json:"submit_burst" yaml:"submit_burst"`
	Output          string  `json:"output" yaml:"output"`
	Log             struct {
		Level  string `json:"level" yaml:"level"`
		Format string `json:"format" yaml:"format"`
		Dir    string `json:"dir" yaml:"dir"`
	} `json:"log" yaml:"log"`
	Tracing struct {
		Enabled     bool    `json:"enabled" yaml:"enabled"`
		Endpoint    string  `json:"endpoint" yaml:"endpoint"`
		SampleRatio float64 `json:"sample_ratio" yaml:"sample_ratio"`
	} `json:"tracing" yaml:"tracing"`
	TLS struct {
		CertFile   string `json:"cert_file" yaml:"cert_file"`
		KeyFile    string `json:"key_file" yaml:"key_file"`
		SelfSigned bool   `json:"self_signed" yaml:"self_signed"`
		CAFile     string `json:"ca_file" yaml:"ca_file"`
	} `json:"tls" yaml:"tls"`
}

// Display converts durations to their string form for printing
func (c Config) Display() Display {
	d := Display{
		BackendURL:      c.BackendURL,
		PollInterval:    c.PollInterval.String(),
		PollTerminal:    c.PollTerminal,
		RequestTimeout:  c.RequestTimeout.String(),
		DefaultDuration: c.DefaultDuration,
		DefaultRefine:   c.DefaultRefine,
		ListenAddr:      c.ListenAddr,
		SubmitRPS:       c.SubmitRPS,
		SubmitBurst:     c.SubmitBurst,
		Output:          c.Output,
	}
	d.Log.Level = c.Log.Level
	d.Log.Format = c.Log.Format
	d.Log.Dir = c.Log.Dir
	d.Tracing.Enabled = c.Tracing.Enabled
	d.Tracing.Endpoint = c.Tracing.Endpoint
	d.Tracing.SampleRatio = c.Tracing.SampleRatio
	d.TLS.CertFile = c.TLS.CertFile
	d.TLS.KeyFile = c.TLS.KeyFile
	d.TLS.SelfSigned = c.TLS.SelfSigned
	d.TLS.CAFile = c.TLS.CAFile
	return d
}
