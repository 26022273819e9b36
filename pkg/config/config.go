// Package config loads runtime settings for the terminal client and the
// stub service. Sources are applied in increasing precedence: built-in
// defaults, an optional YAML file, .env files, the process environment,
// and finally command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration.
type Config struct {
	API        APIConfig        `yaml:"api"`
	Classifier ClassifierConfig `yaml:"classifier"`
	UI         UIConfig         `yaml:"ui"`
	Log        LogConfig        `yaml:"log"`
	Stub       StubConfig       `yaml:"stub"`
}

// APIConfig locates the ticket store service.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ClassifierConfig tunes the suggestion pipeline.
type ClassifierConfig struct {
	Debounce  time.Duration `yaml:"debounce"`
	MinLength int           `yaml:"min_length"`
}

// UIConfig controls presentation.
type UIConfig struct {
	Theme   string `yaml:"theme"`   // auto, dark, light
	View    string `yaml:"view"`    // list, board
	Presets string `yaml:"presets"` // path to a presets YAML file
}

// LogConfig configures the rotating log file. An empty File disables
// logging.
type LogConfig struct {
	File       string `yaml:"file"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// StubConfig configures td-stub.
type StubConfig struct {
	Addr string `yaml:"addr"`
	Seed bool   `yaml:"seed"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000/api",
			Timeout: 10 * time.Second,
		},
		Classifier: ClassifierConfig{
			Debounce:  500 * time.Millisecond,
			MinLength: 10,
		},
		UI: UIConfig{
			Theme: "auto",
			View:  "list",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Stub: StubConfig{
			Addr: "127.0.0.1:8000",
			Seed: true,
		},
	}
}

// Environment variable names.
const (
	EnvAPIURL       = "TD_API_URL"
	EnvTimeout      = "TD_TIMEOUT"
	EnvDebounce     = "TD_DEBOUNCE"
	EnvMinDesc      = "TD_MIN_DESCRIPTION"
	EnvLogFile      = "TD_LOG_FILE"
	EnvLogLevel     = "TD_LOG_LEVEL"
	EnvTheme        = "TD_THEME"
	EnvView         = "TD_VIEW"
	EnvPresets      = "TD_PRESETS"
	EnvStubAddr     = "TD_STUB_ADDR"
	DefaultEnvFile  = ".env"
	DefaultFileName = "td.yaml"
)

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// File is a YAML config path. Empty means none; a missing file is an
	// error only when set explicitly.
	File string
	// EnvFiles are dotenv files. Missing files are skipped.
	EnvFiles []string
	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds a Config from defaults, the YAML file, dotenv files and the
// environment. Flags are applied separately with ApplyFlags.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	if opts.File != "" {
		if err := cfg.mergeFile(opts.File); err != nil {
			return Config{}, err
		}
	}

	dotenv := map[string]string{}
	for _, f := range opts.EnvFiles {
		vals, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("reading %s: %w", f, err)
		}
		for k, v := range vals {
			dotenv[k] = v
		}
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok && v != ""
	}
	if err := cfg.mergeEnv(env); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv(env func(string) (string, bool)) error {
	if v, ok := env(EnvAPIURL); ok {
		c.API.BaseURL = v
	}
	if v, ok := env(EnvTimeout); ok {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		c.API.Timeout = d
	}
	if v, ok := env(EnvDebounce); ok {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvDebounce, err)
		}
		c.Classifier.Debounce = d
	}
	if v, ok := env(EnvMinDesc); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMinDesc, err)
		}
		c.Classifier.MinLength = n
	}
	if v, ok := env(EnvLogFile); ok {
		c.Log.File = v
	}
	if v, ok := env(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := env(EnvTheme); ok {
		c.UI.Theme = v
	}
	if v, ok := env(EnvView); ok {
		c.UI.View = v
	}
	if v, ok := env(EnvPresets); ok {
		c.UI.Presets = v
	}
	if v, ok := env(EnvStubAddr); ok {
		c.Stub.Addr = v
	}
	return nil
}

// parseDuration accepts Go durations ("750ms") or a bare number of
// milliseconds ("750").
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url: %q is not an absolute http(s) URL", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	if c.Classifier.Debounce <= 0 {
		return fmt.Errorf("classifier.debounce must be positive, got %s", c.Classifier.Debounce)
	}
	if c.Classifier.MinLength < 1 {
		return fmt.Errorf("classifier.min_length must be at least 1, got %d", c.Classifier.MinLength)
	}
	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		return fmt.Errorf("ui.theme: unknown theme %q", c.UI.Theme)
	}
	switch c.UI.View {
	case "list", "board":
	default:
		return fmt.Errorf("ui.view: unknown view %q", c.UI.View)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
