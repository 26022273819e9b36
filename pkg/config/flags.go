package config

import (
	"github.com/spf13/pflag"
)

// Flag names shared by the binaries.
const (
	FlagConfig   = "config"
	FlagAPI      = "api"
	FlagTimeout  = "timeout"
	FlagDebounce = "debounce"
	FlagMinDesc  = "min-description"
	FlagLogFile  = "log-file"
	FlagLogLevel = "log-level"
	FlagTheme    = "theme"
	FlagView     = "view"
	FlagPresets  = "presets"
	FlagAddr     = "addr"
	FlagSeed     = "seed"
)

// RegisterClientFlags declares the terminal client's flags on fs.
func RegisterClientFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagConfig, "", "Path to a YAML config file")
	fs.String(FlagAPI, d.API.BaseURL, "Ticket service base URL")
	fs.Duration(FlagTimeout, d.API.Timeout, "Per-request timeout")
	fs.Duration(FlagDebounce, d.Classifier.Debounce, "Quiet period before classifying a description")
	fs.Int(FlagMinDesc, d.Classifier.MinLength, "Shortest description worth classifying")
	fs.String(FlagLogFile, d.Log.File, "Write logs to this file (disabled when empty)")
	fs.String(FlagLogLevel, d.Log.Level, "Log level: debug, info, warn, error")
	fs.String(FlagTheme, d.UI.Theme, "Markdown theme: auto, dark, light")
	fs.String(FlagView, d.UI.View, "Initial tickets view: list, board")
	fs.String(FlagPresets, d.UI.Presets, "Path to a filter presets YAML file")
}

// RegisterStubFlags declares td-stub's flags on fs.
func RegisterStubFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagConfig, "", "Path to a YAML config file")
	fs.String(FlagAddr, d.Stub.Addr, "Listen address")
	fs.Bool(FlagSeed, d.Stub.Seed, "Start with sample tickets")
	fs.String(FlagLogFile, d.Log.File, "Write logs to this file (stderr when empty)")
	fs.String(FlagLogLevel, d.Log.Level, "Log level: debug, info, warn, error")
}

// ApplyFlags overrides c with every flag the user set explicitly. Flags
// left at their defaults never override file or environment values.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error
	set := func(name string, apply func() error) {
		if err != nil || fs.Lookup(name) == nil || !fs.Changed(name) {
			return
		}
		err = apply()
	}

	set(FlagAPI, func() (e error) { c.API.BaseURL, e = fs.GetString(FlagAPI); return })
	set(FlagTimeout, func() (e error) { c.API.Timeout, e = fs.GetDuration(FlagTimeout); return })
	set(FlagDebounce, func() (e error) { c.Classifier.Debounce, e = fs.GetDuration(FlagDebounce); return })
	set(FlagMinDesc, func() (e error) { c.Classifier.MinLength, e = fs.GetInt(FlagMinDesc); return })
	set(FlagLogFile, func() (e error) { c.Log.File, e = fs.GetString(FlagLogFile); return })
	set(FlagLogLevel, func() (e error) { c.Log.Level, e = fs.GetString(FlagLogLevel); return })
	set(FlagTheme, func() (e error) { c.UI.Theme, e = fs.GetString(FlagTheme); return })
	set(FlagView, func() (e error) { c.UI.View, e = fs.GetString(FlagView); return })
	set(FlagPresets, func() (e error) { c.UI.Presets, e = fs.GetString(FlagPresets); return })
	set(FlagAddr, func() (e error) { c.Stub.Addr, e = fs.GetString(FlagAddr); return })
	set(FlagSeed, func() (e error) { c.Stub.Seed, e = fs.GetBool(FlagSeed); return })
	return err
}

// FromFlags loads configuration for a parsed flag set: the --config file,
// ./.env, the environment, then the explicitly set flags.
func FromFlags(fs *pflag.FlagSet) (Config, error) {
	path, _ := fs.GetString(FlagConfig)
	cfg, err := Load(LoadOptions{File: path, EnvFiles: []string{DefaultEnvFile}})
	if err != nil {
		return Config{}, err
	}
	if err := cfg.ApplyFlags(fs); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
