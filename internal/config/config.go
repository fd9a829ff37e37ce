// Package config resolves client settings once at startup.
//
// Precedence, lowest to highest:
//
//	defaults < YAML file < .env file < process environment
//
// A .env entry never overrides a variable that is already set in the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables.
const (
	EnvBaseURL        = "RECON_BASE_URL"
	EnvDefaultLabel   = "RECON_DEFAULT_LABEL"
	EnvRequestTimeout = "RECON_REQUEST_TIMEOUT"
	EnvJournal        = "RECON_JOURNAL"
	EnvOutputDir      = "RECON_OUTPUT_DIR"
)

// Defaults.
const (
	DefaultBaseURL   = "http://localhost:5000"
	DefaultLabel     = "DEC 2025"
	DefaultOutputDir = "."
)

// Config is the resolved client configuration.
type Config struct {
	// BaseURL locates the processing and download endpoints.
	// Always absolute http(s) without a trailing slash.
	BaseURL string `yaml:"base_url"`

	// DefaultLabel seeds the submission label.
	DefaultLabel string `yaml:"default_label"`

	// RequestTimeout bounds each request. Zero means none.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Journal is the SQLite journal path. Empty disables journaling.
	Journal string `yaml:"journal"`

	// OutputDir receives downloaded artifacts.
	OutputDir string `yaml:"output_dir"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		DefaultLabel: DefaultLabel,
		OutputDir:    DefaultOutputDir,
	}
}

// Options selects the sources Load reads.
type Options struct {
	// File is a YAML config file. Empty skips it; a missing file is an error.
	File string

	// EnvFile is a dotenv file. Empty skips it; a missing file is an error.
	EnvFile string

	// LookupEnv reads the environment. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load resolves the configuration from opts.
func Load(opts Options) (Config, error) {
	cfg := Defaults()

	if opts.File != "" {
		if err := loadFile(opts.File, &cfg); err != nil {
			return Config{}, err
		}
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var dotenv map[string]string
	if opts.EnvFile != "" {
		var err error
		dotenv, err = godotenv.Read(opts.EnvFile)
		if err != nil {
			return Config{}, fmt.Errorf("read env file %s: %w", opts.EnvFile, err)
		}
	}

	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if v, ok := get(EnvBaseURL); ok {
		cfg.BaseURL = v
	}
	if v, ok := get(EnvDefaultLabel); ok {
		cfg.DefaultLabel = v
	}
	if v, ok := get(EnvRequestTimeout); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvRequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}
	if v, ok := get(EnvJournal); ok {
		cfg.Journal = v
	}
	if v, ok := get(EnvOutputDir); ok {
		cfg.OutputDir = v
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// normalize validates cfg in place.
func (c *Config) normalize() error {
	base, err := NormalizeBaseURL(c.BaseURL)
	if err != nil {
		return err
	}
	c.BaseURL = base

	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout)
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	return nil
}

// ErrInvalidBaseURL reports an unusable base address.
var ErrInvalidBaseURL = errors.New("invalid base URL")

// NormalizeBaseURL checks that raw is an absolute http(s) URL and rebuilds it
// from scheme, host and path without trailing slashes.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidBaseURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme must be http or https in %q", ErrInvalidBaseURL, raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidBaseURL, raw)
	}
	// An empty "?" or "#" parses to zero RawQuery and Fragment.
	if u.ForceQuery || u.RawQuery != "" || u.Fragment != "" || strings.Contains(raw, "#") {
		return "", fmt.Errorf("%w: query and fragment are not allowed in %q", ErrInvalidBaseURL, raw)
	}
	host := u.Host
	if u.User != nil {
		host = u.User.String() + "@" + host
	}
	return u.Scheme + "://" + host + strings.TrimRight(u.EscapedPath(), "/"), nil
}
