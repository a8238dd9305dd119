// Package config loads the skemaform CLI configuration file.
//
// Secrets never live in the file: the content store token is read from the
// environment variable named by provider.token_env.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

const (
	ProviderDir  = "dir"
	ProviderHTTP = "http"
)

// LogConfig selects logger level and output format.
type LogConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"auto"`
}

// ProviderConfig describes where schemas and values come from.
type ProviderConfig struct {
	Kind        string        `yaml:"kind" default:"dir"`
	SchemaDir   string        `yaml:"schema_dir" default:"schemas"`
	ValueDir    string        `yaml:"value_dir" default:"values"`
	BaseURL     string        `yaml:"base_url"`
	ContentType string        `yaml:"content_type" default:"jsonSchema"`
	Locale      string        `yaml:"locale" default:"en-US"`
	TokenEnv    string        `yaml:"token_env" default:"SKEMAFORM_TOKEN"`
	Timeout     time.Duration `yaml:"timeout" default:"10s"`

	// Token is injected from the environment.
	Token string `yaml:"-"`
}

// Config is the top-level configuration.
type Config struct {
	Log         LogConfig      `yaml:"log"`
	Provider    ProviderConfig `yaml:"provider"`
	Envelope    bool           `yaml:"envelope"`
	Language    string         `yaml:"language" default:"en"`
	MaxRefDepth int            `yaml:"max_ref_depth" default:"32"`
}

// Default returns a configuration holding only default values.
func Default() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		panic(err)
	}
	return cfg
}

// Load reads path (an empty path selects defaults), applies defaults, injects
// secrets from the process environment and validates the result. Relative
// directories are resolved against the file's directory.
func Load(path string) (*Config, error) {
	return LoadEnv(path, os.Getenv)
}

// LoadEnv is Load with an explicit environment lookup.
func LoadEnv(path string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := defaults.Set(cfg); err != nil {
		return nil, err
	}
	if path != "" {
		base := filepath.Dir(path)
		cfg.Provider.SchemaDir = resolve(base, cfg.Provider.SchemaDir)
		cfg.Provider.ValueDir = resolve(base, cfg.Provider.ValueDir)
	}
	cfg.Provider.Token = getenv(cfg.Provider.TokenEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Validate reports inconsistent settings.
func (c *Config) Validate() error {
	switch c.Provider.Kind {
	case ProviderDir:
		if c.Provider.SchemaDir == "" {
			return errors.New("provider.schema_dir is required for the dir provider")
		}
	case ProviderHTTP:
		if c.Provider.BaseURL == "" {
			return errors.New("provider.base_url is required for the http provider")
		}
		if c.Provider.Token == "" {
			return fmt.Errorf("the http provider needs a token in $%s", c.Provider.TokenEnv)
		}
	default:
		return fmt.Errorf("unknown provider.kind %q", c.Provider.Kind)
	}
	if c.MaxRefDepth < 1 {
		return fmt.Errorf("max_ref_depth must be positive, got %d", c.MaxRefDepth)
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("provider.timeout must be positive, got %s", c.Provider.Timeout)
	}
	return nil
}
