// Package config loads the optional spoom.toml project file.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/spoom/pkg/autoload"
	"github.com/matzehuels/spoom/pkg/composer"
	"github.com/matzehuels/spoom/pkg/errors"
	"github.com/matzehuels/spoom/pkg/staging"
)

// FileName is the project configuration file looked up in the project root.
const FileName = "spoom.toml"

// DefaultTTL is how long a decoded index stays in the table cache.
const DefaultTTL = 24 * time.Hour

// Config is the decoded spoom.toml.
type Config struct {
	Autoload AutoloadConfig `toml:"autoload"`
	Staging  StagingConfig  `toml:"staging"`
	Cache    CacheConfig    `toml:"cache"`
}

// AutoloadConfig controls index generation and resolution.
type AutoloadConfig struct {
	Types      []string `toml:"types"`
	Precedence string   `toml:"precedence"`
	Extensions []string `toml:"extensions"`
	PHP        bool     `toml:"php"`
}

// StagingConfig controls public file staging.
type StagingConfig struct {
	Directory string   `toml:"directory"`
	Types     []string `toml:"types"`
}

// CacheConfig selects the table cache backend.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       Duration `toml:"ttl"`
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no spoom.toml exists.
func Default() *Config {
	return &Config{
		Autoload: AutoloadConfig{
			Types:      []string{"spoom", "spoom-extension"},
			Precedence: string(composer.RootLast),
			Extensions: append([]string(nil), autoload.DefaultExtensions...),
			PHP:        true,
		},
		Staging: StagingConfig{
			Types: append([]string(nil), staging.DefaultTypes...),
		},
		Cache: CacheConfig{
			Backend:   "file",
			RedisAddr: "localhost:6379",
			TTL:       Duration{DefaultTTL},
		},
	}
}

// Load reads spoom.toml from root. A missing file yields [Default]. Keys
// absent from the file keep their default values.
func Load(root string) (*Config, error) {
	cfg := Default()
	path := filepath.Join(root, FileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	if _, err := composer.ParsePrecedence(c.Autoload.Precedence); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "autoload.precedence")
	}
	if len(c.Autoload.Types) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "autoload.types cannot be empty")
	}
	if len(c.Autoload.Extensions) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "autoload.extensions cannot be empty")
	}
	for _, ext := range c.Autoload.Extensions {
		if len(ext) < 2 || ext[0] != '.' {
			return errors.New(errors.ErrCodeInvalidConfig, "autoload.extensions: invalid extension %q", ext)
		}
	}
	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend: unknown backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	return nil
}

// Precedence returns the parsed autoload precedence.
func (c *Config) Precedence() composer.Precedence {
	p, err := composer.ParsePrecedence(c.Autoload.Precedence)
	if err != nil {
		return composer.RootLast
	}
	return p
}
