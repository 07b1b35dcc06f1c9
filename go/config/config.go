// Package config holds isoview settings, read from an optional TOML file.
package config

import (
	"bytes"
	"os"
	"runtime"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

type Config struct {
	// Listen is the HTTP address served by "isoview serve".
	Listen string `toml:"listen"`
	// Packs are resource pack directories or zips, highest priority first.
	// The client jar, if any, is appended last.
	Packs []string `toml:"packs"`
	// Scale is the default pixels per model unit.
	Scale float64 `toml:"scale"`
	// Workers sizes the geometry worker pool; 0 processes in process.
	Workers int `toml:"workers"`
	// CacheDB is the sqlite preview cache; empty disables it.
	CacheDB string `toml:"cache_db"`

	MinecraftVersion string `toml:"minecraft_version"`
	// JarDir holds downloaded client jars.
	JarDir string `toml:"jar_dir"`
	// RemoteWorker is a ws:// URL of another isoview's geometry socket.
	RemoteWorker string `toml:"remote_worker"`
	// VerifyPacks re-encodes every decoded pack file and logs mismatches.
	VerifyPacks bool `toml:"verify_packs"`
}

func Default() *Config {
	return &Config{
		Listen:           "127.0.0.1:9999",
		Scale:            2,
		Workers:          runtime.NumCPU(),
		MinecraftVersion: "latest",
		JarDir:           ".",
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	if err := Decode(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return cfg, cfg.Validate()
}

// Decode parses TOML into cfg. Unknown keys are rejected.
func Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

func (c *Config) Validate() error {
	if c.Scale <= 0 {
		return errors.Errorf("scale must be positive, got %v", c.Scale)
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// Save writes the config as TOML.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
