package cli

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/gejjech/flowviz/pkg/errors"
)

// defaultConfigFile is looked up in the working directory when --config
// is not given.
const defaultConfigFile = "flowviz.toml"

// Config holds optional defaults loaded from a TOML file.
// Command-line flags always win over config values.
type Config struct {
	Render RenderConfig `toml:"render"`
	Serve  ServeConfig  `toml:"serve"`
}

// RenderConfig supplies render command defaults.
type RenderConfig struct {
	Format string `toml:"format"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Seed   uint64 `toml:"seed"`
}

// ServeConfig supplies serve command defaults.
type ServeConfig struct {
	Addr     string `toml:"addr"`
	Cache    string `toml:"cache"` // "file", "redis", or "none"
	CacheDir string `toml:"cache_dir"`
	RedisURL string `toml:"redis_url"`
}

// loadConfig reads the config file at path, or the default flowviz.toml
// in the working directory. A missing default file yields a zero config;
// a missing explicit path is an error.
func loadConfig(path string) (Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config file not found: %s", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return cfg, nil
}
