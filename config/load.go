package config

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"kiji-testing/types"
)

// EnvPrefix namespaces the environment variable overrides,
// eg. KIJI_BENTO_VERSION overrides Harness.Bento.Version.
const EnvPrefix = "KIJI"

// FromFile loads config from a file, layering it over the given
// defaults. A missing file yields the defaults with env overrides
// applied.
func FromFile(path string, def *Harness) (*Harness, error) {
	f, err := os.Open(path)
	switch {
	case os.IsNotExist(err):
		cfg := *def
		if err := envOverrides(&cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	case err != nil:
		return nil, types.Wrap(types.ErrReadConfigFailed, err)
	}
	defer f.Close()

	return FromReader(f, def)
}

// FromReader loads config from a reader instance.
func FromReader(reader io.Reader, def *Harness) (*Harness, error) {
	cfg := *def
	if _, err := toml.NewDecoder(reader).Decode(&cfg); err != nil {
		return nil, types.Wrap(types.ErrReadConfigFailed, err)
	}

	if err := envOverrides(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envOverrides(cfg *Harness) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return types.Wrapf(types.ErrInvalidConfig, "processing env var overrides: %v", err)
	}
	return nil
}
