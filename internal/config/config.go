package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
)

func configFilenames() []string {
	return []string{"outline.toml", ".outline.toml"}
}

// LoadOrDefault loads configPath, or the nearest config file when configPath
// is empty. Without any config file it returns Default for the working
// directory.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath != "" {
		return Load(configPath)
	}

	dir, err := os.Getwd()
	if err != nil {
		return nil, oops.Wrapf(err, "getting working directory")
	}

	path, found, err := searchUpward(dir)
	if err != nil {
		return nil, err
	}
	if !found {
		return Default(dir), nil
	}
	return Load(path)
}

// Load reads the config at configPath, or the nearest config file above the
// working directory when configPath is empty.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		found, err := FindConfigFile()
		if err != nil {
			return nil, err
		}
		configPath = found
	} else if err := requireFile(configPath); err != nil {
		return nil, err
	}

	path, err := filepath.Abs(configPath)
	if err != nil {
		return nil, oops.Wrapf(err, "resolving absolute config path")
	}

	cfg, err := decode(path)
	if err != nil {
		return nil, err
	}

	cfg.ConfigDir = filepath.Dir(path)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Output = cfg.OutputDir()

	return cfg, nil
}

func decode(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, oops.
			Code("CONFIG_INVALID").
			With("path", path).
			Hint("Fix the TOML syntax of the config file").
			Wrapf(err, "loading config from %q", path)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.
			Code("CONFIG_INVALID").
			With("path", path).
			Hint("Check value types against 'outline init' output").
			Wrapf(err, "decoding config from %q", path)
	}
	return &cfg, nil
}

func requireFile(path string) error {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrNotExist):
		return oops.
			Code("CONFIG_NOT_FOUND").
			With("path", path).
			Hint("Create the file or pass a valid --config path").
			Errorf("config file %q does not exist", path)
	default:
		return oops.Wrapf(err, "checking config file %q", path)
	}
}

// FindConfigFile returns the nearest config file above the working directory.
func FindConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", oops.Wrapf(err, "getting working directory")
	}

	path, found, err := searchUpward(dir)
	if err != nil {
		return "", err
	}
	if !found {
		return "", oops.
			Code("CONFIG_NOT_FOUND").
			Hint("Run 'outline init' to create a config file").
			Errorf("no outline.toml or .outline.toml found in any parent directory")
	}
	return path, nil
}

func searchUpward(dir string) (string, bool, error) {
	for {
		for _, name := range configFilenames() {
			path := filepath.Join(dir, name)
			_, err := os.Stat(path)
			if err == nil {
				return path, true, nil
			}
			if !errors.Is(err, os.ErrNotExist) {
				return "", false, oops.Wrapf(err, "checking for config file at %q", path)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}
