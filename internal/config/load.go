package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the config file when no path is given.
const EnvConfigPath = "YUMMY_CONFIG"

// DefaultFile is used when neither a path nor YUMMY_CONFIG is given.
const DefaultFile = "yummy.yaml"

// ErrUnsupportedFormat is returned for files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Path returns path, or YUMMY_CONFIG, or DefaultFile.
func Path(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	return DefaultFile
}

// Load reads a configuration file on top of Default. The format follows the
// extension: .yaml/.yml or .toml. Unknown keys are rejected.
func Load(path string) (FileConfig, error) {
	cfg := Default()

	// Clean the path to prevent directory traversal attacks
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath) // #nosec G304 - config path comes from the user
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := decode(cleanPath, data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Resolve loads the file (a missing default file is not an error), applies
// environment overrides and validates.
func Resolve(path string) (FileConfig, error) {
	explicit := path != "" || os.Getenv(EnvConfigPath) != ""
	path = Path(path)

	cfg, err := Load(path)
	if err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
		cfg = Default()
	}

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("environment: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *FileConfig) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unknown keys: %v", undecoded)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q (want .yaml, .yml or .toml)", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
