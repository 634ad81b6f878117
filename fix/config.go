// Package fix is the public entry point: it loads the configuration, builds
// the engine and runs it over files and directories.
package fix

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/condfix/internal"
	"github.com/gnolang/condfix/internal/syntax"
	tt "github.com/gnolang/condfix/internal/types"
)

const DefaultConfigFile = ".condfix.yaml"

// Config represents the overall configuration.
type Config struct {
	Name       string `yaml:"name"`
	PHPVersion string `yaml:"php_version"`

	// Functions extends the catalogue of recognised global functions.
	Functions []string `yaml:"functions,omitempty"`
	// StrictFunctions are known to return booleans, so comparisons with
	// them use ===.
	StrictFunctions []string `yaml:"strict_functions,omitempty"`
	StrictPattern   string   `yaml:"strict_pattern,omitempty"`

	IgnorePaths []string `yaml:"ignore_paths,omitempty"`
	CacheDir    string   `yaml:"cache_dir,omitempty"`

	Rules map[string]tt.ConfigRule `yaml:"rules"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Name:        "condfix",
		PHPVersion:  syntax.DefaultVersion,
		IgnorePaths: []string{"vendor"},
		Rules:       internal.DefaultRules(),
	}
}

// LoadConfig reads the configuration at path over the defaults. An empty
// path or a missing file yields DefaultConfig.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("error parsing %s: %w", path, err)
	}

	return config, nil
}

// WriteConfig writes config as YAML to path.
func WriteConfig(path string, config Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

func (c Config) engineOptions() internal.Options {
	return internal.Options{
		Rules:           c.Rules,
		PHPVersion:      c.PHPVersion,
		Functions:       c.Functions,
		StrictFunctions: c.StrictFunctions,
		StrictPattern:   c.StrictPattern,
	}
}
