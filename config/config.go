// Package config reads the preferences of the command line tools: built-in
// defaults, overridden by chiptrack/config.yml in the user config dir.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Volume       int
	Extensions   []string
	Instrument   string
	DrumKit      string
	TicksPerBeat int

	// YmlError is the error reading the user config, if it exists but
	// could not be parsed.
	YmlError error `yaml:"-"`
}

//go:embed config.yml
var defaultConfigYaml []byte

func loadDefaultConfig() Config {
	var config Config
	err := yaml.UnmarshalStrict(defaultConfigYaml, &config)
	if err != nil {
		panic(fmt.Errorf("failed to unmarshal config: %w", err))
	}
	return config
}

// ReadCustomConfigYml modifies the target argument, i.e. needs a pointer
func ReadCustomConfigYml(filename string, target interface{}) (exists bool, err error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return false, err
	}
	return ReadConfigYml(filepath.Join(configDir, "chiptrack", filename), target)
}

// ReadConfigYml unmarshals the file into target. Fields missing from the
// file are left untouched, so target should hold the defaults.
func ReadConfigYml(path string, target interface{}) (exists bool, err error) {
	bytes, err2 := os.ReadFile(path)
	if err2 != nil {
		return false, err2
	}
	err = yaml.UnmarshalStrict(bytes, target)
	return true, err
}

// Default returns the built-in configuration.
func Default() Config {
	return loadDefaultConfig()
}

// Load returns the built-in configuration overridden with the user's
// config.yml. A missing user config is not an error; a broken one is
// reported in YmlError and the defaults are used for the fields that were
// not read.
func Load() Config {
	config := loadDefaultConfig()
	exists, err := ReadCustomConfigYml("config.yml", &config)
	if exists {
		config.YmlError = err
	}
	return config
}

// Validate checks that the values are usable by the tools.
func (c *Config) Validate() error {
	if c.Volume < 0 || c.Volume > 1024 {
		return fmt.Errorf("volume should be 0 .. 1024 (was %v)", c.Volume)
	}
	if c.TicksPerBeat < 1 || c.TicksPerBeat > 255 {
		return fmt.Errorf("ticksperbeat should be 1 .. 255 (was %v)", c.TicksPerBeat)
	}
	for _, e := range c.Extensions {
		switch e {
		case "bin", "hex", "ts", "h":
		default:
			return fmt.Errorf("unknown output extension %q", e)
		}
	}
	return nil
}
