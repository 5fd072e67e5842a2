package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

// FileName is the configuration file name looked up next to the netlist and
// in the working directory.
const FileName = "addfi.yaml"

// Config is the top-level configuration for addfi
type Config struct {
	// Pass holds the defaults for the fault injection pass. Arguments given
	// on the command line are applied on top of them.
	Pass PassConfig `json:"pass,omitempty"`

	// Top names the module to tag as top before running the pass. Empty
	// keeps the tags of the input netlist.
	Top string `json:"top,omitempty"`

	// Validate checks the input netlist against the embedded schema
	Validate *bool `json:"validate,omitempty"`

	// Log configures logging
	Log LogConfig `json:"log,omitempty"`

	// Output contains optional side outputs
	Output OutputConfig `json:"output,omitempty"`
}

// PassConfig mirrors the pass options
type PassConfig struct {
	InjectFF   *bool  `json:"injectFF,omitempty"`
	InjectComb *bool  `json:"injectComb,omitempty"`
	AddInput   *bool  `json:"addInput,omitempty"`
	Type       string `json:"type,omitempty"`

	// Select is a list of <module-glob> or <module-glob>/<cell-glob>
	// patterns. Empty selects the whole design.
	Select []string `json:"select,omitempty"`
}

// LogConfig controls the logger
type LogConfig struct {
	// Level is a logrus level name: "debug", "info", "warn", "error"
	Level string `json:"level,omitempty"`

	// Format is "text" or "json"
	Format string `json:"format,omitempty"`
}

// OutputConfig names side outputs written by addfi run
type OutputConfig struct {
	// Facts is the path of the fact tables JSON
	Facts string `json:"facts,omitempty"`

	// Timing is the path of the phase timing JSONL
	Timing string `json:"timing,omitempty"`
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Pass: PassConfig{
			InjectFF:   boolPtr(true),
			InjectComb: boolPtr(true),
			AddInput:   boolPtr(true),
			Type:       "xor",
		},
		Validate: boolPtr(true),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func boolPtr(v bool) *bool {
	return &v
}

// Load finds and loads the configuration file
// Search order:
//  1. ./addfi.yaml (current working directory)
//  2. ./.addfi.yaml (current working directory)
//  3. <dir of inputPath>/addfi.yaml (if different from cwd)
//  4. ~/.config/addfi/config.yaml
//
// Returns DefaultConfig if no config file is found
func Load(inputPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, FileName),
		filepath.Join(cwd, "."+FileName),
	}

	if inputPath != "" {
		dir := inputPath
		if info, err := os.Stat(inputPath); err == nil && !info.IsDir() {
			dir = filepath.Dir(inputPath)
		}
		absDir, _ := filepath.Abs(dir)
		if absDir != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(dir, FileName),
				filepath.Join(dir, "."+FileName),
			)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "addfi", "config.yaml"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file. YAML and JSON are both
// accepted.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}

	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %s", path)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.Pass.InjectFF == nil {
		c.Pass.InjectFF = boolPtr(true)
	}
	if c.Pass.InjectComb == nil {
		c.Pass.InjectComb = boolPtr(true)
	}
	if c.Pass.AddInput == nil {
		c.Pass.AddInput = boolPtr(true)
	}
	if c.Pass.Type == "" {
		c.Pass.Type = "xor"
	}
	if c.Validate == nil {
		c.Validate = boolPtr(true)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "writing config file")
	}

	return nil
}

// PassArgs renders the pass section in the argument syntax of the pass, so
// command line arguments can be parsed on top of it.
func (c *Config) PassArgs() []string {
	var args []string
	if c.Pass.InjectFF != nil && !*c.Pass.InjectFF {
		args = append(args, "-no-ff")
	}
	if c.Pass.InjectComb != nil && !*c.Pass.InjectComb {
		args = append(args, "-no-comb")
	}
	if c.Pass.AddInput != nil && !*c.Pass.AddInput {
		args = append(args, "-no-add-input")
	}
	if c.Pass.Type != "" {
		args = append(args, "-type", c.Pass.Type)
	}
	return append(args, c.Pass.Select...)
}

// ValidateEnabled reports whether input netlists are schema checked
func (c *Config) ValidateEnabled() bool {
	return c.Validate == nil || *c.Validate
}
