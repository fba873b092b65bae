package encoder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the locations the encoder reads from and writes to.
type Config struct {
	// SourceRoot is the directory holding the summary document and the
	// per-opcode collections. Default: ProcessorTests/8088/v1.
	SourceRoot string `json:"source_root" yaml:"source_root"`

	// Summary is the summary document name, relative to SourceRoot.
	// Default: 8088.json.
	Summary string `json:"summary" yaml:"summary"`

	// CollectionSuffix is appended to the encoded opcode to name its
	// collection file. Default: .json.gz.
	CollectionSuffix string `json:"collection_suffix" yaml:"collection_suffix"`

	// OutputDir is where fixture files are written. Default: current directory.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// OutputPattern names a fixture file; %s is replaced by the encoded
	// opcode. Default: opcode-%s.dat.
	OutputPattern string `json:"output_pattern" yaml:"output_pattern"`

	// Opcodes restricts the run to the listed encoded opcodes. Empty means
	// every opcode in the summary.
	Opcodes []string `json:"opcodes,omitempty" yaml:"opcodes,omitempty"`
}

// DefaultConfig returns the layout of an upstream checkout.
func DefaultConfig() *Config {
	return &Config{
		SourceRoot:       "ProcessorTests/8088/v1",
		Summary:          "8088.json",
		CollectionSuffix: ".json.gz",
		OutputDir:        ".",
		OutputPattern:    "opcode-%s.dat",
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadConfig loads a Config from a JSON or YAML file. Fields missing from
// the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read encoder config file: %w", err)
	}

	config := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse encoder config: %w", err)
	}

	return config, nil
}

// SaveConfig writes the Config as JSON or YAML, chosen by extension.
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to serialize encoder config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write encoder config file: %w", err)
	}

	return nil
}

// Validate checks that every location is set.
func (c *Config) Validate() error {
	if c.SourceRoot == "" {
		return fmt.Errorf("source_root must be set")
	}
	if c.Summary == "" {
		return fmt.Errorf("summary must be set")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must be set")
	}
	if strings.Count(c.OutputPattern, "%s") != 1 {
		return fmt.Errorf("output_pattern must contain exactly one %%s")
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Opcodes = append([]string(nil), c.Opcodes...)
	return &clone
}

// SummaryPath is the location of the summary document.
func (c *Config) SummaryPath() string {
	return filepath.Join(c.SourceRoot, c.Summary)
}

// SourcePath is the location of an opcode's test-case collection.
func (c *Config) SourcePath(opcode string) string {
	return filepath.Join(c.SourceRoot, opcode+c.CollectionSuffix)
}

// OutputPath is the location of an opcode's fixture file.
func (c *Config) OutputPath(opcode string) string {
	return filepath.Join(c.OutputDir, fmt.Sprintf(c.OutputPattern, opcode))
}
