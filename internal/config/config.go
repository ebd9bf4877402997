// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the configuration for smellcheck
type Config struct {
	// General settings
	Version     string `yaml:"version" json:"version"`
	ProjectName string `yaml:"project_name,omitempty" json:"project_name,omitempty"`

	// Analysis settings
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Smell-specific configurations
	Smells SmellsConfig `yaml:"smells" json:"smells"`

	// Scope-local overrides: context name -> smell name -> options
	Overrides map[string]map[string]SmellOverride `yaml:"overrides,omitempty" json:"overrides,omitempty"`

	// File patterns
	Files FilesConfig `yaml:"files" json:"files"`
}

type AnalysisConfig struct {
	// Quality score thresholds
	ScoreThresholds ScoreThresholds `yaml:"score_thresholds" json:"score_thresholds"`

	// Parallel analysis
	MaxWorkers int `yaml:"max_workers" json:"max_workers"`
}

type ScoreThresholds struct {
	Excellent int `yaml:"excellent" json:"excellent"` // >= 90
	Good      int `yaml:"good" json:"good"`           // >= 75
	Fair      int `yaml:"fair" json:"fair"`           // >= 50
	Poor      int `yaml:"poor" json:"poor"`           // < 50
}

type OutputConfig struct {
	// Default output format
	Format string `yaml:"format" json:"format"`

	// Colorized output
	Colors bool `yaml:"colors" json:"colors"`

	// Verbosity level
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Output file path (optional)
	OutputFile string `yaml:"output_file,omitempty" json:"output_file,omitempty"`
}

type SmellsConfig struct {
	DuplicateMethodCall        SmellConfig `yaml:"DuplicateMethodCall" json:"DuplicateMethodCall"`
	FeatureEnvy                SmellConfig `yaml:"FeatureEnvy" json:"FeatureEnvy"`
	InstanceVariableAssumption SmellConfig `yaml:"InstanceVariableAssumption" json:"InstanceVariableAssumption"`
	TooManyInstanceVariables   SmellConfig `yaml:"TooManyInstanceVariables" json:"TooManyInstanceVariables"`
}

// SmellConfig holds the options of one detector. Each detector reads only
// the keys it understands.
type SmellConfig struct {
	Enabled              bool     `yaml:"enabled" json:"enabled"`
	MaxAllowedCalls      int      `yaml:"max_allowed_calls,omitempty" json:"max_allowed_calls,omitempty"`
	AllowCalls           []string `yaml:"allow_calls,omitempty" json:"allow_calls,omitempty"`
	MaxInstanceVariables int      `yaml:"max_instance_variables,omitempty" json:"max_instance_variables,omitempty"`
}

// SmellOverride is a partial SmellConfig; nil fields keep the global value.
type SmellOverride struct {
	Enabled              *bool    `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	MaxAllowedCalls      *int     `yaml:"max_allowed_calls,omitempty" json:"max_allowed_calls,omitempty"`
	AllowCalls           []string `yaml:"allow_calls,omitempty" json:"allow_calls,omitempty"`
	MaxInstanceVariables *int     `yaml:"max_instance_variables,omitempty" json:"max_instance_variables,omitempty"`
}

type FilesConfig struct {
	// Exclude patterns, matched against base names and paths
	Exclude []string `yaml:"exclude" json:"exclude"`

	// Max file size (in KB)
	MaxFileSize int `yaml:"max_file_size" json:"max_file_size"`
}

const (
	DefaultMaxAllowedCalls      = 1
	DefaultMaxInstanceVariables = 4
)

func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Analysis: AnalysisConfig{
			ScoreThresholds: ScoreThresholds{
				Excellent: 90,
				Good:      75,
				Fair:      50,
				Poor:      0,
			},
			MaxWorkers: 4,
		},
		Output: OutputConfig{
			Format:  "console",
			Colors:  true,
			Verbose: false,
		},
		Smells: SmellsConfig{
			DuplicateMethodCall: SmellConfig{
				Enabled:         true,
				MaxAllowedCalls: DefaultMaxAllowedCalls,
				AllowCalls:      []string{},
			},
			FeatureEnvy: SmellConfig{
				Enabled: true,
			},
			InstanceVariableAssumption: SmellConfig{
				Enabled: true,
			},
			TooManyInstanceVariables: SmellConfig{
				Enabled:              true,
				MaxInstanceVariables: DefaultMaxInstanceVariables,
			},
		},
		Files: FilesConfig{
			Exclude:     []string{"vendor/**", ".git/**", "node_modules/**"},
			MaxFileSize: 1024, // 1MB
		},
	}
}

// LoadConfig loads configuration from file or returns default
func LoadConfig(configPath string) (*Config, error) {
	// If no config path provided, look for default config files
	if configPath == "" {
		configPath = findConfigFile()
	}

	// If still no config found, return default
	if configPath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	return Parse(data, configPath)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte, source string) (*Config, error) {
	config := DefaultConfig() // Start with defaults

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", source, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// findConfigFile looks for config files in common locations
func findConfigFile() string {
	possiblePaths := []string{
		".smellcheck.yml",
		".smellcheck.yaml",
		"smellcheck.yml",
		"smellcheck.yaml",
		".config/smellcheck.yml",
		".config/smellcheck.yaml",
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	st := c.Analysis.ScoreThresholds
	if st.Excellent < st.Good || st.Good < st.Fair || st.Fair < st.Poor {
		return fmt.Errorf("score thresholds must be in descending order")
	}

	validFormats := []string{"console", "json"}
	formatValid := false
	for _, format := range validFormats {
		if c.Output.Format == format {
			formatValid = true
			break
		}
	}
	if !formatValid {
		return fmt.Errorf("invalid output format: %s (valid: %v)", c.Output.Format, validFormats)
	}

	if c.Analysis.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be at least 1")
	}

	if c.Smells.DuplicateMethodCall.MaxAllowedCalls < 1 {
		return fmt.Errorf("max_allowed_calls must be at least 1")
	}
	if c.Smells.TooManyInstanceVariables.MaxInstanceVariables < 0 {
		return fmt.Errorf("max_instance_variables must not be negative")
	}
	if err := validatePatterns(c.Smells.DuplicateMethodCall.AllowCalls); err != nil {
		return err
	}

	for context, smells := range c.Overrides {
		for smell, override := range smells {
			if !IsKnownSmell(smell) {
				return fmt.Errorf("override for %s names unknown smell %q", context, smell)
			}
			if override.MaxAllowedCalls != nil && *override.MaxAllowedCalls < 1 {
				return fmt.Errorf("override for %s: max_allowed_calls must be at least 1", context)
			}
			if override.MaxInstanceVariables != nil && *override.MaxInstanceVariables < 0 {
				return fmt.Errorf("override for %s: max_instance_variables must not be negative", context)
			}
			if err := validatePatterns(override.AllowCalls); err != nil {
				return fmt.Errorf("override for %s: %w", context, err)
			}
		}
	}

	return nil
}

func validatePatterns(entries []string) error {
	for _, entry := range entries {
		if pattern, ok := patternOf(entry); ok {
			if _, err := regexp.Compile(pattern); err != nil {
				return fmt.Errorf("invalid allow_calls pattern %q: %w", entry, err)
			}
		}
	}
	return nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateConfig creates a sample configuration file
func GenerateConfig(configPath string) error {
	config := DefaultConfig()
	return config.SaveConfig(configPath)
}

// IsKnownSmell reports whether smell names a configurable detector.
func IsKnownSmell(smell string) bool {
	switch smell {
	case "DuplicateMethodCall", "FeatureEnvy", "InstanceVariableAssumption", "TooManyInstanceVariables":
		return true
	default:
		return false
	}
}

// Smell returns the global options of a smell. Detectors without options
// of their own are always enabled.
func (c *Config) Smell(smell string) SmellConfig {
	switch smell {
	case "DuplicateMethodCall":
		return c.Smells.DuplicateMethodCall
	case "FeatureEnvy":
		return c.Smells.FeatureEnvy
	case "InstanceVariableAssumption":
		return c.Smells.InstanceVariableAssumption
	case "TooManyInstanceVariables":
		return c.Smells.TooManyInstanceVariables
	default:
		return SmellConfig{Enabled: true}
	}
}

// ForContext resolves the options of smell for a scope. names lists the
// scope's qualified names innermost first; the nearest one carrying an
// override for smell wins, otherwise the global options apply.
func (c *Config) ForContext(smell string, names []string) SmellConfig {
	resolved := c.Smell(smell)
	for _, name := range names {
		override, ok := c.Overrides[name][smell]
		if !ok {
			continue
		}
		if override.Enabled != nil {
			resolved.Enabled = *override.Enabled
		}
		if override.MaxAllowedCalls != nil {
			resolved.MaxAllowedCalls = *override.MaxAllowedCalls
		}
		if override.AllowCalls != nil {
			resolved.AllowCalls = override.AllowCalls
		}
		if override.MaxInstanceVariables != nil {
			resolved.MaxInstanceVariables = *override.MaxInstanceVariables
		}
		break
	}
	return resolved
}

// AllowsCall reports whether signature is exempt from duplicate-call checks.
// Entries written as /re/ are regular expressions matched anywhere in the
// signature; all other entries must match exactly.
func (s SmellConfig) AllowsCall(signature string) bool {
	for _, entry := range s.AllowCalls {
		pattern, ok := patternOf(entry)
		if !ok {
			if entry == signature {
				return true
			}
			continue
		}
		re, err := regexp.Compile(pattern)
		if err == nil && re.MatchString(signature) {
			return true
		}
	}
	return false
}

// IsExcluded reports whether path matches one of the exclude patterns. A
// pattern ending in "/**" excludes everything below a directory of that name.
func IsExcluded(patterns []string, path string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range patterns {
		if dir, ok := strings.CutSuffix(pattern, "/**"); ok {
			for _, part := range strings.Split(slashed, "/") {
				if part == dir {
					return true
				}
			}
			continue
		}
		if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, slashed); matched {
			return true
		}
	}
	return false
}

func patternOf(entry string) (string, bool) {
	if len(entry) >= 2 && strings.HasPrefix(entry, "/") && strings.HasSuffix(entry, "/") {
		return entry[1 : len(entry)-1], true
	}
	return "", false
}
