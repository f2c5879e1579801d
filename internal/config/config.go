// Package config loads lineageflow's layered configuration: an optional
// YAML file overridden field-by-field by CLI flags, the same
// flags-override-file layering the teacher applies informally across its
// command files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shivasurya/lineageflow/internal/lineagelog"
)

// Config is lineageflow's resolved configuration.
type Config struct {
	SummariesDir     string                `yaml:"summariesDir"`
	DescriptionsFile string                `yaml:"descriptionsFile"`
	ResultsDir       string                `yaml:"resultsDir"`
	EdgeBudget       int                   `yaml:"edgeBudget"` // 0 means unbounded
	Format           lineagelog.FormatKind `yaml:"format"`
}

// Default returns lineageflow's baseline configuration before any file
// or flag overrides are applied.
func Default() Config {
	return Config{
		SummariesDir:     "summaries",
		DescriptionsFile: "descriptions.yaml",
		ResultsDir:       "results",
		EdgeBudget:       0,
		Format:           lineagelog.FormatJSON,
	}
}

// Load reads path (if it exists) and applies it on top of Default().
// A missing file is not an error; lineageflow runs on defaults plus
// flags alone.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyOverrides merges non-zero flag values onto cfg, in cobra's usual
// flags-win-over-file precedence.
func (c Config) ApplyOverrides(summariesDir, descriptionsFile, resultsDir string, edgeBudget int, format string) Config {
	if summariesDir != "" {
		c.SummariesDir = summariesDir
	}
	if descriptionsFile != "" {
		c.DescriptionsFile = descriptionsFile
	}
	if resultsDir != "" {
		c.ResultsDir = resultsDir
	}
	if edgeBudget > 0 {
		c.EdgeBudget = edgeBudget
	}
	if format != "" {
		c.Format = lineagelog.FormatKind(format)
	}
	return c
}

// Validate reports whether c names a recognized Format.
func (c Config) Validate() error {
	switch c.Format {
	case lineagelog.FormatJSON, lineagelog.FormatSARIF:
		return nil
	default:
		return fmt.Errorf("config: unknown format %q: want %q or %q", c.Format, lineagelog.FormatJSON, lineagelog.FormatSARIF)
	}
}
