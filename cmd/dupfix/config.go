package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the validated run parameters. It is immutable for the run
// and passed by pointer into every component.
type Config struct {
	Root                string   `json:"path,omitempty"`
	MinLines            int      `json:"min_lines"`
	MinTokens           int      `json:"min_tokens"`
	SimilarityThreshold float64  `json:"similarity_threshold"`
	Languages           []string `json:"languages"`
	Exclude             []string `json:"exclude_patterns"`
	SafeMode            bool     `json:"safe_mode"`
	SuppressDuplicates  bool     `json:"suppress_duplicates"`

	TopN    int    `json:"-"`
	NoCache bool   `json:"-"`
	JSONOut string `json:"-"`
	Workers int    `json:"-"`
}

// DefaultConfig mirrors the documented defaults of the CLI surface.
func DefaultConfig() *Config {
	return &Config{
		Root:                ".",
		MinLines:            4,
		MinTokens:           30,
		SimilarityThreshold: 0.85,
		Languages:           []string{"python", "javascript", "java", "html", "css"},
		Exclude:             []string{"*.min.js", "*.min.css", "node_modules/*", ".git/*"},
		SafeMode:            true,
		SuppressDuplicates:  true,
		TopN:                10,
	}
}

// Validate fails fast before any analysis starts. No partial state is
// produced for an invalid configuration.
func (c *Config) Validate() error {
	if c.MinLines < 1 {
		return fmt.Errorf("invalid config: min_lines must be a positive integer, got %d", c.MinLines)
	}
	if c.MinTokens < 1 {
		return fmt.Errorf("invalid config: min_tokens must be a positive integer, got %d", c.MinTokens)
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("invalid config: similarity_threshold must be in (0,1], got %g", c.SimilarityThreshold)
	}
	if len(c.Languages) == 0 {
		return fmt.Errorf("invalid config: at least one language is required")
	}
	for _, tag := range c.Languages {
		if LookupLanguage(tag) == nil {
			return fmt.Errorf("invalid config: unknown language tag %q", tag)
		}
	}
	return nil
}

// LoadConfigFile merges values from a JSON config file into c. Explicit
// command-line flags are applied after the file, so they win.
func (c *Config) LoadConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}
