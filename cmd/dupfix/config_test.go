package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.MinLines = 0
	require.ErrorContains(t, bad.Validate(), "min_lines")

	bad = DefaultConfig()
	bad.MinTokens = -1
	require.ErrorContains(t, bad.Validate(), "min_tokens")

	bad = DefaultConfig()
	bad.SimilarityThreshold = 1.5
	require.ErrorContains(t, bad.Validate(), "similarity_threshold")

	bad = DefaultConfig()
	bad.SimilarityThreshold = 0
	require.ErrorContains(t, bad.Validate(), "similarity_threshold")

	bad = DefaultConfig()
	bad.Languages = nil
	require.ErrorContains(t, bad.Validate(), "language")

	bad = DefaultConfig()
	bad.Languages = []string{"python", "cobol"}
	require.ErrorContains(t, bad.Validate(), "cobol")
}

func TestLoadConfigFileMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dupfix.json")
	content := `{
  "min_lines": 6,
  "similarity_threshold": 0.9,
  "languages": ["go", "rust"],
  "safe_mode": false
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadConfigFile(path))
	require.NoError(t, cfg.Validate())

	require.Equal(t, 6, cfg.MinLines)
	require.Equal(t, 0.9, cfg.SimilarityThreshold)
	require.Equal(t, []string{"go", "rust"}, cfg.Languages)
	require.False(t, cfg.SafeMode)

	// Keys absent from the file keep their defaults.
	require.Equal(t, 30, cfg.MinTokens)
	require.True(t, cfg.SuppressDuplicates)
}

func TestLoadConfigFileRejectsBadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dupfix.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))

	cfg := DefaultConfig()
	require.Error(t, cfg.LoadConfigFile(path))
}
