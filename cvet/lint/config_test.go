package lint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
enabled = true
ident_style = "any"
max_function_lines = 100
require_braces = false
magic_numbers = true
allowed_numbers = [0, 1, 8, 1024]
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, IdentStyleAny, config.IdentStyle)
	assert.Equal(t, uint(100), config.MaxFunctionLines)
	assert.False(t, config.RequireBraces)
	assert.Equal(t, []int64{0, 1, 8, 1024}, config.AllowedNumbers)
}

func TestLoadConfigFillsDefaults(t *testing.T) {
	path := writeConfig(t, "max_function_lines = 20\n")

	config, err := LoadConfig(path)
	require.NoError(t, err)

	expected := DefaultConfig()
	expected.MaxFunctionLines = 20
	assert.Equal(t, expected, config)
}

func TestLoadConfigRejectsUnknownIdentStyle(t *testing.T) {
	path := writeConfig(t, "ident_style = \"camel\"\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ident_style")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), ConfigFilename))
	assert.Error(t, err)
}
