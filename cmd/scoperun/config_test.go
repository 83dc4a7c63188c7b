package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.Context)
	assert.Empty(t, cfg.Globals)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoperun.toml")
	payload := `
log_level = "trace"
context = "tenant"

[globals]
tenant = "acme"
limit = 3
`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.Equal(t, "tenant", cfg.Context)
	assert.Equal(t, "acme", cfg.Globals["tenant"])
	assert.EqualValues(t, 3, cfg.Globals["limit"])
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
