package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadToolConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sbec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"output_dir: build/ir\ntarget: golang\nformat: json\n"), 0o644))

	cfg, err := LoadToolConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "build/ir", cfg.OutputDir)
	assert.Equal(t, "golang", cfg.Target)
	assert.Equal(t, "json", cfg.Format)
}

func TestLoadToolConfigMissingDefaultIsZero(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	cfg, err := LoadToolConfig("")
	require.NoError(t, err)
	assert.Equal(t, ToolConfig{}, cfg)
}

func TestLoadToolConfigMissingExplicitFails(t *testing.T) {
	_, err := LoadToolConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadToolConfigRejectsBadFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sbec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: xml\n"), 0o644))

	_, err := LoadToolConfig(path)
	assert.Error(t, err)
}
