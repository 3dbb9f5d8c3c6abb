package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeSiteConfig(t, "./dist", `upload:
  prefix: file/
  concurrency: 2
`)
	t.Setenv("CDNSYNC_UPLOAD_PREFIX", "env/")

	root := newRootCmd()
	syncCmd, _, err := root.Find([]string{"sync"})
	require.NoError(t, err)
	require.NoError(t, syncCmd.ParseFlags([]string{"--config", path, "--bucket", "flag-bucket", "-j", "3"}))

	cfg, err := loadConfig(syncCmd)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "./dist", cfg.Root)
	assert.Equal(t, "flag-bucket", cfg.Bucket)
	assert.Equal(t, "env/", cfg.Upload.Prefix)
	assert.Equal(t, 3, cfg.Upload.Concurrency)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	root := newRootCmd()
	syncCmd, _, err := root.Find([]string{"sync"})
	require.NoError(t, err)
	require.NoError(t, syncCmd.ParseFlags([]string{"--config", "/nonexistent/cdnsync.yaml", "--bucket", "b"}))

	// a missing file falls back to defaults, the way an unset config path does
	cfg, err := loadConfig(syncCmd)
	require.NoError(t, err)
	assert.Equal(t, "b", cfg.Bucket)
	assert.Equal(t, "public", cfg.Root)
}

func TestCLI_ExitCodeOnInvalidConfig(t *testing.T) {
	out, code := runCLI(t, t.TempDir(), "sync")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Configuration error: ")
	assert.Contains(t, out, "bucket required")
}

func TestCLI_Version(t *testing.T) {
	out, code := runCLI(t, t.TempDir(), "version")
	assert.Equal(t, 0, code)
	assert.NotEmpty(t, out)
}
