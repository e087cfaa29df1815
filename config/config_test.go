package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "portfolio-content", cfg.Storage.Key)
	assert.Equal(t, 30*time.Minute, cfg.Admin.SessionTimeout)
	assert.False(t, cfg.MinIO.Enabled())
	assert.Equal(t, ":8080", cfg.Server.Address())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("VITRINE_STORAGE_DRIVER", "memory")
	t.Setenv("ADMIN_PASSWORD", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "s3cret", cfg.Admin.Password)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "vitrine.yaml")
	content := "storage:\n  driver: file\n  file_dir: store\nlog:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "store", cfg.Storage.FileDir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VITRINE_STORAGE_DRIVER", "floppy")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_RedisDriverNeedsAddr(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VITRINE_STORAGE_DRIVER", "redis")

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidateServer(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.ValidateServer())

	cfg.Server.SessionSecret = "secret"
	assert.Error(t, cfg.ValidateServer())

	cfg.Admin.Password = "pw"
	assert.NoError(t, cfg.ValidateServer())
}
