package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
name = "Hotel"

[network]
bind_address = "127.0.0.1:9000"
tick_rate = "250ms"

[room]
max_step_height = 2.0
allow_diagonal = false
path_workers = 8
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Hotel", cfg.Server.Name)
	assert.Equal(t, "127.0.0.1:9000", cfg.Network.BindAddress)
	assert.Equal(t, 250*time.Millisecond, cfg.Network.TickRate)
	assert.Equal(t, 2.0, cfg.Room.MaxStepHeight)
	assert.False(t, cfg.Room.AllowDiagonal)
	assert.Equal(t, 8, cfg.Room.PathWorkers)

	// untouched sections keep their defaults
	assert.Equal(t, 256, cfg.Room.PathQueueSize)
	assert.Equal(t, "windows-1252", cfg.Network.ClientEncoding)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.NotZero(t, cfg.Server.StartTime)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_BadSyntax(t *testing.T) {
	_, err := Load(writeConfig(t, "[server\nname ="))
	assert.Error(t, err)
}

func TestLoad_Validation(t *testing.T) {
	_, err := Load(writeConfig(t, "[room]\npath_workers = 0\n"))
	assert.ErrorContains(t, err, "path_workers")

	_, err = Load(writeConfig(t, "[room]\nmax_step_height = -1.0\n"))
	assert.ErrorContains(t, err, "max_step_height")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1.5, cfg.Room.MaxStepHeight)
	assert.True(t, cfg.Room.AllowDiagonal)
	assert.NoError(t, cfg.validate())
}
