package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Port)
	assert.Equal(t, 0.70, cfg.World.NPCProbability)
	assert.NotEmpty(t, cfg.World.Settings)
	assert.Equal(t, "N5", cfg.StartingJLPTLevel)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NPC_PROBABILITY", "0.25")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STARTING_JLPT_LEVEL", "N3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.25, cfg.World.NPCProbability)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "N3", cfg.StartingJLPTLevel)
}

func TestLoadInvalidProbability(t *testing.T) {
	t.Setenv("NPC_PROBABILITY", "often")
	_, err := Load()
	assert.Error(t, err)
}

func TestWorldFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	content := []byte("settings:\n  - Tea House District\nstart_setting: Tea House District\nnpc_probability: 0.5\nhistory_limit: 8\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	t.Setenv("WORLD_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"Tea House District"}, cfg.World.Settings)
	assert.Equal(t, "Tea House District", cfg.World.StartSetting)
	assert.Equal(t, 0.5, cfg.World.NPCProbability)
	assert.Equal(t, 8, cfg.HistoryLimit)
}
