package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.WebSocket.Address)
	assert.Equal(t, 10*time.Second, cfg.Server.WebSocket.WriteTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.Battle.HandSize)
	assert.Equal(t, 100, cfg.Battle.PlayerMaxHP)
	assert.Equal(t, 3, cfg.Battle.PlayerMaxEnergy)
	assert.Equal(t, 20, cfg.Battle.LogCapacity)
	assert.Equal(t, []string{"strength", "metallicize"}, cfg.Battle.PersistentStatuses)
	assert.False(t, cfg.Database.Enabled)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: debug
  format: json
battle:
  hand_size: 6
  seed: 42
  persistent_statuses: [strength, metallicize, demon_form]
`), 0o600))
	t.Setenv("DECKBATTLE_BATTLE_PLAYER_MAX_HP", "80")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 6, cfg.Battle.HandSize)
	assert.Equal(t, uint64(42), cfg.Battle.Seed)
	assert.Equal(t, 80, cfg.Battle.PlayerMaxHP)

	rules := cfg.Battle.Rules()
	assert.Equal(t, 6, rules.HandSize)
	assert.Equal(t, 80, rules.PlayerMaxHP)
	assert.Equal(t, []string{"strength", "metallicize", "demon_form"}, rules.PersistentStatuses)
}

func TestLoadRejectsInvalidRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("battle:\n  hand_size: -1\n"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "hand_size")
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("battle: [unterminated\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
