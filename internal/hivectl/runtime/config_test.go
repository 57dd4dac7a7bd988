package runtime

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, []string{"queen"}, cfg.Agents)
	require.Equal(t, "file", cfg.Store)
	require.Equal(t, "https://openrouter.ai/api/v1", cfg.OracleBaseURL)
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
agents:
  - queen
  - drone
oracle_model: test-model
store: sqlite
store_path: ` + filepath.ToSlash(filepath.Join(dir, "missions.db")) + `
task_routes:
  echo: Echo.say
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, []string{"queen", "drone"}, cfg.Agents)
	require.Equal(t, "test-model", cfg.OracleModel)
	require.Equal(t, "sqlite", cfg.Store)
	require.Equal(t, "Echo.say", cfg.TaskRoutes["echo"])
}

func TestConfigNormalizeRejectsBadAgents(t *testing.T) {
	cfg := Config{Agents: []string{"queen", "queen"}}
	require.Error(t, cfg.Normalize())

	cfg = Config{Agents: []string{""}}
	require.Error(t, cfg.Normalize())
}

func TestConfigNormalizeRejectsUnknownStore(t *testing.T) {
	cfg := Config{Store: "postgres"}
	require.Error(t, cfg.Normalize())
}

func TestConfigNormalizeAPIKeyFromEnv(t *testing.T) {
	t.Setenv("HIVEMIND_API_KEY", "sk-from-env")
	cfg := Config{}
	require.NoError(t, cfg.Normalize())
	require.Equal(t, "sk-from-env", cfg.APIKey)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Agents = []string{"queen", "drone"}
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, []string{"queen", "drone"}, loaded.Agents)
}
