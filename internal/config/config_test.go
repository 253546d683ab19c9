package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/worldlore/lorekeeper/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `{
		"port": 8080,
		"document_host": {"owner": "alien-worlds", "repo": "the-lore"}
	}`))
	require.NoError(t, err)

	require.Equal(t, "main", cfg.DocumentHost.Branch)
	require.Equal(t, "README.md", cfg.DocumentHost.DocumentPath)
	require.Equal(t, []string{"https://api.github.com"}, cfg.DocumentHost.APIMirrors)
	require.Equal(t, 300, cfg.Cache.TTLSeconds)
	require.Equal(t, 256, cfg.Cache.Size)
	require.Equal(t, 20, cfg.Pagination.DefaultLimit)
	require.Equal(t, 100, cfg.Pagination.MaxLimit)
	require.Equal(t, 10, cfg.TimeoutSeconds)
	require.Equal(t, "info", cfg.LogConfig.Level)
}

func TestLoadRequiresPortAndRepo(t *testing.T) {
	_, err := config.Load(writeConfig(t, `{"document_host": {"owner": "a", "repo": "b"}}`))
	require.Error(t, err)

	_, err = config.Load(writeConfig(t, `{"port": 8080}`))
	require.Error(t, err)
}

func TestLoadRejectsEmptyMirrorGroup(t *testing.T) {
	_, err := config.Load(writeConfig(t, `{
		"port": 8080,
		"document_host": {"owner": "a", "repo": "b"},
		"graphql_groups": {"world": []}
	}`))
	require.Error(t, err)
}

func TestLoadRejectsInvertedPagination(t *testing.T) {
	_, err := config.Load(writeConfig(t, `{
		"port": 8080,
		"document_host": {"owner": "a", "repo": "b"},
		"pagination": {"default_limit": 50, "max_limit": 10}
	}`))
	require.Error(t, err)
}
