package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "scopes.yaml"), cfg.ScopesFile)
	assert.Equal(t, filepath.Join(dir, "users.yaml"), cfg.UsersFile)
	assert.Equal(t, filepath.Join(dir, "client_secret.json"), cfg.ClientSecretFile)
	assert.Equal(t, filepath.Join(dir, "tokens"), cfg.TokenDir)
}

func TestLoadConfig_Overrides(t *testing.T) {
	dir := t.TempDir()
	content := `scopesFile: /etc/gauth/scopes.yaml
tokenDir: cache
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	// Absolute paths pass through; relative ones anchor at the config dir.
	assert.Equal(t, "/etc/gauth/scopes.yaml", cfg.ScopesFile)
	assert.Equal(t, filepath.Join(dir, "cache"), cfg.TokenDir)
	// Untouched keys keep their defaults.
	assert.Equal(t, filepath.Join(dir, "users.yaml"), cfg.UsersFile)
}

func TestLoadConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(":\nnot yaml"), 0o644))

	_, err := LoadConfig(dir)
	require.Error(t, err)
}

func TestResolveClientSecret(t *testing.T) {
	cfg := Config{ClientSecretFile: "/default/client_secret.json"}

	t.Run("flag wins", func(t *testing.T) {
		t.Setenv(EnvClientSecret, "/env/secret.json")
		assert.Equal(t, "/flag/secret.json", cfg.ResolveClientSecret("/flag/secret.json"))
	})

	t.Run("env beats default", func(t *testing.T) {
		t.Setenv(EnvClientSecret, "/env/secret.json")
		assert.Equal(t, "/env/secret.json", cfg.ResolveClientSecret(""))
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv(EnvClientSecret, "")
		assert.Equal(t, "/default/client_secret.json", cfg.ResolveClientSecret(""))
	})
}

func TestLoadUserGrants(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	content := `- user: alice@example.com
  apis:
    gmail: send
    youtube: read
- user: bob@example.com
  apis:
    gmail: read
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	grants, err := LoadUserGrants(path)
	require.NoError(t, err)

	require.Len(t, grants, 2)
	assert.Equal(t, "alice@example.com", grants[0].User)
	assert.Equal(t, map[string]string{"gmail": "send", "youtube": "read"}, grants[0].APIs)
	assert.Equal(t, "bob@example.com", grants[1].User)
}

func TestLoadUserGrants_MissingFile(t *testing.T) {
	_, err := LoadUserGrants(filepath.Join(t.TempDir(), "users.yaml"))
	require.Error(t, err)
}
