package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blockgate.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
service:
  name: blockgate
api:
  enabled: true
  auth:
    api_key: secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "blockgate", cfg.Service.Name)
	assert.Equal(t, "INFO", cfg.Service.LogLevel)
	assert.Equal(t, time.Second, cfg.Service.DispatchWait)
	assert.Equal(t, 1000, cfg.Ledger.HistorySize)
	assert.Equal(t, 1024, cfg.Ledger.QueueSize)
	assert.Equal(t, ":8765", cfg.Bridge.Listen)
	assert.Equal(t, ":8000", cfg.API.Listen)
	assert.NotEmpty(t, cfg.Checksum)
}

func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("BLOCKGATE_TEST_KEY", "from-env")

	path := writeConfig(t, `
api:
  enabled: true
  auth:
    api_key: ${BLOCKGATE_TEST_KEY}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.API.Auth.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "service: [broken")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsEnabledAPIWithoutKey(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
api:
  enabled: true
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "api_key")
}

func TestLoadRejectsSharedListenAddress(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
bridge:
  listen: ":9000"
api:
  enabled: true
  listen: ":9000"
  auth:
    api_key: secret
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "listen address")
}

func TestChecksumChangesWithContent(t *testing.T) {
	t.Parallel()

	a, err := Load(writeConfig(t, "service: {name: one}\napi: {enabled: false}\n"))
	require.NoError(t, err)
	b, err := Load(writeConfig(t, "service: {name: two}\napi: {enabled: false}\n"))
	require.NoError(t, err)

	assert.NotEqual(t, a.Checksum, b.Checksum)
}

func TestPIDLockPathDefault(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	path := cfg.PIDLockPath()
	assert.Contains(t, path, "blockgate.pid")

	cfg.Service.PIDFile = "/var/run/custom.pid"
	assert.Equal(t, "/var/run/custom.pid", cfg.PIDLockPath())
}
