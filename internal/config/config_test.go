package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "", c.ServerEndpointAddr)
	assert.Equal(t, "passvault.db", c.DatabaseDSN)
	assert.Equal(t, 50, c.SyncMaxPasses)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "passvault.db", cfg.DatabaseDSN)
	assert.Equal(t, 50, cfg.SyncMaxPasses)
}

func TestParseJson_OverlaysOnlyPresentFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_endpoint_addr":"10.0.0.1:8443","sync_max_passes":0}`), 0o600))

	oldArgs := os.Args
	os.Args = []string{"passvault", "-c", path}
	t.Cleanup(func() { os.Args = oldArgs })

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, "10.0.0.1:8443", c.ServerEndpointAddr)
	assert.Equal(t, "passvault.db", c.DatabaseDSN, "absent field keeps its default")
	assert.Equal(t, 0, c.SyncMaxPasses, "explicit zero disables the pass bound")
}
