package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withConfigFile writes contents to a temp file and points os.Args at it
// via the -config flag. Restores os.Args when the test finishes.
func withConfigFile(t *testing.T, contents string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-config", path}
}

func TestParseJson_OverlaysBothFields(t *testing.T) {
	withConfigFile(t, `{"server_endpoint_addr": "http://www.example:9000", "online_check_interval": "10s"}`)

	cfg := &Config{}
	parseJson(cfg)

	assert.Equal(t, "http://www.example:9000", cfg.ServerEndpointAddr)
	assert.Equal(t, 10*time.Second, cfg.OnlineCheckInterval)
}

func TestParseJson_AbsentFieldKeepsEarlierValue(t *testing.T) {
	withConfigFile(t, `{"online_check_interval": "10s"}`)

	cfg := &Config{
		ServerEndpointAddr:  "http://earlier:1234",
		OnlineCheckInterval: 42 * time.Second,
	}
	parseJson(cfg)

	assert.Equal(t, "http://earlier:1234", cfg.ServerEndpointAddr)
	assert.Equal(t, 10*time.Second, cfg.OnlineCheckInterval)
}

func TestParseJson_NanosecondDuration(t *testing.T) {
	withConfigFile(t, `{"online_check_interval": 5000000000}`)

	cfg := &Config{}
	parseJson(cfg)

	assert.Equal(t, 5*time.Second, cfg.OnlineCheckInterval)
}

func TestParseJson_NoFlagIsANoOp(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := &Config{
		ServerEndpointAddr:  "http://earlier:1234",
		OnlineCheckInterval: 42 * time.Second,
	}
	parseJson(cfg)

	assert.Equal(t, "http://earlier:1234", cfg.ServerEndpointAddr)
	assert.Equal(t, 42*time.Second, cfg.OnlineCheckInterval)
}

func TestParseJson_InvalidJSONPanics(t *testing.T) {
	withConfigFile(t, `{ this is not valid json`)

	require.Panics(t, func() { parseJson(&Config{}) })
}

func TestParseJson_MissingFilePanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-config", filepath.Join(t.TempDir(), "absent.json")}

	require.Panics(t, func() { parseJson(&Config{}) })
}
