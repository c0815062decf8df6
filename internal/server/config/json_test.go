package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

// pointConfigFlagAt rewrites os.Args so the loader sees -config <path>.
// An empty path means no -config flag at all.
func pointConfigFlagAt(t *testing.T, path string) {
	t.Helper()
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	if path == "" {
		os.Args = []string{"testbin"}
		return
	}
	os.Args = []string{"testbin", "-config", path}
}

func TestParseJson_FullFile(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"endpoint_addr":                   "www.example:9000",
		"database_dsn":                    "postgres://primary",
		"secret_key":                      "my_secret_key",
		"access_token_validity_duration":  "1m",
		"refresh_token_validity_duration": "3m",
		"s3_root_user":                    "user",
		"s3_root_password":                "password",
		"s3_bucket":                       "bucket",
		"s3_region":                       "region",
		"s3_base_endpoint":                "base_endpoint",
	})
	pointConfigFlagAt(t, path)

	cfg := &Config{}
	parseJson(cfg)

	want := &Config{
		EndpointAddr:                 "www.example:9000",
		DatabaseDSN:                  "postgres://primary",
		SecretKey:                    "my_secret_key",
		AccessTokenValidityDuration:  time.Minute,
		RefreshTokenValidityDuration: 3 * time.Minute,
		S3RootUser:                   "user",
		S3RootPassword:               "password",
		S3Bucket:                     "bucket",
		S3Region:                     "region",
		S3BaseEndpoint:               "base_endpoint",
	}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestParseJson_PartialFileKeepsRest(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"database_dsn": "postgres://overlay",
	})
	pointConfigFlagAt(t, path)

	cfg := &Config{}
	cfg.LoadDefaults()
	want := *cfg
	want.DatabaseDSN = "postgres://overlay"

	parseJson(cfg)
	assert.Empty(t, cmp.Diff(&want, cfg))
}

func TestParseJson_NoFlagLeavesConfigAlone(t *testing.T) {
	pointConfigFlagAt(t, "")

	cfg := &Config{}
	cfg.LoadDefaults()
	want := *cfg

	parseJson(cfg)
	assert.Empty(t, cmp.Diff(&want, cfg))
}

func TestParseJson_InvalidJSONPanics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{ this is not valid json`), 0o600))
	pointConfigFlagAt(t, path)

	cfg := &Config{}
	require.Panics(t, func() { parseJson(cfg) })
}

func TestParseJson_MissingFilePanics(t *testing.T) {
	pointConfigFlagAt(t, filepath.Join(t.TempDir(), "absent.json"))

	cfg := &Config{}
	require.Panics(t, func() { parseJson(cfg) })
}
