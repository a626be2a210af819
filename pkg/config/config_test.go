package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, DefaultEndpoint, c.Endpoint)
	assert.Equal(t, DefaultRequestTimeout, c.RequestTimeout)
	assert.Equal(t, "info", c.Logging.Level)
}

func TestApplyEnv_Overrides(t *testing.T) {
	for k, v := range map[string]string{
		"DWAVE_API_ENDPOINT": "https://example.test/sapi",
		"DWAVE_API_TOKEN":    "secret-token",
		"DWAVE_API_SOLVER":   "Advantage_system4.1",
		"DWAVE_API_PROXY":    "http://proxy.local:8080",
		"DWAVE_API_CLIENT":   "my-app/1.0",
	} {
		t.Setenv(k, v)
	}

	c := Default()
	c.ApplyEnv()

	assert.Equal(t, "https://example.test/sapi", c.Endpoint)
	assert.Equal(t, "secret-token", c.Token)
	assert.Equal(t, "Advantage_system4.1", c.DefaultSolver)
	assert.Equal(t, "http://proxy.local:8080", c.Proxy)
	assert.Equal(t, "my-app/1.0", c.ClientAppName)
}

func TestApplyEnv_EmptyValuesDoNotOverride(t *testing.T) {
	c := Default()
	c.Endpoint = "https://unchanged.test"
	c.ApplyEnv()
	assert.Equal(t, "https://unchanged.test", c.Endpoint)
}

func TestLoadEnvTimeouts(t *testing.T) {
	t.Setenv("DWAVE_API_REQUEST_TIMEOUT", "30")
	t.Setenv("DWAVE_API_POLLING_TIMEOUT", "600")

	c := Default()
	c.LoadEnvTimeouts()

	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Equal(t, 600*time.Second, c.PollingTimeout)
}

func TestLoadFile_MissingFileIsNotError(t *testing.T) {
	c := Default()
	err := c.LoadFile("/nonexistent/path/config.json")
	require.NoError(t, err)
}

func TestLoadFile_OverlaysFields(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.WriteString(`{"endpoint": "https://from-file.test", "token": "file-token"}`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	c := Default()
	require.NoError(t, c.LoadFile(f.Name()))

	assert.Equal(t, "https://from-file.test", c.Endpoint)
	assert.Equal(t, "file-token", c.Token)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Token = "t"
	require.NoError(t, c.Validate())

	c.Endpoint = ""
	require.Error(t, c.Validate())

	c = Default()
	c.Token = ""
	require.Error(t, c.Validate())

	c = Default()
	c.Token = "t"
	c.RequestTimeout = 0
	require.Error(t, c.Validate())

	c.RequestTimeout = time.Second
	c.PollingTimeout = -1
	require.Error(t, c.Validate())
}

func TestLoad_PrecedenceEnvironmentWinsOverFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.WriteString(`{"endpoint": "https://from-file.test", "token": "file-token"}`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	t.Setenv("DWAVE_API_ENDPOINT", "https://from-env.test")

	c, err := Load(f.Name())
	require.NoError(t, err)
	assert.Equal(t, "https://from-env.test", c.Endpoint)
	assert.Equal(t, "file-token", c.Token)
}
