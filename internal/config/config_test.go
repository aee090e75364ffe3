package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "shipengine.toml", `
api_key = "  TEST_abc  "
base_url = "http://localhost:4010/"
retries = 3
timeout = "10s"
`)

	f, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, f.APIKey)
	assert.Equal(t, "TEST_abc", *f.APIKey)
	require.NotNil(t, f.BaseURL)
	assert.Equal(t, "http://localhost:4010/", *f.BaseURL)
	require.NotNil(t, f.Retries)
	assert.Equal(t, 3, *f.Retries)
	require.NotNil(t, f.Timeout)
	assert.Equal(t, 10*time.Second, *f.Timeout)
	assert.Nil(t, f.PageSize, "absent keys stay nil")
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "shipengine.yaml", `
api_key: TEST_abc
page_size: 75
retries: 0
timeout: "2.5"
`)

	f, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, f.PageSize)
	assert.Equal(t, 75, *f.PageSize)
	require.NotNil(t, f.Retries)
	assert.Equal(t, 0, *f.Retries, "explicit zero is kept")
	require.NotNil(t, f.Timeout)
	assert.Equal(t, 2500*time.Millisecond, *f.Timeout)
	assert.Nil(t, f.BaseURL)
}

func TestLoad_EmptyYAML(t *testing.T) {
	f, err := Load(writeFile(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, File{}, f)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unsupported extension", "config.json", `{}`},
		{"bad toml", "bad.toml", `api_key = `},
		{"unknown yaml key", "bad.yaml", "api_kee: x\n"},
		{"bad timeout", "bad.toml", `timeout = "soon"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	base := "https://api.shipengine.com/"
	env := map[string]string{
		EnvAPIKey:   "TEST_env",
		EnvPageSize: "20",
		EnvRetries:  "4",
		EnvTimeout:  "750ms",
		EnvBaseURL:  "  ",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	f, err := applyEnv(File{BaseURL: &base}, lookup)
	require.NoError(t, err)

	assert.Equal(t, "TEST_env", *f.APIKey)
	assert.Equal(t, 20, *f.PageSize)
	assert.Equal(t, 4, *f.Retries)
	assert.Equal(t, 750*time.Millisecond, *f.Timeout)
	assert.Equal(t, base, *f.BaseURL, "blank variable keeps file value")
}

func TestApplyEnv_InvalidNumbers(t *testing.T) {
	for _, key := range []string{EnvPageSize, EnvRetries, EnvTimeout} {
		t.Run(key, func(t *testing.T) {
			lookup := func(k string) (string, bool) {
				if k == key {
					return "many", true
				}
				return "", false
			}
			_, err := applyEnv(File{}, lookup)
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestApplyEnv_Process(t *testing.T) {
	t.Setenv(EnvAPIKey, "TEST_process")

	f, err := ApplyEnv(File{})
	require.NoError(t, err)
	require.NotNil(t, f.APIKey)
	assert.Equal(t, "TEST_process", *f.APIKey)
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "SHIPENGINE_RETRIES=2\nSHIPENGINE_API_KEY=from_file\n")
	t.Setenv(EnvAPIKey, "already_set")
	t.Setenv(EnvRetries, "")
	os.Unsetenv(EnvRetries)

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "2", os.Getenv(EnvRetries))
	assert.Equal(t, "already_set", os.Getenv(EnvAPIKey), "existing variables win")
}

func TestLoadDotEnv_MissingExplicitFile(t *testing.T) {
	err := LoadDotEnv(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}
