package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		TTL:       CacheTTL{Short: 60, Medium: 600, Long: 3600},
		Generate:  GenerateConf{Temperature: 0.2},
		Dashboard: DashboardConf{MaxAttempts: 3, RetryDelay: 2 * time.Second, RetryPolicy: "all"},
	}
}

// Test_hydrateSections_withEnvAndSectionFiles verifies env expansion and
// per-section hydration without going through go-zero conf.Load.
func Test_hydrateSections_withEnvAndSectionFiles(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	dir := t.TempDir()

	llmYAML := []byte(`
base_url: ${TEST_LLM_BASE_URL}
api_key: ${TEST_LLM_API_KEY}
default_model: ${TEST_LLM_MODEL}
timeout: 2s
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "llm.yaml"), llmYAML, 0o600))

	weatherYAML := []byte(`
default: openmeteo
cache_ttl: ${TEST_WEATHER_TTL}
providers:
  openmeteo:
    type: open-meteo
    base_url: ${TEST_WEATHER_BASE}
    timeout: 7s
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weather.yaml"), weatherYAML, 0o600))

	t.Setenv("TEST_LLM_BASE_URL", "https://llm.example/v1")
	t.Setenv("TEST_LLM_API_KEY", "test-key")
	t.Setenv("TEST_LLM_MODEL", "flash")
	t.Setenv("EKATA_LLM_API_KEY", "")
	t.Setenv("EKATA_LLM_TIMEOUT", "")
	t.Setenv("TEST_WEATHER_TTL", "15m")
	t.Setenv("TEST_WEATHER_BASE", "https://weather.example/v1/forecast")

	cfg := validConfig()
	cfg.baseDir = dir
	cfg.LLM.File = "llm.yaml"
	cfg.Weather.File = "weather.yaml"
	require.NoError(t, cfg.hydrateSections())
	require.NoError(t, cfg.Validate())

	require.NotNil(t, cfg.LLM.Value)
	assert.Equal(t, "https://llm.example/v1", cfg.LLM.Value.BaseURL)
	assert.Equal(t, "test-key", cfg.LLM.Value.APIKey)
	assert.Equal(t, "flash", cfg.LLM.Value.DefaultModel)
	assert.Equal(t, filepath.Join(dir, "llm.yaml"), cfg.LLM.File)

	require.NotNil(t, cfg.Weather.Value)
	assert.Equal(t, 15*time.Minute, cfg.Weather.Value.TTL)
	p := cfg.Weather.Value.Providers["openmeteo"]
	require.NotNil(t, p)
	assert.Equal(t, "https://weather.example/v1/forecast", p.BaseURL)
	assert.Equal(t, 7*time.Second, p.Timeout)
}

func Test_hydrateSections_missingFile(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	cfg := validConfig()
	cfg.baseDir = t.TempDir()
	cfg.Weather.File = "weather.yaml"
	require.ErrorContains(t, cfg.hydrateSections(), "load weather config")
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Config)
		want   string
	}{
		"ttl short":   {func(c *Config) { c.TTL.Short = 0 }, "ttl.short"},
		"ttl long":    {func(c *Config) { c.TTL.Long = -1 }, "ttl.long"},
		"env":         {func(c *Config) { c.Env = "staging" }, "env must be one of"},
		"attempts":    {func(c *Config) { c.Dashboard.MaxAttempts = 0 }, "maxAttempts"},
		"delay":       {func(c *Config) { c.Dashboard.RetryDelay = -time.Second }, "retryDelay"},
		"policy":      {func(c *Config) { c.Dashboard.RetryPolicy = "sometimes" }, "unknown retry policy"},
		"temperature": {func(c *Config) { c.Generate.Temperature = 3 }, "temperature"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			require.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}

	cfg := validConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "test", cfg.Env)
	assert.True(t, cfg.IsTestEnv())
}

func TestGenerateEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.Port = 8888
	assert.Equal(t, "http://127.0.0.1:8888/api/generate", cfg.GenerateEndpoint())

	cfg.Host = "10.0.0.5"
	assert.Equal(t, "http://10.0.0.5:8888/api/generate", cfg.GenerateEndpoint())

	cfg.Dashboard.GenerateURL = " https://proxy.example/api/generate "
	assert.Equal(t, "https://proxy.example/api/generate", cfg.GenerateEndpoint())
}

func TestLoad(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	t.Setenv("EKATA_LLM_API_KEY", "")
	t.Setenv("EKATA_LLM_TIMEOUT", "")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "llm.yaml"), []byte("api_key: k\n"), 0o600))

	mainYAML := []byte(`Name: ekata-test
Host: 127.0.0.1
Port: 9999
Env: dev
TTL:
  Short: 30
Generate:
  Model: flash
Dashboard:
  RetryDelay: 500ms
  RetryPolicy: transient
  Companies:
    - Blue Tokai
    - Third Wave Coffee
  RefreshCron: "0 */30 * * * *"
LLM:
  File: llm.yaml
`)
	mainPath := filepath.Join(dir, "ekata.yaml")
	require.NoError(t, os.WriteFile(mainPath, mainYAML, 0o600))

	cfg, err := Load(mainPath)
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.False(t, cfg.IsTestEnv())
	assert.Equal(t, mainPath, cfg.MainPath())
	assert.Equal(t, dir, cfg.BaseDir())
	assert.Equal(t, 3, cfg.Dashboard.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Dashboard.RetryDelay)
	assert.Equal(t, "transient", cfg.Dashboard.RetryPolicy)
	assert.Equal(t, []string{"Blue Tokai", "Third Wave Coffee"}, cfg.Dashboard.Companies)
	assert.Equal(t, CacheTTL{Short: 30, Medium: 600, Long: 3600}, cfg.TTL)
	assert.Equal(t, "flash", cfg.Generate.Model)
	assert.InDelta(t, 0.2, cfg.Generate.Temperature, 1e-9)
	assert.False(t, cfg.RedisEnabled())
	require.NotNil(t, cfg.LLM.Value)
	assert.Equal(t, "k", cfg.LLM.Value.APIKey)
	assert.False(t, cfg.Weather.Enabled())
}
