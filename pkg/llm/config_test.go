package llm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromReader(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	t.Setenv(envAPIKey, "override-key")
	t.Setenv(envTimeout, "45s")
	t.Setenv(envMaxRetries, "5")

	data := `
base_url: "https://example.com/v1"
api_key: "${EKATA_LLM_API_KEY}"
default_model: "flash"
timeout: "30s"
max_retries: 2
log_level: "debug"

models:
  flash:
    provider: "google"
    model_name: "gemini-2.5-flash"
    temperature: 0.2
`

	cfg, err := LoadConfigFromReader(strings.NewReader(data))
	require.NoError(t, err)

	require.Equal(t, "https://example.com/v1", cfg.BaseURL)
	require.Equal(t, "override-key", cfg.APIKey)
	require.Equal(t, "flash", cfg.DefaultModel)
	require.Equal(t, 5, cfg.MaxRetries)
	require.Equal(t, 45*time.Second, cfg.Timeout)
	require.Equal(t, defaultSearchOption, cfg.SearchOption)

	model, ok := cfg.Model("flash")
	require.True(t, ok)
	require.Equal(t, "gemini-2.5-flash", model.ModelName)
	require.NotNil(t, model.Temperature)
	require.InDelta(t, 0.2, *model.Temperature, 0.0001)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	t.Setenv(envAPIKey, "")
	t.Setenv(envTimeout, "")
	t.Setenv(envMaxRetries, "")
	t.Setenv(envBaseURL, "")
	t.Setenv(envDefaultModel, "")

	cfg, err := LoadConfigFromReader(strings.NewReader(`api_key: key`))
	require.NoError(t, err)
	require.Equal(t, defaultBaseURL, cfg.BaseURL)
	require.Equal(t, defaultModel, cfg.DefaultModel)
	require.Equal(t, defaultTimeout, cfg.Timeout)
	require.Equal(t, defaultMaxRetries, cfg.MaxRetries)
	require.Equal(t, defaultLogLevel, cfg.LogLevel)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	t.Setenv(envAPIKey, "")
	t.Setenv(envTimeout, "")

	t.Run("file not found", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/path/llm.yaml")
		require.ErrorContains(t, err, "open llm config")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "invalid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("api_key: key\n  invalid: yaml: structure\n"), 0o600))
		_, err := LoadConfig(path)
		require.ErrorContains(t, err, "unmarshal llm config")
	})

	t.Run("missing api key", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "llm.yaml")
		require.NoError(t, os.WriteFile(path, []byte("default_model: flash\n"), 0o600))
		cfg, err := LoadConfig(path)
		require.ErrorIs(t, err, ErrMissingAPIKey)
		require.NotNil(t, cfg)
		require.Equal(t, "flash", cfg.DefaultModel)
	})

	t.Run("invalid timeout", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "llm.yaml")
		require.NoError(t, os.WriteFile(path, []byte("api_key: k\ntimeout: soon\n"), 0o600))
		_, err := LoadConfig(path)
		require.ErrorContains(t, err, "invalid timeout")
	})
}

func TestConfigModelID(t *testing.T) {
	cfg := &Config{
		DefaultModel: "flash",
		Models: map[string]ModelConfig{
			"flash":   {ModelName: "gemini-2.5-flash"},
			"routed":  {Provider: "google", ModelName: "gemini-2.5-pro"},
			"already": {Provider: "google", ModelName: "google/gemini-2.0"},
		},
	}

	id, _ := cfg.ModelID("")
	require.Equal(t, "gemini-2.5-flash", id)

	id, _ = cfg.ModelID("routed")
	require.Equal(t, "google/gemini-2.5-pro", id)

	id, _ = cfg.ModelID("already")
	require.Equal(t, "google/gemini-2.0", id)

	id, modelCfg := cfg.ModelID("unknown-model")
	require.Equal(t, "unknown-model", id)
	require.Equal(t, "unknown-model", modelCfg.ModelName)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Models: map[string]ModelConfig{"a": {ModelName: "x"}}}
	cp := cfg.Clone()
	cp.Models["a"] = ModelConfig{ModelName: "y"}
	require.Equal(t, "x", cfg.Models["a"].ModelName)

	var nilCfg *Config
	require.Nil(t, nilCfg.Clone())
}
