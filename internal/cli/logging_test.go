package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ekata-api/internal/config"
	"ekata-api/pkg/llm"
)

func TestConfigSummaryLines(t *testing.T) {
	assert.Equal(t, []string{"Configuration: <nil>"}, ConfigSummaryLines(nil))

	cfg := &config.Config{Env: "dev"}
	cfg.Host = "0.0.0.0"
	cfg.Port = 8888
	cfg.TTL = config.CacheTTL{Short: 60, Medium: 600, Long: 3600}
	cfg.Dashboard = config.DashboardConf{
		MaxAttempts: 3,
		RetryDelay:  2 * time.Second,
		Companies:   []string{"Blue Tokai", "Subko"},
	}
	cfg.LLM.File = "/etc/ekata/llm.yaml"
	cfg.Weather.Value = nil

	lines := ConfigSummaryLines(cfg)
	assert.Contains(t, lines, "Environment: dev")
	assert.Contains(t, lines, "Redis: not configured")
	assert.Contains(t, lines, "Generate endpoint: http://127.0.0.1:8888/api/generate")
	assert.Contains(t, lines, "Retry: 3 attempts, 2s apart, policy=all")
	assert.Contains(t, lines, "Refresh schedule: manual")
	assert.Contains(t, lines, "Journal: disabled")
	assert.Contains(t, lines, "LLM config: /etc/ekata/llm.yaml")
	assert.Contains(t, lines, "Weather config: not configured")
	assert.Contains(t, lines, "Competitors: Blue Tokai, Subko")

	cfg.LLM.File = ""
	cfg.LLM.Value = &llm.Config{}
	assert.Contains(t, ConfigSummaryLines(cfg), "LLM config: inline")
}
