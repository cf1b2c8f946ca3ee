package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"ekata-api/internal/config"
	"ekata-api/pkg/confkit"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	d := cfg.Dashboard
	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Listen: %s:%d", cfg.Host, cfg.Port),
		fmt.Sprintf("Redis: %s", presence(cfg.RedisEnabled())),
		fmt.Sprintf("TTL (short/medium/long): %ds / %ds / %ds", cfg.TTL.Short, cfg.TTL.Medium, cfg.TTL.Long),
		fmt.Sprintf("Generate endpoint: %s", cfg.GenerateEndpoint()),
		fmt.Sprintf("Retry: %d attempts, %s apart, policy=%s", d.MaxAttempts, d.RetryDelay, orDefault(d.RetryPolicy, "all")),
		fmt.Sprintf("Refresh schedule: %s", orDefault(d.RefreshCron, "manual")),
		fmt.Sprintf("Journal: %s", orDefault(d.JournalDir, "disabled")),
		sectionLine("LLM config", cfg.LLM),
		sectionLine("Weather config", cfg.Weather),
	}
	if len(d.Companies) > 0 {
		lines = append(lines, fmt.Sprintf("Competitors: %s", strings.Join(d.Companies, ", ")))
	}

	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Value != nil:
		return fmt.Sprintf("%s: inline", name)
	default:
		return fmt.Sprintf("%s: not configured", name)
	}
}
