package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/rest"

	"ekata-api/pkg/confkit"
	"ekata-api/pkg/dashboard"
	llmpkg "ekata-api/pkg/llm"
	weatherpkg "ekata-api/pkg/weather"
)

type CacheTTL struct {
	Short  int `json:",default=60"` // seconds
	Medium int `json:",default=600"`
	Long   int `json:",default=3600"`
}

// GenerateConf tunes the generation proxy.
type GenerateConf struct {
	Model       string  `json:",optional"`
	Temperature float64 `json:",default=0.2"`
}

// DashboardConf drives the refresh orchestrator.
type DashboardConf struct {
	// GenerateURL is where the orchestrator posts generation requests.
	// Empty means this server's own /api/generate.
	GenerateURL    string        `json:",optional"`
	Companies      []string      `json:",optional"`
	MaxAttempts    int           `json:",default=3"`
	RetryDelay     time.Duration `json:",default=2s"`
	RetryPolicy    string        `json:",default=all"`
	RequestTimeout time.Duration `json:",default=3m"`
	RefreshCron    string        `json:",optional"`
	RefreshOnStart bool          `json:",optional"`
	JournalDir     string        `json:",optional"`
}

type Config struct {
	rest.RestConf
	// Env indicates the running environment: test | dev | prod
	Env       string          `json:",default=test"`
	Redis     redis.RedisConf `json:",optional"`
	TTL       CacheTTL        `json:",optional"`
	Generate  GenerateConf    `json:",optional"`
	Dashboard DashboardConf   `json:",optional"`

	LLM     confkit.Section[llmpkg.Config]     `json:",optional"`
	Weather confkit.Section[weatherpkg.Config] `json:",optional"`

	mainPath string
	baseDir  string
}

func (c *Config) IsTestEnv() bool {
	return c.Env == "test" || c.Env == ""
}

// RedisEnabled reports whether a Redis host is configured.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.Redis.Host) != ""
}

// GenerateEndpoint resolves the URL the orchestrator calls.
func (c *Config) GenerateEndpoint() string {
	if u := strings.TrimSpace(c.Dashboard.GenerateURL); u != "" {
		return u
	}
	host := c.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d/api/generate", host, c.Port)
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	confkit.LoadDotenvOnce()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %s: %w", path, err)
	}

	var cfg Config
	if err := conf.Load(absPath, &cfg, conf.UseEnv()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", absPath, err)
	}

	cfg.mainPath = absPath
	cfg.baseDir = filepath.Dir(absPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.hydrateSections(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "", "test", "dev", "prod":
		if strings.TrimSpace(c.Env) == "" {
			c.Env = "test"
		}
	default:
		return errors.New("config: env must be one of test|dev|prod")
	}
	if err := c.validateTTL(); err != nil {
		return err
	}
	return c.validateDashboard()
}

func (c *Config) validateTTL() error {
	if c.TTL.Short <= 0 {
		return errors.New("config: ttl.short must be positive")
	}
	if c.TTL.Medium <= 0 {
		return errors.New("config: ttl.medium must be positive")
	}
	if c.TTL.Long <= 0 {
		return errors.New("config: ttl.long must be positive")
	}
	return nil
}

func (c *Config) validateDashboard() error {
	d := c.Dashboard
	if d.MaxAttempts <= 0 {
		return errors.New("config: dashboard.maxAttempts must be positive")
	}
	if d.RetryDelay < 0 {
		return errors.New("config: dashboard.retryDelay must not be negative")
	}
	if _, err := dashboard.ParseRetryPolicy(d.RetryPolicy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Generate.Temperature < 0 || c.Generate.Temperature > 2 {
		return errors.New("config: generate.temperature must be within [0, 2]")
	}
	return nil
}

func (c *Config) hydrateSections() error {
	base := c.baseDir

	if err := c.LLM.Hydrate(base, loadLLM); err != nil {
		return fmt.Errorf("load llm config: %w", err)
	}
	if err := c.Weather.Hydrate(base, weatherpkg.LoadConfig); err != nil {
		return fmt.Errorf("load weather config: %w", err)
	}
	return nil
}

// loadLLM tolerates a missing api key. The generation proxy reports it
// per request instead of refusing to boot.
func loadLLM(path string) (*llmpkg.Config, error) {
	cfg, err := llmpkg.LoadConfig(path)
	if errors.Is(err, llmpkg.ErrMissingAPIKey) {
		logx.Errorf("llm config %s: %v", path, err)
		return cfg, nil
	}
	return cfg, err
}

func (c *Config) MainPath() string {
	return c.mainPath
}

func (c *Config) BaseDir() string {
	return c.baseDir
}
