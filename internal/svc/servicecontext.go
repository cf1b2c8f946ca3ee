package svc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"ekata-api/internal/cache"
	"ekata-api/internal/config"
	"ekata-api/internal/scheduler"
	"ekata-api/pkg/confkit"
	"ekata-api/pkg/dashboard"
	"ekata-api/pkg/generate"
	"ekata-api/pkg/journal"
	llmpkg "ekata-api/pkg/llm"
	"ekata-api/pkg/weather"
)

type ServiceContext struct {
	Config config.Config
	TTL    cache.TTLSet

	LLMConfig *llmpkg.Config
	LLMClient llmpkg.LLMClient
	Generator *generate.Service

	Catalog       *dashboard.Catalog
	PromptDigests map[string]string
	Dashboard     *dashboard.Orchestrator
	Journal       *journal.Writer
	Scheduler     *scheduler.Scheduler

	WeatherConfig *weather.Config
	Weather       *weather.Service
}

// NewServiceContext wires every component and exits the process on error.
func NewServiceContext(c config.Config) *ServiceContext {
	svc, err := New(c)
	logx.Must(err)
	return svc
}

// New wires every component described by c.
func New(c config.Config) (*ServiceContext, error) {
	svc := &ServiceContext{
		Config: c,
		TTL:    cache.NewTTLSet(c.TTL),
	}
	if err := svc.initGeneration(); err != nil {
		return nil, err
	}
	if err := svc.initDashboard(); err != nil {
		return nil, err
	}
	if err := svc.initWeather(); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *ServiceContext) initGeneration() error {
	llmCfg := s.Config.LLM.Value
	if llmCfg == nil {
		// No llm section: fall back to EKATA_LLM_* variables.
		cfg, err := llmpkg.LoadConfigFromReader(strings.NewReader(""))
		if err != nil && !errors.Is(err, llmpkg.ErrMissingAPIKey) {
			return fmt.Errorf("llm config from env: %w", err)
		}
		llmCfg = cfg
	}
	s.LLMConfig = llmCfg

	if llmCfg != nil && strings.TrimSpace(llmCfg.APIKey) != "" {
		client, err := llmpkg.NewClient(llmCfg)
		if err != nil {
			return fmt.Errorf("init llm client: %w", err)
		}
		s.LLMClient = client
	} else {
		logx.Error("llm api key not configured; generation requests will fail")
	}

	s.Generator = generate.NewService(s.LLMClient,
		generate.WithModel(s.Config.Generate.Model),
		generate.WithTemperature(s.Config.Generate.Temperature),
	)
	return nil
}

func (s *ServiceContext) initDashboard() error {
	d := s.Config.Dashboard

	catalog, err := dashboard.NewCatalog(dashboard.WithCompanies(d.Companies))
	if err != nil {
		return fmt.Errorf("init prompt catalog: %w", err)
	}
	s.Catalog = catalog
	s.PromptDigests = catalog.Digests()

	policy, err := dashboard.ParseRetryPolicy(d.RetryPolicy)
	if err != nil {
		return err
	}
	client := dashboard.NewClient(s.Config.GenerateEndpoint(),
		dashboard.WithHTTPClient(&http.Client{Timeout: d.RequestTimeout}),
		dashboard.WithAttempts(d.MaxAttempts),
		dashboard.WithRetryDelay(d.RetryDelay),
		dashboard.WithRetryPolicy(policy),
	)

	var opts []dashboard.Option
	if dir := strings.TrimSpace(d.JournalDir); dir != "" {
		w, err := journal.NewWriter(confkit.ResolvePath(s.Config.BaseDir(), dir))
		if err != nil {
			return err
		}
		s.Journal = w
		opts = append(opts, dashboard.WithRecorder(w))
	}

	orch, err := dashboard.NewOrchestrator(client, catalog, opts...)
	if err != nil {
		return err
	}
	s.Dashboard = orch

	if spec := strings.TrimSpace(d.RefreshCron); spec != "" {
		sched, err := scheduler.NewScheduler(context.Background(), orch, spec)
		if err != nil {
			return err
		}
		s.Scheduler = sched
	}
	return nil
}

func (s *ServiceContext) initWeather() error {
	var (
		provider weather.Provider
		override time.Duration
	)
	if wcfg := s.Config.Weather.Value; wcfg != nil {
		p, err := wcfg.BuildDefault()
		if err != nil {
			return fmt.Errorf("build weather provider: %w", err)
		}
		provider, override = p, wcfg.TTL
		s.WeatherConfig = wcfg
	} else {
		provider = weather.NewOpenMeteo()
	}

	var opts []weather.ServiceOption
	if s.Config.RedisEnabled() {
		wc, err := cache.NewRedisWeatherCache(s.Config.Redis)
		if err != nil {
			return err
		}
		opts = append(opts, weather.WithCache(wc, cache.WeatherTTL(s.TTL, override)))
	}
	s.Weather = weather.NewService(provider, opts...)
	return nil
}

// Start launches background work: the refresh schedule and, when
// configured, an initial refresh.
func (s *ServiceContext) Start() {
	if s.Scheduler != nil {
		s.Scheduler.Start()
	}
	if s.Config.Dashboard.RefreshOnStart {
		if err := s.Dashboard.Trigger(context.Background()); err != nil {
			logx.Errorf("initial refresh: %v", err)
		}
	}
}

// Stop halts the schedule and waits for an in-flight refresh.
func (s *ServiceContext) Stop() {
	if s.Scheduler != nil {
		s.Scheduler.Stop()
	}
	s.Dashboard.Wait()
	if s.LLMClient != nil {
		_ = s.LLMClient.Close()
	}
}
