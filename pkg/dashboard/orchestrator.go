package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/threading"
)

// ErrRefreshInFlight is returned by Trigger while a triggered cycle runs.
var ErrRefreshInFlight = errors.New("dashboard: refresh already in flight")

var errRefreshAborted = errors.New("dashboard: refresh aborted")

// Snapshot is the read-only view handed to the presentation layer.
type Snapshot struct {
	CycleID     string                          `json:"cycleId"`
	Ready       bool                            `json:"ready"`
	Refreshing  bool                            `json:"refreshing"`
	Prices      FeedSnapshot[[]PricePoint]      `json:"prices"`
	Competitors FeedSnapshot[[]CompetitorQuote] `json:"competitors"`
	Insights    FeedSnapshot[*InsightsBundle]   `json:"insights"`
}

// FeedSummary is the outcome of one feed within a cycle.
type FeedSummary struct {
	State      LoadingState `json:"state"`
	Count      int          `json:"count"`
	Error      string       `json:"error,omitempty"`
	Superseded bool         `json:"superseded,omitempty"`
}

// CycleReport describes one finished refresh cycle.
type CycleReport struct {
	CycleID           string            `json:"cycle_id"`
	StartedAt         time.Time         `json:"started_at"`
	FinishedAt        time.Time         `json:"finished_at"`
	Prices            FeedSummary       `json:"prices"`
	Competitors       FeedSummary       `json:"competitors"`
	Insights          *FeedSummary      `json:"insights,omitempty"`
	ForecastRequested bool              `json:"forecast_requested"`
	PromptDigests     map[string]string `json:"prompt_digests"`
}

// Recorder receives a report after every cycle.
type Recorder interface {
	RecordCycle(ctx context.Context, report CycleReport) error
}

// Orchestrator runs refresh cycles and owns the three feeds.
//
// A cycle fetches history and competitor quotes concurrently. History is
// normalized and, when non-empty, conditions a forecast request whose
// result is merged into the price series. The feeds settle independently:
// a failed history never changes the competitor feed. Once both feeds
// succeed with data in the same cycle, insights are requested exactly once.
type Orchestrator struct {
	caller   Caller
	catalog  *Catalog
	recorder Recorder
	now      func() time.Time

	prices      *Feed[[]PricePoint]
	competitors *Feed[[]CompetitorQuote]
	insights    *Feed[*InsightsBundle]

	mu      sync.RWMutex
	cycleID string

	running atomic.Bool
	wg      sync.WaitGroup
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder attaches a cycle recorder.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithNow sets the clock used for timestamps.
func WithNow(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// NewOrchestrator wires caller and catalog into an idle orchestrator.
func NewOrchestrator(caller Caller, catalog *Catalog, opts ...Option) (*Orchestrator, error) {
	if caller == nil {
		return nil, errors.New("dashboard: caller is required")
	}
	if catalog == nil {
		return nil, errors.New("dashboard: catalog is required")
	}
	o := &Orchestrator{caller: caller, catalog: catalog, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	o.prices = newFeed(clonePoints, o.now)
	o.competitors = newFeed(cloneQuotes, o.now)
	o.insights = newFeed(cloneInsights, o.now)
	return o, nil
}

// Refresh runs one full cycle and blocks until every feed it touched has
// settled. Concurrent calls are safe: results of a superseded cycle are
// dropped by the feeds.
func (o *Orchestrator) Refresh(ctx context.Context) Snapshot {
	report := CycleReport{
		CycleID:       uuid.NewString(),
		StartedAt:     o.now(),
		PromptDigests: o.catalog.Digests(),
	}
	o.mu.Lock()
	o.cycleID = report.CycleID
	o.mu.Unlock()

	logger := logx.WithContext(ctx).WithFields(logx.Field("cycle", report.CycleID))
	logger.Info("dashboard refresh started")

	priceGen := o.prices.Begin()
	quoteGen := o.competitors.Begin()

	group := threading.NewRoutineGroup()
	group.RunSafe(func() {
		report.ForecastRequested = o.loadPrices(ctx, priceGen)
	})
	group.RunSafe(func() {
		o.loadCompetitors(ctx, quoteGen)
	})
	group.Wait()

	// RunSafe swallows panics; a feed left Loading by one is failed here.
	o.prices.abandon(priceGen, errRefreshAborted)
	o.competitors.abandon(quoteGen, errRefreshAborted)

	report.Prices = summarize(o.prices.Snapshot(), priceGen)
	report.Competitors = summarize(o.competitors.Snapshot(), quoteGen)

	if prices, quotes, ok := o.jointlyReady(priceGen, quoteGen); ok {
		insightGen := o.loadInsights(ctx, prices, quotes)
		summary := summarize(o.insights.Snapshot(), insightGen)
		report.Insights = &summary
	}

	report.FinishedAt = o.now()
	logger.Infof("dashboard refresh finished in %s: prices=%s competitors=%s",
		report.FinishedAt.Sub(report.StartedAt), report.Prices.State, report.Competitors.State)

	if o.recorder != nil {
		if err := o.recorder.RecordCycle(ctx, report); err != nil {
			logger.Errorf("record refresh cycle: %v", err)
		}
	}
	return o.Snapshot()
}

// Trigger starts a cycle in the background and returns immediately. It
// refuses to start a second cycle while one it started is still running.
// The cycle outlives ctx cancellation but keeps its values.
func (o *Orchestrator) Trigger(ctx context.Context) error {
	if !o.running.CompareAndSwap(false, true) {
		return ErrRefreshInFlight
	}
	o.wg.Add(1)
	detached := context.WithoutCancel(ctx)
	threading.GoSafe(func() {
		defer o.wg.Done()
		defer o.running.Store(false)
		o.Refresh(detached)
	})
	return nil
}

// InFlight reports whether a triggered cycle is running.
func (o *Orchestrator) InFlight() bool {
	return o.running.Load()
}

// Wait blocks until triggered cycles have finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Snapshot copies the current state of all feeds.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.RLock()
	cycleID := o.cycleID
	o.mu.RUnlock()

	prices := o.prices.Snapshot()
	competitors := o.competitors.Snapshot()
	return Snapshot{
		CycleID:     cycleID,
		Ready:       prices.State == Success && competitors.State == Success,
		Refreshing:  o.running.Load() || prices.State == Loading || competitors.State == Loading,
		Prices:      prices,
		Competitors: competitors,
		Insights:    o.insights.Snapshot(),
	}
}

// loadPrices settles the price feed and reports whether a forecast was
// requested.
func (o *Orchestrator) loadPrices(ctx context.Context, gen uint64) bool {
	logger := logx.WithContext(ctx)

	req, err := o.catalog.HistoricalPrices()
	if err != nil {
		o.prices.Fail(gen, err)
		return false
	}
	raw, err := o.caller.Call(ctx, req)
	if err != nil {
		logger.Errorf("fetch price history: %v", err)
		o.prices.Fail(gen, err)
		return false
	}
	history, err := decodeList[PricePoint](raw)
	if err != nil {
		o.prices.Fail(gen, err)
		return false
	}

	history = NormalizeHistory(history)
	if len(history) == 0 {
		logger.Info("price history is empty, skipping forecast")
		o.prices.Succeed(gen, []PricePoint{})
		return false
	}

	req, err = o.catalog.Forecast(history)
	if err != nil {
		o.prices.Fail(gen, err)
		return false
	}
	raw, err = o.caller.Call(ctx, req)
	if err != nil {
		logger.Errorf("fetch price forecast: %v", err)
		o.prices.Fail(gen, err)
		return true
	}
	forecast, err := decodeList[PricePoint](raw)
	if err != nil {
		o.prices.Fail(gen, err)
		return true
	}

	if !o.prices.Succeed(gen, Merge(history, forecast)) {
		logger.Infof("dropping stale price series (generation %d)", gen)
	}
	return true
}

func (o *Orchestrator) loadCompetitors(ctx context.Context, gen uint64) {
	req, err := o.catalog.CompetitorPrices()
	if err != nil {
		o.competitors.Fail(gen, err)
		return
	}
	raw, err := o.caller.Call(ctx, req)
	if err != nil {
		logx.WithContext(ctx).Errorf("fetch competitor prices: %v", err)
		o.competitors.Fail(gen, err)
		return
	}
	quotes, err := decodeList[CompetitorQuote](raw)
	if err != nil {
		o.competitors.Fail(gen, err)
		return
	}
	if !o.competitors.Succeed(gen, quotes) {
		logx.WithContext(ctx).Infof("dropping stale competitor quotes (generation %d)", gen)
	}
}

// jointlyReady returns both series when the generations that were just
// loaded are current, succeeded and carry data.
func (o *Orchestrator) jointlyReady(priceGen, quoteGen uint64) ([]PricePoint, []CompetitorQuote, bool) {
	prices, ok := o.prices.settled(priceGen)
	if !ok || len(prices) == 0 {
		return nil, nil, false
	}
	quotes, ok := o.competitors.settled(quoteGen)
	if !ok || len(quotes) == 0 {
		return nil, nil, false
	}
	return prices, quotes, true
}

func (o *Orchestrator) loadInsights(ctx context.Context, prices []PricePoint, quotes []CompetitorQuote) uint64 {
	gen := o.insights.Begin()

	req, err := o.catalog.Insights(prices, quotes)
	if err != nil {
		o.insights.Fail(gen, err)
		return gen
	}
	raw, err := o.caller.Call(ctx, req)
	if err != nil {
		logx.WithContext(ctx).Errorf("fetch insights: %v", err)
		o.insights.Fail(gen, err)
		return gen
	}
	bundle, err := decodeInsights(raw)
	if err != nil {
		o.insights.Fail(gen, fmt.Errorf("insights: %w", err))
		return gen
	}
	o.insights.Succeed(gen, bundle)
	return gen
}

func summarize[T any](snap FeedSnapshot[T], gen uint64) FeedSummary {
	if snap.Generation != gen {
		return FeedSummary{State: snap.State, Superseded: true}
	}
	summary := FeedSummary{State: snap.State, Error: snap.Error}
	switch data := any(snap.Data).(type) {
	case []PricePoint:
		summary.Count = len(data)
	case []CompetitorQuote:
		summary.Count = len(data)
	case *InsightsBundle:
		if data != nil {
			summary.Count = 1
		}
	}
	return summary
}
