package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ekata-api/pkg/dashboard"
)

// CycleRecord captures one refresh cycle for audit and analysis.
type CycleRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	CycleNumber  int       `json:"cycle_number"`
	DurationMs   int64     `json:"duration_ms"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message,omitempty"`

	dashboard.CycleReport
}

// Writer persists cycle records to a directory as JSON files (journal style).
type Writer struct {
	dir   string
	mu    sync.Mutex
	seq   int
	nowFn func() time.Time
}

var _ dashboard.Recorder = (*Writer)(nil)

// NewWriter constructs a journal writer, creating dir when needed.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		dir = "journal"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("journal: create %s: %w", dir, err)
	}
	return &Writer{dir: dir, nowFn: time.Now}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// RecordCycle converts report into a record and writes it.
func (w *Writer) RecordCycle(_ context.Context, report dashboard.CycleReport) error {
	_, err := w.WriteCycle(NewRecord(report))
	return err
}

// NewRecord derives the outcome fields from report.
func NewRecord(report dashboard.CycleReport) *CycleRecord {
	rec := &CycleRecord{
		Timestamp:   report.FinishedAt,
		CycleReport: report,
	}
	if !report.StartedAt.IsZero() && !report.FinishedAt.IsZero() {
		rec.DurationMs = report.FinishedAt.Sub(report.StartedAt).Milliseconds()
	}

	var problems []string
	check := func(name string, s *dashboard.FeedSummary) {
		if s == nil {
			return
		}
		switch {
		case s.Superseded:
			problems = append(problems, name+": superseded")
		case s.State != dashboard.Success:
			msg := s.Error
			if msg == "" {
				msg = s.State.String()
			}
			problems = append(problems, name+": "+msg)
		}
	}
	check("prices", &report.Prices)
	check("competitors", &report.Competitors)
	check("insights", report.Insights)

	rec.Success = len(problems) == 0
	rec.ErrorMessage = strings.Join(problems, "; ")
	return rec
}

// WriteCycle writes a cycle record to a timestamped JSON file.
func (w *Writer) WriteCycle(rec *CycleRecord) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("journal: nil record")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if rec.Timestamp.IsZero() {
		rec.Timestamp = w.nowFn()
	}
	w.seq++
	rec.CycleNumber = w.seq
	name := fmt.Sprintf("cycle_%s_%05d.json", rec.Timestamp.UTC().Format("20060102_150405"), w.seq)
	path := filepath.Join(w.dir, name)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
