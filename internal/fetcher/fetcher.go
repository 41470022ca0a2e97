package fetcher

import (
	"context"
	"sync"
	"time"

	"fredlens/internal/model"
)

// Fetcher retrieves one named series from a remote source for a date range.
// The caller is responsible for persisting the result.
type Fetcher interface {
	FetchSeries(ctx context.Context, name string, start, end time.Time) ([]model.Point, error)
	Name() string
}

// Call records one FetchSeries invocation on the mock.
type Call struct {
	Series string
	Start  time.Time
	End    time.Time
}

// Mock returns controllable fixed data for development and testing. The
// refresh job may call it from several goroutines.
type Mock struct {
	Data map[string][]model.Point
	Errs map[string]error

	mu    sync.Mutex
	calls []Call
}

func (m *Mock) Name() string { return "mock" }

// CallLog returns a copy of the recorded FetchSeries calls.
func (m *Mock) CallLog() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *Mock) FetchSeries(_ context.Context, name string, start, end time.Time) ([]model.Point, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Series: name, Start: start, End: end})
	m.mu.Unlock()
	if err, ok := m.Errs[name]; ok {
		return nil, err
	}
	var out []model.Point
	for _, p := range m.Data[name] {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
