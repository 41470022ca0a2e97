// Package refresh implements the incremental download job: per series it
// computes the delta window still missing from the store, fetches exactly
// that window, and appends the new rows.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fredlens/internal/fetcher"
	"fredlens/internal/logger"
	"fredlens/internal/store"
)

// Result reports the outcome for one series.
type Result struct {
	Series  string
	Written int
	Skipped bool // already up to date, remote call skipped
	Err     error
}

// Summary collects per-series results. Partial success is the expected
// terminal state: one failing series never aborts the others.
type Summary struct {
	Results []Result
}

// Err joins the per-series errors, or returns nil when every series succeeded.
func (s Summary) Err() error {
	var errs []error
	for _, r := range s.Results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Series, r.Err))
		}
	}
	return errors.Join(errs...)
}

// Written returns the total number of rows appended across all series.
func (s Summary) Written() int {
	n := 0
	for _, r := range s.Results {
		n += r.Written
	}
	return n
}

// Job refreshes a set of series in a store from a remote source.
type Job struct {
	Store   *store.Store
	Fetcher fetcher.Fetcher
	Start   time.Time // earliest date ever requested for a brand-new series
	End     time.Time
	// Parallel bounds concurrent series fetches. Safe above 1 because each
	// series writes to its own table; 0 or 1 means sequential.
	Parallel int
}

// Run refreshes every named series and returns the per-series summary.
func (j *Job) Run(ctx context.Context, names []string) Summary {
	parallel := j.Parallel
	if parallel < 1 {
		parallel = 1
	}

	results := make([]Result, len(names))
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, parallel)

	for i, name := range names {
		i, name := i, name
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			results[i] = j.refreshOne(gctx, name)
			// Errors are collected per series, never propagated here, so a
			// failing series does not cancel its siblings.
			return nil
		})
	}
	g.Wait()

	summary := Summary{Results: results}
	for _, r := range summary.Results {
		switch {
		case r.Err != nil:
			logger.L().Error().Str("series", r.Series).Err(r.Err).Msg("refresh failed")
		case r.Skipped:
			logger.L().Info().Str("series", r.Series).Msg("already up to date")
		default:
			logger.L().Info().Str("series", r.Series).Int("rows", r.Written).Msg("refreshed")
		}
	}
	return summary
}

// refreshOne computes the delta window [max stored date + 1 day, End] and
// fetches it. Dates already present are never re-requested or rewritten;
// when the window is empty the remote call is skipped entirely.
func (j *Job) refreshOne(ctx context.Context, name string) Result {
	res := Result{Series: name}

	start := j.Start
	max, ok, err := j.Store.MaxDate(name)
	if err != nil {
		res.Err = fmt.Errorf("read max date: %w", err)
		return res
	}
	if ok {
		if next := max.AddDate(0, 0, 1); next.After(start) {
			start = next
		}
	}
	if start.After(j.End) {
		res.Skipped = true
		return res
	}

	logger.L().Debug().Str("series", name).
		Str("from", start.Format("2006-01-02")).
		Str("to", j.End.Format("2006-01-02")).
		Msg("fetching delta window")

	points, err := j.Fetcher.FetchSeries(ctx, name, start, j.End)
	if err != nil {
		res.Err = fmt.Errorf("fetch: %w", err)
		return res
	}

	written, err := j.Store.UpsertAppend(name, points)
	if err != nil {
		res.Err = fmt.Errorf("append: %w", err)
		return res
	}
	res.Written = written
	return res
}
