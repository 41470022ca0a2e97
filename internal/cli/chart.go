package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"fredlens/internal/align"
	"fredlens/internal/logger"
	"fredlens/internal/model"
	"fredlens/internal/render"
	"fredlens/internal/store"
)

type chartCmd struct {
	series      string
	start       string
	end         string
	offset      int
	offsetUnit  string
	rebase      float64
	resample    bool
	logLeft     bool
	extendYears int
	db          string
	output      string
	width       int
	height      int
	dpi         float64
	noShow      bool
	title       string
	subtitle    string
	footnote    string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "render a dual-axis comparison of two series" }
func (*chartCmd) Usage() string {
	return `fredlens chart --series LEFT,RIGHT [--offset N] [--offset-unit days|months]

Renders two cached series on dual y-axes over their overlapping date range.
The right-hand series can be time-shifted (positive offset = lead), resampled
to month-end means, and rebased to an index (its first value becomes the
base). Examples:

  fredlens chart --series UNRATE,DCOILWTICO --offset 18 --offset-unit months --resample
  fredlens chart --series CBBTCUSD,GLOBAL_M2 --offset 94 --rebase 100 --log-left
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.series, "series", "", "two comma-separated series names: left,right")
	f.StringVar(&c.start, "start", "1948-01-01", "start date YYYY-MM-DD")
	f.StringVar(&c.end, "end", "", "end date YYYY-MM-DD (default today)")
	f.IntVar(&c.offset, "offset", 0, "shift the right series by this many units (positive = lead)")
	f.StringVar(&c.offsetUnit, "offset-unit", "days", "offset unit: days or months")
	f.Float64Var(&c.rebase, "rebase", 0, "rebase the right series to this index base (0 disables)")
	f.BoolVar(&c.resample, "resample", false, "collapse both series to month-end means before shifting")
	f.BoolVar(&c.logLeft, "log-left", false, "logarithmic scale on the left y-axis")
	f.IntVar(&c.extendYears, "extend-years", 1, "years of blank space past the last date")
	f.StringVar(&c.db, "db", "", "path to local SQLite DB (default from config)")
	f.StringVar(&c.output, "output", "", "path to save the figure (default outputs/ with timestamp)")
	f.IntVar(&c.width, "width", 1200, "figure width in pixels")
	f.IntVar(&c.height, "height", 600, "figure height in pixels")
	f.Float64Var(&c.dpi, "dpi", 92, "figure DPI")
	f.BoolVar(&c.noShow, "no-show", false, "do not open the figure in a viewer")
	f.StringVar(&c.title, "title", "", "chart title")
	f.StringVar(&c.subtitle, "subtitle", "", "chart subtitle")
	f.StringVar(&c.footnote, "footnote", "Source: FRED", "footnote annotation (empty disables)")
}

func (c *chartCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	names := splitSeries(c.series)
	if len(names) != 2 {
		return fail("--series must name exactly two series, e.g. --series UNRATE,DCOILWTICO")
	}
	unit, err := align.ParseUnit(c.offsetUnit)
	if err != nil {
		return fail("%v", err)
	}
	start, err := parseDate("start", c.start)
	if err != nil {
		return fail("%v", err)
	}
	end := today()
	if c.end != "" {
		if end, err = parseDate("end", c.end); err != nil {
			return fail("%v", err)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return fail("%v", err)
	}
	dbPath := c.db
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	st, err := openStore(dbPath)
	if err != nil {
		return fail("%v", err)
	}
	defer st.Close()

	left, err := loadSeries(st, names[0], start, end)
	if err != nil {
		return fail("%v", err)
	}
	right, err := loadSeries(st, names[1], start, end)
	if err != nil {
		return fail("%v", err)
	}

	// Trim to the overlapping range before any transform.
	ovStart, ovEnd, err := align.OverlapRange(left, right)
	if err != nil {
		return fail("%s and %s: %v", left.Name, right.Name, err)
	}
	left = align.Clip(left, ovStart, ovEnd)
	right = align.Clip(right, ovStart, ovEnd)

	if c.resample {
		left = align.ResampleMonthEnd(left)
		right = align.ResampleMonthEnd(right)
	}

	if c.offset != 0 {
		right = align.Shift(right, c.offset, unit)
		// The shift re-indexes dates, so the overlap must be recomputed.
		ovStart, ovEnd, err = align.OverlapRange(left, right)
		if err != nil {
			return fail("no overlap left after shifting %s by %d: %v", right.Name, c.offset, err)
		}
		left = align.Clip(left, ovStart, ovEnd)
		right = align.Clip(right, ovStart, ovEnd)
	}

	if c.rebase != 0 {
		rebased, err := align.Rebase(right, c.rebase)
		if err != nil {
			return fail("%v", err)
		}
		rebased.Name = fmt.Sprintf("%s (index, base %g)", right.Name, c.rebase)
		right = rebased
	}

	graph := render.DualAxis(left, right, render.Options{
		Title:       c.title,
		Subtitle:    c.subtitle,
		Width:       c.width,
		Height:      c.height,
		DPI:         c.dpi,
		LogLeft:     c.logLeft,
		ExtendYears: c.extendYears,
		Footnote:    c.footnote,
	})
	path, err := render.Save(graph, c.output, cfg.Output.Dir, "chart")
	if err != nil {
		return fail("%v", err)
	}
	fmt.Printf("Saved figure to %s\n", path)

	if !c.noShow {
		if err := render.Show(path); err != nil {
			logger.L().Warn().Err(err).Msg("could not open viewer")
		}
	}
	return subcommands.ExitSuccess
}

// loadSeries reads one series over [start, end] and drops missing values.
// Missing data maps to the shared remediation hint.
func loadSeries(st *store.Store, name string, start, end time.Time) (model.Series, error) {
	res, err := st.Query([]string{name}, start, end)
	if err != nil {
		if errors.Is(err, store.ErrSeriesNotFound) {
			return model.Series{}, fmt.Errorf("series %s is not cached. Run `fredlens refresh --series %s` first", name, name)
		}
		return model.Series{}, err
	}
	s := align.DropMissing(res[0])
	if s.Empty() {
		return model.Series{}, fmt.Errorf("series %s has no data in the requested range. Run `fredlens refresh` or widen --start/--end", name)
	}
	return s, nil
}
