package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"fredlens/internal/align"
	"fredlens/internal/logger"
	"fredlens/internal/model"
	"fredlens/internal/render"
	"fredlens/internal/store"
)

// plotCmd draws any number of cached series on one shared axis.
type plotCmd struct {
	series string
	start  string
	end    string
	db     string
	output string
	width  int
	height int
	dpi    float64
	noShow bool
	title  string
}

func (*plotCmd) Name() string     { return "plot" }
func (*plotCmd) Synopsis() string { return "plot cached series on a shared axis" }
func (*plotCmd) Usage() string {
	return `fredlens plot --series UNRATE,DCOILWTICO [--start 2000-01-01] [--end 2020-12-31]

Plots one or more cached series on a single shared y-axis, restricted to
the dates present in every requested series.
`
}

func (c *plotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.series, "series", "", "comma-separated series names (required)")
	f.StringVar(&c.start, "start", "1948-01-01", "start date YYYY-MM-DD")
	f.StringVar(&c.end, "end", "", "end date YYYY-MM-DD (default today)")
	f.StringVar(&c.db, "db", "", "path to local SQLite DB (default from config)")
	f.StringVar(&c.output, "output", "", "path to save the figure (default outputs/ with timestamp)")
	f.IntVar(&c.width, "width", 1000, "figure width in pixels")
	f.IntVar(&c.height, "height", 500, "figure height in pixels")
	f.Float64Var(&c.dpi, "dpi", 92, "figure DPI")
	f.BoolVar(&c.noShow, "no-show", false, "do not open the figure in a viewer")
	f.StringVar(&c.title, "title", "", "chart title")
}

func (c *plotCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	names := splitSeries(c.series)
	if len(names) == 0 {
		return fail("--series is required")
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

	// One inner-joined query: every plotted series shares the same dates.
	result, err := st.Query(names, start, end)
	if err != nil {
		if errors.Is(err, store.ErrSeriesNotFound) {
			return fail("%v. Run `fredlens refresh` first", err)
		}
		return fail("%v", err)
	}
	series := make([]model.Series, 0, len(result))
	for _, s := range result {
		s = align.DropMissing(s)
		if s.Empty() {
			return fail("series %s has no data in the requested range. Run `fredlens refresh` or widen --start/--end", s.Name)
		}
		series = append(series, s)
	}

	graph := render.Lines(series, render.Options{
		Title:  c.title,
		Width:  c.width,
		Height: c.height,
		DPI:    c.dpi,
	})
	path, err := render.Save(graph, c.output, cfg.Output.Dir, "plot")
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
