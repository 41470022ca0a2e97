package cli

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"fredlens/internal/fetcher"
	"fredlens/internal/refresh"
	"fredlens/internal/store"
)

type refreshCmd struct {
	series   string
	start    string
	end      string
	db       string
	parallel int
	cron     string
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "download new observations into the local store" }
func (*refreshCmd) Usage() string {
	return `fredlens refresh [--series UNRATE,DCOILWTICO] [--start 1948-01-01] [--end 2025-12-31]

Downloads FRED observations into the local SQLite store, one table per
series. Only the delta window past each series' last stored date is
requested; series that are already up to date skip the remote call.
A series that fails to download is reported and skipped, the others
continue; the command exits non-zero if any series failed.

With --cron the job re-runs on the given schedule until interrupted.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.series, "series", "", "comma-separated FRED series names (default from config)")
	f.StringVar(&c.start, "start", "", "start date YYYY-MM-DD for brand-new series (default from config)")
	f.StringVar(&c.end, "end", "", "end date YYYY-MM-DD (default today)")
	f.StringVar(&c.db, "db", "", "path to local SQLite DB (default from config)")
	f.IntVar(&c.parallel, "parallel", 0, "max concurrent series downloads (default from config)")
	f.StringVar(&c.cron, "cron", "", "cron expression; keep running and refresh on schedule")
}

func (c *refreshCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail("%v", err)
	}

	names := splitSeries(c.series)
	if len(names) == 0 {
		names = cfg.Refresh.Series
	}
	if c.start == "" {
		c.start = cfg.Refresh.Start
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
	dbPath := c.db
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	parallel := c.parallel
	if parallel == 0 {
		parallel = cfg.Refresh.Parallel
	}

	st, err := store.Create(dbPath)
	if err != nil {
		return fail("open store: %v", err)
	}
	defer st.Close()

	job := &refresh.Job{
		Store:    st,
		Fetcher:  fetcher.NewFREDFetcher(cfg.DataSource.BaseURL, cfg.Proxy, cfg.Timeout()),
		Start:    start,
		End:      end,
		Parallel: parallel,
	}

	if c.cron != "" {
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := job.RunOnSchedule(ctx, c.cron, names); err != nil {
			return fail("%v", err)
		}
		return subcommands.ExitSuccess
	}

	summary := job.Run(ctx, names)
	for _, r := range summary.Results {
		switch {
		case r.Err != nil:
			fmt.Printf("%s: failed (%v)\n", r.Series, r.Err)
		case r.Skipped:
			fmt.Printf("%s: already up to date\n", r.Series)
		default:
			fmt.Printf("%s: wrote %d rows\n", r.Series, r.Written)
		}
	}
	if err := summary.Err(); err != nil {
		return fail("refresh finished with errors:\n%v", err)
	}
	fmt.Printf("Done. SQLite DB at %s\n", st.Path())
	return subcommands.ExitSuccess
}

// listCmd prints the series cached in the store.
type listCmd struct {
	db string
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list series cached in the local store" }
func (*listCmd) Usage() string {
	return "fredlens list [--db data/fred.db]\n"
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.db, "db", "", "path to local SQLite DB (default from config)")
}

func (c *listCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	names, err := st.ListSeries()
	if err != nil {
		return fail("%v", err)
	}
	for _, n := range names {
		count, err := st.Count(n)
		if err != nil {
			return fail("%v", err)
		}
		fmt.Printf("%s\t%d rows\n", n, count)
	}
	return subcommands.ExitSuccess
}
