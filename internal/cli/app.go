// Package cli implements the fredlens command line application.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"fredlens/internal/config"
	"fredlens/internal/store"
)

const dateLayout = "2006-01-02"

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&refreshCmd{}, "data")
	c.Register(&listCmd{}, "data")
	c.Register(&chartCmd{}, "charts")
	c.Register(&plotCmd{}, "charts")
}

// As a short-lived CLI the config flag can be a package-level flag.
var configPath = flag.String("config", "", "path to YAML config file")

func loadConfig() (*config.Config, error) {
	path := *configPath
	if path == "" {
		path = os.Getenv("FREDLENS_CONFIG")
	}
	if path == "" {
		path = "configs/config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fail prints a human-readable message on stderr and maps to exit code 1.
func fail(format string, args ...interface{}) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}

func parseDate(name, v string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, v, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s date: %s", name, v)
	}
	return t, nil
}

func splitSeries(v string) []string {
	var names []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			names = append(names, s)
		}
	}
	return names
}

// openStore opens an existing store, translating a missing database into the
// remediation hint every read path shares.
func openStore(path string) (*store.Store, error) {
	st, err := store.Open(path)
	if errors.Is(err, store.ErrStoreNotFound) {
		return nil, fmt.Errorf("%s not found. Run `fredlens refresh` on a machine with internet access first", path)
	}
	return st, err
}

func today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
