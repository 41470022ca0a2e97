// Package store persists FRED series in a local SQLite database, one table
// per series with schema (date TEXT PRIMARY KEY, value REAL).
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"fredlens/internal/model"
)

const dateLayout = "2006-01-02"

var (
	// ErrStoreNotFound is returned by Open when the database file does not exist.
	ErrStoreNotFound = errors.New("series store not found")
	// ErrSeriesNotFound is returned by Query when a requested series has no table.
	ErrSeriesNotFound = errors.New("series not found in store")
)

// Series names become table names, so only plain identifiers are accepted.
var nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store is a SQLite-backed series cache.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens an existing store. It fails with ErrStoreNotFound when the
// database file is missing, so callers can tell "never refreshed" apart from
// other failures.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, path)
		}
		return nil, fmt.Errorf("stat store: %w", err)
	}
	return open(path)
}

// Create opens the store, creating the database file and its parent
// directory when missing.
func Create(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	return open(path)
}

func open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// WAL mode so chart reads can run while a refresh writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return s.db.Close() }

func validateName(name string) error {
	if !nameRe.MatchString(name) {
		return fmt.Errorf("invalid series name %q", name)
	}
	return nil
}

// HasSeries reports whether a table exists for the series.
func (s *Store) HasSeries(name string) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return n > 0, nil
}

// ListSeries returns the names of all stored series, sorted.
func (s *Store) ListSeries() ([]string, error) {
	rows, err := s.db.Query(
		`SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// MaxDate returns the latest stored date for a series. ok is false when the
// series has no table or the table is empty.
func (s *Store) MaxDate(name string) (time.Time, bool, error) {
	exists, err := s.HasSeries(name)
	if err != nil || !exists {
		return time.Time{}, false, err
	}
	var max sql.NullString
	if err := s.db.QueryRow(fmt.Sprintf(`SELECT MAX(date) FROM %q`, name)).Scan(&max); err != nil {
		return time.Time{}, false, fmt.Errorf("max date %s: %w", name, err)
	}
	if !max.Valid {
		return time.Time{}, false, nil
	}
	t, err := time.ParseInLocation(dateLayout, max.String, time.UTC)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("max date %s: %w", name, err)
	}
	return t, true, nil
}

// UpsertAppend writes points for a series, creating its table on first use.
// Points dated on or before the stored maximum are discarded, so the call is
// idempotent and never produces duplicate dates. It returns the number of
// rows written.
func (s *Store) UpsertAppend(name string, points []model.Point) (int, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}
	if _, err := s.db.Exec(fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %q (date TEXT PRIMARY KEY, value REAL)`, name)); err != nil {
		return 0, fmt.Errorf("create table %s: %w", name, err)
	}

	max, ok, err := s.MaxDate(name)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// INSERT OR IGNORE guards the date primary key against duplicates within
	// the incoming batch itself.
	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT OR IGNORE INTO %q (date, value) VALUES (?, ?)`, name))
	if err != nil {
		return 0, fmt.Errorf("prepare insert %s: %w", name, err)
	}
	defer stmt.Close()

	written := 0
	for _, p := range points {
		if ok && !p.Date.After(max) {
			continue
		}
		var v interface{}
		if !math.IsNaN(p.Value) {
			v = p.Value
		}
		res, err := stmt.Exec(p.Date.Format(dateLayout), v)
		if err != nil {
			return 0, fmt.Errorf("insert %s %s: %w", name, p.Date.Format(dateLayout), err)
		}
		if n, err := res.RowsAffected(); err == nil {
			written += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s: %w", name, err)
	}
	return written, nil
}

// Count returns the number of stored rows for a series.
func (s *Store) Count(name string) (int, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}
	exists, err := s.HasSeries(name)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("%w: %s", ErrSeriesNotFound, name)
	}
	var n int
	if err := s.db.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %q`, name)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", name, err)
	}
	return n, nil
}

// Query reads the requested series over [start, end], inner-joined on date:
// the result holds one row per date present in every requested series, so
// all returned series share identical date indexes. A NULL stored value
// comes back as NaN.
func (s *Store) Query(names []string, start, end time.Time) ([]model.Series, error) {
	if len(names) == 0 {
		return nil, errors.New("no series requested")
	}
	for _, n := range names {
		if err := validateName(n); err != nil {
			return nil, err
		}
		exists, err := s.HasSeries(n)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrSeriesNotFound, n)
		}
	}

	var b strings.Builder
	b.WriteString("SELECT s0.date")
	for i := range names {
		fmt.Fprintf(&b, ", s%d.value", i)
	}
	fmt.Fprintf(&b, " FROM %q AS s0", names[0])
	for i := 1; i < len(names); i++ {
		fmt.Fprintf(&b, " JOIN %q AS s%d ON s%d.date = s0.date", names[i], i, i)
	}
	b.WriteString(" WHERE s0.date >= ? AND s0.date <= ? ORDER BY s0.date")

	rows, err := s.db.Query(b.String(), start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	out := make([]model.Series, len(names))
	for i, n := range names {
		out[i] = model.Series{Name: n}
	}
	for rows.Next() {
		var dateStr string
		vals := make([]sql.NullFloat64, len(names))
		dest := make([]interface{}, 0, len(names)+1)
		dest = append(dest, &dateStr)
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		d, err := time.ParseInLocation(dateLayout, dateStr, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", dateStr, err)
		}
		for i, v := range vals {
			val := math.NaN()
			if v.Valid {
				val = v.Float64
			}
			out[i].Points = append(out[i].Points, model.Point{Date: d, Value: val})
		}
	}
	return out, rows.Err()
}
