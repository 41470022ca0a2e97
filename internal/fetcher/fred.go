package fetcher

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"fredlens/internal/model"
)

const (
	// DefaultBaseURL serves per-series CSV without an API key.
	DefaultBaseURL = "https://fred.stlouisfed.org"

	dateLayout = "2006-01-02"
)

// FREDFetcher downloads series observations from the FRED fredgraph CSV
// endpoint: GET {base}/graph/fredgraph.csv?id=NAME&cosd=START&coed=END.
type FREDFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewFREDFetcher creates a fetcher with optional proxy support.
func NewFREDFetcher(baseURL, proxyURL string, timeout time.Duration) *FREDFetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &FREDFetcher{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *FREDFetcher) Name() string { return "fred" }

// FetchSeries downloads observations for one series over [start, end].
// Rows with the FRED missing marker "." come back as NaN points; dropping
// them is the aligner's decision, not the fetcher's.
func (f *FREDFetcher) FetchSeries(ctx context.Context, name string, start, end time.Time) ([]model.Point, error) {
	endpoint := fmt.Sprintf("%s/graph/fredgraph.csv?id=%s&cosd=%s&coed=%s",
		f.BaseURL, url.QueryEscape(name), start.Format(dateLayout), end.Format(dateLayout))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fred fetch %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fred fetch %s: status %d, body: %s", name, resp.StatusCode, string(body))
	}
	return parseCSV(resp.Body, name)
}

// parseCSV decodes the two-column fredgraph payload (header row, then one
// "date,value" row per observation).
func parseCSV(r io.Reader, name string) ([]model.Point, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("fred decode %s: %w", name, err)
	}
	if len(header) != 2 {
		return nil, fmt.Errorf("fred decode %s: unexpected header %v", name, header)
	}

	var points []model.Point
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fred decode %s: %w", name, err)
		}
		d, err := time.ParseInLocation(dateLayout, rec[0], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("fred decode %s: bad date %q: %w", name, rec[0], err)
		}
		v := math.NaN()
		if rec[1] != "." && rec[1] != "" {
			v, err = strconv.ParseFloat(rec[1], 64)
			if err != nil {
				return nil, fmt.Errorf("fred decode %s: bad value %q: %w", name, rec[1], err)
			}
		}
		points = append(points, model.Point{Date: d, Value: v})
	}

	// Ensure chronological order
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}
