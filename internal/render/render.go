// Package render draws series as PNG charts. It is a cosmetic layer: every
// series arrives already aligned, shifted, and rebased.
package render

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"fredlens/internal/logger"
	"fredlens/internal/model"
)

// Palette keeps chart colors consistent across commands.
var (
	ColorLeft    = drawing.ColorFromHex("1f77b4") // matplotlib default blue
	ColorRight   = drawing.ColorFromHex("ff9900") // oil orange
	ColorBitcoin = drawing.ColorFromHex("f7931a")
	ColorM2      = drawing.ColorFromHex("00aa00")
)

// Options controls artifact styling and sizing.
type Options struct {
	Title    string
	Subtitle string
	Width    int // pixels
	Height   int // pixels
	DPI      float64
	// LogLeft puts the left (first series) y-axis on a logarithmic scale.
	LogLeft bool
	// ExtendYears leaves trailing blank space on the x-axis past the last
	// observation.
	ExtendYears int
	LeftColor   drawing.Color
	RightColor  drawing.Color
	Footnote    string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 1200
	}
	if o.Height <= 0 {
		o.Height = 600
	}
	if o.DPI <= 0 {
		o.DPI = 92
	}
	if o.LeftColor.IsZero() {
		o.LeftColor = ColorLeft
	}
	if o.RightColor.IsZero() {
		o.RightColor = ColorRight
	}
	return o
}

func title(o Options) string {
	if o.Subtitle != "" {
		return o.Title + " - " + o.Subtitle
	}
	return o.Title
}

// DualAxis builds a two-series chart: left on the primary y-axis, right on
// the secondary. The series should already share an overlapping range.
func DualAxis(left, right model.Series, o Options) *chart.Chart {
	o = o.withDefaults()

	xMin, xMax := xRange(left, right)
	graph := &chart.Chart{
		Title:  title(o),
		Width:  o.Width,
		Height: o.Height,
		DPI:    o.DPI,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01"),
			Range: &chart.ContinuousRange{
				Min: float64(xMin.UnixNano()),
				Max: float64(xMax.AddDate(o.ExtendYears, 0, 0).UnixNano()),
			},
		},
		YAxis: chart.YAxis{
			Name: left.Name,
			GridMajorStyle: chart.Style{
				StrokeColor:     drawing.Color{R: 0, G: 0, B: 0, A: 40},
				StrokeWidth:     1.0,
				StrokeDashArray: []float64{4.0, 4.0},
			},
		},
		YAxisSecondary: chart.YAxis{
			Name: right.Name,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    left.Name,
				XValues: left.Dates(),
				YValues: left.Values(),
				Style:   chart.Style{StrokeColor: o.LeftColor, StrokeWidth: 2.0},
			},
			chart.TimeSeries{
				Name:    right.Name,
				YAxis:   chart.YAxisSecondary,
				XValues: right.Dates(),
				YValues: right.Values(),
				Style:   chart.Style{StrokeColor: o.RightColor, StrokeWidth: 2.0},
			},
		},
	}
	if o.LogLeft {
		graph.YAxis.Range = &chart.LogarithmicRange{}
	}
	graph.Elements = []chart.Renderable{chart.Legend(graph)}

	// Footnote is cosmetic only: on failure log and keep the chart.
	if o.Footnote != "" {
		if err := addFootnote(graph, left, o.Footnote); err != nil {
			logger.L().Warn().Err(err).Msg("skipping chart footnote")
		}
	}
	return graph
}

// Lines builds a single-axis chart with every series on a shared y scale.
func Lines(series []model.Series, o Options) *chart.Chart {
	o = o.withDefaults()

	graph := &chart.Chart{
		Title:  title(o),
		Width:  o.Width,
		Height: o.Height,
		DPI:    o.DPI,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006"),
		},
		YAxis: chart.YAxis{
			GridMajorStyle: chart.Style{
				StrokeColor:     drawing.Color{R: 0, G: 0, B: 0, A: 40},
				StrokeWidth:     1.0,
				StrokeDashArray: []float64{4.0, 4.0},
			},
		},
	}
	palette := []drawing.Color{ColorLeft, ColorRight, ColorM2, ColorBitcoin}
	for i, s := range series {
		graph.Series = append(graph.Series, chart.TimeSeries{
			Name:    s.Name,
			XValues: s.Dates(),
			YValues: s.Values(),
			Style:   chart.Style{StrokeColor: palette[i%len(palette)], StrokeWidth: 2.0},
		})
	}
	graph.Elements = []chart.Renderable{chart.Legend(graph)}
	return graph
}

// xRange is the union of both series' date ranges.
func xRange(a, b model.Series) (time.Time, time.Time) {
	min, max := a.Start(), a.End()
	if !b.Empty() {
		if min.IsZero() || b.Start().Before(min) {
			min = b.Start()
		}
		if b.End().After(max) {
			max = b.End()
		}
	}
	return min, max
}

// addFootnote pins a small source note to the last observation of s.
func addFootnote(graph *chart.Chart, s model.Series, note string) error {
	if s.Empty() {
		return fmt.Errorf("no observations to anchor footnote")
	}
	last := s.Points[len(s.Points)-1]
	graph.Series = append(graph.Series, chart.AnnotationSeries{
		Annotations: []chart.Value2{{
			XValue: float64(last.Date.UnixNano()),
			YValue: last.Value,
			Label:  note,
		}},
		Style: chart.Style{
			StrokeColor: drawing.Color{R: 128, G: 128, B: 128, A: 255},
			FontColor:   drawing.Color{R: 128, G: 128, B: 128, A: 255},
		},
	})
	return nil
}

// WritePNG renders the chart to w.
func WritePNG(graph *chart.Chart, w io.Writer) error {
	return graph.Render(chart.PNG, w)
}

// Save renders the chart to output, or to dir/<prefix>_<timestamp>.png when
// output is empty. It returns the written path.
func Save(graph *chart.Chart, output, dir, prefix string) (string, error) {
	path := output
	if path == "" {
		path = filepath.Join(dir, fmt.Sprintf("%s_%s.png", prefix, time.Now().Format("20060102_150405")))
	}
	if parent := filepath.Dir(path); parent != "." && parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}
	defer f.Close()
	if err := WritePNG(graph, f); err != nil {
		return "", fmt.Errorf("render artifact: %w", err)
	}
	return path, nil
}

// Show opens the artifact in the platform viewer. Best effort: callers log
// the returned error and continue.
func Show(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
