package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"covid-dashboard/models"
	"covid-dashboard/utils"
)

// ErrUnsupportedFigure is returned for a figure type the renderer cannot draw.
var ErrUnsupportedFigure = errors.New("unsupported figure type")

const maxTickLabels = 10

// ChartRenderer draws figures to PNG and keeps the latest image per mount point.
// It is safe for concurrent use.
type ChartRenderer struct {
	logger *utils.Logger
	width  int
	height int

	mu     sync.RWMutex
	charts map[string][]byte
}

// NewChartRenderer creates a renderer producing images of the given default size.
func NewChartRenderer(logger *utils.Logger, width, height int) *ChartRenderer {
	return &ChartRenderer{
		logger: logger,
		width:  width,
		height: height,
		charts: make(map[string][]byte),
	}
}

// Render replaces the image at mount with fig. A figure with nothing to draw
// clears the mount.
func (r *ChartRenderer) Render(mount string, fig models.Figure) error {
	var (
		png []byte
		err error
	)
	switch fig.Type {
	case "scatter":
		png, err = r.drawScatter(fig)
	case "pie":
		png, err = r.drawPie(fig)
	case "bar":
		png, err = r.drawBar(fig)
	default:
		return fmt.Errorf("render %s: %w: %q", mount, ErrUnsupportedFigure, fig.Type)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", mount, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if png == nil {
		delete(r.charts, mount)
		r.logger.Debug("[render] %s cleared, no data", mount)
		return nil
	}
	r.charts[mount] = png
	r.logger.Debug("[render] %s drawn (%d bytes)", mount, len(png))
	return nil
}

// Chart returns the latest PNG drawn at mount.
func (r *ChartRenderer) Chart(mount string) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	png, ok := r.charts[mount]
	return png, ok
}

// Mounts lists the mount points that currently hold an image.
func (r *ChartRenderer) Mounts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.charts))
	for m := range r.charts {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func (r *ChartRenderer) size(layout models.Layout) (int, int) {
	h := r.height
	if layout.Height > 0 {
		h = layout.Height
	}
	return r.width, h
}

// drawScatter plots Y against the position of each X label. Y values that are
// not numbers are left out of the line.
func (r *ChartRenderer) drawScatter(fig models.Figure) ([]byte, error) {
	var xs, ys []float64
	for i, raw := range fig.Y {
		v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, v)
	}
	if len(xs) == 0 {
		return nil, nil
	}

	yMin, yMax := 0.0, ys[0]
	for _, v := range ys {
		yMin = math.Min(yMin, v)
		yMax = math.Max(yMax, v)
	}
	if yMax == yMin {
		yMax = yMin + 1
	} else {
		yMax += (yMax - yMin) * 0.1
	}

	w, h := r.size(fig.Layout)
	col := chart.ColorBlue
	ch := chart.Chart{
		Title:      fig.Layout.Title,
		Width:      w,
		Height:     h,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  fig.Layout.XAxisTitle,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(fig.Y)) - 0.5},
			Ticks: labelTicks(fig.X),
		},
		YAxis: chart.YAxis{
			Name:  fig.Layout.YAxisTitle,
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    fig.Name,
				XValues: xs,
				YValues: ys,
				Style:   pointStyle(col),
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *ChartRenderer) drawPie(fig models.Figure) ([]byte, error) {
	values := make([]chart.Value, 0, len(fig.Values))
	for i, v := range fig.Values {
		if v <= 0 || i >= len(fig.Labels) {
			continue
		}
		label := fig.Labels[i]
		if fig.Layout.ShowLegend {
			label = fmt.Sprintf("%s (%d)", label, v)
		}
		values = append(values, chart.Value{Label: label, Value: float64(v)})
	}
	if len(values) == 0 {
		return nil, nil
	}

	w, h := r.size(fig.Layout)
	var pie interface {
		Render(chart.RendererProvider, io.Writer) error
	}
	if fig.Layout.Hole > 0 {
		pie = chart.DonutChart{Title: fig.Layout.Title, Width: w, Height: h, Values: values}
	} else {
		pie = chart.PieChart{Title: fig.Layout.Title, Width: w, Height: h, Values: values}
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *ChartRenderer) drawBar(fig models.Figure) ([]byte, error) {
	if len(fig.Values) == 0 {
		return nil, nil
	}

	fill, err := barStyle(fig.Color)
	if err != nil {
		return nil, err
	}
	bars := make([]chart.Value, 0, len(fig.Values))
	maxV := 1.0
	for i, v := range fig.Values {
		label := ""
		if i < len(fig.Labels) {
			label = fig.Labels[i]
		}
		bars = append(bars, chart.Value{Label: label, Value: float64(v), Style: fill})
		maxV = math.Max(maxV, float64(v))
	}

	w, h := r.size(fig.Layout)
	bar := chart.BarChart{
		Title:      fig.Layout.Title,
		Width:      w,
		Height:     h,
		BarWidth:   60,
		BarSpacing: 40,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: math.Ceil(maxV * 1.1)},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bar.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// barStyle fills bars with a "#rrggbb" colour. An empty colour keeps the
// chart's default palette.
func barStyle(hex string) (chart.Style, error) {
	if hex == "" {
		return chart.Style{}, nil
	}
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return chart.Style{}, fmt.Errorf("bar colour %q: want #rrggbb", hex)
	}
	if _, err := strconv.ParseUint(h, 16, 32); err != nil {
		return chart.Style{}, fmt.Errorf("bar colour %q: %w", hex, err)
	}
	col := drawing.ColorFromHex(h)
	return chart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 1}, nil
}

func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    3,
	}
}

// labelTicks places at most maxTickLabels category labels evenly across the axis.
func labelTicks(labels []string) []chart.Tick {
	n := len(labels)
	if n == 0 {
		return nil
	}
	step := (n + maxTickLabels - 1) / maxTickLabels
	ticks := make([]chart.Tick, 0, maxTickLabels+1)
	for i := 0; i < n; i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: labels[i]})
	}
	return ticks
}
