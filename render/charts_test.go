package render

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"covid-dashboard/models"
	"covid-dashboard/utils"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func newTestRenderer() *ChartRenderer {
	return NewChartRenderer(utils.NewLoggerTo(io.Discard, utils.LevelDebug), 640, 360)
}

func TestRenderScatter(t *testing.T) {
	r := newTestRenderer()
	fig := models.Figure{
		Type: "scatter",
		Name: "Confirmed Cases",
		X:    []string{"2020-04-01", "2020-04-02", "2020-04-03"},
		Y:    []string{"10", "not a number", "15"},
		Layout: models.Layout{
			Title:      "Cases Trend Over Time",
			XAxisTitle: "Date",
			YAxisTitle: "Number of Cases",
		},
	}
	if err := r.Render(models.MountTrend, fig); err != nil {
		t.Fatalf("Render: %v", err)
	}
	png, ok := r.Chart(models.MountTrend)
	if !ok || !bytes.HasPrefix(png, pngMagic) {
		t.Fatalf("expected PNG at %s, ok=%v", models.MountTrend, ok)
	}
}

func TestRenderScatterSinglePoint(t *testing.T) {
	r := newTestRenderer()
	fig := models.Figure{Type: "scatter", X: []string{"d1"}, Y: []string{"7"}}
	if err := r.Render(models.MountTrend, fig); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, ok := r.Chart(models.MountTrend); !ok {
		t.Error("expected a chart for a single point")
	}
}

func TestRenderPieAndBar(t *testing.T) {
	r := newTestRenderer()
	pie := models.Figure{
		Type:   "pie",
		Labels: []string{"M", "F"},
		Values: []int{2, 3},
		Layout: models.Layout{Title: "Gender Distribution", Height: 300, ShowLegend: true, Hole: 0.4},
	}
	bar := models.Figure{
		Type:   "bar",
		Labels: []string{"0-17", "18-30", "31-50", "51-70", "70+"},
		Values: []int{0, 0, 0, 0, 0},
		Layout: models.Layout{Title: "Age Distribution"},
	}
	if err := r.Render(models.MountGender, pie); err != nil {
		t.Fatalf("pie: %v", err)
	}
	if err := r.Render(models.MountAge, bar); err != nil {
		t.Fatalf("bar: %v", err)
	}
	for _, m := range []string{models.MountGender, models.MountAge} {
		if png, ok := r.Chart(m); !ok || !bytes.HasPrefix(png, pngMagic) {
			t.Errorf("expected PNG at %s", m)
		}
	}
	if got := r.Mounts(); len(got) != 2 {
		t.Errorf("Mounts: got %v", got)
	}
}

func TestRenderEmptyFigureClearsMount(t *testing.T) {
	r := newTestRenderer()
	_ = r.Render(models.MountGender, models.Figure{Type: "pie", Labels: []string{"F"}, Values: []int{1}})
	if _, ok := r.Chart(models.MountGender); !ok {
		t.Fatal("setup: expected a chart")
	}

	if err := r.Render(models.MountGender, models.Figure{Type: "pie"}); err != nil {
		t.Fatalf("Render empty: %v", err)
	}
	if _, ok := r.Chart(models.MountGender); ok {
		t.Error("empty figure should clear the mount")
	}

	if err := r.Render(models.MountTrend, models.Figure{Type: "scatter", X: []string{"a"}, Y: []string{"x"}}); err != nil {
		t.Fatalf("Render non-numeric trend: %v", err)
	}
	if _, ok := r.Chart(models.MountTrend); ok {
		t.Error("trend with no numeric values should leave the mount empty")
	}
}

func TestRenderUnsupportedType(t *testing.T) {
	r := newTestRenderer()
	err := r.Render("x", models.Figure{Type: "heatmap"})
	if !errors.Is(err, ErrUnsupportedFigure) {
		t.Errorf("expected ErrUnsupportedFigure, got %v", err)
	}
}

func TestLabelTicksThinsLabels(t *testing.T) {
	labels := make([]string, 35)
	for i := range labels {
		labels[i] = string(rune('a' + i%26))
	}
	ticks := labelTicks(labels)
	if len(ticks) > maxTickLabels {
		t.Errorf("ticks: got %d, want at most %d", len(ticks), maxTickLabels)
	}
	if ticks[0].Value != 0 || ticks[1].Value != 4 {
		t.Errorf("tick spacing: got %v, %v", ticks[0].Value, ticks[1].Value)
	}
	if labelTicks(nil) != nil {
		t.Error("no labels should give no ticks")
	}
}

func TestRenderPieWithoutHole(t *testing.T) {
	r := newTestRenderer()
	fig := models.Figure{Type: "pie", Labels: []string{"M", "F"}, Values: []int{4, 1}}
	if err := r.Render(models.MountGender, fig); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if png, ok := r.Chart(models.MountGender); !ok || !bytes.HasPrefix(png, pngMagic) {
		t.Error("expected a PNG for a plain pie")
	}
}

func TestBarStyle(t *testing.T) {
	style, err := barStyle("#6366f1")
	if err != nil {
		t.Fatalf("barStyle: %v", err)
	}
	want := drawing.Color{R: 0x63, G: 0x66, B: 0xf1, A: 255}
	if style.FillColor != want {
		t.Errorf("fill: got %v, want %v", style.FillColor, want)
	}

	if style, err := barStyle(""); err != nil || !style.FillColor.IsZero() {
		t.Errorf("empty colour: got %v, %v", style.FillColor, err)
	}
	for _, bad := range []string{"#12", "#zzzzzz", "6366f1ff"} {
		if _, err := barStyle(bad); err == nil {
			t.Errorf("barStyle(%q): expected error", bad)
		}
	}
}

func TestRenderBarRejectsBadColour(t *testing.T) {
	r := newTestRenderer()
	fig := models.Figure{Type: "bar", Labels: []string{"0-17"}, Values: []int{3}, Color: "blue"}
	if err := r.Render(models.MountAge, fig); err == nil {
		t.Error("expected an error for a malformed colour")
	}
}
