package models

import "time"

// Figure describes one chart handed to the renderer: a trace plus layout options.
type Figure struct {
	Type   string   `json:"type"` // "scatter", "pie" or "bar"
	Name   string   `json:"name,omitempty"`
	X      []string `json:"x,omitempty"`
	Y      []string `json:"y,omitempty"`
	Labels []string `json:"labels,omitempty"`
	Values []int    `json:"values,omitempty"`
	Color  string   `json:"color,omitempty"` // "#rrggbb" marker colour
	Layout Layout   `json:"layout"`
}

// Layout carries the chart options the renderer understands.
type Layout struct {
	Title      string  `json:"title"`
	XAxisTitle string  `json:"xaxisTitle,omitempty"`
	YAxisTitle string  `json:"yaxisTitle,omitempty"`
	Height     int     `json:"height,omitempty"`
	ShowLegend bool    `json:"showlegend,omitempty"`
	Hole       float64 `json:"hole,omitempty"`
}

// Mount points the dashboard draws into.
const (
	MountTrend  = "trendChart"
	MountGender = "genderDistribution"
	MountAge    = "ageDistribution"
)

// DashboardView is everything the page needs for one render pass.
type DashboardView struct {
	State         string       `json:"state"`
	Regions       []string     `json:"regions"`
	Selection     string       `json:"selection"`
	TotalRecords  int          `json:"totalRecords"`
	FilteredCount int          `json:"filteredCount"`
	Stats         Snapshot     `json:"stats"`
	Trend         TrendSeries  `json:"trend"`
	Gender        Distribution `json:"gender"`
	Age           Distribution `json:"age"`
	LastUpdated   time.Time    `json:"lastUpdated,omitempty"`
	UploadID      string       `json:"uploadId,omitempty"`
}
