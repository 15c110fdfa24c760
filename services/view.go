package services

import (
	"time"

	"covid-dashboard/models"
)

// BuildView runs every aggregation over the filtered records.
func BuildView(dataset models.Dataset, regions []string, selection string) models.DashboardView {
	filtered := FilterByRegion(dataset, selection)
	return models.DashboardView{
		Regions:       regions,
		Selection:     selection,
		TotalRecords:  len(dataset),
		FilteredCount: len(filtered),
		Stats:         LatestSnapshot(filtered),
		Trend:         Trend(filtered),
		Gender:        GenderDistribution(filtered),
		Age:           AgeDistribution(filtered),
	}
}

// Figures describes the three charts for view, keyed by mount point.
func Figures(view models.DashboardView) map[string]models.Figure {
	return map[string]models.Figure{
		models.MountTrend: {
			Type: "scatter",
			Name: "Confirmed Cases",
			X:    view.Trend.X,
			Y:    view.Trend.Y,
			Layout: models.Layout{
				Title:      "Cases Trend Over Time",
				XAxisTitle: "Date",
				YAxisTitle: "Number of Cases",
			},
		},
		models.MountGender: {
			Type:   "pie",
			Labels: view.Gender.Labels,
			Values: view.Gender.Counts,
			Layout: models.Layout{
				Title:      "Gender Distribution",
				Height:     300,
				ShowLegend: true,
				Hole:       0.4,
			},
		},
		models.MountAge: {
			Type:   "bar",
			Labels: view.Age.Labels,
			Values: view.Age.Counts,
			Color:  "#6366f1",
			Layout: models.Layout{
				Title:      "Age Distribution",
				XAxisTitle: "Age Groups",
				YAxisTitle: "Number of Cases",
				Height:     300,
			},
		},
	}
}

func withMeta(view models.DashboardView, state State, lastUpdated time.Time, uploadID string) models.DashboardView {
	view.State = state.String()
	view.LastUpdated = lastUpdated
	view.UploadID = uploadID
	return view
}
