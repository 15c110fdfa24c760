package services

import (
	"fmt"
	"io"
	"strings"

	"covid-dashboard/models"
)

const barScale = 40

// PrintSummary writes a terminal rendition of the dashboard to w.
func PrintSummary(w io.Writer, v models.DashboardView) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 COVID-19 DASHBOARD\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	region := v.Selection
	if region == "" {
		region = "All States"
	}
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Region           : \033[1m%s\033[0m\n", region)
	fmt.Fprintf(w, "  Records          : \033[1m%d\033[0m of %d\n", v.FilteredCount, v.TotalRecords)
	if !v.LastUpdated.IsZero() {
		fmt.Fprintf(w, "  Last updated     : %s\n", v.LastUpdated.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Latest Figures\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Confirmed : \033[1;34m%s\033[0m\n", v.Stats.Confirmed)
	fmt.Fprintf(w, "  Active    : \033[1;33m%s\033[0m\n", v.Stats.Active)
	fmt.Fprintf(w, "  Recovered : \033[1;32m%s\033[0m\n", v.Stats.Recovered)
	fmt.Fprintf(w, "  Deaths    : \033[1;31m%s\033[0m\n", v.Stats.Deaths)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Gender Distribution\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if v.Gender.Total() == 0 {
		fmt.Fprintf(w, "  No gender data\n")
	} else {
		printBars(w, v.Gender)
		fmt.Fprintf(w, "  %-12s %d\n", "Total", v.Gender.Total())
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Age Distribution\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if v.Age.Total() == 0 {
		fmt.Fprintf(w, "  No age data\n")
	} else {
		printBars(w, v.Age)
		fmt.Fprintf(w, "  %-12s %d\n", "Total", v.Age.Total())
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func printBars(w io.Writer, d models.Distribution) {
	max := 0
	for _, c := range d.Counts {
		if c > max {
			max = c
		}
	}
	for i, label := range d.Labels {
		n := d.Counts[i]
		width := n
		if max > barScale {
			width = n * barScale / max
		}
		fmt.Fprintf(w, "  %-12s %s (%d)\n", truncate(label, 12), strings.Repeat("█", width), n)
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
