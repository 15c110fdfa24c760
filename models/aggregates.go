package models

// AgeBin is one of the fixed age ranges used by the age distribution.
type AgeBin struct {
	Label string
	// Max is the inclusive upper bound; the last bin has no upper bound.
	Max int
}

// AgeBins are ordered and contiguous; an age belongs to the first bin whose
// Max it does not exceed.
var AgeBins = []AgeBin{
	{Label: "0-17", Max: 17},
	{Label: "18-30", Max: 30},
	{Label: "31-50", Max: 50},
	{Label: "51-70", Max: 70},
	{Label: "70+", Max: -1},
}

// Snapshot holds the stat card values taken from the latest record.
type Snapshot struct {
	Confirmed string `json:"confirmed"`
	Active    string `json:"active"`
	Recovered string `json:"recovered"`
	Deaths    string `json:"deaths"`
}

// TrendSeries holds parallel date and confirmed-count sequences.
type TrendSeries struct {
	X []string `json:"x"`
	Y []string `json:"y"`
}

// Distribution is a labelled count series that keeps label order.
type Distribution struct {
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
}

// Total returns the sum of all counts.
func (d Distribution) Total() int {
	total := 0
	for _, c := range d.Counts {
		total += c
	}
	return total
}
