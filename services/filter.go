package services

import (
	"covid-dashboard/models"
	"covid-dashboard/utils"
)

// RegionSet collects the distinct State values of the full dataset in order
// of first appearance. Records without a State contribute nothing.
func RegionSet(dataset models.Dataset) *utils.OrderedSet {
	set := utils.NewOrderedSet()
	for _, r := range dataset {
		if s := r.Get(models.FieldState, ""); s != "" {
			set.Add(s)
		}
	}
	return set
}

// DeriveRegions returns the values of RegionSet as a slice.
func DeriveRegions(dataset models.Dataset) []string {
	return RegionSet(dataset).Values()
}

// FilterByRegion returns the records whose State equals selection exactly,
// keeping their order. An empty selection returns dataset unchanged.
func FilterByRegion(dataset models.Dataset, selection string) models.Dataset {
	if selection == "" {
		return dataset
	}
	out := make(models.Dataset, 0, len(dataset))
	for _, r := range dataset {
		if r[models.FieldState] == selection {
			out = append(out, r)
		}
	}
	return out
}
