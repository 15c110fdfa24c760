package services

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"covid-dashboard/models"
	"covid-dashboard/utils"
)

const zero = "0"

// LatestSnapshot returns the counters of the last record. It does not sum
// across records; an empty sequence yields all "0".
func LatestSnapshot(records models.Dataset) models.Snapshot {
	var latest models.CaseRecord
	if n := len(records); n > 0 {
		latest = records[n-1]
	}
	return models.Snapshot{
		Confirmed: latest.Get(models.FieldConfirmed, zero),
		Active:    latest.Get(models.FieldActive, zero),
		Recovered: latest.Get(models.FieldRecovered, zero),
		Deaths:    latest.Get(models.FieldDeaths, zero),
	}
}

// Trend returns each record's Date and Confirmed values in input order.
// Values are passed through unparsed; missing fields become "".
func Trend(records models.Dataset) models.TrendSeries {
	ts := models.TrendSeries{
		X: make([]string, len(records)),
		Y: make([]string, len(records)),
	}
	for i, r := range records {
		ts.X[i] = r.Get(models.FieldDate, "")
		ts.Y[i] = r.Get(models.FieldConfirmed, "")
	}
	return ts
}

// GenderDistribution counts records per non-empty Gender value, labels in
// order of first occurrence. Records without a gender are not counted.
func GenderDistribution(records models.Dataset) models.Distribution {
	seen := utils.NewOrderedSet()
	counts := make(map[string]int)
	for _, r := range records {
		g := r.Get(models.FieldGender, "")
		if g == "" {
			continue
		}
		seen.Add(g)
		counts[g]++
	}

	labels := seen.Values()
	dist := models.Distribution{Labels: labels, Counts: make([]int, len(labels))}
	for i, l := range labels {
		dist.Counts[i] = counts[l]
	}
	return dist
}

// AgeDistribution counts records into the fixed age bins. Every bin is
// present, zero-initialised; records whose Age has no leading integer are skipped.
func AgeDistribution(records models.Dataset) models.Distribution {
	dist := models.Distribution{
		Labels: make([]string, len(models.AgeBins)),
		Counts: make([]int, len(models.AgeBins)),
	}
	for i, b := range models.AgeBins {
		dist.Labels[i] = b.Label
	}

	for _, r := range records {
		age, ok := parseLeadingInt(r.Get(models.FieldAge, ""))
		if !ok {
			continue
		}
		dist.Counts[ageBinIndex(age)]++
	}
	return dist
}

func ageBinIndex(age int64) int {
	last := len(models.AgeBins) - 1
	for i, b := range models.AgeBins[:last] {
		if age <= int64(b.Max) {
			return i
		}
	}
	return last
}

// parseLeadingInt reads the integer prefix of raw the way a browser's
// parseInt does: leading Unicode whitespace is skipped, an optional sign is
// read, a "0x"/"0X" prefix switches to base 16, and digits are consumed until
// the first character that is not one. "25" → 25, "\u00a040 yrs" → 40,
// "25.9" → 25, "0x1A" → 26, "x" → not ok. Magnitudes beyond int64 saturate by sign.
func parseLeadingInt(raw string) (int64, bool) {
	s := strings.TrimLeftFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\ufeff'
	})

	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign, s = s[:1], s[1:]
	}

	base := 10
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, s = 16, s[2:]
	}

	end := 0
	for end < len(s) && digitValue(s[end]) < base {
		end++
	}
	if end == 0 {
		return 0, false
	}

	n, err := strconv.ParseInt(sign+s[:end], base, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return n, true
		}
		return 0, false
	}
	return n, true
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default:
		return 36
	}
}
