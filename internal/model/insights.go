package model

import "time"

// Periods accepted by the insights endpoints.
const (
	Period7d  = "7d"
	Period30d = "30d"
	Period90d = "90d"
	Period1y  = "1y"
	PeriodAll = "all"
)

// PeriodStart maps a period to its window start relative to now.
// Returns nil for "all" (and anything unrecognized), meaning unbounded.
func PeriodStart(period string, now time.Time) *time.Time {
	var d time.Duration
	switch period {
	case Period7d:
		d = 7 * 24 * time.Hour
	case Period30d:
		d = 30 * 24 * time.Hour
	case Period90d:
		d = 90 * 24 * time.Hour
	case Period1y:
		d = 365 * 24 * time.Hour
	default:
		return nil
	}
	start := now.Add(-d)
	return &start
}

// IsValidPeriod reports whether p is an accepted period value.
func IsValidPeriod(p string) bool {
	switch p {
	case Period7d, Period30d, Period90d, Period1y, PeriodAll:
		return true
	}
	return false
}

// RawStats is the unrounded aggregate row computed by the repository.
type RawStats struct {
	TotalDreams int     `db:"total_dreams"`
	AvgClarity  float64 `db:"avg_clarity"`
	LucidCount  int     `db:"lucid_count"`
	TotalTags   int     `db:"total_tags"`
}

// DreamStats is the client-facing stats shape, rounded to one decimal place.
// Always fully populated with zeros on an empty window.
type DreamStats struct {
	TotalDreams     int     `json:"totalDreams"`
	AvgClarity      float64 `json:"avgClarity"`
	LucidCount      int     `json:"lucidCount"`
	LucidPercentage float64 `json:"lucidPercentage"`
	AvgTagsPerDream float64 `json:"avgTagsPerDream"`
}

type MoodCount struct {
	Mood  string `db:"mood" json:"mood"`
	Count int    `db:"count" json:"count"`
}

type DayCount struct {
	Date  string `db:"day" json:"date"`
	Count int    `db:"count" json:"count"`
}

type TagCount struct {
	Tag   string `db:"tag" json:"tag"`
	Count int    `db:"count" json:"count"`
}

type SymbolCount struct {
	Symbol string `db:"symbol" json:"symbol"`
	Count  int    `db:"count" json:"count"`
}
