package models

import "time"

// NoMatchesSentinel is the display string callers render verbatim when an
// aggregation has no data to report.
const NoMatchesSentinel = "No matches yet"

// InsightSummary is the consolidated descriptive-statistics view served to
// clients. Text fields carry NoMatchesSentinel when the store is empty.
type InsightSummary struct {
	GeneratedAt      time.Time    `json:"generated_at"`
	TodayCount       int          `json:"today_count"`
	MostFrequent     *NumberCount `json:"most_frequent,omitempty"`
	MostFrequentText string       `json:"most_frequent_text"`
	PeakHour         string       `json:"peak_hour"`
	Frequency        string       `json:"frequency"`
	Narrative        string       `json:"narrative,omitempty"`
}

// HistogramView is the chart payload for one selected window.
type HistogramView struct {
	Window  string       `json:"window"`
	Buckets []BucketView `json:"buckets"`
	Total   int          `json:"total"`
}

// BucketView is the transport shape of a TimeBucket.
type BucketView struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}
