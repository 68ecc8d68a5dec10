package models

import "time"

// MatchRecord is one focus/realm coincidence event. Records are immutable
// once created; aggregation reads them, never mutates them.
// Note: no transport (json/http) concerns here.
type MatchRecord struct {
	ChosenNumber  int // focus number selected by the user (1-9)
	MatchedNumber int // realm number it coincided with (1-9)
	Timestamp     time.Time
}

// TimeBucket is one histogram bar: records counted in [start, end).
// Buckets are derived and ephemeral, recomputed on every aggregation pass.
type TimeBucket struct {
	Label string
	Count int
}

// NumberCount pairs a focus number with its occurrence count.
type NumberCount struct {
	Number int `json:"number"`
	Count  int `json:"count"`
}

// BiometricSample is a single heart-rate reading from the stream.
type BiometricSample struct {
	BPM       int
	Timestamp time.Time
}
