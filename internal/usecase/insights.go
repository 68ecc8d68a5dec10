package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"Resona/internal/domain/models"
	domrepo "Resona/internal/domain/repository"
	domsvc "Resona/internal/domain/service"
)

// InsightsUseCase derives descriptive statistics and histogram data from a
// snapshot of recorded matches. Every operation is a stateless pure
// computation over the snapshot; the store is read in full per call and
// never mutated here.
type InsightsUseCase struct {
	source  domrepo.MatchSource
	narr    domsvc.NarrativeGenerator
	loc     *time.Location
	nowFn   func() time.Time
	timeout time.Duration
}

func NewInsightsUseCase(source domrepo.MatchSource, loc *time.Location) *InsightsUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &InsightsUseCase{
		source:  source,
		loc:     loc,
		nowFn:   time.Now,
		timeout: 10 * time.Second,
	}
}

// SetNarrative injects an optional narrative generator; narrative failures
// never fail the summary.
func (uc *InsightsUseCase) SetNarrative(n domsvc.NarrativeGenerator) { uc.narr = n }

// SetClock overrides the reference clock (used in tests).
func (uc *InsightsUseCase) SetClock(now func() time.Time) { uc.nowFn = now }

// Summary computes the consolidated statistics view.
func (uc *InsightsUseCase) Summary(ctx context.Context) (*models.InsightSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	records, err := uc.source.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}

	now := uc.nowFn()
	s := &models.InsightSummary{
		GeneratedAt: now,
		TodayCount:  TodayCount(records, now, uc.loc),
		Frequency:   MatchFrequencyPerDay(records, uc.loc),
	}

	if nc, ok := MostFrequentChosenNumber(records); ok {
		s.MostFrequent = &nc
		s.MostFrequentText = fmt.Sprintf("Number %d (%d times)", nc.Number, nc.Count)
	} else {
		s.MostFrequentText = models.NoMatchesSentinel
	}

	if hour, ok := PeakHour(records, uc.loc); ok {
		s.PeakHour = fmt.Sprintf("%02d:00", hour)
	} else {
		s.PeakHour = models.NoMatchesSentinel
	}

	if uc.narr != nil {
		if text, nerr := uc.narr.Generate(ctx, *s); nerr == nil {
			s.Narrative = text
		}
	}
	return s, nil
}

// HistogramView buckets the snapshot for the selected window.
func (uc *InsightsUseCase) HistogramView(ctx context.Context, w domrepo.Window) (*models.HistogramView, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	records, err := uc.source.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}

	buckets := Histogram(records, w, uc.nowFn(), uc.loc)
	view := &models.HistogramView{
		Window:  string(w),
		Buckets: make([]models.BucketView, 0, len(buckets)),
	}
	for _, b := range buckets {
		view.Buckets = append(view.Buckets, models.BucketView{Label: b.Label, Count: b.Count})
		view.Total += b.Count
	}
	return view, nil
}

// TodayCount counts records falling on the current calendar day, using the
// local calendar's day boundaries. Returns 0 for an empty snapshot.
func TodayCount(records []models.MatchRecord, now time.Time, loc *time.Location) int {
	start := startOfDay(now, loc)
	end := start.AddDate(0, 0, 1)
	return countBetween(records, start, end)
}

// MostFrequentChosenNumber groups records by chosen number and returns the
// maximum. Ties break to the smallest number so the result is deterministic
// regardless of traversal order. ok is false for an empty snapshot.
func MostFrequentChosenNumber(records []models.MatchRecord) (models.NumberCount, bool) {
	if len(records) == 0 {
		return models.NumberCount{}, false
	}
	counts := make(map[int]int)
	for _, r := range records {
		counts[r.ChosenNumber]++
	}
	best := models.NumberCount{}
	found := false
	for num, c := range counts {
		if !found || c > best.Count || (c == best.Count && num < best.Number) {
			best = models.NumberCount{Number: num, Count: c}
			found = true
		}
	}
	return best, true
}

// PeakHour groups all records by hour-of-day (0-23) regardless of date and
// returns the busiest hour. Ties break to the earliest hour. ok is false
// for an empty snapshot.
func PeakHour(records []models.MatchRecord, loc *time.Location) (int, bool) {
	if len(records) == 0 {
		return 0, false
	}
	var byHour [24]int
	for _, r := range records {
		byHour[r.Timestamp.In(loc).Hour()]++
	}
	peak := 0
	for h := 1; h < 24; h++ {
		if byHour[h] > byHour[peak] {
			peak = h
		}
	}
	return peak, true
}

// MatchFrequencyPerDay reports the average match rate. With everything on
// one calendar day it reports the raw count as "N today"; otherwise the
// count divided by the inclusive day span, one decimal place. The +1 on the
// span is the inclusive-day-count convention.
func MatchFrequencyPerDay(records []models.MatchRecord, loc *time.Location) string {
	if len(records) == 0 {
		return models.NoMatchesSentinel
	}

	earliest, latest := records[0].Timestamp, records[0].Timestamp
	for _, r := range records[1:] {
		if r.Timestamp.Before(earliest) {
			earliest = r.Timestamp
		}
		if r.Timestamp.After(latest) {
			latest = r.Timestamp
		}
	}

	daySpan := calendarDaysBetween(earliest, latest, loc)
	if daySpan == 0 {
		return fmt.Sprintf("%d today", len(records))
	}
	perDay := float64(len(records)) / float64(daySpan+1)
	return fmt.Sprintf("%.1f per day", perDay)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// calendarDaysBetween counts whole calendar days from a to b. Rounding
// absorbs DST days that are not exactly 24h long.
func calendarDaysBetween(a, b time.Time, loc *time.Location) int {
	d := startOfDay(b, loc).Sub(startOfDay(a, loc))
	return int(math.Round(d.Hours() / 24))
}
