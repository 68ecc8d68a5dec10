package usecase

import (
	"context"
	"reflect"
	"testing"
	"time"

	"Resona/internal/domain/models"
	domrepo "Resona/internal/domain/repository"
)

type fakeSource struct {
	records []models.MatchRecord
	err     error
}

func (f *fakeSource) GetAll(_ context.Context) ([]models.MatchRecord, error) {
	return f.records, f.err
}

func (f *fakeSource) GetMatches(_ context.Context, from, to time.Time, limit int) ([]models.MatchRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.MatchRecord, 0, limit)
	for _, r := range f.records {
		if !r.Timestamp.Before(from) && !r.Timestamp.After(to) {
			out = append(out, r)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func rec(chosen int, ts time.Time) models.MatchRecord {
	return models.MatchRecord{ChosenNumber: chosen, MatchedNumber: chosen, Timestamp: ts}
}

func TestTodayCountSingleRecord(t *testing.T) {
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	records := []models.MatchRecord{rec(3, time.Date(2024, 10, 10, 9, 0, 0, 0, time.UTC))}

	if got := TodayCount(records, now, time.UTC); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestTodayCountExcludesOtherDays(t *testing.T) {
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	records := []models.MatchRecord{
		rec(1, time.Date(2024, 10, 9, 23, 59, 59, 0, time.UTC)),
		rec(2, time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)),
		rec(3, time.Date(2024, 10, 10, 23, 59, 59, 0, time.UTC)),
		rec(4, time.Date(2024, 10, 11, 0, 0, 0, 0, time.UTC)),
	}

	if got := TodayCount(records, now, time.UTC); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestTodayCountEmpty(t *testing.T) {
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	if got := TodayCount(nil, now, time.UTC); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMostFrequentChosenNumber(t *testing.T) {
	records := []models.MatchRecord{
		rec(5, time.Date(2024, 10, 10, 14, 0, 0, 0, time.UTC)),
		rec(5, time.Date(2024, 10, 10, 14, 30, 0, 0, time.UTC)),
		rec(2, time.Date(2024, 10, 10, 3, 0, 0, 0, time.UTC)),
	}

	got, ok := MostFrequentChosenNumber(records)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Number != 5 || got.Count != 2 {
		t.Fatalf("expected (5, 2), got (%d, %d)", got.Number, got.Count)
	}
}

func TestMostFrequentChosenNumberTieBreaksToSmallest(t *testing.T) {
	records := []models.MatchRecord{
		rec(7, time.Date(2024, 10, 10, 1, 0, 0, 0, time.UTC)),
		rec(3, time.Date(2024, 10, 10, 2, 0, 0, 0, time.UTC)),
		rec(7, time.Date(2024, 10, 10, 3, 0, 0, 0, time.UTC)),
		rec(3, time.Date(2024, 10, 10, 4, 0, 0, 0, time.UTC)),
	}

	got, ok := MostFrequentChosenNumber(records)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Number != 3 || got.Count != 2 {
		t.Fatalf("expected (3, 2), got (%d, %d)", got.Number, got.Count)
	}
}

func TestMostFrequentChosenNumberEmpty(t *testing.T) {
	if _, ok := MostFrequentChosenNumber(nil); ok {
		t.Fatalf("expected not ok for empty input")
	}
}

func TestPeakHour(t *testing.T) {
	records := []models.MatchRecord{
		rec(5, time.Date(2024, 10, 10, 14, 0, 0, 0, time.UTC)),
		rec(5, time.Date(2024, 10, 11, 14, 30, 0, 0, time.UTC)),
		rec(2, time.Date(2024, 10, 10, 3, 0, 0, 0, time.UTC)),
	}

	got, ok := PeakHour(records, time.UTC)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got != 14 {
		t.Fatalf("expected hour 14, got %d", got)
	}
}

func TestPeakHourTieBreaksToEarliest(t *testing.T) {
	records := []models.MatchRecord{
		rec(1, time.Date(2024, 10, 10, 20, 0, 0, 0, time.UTC)),
		rec(2, time.Date(2024, 10, 10, 6, 0, 0, 0, time.UTC)),
	}

	got, ok := PeakHour(records, time.UTC)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got != 6 {
		t.Fatalf("expected hour 6, got %d", got)
	}
}

func TestPeakHourEmpty(t *testing.T) {
	if _, ok := PeakHour(nil, time.UTC); ok {
		t.Fatalf("expected not ok for empty input")
	}
}

func TestMatchFrequencySameDay(t *testing.T) {
	day := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	records := []models.MatchRecord{
		rec(1, day.Add(1 * time.Hour)),
		rec(2, day.Add(5 * time.Hour)),
		rec(3, day.Add(9 * time.Hour)),
		rec(4, day.Add(22 * time.Hour)),
	}

	if got := MatchFrequencyPerDay(records, time.UTC); got != "4 today" {
		t.Fatalf("expected %q, got %q", "4 today", got)
	}
}

func TestMatchFrequencyFiveDaySpan(t *testing.T) {
	day := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	records := make([]models.MatchRecord, 0, 10)
	for i := 0; i < 10; i++ {
		records = append(records, rec(1+i%9, day.AddDate(0, 0, i%5).Add(12*time.Hour)))
	}

	if got := MatchFrequencyPerDay(records, time.UTC); got != "2.0 per day" {
		t.Fatalf("expected %q, got %q", "2.0 per day", got)
	}
}

func TestMatchFrequencyEmpty(t *testing.T) {
	if got := MatchFrequencyPerDay(nil, time.UTC); got != models.NoMatchesSentinel {
		t.Fatalf("expected sentinel, got %q", got)
	}
}

func TestSummaryEmptyUsesSentinels(t *testing.T) {
	uc := NewInsightsUseCase(&fakeSource{}, time.UTC)
	uc.SetClock(func() time.Time { return time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC) })

	s, err := uc.Summary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.TodayCount != 0 {
		t.Fatalf("expected zero today count, got %d", s.TodayCount)
	}
	if s.MostFrequent != nil {
		t.Fatalf("expected nil most frequent")
	}
	if s.MostFrequentText != models.NoMatchesSentinel {
		t.Fatalf("expected sentinel most frequent, got %q", s.MostFrequentText)
	}
	if s.PeakHour != models.NoMatchesSentinel {
		t.Fatalf("expected sentinel peak hour, got %q", s.PeakHour)
	}
	if s.Frequency != models.NoMatchesSentinel {
		t.Fatalf("expected sentinel frequency, got %q", s.Frequency)
	}
}

func TestSummaryFormatsFields(t *testing.T) {
	now := time.Date(2024, 10, 10, 16, 0, 0, 0, time.UTC)
	src := &fakeSource{records: []models.MatchRecord{
		rec(5, time.Date(2024, 10, 10, 14, 0, 0, 0, time.UTC)),
		rec(5, time.Date(2024, 10, 10, 14, 30, 0, 0, time.UTC)),
		rec(2, time.Date(2024, 10, 10, 3, 0, 0, 0, time.UTC)),
	}}
	uc := NewInsightsUseCase(src, time.UTC)
	uc.SetClock(func() time.Time { return now })

	s, err := uc.Summary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.TodayCount != 3 {
		t.Fatalf("expected 3 today, got %d", s.TodayCount)
	}
	if s.MostFrequentText != "Number 5 (2 times)" {
		t.Fatalf("unexpected most frequent text %q", s.MostFrequentText)
	}
	if s.PeakHour != "14:00" {
		t.Fatalf("unexpected peak hour %q", s.PeakHour)
	}
	if s.Frequency != "3 today" {
		t.Fatalf("unexpected frequency %q", s.Frequency)
	}
}

type failingNarrative struct{}

func (failingNarrative) Generate(_ context.Context, _ models.InsightSummary) (string, error) {
	return "", context.DeadlineExceeded
}

func TestSummaryNarrativeFailureIsNonFatal(t *testing.T) {
	src := &fakeSource{records: []models.MatchRecord{
		rec(4, time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)),
	}}
	uc := NewInsightsUseCase(src, time.UTC)
	uc.SetClock(func() time.Time { return time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC) })
	uc.SetNarrative(failingNarrative{})

	s, err := uc.Summary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Narrative != "" {
		t.Fatalf("expected empty narrative on generator failure, got %q", s.Narrative)
	}
}

func TestAggregationIsIdempotent(t *testing.T) {
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	records := []models.MatchRecord{
		rec(5, time.Date(2024, 10, 9, 14, 0, 0, 0, time.UTC)),
		rec(2, time.Date(2024, 10, 10, 3, 0, 0, 0, time.UTC)),
		rec(5, time.Date(2024, 10, 10, 14, 0, 0, 0, time.UTC)),
	}

	first := Histogram(records, domrepo.WindowWeek, now, time.UTC)
	second := Histogram(records, domrepo.WindowWeek, now, time.UTC)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results, got %v vs %v", first, second)
	}

	a, _ := MostFrequentChosenNumber(records)
	b, _ := MostFrequentChosenNumber(records)
	if a != b {
		t.Fatalf("expected identical results, got %v vs %v", a, b)
	}
}
