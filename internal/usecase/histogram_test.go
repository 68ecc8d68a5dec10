package usecase

import (
	"fmt"
	"testing"
	"time"

	"Resona/internal/domain/models"
	domrepo "Resona/internal/domain/repository"
)

func TestDayHistogramSingleMorningRecord(t *testing.T) {
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	records := []models.MatchRecord{
		rec(3, time.Date(2024, 10, 10, 7, 0, 0, 0, time.UTC)),
	}

	got := Histogram(records, domrepo.WindowDay, now, time.UTC)
	want := []models.TimeBucket{
		{Label: "12 AM", Count: 0},
		{Label: "6 AM", Count: 1},
		{Label: "12 PM", Count: 0},
		{Label: "6 PM", Count: 0},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d buckets, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bucket %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestDayHistogramHalfOpenBoundary(t *testing.T) {
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	// Exactly 06:00 belongs to the "6 AM" bucket, not "12 AM".
	records := []models.MatchRecord{
		rec(1, time.Date(2024, 10, 10, 6, 0, 0, 0, time.UTC)),
		rec(2, time.Date(2024, 10, 10, 5, 59, 59, 0, time.UTC)),
	}

	got := Histogram(records, domrepo.WindowDay, now, time.UTC)
	if got[0].Count != 1 {
		t.Fatalf("expected 1 in first bucket, got %d", got[0].Count)
	}
	if got[1].Count != 1 {
		t.Fatalf("expected 1 in second bucket, got %d", got[1].Count)
	}
}

func TestWeekHistogramOrderAndLabels(t *testing.T) {
	// 2024-10-10 is a Thursday; the 7-day window runs Fri..Thu oldest first.
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)

	got := Histogram(nil, domrepo.WindowWeek, now, time.UTC)
	wantLabels := []string{"Fri", "Sat", "Sun", "Mon", "Tue", "Wed", "Thu"}
	if len(got) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(got))
	}
	for i, w := range wantLabels {
		if got[i].Label != w {
			t.Fatalf("bucket %d: expected label %q, got %q", i, w, got[i].Label)
		}
	}
}

func TestWeekHistogramCountsPerDay(t *testing.T) {
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	records := []models.MatchRecord{
		rec(1, time.Date(2024, 10, 4, 9, 0, 0, 0, time.UTC)),   // Fri, oldest bucket
		rec(2, time.Date(2024, 10, 10, 9, 0, 0, 0, time.UTC)),  // Thu, newest bucket
		rec(3, time.Date(2024, 10, 10, 22, 0, 0, 0, time.UTC)), // Thu
		rec(4, time.Date(2024, 10, 3, 9, 0, 0, 0, time.UTC)),   // outside window
	}

	got := Histogram(records, domrepo.WindowWeek, now, time.UTC)
	if got[0].Count != 1 {
		t.Fatalf("expected 1 in oldest bucket, got %d", got[0].Count)
	}
	if got[6].Count != 2 {
		t.Fatalf("expected 2 in newest bucket, got %d", got[6].Count)
	}
	total := 0
	for _, b := range got {
		total += b.Count
	}
	if total != 3 {
		t.Fatalf("expected 3 in-window records, got %d", total)
	}
}

func TestMonthHistogramTodayFallsInWeekFive(t *testing.T) {
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	records := []models.MatchRecord{
		rec(1, now),
		rec(2, time.Date(2024, 9, 11, 12, 0, 0, 0, time.UTC)), // 29 days back, Week 1
		rec(3, time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)),  // outside window
	}

	got := Histogram(records, domrepo.WindowMonth, now, time.UTC)
	if len(got) != 5 {
		t.Fatalf("expected 5 buckets, got %d", len(got))
	}
	for i, b := range got {
		wantLabel := fmt.Sprintf("Week %d", i+1)
		if b.Label != wantLabel {
			t.Fatalf("bucket %d: expected label %q, got %q", i, wantLabel, b.Label)
		}
	}
	if got[0].Count != 1 {
		t.Fatalf("expected 1 in Week 1, got %d", got[0].Count)
	}
	if got[4].Count != 1 {
		t.Fatalf("expected 1 in Week 5, got %d", got[4].Count)
	}
}

func TestHistogramSumMatchesInWindowRecords(t *testing.T) {
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	records := []models.MatchRecord{
		rec(1, time.Date(2024, 10, 10, 1, 0, 0, 0, time.UTC)),
		rec(2, time.Date(2024, 10, 8, 13, 0, 0, 0, time.UTC)),
		rec(3, time.Date(2024, 9, 20, 13, 0, 0, 0, time.UTC)),
		rec(4, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)), // far outside every window
	}

	for _, tc := range []struct {
		window domrepo.Window
		want   int
	}{
		{domrepo.WindowDay, 1},
		{domrepo.WindowWeek, 2},
		{domrepo.WindowMonth, 3},
	} {
		got := Histogram(records, tc.window, now, time.UTC)
		total := 0
		for _, b := range got {
			total += b.Count
		}
		if total != tc.want {
			t.Fatalf("window %s: expected sum %d, got %d", tc.window, tc.want, total)
		}
	}
}
