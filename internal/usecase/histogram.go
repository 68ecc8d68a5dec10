package usecase

import (
	"fmt"
	"time"

	"Resona/internal/domain/models"
	domrepo "Resona/internal/domain/repository"
)

// Histogram buckets the records for the selected window. Bucket boundaries
// are half-open [start, end): a record stamped exactly at a bucket's end
// belongs to the next bucket. Records outside the window's overall span are
// excluded, never an error.
func Histogram(records []models.MatchRecord, w domrepo.Window, now time.Time, loc *time.Location) []models.TimeBucket {
	switch w {
	case domrepo.WindowWeek:
		return weekBuckets(records, now, loc)
	case domrepo.WindowMonth:
		return monthBuckets(records, now, loc)
	default:
		return dayBuckets(records, now, loc)
	}
}

// dayBuckets splits the current calendar day into four fixed 6-hour bars.
func dayBuckets(records []models.MatchRecord, now time.Time, loc *time.Location) []models.TimeBucket {
	labels := [4]string{"12 AM", "6 AM", "12 PM", "6 PM"}
	start := startOfDay(now, loc)

	out := make([]models.TimeBucket, 0, 4)
	for i := 0; i < 4; i++ {
		lo := start.Add(time.Duration(i) * 6 * time.Hour)
		hi := start.Add(time.Duration(i+1) * 6 * time.Hour)
		out = append(out, models.TimeBucket{
			Label: labels[i],
			Count: countBetween(records, lo, hi),
		})
	}
	return out
}

// weekBuckets covers the 7-day window ending today, one bar per day,
// oldest first, labeled with short weekday names.
func weekBuckets(records []models.MatchRecord, now time.Time, loc *time.Location) []models.TimeBucket {
	today := startOfDay(now, loc)

	out := make([]models.TimeBucket, 0, 7)
	for i := -6; i <= 0; i++ {
		lo := today.AddDate(0, 0, i)
		hi := lo.AddDate(0, 0, 1)
		out = append(out, models.TimeBucket{
			Label: lo.Weekday().String()[:3],
			Count: countBetween(records, lo, hi),
		})
	}
	return out
}

// monthBuckets covers a 30-day-back window with five 7-day bars. The anchor
// is the start of the day 29 days ago, so today always falls in "Week 5".
func monthBuckets(records []models.MatchRecord, now time.Time, loc *time.Location) []models.TimeBucket {
	anchor := startOfDay(now, loc).AddDate(0, 0, -29)

	out := make([]models.TimeBucket, 0, 5)
	for i := 0; i < 5; i++ {
		lo := anchor.AddDate(0, 0, i*7)
		hi := anchor.AddDate(0, 0, (i+1)*7)
		out = append(out, models.TimeBucket{
			Label: fmt.Sprintf("Week %d", i+1),
			Count: countBetween(records, lo, hi),
		})
	}
	return out
}

func countBetween(records []models.MatchRecord, lo, hi time.Time) int {
	n := 0
	for _, r := range records {
		if !r.Timestamp.Before(lo) && r.Timestamp.Before(hi) {
			n++
		}
	}
	return n
}
