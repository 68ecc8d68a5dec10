package usecase

import (
	"context"
	"testing"
	"time"

	"Resona/internal/domain/models"
)

func TestGetMatchesRejectsInvertedRange(t *testing.T) {
	uc := NewMatchesUseCase(&fakeSource{})
	_, err := uc.GetMatches(context.Background(), GetMatchesParams{
		From: time.Date(2024, 10, 11, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC),
	})
	if err == nil {
		t.Fatalf("expected error for from > to")
	}
}

func TestGetMatchesReturnsWireViews(t *testing.T) {
	ts := time.Date(2024, 10, 10, 9, 0, 0, 0, time.UTC)
	src := &fakeSource{records: []models.MatchRecord{
		{ChosenNumber: 3, MatchedNumber: 3, Timestamp: ts},
	}}
	uc := NewMatchesUseCase(src)

	res, err := uc.GetMatches(context.Background(), GetMatchesParams{
		From:  ts.Add(-time.Hour),
		To:    ts.Add(time.Hour),
		Limit: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Count != 1 || len(res.Matches) != 1 {
		t.Fatalf("expected 1 match, got count=%d len=%d", res.Count, len(res.Matches))
	}
	m := res.Matches[0]
	if m.ChosenNumber != 3 || m.MatchedNumber != 3 || !m.Timestamp.Equal(ts) {
		t.Fatalf("unexpected match view %+v", m)
	}
}

func TestGetMatchesAppliesLimitDefaults(t *testing.T) {
	src := &fakeSource{}
	uc := NewMatchesUseCase(src)
	from := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)

	if _, err := uc.GetMatches(context.Background(), GetMatchesParams{From: from, To: to}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.GetMatches(context.Background(), GetMatchesParams{From: from, To: to, Limit: 50000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
