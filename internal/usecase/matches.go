package usecase

import (
	"context"
	"fmt"
	"time"

	domrepo "Resona/internal/domain/repository"
)

// MatchesUseCase provides business logic for retrieving raw match records.
type MatchesUseCase struct {
	source domrepo.MatchSource
}

func NewMatchesUseCase(source domrepo.MatchSource) *MatchesUseCase {
	return &MatchesUseCase{source: source}
}

type GetMatchesParams struct {
	From  time.Time
	To    time.Time
	Limit int
}

type MatchView struct {
	ChosenNumber  int       `json:"chosenNumber"`
	MatchedNumber int       `json:"matchedNumber"`
	Timestamp     time.Time `json:"timestamp"`
}

type GetMatchesResult struct {
	From    time.Time   `json:"from"`
	To      time.Time   `json:"to"`
	Count   int         `json:"count"`
	Matches []MatchView `json:"matches"`
}

func (uc *MatchesUseCase) GetMatches(ctx context.Context, p GetMatchesParams) (*GetMatchesResult, error) {
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 500
	}
	if p.Limit > 10000 {
		p.Limit = 10000
	}

	records, err := uc.source.GetMatches(ctx, p.From, p.To, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("get matches: %w", err)
	}

	views := make([]MatchView, 0, len(records))
	for _, r := range records {
		views = append(views, MatchView{
			ChosenNumber:  r.ChosenNumber,
			MatchedNumber: r.MatchedNumber,
			Timestamp:     r.Timestamp,
		})
	}

	return &GetMatchesResult{
		From:    p.From,
		To:      p.To,
		Count:   len(views),
		Matches: views,
	}, nil
}
