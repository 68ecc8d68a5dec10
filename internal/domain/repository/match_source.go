package repository

import (
	"context"
	"time"

	"Resona/internal/domain/models"
)

// MatchSource provides read-only access to recorded matches for aggregation.
// The aggregator reads a full snapshot on each computation; it must not
// assume any timestamp ordering of the returned slice.
type MatchSource interface {
	GetAll(ctx context.Context) ([]models.MatchRecord, error)
	GetMatches(ctx context.Context, from, to time.Time, limit int) ([]models.MatchRecord, error)
}
