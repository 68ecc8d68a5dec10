package service

import (
	"context"

	"Resona/internal/domain/models"
)

// NarrativeGenerator produces a short human-readable insight text for a
// computed summary. Implementations may call an external model service.
type NarrativeGenerator interface {
	Generate(ctx context.Context, summary models.InsightSummary) (string, error)
}
