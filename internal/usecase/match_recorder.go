package usecase

import (
	"context"
	"fmt"
	"time"

	"Resona/internal/domain/models"
	drepo "Resona/internal/domain/repository"
)

// MatchRecorder routes recorded matches to the configured backend.
type MatchRecorder struct {
	pub     drepo.Publisher
	store   drepo.Storage
	metrics drepo.Metrics
	backend string
	batchSz int
	batchTO time.Duration
}

// NewMatchRecorder creates a new MatchRecorder instance.
func NewMatchRecorder(
	pub drepo.Publisher,
	store drepo.Storage,
	metrics drepo.Metrics,
	backend string,
	batchSz int,
	batchTO time.Duration,
) *MatchRecorder {
	return &MatchRecorder{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
		batchSz: batchSz,
		batchTO: batchTO,
	}
}

// Process routes a single match record to the configured backend.
func (r *MatchRecorder) Process(ctx context.Context, m *models.MatchRecord) error {
	if m == nil {
		return fmt.Errorf("match is nil")
	}

	start := time.Now()
	var err error

	switch r.backend {
	case "kafka":
		err = r.pub.Publish(ctx, m)
	case "clickhouse":
		err = r.store.Store(ctx, m)
	default:
		err = fmt.Errorf("unknown backend: %s", r.backend)
	}

	if err != nil {
		r.metrics.RecordError("record")
		return fmt.Errorf("record match: %w", err)
	}

	r.metrics.RecordMatch(r.backend, m.ChosenNumber)
	r.metrics.RecordLatency("record", time.Since(start).Seconds())

	return nil
}

// ProcessBatch routes multiple match records in a batch.
func (r *MatchRecorder) ProcessBatch(ctx context.Context, records []*models.MatchRecord) error {
	if len(records) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch r.backend {
	case "kafka":
		err = r.pub.PublishBatch(ctx, records)
	case "clickhouse":
		err = r.store.StoreBatch(ctx, records)
	default:
		err = fmt.Errorf("unknown backend: %s", r.backend)
	}

	if err != nil {
		r.metrics.RecordError("record_batch")
		return fmt.Errorf("record batch: %w", err)
	}

	for _, m := range records {
		r.metrics.RecordMatch(r.backend, m.ChosenNumber)
	}
	r.metrics.RecordLatency("record_batch", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (r *MatchRecorder) Close() {
	if r.pub != nil {
		_ = r.pub.Close()
	}
	if r.store != nil {
		_ = r.store.Close()
	}
}
