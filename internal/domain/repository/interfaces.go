package repository

import (
	"context"
	"time"

	"Resona/internal/domain/models"
)

type BiometricStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.BiometricSample, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type Publisher interface {
	Publish(ctx context.Context, m *models.MatchRecord) error
	PublishBatch(ctx context.Context, records []*models.MatchRecord) error
	Close() error
}

type Storage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, m *models.MatchRecord) error
	StoreBatch(ctx context.Context, records []*models.MatchRecord) error
	Query(ctx context.Context, from, to time.Time, limit int) ([]models.MatchRecord, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordMatch(backend string, number int)
	RecordError(kind string)
	RecordRealmNumber(number int)
	RecordLatency(op string, seconds float64)
}
