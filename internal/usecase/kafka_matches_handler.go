package usecase

import (
	"context"
	"encoding/json"
	"time"

	"Resona/internal/domain/models"
	domrepo "Resona/internal/domain/repository"
	mid "Resona/internal/middleware"
	pkgkafka "Resona/pkg/kafka"
)

// KafkaMatchesHandler consumes match messages and writes them to storage.
type KafkaMatchesHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaMatchesHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaMatchesHandler {
	return &KafkaMatchesHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaMatchesHandler) Topic() string { return h.topic }

// incoming message schema: {chosen, matched, t}
func (h *KafkaMatchesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Chosen  int   `json:"chosen"`
		Matched int   `json:"matched"`
		T       int64 `json:"t"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.T > 1e11 { // ms
		m.T = m.T / 1000
	}
	record := &models.MatchRecord{
		ChosenNumber:  m.Chosen,
		MatchedNumber: m.Matched,
		Timestamp:     time.Unix(m.T, 0),
	}
	if err := mid.ValidateMatch(record); err != nil {
		h.metrics.RecordError("consumer_validate")
		return err
	}
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(record.Timestamp).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, record)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordMatch("clickhouse", record.ChosenNumber)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaMatchesHandler)(nil)
