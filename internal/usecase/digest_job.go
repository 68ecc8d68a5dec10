package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Resona/pkg/cache"
	applogger "Resona/pkg/logger"
	"Resona/pkg/queue"
)

// DigestType is the queue message type that triggers a digest recompute.
const DigestType = "digest.recompute"

// DigestCacheKey is where the latest precomputed digest lives.
var DigestCacheKey = cache.GenerateKey("digest", "latest")

// DigestJob recomputes the insight summary off the request path and warms
// the layered cache so the digest endpoint serves precomputed data.
type DigestJob struct {
	insights *InsightsUseCase
	cache    cache.Service
	logger   *applogger.Logger
	ttl      time.Duration
}

func NewDigestJob(insights *InsightsUseCase, c cache.Service, l *applogger.Logger, ttl time.Duration) *DigestJob {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DigestJob{insights: insights, cache: c, logger: l, ttl: ttl}
}

func (j *DigestJob) Name() string { return "insight-digest" }

func (j *DigestJob) Type() string { return DigestType }

func (j *DigestJob) Handle(ctx context.Context, payload interface{}) error {
	start := time.Now()

	summary, err := j.insights.Summary(ctx)
	if err != nil {
		return fmt.Errorf("digest summary: %w", err)
	}

	b, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("digest marshal: %w", err)
	}
	if err := j.cache.Set(ctx, DigestCacheKey, string(b), j.ttl); err != nil {
		return fmt.Errorf("digest cache set: %w", err)
	}

	if j.logger != nil {
		j.logger.Info("digest recomputed",
			applogger.Int("today_count", summary.TodayCount),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

var _ queue.Job = (*DigestJob)(nil)
