package usecase

import (
	"context"

	"Resona/internal/domain/models"
	drepo "Resona/internal/domain/repository"
	mid "Resona/internal/middleware"
	"Resona/internal/services/realm"
)

// RealmCollector consumes biometric samples, computes realm numbers, and
// records a match whenever the realm number coincides with the current
// focus number.
type RealmCollector struct {
	stream  drepo.BiometricStream
	rec     *MatchRecorder
	metrics drepo.Metrics
	pipe    *mid.MatchPipeline
	calc    *realm.Calculator
	focus   *FocusSource
}

// NewRealmCollector creates a new RealmCollector instance.
func NewRealmCollector(
	stream drepo.BiometricStream,
	rec *MatchRecorder,
	metrics drepo.Metrics,
	pipe *mid.MatchPipeline,
	calc *realm.Calculator,
	focus *FocusSource,
) *RealmCollector {
	return &RealmCollector{stream: stream, rec: rec, metrics: metrics, pipe: pipe, calc: calc, focus: focus}
}

// IsConnected returns true if the biometric stream is connected.
func (c *RealmCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *RealmCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	sampleCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, sampleCh, errCh)
	return nil
}

func (c *RealmCollector) consume(ctx context.Context, sampleCh <-chan *models.BiometricSample, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case s := <-sampleCh:
			if s == nil {
				continue
			}
			realmNum := c.calc.Compute(s.Timestamp, s.BPM)
			c.metrics.RecordRealmNumber(realmNum)

			chosen := c.focus.Get()
			if realmNum != chosen {
				continue
			}
			m := &models.MatchRecord{
				ChosenNumber:  chosen,
				MatchedNumber: realmNum,
				Timestamp:     s.Timestamp,
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, m)
			} else {
				_ = c.rec.Process(ctx, m)
			}
		}
	}
}

func (c *RealmCollector) Stop() error { return c.stream.Close() }

// Recorder returns the underlying MatchRecorder for lifecycle management.
func (c *RealmCollector) Recorder() *MatchRecorder { return c.rec }

// Shutdown stops the pipeline and closes the stream.
func (c *RealmCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
