package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"Resona/internal/domain/models"
)

type fakeProc struct {
	mu   sync.Mutex
	got  []*models.MatchRecord
	fail bool
}

func (f *fakeProc) Process(_ context.Context, m *models.MatchRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("backend down")
	}
	f.got = append(f.got, m)
	return nil
}

func (f *fakeProc) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

type fakeMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{errors: make(map[string]int)}
}

func (f *fakeMetrics) RecordMatch(string, int) {}
func (f *fakeMetrics) RecordError(kind string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[kind]++
}
func (f *fakeMetrics) RecordRealmNumber(int) {}

func (f *fakeMetrics) RecordLatency(string, float64) {}

func (f *fakeMetrics) errCount(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors[kind]
}

func validMatch(n int) *models.MatchRecord {
	return &models.MatchRecord{
		ChosenNumber:  n,
		MatchedNumber: n,
		Timestamp:     time.Date(2024, 10, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestValidateMatch(t *testing.T) {
	if err := ValidateMatch(validMatch(5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateMatch(nil); err == nil {
		t.Fatalf("expected error for nil")
	}

	bad := validMatch(5)
	bad.ChosenNumber = 0
	if err := ValidateMatch(bad); err == nil {
		t.Fatalf("expected error for chosen 0")
	}

	bad = validMatch(5)
	bad.MatchedNumber = 10
	if err := ValidateMatch(bad); err == nil {
		t.Fatalf("expected error for matched 10")
	}

	bad = validMatch(5)
	bad.Timestamp = time.Time{}
	if err := ValidateMatch(bad); err == nil {
		t.Fatalf("expected error for zero timestamp")
	}
}

func TestPipelineForwardsValidRecords(t *testing.T) {
	proc := &fakeProc{}
	p := NewMatchPipeline(proc, newFakeMetrics())

	if err := p.Process(context.Background(), validMatch(5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("expected 1 forwarded record, got %d", proc.count())
	}
}

func TestPipelineRejectsInvalidRecords(t *testing.T) {
	proc := &fakeProc{}
	m := newFakeMetrics()
	p := NewMatchPipeline(proc, m)

	bad := validMatch(5)
	bad.ChosenNumber = 12
	if err := p.Process(context.Background(), bad); err == nil {
		t.Fatalf("expected validation error")
	}
	if proc.count() != 0 {
		t.Fatalf("invalid record must not reach backend")
	}
	if m.errCount("pipeline_validate") != 1 {
		t.Fatalf("expected validate error metric")
	}
}

func TestPipelineThrottlesBursts(t *testing.T) {
	proc := &fakeProc{}
	m := newFakeMetrics()
	p := NewMatchPipeline(proc, m, WithMaxRPS(1))

	// First record accepted; an immediate second one for the same number is
	// throttled and dropped without error.
	if err := p.Process(context.Background(), validMatch(5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Process(context.Background(), validMatch(5)); err != nil {
		t.Fatalf("throttled record must not error: %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("expected 1 forwarded record, got %d", proc.count())
	}
	if m.errCount("pipeline_throttle") != 1 {
		t.Fatalf("expected throttle metric")
	}
}

func TestPipelineBuffersOnBackendError(t *testing.T) {
	proc := &fakeProc{fail: true}
	m := newFakeMetrics()
	p := NewMatchPipeline(proc, m, WithBufferSize(10))

	err := p.Process(context.Background(), validMatch(5))
	if err == nil {
		t.Fatalf("expected downstream error")
	}
	if m.errCount("pipeline_process") != 1 {
		t.Fatalf("expected process error metric")
	}
	if len(p.bufCh) != 1 {
		t.Fatalf("expected record buffered, got %d", len(p.bufCh))
	}
}

func TestPipelineFlushesBufferAfterRecovery(t *testing.T) {
	proc := &fakeProc{fail: true}
	p := NewMatchPipeline(proc, newFakeMetrics(), WithBufferSize(10))

	_ = p.Process(context.Background(), validMatch(5))

	proc.mu.Lock()
	proc.fail = false
	proc.mu.Unlock()

	p.Start(context.Background())
	defer p.Stop()

	deadline := time.After(2 * time.Second)
	for proc.count() == 0 {
		select {
		case <-deadline:
			t.Fatalf("buffered record never flushed")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestPipelineTransformHook(t *testing.T) {
	proc := &fakeProc{}
	p := NewMatchPipeline(proc, newFakeMetrics(), WithTransform(func(m *models.MatchRecord) *models.MatchRecord {
		m.Timestamp = m.Timestamp.Truncate(time.Second)
		return m
	}))

	in := validMatch(4)
	in.Timestamp = in.Timestamp.Add(300 * time.Millisecond)
	if err := p.Process(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := proc.got[0].Timestamp; got.Nanosecond() != 0 {
		t.Fatalf("transform not applied, ts %v", got)
	}
}
