package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"Resona/internal/domain/models"
	domrepo "Resona/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, m *models.MatchRecord) error
}

// MatchPipeline sits between match detection and the recording backend.
// It validates numbers at ingestion (the aggregator downstream is
// deliberately permissive), throttles bursts, and buffers records when the
// backend is unavailable.
type MatchPipeline struct {
	proc     Proc
	metrics  domrepo.Metrics
	maxRPS   int
	bufSize  int
	bufCh    chan *models.MatchRecord
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[int]time.Time // per chosen number, last accepted time
	// optional transform hook
	transform func(*models.MatchRecord) *models.MatchRecord
	// metrics
	bufDepthGauge func(int)
	throttleWarn  func(int)
}

type PipelineOption func(*MatchPipeline)

// WithMaxRPS sets the max accepted records per second per chosen number.
func WithMaxRPS(n int) PipelineOption {
	return func(p *MatchPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the temporary buffer size when the backend is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *MatchPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithTransform sets a transformation hook applied before validation re-check.
func WithTransform(fn func(*models.MatchRecord) *models.MatchRecord) PipelineOption {
	return func(p *MatchPipeline) { p.transform = fn }
}

// NewMatchPipeline creates a new pipeline.
func NewMatchPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *MatchPipeline {
	p := &MatchPipeline{
		proc:     proc,
		metrics:  metrics,
		maxRPS:   20,   // default throttle per number
		bufSize:  1000, // default buffer
		bufCh:    make(chan *models.MatchRecord, 1000),
		stopCh:   make(chan struct{}),
		lastSeen: make(map[int]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan *models.MatchRecord, p.bufSize)
	}
	p.bufDepthGauge = func(n int) { p.metrics.RecordLatency("pipeline_buffer_depth", float64(n)) }
	p.throttleWarn = func(num int) { p.metrics.RecordError("pipeline_throttle_" + strconv.Itoa(num)) }
	return p
}

// Start launches background flushing of buffered records.
func (p *MatchPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case m := <-p.bufCh:
				if m == nil {
					continue
				}
				if err := p.proc.Process(ctx, m); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- m:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *MatchPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards the record downstream,
// buffering on errors.
func (p *MatchPipeline) Process(ctx context.Context, m *models.MatchRecord) error {
	start := time.Now()
	if err := ValidateMatch(m); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if p.transform != nil {
		m = p.transform(m)
		if err := ValidateMatch(m); err != nil {
			p.metrics.RecordError("pipeline_transform_invalid")
			return err
		}
	}
	if !p.allow(m.ChosenNumber, start) {
		// throttled; record and drop silently
		p.metrics.RecordError("pipeline_throttle")
		if p.throttleWarn != nil {
			p.throttleWarn(m.ChosenNumber)
		}
		return nil
	}

	if err := p.proc.Process(ctx, m); err != nil {
		p.metrics.RecordError("pipeline_process")
		// buffer non-blocking
		select {
		case p.bufCh <- m:
			if p.bufDepthGauge != nil {
				p.bufDepthGauge(len(p.bufCh))
			}
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

// ValidateMatch enforces the 1-9 number domain and a usable timestamp at
// ingestion. Malformed upstream data stops here instead of flowing into the
// aggregations.
func ValidateMatch(m *models.MatchRecord) error {
	if m == nil {
		return fmt.Errorf("match nil")
	}
	if m.ChosenNumber < 1 || m.ChosenNumber > 9 {
		return fmt.Errorf("chosen number out of range: %d", m.ChosenNumber)
	}
	if m.MatchedNumber < 1 || m.MatchedNumber > 9 {
		return fmt.Errorf("matched number out of range: %d", m.MatchedNumber)
	}
	if m.Timestamp.IsZero() {
		return fmt.Errorf("timestamp invalid")
	}
	return nil
}

func (p *MatchPipeline) allow(number int, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	// simple throttle: ensure at most maxRPS per second
	last := p.lastSeen[number]
	if last.IsZero() {
		p.lastSeen[number] = now
		return true
	}
	if now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[number] = now
	return true
}
