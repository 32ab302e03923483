package core

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

var expvarSeq uint64

// ExpvarMetricsRecorder publishes aggregate timing and outcome counters via
// expvar. Totals are kept in milliseconds per operation, with one counter per
// OperationStatus.
type ExpvarMetricsRecorder struct {
	name      string
	mu        sync.Mutex
	durations map[string]float64
	results   map[string]map[string]int64
}

// ExpvarMetricsSnapshot captures a read-only view of the recorded metrics.
type ExpvarMetricsSnapshot struct {
	DurationsMS map[string]float64          `json:"durations_ms_total"`
	Results     map[string]map[string]int64 `json:"results_total"`
	RecordedAt  time.Time                   `json:"recorded_at"`
}

// NewExpvarMetricsRecorder constructs an expvar-backed recorder and publishes it
// under the supplied name. When name is empty, a unique identifier is generated.
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("placementhub_service_metrics_%d", id)
	}
	rec := &ExpvarMetricsRecorder{
		name:      name,
		durations: make(map[string]float64),
		results:   make(map[string]map[string]int64),
	}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name associated with the recorder.
func (r *ExpvarMetricsRecorder) Name() string {
	return r.name
}

// Snapshot returns an immutable copy of the aggregated metrics.
func (r *ExpvarMetricsRecorder) Snapshot() ExpvarMetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	durations := make(map[string]float64, len(r.durations))
	for op, total := range r.durations {
		durations[op] = total
	}

	results := make(map[string]map[string]int64, len(r.results))
	for op, statusCounts := range r.results {
		cpy := make(map[string]int64, len(statusCounts))
		for status, count := range statusCounts {
			cpy[status] = count
		}
		results[op] = cpy
	}

	return ExpvarMetricsSnapshot{
		DurationsMS: durations,
		Results:     results,
		RecordedAt:  time.Now().UTC(),
	}
}

// Observe records a service operation outcome.
func (r *ExpvarMetricsRecorder) Observe(_ context.Context, operation string, status OperationStatus, duration time.Duration) {
	if operation == "" {
		return
	}
	ms := float64(duration) / float64(time.Millisecond)

	r.mu.Lock()
	r.durations[operation] += ms
	if _, ok := r.results[operation]; !ok {
		r.results[operation] = make(map[string]int64, 3)
	}
	r.results[operation][string(status)]++
	r.mu.Unlock()
}

// SpanRecord is one finished operation span, written as a single JSON line.
type SpanRecord struct {
	Seq        uint64    `json:"seq"`
	Operation  string    `json:"operation"`
	OK         bool      `json:"ok"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS float64   `json:"duration_ms"`
}

// SpanLogTracer appends a SpanRecord per finished span to a writer, such as
// a trace file, and keeps recent records in memory.
type SpanLogTracer struct {
	mu      sync.Mutex
	enc     *json.Encoder
	now     func() time.Time
	keep    int
	seq     uint64
	records []SpanRecord
	err     error
}

// SpanLogOption customises a SpanLogTracer.
type SpanLogOption func(*SpanLogTracer)

// WithSpanClock sets the time source for span timestamps.
func WithSpanClock(now func() time.Time) SpanLogOption {
	return func(t *SpanLogTracer) {
		if now != nil {
			t.now = now
		}
	}
}

// WithSpanRetention bounds the in-memory records to the newest n. Zero keeps all.
func WithSpanRetention(n int) SpanLogOption {
	return func(t *SpanLogTracer) {
		if n > 0 {
			t.keep = n
		}
	}
}

// NewSpanLogTracer writes spans to w. A nil writer only retains records.
func NewSpanLogTracer(w io.Writer, opts ...SpanLogOption) *SpanLogTracer {
	t := &SpanLogTracer{now: time.Now}
	if w != nil {
		t.enc = json.NewEncoder(w)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Records returns the retained spans, oldest first.
func (t *SpanLogTracer) Records() []SpanRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]SpanRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Err returns the first write failure. Later spans are still retained.
func (t *SpanLogTracer) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Start implements Tracer.
func (t *SpanLogTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &logSpan{tracer: t, operation: operation, started: t.now().UTC()}
}

func (t *SpanLogTracer) finish(rec SpanRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	rec.Seq = t.seq
	t.records = append(t.records, rec)
	if t.keep > 0 && len(t.records) > t.keep {
		t.records = append([]SpanRecord(nil), t.records[len(t.records)-t.keep:]...)
	}
	if t.enc == nil || t.err != nil {
		return
	}
	if err := t.enc.Encode(rec); err != nil {
		t.err = fmt.Errorf("write span %d: %w", rec.Seq, err)
	}
}

type logSpan struct {
	tracer    *SpanLogTracer
	operation string
	started   time.Time
}

func (s *logSpan) End(err error) {
	rec := SpanRecord{
		Operation:  s.operation,
		OK:         err == nil,
		StartedAt:  s.started,
		DurationMS: float64(s.tracer.now().UTC().Sub(s.started)) / float64(time.Millisecond),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	s.tracer.finish(rec)
}

// LoggerAuditRecorder writes audit entries through a Logger at info level.
type LoggerAuditRecorder struct {
	Logger Logger
}

// Record implements AuditRecorder.
func (r LoggerAuditRecorder) Record(_ context.Context, entry AuditEntry) {
	if r.Logger == nil {
		return
	}
	args := []any{
		"operation", entry.Operation,
		"entity", string(entry.Entity),
		"action", string(entry.Action),
		"entity_id", entry.EntityID,
		"actor", entry.Actor,
		"status", string(entry.Status),
		"duration", entry.Duration,
		"at", entry.Timestamp,
	}
	if entry.Reason != "" {
		args = append(args, "reason", string(entry.Reason))
	}
	if entry.Error != "" {
		args = append(args, "error", entry.Error)
	}
	r.Logger.Info("audit", args...)
}

var _ Tracer = (*SpanLogTracer)(nil)
