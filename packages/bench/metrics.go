package bench

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Metrics collects and aggregates benchmark metrics
type Metrics struct {
	totalCalls   atomic.Int64
	errorCalls   atomic.Int64
	emptyReplies atomic.Int64

	// Latency histogram (in microseconds for precision)
	mu        sync.Mutex
	histogram *hdrhistogram.Histogram

	startTime time.Time
	endTime   time.Time
}

// Summary is a point-in-time aggregation of collected metrics
type Summary struct {
	Total    int64
	Errors   int64
	Empties  int64
	Duration time.Duration
	RPS      float64
	P50      time.Duration
	P95      time.Duration
	P99      time.Duration
	Max      time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{
		// 1us to 60s, 3 significant digits
		histogram: hdrhistogram.New(1, 60_000_000, 3),
	}
}

// Start marks the beginning of the measured window
func (m *Metrics) Start() {
	m.startTime = time.Now()
}

// Stop marks the end of the measured window
func (m *Metrics) Stop() {
	m.endTime = time.Now()
}

// RecordCall records the outcome of one call. Latency is only recorded for
// calls that completed, successfully or not.
func (m *Metrics) RecordCall(latency time.Duration, err error, empty bool) {
	m.totalCalls.Add(1)
	if err != nil {
		m.errorCalls.Add(1)
	}
	if empty {
		m.emptyReplies.Add(1)
	}

	m.mu.Lock()
	_ = m.histogram.RecordValue(latency.Microseconds())
	m.mu.Unlock()
}

// Summarize computes the final summary over the measured window
func (m *Metrics) Summarize() *Summary {
	duration := m.endTime.Sub(m.startTime)
	total := m.totalCalls.Load()

	rps := 0.0
	if duration > 0 {
		rps = float64(total) / duration.Seconds()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return &Summary{
		Total:    total,
		Errors:   m.errorCalls.Load(),
		Empties:  m.emptyReplies.Load(),
		Duration: duration,
		RPS:      rps,
		P50:      time.Duration(m.histogram.ValueAtQuantile(50)) * time.Microsecond,
		P95:      time.Duration(m.histogram.ValueAtQuantile(95)) * time.Microsecond,
		P99:      time.Duration(m.histogram.ValueAtQuantile(99)) * time.Microsecond,
		Max:      time.Duration(m.histogram.Max()) * time.Microsecond,
	}
}
