package engine

import (
	"sync"
	"time"
)

const traceSamplesDefault = 240

// TickPhaseTimings captures time spent in each tick phase (ms).
type TickPhaseTimings struct {
	UpdateMs  float64 `json:"updateMs"`
	LayoutMs  float64 `json:"layoutMs"`
	RenderMs  float64 `json:"renderMs"`
	PresentMs float64 `json:"presentMs"`
}

// TickCounts captures per-tick workload indicators.
type TickCounts struct {
	LayoutNodes int `json:"layoutNodes"`
	Sketches    int `json:"sketches"`
	Commands    int `json:"commands"`
}

// TickSample is a single tick trace sample.
type TickSample struct {
	Tick      uint64           `json:"tick"`
	Timestamp int64            `json:"ts"`
	TickMs    float64          `json:"tickMs"`
	Flags     string           `json:"flags"`
	Phases    TickPhaseTimings `json:"phases"`
	Counts    TickCounts       `json:"counts"`
}

// Timeline is a chronological copy of the trace buffer.
type Timeline struct {
	Samples []TickSample `json:"samples"`
	Total   uint64       `json:"total"`
}

// TraceBuffer stores recent tick samples in a ring buffer.
type TraceBuffer struct {
	mu      sync.RWMutex
	samples []TickSample
	index   int
	count   int
	total   uint64
}

// NewTraceBuffer creates a trace buffer holding capacity samples.
func NewTraceBuffer(capacity int) *TraceBuffer {
	if capacity <= 0 {
		capacity = traceSamplesDefault
	}
	return &TraceBuffer{samples: make([]TickSample, capacity)}
}

// Capacity returns the buffer capacity.
func (b *TraceBuffer) Capacity() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}

// Add records a tick sample.
func (b *TraceBuffer) Add(sample TickSample) {
	b.mu.Lock()
	b.samples[b.index] = sample
	b.index = (b.index + 1) % len(b.samples)
	if b.count < len(b.samples) {
		b.count++
	}
	b.total++
	b.mu.Unlock()
}

// Snapshot returns a chronological copy of the samples.
func (b *TraceBuffer) Snapshot() Timeline {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 {
		return Timeline{Total: b.total}
	}

	result := make([]TickSample, b.count)
	if b.count < len(b.samples) {
		copy(result, b.samples[:b.count])
	} else {
		copy(result, b.samples[b.index:])
		copy(result[len(b.samples)-b.index:], b.samples[:b.index])
	}
	return Timeline{Samples: result, Total: b.total}
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
