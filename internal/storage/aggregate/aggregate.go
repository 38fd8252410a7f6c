package aggregate

import (
	"math"
	"sync"

	"github.com/DataDog/sketches-go/ddsketch"

	"github.com/xtxerr/wavehist/internal/storage/types"
)

// DefaultAccuracy is the relative accuracy of percentile sketches.
const DefaultAccuracy = 0.01

// StreamingAggregate maintains running statistics for one channel window.
// It supports optional percentile calculation using DDSketch.
type StreamingAggregate struct {
	mu sync.Mutex

	// Identity
	channel int

	// Window, inclusive on both ends
	start types.Timestamp
	end   types.Timestamp

	// Running statistics
	count    int64
	segments int
	sum      float64
	min      float64
	max      float64
	firstTs  types.Timestamp
	lastTs   types.Timestamp

	// DDSketch for percentiles (nil if disabled)
	sketch   *ddsketch.DDSketch
	accuracy float64
}

// New creates a new StreamingAggregate for the given window.
func New(channel int, start, end types.Timestamp, enablePercentile bool) *StreamingAggregate {
	if !enablePercentile {
		return newAggregate(channel, start, end, 0)
	}
	return newAggregate(channel, start, end, DefaultAccuracy)
}

// NewWithAccuracy creates a new StreamingAggregate with custom percentile accuracy.
func NewWithAccuracy(channel int, start, end types.Timestamp, accuracy float64) *StreamingAggregate {
	return newAggregate(channel, start, end, accuracy)
}

func newAggregate(channel int, start, end types.Timestamp, accuracy float64) *StreamingAggregate {
	agg := &StreamingAggregate{
		channel:  channel,
		start:    start,
		end:      end,
		min:      math.MaxFloat64,
		max:      -math.MaxFloat64,
		accuracy: accuracy,
	}
	agg.sketch = newSketch(accuracy)
	return agg
}

func newSketch(accuracy float64) *ddsketch.DDSketch {
	if accuracy <= 0 {
		return nil
	}
	sketch, err := ddsketch.NewDefaultDDSketch(accuracy)
	if err != nil {
		return nil
	}
	return sketch
}

// Add adds a value to the aggregate.
func (a *StreamingAggregate) Add(value float64, ts types.Timestamp) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.add(value, ts)
}

func (a *StreamingAggregate) add(value float64, ts types.Timestamp) {
	if math.IsNaN(value) {
		return
	}

	if a.count == 0 || ts < a.firstTs {
		a.firstTs = ts
	}
	if a.count == 0 || ts > a.lastTs {
		a.lastTs = ts
	}

	a.count++
	a.sum += value

	if value < a.min {
		a.min = value
	}
	if value > a.max {
		a.max = value
	}

	if a.sketch != nil {
		_ = a.sketch.Add(value)
	}
}

// AddWaveform adds the samples of a segment that fall inside the window.
// Segments disjoint from the window are skipped without scanning.
// It returns the number of samples added.
func (a *StreamingAggregate) AddWaveform(w *types.Waveform) int {
	if w.Empty() || w.Start() > a.end || w.End() < a.start {
		return 0
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	added := 0
	for i, y := range w.Y {
		ts := w.At(i)
		if ts < a.start || ts > a.end {
			continue
		}
		a.add(y, ts)
		added++
	}

	if added > 0 {
		a.segments++
	}
	return added
}

// Count returns the number of samples added.
func (a *StreamingAggregate) Count() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

// IsEmpty returns true if no samples have been added.
func (a *StreamingAggregate) IsEmpty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count == 0
}

// Result returns the aggregation result.
func (a *StreamingAggregate) Result() types.AggregateResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := types.AggregateResult{
		Channel:  a.channel,
		Start:    a.start,
		End:      a.end,
		Count:    a.count,
		Segments: a.segments,
		Sum:      a.sum,
		FirstTs:  a.firstTs,
		LastTs:   a.lastTs,
	}

	if a.count > 0 {
		result.Avg = a.sum / float64(a.count)
		result.Min = a.min
		result.Max = a.max
	}

	// Calculate percentiles if enabled and we have data
	if a.sketch != nil && a.count > 0 {
		p50, _ := a.sketch.GetValueAtQuantile(0.50)
		p90, _ := a.sketch.GetValueAtQuantile(0.90)
		p95, _ := a.sketch.GetValueAtQuantile(0.95)
		p99, _ := a.sketch.GetValueAtQuantile(0.99)
		result.SetPercentiles(p50, p90, p95, p99)
	}

	return result
}

// Reset resets the aggregate for a new window.
func (a *StreamingAggregate) Reset(start, end types.Timestamp) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.start = start
	a.end = end
	a.count = 0
	a.segments = 0
	a.sum = 0
	a.min = math.MaxFloat64
	a.max = -math.MaxFloat64
	a.firstTs = 0
	a.lastTs = 0

	if a.sketch != nil {
		// DDSketch has no Clear method
		a.sketch = newSketch(a.accuracy)
	}
}

// Merge combines another aggregate into this one.
// Both aggregates should cover the same window.
func (a *StreamingAggregate) Merge(other *StreamingAggregate) {
	if other == nil || other == a {
		return
	}

	a.mu.Lock()
	other.mu.Lock()
	defer a.mu.Unlock()
	defer other.mu.Unlock()

	if other.count == 0 {
		return
	}

	if a.count == 0 || other.firstTs < a.firstTs {
		a.firstTs = other.firstTs
	}
	if a.count == 0 || other.lastTs > a.lastTs {
		a.lastTs = other.lastTs
	}

	a.count += other.count
	a.segments += other.segments
	a.sum += other.sum

	if other.min < a.min {
		a.min = other.min
	}
	if other.max > a.max {
		a.max = other.max
	}

	// Merge sketches
	if a.sketch != nil && other.sketch != nil {
		_ = a.sketch.MergeWith(other.sketch)
	}
}

// Channel returns the channel index of the aggregate.
func (a *StreamingAggregate) Channel() int {
	return a.channel
}

// Window returns the aggregate window.
func (a *StreamingAggregate) Window() (start, end types.Timestamp) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.start, a.end
}
