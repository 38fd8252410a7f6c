package buffer

import (
	"github.com/xtxerr/wavehist/internal/storage/types"
)

// RingBuffer is a fixed-capacity circular buffer of waveform segments.
// Storage is allocated once; pushing into a full buffer overwrites the
// oldest segment in place.
//
// RingBuffer is not safe for concurrent use. Callers serialize access.
type RingBuffer struct {
	data     []types.Waveform
	head     int64 // Next write position
	tail     int64 // Oldest data position
	count    int64 // Current number of elements
	capacity int64

	// Statistics
	pushCount int64
	dropCount int64
}

// New creates a new RingBuffer with the given capacity.
func New(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1024
	}
	return &RingBuffer{
		data:     make([]types.Waveform, capacity),
		capacity: int64(capacity),
	}
}

// PushOverwrite adds a segment to the buffer, overwriting the oldest if full.
// It returns true if a segment was evicted.
func (rb *RingBuffer) PushOverwrite(w types.Waveform) bool {
	evicted := false
	if rb.count >= rb.capacity {
		// Overwrite oldest
		rb.tail++
		rb.count--
		rb.dropCount++
		evicted = true
	}

	rb.data[rb.head%rb.capacity] = w
	rb.head++
	rb.count++
	rb.pushCount++

	return evicted
}

// At returns the i-th stored segment, counting from the oldest.
func (rb *RingBuffer) At(i int) (types.Waveform, bool) {
	if i < 0 || int64(i) >= rb.count {
		return types.Waveform{}, false
	}
	return rb.data[(rb.tail+int64(i))%rb.capacity], true
}

// Peek returns the oldest segment.
// Returns false if the buffer is empty.
func (rb *RingBuffer) Peek() (types.Waveform, bool) {
	return rb.At(0)
}

// PeekNewest returns the newest segment.
// Returns false if the buffer is empty.
func (rb *RingBuffer) PeekNewest() (types.Waveform, bool) {
	return rb.At(int(rb.count) - 1)
}

// Each calls fn for every stored segment from oldest to newest.
// Iteration stops when fn returns false.
func (rb *RingBuffer) Each(fn func(i int, w *types.Waveform) bool) {
	for i := int64(0); i < rb.count; i++ {
		if !fn(int(i), &rb.data[(rb.tail+i)%rb.capacity]) {
			return
		}
	}
}

// ToSlice returns the stored segments ordered from oldest to newest.
func (rb *RingBuffer) ToSlice() []types.Waveform {
	result := make([]types.Waveform, rb.count)
	for i := int64(0); i < rb.count; i++ {
		result[i] = rb.data[(rb.tail+i)%rb.capacity]
	}
	return result
}

// Len returns the current number of segments in the buffer.
func (rb *RingBuffer) Len() int {
	return int(rb.count)
}

// Cap returns the capacity of the buffer.
func (rb *RingBuffer) Cap() int {
	return int(rb.capacity)
}

// IsEmpty returns true if the buffer is empty.
func (rb *RingBuffer) IsEmpty() bool {
	return rb.count == 0
}

// UsageRatio returns the current usage as a ratio (0.0 - 1.0).
func (rb *RingBuffer) UsageRatio() float64 {
	return float64(rb.count) / float64(rb.capacity)
}

// Clear removes all segments from the buffer.
func (rb *RingBuffer) Clear() {
	// Clear all data for GC
	for i := range rb.data {
		rb.data[i] = types.Waveform{}
	}

	rb.head = 0
	rb.tail = 0
	rb.count = 0
}

// Stats returns buffer statistics.
func (rb *RingBuffer) Stats() BufferStats {
	return BufferStats{
		Capacity:   int(rb.capacity),
		Count:      int(rb.count),
		UsageRatio: rb.UsageRatio(),
		PushCount:  rb.pushCount,
		DropCount:  rb.dropCount,
	}
}

// BufferStats holds buffer statistics.
type BufferStats struct {
	Capacity   int
	Count      int
	UsageRatio float64
	PushCount  int64
	DropCount  int64
}

// TimeRange returns the start of the oldest segment and the end of the
// newest segment. Returns (0, 0, false) if the buffer is empty.
func (rb *RingBuffer) TimeRange() (oldest, newest types.Timestamp, ok bool) {
	if rb.count == 0 {
		return 0, 0, false
	}

	first, _ := rb.Peek()
	last, _ := rb.PeekNewest()
	return first.Start(), last.End(), true
}
