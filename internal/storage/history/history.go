package history

import (
	defaults "github.com/xtxerr/wavehist/config"
	"github.com/xtxerr/wavehist/internal/storage/buffer"
	"github.com/xtxerr/wavehist/internal/storage/config"
	"github.com/xtxerr/wavehist/internal/storage/types"
)

const (
	// DefaultCapacity is used when New receives a non-positive capacity.
	DefaultCapacity = defaults.DefaultCapacity

	// DefaultWidth is used when New receives a non-positive width.
	DefaultWidth = defaults.DefaultWidth

	// ValueType identifies serialized history buffers.
	ValueType = "HistoryBuffer"
)

// Waveform is a history buffer of analog waveform segments.
type Waveform struct {
	width int
	rings []*buffer.RingBuffer

	// count is the number of accepted pushes over the buffer lifetime.
	// It is not clamped to capacity.
	count int64

	changed  bool
	onChange func()
}

// New creates a history buffer with the given capacity and width.
// Non-positive values fall back to DefaultCapacity and DefaultWidth.
func New(capacity, width int) *Waveform {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if width <= 0 {
		width = DefaultWidth
	}

	rings := make([]*buffer.RingBuffer, width)
	for i := range rings {
		rings[i] = buffer.New(capacity)
	}

	return &Waveform{
		width: width,
		rings: rings,
	}
}

// NewFromConfig creates a history buffer from validated configuration.
func NewFromConfig(cfg config.HistoryConfig) (*Waveform, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return New(cfg.Capacity, cfg.Width), nil
}

// Push stores one segment per channel, evicting the oldest segment of each
// ring that is already full. For a width-1 buffer the item is a single
// segment.
//
// An item whose length differs from the buffer width is ignored and Push
// returns false.
func (h *Waveform) Push(item ...types.Waveform) bool {
	if len(item) != h.width {
		return false
	}

	for i := range item {
		h.rings[i].PushOverwrite(item[i])
	}
	h.count++
	h.markChanged()

	return true
}

// AppendArray pushes each item in order. It returns the number of items
// that were accepted.
func (h *Waveform) AppendArray(items ...[]types.Waveform) int {
	accepted := 0
	for _, item := range items {
		if h.Push(item...) {
			accepted++
		}
	}
	return accepted
}

// AppendWaveforms pushes each segment as its own item. It only accepts
// segments on width-1 buffers.
func (h *Waveform) AppendWaveforms(ws ...types.Waveform) int {
	accepted := 0
	for i := range ws {
		if h.Push(ws[i]) {
			accepted++
		}
	}
	return accepted
}

// Capacity returns the per-channel capacity.
func (h *Waveform) Capacity() int {
	return h.rings[0].Cap()
}

// Width returns the number of channels.
func (h *Waveform) Width() int {
	return h.width
}

// Count returns the number of accepted pushes since creation.
func (h *Waveform) Count() int64 {
	return h.count
}

// Len returns the number of segments stored for a channel.
func (h *Waveform) Len(channel int) int {
	r := h.ring(channel)
	if r == nil {
		return 0
	}
	return r.Len()
}

// StartIndex returns the lifetime index of the oldest stored push.
func (h *Waveform) StartIndex() int64 {
	return h.count - int64(h.rings[0].Len())
}

// ToArray returns the stored segments of a channel, oldest first.
func (h *Waveform) ToArray(channel int) []types.Waveform {
	r := h.ring(channel)
	if r == nil {
		return nil
	}
	return r.ToSlice()
}

// TimeRange returns the start of the oldest and the end of the newest
// segment stored for a channel. It returns false when the channel is empty
// or out of range.
func (h *Waveform) TimeRange(channel int) (start, end types.Timestamp, ok bool) {
	r := h.ring(channel)
	if r == nil {
		return 0, 0, false
	}
	return r.TimeRange()
}

// Stats returns ring statistics for a channel. DropCount counts evictions.
func (h *Waveform) Stats(channel int) (buffer.BufferStats, bool) {
	r := h.ring(channel)
	if r == nil {
		return buffer.BufferStats{}, false
	}
	return r.Stats(), true
}

// Changed reports whether a push happened since the last ResetChanged.
func (h *Waveform) Changed() bool {
	return h.changed
}

// ResetChanged clears the changed flag.
func (h *Waveform) ResetChanged() {
	h.changed = false
}

// SetOnChange registers fn to be called after every accepted push and
// after Clear. A nil fn removes the callback.
func (h *Waveform) SetOnChange(fn func()) {
	h.onChange = fn
}

// Clear removes all stored segments. The lifetime count is kept.
func (h *Waveform) Clear() {
	for _, r := range h.rings {
		r.Clear()
	}
	h.markChanged()
}

func (h *Waveform) markChanged() {
	h.changed = true
	if h.onChange != nil {
		h.onChange()
	}
}

// ring returns the ring for a channel, or nil if the index is out of range.
func (h *Waveform) ring(channel int) *buffer.RingBuffer {
	if channel < 0 || channel >= h.width {
		return nil
	}
	return h.rings[channel]
}
