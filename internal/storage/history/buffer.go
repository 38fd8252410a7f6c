package history

import "github.com/xtxerr/wavehist/internal/storage/types"

// Buffer is the behavior shared by history buffers that store waveform
// segments. *Waveform implements it.
type Buffer interface {
	// Push stores one segment per channel. It returns false if the
	// item does not match the buffer width.
	Push(item ...types.Waveform) bool

	// AppendArray pushes each item in order and returns the number
	// of accepted pushes.
	AppendArray(items ...[]types.Waveform) int

	// ToArray returns the stored segments of a channel, oldest first.
	ToArray(channel int) []types.Waveform

	// StartIndex returns the lifetime index of the oldest stored push.
	StartIndex() int64

	Count() int64
	Capacity() int
	Width() int
}

var _ Buffer = (*Waveform)(nil)
