package history

import (
	"math"

	"github.com/xtxerr/wavehist/internal/storage/types"
)

// minMax accumulates extents over segments. It is a value type: fold
// returns the updated accumulator and leaves the receiver untouched.
type minMax struct {
	minTS, maxTS float64
	min, max     float64
	samples      int
}

func newMinMax() minMax {
	return minMax{
		minTS: math.Inf(1),
		maxTS: math.Inf(-1),
		min:   math.Inf(1),
		max:   math.Inf(-1),
	}
}

// window restricts folding to segments and samples inside [start, end].
type window struct {
	start, end float64
}

// fold adds one segment. With a nil window every sample counts. With a
// window, segments disjoint from it are skipped, and only samples inside
// it update the value extent while the time extent takes the whole span.
func (m minMax) fold(w *types.Waveform, win *window) minMax {
	if w.Empty() {
		return m
	}

	startTS := w.Start().Float()
	endTS := w.End().Float()

	if win != nil && (startTS > win.end || endTS < win.start) {
		return m
	}

	for i, y := range w.Y {
		if win != nil {
			t := w.At(i).Float()
			if t < win.start || t > win.end {
				continue
			}
		}

		if y > m.max {
			m.max = y
		}
		if y < m.min {
			m.min = y
		}
		m.samples++
	}

	if startTS < m.minTS {
		m.minTS = startTS
	}
	if endTS > m.maxTS {
		m.maxTS = endTS
	}

	return m
}

func (m minMax) bounds() types.Bounds {
	return types.Bounds{
		XMin: m.minTS,
		XMax: m.maxTS,
		YMin: m.min,
		YMax: m.max,
	}
}

// Range returns the extent of a whole channel: the earliest segment start,
// the latest segment end, and the smallest and largest sample values.
// It returns false when the channel holds no samples.
func (h *Waveform) Range(channel int) (types.Bounds, bool) {
	r := h.ring(channel)
	if r == nil || r.IsEmpty() {
		return types.Bounds{}, false
	}

	m := newMinMax()
	r.Each(func(_ int, w *types.Waveform) bool {
		m = m.fold(w, nil)
		return true
	})

	if m.samples == 0 {
		return types.Bounds{}, false
	}
	return m.bounds(), true
}

// RangeY returns the extent of a channel restricted to [start, end].
// A nil start defaults to the start of the oldest segment and a nil end to
// the end of the newest segment.
//
// The value extent covers only samples inside the window. The time extent
// covers the full span of every segment that overlaps the window. It returns
// false when no sample falls inside the window.
func (h *Waveform) RangeY(start, end *types.Timestamp, channel int) (types.Bounds, bool) {
	oldest, newest, ok := h.TimeRange(channel)
	if !ok {
		return types.Bounds{}, false
	}
	r := h.rings[channel]

	win := window{start: oldest.Float(), end: newest.Float()}
	if start != nil {
		win.start = start.Float()
	}
	if end != nil {
		win.end = end.Float()
	}

	m := newMinMax()
	r.Each(func(_ int, w *types.Waveform) bool {
		m = m.fold(w, &win)
		return true
	})

	if m.samples == 0 {
		return types.Bounds{}, false
	}
	return m.bounds(), true
}

// RangeX returns the time extent of the stored samples of a channel: the
// first sample time, the last sample time and the smallest sample interval.
// It returns false when the channel holds no samples.
func (h *Waveform) RangeX(channel int) (types.XRange, bool) {
	r := h.ring(channel)
	if r == nil {
		return types.XRange{}, false
	}

	xr := types.XRange{
		XMin:     math.Inf(1),
		XMax:     math.Inf(-1),
		DeltaMin: math.Inf(1),
	}
	found := false

	r.Each(func(_ int, w *types.Waveform) bool {
		if w.Empty() {
			return true
		}
		found = true

		xr.XMin = math.Min(xr.XMin, w.Start().Float())
		xr.XMax = math.Max(xr.XMax, w.Last().Float())
		xr.DeltaMin = math.Min(xr.DeltaMin, w.Dt)
		return true
	})

	if !found {
		return types.XRange{}, false
	}
	return xr, true
}
