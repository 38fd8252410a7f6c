package history

import "github.com/xtxerr/wavehist/internal/storage/types"

// Query returns the samples of a channel that fall within [start, end] as a
// flat sequence of alternating timestamp and value entries.
//
// Segments are selected with a coarse span test; empty segments are never
// selected. Within a selected segment every sample whose timestamp lies in
// [start-dt, end+dt] is emitted, so grid samples adjacent to the window are
// kept. A (null, null) pair separates consecutive selected segments.
//
// step is accepted for call sites that decimate, but is not applied here.
func (h *Waveform) Query(start, end types.Timestamp, step float64, channel int) []types.NullFloat {
	_ = step

	result := make([]types.NullFloat, 0)
	r := h.ring(channel)
	if r == nil {
		return result
	}

	r.Each(func(_ int, w *types.Waveform) bool {
		if !w.Overlaps(start, end) {
			return true
		}

		if len(result) > 0 {
			// gap between segments
			result = append(result, types.Null(), types.Null())
		}

		result = appendWindow(result, w, start, end)
		return true
	})

	return result
}

func appendWindow(dst []types.NullFloat, w *types.Waveform, start, end types.Timestamp) []types.NullFloat {
	lo := start.Float() - w.Dt
	hi := end.Float() + w.Dt

	for i, y := range w.Y {
		ts := w.At(i).Float()
		if ts >= lo && ts <= hi {
			dst = append(dst, types.Float(ts), types.Float(y))
		}
	}
	return dst
}

// ToDataSeries returns every stored sample of a channel as [timestamp, value]
// points. A single [null, null] point separates successive segments,
// including empty ones.
func (h *Waveform) ToDataSeries(channel int) []types.Point {
	result := make([]types.Point, 0)
	r := h.ring(channel)
	if r == nil {
		return result
	}

	r.Each(func(_ int, w *types.Waveform) bool {
		if len(result) > 0 {
			result = append(result, types.Gap())
		}

		for i, y := range w.Y {
			result = append(result, types.Point{X: types.Float(w.At(i).Float()), Y: types.Float(y)})
		}
		return true
	})

	return result
}
