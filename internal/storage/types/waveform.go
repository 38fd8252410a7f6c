package types

import (
	"fmt"
	"math"
	"time"
)

// Timestamp is a point in time expressed as seconds since the Unix epoch.
// Fractional seconds carry sub-second resolution.
type Timestamp float64

// TimestampFromTime converts a time.Time to a Timestamp.
func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp(float64(t.Unix()) + float64(t.Nanosecond())/float64(time.Second))
}

// Add returns the timestamp shifted by interval seconds.
func (ts Timestamp) Add(interval float64) Timestamp {
	return ts + Timestamp(interval)
}

// Float returns the comparable numeric value of the timestamp.
func (ts Timestamp) Float() float64 {
	return float64(ts)
}

// Time returns the timestamp as a time.Time.
func (ts Timestamp) Time() time.Time {
	sec, frac := math.Modf(float64(ts))
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

// Waveform is one analog waveform segment: a start time, a uniform sample
// interval and the ordered sample values. Sample i is taken at T0 + i*Dt.
//
// A Waveform must not be mutated after it has been pushed into a buffer.
type Waveform struct {
	T0 Timestamp `json:"t0"`
	Dt float64   `json:"dt"`
	Y  []float64 `json:"Y"`
}

// NewWaveform creates a waveform owning a copy of y.
func NewWaveform(t0 Timestamp, dt float64, y []float64) Waveform {
	values := make([]float64, len(y))
	copy(values, y)
	return Waveform{T0: t0, Dt: dt, Y: values}
}

// Len returns the number of samples.
func (w *Waveform) Len() int {
	return len(w.Y)
}

// Empty returns true if the waveform holds no samples.
func (w *Waveform) Empty() bool {
	return len(w.Y) == 0
}

// Start returns the start time of the waveform.
func (w *Waveform) Start() Timestamp {
	return w.T0
}

// End returns the end of the waveform span, T0 + Dt*len(Y).
func (w *Waveform) End() Timestamp {
	return w.T0.Add(w.Dt * float64(len(w.Y)))
}

// At returns the timestamp of sample i.
func (w *Waveform) At(i int) Timestamp {
	return w.T0.Add(w.Dt * float64(i))
}

// Last returns the timestamp of the final sample.
// For an empty waveform it returns T0.
func (w *Waveform) Last() Timestamp {
	if len(w.Y) == 0 {
		return w.T0
	}
	return w.At(len(w.Y) - 1)
}

// Overlaps reports whether the waveform span intersects [start, end].
// Empty waveforms never overlap.
func (w *Waveform) Overlaps(start, end Timestamp) bool {
	if len(w.Y) == 0 {
		return false
	}
	ws, we := w.Start(), w.End()
	if ws < start && we < start {
		return false
	}
	if ws > end && we > end {
		return false
	}
	return true
}

// Validate checks that the waveform timing and samples are usable.
// Samples must be finite so that snapshots and JSON output can encode them.
func (w *Waveform) Validate() error {
	if math.IsNaN(float64(w.T0)) || math.IsInf(float64(w.T0), 0) {
		return fmt.Errorf("t0 must be finite, got %v", float64(w.T0))
	}
	if math.IsNaN(w.Dt) || math.IsInf(w.Dt, 0) {
		return fmt.Errorf("dt must be finite, got %v", w.Dt)
	}
	if w.Dt < 0 {
		return fmt.Errorf("dt must not be negative, got %v", w.Dt)
	}
	for i, y := range w.Y {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return fmt.Errorf("sample %d must be finite, got %v", i, y)
		}
	}
	return nil
}
