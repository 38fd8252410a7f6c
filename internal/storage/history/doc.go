// Package history implements the waveform history buffer: a fixed-capacity,
// per-channel circular store of analog waveform segments that answers the
// windowed queries a live chart needs.
//
// A Waveform buffer owns width parallel rings of equal capacity. Each push
// supplies one segment per channel; when a ring is full the oldest segment
// is overwritten. Queries scan only the stored segments, in arrival order,
// and never mutate the rings:
//
//   - Query flattens the samples overlapping a time window into alternating
//     (timestamp, value) entries, with (null, null) between segments.
//   - ToDataSeries flattens the whole ring into [timestamp, value] points.
//   - Range, RangeY and RangeX compute extents for axis scaling.
//
// The buffer is single-threaded. Callers that share one across goroutines
// must serialize access themselves.
package history
