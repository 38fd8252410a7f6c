// Package types defines the core data types used throughout the storage system.
//
// Key types:
//   - Timestamp: numeric time in seconds with explicit arithmetic
//   - Waveform: one analog waveform segment (t0, dt, Y)
//   - NullFloat, Point: nullable values for flattened chart series
//   - Bounds, XRange: extents computed over stored segments
//   - AggregateResult: summary statistics for a channel window
package types
