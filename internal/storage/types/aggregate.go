package types

// AggregateResult represents summary statistics over one channel window.
// This is the output of the aggregate package.
type AggregateResult struct {
	// Identity
	Channel int // Channel index within the history buffer

	// Window
	Start Timestamp // Window start (inclusive)
	End   Timestamp // Window end (inclusive)

	// Basic statistics (always present)
	Count    int64   // Number of samples in the window
	Segments int     // Number of segments contributing samples
	Sum      float64 // Sum of all values
	Min      float64 // Minimum value
	Max      float64 // Maximum value
	Avg      float64 // Average value (Sum / Count)

	// Percentiles (optional, nil if not enabled)
	P50 *float64 // 50th percentile (median)
	P90 *float64 // 90th percentile
	P95 *float64 // 95th percentile
	P99 *float64 // 99th percentile

	// Timestamps of actual samples
	FirstTs Timestamp // Timestamp of first sample in window
	LastTs  Timestamp // Timestamp of last sample in window
}

// Duration returns the window length in seconds.
func (a *AggregateResult) Duration() float64 {
	return a.End.Float() - a.Start.Float()
}

// IsEmpty returns true if no samples were aggregated.
func (a *AggregateResult) IsEmpty() bool {
	return a.Count == 0
}

// HasPercentiles returns true if percentile data is available.
func (a *AggregateResult) HasPercentiles() bool {
	return a.P50 != nil
}

// SetPercentiles sets all percentile values.
func (a *AggregateResult) SetPercentiles(p50, p90, p95, p99 float64) {
	a.P50 = &p50
	a.P90 = &p90
	a.P95 = &p95
	a.P99 = &p99
}
