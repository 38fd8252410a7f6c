package config

import "fmt"

// Requirements represents calculated resource requirements.
type Requirements struct {
	// Memory requirements
	SegmentsTotal int64
	SamplesTotal  int64
	RingBytes     int64
	SampleBytes   int64
	TotalRAMBytes int64

	// Export size estimate for a full buffer
	ExportRows          int64
	ExportBytesEstimate int64
}

// Constants for calculations
const (
	// Bytes per stored segment header (t0, dt, slice header)
	bytesPerSegment = 40

	// Bytes per sample value
	bytesPerSample = 8

	// Bytes per exported Parquet row (compressed)
	bytesPerExportRowCompressed = 12
)

// CalculateRequirements estimates memory use of a full history buffer.
func (c *Config) CalculateRequirements() Requirements {
	r := Requirements{}

	h := c.History
	r.SegmentsTotal = int64(h.Capacity) * int64(h.Width)
	r.SamplesTotal = r.SegmentsTotal * int64(h.SamplesPerSegment)

	r.RingBytes = r.SegmentsTotal * bytesPerSegment
	r.SampleBytes = r.SamplesTotal * bytesPerSample
	r.TotalRAMBytes = r.RingBytes + r.SampleBytes

	r.ExportRows = r.SamplesTotal
	r.ExportBytesEstimate = r.ExportRows * bytesPerExportRowCompressed

	return r
}

// String returns a human-readable summary of the requirements.
func (r Requirements) String() string {
	return fmt.Sprintf("segments=%d samples=%d ram=%s export~%s",
		r.SegmentsTotal, r.SamplesTotal, FormatBytes(r.TotalRAMBytes), FormatBytes(r.ExportBytesEstimate))
}

// FormatBytes formats a byte count using binary units.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
