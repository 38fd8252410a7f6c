package types

// Bounds is the time and value extent of stored waveform data.
type Bounds struct {
	XMin float64 `json:"xmin"`
	XMax float64 `json:"xmax"`
	YMin float64 `json:"ymin"`
	YMax float64 `json:"ymax"`
}

// Width returns the time extent.
func (b Bounds) Width() float64 {
	return b.XMax - b.XMin
}

// Height returns the value extent.
func (b Bounds) Height() float64 {
	return b.YMax - b.YMin
}

// XRange is the time extent of stored samples together with the
// smallest sample interval seen.
type XRange struct {
	XMin     float64 `json:"xmin"`
	XMax     float64 `json:"xmax"`
	DeltaMin float64 `json:"deltamin"`
}
