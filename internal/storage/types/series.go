package types

import (
	"encoding/json"
	"strconv"
)

// NullFloat is a float64 that may be null. Null values mark gaps
// between waveform segments in flattened series.
type NullFloat struct {
	V     float64
	Valid bool
}

// Float returns a valid NullFloat holding v.
func Float(v float64) NullFloat {
	return NullFloat{V: v, Valid: true}
}

// Null returns an invalid NullFloat.
func Null() NullFloat {
	return NullFloat{}
}

// String returns the value, or "null".
func (n NullFloat) String() string {
	if !n.Valid {
		return "null"
	}
	return strconv.FormatFloat(n.V, 'g', -1, 64)
}

// MarshalJSON encodes the value, or null when invalid.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.V)
}

// UnmarshalJSON decodes a number or null.
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}

// Point is a [timestamp, value] pair in a flattened data series.
type Point struct {
	X NullFloat
	Y NullFloat
}

// Gap returns the [null, null] marker that breaks a plotted line.
func Gap() Point {
	return Point{}
}

// IsGap returns true if the point is a gap marker.
func (p Point) IsGap() bool {
	return !p.X.Valid && !p.Y.Valid
}

// MarshalJSON encodes the point as a two-element array.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]NullFloat{p.X, p.Y})
}

// UnmarshalJSON decodes a two-element array.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair [2]NullFloat
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	p.X, p.Y = pair[0], pair[1]
	return nil
}
