package history

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtxerr/wavehist/internal/errors"
	"github.com/xtxerr/wavehist/internal/storage/types"
)

// Snapshot is the serializable view of a history buffer.
//
// In JSON form, data holds the segments of channel 0 for a width-1 buffer
// and one array per channel otherwise.
type Snapshot struct {
	Channels   [][]types.Waveform
	Width      int
	Capacity   int
	ValueType  string
	StartIndex int64
	Count      int64
}

type snapshotJSON struct {
	Data       json.RawMessage `json:"data"`
	Width      int             `json:"width"`
	Capacity   int             `json:"capacity"`
	ValueType  string          `json:"valueType"`
	StartIndex int64           `json:"startIndex"`
	Count      int64           `json:"count"`
}

// ToJSON returns a snapshot of the buffer contents.
func (h *Waveform) ToJSON() Snapshot {
	channels := make([][]types.Waveform, h.width)
	for i := range channels {
		channels[i] = h.ToArray(i)
	}

	return Snapshot{
		Channels:   channels,
		Width:      h.width,
		Capacity:   h.Capacity(),
		ValueType:  ValueType,
		StartIndex: h.StartIndex(),
		Count:      h.count,
	}
}

// MarshalJSON implements json.Marshaler.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var data any = s.Channels
	if s.Width == 1 && len(s.Channels) == 1 {
		data = s.Channels[0]
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return json.Marshal(snapshotJSON{
		Data:       raw,
		Width:      s.Width,
		Capacity:   s.Capacity,
		ValueType:  s.ValueType,
		StartIndex: s.StartIndex,
		Count:      s.Count,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var sj snapshotJSON
	if err := json.Unmarshal(b, &sj); err != nil {
		return err
	}

	s.Width = sj.Width
	s.Capacity = sj.Capacity
	s.ValueType = sj.ValueType
	s.StartIndex = sj.StartIndex
	s.Count = sj.Count
	s.Channels = nil

	if len(sj.Data) == 0 || string(sj.Data) == "null" {
		if sj.Width > 0 {
			s.Channels = make([][]types.Waveform, sj.Width)
		}
		return nil
	}

	if sj.Width == 1 {
		var single []types.Waveform
		if err := json.Unmarshal(sj.Data, &single); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
		s.Channels = [][]types.Waveform{single}
		return nil
	}

	if err := json.Unmarshal(sj.Data, &s.Channels); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// Proto converts the snapshot into a protobuf Struct.
func (s Snapshot) Proto() (*structpb.Struct, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "marshal snapshot")
	}

	pb := &structpb.Struct{}
	if err := protojson.Unmarshal(data, pb); err != nil {
		return nil, errors.Wrap(err, "convert snapshot")
	}
	return pb, nil
}

// SnapshotFromProto decodes a snapshot previously produced by Proto.
func SnapshotFromProto(pb *structpb.Struct) (Snapshot, error) {
	var s Snapshot

	data, err := protojson.Marshal(pb)
	if err != nil {
		return s, errors.Wrap(err, "marshal struct")
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, errors.Wrap(err, "decode snapshot")
	}
	return s, nil
}

// Validate checks that a snapshot can be restored.
func (s Snapshot) Validate() error {
	v := errors.NewValidationErrors()

	if s.ValueType != ValueType {
		v.AddField("valueType", fmt.Sprintf("expected %q, got %q", ValueType, s.ValueType))
	}
	if s.Capacity <= 0 {
		v.AddField("capacity", "must be positive")
	}
	if s.Width <= 0 {
		v.AddField("width", "must be positive")
	}
	if len(s.Channels) != s.Width {
		v.AddField("data", fmt.Sprintf("expected %d channels, got %d", s.Width, len(s.Channels)))
	} else {
		for i := 1; i < len(s.Channels); i++ {
			if len(s.Channels[i]) != len(s.Channels[0]) {
				v.AddField("data", fmt.Sprintf("channel %d holds %d segments, channel 0 holds %d",
					i, len(s.Channels[i]), len(s.Channels[0])))
			}
		}
		if len(s.Channels) > 0 && len(s.Channels[0]) > s.Capacity {
			v.AddField("data", "more segments than capacity")
		}
	}
	if s.Count < 0 {
		v.AddField("count", "must not be negative")
	}

	return v.Err()
}

// Restore builds a history buffer holding the contents of a snapshot.
// The lifetime count is taken from the snapshot.
func Restore(s Snapshot) (*Waveform, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("restore snapshot: %w: %w", errors.ErrInvalidSnapshot, err)
	}

	h := New(s.Capacity, s.Width)
	item := make([]types.Waveform, s.Width)
	for i := range s.Channels[0] {
		for ch := range s.Channels {
			item[ch] = s.Channels[ch][i]
		}
		h.Push(item...)
	}

	stored := int64(len(s.Channels[0]))
	if s.Count > stored {
		h.count = s.Count
	}
	h.changed = false

	return h, nil
}
