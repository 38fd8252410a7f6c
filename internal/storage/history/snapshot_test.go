package history

import (
	"encoding/json"
	"testing"

	"github.com/xtxerr/wavehist/internal/errors"
	"github.com/xtxerr/wavehist/internal/storage/types"
)

func TestToJSON_WidthOne(t *testing.T) {
	hb := New(2, 1)
	hb.AppendWaveforms(aw(0, 1, 9), aw(4, 1, 1, 2), aw(1, 0.5, 3))

	snap := hb.ToJSON()

	if snap.ValueType != "HistoryBuffer" {
		t.Errorf("expected valueType=HistoryBuffer, got %s", snap.ValueType)
	}
	if snap.Count != 3 || snap.StartIndex != 1 {
		t.Errorf("expected count=3 startIndex=1, got %d/%d", snap.Count, snap.StartIndex)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"data":[{"t0":4,"dt":1,"Y":[1,2]},{"t0":1,"dt":0.5,"Y":[3]}],` +
		`"width":1,"capacity":2,"valueType":"HistoryBuffer","startIndex":1,"count":3}`
	if string(data) != want {
		t.Errorf("unexpected JSON:\n got %s\nwant %s", data, want)
	}
}

func TestToJSON_MultiChannel(t *testing.T) {
	hb := New(4, 2)
	hb.Push(aw(0, 1, 1), aw(0, 1, 2))

	data, err := json.Marshal(hb.ToJSON())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded struct {
		Data [][]types.Waveform `json:"data"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded.Data) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(decoded.Data))
	}
	if decoded.Data[1][0].Y[0] != 2 {
		t.Errorf("unexpected channel 1 data %+v", decoded.Data[1])
	}
}

func TestSnapshot_RestoreRoundTrip(t *testing.T) {
	hb := New(3, 2)
	for i := 0; i < 5; i++ {
		hb.Push(aw(float64(i), 1, float64(i)), aw(float64(i), 1, float64(-i)))
	}

	data, err := json.Marshal(hb.ToJSON())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	restored, err := Restore(snap)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	if restored.Count() != hb.Count() || restored.StartIndex() != hb.StartIndex() {
		t.Errorf("count/startIndex mismatch: %d/%d vs %d/%d",
			restored.Count(), restored.StartIndex(), hb.Count(), hb.StartIndex())
	}
	if restored.Changed() {
		t.Error("restored buffer should not be marked changed")
	}

	for ch := 0; ch < 2; ch++ {
		a, _ := json.Marshal(hb.ToDataSeries(ch))
		b, _ := json.Marshal(restored.ToDataSeries(ch))
		if string(a) != string(b) {
			t.Errorf("channel %d differs:\n%s\n%s", ch, a, b)
		}
	}
}

func TestSnapshot_Proto(t *testing.T) {
	hb := New(10, 1)
	hb.AppendWaveforms(aw(4, 1, 1, 2, 3), aw(10, 1))

	pb, err := hb.ToJSON().Proto()
	if err != nil {
		t.Fatalf("proto: %v", err)
	}

	if got := pb.Fields["valueType"].GetStringValue(); got != "HistoryBuffer" {
		t.Errorf("expected valueType field, got %q", got)
	}
	if got := pb.Fields["capacity"].GetNumberValue(); got != 10 {
		t.Errorf("expected capacity=10, got %v", got)
	}

	snap, err := SnapshotFromProto(pb)
	if err != nil {
		t.Fatalf("from proto: %v", err)
	}

	restored, err := Restore(snap)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	assertSeries(t, restored.Query(0, 10, 1, 0), 4, 1, 5, 2, 6, 3)
	if restored.Len(0) != 2 {
		t.Errorf("expected empty segment to survive, got %d segments", restored.Len(0))
	}
}

func TestRestore_Invalid(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
	}{
		{"wrong value type", Snapshot{ValueType: "Other", Capacity: 1, Width: 1, Channels: [][]types.Waveform{nil}}},
		{"zero capacity", Snapshot{ValueType: ValueType, Width: 1, Channels: [][]types.Waveform{nil}}},
		{"channel count", Snapshot{ValueType: ValueType, Capacity: 4, Width: 2, Channels: [][]types.Waveform{nil}}},
		{"ragged channels", Snapshot{ValueType: ValueType, Capacity: 4, Width: 2,
			Channels: [][]types.Waveform{{aw(0, 1, 1)}, nil}}},
		{"over capacity", Snapshot{ValueType: ValueType, Capacity: 1, Width: 1,
			Channels: [][]types.Waveform{{aw(0, 1, 1), aw(1, 1, 1)}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Restore(tt.snap)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrInvalidSnapshot) {
				t.Errorf("expected ErrInvalidSnapshot, got %v", err)
			}
		})
	}
}
