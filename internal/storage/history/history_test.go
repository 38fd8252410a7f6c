package history

import (
	"math"
	"testing"

	"github.com/xtxerr/wavehist/internal/storage/config"
	"github.com/xtxerr/wavehist/internal/storage/types"
)

func aw(t0, dt float64, y ...float64) types.Waveform {
	return types.NewWaveform(types.Timestamp(t0), dt, y)
}

func TestNew_Defaults(t *testing.T) {
	tests := []struct {
		capacity, width         int
		wantCapacity, wantWidth int
	}{
		{0, 0, 1024, 1},
		{-1, -2, 1024, 1},
		{10, 3, 10, 3},
	}

	for _, tt := range tests {
		hb := New(tt.capacity, tt.width)
		if hb.Capacity() != tt.wantCapacity {
			t.Errorf("New(%d, %d): expected capacity=%d, got %d", tt.capacity, tt.width, tt.wantCapacity, hb.Capacity())
		}
		if hb.Width() != tt.wantWidth {
			t.Errorf("New(%d, %d): expected width=%d, got %d", tt.capacity, tt.width, tt.wantWidth, hb.Width())
		}
	}
}

func TestNewFromConfig(t *testing.T) {
	hb, err := NewFromConfig(config.HistoryConfig{Capacity: 8, Width: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hb.Capacity() != 8 || hb.Width() != 2 {
		t.Errorf("expected 8x2 buffer, got %dx%d", hb.Capacity(), hb.Width())
	}

	if _, err := NewFromConfig(config.HistoryConfig{Capacity: -8, Width: 2}); err == nil {
		t.Error("expected error for negative capacity")
	}
}

func TestPush_WidthOne(t *testing.T) {
	hb := New(10, 1)

	if !hb.Push(aw(4, 1, 1, 2, 3)) {
		t.Fatal("push should be accepted")
	}
	if hb.Len(0) != 1 {
		t.Errorf("expected 1 segment, got %d", hb.Len(0))
	}
	if hb.Count() != 1 {
		t.Errorf("expected count=1, got %d", hb.Count())
	}
}

func TestPush_WidthMismatchIsIgnored(t *testing.T) {
	hb := New(10, 2)

	if hb.Push(aw(4, 1, 1)) {
		t.Error("single segment on width-2 buffer should be rejected")
	}
	if hb.Push(aw(4, 1, 1), aw(5, 1, 1), aw(6, 1, 1)) {
		t.Error("three segments on width-2 buffer should be rejected")
	}
	if hb.Push() {
		t.Error("empty item should be rejected")
	}

	if hb.Count() != 0 || hb.Len(0) != 0 || hb.Len(1) != 0 {
		t.Error("rejected pushes must not change the buffer")
	}
	if hb.Changed() {
		t.Error("rejected pushes must not set the changed flag")
	}
}

func TestPush_MultiChannelIsolation(t *testing.T) {
	hb := New(10, 2)

	hb.Push(aw(4, 1, 1, 2, 3), aw(1, 1, 1, 2, 3))

	got0 := hb.Query(0, 10, 1, 0)
	assertSeries(t, got0, 4, 1, 5, 2, 6, 3)

	got1 := hb.Query(0, 10, 1, 1)
	assertSeries(t, got1, 1, 1, 2, 2, 3, 3)

	if hb.Len(0) != hb.Len(1) {
		t.Error("channels must stay the same length")
	}
}

func TestPush_FIFOEviction(t *testing.T) {
	hb := New(3, 1)

	for i := 0; i < 7; i++ {
		hb.Push(aw(float64(i*10), 1, float64(i)))
	}

	stored := hb.ToArray(0)
	if len(stored) != 3 {
		t.Fatalf("expected 3 stored segments, got %d", len(stored))
	}
	for i, w := range stored {
		want := types.Timestamp((4 + i) * 10)
		if w.T0 != want {
			t.Errorf("segment %d: expected t0=%v, got %v", i, want, w.T0)
		}
	}

	if hb.Count() != 7 {
		t.Errorf("count should not be clamped to capacity, got %d", hb.Count())
	}
	if hb.StartIndex() != 4 {
		t.Errorf("expected start index 4, got %d", hb.StartIndex())
	}
}

func TestPush_CapacityOneOverflow(t *testing.T) {
	hb := New(1, 1)

	hb.AppendWaveforms(aw(4, 1, 1, 2, 3), aw(1, 1, 1, 2, 3))

	assertSeries(t, hb.Query(0, 10, 1, 0), 1, 1, 2, 2, 3, 3)
}

func TestAppendArray(t *testing.T) {
	hb := New(10, 2)

	accepted := hb.AppendArray(
		[]types.Waveform{aw(0, 1, 1), aw(0, 1, 2)},
		[]types.Waveform{aw(1, 1, 1)}, // wrong width
		[]types.Waveform{aw(2, 1, 3), aw(2, 1, 4)},
	)

	if accepted != 2 {
		t.Errorf("expected 2 accepted pushes, got %d", accepted)
	}
	if hb.Len(0) != 2 || hb.Len(1) != 2 {
		t.Errorf("expected 2 segments per channel, got %d/%d", hb.Len(0), hb.Len(1))
	}
}

func TestAppendWaveforms_RejectedOnWideBuffer(t *testing.T) {
	hb := New(10, 2)

	if n := hb.AppendWaveforms(aw(0, 1, 1), aw(1, 1, 1)); n != 0 {
		t.Errorf("expected 0 accepted, got %d", n)
	}
}

func TestChangedAndOnChange(t *testing.T) {
	hb := New(10, 1)
	calls := 0
	hb.SetOnChange(func() { calls++ })

	if hb.Changed() {
		t.Error("new buffer should not be changed")
	}

	hb.Push(aw(0, 1, 1))
	hb.Push(aw(1, 1, 1))

	if !hb.Changed() {
		t.Error("expected changed after push")
	}
	if calls != 2 {
		t.Errorf("expected 2 callbacks, got %d", calls)
	}

	hb.ResetChanged()
	if hb.Changed() {
		t.Error("expected changed cleared")
	}

	hb.Clear()
	if calls != 3 || !hb.Changed() {
		t.Error("clear should notify")
	}
	if hb.Len(0) != 0 {
		t.Error("clear should remove segments")
	}
	if hb.Count() != 2 {
		t.Errorf("clear should keep lifetime count, got %d", hb.Count())
	}

	hb.SetOnChange(nil)
	hb.Push(aw(2, 1, 1))
	if calls != 3 {
		t.Error("removed callback should not be called")
	}
}

func TestOutOfRangeChannel(t *testing.T) {
	hb := New(10, 2)
	hb.Push(aw(0, 1, 1), aw(0, 1, 2))

	for _, ch := range []int{-1, 2, 100} {
		if got := hb.Query(0, 10, 1, ch); len(got) != 0 {
			t.Errorf("Query channel %d: expected empty, got %v", ch, got)
		}
		if got := hb.ToDataSeries(ch); len(got) != 0 {
			t.Errorf("ToDataSeries channel %d: expected empty, got %v", ch, got)
		}
		if _, ok := hb.Range(ch); ok {
			t.Errorf("Range channel %d: expected empty", ch)
		}
		if _, ok := hb.RangeY(nil, nil, ch); ok {
			t.Errorf("RangeY channel %d: expected empty", ch)
		}
		if _, ok := hb.RangeX(ch); ok {
			t.Errorf("RangeX channel %d: expected empty", ch)
		}
		if hb.ToArray(ch) != nil {
			t.Errorf("ToArray channel %d: expected nil", ch)
		}
		if hb.Len(ch) != 0 {
			t.Errorf("Len channel %d: expected 0", ch)
		}
		if _, ok := hb.Stats(ch); ok {
			t.Errorf("Stats channel %d: expected false", ch)
		}
		if _, _, ok := hb.TimeRange(ch); ok {
			t.Errorf("TimeRange channel %d: expected false", ch)
		}
	}
}

func TestStats(t *testing.T) {
	hb := New(2, 1)
	hb.AppendWaveforms(aw(0, 1, 1), aw(1, 1, 1), aw(2, 1, 1))

	stats, ok := hb.Stats(0)
	if !ok {
		t.Fatal("expected stats")
	}
	if stats.Count != 2 || stats.DropCount != 1 || stats.PushCount != 3 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestTimeRange(t *testing.T) {
	hb := New(2, 2)
	if _, _, ok := hb.TimeRange(0); ok {
		t.Error("empty buffer should have no time range")
	}

	hb.Push(aw(0, 1, 1, 2), aw(5, 2, 1))
	hb.Push(aw(2, 1, 3), aw(9, 2, 1, 2))
	hb.Push(aw(3, 0.5, 4, 5), aw(20, 1))

	start, end, ok := hb.TimeRange(0)
	if !ok || start != 2 || end != 4 {
		t.Errorf("channel 0: got [%v, %v] ok=%v, want [2, 4]", start, end, ok)
	}
	start, end, ok = hb.TimeRange(1)
	if !ok || start != 9 || end != 20 {
		t.Errorf("channel 1: got [%v, %v] ok=%v, want [9, 20]", start, end, ok)
	}
}

func TestPushedSegmentIsNotAliased(t *testing.T) {
	hb := New(10, 1)
	y := []float64{1, 2, 3}
	hb.Push(types.NewWaveform(0, 1, y))
	y[0] = 99

	if got := hb.ToArray(0)[0].Y[0]; got != 1 {
		t.Errorf("stored segment changed with caller slice: %v", got)
	}
}

// assertSeries compares a flat query result against alternating timestamp
// and value pairs. NaN in want marks an expected null.
func assertSeries(t *testing.T, got []types.NullFloat, want ...float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if math.IsNaN(want[i]) {
			if got[i].Valid {
				t.Errorf("entry %d: expected null, got %v", i, got[i])
			}
			continue
		}
		if !got[i].Valid || got[i].V != want[i] {
			t.Errorf("entry %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}
