package query

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xtxerr/wavehist/internal/storage/config"
	"github.com/xtxerr/wavehist/internal/storage/history"
	"github.com/xtxerr/wavehist/internal/storage/parquet"
	"github.com/xtxerr/wavehist/internal/storage/types"
)

func seg(t0, dt float64, y ...float64) types.Waveform {
	return types.NewWaveform(types.Timestamp(t0), dt, y)
}

func newService(t *testing.T) *Service {
	t.Helper()
	svc, err := New(config.DefaultConfig().Query)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func exportFixture(t *testing.T) string {
	t.Helper()
	hb := history.New(8, 2)
	hb.Push(seg(1, 1, 10, 11, 12), seg(1, 0.5, -1, -2))
	hb.Push(seg(10, 2, 5, 20), seg(10, 0.25, 3))

	path := filepath.Join(t.TempDir(), "series.parquet")
	if _, err := parquet.ExportBuffer(hb, path, parquet.DefaultOptions()); err != nil {
		t.Fatalf("ExportBuffer: %v", err)
	}
	return path
}

func TestService_New(t *testing.T) {
	svc := newService(t)
	if svc == nil {
		t.Fatal("service is nil")
	}
}

func TestService_ExecuteSQL(t *testing.T) {
	svc := newService(t)

	results, err := svc.ExecuteSQL(context.Background(), "SELECT 1 AS value")
	if err != nil {
		t.Fatalf("ExecuteSQL: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	stats := svc.Stats()
	if stats.QueriesExecuted != 1 {
		t.Errorf("expected 1 query executed, got %d", stats.QueriesExecuted)
	}
}

func TestService_ChannelStats(t *testing.T) {
	svc := newService(t)
	path := exportFixture(t)

	stats, err := svc.ChannelStats(context.Background(), path)
	if err != nil {
		t.Fatalf("ChannelStats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(stats))
	}

	ch0 := stats[0]
	if ch0.Channel != 0 || ch0.Segments != 2 || ch0.Samples != 5 {
		t.Errorf("ch0 = %+v", ch0)
	}
	b := ch0.Bounds()
	if b.XMin != 1 || b.XMax != 12 || b.YMin != 5 || b.YMax != 20 {
		t.Errorf("ch0 bounds = %+v", b)
	}
	if ch0.MinDt != 1 {
		t.Errorf("ch0 MinDt = %v, want 1", ch0.MinDt)
	}

	ch1 := stats[1]
	if ch1.Samples != 3 || ch1.Min != -2 || ch1.Max != 3 || ch1.MinDt != 0.25 {
		t.Errorf("ch1 = %+v", ch1)
	}
}

func TestService_Window(t *testing.T) {
	svc := newService(t)
	path := exportFixture(t)

	got, err := svc.Window(context.Background(), path, 0, 2, 3)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	// [2-1, 3+1] on the first segment
	want := []float64{10, 11, 12}
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d: %+v", len(got), len(want), got)
	}
	for i, v := range want {
		if got[i].Value != v {
			t.Errorf("sample %d = %v, want %v", i, got[i].Value, v)
		}
	}

	none, err := svc.Window(context.Background(), path, 0, 100, 200)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no samples, got %d", len(none))
	}
}

func TestService_MissingFile(t *testing.T) {
	svc := newService(t)

	_, err := svc.ChannelStats(context.Background(), filepath.Join(t.TempDir(), "missing.parquet"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if svc.Stats().Errors != 1 {
		t.Errorf("expected 1 error recorded, got %d", svc.Stats().Errors)
	}
}
