package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xtxerr/wavehist/internal/errors"
	"github.com/xtxerr/wavehist/internal/storage"
	"github.com/xtxerr/wavehist/internal/storage/config"
	"github.com/xtxerr/wavehist/internal/storage/types"
)

func newTestShell(t *testing.T, width int) (*shell, *bytes.Buffer) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.History.Capacity = 8
	cfg.History.Width = width
	cfg.Export.Dir = t.TempDir()

	svc, err := storage.New(cfg)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { svc.Close() })

	var out bytes.Buffer
	return newShell(svc, &out), &out
}

func TestParseSegment(t *testing.T) {
	tests := []struct {
		input string
		t0    float64
		dt    float64
		y     []float64
	}{
		{"1,0.5,7 8 9", 1, 0.5, []float64{7, 8, 9}},
		{" 2 , 1 , 3,4 ", 2, 1, []float64{3, 4}},
		{"0,1,", 0, 1, []float64{}},
		{"0,1", 0, 1, nil},
	}

	for _, tt := range tests {
		w, err := parseSegment(tt.input)
		if err != nil {
			t.Errorf("parseSegment(%q): %v", tt.input, err)
			continue
		}
		if w.T0.Float() != tt.t0 || w.Dt != tt.dt || len(w.Y) != len(tt.y) {
			t.Errorf("parseSegment(%q) = %+v", tt.input, w)
			continue
		}
		for i := range tt.y {
			if w.Y[i] != tt.y[i] {
				t.Errorf("parseSegment(%q): Y[%d] = %v, want %v", tt.input, i, w.Y[i], tt.y[i])
			}
		}
	}
}

func TestParseSegmentErrors(t *testing.T) {
	for _, input := range []string{"", "1", "x,1,2", "1,y,2", "1,1,2 z"} {
		if _, err := parseSegment(input); !errors.Is(err, errors.ErrInvalidCommand) {
			t.Errorf("parseSegment(%q): expected ErrInvalidCommand, got %v", input, err)
		}
	}
}

func TestShellPushAndQuery(t *testing.T) {
	sh, out := newTestShell(t, 1)

	if err := sh.execute("push 1,0.5,7 8 9 10 11 12"); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := sh.execute("query 2 2.5"); err != nil {
		t.Fatalf("query: %v", err)
	}

	var values []types.NullFloat
	if err := json.Unmarshal(out.Bytes(), &values); err != nil {
		t.Fatalf("decode output %q: %v", out.String(), err)
	}
	want := []float64{1.5, 8, 2, 9, 2.5, 10, 3, 11}
	if len(values) != len(want) {
		t.Fatalf("got %v, want %v", values, want)
	}
	for i := range want {
		if !values[i].Valid || values[i].V != want[i] {
			t.Errorf("value %d = %v, want %v", i, values[i], want[i])
		}
	}
}

func TestShellSeriesWithGaps(t *testing.T) {
	sh, out := newTestShell(t, 1)

	sh.execute("push 0,1,1 2")
	sh.execute("push 5,1,3")
	out.Reset()

	if err := sh.execute("series"); err != nil {
		t.Fatalf("series: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "[[0,1],[1,2],[null,null],[5,3]]" {
		t.Errorf("series = %s", got)
	}
}

func TestShellRanges(t *testing.T) {
	sh, out := newTestShell(t, 2)

	if err := sh.execute("push 1,1,7 8 9;1,0.5,-1"); err != nil {
		t.Fatalf("push: %v", err)
	}

	tests := []struct {
		cmd  string
		want string
	}{
		{"range 0", `{"xmin":1,"xmax":4,"ymin":7,"ymax":9}`},
		{"range 1", `{"xmin":1,"xmax":1.5,"ymin":-1,"ymax":-1}`},
		{"rangey 2 - 0", `{"xmin":1,"xmax":4,"ymin":8,"ymax":9}`},
		{"rangey 10 20", `{}`},
		{"rangex", `{"xmin":1,"xmax":3,"deltamin":1}`},
	}

	for _, tt := range tests {
		out.Reset()
		if err := sh.execute(tt.cmd); err != nil {
			t.Errorf("%s: %v", tt.cmd, err)
			continue
		}
		if got := strings.TrimSpace(out.String()); got != tt.want {
			t.Errorf("%s = %s, want %s", tt.cmd, got, tt.want)
		}
	}
}

func TestShellEmptyRange(t *testing.T) {
	sh, out := newTestShell(t, 1)

	if err := sh.execute("range"); err != nil {
		t.Fatalf("range: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "{}" {
		t.Errorf("range on empty buffer = %s, want {}", got)
	}
}

func TestShellErrors(t *testing.T) {
	sh, _ := newTestShell(t, 2)

	tests := []struct {
		cmd    string
		target error
	}{
		{"bogus", errors.ErrInvalidCommand},
		{"push 0,1,1", errors.ErrWidthMismatch},
		{"push", errors.ErrMissingField},
		{"query 1", errors.ErrMissingField},
		{"query a b", errors.ErrInvalidCommand},
		{"series 5", errors.ErrChannelOutOfRange},
		{"range x", errors.ErrInvalidCommand},
		{"summary 9", errors.ErrChannelOutOfRange},
		{"load " + filepath.Join(t.TempDir(), "missing.snap"), errors.ErrNotFound},
	}

	for _, tt := range tests {
		if err := sh.execute(tt.cmd); !errors.Is(err, tt.target) {
			t.Errorf("%s: expected %v, got %v", tt.cmd, tt.target, err)
		}
	}
}

func TestShellExportAndStats(t *testing.T) {
	sh, out := newTestShell(t, 1)

	sh.execute("push 0,1,1 2 3")
	sh.execute("push 3,0.5,4")
	out.Reset()

	if err := sh.execute("export a.parquet"); err != nil {
		t.Fatalf("export: %v", err)
	}
	var res storage.ExportResult
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("decode export result: %v", err)
	}
	if res.Rows != 4 {
		t.Errorf("Rows = %d, want 4", res.Rows)
	}

	out.Reset()
	if err := sh.execute("stats a.parquet"); err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out.String(), `"Samples":4`) {
		t.Errorf("stats output = %s", out.String())
	}
}

func TestShellSaveLoad(t *testing.T) {
	sh, out := newTestShell(t, 1)
	path := filepath.Join(t.TempDir(), "buffer.snap")

	sh.execute("push 0,1,1 2")
	if err := sh.execute("save " + path); err != nil {
		t.Fatalf("save: %v", err)
	}

	other, otherOut := newTestShell(t, 1)
	if err := other.execute("load " + path); err != nil {
		t.Fatalf("load: %v", err)
	}

	out.Reset()
	sh.execute("snapshot")
	other.execute("snapshot")
	if out.String() != otherOut.String() {
		t.Errorf("snapshots differ:\n%s\n%s", out.String(), otherOut.String())
	}
}

func TestRunScript(t *testing.T) {
	sh, out := newTestShell(t, 1)

	script := strings.Join([]string{
		"# comment",
		"push 0,1,1 2",
		"",
		"bogus",
		"exit",
		"push 5,1,3",
	}, "\n")

	failed := sh.runScript(strings.NewReader(script))
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	if !sh.done {
		t.Error("exit should stop the script")
	}
	if !strings.Contains(out.String(), "line 4") {
		t.Errorf("error should name the line: %s", out.String())
	}
	if sh.svc.Stats().Count != 1 {
		t.Errorf("commands after exit should not run, count = %d", sh.svc.Stats().Count)
	}
}
