package parquet

import (
	"github.com/xtxerr/wavehist/internal/storage/history"
)

// ExportBuffer writes every stored segment of every channel of hb to a
// new series file at path. It returns the number of rows written.
func ExportBuffer(hb history.Buffer, path string, opts Options) (int64, error) {
	w, err := NewSeriesWriter(path, opts)
	if err != nil {
		return 0, err
	}

	first := hb.StartIndex()
	for ch := 0; ch < hb.Width(); ch++ {
		if err := w.WriteSegments(ch, first, hb.ToArray(ch)); err != nil {
			w.Close()
			return 0, err
		}
	}

	if err := w.Close(); err != nil {
		return 0, err
	}
	return w.RowCount(), nil
}
