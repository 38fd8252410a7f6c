package parquet

import (
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/xtxerr/wavehist/internal/errors"
	"github.com/xtxerr/wavehist/internal/storage/types"
)

const readBufferSize = 1024 * 1024

// openFile opens an export file. A missing file yields ErrExportNotFound.
func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, errors.ErrExportNotFound)
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// SeriesReader reads waveform samples from a Parquet file.
type SeriesReader struct {
	file   *os.File
	reader *parquet.GenericReader[SeriesRow]
	path   string
}

// NewSeriesReader creates a new series Parquet reader.
func NewSeriesReader(path string) (*SeriesReader, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}

	return &SeriesReader{
		file:   f,
		reader: parquet.NewGenericReader[SeriesRow](f, parquet.ReadBufferSize(readBufferSize)),
		path:   path,
	}, nil
}

// Read reads up to n rows from the file. It returns io.EOF once the
// file is exhausted.
func (r *SeriesReader) Read(n int) ([]SeriesRow, error) {
	rows := make([]SeriesRow, n)
	count, err := r.reader.Read(rows)
	if err != nil && !(errors.Is(err, io.EOF) && count > 0) {
		return nil, err
	}
	return rows[:count], nil
}

// ReadAll reads all rows from the file.
func (r *SeriesReader) ReadAll() ([]SeriesRow, error) {
	rows := make([]SeriesRow, r.reader.NumRows())
	n, err := r.reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return rows[:n], nil
}

// NumRows returns the total number of rows in the file.
func (r *SeriesReader) NumRows() int64 {
	return r.reader.NumRows()
}

// Close closes the reader.
func (r *SeriesReader) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// Path returns the file path.
func (r *SeriesReader) Path() string {
	return r.path
}

// SummaryReader reads channel summaries from a Parquet file.
type SummaryReader struct {
	file   *os.File
	reader *parquet.GenericReader[SummaryRow]
	path   string
}

// NewSummaryReader creates a new summary Parquet reader.
func NewSummaryReader(path string) (*SummaryReader, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}

	return &SummaryReader{
		file:   f,
		reader: parquet.NewGenericReader[SummaryRow](f, parquet.ReadBufferSize(readBufferSize)),
		path:   path,
	}, nil
}

// ReadAll reads all summaries from the file.
func (r *SummaryReader) ReadAll() ([]types.AggregateResult, error) {
	rows := make([]SummaryRow, r.reader.NumRows())
	n, err := r.reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	results := make([]types.AggregateResult, n)
	for i := 0; i < n; i++ {
		results[i] = RowToSummary(&rows[i])
	}
	return results, nil
}

// NumRows returns the total number of rows in the file.
func (r *SummaryReader) NumRows() int64 {
	return r.reader.NumRows()
}

// Close closes the reader.
func (r *SummaryReader) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// Path returns the file path.
func (r *SummaryReader) Path() string {
	return r.path
}

// FileInfo holds information about a Parquet file.
type FileInfo struct {
	Path      string
	Size      int64
	NumRows   int64
	NumCols   int
	RowGroups int
}

// GetFileInfo returns information about a Parquet file.
func GetFileInfo(path string) (*FileInfo, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	return &FileInfo{
		Path:      path,
		Size:      stat.Size(),
		NumRows:   pf.NumRows(),
		NumCols:   len(pf.Schema().Columns()),
		RowGroups: len(pf.RowGroups()),
	}, nil
}
