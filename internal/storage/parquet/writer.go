package parquet

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/xtxerr/wavehist/internal/errors"
	"github.com/xtxerr/wavehist/internal/storage/config"
	"github.com/xtxerr/wavehist/internal/storage/types"
)

// Options configures the Parquet writer.
type Options struct {
	// Compression algorithm
	Compression CompressionType

	// CompressionLevel for algorithms that support it (zstd: 1-22)
	CompressionLevel int

	// RowGroupSize is the target number of rows per row group
	RowGroupSize int

	// PageSize is the target page size in bytes
	PageSize int
}

// CompressionType represents a Parquet compression algorithm.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionSnappy
	CompressionZstd
	CompressionLZ4
	CompressionGzip
)

// DefaultOptions returns default Parquet options.
func DefaultOptions() Options {
	return Options{
		Compression:      CompressionZstd,
		CompressionLevel: 3,
		RowGroupSize:     100000,
		PageSize:         1024 * 1024, // 1MB
	}
}

// OptionsFromConfig builds writer options from export configuration.
func OptionsFromConfig(cfg config.ExportConfig) Options {
	opts := DefaultOptions()
	opts.Compression = ParseCompressionType(cfg.Compression.Algorithm)
	opts.CompressionLevel = cfg.Compression.Level
	if cfg.RowGroupSize > 0 {
		opts.RowGroupSize = cfg.RowGroupSize
	}
	return opts
}

// ParseCompressionType parses a compression type string.
func ParseCompressionType(s string) CompressionType {
	switch s {
	case "snappy":
		return CompressionSnappy
	case "zstd":
		return CompressionZstd
	case "lz4":
		return CompressionLZ4
	case "gzip":
		return CompressionGzip
	case "none", "":
		return CompressionNone
	default:
		return CompressionZstd
	}
}

// getCompression returns the parquet-go compression codec.
func getCompression(ct CompressionType) compress.Codec {
	switch ct {
	case CompressionSnappy:
		return &parquet.Snappy
	case CompressionZstd:
		return &parquet.Zstd
	case CompressionLZ4:
		return &parquet.Lz4Raw
	case CompressionGzip:
		return &parquet.Gzip
	default:
		return &parquet.Uncompressed
	}
}

func writerOptions(opts Options) []parquet.WriterOption {
	writerOpts := []parquet.WriterOption{
		parquet.Compression(getCompression(opts.Compression)),
	}
	if opts.RowGroupSize > 0 {
		writerOpts = append(writerOpts, parquet.MaxRowsPerRowGroup(int64(opts.RowGroupSize)))
	}
	if opts.PageSize > 0 {
		writerOpts = append(writerOpts, parquet.PageBufferSize(opts.PageSize))
	}
	return writerOpts
}

// SeriesRow is one waveform sample in Parquet format. Segment is the
// lifetime push index of the segment the sample belongs to; a change of
// Segment between consecutive rows marks a gap.
type SeriesRow struct {
	Channel   int32   `parquet:"channel"`
	Segment   int64   `parquet:"segment"`
	Index     int32   `parquet:"index"`
	Timestamp float64 `parquet:"timestamp"`
	Value     float64 `parquet:"value"`
	Dt        float64 `parquet:"dt"`
}

// SummaryRow represents a channel summary in Parquet format.
type SummaryRow struct {
	Channel  int32   `parquet:"channel"`
	Start    float64 `parquet:"start"`
	End      float64 `parquet:"end"`
	Count    int64   `parquet:"count"`
	Segments int32   `parquet:"segments"`
	Sum      float64 `parquet:"sum"`
	Min      float64 `parquet:"min"`
	Max      float64 `parquet:"max"`
	Avg      float64 `parquet:"avg"`
	P50      float64 `parquet:"p50,optional"`
	P90      float64 `parquet:"p90,optional"`
	P95      float64 `parquet:"p95,optional"`
	P99      float64 `parquet:"p99,optional"`
	FirstTs  float64 `parquet:"first_ts"`
	LastTs   float64 `parquet:"last_ts"`
}

// WaveformToRows converts a segment to one row per sample.
func WaveformToRows(channel int, segment int64, w *types.Waveform) []SeriesRow {
	rows := make([]SeriesRow, len(w.Y))
	for i, y := range w.Y {
		rows[i] = SeriesRow{
			Channel:   int32(channel),
			Segment:   segment,
			Index:     int32(i),
			Timestamp: w.At(i).Float(),
			Value:     y,
			Dt:        w.Dt,
		}
	}
	return rows
}

// RowsToDataSeries rebuilds the gap-delimited series of one channel.
// Empty segments produce no rows, so they do not appear as gaps.
func RowsToDataSeries(rows []SeriesRow, channel int) []types.Point {
	result := make([]types.Point, 0, len(rows))
	var last int64
	started := false

	for i := range rows {
		r := &rows[i]
		if int(r.Channel) != channel {
			continue
		}
		if started && r.Segment != last {
			result = append(result, types.Gap())
		}
		result = append(result, types.Point{X: types.Float(r.Timestamp), Y: types.Float(r.Value)})
		last = r.Segment
		started = true
	}

	return result
}

// SummaryToRow converts an AggregateResult to a SummaryRow.
func SummaryToRow(a *types.AggregateResult) SummaryRow {
	row := SummaryRow{
		Channel:  int32(a.Channel),
		Start:    a.Start.Float(),
		End:      a.End.Float(),
		Count:    a.Count,
		Segments: int32(a.Segments),
		Sum:      a.Sum,
		Min:      a.Min,
		Max:      a.Max,
		Avg:      a.Avg,
		FirstTs:  a.FirstTs.Float(),
		LastTs:   a.LastTs.Float(),
	}

	if a.P50 != nil {
		row.P50 = *a.P50
	}
	if a.P90 != nil {
		row.P90 = *a.P90
	}
	if a.P95 != nil {
		row.P95 = *a.P95
	}
	if a.P99 != nil {
		row.P99 = *a.P99
	}

	return row
}

// RowToSummary converts a SummaryRow to an AggregateResult.
func RowToSummary(r *SummaryRow) types.AggregateResult {
	result := types.AggregateResult{
		Channel:  int(r.Channel),
		Start:    types.Timestamp(r.Start),
		End:      types.Timestamp(r.End),
		Count:    r.Count,
		Segments: int(r.Segments),
		Sum:      r.Sum,
		Min:      r.Min,
		Max:      r.Max,
		Avg:      r.Avg,
		FirstTs:  types.Timestamp(r.FirstTs),
		LastTs:   types.Timestamp(r.LastTs),
	}

	// Set percentiles if present
	if r.P50 != 0 || r.P90 != 0 || r.P95 != 0 || r.P99 != 0 {
		result.SetPercentiles(r.P50, r.P90, r.P95, r.P99)
	}

	return result
}

func createFile(path string) (*os.File, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	return f, nil
}

// SeriesWriter writes waveform samples to a Parquet file.
type SeriesWriter struct {
	mu       sync.Mutex
	path     string
	file     *os.File
	writer   *parquet.GenericWriter[SeriesRow]
	rowCount int64
	closed   bool
}

// NewSeriesWriter creates a new series Parquet writer.
func NewSeriesWriter(path string, opts Options) (*SeriesWriter, error) {
	f, err := createFile(path)
	if err != nil {
		return nil, err
	}

	return &SeriesWriter{
		path:   path,
		file:   f,
		writer: parquet.NewGenericWriter[SeriesRow](f, writerOptions(opts)...),
	}, nil
}

// WriteSegments writes the samples of consecutive segments of one channel.
// firstSegment is the lifetime index of segments[0].
func (w *SeriesWriter) WriteSegments(channel int, firstSegment int64, segments []types.Waveform) error {
	var rows []SeriesRow
	for i := range segments {
		rows = append(rows, WaveformToRows(channel, firstSegment+int64(i), &segments[i])...)
	}
	return w.Write(rows)
}

// Write writes rows to the Parquet file.
func (w *SeriesWriter) Write(rows []SeriesRow) error {
	if len(rows) == 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWriterClosed
	}

	n, err := w.writer.Write(rows)
	if err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	w.rowCount += int64(n)
	return nil
}

// Close closes the writer.
func (w *SeriesWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close writer: %w", err)
	}

	return w.file.Close()
}

// RowCount returns the number of rows written.
func (w *SeriesWriter) RowCount() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rowCount
}

// Path returns the file path.
func (w *SeriesWriter) Path() string {
	return w.path
}

// SummaryWriter writes channel summaries to a Parquet file.
type SummaryWriter struct {
	mu       sync.Mutex
	path     string
	file     *os.File
	writer   *parquet.GenericWriter[SummaryRow]
	rowCount int64
	closed   bool
}

// NewSummaryWriter creates a new summary Parquet writer.
func NewSummaryWriter(path string, opts Options) (*SummaryWriter, error) {
	f, err := createFile(path)
	if err != nil {
		return nil, err
	}

	return &SummaryWriter{
		path:   path,
		file:   f,
		writer: parquet.NewGenericWriter[SummaryRow](f, writerOptions(opts)...),
	}, nil
}

// Write writes summaries to the Parquet file.
func (w *SummaryWriter) Write(summaries []types.AggregateResult) error {
	if len(summaries) == 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWriterClosed
	}

	rows := make([]SummaryRow, len(summaries))
	for i := range summaries {
		rows[i] = SummaryToRow(&summaries[i])
	}

	n, err := w.writer.Write(rows)
	if err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	w.rowCount += int64(n)
	return nil
}

// Close closes the writer.
func (w *SummaryWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close writer: %w", err)
	}

	return w.file.Close()
}

// RowCount returns the number of rows written.
func (w *SummaryWriter) RowCount() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rowCount
}

// Path returns the file path.
func (w *SummaryWriter) Path() string {
	return w.path
}

// ErrWriterClosed is returned when writing to a closed writer.
var ErrWriterClosed = fmt.Errorf("parquet %w", errors.ErrWriterClosed)
