package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/xtxerr/wavehist/internal/errors"
	"github.com/xtxerr/wavehist/internal/logging"
	"github.com/xtxerr/wavehist/internal/storage/aggregate"
	"github.com/xtxerr/wavehist/internal/storage/config"
	"github.com/xtxerr/wavehist/internal/storage/history"
	"github.com/xtxerr/wavehist/internal/storage/parquet"
	"github.com/xtxerr/wavehist/internal/storage/query"
	"github.com/xtxerr/wavehist/internal/storage/types"
	"github.com/xtxerr/wavehist/internal/validation"
	"github.com/xtxerr/wavehist/internal/wire"
)

// Service is the main storage service that orchestrates all components.
type Service struct {
	mu sync.RWMutex

	config *config.Config
	log    *slog.Logger

	// width is fixed at creation; a restored buffer must match it.
	width int

	// Components, guarded by mu. RestoreSnapshot replaces history.
	history    *history.Waveform
	summarizer *aggregate.Summarizer
	query      *query.Service

	// Statistics
	rejected atomic.Int64
	exports  atomic.Int64
	closed   atomic.Bool
}

// ServiceStats holds combined statistics.
type ServiceStats struct {
	Capacity   int
	Width      int
	Count      int64
	StartIndex int64
	Stored     int
	Evicted    int64
	Usage      float64
	Rejected   int64
	Exports    int64
	Query      query.ServiceStats
}

// ExportResult describes a written export file.
type ExportResult struct {
	Path string
	Rows int64
}

// New creates a new storage service.
func New(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	hb, err := history.NewFromConfig(cfg.History)
	if err != nil {
		return nil, fmt.Errorf("create history: %w", err)
	}

	qry, err := query.New(cfg.Query)
	if err != nil {
		return nil, fmt.Errorf("create query: %w", err)
	}

	s := &Service{
		config:     cfg,
		log:        logging.Component("storage"),
		width:      hb.Width(),
		history:    hb,
		summarizer: aggregate.NewSummarizer(cfg.Summary),
		query:      qry,
	}

	s.log.Debug("storage service created",
		"capacity", hb.Capacity(),
		"width", hb.Width(),
		"requirements", cfg.CalculateRequirements().String(),
	)

	return s, nil
}

// Close releases the query engine. The buffer contents are discarded.
func (s *Service) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := s.query.Close(); err != nil {
		return fmt.Errorf("close query: %w", err)
	}
	return nil
}

// Config returns the current configuration.
func (s *Service) Config() *config.Config {
	return s.config
}

// Width returns the number of channels.
func (s *Service) Width() int {
	return s.width
}

// Push validates one segment per channel and appends them.
func (s *Service) Push(item ...types.Waveform) error {
	if len(item) != s.width {
		s.rejected.Add(1)
		return errors.NewWidthMismatch(len(item), s.width)
	}
	for ch := range item {
		if err := item[ch].Validate(); err != nil {
			s.rejected.Add(1)
			return fmt.Errorf("channel %d: %w: %w", ch, errors.ErrInvalidWaveform, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.history.Push(item...) {
		s.rejected.Add(1)
		return errors.NewWidthMismatch(len(item), s.width)
	}
	return nil
}

func (s *Service) checkChannel(channel int) error {
	if channel < 0 || channel >= s.width {
		return errors.NewChannelOutOfRange(channel, s.width)
	}
	return nil
}

// Query returns the flattened samples of a channel near [start, end].
func (s *Service) Query(start, end types.Timestamp, step float64, channel int) ([]types.NullFloat, error) {
	if err := s.checkChannel(channel); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Query(start, end, step, channel), nil
}

// DataSeries returns every stored sample of a channel as points.
func (s *Service) DataSeries(channel int) ([]types.Point, error) {
	if err := s.checkChannel(channel); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.ToDataSeries(channel), nil
}

// Range returns the bounding box of a channel.
func (s *Service) Range(channel int) (types.Bounds, bool, error) {
	if err := s.checkChannel(channel); err != nil {
		return types.Bounds{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.history.Range(channel)
	return b, ok, nil
}

// RangeY returns the bounding box of a channel restricted to a window.
func (s *Service) RangeY(start, end *types.Timestamp, channel int) (types.Bounds, bool, error) {
	if err := s.checkChannel(channel); err != nil {
		return types.Bounds{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.history.RangeY(start, end, channel)
	return b, ok, nil
}

// RangeX returns the time extent and finest sample interval of a channel.
func (s *Service) RangeX(channel int) (types.XRange, bool, error) {
	if err := s.checkChannel(channel); err != nil {
		return types.XRange{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.history.RangeX(channel)
	return r, ok, nil
}

// Summarize computes summary statistics for every channel.
func (s *Service) Summarize(ctx context.Context, start, end *types.Timestamp) ([]types.AggregateResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summarizer.SummarizeAll(ctx, s.history, start, end)
}

// resolve places relative file names under the export directory.
// Relative names must not contain path separators.
func (s *Service) resolve(path string, prefix string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s-%d.parquet", prefix, s.history.Count())
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	if err := validation.ValidateFileName(path); err != nil {
		return "", err
	}
	return filepath.Join(s.config.Export.Dir, path), nil
}

// Export writes every stored sample of every channel to a Parquet file.
// An empty path generates a name from the push count.
func (s *Service) Export(ctx context.Context, path string) (ExportResult, error) {
	if err := ctx.Err(); err != nil {
		return ExportResult{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path, err := s.resolve(path, "series")
	if err != nil {
		return ExportResult{}, err
	}
	rows, err := parquet.ExportBuffer(s.history, path, parquet.OptionsFromConfig(s.config.Export))
	if err != nil {
		s.log.Error("export failed", "path", path, "error", err)
		return ExportResult{}, fmt.Errorf("export series: %w", err)
	}

	s.exports.Add(1)
	s.log.Info("exported series", "path", path, "rows", rows)
	return ExportResult{Path: path, Rows: rows}, nil
}

// ExportSummary writes the summary of every channel to a Parquet file.
func (s *Service) ExportSummary(ctx context.Context, path string, start, end *types.Timestamp) (ExportResult, error) {
	summaries, err := s.Summarize(ctx, start, end)
	if err != nil {
		return ExportResult{}, err
	}

	s.mu.RLock()
	path, err = s.resolve(path, "summary")
	s.mu.RUnlock()
	if err != nil {
		return ExportResult{}, err
	}

	w, err := parquet.NewSummaryWriter(path, parquet.OptionsFromConfig(s.config.Export))
	if err != nil {
		return ExportResult{}, fmt.Errorf("export summary: %w", err)
	}
	if err := w.Write(summaries); err != nil {
		w.Close()
		return ExportResult{}, fmt.Errorf("export summary: %w", err)
	}
	if err := w.Close(); err != nil {
		return ExportResult{}, fmt.Errorf("export summary: %w", err)
	}

	s.exports.Add(1)
	s.log.Info("exported summary", "path", path, "rows", w.RowCount())
	return ExportResult{Path: path, Rows: w.RowCount()}, nil
}

// ExportStats runs per-channel analytics over exported series files.
// pattern may be a path or a glob; relative patterns are resolved against
// the export directory.
func (s *Service) ExportStats(ctx context.Context, pattern string) ([]query.ChannelStats, error) {
	if s.closed.Load() {
		return nil, errors.ErrClosed
	}
	if pattern == "" {
		pattern = "*.parquet"
	}
	if !filepath.IsAbs(pattern) {
		if err := validation.ValidatePattern(pattern); err != nil {
			return nil, err
		}
		pattern = filepath.Join(s.config.Export.Dir, pattern)
	}
	return s.query.ChannelStats(ctx, pattern)
}

// Snapshot returns the serializable view of the buffer.
func (s *Service) Snapshot() history.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.ToJSON()
}

// WriteSnapshot writes a length-delimited snapshot to w.
func (s *Service) WriteSnapshot(w io.Writer) error {
	return wire.NewWriter(w).Write(s.Snapshot())
}

// RestoreSnapshot replaces the buffer with the next snapshot read from r.
// The snapshot width and capacity must match the configuration.
func (s *Service) RestoreSnapshot(r io.Reader) error {
	snap, err := wire.NewReader(r).Read()
	if err != nil {
		return err
	}

	hb, err := history.Restore(snap)
	if err != nil {
		return err
	}
	if hb.Width() != s.width {
		return errors.NewWidthMismatch(hb.Width(), s.width)
	}
	if hb.Capacity() != s.config.History.Capacity {
		s.log.Warn("snapshot capacity differs from configuration",
			"snapshot", hb.Capacity(),
			"configured", s.config.History.Capacity,
		)
		return fmt.Errorf("snapshot capacity %d, configured %d: %w",
			hb.Capacity(), s.config.History.Capacity, errors.ErrInvalidSnapshot)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = hb

	s.log.Info("restored snapshot", "count", hb.Count(), "stored", hb.Len(0))
	return nil
}

// Stats returns combined statistics.
func (s *Service) Stats() ServiceStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ring, _ := s.history.Stats(0)
	return ServiceStats{
		Capacity:   s.history.Capacity(),
		Width:      s.width,
		Count:      s.history.Count(),
		StartIndex: s.history.StartIndex(),
		Stored:     ring.Count,
		Evicted:    ring.DropCount,
		Usage:      ring.UsageRatio,
		Rejected:   s.rejected.Load(),
		Exports:    s.exports.Load(),
		Query:      s.query.Stats(),
	}
}
