// Package query runs SQL analytics over exported Parquet series files
// using an embedded DuckDB database.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/xtxerr/wavehist/internal/errors"
	"github.com/xtxerr/wavehist/internal/storage/config"
	"github.com/xtxerr/wavehist/internal/storage/types"
	"github.com/xtxerr/wavehist/internal/validation"
)

// Service provides query capabilities over exported series files.
type Service struct {
	mu sync.RWMutex

	config config.QueryConfig
	db     *sql.DB

	// Statistics
	stats ServiceStats
}

// ServiceStats holds service statistics.
type ServiceStats struct {
	QueriesExecuted int64
	RowsReturned    int64
	Errors          int64
}

// ChannelStats describes the contents of one channel in an export.
type ChannelStats struct {
	Channel  int
	Segments int64
	Samples  int64
	Min      float64
	Max      float64
	Avg      float64
	FirstTs  types.Timestamp
	LastTs   types.Timestamp
	MinDt    float64
}

// Bounds returns the x/y extent of the channel.
func (c ChannelStats) Bounds() types.Bounds {
	return types.Bounds{
		XMin: c.FirstTs.Float(),
		XMax: c.LastTs.Float(),
		YMin: c.Min,
		YMax: c.Max,
	}
}

// Sample is one exported sample.
type Sample struct {
	Segment   int64
	Timestamp types.Timestamp
	Value     float64
}

// New creates a new query service.
func New(cfg config.QueryConfig) (*Service, error) {
	// Open in-memory DuckDB database
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w: %w", errors.ErrDatabase, err)
	}

	if cfg.MemoryLimit != "" {
		if _, err := db.Exec("SET memory_limit=" + validation.QuoteSQLString(cfg.MemoryLimit)); err != nil {
			db.Close()
			return nil, fmt.Errorf("set memory limit: %w", err)
		}
	}

	return &Service{
		config: cfg,
		db:     db,
	}, nil
}

// Close closes the query service.
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout > 0 {
		return context.WithTimeout(ctx, s.config.Timeout)
	}
	return context.WithCancel(ctx)
}

func (s *Service) limit() string {
	if s.config.MaxRows > 0 {
		return fmt.Sprintf(" LIMIT %d", s.config.MaxRows)
	}
	return ""
}

func (s *Service) record(rows int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.stats.Errors++
		return
	}
	s.stats.QueriesExecuted++
	s.stats.RowsReturned += int64(rows)
}

// ChannelStats returns per-channel statistics of the series files
// matching pattern (a path or glob).
func (s *Service) ChannelStats(ctx context.Context, pattern string) ([]ChannelStats, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT
			channel,
			count(DISTINCT segment),
			count(*),
			min(value), max(value), avg(value),
			min(timestamp), max(timestamp),
			min(dt)
		FROM read_parquet(%s)
		GROUP BY channel
		ORDER BY channel`, validation.QuoteSQLString(pattern))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.record(0, err)
		return nil, fmt.Errorf("channel stats: %w", err)
	}
	defer rows.Close()

	var results []ChannelStats
	for rows.Next() {
		var c ChannelStats
		var ch int32
		var first, last float64
		if err := rows.Scan(&ch, &c.Segments, &c.Samples, &c.Min, &c.Max, &c.Avg, &first, &last, &c.MinDt); err != nil {
			s.record(0, err)
			return nil, fmt.Errorf("scan row: %w", err)
		}
		c.Channel = int(ch)
		c.FirstTs = types.Timestamp(first)
		c.LastTs = types.Timestamp(last)
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		s.record(0, err)
		return nil, err
	}

	s.record(len(results), nil)
	return results, nil
}

// Window returns the exported samples of a channel that lie within
// [start-dt, end+dt], ordered by segment and sample index.
func (s *Service) Window(ctx context.Context, pattern string, channel int, start, end types.Timestamp) ([]Sample, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT segment, timestamp, value
		FROM read_parquet(%s)
		WHERE channel = ?
		  AND timestamp >= CAST(? AS DOUBLE) - dt
		  AND timestamp <= CAST(? AS DOUBLE) + dt
		ORDER BY segment, "index"%s`, validation.QuoteSQLString(pattern), s.limit())

	rows, err := s.db.QueryContext(ctx, query, int32(channel), start.Float(), end.Float())
	if err != nil {
		s.record(0, err)
		return nil, fmt.Errorf("window: %w", err)
	}
	defer rows.Close()

	results := []Sample{}
	for rows.Next() {
		var smp Sample
		var ts float64
		if err := rows.Scan(&smp.Segment, &ts, &smp.Value); err != nil {
			s.record(0, err)
			return nil, fmt.Errorf("scan row: %w", err)
		}
		smp.Timestamp = types.Timestamp(ts)
		results = append(results, smp)
	}
	if err := rows.Err(); err != nil {
		s.record(0, err)
		return nil, err
	}

	s.record(len(results), nil)
	return results, nil
}

// Stats returns query statistics.
func (s *Service) Stats() ServiceStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// ExecuteSQL executes a raw SQL query using DuckDB.
// This is useful for ad-hoc queries and debugging.
func (s *Service) ExecuteSQL(ctx context.Context, query string) ([]map[string]interface{}, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.record(0, err)
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]interface{}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			s.record(0, err)
			return nil, err
		}

		row := make(map[string]interface{})
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		s.record(0, err)
		return nil, err
	}

	s.record(len(results), nil)
	return results, nil
}
