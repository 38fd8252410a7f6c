package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/xtxerr/wavehist/internal/errors"
)

const (
	// MaxCapacity bounds the number of segments per channel.
	MaxCapacity = 1 << 24

	// MaxWidth bounds the number of channels.
	MaxWidth = 4096
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.History.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("history: %w", err))
	}

	if err := c.Summary.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("summary: %w", err))
	}

	if err := c.Export.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("export: %w", err))
	}

	if err := c.Query.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("query: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks the history buffer configuration.
func (c *HistoryConfig) Validate() error {
	v := errors.NewValidationErrors()

	if c.Capacity <= 0 {
		v.AddField("capacity", "must be positive")
	} else if c.Capacity > MaxCapacity {
		v.AddField("capacity", fmt.Sprintf("must not exceed %d", MaxCapacity))
	}

	if c.Width <= 0 {
		v.AddField("width", "must be positive")
	} else if c.Width > MaxWidth {
		v.AddField("width", fmt.Sprintf("must not exceed %d", MaxWidth))
	}

	if c.SamplesPerSegment < 0 {
		v.AddField("samples_per_segment", "must not be negative")
	}

	return v.Err()
}

// Validate checks the summary configuration.
func (c *SummaryConfig) Validate() error {
	if c.Percentiles && (c.Accuracy <= 0 || c.Accuracy >= 1) {
		return errors.NewValidation("accuracy", "must be in (0, 1)")
	}
	return nil
}

// Validate checks the export configuration.
func (c *ExportConfig) Validate() error {
	v := errors.NewValidationErrors()

	if c.Dir == "" {
		v.AddMissing("dir")
	}

	switch c.Compression.Algorithm {
	case "snappy", "zstd", "lz4", "gzip", "none", "":
	default:
		v.AddField("compression.algorithm", fmt.Sprintf("unknown algorithm %q", c.Compression.Algorithm))
	}

	if c.Compression.Algorithm == "zstd" && (c.Compression.Level < 1 || c.Compression.Level > 22) {
		v.AddField("compression.level", "zstd level must be between 1 and 22")
	}

	if c.RowGroupSize < 0 {
		v.AddField("row_group_size", "must not be negative")
	}

	return v.Err()
}

// Validate checks the query configuration.
func (c *QueryConfig) Validate() error {
	v := errors.NewValidationErrors()

	if c.Timeout < 0 {
		v.AddField("timeout", "must not be negative")
	}
	if c.MaxRows < 0 {
		v.AddField("max_rows", "must not be negative")
	}

	return v.Err()
}

// Validate checks the logging configuration.
func (c *LoggingConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "warning", "error", "":
		return nil
	default:
		return errors.NewInvalidValue("level", c.Level, "expected debug, info, warn or error")
	}
}

// EnsureDirectories creates the export directory if it does not exist.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Export.Dir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	return nil
}
