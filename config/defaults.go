// Package config provides configuration defaults for the wavehist
// application.
//
// This package defines all configurable constants with documented defaults.
// Users can override these values via config.yaml or command-line flags.
package config

import "time"

// =============================================================================
// History Buffer Defaults
// =============================================================================

const (
	// DefaultCapacity is the number of segments retained per channel.
	// Override via config: history.capacity
	DefaultCapacity = 1024

	// DefaultWidth is the number of channels per push.
	// Override via config: history.width
	DefaultWidth = 1

	// DefaultSamplesPerSegment is the expected segment length. It is used
	// only for memory estimates; segments of any length are accepted.
	// Override via config: history.samples_per_segment
	DefaultSamplesPerSegment = 1000
)

// =============================================================================
// Summary Defaults
// =============================================================================

const (
	// DefaultSketchAccuracy is the relative accuracy of percentile sketches.
	// Override via config: summary.accuracy
	DefaultSketchAccuracy = 0.01
)

// =============================================================================
// Export Defaults
// =============================================================================

const (
	// DefaultExportDir is where relative export paths are resolved.
	// Override via config: export.dir
	DefaultExportDir = "./export"

	// DefaultCompression is the Parquet compression algorithm.
	// Override via config: export.compression.algorithm
	DefaultCompression = "zstd"

	// DefaultCompressionLevel applies to zstd only.
	// Override via config: export.compression.level
	DefaultCompressionLevel = 3

	// DefaultRowGroupSize is the target number of rows per row group.
	// Override via config: export.row_group_size
	DefaultRowGroupSize = 100000
)

// =============================================================================
// Query Defaults
// =============================================================================

const (
	// DefaultQueryMemoryLimit is the DuckDB memory limit.
	// Override via config: query.memory_limit
	DefaultQueryMemoryLimit = "512MB"

	// DefaultQueryTimeout bounds a single analytics query.
	// Override via config: query.timeout
	DefaultQueryTimeout = 30 * time.Second

	// DefaultQueryMaxRows caps rows returned by window queries.
	// Override via config: query.max_rows
	DefaultQueryMaxRows = 100000
)

// =============================================================================
// Wire Defaults
// =============================================================================

const (
	// DefaultMaxMessageSize limits a framed snapshot to prevent OOM.
	// A full buffer of 1024 segments with 1000 samples each fits
	// comfortably in 16 MiB of protobuf.
	DefaultMaxMessageSize = 16 * 1024 * 1024
)
