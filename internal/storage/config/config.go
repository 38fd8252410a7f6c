package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	defaults "github.com/xtxerr/wavehist/config"
	"github.com/xtxerr/wavehist/internal/errors"
)

// Config represents the complete storage configuration.
type Config struct {
	// History configures the waveform history buffer.
	History HistoryConfig `yaml:"history"`

	// Summary configures per-channel summary statistics.
	Summary SummaryConfig `yaml:"summary"`

	// Export configures Parquet export of buffer contents.
	Export ExportConfig `yaml:"export"`

	// Query configures SQL analytics over exported files.
	Query QueryConfig `yaml:"query"`

	// Logging configures the global logger.
	Logging LoggingConfig `yaml:"logging"`
}

// HistoryConfig configures the waveform history buffer.
type HistoryConfig struct {
	// Capacity is the number of segments kept per channel.
	Capacity int `yaml:"capacity"`

	// Width is the number of parallel channels.
	Width int `yaml:"width"`

	// SamplesPerSegment is the expected segment length. It is only used
	// to estimate memory requirements.
	SamplesPerSegment int `yaml:"samples_per_segment"`
}

// SummaryConfig configures per-channel summary statistics.
type SummaryConfig struct {
	// Percentiles enables DDSketch percentile calculation.
	Percentiles bool `yaml:"percentiles"`

	// Accuracy is the relative accuracy (0.01 = 1% error).
	Accuracy float64 `yaml:"accuracy"`
}

// ExportConfig configures Parquet export.
type ExportConfig struct {
	// Dir is the directory for export files.
	Dir string `yaml:"dir"`

	// Compression configures Parquet compression.
	Compression CompressionConfig `yaml:"compression"`

	// RowGroupSize is the target number of rows per row group.
	RowGroupSize int `yaml:"row_group_size"`
}

// CompressionConfig configures Parquet compression.
type CompressionConfig struct {
	// Algorithm is the compression algorithm: snappy, zstd, lz4, gzip, none.
	Algorithm string `yaml:"algorithm"`

	// Level is the compression level (for zstd: 1-22).
	Level int `yaml:"level"`
}

// QueryConfig configures the query service.
type QueryConfig struct {
	// MemoryLimit is the DuckDB memory limit.
	MemoryLimit string `yaml:"memory_limit"`

	// Timeout is the query timeout.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRows is the maximum number of rows returned.
	MaxRows int `yaml:"max_rows"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// JSON switches the output to JSON lines.
	JSON bool `yaml:"json"`
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file %s: %w", path, errors.ErrConfigNotFound)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return Parse(data)
}

// Parse parses YAML configuration on top of the defaults.
func Parse(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		History: HistoryConfig{
			Capacity:          defaults.DefaultCapacity,
			Width:             defaults.DefaultWidth,
			SamplesPerSegment: defaults.DefaultSamplesPerSegment,
		},
		Summary: SummaryConfig{
			Percentiles: true,
			Accuracy:    defaults.DefaultSketchAccuracy,
		},
		Export: ExportConfig{
			Dir: defaults.DefaultExportDir,
			Compression: CompressionConfig{
				Algorithm: defaults.DefaultCompression,
				Level:     defaults.DefaultCompressionLevel,
			},
			RowGroupSize: defaults.DefaultRowGroupSize,
		},
		Query: QueryConfig{
			MemoryLimit: defaults.DefaultQueryMemoryLimit,
			Timeout:     defaults.DefaultQueryTimeout,
			MaxRows:     defaults.DefaultQueryMaxRows,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
