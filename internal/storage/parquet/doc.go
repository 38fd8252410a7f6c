// Package parquet implements Parquet export of history buffer contents.
//
// The package provides:
//   - SeriesWriter/SeriesReader for flattened waveform samples
//   - SummaryWriter/SummaryReader for per-channel summary statistics
//   - Support for multiple compression algorithms (snappy, zstd, lz4, gzip)
//   - Type conversion between storage types and Parquet rows
//
// Export files are snapshots for offline analysis. They are never read
// back into a live buffer.
package parquet
