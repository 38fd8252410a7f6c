// Package storage wires the waveform history buffer to its supporting
// components.
//
// Architecture:
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Producer  │────▶│   History   │────▶│   Parquet   │
//	│   (Push)    │     │ (per-chan   │     │   Export    │
//	└─────────────┘     │   rings)    │     └──────┬──────┘
//	                    └──────┬──────┘            │
//	                           │                   ▼
//	                    ┌──────▼──────┐     ┌─────────────┐
//	                    │  Summarizer │     │   DuckDB    │
//	                    │ (DDSketch)  │     │   Query     │
//	                    └─────────────┘     └─────────────┘
//
// The history buffer itself is not safe for concurrent use. Service
// serializes access to it so that producers and readers on different
// goroutines can share one buffer.
package storage
