// Package seqstore hands out per-stream segment numbers for the spool.
// Use Local for a single process, or Redis when several writers append to
// the same stream.
package seqstore

import (
	"context"
	"time"
)

// SeqStore abstracts where segment counters live.
type SeqStore interface {
	// Current returns the last allocated number; missing => 0.
	Current(ctx context.Context, stream string) (uint64, error)
	// Next atomically allocates and returns the next number (first is 1).
	Next(ctx context.Context, stream string) (uint64, error)
	// Cleanup prunes counters idle longer than retention (no-op for Redis).
	Cleanup(retention time.Duration)
	// Close releases resources (no-op ok).
	Close(context.Context) error
}
