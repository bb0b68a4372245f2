package services

import (
	"context"

	"github.com/Lllllllleong/backofficefunctions/internal/gcp"
)

// MaxBatchWrites keeps every commit under Firestore's 500 operation ceiling
// with room for the occasional field transform.
const MaxBatchWrites = 490

// BatchWriter groups writes into commits of at most MaxBatchWrites operations.
type BatchWriter struct {
	store   DocumentStore
	limit   int
	pending []gcp.Write

	Commits int
	Writes  int
}

func NewBatchWriter(store DocumentStore) *BatchWriter {
	return &BatchWriter{store: store, limit: MaxBatchWrites}
}

// Add queues w and commits once the batch is full.
func (b *BatchWriter) Add(ctx context.Context, w gcp.Write) error {
	b.pending = append(b.pending, w)
	if len(b.pending) >= b.limit {
		return b.Flush(ctx)
	}
	return nil
}

// Flush commits whatever is pending. An empty batch is never committed.
func (b *BatchWriter) Flush(ctx context.Context) error {
	if len(b.pending) == 0 {
		return nil
	}
	writes := b.pending
	b.pending = nil
	if err := b.store.Commit(ctx, writes); err != nil {
		return err
	}
	b.Commits++
	b.Writes += len(writes)
	return nil
}
