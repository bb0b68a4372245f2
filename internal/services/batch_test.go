package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Lllllllleong/backofficefunctions/internal/gcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchWriterNeverExceedsLimit(t *testing.T) {
	store := newFakeStore()
	bw := NewBatchWriter(store)
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		require.NoError(t, bw.Add(ctx, gcp.Write{Path: fmt.Sprintf("things/%04d", i), Data: map[string]any{"n": i}}))
	}
	require.NoError(t, bw.Flush(ctx))

	require.Len(t, store.commits, 3)
	assert.Len(t, store.commits[0], MaxBatchWrites)
	assert.Len(t, store.commits[1], MaxBatchWrites)
	assert.Len(t, store.commits[2], 20)
	assert.Equal(t, 3, bw.Commits)
	assert.Equal(t, 1000, bw.Writes)
}

func TestBatchWriterExactMultiple(t *testing.T) {
	store := newFakeStore()
	bw := NewBatchWriter(store)
	ctx := context.Background()

	for i := 0; i < MaxBatchWrites; i++ {
		require.NoError(t, bw.Add(ctx, gcp.Write{Path: fmt.Sprintf("things/%04d", i), Data: map[string]any{}}))
	}
	require.NoError(t, bw.Flush(ctx))

	assert.Len(t, store.commits, 1)
}

func TestBatchWriterEmptyFlush(t *testing.T) {
	store := newFakeStore()
	bw := NewBatchWriter(store)

	require.NoError(t, bw.Flush(context.Background()))
	assert.Empty(t, store.commits)
	assert.Zero(t, bw.Commits)
}

func TestBatchWriterCommitError(t *testing.T) {
	store := newFakeStore()
	store.commitErr = errors.New("unavailable")
	bw := NewBatchWriter(store)
	ctx := context.Background()

	require.NoError(t, bw.Add(ctx, gcp.Write{Path: "things/a", Data: map[string]any{}}))
	assert.Error(t, bw.Flush(ctx))
	assert.Zero(t, bw.Writes)
}
