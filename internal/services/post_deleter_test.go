package services

import (
	"context"
	"testing"

	"github.com/Lllllllleong/backofficefunctions/internal/callable"
	"github.com/Lllllllleong/backofficefunctions/internal/config"
	"github.com/Lllllllleong/backofficefunctions/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cleanupConfig() config.StorageCleanupConfig {
	return config.StorageCleanupConfig{ImagesBucket: testImagesBucket}
}

func TestPostDeleterRemovesEverything(t *testing.T) {
	store := newFakeStore()
	store.docs["posts/p1"] = map[string]any{}
	store.docs["blogIndexRefs/p1"] = map[string]any{}
	store.docs["posts/p10"] = map[string]any{}
	objects := newFakeObjects()
	objects.put(testImagesBucket, "posts/p1/hero/a_thumb@300w.jpg", []byte("a"))
	objects.put(testImagesBucket, "posts/p1/inline/b_thumb@300w.jpg", []byte("b"))
	objects.put(testImagesBucket, "posts/p10/hero/c.jpg", []byte("c"))

	f := newPostDeleter(cleanupConfig(), store, objects)
	res, err := f.Process(context.Background(), &models.DeletePostRequest{PostID: " p1 "})
	require.NoError(t, err)
	assert.Equal(t, "p1", res.PostID)
	assert.Equal(t, 2, res.DeletedObjects)

	assert.False(t, store.has("posts/p1"))
	assert.False(t, store.has("blogIndexRefs/p1"))
	assert.True(t, store.has("posts/p10"))
	_, ok := objects.get(testImagesBucket, "posts/p10/hero/c.jpg")
	assert.True(t, ok, "sibling post with a shared id prefix must survive")
}

func TestPostDeleterRejectsBadIDs(t *testing.T) {
	f := newPostDeleter(cleanupConfig(), newFakeStore(), newFakeObjects())
	for _, id := range []string{"", "   ", "p1/../p2"} {
		_, err := f.Process(context.Background(), &models.DeletePostRequest{PostID: id})
		require.Error(t, err, id)
		assert.Equal(t, callable.CodeInvalidArgument, callable.AsError(err).Code)
	}
}

func TestProductCleanup(t *testing.T) {
	objects := newFakeObjects()
	objects.put(testImagesBucket, "products/x/hero/a.jpg", []byte("a"))
	objects.put(testImagesBucket, "products/y/hero/b.jpg", []byte("b"))

	f := &ProductCleanupFunction{objects: objects, config: cleanupConfig()}
	n, err := f.Process(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, ok := objects.get(testImagesBucket, "products/y/hero/b.jpg")
	assert.True(t, ok)

	_, err = f.Process(context.Background(), "")
	assert.Error(t, err)
}
