package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/backofficefunctions/internal/callable"
	"github.com/Lllllllleong/backofficefunctions/internal/config"
	"github.com/Lllllllleong/backofficefunctions/internal/gcp"
	"github.com/Lllllllleong/backofficefunctions/internal/models"
)

// PostDeleterFunction deletes a post together with its index entry and stored files.
type PostDeleterFunction struct {
	store   DocumentStore
	objects ObjectStore
	config  config.StorageCleanupConfig
}

func NewPostDeleter(ctx context.Context) (*PostDeleterFunction, error) {
	cfg, err := config.Load(&config.StorageCleanupConfig{})
	if err != nil {
		return nil, err
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, err
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return newPostDeleter(*cfg, gcp.NewFirestoreStore(firestoreClient), gcp.NewStorageObjects(storageClient)), nil
}

func newPostDeleter(cfg config.StorageCleanupConfig, store DocumentStore, objects ObjectStore) *PostDeleterFunction {
	return &PostDeleterFunction{store: store, objects: objects, config: cfg}
}

// Process deletes posts/{id}, blogIndexRefs/{id} and every object under posts/{id}/.
func (f *PostDeleterFunction) Process(ctx context.Context, req *models.DeletePostRequest) (*models.DeletePostResponse, error) {
	postID := strings.TrimSpace(req.PostID)
	if postID == "" || strings.Contains(postID, "/") {
		return nil, callable.InvalidArgument("a valid postId is required")
	}
	logCtx := slog.With("postId", postID)
	logCtx.Info("Deleting post.")

	if err := f.store.Delete(ctx, models.DocPath(models.PostsCollection, postID)); err != nil {
		logCtx.Error("Failed to delete post document", "error", err)
		return nil, err
	}
	if err := f.store.Delete(ctx, models.DocPath(models.BlogIndexRefsCollection, postID)); err != nil {
		logCtx.Error("Failed to delete blog index ref", "error", err)
		return nil, err
	}

	prefix := models.StoragePrefix(models.PostsCollection, postID)
	deleted, err := f.objects.DeletePrefix(ctx, f.config.ImagesBucket, prefix)
	if err != nil {
		logCtx.Error("Failed to delete post files", "error", err, "prefix", prefix, "deletedBeforeFailure", deleted)
		return nil, err
	}

	logCtx.Info("Post deleted.", "deletedObjects", deleted)
	return &models.DeletePostResponse{PostID: postID, DeletedObjects: deleted}, nil
}
