package services

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/backofficefunctions/internal/config"
	"github.com/Lllllllleong/backofficefunctions/internal/gcp"
	"github.com/Lllllllleong/backofficefunctions/internal/models"
)

// ProductCleanupFunction removes a deleted product's files from Storage.
type ProductCleanupFunction struct {
	objects ObjectStore
	config  config.StorageCleanupConfig
}

func NewProductCleanup(ctx context.Context) (*ProductCleanupFunction, error) {
	cfg, err := config.Load(&config.StorageCleanupConfig{})
	if err != nil {
		return nil, err
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &ProductCleanupFunction{objects: gcp.NewStorageObjects(storageClient), config: *cfg}, nil
}

func (f *ProductCleanupFunction) Process(ctx context.Context, productID string) (int, error) {
	logCtx := slog.With("productId", productID)
	if productID == "" {
		return 0, fmt.Errorf("product id is empty")
	}

	prefix := models.StoragePrefix(models.ProductsCollection, productID)
	deleted, err := f.objects.DeletePrefix(ctx, f.config.ImagesBucket, prefix)
	if err != nil {
		logCtx.Error("Failed to delete product files", "error", err, "prefix", prefix)
		return deleted, err
	}
	logCtx.Info("Product files deleted.", "deletedObjects", deleted)
	return deleted, nil
}
