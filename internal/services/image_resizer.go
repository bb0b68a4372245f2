package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/backofficefunctions/internal/config"
	"github.com/Lllllllleong/backofficefunctions/internal/gcp"
	"github.com/Lllllllleong/backofficefunctions/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	resizedImageKey   = "resizedImage"
	imageWidthKey     = "imageWidth"
	maxMetageneration = 2
)

// ImageResizerFunction holds dependencies for the resize-on-upload logic.
type ImageResizerFunction struct {
	store   DocumentStore
	objects ObjectStore
	config  config.ImageResizeConfig
	now     func() time.Time
}

// ResizeResult describes what one invocation did. Skipped is set when the object was left alone.
type ResizeResult struct {
	Skipped  string
	Widths   []int
	Variants []string
}

// NewImageResizer creates a new ImageResizerFunction instance.
func NewImageResizer(ctx context.Context) (*ImageResizerFunction, error) {
	cfg, err := config.Load(&config.ImageResizeConfig{})
	if err != nil {
		return nil, err
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}

	f := newImageResizer(*cfg, gcp.NewFirestoreStore(firestoreClient), gcp.NewStorageObjects(storageClient))
	slog.Info("Image resizer initialized.", "heroWidths", cfg.HeroWidths, "inlineWidths", cfg.InlineWidths)
	return f, nil
}

func newImageResizer(cfg config.ImageResizeConfig, store DocumentStore, objects ObjectStore) *ImageResizerFunction {
	return &ImageResizerFunction{store: store, objects: objects, config: cfg, now: time.Now}
}

// skipReason reports why an object must not be resized, or "" if it should be.
func skipReason(e gcp.StorageObjectData) string {
	switch {
	case e.Metadata[resizedImageKey] == "true":
		return "already resized"
	case !strings.HasPrefix(e.ContentType, "image/"):
		return "not an image"
	case e.ContentType == "image/svg+xml":
		return "vector image"
	case e.Metageneration > maxMetageneration:
		return "metadata-only update"
	}
	if _, ok := models.ParseImagePath(e.Name); !ok {
		return "not an owned image path"
	}
	return ""
}

func (f *ImageResizerFunction) widthsFor(role string) []int {
	if role == models.ImageRoleHero {
		return f.config.HeroWidths
	}
	return f.config.InlineWidths
}

// Process resizes a newly finalized image into its configured widths.
func (f *ImageResizerFunction) Process(ctx context.Context, e gcp.StorageObjectData) (*ResizeResult, error) {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)

	if reason := skipReason(e); reason != "" {
		logCtx.Info("Skipping object.", "reason", reason, "contentType", e.ContentType, "metageneration", int64(e.Metageneration))
		return &ResizeResult{Skipped: reason}, nil
	}
	imgPath, _ := models.ParseImagePath(e.Name)
	logCtx = logCtx.With("ownerDoc", imgPath.OwnerDocPath(), "role", imgPath.Role)
	logCtx.Info("Resizing image.")

	tempDir, err := os.MkdirTemp("", "image-resizer-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	sourcePath := filepath.Join(tempDir, "source"+filepath.Ext(imgPath.FileName))
	if err := f.objects.Download(ctx, e.Bucket, e.Name, sourcePath); err != nil {
		logCtx.Error("Failed to download source image", "error", err)
		return nil, err
	}

	img, format, err := decodeImageFile(sourcePath, f.config.MaxPixels)
	if errors.Is(err, errImageTooLarge) {
		logCtx.Warn("Skipping oversized image.", "error", err, "maxPixels", f.config.MaxPixels)
		return &ResizeResult{Skipped: "image too large"}, nil
	}
	if err != nil {
		logCtx.Error("Failed to decode source image", "error", err)
		return nil, err
	}
	widths := targetWidths(img.Bounds().Dx(), f.widthsFor(imgPath.Role))
	ext, contentType := outputFormat(format, imgPath.FileName, hasTransparency(img))

	variants := make([]string, len(widths))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(f.config.UploadConcurrency)
	for i, width := range widths {
		eg.Go(func() error {
			localPath := filepath.Join(tempDir, fmt.Sprintf("%d%s", width, ext))
			if err := writeVariant(localPath, resizeToWidth(img, width), contentType, f.config.JPEGQuality); err != nil {
				return fmt.Errorf("width %d: %w", width, err)
			}
			object := variantName(imgPath.Dir, imgPath.FileName, width, ext)
			attrs := gcp.ObjectAttrs{
				ContentType:  contentType,
				CacheControl: f.config.CacheControl,
				Metadata: map[string]string{
					resizedImageKey: "true",
					imageWidthKey:   strconv.Itoa(width),
				},
			}
			if err := f.objects.UploadFile(gctx, e.Bucket, object, localPath, attrs); err != nil {
				return fmt.Errorf("width %d: %w", width, err)
			}
			variants[i] = object
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		logCtx.Error("One or more variants failed to upload", "error", err)
		return nil, err
	}
	logCtx.Info("All variants uploaded.", "widths", widths)

	if err := f.objects.Delete(ctx, e.Bucket, e.Name); err != nil {
		logCtx.Error("Failed to delete original image", "error", err)
		return nil, err
	}

	if err := f.updateOwner(ctx, imgPath, e.Name, widths, variants); err != nil {
		if errors.Is(err, gcp.ErrNotFound) {
			logCtx.Warn("Owner document no longer exists; variants left in place.")
			return &ResizeResult{Widths: widths, Variants: variants}, nil
		}
		logCtx.Error("Failed to update owner document", "error", err)
		return nil, err
	}

	logCtx.Info("Image resize complete.", "variantCount", len(variants))
	return &ResizeResult{Widths: widths, Variants: variants}, nil
}

func (f *ImageResizerFunction) updateOwner(ctx context.Context, p models.ImagePath, original string, widths []int, variants []string) error {
	added := make([]any, len(variants))
	for i, v := range variants {
		added[i] = v
	}
	updates := []firestore.Update{
		{Path: "imagesUpdated", Value: f.now()},
		{Path: "imageFilePathList", Value: firestore.ArrayUnion(added...)},
	}
	// Inline images share the document with the hero, so only the hero defines the size set.
	if p.Role == models.ImageRoleHero {
		updates = append(updates, firestore.Update{Path: "imageSizes", Value: widths})
	}
	if err := f.store.Update(ctx, p.OwnerDocPath(), updates); err != nil {
		return err
	}
	return f.store.Update(ctx, p.OwnerDocPath(), []firestore.Update{
		{Path: "imageFilePathList", Value: firestore.ArrayRemove(original)},
	})
}

func writeVariant(path string, img image.Image, contentType string, quality int) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodeImage(out, img, contentType, quality); err != nil {
		out.Close()
		return fmt.Errorf("encode: %w", err)
	}
	return out.Close()
}
