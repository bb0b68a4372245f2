package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// ObjectAttrs are the attributes set on uploaded objects.
type ObjectAttrs struct {
	ContentType  string
	CacheControl string
	Metadata     map[string]string
}

// StorageObjects wraps a Storage client with the object operations the functions share.
type StorageObjects struct {
	client       *storage.Client
	maxRetries   int
	firstBackoff time.Duration
}

func NewStorageObjects(client *storage.Client) *StorageObjects {
	return &StorageObjects{
		client:       client,
		maxRetries:   4,
		firstBackoff: 1 * time.Second,
	}
}

// Open streams an object. The caller closes the reader.
func (s *StorageObjects) Open(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	return r, nil
}

// Download copies an object into a local file.
func (s *StorageObjects) Download(ctx context.Context, bucket, object, destPath string) error {
	gcsReader, err := s.Open(ctx, bucket, object)
	if err != nil {
		return err
	}
	defer gcsReader.Close()
	localFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file at %s: %w", destPath, err)
	}
	defer localFile.Close()
	if _, err := io.Copy(localFile, gcsReader); err != nil {
		return fmt.Errorf("failed to copy GCS object to local file: %w", err)
	}
	return nil
}

// UploadFile uploads a local file, retrying with exponential backoff.
func (s *StorageObjects) UploadFile(ctx context.Context, bucket, object, localPath string, attrs ObjectAttrs) error {
	err := retryWithBackoff(ctx, object, s.maxRetries, s.firstBackoff, func() error {
		return s.uploadOnce(ctx, bucket, object, localPath, attrs)
	})
	if err != nil {
		return fmt.Errorf("upload for %s failed after all retries: %w", object, err)
	}
	return nil
}

// retryWithBackoff calls fn up to attempts times, doubling the wait between
// attempts. There is no wait after the last attempt.
func retryWithBackoff(ctx context.Context, object string, attempts int, backoff time.Duration, fn func() error) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if i == attempts-1 {
			break
		}
		slog.Warn(
			"Upload failed, will retry.",
			"gcsObject", object,
			"attempt", i+1,
			"maxRetries", attempts,
			"backoff", backoff.String(),
			"error", err,
		)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			slog.Error("Context cancelled during backoff. Aborting retries.", "gcsObject", object, "error", ctx.Err())
			return ctx.Err()
		}
	}
	slog.Error("Upload failed after all retries.", "gcsObject", object, "error", lastErr)
	return lastErr
}

func (s *StorageObjects) uploadOnce(ctx context.Context, bucket, object, localPath string, attrs ObjectAttrs) error {
	localFileReader, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("could not open local file %s: %w", localPath, err)
	}
	defer localFileReader.Close()

	writeCtx, cancel := context.WithTimeout(ctx, time.Second*50)
	defer cancel()

	gcsWriter := s.client.Bucket(bucket).Object(object).NewWriter(writeCtx)
	gcsWriter.ContentType = attrs.ContentType
	gcsWriter.CacheControl = attrs.CacheControl
	gcsWriter.Metadata = attrs.Metadata

	if _, err := io.Copy(gcsWriter, localFileReader); err != nil {
		_ = gcsWriter.Close()
		return fmt.Errorf("io.Copy to GCS failed: %w", err)
	}
	if err := gcsWriter.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer (finalize upload): %w", err)
	}
	return nil
}

// Delete removes one object. A missing object is not an error.
func (s *StorageObjects) Delete(ctx context.Context, bucket, object string) error {
	err := s.client.Bucket(bucket).Object(object).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete gs://%s/%s: %w", bucket, object, err)
	}
	return nil
}

// DeletePrefix removes every object under prefix and returns how many were deleted.
func (s *StorageObjects) DeletePrefix(ctx context.Context, bucket, prefix string) (int, error) {
	if prefix == "" {
		return 0, errors.New("refusing to delete an empty prefix")
	}
	bkt := s.client.Bucket(bucket)
	it := bkt.Objects(ctx, &storage.Query{Prefix: prefix})

	deleted := 0
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return deleted, fmt.Errorf("failed to list objects under gs://%s/%s: %w", bucket, prefix, err)
		}
		if err := s.Delete(ctx, bucket, attrs.Name); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// WriteIfAbsent writes content only if the object does not exist yet.
// It reports whether the object was written.
func (s *StorageObjects) WriteIfAbsent(ctx context.Context, bucket, object string, content []byte, contentType string) (bool, error) {
	return SaveToGCSAtomically(ctx, s.client.Bucket(bucket), object, content, contentType)
}

// SaveToGCSAtomically writes content to a GCS object only if it doesn't already exist.
// A failed precondition means another delivery already wrote it and is not an error.
func SaveToGCSAtomically(ctx context.Context, bucket *storage.BucketHandle, objectName string, content []byte, contentType string) (bool, error) {
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, bytes.NewReader(content)); err != nil {
		_ = writer.Close()
		if isPreconditionFailed(err) {
			slog.Info("Object already exists, skipping write.", "gcsObject", objectName)
			return false, nil
		}
		return false, fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			slog.Info("Object already exists, skipping write.", "gcsObject", objectName)
			return false, nil
		}
		return false, fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return true, nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}
