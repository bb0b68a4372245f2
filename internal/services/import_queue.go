package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/backofficefunctions/internal/callable"
	"github.com/Lllllllleong/backofficefunctions/internal/config"
	"github.com/Lllllllleong/backofficefunctions/internal/gcp"
	"github.com/Lllllllleong/backofficefunctions/internal/models"
	"github.com/google/uuid"
)

// ImportQueueFunction hands uploaded import files to the parser over Pub/Sub.
type ImportQueueFunction struct {
	publisher Publisher
	config    config.ImportConfig
	newID     func() string
}

func NewImportQueue(ctx context.Context) (*ImportQueueFunction, error) {
	cfg, err := config.Load(&config.ImportConfig{})
	if err != nil {
		return nil, err
	}
	publisher, err := gcp.NewPublisher(ctx, cfg.ProjectID)
	if err != nil {
		return nil, err
	}
	return newImportQueue(*cfg, publisher), nil
}

func newImportQueue(cfg config.ImportConfig, publisher Publisher) *ImportQueueFunction {
	return &ImportQueueFunction{publisher: publisher, config: cfg, newID: uuid.NewString}
}

// HandleUpload queues a file finalized under the imports prefix. Other objects are ignored.
func (f *ImportQueueFunction) HandleUpload(ctx context.Context, e gcp.StorageObjectData) (*models.ImportRequest, error) {
	if !strings.HasPrefix(e.Name, models.PublicUserImportsPrefix) || strings.HasSuffix(e.Name, "/") {
		slog.Info("Ignoring object outside the import folder.", "gcsObject", e.Name)
		return nil, nil
	}
	req := models.ImportRequest{
		ImportID:    f.newID(),
		Bucket:      e.Bucket,
		FilePath:    e.Name,
		ContentType: e.ContentType,
		RequestedBy: e.Metadata["uploadedBy"],
	}
	if _, err := f.publish(ctx, req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Enqueue queues an already uploaded file on behalf of a callable client.
func (f *ImportQueueFunction) Enqueue(ctx context.Context, in *models.ProcessImportRequest, requestedBy string) (*models.ProcessImportResponse, error) {
	filePath := strings.TrimPrefix(strings.TrimSpace(in.FilePath), "/")
	if !strings.HasPrefix(filePath, models.PublicUserImportsPrefix) || filePath == models.PublicUserImportsPrefix {
		return nil, callable.InvalidArgument("filePath must point to a file under " + models.PublicUserImportsPrefix)
	}
	if f.config.ImportBucket == "" {
		return nil, callable.NewError(callable.CodeFailedPrecondition, "import bucket is not configured")
	}

	req := models.ImportRequest{
		ImportID:    f.newID(),
		Bucket:      f.config.ImportBucket,
		FilePath:    filePath,
		RequestedBy: requestedBy,
	}
	msgID, err := f.publish(ctx, req)
	if err != nil {
		return nil, err
	}
	return &models.ProcessImportResponse{ImportID: req.ImportID, MessageID: msgID}, nil
}

func (f *ImportQueueFunction) publish(ctx context.Context, req models.ImportRequest) (string, error) {
	logCtx := slog.With("importId", req.ImportID, "gcsObject", req.FilePath)
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal import request: %w", err)
	}
	msgID, err := f.publisher.Publish(ctx, f.config.ParseTopic, payload, map[string]string{"importId": req.ImportID})
	if err != nil {
		logCtx.Error("Failed to publish import request", "error", err, "topic", f.config.ParseTopic)
		return "", err
	}
	logCtx.Info("Import request published.", "messageId", msgID, "topic", f.config.ParseTopic)
	return msgID, nil
}
