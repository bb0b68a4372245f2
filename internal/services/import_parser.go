package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/backofficefunctions/internal/config"
	"github.com/Lllllllleong/backofficefunctions/internal/gcp"
	"github.com/Lllllllleong/backofficefunctions/internal/models"
)

// ImportParserFunction turns an uploaded subscriber sheet into write batches.
type ImportParserFunction struct {
	objects   ObjectStore
	publisher Publisher
	config    config.ImportConfig
	now       func() time.Time
}

func NewImportParser(ctx context.Context) (*ImportParserFunction, error) {
	cfg, err := config.Load(&config.ImportConfig{})
	if err != nil {
		return nil, err
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	publisher, err := gcp.NewPublisher(ctx, cfg.ProjectID)
	if err != nil {
		return nil, err
	}
	return newImportParser(*cfg, gcp.NewStorageObjects(storageClient), publisher), nil
}

func newImportParser(cfg config.ImportConfig, objects ObjectStore, publisher Publisher) *ImportParserFunction {
	return &ImportParserFunction{objects: objects, publisher: publisher, config: cfg, now: time.Now}
}

// Process parses the file named by req and publishes the accepted users.
// Unusable files are logged and produce a nil report with no error so Pub/Sub
// does not redeliver them.
func (f *ImportParserFunction) Process(ctx context.Context, req models.ImportRequest) (*models.ImportReport, error) {
	logCtx := slog.With("importId", req.ImportID, "gcsBucket", req.Bucket, "gcsObject", req.FilePath)
	logCtx.Info("Parsing import file.")

	if !isSupportedImportFile(req.FilePath) {
		logCtx.Error("Invalid import file type; expected .xlsx or .csv", "contentType", req.ContentType)
		return nil, nil
	}

	tempDir, err := os.MkdirTemp("", "import-parser-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	localPath := filepath.Join(tempDir, filepath.Base(req.FilePath))
	if err := f.objects.Download(ctx, req.Bucket, req.FilePath, localPath); err != nil {
		logCtx.Error("Failed to download import file", "error", err)
		return nil, err
	}

	rows, err := readSheetRows(localPath)
	if err != nil {
		logCtx.Error("Failed to read import file", "error", err)
		return nil, nil
	}
	users, stats, err := parseSubscriberRows(rows)
	if errors.Is(err, ErrMissingHeaders) {
		logCtx.Error("Import file is missing required headers", "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	batches := chunkUsers(users, f.config.MessageBatchSize)
	for i, chunk := range batches {
		batch := models.ImportBatch{
			ImportID:     req.ImportID,
			BatchNumber:  i + 1,
			TotalBatches: len(batches),
			Users:        chunk,
		}
		payload, err := json.Marshal(batch)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal import batch: %w", err)
		}
		attrs := map[string]string{"importId": req.ImportID, "batchNumber": strconv.Itoa(i + 1)}
		if _, err := f.publisher.Publish(ctx, f.config.WriteTopic, payload, attrs); err != nil {
			logCtx.Error("Failed to publish import batch", "error", err, "batchNumber", i+1)
			return nil, err
		}
	}

	report := &models.ImportReport{
		ImportID:   req.ImportID,
		FilePath:   req.FilePath,
		TotalRows:  stats.TotalRows,
		Accepted:   len(users),
		OptedOut:   stats.OptedOut,
		Invalid:    stats.Invalid,
		Duplicates: stats.Duplicates,
		Batches:    len(batches),
		ParsedAt:   f.now().UTC(),
	}
	if err := f.saveReport(ctx, req.Bucket, report); err != nil {
		// The batches are already out; a missing report is not worth a redelivery.
		logCtx.Error("Failed to save import report", "error", err)
	}

	logCtx.Info("Import file parsed.",
		"totalRows", report.TotalRows,
		"accepted", report.Accepted,
		"optedOut", report.OptedOut,
		"invalid", report.Invalid,
		"duplicates", report.Duplicates,
		"batches", report.Batches,
	)
	return report, nil
}

func (f *ImportParserFunction) saveReport(ctx context.Context, bucket string, report *models.ImportReport) error {
	content, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	_, err = f.objects.WriteIfAbsent(ctx, bucket, models.ImportReportPath(report.ImportID), content, "application/json")
	return err
}
