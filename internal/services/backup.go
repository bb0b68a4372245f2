package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lllllllleong/backofficefunctions/internal/config"
	"github.com/Lllllllleong/backofficefunctions/internal/gcp"
	"github.com/Lllllllleong/backofficefunctions/internal/models"
	"github.com/google/uuid"
)

// PublicUserBackupFunction copies the subscriber collection into a dated backup.
type PublicUserBackupFunction struct {
	store    DocumentStore
	pageSize int
	newID    func() string
	now      func() time.Time
}

func NewPublicUserBackup(ctx context.Context) (*PublicUserBackupFunction, error) {
	cfg, err := config.Load(&config.ProjectConfig{})
	if err != nil {
		return nil, err
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.PublicProjectID)
	if err != nil {
		return nil, err
	}
	return newPublicUserBackup(gcp.NewFirestoreStore(firestoreClient)), nil
}

func newPublicUserBackup(store DocumentStore) *PublicUserBackupFunction {
	f := &PublicUserBackupFunction{store: store, pageSize: MaxBatchWrites, now: time.Now}
	f.newID = func() string {
		return f.now().UTC().Format("20060102T150405Z") + "-" + uuid.NewString()[:8]
	}
	return f
}

// Process copies publicUsers into backups/{backupId}/publicUsers and records a manifest.
func (f *PublicUserBackupFunction) Process(ctx context.Context) (*models.BackupResponse, error) {
	backupID := f.newID()
	logCtx := slog.With("backupId", backupID)
	logCtx.Info("Starting public user backup.")

	target := models.DocPath(models.BackupsCollection, backupID) + "/" + models.PublicUsersCollection
	bw := NewBatchWriter(f.store)

	after := ""
	for {
		docs, err := f.store.Page(ctx, models.PublicUsersCollection, after, f.pageSize)
		if err != nil {
			logCtx.Error("Failed to read subscriber page", "error", err, "after", after)
			return nil, err
		}
		for _, d := range docs {
			if err := bw.Add(ctx, gcp.Write{Path: target + "/" + d.ID, Data: d.Data}); err != nil {
				logCtx.Error("Failed to commit backup batch", "error", err, "copiedSoFar", bw.Writes)
				return nil, err
			}
		}
		if len(docs) < f.pageSize {
			break
		}
		after = docs[len(docs)-1].ID
	}
	if err := bw.Flush(ctx); err != nil {
		logCtx.Error("Failed to commit backup batch", "error", err, "copiedSoFar", bw.Writes)
		return nil, err
	}

	manifest := models.BackupManifest{
		ID:               backupID,
		SourceCollection: models.PublicUsersCollection,
		DocumentCount:    bw.Writes,
		BatchCount:       bw.Commits,
		CreatedDate:      f.now().UTC(),
	}
	if err := f.store.Set(ctx, models.DocPath(models.BackupsCollection, backupID), manifest); err != nil {
		logCtx.Error("Failed to write backup manifest", "error", err)
		return nil, fmt.Errorf("backup %s copied but manifest failed: %w", backupID, err)
	}

	logCtx.Info("Public user backup complete.", "documentCount", bw.Writes, "batchCount", bw.Commits)
	return &models.BackupResponse{BackupID: backupID, DocumentCount: bw.Writes, BatchCount: bw.Commits}, nil
}
