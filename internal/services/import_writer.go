package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lllllllleong/backofficefunctions/internal/config"
	"github.com/Lllllllleong/backofficefunctions/internal/gcp"
	"github.com/Lllllllleong/backofficefunctions/internal/models"
)

// ImportWriterFunction merges imported subscribers into the public project's Firestore.
type ImportWriterFunction struct {
	store DocumentStore
	now   func() time.Time
}

func NewImportWriter(ctx context.Context) (*ImportWriterFunction, error) {
	cfg, err := config.Load(&config.ProjectConfig{})
	if err != nil {
		return nil, err
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.PublicProjectID)
	if err != nil {
		return nil, err
	}
	return newImportWriter(gcp.NewFirestoreStore(firestoreClient)), nil
}

func newImportWriter(store DocumentStore) *ImportWriterFunction {
	return &ImportWriterFunction{store: store, now: time.Now}
}

// Process merges every user of batch into publicUsers/{email} and returns how many were written.
func (f *ImportWriterFunction) Process(ctx context.Context, batch models.ImportBatch) (int, error) {
	logCtx := slog.With("importId", batch.ImportID, "batchNumber", batch.BatchNumber, "totalBatches", batch.TotalBatches)
	now := f.now().UTC()

	bw := NewBatchWriter(f.store)
	for _, u := range batch.Users {
		email := models.NormalizeEmail(u.Email)
		if !models.ValidDocID(email) {
			if email != "" {
				logCtx.Warn("Skipping subscriber whose email is not a valid document id", "email", email)
			}
			continue
		}
		created := now
		if u.CreatedDate != nil {
			created = *u.CreatedDate
		}
		data := map[string]any{
			"id":             email,
			"email":          email,
			"optInConfirmed": true,
			"importSource":   batch.ImportID,
			"createdDate":    created,
			"modifiedDate":   now,
		}
		// Blank names must not erase names already on file.
		if u.FirstName != "" {
			data["firstName"] = u.FirstName
		}
		if u.LastName != "" {
			data["lastName"] = u.LastName
		}
		w := gcp.Write{Path: models.DocPath(models.PublicUsersCollection, email), Data: data, Merge: true}
		if err := bw.Add(ctx, w); err != nil {
			logCtx.Error("Failed to commit subscriber batch", "error", err, "writtenSoFar", bw.Writes)
			return bw.Writes, fmt.Errorf("import batch %d: %w", batch.BatchNumber, err)
		}
	}
	if err := bw.Flush(ctx); err != nil {
		logCtx.Error("Failed to commit subscriber batch", "error", err, "writtenSoFar", bw.Writes)
		return bw.Writes, fmt.Errorf("import batch %d: %w", batch.BatchNumber, err)
	}

	logCtx.Info("Subscribers imported.", "written", bw.Writes, "commits", bw.Commits)
	return bw.Writes, nil
}
