package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Lllllllleong/backofficefunctions/internal/config"
	"github.com/Lllllllleong/backofficefunctions/internal/gcp"
	"github.com/Lllllllleong/backofficefunctions/internal/models"
)

// AccessTesterFunction proves the admin functions can read the public project.
type AccessTesterFunction struct {
	store     DocumentStore
	projectID string
	now       func() time.Time
}

func NewAccessTester(ctx context.Context) (*AccessTesterFunction, error) {
	cfg, err := config.Load(&config.ProjectConfig{})
	if err != nil {
		return nil, err
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.PublicProjectID)
	if err != nil {
		return nil, err
	}
	return &AccessTesterFunction{store: gcp.NewFirestoreStore(firestoreClient), projectID: cfg.PublicProjectID, now: time.Now}, nil
}

func (f *AccessTesterFunction) Process(ctx context.Context, appID, uid string) (*models.TestAccessResponse, error) {
	docs, err := f.store.Page(ctx, models.PublicUsersCollection, "", 1)
	if err != nil {
		slog.Error("Public project read failed", "error", err, "projectId", f.projectID)
		return nil, err
	}
	return &models.TestAccessResponse{
		Message:     "Access to public project confirmed",
		ProjectID:   f.projectID,
		AppID:       appID,
		UID:         uid,
		SampleCount: len(docs),
		ServerTime:  f.now().UTC(),
	}, nil
}
