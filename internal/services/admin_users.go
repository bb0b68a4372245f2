package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/Lllllllleong/backofficefunctions/internal/config"
	"github.com/Lllllllleong/backofficefunctions/internal/gcp"
	"github.com/Lllllllleong/backofficefunctions/internal/models"
)

// AdminUserSyncFunction keeps adminUsers documents and Auth accounts in step.
type AdminUserSyncFunction struct {
	store          DocumentStore
	users          UserDeleter
	isUserNotFound func(error) bool
	now            func() time.Time
}

func NewAdminUserSync(ctx context.Context) (*AdminUserSyncFunction, error) {
	cfg, err := config.Load(&config.ProjectConfig{})
	if err != nil {
		return nil, err
	}
	app, err := gcp.NewFirebaseApp(ctx, cfg.ProjectID)
	if err != nil {
		return nil, err
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth client: %w", err)
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, err
	}
	return newAdminUserSync(gcp.NewFirestoreStore(firestoreClient), authClient), nil
}

func newAdminUserSync(store DocumentStore, users UserDeleter) *AdminUserSyncFunction {
	return &AdminUserSyncFunction{
		store:          store,
		users:          users,
		isUserNotFound: auth.IsUserNotFound,
		now:            time.Now,
	}
}

// HandleUserCreated creates adminUsers/{uid} for a new Auth account. An existing
// profile is left untouched.
func (f *AdminUserSyncFunction) HandleUserCreated(ctx context.Context, u gcp.AuthUserData) error {
	logCtx := slog.With("uid", u.UID)

	created := u.Metadata.CreatedAt
	if created.IsZero() {
		created = f.now()
	}
	user := models.AdminUser{
		ID:           u.UID,
		Email:        models.NormalizeEmail(u.Email),
		DisplayName:  u.DisplayName,
		CreatedDate:  created,
		LastModified: f.now(),
	}

	err := f.store.Create(ctx, models.DocPath(models.AdminUsersCollection, u.UID), user)
	if errors.Is(err, gcp.ErrAlreadyExists) {
		logCtx.Info("Admin user document already exists.")
		return nil
	}
	if err != nil {
		logCtx.Error("Failed to create admin user document", "error", err)
		return err
	}
	logCtx.Info("Admin user document created.")
	return nil
}

// HandleAdminUserDeleted removes the Auth account behind a deleted adminUsers document.
func (f *AdminUserSyncFunction) HandleAdminUserDeleted(ctx context.Context, uid string) error {
	logCtx := slog.With("uid", uid)
	if uid == "" {
		return errors.New("admin user id is empty")
	}

	if err := f.users.DeleteUser(ctx, uid); err != nil {
		if f.isUserNotFound(err) {
			logCtx.Warn("Auth user already deleted.")
			return nil
		}
		logCtx.Error("Failed to delete auth user", "error", err)
		return fmt.Errorf("failed to delete auth user %s: %w", uid, err)
	}
	logCtx.Info("Auth user deleted.")
	return nil
}
