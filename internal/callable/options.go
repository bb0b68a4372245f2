package callable

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/backofficefunctions/internal/config"
	"github.com/Lllllllleong/backofficefunctions/internal/gcp"
)

// NewOptions builds Options backed by the Firebase Admin SDK of the admin project.
func NewOptions(ctx context.Context) (Options, error) {
	project, err := config.Load(&config.ProjectConfig{})
	if err != nil {
		return Options{}, err
	}
	cfg, err := config.Load(&config.CallableConfig{})
	if err != nil {
		return Options{}, err
	}

	app, err := gcp.NewFirebaseApp(ctx, project.ProjectID)
	if err != nil {
		return Options{}, err
	}
	appCheckClient, err := app.AppCheck(ctx)
	if err != nil {
		return Options{}, fmt.Errorf("failed to create app check client: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return Options{}, fmt.Errorf("failed to create auth client: %w", err)
	}

	return Options{
		AppCheck:         appCheckClient,
		Auth:             authClient,
		AppCheckRequired: cfg.AppCheckRequired,
		AllowedOrigins:   cfg.AllowedOrigins,
	}, nil
}
