package gcp

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
)

// NewFirebaseApp initializes the Admin SDK for projectID using ambient credentials.
func NewFirebaseApp(ctx context.Context, projectID string) (*firebase.App, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firebase app")
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	return app, nil
}
