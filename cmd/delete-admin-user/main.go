package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/backofficefunctions/internal/gcp"
	"github.com/Lllllllleong/backofficefunctions/internal/services"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

var (
	syncInstance *services.AdminUserSyncFunction
	once         sync.Once
	initErr      error
)

func init() {
	gcp.SetupLogging()

	// Triggered by google.cloud.firestore.document.v1.deleted on adminUsers/{userId}.
	functions.CloudEvent("OnDeleteAdminUser", onDeleteAdminUser)
}

// main is required by the Go Functions Framework.
func main() {}

func onDeleteAdminUser(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		syncInstance, initErr = services.NewAdminUserSync(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	uid, err := gcp.DocumentID(e)
	if err != nil {
		slog.Error("Could not resolve deleted document", "error", err, "subject", e.Subject())
		return err
	}
	return syncInstance.HandleAdminUserDeleted(ctx, uid)
}
