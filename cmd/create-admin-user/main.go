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

	// Triggered by providers/firebase.auth/eventTypes/user.create.
	functions.CloudEvent("OnCreateAuthUser", onCreateAuthUser)
}

// main is required by the Go Functions Framework.
func main() {}

func onCreateAuthUser(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		syncInstance, initErr = services.NewAdminUserSync(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	user, err := gcp.DecodeAuthEvent(e)
	if err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return err
	}
	return syncInstance.HandleUserCreated(ctx, user)
}
