package main

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/backofficefunctions/internal/callable"
	"github.com/Lllllllleong/backofficefunctions/internal/gcp"
	"github.com/Lllllllleong/backofficefunctions/internal/services"
)

var (
	handler http.HandlerFunc
	once    sync.Once
	initErr error
)

func init() {
	gcp.SetupLogging()
	functions.HTTP("OnCallBackupPublicUserCollection", onCallBackupPublicUserCollection)
}

// main is required by the Go Functions Framework.
func main() {}

func setup(ctx context.Context) (http.HandlerFunc, error) {
	backup, err := services.NewPublicUserBackup(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := callable.NewOptions(ctx)
	if err != nil {
		return nil, err
	}
	// The request carries no parameters; whatever data the client sends is ignored.
	return callable.Handler("OnCallBackupPublicUserCollection", opts, func(ctx context.Context, _ *callable.Request) (any, error) {
		return backup.Process(ctx)
	}), nil
}

func onCallBackupPublicUserCollection(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		handler, initErr = setup(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}
	handler(w, r)
}
