package main

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/backofficefunctions/internal/callable"
	"github.com/Lllllllleong/backofficefunctions/internal/gcp"
	"github.com/Lllllllleong/backofficefunctions/internal/models"
	"github.com/Lllllllleong/backofficefunctions/internal/services"
)

var (
	handler http.HandlerFunc
	once    sync.Once
	initErr error
)

func init() {
	gcp.SetupLogging()
	functions.HTTP("OnCallProcessPublicUserImportData", onCallProcessPublicUserImportData)
}

// main is required by the Go Functions Framework.
func main() {}

func setup(ctx context.Context) (http.HandlerFunc, error) {
	queue, err := services.NewImportQueue(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := callable.NewOptions(ctx)
	if err != nil {
		return nil, err
	}
	return callable.Handler("OnCallProcessPublicUserImportData", opts, func(ctx context.Context, req *callable.Request) (any, error) {
		var in models.ProcessImportRequest
		if err := req.Decode(&in); err != nil {
			return nil, err
		}
		return queue.Enqueue(ctx, &in, req.UID())
	}), nil
}

func onCallProcessPublicUserImportData(w http.ResponseWriter, r *http.Request) {
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
