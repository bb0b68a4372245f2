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
	resizerInstance *services.ImageResizerFunction
	once            sync.Once
	initErr         error
)

func init() {
	gcp.SetupLogging()

	// Triggered by google.cloud.storage.object.v1.finalized on the images bucket.
	functions.CloudEvent("ResizeImages", resizeImages)
}

// main is required by the Go Functions Framework.
func main() {}

func resizeImages(ctx context.Context, e cloudevents.Event) error {
	// Use sync.Once for one-time initialization of clients.
	once.Do(func() {
		resizerInstance, initErr = services.NewImageResizer(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	data, err := gcp.DecodeStorageEvent(e)
	if err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return err
	}

	// Errors are already logged with context inside Process.
	_, err = resizerInstance.Process(ctx, data)
	return err
}
