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
	queueInstance *services.ImportQueueFunction
	once          sync.Once
	initErr       error
)

func init() {
	gcp.SetupLogging()
	functions.CloudEvent("QueueImportUpload", queueImportUpload)
}

// main is required by the Go Functions Framework.
func main() {}

// queueImportUpload publishes a parse request for every file finalized under the import folder.
func queueImportUpload(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		queueInstance, initErr = services.NewImportQueue(context.Background())
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
	_, err = queueInstance.HandleUpload(ctx, data)
	return err
}
