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
	cleanupInstance *services.ProductCleanupFunction
	once            sync.Once
	initErr         error
)

func init() {
	gcp.SetupLogging()

	// Triggered by google.cloud.firestore.document.v1.deleted on products/{productId}.
	functions.CloudEvent("OnDeleteProduct", onDeleteProduct)
}

// main is required by the Go Functions Framework.
func main() {}

func onDeleteProduct(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		cleanupInstance, initErr = services.NewProductCleanup(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	productID, err := gcp.DocumentID(e)
	if err != nil {
		slog.Error("Could not resolve deleted document", "error", err, "subject", e.Subject())
		return err
	}
	_, err = cleanupInstance.Process(ctx, productID)
	return err
}
