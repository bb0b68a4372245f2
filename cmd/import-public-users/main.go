package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/backofficefunctions/internal/gcp"
	"github.com/Lllllllleong/backofficefunctions/internal/models"
	"github.com/Lllllllleong/backofficefunctions/internal/services"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

var (
	writerInstance *services.ImportWriterFunction
	once           sync.Once
	initErr        error
)

func init() {
	gcp.SetupLogging()
	functions.CloudEvent("OnPubImportPublicUsers", onPubImportPublicUsers)
}

// main is required by the Go Functions Framework.
func main() {}

// onPubImportPublicUsers writes one published batch of subscribers.
// Returning an error lets Pub/Sub redeliver; the merge writes are idempotent.
func onPubImportPublicUsers(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		writerInstance, initErr = services.NewImportWriter(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var batch models.ImportBatch
	msgID, err := gcp.DecodePubSubEvent(e, &batch)
	if err != nil {
		slog.Error("Dropping undecodable import batch", "error", err, "messageId", msgID)
		return nil
	}

	_, err = writerInstance.Process(ctx, batch)
	return err
}
