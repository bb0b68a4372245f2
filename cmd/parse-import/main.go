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
	parserInstance *services.ImportParserFunction
	once           sync.Once
	initErr        error
)

func init() {
	gcp.SetupLogging()

	// Subscribed to the parse topic (IMPORT_PARSE_TOPIC).
	functions.CloudEvent("OnPubParsePublicUserImport", onPubParsePublicUserImport)
}

// main is required by the Go Functions Framework.
func main() {}

func onPubParsePublicUserImport(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		parserInstance, initErr = services.NewImportParser(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var req models.ImportRequest
	msgID, err := gcp.DecodePubSubEvent(e, &req)
	if err != nil {
		// A malformed message will never parse; acknowledge it instead of looping.
		slog.Error("Dropping undecodable import request", "error", err, "messageId", msgID)
		return nil
	}

	_, err = parserInstance.Process(ctx, req)
	return err
}
