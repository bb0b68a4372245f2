package gcp

import (
	"encoding/json"
	"testing"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(t *testing.T, subject string, data any) cloudevents.Event {
	t.Helper()
	e := cloudevents.NewEvent()
	e.SetID("evt-1")
	e.SetSource("//test")
	e.SetType("test.event")
	if subject != "" {
		e.SetSubject(subject)
	}
	require.NoError(t, e.SetData(cloudevents.ApplicationJSON, data))
	return e
}

func TestDecodeStorageEventMetagenerationAsString(t *testing.T) {
	e := newEvent(t, "", map[string]any{
		"bucket":         "images",
		"name":           "posts/p1/hero/a.jpg",
		"contentType":    "image/jpeg",
		"metageneration": "2",
		"metadata":       map[string]string{"resizedImage": "true"},
	})

	data, err := DecodeStorageEvent(e)
	require.NoError(t, err)
	assert.Equal(t, "images", data.Bucket)
	assert.EqualValues(t, 2, data.Metageneration)
	assert.Equal(t, "true", data.Metadata["resizedImage"])
}

func TestDecodeStorageEventMetagenerationAsNumber(t *testing.T) {
	e := newEvent(t, "", map[string]any{"bucket": "b", "name": "n", "metageneration": 3})

	data, err := DecodeStorageEvent(e)
	require.NoError(t, err)
	assert.EqualValues(t, 3, data.Metageneration)
}

func TestDecodeStorageEventRequiresName(t *testing.T) {
	e := newEvent(t, "", map[string]any{"bucket": "b"})

	_, err := DecodeStorageEvent(e)
	assert.Error(t, err)
}

func TestDecodePubSubEvent(t *testing.T) {
	body, err := json.Marshal(map[string]string{"importId": "imp-1"})
	require.NoError(t, err)
	e := newEvent(t, "", map[string]any{
		"message": map[string]any{
			"data":      body, // []byte marshals to base64 like the real envelope
			"messageId": "m-42",
		},
		"subscription": "projects/p/subscriptions/s",
	})

	var dst struct {
		ImportID string `json:"importId"`
	}
	id, err := DecodePubSubEvent(e, &dst)
	require.NoError(t, err)
	assert.Equal(t, "m-42", id)
	assert.Equal(t, "imp-1", dst.ImportID)
}

func TestDecodePubSubEventWithoutData(t *testing.T) {
	e := newEvent(t, "", map[string]any{"message": map[string]any{"messageId": "m-1"}})

	var dst map[string]any
	_, err := DecodePubSubEvent(e, &dst)
	assert.Error(t, err)
}

func TestDocumentIDFromSubject(t *testing.T) {
	e := newEvent(t, "documents/adminUsers/uid-1", map[string]any{})

	id, err := DocumentID(e)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", id)
}

func TestDocumentPathFromLegacyData(t *testing.T) {
	e := newEvent(t, "", map[string]any{
		"oldValue": map[string]any{
			"name": "projects/p/databases/(default)/documents/products/prod-9",
		},
	})

	p, err := DocumentPath(e)
	require.NoError(t, err)
	assert.Equal(t, "products/prod-9", p)
}

func TestDecodeAuthEvent(t *testing.T) {
	e := newEvent(t, "", map[string]any{
		"uid":      "uid-7",
		"email":    "admin@example.com",
		"metadata": map[string]any{"createdAt": "2024-03-01T10:00:00Z"},
	})

	data, err := DecodeAuthEvent(e)
	require.NoError(t, err)
	assert.Equal(t, "uid-7", data.UID)
	assert.Equal(t, 2024, data.Metadata.CreatedAt.Year())
}
