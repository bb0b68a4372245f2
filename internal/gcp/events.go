package gcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// StorageObjectData is the payload of a Cloud Storage object event.
type StorageObjectData struct {
	Bucket         string            `json:"bucket"`
	Name           string            `json:"name"`
	ContentType    string            `json:"contentType"`
	Metageneration Int64String       `json:"metageneration"`
	Metadata       map[string]string `json:"metadata"`
}

// Int64String decodes integers that the Storage JSON API sends as strings.
type Int64String int64

func (n *Int64String) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", s, err)
	}
	*n = Int64String(v)
	return nil
}

// DecodeStorageEvent unmarshals the event's data payload into a StorageObjectData.
func DecodeStorageEvent(e cloudevents.Event) (StorageObjectData, error) {
	var data StorageObjectData
	if err := json.Unmarshal(e.Data(), &data); err != nil {
		return data, fmt.Errorf("json.Unmarshal: %w", err)
	}
	if data.Bucket == "" || data.Name == "" {
		return data, errors.New("storage event is missing bucket or object name")
	}
	return data, nil
}

// pubSubEnvelope is the CloudEvent data of a google.cloud.pubsub.topic.v1.messagePublished event.
type pubSubEnvelope struct {
	Message struct {
		Data       []byte            `json:"data"`
		Attributes map[string]string `json:"attributes"`
		MessageID  string            `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// DecodePubSubEvent unmarshals the JSON message body carried by a Pub/Sub event
// into dst and returns the message id.
func DecodePubSubEvent(e cloudevents.Event, dst any) (string, error) {
	var env pubSubEnvelope
	if err := json.Unmarshal(e.Data(), &env); err != nil {
		return "", fmt.Errorf("json.Unmarshal envelope: %w", err)
	}
	if len(env.Message.Data) == 0 {
		return env.Message.MessageID, errors.New("pub/sub message has no data")
	}
	if err := json.Unmarshal(env.Message.Data, dst); err != nil {
		return env.Message.MessageID, fmt.Errorf("json.Unmarshal message: %w", err)
	}
	return env.Message.MessageID, nil
}

// firestoreEventData is the JSON form of a legacy Firestore document event.
type firestoreEventData struct {
	OldValue struct {
		Name string `json:"name"`
	} `json:"oldValue"`
	Value struct {
		Name string `json:"name"`
	} `json:"value"`
}

// DocumentPath returns the path relative to the database root (e.g. "adminUsers/abc")
// of the document a Firestore event refers to.
func DocumentPath(e cloudevents.Event) (string, error) {
	if subject := e.Subject(); strings.HasPrefix(subject, "documents/") {
		return strings.TrimPrefix(subject, "documents/"), nil
	}

	var data firestoreEventData
	if err := json.Unmarshal(e.Data(), &data); err != nil {
		return "", fmt.Errorf("event has no document subject and data is not JSON: %w", err)
	}
	name := data.OldValue.Name
	if name == "" {
		name = data.Value.Name
	}
	if _, rel, ok := strings.Cut(name, "/documents/"); ok && rel != "" {
		return rel, nil
	}
	return "", errors.New("could not determine document path from event")
}

// DocumentID returns the last path segment of the event's document.
func DocumentID(e cloudevents.Event) (string, error) {
	p, err := DocumentPath(e)
	if err != nil {
		return "", err
	}
	return p[strings.LastIndex(p, "/")+1:], nil
}

// AuthUserData is the payload of a Firebase Auth user event.
type AuthUserData struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Metadata    struct {
		CreatedAt time.Time `json:"createdAt"`
	} `json:"metadata"`
}

func DecodeAuthEvent(e cloudevents.Event) (AuthUserData, error) {
	var data AuthUserData
	if err := json.Unmarshal(e.Data(), &data); err != nil {
		return data, fmt.Errorf("json.Unmarshal: %w", err)
	}
	if data.UID == "" {
		return data, errors.New("auth event is missing uid")
	}
	return data, nil
}
