package services

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/backofficefunctions/internal/gcp"
)

// DocumentStore is the Firestore surface the functions use. *gcp.FirestoreStore implements it.
type DocumentStore interface {
	Get(ctx context.Context, path string, dst any) error
	Create(ctx context.Context, path string, data any) error
	Set(ctx context.Context, path string, data any) error
	Update(ctx context.Context, path string, updates []firestore.Update) error
	Delete(ctx context.Context, path string) error
	Page(ctx context.Context, collection, afterID string, limit int) ([]gcp.Document, error)
	Commit(ctx context.Context, writes []gcp.Write) error
}

// ObjectStore is the Cloud Storage surface. *gcp.StorageObjects implements it.
type ObjectStore interface {
	Download(ctx context.Context, bucket, object, destPath string) error
	UploadFile(ctx context.Context, bucket, object, localPath string, attrs gcp.ObjectAttrs) error
	Delete(ctx context.Context, bucket, object string) error
	DeletePrefix(ctx context.Context, bucket, prefix string) (int, error)
	WriteIfAbsent(ctx context.Context, bucket, object string, content []byte, contentType string) (bool, error)
}

// Publisher is satisfied by *gcp.Publisher.
type Publisher interface {
	Publish(ctx context.Context, topicID string, data []byte, attrs map[string]string) (string, error)
}

// UserDeleter is satisfied by *auth.Client.
type UserDeleter interface {
	DeleteUser(ctx context.Context, uid string) error
}

var (
	_ DocumentStore = (*gcp.FirestoreStore)(nil)
	_ ObjectStore   = (*gcp.StorageObjects)(nil)
	_ Publisher     = (*gcp.Publisher)(nil)
)
