package gcp

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
// It centralizes client creation for all services.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// Write is a single operation inside a batched commit.
type Write struct {
	Path   string
	Data   any
	Merge  bool // Data must be a map[string]any when set
	Delete bool
}

// Document is a raw snapshot returned by paged reads.
type Document struct {
	ID   string
	Data map[string]any
}

// FirestoreStore addresses documents by slash-separated path.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) doc(path string) (*firestore.DocumentRef, error) {
	ref := s.client.Doc(path)
	if ref == nil {
		return nil, fmt.Errorf("invalid document path %q", path)
	}
	return ref, nil
}

// Get loads the document at path into dst. A nil dst only checks existence.
func (s *FirestoreStore) Get(ctx context.Context, path string, dst any) error {
	ref, err := s.doc(path)
	if err != nil {
		return err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get %s: %w", path, err)
	}
	if dst == nil {
		return nil
	}
	if err := snap.DataTo(dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// Create writes data at path, failing with ErrAlreadyExists if the document is present.
func (s *FirestoreStore) Create(ctx context.Context, path string, data any) error {
	ref, err := s.doc(path)
	if err != nil {
		return err
	}
	if _, err := ref.Create(ctx, data); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	return nil
}

func (s *FirestoreStore) Set(ctx context.Context, path string, data any) error {
	ref, err := s.doc(path)
	if err != nil {
		return err
	}
	if _, err := ref.Set(ctx, data); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}

func (s *FirestoreStore) Update(ctx context.Context, path string, updates []firestore.Update) error {
	ref, err := s.doc(path)
	if err != nil {
		return err
	}
	if _, err := ref.Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update %s: %w", path, err)
	}
	return nil
}

// Delete removes the document at path. Deleting a missing document is not an error.
func (s *FirestoreStore) Delete(ctx context.Context, path string) error {
	ref, err := s.doc(path)
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

// Page returns up to limit documents of collection ordered by document id,
// starting after afterID when it is not empty.
func (s *FirestoreStore) Page(ctx context.Context, collection, afterID string, limit int) ([]Document, error) {
	q := s.client.Collection(collection).OrderBy(firestore.DocumentID, firestore.Asc).Limit(limit)
	if afterID != "" {
		q = q.StartAfter(afterID)
	}

	it := q.Documents(ctx)
	defer it.Stop()

	var docs []Document
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to page %s: %w", collection, err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

// Commit applies writes atomically. Callers keep len(writes) within Firestore's batch ceiling.
func (s *FirestoreStore) Commit(ctx context.Context, writes []Write) error {
	batch := s.client.Batch()
	for _, w := range writes {
		ref, err := s.doc(w.Path)
		if err != nil {
			return err
		}
		switch {
		case w.Delete:
			batch.Delete(ref)
		case w.Merge:
			batch.Set(ref, w.Data, firestore.MergeAll)
		default:
			batch.Set(ref, w.Data)
		}
	}
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit batch of %d writes: %w", len(writes), err)
	}
	return nil
}
