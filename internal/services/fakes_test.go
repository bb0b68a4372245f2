package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/backofficefunctions/internal/gcp"
)

type fakeStore struct {
	mu        sync.Mutex
	docs      map[string]any
	updates   map[string][][]firestore.Update
	commits   [][]gcp.Write
	deleted   []string
	pageCalls int
	commitErr error
	pageErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]any), updates: make(map[string][][]firestore.Update)}
}

func (s *fakeStore) Get(_ context.Context, path string, _ any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[path]; !ok {
		return gcp.ErrNotFound
	}
	return nil
}

func (s *fakeStore) Create(_ context.Context, path string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[path]; ok {
		return gcp.ErrAlreadyExists
	}
	s.docs[path] = data
	return nil
}

func (s *fakeStore) Set(_ context.Context, path string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = data
	return nil
}

func (s *fakeStore) Update(_ context.Context, path string, updates []firestore.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[path]; !ok {
		return gcp.ErrNotFound
	}
	s.updates[path] = append(s.updates[path], updates)
	return nil
}

func (s *fakeStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, path)
	s.deleted = append(s.deleted, path)
	return nil
}

// Page serves the direct children of collection in document id order.
func (s *fakeStore) Page(_ context.Context, collection, afterID string, limit int) ([]gcp.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageCalls++
	if s.pageErr != nil {
		return nil, s.pageErr
	}

	prefix := collection + "/"
	var ids []string
	for path := range s.docs {
		rest, ok := strings.CutPrefix(path, prefix)
		if ok && !strings.Contains(rest, "/") && rest > afterID {
			ids = append(ids, rest)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	docs := make([]gcp.Document, 0, len(ids))
	for _, id := range ids {
		data, _ := s.docs[prefix+id].(map[string]any)
		docs = append(docs, gcp.Document{ID: id, Data: data})
	}
	return docs, nil
}

func (s *fakeStore) Commit(_ context.Context, writes []gcp.Write) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commitErr != nil {
		return s.commitErr
	}
	if len(writes) > MaxBatchWrites {
		return fmt.Errorf("batch of %d writes exceeds %d", len(writes), MaxBatchWrites)
	}
	for _, w := range writes {
		if strings.Count(w.Path, "/")%2 == 0 {
			return fmt.Errorf("invalid document path %q", w.Path)
		}
	}
	s.commits = append(s.commits, append([]gcp.Write(nil), writes...))
	for _, w := range writes {
		if w.Delete {
			delete(s.docs, w.Path)
			continue
		}
		s.docs[w.Path] = w.Data
	}
	return nil
}

func (s *fakeStore) has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[path]
	return ok
}

type fakeObjects struct {
	mu        sync.Mutex
	objects   map[string][]byte
	attrs     map[string]gcp.ObjectAttrs
	uploadErr error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: make(map[string][]byte), attrs: make(map[string]gcp.ObjectAttrs)}
}

func objectKey(bucket, object string) string { return bucket + "/" + object }

func (o *fakeObjects) put(bucket, object string, content []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.objects[objectKey(bucket, object)] = content
}

func (o *fakeObjects) get(bucket, object string) ([]byte, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	b, ok := o.objects[objectKey(bucket, object)]
	return b, ok
}

func (o *fakeObjects) Download(_ context.Context, bucket, object, destPath string) error {
	b, ok := o.get(bucket, object)
	if !ok {
		return errors.New("object not found")
	}
	return os.WriteFile(destPath, b, 0o600)
}

func (o *fakeObjects) UploadFile(_ context.Context, bucket, object, localPath string, attrs gcp.ObjectAttrs) error {
	if o.uploadErr != nil {
		return o.uploadErr
	}
	b, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.objects[objectKey(bucket, object)] = b
	o.attrs[objectKey(bucket, object)] = attrs
	return nil
}

func (o *fakeObjects) Delete(_ context.Context, bucket, object string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.objects, objectKey(bucket, object))
	return nil
}

func (o *fakeObjects) DeletePrefix(_ context.Context, bucket, prefix string) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for k := range o.objects {
		if strings.HasPrefix(k, objectKey(bucket, prefix)) {
			delete(o.objects, k)
			n++
		}
	}
	return n, nil
}

func (o *fakeObjects) WriteIfAbsent(_ context.Context, bucket, object string, content []byte, _ string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.objects[objectKey(bucket, object)]; ok {
		return false, nil
	}
	o.objects[objectKey(bucket, object)] = content
	return true, nil
}

type published struct {
	topic string
	data  []byte
	attrs map[string]string
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []published
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, topicID string, data []byte, attrs map[string]string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.messages = append(p.messages, published{topic: topicID, data: data, attrs: attrs})
	return fmt.Sprintf("msg-%d", len(p.messages)), nil
}

type fakeUsers struct {
	deleted []string
	err     error
}

func (u *fakeUsers) DeleteUser(_ context.Context, uid string) error {
	if u.err != nil {
		return u.err
	}
	u.deleted = append(u.deleted, uid)
	return nil
}
