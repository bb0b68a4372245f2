package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Lllllllleong/backofficefunctions/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPublicUsers(store *fakeStore, n int) {
	for i := 0; i < n; i++ {
		email := fmt.Sprintf("user%04d@example.com", i)
		store.docs["publicUsers/"+email] = map[string]any{"email": email}
	}
}

func newTestBackup(store *fakeStore) *PublicUserBackupFunction {
	f := newPublicUserBackup(store)
	f.now = func() time.Time { return time.Date(2024, 7, 8, 9, 10, 11, 0, time.UTC) }
	return f
}

func TestBackupCopiesEveryDocument(t *testing.T) {
	store := newFakeStore()
	seedPublicUsers(store, 1000)
	f := newTestBackup(store)

	res, err := f.Process(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.BackupID, "20240708T091011Z-"))
	assert.Equal(t, 1000, res.DocumentCount)
	assert.Equal(t, 3, res.BatchCount)

	for _, c := range store.commits {
		assert.LessOrEqual(t, len(c), MaxBatchWrites)
	}
	copied := "backups/" + res.BackupID + "/publicUsers/user0999@example.com"
	require.True(t, store.has(copied))
	assert.Equal(t, map[string]any{"email": "user0999@example.com"}, store.docs[copied])

	manifest, ok := store.docs["backups/"+res.BackupID].(models.BackupManifest)
	require.True(t, ok)
	assert.Equal(t, 1000, manifest.DocumentCount)
	assert.Equal(t, models.PublicUsersCollection, manifest.SourceCollection)
}

func TestBackupEmptyCollection(t *testing.T) {
	store := newFakeStore()
	f := newTestBackup(store)

	res, err := f.Process(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.DocumentCount)
	assert.Empty(t, store.commits)
	assert.True(t, store.has("backups/"+res.BackupID))
}

func TestBackupStopsOnExactPageBoundary(t *testing.T) {
	store := newFakeStore()
	seedPublicUsers(store, 20)
	f := newTestBackup(store)
	f.pageSize = 10

	res, err := f.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, res.DocumentCount)
	assert.Equal(t, 3, store.pageCalls)
}

func TestBackupPageFailure(t *testing.T) {
	store := newFakeStore()
	store.pageErr = errors.New("permission denied")
	f := newTestBackup(store)

	_, err := f.Process(context.Background())
	assert.Error(t, err)
}

func TestAccessTester(t *testing.T) {
	store := newFakeStore()
	seedPublicUsers(store, 3)
	f := &AccessTesterFunction{store: store, projectID: "public-proj", now: time.Now}

	res, err := f.Process(context.Background(), "app-1", "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "public-proj", res.ProjectID)
	assert.Equal(t, 1, res.SampleCount)
	assert.Equal(t, "app-1", res.AppID)
}
