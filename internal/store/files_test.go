// ABOUTME: Tests for uploaded file storage and retention eviction.

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFile(name string, at time.Time) *File {
	data := []byte("file contents of " + name)
	return &File{
		ID:         uuid.New().String(),
		Name:       name,
		Mime:       "text/plain",
		Size:       int64(len(data)),
		OwnerID:    "user-1",
		Data:       data,
		UploadedAt: at,
	}
}

func TestSaveFile_AndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	f := testFile("notes.txt", time.Now())
	require.NoError(t, s.SaveFile(ctx, f))

	got, err := s.GetFile(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", got.Name)
	assert.Equal(t, f.Data, got.Data)
	assert.Equal(t, "user-1", got.OwnerID)
}

func TestGetFile_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetFile(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEvictFilesBefore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	old := testFile("old.txt", now.Add(-8*24*time.Hour))
	fresh := testFile("fresh.txt", now)
	require.NoError(t, s.SaveFile(ctx, old))
	require.NoError(t, s.SaveFile(ctx, fresh))

	removed, err := s.EvictFilesBefore(ctx, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = s.GetFile(ctx, old.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetFile(ctx, fresh.ID)
	assert.NoError(t, err)

	// Idempotent
	removed, err = s.EvictFilesBefore(ctx, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, removed)
}
