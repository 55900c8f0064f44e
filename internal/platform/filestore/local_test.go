// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package filestore_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lensfolio/internal/platform/filestore"
)

func newLocalStore(t *testing.T) *filestore.LocalStore {
	t.Helper()

	store, err := filestore.NewLocalStore(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return store
}

/*
TestLocalStore_SaveOpenDelete round-trips a file through the local backend.
*/
func TestLocalStore_SaveOpenDelete(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()
	data := []byte("fake png data")

	key := filestore.NewKey("Wedding", "image/png")
	require.True(t, strings.HasPrefix(key, "wedding/"))
	require.True(t, strings.HasSuffix(key, ".png"))

	require.NoError(t, store.Save(ctx, key, "image/png", bytes.NewReader(data)))

	object, err := store.Open(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(object.Body)
	require.NoError(t, object.Body.Close())
	require.NoError(t, err)

	assert.Equal(t, data, got)
	assert.Equal(t, "image/png", object.ContentType)
	assert.Equal(t, int64(len(data)), object.Size)

	require.NoError(t, store.Delete(ctx, key))

	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, filestore.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, key), filestore.ErrNotFound)
}

/*
TestLocalStore_PathTraversal keeps escaping keys inside the base directory.
*/
func TestLocalStore_PathTraversal(t *testing.T) {
	store := newLocalStore(t)

	_, err := store.Open(context.Background(), "../../etc/passwd")
	assert.Error(t, err)

	_, err = store.Open(context.Background(), "")
	assert.ErrorIs(t, err, filestore.ErrInvalidKey)
}

/*
TestLocalStore_Ping succeeds on a writable directory.
*/
func TestLocalStore_Ping(t *testing.T) {
	assert.NoError(t, newLocalStore(t).Ping(context.Background()))
}

/*
TestKeyFromRef accepts only references this service issues.
*/
func TestKeyFromRef(t *testing.T) {
	tests := []struct {
		ref    string
		want   string
		wantOK bool
	}{
		{"uploads/wedding/0192.jpg", "wedding/0192.jpg", true},
		{"/uploads/portrait/a.png", "portrait/a.png", true},
		{"uploads/../../secret", "secret", true},
		{"https://cdn.example.com/a.jpg", "", false},
		{"uploads/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			key, ok := filestore.KeyFromRef(tt.ref)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, key)
		})
	}

	assert.Equal(t, "uploads/wedding/a.jpg", filestore.Ref("wedding/a.jpg"))
}
