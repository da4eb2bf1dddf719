// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFSStore(t *testing.T) *FSStore {
	t.Helper()
	store, err := NewFSStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)
	return store
}

func TestFSStorePut(t *testing.T) {
	store := newTestFSStore(t)
	ctx := context.Background()

	url, err := store.Put(ctx, "spicy-curry-1700000000.jpg", []byte("imagedata"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/images/spicy-curry-1700000000.jpg", url)

	data, err := os.ReadFile(filepath.Join(store.imagesDir, "spicy-curry-1700000000.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "imagedata", string(data))
}

func TestFSStorePutRejectsTraversal(t *testing.T) {
	store := newTestFSStore(t)

	_, err := store.Put(context.Background(), "../escape.jpg", []byte("x"), "image/jpeg")
	assert.Error(t, err, "Put accepted a traversal key")
}

func TestFSStoreDelete(t *testing.T) {
	store := newTestFSStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "burger.jpg", []byte("x"), "image/jpeg")
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "burger.jpg"))

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	// Deleting a missing key is not an error.
	assert.NoError(t, store.Delete(ctx, "burger.jpg"))
}

func TestFSStoreList(t *testing.T) {
	store := newTestFSStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "a.jpg", []byte("1"), "image/jpeg")
	require.NoError(t, err)
	_, err = store.Put(ctx, "b.png", []byte("2"), "image/png")
	require.NoError(t, err)

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.jpg", "b.png"}, keys)
}
