// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage persists processed recipe images. Development uses a
// directory under the public web root; production uses S3-compatible
// object storage (MinIO).
package storage

import (
	"context"
)

// Store is the image blob store. Put returns the public URL the stored
// object is served from; that URL is what gets persisted on the meal
// row.
type Store interface {
	// Put stores an object under key and returns its public URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys of all stored objects.
	List(ctx context.Context) ([]string, error)
}
