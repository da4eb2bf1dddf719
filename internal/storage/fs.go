// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/GyGaByyyTe/nextlevel-food/internal/util"
)

// FSStore stores images under <publicDir>/images and serves them from
// <baseURL>/images/<key>. It is the development backend.
type FSStore struct {
	imagesDir string
	baseURL   string
}

// NewFSStore creates a filesystem store rooted at publicDir. The images
// subdirectory is created if missing.
func NewFSStore(publicDir, baseURL string) (*FSStore, error) {
	imagesDir := filepath.Join(publicDir, "images")
	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create images directory: %w", err)
	}
	return &FSStore{
		imagesDir: imagesDir,
		baseURL:   baseURL,
	}, nil
}

// Put writes the image atomically (temp file + rename) and returns the
// URL it is served from.
func (s *FSStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	destPath, err := util.SafeJoinPath(s.imagesDir, key)
	if err != nil {
		return "", err
	}

	tmpFile, err := os.CreateTemp(s.imagesDir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to rename temp file: %w", err)
	}

	return s.baseURL + "/images/" + key, nil
}

// Delete removes the image file. Missing files are ignored.
func (s *FSStore) Delete(_ context.Context, key string) error {
	destPath, err := util.SafeJoinPath(s.imagesDir, key)
	if err != nil {
		return err
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// List returns the keys of all stored images.
func (s *FSStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.imagesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		keys = append(keys, entry.Name())
	}
	return keys, nil
}

// Compile-time check that FSStore implements the Store interface
var _ Store = (*FSStore)(nil)
