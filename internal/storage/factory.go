// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"

	"github.com/GyGaByyyTe/nextlevel-food/internal/config"
)

// NewFromConfig selects the image store backend: the filesystem store
// in development, S3 when an endpoint is configured.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg.IsDevelopment() && cfg.S3Endpoint == "" {
		return NewFSStore(cfg.PublicDir, cfg.BaseURL)
	}

	return NewS3Store(ctx, S3Options{
		Endpoint:      cfg.S3Endpoint,
		Region:        cfg.S3Region,
		Bucket:        cfg.S3Bucket,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
}
