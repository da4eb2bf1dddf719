// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cleanup removes stored images no meal references anymore.
// Orphans appear when a row write fails after its image upload, or
// when a best-effort image delete is missed.
package cleanup

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/GyGaByyyTe/nextlevel-food/internal/meals"
	"github.com/GyGaByyyTe/nextlevel-food/internal/storage"
	"github.com/GyGaByyyTe/nextlevel-food/internal/store"
)

// Sweeper periodically diffs stored image keys against the meal rows
// and deletes unreferenced objects older than the grace period.
type Sweeper struct {
	queries *store.Queries
	images  storage.Store
	cron    *cron.Cron
	logger  *slog.Logger

	schedule string
	grace    time.Duration
	now      func() time.Time
}

// New creates a sweeper. schedule is a cron expression; grace keeps
// fresh uploads safe from a sweep that races an in-flight create.
func New(queries *store.Queries, images storage.Store, schedule string, grace time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		queries:  queries,
		images:   images,
		cron:     cron.New(),
		logger:   logger,
		schedule: schedule,
		grace:    grace,
		now:      time.Now,
	}
}

// Start schedules the sweep job.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.Sweep(context.Background()); err != nil {
			s.logger.Error("image sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("image cleanup started", "schedule", s.schedule, "grace", s.grace)
	return nil
}

// Stop gracefully stops the sweeper, waiting for a running sweep.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("image cleanup stopped")
}

// Sweep runs a single pass. Objects inside the grace period are kept
// even when unreferenced.
func (s *Sweeper) Sweep(ctx context.Context) error {
	refs, err := s.queries.ListImageRefs(ctx)
	if err != nil {
		return err
	}
	referenced := make(map[string]bool, len(refs))
	for _, ref := range refs {
		referenced[meals.ImageKey(ref)] = true
	}

	keys, err := s.images.List(ctx)
	if err != nil {
		return err
	}

	cutoff := s.now().Add(-s.grace)
	removed := 0
	for _, key := range keys {
		if referenced[key] {
			continue
		}
		if uploadedAt, ok := keyTimestamp(key); ok && uploadedAt.After(cutoff) {
			continue
		}

		if err := s.images.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to delete orphaned image", "key", key, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("removed orphaned images", "count", removed, "total", len(keys))
	}
	return nil
}

// keyTimestamp parses the unix timestamp embedded in an image key of
// the form <slug>-<timestamp><ext>.
func keyTimestamp(key string) (time.Time, bool) {
	if dot := strings.LastIndexByte(key, '.'); dot >= 0 {
		key = key[:dot]
	}
	dash := strings.LastIndexByte(key, '-')
	if dash < 0 || dash == len(key)-1 {
		return time.Time{}, false
	}

	var ts int64
	for _, c := range key[dash+1:] {
		if c < '0' || c > '9' {
			return time.Time{}, false
		}
		ts = ts*10 + int64(c-'0')
	}
	return time.Unix(ts, 0), true
}
