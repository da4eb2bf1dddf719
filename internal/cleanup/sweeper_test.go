// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cleanup

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/GyGaByyyTe/nextlevel-food/internal/storage"
	"github.com/GyGaByyyTe/nextlevel-food/internal/store"
	"github.com/GyGaByyyTe/nextlevel-food/internal/testutil"
)

func newTestSweeper(t *testing.T) (*Sweeper, *store.Queries, *storage.FSStore) {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	queries := store.New(db)

	images, err := storage.NewFSStore(t.TempDir(), "http://localhost:8080")
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}

	s := New(queries, images, "@hourly", time.Hour, testutil.TestLogger())
	return s, queries, images
}

func keyAt(slug string, uploadedAt time.Time) string {
	return fmt.Sprintf("%s-%d.jpg", slug, uploadedAt.Unix())
}

func insertMeal(t *testing.T, queries *store.Queries, slug, imageURL string) {
	t.Helper()
	now := time.Now()
	_, err := queries.CreateMeal(context.Background(), store.CreateMealParams{
		Title: slug, Slug: slug, Summary: "s", Instructions: "i",
		Creator: "c", CreatorEmail: "c@example.com", Image: imageURL,
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateMeal: %v", err)
	}
}

func TestSweepRemovesOldOrphans(t *testing.T) {
	s, queries, images := newTestSweeper(t)
	ctx := context.Background()
	old := time.Now().Add(-2 * time.Hour)

	kept := keyAt("burger", old)
	orphan := keyAt("deleted-curry", old)
	images.Put(ctx, kept, []byte("x"), "image/jpeg")
	images.Put(ctx, orphan, []byte("x"), "image/jpeg")
	insertMeal(t, queries, "burger", "http://localhost:8080/images/"+kept)

	if err := s.Sweep(ctx); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	keys, _ := images.List(ctx)
	if len(keys) != 1 || keys[0] != kept {
		t.Errorf("remaining keys = %v, want [%s]", keys, kept)
	}
}

func TestSweepKeepsFreshOrphans(t *testing.T) {
	s, _, images := newTestSweeper(t)
	ctx := context.Background()

	fresh := keyAt("in-flight", time.Now())
	images.Put(ctx, fresh, []byte("x"), "image/jpeg")

	if err := s.Sweep(ctx); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	keys, _ := images.List(ctx)
	if len(keys) != 1 {
		t.Errorf("fresh orphan was swept: %v", keys)
	}
}

func TestSweepRemovesUnparsableKeysPastGrace(t *testing.T) {
	s, _, images := newTestSweeper(t)
	ctx := context.Background()

	// No timestamp in the key; treated as past grace.
	images.Put(ctx, "stray-file.jpg", []byte("x"), "image/jpeg")

	if err := s.Sweep(ctx); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	keys, _ := images.List(ctx)
	if len(keys) != 0 {
		t.Errorf("unreferenced stray survived: %v", keys)
	}
}

func TestKeyTimestamp(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	got, ok := keyTimestamp("juicy-cheese-burger-1700000000.jpg")
	if !ok || !got.Equal(ts) {
		t.Errorf("keyTimestamp = %v, %v", got, ok)
	}

	if _, ok := keyTimestamp("no-timestamp-here.jpg"); ok {
		t.Error("keyTimestamp accepted a non-numeric suffix")
	}
	if _, ok := keyTimestamp("plain"); ok {
		t.Error("keyTimestamp accepted a dashless key")
	}
}
