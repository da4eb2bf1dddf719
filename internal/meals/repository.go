// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package meals implements the recipe repository: listing, lookup and
// the create/update/delete pipeline that combines sanitization, slug
// derivation, image processing and storage.
package meals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"time"

	"github.com/GyGaByyyTe/nextlevel-food/internal/cache"
	"github.com/GyGaByyyTe/nextlevel-food/internal/imaging"
	"github.com/GyGaByyyTe/nextlevel-food/internal/model"
	"github.com/GyGaByyyTe/nextlevel-food/internal/sanitize"
	"github.com/GyGaByyyTe/nextlevel-food/internal/storage"
	"github.com/GyGaByyyTe/nextlevel-food/internal/store"
	"github.com/GyGaByyyTe/nextlevel-food/internal/util"
)

// Repository provides meal persistence with caching. The image write
// happens before the row write; a row failure rolls the image back.
type Repository struct {
	queries   *store.Queries
	images    storage.Store
	processor *imaging.Processor
	cache     *cache.MealCache
	log       *slog.Logger

	now func() time.Time
}

// NewRepository creates a meal repository.
func NewRepository(queries *store.Queries, images storage.Store, processor *imaging.Processor, mealCache *cache.MealCache, log *slog.Logger) *Repository {
	return &Repository{
		queries:   queries,
		images:    images,
		processor: processor,
		cache:     mealCache,
		log:       log,
		now:       time.Now,
	}
}

// List returns all meals, serving from cache when fresh.
func (r *Repository) List(ctx context.Context) ([]model.Meal, error) {
	if cached, ok := r.cache.GetList(ctx); ok {
		return cached, nil
	}

	mealList, err := r.queries.ListMeals(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing meals: %w", err)
	}
	r.cache.SetList(ctx, mealList)
	return mealList, nil
}

// Get returns the meal with the given slug, serving from cache when
// fresh. Returns model.ErrNotFound for unknown slugs.
func (r *Repository) Get(ctx context.Context, slug string) (*model.Meal, error) {
	if cached, ok := r.cache.Get(ctx, slug); ok {
		return cached, nil
	}

	meal, err := r.queries.GetMealBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("getting meal %q: %w", slug, err)
	}
	r.cache.Set(ctx, &meal)
	return &meal, nil
}

// Create persists a new meal. All text fields are sanitized, the slug
// is derived from the title, and the processed image is stored before
// the row insert. A slug collision returns model.ErrSlugConflict and
// removes the already-stored image.
func (r *Repository) Create(ctx context.Context, input model.CreateMealInput) (*model.Meal, error) {
	title := sanitize.Text(input.Title)
	slug := util.Slugify(title)
	if slug == "" {
		return nil, model.NewValidationError("title", "Title must contain at least one letter or digit.")
	}

	if !r.processor.IsSupported(input.Image) {
		return nil, model.NewValidationError("image", "The uploaded file is not a supported image.")
	}
	processed, err := r.processor.Process(input.Image)
	if err != nil {
		return nil, model.NewValidationError("image", "The uploaded file is not a supported image.")
	}

	key := r.imageKey(slug, input.ImageFilename, processed.Ext)
	imageURL, err := r.images.Put(ctx, key, processed.Data, processed.ContentType)
	if err != nil {
		return nil, &model.StorageError{Op: "image", Err: err}
	}

	now := r.now().UTC()
	meal, err := r.queries.CreateMeal(ctx, store.CreateMealParams{
		Title:        title,
		Slug:         slug,
		Summary:      sanitize.Text(input.Summary),
		Instructions: sanitize.Instructions(input.Instructions),
		Creator:      sanitize.Text(input.Creator),
		CreatorEmail: input.CreatorEmail,
		Image:        imageURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		r.removeImage(ctx, imageURL)
		if store.IsUniqueViolation(err) {
			return nil, model.ErrSlugConflict
		}
		return nil, &model.StorageError{Op: "row", Err: err}
	}

	r.cache.Invalidate(ctx, slug)
	return &meal, nil
}

// Update modifies an existing meal in place. The slug and creator email
// never change. An empty image payload keeps the stored image; a new
// one replaces it, removing the old object after the row is updated.
func (r *Repository) Update(ctx context.Context, slug string, input model.UpdateMealInput) (*model.Meal, error) {
	existing, err := r.Get(ctx, slug)
	if err != nil {
		return nil, err
	}

	imageURL := existing.Image
	oldImage := ""
	if len(input.Image) > 0 {
		if !r.processor.IsSupported(input.Image) {
			return nil, model.NewValidationError("image", "The uploaded file is not a supported image.")
		}
		processed, err := r.processor.Process(input.Image)
		if err != nil {
			return nil, model.NewValidationError("image", "The uploaded file is not a supported image.")
		}
		key := r.imageKey(slug, input.ImageFilename, processed.Ext)
		imageURL, err = r.images.Put(ctx, key, processed.Data, processed.ContentType)
		if err != nil {
			return nil, &model.StorageError{Op: "image", Err: err}
		}
		oldImage = existing.Image
	}

	params := store.UpdateMealParams{
		Title:        sanitize.Text(input.Title),
		Summary:      sanitize.Text(input.Summary),
		Instructions: sanitize.Instructions(input.Instructions),
		Creator:      sanitize.Text(input.Creator),
		Image:        imageURL,
		UpdatedAt:    r.now().UTC(),
	}
	if err := r.queries.UpdateMealBySlug(ctx, slug, params); err != nil {
		if oldImage != "" {
			r.removeImage(ctx, imageURL)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, &model.StorageError{Op: "row", Err: err}
	}

	if oldImage != "" {
		r.removeImage(ctx, oldImage)
	}

	r.cache.Invalidate(ctx, slug)
	return r.Get(ctx, slug)
}

// Delete removes a meal and its stored image. Returns model.ErrNotFound
// for unknown slugs and model.ErrUnauthorized unless the requester may
// modify the stored meal. The image removal is best effort; a failure
// there leaves an orphan for the cleanup sweeper, not a half-deleted
// meal.
func (r *Repository) Delete(ctx context.Context, slug, requesterEmail string, isAdmin bool) error {
	existing, err := r.Get(ctx, slug)
	if err != nil {
		return err
	}
	if !isAdmin && !existing.IsOwnedBy(requesterEmail) {
		return model.ErrUnauthorized
	}

	if err := r.queries.DeleteMealBySlug(ctx, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrNotFound
		}
		return &model.StorageError{Op: "row", Err: err}
	}

	r.removeImage(ctx, existing.Image)
	r.cache.Invalidate(ctx, slug)
	return nil
}

// imageKey builds the storage key from the slug, a disambiguating
// timestamp and the upload's original extension. Uploads without a
// usable filename fall back to the processed format's extension.
func (r *Repository) imageKey(slug, originalFilename, processedExt string) string {
	ext := processedExt
	if safe, err := util.SanitizeFilename(originalFilename); err == nil {
		if e := util.FileExt(safe); e != "" {
			ext = e
		}
	}
	return fmt.Sprintf("%s-%d%s", slug, r.now().Unix(), ext)
}

// removeImage deletes the stored object behind an image URL. Failures
// are logged, not returned: the sweeper reclaims what this misses.
func (r *Repository) removeImage(ctx context.Context, imageURL string) {
	key := ImageKey(imageURL)
	if key == "" {
		return
	}
	if err := r.images.Delete(ctx, key); err != nil {
		r.log.Warn("failed to remove stored image", "key", key, "error", err)
	}
}

// ImageKey extracts the storage key from a stored image URL.
func ImageKey(imageURL string) string {
	if imageURL == "" {
		return ""
	}
	u, err := url.Parse(imageURL)
	if err != nil {
		return path.Base(imageURL)
	}
	return path.Base(u.Path)
}
