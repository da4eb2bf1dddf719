package cache

import (
	"context"
	"time"

	"github.com/GyGaByyyTe/nextlevel-food/internal/model"
)

// Cache keys for meal data.
const (
	keyMealList   = "meals:list"
	keyMealPrefix = "meals:slug:"
)

// MealCache caches the meal listing and per-slug lookups with a short
// TTL. Every mutation invalidates the whole meal keyspace; the data set
// is small enough that precision is not worth the bookkeeping.
type MealCache struct {
	list  *TypedCache[[]model.Meal]
	meals *TypedCache[model.Meal]
}

// NewMealCache creates a MealCache over the given backend.
func NewMealCache(backend Cache, ttl time.Duration) *MealCache {
	return &MealCache{
		list:  NewTypedCache[[]model.Meal](backend, ttl),
		meals: NewTypedCache[model.Meal](backend, ttl),
	}
}

// GetList returns the cached meal listing, if fresh.
func (c *MealCache) GetList(ctx context.Context) ([]model.Meal, bool) {
	meals, ok := c.list.Get(ctx, keyMealList)
	if !ok {
		return nil, false
	}
	return *meals, true
}

// SetList caches the meal listing.
func (c *MealCache) SetList(ctx context.Context, meals []model.Meal) {
	_ = c.list.Set(ctx, keyMealList, &meals)
}

// Get returns the cached meal for a slug, if fresh.
func (c *MealCache) Get(ctx context.Context, slug string) (*model.Meal, bool) {
	return c.meals.Get(ctx, keyMealPrefix+slug)
}

// Set caches a meal under its slug.
func (c *MealCache) Set(ctx context.Context, meal *model.Meal) {
	_ = c.meals.Set(ctx, keyMealPrefix+meal.Slug, meal)
}

// Invalidate drops the listing and the given slugs after a mutation.
func (c *MealCache) Invalidate(ctx context.Context, slugs ...string) {
	_ = c.list.Delete(ctx, keyMealList)
	for _, slug := range slugs {
		_ = c.meals.Delete(ctx, keyMealPrefix+slug)
	}
}
