package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func testMealParams(slug string) CreateMealParams {
	now := time.Now()
	return CreateMealParams{
		Title:        "Spicy Ramen Bowl",
		Slug:         slug,
		Summary:      "Hot and spicy",
		Instructions: "Boil water.",
		Creator:      "Maria",
		CreatorEmail: "maria@example.com",
		Image:        "/images/" + slug + ".jpg",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMealCRUD(t *testing.T) {
	db := newTestDB(t)
	q := New(db)
	ctx := context.Background()

	created, err := q.CreateMeal(ctx, testMealParams("spicy-ramen-bowl"))
	if err != nil {
		t.Fatalf("CreateMeal: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected assigned id")
	}

	got, err := q.GetMealBySlug(ctx, "spicy-ramen-bowl")
	if err != nil {
		t.Fatalf("GetMealBySlug: %v", err)
	}
	if got.Title != created.Title || got.CreatorEmail != created.CreatorEmail {
		t.Errorf("round-trip mismatch: %+v", got)
	}

	meals, err := q.ListMeals(ctx)
	if err != nil {
		t.Fatalf("ListMeals: %v", err)
	}
	if len(meals) != 1 {
		t.Errorf("expected 1 meal, got %d", len(meals))
	}

	err = q.UpdateMealBySlug(ctx, "spicy-ramen-bowl", UpdateMealParams{
		Title:        "Milder Ramen Bowl",
		Summary:      got.Summary,
		Instructions: got.Instructions,
		Creator:      got.Creator,
		Image:        got.Image,
		UpdatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("UpdateMealBySlug: %v", err)
	}

	got, err = q.GetMealBySlug(ctx, "spicy-ramen-bowl")
	if err != nil {
		t.Fatalf("GetMealBySlug after update: %v", err)
	}
	if got.Title != "Milder Ramen Bowl" {
		t.Errorf("title not updated: %q", got.Title)
	}
	// Immutable columns survive updates
	if got.CreatorEmail != "maria@example.com" || got.Slug != "spicy-ramen-bowl" {
		t.Errorf("immutable columns changed: %+v", got)
	}

	if err := q.DeleteMealBySlug(ctx, "spicy-ramen-bowl"); err != nil {
		t.Fatalf("DeleteMealBySlug: %v", err)
	}
	if err := q.DeleteMealBySlug(ctx, "spicy-ramen-bowl"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("second delete should report ErrNoRows, got %v", err)
	}
}

func TestGetMealNotFound(t *testing.T) {
	db := newTestDB(t)
	q := New(db)

	_, err := q.GetMealBySlug(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
}

func TestUpdateMealNotFound(t *testing.T) {
	db := newTestDB(t)
	q := New(db)

	err := q.UpdateMealBySlug(context.Background(), "missing", UpdateMealParams{UpdatedAt: time.Now()})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
}

func TestCreateMealSlugConflict(t *testing.T) {
	db := newTestDB(t)
	q := New(db)
	ctx := context.Background()

	if _, err := q.CreateMeal(ctx, testMealParams("spicy-ramen-bowl")); err != nil {
		t.Fatalf("CreateMeal: %v", err)
	}

	_, err := q.CreateMeal(ctx, testMealParams("spicy-ramen-bowl"))
	if err == nil {
		t.Fatal("expected uniqueness violation")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation should detect %v", err)
	}
}

func TestUserUpsert(t *testing.T) {
	db := newTestDB(t)
	q := New(db)
	ctx := context.Background()

	u, err := q.UpsertUser(ctx, "maria@example.com", "Maria")
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if u.IsAdmin {
		t.Error("new users must not be admins")
	}

	// Name refresh on later sign-in, id stable
	u2, err := q.UpsertUser(ctx, "maria@example.com", "Maria G.")
	if err != nil {
		t.Fatalf("UpsertUser again: %v", err)
	}
	if u2.ID != u.ID {
		t.Errorf("upsert changed id: %d -> %d", u.ID, u2.ID)
	}
	if u2.Name != "Maria G." {
		t.Errorf("name not refreshed: %q", u2.Name)
	}
}

func TestSetUserAdmin(t *testing.T) {
	db := newTestDB(t)
	q := New(db)
	ctx := context.Background()

	if _, err := q.UpsertUser(ctx, "maria@example.com", "Maria"); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}

	if err := q.SetUserAdmin(ctx, "maria@example.com", true); err != nil {
		t.Fatalf("SetUserAdmin: %v", err)
	}

	u, err := q.GetUserByEmail(ctx, "maria@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if !u.IsAdmin {
		t.Error("admin flag not set")
	}

	admins, err := q.ListAdmins(ctx)
	if err != nil {
		t.Fatalf("ListAdmins: %v", err)
	}
	if len(admins) != 1 {
		t.Errorf("expected 1 admin, got %d", len(admins))
	}

	if err := q.SetUserAdmin(ctx, "nobody@example.com", true); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected ErrNoRows for unknown email, got %v", err)
	}
}

func TestSeedIfEmpty(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := SeedIfEmpty(ctx, db); err != nil {
		t.Fatalf("SeedIfEmpty: %v", err)
	}

	meals, err := New(db).ListMeals(ctx)
	if err != nil {
		t.Fatalf("ListMeals: %v", err)
	}
	if len(meals) == 0 {
		t.Fatal("expected starter meals")
	}

	// Second run is a no-op
	if err := SeedIfEmpty(ctx, db); err != nil {
		t.Fatalf("SeedIfEmpty again: %v", err)
	}
	again, _ := New(db).ListMeals(ctx)
	if len(again) != len(meals) {
		t.Errorf("seed not idempotent: %d -> %d", len(meals), len(again))
	}
}
