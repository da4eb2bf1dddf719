// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/GyGaByyyTe/nextlevel-food/internal/model"
)

func shareMeal(t *testing.T, env *testEnv, email, title string) *model.Meal {
	t.Helper()

	meal, err := env.repo.Create(context.Background(), model.CreateMealInput{
		Title:        title,
		Summary:      "A summary",
		Instructions: "Step one.\n\nStep two.",
		Creator:      "Maria",
		CreatorEmail: email,
		Image:        testJPEG(t),
	})
	if err != nil {
		t.Fatalf("creating meal: %v", err)
	}
	return meal
}

func TestListShowsMeals(t *testing.T) {
	env := newTestEnv(t, nil)
	shareMeal(t, env, "maria@example.com", "Juicy Burger")

	rec := env.get("/meals")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Juicy Burger") {
		t.Error("expected listing to contain the meal title")
	}
}

func TestListEmptyState(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.get("/meals")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No meals shared yet") {
		t.Error("expected empty-state message")
	}
}

func TestDetailShowsMeal(t *testing.T) {
	env := newTestEnv(t, nil)
	meal := shareMeal(t, env, "maria@example.com", "Juicy Burger")

	rec := env.get("/meals/" + meal.Slug)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Juicy Burger") {
		t.Error("expected detail page to contain the title")
	}
	if strings.Contains(body, "/edit") {
		t.Error("anonymous visitor must not see the edit action")
	}
}

func TestDetailUnknownSlugIs404(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.get("/meals/no-such-meal")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDetailOwnerSeesActions(t *testing.T) {
	env := newTestEnv(t, nil)
	meal := shareMeal(t, env, "maria@example.com", "Juicy Burger")
	cookie := env.signIn(t, "maria@example.com", "Maria")

	rec := env.get("/meals/"+meal.Slug, cookie)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/meals/"+meal.Slug+"/edit") {
		t.Error("expected owner to see the edit action")
	}
}

func TestShareRequiresSignin(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.get("/meals/share")

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/signin" {
		t.Errorf("expected redirect to /signin, got %q", loc)
	}
}

func TestShareCreatesMealAndRedirects(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.signIn(t, "maria@example.com", "Maria")

	body, contentType := mealForm(t, map[string]string{
		"creator":      "Maria",
		"title":        "Homemade Dumplings",
		"summary":      "Soft and comforting",
		"instructions": "Mix the dough.\n\nSteam for ten minutes.",
	}, testJPEG(t))

	rec := env.post("/meals/share", contentType, body, cookie)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parsing redirect location: %v", err)
	}
	if loc.Path != "/meals" {
		t.Errorf("expected redirect to /meals, got %q", loc.Path)
	}
	if loc.Query().Get("success") != "created" || loc.Query().Get("n") == "" {
		t.Errorf("expected a shared success marker, got %q", loc.RawQuery)
	}

	meal, err := env.repo.Get(context.Background(), "homemade-dumplings")
	if err != nil {
		t.Fatalf("expected the meal to exist: %v", err)
	}
	if meal.CreatorEmail != "maria@example.com" {
		t.Errorf("expected creator email from session, got %q", meal.CreatorEmail)
	}
}

func TestShareToastShowsOnce(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.signIn(t, "maria@example.com", "Maria")

	body, contentType := mealForm(t, map[string]string{
		"creator":      "Maria",
		"title":        "Toast Meal",
		"summary":      "Summary",
		"instructions": "Instructions here.",
	}, testJPEG(t))

	rec := env.post("/meals/share", contentType, body, cookie)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	location := rec.Header().Get("Location")
	cookie = env.sessionCookie(rec, cookie)

	first := env.get(location, cookie)
	if !strings.Contains(first.Body.String(), "Recipe shared successfully!") {
		t.Error("expected the toast after the redirect")
	}
	cookie = env.sessionCookie(first, cookie)

	second := env.get(location, cookie)
	if strings.Contains(second.Body.String(), "Recipe shared successfully!") {
		t.Error("expected the toast to be one-shot")
	}
}

func TestShareValidationFailureKeepsInput(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.signIn(t, "maria@example.com", "Maria")

	body, contentType := mealForm(t, map[string]string{
		"creator":      "Maria",
		"title":        "", // missing
		"summary":      "A summary that survives",
		"instructions": "Instructions here.",
	}, testJPEG(t))

	rec := env.post("/meals/share", contentType, body, cookie)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "A summary that survives") {
		t.Error("expected the submitted summary to be redisplayed")
	}
}

func TestShareMissingImageStaysOnForm(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.signIn(t, "maria@example.com", "Maria")

	body, contentType := mealForm(t, map[string]string{
		"creator":      "Maria",
		"title":        "No Image Meal",
		"summary":      "Summary",
		"instructions": "Instructions here.",
	}, nil)

	rec := env.post("/meals/share", contentType, body, cookie)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "please pick a recipe image") {
		t.Error("expected the missing-image message")
	}
}

func TestEditByOwner(t *testing.T) {
	env := newTestEnv(t, nil)
	meal := shareMeal(t, env, "maria@example.com", "Juicy Burger")
	cookie := env.signIn(t, "maria@example.com", "Maria")

	body, contentType := mealForm(t, map[string]string{
		"creator":      "Maria",
		"title":        "Juicy Burger",
		"summary":      "Even juicier now",
		"instructions": "Flip twice.",
	}, nil)

	rec := env.post("/meals/"+meal.Slug+"/edit", contentType, body, cookie)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	loc, _ := url.Parse(rec.Header().Get("Location"))
	if loc.Path != "/meals/"+meal.Slug {
		t.Errorf("expected redirect to the detail page, got %q", loc.Path)
	}
	if loc.Query().Get("success") != "updated" {
		t.Errorf("expected an updated success marker, got %q", loc.RawQuery)
	}

	updated, err := env.repo.Get(context.Background(), meal.Slug)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if updated.Summary != "Even juicier now" {
		t.Errorf("expected the summary to change, got %q", updated.Summary)
	}
}

func TestEditByNonOwnerIsForbidden(t *testing.T) {
	env := newTestEnv(t, nil)
	meal := shareMeal(t, env, "maria@example.com", "Juicy Burger")
	cookie := env.signIn(t, "mallory@example.com", "Mallory")

	body, contentType := mealForm(t, map[string]string{
		"creator":      "Mallory",
		"title":        "Hijacked",
		"summary":      "Mine now",
		"instructions": "None.",
	}, nil)

	rec := env.post("/meals/"+meal.Slug+"/edit", contentType, body, cookie)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	unchanged, err := env.repo.Get(context.Background(), meal.Slug)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if unchanged.Title != "Juicy Burger" {
		t.Errorf("expected the meal to be untouched, got title %q", unchanged.Title)
	}
}

func TestEditFormNonOwnerIsForbidden(t *testing.T) {
	env := newTestEnv(t, nil)
	meal := shareMeal(t, env, "maria@example.com", "Juicy Burger")
	cookie := env.signIn(t, "mallory@example.com", "Mallory")

	rec := env.get("/meals/"+meal.Slug+"/edit", cookie)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestDeleteByOwner(t *testing.T) {
	env := newTestEnv(t, nil)
	meal := shareMeal(t, env, "maria@example.com", "Juicy Burger")
	cookie := env.signIn(t, "maria@example.com", "Maria")

	rec := env.post("/meals/"+meal.Slug+"/delete", "application/x-www-form-urlencoded", nil, cookie)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/meals" {
		t.Errorf("expected redirect to /meals, got %q", loc)
	}

	if _, err := env.repo.Get(context.Background(), meal.Slug); err == nil {
		t.Error("expected the meal to be gone")
	}
}

func TestDeleteByNonOwnerFlashesOnList(t *testing.T) {
	env := newTestEnv(t, nil)
	meal := shareMeal(t, env, "maria@example.com", "Juicy Burger")
	cookie := env.signIn(t, "other@example.com", "Other")

	rec := env.post("/meals/"+meal.Slug+"/delete", "application/x-www-form-urlencoded", nil, cookie)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/meals" {
		t.Errorf("expected redirect to /meals, got %q", loc)
	}
	if _, err := env.repo.Get(context.Background(), meal.Slug); err != nil {
		t.Errorf("expected the meal untouched: %v", err)
	}

	list := env.get("/meals", env.sessionCookie(rec, cookie))
	if !strings.Contains(list.Body.String(), "You can only delete recipes you shared.") {
		t.Error("expected the flash on the meal list")
	}
}

func TestDeleteUnknownSlugFlashesOnList(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.signIn(t, "maria@example.com", "Maria")

	rec := env.post("/meals/no-such-meal/delete", "application/x-www-form-urlencoded", nil, cookie)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	list := env.get("/meals", env.sessionCookie(rec, cookie))
	if !strings.Contains(list.Body.String(), "That recipe no longer exists.") {
		t.Error("expected the flash on the meal list")
	}
}

func TestDeleteByAdmin(t *testing.T) {
	env := newTestEnv(t, nil)
	meal := shareMeal(t, env, "maria@example.com", "Juicy Burger")

	if _, err := env.queries.UpsertUser(context.Background(), "admin@example.com", "Admin"); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if err := env.queries.SetUserAdmin(context.Background(), "admin@example.com", true); err != nil {
		t.Fatalf("SetUserAdmin: %v", err)
	}
	cookie := env.signIn(t, "admin@example.com", "Admin")

	rec := env.post("/meals/"+meal.Slug+"/delete", "application/x-www-form-urlencoded", nil, cookie)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if _, err := env.repo.Get(context.Background(), meal.Slug); err == nil {
		t.Error("expected the meal to be gone")
	}
}
