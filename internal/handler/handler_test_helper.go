// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/color"
	"image/jpeg"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/GyGaByyyTe/nextlevel-food/internal/action"
	"github.com/GyGaByyyTe/nextlevel-food/internal/auth"
	"github.com/GyGaByyyTe/nextlevel-food/internal/cache"
	"github.com/GyGaByyyTe/nextlevel-food/internal/imaging"
	"github.com/GyGaByyyTe/nextlevel-food/internal/meals"
	"github.com/GyGaByyyTe/nextlevel-food/internal/middleware"
	"github.com/GyGaByyyTe/nextlevel-food/internal/notify"
	"github.com/GyGaByyyTe/nextlevel-food/internal/render"
	"github.com/GyGaByyyTe/nextlevel-food/internal/session"
	"github.com/GyGaByyyTe/nextlevel-food/internal/storage"
	"github.com/GyGaByyyTe/nextlevel-food/internal/store"
	"github.com/GyGaByyyTe/nextlevel-food/internal/testutil"
	"github.com/GyGaByyyTe/nextlevel-food/web"
)

// testEnv bundles the wired application pieces a handler test needs.
type testEnv struct {
	db       *sql.DB
	queries  *store.Queries
	repo     *meals.Repository
	sessions *scs.SessionManager
	router   http.Handler
}

// newTestEnv wires the full handler stack over a temp database and a
// filesystem image store, with an optional OAuth provider.
func newTestEnv(t *testing.T, provider auth.Provider) *testEnv {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	queries := store.New(db)
	log := testutil.TestLogger()

	images, err := storage.NewFSStore(t.TempDir(), "http://localhost:8080")
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}

	backend := cache.NewMemoryCache(time.Minute, time.Minute)
	t.Cleanup(func() { _ = backend.Close() })

	repo := meals.NewRepository(queries, images, imaging.NewProcessor(256), cache.NewMealCache(backend, time.Minute), log)

	sm := scs.New()
	sm.Lifetime = time.Hour

	relay := notify.NewRelay(sm)
	actions := action.New(repo, relay, log)

	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("sub templates: %v", err)
	}
	renderer, err := render.New(render.Config{TemplatesFS: templates, SessionManager: sm, IsDev: true})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	mealsHandler := NewMealsHandler(repo, actions, relay, renderer, 10<<20, log)
	authHandler := NewAuthHandler(db, provider, sm, renderer, log)
	pagesHandler := NewPagesHandler(renderer, log)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Use(middleware.LoadUser(sm, db))

	r.Get("/", pagesHandler.Home)
	r.Get("/community", pagesHandler.Community)
	r.Get("/meals", mealsHandler.List)
	r.Get("/meals/{slug}", mealsHandler.Detail)
	r.Get("/signin", authHandler.SigninForm)
	r.Get("/auth/google", authHandler.GoogleStart)
	r.Get("/auth/callback", authHandler.GoogleCallback)
	r.Post("/signout", authHandler.Signout)
	r.Get("/api/auth/session", authHandler.Session)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser(sm))
		r.Get("/meals/share", mealsHandler.ShareForm)
		r.Post("/meals/share", mealsHandler.Share)
		r.Get("/meals/{slug}/edit", mealsHandler.EditForm)
		r.Post("/meals/{slug}/edit", mealsHandler.Edit)
		r.Post("/meals/{slug}/delete", mealsHandler.Delete)
	})

	return &testEnv{
		db:       db,
		queries:  queries,
		repo:     repo,
		sessions: sm,
		router:   r,
	}
}

// signIn creates a user row and returns a session cookie bound to it.
func (env *testEnv) signIn(t *testing.T, email, name string) *http.Cookie {
	t.Helper()

	user, err := env.queries.UpsertUser(context.Background(), email, name)
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}

	var cookie *http.Cookie
	handler := env.sessions.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.sessions.Put(r.Context(), session.KeyUserID, user.ID)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	for _, c := range rec.Result().Cookies() {
		if c.Name == env.sessions.Cookie.Name {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("expected a session cookie")
	}
	return cookie
}

// get performs a GET against the test router.
func (env *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

// post performs a POST with the given body and content type.
func (env *testEnv) post(path, contentType string, body *bytes.Buffer, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(http.MethodPost, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

// sessionCookie extracts the refreshed session cookie from a response,
// falling back to the request cookie when the response set none.
func (env *testEnv) sessionCookie(rec *httptest.ResponseRecorder, fallback *http.Cookie) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == env.sessions.Cookie.Name && c.MaxAge >= 0 {
			return c
		}
	}
	return fallback
}

// testJPEG returns an encoded JPEG for upload tests.
func testJPEG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 10), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding test jpeg: %v", err)
	}
	return buf.Bytes()
}

// mealForm builds a multipart meal form body. A nil image omits the
// file part.
func mealForm(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("writing form field %s: %v", name, err)
		}
	}
	if image != nil {
		part, err := mw.CreateFormFile("image", "upload.jpg")
		if err != nil {
			t.Fatalf("creating file part: %v", err)
		}
		if _, err := part.Write(image); err != nil {
			t.Fatalf("writing file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return body, mw.FormDataContentType()
}
