// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"html/template"
	"io/fs"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GyGaByyyTe/nextlevel-food/internal/model"
	"github.com/GyGaByyyTe/nextlevel-food/internal/notify"
	"github.com/GyGaByyyTe/nextlevel-food/web"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()

	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("sub templates: %v", err)
	}
	r, err := New(Config{TemplatesFS: templates, IsDev: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestAllPagesParse(t *testing.T) {
	r := newTestRenderer(t)

	for _, page := range []string{"home", "community", "meals", "meal_detail", "share", "edit", "signin", "error"} {
		if _, ok := r.templates[page]; !ok {
			t.Errorf("expected page template %q to be parsed", page)
		}
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	r := newTestRenderer(t)

	rec := httptest.NewRecorder()
	err := r.Render(rec, httptest.NewRequest("GET", "/", nil), "nope", TemplateData{})
	if err == nil {
		t.Error("expected an error for an unknown template")
	}
}

func TestRenderMealDetail(t *testing.T) {
	r := newTestRenderer(t)

	meal := &model.Meal{
		Title:        "Juicy Burger",
		Slug:         "juicy-burger",
		Summary:      "A juicy burger.",
		Instructions: "Grill the patty.\n\nAssemble the burger.",
		Creator:      "Maria",
		CreatorEmail: "maria@example.com",
		Image:        "/images/juicy-burger-1700000000.jpg",
		CreatedAt:    time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}

	rec := httptest.NewRecorder()
	err := r.Render(rec, httptest.NewRequest("GET", "/meals/juicy-burger", nil), "meal_detail", TemplateData{
		Title: meal.Title,
		Data: struct {
			Meal      *model.Meal
			CanModify bool
		}{Meal: meal, CanModify: false},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "Juicy Burger") {
		t.Error("expected the title in the output")
	}
	if !strings.Contains(body, "Mar 14, 2026") {
		t.Error("expected the formatted share date")
	}
	// The markdown func turns the paragraph break into separate <p>
	// elements.
	if !strings.Contains(body, "<p>Grill the patty.</p>") {
		t.Error("expected instructions rendered as paragraphs")
	}
	if strings.Contains(body, "/delete") {
		t.Error("expected no delete action without modify rights")
	}
}

func TestMarkdownStripsScriptVectors(t *testing.T) {
	r := newTestRenderer(t)

	fn := r.templateFuncs()["markdown"].(func(string) template.HTML)

	// Link destinations are markdown, not HTML, so the write-time
	// sanitization never sees them.
	got := string(fn("[click me](javascript:alert(1))"))
	if strings.Contains(got, "javascript:") {
		t.Errorf("expected the javascript: href stripped, got %q", got)
	}
	if !strings.Contains(got, "click me") {
		t.Errorf("expected the link text kept, got %q", got)
	}

	got = string(fn("<script>alert(1)</script>\n\nStir well."))
	if strings.Contains(got, "<script>") {
		t.Errorf("expected the script element stripped, got %q", got)
	}
	if !strings.Contains(got, "Stir well.") {
		t.Errorf("expected the benign text kept, got %q", got)
	}

	if got := string(fn("[recipe](https://example.com/ramen)")); !strings.Contains(got, `href="https://example.com/ramen"`) {
		t.Errorf("expected the https link kept, got %q", got)
	}
}

func TestRenderToast(t *testing.T) {
	r := newTestRenderer(t)

	rec := httptest.NewRecorder()
	err := r.Render(rec, httptest.NewRequest("GET", "/meals", nil), "meals", TemplateData{
		Data:  struct{ Meals []model.Meal }{},
		Toast: &notify.Toast{Kind: "created", Message: "Recipe shared successfully!"},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Recipe shared successfully!") {
		t.Error("expected the toast message in the output")
	}
}

func TestTruncateFunc(t *testing.T) {
	r := newTestRenderer(t)

	fn := r.templateFuncs()["truncate"].(func(string, int) string)
	if got := fn("short", 10); got != "short" {
		t.Errorf("truncate(short, 10) = %q", got)
	}
	if got := fn("a longer sentence", 8); got != "a longer..." {
		t.Errorf("truncate = %q", got)
	}
}
