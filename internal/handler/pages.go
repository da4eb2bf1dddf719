// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/GyGaByyyTe/nextlevel-food/internal/middleware"
	"github.com/GyGaByyyTe/nextlevel-food/internal/render"
)

// PagesHandler serves the static marketing pages.
type PagesHandler struct {
	renderer *render.Renderer
	log      *slog.Logger
}

// NewPagesHandler creates a new PagesHandler.
func NewPagesHandler(renderer *render.Renderer, log *slog.Logger) *PagesHandler {
	return &PagesHandler{renderer: renderer, log: log}
}

// Home renders the landing page.
func (h *PagesHandler) Home(w http.ResponseWriter, r *http.Request) {
	err := h.renderer.Render(w, r, "home", render.TemplateData{
		Session: middleware.GetSession(r),
	})
	if err != nil {
		renderError(w, r, h.renderer, h.log, err)
	}
}

// Community renders the community page.
func (h *PagesHandler) Community(w http.ResponseWriter, r *http.Request) {
	err := h.renderer.Render(w, r, "community", render.TemplateData{
		Title:   "Community",
		Session: middleware.GetSession(r),
	})
	if err != nil {
		renderError(w, r, h.renderer, h.log, err)
	}
}

// NotFound renders the 404 page for unmatched routes.
func (h *PagesHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	err := h.renderer.Render(w, r, "error", render.TemplateData{
		Title: "Not found",
		Data: errorPageData{
			Heading: "Not found",
			Detail:  "The page you are looking for does not exist.",
		},
		Session: middleware.GetSession(r),
	})
	if err != nil {
		h.log.Error("rendering not-found page", "error", err)
	}
}
