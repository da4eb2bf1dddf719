// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler contains the HTTP handlers for all routes: the
// public pages, the meal CRUD surface, and the sign-in flow.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/GyGaByyyTe/nextlevel-food/internal/middleware"
	"github.com/GyGaByyyTe/nextlevel-food/internal/model"
	"github.com/GyGaByyyTe/nextlevel-food/internal/render"
)

// Common routes used in redirects.
const (
	RouteRoot   = "/"
	RouteMeals  = "/meals"
	RouteSignin = "/signin"
)

type errorPageData struct {
	Heading string
	Detail  string
}

// renderError writes a status page for the given error, mapping the
// domain sentinels to their HTTP statuses.
func renderError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, log *slog.Logger, err error) {
	status := http.StatusInternalServerError
	data := errorPageData{
		Heading: "Something went wrong",
		Detail:  "An unexpected error occurred. Please try again later.",
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
		data.Heading = "Not found"
		data.Detail = "The recipe you are looking for does not exist."
	case errors.Is(err, model.ErrUnauthorized):
		status = http.StatusForbidden
		data.Heading = "Not allowed"
		data.Detail = "You can only modify recipes you created."
	case errors.Is(err, model.ErrUnauthenticated):
		// No status page for this one: the sign-in flow handles it.
		http.Redirect(w, r, RouteSignin, http.StatusSeeOther)
		return
	default:
		log.Error("request failed", "path", r.URL.Path, "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	renderErr := renderer.Render(w, r, "error", render.TemplateData{
		Title:   data.Heading,
		Data:    data,
		Session: middleware.GetSession(r),
	})
	if renderErr != nil {
		log.Error("rendering error page", "error", renderErr)
	}
}
