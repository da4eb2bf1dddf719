// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GyGaByyyTe/nextlevel-food/internal/action"
	"github.com/GyGaByyyTe/nextlevel-food/internal/authz"
	"github.com/GyGaByyyTe/nextlevel-food/internal/meals"
	"github.com/GyGaByyyTe/nextlevel-food/internal/middleware"
	"github.com/GyGaByyyTe/nextlevel-food/internal/model"
	"github.com/GyGaByyyTe/nextlevel-food/internal/notify"
	"github.com/GyGaByyyTe/nextlevel-food/internal/render"
)

// MealsHandler handles the meal listing, detail and CRUD routes.
type MealsHandler struct {
	repo          *meals.Repository
	actions       *action.Actions
	relay         *notify.Relay
	renderer      *render.Renderer
	maxUploadSize int64
	log           *slog.Logger
}

// NewMealsHandler creates a new MealsHandler.
func NewMealsHandler(repo *meals.Repository, actions *action.Actions, relay *notify.Relay,
	renderer *render.Renderer, maxUploadSize int64, log *slog.Logger) *MealsHandler {
	return &MealsHandler{
		repo:          repo,
		actions:       actions,
		relay:         relay,
		renderer:      renderer,
		maxUploadSize: maxUploadSize,
		log:           log,
	}
}

type mealListData struct {
	Meals []model.Meal
}

type mealDetailData struct {
	Meal      *model.Meal
	CanModify bool
}

type mealFormData struct {
	Meal         *model.Meal
	Input        formInput
	ErrorField   string
	ErrorMessage string
}

// formInput is the redisplayable subset of a submitted meal form.
// Image bytes are never echoed back; the user reselects the file.
type formInput struct {
	Creator      string
	Title        string
	Summary      string
	Instructions string
}

// List renders the meal overview page.
func (h *MealsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		renderError(w, r, h.renderer, h.log, err)
		return
	}

	err = h.renderer.Render(w, r, "meals", render.TemplateData{
		Title:   "All Meals",
		Data:    mealListData{Meals: list},
		Session: middleware.GetSession(r),
		Toast:   h.consumeToast(r),
	})
	if err != nil {
		renderError(w, r, h.renderer, h.log, err)
	}
}

// Detail renders a single meal page.
func (h *MealsHandler) Detail(w http.ResponseWriter, r *http.Request) {
	meal, err := h.repo.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		renderError(w, r, h.renderer, h.log, err)
		return
	}

	sess := middleware.GetSession(r)
	err = h.renderer.Render(w, r, "meal_detail", render.TemplateData{
		Title: meal.Title,
		Data: mealDetailData{
			Meal:      meal,
			CanModify: authz.CanModify(sess, meal.CreatorEmail),
		},
		Session: sess,
		Toast:   h.consumeToast(r),
	})
	if err != nil {
		renderError(w, r, h.renderer, h.log, err)
	}
}

// ShareForm renders the empty share-meal form.
func (h *MealsHandler) ShareForm(w http.ResponseWriter, r *http.Request) {
	h.renderShareForm(w, r, http.StatusOK, mealFormData{})
}

// Share handles the share-meal form submission.
func (h *MealsHandler) Share(w http.ResponseWriter, r *http.Request) {
	input, form, err := h.parseMealForm(w, r, true)
	if err != nil {
		h.renderShareForm(w, r, http.StatusUnprocessableEntity, mealFormData{
			Input:        form,
			ErrorField:   "image",
			ErrorMessage: err.Error(),
		})
		return
	}

	outcome := h.actions.Share(r.Context(), middleware.GetSession(r), model.CreateMealInput{
		Title:         form.Title,
		Summary:       form.Summary,
		Instructions:  form.Instructions,
		Creator:       form.Creator,
		Image:         input.data,
		ImageFilename: input.filename,
	})

	switch outcome.Kind {
	case action.OutcomeRedirect:
		http.Redirect(w, r, outcome.Location, http.StatusSeeOther)
	case action.OutcomeForm:
		h.renderShareForm(w, r, http.StatusUnprocessableEntity, mealFormData{
			Input:        form,
			ErrorField:   outcome.Field,
			ErrorMessage: outcome.Message,
		})
	default:
		renderError(w, r, h.renderer, h.log, outcome.Err)
	}
}

// EditForm renders the edit form prefilled with the stored meal.
func (h *MealsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	meal, err := h.repo.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		renderError(w, r, h.renderer, h.log, err)
		return
	}
	if !authz.CanModify(middleware.GetSession(r), meal.CreatorEmail) {
		renderError(w, r, h.renderer, h.log, model.ErrUnauthorized)
		return
	}

	h.renderEditForm(w, r, http.StatusOK, mealFormData{
		Meal: meal,
		Input: formInput{
			Creator:      meal.Creator,
			Title:        meal.Title,
			Summary:      meal.Summary,
			Instructions: meal.Instructions,
		},
	})
}

// Edit handles the edit form submission.
func (h *MealsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	meal, err := h.repo.Get(r.Context(), slug)
	if err != nil {
		renderError(w, r, h.renderer, h.log, err)
		return
	}

	input, form, err := h.parseMealForm(w, r, false)
	if err != nil {
		h.renderEditForm(w, r, http.StatusUnprocessableEntity, mealFormData{
			Meal:         meal,
			Input:        form,
			ErrorField:   "image",
			ErrorMessage: err.Error(),
		})
		return
	}

	outcome := h.actions.Update(r.Context(), middleware.GetSession(r), slug, model.UpdateMealInput{
		Title:         form.Title,
		Summary:       form.Summary,
		Instructions:  form.Instructions,
		Creator:       form.Creator,
		Image:         input.data,
		ImageFilename: input.filename,
	})

	switch outcome.Kind {
	case action.OutcomeRedirect:
		http.Redirect(w, r, outcome.Location, http.StatusSeeOther)
	case action.OutcomeForm:
		h.renderEditForm(w, r, http.StatusUnprocessableEntity, mealFormData{
			Meal:         meal,
			Input:        form,
			ErrorField:   outcome.Field,
			ErrorMessage: outcome.Message,
		})
	default:
		renderError(w, r, h.renderer, h.log, outcome.Err)
	}
}

// Delete handles the delete confirmation form submission. Authorization
// and not-found faults land back on the list with a flash instead of an
// error page; the list itself is unchanged.
func (h *MealsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	outcome := h.actions.Delete(r.Context(), middleware.GetSession(r), chi.URLParam(r, "slug"))

	switch {
	case outcome.Kind == action.OutcomeRedirect:
		http.Redirect(w, r, outcome.Location, http.StatusSeeOther)
	case errors.Is(outcome.Err, model.ErrNotFound):
		h.renderer.SetFlash(r, "That recipe no longer exists.", "error")
		http.Redirect(w, r, RouteMeals, http.StatusSeeOther)
	case errors.Is(outcome.Err, model.ErrUnauthorized):
		h.renderer.SetFlash(r, "You can only delete recipes you shared.", "error")
		http.Redirect(w, r, RouteMeals, http.StatusSeeOther)
	default:
		renderError(w, r, h.renderer, h.log, outcome.Err)
	}
}

// consumeToast resolves the one-shot success marker from the query
// string, if any.
func (h *MealsHandler) consumeToast(r *http.Request) *notify.Toast {
	kind := r.URL.Query().Get(notify.ParamSuccess)
	if kind == "" {
		return nil
	}
	toast, ok := h.relay.Consume(r.Context(), kind, r.URL.Query().Get(notify.ParamNonce))
	if !ok {
		return nil
	}
	return toast
}

type uploadedImage struct {
	data     []byte
	filename string
}

// parseMealForm reads the multipart meal form. The image part is
// required on share and optional on edit; its absence on edit means
// "keep the stored image".
func (h *MealsHandler) parseMealForm(w http.ResponseWriter, r *http.Request, imageRequired bool) (uploadedImage, formInput, error) {
	var img uploadedImage

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return img, formInput{}, fmt.Errorf("the submitted form could not be read; the image may exceed the %d MB limit", h.maxUploadSize/(1<<20))
	}

	form := formInput{
		Creator:      r.FormValue("creator"),
		Title:        r.FormValue("title"),
		Summary:      r.FormValue("summary"),
		Instructions: r.FormValue("instructions"),
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		if imageRequired {
			return img, form, errors.New("please pick a recipe image")
		}
		return img, form, nil
	case err != nil:
		return img, form, fmt.Errorf("reading the image upload: %w", err)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return img, form, fmt.Errorf("reading the image upload: %w", err)
	}

	img.data = data
	img.filename = header.Filename
	return img, form, nil
}

func (h *MealsHandler) renderShareForm(w http.ResponseWriter, r *http.Request, status int, data mealFormData) {
	h.renderForm(w, r, "share", "Share a Recipe", status, data)
}

func (h *MealsHandler) renderEditForm(w http.ResponseWriter, r *http.Request, status int, data mealFormData) {
	h.renderForm(w, r, "edit", "Edit Recipe", status, data)
}

func (h *MealsHandler) renderForm(w http.ResponseWriter, r *http.Request, page, title string, status int, data mealFormData) {
	if status != http.StatusOK {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
	}
	err := h.renderer.Render(w, r, page, render.TemplateData{
		Title:   title,
		Data:    data,
		Session: middleware.GetSession(r),
	})
	if err != nil {
		h.log.Error("rendering meal form", "page", page, "error", err)
	}
}
