// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package action implements the form mutations behind the share, edit
// and delete endpoints. Each action returns an Outcome: either a
// redirect target or a form re-render with an error message, never
// both.
package action

import (
	"context"
	"errors"
	"log/slog"

	"github.com/GyGaByyyTe/nextlevel-food/internal/authz"
	"github.com/GyGaByyyTe/nextlevel-food/internal/meals"
	"github.com/GyGaByyyTe/nextlevel-food/internal/model"
	"github.com/GyGaByyyTe/nextlevel-food/internal/notify"
	"github.com/GyGaByyyTe/nextlevel-food/internal/validate"
)

// OutcomeKind discriminates the Outcome variants.
type OutcomeKind int

const (
	// OutcomeRedirect sends the browser to Location.
	OutcomeRedirect OutcomeKind = iota

	// OutcomeForm re-renders the submitting form with Field/Message
	// set and the submitted values preserved.
	OutcomeForm

	// OutcomeError aborts with Err; the handler maps it to a status
	// page. Used where a resubmittable form is not the surface.
	OutcomeError
)

// Outcome is the tagged result of a form action.
type Outcome struct {
	Kind     OutcomeKind
	Location string
	Field    string
	Message  string
	Err      error
}

func redirect(location string) Outcome {
	return Outcome{Kind: OutcomeRedirect, Location: location}
}

func formError(field, message string) Outcome {
	return Outcome{Kind: OutcomeForm, Field: field, Message: message}
}

func failure(err error) Outcome {
	return Outcome{Kind: OutcomeError, Err: err}
}

// Actions wires the meal repository and the toast relay into the form
// endpoints.
type Actions struct {
	repo  *meals.Repository
	relay *notify.Relay
	log   *slog.Logger
}

// New creates the action set.
func New(repo *meals.Repository, relay *notify.Relay, log *slog.Logger) *Actions {
	return &Actions{repo: repo, relay: relay, log: log}
}

// Share validates and persists a new meal. The creator email is bound
// from the session, never from the form. On success the browser lands
// on the meal listing with a one-shot shared toast.
func (a *Actions) Share(ctx context.Context, session *model.Session, input model.CreateMealInput) Outcome {
	if session == nil {
		return failure(model.ErrUnauthenticated)
	}
	input.CreatorEmail = session.Email

	if err := validate.Create(input); err != nil {
		return validationOutcome(err)
	}

	if _, err := a.repo.Create(ctx, input); err != nil {
		return a.mutationFailure("share", err)
	}

	return redirect("/meals?" + a.relay.Latch(ctx, notify.KindCreated))
}

// Update validates and applies an edit to an existing meal. Ownership
// is enforced here: a non-owner session gets an error before the
// repository is touched.
func (a *Actions) Update(ctx context.Context, session *model.Session, slug string, input model.UpdateMealInput) Outcome {
	if session == nil {
		return failure(model.ErrUnauthenticated)
	}

	existing, err := a.repo.Get(ctx, slug)
	if err != nil {
		return failure(err)
	}
	if !authz.CanModify(session, existing.CreatorEmail) {
		return failure(model.ErrUnauthorized)
	}

	if err := validate.Update(input); err != nil {
		return validationOutcome(err)
	}

	if _, err := a.repo.Update(ctx, slug, input); err != nil {
		return a.mutationFailure("update", err)
	}

	return redirect("/meals/" + slug + "?" + a.relay.Latch(ctx, notify.KindUpdated))
}

// Delete removes a meal after an ownership check. Success lands on the
// meal listing without a toast marker; the disappearance of the meal
// is the feedback.
func (a *Actions) Delete(ctx context.Context, session *model.Session, slug string) Outcome {
	if session == nil {
		return failure(model.ErrUnauthenticated)
	}

	if err := a.repo.Delete(ctx, slug, session.Email, session.IsAdmin); err != nil {
		return failure(err)
	}

	return redirect("/meals")
}

// validationOutcome converts a validation error to a form re-render.
func validationOutcome(err error) Outcome {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return formError(ve.Field, ve.Message)
	}
	return formError("", err.Error())
}

// mutationFailure maps repository errors to form outcomes. Everything
// the user can fix by resubmitting stays on the form.
func (a *Actions) mutationFailure(op string, err error) Outcome {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return formError(ve.Field, ve.Message)
	case errors.Is(err, model.ErrSlugConflict):
		return formError(validate.FieldTitle, model.ErrSlugConflict.Error())
	case errors.Is(err, model.ErrNotFound):
		return failure(err)
	default:
		a.log.Error("meal mutation failed", "op", op, "error", err)
		return formError("", "Saving the recipe failed. Please try again.")
	}
}
