package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"qna/internal/auth"
	"qna/internal/entity"
	"qna/internal/metrics"
	"qna/internal/session"
	"qna/internal/templates"
)

type Registrar interface {
	Register(ctx context.Context, username, password string) (*entity.User, error)
}

type RegistrationHandler struct {
	users  Registrar
	render *Renderer
	log    *slog.Logger
}

func NewRegistrationHandler(users Registrar, render *Renderer, log *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{users: users, render: render, log: log}
}

func (h *RegistrationHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, templates.Register, "Register", nil)
}

func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	form, err := parseCredentials(r)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		h.render.FlashRedirect(w, r, session.FlashError, "Missing credentials", "/register")
		return
	}

	user, err := h.users.Register(r.Context(), form.Username, form.Password)
	switch {
	case errors.Is(err, auth.ErrDuplicateUsername):
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		h.render.FlashRedirect(w, r, session.FlashError, "User already exists", "/register")
		return
	case errors.Is(err, auth.ErrPasswordTooLong):
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		h.render.FlashRedirect(w, r, session.FlashError, "Password must be at most 72 bytes", "/register")
		return
	case err != nil:
		h.render.ServerError(w, r, err)
		return
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	h.log.Info("user registered", "username", user.Username, "user_id", user.ID)
	h.render.FlashRedirect(w, r, session.FlashSuccess, "Account created! You can now login.", "/login")
}
