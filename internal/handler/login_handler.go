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

type Verifier interface {
	Verify(ctx context.Context, username, password string) (*entity.User, error)
}

type Serializer interface {
	Serialize(user *entity.User) string
}

type LoginSession interface {
	SetPrincipal(w http.ResponseWriter, r *http.Request, token string) error
	Destroy(w http.ResponseWriter, r *http.Request) error
}

type LoginHandler struct {
	users    Verifier
	resolver Serializer
	sessions LoginSession
	render   *Renderer
	log      *slog.Logger
}

func NewLoginHandler(users Verifier, resolver Serializer, sessions LoginSession, render *Renderer, log *slog.Logger) *LoginHandler {
	return &LoginHandler{users: users, resolver: resolver, sessions: sessions, render: render, log: log}
}

func (h *LoginHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, templates.Login, "Log in", nil)
}

func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	form, err := parseCredentials(r)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		h.render.FlashRedirect(w, r, session.FlashError, "Missing credentials", "/login")
		return
	}

	user, err := h.users.Verify(r.Context(), form.Username, form.Password)
	switch {
	case errors.Is(err, auth.ErrNoSuchUser):
		metrics.LoginsTotal.WithLabelValues("no_such_user").Inc()
		h.render.FlashRedirect(w, r, session.FlashError, "No user with that username", "/login")
		return
	case errors.Is(err, auth.ErrBadPassword):
		metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
		h.render.FlashRedirect(w, r, session.FlashError, "Password incorrect", "/login")
		return
	case err != nil:
		h.render.ServerError(w, r, err)
		return
	}

	if err := h.sessions.SetPrincipal(w, r, h.resolver.Serialize(user)); err != nil {
		h.render.ServerError(w, r, err)
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.log.Info("user logged in", "username", user.Username, "user_id", user.ID)
	http.Redirect(w, r, "/view-questions", http.StatusSeeOther)
}

// Logout works for anonymous visitors too; it always ends on the login page.
func (h *LoginHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if user := auth.UserFromContext(r.Context()); user != nil {
		h.log.Info("user logged out", "username", user.Username)
	}
	if err := h.sessions.Destroy(w, r); err != nil {
		h.log.Warn("destroy session", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
