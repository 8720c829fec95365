package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"qna/internal/templates"
)

type IndexHandler struct {
	render *Renderer
}

func NewIndexHandler(render *Renderer) *IndexHandler {
	return &IndexHandler{render: render}
}

func (h *IndexHandler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/landing", http.StatusSeeOther)
}

func (h *IndexHandler) Landing(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, templates.Landing, "Welcome", nil)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
	log   *slog.Logger
}

func NewHealthHandler(store Pinger, log *slog.Logger) *HealthHandler {
	return &HealthHandler{store: store, log: log}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn("health check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("unavailable\n"))
		return
	}
	w.Write([]byte("ok\n"))
}
