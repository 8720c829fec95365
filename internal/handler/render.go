package handler

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"qna/internal/auth"
	"qna/internal/repository"
	"qna/internal/templates"
)

type FlashStore interface {
	AddFlash(w http.ResponseWriter, r *http.Request, kind, message string) error
	Flashes(w http.ResponseWriter, r *http.Request) (map[string][]string, error)
}

// Renderer writes pages through the shared layout. Every page receives the
// current user and the pending flash notices.
type Renderer struct {
	pages map[string]*template.Template
	flash FlashStore
	log   *slog.Logger
}

func NewRenderer(pages map[string]*template.Template, flash FlashStore, log *slog.Logger) *Renderer {
	return &Renderer{pages: pages, flash: flash, log: log}
}

func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page, title string, data map[string]any) {
	tmpl, ok := rd.pages[page]
	if !ok {
		rd.log.Error("unknown page", "page", page)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = make(map[string]any)
	}
	data["Title"] = title
	data["CurrentUser"] = auth.UserFromContext(r.Context())

	messages, err := rd.flash.Flashes(w, r)
	if err != nil {
		rd.log.Warn("read flashes", "error", err)
	}
	data["Messages"] = messages

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		rd.log.Error("render page", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rd.Render(w, r, http.StatusNotFound, templates.NotFound, "Not found", nil)
}

// ServerError logs err and answers with the generic failure page.
func (rd *Renderer) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	rd.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	rd.Render(w, r, http.StatusInternalServerError, templates.ServerError, "Error", nil)
}

// Fail maps a store error to the 404 page or the generic failure page.
func (rd *Renderer) Fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		rd.NotFound(w, r)
		return
	}
	rd.ServerError(w, r, err)
}

// FlashRedirect queues a one-shot notice and redirects.
func (rd *Renderer) FlashRedirect(w http.ResponseWriter, r *http.Request, kind, message, to string) {
	if err := rd.flash.AddFlash(w, r, kind, message); err != nil {
		rd.log.Warn("add flash", "error", err)
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}
