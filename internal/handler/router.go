package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qna/internal/auth"
	"qna/internal/metrics"
	"qna/internal/middleware"
	"qna/internal/repository"
	"qna/internal/session"
)

var errPanic = errors.New("handler panicked")

type Deps struct {
	Auth     *auth.Service
	Resolver *auth.Resolver
	Sessions *session.Manager
	Store    repository.Manager
	Pages    map[string]*template.Template
	Log      *slog.Logger
}

// NewRouter registers every route once and wraps the mux in the middleware
// chain. LoadPrincipal sits outside the logger and metrics so that both see
// the request carrying the matched pattern.
func NewRouter(d Deps) http.Handler {
	render := NewRenderer(d.Pages, d.Sessions, d.Log)

	index := NewIndexHandler(render)
	health := NewHealthHandler(d.Store, d.Log)
	registration := NewRegistrationHandler(d.Auth, render, d.Log)
	login := NewLoginHandler(d.Auth, d.Resolver, d.Sessions, render, d.Log)
	questions := NewQuestionHandler(d.Store.Questions(), render, d.Log)

	gated := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", index.Root)
	mux.HandleFunc("GET /landing", index.Landing)

	mux.HandleFunc("GET /register", registration.RegisterPage)
	mux.HandleFunc("POST /register", registration.Register)
	mux.HandleFunc("GET /login", login.LoginPage)
	mux.HandleFunc("POST /login", login.Login)
	mux.HandleFunc("GET /logout", login.Logout)

	mux.Handle("GET /post-question", gated(questions.PostQuestionPage))
	mux.Handle("POST /post-question", gated(questions.PostQuestion))
	mux.HandleFunc("GET /view-questions", questions.ViewQuestions)
	mux.Handle("GET /answer-question/{id}", gated(questions.AnswerQuestionPage))
	mux.Handle("POST /answer-question/{id}", gated(questions.AnswerQuestion))
	mux.Handle("POST /like/{id}", gated(questions.Like))

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", health.Health)
	mux.HandleFunc("/", render.NotFound)

	return middleware.Chain(mux,
		middleware.Recover(d.Log, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			render.ServerError(w, r, errPanic)
		})),
		middleware.SecurityHeaders,
		middleware.LoadPrincipal(d.Sessions, d.Resolver, d.Log, render.ServerError),
		middleware.RequestLogger(d.Log),
		metrics.Middleware,
	)
}
