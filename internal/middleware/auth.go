package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"qna/internal/auth"
	"qna/internal/entity"
)

type PrincipalSession interface {
	Principal(r *http.Request) (string, bool)
	ClearPrincipal(w http.ResponseWriter, r *http.Request) error
}

type PrincipalResolver interface {
	Deserialize(ctx context.Context, token string) (*entity.User, error)
}

// LoadPrincipal resolves the session principal once per request and stores
// the user in the request context. A principal that no longer resolves is
// removed from the session and the request continues anonymously; a store
// failure ends the request through onError.
func LoadPrincipal(sessions PrincipalSession, resolver PrincipalResolver, log *slog.Logger, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := sessions.Principal(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.Deserialize(r.Context(), token)
			if err != nil {
				onError(w, r, err)
				return
			}

			if user == nil {
				log.Info("session principal no longer resolves", "path", r.URL.Path)
				if err := sessions.ClearPrincipal(w, r); err != nil {
					log.Warn("clear session principal", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

// RequireAuth lets the request through only when a principal was resolved,
// otherwise it redirects to the login page and the requested action is dropped.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.UserFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
