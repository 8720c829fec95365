// Package session keeps the login principal and one-shot flash notices in
// a gorilla/sessions store keyed by the qna_session cookie.
package session

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"qna/internal/config"
)

const (
	CookieName = "qna_session"

	principalKey = "user_id"
	loginIDKey   = "login_id"
	flashPrefix  = "flash_"

	defaultMaxAge = 24 * time.Hour

	FlashError   = "error"
	FlashSuccess = "success"
)

var flashKinds = []string{FlashError, FlashSuccess}

type Options struct {
	Kind          string
	Dir           string
	Secret        string
	EncryptionKey string
	MaxAge        time.Duration
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Kind:          cfg.SessionStore,
		Dir:           cfg.SessionDir,
		Secret:        cfg.SessionSecret,
		EncryptionKey: cfg.SessionEncryptionKey,
		MaxAge:        cfg.SessionMaxAge,
	}
}

// NewStore builds the gorilla store. The filesystem store keeps session
// values on the server, so a cookie replayed after logout resolves to nothing.
// The cookie store keeps them in the signed cookie itself.
func NewStore(opts Options, log *slog.Logger) (sessions.Store, error) {
	hashKey := []byte(opts.Secret)
	if len(hashKey) == 0 {
		log.Warn("SESSION_SECRET not set, using a random key; sessions will not survive a restart")
		hashKey = securecookie.GenerateRandomKey(64)
	}
	keyPairs := [][]byte{hashKey}
	if opts.EncryptionKey != "" {
		keyPairs = append(keyPairs, []byte(opts.EncryptionKey))
	}

	cookieOpts := &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	maxAge := int(opts.MaxAge.Seconds())

	switch opts.Kind {
	case config.SessionFilesystem, "":
		if err := os.MkdirAll(opts.Dir, 0o700); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
		store := sessions.NewFilesystemStore(opts.Dir, keyPairs...)
		store.MaxLength(0)
		store.Options = cookieOpts
		store.MaxAge(maxAge)
		return store, nil
	case config.SessionCookie:
		store := sessions.NewCookieStore(keyPairs...)
		store.Options = cookieOpts
		store.MaxAge(maxAge)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown session store %q", opts.Kind)
	}
}

// Manager reads and writes the principal and flashes. Every login gets its
// own login id; logout revokes it, so a copy of the cookie taken before logout
// stays anonymous even with the cookie store, where the values travel in the
// cookie itself.
type Manager struct {
	store   sessions.Store
	name    string
	revoked *revocations
}

func NewManager(store sessions.Store) *Manager {
	return &Manager{store: store, name: CookieName, revoked: newRevocations(storeMaxAge(store))}
}

func storeMaxAge(store sessions.Store) time.Duration {
	var opts *sessions.Options
	switch s := store.(type) {
	case *sessions.CookieStore:
		opts = s.Options
	case *sessions.FilesystemStore:
		opts = s.Options
	}
	if opts == nil || opts.MaxAge <= 0 {
		return defaultMaxAge
	}
	return time.Duration(opts.MaxAge) * time.Second
}

// get never fails: an undecodable, expired or erased session comes back as
// a fresh anonymous one.
func (m *Manager) get(r *http.Request) *sessions.Session {
	s, _ := m.store.Get(r, m.name)
	return s
}

func (m *Manager) Principal(r *http.Request) (string, bool) {
	s := m.get(r)
	id, ok := s.Values[principalKey].(string)
	if !ok || id == "" {
		return "", false
	}
	loginID, ok := s.Values[loginIDKey].(string)
	if !ok || loginID == "" || m.revoked.has(loginID) {
		return "", false
	}
	return id, true
}

func (m *Manager) SetPrincipal(w http.ResponseWriter, r *http.Request, token string) error {
	s := m.get(r)
	s.Values[principalKey] = token
	s.Values[loginIDKey] = uuid.NewString()
	return m.save(w, r, s)
}

func (m *Manager) ClearPrincipal(w http.ResponseWriter, r *http.Request) error {
	s := m.get(r)
	if _, ok := s.Values[principalKey]; !ok {
		return nil
	}
	delete(s.Values, principalKey)
	delete(s.Values, loginIDKey)
	return m.save(w, r, s)
}

// Destroy revokes the current login, drops every value and expires the
// cookie. With the filesystem store the server-side record is erased too.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) error {
	s := m.get(r)
	if loginID, ok := s.Values[loginIDKey].(string); ok && loginID != "" {
		m.revoked.add(loginID)
	}
	for k := range s.Values {
		delete(s.Values, k)
	}
	s.Options.MaxAge = -1
	if s.IsNew {
		http.SetCookie(w, sessions.NewCookie(m.name, "", s.Options))
		return nil
	}
	return m.save(w, r, s)
}

func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, kind, message string) error {
	s := m.get(r)
	s.AddFlash(message, flashPrefix+kind)
	return m.save(w, r, s)
}

// Flashes returns pending notices by kind and discards them.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) (map[string][]string, error) {
	s := m.get(r)
	out := make(map[string][]string)
	for _, kind := range flashKinds {
		for _, f := range s.Flashes(flashPrefix + kind) {
			if msg, ok := f.(string); ok {
				out[kind] = append(out[kind], msg)
			}
		}
	}
	if len(out) == 0 {
		return out, nil
	}
	return out, m.save(w, r, s)
}

func (m *Manager) save(w http.ResponseWriter, r *http.Request, s *sessions.Session) error {
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
