package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qna/internal/auth"
	"qna/internal/config"
	"qna/internal/entity"
	"qna/internal/logger"
	"qna/internal/repository"
	"qna/internal/session"
	"qna/internal/templates"
)

func newTestServer(t *testing.T, store repository.Manager) *httptest.Server {
	t.Helper()
	return newTestServerWith(t, store, config.SessionFilesystem, auth.PlainHasher{})
}

func newTestServerWith(t *testing.T, store repository.Manager, sessionKind string, passwords auth.PasswordHasher) *httptest.Server {
	t.Helper()
	log := logger.Discard()

	sessionStore, err := session.NewStore(session.Options{
		Kind:   sessionKind,
		Dir:    t.TempDir(),
		Secret: "handler-test-secret-handler-test-secret",
		MaxAge: time.Hour,
	}, log)
	require.NoError(t, err)

	pages, err := templates.Parse()
	require.NoError(t, err)

	router := NewRouter(Deps{
		Auth:     auth.NewService(store.Users(), passwords),
		Resolver: auth.NewResolver(store.Users()),
		Sessions: session.NewManager(sessionStore),
		Store:    store,
		Pages:    pages,
		Log:      log,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type browser struct {
	t    *testing.T
	base string
	c    *http.Client
}

func newBrowser(t *testing.T, srv *httptest.Server) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:    t,
		base: srv.URL,
		c: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type page struct {
	status   int
	location string
	body     string
}

func (b *browser) do(req *http.Request) page {
	b.t.Helper()
	resp, err := b.c.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return page{status: resp.StatusCode, location: resp.Header.Get("Location"), body: string(body)}
}

func (b *browser) get(path string) page {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) page {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) signUp(username, password string) {
	b.t.Helper()
	creds := url.Values{"username": {username}, "password": {password}}
	require.Equal(b.t, "/login", b.post("/register", creds).location)
	require.Equal(b.t, "/view-questions", b.post("/login", creds).location)
}

func onlyQuestion(t *testing.T, store repository.Manager) entity.Question {
	t.Helper()
	list, err := store.Questions().List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	return list[0]
}

func TestRootAndLanding(t *testing.T) {
	b := newBrowser(t, newTestServer(t, repository.NewMemoryManager()))

	root := b.get("/")
	assert.Equal(t, http.StatusSeeOther, root.status)
	assert.Equal(t, "/landing", root.location)

	landing := b.get("/landing")
	assert.Equal(t, http.StatusOK, landing.status)
	assert.Contains(t, landing.body, `href="/register"`)

	assert.Equal(t, http.StatusNotFound, b.get("/no-such-page").status)
}

func TestRegisterThenLogin(t *testing.T) {
	b := newBrowser(t, newTestServer(t, repository.NewMemoryManager()))
	creds := url.Values{"username": {"alice"}, "password": {"pw1"}}

	reg := b.post("/register", creds)
	assert.Equal(t, http.StatusSeeOther, reg.status)
	assert.Equal(t, "/login", reg.location)

	loginPage := b.get("/login")
	assert.Contains(t, loginPage.body, "Account created! You can now login.")
	assert.NotContains(t, b.get("/login").body, "Account created!", "flash shown once")

	login := b.post("/login", creds)
	assert.Equal(t, http.StatusSeeOther, login.status)
	assert.Equal(t, "/view-questions", login.location)

	assert.Contains(t, b.get("/view-questions").body, "Signed in as <strong>alice</strong>")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	store := repository.NewMemoryManager()
	b := newBrowser(t, newTestServer(t, store))

	b.post("/register", url.Values{"username": {"alice"}, "password": {"pw1"}})
	dup := b.post("/register", url.Values{"username": {"alice"}, "password": {"other"}})
	assert.Equal(t, "/register", dup.location)
	assert.Contains(t, b.get("/register").body, "User already exists")

	u, err := store.Users().FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "pw1", u.Password)
}

func TestRegister_MissingCredentials(t *testing.T) {
	store := repository.NewMemoryManager()
	b := newBrowser(t, newTestServer(t, store))

	res := b.post("/register", url.Values{"username": {"  "}, "password": {"pw"}})
	assert.Equal(t, "/register", res.location)
	assert.Contains(t, b.get("/register").body, "Missing credentials")

	_, err := store.Users().FindByUsername(context.Background(), "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRegister_PasswordTooLongForBcrypt(t *testing.T) {
	store := repository.NewMemoryManager()
	b := newBrowser(t, newTestServerWith(t, store, config.SessionFilesystem, auth.BcryptHasher{Cost: 4}))

	res := b.post("/register", url.Values{"username": {"alice"}, "password": {strings.Repeat("x", 80)}})
	assert.Equal(t, http.StatusSeeOther, res.status)
	assert.Equal(t, "/register", res.location)
	assert.Contains(t, b.get("/register").body, "Password must be at most 72 bytes")

	_, err := store.Users().FindByUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	b.signUp("alice", strings.Repeat("x", 72))
}

func TestLogin_Failures(t *testing.T) {
	srv := newTestServer(t, repository.NewMemoryManager())
	newBrowser(t, srv).post("/register", url.Values{"username": {"alice"}, "password": {"pw1"}})

	tests := []struct {
		name     string
		form     url.Values
		expected string
	}{
		{"unknown user", url.Values{"username": {"bob"}, "password": {"pw1"}}, "No user with that username"},
		{"wrong password", url.Values{"username": {"alice"}, "password": {"nope"}}, "Password incorrect"},
		{"missing password", url.Values{"username": {"alice"}}, "Missing credentials"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBrowser(t, srv)
			res := b.post("/login", tt.form)
			assert.Equal(t, http.StatusSeeOther, res.status)
			assert.Equal(t, "/login", res.location)

			body := b.get("/login").body
			assert.Contains(t, body, tt.expected)
			assert.NotContains(t, body, "Signed in as")
		})
	}
}

func TestGatedRoutesRedirectAnonymous(t *testing.T) {
	store := repository.NewMemoryManager()
	b := newBrowser(t, newTestServer(t, store))

	for _, res := range []page{
		b.get("/post-question"),
		b.post("/post-question", url.Values{"question": {"Q1"}}),
		b.get("/answer-question/anything"),
		b.post("/answer-question/anything", url.Values{"answer": {"A"}}),
		b.post("/like/anything", nil),
	} {
		assert.Equal(t, http.StatusSeeOther, res.status)
		assert.Equal(t, "/login", res.location)
	}

	list, err := store.Questions().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.Equal(t, http.StatusOK, b.get("/view-questions").status)
}

func TestPostQuestion(t *testing.T) {
	store := repository.NewMemoryManager()
	b := newBrowser(t, newTestServer(t, store))
	b.signUp("alice", "pw1")

	res := b.post("/post-question", url.Values{"question": {"  What is Go?  "}})
	assert.Equal(t, "/view-questions", res.location)

	q := onlyQuestion(t, store)
	assert.Equal(t, "What is Go?", q.Question)
	assert.Equal(t, "alice", q.User)
	assert.Empty(t, q.Answers)
	assert.Zero(t, q.Likes)

	assert.Contains(t, b.get("/view-questions").body, "What is Go?")
}

func TestPostQuestion_EmptyIsRejected(t *testing.T) {
	store := repository.NewMemoryManager()
	b := newBrowser(t, newTestServer(t, store))
	b.signUp("alice", "pw1")

	res := b.post("/post-question", url.Values{"question": {"   "}})
	assert.Equal(t, "/post-question", res.location)
	assert.Contains(t, b.get("/post-question").body, "Question cannot be empty")

	list, err := store.Questions().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAnswersAppendInOrder(t *testing.T) {
	store := repository.NewMemoryManager()
	srv := newTestServer(t, store)

	alice := newBrowser(t, srv)
	alice.signUp("alice", "pw1")
	alice.post("/post-question", url.Values{"question": {"Q1"}})
	id := onlyQuestion(t, store).ID

	bob := newBrowser(t, srv)
	bob.signUp("bob", "pw2")

	form := bob.get("/answer-question/" + id)
	assert.Equal(t, http.StatusOK, form.status)
	assert.Contains(t, form.body, "Q1")

	for _, text := range []string{"A1", "A2", "A3"} {
		res := bob.post("/answer-question/"+id, url.Values{"answer": {text}})
		assert.Equal(t, "/view-questions", res.location)
	}

	q, err := store.Questions().FindByID(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, q.Answers, 3)
	for i, text := range []string{"A1", "A2", "A3"} {
		assert.Equal(t, text, q.Answers[i].Text)
		assert.Equal(t, "bob", q.Answers[i].User)
	}
	assert.Equal(t, "alice", q.User)
}

func TestAnswer_EmptyRedirectsBack(t *testing.T) {
	store := repository.NewMemoryManager()
	b := newBrowser(t, newTestServer(t, store))
	b.signUp("alice", "pw1")
	b.post("/post-question", url.Values{"question": {"Q1"}})
	id := onlyQuestion(t, store).ID

	res := b.post("/answer-question/"+id, url.Values{"answer": {""}})
	assert.Equal(t, "/answer-question/"+id, res.location)
	assert.Contains(t, b.get(res.location).body, "Answer cannot be empty")
	assert.Empty(t, onlyQuestion(t, store).Answers)
}

func TestLikesCountEveryRequest(t *testing.T) {
	store := repository.NewMemoryManager()
	srv := newTestServer(t, store)

	alice := newBrowser(t, srv)
	alice.signUp("alice", "pw1")
	alice.post("/post-question", url.Values{"question": {"Q1"}})
	id := onlyQuestion(t, store).ID

	bob := newBrowser(t, srv)
	bob.signUp("bob", "pw2")

	for _, b := range []*browser{alice, bob, bob} {
		res := b.post("/like/"+id, nil)
		assert.Equal(t, http.StatusSeeOther, res.status)
		assert.Equal(t, "/view-questions", res.location)
	}

	assert.Equal(t, 3, onlyQuestion(t, store).Likes)
	assert.Contains(t, alice.get("/view-questions").body, "3 likes")
}

func TestUnknownQuestionIsNotFound(t *testing.T) {
	b := newBrowser(t, newTestServer(t, repository.NewMemoryManager()))
	b.signUp("alice", "pw1")

	assert.Equal(t, http.StatusNotFound, b.get("/answer-question/missing").status)
	assert.Equal(t, http.StatusNotFound, b.post("/answer-question/missing", url.Values{"answer": {"A"}}).status)
	assert.Equal(t, http.StatusNotFound, b.post("/like/missing", nil).status)
}

func TestLogout_ReplayedCookieIsAnonymous(t *testing.T) {
	for _, kind := range []string{config.SessionFilesystem, config.SessionCookie} {
		t.Run(kind, func(t *testing.T) {
			srv := newTestServerWith(t, repository.NewMemoryManager(), kind, auth.PlainHasher{})
			b := newBrowser(t, srv)
			b.signUp("alice", "pw1")

			base, err := url.Parse(srv.URL)
			require.NoError(t, err)
			saved := b.c.Jar.Cookies(base)
			require.NotEmpty(t, saved)

			res := b.get("/logout")
			assert.Equal(t, http.StatusSeeOther, res.status)
			assert.Equal(t, "/login", res.location)
			assert.Equal(t, "/login", b.get("/post-question").location)

			replay := newBrowser(t, srv)
			replay.c.Jar.SetCookies(base, saved)
			assert.Equal(t, "/login", replay.get("/post-question").location)
			assert.NotContains(t, replay.get("/view-questions").body, "Signed in as")

			b.post("/login", url.Values{"username": {"alice"}, "password": {"pw1"}})
			assert.Equal(t, http.StatusOK, b.get("/post-question").status)
		})
	}
}

func TestLogout_Anonymous(t *testing.T) {
	b := newBrowser(t, newTestServer(t, repository.NewMemoryManager()))
	res := b.get("/logout")
	assert.Equal(t, http.StatusSeeOther, res.status)
	assert.Equal(t, "/login", res.location)
}

func TestUserContentIsEscaped(t *testing.T) {
	store := repository.NewMemoryManager()
	b := newBrowser(t, newTestServer(t, store))
	b.signUp("alice", "pw1")
	b.post("/post-question", url.Values{"question": {"<script>alert(1)</script>"}})

	body := b.get("/view-questions").body
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

type unavailableStore struct {
	*repository.MemoryManager
}

func (unavailableStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthAndMetrics(t *testing.T) {
	b := newBrowser(t, newTestServer(t, repository.NewMemoryManager()))

	health := b.get("/healthz")
	assert.Equal(t, http.StatusOK, health.status)
	assert.Equal(t, "ok\n", health.body)

	b.get("/landing")
	m := b.get("/metrics")
	assert.Equal(t, http.StatusOK, m.status)
	assert.Contains(t, m.body, `qna_http_requests_total{method="GET",route="GET /landing",status="2xx"}`)

	down := newBrowser(t, newTestServer(t, unavailableStore{repository.NewMemoryManager()}))
	assert.Equal(t, http.StatusServiceUnavailable, down.get("/healthz").status)
}

func TestSecurityHeaders(t *testing.T) {
	b := newBrowser(t, newTestServer(t, repository.NewMemoryManager()))
	req, err := http.NewRequest(http.MethodGet, b.base+"/landing", nil)
	require.NoError(t, err)
	resp, err := b.c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}
