package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"goblog-api/internal/bootstrap"
	"goblog-api/internal/config"
	"goblog-api/internal/pkg/jwtutil"
	"goblog-api/internal/transport/http/response"
)

type testServer struct {
	t      *testing.T
	app    *bootstrap.App
	router *gin.Engine
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.App.GinMode = gin.TestMode
	cfg.Database.Driver = config.DriverMemory
	cfg.Auth.BcryptCost = 4
	cfg.Auth.JWTSecret = "router-test-secret"
	cfg.Redis.Enabled = false
	cfg.RabbitMQ.Enabled = false
	for _, m := range mutate {
		m(cfg)
	}

	a, err := bootstrap.New(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return &testServer{t: t, app: a, router: NewRouter(a)}
}

func (s *testServer) do(method, path, token, contentType string, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		s.t.Fatal(err)
	}
	return s.do(method, path, token, "application/json", string(raw))
}

func (s *testServer) doForm(method, path, token string, form url.Values) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.do(method, path, token, "application/x-www-form-urlencoded", form.Encode())
}

func (s *testServer) register(email string) uint {
	s.t.Helper()
	w := s.doJSON(http.MethodPost, "/register", "", map[string]string{
		"email":      email,
		"password":   "password123",
		"first_name": "First",
		"last_name":  "Last",
	})
	if w.Code != http.StatusOK {
		s.t.Fatalf("register %s: %d %s", email, w.Code, w.Body)
	}
	var out struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	decode(s.t, w, &out)
	return out.Data.ID
}

func (s *testServer) login(email string) string {
	s.t.Helper()
	w := s.doForm(http.MethodPost, "/login", "", url.Values{"email": {email}, "password": {"password123"}})
	if w.Code != http.StatusOK {
		s.t.Fatalf("login %s: %d %s", email, w.Code, w.Body)
	}
	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decode(s.t, w, &out)
	if out.TokenType != "bearer" || out.AccessToken == "" {
		s.t.Fatalf("unexpected token body %s", w.Body)
	}
	return out.AccessToken
}

type postEnvelope struct {
	Code int `json:"code"`
	Data struct {
		ID        uint      `json:"id"`
		Title     string    `json:"title"`
		Body      string    `json:"body"`
		UserID    uint      `json:"user_id"`
		Timestamp time.Time `json:"timestamp"`
	} `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestRegisterResponseHidesHash(t *testing.T) {
	s := newTestServer(t)
	w := s.doJSON(http.MethodPost, "/register", "", map[string]string{
		"email": "a@x.com", "password": "password123", "first_name": "A", "last_name": "B",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register: %d %s", w.Code, w.Body)
	}
	body := w.Body.String()
	if strings.Contains(body, "password") || strings.Contains(body, "$2a$") {
		t.Fatalf("response leaks credentials: %s", body)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.register("a@x.com")
	w := s.doJSON(http.MethodPost, "/register", "", map[string]string{
		"email": "a@x.com", "password": "password456", "first_name": "C", "last_name": "D",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate: %d %s", w.Code, w.Body)
	}
	var env response.APIResponse
	decode(t, w, &env)
	if env.Code != response.CodeEmailExists {
		t.Fatalf("code = %d", env.Code)
	}
	s.login("a@x.com")
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)
	w := s.doJSON(http.MethodPost, "/register", "", map[string]string{"email": "not-an-email", "password": "x"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid payload: %d", w.Code)
	}
}

func TestLoginFailures(t *testing.T) {
	s := newTestServer(t)
	s.register("a@x.com")

	wrong := s.doForm(http.MethodPost, "/login", "", url.Values{"email": {"a@x.com"}, "password": {"nope-nope"}})
	unknown := s.doForm(http.MethodPost, "/login", "", url.Values{"email": {"ghost@x.com"}, "password": {"password123"}})
	if wrong.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("wrong=%d unknown=%d, both want 401", wrong.Code, unknown.Code)
	}
	if wrong.Body.String() != unknown.Body.String() {
		t.Fatalf("login failures must be indistinguishable: %s vs %s", wrong.Body, unknown.Body)
	}
	if wrong.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Fatalf("missing WWW-Authenticate header")
	}

	missing := s.doForm(http.MethodPost, "/login", "", url.Values{"email": {"a@x.com"}})
	if missing.Code != http.StatusBadRequest {
		t.Fatalf("missing password: %d", missing.Code)
	}
}

func TestLoginRevealUnknownEmail(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Auth.RevealUnknownEmail = true })
	s.register("a@x.com")

	unknown := s.doForm(http.MethodPost, "/login", "", url.Values{"email": {"ghost@x.com"}, "password": {"password123"}})
	if unknown.Code != http.StatusNotFound {
		t.Fatalf("unknown email: %d", unknown.Code)
	}
	wrong := s.doForm(http.MethodPost, "/login", "", url.Values{"email": {"a@x.com"}, "password": {"nope-nope"}})
	if wrong.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: %d", wrong.Code)
	}
}

func TestLoginAcceptsOAuth2Username(t *testing.T) {
	s := newTestServer(t)
	s.register("a@x.com")
	w := s.doForm(http.MethodPost, "/login", "", url.Values{
		"grant_type": {"password"}, "username": {"a@x.com"}, "password": {"password123"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("oauth2 form login: %d %s", w.Code, w.Body)
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("token response must not be cached")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	id := s.register("a@x.com")
	token := s.login("a@x.com")

	expired, err := jwtutil.NewManager("router-test-secret", time.Minute).
		WithClock(func() time.Time { return time.Now().Add(-time.Hour) }).
		Issue(id)
	if err != nil {
		t.Fatal(err)
	}
	forged, err := jwtutil.NewManager("another-secret", time.Minute).Issue(id)
	if err != nil {
		t.Fatal(err)
	}
	ghost, err := s.app.Tokens.Issue(id + 100)
	if err != nil {
		t.Fatal(err)
	}

	cases := map[string]string{
		"missing":  "",
		"expired":  expired,
		"forged":   forged,
		"ghost":    ghost,
		"tampered": token[:len(token)-4] + "AAAA",
	}
	var bodies []string
	for name, tok := range cases {
		w := s.doJSON(http.MethodPost, "/blogs/create", tok, map[string]string{"title": "t", "body": "b"})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s token: %d %s", name, w.Code, w.Body)
		}
		bodies = append(bodies, w.Body.String())
	}
	for _, b := range bodies[1:] {
		if b != bodies[0] {
			t.Fatalf("401 bodies differ: %q vs %q", b, bodies[0])
		}
	}

	w := s.do(http.MethodPost, "/blogs/create", "", "application/json", `{"title":"t"}`)
	w2 := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/blogs/create", strings.NewReader(`{"title":"t"}`))
	req.Header.Set("Authorization", "Basic "+token)
	s.router.ServeHTTP(w2, req)
	if w.Code != http.StatusUnauthorized || w2.Code != http.StatusUnauthorized {
		t.Fatalf("non-bearer auth must be rejected: %d %d", w.Code, w2.Code)
	}
}

func TestBlogScenario(t *testing.T) {
	s := newTestServer(t)
	aID := s.register("a@x.com")
	s.register("b@x.com")
	tokenA := s.login("a@x.com")
	tokenB := s.login("b@x.com")

	w := s.doJSON(http.MethodPost, "/blogs/create", tokenA, map[string]string{"title": "Hello", "body": "World"})
	if w.Code != http.StatusOK {
		t.Fatalf("create: %d %s", w.Code, w.Body)
	}
	var created postEnvelope
	decode(t, w, &created)
	if created.Data.UserID != aID {
		t.Fatalf("owner = %d, want %d", created.Data.UserID, aID)
	}
	postPath := fmt.Sprintf("/blogs/%d", created.Data.ID)

	w = s.doForm(http.MethodPut, postPath+"/edit", tokenB, url.Values{"title": {"Hijack"}, "body": {"pwned"}})
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner edit: %d %s", w.Code, w.Body)
	}
	w = s.doJSON(http.MethodPut, postPath, tokenB, map[string]string{"title": "Hijack"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner patch: %d %s", w.Code, w.Body)
	}

	w = s.do(http.MethodGet, postPath, "", "", "")
	var unchanged postEnvelope
	decode(t, w, &unchanged)
	if unchanged.Data.Title != "Hello" || unchanged.Data.Body != "World" {
		t.Fatalf("post changed by forbidden request: %+v", unchanged.Data)
	}

	w = s.doForm(http.MethodPut, postPath+"/edit", tokenA, url.Values{"title": {"Hello 2"}, "body": {"World 2"}})
	if w.Code != http.StatusOK {
		t.Fatalf("owner edit: %d %s", w.Code, w.Body)
	}
	var edited postEnvelope
	decode(t, w, &edited)
	if edited.Data.Title != "Hello 2" || edited.Data.Body != "World 2" {
		t.Fatalf("fields not updated: %+v", edited.Data)
	}
	if edited.Data.ID != created.Data.ID || edited.Data.UserID != aID || !edited.Data.Timestamp.Equal(created.Data.Timestamp) {
		t.Fatalf("immutable fields changed: %+v vs %+v", edited.Data, created.Data)
	}

	w = s.doJSON(http.MethodPut, postPath, tokenA, map[string]string{"body": "only body"})
	var patched postEnvelope
	decode(t, w, &patched)
	if w.Code != http.StatusOK || patched.Data.Title != "Hello 2" || patched.Data.Body != "only body" {
		t.Fatalf("partial update: %d %+v", w.Code, patched.Data)
	}

	w = s.do(http.MethodGet, postPath+"/history", "", "", "")
	var history struct {
		Data []struct {
			Action  string `json:"action"`
			ActorID uint   `json:"actor_id"`
		} `json:"data"`
	}
	decode(t, w, &history)
	if len(history.Data) != 3 || history.Data[0].Action != "created" || history.Data[2].Action != "updated" {
		t.Fatalf("history = %+v", history.Data)
	}
}

func TestAdminCanEditAnyPost(t *testing.T) {
	s := newTestServer(t)
	s.register("a@x.com")
	adminID := s.register("admin@x.com")
	tokenA := s.login("a@x.com")

	admin, err := s.app.Users.GetByID(context.Background(), adminID)
	if err != nil {
		t.Fatal(err)
	}
	admin.IsAdmin = true
	if err := s.app.Users.Update(context.Background(), admin); err != nil {
		t.Fatal(err)
	}
	adminToken := s.login("admin@x.com")

	w := s.doJSON(http.MethodPost, "/blogs", tokenA, map[string]string{"title": "Mine", "body": "text"})
	var created postEnvelope
	decode(t, w, &created)

	w = s.doForm(http.MethodPut, fmt.Sprintf("/blogs/%d/edit", created.Data.ID), adminToken, url.Values{"title": {"Moderated"}, "body": {"text"}})
	if w.Code != http.StatusOK {
		t.Fatalf("admin edit: %d %s", w.Code, w.Body)
	}
}

func TestStatusCodesStayDistinct(t *testing.T) {
	s := newTestServer(t)
	s.register("a@x.com")
	s.register("b@x.com")
	tokenA := s.login("a@x.com")
	tokenB := s.login("b@x.com")

	w := s.doJSON(http.MethodPost, "/blogs/create", tokenA, map[string]string{"title": "T", "body": "B"})
	var created postEnvelope
	decode(t, w, &created)
	edit := fmt.Sprintf("/blogs/%d/edit", created.Data.ID)
	form := url.Values{"title": {"x"}, "body": {"y"}}

	tests := []struct {
		name string
		path string
		tok  string
		want int
		code int
	}{
		{"unauthenticated", edit, "", http.StatusUnauthorized, response.CodeUnauthorized},
		{"not owner", edit, tokenB, http.StatusForbidden, response.CodeForbidden},
		{"missing post", "/blogs/9999/edit", tokenA, http.StatusNotFound, response.CodePostNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.doForm(http.MethodPut, tt.path, tt.tok, form)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.want, w.Body)
			}
			var env response.APIResponse
			decode(t, w, &env)
			if env.Code != tt.code {
				t.Fatalf("code = %d, want %d", env.Code, tt.code)
			}
		})
	}

	if w := s.doForm(http.MethodPut, edit, tokenA, url.Values{"title": {"only title"}}); w.Code != http.StatusBadRequest {
		t.Fatalf("edit without body: %d", w.Code)
	}
}

func TestBlogReads(t *testing.T) {
	s := newTestServer(t)
	s.register("a@x.com")
	token := s.login("a@x.com")
	for i := 0; i < 3; i++ {
		s.doJSON(http.MethodPost, "/blogs/create", token, map[string]string{"title": fmt.Sprintf("post %d", i), "body": "**md**"})
	}

	w := s.do(http.MethodGet, "/blogs?skip=1&limit=1", "", "", "")
	var list struct {
		Data []struct {
			Title string `json:"title"`
		} `json:"data"`
	}
	decode(t, w, &list)
	if len(list.Data) != 1 || list.Data[0].Title != "post 1" {
		t.Fatalf("list = %+v", list.Data)
	}

	if w := s.do(http.MethodGet, "/blogs?skip=-1", "", "", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("negative skip: %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/blogs?limit=abc", "", "", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric limit: %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/blogs/424242", "", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing post: %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/blogs/abc", "", "", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: %d", w.Code)
	}

	home := s.do(http.MethodGet, "/", "", "", "")
	if home.Code != http.StatusOK || !strings.Contains(home.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("home: %d %s", home.Code, home.Header().Get("Content-Type"))
	}
	if !strings.Contains(home.Body.String(), "post 2") || !strings.Contains(home.Body.String(), "<strong>md</strong>") {
		t.Fatalf("home page missing posts: %s", home.Body)
	}
}

func TestUserRoutes(t *testing.T) {
	s := newTestServer(t)
	aID := s.register("a@x.com")
	bID := s.register("b@x.com")
	tokenA := s.login("a@x.com")

	w := s.do(http.MethodGet, fmt.Sprintf("/users/%d", aID), "", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get user: %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/users/999", "", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing user: %d", w.Code)
	}

	w = s.do(http.MethodGet, "/users?limit=1", "", "", "")
	var list struct {
		Data []map[string]interface{} `json:"data"`
	}
	decode(t, w, &list)
	if len(list.Data) != 1 {
		t.Fatalf("user list = %+v", list.Data)
	}
	if _, leaked := list.Data[0]["password_hash"]; leaked {
		t.Fatalf("hash leaked in user list")
	}

	w = s.doJSON(http.MethodPut, fmt.Sprintf("/users/%d", aID), tokenA, map[string]string{"first_name": "Alice"})
	if w.Code != http.StatusOK {
		t.Fatalf("self update: %d %s", w.Code, w.Body)
	}
	w = s.doJSON(http.MethodPut, fmt.Sprintf("/users/%d", bID), tokenA, map[string]string{"first_name": "Mallory"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("update other user: %d", w.Code)
	}
	w = s.doJSON(http.MethodPut, fmt.Sprintf("/users/%d", aID), tokenA, map[string]string{"email": "b@x.com"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("email collision: %d", w.Code)
	}
	w = s.doJSON(http.MethodPut, "/users/999", tokenA, map[string]string{"first_name": "x"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("update missing user: %d", w.Code)
	}

	me := s.do(http.MethodGet, "/me", tokenA, "", "")
	if me.Code != http.StatusOK || !strings.Contains(me.Body.String(), "Alice") {
		t.Fatalf("me: %d %s", me.Code, me.Body)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	if w := s.do(http.MethodGet, "/healthz", "", "", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz: %d %s", w.Code, w.Body)
	}
	s.do(http.MethodGet, "/blogs", "", "", "")
	w := s.do(http.MethodGet, "/metrics", "", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "goblog_http_request_duration_seconds") {
		t.Fatalf("metrics: %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing request id header")
	}
	if w := s.do(http.MethodGet, "/nowhere", "", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("no route: %d", w.Code)
	}
}

func TestCreateArticleFlow(t *testing.T) {
	s := newTestServer(t)
	aID := s.register("a@x.com")
	token := s.login("a@x.com")
	form := url.Values{"title": {"From the form"}, "body": {"Written in the browser"}}

	if w := s.do(http.MethodGet, "/create_article", "", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("form page without token: %d", w.Code)
	}
	if w := s.doForm(http.MethodPost, "/create_article", "", form); w.Code != http.StatusUnauthorized {
		t.Fatalf("submit without token: %d", w.Code)
	}

	page := s.do(http.MethodGet, "/create_article", token, "", "")
	if page.Code != http.StatusOK || !strings.Contains(page.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("form page: %d %s", page.Code, page.Header().Get("Content-Type"))
	}
	if !strings.Contains(page.Body.String(), `action="/create_article"`) || !strings.Contains(page.Body.String(), "a@x.com") {
		t.Fatalf("form page body: %s", page.Body)
	}

	if w := s.doForm(http.MethodPost, "/create_article", token, url.Values{"title": {"no body"}}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing body: %d", w.Code)
	}

	w := s.doForm(http.MethodPost, "/create_article", token, form)
	if w.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", w.Code, w.Body)
	}
	var created struct {
		Message string `json:"message"`
		Data    struct {
			ID     uint `json:"id"`
			UserID uint `json:"user_id"`
		} `json:"data"`
	}
	decode(t, w, &created)
	if created.Message != "Article created successfully" {
		t.Fatalf("message = %q", created.Message)
	}

	stored, err := s.app.Blogs.GetByID(context.Background(), created.Data.ID)
	if err != nil || stored == nil {
		t.Fatalf("stored post: %+v, %v", stored, err)
	}
	if stored.UserID != aID || stored.Title != "From the form" || stored.Body != "Written in the browser" {
		t.Fatalf("stored post = %+v, want owner %d", stored, aID)
	}
}
