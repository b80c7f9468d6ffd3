package authapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"placemate/cmd/identity"
	"placemate/cmd/internal/auth/gate"
	"placemate/cmd/internal/auth/session"
	"placemate/cmd/security/password"
	"placemate/cmd/security/token"
)

func testSessionConfig() session.Config {
	cfg := session.DefaultConfig()
	cfg.AccessSecret = []byte(strings.Repeat("a", 32))
	cfg.RefreshSecret = []byte(strings.Repeat("r", 32))
	return cfg
}

func newTestServer(t *testing.T) (*http.ServeMux, *session.Service) {
	t.Helper()

	pwCfg := password.DefaultConfig()
	pwCfg.Params.MemoryKiB = 8 * 1024
	pwCfg.Params.Iterations = 1
	pwCfg.Params.Parallelism = 1

	users := identity.NewMemoryStore()
	store := session.NewMemoryStore()
	svc, err := session.NewService(testSessionConfig(), users, store, pwCfg, token.NewHasher(nil))
	if err != nil {
		t.Fatalf("service: %v", err)
	}

	cfg := DefaultConfig()
	cfg.CookieSecure = false

	h := NewHandler(cfg, svc, users, nil)
	mux := http.NewServeMux()
	h.Register(mux, gate.RequireAuth(svc))
	return mux, svc
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string, mutate ...func(*http.Request)) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for _, m := range mutate {
		m(r)
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: bad envelope %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, env
}

func signupBody(email string) string {
	return fmt.Sprintf(`{"name":"Jane Doe","email":%q,"password":"secret-pass"}`, email)
}

func refreshCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "refreshToken" {
			return c
		}
	}
	t.Fatalf("refreshToken cookie not set")
	return nil
}

func TestSignup_SetsCookieAndReturnsAccessToken(t *testing.T) {
	t.Parallel()

	mux, _ := newTestServer(t)
	w, env := doJSON(t, mux, http.MethodPost, "/auth/signup", signupBody("jane@example.com"))

	if w.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if !env.Success {
		t.Fatalf("expected success envelope: %+v", env)
	}

	var data struct {
		User         identity.User `json:"user"`
		AccessToken  string        `json:"accessToken"`
		RefreshToken string        `json:"refreshToken"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.AccessToken == "" {
		t.Fatalf("access token missing")
	}
	if data.RefreshToken != "" {
		t.Fatalf("refresh token must travel in the cookie, not the body")
	}
	if data.User.Email != "jane@example.com" {
		t.Fatalf("user mismatch: %+v", data.User)
	}

	c := refreshCookie(t, w)
	if !c.HttpOnly || c.SameSite != http.SameSiteStrictMode {
		t.Fatalf("cookie attributes wrong: %+v", c)
	}
	if c.Value == "" {
		t.Fatalf("cookie value empty")
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	t.Parallel()

	mux, _ := newTestServer(t)
	doJSON(t, mux, http.MethodPost, "/auth/signup", signupBody("jane@example.com"))
	w, env := doJSON(t, mux, http.MethodPost, "/auth/signup", signupBody("JANE@example.com"))

	if w.Code != http.StatusConflict {
		t.Fatalf("status %d", w.Code)
	}
	if env.Success || env.Message != "Email already registered" {
		t.Fatalf("envelope mismatch: %+v", env)
	}
}

func TestSignup_ValidationErrors(t *testing.T) {
	t.Parallel()

	mux, _ := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"name":`},
		{"unknown field", `{"name":"J","email":"a@b.co","password":"secret-pass","admin":true}`},
		{"short password", `{"name":"J","email":"a@b.co","password":"123"}`},
		{"bad email", `{"name":"J","email":"nope","password":"secret-pass"}`},
	}
	for _, tc := range cases {
		w, env := doJSON(t, mux, http.MethodPost, "/auth/signup", tc.body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d", tc.name, w.Code)
		}
		if env.Success {
			t.Fatalf("%s: expected failure envelope", tc.name)
		}
	}
}

func TestLogin_OkAndUniformFailures(t *testing.T) {
	t.Parallel()

	mux, _ := newTestServer(t)
	doJSON(t, mux, http.MethodPost, "/auth/signup", signupBody("jane@example.com"))

	w, env := doJSON(t, mux, http.MethodPost, "/auth/login",
		`{"email":"jane@example.com","password":"secret-pass"}`)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("login failed: %d %+v", w.Code, env)
	}
	refreshCookie(t, w)

	wWrong, envWrong := doJSON(t, mux, http.MethodPost, "/auth/login",
		`{"email":"jane@example.com","password":"wrong-pass"}`)
	wUnknown, envUnknown := doJSON(t, mux, http.MethodPost, "/auth/login",
		`{"email":"nobody@example.com","password":"secret-pass"}`)

	if wWrong.Code != http.StatusUnauthorized || wUnknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401s, got %d and %d", wWrong.Code, wUnknown.Code)
	}
	if envWrong.Message != envUnknown.Message {
		t.Fatalf("failure messages must be identical: %q vs %q", envWrong.Message, envUnknown.Message)
	}
}

func TestRefresh_FromCookieRotates(t *testing.T) {
	t.Parallel()

	mux, _ := newTestServer(t)
	w, _ := doJSON(t, mux, http.MethodPost, "/auth/signup", signupBody("jane@example.com"))
	first := refreshCookie(t, w)

	w2, env := doJSON(t, mux, http.MethodPost, "/auth/refresh", "", func(r *http.Request) {
		r.AddCookie(first)
	})
	if w2.Code != http.StatusOK || !env.Success {
		t.Fatalf("refresh: %d %+v", w2.Code, env)
	}
	second := refreshCookie(t, w2)
	if second.Value == first.Value {
		t.Fatalf("cookie must carry a rotated token")
	}

	var data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.AccessToken == "" || data.RefreshToken != "" {
		t.Fatalf("body must hold only the access token: %+v", data)
	}

	// Replaying the consumed cookie fails and clears it.
	w3, env3 := doJSON(t, mux, http.MethodPost, "/auth/refresh", "", func(r *http.Request) {
		r.AddCookie(first)
	})
	if w3.Code != http.StatusUnauthorized || env3.Message != "Invalid refresh token" {
		t.Fatalf("replay: %d %+v", w3.Code, env3)
	}
}

func TestRefresh_FromBody(t *testing.T) {
	t.Parallel()

	mux, svc := newTestServer(t)

	// Mint a session directly so we hold the plaintext refresh token.
	sess, err := svc.Signup(httptest.NewRequest("POST", "/", nil).Context(), session.SignupInput{
		Email: "body@example.com", Password: "secret-pass", Name: "Body Client",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	body := fmt.Sprintf(`{"refreshToken":%q}`, sess.Pair.RefreshToken)
	w, env := doJSON(t, mux, http.MethodPost, "/auth/refresh", body)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("refresh: %d %+v", w.Code, env)
	}
}

func TestRefresh_MissingToken(t *testing.T) {
	t.Parallel()

	mux, _ := newTestServer(t)
	w, env := doJSON(t, mux, http.MethodPost, "/auth/refresh", `{}`)
	if w.Code != http.StatusBadRequest || env.Message != "Refresh token is required" {
		t.Fatalf("got %d %+v", w.Code, env)
	}
}

func TestLogout_DeviceAndAll(t *testing.T) {
	t.Parallel()

	mux, _ := newTestServer(t)
	w, env := doJSON(t, mux, http.MethodPost, "/auth/signup", signupBody("jane@example.com"))
	cookie := refreshCookie(t, w)

	var data struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	auth := func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+data.AccessToken) }

	// Logout without a token requires auth.
	wNoAuth, _ := doJSON(t, mux, http.MethodPost, "/auth/logout", "")
	if wNoAuth.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated logout: %d", wNoAuth.Code)
	}

	// Device logout consumes the cookie token.
	wOut, envOut := doJSON(t, mux, http.MethodPost, "/auth/logout", "", auth, func(r *http.Request) {
		r.AddCookie(cookie)
	})
	if wOut.Code != http.StatusOK || envOut.Message != "Logged out successfully" {
		t.Fatalf("logout: %d %+v", wOut.Code, envOut)
	}

	// The cookie token is gone; refresh fails.
	wReplay, _ := doJSON(t, mux, http.MethodPost, "/auth/refresh", "", func(r *http.Request) {
		r.AddCookie(cookie)
	})
	if wReplay.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after logout: %d", wReplay.Code)
	}

	// logout-all with a still-valid access token.
	wAll, envAll := doJSON(t, mux, http.MethodPost, "/auth/logout-all", "", auth)
	if wAll.Code != http.StatusOK || envAll.Message != "Logged out from all devices" {
		t.Fatalf("logout-all: %d %+v", wAll.Code, envAll)
	}
}

func TestMe(t *testing.T) {
	t.Parallel()

	mux, _ := newTestServer(t)
	_, env := doJSON(t, mux, http.MethodPost, "/auth/signup", signupBody("jane@example.com"))

	var data struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w, envMe := doJSON(t, mux, http.MethodGet, "/auth/me", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+data.AccessToken)
	})
	if w.Code != http.StatusOK {
		t.Fatalf("me: %d %+v", w.Code, envMe)
	}

	var me struct {
		User identity.User `json:"user"`
	}
	if err := json.Unmarshal(envMe.Data, &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.User.Email != "jane@example.com" {
		t.Fatalf("me mismatch: %+v", me.User)
	}

	// The raw body must never contain a password hash field.
	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("me response leaks a password field: %s", w.Body.String())
	}

	wNo, _ := doJSON(t, mux, http.MethodGet, "/auth/me", "")
	if wNo.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated me: %d", wNo.Code)
	}
}
