package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"tailscale.com/client/tailscale/apitype"
	"tailscale.com/tailcfg"
)

// TestDevIdentity verifies that the dev identity middleware sets user_id=1
// for all requests.
func TestDevIdentity(t *testing.T) {
	var gotUserID int
	handler := DevIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = userIDFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if gotUserID != 1 {
		t.Errorf("userID = %d, want 1", gotUserID)
	}
}

// TestUserIDFromContextDefault verifies that userIDFromContext returns 1
// when no identity middleware has set a value.
func TestUserIDFromContextDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := userIDFromContext(req); id != 1 {
		t.Errorf("userIDFromContext without context value = %d, want 1", id)
	}
}

// TestUserIDFromContextSet verifies that userIDFromContext returns the
// value stored by identity middleware.
func TestUserIDFromContextSet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), userIDKey, 42))

	if id := userIDFromContext(req); id != 42 {
		t.Errorf("userIDFromContext = %d, want 42", id)
	}
}

// TestUserInfoFromContextDefault verifies the fallback UserInfo when no
// identity middleware has set a value.
func TestUserInfoFromContextDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	info := userInfoFromContext(req)
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
	if info.DisplayName != "Local Dev User" {
		t.Errorf("displayName = %q, want %q", info.DisplayName, "Local Dev User")
	}
}

// TestUserInfoFromContextSet verifies UserInfo is extracted from context when set.
func TestUserInfoFromContextSet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(withUser(req.Context(), 2, UserInfo{Login: "alice@example.com", DisplayName: "Alice"}))

	info := userInfoFromContext(req)
	if info.Login != "alice@example.com" {
		t.Errorf("login = %q, want %q", info.Login, "alice@example.com")
	}
	if info.DisplayName != "Alice" {
		t.Errorf("displayName = %q, want %q", info.DisplayName, "Alice")
	}
}

// TestDevIdentityUserInfo verifies that DevIdentity middleware stores UserInfo
// alongside the user ID.
func TestDevIdentityUserInfo(t *testing.T) {
	var gotInfo UserInfo
	handler := DevIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotInfo = userInfoFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if gotInfo.Login != "local" {
		t.Errorf("login = %q, want %q", gotInfo.Login, "local")
	}
}

// TestRequestLogging verifies that the logging middleware calls the next handler and records status.
func TestRequestLogging(t *testing.T) {
	handler := RequestLogging(slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
}

// TestCORSHeaders verifies that CORS headers are set on responses.
func TestCORSHeaders(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS origin = %q, want *", got)
	}
}

// TestCORSPreflight verifies that OPTIONS requests get 204 with CORS headers.
func TestCORSPreflight(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called for OPTIONS")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

// TestCORSAllowsWriteMethods verifies PUT and DELETE are advertised for the
// rating and delete endpoints.
func TestCORSAllowsWriteMethods(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))

	want := "GET, POST, PUT, DELETE, OPTIONS"
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != want {
		t.Errorf("allow methods = %q, want %q", got, want)
	}
}

// TestAPIKeyAuth verifies missing keys get 401, wrong keys 403 and the right
// key reaches the handler.
func TestAPIKeyAuth(t *testing.T) {
	called := false
	handler := APIKeyAuth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		key  string
		want int
	}{
		{"", http.StatusUnauthorized},
		{"secreT", http.StatusForbidden},
		{"secret", http.StatusOK},
	}
	for _, tt := range tests {
		called = false
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if tt.key != "" {
			req.Header.Set("X-API-Key", tt.key)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != tt.want {
			t.Errorf("key %q: status = %d, want %d", tt.key, rec.Code, tt.want)
		}
		if called != (tt.want == http.StatusOK) {
			t.Errorf("key %q: handler called = %v", tt.key, called)
		}
	}
}

type fakeWhoIs struct {
	resp *apitype.WhoIsResponse
	err  error
}

func (f fakeWhoIs) WhoIs(context.Context, string) (*apitype.WhoIsResponse, error) {
	return f.resp, f.err
}

// TestTailscaleIdentity verifies the tailnet login is mapped to a local user
// and stored in the request context.
func TestTailscaleIdentity(t *testing.T) {
	store := newFakeStore()
	whois := fakeWhoIs{resp: &apitype.WhoIsResponse{
		UserProfile: &tailcfg.UserProfile{LoginName: "alice@example.com", DisplayName: "Alice"},
	}}

	var gotID int
	var gotInfo UserInfo
	handler := TailscaleIdentity(whois, store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = userIDFromContext(r)
		gotInfo = userInfoFromContext(r)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotID != store.users["alice@example.com"] || gotID == devUserID {
		t.Errorf("userID = %d, want alice's new id", gotID)
	}
	if gotInfo.Login != "alice@example.com" || gotInfo.DisplayName != "Alice" {
		t.Errorf("info = %+v", gotInfo)
	}
}

// TestTailscaleIdentityUnknownPeer verifies requests without a resolvable
// tailnet user are rejected.
func TestTailscaleIdentityUnknownPeer(t *testing.T) {
	cases := map[string]fakeWhoIs{
		"error":      {err: errors.New("no such peer")},
		"no profile": {resp: &apitype.WhoIsResponse{}},
	}
	for name, whois := range cases {
		handler := TailscaleIdentity(whois, newFakeStore())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("%s: next handler should not be called", name)
		}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, rec.Code)
		}
	}
}

// TestServerUsesTailscaleWhenSet verifies SetTailscale switches the identity
// used by the routes.
func TestServerUsesTailscaleWhenSet(t *testing.T) {
	s, _ := newTestServer()
	s.SetTailscale(fakeWhoIs{resp: &apitype.WhoIsResponse{
		UserProfile: &tailcfg.UserProfile{LoginName: "bob@example.com", DisplayName: "Bob"},
	}})

	rec := do(t, s, http.MethodGet, "/api/v1/me", "")
	if info := decode[UserInfo](t, rec); info.Login != "bob@example.com" {
		t.Errorf("login = %q, want bob@example.com", info.Login)
	}
}
