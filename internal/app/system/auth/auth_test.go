package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ridehubhq/ridehub/internal/app/system/auth"
	"go.uber.org/zap"
)

func newManager(t *testing.T, ttl time.Duration) *auth.Manager {
	t.Helper()
	m, err := auth.NewManager("test-secret-0123456789", ttl, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestNewManager_EmptySecret(t *testing.T) {
	if _, err := auth.NewManager("  ", time.Hour, false, zap.NewNop()); err == nil {
		t.Fatal("expected empty secret to be rejected")
	}
}

func TestMintAndVerify(t *testing.T) {
	m := newManager(t, time.Hour)

	in := auth.TokenUser{ID: "abc123", Name: "Root Admin", Email: "admin@ridehub.test", Role: "admin"}
	tok, err := m.Mint(in)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	out, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if *out != in {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestVerify_Expired(t *testing.T) {
	m := newManager(t, time.Nanosecond)
	tok, err := m.Mint(auth.TokenUser{ID: "abc", Role: "member"})
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := m.Verify(tok); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	m := newManager(t, time.Hour)
	tok, _ := m.Mint(auth.TokenUser{ID: "abc", Role: "member"})

	other, err := auth.NewManager("a-different-secret", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if _, err := other.Verify(tok); err == nil {
		t.Fatal("expected token signed with another secret to fail")
	}
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestLoadTokenUser_Cookie(t *testing.T) {
	m := newManager(t, time.Hour)
	tok, _ := m.Mint(auth.TokenUser{ID: "u1", Name: "Rider", Role: "member"})

	var got *auth.TokenUser
	h := m.LoadTokenUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: tok})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.ID != "u1" {
		t.Fatalf("expected user from cookie, got %+v", got)
	}
}

func TestLoadTokenUser_BearerFallback(t *testing.T) {
	m := newManager(t, time.Hour)
	tok, _ := m.Mint(auth.TokenUser{ID: "u2", Role: "admin"})

	var got *auth.TokenUser
	h := m.LoadTokenUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.ID != "u2" {
		t.Fatalf("expected user from bearer header, got %+v", got)
	}
}

func TestRequireAdmin(t *testing.T) {
	inner, called := okHandler()
	h := auth.RequireAdmin(inner)

	// No token user: 401.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: got %d, want 401", rec.Code)
	}

	// Member token: 403.
	rec = httptest.NewRecorder()
	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.TokenUser{ID: "u", Role: "member"})
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("member token: got %d, want 403", rec.Code)
	}

	// Admin token: allowed.
	rec = httptest.NewRecorder()
	req = auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.TokenUser{ID: "a", Role: "admin"})
	h.ServeHTTP(rec, req)
	if !*called || rec.Code != http.StatusOK {
		t.Errorf("admin token: got %d, want 200 with handler called", rec.Code)
	}
}
