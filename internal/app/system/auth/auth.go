// internal/app/system/auth/auth.go

// Package auth issues and verifies the signed, time-limited tokens that
// guard the admin and member surfaces.
//
// Tokens are HS256 JWTs delivered in an HTTP-only cookie; callers that
// cannot carry cookies (scripts, the SPA during local development) may
// instead send "Authorization: Bearer <token>". The cookie is the
// primary channel, the header the fallback.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ridehubhq/ridehub/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// CookieName is the HTTP-only cookie carrying the token.
const CookieName = "ridehub_token"

// TokenUser is what the token claims decode to; it is injected into
// the request context by LoadTokenUser.
type TokenUser struct {
	ID    string
	Name  string
	Email string
	Role  string // admin | member
}

type claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// Manager signs and verifies tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	log    *zap.Logger
}

// NewManager builds a Manager. The secret must be non-empty; secure
// controls the cookie's Secure flag (on in production).
func NewManager(secret string, ttl time.Duration, secure bool, log *zap.Logger) (*Manager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token secret must not be empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, secure: secure, log: log}, nil
}

// Mint signs a token for u with the configured TTL.
func (m *Manager) Mint(u TokenUser) (string, error) {
	now := time.Now()
	c := claims{
		Name: u.Name,
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Audience:  jwt.ClaimStrings{u.Email},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

// Verify parses and validates a token string.
func (m *Manager) Verify(tokenString string) (*TokenUser, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	c, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid token claims")
	}
	email := ""
	if len(c.Audience) > 0 {
		email = c.Audience[0]
	}
	return &TokenUser{ID: c.Subject, Name: c.Name, Email: email, Role: c.Role}, nil
}

// SetCookie writes the token as an HTTP-only cookie.
func (m *Manager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the token cookie.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// tokenFromRequest extracts the raw token: cookie first, then the
// Bearer header fallback. Empty string when neither is present.
func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// CurrentUser returns the token user from context, if any.
func CurrentUser(r *http.Request) (*TokenUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*TokenUser)
	return u, ok
}

func withUser(r *http.Request, u *TokenUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// WithTestUser injects a token user directly, bypassing the
// middleware. Only for handler tests.
func WithTestUser(r *http.Request, u *TokenUser) *http.Request {
	return withUser(r, u)
}

// LoadTokenUser injects the verified token user into context when a
// valid token is present. Requests without a token pass through
// untouched; the Require* middleware decides whether that matters.
func (m *Manager) LoadTokenUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := tokenFromRequest(r); raw != "" {
			u, err := m.Verify(raw)
			if err != nil {
				if m.log != nil {
					m.log.Debug("token rejected", zap.Error(err))
				}
			} else {
				r = withUser(r, u)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn rejects requests without a verified token user.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			httpjson.Fail(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests unless a verified admin token user is
// present. Missing token is 401; a non-admin token is 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok {
			httpjson.Fail(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !strings.EqualFold(u.Role, "admin") {
			httpjson.Fail(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
