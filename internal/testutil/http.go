// internal/testutil/http.go
package testutil

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/ridehubhq/ridehub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// AdminTokenUser returns a token user with admin role.
func AdminTokenUser() *auth.TokenUser {
	return &auth.TokenUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  "admin",
	}
}

// MemberTokenUser returns a token user with member role for the given
// user id.
func MemberTokenUser(id primitive.ObjectID) *auth.TokenUser {
	return &auth.TokenUser{
		ID:    id.Hex(),
		Name:  "Test Member",
		Email: "member@test.com",
		Role:  "member",
	}
}

// WithUser injects a token user into the request context, bypassing
// the token middleware.
func WithUser(r *http.Request, u *auth.TokenUser) *http.Request {
	return auth.WithTestUser(r, u)
}

// NewAuthenticatedRequest creates an HTTP request with a token user in
// context.
func NewAuthenticatedRequest(method, target string, u *auth.TokenUser) *http.Request {
	return WithUser(httptest.NewRequest(method, target, nil), u)
}

// FilePart is one file attachment for NewMultipartRequest.
type FilePart struct {
	Field    string
	Filename string
	Content  []byte
}

// NewMultipartRequest builds a multipart/form-data request from text
// fields plus optional file parts.
func NewMultipartRequest(t *testing.T, method, target string, fields map[string]string, files ...FilePart) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %q: %v", k, err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			t.Fatalf("create file part %q: %v", f.Field, err)
		}
		if _, err := fw.Write(f.Content); err != nil {
			t.Fatalf("write file part %q: %v", f.Field, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
