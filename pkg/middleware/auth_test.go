package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventbook/pkg/logger"
	"eventbook/pkg/model"
	"eventbook/pkg/token"

	"github.com/julienschmidt/httprouter"
)

type staticLoader struct {
	principals map[string]*Principal
}

func (s *staticLoader) LoadPrincipal(ctx context.Context, userID string) (*Principal, error) {
	if p, ok := s.principals[userID]; ok {
		return p, nil
	}
	return nil, errors.New("user not found")
}

func newTestAuthenticator() (*Authenticator, *token.Manager) {
	tokens := token.NewManager("test-secret", time.Hour, "eventbook-test")
	loader := &staticLoader{principals: map[string]*Principal{
		"user-1":  {ID: "user-1", Name: "Alice", Role: model.RoleUser},
		"admin-1": {ID: "admin-1", Name: "Root", Role: model.RoleAdmin},
	}}
	log := logger.New(logger.Config{Level: "error", Format: logger.FormatJSON, Service: "test"})
	return NewAuthenticator(tokens, loader, log), tokens
}

func protectedProbe(called *bool) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Message
}

func TestProtect_MissingToken(t *testing.T) {
	auth, _ := newTestAuthenticator()
	called := false

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	rec := httptest.NewRecorder()
	auth.Protect(protectedProbe(&called))(rec, req, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Not authorized, no token" {
		t.Errorf("unexpected message: %q", msg)
	}
	if called {
		t.Error("handler must not run without a token")
	}
}

func TestProtect_InvalidToken(t *testing.T) {
	auth, _ := newTestAuthenticator()
	called := false

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	auth.Protect(protectedProbe(&called))(rec, req, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Not authorized, token failed" {
		t.Errorf("unexpected message: %q", msg)
	}
	if called {
		t.Error("handler must not run with a bad token")
	}
}

func TestProtect_UnknownSubject(t *testing.T) {
	auth, tokens := newTestAuthenticator()
	called := false

	signed, err := tokens.Generate("ghost", model.RoleUser)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	auth.Protect(protectedProbe(&called))(rec, req, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Error("handler must not run for a deleted account")
	}
}

func TestProtect_AttachesPrincipal(t *testing.T) {
	auth, tokens := newTestAuthenticator()

	signed, err := tokens.Generate("user-1", model.RoleUser)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	var principal *Principal
	handle := auth.Protect(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		principal, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handle(rec, req, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if principal == nil || principal.ID != "user-1" || principal.Name != "Alice" {
		t.Errorf("unexpected principal: %+v", principal)
	}
}

func TestProtectAdmin_RejectsRegularUser(t *testing.T) {
	auth, tokens := newTestAuthenticator()
	called := false

	signed, err := tokens.Generate("user-1", model.RoleUser)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	auth.ProtectAdmin(protectedProbe(&called))(rec, req, nil)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Admin access only" {
		t.Errorf("unexpected message: %q", msg)
	}
	if called {
		t.Error("handler must not run for a non-admin")
	}
}

func TestProtectAdmin_AllowsAdmin(t *testing.T) {
	auth, tokens := newTestAuthenticator()
	called := false

	signed, err := tokens.Generate("admin-1", model.RoleAdmin)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	auth.ProtectAdmin(protectedProbe(&called))(rec, req, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !called {
		t.Error("expected handler to run for an admin")
	}
}
