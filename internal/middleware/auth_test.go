package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/medcircle/commons/api/pkg/identity"
)

type mockVerifier struct {
	validateFunc func(token string) (*identity.Principal, error)
}

func (m *mockVerifier) Validate(token string) (*identity.Principal, error) {
	return m.validateFunc(token)
}

func okVerifier(p *identity.Principal) *mockVerifier {
	return &mockVerifier{validateFunc: func(string) (*identity.Principal, error) {
		return p, nil
	}}
}

func failVerifier(err error) *mockVerifier {
	return &mockVerifier{validateFunc: func(string) (*identity.Principal, error) {
		return nil, err
	}}
}

func TestAuth_MissingAuthorizationHeader_ReturnsUnauthorized(t *testing.T) {
	t.Parallel()
	called := false
	handler := Auth(okVerifier(&identity.Principal{UserID: "user:1"}))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/forums", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Error("expected next handler not to be called")
	}
}

func TestAuth_InvalidHeaderFormat_ReturnsUnauthorized(t *testing.T) {
	t.Parallel()
	handler := Auth(okVerifier(&identity.Principal{UserID: "user:1"}))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, header := range []string{"sometoken", "Bearer", "Basic dXNlcjpwYXNz"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/forums", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestAuth_ValidToken_SetsContext_CallsNext(t *testing.T) {
	t.Parallel()
	principal := &identity.Principal{UserID: "user:1", Email: "doc@example.com", Role: "doctor"}
	var gotID string
	var gotPrincipal *identity.Principal
	handler := Auth(okVerifier(principal))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID = GetUserID(r.Context())
			gotPrincipal = GetPrincipal(r.Context())
		}))

	req := httptest.NewRequest(http.MethodGet, "/v1/forums", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotID != "user:1" {
		t.Errorf("expected user ID in context, got %q", gotID)
	}
	if gotPrincipal == nil || gotPrincipal.Role != "doctor" {
		t.Errorf("expected principal in context, got %+v", gotPrincipal)
	}
}

func TestAuth_CaseInsensitiveBearer(t *testing.T) {
	t.Parallel()
	handler := Auth(okVerifier(&identity.Principal{UserID: "user:1"}))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/v1/forums", nil)
	req.Header.Set("Authorization", "bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for lowercase bearer, got %d", rec.Code)
	}
}

func TestAuth_ExpiredToken_ReturnsUnauthorized(t *testing.T) {
	t.Parallel()
	handler := Auth(failVerifier(identity.ErrTokenExpired))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/v1/forums", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_InvalidSignature_ReturnsUnauthorized(t *testing.T) {
	t.Parallel()
	handler := Auth(failVerifier(identity.ErrInvalidSignature))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/v1/forums", nil)
	req.Header.Set("Authorization", "Bearer tampered-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestOptionalAuth_NoHeader_Proceeds(t *testing.T) {
	t.Parallel()
	var gotID string
	handler := OptionalAuth(okVerifier(&identity.Principal{UserID: "user:1"}))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID = GetUserID(r.Context())
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events/stream", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if gotID != "" {
		t.Errorf("expected no user ID without header, got %q", gotID)
	}
}

func TestOptionalAuth_InvalidToken_ProceedsWithoutAuth(t *testing.T) {
	t.Parallel()
	var gotID string
	handler := OptionalAuth(failVerifier(identity.ErrInvalidToken))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID = GetUserID(r.Context())
		}))

	req := httptest.NewRequest(http.MethodGet, "/v1/events/stream", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if gotID != "" {
		t.Errorf("expected no user ID for invalid token, got %q", gotID)
	}
}

func TestOptionalAuth_ValidToken_SetsContext(t *testing.T) {
	t.Parallel()
	var gotID string
	handler := OptionalAuth(okVerifier(&identity.Principal{UserID: "user:7"}))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID = GetUserID(r.Context())
		}))

	req := httptest.NewRequest(http.MethodGet, "/v1/events/stream", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if gotID != "user:7" {
		t.Errorf("expected user:7 in context, got %q", gotID)
	}
}

func TestGetUserID_Missing_ReturnsEmpty(t *testing.T) {
	t.Parallel()
	if id := GetUserID(context.Background()); id != "" {
		t.Errorf("expected empty, got %q", id)
	}
}

func TestGetPrincipal_Missing_ReturnsNil(t *testing.T) {
	t.Parallel()
	if p := GetPrincipal(context.Background()); p != nil {
		t.Errorf("expected nil, got %+v", p)
	}
}
