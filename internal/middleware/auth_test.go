package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/session"
)

// newTestSession creates a session.Data value suitable for testing.
// It populates every field so assertions can check them.
func newTestSession(role string, twoFADone bool) *session.Data {
	return &session.Data{
		AccountID:   uuid.New(),
		Email:       "test@inkwell.local",
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

// ctxWithSession returns a context carrying the given session data using
// the same context key the middleware uses. This allows tests to simulate
// the state after LoadSession has run without needing a real Valkey store.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, SessionKey, data)
}

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

func TestSessionFromCtx(t *testing.T) {
	t.Run("returns session when present", func(t *testing.T) {
		sess := newTestSession("admin", true)
		ctx := ctxWithSession(context.Background(), sess)

		got := SessionFromCtx(ctx)
		if got == nil {
			t.Fatal("expected non-nil session, got nil")
		}
		if got.Email != sess.Email {
			t.Errorf("Email: got %q, want %q", got.Email, sess.Email)
		}
		if got.Role != sess.Role {
			t.Errorf("Role: got %q, want %q", got.Role, sess.Role)
		}
	})

	t.Run("returns nil when not present", func(t *testing.T) {
		got := SessionFromCtx(context.Background())
		if got != nil {
			t.Errorf("expected nil session, got %+v", got)
		}
	})

	t.Run("returns nil for wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), SessionKey, "not-a-session")
		got := SessionFromCtx(ctx)
		if got != nil {
			t.Errorf("expected nil for wrong type, got %+v", got)
		}
	})
}

func TestViewerFromCtx(t *testing.T) {
	t.Run("anonymous without session", func(t *testing.T) {
		v := ViewerFromCtx(context.Background())
		if !v.Anonymous() {
			t.Errorf("expected anonymous viewer, got %+v", v)
		}
	})

	t.Run("carries identity and role", func(t *testing.T) {
		sess := newTestSession("editor", true)
		v := ViewerFromCtx(ctxWithSession(context.Background(), sess))
		if v.Anonymous() {
			t.Fatal("expected identified viewer")
		}
		if v.ID != sess.AccountID {
			t.Errorf("ID: got %s, want %s", v.ID, sess.AccountID)
		}
		if v.Role != models.RoleEditor {
			t.Errorf("Role: got %q, want editor", v.Role)
		}
	})
}

func TestRequireAuth(t *testing.T) {
	t.Run("returns 401 when no session", func(t *testing.T) {
		inner, called := okHandler()
		handler := RequireAuth(inner)

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if *called {
			t.Error("next handler should NOT have been called")
		}
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type: got %q, want application/json", ct)
		}
	})

	t.Run("passes through when session exists", func(t *testing.T) {
		sess := newTestSession("reader", true)
		inner, called := okHandler()
		handler := RequireAuth(inner)

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req = req.WithContext(ctxWithSession(req.Context(), sess))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if !*called {
			t.Error("next handler should have been called")
		}
		if rr.Code != http.StatusOK {
			t.Errorf("status: got %d, want 200", rr.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name           string
		session        *session.Data
		min            models.Role
		wantCode       int
		wantNextCalled bool
	}{
		{
			name:           "403 when session is nil",
			session:        nil,
			min:            models.RoleAuthor,
			wantCode:       http.StatusForbidden,
			wantNextCalled: false,
		},
		{
			name:           "403 when role below minimum",
			session:        newTestSession("reader", true),
			min:            models.RoleAuthor,
			wantCode:       http.StatusForbidden,
			wantNextCalled: false,
		},
		{
			name:           "passes at exact minimum",
			session:        newTestSession("author", true),
			min:            models.RoleAuthor,
			wantCode:       http.StatusOK,
			wantNextCalled: true,
		},
		{
			name:           "passes above minimum",
			session:        newTestSession("admin", true),
			min:            models.RoleEditor,
			wantCode:       http.StatusOK,
			wantNextCalled: true,
		},
		{
			name:           "403 for unknown role string",
			session:        newTestSession("superuser", true),
			min:            models.RoleReader,
			wantCode:       http.StatusForbidden,
			wantNextCalled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner, called := okHandler()
			handler := RequireRole(tt.min)(inner)

			req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
			if tt.session != nil {
				req = req.WithContext(ctxWithSession(req.Context(), tt.session))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if *called != tt.wantNextCalled {
				t.Errorf("next handler called: got %v, want %v", *called, tt.wantNextCalled)
			}
			if rr.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantCode)
			}
		})
	}
}

func TestRequire2FA(t *testing.T) {
	tests := []struct {
		name           string
		session        *session.Data
		wantCode       int
		wantNextCalled bool
	}{
		{
			name:           "blocks admin without completed 2FA",
			session:        newTestSession("admin", false),
			wantCode:       http.StatusForbidden,
			wantNextCalled: false,
		},
		{
			name:           "passes admin with completed 2FA",
			session:        newTestSession("admin", true),
			wantCode:       http.StatusOK,
			wantNextCalled: true,
		},
		{
			name:           "passes non-admin regardless of 2FA state",
			session:        newTestSession("editor", false),
			wantCode:       http.StatusOK,
			wantNextCalled: true,
		},
		{
			name:           "passes when session is nil (RequireAuth catches this first)",
			session:        nil,
			wantCode:       http.StatusOK,
			wantNextCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner, called := okHandler()
			handler := Require2FA(inner)

			req := httptest.NewRequest(http.MethodGet, "/api/admin/accounts", nil)
			if tt.session != nil {
				req = req.WithContext(ctxWithSession(req.Context(), tt.session))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if *called != tt.wantNextCalled {
				t.Errorf("next handler called: got %v, want %v", *called, tt.wantNextCalled)
			}
			if rr.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantCode)
			}
		})
	}
}
