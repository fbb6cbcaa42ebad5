package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/inkwellcms/inkwell/internal/auth"
	"github.com/inkwellcms/inkwell/internal/config"
	"github.com/inkwellcms/inkwell/internal/domain/user"
	"github.com/inkwellcms/inkwell/internal/http/handlers"
	"github.com/inkwellcms/inkwell/internal/http/middlewares"
	"github.com/inkwellcms/inkwell/internal/repo/postgres"
	"github.com/inkwellcms/inkwell/internal/security"
)

type fakeUserReader struct {
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
}

func (f *fakeUserReader) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}

	return user.User{}, user.ErrNotFound
}

type fakeUserWriter struct {
	createFn func(ctx context.Context, email, passwordHash, name, role string) (user.User, error)
	touchFn  func(ctx context.Context, id int64) error
}

func (f *fakeUserWriter) Create(ctx context.Context, email, passwordHash, name, role string) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, email, passwordHash, name, role)
	}

	return user.User{}, nil
}

func (f *fakeUserWriter) TouchLastLogin(ctx context.Context, id int64) error {
	if f.touchFn != nil {
		return f.touchFn(ctx, id)
	}

	return nil
}

func newAuthHandler(reader *fakeUserReader, writer *fakeUserWriter) *handlers.AuthHandler {
	jwt := auth.NewManager("test-secret", 15*time.Minute, 24*time.Hour)

	// The refresh store stays nil: every case below must fail before a
	// session would be issued.
	return handlers.NewAuthHandler(reader, writer, jwt, nil, config.Config{Env: "test"})
}

func TestLoginHandlerRejections(t *testing.T) {
	hash, err := security.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	tests := []struct {
		name           string
		body           string
		reader         *fakeUserReader
		wantStatusCode int
	}{
		{
			name:           "malformed_email",
			body:           `{"email": "nope", "password": "whatever"}`,
			reader:         &fakeUserReader{},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing_password",
			body:           `{"email": "a@b.com"}`,
			reader:         &fakeUserReader{},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "unknown_email",
			body:           `{"email": "ghost@example.com", "password": "whatever"}`,
			reader:         &fakeUserReader{},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name: "wrong_password",
			body: `{"email": "a@b.com", "password": "incorrect"}`,
			reader: &fakeUserReader{
				getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
					return user.User{ID: 1, Email: email, PasswordHash: hash, Role: user.RoleEditor}, nil
				},
			},
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			h := newAuthHandler(tt.reader, &fakeUserWriter{})

			r := setupRouter(http.MethodPost, "/auth/login", nil, h.Login)

			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRegisterHandlerRejections(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		writer         *fakeUserWriter
		wantStatusCode int
	}{
		{
			name:           "short_password",
			body:           `{"email": "a@b.com", "password": "short", "name": "A"}`,
			writer:         &fakeUserWriter{},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "duplicate_email",
			body: `{"email": "a@b.com", "password": "long enough", "name": "A"}`,
			writer: &fakeUserWriter{
				createFn: func(ctx context.Context, email, passwordHash, name, role string) (user.User, error) {
					return user.User{}, postgres.ErrEmailAlreadyUsed
				},
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			h := newAuthHandler(&fakeUserReader{}, tt.writer)

			r := setupRouter(http.MethodPost, "/auth/register", nil, h.Register)

			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRegisterAssignsEditorRole(t *testing.T) {
	var gotRole string

	writer := &fakeUserWriter{
		createFn: func(ctx context.Context, email, passwordHash, name, role string) (user.User, error) {
			gotRole = role
			// fail after capturing the role so the handler never needs
			// the refresh store
			return user.User{}, context.DeadlineExceeded
		},
	}

	h := newAuthHandler(&fakeUserReader{}, writer)
	r := setupRouter(http.MethodPost, "/auth/register", nil, h.Register)

	body := `{"email": "a@b.com", "password": "long enough", "name": "A"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if gotRole != user.RoleEditor {
		t.Fatalf("self-registered account got role %q, want %q", gotRole, user.RoleEditor)
	}
}

func TestMeHandler(t *testing.T) {
	h := newAuthHandler(&fakeUserReader{}, &fakeUserWriter{})

	ident := &middlewares.Identity{ID: 7, Email: "me@example.com", Name: "Me", Role: user.RoleEditor}
	r := setupRouter(http.MethodGet, "/auth/me", ident, h.Me)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		User struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}

	if resp.User.ID != 7 || resp.User.Email != "me@example.com" || resp.User.Role != user.RoleEditor {
		t.Fatalf("unexpected identity echo: %+v", resp.User)
	}
}

func TestLogoutWithoutCookie(t *testing.T) {
	h := newAuthHandler(&fakeUserReader{}, &fakeUserWriter{})
	r := setupRouter(http.MethodPost, "/auth/logout", nil, h.Logout)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	// the response must still clear the refresh cookie
	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "refresh_token" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("refresh cookie was not cleared")
	}
}
