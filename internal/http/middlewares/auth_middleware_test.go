package middlewares_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwellcms/inkwell/internal/auth"
	"github.com/inkwellcms/inkwell/internal/domain/user"
	"github.com/inkwellcms/inkwell/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUserResolver struct {
	getFn func(ctx context.Context, id int64) (user.User, error)
}

func (f *fakeUserResolver) GetByID(ctx context.Context, id int64) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}

	return user.User{}, user.ErrNotFound
}

func okHandler(c *gin.Context) {
	ident, _ := middlewares.IdentityFromContext(c)
	c.JSON(http.StatusOK, gin.H{"id": ident.ID, "role": ident.Role})
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewManager("test-secret", 15*time.Minute, 24*time.Hour)

	liveUser := user.User{ID: 7, Email: "a@b.com", Name: "A", Role: user.RoleEditor}

	resolver := &fakeUserResolver{
		getFn: func(ctx context.Context, id int64) (user.User, error) {
			if id == liveUser.ID {
				return liveUser, nil
			}
			return user.User{}, user.ErrNotFound
		},
	}

	accessToken, err := jwtManager.GenerateAccessToken(liveUser.ID, liveUser.Email, liveUser.Role)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	refreshToken, _, _, err := jwtManager.GenerateRefreshToken(liveUser.ID, liveUser.Email, liveUser.Role)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	deletedUserToken, err := jwtManager.GenerateAccessToken(99, "ghost@b.com", user.RoleEditor)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	foreignToken, err := auth.NewManager("other-secret", 15*time.Minute, 24*time.Hour).
		GenerateAccessToken(liveUser.ID, liveUser.Email, liveUser.Role)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	tests := []struct {
		name           string
		header         string
		wantStatusCode int
	}{
		{name: "valid_token", header: "Bearer " + accessToken, wantStatusCode: http.StatusOK},
		{name: "missing_header", header: "", wantStatusCode: http.StatusUnauthorized},
		{name: "not_bearer", header: "Basic abc", wantStatusCode: http.StatusUnauthorized},
		{name: "garbage_token", header: "Bearer not.a.jwt", wantStatusCode: http.StatusUnauthorized},
		{name: "wrong_secret", header: "Bearer " + foreignToken, wantStatusCode: http.StatusUnauthorized},
		// a refresh token must never pass as an access token
		{name: "refresh_token_rejected", header: "Bearer " + refreshToken, wantStatusCode: http.StatusUnauthorized},
		// a valid token for a deleted user must not pass
		{name: "deleted_user", header: "Bearer " + deletedUserToken, wantStatusCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			mw := middlewares.NewAuthMiddleware(jwtManager, resolver)

			r := gin.New()
			r.GET("/protected", mw.RequireAuth(), okHandler)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	jwtManager := auth.NewManager("test-secret", 15*time.Minute, 24*time.Hour)

	tests := []struct {
		name           string
		role           string
		allowed        []string
		withIdentity   bool
		wantStatusCode int
	}{
		{name: "admin_allowed", role: user.RoleAdmin, allowed: []string{user.RoleAdmin}, withIdentity: true, wantStatusCode: http.StatusOK},
		{name: "editor_blocked_from_admin_route", role: user.RoleEditor, allowed: []string{user.RoleAdmin}, withIdentity: true, wantStatusCode: http.StatusForbidden},
		{name: "no_identity", allowed: []string{user.RoleAdmin}, withIdentity: false, wantStatusCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			mw := middlewares.NewAuthMiddleware(jwtManager, &fakeUserResolver{})

			r := gin.New()

			if tt.withIdentity {
				r.Use(func(c *gin.Context) {
					middlewares.SetIdentity(c, middlewares.Identity{ID: 1, Role: tt.role})
					c.Next()
				})
			}

			r.GET("/admin", mw.RequireRole(tt.allowed...), okHandler)

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestCanMutate(t *testing.T) {
	owner := int64(3)
	other := int64(9)

	admin := middlewares.Identity{ID: 1, Role: user.RoleAdmin}
	editor := middlewares.Identity{ID: owner, Role: user.RoleEditor}

	if !admin.CanMutate(&other) {
		t.Error("admin must be able to mutate any resource")
	}
	if !editor.CanMutate(&owner) {
		t.Error("owner must be able to mutate their own resource")
	}
	if editor.CanMutate(&other) {
		t.Error("editor must not mutate someone else's resource")
	}
	if editor.CanMutate(nil) {
		t.Error("an orphaned resource is admin-only")
	}
}

func TestOptionalAuth(t *testing.T) {
	jwtManager := auth.NewManager("test-secret", 15*time.Minute, 24*time.Hour)

	liveUser := user.User{ID: 7, Email: "a@b.com", Name: "A", Role: user.RoleEditor}

	resolver := &fakeUserResolver{
		getFn: func(ctx context.Context, id int64) (user.User, error) {
			if id == liveUser.ID {
				return liveUser, nil
			}
			return user.User{}, user.ErrNotFound
		},
	}

	accessToken, err := jwtManager.GenerateAccessToken(liveUser.ID, liveUser.Email, liveUser.Role)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	deletedUserToken, err := jwtManager.GenerateAccessToken(99, "ghost@b.com", user.RoleEditor)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantAuthed bool
		wantUserID int64
	}{
		{name: "valid_token_attaches_identity", header: "Bearer " + accessToken, wantAuthed: true, wantUserID: liveUser.ID},
		// anonymous and broken credentials both pass through without
		// an identity, never with a 401
		{name: "no_header_passes_anonymously", header: ""},
		{name: "garbage_token_passes_anonymously", header: "Bearer not.a.jwt"},
		{name: "deleted_user_passes_anonymously", header: "Bearer " + deletedUserToken},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			mw := middlewares.NewAuthMiddleware(jwtManager, resolver)

			r := gin.New()
			r.GET("/view", mw.OptionalAuth(), func(c *gin.Context) {
				ident, authed := middlewares.IdentityFromContext(c)
				c.JSON(http.StatusOK, gin.H{"authed": authed, "id": ident.ID})
			})

			req := httptest.NewRequest(http.MethodGet, "/view", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
			}

			var body struct {
				Authed bool  `json:"authed"`
				ID     int64 `json:"id"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}

			if body.Authed != tt.wantAuthed {
				t.Fatalf("authed = %v, want %v", body.Authed, tt.wantAuthed)
			}
			if body.ID != tt.wantUserID {
				t.Fatalf("identity id = %d, want %d", body.ID, tt.wantUserID)
			}
		})
	}
}
