package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwellcms/inkwell/internal/auth"
	"github.com/inkwellcms/inkwell/internal/domain/user"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type UserResolver interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

// Identity is what a verified request carries: the resolved user row's
// public fields, never the whole record.
type Identity struct {
	ID     int64
	Email  string
	Name   string
	Role   string
	Avatar *string
}

func (i Identity) IsAdmin() bool {
	return i.Role == user.RoleAdmin
}

// CanMutate is the ownership check shared by posts, pages, clients and
// media: the resource's creator or an admin.
func (i Identity) CanMutate(ownerID *int64) bool {
	if i.IsAdmin() {
		return true
	}
	return ownerID != nil && *ownerID == i.ID
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserResolver
}

func NewAuthMiddleware(jwt TokenVerifier, users UserResolver) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		ident, err := m.resolveIdentity(c, claims.UserID)
		if err != nil {
			abortUnauthorized(c, "User no longer exists")
			return
		}

		SetIdentity(c, ident)

		c.Next()
	}
}

// OptionalAuth attaches an identity when the request carries a valid
// bearer token and lets it through anonymously otherwise. Routes that
// render a different view for staff use it.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			c.Next()
			return
		}

		ident, err := m.resolveIdentity(c, claims.UserID)
		if err != nil {
			c.Next()
			return
		}

		SetIdentity(c, ident)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}

	raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))

	return raw, raw != ""
}

// resolveIdentity maps a token subject to a live user row; a deleted
// user's still-valid token must not pass.
func (m *AuthMiddleware) resolveIdentity(c *gin.Context, userID int64) (Identity, error) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return Identity{}, err
	}

	return Identity{
		ID:     u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   u.Role,
		Avatar: u.Avatar,
	}, nil
}

// SetIdentity attaches the verified identity to the request context.
func SetIdentity(c *gin.Context, ident Identity) {
	c.Set(ctxIdentity, ident)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": message,
		},
	})
}

// IdentityFromContext lets handlers skip the magic context key.
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(ctxIdentity)
	if !ok {
		return Identity{}, false
	}
	ident, ok := v.(Identity)
	return ident, ok
}
