package middleware

import (
	"context"
	"strings"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/auth"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	pkgauth "github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/auth"
	"github.com/gin-gonic/gin"
)

// authContextKey is the gin key holding the caller
const authContextKey = "authContext"

// Authenticator resolves a token to the caller it belongs to
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.AuthContext, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	authenticator Authenticator
	cookieName    string
}

// NewAuthMiddleware creates a new AuthMiddleware. Tokens are read from the
// Authorization header and, failing that, from cookieName.
func NewAuthMiddleware(authenticator Authenticator, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		cookieName:    cookieName,
	}
}

func (m *AuthMiddleware) token(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		tokenString, err := pkgauth.ExtractBearerToken(strings.Trim(header, "\"'"))
		return tokenString, err == nil
	}
	if m.cookieName != "" {
		if cookie, err := c.Cookie(m.cookieName); err == nil && cookie != "" {
			return cookie, true
		}
	}
	return "", false
}

// JWTAuth builds the request's AuthContext from the token, its session
// and the current user row, and stores it on both the gin and the request
// context.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := m.token(c)
		if !ok {
			HandleAPIError(c, apperrors.ErrUnauthenticated)
			return
		}

		actor, err := m.authenticator.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		c.Set(authContextKey, actor)
		c.Request = c.Request.WithContext(auth.WithAuthContext(c.Request.Context(), actor))
		c.Next()
	}
}

// Require admits callers for which allowed holds. It must run after JWTAuth.
func (m *AuthMiddleware) Require(allowed func(*auth.AuthContext) bool, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetAuthContext(c)
		if !ok {
			HandleAPIError(c, apperrors.ErrUnauthenticated)
			return
		}
		if !allowed(actor) {
			Forbid(c, message)
			return
		}
		c.Next()
	}
}

// RoleRequired admits callers holding one of roles
func (m *AuthMiddleware) RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return m.Require(func(a *auth.AuthContext) bool {
		return a.HasRole(roles...)
	}, "You don't have sufficient permissions for this operation")
}

// StaffRequired admits librarians, head librarians and administrators
func (m *AuthMiddleware) StaffRequired() gin.HandlerFunc {
	return m.Require((*auth.AuthContext).IsLibrarianOrHigher, "This area is for library staff only")
}

// AdminRequired admits administrators and head librarians
func (m *AuthMiddleware) AdminRequired() gin.HandlerFunc {
	return m.Require((*auth.AuthContext).IsAdminOrHeadLibrarian, "This area is for administrators only")
}

// BorrowerRequired admits everyone except administrators and head
// librarians, who manage loans instead of taking them.
func (m *AuthMiddleware) BorrowerRequired() gin.HandlerFunc {
	return m.Require(func(a *auth.AuthContext) bool {
		return !a.IsAdminOrHeadLibrarian()
	}, "Administrators cannot borrow books")
}

// GetAuthContext returns the caller stored by JWTAuth
func GetAuthContext(c *gin.Context) (*auth.AuthContext, bool) {
	v, exists := c.Get(authContextKey)
	if !exists {
		return nil, false
	}
	actor, ok := v.(*auth.AuthContext)
	return actor, ok && actor != nil
}
