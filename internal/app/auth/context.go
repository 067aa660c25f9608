// Package auth carries the authenticated caller through a request.
package auth

import (
	"context"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
)

// Dashboard paths callers are sent back to when they reach a page their
// role does not allow.
const (
	UserDashboardPath  = "/api/v1/dashboard"
	StaffDashboardPath = "/api/v1/admin/dashboard"
)

type contextKey struct{}

// AuthContext is the caller of one request. It is built once by the
// authentication middleware and passed down explicitly.
type AuthContext struct {
	UserID    int64
	Name      string
	Email     string
	Role      models.Role
	SessionID string
}

// NewAuthContext builds the caller for user signed in on sessionID
func NewAuthContext(user *models.User, sessionID string) *AuthContext {
	return &AuthContext{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		SessionID: sessionID,
	}
}

func (a *AuthContext) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

func (a *AuthContext) IsHeadLibrarian() bool {
	return a != nil && a.Role == models.RoleHeadLibrarian
}

// IsAdminOrHeadLibrarian gates catalog, user and report administration
func (a *AuthContext) IsAdminOrHeadLibrarian() bool {
	return a.IsAdmin() || a.IsHeadLibrarian()
}

// IsLibrarianOrHigher gates the transactions desk
func (a *AuthContext) IsLibrarianOrHigher() bool {
	return a != nil && a.Role.IsStaff()
}

// HasRole reports whether the caller holds any of roles
func (a *AuthContext) HasRole(roles ...models.Role) bool {
	if a == nil {
		return false
	}
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// DashboardPath is where the caller lands after sign-in or a denied page
func (a *AuthContext) DashboardPath() string {
	if a.IsAdminOrHeadLibrarian() {
		return StaffDashboardPath
	}
	return UserDashboardPath
}

// WithAuthContext returns a context carrying a
func WithAuthContext(ctx context.Context, a *AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// FromContext returns the caller carried by ctx, if any
func FromContext(ctx context.Context) (*AuthContext, bool) {
	a, ok := ctx.Value(contextKey{}).(*AuthContext)
	return a, ok && a != nil
}
