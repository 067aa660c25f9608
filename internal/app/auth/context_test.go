package auth

import (
	"context"
	"testing"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/stretchr/testify/assert"
)

func Test_AuthContext_Predicates(t *testing.T) {
	testCases := []struct {
		role            models.Role
		admin           bool
		adminOrHead     bool
		librarianOrHigh bool
		dashboard       string
	}{
		{role: models.RoleAdmin, admin: true, adminOrHead: true, librarianOrHigh: true, dashboard: StaffDashboardPath},
		{role: models.RoleHeadLibrarian, adminOrHead: true, librarianOrHigh: true, dashboard: StaffDashboardPath},
		{role: models.RoleLibrarian, librarianOrHigh: true, dashboard: UserDashboardPath},
		{role: models.RoleUser, dashboard: UserDashboardPath},
	}

	for _, tc := range testCases {
		t.Run(string(tc.role), func(t *testing.T) {
			a := &AuthContext{UserID: 1, Role: tc.role}

			assert.Equal(t, tc.admin, a.IsAdmin())
			assert.Equal(t, tc.adminOrHead, a.IsAdminOrHeadLibrarian())
			assert.Equal(t, tc.librarianOrHigh, a.IsLibrarianOrHigher())
			assert.Equal(t, tc.dashboard, a.DashboardPath())
		})
	}
}

func Test_AuthContext_NilIsAnonymous(t *testing.T) {
	var a *AuthContext

	assert.False(t, a.IsAdmin())
	assert.False(t, a.IsLibrarianOrHigher())
	assert.False(t, a.HasRole(models.RoleUser))
}

func Test_FromContext(t *testing.T) {
	a := NewAuthContext(&models.User{ID: 7, Name: "Ana", Role: models.RoleUser}, "sid")

	got, ok := FromContext(WithAuthContext(context.Background(), a))
	assert.True(t, ok)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "sid", got.SessionID)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}
