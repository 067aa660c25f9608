package services

import (
	"context"
	"testing"
	"time"

	appauth "github.com/frnchklz/BookLog-BPSULibrary/internal/app/auth"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/auth"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/clock"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	auth.BcryptCost = bcrypt.MinCost
}

func newAuthService(db *memDB) *AuthService {
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "booklog-test",
	})
	return NewAuthService(fakeUsers{db: db}, fakeSessions{db: db}, jwtService,
		validation.NewRules("bpsu.edu.ph"), clock.Real{}, testLogger)
}

func registerRequest(email string) *dto.RegisterRequest {
	return &dto.RegisterRequest{Name: "Ana Reyes", Email: email, Password: "secret1", ConfirmPassword: "secret1"}
}

func Test_Register(t *testing.T) {
	testCases := []struct {
		name    string
		req     *dto.RegisterRequest
		wantErr error
	}{
		{name: "valid", req: registerRequest("Ana@BPSU.edu.ph")},
		{name: "foreign domain", req: registerRequest("ana@gmail.com"), wantErr: apperrors.ErrValidationFailed},
		{name: "short password", req: &dto.RegisterRequest{Name: "Ana", Email: "a@bpsu.edu.ph", Password: "123", ConfirmPassword: "123"}, wantErr: apperrors.ErrValidationFailed},
		{name: "mismatch", req: &dto.RegisterRequest{Name: "Ana", Email: "a@bpsu.edu.ph", Password: "secret1", ConfirmPassword: "secret2"}, wantErr: apperrors.ErrValidationFailed},
		{name: "taken", req: registerRequest("taken@bpsu.edu.ph"), wantErr: apperrors.ErrEmailExists},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			db := newMemDB()
			db.addUser(models.User{Email: "taken@bpsu.edu.ph"})
			svc := newAuthService(db)

			// act
			user, err := svc.Register(context.Background(), tc.req)

			// assert
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Len(t, db.users, 1)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ana@bpsu.edu.ph", user.Email)
			assert.Equal(t, models.RoleUser, user.Role)
			assert.Equal(t, models.UserStatusActive, user.Status)
			assert.True(t, auth.CheckPassword(db.users[user.ID].Password, "secret1"))
		})
	}
}

func Test_Login_AuthenticateLogout(t *testing.T) {
	// arrange
	db := newMemDB()
	svc := newAuthService(db)
	ctx := context.Background()
	_, err := svc.Register(ctx, registerRequest("ana@bpsu.edu.ph"))
	require.NoError(t, err)

	// act
	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "ANA@bpsu.edu.ph", Password: "secret1"}, "test-agent", "127.0.0.1")
	require.NoError(t, err)
	caller, err := svc.Authenticate(ctx, resp.Token.AccessToken)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, caller.SessionID))
	_, afterLogout := svc.Authenticate(ctx, resp.Token.AccessToken)

	// assert
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.Equal(t, appauth.UserDashboardPath, resp.Dashboard)
	assert.Equal(t, resp.User.ID, caller.UserID)
	assert.Equal(t, models.RoleUser, caller.Role)
	assert.Len(t, db.sessions, 1)
	assert.ErrorIs(t, afterLogout, apperrors.ErrTokenRevoked)
}

func Test_Login_Failures(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(db)
	ctx := context.Background()
	user, err := svc.Register(ctx, registerRequest("ana@bpsu.edu.ph"))
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "ana@bpsu.edu.ph", Password: "wrong"}, "", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@bpsu.edu.ph", Password: "secret1"}, "", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	db.users[user.ID].Status = models.UserStatusInactive
	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "ana@bpsu.edu.ph", Password: "secret1"}, "", "")
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
	assert.Empty(t, db.sessions)
}

func Test_Authenticate_RefusesSuspendedUserAndGarbage(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(db)
	ctx := context.Background()
	user, err := svc.Register(ctx, registerRequest("ana@bpsu.edu.ph"))
	require.NoError(t, err)
	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "ana@bpsu.edu.ph", Password: "secret1"}, "", "")
	require.NoError(t, err)

	db.users[user.ID].Status = models.UserStatusSuspended
	_, err = svc.Authenticate(ctx, resp.Token.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)

	_, err = svc.Authenticate(ctx, "not.a.token")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func Test_UpdateProfile(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(db)
	ctx := context.Background()
	me := db.addUser(models.User{Name: "Ana", Email: "ana@bpsu.edu.ph"})
	db.addUser(models.User{Name: "Ben", Email: "ben@bpsu.edu.ph"})
	staff := db.addUser(models.User{Name: "Lib", Email: "lib@bpsu.edu.ph", Role: models.RoleLibrarian})
	actor := &appauth.AuthContext{UserID: me.ID, Role: models.RoleUser}

	_, err := svc.UpdateProfile(ctx, actor, &dto.UpdateProfileRequest{Name: "Ana R", Email: "ben@bpsu.edu.ph"})
	assert.ErrorIs(t, err, apperrors.ErrEmailExists)

	_, err = svc.UpdateProfile(ctx, actor, &dto.UpdateProfileRequest{Name: "Ana R", Email: "ana@gmail.com"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	updated, err := svc.UpdateProfile(ctx, actor, &dto.UpdateProfileRequest{Name: " Ana R ", Email: "ana@bpsu.edu.ph"})
	require.NoError(t, err)
	assert.Equal(t, "Ana R", updated.Name)

	staffActor := &appauth.AuthContext{UserID: staff.ID, Role: models.RoleLibrarian}
	updated, err = svc.UpdateProfile(ctx, staffActor, &dto.UpdateProfileRequest{Name: "Lib", Email: "library@gmail.com"})
	require.NoError(t, err)
	assert.Equal(t, "library@gmail.com", updated.Email)
}

func Test_ChangePassword(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(db)
	ctx := context.Background()
	user, err := svc.Register(ctx, registerRequest("ana@bpsu.edu.ph"))
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newpass", ConfirmPassword: "newpass"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	err = svc.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "newpass", ConfirmPassword: "newpass"})
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(db.users[user.ID].Password, "newpass"))
}
