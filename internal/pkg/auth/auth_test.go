package auth

import (
	"testing"
	"time"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(now time.Time) *JWTService {
	s := NewJWTService(JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "booklog.test"})
	s.now = func() time.Time { return now }
	return s
}

func Test_JWT_RoundTripCarriesSession(t *testing.T) {
	// arrange
	now := time.Now()
	svc := newTestJWTService(now)
	user := &models.User{ID: 42, Email: "juan@bpsu.edu.ph", Role: models.RoleLibrarian}

	// act
	issued, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	claims, err := svc.ValidateAndExtractClaims(issued.Token)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "librarian", claims.Role)
	assert.Equal(t, issued.SessionID, claims.ID)
	assert.WithinDuration(t, now.Add(time.Hour), issued.ExpiresAt, time.Second)
}

func Test_JWT_Expired(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	issuer := newTestJWTService(issuedAt)
	issued, err := issuer.GenerateAccessToken(&models.User{ID: 1, Email: "a@bpsu.edu.ph", Role: models.RoleUser})
	require.NoError(t, err)

	_, err = newTestJWTService(time.Now()).ValidateAndExtractClaims(issued.Token)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func Test_JWT_WrongSecretOrGarbage(t *testing.T) {
	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "booklog.test"})
	issued, err := other.GenerateAccessToken(&models.User{ID: 1, Email: "a@bpsu.edu.ph", Role: models.RoleUser})
	require.NoError(t, err)
	svc := newTestJWTService(time.Now())

	_, err = svc.ValidateAndExtractClaims(issued.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateAndExtractClaims("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = svc.ValidateAndExtractClaims("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func Test_ExtractBearerToken(t *testing.T) {
	testCases := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer", header: "Bearer a.b.c", want: "a.b.c"},
		{name: "raw jwt", header: "a.b.c", want: "a.b.c"},
		{name: "empty", header: "  ", wantErr: true},
		{name: "basic auth", header: "Basic dXNlcg==", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tc.header)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func Test_Password_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "secret124"))
}

func Test_GenerateResetToken_IsHexAndUnique(t *testing.T) {
	a, err := GenerateResetToken()
	require.NoError(t, err)
	b, err := GenerateResetToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Regexp(t, "^[0-9a-f]+$", a)
	assert.NotEqual(t, a, b)
}
