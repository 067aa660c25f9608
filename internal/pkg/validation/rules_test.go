package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CheckEmail(t *testing.T) {
	rules := NewRules("")

	testCases := []struct {
		email string
		ok    bool
	}{
		{email: "juan.dela-cruz+lib@bpsu.edu.ph", ok: true},
		{email: "JUAN@bpsu.edu.ph", ok: true},
		{email: "juan@gmail.com"},
		{email: "juan@bpsuxedu.ph"},
		{email: "juan@bpsu.edu.ph.evil.com"},
		{email: "@bpsu.edu.ph"},
	}

	for _, tc := range testCases {
		t.Run(tc.email, func(t *testing.T) {
			err := rules.CheckEmail(tc.email)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func Test_CheckNewPassword(t *testing.T) {
	assert.NoError(t, CheckNewPassword("secret", "secret"))
	assert.ErrorContains(t, CheckNewPassword("short", "short"), "at least 6")
	assert.ErrorContains(t, CheckNewPassword("secret1", "secret2"), "do not match")
}

func Test_CheckName(t *testing.T) {
	assert.NoError(t, CheckName("Ana"))
	assert.Error(t, CheckName(" A "))
}

func Test_Register_ValidatorTag(t *testing.T) {
	// arrange
	v := validator.New()
	require.NoError(t, NewRules("bpsu.edu.ph").Register(v))
	type form struct {
		Email string `validate:"required,bpsuemail"`
	}

	// act / assert
	assert.NoError(t, v.Struct(form{Email: "a@bpsu.edu.ph"}))
	assert.Error(t, v.Struct(form{Email: "a@yahoo.com"}))
	assert.True(t, IsInstitutionalEmail("a@bpsu.edu.ph"))
}
