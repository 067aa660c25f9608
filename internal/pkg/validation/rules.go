package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validation rule values
var (
	// DefaultEmailDomain is the institutional domain accounts must belong to
	DefaultEmailDomain = "bpsu.edu.ph"

	PasswordMinLength = 6

	NameMinLength = 2
	NameMaxLength = 100
)

// InstitutionalEmailTag is the validator tag for institutional addresses
const InstitutionalEmailTag = "bpsuemail"

var defaultEmailPattern = EmailPattern(DefaultEmailDomain)

// EmailPattern compiles the address rule for domain
func EmailPattern(domain string) *regexp.Regexp {
	return regexp.MustCompile(`^[A-Za-z0-9._%+-]+@` + regexp.QuoteMeta(domain) + `$`)
}

// IsInstitutionalEmail reports whether email belongs to the default domain
func IsInstitutionalEmail(email string) bool {
	return defaultEmailPattern.MatchString(email)
}

// Rules carries the configured email domain
type Rules struct {
	EmailDomain  string
	emailPattern *regexp.Regexp
}

// NewRules builds rules for an institutional domain
func NewRules(domain string) *Rules {
	if domain == "" {
		domain = DefaultEmailDomain
	}
	return &Rules{EmailDomain: domain, emailPattern: EmailPattern(domain)}
}

// CheckEmail validates an institutional address
func (r *Rules) CheckEmail(email string) error {
	if !r.emailPattern.MatchString(email) {
		return fmt.Errorf("email must be a valid @%s address", r.EmailDomain)
	}
	return nil
}

// CheckName validates a display name
func CheckName(name string) error {
	n := len(strings.TrimSpace(name))
	if n < NameMinLength || n > NameMaxLength {
		return fmt.Errorf("name must be between %d and %d characters", NameMinLength, NameMaxLength)
	}
	return nil
}

// CheckNewPassword validates a new password against its confirmation
func CheckNewPassword(password, confirm string) error {
	if len(password) < PasswordMinLength {
		return fmt.Errorf("password must be at least %d characters long", PasswordMinLength)
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}
	return nil
}

// Register adds the institutional email tag to v
func (r *Rules) Register(v *validator.Validate) error {
	return v.RegisterValidation(InstitutionalEmailTag, func(fl validator.FieldLevel) bool {
		return r.emailPattern.MatchString(fl.Field().String())
	})
}
