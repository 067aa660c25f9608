package models

import "time"

// PasswordReset is a reset request. The token may set a new password only
// while it is approved, unused and unexpired.
type PasswordReset struct {
	ID              int64       `json:"id" db:"id"`
	UserID          int64       `json:"userId" db:"user_id"`
	Token           string      `json:"-" db:"token"`
	ExpiresAt       time.Time   `json:"expiresAt" db:"expires_at"`
	Used            bool        `json:"used" db:"used"`
	Status          ResetStatus `json:"status" db:"status"`
	IdentityProof   *string     `json:"-" db:"identity_proof"`
	RejectionReason *string     `json:"rejectionReason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" db:"updated_at"`

	UserName  string `json:"userName,omitempty" db:"user_name"`
	UserEmail string `json:"userEmail,omitempty" db:"user_email"`
}

// Expired reports whether the token lifetime has passed at now
func (r *PasswordReset) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// Usable reports whether the token may change a password at now
func (r *PasswordReset) Usable(now time.Time) bool {
	return r.Status == ResetApproved && !r.Used && !r.Expired(now)
}

// HasIdentityProof reports whether the request came through the identity flow
func (r *PasswordReset) HasIdentityProof() bool {
	return r.IdentityProof != nil && *r.IdentityProof != ""
}
