package dto

import (
	"time"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
)

// ForgotPasswordRequest starts the email-link reset flow
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email" example:"juan@bpsu.edu.ph"`
}

// IdentityResetRequest starts the reviewed reset flow. The identity
// document arrives as the "identityProof" multipart file.
type IdentityResetRequest struct {
	Email string `form:"email" binding:"required,email" example:"juan@bpsu.edu.ph"`
}

// RejectResetRequest carries the reason shown to the requester
type RejectResetRequest struct {
	Reason string `json:"reason" binding:"required,max=500" example:"The uploaded ID is unreadable"`
}

// ConsumeResetRequest sets a new password with a reset token
type ConsumeResetRequest struct {
	Token           string `json:"token" binding:"required,len=64"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

// ResetStatusResponse is the payload of the reset status page
type ResetStatusResponse struct {
	Status          models.ResetStatus `json:"status" example:"pending"`
	Used            bool               `json:"used" example:"false"`
	Expired         bool               `json:"expired" example:"false"`
	Usable          bool               `json:"usable" example:"false"`
	RejectionReason *string            `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
	ExpiresAt       time.Time          `json:"expiresAt"`
}

// PendingResetResponse is one request awaiting review
type PendingResetResponse struct {
	ID               int64     `json:"id" example:"5"`
	UserID           int64     `json:"userId" example:"7"`
	UserName         string    `json:"userName" example:"Juan Dela Cruz"`
	UserEmail        string    `json:"userEmail" example:"juan@bpsu.edu.ph"`
	HasIdentityProof bool      `json:"hasIdentityProof" example:"true"`
	CreatedAt        time.Time `json:"createdAt"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

// NewResetStatusResponse describes r as seen at now
func NewResetStatusResponse(r *models.PasswordReset, now time.Time) ResetStatusResponse {
	return ResetStatusResponse{
		Status:          r.Status,
		Used:            r.Used,
		Expired:         r.Expired(now),
		Usable:          r.Usable(now),
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		ExpiresAt:       r.ExpiresAt,
	}
}

// NewPendingResetResponses converts a review queue
func NewPendingResetResponses(resets []models.PasswordReset) []PendingResetResponse {
	out := make([]PendingResetResponse, 0, len(resets))
	for _, r := range resets {
		out = append(out, PendingResetResponse{
			ID:               r.ID,
			UserID:           r.UserID,
			UserName:         r.UserName,
			UserEmail:        r.UserEmail,
			HasIdentityProof: r.HasIdentityProof(),
			CreatedAt:        r.CreatedAt,
			ExpiresAt:        r.ExpiresAt,
		})
	}
	return out
}
