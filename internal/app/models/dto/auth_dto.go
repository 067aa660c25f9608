package dto

import (
	"time"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"juan@bpsu.edu.ph"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// RegisterRequest represents a self-service account registration
type RegisterRequest struct {
	Name            string `json:"name" binding:"required,min=2,max=100" example:"Juan Dela Cruz"`
	Email           string `json:"email" binding:"required,bpsuemail" example:"juan@bpsu.edu.ph"`
	Password        string `json:"password" binding:"required,min=6" example:"secret123"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password" example:"secret123"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64     `json:"expiresIn" example:"43200"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token     TokenResponse `json:"token"`
	User      *models.User  `json:"user"`
	Dashboard string        `json:"dashboard" example:"/api/v1/dashboard"`
}

// UpdateProfileRequest represents profile update data
type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=100" example:"Juan Dela Cruz"`
	Email string `json:"email" binding:"required,email" example:"juan@bpsu.edu.ph"`
}

// ChangePasswordRequest changes the signed-in user's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=NewPassword"`
}
