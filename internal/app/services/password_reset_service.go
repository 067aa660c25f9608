package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"
	"strings"
	"time"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/auth"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/clock"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/email"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/filestorage"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// Generic answers that never reveal whether an account exists
const (
	ResetRequestedMessage = "If an account with that email exists, you will receive a password reset link shortly."
	ResetSubmittedMessage = "If an account with that email exists, your request has been submitted for review. You will be notified by email."
)

const identityProofDir = "identity_proofs"

// ResetConfig holds the reset workflow settings
type ResetConfig struct {
	TokenTTL       time.Duration
	MaxUploadBytes int64
	// ResetURL is the page that accepts ?token=
	ResetURL string
	// StatusURL is the page that reports a token's state
	StatusURL string
}

// PasswordResetService runs the reset request, review and consume workflow
type PasswordResetService struct {
	tx       TxManager
	users    UserStore
	resets   ResetStore
	sessions SessionStore
	proofs   filestorage.FileStorage
	mailer   email.EmailService
	config   ResetConfig
	clock    clock.Clock
	logger   zerolog.Logger
}

// NewPasswordResetService creates a new PasswordResetService
func NewPasswordResetService(
	tx TxManager,
	users UserStore,
	resets ResetStore,
	sessions SessionStore,
	proofs filestorage.FileStorage,
	mailer email.EmailService,
	config ResetConfig,
	clk clock.Clock,
	logger zerolog.Logger,
) *PasswordResetService {
	return &PasswordResetService{
		tx:       tx,
		users:    users,
		resets:   resets,
		sessions: sessions,
		proofs:   proofs,
		mailer:   mailer,
		config:   config,
		clock:    clk,
		logger:   logger,
	}
}

func (s *PasswordResetService) resetLink(token string) string {
	return s.config.ResetURL + "?token=" + url.QueryEscape(token)
}

// StatusLink is where an unusable token is sent
func (s *PasswordResetService) StatusLink(token string) string {
	return s.config.StatusURL + "?token=" + url.QueryEscape(token)
}

func (s *PasswordResetService) newReset(userID int64, status models.ResetStatus) (*models.PasswordReset, error) {
	token, err := auth.GenerateResetToken()
	if err != nil {
		return nil, err
	}
	return &models.PasswordReset{
		UserID:    userID,
		Token:     token,
		ExpiresAt: s.clock.Now().Add(s.config.TokenTTL),
		Status:    status,
	}, nil
}

// lookup finds the account for a reset request. A missing account is not
// an error for the caller.
func (s *PasswordResetService) lookup(ctx context.Context, address string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(address))
	if errors.Is(err, apperrors.ErrUserNotFound) {
		s.logger.Info().Str("email", address).Msg("Password reset requested for unknown email")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

// RequestEmailReset issues an immediately usable token and mails the link.
// The answer is the same whether or not the account exists, and a mail
// failure is logged rather than returned.
func (s *PasswordResetService) RequestEmailReset(ctx context.Context, address string) (string, error) {
	user, err := s.lookup(ctx, address)
	if err != nil || user == nil {
		return ResetRequestedMessage, err
	}

	reset, err := s.newReset(user.ID, models.ResetApproved)
	if err != nil {
		return "", err
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return "", fmt.Errorf("failed to store reset request: %w", err)
	}

	if err := s.mailer.SendResetLink(user.Email, user.Name, s.resetLink(reset.Token)); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to send password reset email")
	}
	s.logger.Info().Int64("userID", user.ID).Int64("resetID", reset.ID).Msg("Email-link password reset issued")
	return ResetRequestedMessage, nil
}

// RequestIdentityReset stores the identity document privately and queues a
// pending request for review. The upload is checked before anything else.
func (s *PasswordResetService) RequestIdentityReset(ctx context.Context, address string, proof *multipart.FileHeader) (string, error) {
	policy := filestorage.IdentityProofPolicy(s.config.MaxUploadBytes)
	if err := policy.Validate(proof); err != nil {
		return "", apperrors.NewValidationError(uploadMessage(err, "identity document"))
	}

	user, err := s.lookup(ctx, address)
	if err != nil || user == nil {
		return ResetSubmittedMessage, err
	}

	path, err := s.proofs.SaveFile(proof, identityProofDir, policy)
	if err != nil {
		return "", apperrors.NewStorageError("Could not store the identity document", err)
	}

	reset, err := s.newReset(user.ID, models.ResetPending)
	if err != nil {
		s.discardFile(path)
		return "", err
	}
	reset.IdentityProof = &path
	if err := s.resets.Create(ctx, reset); err != nil {
		s.discardFile(path)
		return "", fmt.Errorf("failed to store reset request: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Int64("resetID", reset.ID).Msg("Identity password reset submitted")
	return ResetSubmittedMessage, nil
}

func (s *PasswordResetService) discardFile(path string) {
	if err := s.proofs.DeleteFile(path); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Failed to remove orphaned upload")
	}
}

// ListPending returns the review queue
func (s *PasswordResetService) ListPending(ctx context.Context) ([]dto.PendingResetResponse, error) {
	resets, err := s.resets.ListPending(ctx, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list pending resets: %w", err)
	}
	return dto.NewPendingResetResponses(resets), nil
}

// IdentityProofPath returns the stored document of a request
func (s *PasswordResetService) IdentityProofPath(ctx context.Context, resetID int64) (string, error) {
	reset, err := s.resets.GetByID(ctx, resetID)
	if err != nil {
		return "", err
	}
	if !reset.HasIdentityProof() {
		return "", apperrors.NewResourceNotFoundError("This request has no identity document")
	}
	full, err := s.proofs.GetFullPath(*reset.IdentityProof)
	if err != nil {
		return "", apperrors.NewStorageError("Identity document is unavailable", err)
	}
	return full, nil
}

func (s *PasswordResetService) review(ctx context.Context, resetID int64, status models.ResetStatus, reason *string) (*models.PasswordReset, error) {
	reset, err := s.resets.GetByID(ctx, resetID)
	if err != nil {
		return nil, err
	}
	changed, err := s.resets.Review(ctx, resetID, status, reason)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, apperrors.ErrResetNotPending
	}
	reset.Status = status
	reset.RejectionReason = reason
	return reset, nil
}

// Approve makes a pending request's token usable and mails the link
func (s *PasswordResetService) Approve(ctx context.Context, reviewerID, resetID int64) error {
	reset, err := s.review(ctx, resetID, models.ResetApproved, nil)
	if err != nil {
		return err
	}
	if err := s.mailer.SendResetApproved(reset.UserEmail, reset.UserName, s.resetLink(reset.Token)); err != nil {
		s.logger.Error().Err(err).Int64("resetID", resetID).Msg("Failed to send reset approval email")
	}
	s.logger.Info().Int64("reviewerID", reviewerID).Int64("resetID", resetID).Msg("Password reset approved")
	return nil
}

// Reject closes a pending request and tells the requester why
func (s *PasswordResetService) Reject(ctx context.Context, reviewerID, resetID int64, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperrors.NewValidationError("A rejection reason is required")
	}
	reset, err := s.review(ctx, resetID, models.ResetRejected, &reason)
	if err != nil {
		return err
	}
	if err := s.mailer.SendResetRejected(reset.UserEmail, reset.UserName, reason); err != nil {
		s.logger.Error().Err(err).Int64("resetID", resetID).Msg("Failed to send reset rejection email")
	}
	s.logger.Info().Int64("reviewerID", reviewerID).Int64("resetID", resetID).Msg("Password reset rejected")
	return nil
}

// Status describes a token for the status page
func (s *PasswordResetService) Status(ctx context.Context, token string) (*dto.ResetStatusResponse, error) {
	reset, err := s.resets.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	resp := dto.NewResetStatusResponse(reset, s.clock.Now())
	return &resp, nil
}

// notUsable points the caller at the status page of token
func (s *PasswordResetService) notUsable(token string) error {
	return apperrors.ErrResetNotUsable.WithDetails(map[string]interface{}{"redirect": s.StatusLink(token)})
}

// CheckToken reports ErrResetNotUsable unless token may set a password now
func (s *PasswordResetService) CheckToken(ctx context.Context, token string) error {
	reset, err := s.resets.GetByToken(ctx, token)
	if errors.Is(err, apperrors.ErrResetNotFound) {
		return s.notUsable(token)
	}
	if err != nil {
		return err
	}
	if !reset.Usable(s.clock.Now()) {
		return s.notUsable(token)
	}
	return nil
}

// Consume sets a new password with an approved, unused, unexpired token.
// The password change, the used flag and the session revocation commit
// together. An unusable token is refused before the password is looked at.
func (s *PasswordResetService) Consume(ctx context.Context, req *dto.ConsumeResetRequest) error {
	if err := s.CheckToken(ctx, req.Token); err != nil {
		return err
	}
	if err := validation.CheckNewPassword(req.Password, req.ConfirmPassword); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	var userID int64
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		reset, err := s.resets.LockByToken(ctx, req.Token)
		if errors.Is(err, apperrors.ErrResetNotFound) {
			return s.notUsable(req.Token)
		}
		if err != nil {
			return err
		}
		if !reset.Usable(s.clock.Now()) {
			return s.notUsable(req.Token)
		}
		userID = reset.UserID

		if err := s.users.UpdatePassword(ctx, reset.UserID, hash); err != nil {
			return err
		}
		used, err := s.resets.MarkUsed(ctx, reset.ID)
		if err != nil {
			return err
		}
		if !used {
			return s.notUsable(req.Token)
		}
		_, err = s.sessions.RevokeAllForUser(ctx, reset.UserID)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int64("userID", userID).Msg("Password reset completed")
	return nil
}

func uploadMessage(err error, what string) string {
	switch {
	case errors.Is(err, filestorage.ErrNoFile):
		return "Please upload your " + what
	case errors.Is(err, filestorage.ErrFileTooLarge):
		return "The " + what + " is too large"
	case errors.Is(err, filestorage.ErrFileTypeRejected):
		return err.Error()
	}
	return "The " + what + " could not be accepted"
}
