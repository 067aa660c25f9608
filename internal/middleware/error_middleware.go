package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

// apiError is the HTTP rendering of an application error
type apiError struct {
	status  int
	code    dto.ErrorCode
	message string
}

// authErrors are matched before the generic kinds
var authErrors = []struct {
	err error
	apiError
}{
	{apperrors.ErrInvalidCredentials, apiError{http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid email or password"}},
	{apperrors.ErrAccountDisabled, apiError{http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Your account is not active. Please contact the library"}},
	{apperrors.ErrTokenExpired, apiError{http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Your session has expired. Please sign in again"}},
	{apperrors.ErrTokenRevoked, apiError{http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Your session has ended. Please sign in again"}},
	{apperrors.ErrTokenInvalid, apiError{http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"}},
	{apperrors.ErrUnauthenticated, apiError{http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"}},
}

func classify(err error) apiError {
	for _, a := range authErrors {
		if errors.Is(err, a.err) {
			return a.apiError
		}
	}

	switch apperrors.Kind(err) {
	case apperrors.ErrValidationFailed:
		return apiError{http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"}
	case apperrors.ErrResourceNotFound:
		return apiError{http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"}
	case apperrors.ErrConflict:
		if strings.HasPrefix(apperrors.Code(err), "DUPLICATE_") {
			return apiError{http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"}
		}
		return apiError{http.StatusConflict, dto.ErrorCodeConflict, "Request conflicts with the current state"}
	case apperrors.ErrPermissionDenied:
		return apiError{http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"}
	case apperrors.ErrStorage:
		return apiError{http.StatusInternalServerError, dto.ErrorCodeStorageError, "File storage error"}
	}
	return apiError{http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"}
}

// HandleAPIError renders err as the standard error envelope. The domain
// code travels in details.reason. A forbidden caller is pointed back at
// their own dashboard, and an unusable reset token answers 303 See Other
// towards its status page.
func HandleAPIError(c *gin.Context, err error) {
	a := classify(err)

	details := map[string]interface{}{}
	for k, v := range apperrors.Details(err) {
		details[k] = v
	}
	if code := apperrors.Code(err); code != "" {
		details["reason"] = code
	}

	message := a.message
	if a.status < http.StatusInternalServerError {
		if m := apperrors.Message(err); m != "" {
			message = m
		}
	} else {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}

	if errors.Is(err, apperrors.ErrPermissionDenied) {
		actor, _ := GetAuthContext(c)
		details["redirect"] = actor.DashboardPath()
	}
	if errors.Is(err, apperrors.ErrResetNotUsable) {
		if redirect, ok := details["redirect"].(string); ok && redirect != "" {
			a.status = http.StatusSeeOther
			c.Header("Location", redirect)
		}
	}

	detail := dto.NewErrorDetail(a.code, message)
	if len(details) > 0 {
		detail = detail.WithDetails(details)
	}
	c.AbortWithStatusJSON(a.status, dto.NewErrorResponse(detail))
}

// Forbid rejects the caller with a pointer back to their dashboard
func Forbid(c *gin.Context, message string) {
	HandleAPIError(c, apperrors.NewForbiddenError(message))
}
