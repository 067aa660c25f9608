// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/auth"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/middleware"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

// parseIDParam parses a positive ID from the request path
func parseIDParam(ctx *gin.Context, paramName string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid "+paramName).WithField(paramName)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// currentActor returns the signed-in caller or answers 401
func currentActor(ctx *gin.Context) (*auth.AuthContext, bool) {
	actor, ok := middleware.GetAuthContext(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return nil, false
	}
	return actor, true
}

// badRequest renders a binding failure
func badRequest(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
}
