package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/auth"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuthenticator map[string]*auth.AuthContext

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*auth.AuthContext, error) {
	if actor, ok := s[token]; ok {
		return actor, nil
	}
	return nil, apperrors.ErrTokenRevoked
}

var (
	borrower = &auth.AuthContext{UserID: 1, Role: models.RoleUser}
	head     = &auth.AuthContext{UserID: 2, Role: models.RoleHeadLibrarian}
	clerk    = &auth.AuthContext{UserID: 3, Role: models.RoleLibrarian}
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func details(resp dto.ErrorResponse) map[string]interface{} {
	m, _ := resp.Error.Details.(map[string]interface{})
	return m
}

func Test_HandleAPIError(t *testing.T) {
	testCases := []struct {
		name        string
		err         error
		actor       *auth.AuthContext
		wantStatus  int
		wantCode    dto.ErrorCode
		wantMessage string
		wantReason  string
	}{
		{name: "validation", err: apperrors.NewValidationError("title is required"), wantStatus: 400, wantCode: dto.ErrorCodeValidationFailed, wantMessage: "title is required", wantReason: "VALIDATION"},
		{name: "not found", err: fmt.Errorf("loading: %w", apperrors.ErrBookNotFound), wantStatus: 404, wantCode: dto.ErrorCodeResourceNotFound, wantMessage: "Book not found", wantReason: "BOOK_NOT_FOUND"},
		{name: "conflict", err: apperrors.ErrBookUnavailable, wantStatus: 409, wantCode: dto.ErrorCodeConflict, wantReason: "BOOK_UNAVAILABLE"},
		{name: "duplicate", err: apperrors.ErrDuplicateISBN, wantStatus: 409, wantCode: dto.ErrorCodeResourceAlreadyExists, wantReason: "DUPLICATE_ISBN"},
		{name: "credentials", err: apperrors.ErrInvalidCredentials, wantStatus: 401, wantCode: dto.ErrorCodeInvalidCredentials, wantMessage: "Invalid email or password"},
		{name: "disabled", err: apperrors.ErrAccountDisabled, wantStatus: 403, wantCode: dto.ErrorCodeAccountDisabled},
		{name: "expired", err: apperrors.ErrTokenExpired, wantStatus: 401, wantCode: dto.ErrorCodeExpiredToken},
		{name: "unknown", err: errors.New("pq: connection refused"), wantStatus: 500, wantCode: dto.ErrorCodeInternalServer, wantMessage: "Internal server error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)

			// act
			HandleAPIError(c, tc.err)

			// assert
			assert.Equal(t, tc.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
			if tc.wantMessage != "" {
				assert.Equal(t, tc.wantMessage, resp.Error.Message)
			}
			if tc.wantReason != "" {
				assert.Equal(t, tc.wantReason, details(resp)["reason"])
			}
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func Test_HandleAPIError_ForbiddenPointsAtDashboard(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/borrows", nil)
	c.Set(authContextKey, head)

	HandleAPIError(c, apperrors.ErrNotBorrowOwner)

	assert.Equal(t, http.StatusForbidden, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, auth.StaffDashboardPath, details(resp)["redirect"])
	assert.Equal(t, "NOT_BORROW_OWNER", details(resp)["reason"])
}

func Test_HandleAPIError_UnusableResetRedirects(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/password-reset/consume", nil)

	HandleAPIError(c, apperrors.ErrResetNotUsable.WithDetails(map[string]interface{}{"redirect": "/reset/status?token=abc"}))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/reset/status?token=abc", w.Header().Get("Location"))
	assert.Equal(t, "RESET_NOT_USABLE", details(decodeError(t, w))["reason"])
}

func newAuthRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	m := NewAuthMiddleware(stubAuthenticator{"good": borrower, "head": head, "clerk": clerk}, "booklog_session")
	r := gin.New()
	chain := append([]gin.HandlerFunc{m.JWTAuth()}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		actor, ok := auth.FromContext(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, "%d", actor.UserID)
	})
	r.GET("/me", chain...)
	return r
}

func Test_JWTAuth(t *testing.T) {
	testCases := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantBody   string
	}{
		{name: "bearer header", header: "Bearer good", wantStatus: 200, wantBody: "1"},
		{name: "cookie", cookie: "head", wantStatus: 200, wantBody: "2"},
		{name: "missing", wantStatus: 401},
		{name: "revoked", header: "Bearer stale", wantStatus: 401},
		{name: "malformed", header: "Basic abc", wantStatus: 401},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			r := newAuthRouter()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "booklog_session", Value: tc.cookie})
			}
			w := httptest.NewRecorder()

			// act
			r.ServeHTTP(w, req)

			// assert
			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantBody != "" {
				assert.Equal(t, tc.wantBody, w.Body.String())
			}
		})
	}
}

func Test_RoleGuards(t *testing.T) {
	m := NewAuthMiddleware(stubAuthenticator{}, "")
	testCases := []struct {
		name  string
		guard gin.HandlerFunc
		token string
		want  int
	}{
		{name: "admin area admits head librarian", guard: m.AdminRequired(), token: "head", want: 200},
		{name: "admin area refuses librarian", guard: m.AdminRequired(), token: "clerk", want: 403},
		{name: "staff area admits librarian", guard: m.StaffRequired(), token: "clerk", want: 200},
		{name: "staff area refuses borrower", guard: m.StaffRequired(), token: "good", want: 403},
		{name: "borrowing refuses head librarian", guard: m.BorrowerRequired(), token: "head", want: 403},
		{name: "borrowing admits borrower", guard: m.BorrowerRequired(), token: "good", want: 200},
		{name: "role list", guard: m.RoleRequired(models.RoleLibrarian, models.RoleAdmin), token: "clerk", want: 200},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newAuthRouter(tc.guard)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer "+tc.token)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusForbidden {
				assert.NotEmpty(t, details(decodeError(t, w))["redirect"])
			}
		})
	}
}

func Test_RegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators(validation.NewRules("")))

	type form struct {
		Email string `json:"email" binding:"required,bpsuemail"`
	}
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var f form
		if err := c.ShouldBindJSON(&f); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
			return
		}
		c.Status(http.StatusOK)
	})

	for body, want := range map[string]int{
		`{"email":"ana@bpsu.edu.ph"}`: http.StatusOK,
		`{"email":"ana@gmail.com"}`:   http.StatusBadRequest,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
		assert.Equal(t, want, w.Code, body)
	}
}
