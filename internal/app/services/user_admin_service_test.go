package services

import (
	"context"
	"testing"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/auth"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	adminActor     = &auth.AuthContext{UserID: 900, Role: models.RoleAdmin}
	librarianActor = &auth.AuthContext{UserID: 901, Role: models.RoleLibrarian}
)

func newUserAdmin(f *ledgerFixture) *UserAdminService {
	return NewUserAdminService(fakeUsers{db: f.db}, f.borrows, f.svc,
		staticSettings{rules: testRules()}, clock.Fixed{At: testNow}, DefaultMaxCustomLimit, testLogger)
}

func Test_ListUsers_OnlyBorrowers(t *testing.T) {
	// arrange
	f := newLedger()
	svc := newUserAdmin(f)
	f.db.addUser(models.User{Name: "Ana", Email: "ana@bpsu.edu.ph"})
	f.db.addUser(models.User{Name: "Ben", Email: "ben@bpsu.edu.ph", Status: models.UserStatusSuspended})
	f.db.addUser(models.User{Name: "Head", Email: "head@bpsu.edu.ph", Role: models.RoleHeadLibrarian})

	// act
	all, err := svc.ListUsers(context.Background(), adminActor, &dto.UserQuery{}, 1, 10)
	require.NoError(t, err)
	suspended, err := svc.ListUsers(context.Background(), adminActor, &dto.UserQuery{Status: "suspended"}, 1, 10)
	require.NoError(t, err)
	_, forbidden := svc.ListUsers(context.Background(), librarianActor, &dto.UserQuery{}, 1, 10)

	// assert
	assert.Len(t, all.Users, 2)
	require.Len(t, suspended.Users, 1)
	assert.Equal(t, "Ben", suspended.Users[0].Name)
	assert.ErrorIs(t, forbidden, apperrors.ErrPermissionDenied)
}

func Test_GetUserDetails(t *testing.T) {
	// arrange
	f := newLedger()
	svc := newUserAdmin(f)
	u := f.db.addUser(models.User{Name: "Ana", Email: "ana@bpsu.edu.ph", BorrowLimit: intPtr(8)})
	staff := f.db.addUser(models.User{Name: "Lib", Email: "lib@bpsu.edu.ph", Role: models.RoleLibrarian})
	returned := testToday.AddDate(0, 0, -1)
	f.db.addBorrow(models.Borrow{UserID: u.ID, BookID: 1, DueDate: testToday})
	f.db.addBorrow(models.Borrow{UserID: u.ID, BookID: 2, DueDate: testToday.AddDate(0, 0, -2)})
	f.db.addBorrow(models.Borrow{UserID: u.ID, BookID: 3, DueDate: testToday, ReturnDate: &returned})

	// act
	details, err := svc.GetUserDetails(context.Background(), adminActor, u.ID)
	_, staffErr := svc.GetUserDetails(context.Background(), adminActor, staff.ID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, dto.LoanStatsResponse{Total: 3, Active: 1, Overdue: 1, Returned: 1}, details.Stats)
	assert.Equal(t, 8, details.EffectiveLimit)
	assert.True(t, details.HasCustomLimit)
	assert.ErrorIs(t, staffErr, apperrors.ErrUserNotFound)
}

func Test_SetBorrowLimit(t *testing.T) {
	testCases := []struct {
		name      string
		req       dto.SetBorrowLimitRequest
		wantErr   error
		wantLimit int
	}{
		{name: "custom", req: dto.SetBorrowLimitRequest{Limit: intPtr(12)}, wantLimit: 12},
		{name: "upper bound", req: dto.SetBorrowLimitRequest{Limit: intPtr(20)}, wantLimit: 20},
		{name: "reset", req: dto.SetBorrowLimitRequest{Reset: true}, wantLimit: 5},
		{name: "zero", req: dto.SetBorrowLimitRequest{Limit: intPtr(0)}, wantErr: apperrors.ErrValidationFailed},
		{name: "too high", req: dto.SetBorrowLimitRequest{Limit: intPtr(21)}, wantErr: apperrors.ErrValidationFailed},
		{name: "missing", req: dto.SetBorrowLimitRequest{}, wantErr: apperrors.ErrValidationFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			f := newLedger()
			svc := newUserAdmin(f)
			u := f.db.addUser(models.User{Name: "Ana", Email: "ana@bpsu.edu.ph", BorrowLimit: intPtr(3)})

			// act
			details, err := svc.SetBorrowLimit(context.Background(), adminActor, u.ID, &tc.req)

			// assert
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, 3, *f.db.users[u.ID].BorrowLimit)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantLimit, details.EffectiveLimit)
			assert.Equal(t, !tc.req.Reset, details.HasCustomLimit)
		})
	}
}

func Test_SetBorrowLimit_ResetRestoresDefaultForBorrowing(t *testing.T) {
	// arrange
	f := newLedger()
	svc := newUserAdmin(f)
	u := f.db.addUser(models.User{Name: "Ana", Email: "ana@bpsu.edu.ph", BorrowLimit: intPtr(1)})
	first := f.db.addBook(models.Book{ISBN: "1", Quantity: 1})
	second := f.db.addBook(models.Book{ISBN: "2", Quantity: 1})
	_, err := f.svc.Borrow(context.Background(), u.ID, first.ID)
	require.NoError(t, err)

	// act
	_, limited := f.svc.Borrow(context.Background(), u.ID, second.ID)
	_, err = svc.SetBorrowLimit(context.Background(), adminActor, u.ID, &dto.SetBorrowLimitRequest{Reset: true})
	require.NoError(t, err)
	_, afterReset := f.svc.Borrow(context.Background(), u.ID, second.ID)

	// assert
	assert.ErrorIs(t, limited, apperrors.ErrLimitReached)
	assert.NoError(t, afterReset)
}

func Test_SetStatus(t *testing.T) {
	f := newLedger()
	svc := newUserAdmin(f)
	u := f.db.addUser(models.User{Name: "Ana", Email: "ana@bpsu.edu.ph"})
	head := f.db.addUser(models.User{Name: "Head", Email: "head@bpsu.edu.ph", Role: models.RoleHeadLibrarian})

	require.NoError(t, svc.SetStatus(context.Background(), adminActor, u.ID, models.UserStatusSuspended))
	assert.Equal(t, models.UserStatusSuspended, f.db.users[u.ID].Status)
	assert.ErrorIs(t, svc.SetStatus(context.Background(), adminActor, u.ID, "banned"), apperrors.ErrValidationFailed)
	assert.ErrorIs(t, svc.SetStatus(context.Background(), adminActor, head.ID, models.UserStatusInactive), apperrors.ErrUserNotFound)
	assert.ErrorIs(t, svc.SetStatus(context.Background(), librarianActor, u.ID, models.UserStatusActive), apperrors.ErrPermissionDenied)
}

func Test_UserBorrowsAndExtend(t *testing.T) {
	// arrange
	f := newLedger()
	svc := newUserAdmin(f)
	u := f.db.addUser(models.User{Name: "Ana", Email: "ana@bpsu.edu.ph"})
	overdue := f.db.addBorrow(models.Borrow{UserID: u.ID, BookID: 1, DueDate: testToday.AddDate(0, 0, -2)})
	f.db.addBorrow(models.Borrow{UserID: u.ID, BookID: 2, DueDate: testToday.AddDate(0, 0, 3)})

	// act
	list, err := svc.UserBorrows(context.Background(), adminActor, u.ID, models.LoanOverdue, 1, 10)
	require.NoError(t, err)
	resp, err := svc.ExtendLoans(context.Background(), adminActor, u.ID, &dto.ExtendDueDateRequest{BorrowIDs: []int64{overdue.ID}, Days: 5})
	require.NoError(t, err)

	// assert
	require.Len(t, list.Borrows, 1)
	assert.Equal(t, overdue.ID, list.Borrows[0].ID)
	assert.Equal(t, 2, list.Borrows[0].DaysOverdue)
	assert.Equal(t, dto.ExtendDueDateResponse{Requested: 1, Extended: 1}, *resp)
	assert.Equal(t, testToday.AddDate(0, 0, 3), f.db.borrows[overdue.ID].DueDate)
}
