package services

import (
	"context"
	"testing"
	"time"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDashboard(db *memDB) *DashboardService {
	return NewDashboardService(fakeUsers{db: db}, &fakeBooks{db: db}, &fakeBorrows{db: db}, fakeResets{db: db},
		staticSettings{rules: testRules()}, clock.Fixed{At: testNow}, "/uploads", testLogger)
}

func Test_UserDashboard(t *testing.T) {
	// arrange
	db := newMemDB()
	u := db.addUser(models.User{Name: "Ana", Email: "ana@bpsu.edu.ph"})
	other := db.addUser(models.User{Name: "Ben", Email: "ben@bpsu.edu.ph"})
	book := db.addBook(models.Book{Title: "Go", ISBN: "1", Quantity: 3})
	returned := testToday
	db.addBorrow(models.Borrow{UserID: u.ID, BookID: book.ID, DueDate: testToday.AddDate(0, 0, -3)})
	db.addBorrow(models.Borrow{UserID: u.ID, BookID: book.ID, DueDate: testToday.AddDate(0, 0, 2)})
	db.addBorrow(models.Borrow{UserID: u.ID, BookID: book.ID, DueDate: testToday, ReturnDate: &returned})
	db.addBorrow(models.Borrow{UserID: other.ID, BookID: book.ID, DueDate: testToday.AddDate(0, 0, -9)})

	// act
	d, err := newDashboard(db).UserDashboard(context.Background(), u.ID)

	// assert
	require.NoError(t, err)
	assert.Len(t, d.ActiveLoans, 2)
	assert.Equal(t, 1, d.OverdueCount)
	assert.Equal(t, 5, d.EffectiveLimit)
	assert.Equal(t, 3, d.Remaining)
	assert.Equal(t, "15.00", d.OutstandingFines.StringFixed(2))
	require.Len(t, d.RecentBooks, 1)
	assert.Equal(t, 3, d.RecentBooks[0].Available)
}

func Test_UserDashboard_RemainingNeverNegative(t *testing.T) {
	db := newMemDB()
	u := db.addUser(models.User{Name: "Ana", Email: "ana@bpsu.edu.ph", BorrowLimit: intPtr(1)})
	db.addBorrow(models.Borrow{UserID: u.ID, BookID: 1, DueDate: testToday})
	db.addBorrow(models.Borrow{UserID: u.ID, BookID: 2, DueDate: testToday})

	d, err := newDashboard(db).UserDashboard(context.Background(), u.ID)

	require.NoError(t, err)
	assert.Equal(t, 0, d.Remaining)
}

func Test_AdminDashboard(t *testing.T) {
	// arrange
	db := newMemDB()
	u := db.addUser(models.User{Name: "Ana", Email: "ana@bpsu.edu.ph"})
	db.addUser(models.User{Name: "Admin", Email: "admin@bpsu.edu.ph", Role: models.RoleAdmin})
	a := db.addBook(models.Book{Title: "A", ISBN: "1", Quantity: 2})
	db.addBook(models.Book{Title: "B", ISBN: "2", Quantity: 4})
	db.addBorrow(models.Borrow{UserID: u.ID, BookID: a.ID, DueDate: testToday})
	db.addBorrow(models.Borrow{UserID: u.ID, BookID: a.ID, DueDate: testToday.AddDate(0, 0, -1)})
	db.resets[db.id()] = &models.PasswordReset{UserID: u.ID, Status: models.ResetPending, ExpiresAt: testNow.Add(time.Hour)}
	db.resets[db.id()] = &models.PasswordReset{UserID: u.ID, Status: models.ResetPending, ExpiresAt: testNow.Add(-time.Hour)}

	// act
	d, err := newDashboard(db).AdminDashboard(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.Totals.Titles)
	assert.Equal(t, int64(6), d.Totals.Copies)
	assert.Equal(t, int64(1), d.Totals.Borrowers)
	assert.Equal(t, int64(1), d.Totals.ActiveLoans)
	assert.Equal(t, int64(1), d.Totals.OverdueLoans)
	assert.Equal(t, int64(1), d.Totals.PendingResets)
	assert.Len(t, d.RecentBorrows, 2)
	require.Len(t, d.PopularBooks, 1)
	assert.Equal(t, 2, d.PopularBooks[0].BorrowCount)
}
