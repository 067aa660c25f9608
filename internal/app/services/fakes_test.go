package services

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"sort"
	"strings"
	"time"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/repositories"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/filestorage"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var errInjected = errors.New("injected failure")

var testLogger = zerolog.New(io.Discard)

func testRules() models.LibrarySettings {
	return models.LibrarySettings{
		SiteName:        "BookLog",
		AdminEmail:      "library@bpsu.edu.ph",
		MaxBooksPerUser: 5,
		MaxLoanDays:     5,
		ItemsPerPage:    6,
		FinePerDay:      decimal.NewFromInt(5),
	}
}

// memDB is an in-memory library. fakeTx snapshots it before a transaction
// and restores the snapshot when the transaction fails.
type memDB struct {
	users      map[int64]*models.User
	categories map[int64]*models.Category
	books      map[int64]*models.Book
	borrows    map[int64]*models.Borrow
	resets     map[int64]*models.PasswordReset
	sessions   map[string]*models.Session
	settings   map[string]string
	nextID     int64
}

func newMemDB() *memDB {
	return &memDB{
		users:      map[int64]*models.User{},
		categories: map[int64]*models.Category{},
		books:      map[int64]*models.Book{},
		borrows:    map[int64]*models.Borrow{},
		resets:     map[int64]*models.PasswordReset{},
		sessions:   map[string]*models.Session{},
		settings:   map[string]string{},
	}
}

func (m *memDB) id() int64 {
	m.nextID++
	return m.nextID
}

func copyMap[K comparable, V any](in map[K]*V) map[K]*V {
	out := make(map[K]*V, len(in))
	for k, v := range in {
		c := *v
		out[k] = &c
	}
	return out
}

func (m *memDB) clone() memDB {
	settings := make(map[string]string, len(m.settings))
	for k, v := range m.settings {
		settings[k] = v
	}
	return memDB{
		users:      copyMap(m.users),
		categories: copyMap(m.categories),
		books:      copyMap(m.books),
		borrows:    copyMap(m.borrows),
		resets:     copyMap(m.resets),
		sessions:   copyMap(m.sessions),
		settings:   settings,
		nextID:     m.nextID,
	}
}

func (m *memDB) addUser(u models.User) *models.User {
	u.ID = m.id()
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.Status == "" {
		u.Status = models.UserStatusActive
	}
	m.users[u.ID] = &u
	return &u
}

func (m *memDB) addBook(b models.Book) *models.Book {
	b.ID = m.id()
	m.books[b.ID] = &b
	return &b
}

func (m *memDB) addBorrow(b models.Borrow) *models.Borrow {
	b.ID = m.id()
	m.borrows[b.ID] = &b
	return &b
}

func (m *memDB) openLoans(bookID int64) int {
	n := 0
	for _, b := range m.borrows {
		if b.BookID == bookID && b.ReturnDate == nil {
			n++
		}
	}
	return n
}

type fakeTx struct {
	db    *memDB
	calls int
}

func (f *fakeTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	snapshot := f.db.clone()
	if err := fn(ctx); err != nil {
		*f.db = snapshot
		return err
	}
	return nil
}

type staticSettings struct {
	rules models.LibrarySettings
	err   error
}

func (s staticSettings) Current(context.Context) (models.LibrarySettings, error) {
	return s.rules, s.err
}

// --- users ---

type fakeUsers struct{ db *memDB }

func (f fakeUsers) Create(_ context.Context, user *models.User) error {
	for _, u := range f.db.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperrors.ErrEmailExists
		}
	}
	user.ID = f.db.id()
	c := *user
	f.db.users[user.ID] = &c
	return nil
}

func (f fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.db.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (f fakeUsers) LockByID(ctx context.Context, id int64) (*models.User, error) {
	return f.GetByID(ctx, id)
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.db.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f fakeUsers) EmailExists(_ context.Context, email string, excludeID int64) (bool, error) {
	for _, u := range f.db.users {
		if strings.EqualFold(u.Email, email) && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeUsers) UpdateProfile(_ context.Context, id int64, name, email string) error {
	u, ok := f.db.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Name, u.Email = name, email
	return nil
}

func (f fakeUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	u, ok := f.db.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Password = hash
	return nil
}

func (f fakeUsers) UpdateStatus(_ context.Context, id int64, status models.UserStatus) error {
	u, ok := f.db.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Status = status
	return nil
}

func (f fakeUsers) SetBorrowLimit(_ context.Context, id int64, limit *int) error {
	u, ok := f.db.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.BorrowLimit = limit
	return nil
}

func (f fakeUsers) List(_ context.Context, filter repositories.UserFilter, offset, limit uint64) ([]models.User, int64, error) {
	out := []models.User{}
	for _, u := range f.db.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(u.Name+" "+u.Email), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, offset, limit), int64(len(out)), nil
}

func (f fakeUsers) CountByRole(_ context.Context, role models.Role) (int64, error) {
	var n int64
	for _, u := range f.db.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func page[T any](items []T, offset, limit uint64) []T {
	if offset >= uint64(len(items)) {
		return []T{}
	}
	end := offset + limit
	if end > uint64(len(items)) {
		end = uint64(len(items))
	}
	return items[offset:end]
}

// --- categories ---

type fakeCategories struct{ db *memDB }

func (f fakeCategories) bookCount(id int64) int {
	n := 0
	for _, b := range f.db.books {
		if b.CategoryID != nil && *b.CategoryID == id {
			n++
		}
	}
	return n
}

func (f fakeCategories) nameTaken(name string, excludeID int64) bool {
	for _, c := range f.db.categories {
		if strings.EqualFold(c.Name, name) && c.ID != excludeID {
			return true
		}
	}
	return false
}

func (f fakeCategories) Create(_ context.Context, category *models.Category) error {
	if f.nameTaken(category.Name, 0) {
		return apperrors.ErrDuplicateCategory
	}
	category.ID = f.db.id()
	c := *category
	f.db.categories[c.ID] = &c
	return nil
}

func (f fakeCategories) GetByID(_ context.Context, id int64) (*models.Category, error) {
	c, ok := f.db.categories[id]
	if !ok {
		return nil, apperrors.ErrCategoryNotFound
	}
	out := *c
	out.BookCount = f.bookCount(id)
	return &out, nil
}

func (f fakeCategories) GetAll(ctx context.Context) ([]models.Category, error) {
	out := []models.Category{}
	for id := range f.db.categories {
		c, _ := f.GetByID(ctx, id)
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakeCategories) Update(_ context.Context, category *models.Category) error {
	c, ok := f.db.categories[category.ID]
	if !ok {
		return apperrors.ErrCategoryNotFound
	}
	if f.nameTaken(category.Name, category.ID) {
		return apperrors.ErrDuplicateCategory
	}
	c.Name, c.Description = category.Name, category.Description
	return nil
}

func (f fakeCategories) Delete(_ context.Context, id int64) error {
	if _, ok := f.db.categories[id]; !ok {
		return apperrors.ErrCategoryNotFound
	}
	if f.bookCount(id) > 0 {
		return apperrors.ErrCategoryInUse
	}
	delete(f.db.categories, id)
	return nil
}

// --- books ---

type fakeBooks struct {
	db        *memDB
	failWrite error
}

func (f *fakeBooks) isbnTaken(isbn string, excludeID int64) bool {
	for _, b := range f.db.books {
		if b.ISBN == isbn && b.ID != excludeID {
			return true
		}
	}
	return false
}

func (f *fakeBooks) Create(_ context.Context, book *models.Book) error {
	if f.failWrite != nil {
		return f.failWrite
	}
	if f.isbnTaken(book.ISBN, 0) {
		return apperrors.ErrDuplicateISBN
	}
	book.ID = f.db.id()
	c := *book
	f.db.books[c.ID] = &c
	return nil
}

func (f *fakeBooks) GetByID(_ context.Context, id int64) (*models.Book, error) {
	b, ok := f.db.books[id]
	if !ok {
		return nil, apperrors.ErrBookNotFound
	}
	c := *b
	return &c, nil
}

func (f *fakeBooks) Update(_ context.Context, book *models.Book) error {
	if f.failWrite != nil {
		return f.failWrite
	}
	b, ok := f.db.books[book.ID]
	if !ok {
		return apperrors.ErrBookNotFound
	}
	if f.isbnTaken(book.ISBN, book.ID) {
		return apperrors.ErrDuplicateISBN
	}
	if book.Quantity < b.Borrowed {
		return apperrors.NewValidationError("quantity below borrowed")
	}
	borrowed := b.Borrowed
	*b = *book
	b.Borrowed = borrowed
	return nil
}

func (f *fakeBooks) Delete(_ context.Context, id int64) error {
	b, ok := f.db.books[id]
	if !ok {
		return apperrors.ErrBookNotFound
	}
	if b.Borrowed > 0 {
		return apperrors.ErrBookOnLoan
	}
	delete(f.db.books, id)
	for bid, br := range f.db.borrows {
		if br.BookID == id {
			delete(f.db.borrows, bid)
		}
	}
	return nil
}

func (f *fakeBooks) IncrementBorrowed(_ context.Context, id int64) (bool, error) {
	b, ok := f.db.books[id]
	if !ok || b.Quantity <= b.Borrowed {
		return false, nil
	}
	b.Borrowed++
	return true, nil
}

func (f *fakeBooks) DecrementBorrowed(_ context.Context, id int64) error {
	b, ok := f.db.books[id]
	if !ok || b.Borrowed == 0 {
		return errors.New("no borrowed copies")
	}
	b.Borrowed--
	return nil
}

func (f *fakeBooks) sorted() []models.Book {
	out := []models.Book{}
	for _, b := range f.db.books {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (f *fakeBooks) Search(_ context.Context, filter repositories.BookFilter, offset, limit uint64) ([]models.Book, int64, error) {
	out := []models.Book{}
	for _, b := range f.sorted() {
		if filter.CategoryID > 0 && (b.CategoryID == nil || *b.CategoryID != filter.CategoryID) {
			continue
		}
		term := strings.ToLower(filter.Search)
		if term != "" && !strings.Contains(strings.ToLower(b.Title+" "+b.Author+" "+b.ISBN), term) {
			continue
		}
		out = append(out, b)
	}
	return page(out, offset, limit), int64(len(out)), nil
}

func (f *fakeBooks) Recent(_ context.Context, limit uint64) ([]models.Book, error) {
	return page(f.sorted(), 0, limit), nil
}

func (f *fakeBooks) Popular(_ context.Context, limit uint64) ([]models.PopularBook, error) {
	out := []models.PopularBook{}
	for _, b := range f.sorted() {
		n := 0
		for _, br := range f.db.borrows {
			if br.BookID == b.ID {
				n++
			}
		}
		if n > 0 {
			out = append(out, models.PopularBook{Book: b, BorrowCount: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].BorrowCount > out[j].BorrowCount })
	return page(out, 0, limit), nil
}

func (f *fakeBooks) Totals(context.Context) (int64, int64, error) {
	var copies int64
	for _, b := range f.db.books {
		copies += int64(b.Quantity)
	}
	return int64(len(f.db.books)), copies, nil
}

// --- borrows ---

type fakeBorrows struct {
	db         *memDB
	failCreate error
	failExtend map[int64]error
}

func (f *fakeBorrows) Create(_ context.Context, borrow *models.Borrow) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	for _, b := range f.db.borrows {
		if b.UserID == borrow.UserID && b.BookID == borrow.BookID && b.ReturnDate == nil {
			return apperrors.ErrAlreadyBorrowed
		}
	}
	borrow.ID = f.db.id()
	c := *borrow
	f.db.borrows[c.ID] = &c
	return nil
}

func (f *fakeBorrows) GetByID(_ context.Context, id int64) (*models.Borrow, error) {
	b, ok := f.db.borrows[id]
	if !ok {
		return nil, apperrors.ErrBorrowNotFound
	}
	c := *b
	return &c, nil
}

func (f *fakeBorrows) LockByID(ctx context.Context, id int64) (*models.Borrow, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeBorrows) HasOpenLoan(_ context.Context, userID, bookID int64) (bool, error) {
	for _, b := range f.db.borrows {
		if b.UserID == userID && b.BookID == bookID && b.ReturnDate == nil {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBorrows) CountOpenByUser(_ context.Context, userID int64) (int64, error) {
	var n int64
	for _, b := range f.db.borrows {
		if b.UserID == userID && b.ReturnDate == nil {
			n++
		}
	}
	return n, nil
}

func (f *fakeBorrows) MarkReturned(_ context.Context, id int64, returnDate time.Time, notes string) (bool, error) {
	b, ok := f.db.borrows[id]
	if !ok || b.ReturnDate != nil {
		return false, nil
	}
	rd := returnDate
	b.ReturnDate = &rd
	if notes != "" {
		b.Notes = notes
	}
	return true, nil
}

func (f *fakeBorrows) ExtendDueDate(_ context.Context, id, userID int64, days int) (bool, error) {
	if err := f.failExtend[id]; err != nil {
		return false, err
	}
	b, ok := f.db.borrows[id]
	if !ok || b.UserID != userID || b.ReturnDate != nil {
		return false, nil
	}
	b.DueDate = b.DueDate.AddDate(0, 0, days)
	return true, nil
}

func (f *fakeBorrows) MarkReceived(_ context.Context, id int64) error {
	b, ok := f.db.borrows[id]
	if !ok {
		return apperrors.ErrBorrowNotFound
	}
	b.Received = true
	return nil
}

func (f *fakeBorrows) sorted() []models.Borrow {
	out := []models.Borrow{}
	for _, b := range f.db.borrows {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (f *fakeBorrows) List(_ context.Context, filter repositories.BorrowFilter, offset, limit uint64) ([]models.Borrow, int64, error) {
	out := []models.Borrow{}
	for _, b := range f.sorted() {
		if filter.UserID > 0 && b.UserID != filter.UserID {
			continue
		}
		if filter.BookID > 0 && b.BookID != filter.BookID {
			continue
		}
		if filter.Status != "" && b.StatusAt(filter.Today) != filter.Status {
			continue
		}
		out = append(out, b)
	}
	return page(out, offset, limit), int64(len(out)), nil
}

func (f *fakeBorrows) OpenByUser(_ context.Context, userID int64) ([]models.Borrow, error) {
	out := []models.Borrow{}
	for _, b := range f.sorted() {
		if b.UserID == userID && b.ReturnDate == nil {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (f *fakeBorrows) Stats(_ context.Context, userID int64, today time.Time) (repositories.LoanStats, error) {
	var s repositories.LoanStats
	for _, b := range f.db.borrows {
		if userID > 0 && b.UserID != userID {
			continue
		}
		s.Total++
		switch b.StatusAt(today) {
		case models.LoanActive:
			s.Active++
		case models.LoanOverdue:
			s.Overdue++
		case models.LoanReturned:
			s.Returned++
		}
	}
	return s, nil
}

func (f *fakeBorrows) Recent(_ context.Context, limit uint64) ([]models.Borrow, error) {
	return page(f.sorted(), 0, limit), nil
}

// --- password resets ---

type fakeResets struct {
	db         *memDB
	failCreate error
}

func (f fakeResets) Create(_ context.Context, reset *models.PasswordReset) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	reset.ID = f.db.id()
	c := *reset
	f.db.resets[c.ID] = &c
	return nil
}

func (f fakeResets) GetByID(_ context.Context, id int64) (*models.PasswordReset, error) {
	r, ok := f.db.resets[id]
	if !ok {
		return nil, apperrors.ErrResetNotFound
	}
	c := *r
	if u, ok := f.db.users[c.UserID]; ok {
		c.UserName, c.UserEmail = u.Name, u.Email
	}
	return &c, nil
}

func (f fakeResets) GetByToken(ctx context.Context, token string) (*models.PasswordReset, error) {
	for id, r := range f.db.resets {
		if r.Token == token {
			return f.GetByID(ctx, id)
		}
	}
	return nil, apperrors.ErrResetNotFound
}

func (f fakeResets) LockByToken(ctx context.Context, token string) (*models.PasswordReset, error) {
	return f.GetByToken(ctx, token)
}

func (f fakeResets) Review(_ context.Context, id int64, status models.ResetStatus, reason *string) (bool, error) {
	r, ok := f.db.resets[id]
	if !ok || r.Status != models.ResetPending {
		return false, nil
	}
	r.Status, r.RejectionReason = status, reason
	return true, nil
}

func (f fakeResets) MarkUsed(_ context.Context, id int64) (bool, error) {
	r, ok := f.db.resets[id]
	if !ok || r.Used {
		return false, nil
	}
	r.Used = true
	return true, nil
}

func (f fakeResets) ListPending(ctx context.Context, now time.Time) ([]models.PasswordReset, error) {
	out := []models.PasswordReset{}
	for id, r := range f.db.resets {
		if r.Status == models.ResetPending && !r.Used && r.ExpiresAt.After(now) {
			c, _ := f.GetByID(ctx, id)
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeResets) CountPending(ctx context.Context, now time.Time) (int64, error) {
	list, _ := f.ListPending(ctx, now)
	return int64(len(list)), nil
}

// --- sessions ---

type fakeSessions struct{ db *memDB }

func (f fakeSessions) Create(_ context.Context, s *models.Session) error {
	c := *s
	f.db.sessions[s.ID] = &c
	return nil
}

func (f fakeSessions) GetByID(_ context.Context, id string) (*models.Session, error) {
	s, ok := f.db.sessions[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	c := *s
	return &c, nil
}

func (f fakeSessions) Revoke(_ context.Context, id string) error {
	if s, ok := f.db.sessions[id]; ok {
		s.Revoked = true
	}
	return nil
}

func (f fakeSessions) RevokeAllForUser(_ context.Context, userID int64) (int64, error) {
	var n int64
	for _, s := range f.db.sessions {
		if s.UserID == userID && !s.Revoked {
			s.Revoked = true
			n++
		}
	}
	return n, nil
}

func (f fakeSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for id, s := range f.db.sessions {
		if !s.ValidAt(now) {
			delete(f.db.sessions, id)
			n++
		}
	}
	return n, nil
}

// --- settings ---

type fakeSettingsStore struct {
	db      *memDB
	failAll error
}

func (f fakeSettingsStore) All(context.Context) (map[string]string, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	out := map[string]string{}
	for k, v := range f.db.settings {
		out[k] = v
	}
	return out, nil
}

func (f fakeSettingsStore) Upsert(_ context.Context, values map[string]string) error {
	for k, v := range values {
		f.db.settings[k] = v
	}
	return nil
}

// --- files ---

type fakeFiles struct {
	saved   map[string]bool
	deleted []string
	failErr error
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{saved: map[string]bool{}}
}

func (f *fakeFiles) SaveFile(fh *multipart.FileHeader, subPath string, policy filestorage.Policy) (string, error) {
	if err := policy.Validate(fh); err != nil {
		return "", err
	}
	if f.failErr != nil {
		return "", f.failErr
	}
	path := subPath + "/" + fh.Filename
	f.saved[path] = true
	return path, nil
}

func (f *fakeFiles) DeleteFile(path string) error {
	f.deleted = append(f.deleted, path)
	delete(f.saved, path)
	return nil
}

func (f *fakeFiles) GetFullPath(path string) (string, error) {
	if !f.saved[path] {
		return "", filestorage.ErrInvalidPath
	}
	return "/data/" + path, nil
}

// --- mail ---

type sentMail struct {
	kind, to, name, arg string
}

type fakeMailer struct {
	sent    []sentMail
	failErr error
}

func (f *fakeMailer) SendResetLink(toEmail, toName, resetURL string) error {
	f.sent = append(f.sent, sentMail{"link", toEmail, toName, resetURL})
	return f.failErr
}

func (f *fakeMailer) SendResetApproved(toEmail, toName, resetURL string) error {
	f.sent = append(f.sent, sentMail{"approved", toEmail, toName, resetURL})
	return f.failErr
}

func (f *fakeMailer) SendResetRejected(toEmail, toName, reason string) error {
	f.sent = append(f.sent, sentMail{"rejected", toEmail, toName, reason})
	return f.failErr
}

func fileHeader(name string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: name, Size: size}
}
