package services

import (
	"context"
	"testing"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CategoryLifecycle(t *testing.T) {
	// arrange
	db := newMemDB()
	svc := NewCategoryService(fakeCategories{db: db}, testLogger)
	ctx := context.Background()

	// act
	fiction, err := svc.Create(ctx, &dto.CategoryRequest{Name: " Fiction "})
	require.NoError(t, err)
	_, dupErr := svc.Create(ctx, &dto.CategoryRequest{Name: "fiction"})
	_, blankErr := svc.Create(ctx, &dto.CategoryRequest{Name: "  "})
	renamed, err := svc.Update(ctx, fiction.ID, &dto.CategoryRequest{Name: "Literature", Description: "Novels"})
	require.NoError(t, err)

	// assert
	assert.Equal(t, "Fiction", fiction.Name)
	assert.ErrorIs(t, dupErr, apperrors.ErrDuplicateCategory)
	assert.ErrorIs(t, blankErr, apperrors.ErrValidationFailed)
	assert.Equal(t, "Literature", renamed.Name)
	assert.Equal(t, "Novels", renamed.Description)
}

func Test_DeleteCategory_InUse(t *testing.T) {
	// arrange
	db := newMemDB()
	svc := NewCategoryService(fakeCategories{db: db}, testLogger)
	ctx := context.Background()
	c, err := svc.Create(ctx, &dto.CategoryRequest{Name: "Science"})
	require.NoError(t, err)
	b := db.addBook(models.Book{ISBN: "1", Quantity: 1, CategoryID: &c.ID})

	// act
	inUse := svc.Delete(ctx, c.ID)
	delete(db.books, b.ID)
	free := svc.Delete(ctx, c.ID)

	// assert
	assert.ErrorIs(t, inUse, apperrors.ErrCategoryInUse)
	require.NoError(t, free)
	assert.Empty(t, db.categories)
	assert.ErrorIs(t, svc.Delete(ctx, c.ID), apperrors.ErrCategoryNotFound)
}

func Test_ListCategories_CountsBooks(t *testing.T) {
	db := newMemDB()
	svc := NewCategoryService(fakeCategories{db: db}, testLogger)
	ctx := context.Background()
	c, err := svc.Create(ctx, &dto.CategoryRequest{Name: "History"})
	require.NoError(t, err)
	db.addBook(models.Book{ISBN: "1", Quantity: 1, CategoryID: &c.ID})
	db.addBook(models.Book{ISBN: "2", Quantity: 1, CategoryID: &c.ID})

	list, err := svc.List(ctx)

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].BookCount)
}
