package dto

import (
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
)

// BookRequest carries book fields. It is bound from multipart form data so a
// cover image can travel in the same request.
type BookRequest struct {
	Title           string `form:"title" json:"title" binding:"required,max=255" example:"Introduction to Algorithms"`
	Author          string `form:"author" json:"author" binding:"required,max=255" example:"Thomas H. Cormen"`
	ISBN            string `form:"isbn" json:"isbn" binding:"required,max=20" example:"9780262033848"`
	Description     string `form:"description" json:"description"`
	CategoryID      *int64 `form:"categoryId" json:"categoryId" binding:"omitempty,min=1" example:"1"`
	Quantity        int    `form:"quantity" json:"quantity" binding:"required,min=1" example:"3"`
	PublicationYear *int   `form:"publicationYear" json:"publicationYear" binding:"omitempty,min=1000,max=9999" example:"2009"`
}

// BookResponse is a book with its shelf availability
type BookResponse struct {
	models.Book
	Available int    `json:"available" example:"2"`
	CoverURL  string `json:"coverUrl,omitempty" example:"/uploads/covers/3f1c.jpg"`
}

// BookListResponse is one page of the catalog
type BookListResponse struct {
	Books      []BookResponse `json:"books"`
	Pagination PaginationInfo `json:"pagination"`
}

// PopularBookResponse is a book ranked by borrow count
type PopularBookResponse struct {
	BookResponse
	BorrowCount int `json:"borrowCount" example:"14"`
}

// CategoryRequest creates or renames a category
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100" example:"Computer Science"`
	Description string `json:"description" example:"Programming, algorithms and systems"`
}

// NewBookResponse adds availability and the public cover URL to b
func NewBookResponse(b models.Book, publicPrefix string) BookResponse {
	resp := BookResponse{Book: b, Available: b.Available()}
	if b.CoverImage != nil && *b.CoverImage != "" {
		resp.CoverURL = publicPrefix + "/" + *b.CoverImage
	}
	return resp
}

// NewBookResponses converts a list of books
func NewBookResponses(books []models.Book, publicPrefix string) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, NewBookResponse(b, publicPrefix))
	}
	return out
}
