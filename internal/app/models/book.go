package models

import "time"

// Category groups books in the catalog
type Category struct {
	ID          int64     `json:"id" db:"id" example:"1"`
	Name        string    `json:"name" db:"name" example:"Computer Science"`
	Description string    `json:"description" db:"description"`
	BookCount   int       `json:"bookCount" db:"book_count" example:"12"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Book is a catalog title with its copy counters. 0 <= Borrowed <= Quantity
// is enforced by the books_borrowed_check constraint.
type Book struct {
	ID              int64     `json:"id" db:"id" example:"1"`
	Title           string    `json:"title" db:"title" example:"Introduction to Algorithms"`
	Author          string    `json:"author" db:"author" example:"Cormen"`
	ISBN            string    `json:"isbn" db:"isbn" example:"9780262033848"`
	Description     string    `json:"description" db:"description"`
	CategoryID      *int64    `json:"categoryId,omitempty" db:"category_id"`
	CategoryName    string    `json:"categoryName,omitempty" db:"category_name"`
	Quantity        int       `json:"quantity" db:"quantity" example:"3"`
	Borrowed        int       `json:"borrowed" db:"borrowed" example:"1"`
	CoverImage      *string   `json:"coverImage,omitempty" db:"cover_image"`
	PublicationYear *int      `json:"publicationYear,omitempty" db:"publication_year" example:"2009"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// Available is the number of copies on the shelf
func (b *Book) Available() int {
	return b.Quantity - b.Borrowed
}

// PopularBook is a book with its all-time borrow count
type PopularBook struct {
	Book
	BorrowCount int `json:"borrowCount"`
}
