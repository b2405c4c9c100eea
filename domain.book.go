package main

import "errors"

// MinPublicationYear is the oldest publication year accepted for a new book.
const MinPublicationYear = 2020

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrPublicationYear = errors.New("book publication year is too old")
)

// Book represents a catalog item owned by exactly one seller.
type Book struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Pages    int    `json:"pages"`
	Year     int    `json:"year"`
	SellerID int64  `json:"seller_id"`
}

// BooksList is the payload sent back when listing all books.
type BooksList struct {
	Books []Book `json:"books"`
}

// CheckPublicationYear reports ErrPublicationYear when year is below MinPublicationYear.
func CheckPublicationYear(year int) error {
	if year < MinPublicationYear {
		return ErrPublicationYear
	}
	return nil
}
