package main

import "errors"

var (
	ErrSellerNotFound = errors.New("seller not found")
	ErrUnknownSeller  = errors.New("seller referenced by the book does not exist")
)

// Seller represents an account which owns a catalog of books.
// The password is write-only and must never reach a response.
type Seller struct {
	ID        int64  `json:"seller_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"e_mail"`
	Password  string `json:"-"`
	Books     []Book `json:"-"`
}

// SellerView is the public shape of a seller, without books.
type SellerView struct {
	ID        int64  `json:"seller_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"e_mail"`
}

// SellerWithBooksView is the public shape of a seller fetched by id.
type SellerWithBooksView struct {
	SellerView
	Books []Book `json:"books"`
}

// SellersList is the payload sent back when listing all sellers.
type SellersList struct {
	Sellers []SellerView `json:"sellers"`
}

// View returns the seller shape without books and password.
func (s Seller) View() SellerView {
	return SellerView{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
	}
}

// ViewWithBooks returns the seller shape including its owned books.
// Books is always a non-nil list so it encodes as [] when empty.
func (s Seller) ViewWithBooks() SellerWithBooksView {
	books := s.Books
	if books == nil {
		books = []Book{}
	}
	return SellerWithBooksView{SellerView: s.View(), Books: books}
}

// NewSellersList builds the list payload from a set of sellers.
func NewSellersList(sellers []Seller) SellersList {
	views := make([]SellerView, 0, len(sellers))
	for _, s := range sellers {
		views = append(views, s.View())
	}
	return SellersList{Sellers: views}
}
