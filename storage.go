package main

import (
	"context"
	"fmt"
)

// SellerStorage defines possible operations on seller entity.
type SellerStorage interface {
	AddSeller(ctx context.Context, seller *Seller) error
	GetSeller(ctx context.Context, id int64) (Seller, error)
	GetAllSellers(ctx context.Context) ([]Seller, error)
	UpdateSeller(ctx context.Context, seller Seller) error
	DeleteSeller(ctx context.Context, id int64) error
	SellerExists(ctx context.Context, id int64) (bool, error)
}

// BookStorage defines possible operations on book entity.
type BookStorage interface {
	AddBook(ctx context.Context, book *Book) error
	GetBook(ctx context.Context, id int64) (Book, error)
	GetAllBooks(ctx context.Context) ([]Book, error)
	GetBooksBySeller(ctx context.Context, sellerID int64) ([]Book, error)
	UpdateBook(ctx context.Context, book Book) error
	DeleteBook(ctx context.Context, id int64) error
}

// UnitOfWork is a single transaction against the store. It must
// be either committed or rolled back by its owner.
type UnitOfWork interface {
	SellerStorage
	BookStorage
	Commit() error
	Rollback() error
}

// Storage hands out units of work.
type Storage interface {
	Begin(ctx context.Context, writable bool) (UnitOfWork, error)
	Close() error
}

// WithUnitOfWork opens a unit of work, runs fn against it and commits
// on success. Any error or panic from fn rolls the work back.
func WithUnitOfWork(ctx context.Context, s Storage, writable bool, fn func(UnitOfWork) error) (err error) {
	uow, err := s.Begin(ctx, writable)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = uow.Rollback()
			panic(p)
		}
		if err != nil {
			_ = uow.Rollback()
		}
	}()

	if err = fn(uow); err != nil {
		return err
	}

	if err = uow.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	return nil
}
