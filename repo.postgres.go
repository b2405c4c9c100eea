package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

var createTableStatements = []string{
	`CREATE TABLE IF NOT EXISTS sellers (
		seller_id BIGSERIAL PRIMARY KEY,
		first_name VARCHAR(50) NOT NULL,
		last_name VARCHAR(50) NOT NULL,
		e_mail VARCHAR(100) NOT NULL,
		password VARCHAR(100) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		author VARCHAR(255) NOT NULL,
		year INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		seller_id BIGINT NOT NULL REFERENCES sellers (seller_id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS books_seller_id_idx ON books (seller_id)`,
}

const (
	insertSellerStatement  = `INSERT INTO sellers (first_name, last_name, e_mail, password) VALUES ($1, $2, $3, $4) RETURNING seller_id`
	getSellerStatement     = `SELECT seller_id, first_name, last_name, e_mail, password FROM sellers WHERE seller_id = $1`
	listSellersStatement   = `SELECT seller_id, first_name, last_name, e_mail, password FROM sellers ORDER BY seller_id`
	updateSellerStatement  = `UPDATE sellers SET first_name = $1, last_name = $2, e_mail = $3 WHERE seller_id = $4`
	deleteSellerStatement  = `DELETE FROM sellers WHERE seller_id = $1`
	existsSellerStatement  = `SELECT EXISTS (SELECT 1 FROM sellers WHERE seller_id = $1)`
	insertBookStatement    = `INSERT INTO books (title, author, year, pages, seller_id) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	getBookStatement       = `SELECT id, title, author, pages, year, seller_id FROM books WHERE id = $1`
	listBooksStatement     = `SELECT id, title, author, pages, year, seller_id FROM books ORDER BY id`
	listBooksByStatement   = `SELECT id, title, author, pages, year, seller_id FROM books WHERE seller_id = $1 ORDER BY id`
	updateBookStatement    = `UPDATE books SET title = $1, author = $2, pages = $3, year = $4, seller_id = $5 WHERE id = $6`
	deleteBookStatement    = `DELETE FROM books WHERE id = $1`
	postgresDriverName     = "postgres"
	postgresDefaultTimeout = 5
)

type postgresStorage struct {
	logger *zap.Logger
	db     *sql.DB
}

// GetPostgresClient opens the connection pool and checks the database is reachable.
func GetPostgresClient(config *Config) (*sql.DB, error) {
	db, err := sql.Open(postgresDriverName, config.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: could not get a connection: %v", err)
	}
	db.SetMaxOpenConns(config.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(config.Postgres.MaxIdleConns)
	db.SetConnMaxIdleTime(config.Postgres.ConnMaxIdleTime)

	timeout := config.Postgres.PingTimeout
	if timeout == 0 {
		timeout = postgresDefaultTimeout * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: could not establish a good connection: %v", err)
	}
	return db, nil
}

// MigratePostgres creates the tables if they do not exist yet.
func MigratePostgres(ctx context.Context, db *sql.DB) error {
	for _, stmt := range createTableStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: could not run migration: %w", err)
		}
	}
	return nil
}

// NewPostgresStorage provides an instance of postgres-based storage.
func NewPostgresStorage(logger *zap.Logger, db *sql.DB) Storage {
	return &postgresStorage{logger: logger, db: db}
}

// Begin opens a transaction. Read only work runs in a read only transaction.
func (ps *postgresStorage) Begin(ctx context.Context, writable bool) (UnitOfWork, error) {
	tx, err := ps.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: !writable})
	if err != nil {
		return nil, err
	}
	return &postgresUnitOfWork{tx: tx}, nil
}

// Close shuts down the connection pool.
func (ps *postgresStorage) Close() error {
	return ps.db.Close()
}

type postgresUnitOfWork struct {
	tx *sql.Tx
}

func (uow *postgresUnitOfWork) Commit() error {
	return uow.tx.Commit()
}

func (uow *postgresUnitOfWork) Rollback() error {
	err := uow.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSeller(s rowScanner) (Seller, error) {
	var seller Seller
	err := s.Scan(&seller.ID, &seller.FirstName, &seller.LastName, &seller.Email, &seller.Password)
	return seller, err
}

func scanBook(s rowScanner) (Book, error) {
	var book Book
	err := s.Scan(&book.ID, &book.Title, &book.Author, &book.Pages, &book.Year, &book.SellerID)
	return book, err
}

// isForeignKeyViolation reports whether err is a postgres referential integrity failure.
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.ForeignKeyViolation
}

// AddSeller inserts a new seller record and sets its generated id.
func (uow *postgresUnitOfWork) AddSeller(ctx context.Context, seller *Seller) error {
	return uow.tx.QueryRowContext(ctx, insertSellerStatement,
		seller.FirstName, seller.LastName, seller.Email, seller.Password,
	).Scan(&seller.ID)
}

// GetSeller retrieves a seller record based on its ID.
func (uow *postgresUnitOfWork) GetSeller(ctx context.Context, id int64) (Seller, error) {
	seller, err := scanSeller(uow.tx.QueryRowContext(ctx, getSellerStatement, id))
	if errors.Is(err, sql.ErrNoRows) {
		return seller, ErrSellerNotFound
	}
	return seller, err
}

// GetAllSellers retrieves all sellers ordered by id.
func (uow *postgresUnitOfWork) GetAllSellers(ctx context.Context) ([]Seller, error) {
	rows, err := uow.tx.QueryContext(ctx, listSellersStatement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sellers := []Seller{}
	for rows.Next() {
		seller, err := scanSeller(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: could not read row: %v", err)
		}
		sellers = append(sellers, seller)
	}
	return sellers, rows.Err()
}

// UpdateSeller replaces the names and email of an existing seller.
func (uow *postgresUnitOfWork) UpdateSeller(ctx context.Context, seller Seller) error {
	res, err := uow.tx.ExecContext(ctx, updateSellerStatement, seller.FirstName, seller.LastName, seller.Email, seller.ID)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrSellerNotFound)
}

// DeleteSeller removes a seller. Its books go with it through the cascading foreign key.
func (uow *postgresUnitOfWork) DeleteSeller(ctx context.Context, id int64) error {
	res, err := uow.tx.ExecContext(ctx, deleteSellerStatement, id)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrSellerNotFound)
}

// SellerExists checks a seller with the given id is stored.
func (uow *postgresUnitOfWork) SellerExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := uow.tx.QueryRowContext(ctx, existsSellerStatement, id).Scan(&exists)
	return exists, err
}

// AddBook inserts a new book record and sets its generated id.
func (uow *postgresUnitOfWork) AddBook(ctx context.Context, book *Book) error {
	err := uow.tx.QueryRowContext(ctx, insertBookStatement,
		book.Title, book.Author, book.Year, book.Pages, book.SellerID,
	).Scan(&book.ID)
	if isForeignKeyViolation(err) {
		return ErrUnknownSeller
	}
	return err
}

// GetBook retrieves a book record based on its ID.
func (uow *postgresUnitOfWork) GetBook(ctx context.Context, id int64) (Book, error) {
	book, err := scanBook(uow.tx.QueryRowContext(ctx, getBookStatement, id))
	if errors.Is(err, sql.ErrNoRows) {
		return book, ErrBookNotFound
	}
	return book, err
}

// GetAllBooks retrieves all books ordered by id.
func (uow *postgresUnitOfWork) GetAllBooks(ctx context.Context) ([]Book, error) {
	return uow.queryBooks(ctx, listBooksStatement)
}

// GetBooksBySeller retrieves the books owned by a seller ordered by id.
func (uow *postgresUnitOfWork) GetBooksBySeller(ctx context.Context, sellerID int64) ([]Book, error) {
	return uow.queryBooks(ctx, listBooksByStatement, sellerID)
}

func (uow *postgresUnitOfWork) queryBooks(ctx context.Context, query string, args ...interface{}) ([]Book, error) {
	rows, err := uow.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: could not read row: %v", err)
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// UpdateBook replaces all fields of an existing book.
func (uow *postgresUnitOfWork) UpdateBook(ctx context.Context, book Book) error {
	res, err := uow.tx.ExecContext(ctx, updateBookStatement,
		book.Title, book.Author, book.Pages, book.Year, book.SellerID, book.ID,
	)
	if isForeignKeyViolation(err) {
		return ErrUnknownSeller
	}
	if err != nil {
		return err
	}
	return expectAffected(res, ErrBookNotFound)
}

// DeleteBook removes a book record based on its ID.
func (uow *postgresUnitOfWork) DeleteBook(ctx context.Context, id int64) error {
	res, err := uow.tx.ExecContext(ctx, deleteBookStatement, id)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrBookNotFound)
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
