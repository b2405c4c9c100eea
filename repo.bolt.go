package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

var (
	sellersBucket     = []byte("sellers")
	booksBucket       = []byte("books")
	sellerBooksBucket = []byte("sellers.books")
	journalBucket     = []byte("journal")
)

// GetBoltDBClient setup the database and the buckets then provides a ready to use client.
func GetBoltDBClient(config *Config) (*bolt.DB, error) {
	db, err := bolt.Open(config.BoltDB.FilePath, 0o600, &bolt.Options{Timeout: config.BoltDB.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{sellersBucket, booksBucket, sellerBooksBucket, journalBucket} {
			if _, errB := tx.CreateBucketIfNotExists(name); errB != nil {
				return fmt.Errorf("failed to create %s bucket: %v", name, errB)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up buckets: %v", err)
	}
	return db, nil
}

// itob returns an 8-byte big endian representation of v so
// keys iterate in numeric order.
func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

// sellerBookKey builds the index key linking a book to its owner.
func sellerBookKey(sellerID, bookID int64) []byte {
	return append(itob(sellerID), itob(bookID)...)
}

// sellerRecord is the stored form of a seller. It keeps the
// password which the api representation never exposes.
type sellerRecord struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"e_mail"`
	Password  string `json:"password"`
}

func (r sellerRecord) seller() Seller {
	return Seller{ID: r.ID, FirstName: r.FirstName, LastName: r.LastName, Email: r.Email, Password: r.Password}
}

func newSellerRecord(s Seller) sellerRecord {
	return sellerRecord{ID: s.ID, FirstName: s.FirstName, LastName: s.LastName, Email: s.Email, Password: s.Password}
}

type boltStorage struct {
	logger *zap.Logger
	client *bolt.DB
}

// NewBoltStorage provides an instance of bolt-based storage.
func NewBoltStorage(logger *zap.Logger, client *bolt.DB) Storage {
	return &boltStorage{
		logger: logger,
		client: client,
	}
}

// Begin opens a bolt transaction. Bolt allows a single writer at a time
// so writable units of work are serialized by the database itself.
func (bs *boltStorage) Begin(_ context.Context, writable bool) (UnitOfWork, error) {
	tx, err := bs.client.Begin(writable)
	if err != nil {
		return nil, err
	}
	return &boltUnitOfWork{tx: tx}, nil
}

// Close shuts down the bolt-based storage.
func (bs *boltStorage) Close() error {
	return bs.client.Close()
}

type boltUnitOfWork struct {
	tx *bolt.Tx
}

// Commit persists a writable transaction. A read only one is simply released.
func (uow *boltUnitOfWork) Commit() error {
	if !uow.tx.Writable() {
		return uow.tx.Rollback()
	}
	return uow.tx.Commit()
}

func (uow *boltUnitOfWork) Rollback() error {
	if err := uow.tx.Rollback(); err != nil && err != bolt.ErrTxClosed {
		return err
	}
	return nil
}

// AddSeller inserts a new seller record into boltdb store.
func (uow *boltUnitOfWork) AddSeller(_ context.Context, seller *Seller) error {
	b := uow.tx.Bucket(sellersBucket)
	seq, err := b.NextSequence()
	if err != nil {
		return err
	}
	seller.ID = int64(seq)
	data, err := json.Marshal(newSellerRecord(*seller))
	if err != nil {
		return err
	}
	return b.Put(itob(seller.ID), data)
}

// GetSeller retrieves a seller record based on its ID from boltdb store.
func (uow *boltUnitOfWork) GetSeller(_ context.Context, id int64) (Seller, error) {
	result := uow.tx.Bucket(sellersBucket).Get(itob(id))
	if result == nil {
		return Seller{}, ErrSellerNotFound
	}
	var record sellerRecord
	if err := json.Unmarshal(result, &record); err != nil {
		return Seller{}, err
	}
	return record.seller(), nil
}

// GetAllSellers retrieves a list of all sellers ordered by id.
func (uow *boltUnitOfWork) GetAllSellers(_ context.Context) ([]Seller, error) {
	c := uow.tx.Bucket(sellersBucket).Cursor()

	sellers := []Seller{}
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var record sellerRecord
		if err := json.Unmarshal(v, &record); err != nil {
			return nil, err
		}
		sellers = append(sellers, record.seller())
	}
	return sellers, nil
}

// UpdateSeller replaces the names and email of an existing seller. The
// stored password is kept untouched.
func (uow *boltUnitOfWork) UpdateSeller(ctx context.Context, seller Seller) error {
	current, err := uow.GetSeller(ctx, seller.ID)
	if err != nil {
		return err
	}
	current.FirstName = seller.FirstName
	current.LastName = seller.LastName
	current.Email = seller.Email
	data, err := json.Marshal(newSellerRecord(current))
	if err != nil {
		return err
	}
	return uow.tx.Bucket(sellersBucket).Put(itob(current.ID), data)
}

// DeleteSeller removes a seller and every book it owns.
func (uow *boltUnitOfWork) DeleteSeller(_ context.Context, id int64) error {
	sellers := uow.tx.Bucket(sellersBucket)
	if sellers.Get(itob(id)) == nil {
		return ErrSellerNotFound
	}

	books := uow.tx.Bucket(booksBucket)
	index := uow.tx.Bucket(sellerBooksBucket)
	prefix := itob(id)
	var keys [][]byte
	c := index.Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		keys = append(keys, append([]byte(nil), k...))
	}
	// deleting while iterating would skip entries.
	for _, k := range keys {
		if err := books.Delete(k[8:]); err != nil {
			return err
		}
		if err := index.Delete(k); err != nil {
			return err
		}
	}
	return sellers.Delete(itob(id))
}

// SellerExists checks a seller with the given id is stored.
func (uow *boltUnitOfWork) SellerExists(_ context.Context, id int64) (bool, error) {
	return uow.tx.Bucket(sellersBucket).Get(itob(id)) != nil, nil
}

// AddBook inserts a new book record and links it to its seller.
func (uow *boltUnitOfWork) AddBook(_ context.Context, book *Book) error {
	if uow.tx.Bucket(sellersBucket).Get(itob(book.SellerID)) == nil {
		return ErrUnknownSeller
	}
	b := uow.tx.Bucket(booksBucket)
	seq, err := b.NextSequence()
	if err != nil {
		return err
	}
	book.ID = int64(seq)
	data, err := json.Marshal(book)
	if err != nil {
		return err
	}
	if err = b.Put(itob(book.ID), data); err != nil {
		return err
	}
	return uow.tx.Bucket(sellerBooksBucket).Put(sellerBookKey(book.SellerID, book.ID), nil)
}

// GetBook retrieves a book record based on its ID from boltdb store.
func (uow *boltUnitOfWork) GetBook(_ context.Context, id int64) (Book, error) {
	var book Book
	result := uow.tx.Bucket(booksBucket).Get(itob(id))
	if result == nil {
		return book, ErrBookNotFound
	}
	err := json.Unmarshal(result, &book)
	return book, err
}

// GetAllBooks retrieves a list of all books ordered by id.
func (uow *boltUnitOfWork) GetAllBooks(_ context.Context) ([]Book, error) {
	c := uow.tx.Bucket(booksBucket).Cursor()

	books := []Book{}
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var book Book
		if err := json.Unmarshal(v, &book); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}

// GetBooksBySeller walks the seller index and loads each linked book.
func (uow *boltUnitOfWork) GetBooksBySeller(_ context.Context, sellerID int64) ([]Book, error) {
	books := uow.tx.Bucket(booksBucket)
	prefix := itob(sellerID)
	c := uow.tx.Bucket(sellerBooksBucket).Cursor()

	result := []Book{}
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		v := books.Get(k[8:])
		if v == nil {
			continue
		}
		var book Book
		if err := json.Unmarshal(v, &book); err != nil {
			return nil, err
		}
		result = append(result, book)
	}
	return result, nil
}

// UpdateBook replaces all fields of an existing book and moves
// the index entry when the owner changes.
func (uow *boltUnitOfWork) UpdateBook(ctx context.Context, book Book) error {
	current, err := uow.GetBook(ctx, book.ID)
	if err != nil {
		return err
	}
	if uow.tx.Bucket(sellersBucket).Get(itob(book.SellerID)) == nil {
		return ErrUnknownSeller
	}
	data, err := json.Marshal(book)
	if err != nil {
		return err
	}
	if err = uow.tx.Bucket(booksBucket).Put(itob(book.ID), data); err != nil {
		return err
	}
	if current.SellerID == book.SellerID {
		return nil
	}
	index := uow.tx.Bucket(sellerBooksBucket)
	if err = index.Delete(sellerBookKey(current.SellerID, book.ID)); err != nil {
		return err
	}
	return index.Put(sellerBookKey(book.SellerID, book.ID), nil)
}

// DeleteBook removes a book record and its seller link.
func (uow *boltUnitOfWork) DeleteBook(ctx context.Context, id int64) error {
	current, err := uow.GetBook(ctx, id)
	if err != nil {
		return err
	}
	if err = uow.tx.Bucket(sellerBooksBucket).Delete(sellerBookKey(current.SellerID, id)); err != nil {
		return err
	}
	return uow.tx.Bucket(booksBucket).Delete(itob(id))
}
