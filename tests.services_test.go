package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSellerService_Add(t *testing.T) {
	t.Run("should pass: commits and publishes", func(t *testing.T) {
		uow := &MockUnitOfWork{
			AddSellerFunc: func(ctx context.Context, seller *Seller) error {
				seller.ID = 7
				return nil
			},
		}
		storage := &MockStorage{UoW: uow}
		queue := &MockQueue{}
		ss := NewSellerService(zap.NewNop(), NewMockClocker(), storage, queue)

		seller, err := ss.Add(context.Background(), Seller{FirstName: "a", LastName: "b", Email: "c", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, int64(7), seller.ID)
		assert.True(t, uow.Committed)
		assert.Equal(t, []bool{true}, storage.Writables)

		require.Len(t, queue.events(), 1)
		event := queue.events()[0]
		assert.Equal(t, SellerEventsQueue, queue.QueueIDs[0])
		assert.Equal(t, EventCreated, event.Kind)
		assert.Equal(t, "seller", event.Entity)
		assert.Equal(t, int64(7), event.ID)
		assert.Equal(t, NewMockClocker().Now(), event.At)
		assert.NotContains(t, string(event.Data), "secret")
	})

	t.Run("should fail: storage error rolls back without event", func(t *testing.T) {
		uow := &MockUnitOfWork{
			AddSellerFunc: func(ctx context.Context, seller *Seller) error {
				return errors.New("storage failure")
			},
		}
		queue := &MockQueue{}
		ss := NewSellerService(zap.NewNop(), NewMockClocker(), &MockStorage{UoW: uow}, queue)

		_, err := ss.Add(context.Background(), Seller{})
		assert.EqualError(t, err, "storage failure")
		assert.True(t, uow.RolledBack)
		assert.False(t, uow.Committed)
		assert.Empty(t, queue.events())
	})

	t.Run("should pass: queue failure does not fail the request", func(t *testing.T) {
		uow := &MockUnitOfWork{
			AddSellerFunc: func(ctx context.Context, seller *Seller) error { return nil },
		}
		queue := &MockQueue{PushErr: errors.New("redis down")}
		ss := NewSellerService(zap.NewNop(), NewMockClocker(), &MockStorage{UoW: uow}, queue)

		_, err := ss.Add(context.Background(), Seller{})
		assert.NoError(t, err)
		assert.True(t, uow.Committed)
	})

	t.Run("should fail: begin error", func(t *testing.T) {
		ss := NewSellerService(zap.NewNop(), NewMockClocker(), &MockStorage{BeginErr: errors.New("no conn")}, &MockQueue{})
		_, err := ss.Add(context.Background(), Seller{})
		assert.EqualError(t, err, "storage: begin: no conn")
	})
}

func TestSellerService_GetOne(t *testing.T) {
	uow := &MockUnitOfWork{
		GetSellerFunc: func(ctx context.Context, id int64) (Seller, error) {
			if id != 1 {
				return Seller{}, ErrSellerNotFound
			}
			return Seller{ID: 1, FirstName: "a"}, nil
		},
		GetBooksBySellerFunc: func(ctx context.Context, sellerID int64) ([]Book, error) {
			return []Book{{ID: 3, SellerID: sellerID}}, nil
		},
	}
	storage := &MockStorage{UoW: uow}
	ss := NewSellerService(zap.NewNop(), NewMockClocker(), storage, &MockQueue{})

	seller, err := ss.GetOne(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []Book{{ID: 3, SellerID: 1}}, seller.Books)
	assert.Equal(t, []bool{false}, storage.Writables)

	_, err = ss.GetOne(context.Background(), 2)
	assert.ErrorIs(t, err, ErrSellerNotFound)
}

func TestSellerService_Update(t *testing.T) {
	var stored Seller
	uow := &MockUnitOfWork{
		UpdateSellerFunc: func(ctx context.Context, seller Seller) error {
			stored = seller
			return nil
		},
		GetSellerFunc: func(ctx context.Context, id int64) (Seller, error) {
			return stored, nil
		},
	}
	queue := &MockQueue{}
	ss := NewSellerService(zap.NewNop(), NewMockClocker(), &MockStorage{UoW: uow}, queue)

	seller, err := ss.Update(context.Background(), 4, Seller{ID: 9, FirstName: "x", LastName: "y", Email: "z"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), seller.ID)
	assert.Equal(t, int64(4), stored.ID)
	assert.Equal(t, EventUpdated, queue.events()[0].Kind)
}

func TestSellerService_Delete(t *testing.T) {
	uow := &MockUnitOfWork{
		DeleteSellerFunc: func(ctx context.Context, id int64) error { return nil },
	}
	queue := &MockQueue{}
	ss := NewSellerService(zap.NewNop(), NewMockClocker(), &MockStorage{UoW: uow}, queue)

	require.NoError(t, ss.Delete(context.Background(), 4))
	require.Len(t, queue.events(), 1)
	assert.Equal(t, EventDeleted, queue.events()[0].Kind)
	assert.Empty(t, queue.events()[0].Data)
}

func TestBookService_Add(t *testing.T) {
	t.Run("should fail: year too old never touches storage", func(t *testing.T) {
		storage := &MockStorage{UoW: &MockUnitOfWork{}}
		bs := NewBookService(zap.NewNop(), NewMockClocker(), storage, &MockQueue{})
		_, err := bs.Add(context.Background(), Book{Year: 1986, SellerID: 1})
		assert.ErrorIs(t, err, ErrPublicationYear)
		assert.Empty(t, storage.Writables)
	})

	t.Run("should fail: unknown seller rolls back", func(t *testing.T) {
		var added bool
		uow := &MockUnitOfWork{
			SellerExistsFunc: func(ctx context.Context, id int64) (bool, error) { return false, nil },
			AddBookFunc: func(ctx context.Context, book *Book) error {
				added = true
				return nil
			},
		}
		queue := &MockQueue{}
		bs := NewBookService(zap.NewNop(), NewMockClocker(), &MockStorage{UoW: uow}, queue)
		_, err := bs.Add(context.Background(), Book{Year: 2025, SellerID: 99})
		assert.ErrorIs(t, err, ErrUnknownSeller)
		assert.False(t, added)
		assert.True(t, uow.RolledBack)
		assert.Empty(t, queue.events())
	})

	t.Run("should pass: valid book", func(t *testing.T) {
		uow := &MockUnitOfWork{
			SellerExistsFunc: func(ctx context.Context, id int64) (bool, error) { return true, nil },
			AddBookFunc: func(ctx context.Context, book *Book) error {
				book.ID = 11
				return nil
			},
		}
		queue := &MockQueue{}
		bs := NewBookService(zap.NewNop(), NewMockClocker(), &MockStorage{UoW: uow}, queue)
		book, err := bs.Add(context.Background(), Book{Title: "t", Year: 2025, SellerID: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(11), book.ID)
		assert.True(t, uow.Committed)
		assert.Equal(t, BookEventsQueue, queue.QueueIDs[0])
	})
}

func TestBookService_Update(t *testing.T) {
	uow := &MockUnitOfWork{
		UpdateBookFunc: func(ctx context.Context, book Book) error {
			if book.ID != 1 {
				return ErrBookNotFound
			}
			return nil
		},
	}
	bs := NewBookService(zap.NewNop(), NewMockClocker(), &MockStorage{UoW: uow}, &MockQueue{})

	book, err := bs.Update(context.Background(), 1, Book{ID: 42, Title: "t", Year: 2007, SellerID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), book.ID)
	assert.Equal(t, 2007, book.Year)

	_, err = bs.Update(context.Background(), 2, Book{})
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestBookService_GetAllAndDelete(t *testing.T) {
	uow := &MockUnitOfWork{
		GetAllBooksFunc: func(ctx context.Context) ([]Book, error) {
			return []Book{{ID: 1}, {ID: 2}}, nil
		},
		DeleteBookFunc: func(ctx context.Context, id int64) error {
			return ErrBookNotFound
		},
	}
	queue := &MockQueue{}
	bs := NewBookService(zap.NewNop(), NewMockClocker(), &MockStorage{UoW: uow}, queue)

	books, err := bs.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, books, 2)

	err = bs.Delete(context.Background(), 5)
	assert.ErrorIs(t, err, ErrBookNotFound)
	assert.Empty(t, queue.events())
}
