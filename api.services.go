package main

import (
	"context"

	"go.uber.org/zap"
)

type SellerServiceProvider interface {
	Add(ctx context.Context, seller Seller) (Seller, error)
	GetOne(ctx context.Context, id int64) (Seller, error)
	GetAll(ctx context.Context) ([]Seller, error)
	Update(ctx context.Context, id int64, seller Seller) (Seller, error)
	Delete(ctx context.Context, id int64) error
}

type BookServiceProvider interface {
	Add(ctx context.Context, book Book) (Book, error)
	GetOne(ctx context.Context, id int64) (Book, error)
	GetAll(ctx context.Context) ([]Book, error)
	Update(ctx context.Context, id int64, book Book) (Book, error)
	Delete(ctx context.Context, id int64) error
}

// publisher pushes change events once the unit of work committed.
// Failures are only logged since the change is already durable.
type publisher struct {
	logger *zap.Logger
	clock  Clocker
	queue  Queuer
}

func (p *publisher) publish(ctx context.Context, qid, kind, entity string, id int64, data interface{}) {
	event, err := NewEvent(kind, entity, id, p.clock.Now(), data)
	if err != nil {
		p.logger.Error("service: failed to build event", zap.String("qid", qid), zap.Error(err))
		return
	}
	if err = p.queue.Push(ctx, qid, event); err != nil {
		p.logger.Error("service: failed to push event to queue", zap.String("qid", qid), zap.String("event.kind", kind), zap.Int64("event.id", id), zap.Error(err))
	}
}

type SellerService struct {
	publisher
	storage Storage
}

func NewSellerService(logger *zap.Logger, clock Clocker, storage Storage, queue Queuer) SellerServiceProvider {
	return &SellerService{
		publisher: publisher{logger: logger, clock: clock, queue: queue},
		storage:   storage,
	}
}

// Add stores a new seller and returns it with its generated id.
func (ss *SellerService) Add(ctx context.Context, seller Seller) (Seller, error) {
	err := WithUnitOfWork(ctx, ss.storage, true, func(uow UnitOfWork) error {
		return uow.AddSeller(ctx, &seller)
	})
	if err != nil {
		return Seller{}, err
	}
	ss.publish(ctx, SellerEventsQueue, EventCreated, "seller", seller.ID, seller.View())
	return seller, nil
}

// GetOne returns a seller along with its books ordered by id.
func (ss *SellerService) GetOne(ctx context.Context, id int64) (Seller, error) {
	var seller Seller
	err := WithUnitOfWork(ctx, ss.storage, false, func(uow UnitOfWork) error {
		var err error
		if seller, err = uow.GetSeller(ctx, id); err != nil {
			return err
		}
		seller.Books, err = uow.GetBooksBySeller(ctx, id)
		return err
	})
	return seller, err
}

func (ss *SellerService) GetAll(ctx context.Context) ([]Seller, error) {
	var sellers []Seller
	err := WithUnitOfWork(ctx, ss.storage, false, func(uow UnitOfWork) error {
		var err error
		sellers, err = uow.GetAllSellers(ctx)
		return err
	})
	return sellers, err
}

// Update applies the names and email of seller to the stored seller
// identified by id and returns the resulting record.
func (ss *SellerService) Update(ctx context.Context, id int64, seller Seller) (Seller, error) {
	var updated Seller
	err := WithUnitOfWork(ctx, ss.storage, true, func(uow UnitOfWork) error {
		seller.ID = id
		if err := uow.UpdateSeller(ctx, seller); err != nil {
			return err
		}
		var err error
		updated, err = uow.GetSeller(ctx, id)
		return err
	})
	if err != nil {
		return Seller{}, err
	}
	ss.publish(ctx, SellerEventsQueue, EventUpdated, "seller", id, updated.View())
	return updated, nil
}

// Delete removes the seller and all of its books.
func (ss *SellerService) Delete(ctx context.Context, id int64) error {
	err := WithUnitOfWork(ctx, ss.storage, true, func(uow UnitOfWork) error {
		return uow.DeleteSeller(ctx, id)
	})
	if err != nil {
		return err
	}
	ss.publish(ctx, SellerEventsQueue, EventDeleted, "seller", id, nil)
	return nil
}

type BookService struct {
	publisher
	storage Storage
}

func NewBookService(logger *zap.Logger, clock Clocker, storage Storage, queue Queuer) BookServiceProvider {
	return &BookService{
		publisher: publisher{logger: logger, clock: clock, queue: queue},
		storage:   storage,
	}
}

// Add stores a new book after checking its publication year and owner.
func (bs *BookService) Add(ctx context.Context, book Book) (Book, error) {
	if err := CheckPublicationYear(book.Year); err != nil {
		return Book{}, err
	}
	err := WithUnitOfWork(ctx, bs.storage, true, func(uow UnitOfWork) error {
		exists, err := uow.SellerExists(ctx, book.SellerID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUnknownSeller
		}
		return uow.AddBook(ctx, &book)
	})
	if err != nil {
		return Book{}, err
	}
	bs.publish(ctx, BookEventsQueue, EventCreated, "book", book.ID, book)
	return book, nil
}

func (bs *BookService) GetOne(ctx context.Context, id int64) (Book, error) {
	var book Book
	err := WithUnitOfWork(ctx, bs.storage, false, func(uow UnitOfWork) error {
		var err error
		book, err = uow.GetBook(ctx, id)
		return err
	})
	return book, err
}

func (bs *BookService) GetAll(ctx context.Context) ([]Book, error) {
	var books []Book
	err := WithUnitOfWork(ctx, bs.storage, false, func(uow UnitOfWork) error {
		var err error
		books, err = uow.GetAllBooks(ctx)
		return err
	})
	return books, err
}

// Update replaces all fields of the book identified by id.
func (bs *BookService) Update(ctx context.Context, id int64, book Book) (Book, error) {
	book.ID = id
	err := WithUnitOfWork(ctx, bs.storage, true, func(uow UnitOfWork) error {
		return uow.UpdateBook(ctx, book)
	})
	if err != nil {
		return Book{}, err
	}
	bs.publish(ctx, BookEventsQueue, EventUpdated, "book", id, book)
	return book, nil
}

func (bs *BookService) Delete(ctx context.Context, id int64) error {
	err := WithUnitOfWork(ctx, bs.storage, true, func(uow UnitOfWork) error {
		return uow.DeleteBook(ctx, id)
	})
	if err != nil {
		return err
	}
	bs.publish(ctx, BookEventsQueue, EventDeleted, "book", id, nil)
	return nil
}
