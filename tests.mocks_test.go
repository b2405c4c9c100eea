package main

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/boltdb/bolt"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// This file contains mocks definitions needed to perform unit tests.

// MockUnitOfWork is a func-field fake of UnitOfWork. It records
// whether it has been committed or rolled back.
type MockUnitOfWork struct {
	AddSellerFunc        func(ctx context.Context, seller *Seller) error
	GetSellerFunc        func(ctx context.Context, id int64) (Seller, error)
	GetAllSellersFunc    func(ctx context.Context) ([]Seller, error)
	UpdateSellerFunc     func(ctx context.Context, seller Seller) error
	DeleteSellerFunc     func(ctx context.Context, id int64) error
	SellerExistsFunc     func(ctx context.Context, id int64) (bool, error)
	AddBookFunc          func(ctx context.Context, book *Book) error
	GetBookFunc          func(ctx context.Context, id int64) (Book, error)
	GetAllBooksFunc      func(ctx context.Context) ([]Book, error)
	GetBooksBySellerFunc func(ctx context.Context, sellerID int64) ([]Book, error)
	UpdateBookFunc       func(ctx context.Context, book Book) error
	DeleteBookFunc       func(ctx context.Context, id int64) error

	Committed  bool
	RolledBack bool
}

func (m *MockUnitOfWork) AddSeller(ctx context.Context, seller *Seller) error {
	return m.AddSellerFunc(ctx, seller)
}

func (m *MockUnitOfWork) GetSeller(ctx context.Context, id int64) (Seller, error) {
	return m.GetSellerFunc(ctx, id)
}

func (m *MockUnitOfWork) GetAllSellers(ctx context.Context) ([]Seller, error) {
	return m.GetAllSellersFunc(ctx)
}

func (m *MockUnitOfWork) UpdateSeller(ctx context.Context, seller Seller) error {
	return m.UpdateSellerFunc(ctx, seller)
}

func (m *MockUnitOfWork) DeleteSeller(ctx context.Context, id int64) error {
	return m.DeleteSellerFunc(ctx, id)
}

func (m *MockUnitOfWork) SellerExists(ctx context.Context, id int64) (bool, error) {
	return m.SellerExistsFunc(ctx, id)
}

func (m *MockUnitOfWork) AddBook(ctx context.Context, book *Book) error {
	return m.AddBookFunc(ctx, book)
}

func (m *MockUnitOfWork) GetBook(ctx context.Context, id int64) (Book, error) {
	return m.GetBookFunc(ctx, id)
}

func (m *MockUnitOfWork) GetAllBooks(ctx context.Context) ([]Book, error) {
	return m.GetAllBooksFunc(ctx)
}

func (m *MockUnitOfWork) GetBooksBySeller(ctx context.Context, sellerID int64) ([]Book, error) {
	return m.GetBooksBySellerFunc(ctx, sellerID)
}

func (m *MockUnitOfWork) UpdateBook(ctx context.Context, book Book) error {
	return m.UpdateBookFunc(ctx, book)
}

func (m *MockUnitOfWork) DeleteBook(ctx context.Context, id int64) error {
	return m.DeleteBookFunc(ctx, id)
}

func (m *MockUnitOfWork) Commit() error {
	m.Committed = true
	return nil
}

func (m *MockUnitOfWork) Rollback() error {
	m.RolledBack = true
	return nil
}

// MockStorage hands out the same mocked unit of work on each Begin.
type MockStorage struct {
	UoW       *MockUnitOfWork
	BeginErr  error
	Writables []bool
}

func (m *MockStorage) Begin(_ context.Context, writable bool) (UnitOfWork, error) {
	m.Writables = append(m.Writables, writable)
	if m.BeginErr != nil {
		return nil, m.BeginErr
	}
	return m.UoW, nil
}

func (m *MockStorage) Close() error {
	return nil
}

// MockQueue records pushed events.
type MockQueue struct {
	mu       sync.Mutex
	PushErr  error
	Pushed   []Event
	QueueIDs []string
	PopFunc  func(ctx context.Context, qids ...string) (string, Event, error)
}

func (m *MockQueue) Push(_ context.Context, qid string, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PushErr != nil {
		return m.PushErr
	}
	m.QueueIDs = append(m.QueueIDs, qid)
	m.Pushed = append(m.Pushed, event)
	return nil
}

func (m *MockQueue) Pop(ctx context.Context, qids ...string) (string, Event, error) {
	return m.PopFunc(ctx, qids...)
}

func (m *MockQueue) events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.Pushed...)
}

// MockJournal keeps appended events in memory.
type MockJournal struct {
	mu      sync.Mutex
	Entries []JournalEntry
	Err     error
}

func (m *MockJournal) Append(_ context.Context, qid string, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Entries = append(m.Entries, JournalEntry{Seq: uint64(len(m.Entries) + 1), Queue: qid, Event: event})
	return nil
}

func (m *MockJournal) Latest(_ context.Context, n int) ([]JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	entries := []JournalEntry{}
	for i := len(m.Entries) - 1; i >= 0 && len(entries) < n; i-- {
		entries = append(entries, m.Entries[i])
	}
	return entries, nil
}

func (m *MockJournal) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Entries)
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// newTestBoltClient opens a bolt database in a temporary folder
// removed at the end of the test.
func newTestBoltClient(t *testing.T) *bolt.DB {
	t.Helper()
	testConfig := &Config{
		BoltDB: BoltDBConfig{
			FilePath: filepath.Join(t.TempDir(), "bookstore.test.db"),
			Timeout:  5 * time.Second,
		},
	}
	client, err := GetBoltDBClient(testConfig)
	require.NoError(t, err, "failed in creating a test bolt store")
	t.Cleanup(func() { client.Close() })
	return client
}

// newTestAPI builds an api handler backed by the given storage
// and queue, with all routes mounted on a bare middleware map.
func newTestAPI(t *testing.T, storage Storage, queue Queuer) (*APIHandler, *httprouter.Router) {
	t.Helper()
	clock := NewMockClocker()
	config := &Config{OpsEndpointsEnable: true, Events: EventsConfig{JournalSize: 10}}
	api := NewAPIHandler(
		zap.NewNop(),
		config,
		&Statistics{started: clock.Now()},
		clock,
		NewMockUIDHandler("0"),
		NewSellerService(zap.NewNop(), clock, storage, queue),
		NewBookService(zap.NewNop(), clock, storage, queue),
		nil,
	)
	m := &MiddlewareMap{public: (&Middlewares{}).Chain, ops: (&Middlewares{}).Chain}
	router := api.SetupRoutes(httprouter.New(), m)
	return api, router
}
