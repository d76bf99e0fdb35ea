package main

import (
	"context"
	"fmt"
	"time"
)

// This file contains mocks definitions needed to perform unit tests.

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `2023-07-02 00:00:00` in the records file format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// MockUIDHandler implements a fake UIDHandler producing sequential
// predictable record ids like `B-00001`.
type MockUIDHandler struct {
	next int
}

// NewMockUIDHandler returns a mocked instance with predictable ids.
func NewMockUIDHandler() *MockUIDHandler {
	return &MockUIDHandler{}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	muid.next++
	return fmt.Sprintf("%s-%05d", prefix, muid.next)
}

// IsValid mocks IsValid behavior by accepting everything.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return true
}

// FixedUIDHandler always generates the same id, to exercise the
// collision retry path.
type FixedUIDHandler struct {
	ID string
}

func (fuid *FixedUIDHandler) Generate(prefix string) string {
	return prefix + "-" + fuid.ID
}

func (fuid *FixedUIDHandler) IsValid(_, _ string) bool {
	return true
}

// MockStateStore implements a fake StateStore.
type MockStateStore struct {
	LoadFunc func() (*LibraryState, error)
	SaveFunc func(state *LibraryState) error
}

// Load mocks the loading of the persisted state.
func (m *MockStateStore) Load() (*LibraryState, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return NewLibraryState(), nil
}

// Save mocks the persistence of the full state.
func (m *MockStateStore) Save(state *LibraryState) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(state)
	}
	return nil
}

// MockLibraryService implements a fake LibraryServiceProvider.
type MockLibraryService struct {
	AddBookFunc        func(ctx context.Context, title, author string, copies int) (Book, error)
	ListBooksFunc      func(ctx context.Context) ([]Book, error)
	AddMemberFunc      func(ctx context.Context, name, email string) (Member, error)
	ListMembersFunc    func(ctx context.Context) ([]Member, error)
	GetMemberFunc      func(ctx context.Context, id string) (Member, error)
	BorrowFunc         func(ctx context.Context, memberID, bookID string) (BorrowRecord, error)
	ReturnFunc         func(ctx context.Context, memberID string, choice int) (BorrowRecord, error)
	EditBookCopiesFunc func(ctx context.Context, bookID string, total, available int) (Book, error)
	DashboardFunc      func(ctx context.Context) (DashboardStats, error)
}

func (m *MockLibraryService) AddBook(ctx context.Context, title, author string, copies int) (Book, error) {
	return m.AddBookFunc(ctx, title, author, copies)
}

func (m *MockLibraryService) ListBooks(ctx context.Context) ([]Book, error) {
	return m.ListBooksFunc(ctx)
}

func (m *MockLibraryService) AddMember(ctx context.Context, name, email string) (Member, error) {
	return m.AddMemberFunc(ctx, name, email)
}

func (m *MockLibraryService) ListMembers(ctx context.Context) ([]Member, error) {
	return m.ListMembersFunc(ctx)
}

func (m *MockLibraryService) GetMember(ctx context.Context, id string) (Member, error) {
	return m.GetMemberFunc(ctx, id)
}

func (m *MockLibraryService) Borrow(ctx context.Context, memberID, bookID string) (BorrowRecord, error) {
	return m.BorrowFunc(ctx, memberID, bookID)
}

func (m *MockLibraryService) Return(ctx context.Context, memberID string, choice int) (BorrowRecord, error) {
	return m.ReturnFunc(ctx, memberID, choice)
}

func (m *MockLibraryService) EditBookCopies(ctx context.Context, bookID string, total, available int) (Book, error) {
	return m.EditBookCopiesFunc(ctx, bookID, total, available)
}

func (m *MockLibraryService) Dashboard(ctx context.Context) (DashboardStats, error) {
	return m.DashboardFunc(ctx)
}
