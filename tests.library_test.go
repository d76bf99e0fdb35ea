package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T, store StateStore) *LibraryService {
	t.Helper()
	if store == nil {
		store = &MockStateStore{}
	}
	svc, err := NewLibraryService(zap.NewNop(), &Config{}, NewMockClocker(), NewMockUIDHandler(), store, NewNopTrail())
	require.NoError(t, err)
	return svc
}

// outstanding sums the borrow records across all members.
func outstanding(svc *LibraryService) int {
	n := 0
	for i := range svc.state.Members {
		n += len(svc.state.Members[i].Borrowed)
	}
	return n
}

// missingCopies sums total minus available across all books.
func missingCopies(svc *LibraryService) int {
	n := 0
	for i := range svc.state.Books {
		n += svc.state.Books[i].TotalCopies - svc.state.Books[i].AvailableCopies
	}
	return n
}

func TestLibraryService_AddBook(t *testing.T) {
	svc := newTestService(t, nil)

	book, err := svc.AddBook(context.Background(), "Dune", "Frank Herbert", 2)
	require.NoError(t, err)
	assert.Equal(t, "B-00001", book.ID)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, 2, book.TotalCopies)
	assert.Equal(t, 2, book.AvailableCopies)
	assert.Equal(t, "2023-07-02 00:00:00", book.AddedOn)

	books, err := svc.ListBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, book, books[0])
}

func TestLibraryService_AddBookRejectsNegativeCopies(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.AddBook(context.Background(), "Dune", "Frank Herbert", -1)
	assert.ErrorIs(t, err, ErrInvalidCopies)

	books, err := svc.ListBooks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestLibraryService_AddMember(t *testing.T) {
	svc := newTestService(t, nil)

	member, err := svc.AddMember(context.Background(), "Ada", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "M-00001", member.ID)
	assert.NotNil(t, member.Borrowed)
	assert.Empty(t, member.Borrowed)

	members, err := svc.ListMembers(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, member, members[0])
}

func TestLibraryService_GetMemberNotFound(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.GetMember(context.Background(), "M-ZZZZZ")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

// Two copies of one title: two borrows succeed, the third fails with
// out of stock and leaves the state untouched.
func TestLibraryService_BorrowUntilOutOfStock(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	book, err := svc.AddBook(ctx, "Dune", "Frank Herbert", 2)
	require.NoError(t, err)
	ada, err := svc.AddMember(ctx, "Ada", "ada@example.com")
	require.NoError(t, err)
	bob, err := svc.AddMember(ctx, "Bob", "bob@example.com")
	require.NoError(t, err)

	record, err := svc.Borrow(ctx, ada.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.ID, record.BookID)
	assert.Equal(t, "Dune", record.Title)
	assert.Equal(t, "2023-07-02 00:00:00", record.BorrowOn)

	_, err = svc.Borrow(ctx, bob.ID, book.ID)
	require.NoError(t, err)

	_, err = svc.Borrow(ctx, ada.ID, book.ID)
	assert.ErrorIs(t, err, ErrOutOfStock)

	books, err := svc.ListBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, books[0].AvailableCopies)
	assert.Equal(t, 2, books[0].TotalCopies)

	got, err := svc.GetMember(ctx, ada.ID)
	require.NoError(t, err)
	assert.Len(t, got.Borrowed, 1)
	assert.Equal(t, outstanding(svc), missingCopies(svc))
}

func TestLibraryService_BorrowUnknownMember(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	book, err := svc.AddBook(ctx, "Dune", "Frank Herbert", 1)
	require.NoError(t, err)

	_, err = svc.Borrow(ctx, "M-ZZZZZ", book.ID)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	books, _ := svc.ListBooks(ctx)
	assert.Equal(t, 1, books[0].AvailableCopies)
}

func TestLibraryService_BorrowUnknownBook(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	ada, err := svc.AddMember(ctx, "Ada", "ada@example.com")
	require.NoError(t, err)

	_, err = svc.Borrow(ctx, ada.ID, "B-ZZZZZ")
	assert.ErrorIs(t, err, ErrBookNotFound)

	got, _ := svc.GetMember(ctx, ada.ID)
	assert.Empty(t, got.Borrowed)
}

func TestLibraryService_ReturnFirstChoice(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	book, err := svc.AddBook(ctx, "Dune", "Frank Herbert", 2)
	require.NoError(t, err)
	ada, err := svc.AddMember(ctx, "Ada", "ada@example.com")
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, ada.ID, book.ID)
	require.NoError(t, err)

	record, err := svc.Return(ctx, ada.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, book.ID, record.BookID)

	got, err := svc.GetMember(ctx, ada.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Borrowed)

	books, _ := svc.ListBooks(ctx)
	assert.Equal(t, 2, books[0].AvailableCopies)
	assert.Equal(t, outstanding(svc), missingCopies(svc))
}

func TestLibraryService_ReturnErrors(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Return(ctx, "M-ZZZZZ", 1)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	ada, err := svc.AddMember(ctx, "Ada", "ada@example.com")
	require.NoError(t, err)

	_, err = svc.Return(ctx, ada.ID, 1)
	assert.ErrorIs(t, err, ErrNothingToReturn)

	book, err := svc.AddBook(ctx, "Dune", "Frank Herbert", 1)
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, ada.ID, book.ID)
	require.NoError(t, err)

	_, err = svc.Return(ctx, ada.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidSelection)
	_, err = svc.Return(ctx, ada.ID, 2)
	assert.ErrorIs(t, err, ErrInvalidSelection)

	got, _ := svc.GetMember(ctx, ada.ID)
	assert.Len(t, got.Borrowed, 1)
}

// A record whose book has been removed from the catalog still gets
// returned, the availability update is simply skipped.
func TestLibraryService_ReturnVanishedBook(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	book, err := svc.AddBook(ctx, "Dune", "Frank Herbert", 1)
	require.NoError(t, err)
	ada, err := svc.AddMember(ctx, "Ada", "ada@example.com")
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, ada.ID, book.ID)
	require.NoError(t, err)

	svc.state.Books = []Book{}

	record, err := svc.Return(ctx, ada.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, book.ID, record.BookID)

	got, _ := svc.GetMember(ctx, ada.ID)
	assert.Empty(t, got.Borrowed)
}

// A failing save rolls the borrow back entirely.
func TestLibraryService_BorrowRollbackOnSaveFailure(t *testing.T) {
	saveErr := errors.New("disk full")
	failing := false
	store := &MockStateStore{
		SaveFunc: func(_ *LibraryState) error {
			if failing {
				return saveErr
			}
			return nil
		},
	}
	svc := newTestService(t, store)
	ctx := context.Background()

	book, err := svc.AddBook(ctx, "Dune", "Frank Herbert", 1)
	require.NoError(t, err)
	ada, err := svc.AddMember(ctx, "Ada", "ada@example.com")
	require.NoError(t, err)

	failing = true
	_, err = svc.Borrow(ctx, ada.ID, book.ID)
	assert.ErrorIs(t, err, saveErr)

	failing = false
	got, _ := svc.GetMember(ctx, ada.ID)
	assert.Empty(t, got.Borrowed)
	books, _ := svc.ListBooks(ctx)
	assert.Equal(t, 1, books[0].AvailableCopies)
}

// A failing save rolls the return back entirely, record kept in place.
func TestLibraryService_ReturnRollbackOnSaveFailure(t *testing.T) {
	saveErr := errors.New("disk full")
	failing := false
	store := &MockStateStore{
		SaveFunc: func(_ *LibraryState) error {
			if failing {
				return saveErr
			}
			return nil
		},
	}
	svc := newTestService(t, store)
	ctx := context.Background()

	book1, err := svc.AddBook(ctx, "Dune", "Frank Herbert", 1)
	require.NoError(t, err)
	book2, err := svc.AddBook(ctx, "Emma", "Jane Austen", 1)
	require.NoError(t, err)
	ada, err := svc.AddMember(ctx, "Ada", "ada@example.com")
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, ada.ID, book1.ID)
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, ada.ID, book2.ID)
	require.NoError(t, err)

	failing = true
	_, err = svc.Return(ctx, ada.ID, 1)
	assert.ErrorIs(t, err, saveErr)

	failing = false
	got, _ := svc.GetMember(ctx, ada.ID)
	require.Len(t, got.Borrowed, 2)
	assert.Equal(t, book1.ID, got.Borrowed[0].BookID)
	assert.Equal(t, book2.ID, got.Borrowed[1].BookID)
	books, _ := svc.ListBooks(ctx)
	assert.Equal(t, 0, books[0].AvailableCopies)
}

func TestLibraryService_IDCollisionsExhaust(t *testing.T) {
	svc, err := NewLibraryService(zap.NewNop(), &Config{}, NewMockClocker(), &FixedUIDHandler{ID: "AAAAA"}, &MockStateStore{}, NewNopTrail())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.AddBook(ctx, "Dune", "Frank Herbert", 1)
	require.NoError(t, err)

	_, err = svc.AddBook(ctx, "Emma", "Jane Austen", 1)
	assert.ErrorIs(t, err, ErrIDSpaceExhausted)

	books, _ := svc.ListBooks(ctx)
	assert.Len(t, books, 1)
}

func TestLibraryService_EditBookCopiesClamps(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	book, err := svc.AddBook(ctx, "Dune", "Frank Herbert", 5)
	require.NoError(t, err)

	edited, err := svc.EditBookCopies(ctx, book.ID, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, edited.TotalCopies)
	assert.Equal(t, 3, edited.AvailableCopies)

	edited, err = svc.EditBookCopies(ctx, book.ID, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, edited.TotalCopies)
	assert.Equal(t, 2, edited.AvailableCopies)

	_, err = svc.EditBookCopies(ctx, book.ID, -1, 0)
	assert.ErrorIs(t, err, ErrInvalidCopies)

	_, err = svc.EditBookCopies(ctx, "B-ZZZZZ", 1, 1)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestLibraryService_Dashboard(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.AddBook(ctx, "Dune", "Frank Herbert", 2)
	require.NoError(t, err)
	book2, err := svc.AddBook(ctx, "Emma", "Jane Austen", 3)
	require.NoError(t, err)
	ada, err := svc.AddMember(ctx, "Ada", "ada@example.com")
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, ada.ID, book2.ID)
	require.NoError(t, err)

	stats, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalCopies)
	assert.Equal(t, 4, stats.AvailableCopies)
	assert.Equal(t, 1, stats.TotalMembers)
	assert.Len(t, stats.RecentBooks, 2)
}

// End-to-end through the real file store: mutations survive a reload
// by a brand new service over the same file.
func TestLibraryService_PersistsThroughFileStore(t *testing.T) {
	fs, _ := newTestFileStore(t)
	svc, err := NewLibraryService(zap.NewNop(), &Config{}, NewMockClocker(), NewMockUIDHandler(), fs, NewNopTrail())
	require.NoError(t, err)
	ctx := context.Background()

	book, err := svc.AddBook(ctx, "Dune", "Frank Herbert", 2)
	require.NoError(t, err)
	ada, err := svc.AddMember(ctx, "Ada", "ada@example.com")
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, ada.ID, book.ID)
	require.NoError(t, err)

	reloaded, err := NewLibraryService(zap.NewNop(), &Config{}, NewMockClocker(), NewMockUIDHandler(), fs, NewNopTrail())
	require.NoError(t, err)

	books, err := reloaded.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 1, books[0].AvailableCopies)

	got, err := reloaded.GetMember(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, got.Borrowed, 1)
	assert.Equal(t, book.ID, got.Borrowed[0].BookID)
}
