package main

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// maxIDAttempts bounds the retries when a freshly generated record id
// collides with an existing one.
const maxIDAttempts = 10

// recentBooksLimit is the number of most recently added books shown on
// the dashboard.
const recentBooksLimit = 10

var _ LibraryServiceProvider = (*LibraryService)(nil) // ensure LibraryService implements LibraryServiceProvider.

// LibraryServiceProvider defines the operations shared by every front end.
type LibraryServiceProvider interface {
	AddBook(ctx context.Context, title, author string, copies int) (Book, error)
	ListBooks(ctx context.Context) ([]Book, error)
	AddMember(ctx context.Context, name, email string) (Member, error)
	ListMembers(ctx context.Context) ([]Member, error)
	GetMember(ctx context.Context, id string) (Member, error)
	Borrow(ctx context.Context, memberID, bookID string) (BorrowRecord, error)
	Return(ctx context.Context, memberID string, choice int) (BorrowRecord, error)
	EditBookCopies(ctx context.Context, bookID string, total, available int) (Book, error)
	Dashboard(ctx context.Context) (DashboardStats, error)
}

// LibraryService owns the in-memory library state and keeps the books
// and members collections mutually consistent across operations. Every
// mutation is written back to the store before it returns. The mutex
// serializes callers inside this process; the store file itself still
// assumes a single active writer process.
type LibraryService struct {
	logger *zap.Logger
	config *Config
	clock  Clocker
	uids   UIDHandler
	store  StateStore
	trail  CirculationTrail

	mu    sync.Mutex
	state *LibraryState
}

// NewLibraryService loads the persisted state and provides a ready to
// use service.
func NewLibraryService(logger *zap.Logger, config *Config, clock Clocker, uids UIDHandler, store StateStore, trail CirculationTrail) (*LibraryService, error) {
	state, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &LibraryService{
		logger: logger,
		config: config,
		clock:  clock,
		uids:   uids,
		store:  store,
		trail:  trail,
		state:  state,
	}, nil
}

// nextID generates a record id and re-checks it against the live
// collection, retrying a bounded number of times on collision.
func (ls *LibraryService) nextID(prefix string, taken func(id string) bool) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := ls.uids.Generate(prefix)
		if !taken(id) {
			return id, nil
		}
	}
	return "", ErrIDSpaceExhausted
}

// AddBook registers a new title with the given number of copies, all of
// them available.
func (ls *LibraryService) AddBook(_ context.Context, title, author string, copies int) (Book, error) {
	if copies < 0 {
		return Book{}, ErrInvalidCopies
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	id, err := ls.nextID(BookIDPrefix, func(id string) bool { return ls.state.FindBook(id) >= 0 })
	if err != nil {
		return Book{}, err
	}

	book := Book{
		ID:              id,
		Title:           title,
		Author:          author,
		TotalCopies:     copies,
		AvailableCopies: copies,
		AddedOn:         Timestamp(ls.clock.Now()),
	}
	ls.state.Books = append(ls.state.Books, book)

	if err = ls.store.Save(ls.state); err != nil {
		ls.state.Books = ls.state.Books[:len(ls.state.Books)-1]
		return Book{}, err
	}
	ls.logger.Info("service: book added", zap.String("book.id", book.ID), zap.String("book.title", book.Title))
	return book, nil
}

// ListBooks returns all books in insertion order.
func (ls *LibraryService) ListBooks(_ context.Context) ([]Book, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	books := make([]Book, len(ls.state.Books))
	copy(books, ls.state.Books)
	return books, nil
}

// AddMember registers a new member with an empty borrowed list.
func (ls *LibraryService) AddMember(_ context.Context, name, email string) (Member, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	id, err := ls.nextID(MemberIDPrefix, func(id string) bool { return ls.state.FindMember(id) >= 0 })
	if err != nil {
		return Member{}, err
	}

	member := Member{
		ID:       id,
		Name:     name,
		Email:    email,
		Borrowed: []BorrowRecord{},
	}
	ls.state.Members = append(ls.state.Members, member)

	if err = ls.store.Save(ls.state); err != nil {
		ls.state.Members = ls.state.Members[:len(ls.state.Members)-1]
		return Member{}, err
	}
	ls.logger.Info("service: member added", zap.String("member.id", member.ID), zap.String("member.name", member.Name))
	return cloneMember(member), nil
}

// ListMembers returns all members with their borrowed lists in insertion order.
func (ls *LibraryService) ListMembers(_ context.Context) ([]Member, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	members := make([]Member, len(ls.state.Members))
	for i := range ls.state.Members {
		members[i] = cloneMember(ls.state.Members[i])
	}
	return members, nil
}

// GetMember returns one member with their borrowed list.
func (ls *LibraryService) GetMember(_ context.Context, id string) (Member, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	mi := ls.state.FindMember(id)
	if mi < 0 {
		return Member{}, ErrMemberNotFound
	}
	return cloneMember(ls.state.Members[mi]), nil
}

// Borrow hands one available copy of a book to a member. The borrow
// record append and the availability decrement are one transaction:
// the state is saved once, after both, and both are rolled back if the
// save fails.
func (ls *LibraryService) Borrow(ctx context.Context, memberID, bookID string) (BorrowRecord, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	mi := ls.state.FindMember(memberID)
	if mi < 0 {
		return BorrowRecord{}, ErrMemberNotFound
	}
	bi := ls.state.FindBook(bookID)
	if bi < 0 {
		return BorrowRecord{}, ErrBookNotFound
	}
	book := &ls.state.Books[bi]
	if book.AvailableCopies <= 0 {
		return BorrowRecord{}, ErrOutOfStock
	}

	record := BorrowRecord{
		BookID:   book.ID,
		Title:    book.Title,
		BorrowOn: Timestamp(ls.clock.Now()),
	}
	member := &ls.state.Members[mi]
	member.Borrowed = append(member.Borrowed, record)
	book.AvailableCopies--

	if err := ls.store.Save(ls.state); err != nil {
		member.Borrowed = member.Borrowed[:len(member.Borrowed)-1]
		book.AvailableCopies++
		return BorrowRecord{}, err
	}

	ls.recordTrail(ctx, TrailEvent{
		Kind:     TrailBorrow,
		MemberID: member.ID,
		BookID:   record.BookID,
		Title:    record.Title,
		At:       record.BorrowOn,
	})
	ls.logger.Info("service: book borrowed",
		zap.String("member.id", member.ID),
		zap.String("book.id", record.BookID),
		zap.Int("book.available", book.AvailableCopies),
	)
	return record, nil
}

// Return takes back the borrowed book at the 1-based position choice in
// the member borrowed list. The referenced book is resolved before the
// record is removed so a missing book can never lose the record without
// the matching availability update being decided first. When the book no
// longer exists the increment is simply skipped.
func (ls *LibraryService) Return(ctx context.Context, memberID string, choice int) (BorrowRecord, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	mi := ls.state.FindMember(memberID)
	if mi < 0 {
		return BorrowRecord{}, ErrMemberNotFound
	}
	member := &ls.state.Members[mi]
	if len(member.Borrowed) == 0 {
		return BorrowRecord{}, ErrNothingToReturn
	}
	if choice < 1 || choice > len(member.Borrowed) {
		return BorrowRecord{}, ErrInvalidSelection
	}

	record := member.Borrowed[choice-1]
	bi := ls.state.FindBook(record.BookID)

	member.Borrowed = append(member.Borrowed[:choice-1], member.Borrowed[choice:]...)
	if bi >= 0 {
		// No upper clamp against total copies. Kept as designed.
		ls.state.Books[bi].AvailableCopies++
	}

	if err := ls.store.Save(ls.state); err != nil {
		member.Borrowed = append(member.Borrowed, BorrowRecord{})
		copy(member.Borrowed[choice:], member.Borrowed[choice-1:])
		member.Borrowed[choice-1] = record
		if bi >= 0 {
			ls.state.Books[bi].AvailableCopies--
		}
		return BorrowRecord{}, err
	}

	ls.recordTrail(ctx, TrailEvent{
		Kind:     TrailReturn,
		MemberID: member.ID,
		BookID:   record.BookID,
		Title:    record.Title,
		At:       Timestamp(ls.clock.Now()),
	})
	ls.logger.Info("service: book returned",
		zap.String("member.id", member.ID),
		zap.String("book.id", record.BookID),
	)
	return record, nil
}

// EditBookCopies overwrites the copy counts of a book. The available
// count is reconciled into [0, total] so a direct edit cannot break the
// circulation invariants.
func (ls *LibraryService) EditBookCopies(_ context.Context, bookID string, total, available int) (Book, error) {
	if total < 0 || available < 0 {
		return Book{}, ErrInvalidCopies
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	bi := ls.state.FindBook(bookID)
	if bi < 0 {
		return Book{}, ErrBookNotFound
	}

	book := &ls.state.Books[bi]
	previous := *book
	book.TotalCopies = total
	if available > total {
		available = total
	}
	book.AvailableCopies = available

	if err := ls.store.Save(ls.state); err != nil {
		*book = previous
		return Book{}, err
	}
	ls.logger.Info("service: book copies edited",
		zap.String("book.id", book.ID),
		zap.Int("book.total", book.TotalCopies),
		zap.Int("book.available", book.AvailableCopies),
	)
	return *book, nil
}

// Dashboard aggregates the copy counters, the member count and the most
// recently added books.
func (ls *LibraryService) Dashboard(_ context.Context) (DashboardStats, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	stats := DashboardStats{TotalMembers: len(ls.state.Members)}
	for i := range ls.state.Books {
		stats.TotalCopies += ls.state.Books[i].TotalCopies
		stats.AvailableCopies += ls.state.Books[i].AvailableCopies
	}

	recent := make([]Book, len(ls.state.Books))
	copy(recent, ls.state.Books)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].AddedOn > recent[j].AddedOn
	})
	if len(recent) > recentBooksLimit {
		recent = recent[:recentBooksLimit]
	}
	stats.RecentBooks = recent
	return stats, nil
}

// recordTrail appends a circulation event to the audit trail. Trail
// failures are logged and never surfaced: the state mutation already
// persisted and stays authoritative.
func (ls *LibraryService) recordTrail(ctx context.Context, event TrailEvent) {
	if err := ls.trail.Record(ctx, event); err != nil {
		ls.logger.Error("service: failed to record trail event",
			zap.String("trail.kind", event.Kind),
			zap.String("book.id", event.BookID),
			zap.Error(err),
		)
	}
}

// cloneMember deep copies a member so callers cannot mutate the
// authoritative borrowed list through a returned value.
func cloneMember(m Member) Member {
	borrowed := make([]BorrowRecord, len(m.Borrowed))
	copy(borrowed, m.Borrowed)
	m.Borrowed = borrowed
	return m
}
