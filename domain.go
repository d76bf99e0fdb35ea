package main

// TimestampLayout is the textual format used for every timestamp kept
// in the records file (local time, second precision).
const TimestampLayout = "2006-01-02 15:04:05"

// Book represents one title owned by the library with its copy counts.
type Book struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
	AddedOn         string `json:"added_on"`
}

// BorrowRecord marks one outstanding loan of one book. It lives inside
// the member record and carries a snapshot of the title taken at borrow
// time, so later title edits do not rewrite history.
type BorrowRecord struct {
	BookID   string `json:"book_id"`
	Title    string `json:"title"`
	BorrowOn string `json:"borrow_on"`
}

// Member represents a registered library member and the ordered list of
// books currently out on loan to them.
type Member struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Borrowed []BorrowRecord `json:"borrowed"`
	// LegacyBorrowed captures records written under the historical
	// misspelled key by older versions of the records file. The store
	// folds it into Borrowed at load time and never writes it back.
	LegacyBorrowed []BorrowRecord `json:"borowed,omitempty"`
}

// LibraryState is the full authoritative state of the library. It is
// loaded once at startup and rewritten in full on every mutation.
type LibraryState struct {
	Books   []Book   `json:"books"`
	Members []Member `json:"members"`
}

// NewLibraryState returns an empty but non-nil state.
func NewLibraryState() *LibraryState {
	return &LibraryState{Books: []Book{}, Members: []Member{}}
}

// FindBook returns the index of the book with the given id, or -1.
func (s *LibraryState) FindBook(id string) int {
	for i := range s.Books {
		if s.Books[i].ID == id {
			return i
		}
	}
	return -1
}

// FindMember returns the index of the member with the given id, or -1.
func (s *LibraryState) FindMember(id string) int {
	for i := range s.Members {
		if s.Members[i].ID == id {
			return i
		}
	}
	return -1
}

// DashboardStats aggregates the counters displayed on the dashboard.
type DashboardStats struct {
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
	TotalMembers    int    `json:"total_members"`
	RecentBooks     []Book `json:"recent_books"`
}

// Trail event kinds.
const (
	TrailBorrow = "borrow"
	TrailReturn = "return"
)

// TrailEvent is one entry of the circulation audit trail.
type TrailEvent struct {
	Kind     string `json:"kind"`
	MemberID string `json:"member_id"`
	BookID   string `json:"book_id"`
	Title    string `json:"title"`
	At       string `json:"at"`
}
