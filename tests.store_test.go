package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFileStore(t *testing.T) (StateStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library.json")
	return NewFileStore(zap.NewNop(), &StoreConfig{FilePath: path}), path
}

// Ensure a missing records file initializes an empty state and writes it out.
func TestFileStore_LoadMissingFile(t *testing.T) {
	fs, path := newTestFileStore(t)

	state, err := fs.Load()
	require.NoError(t, err)
	assert.Empty(t, state.Books)
	assert.Empty(t, state.Members)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"books":[],"members":[]}`, string(raw))
}

// Ensure an empty records file initializes an empty state and writes it out.
func TestFileStore_LoadEmptyFile(t *testing.T) {
	fs, path := newTestFileStore(t)
	require.NoError(t, os.WriteFile(path, []byte{}, 0o644))

	state, err := fs.Load()
	require.NoError(t, err)
	assert.Empty(t, state.Books)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"books":[],"members":[]}`, string(raw))
}

// Ensure an unreadable records file degrades to an empty state without
// rewriting the broken content.
func TestFileStore_LoadCorruptFile(t *testing.T) {
	fs, path := newTestFileStore(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"books": [not json`), 0o644))

	state, err := fs.Load()
	require.NoError(t, err)
	assert.Empty(t, state.Books)
	assert.Empty(t, state.Members)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"books": [not json`, string(raw))
}

// Ensure save then load reproduces an equal state, order preserved.
func TestFileStore_RoundTrip(t *testing.T) {
	fs, _ := newTestFileStore(t)

	state := &LibraryState{
		Books: []Book{
			{ID: "B-AAAAA", Title: "Dune", Author: "Herbert", TotalCopies: 2, AvailableCopies: 1, AddedOn: "2023-07-02 00:00:00"},
			{ID: "B-BBBBB", Title: "Emma", Author: "Austen", TotalCopies: 1, AvailableCopies: 1, AddedOn: "2023-07-02 00:00:01"},
		},
		Members: []Member{
			{ID: "M-AAAAA", Name: "Ada", Email: "ada@example.com", Borrowed: []BorrowRecord{
				{BookID: "B-AAAAA", Title: "Dune", BorrowOn: "2023-07-02 00:00:02"},
			}},
			{ID: "M-BBBBB", Name: "Bob", Email: "bob@example.com", Borrowed: []BorrowRecord{}},
		},
	}
	require.NoError(t, fs.Save(state))

	loaded, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, state, loaded)
}

// Ensure the legacy misspelled borrowed key is folded in at load time.
func TestFileStore_LegacyBorrowedNormalization(t *testing.T) {
	fs, path := newTestFileStore(t)
	legacy := `{
	    "books": [],
	    "members": [
	        {"id": "M-AAAAA", "name": "Ada", "email": "ada@example.com",
	         "borowed": [{"book_id": "B-AAAAA", "title": "Dune", "borrow_on": "2023-07-02 00:00:00"}]},
	        {"id": "M-BBBBB", "name": "Bob", "email": "bob@example.com"}
	    ]
	}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	state, err := fs.Load()
	require.NoError(t, err)
	require.Len(t, state.Members, 2)
	require.Len(t, state.Members[0].Borrowed, 1)
	assert.Equal(t, "B-AAAAA", state.Members[0].Borrowed[0].BookID)
	assert.Nil(t, state.Members[0].LegacyBorrowed)
	assert.NotNil(t, state.Members[1].Borrowed)
	assert.Empty(t, state.Members[1].Borrowed)

	// The legacy key never comes back once the state is saved again.
	require.NoError(t, fs.Save(state))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"borowed"`)
}

// Ensure running the normalization twice yields the same result as once.
func TestNormalizeState_Idempotent(t *testing.T) {
	state := &LibraryState{
		Members: []Member{
			{ID: "M-AAAAA", LegacyBorrowed: []BorrowRecord{{BookID: "B-AAAAA", Title: "Dune"}}},
			{ID: "M-BBBBB"},
		},
	}

	NormalizeState(state)
	once, err := json.Marshal(state)
	require.NoError(t, err)

	NormalizeState(state)
	twice, err := json.Marshal(state)
	require.NoError(t, err)

	assert.JSONEq(t, string(once), string(twice))
	require.Len(t, state.Members[0].Borrowed, 1)
	assert.Equal(t, "B-AAAAA", state.Members[0].Borrowed[0].BookID)
}
