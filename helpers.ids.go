package main

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/gofrs/uuid"
)

var (
	_ UIDHandler = (*RecordIDs)(nil)  // ensure RecordIDs implements UIDHandler.
	_ UIDHandler = (*RequestIDs)(nil) // ensure RequestIDs implements UIDHandler.
)

// UIDHandler is an interface for producing and checking prefixed ids.
type UIDHandler interface {
	Generate(prefix string) string
	IsValid(prefix string, id string) bool
}

const (
	recordIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	recordIDLength   = 5
)

// RecordIDs produces the short human-readable codes assigned to books
// and members, like `B-7KQ2N`. The 36^5 space is not collision free so
// the service re-checks a fresh id against the live collection.
type RecordIDs struct{}

// NewRecordIDs returns a ready to use RecordIDs.
func NewRecordIDs() *RecordIDs {
	return &RecordIDs{}
}

// Generate provides a record identifier made of the prefix and 5
// characters drawn uniformly from A-Z and 0-9.
func (rid *RecordIDs) Generate(prefix string) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteByte('-')
	max := big.NewInt(int64(len(recordIDAlphabet)))
	for i := 0; i < recordIDLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is
			// broken. Nothing sensible to do at this level.
			panic(err)
		}
		sb.WriteByte(recordIDAlphabet[n.Int64()])
	}
	return sb.String()
}

// IsValid checks if a given string has the record id shape for the prefix.
func (rid *RecordIDs) IsValid(prefix string, id string) bool {
	body, found := strings.CutPrefix(id, prefix+"-")
	if !found || len(body) != recordIDLength {
		return false
	}
	for i := 0; i < len(body); i++ {
		if !strings.ContainsRune(recordIDAlphabet, rune(body[i])) {
			return false
		}
	}
	return true
}

// RequestIDs implements the UIDHandler interface for per-request
// tracing identifiers.
type RequestIDs struct{}

// NewRequestIDs returns a ready to use RequestIDs.
func NewRequestIDs() *RequestIDs {
	return &RequestIDs{}
}

// Generate provides a random unique identifier.
func (ridh *RequestIDs) Generate(prefix string) string {
	id, _ := uuid.NewV4()
	return prefix + ":" + id.String()
}

// IsValid checks if a given string is a valid uuid after removal of custom prefix.
func (ridh *RequestIDs) IsValid(prefix string, id string) bool {
	if u := uuid.FromStringOrNil(strings.TrimPrefix(id, prefix+":")); u != uuid.Nil {
		return true
	}
	return false
}
