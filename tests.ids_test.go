package main

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordIDs_Generate(t *testing.T) {
	rids := NewRecordIDs()
	shape := regexp.MustCompile(`^B-[A-Z0-9]{5}$`)
	for i := 0; i < 100; i++ {
		id := rids.Generate(BookIDPrefix)
		assert.Regexp(t, shape, id)
		assert.True(t, rids.IsValid(BookIDPrefix, id))
	}
}

func TestRecordIDs_IsValid(t *testing.T) {
	rids := NewRecordIDs()

	assert.True(t, rids.IsValid(MemberIDPrefix, "M-7KQ2N"))
	assert.False(t, rids.IsValid(MemberIDPrefix, "B-7KQ2N"))
	assert.False(t, rids.IsValid(BookIDPrefix, "B-7kq2n"))
	assert.False(t, rids.IsValid(BookIDPrefix, "B-7KQ2"))
	assert.False(t, rids.IsValid(BookIDPrefix, "B-7KQ2NX"))
	assert.False(t, rids.IsValid(BookIDPrefix, "B7KQ2N"))
	assert.False(t, rids.IsValid(BookIDPrefix, ""))
}

func TestRequestIDs(t *testing.T) {
	rids := NewRequestIDs()
	id := rids.Generate(RequestIDPrefix)
	assert.True(t, rids.IsValid(RequestIDPrefix, id))
	assert.False(t, rids.IsValid(RequestIDPrefix, "r:not-a-uuid"))
}
