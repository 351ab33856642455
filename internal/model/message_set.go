package model

import (
	"errors"
	"regexp"
	"strings"
)

// MessageSet errors.
var (
	// ErrEmptyMessageSet is returned when the message set is empty.
	ErrEmptyMessageSet = errors.New("message set cannot be empty")
	// ErrInvalidMessageSet is returned when the message set format is invalid.
	ErrInvalidMessageSet = errors.New("invalid message set format")
)

// messageSetPattern matches a four-letter lowercase business-area code
// such as "pain" or "camt".
var messageSetPattern = regexp.MustCompile(`^[a-z]{4}$`)

// MessageSet is an immutable value object naming one ISO 20022 business
// area, the unit the catalog groups message definitions and batch
// downloads by.
type MessageSet struct {
	set string
}

// NewMessageSet creates a MessageSet from a string.
// The label must be exactly four lowercase letters; anything else is a
// typed validation error. Surrounding whitespace is ignored.
func NewMessageSet(set string) (MessageSet, error) {
	if set == "" {
		return MessageSet{}, ErrEmptyMessageSet
	}

	trimmed := strings.TrimSpace(set)
	if !messageSetPattern.MatchString(trimmed) {
		return MessageSet{}, ErrInvalidMessageSet
	}

	return MessageSet{set: trimmed}, nil
}

// MustNewMessageSet creates a MessageSet or panics if invalid.
// Use only for known-valid sets in tests or initialization.
func MustNewMessageSet(set string) MessageSet {
	ms, err := NewMessageSet(set)
	if err != nil {
		panic(err)
	}
	return ms
}

// String returns the four-letter set code.
func (s MessageSet) String() string {
	return s.set
}

// IsZero returns true if this is a zero value (empty) MessageSet.
func (s MessageSet) IsZero() bool {
	return s.set == ""
}

// Equals returns true if two MessageSet values are equal.
func (s MessageSet) Equals(other MessageSet) bool {
	return s.set == other.set
}
