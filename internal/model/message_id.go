package model

import (
	"errors"
	"regexp"
	"strings"
)

// MessageID errors.
var (
	// ErrEmptyMessageID is returned when the message ID is empty.
	ErrEmptyMessageID = errors.New("message ID cannot be empty")
	// ErrInvalidMessageID is returned when the message ID format is invalid.
	ErrInvalidMessageID = errors.New("invalid message ID format")
)

// messageIDPattern matches version-qualified message identifiers such as
// "pain.001.001.09": a four-letter business-area code followed by three
// dot-separated numeric segments. The area code is accepted in either case
// and normalized to lowercase at construction.
var messageIDPattern = regexp.MustCompile(`^[a-zA-Z]{4}\.\d{3}\.\d{3}\.\d{2}$`)

// setPrefixLength is the number of leading characters of a message ID that
// name its message set (the ISO 20022 business area).
const setPrefixLength = 4

// MessageID is an immutable value object identifying one versioned message
// definition in the catalog, e.g. "pain.001.001.09".
//
// Design decision: the ID is stored normalized (lowercase area prefix) so
// that set derivation and equality never depend on the capitalization used
// by the source page.
type MessageID struct {
	id string
}

// NewMessageID creates a MessageID from a string.
// It validates the format and normalizes the four-letter prefix to
// lowercase. Returns a typed error if the ID is empty or malformed.
func NewMessageID(id string) (MessageID, error) {
	if id == "" {
		return MessageID{}, ErrEmptyMessageID
	}

	trimmed := strings.TrimSpace(id)
	if !messageIDPattern.MatchString(trimmed) {
		return MessageID{}, ErrInvalidMessageID
	}

	normalized := strings.ToLower(trimmed[:setPrefixLength]) + trimmed[setPrefixLength:]
	return MessageID{id: normalized}, nil
}

// MustNewMessageID creates a MessageID or panics if invalid.
// Use only for known-valid IDs in tests or initialization.
func MustNewMessageID(id string) MessageID {
	mid, err := NewMessageID(id)
	if err != nil {
		panic(err)
	}
	return mid
}

// String returns the normalized message ID.
func (m MessageID) String() string {
	return m.id
}

// Set returns the message set derived from the ID: exactly the lowercase
// four-letter prefix. Returns the zero MessageSet for a zero MessageID.
func (m MessageID) Set() MessageSet {
	if m.IsZero() {
		return MessageSet{}
	}
	return MessageSet{set: m.id[:setPrefixLength]}
}

// IsZero returns true if this is a zero value (empty) MessageID.
func (m MessageID) IsZero() bool {
	return m.id == ""
}

// Equals returns true if two MessageID values are equal.
func (m MessageID) Equals(other MessageID) bool {
	return m.id == other.id
}
