package model

import (
	"encoding/json"
	"errors"
	"net/url"
	"regexp"
)

// MessageRecord errors.
var (
	// ErrInvalidMessageName is returned when the message name lacks the
	// trailing version marker ("V" followed by two digits).
	ErrInvalidMessageName = errors.New("invalid message name: missing version suffix")
	// ErrInvalidDownloadLink is returned when the download link is not an
	// absolute URL.
	ErrInvalidDownloadLink = errors.New("invalid download link: must be an absolute URL")
)

// messageNamePattern requires the versioned-name suffix the catalog uses,
// e.g. "CustomerCreditTransferInitiationV09".
var messageNamePattern = regexp.MustCompile(`V\d{2}$`)

// MessageRecord is one schema definition extracted from the catalog.
// It is immutable once constructed; all fields are validated up front so a
// record in hand is always well-formed.
//
// Design decision: the struct holds only comparable fields, so records can
// be deduplicated by using the value itself as a map key. Equality is the
// full field tuple: two records agreeing on ID, name, organization, and
// link are the same record.
type MessageRecord struct {
	id   MessageID
	name string
	org  string
	link string
}

// NewMessageRecord creates a MessageRecord from its four fields.
// The ID must be a non-zero MessageID, the name must carry a version
// suffix, and the link must be an absolute URL (callers resolve
// page-relative hrefs before construction). The organization is free text.
func NewMessageRecord(id MessageID, name, organization, link string) (MessageRecord, error) {
	if id.IsZero() {
		return MessageRecord{}, ErrEmptyMessageID
	}
	if !messageNamePattern.MatchString(name) {
		return MessageRecord{}, ErrInvalidMessageName
	}
	u, err := url.Parse(link)
	if err != nil || !u.IsAbs() {
		return MessageRecord{}, ErrInvalidDownloadLink
	}

	return MessageRecord{
		id:   id,
		name: name,
		org:  organization,
		link: link,
	}, nil
}

// ID returns the message ID.
func (r MessageRecord) ID() MessageID {
	return r.id
}

// Name returns the versioned message name.
func (r MessageRecord) Name() string {
	return r.name
}

// Organization returns the submitting organization.
func (r MessageRecord) Organization() string {
	return r.org
}

// DownloadLink returns the absolute URL of the record's own schema file.
func (r MessageRecord) DownloadLink() string {
	return r.link
}

// Set returns the message set derived from the record's ID.
func (r MessageRecord) Set() MessageSet {
	return r.id.Set()
}

// IsZero returns true if this is a zero value (empty) MessageRecord.
func (r MessageRecord) IsZero() bool {
	return r.id.IsZero()
}

// Equals returns true if two records agree on every field.
func (r MessageRecord) Equals(other MessageRecord) bool {
	return r == other
}

// messageRecordJSON is the serialized shape of a MessageRecord in the
// metadata documents.
type messageRecordJSON struct {
	MessageID              string `json:"message_id"`
	MessageName            string `json:"message_name"`
	SubmittingOrganization string `json:"submitting_organization"`
	DownloadLink           string `json:"download_link"`
}

// MarshalJSON serializes the record with the metadata document field names.
func (r MessageRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageRecordJSON{
		MessageID:              r.id.String(),
		MessageName:            r.name,
		SubmittingOrganization: r.org,
		DownloadLink:           r.link,
	})
}
