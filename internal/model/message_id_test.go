package model

import (
	"errors"
	"testing"
)

func TestNewMessageID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      string
		want    string
		wantErr error
	}{
		{
			name:    "valid lowercase ID",
			id:      "pain.001.001.09",
			want:    "pain.001.001.09",
			wantErr: nil,
		},
		{
			name:    "uppercase prefix is normalized",
			id:      "PAIN.001.001.09",
			want:    "pain.001.001.09",
			wantErr: nil,
		},
		{
			name:    "mixed case prefix is normalized",
			id:      "Camt.053.001.08",
			want:    "camt.053.001.08",
			wantErr: nil,
		},
		{
			name:    "surrounding whitespace is trimmed",
			id:      "  acmt.002.001.08  ",
			want:    "acmt.002.001.08",
			wantErr: nil,
		},
		{
			name:    "empty ID",
			id:      "",
			wantErr: ErrEmptyMessageID,
		},
		{
			name:    "missing version segment",
			id:      "pain.001.001",
			wantErr: ErrInvalidMessageID,
		},
		{
			name:    "version segment too long",
			id:      "pain.001.001.091",
			wantErr: ErrInvalidMessageID,
		},
		{
			name:    "digit in prefix",
			id:      "pa1n.001.001.09",
			wantErr: ErrInvalidMessageID,
		},
		{
			name:    "prefix too short",
			id:      "pai.001.001.09",
			wantErr: ErrInvalidMessageID,
		},
		{
			name:    "letters in numeric segment",
			id:      "pain.abc.001.09",
			wantErr: ErrInvalidMessageID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mid, err := NewMessageID(tt.id)

			if tt.wantErr != nil {
				if err == nil {
					t.Errorf("expected error %v, got nil", tt.wantErr)
				} else if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if mid.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, mid.String())
			}
		})
	}
}

func TestMessageID_Set(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
		want string
	}{
		{name: "lowercase source", id: "pain.001.001.09", want: "pain"},
		{name: "uppercase source", id: "PAIN.001.001.09", want: "pain"},
		{name: "mixed case source", id: "CaMt.053.001.08", want: "camt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mid := MustNewMessageID(tt.id)
			if got := mid.Set().String(); got != tt.want {
				t.Errorf("expected set %q, got %q", tt.want, got)
			}
		})
	}

	t.Run("zero ID yields zero set", func(t *testing.T) {
		t.Parallel()
		var zero MessageID
		if !zero.Set().IsZero() {
			t.Error("expected zero set for zero ID")
		}
	})
}

func TestMessageID_Methods(t *testing.T) {
	t.Parallel()

	mid := MustNewMessageID("pain.001.001.09")

	t.Run("Equals compares normalized IDs", func(t *testing.T) {
		t.Parallel()
		other := MustNewMessageID("PAIN.001.001.09")
		if !mid.Equals(other) {
			t.Error("expected IDs differing only in prefix case to be equal")
		}
		different := MustNewMessageID("pain.001.001.10")
		if mid.Equals(different) {
			t.Error("expected different versions to be unequal")
		}
	})

	t.Run("IsZero", func(t *testing.T) {
		t.Parallel()
		var zero MessageID
		if !zero.IsZero() {
			t.Error("expected zero value to be zero")
		}
		if mid.IsZero() {
			t.Error("expected constructed ID to not be zero")
		}
	})
}

func TestMustNewMessageID(t *testing.T) {
	t.Parallel()

	t.Run("valid ID does not panic", func(t *testing.T) {
		t.Parallel()
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("unexpected panic: %v", r)
			}
		}()
		_ = MustNewMessageID("pain.001.001.09")
	})

	t.Run("invalid ID panics", func(t *testing.T) {
		t.Parallel()
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic for invalid ID")
			}
		}()
		_ = MustNewMessageID("invalid")
	})
}
