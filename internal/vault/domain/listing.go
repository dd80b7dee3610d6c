package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a decrypted record together with its position in the collection.
type Entry struct {
	Index     int
	RecordID  uuid.UUID
	Secret    Secret
	CreatedAt time.Time
}

// RecordFailure reports a record that could not be decrypted. Err is
// cryptoDomain.ErrAuthenticationFailed for tampering or a wrong key.
type RecordFailure struct {
	Index    int
	RecordID uuid.UUID
	Err      error
}

// Listing is the result of listing a user's secrets.
//
// Failing records are left out of Entries and reported in Failures. Entry indices
// are positions in the stored collection, so they stay valid for DeleteAt even
// when earlier records failed.
type Listing struct {
	Revision uint64
	Entries  []Entry
	Failures []RecordFailure
}

// Secrets returns the decrypted secrets in collection order.
func (l *Listing) Secrets() []Secret {
	secrets := make([]Secret, 0, len(l.Entries))
	for _, e := range l.Entries {
		secrets = append(secrets, e.Secret)
	}
	return secrets
}

// SaveResult describes a record that was appended.
type SaveResult struct {
	RecordID  uuid.UUID
	Index     int
	Revision  uint64
	CreatedAt time.Time
}
