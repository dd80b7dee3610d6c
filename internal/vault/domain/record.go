package domain

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	"github.com/allisson/keyvault/internal/errors"
)

// AnyRevision disables the revision check of a positional delete.
const AnyRevision uint64 = 0

// aadPrefix versions the associated data layout.
const aadPrefix = "keyvault/v1:"

// EncryptedRecord is the persisted form of one secret.
//
// Salt is fixed when the record is created and must never be regenerated: the key
// is re-derived from it on every read. Nonce is fresh for every encryption.
// Byte slices are base64 encoded by encoding/json.
type EncryptedRecord struct {
	ID         uuid.UUID              `json:"id"`
	Algorithm  cryptoDomain.Algorithm `json:"algorithm"`
	KDF        cryptoDomain.KDFParams `json:"kdf"`
	Salt       []byte                 `json:"salt"`
	Nonce      []byte                 `json:"nonce"`
	Ciphertext []byte                 `json:"ciphertext"`
	CreatedAt  time.Time              `json:"created_at"`

	// raw holds the stored bytes of a record that failed to decode, so it is
	// written back untouched until it is deleted.
	raw       json.RawMessage
	decodeErr error
}

// DecodeErr returns the reason the stored record could not be decoded, or nil.
func (r *EncryptedRecord) DecodeErr() error {
	return r.decodeErr
}

// AAD returns the associated data binding the record to its owner and identity.
func (r *EncryptedRecord) AAD(userID string) []byte {
	return []byte(aadPrefix + userID + ":" + r.ID.String())
}

// Collection is the ordered sequence of records stored under one user.
// Insertion order is index order.
type Collection struct {
	// Revision increments on every mutation. Zero means nothing was ever written.
	Revision uint64            `json:"revision"`
	Records  []EncryptedRecord `json:"records"`
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{Records: []EncryptedRecord{}}
}

// Len returns the number of records.
func (c *Collection) Len() int {
	return len(c.Records)
}

// Append adds record at the end and returns its index.
func (c *Collection) Append(record EncryptedRecord) int {
	c.Records = append(c.Records, record)
	c.Revision++
	return len(c.Records) - 1
}

// RemoveAt deletes the record at index, keeping the relative order of the rest.
func (c *Collection) RemoveAt(index int) error {
	if index < 0 || index >= len(c.Records) {
		return ErrIndexOutOfRange
	}
	c.Records = slices.Delete(c.Records, index, index+1)
	c.Revision++
	return nil
}

// Clear removes every record. It reports whether anything was removed.
func (c *Collection) Clear() bool {
	if len(c.Records) == 0 {
		return false
	}
	c.Records = []EncryptedRecord{}
	c.Revision++
	return true
}

// CheckRevision returns ErrStaleRevision when expected is set and differs from the
// collection revision.
func (c *Collection) CheckRevision(expected uint64) error {
	if expected != AnyRevision && expected != c.Revision {
		return ErrStaleRevision
	}
	return nil
}

// wireCollection keeps records undecoded so one bad record cannot hide the others.
type wireCollection struct {
	Revision uint64            `json:"revision"`
	Records  []json.RawMessage `json:"records"`
}

// MarshalCollection encodes c in the persisted wire format.
func MarshalCollection(c *Collection) ([]byte, error) {
	wire := wireCollection{Revision: c.Revision, Records: make([]json.RawMessage, 0, len(c.Records))}
	for i := range c.Records {
		record := &c.Records[i]
		if record.decodeErr != nil {
			wire.Records = append(wire.Records, record.raw)
			continue
		}
		data, err := json.Marshal(record)
		if err != nil {
			return nil, err
		}
		wire.Records = append(wire.Records, data)
	}
	return json.Marshal(wire)
}

// UnmarshalCollection decodes a persisted collection. A record that fails to decode
// keeps its position and reports ErrCorruptRecord through DecodeErr.
func UnmarshalCollection(data []byte) (*Collection, error) {
	var wire wireCollection
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, errors.Mark(ErrCorruptCollection, err, "failed to decode collection")
	}

	c := &Collection{Revision: wire.Revision, Records: make([]EncryptedRecord, len(wire.Records))}
	for i, raw := range wire.Records {
		if err := json.Unmarshal(raw, &c.Records[i]); err != nil {
			c.Records[i] = EncryptedRecord{
				raw:       slices.Clone(raw),
				decodeErr: errors.Mark(ErrCorruptRecord, err, "failed to decode record"),
			}
		}
	}
	return c, nil
}

// PeekRevision reads only the revision of a persisted collection. It succeeds even
// when individual records are unreadable.
func PeekRevision(data []byte) (uint64, error) {
	var head struct {
		Revision uint64 `json:"revision"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return 0, errors.Mark(ErrCorruptCollection, err, "failed to decode collection revision")
	}
	return head.Revision, nil
}
