package domain

// Algorithm represents the authenticated encryption algorithm used to seal a record.
//
// Both algorithms take a 256-bit key and produce a 16-byte authentication tag. The
// algorithm is stored on every record, so records written under a previous
// configuration remain readable after the default changes.
type Algorithm string

const (
	// AESGCM is AES-256-GCM with a 128-bit random nonce.
	//
	// The nonce is wider than the 96-bit GCM default; the standard library derives
	// the counter block through GHASH for non-default sizes.
	AESGCM Algorithm = "aes-256-gcm"

	// XChaCha20 is XChaCha20-Poly1305 with a 192-bit random nonce.
	XChaCha20 Algorithm = "xchacha20-poly1305"
)

// Key material sizes shared by every deriver and cipher.
const (
	// KeySize is the size in bytes of a derived encryption key.
	KeySize = 32

	// SaltSize is the size in bytes of a freshly generated KDF salt.
	SaltSize = 16

	// AESGCMNonceSize is the nonce size used with AES-256-GCM.
	AESGCMNonceSize = 16
)

// Algorithms lists every supported cipher algorithm.
func Algorithms() []Algorithm {
	return []Algorithm{AESGCM, XChaCha20}
}
