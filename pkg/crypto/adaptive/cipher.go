package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the required key length in bytes.
const KeySize = 32

// Algorithm identifies the AEAD used for a sealed blob.
type Algorithm byte

const (
	AlgAESGCM   Algorithm = 1
	AlgChaCha20 Algorithm = 2
)

// String implements fmt.Stringer.
func (a Algorithm) String() string {
	switch a {
	case AlgAESGCM:
		return "aes-256-gcm"
	case AlgChaCha20:
		return "chacha20-poly1305"
	default:
		return fmt.Sprintf("unknown(%d)", byte(a))
	}
}

var (
	// ErrInvalidKey is returned for keys that are not KeySize bytes.
	ErrInvalidKey = errors.New("adaptive: key must be 32 bytes")

	// ErrMalformed is returned when a blob is too short or names an
	// unknown algorithm.
	ErrMalformed = errors.New("adaptive: malformed sealed data")

	// ErrOpen is returned when authentication fails.
	ErrOpen = errors.New("adaptive: message authentication failed")
)

// Sealer provides authenticated encryption of small values.
// It is safe for concurrent use.
type Sealer struct {
	key  []byte
	alg  Algorithm
	aead cipher.AEAD
}

// New creates a Sealer using the preferred algorithm for this host.
func New(key []byte) (*Sealer, error) {
	return NewWithAlgorithm(key, preferred())
}

// NewWithAlgorithm creates a Sealer that seals with alg.
func NewWithAlgorithm(key []byte, alg Algorithm) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	aead, err := newAEAD(key, alg)
	if err != nil {
		return nil, err
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &Sealer{key: k, alg: alg, aead: aead}, nil
}

// Algorithm returns the algorithm used by Seal.
func (s *Sealer) Algorithm() Algorithm {
	return s.alg
}

// Seal encrypts plaintext, binding it to ad.
func (s *Sealer) Seal(plaintext, ad []byte) ([]byte, error) {
	ns := s.aead.NonceSize()
	out := make([]byte, 1+ns, 1+ns+len(plaintext)+s.aead.Overhead())
	out[0] = byte(s.alg)
	if _, err := io.ReadFull(rand.Reader, out[1:]); err != nil {
		return nil, fmt.Errorf("adaptive: nonce: %w", err)
	}
	return s.aead.Seal(out, out[1:], plaintext, ad), nil
}

// Open decrypts a blob produced by Seal with the same key and ad. The
// algorithm is taken from the blob header, not from the Sealer.
func (s *Sealer) Open(sealed, ad []byte) ([]byte, error) {
	if len(sealed) < 1 {
		return nil, ErrMalformed
	}

	aead := s.aead
	if alg := Algorithm(sealed[0]); alg != s.alg {
		var err error
		if aead, err = newAEAD(s.key, alg); err != nil {
			return nil, ErrMalformed
		}
	}

	ns := aead.NonceSize()
	if len(sealed) < 1+ns+aead.Overhead() {
		return nil, ErrMalformed
	}
	plaintext, err := aead.Open(nil, sealed[1:1+ns], sealed[1+ns:], ad)
	if err != nil {
		return nil, ErrOpen
	}
	return plaintext, nil
}

func newAEAD(key []byte, alg Algorithm) (cipher.AEAD, error) {
	switch alg {
	case AlgAESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	case AlgChaCha20:
		return chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("adaptive: unknown algorithm %s", alg)
	}
}

// preferred picks AES-GCM where Go uses hardware AES instructions.
func preferred() Algorithm {
	switch runtime.GOARCH {
	case "amd64", "arm64", "s390x":
		return AlgAESGCM
	default:
		return AlgChaCha20
	}
}
