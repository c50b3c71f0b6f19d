package seskey

import (
	"crypto/cipher"
	"fmt"
	"io"

	"github.com/codahale/seskey/pkg/seskey/internal/rng"
	"github.com/codahale/seskey/pkg/seskey/internal/secmem"
	"golang.org/x/crypto/blowfish"
)

// CipherAlgo is a symmetric cipher algorithm identifier.
type CipherAlgo byte

const (
	Blowfish128 CipherAlgo = 4  // Blowfish128 is Blowfish with a 128-bit key.
	Blowfish    CipherAlgo = 42 // Blowfish is Blowfish with a 160-bit key.
)

// KeyLen returns the length in bytes of the algorithm's keys.
func (a CipherAlgo) KeyLen() (int, error) {
	switch a {
	case Blowfish:
		return 20, nil
	case Blowfish128:
		return 16, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownCipher, byte(a))
	}
}

// ParseCipher returns the algorithm with the given name.
func ParseCipher(name string) (CipherAlgo, error) {
	switch name {
	case "blowfish":
		return Blowfish, nil
	case "blowfish128":
		return Blowfish128, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCipher, name)
	}
}

func (a CipherAlgo) String() string {
	switch a {
	case Blowfish:
		return "blowfish"
	case Blowfish128:
		return "blowfish128"
	default:
		return fmt.Sprintf("cipher(%d)", byte(a))
	}
}

var _ fmt.Stringer = CipherAlgo(0)

// DEK is a data encryption (session) key. The key bytes live in secure memory; call Release when
// done with it.
type DEK struct {
	Algo CipherAlgo
	buf  *secmem.Buffer
}

// MakeSessionKey returns a new random session key for the given algorithm.
func MakeSessionKey(algo CipherAlgo) (*DEK, error) {
	return makeSessionKey(algo, rng.Reader)
}

func makeSessionKey(algo CipherAlgo, rand io.Reader) (*DEK, error) {
	n, err := algo.KeyLen()
	if err != nil {
		return nil, err
	}

	buf, err := secmem.Secure.Alloc(n)
	if err != nil {
		return nil, err
	}

	// Fill the key directly in secure memory.
	if _, err := io.ReadFull(rand, buf.Bytes()); err != nil {
		buf.Release()

		return nil, fmt.Errorf("can't generate session key: %w", err)
	}

	return &DEK{Algo: algo, buf: buf}, nil
}

// NewDEK returns a session key for the given algorithm, copying key into secure memory.
func NewDEK(algo CipherAlgo, key []byte) (*DEK, error) {
	n, err := algo.KeyLen()
	if err != nil {
		return nil, err
	}

	if len(key) != n {
		return nil, fmt.Errorf("invalid %s key length: %d", algo, len(key))
	}

	buf, err := secmem.Secure.Alloc(n)
	if err != nil {
		return nil, err
	}

	copy(buf.Bytes(), key)

	return &DEK{Algo: algo, buf: buf}, nil
}

// Key returns the key bytes. The slice is only valid until Release is called.
func (d *DEK) Key() []byte {
	if d.buf == nil {
		return nil
	}

	return d.buf.Bytes()
}

// Len returns the length of the key in bytes.
func (d *DEK) Len() int {
	if d.buf == nil {
		return 0
	}

	return d.buf.Len()
}

// Checksum returns the 16-bit additive checksum of the key.
func (d *DEK) Checksum() uint16 {
	return Checksum(d.Key())
}

// Cipher returns a block cipher keyed with the session key.
func (d *DEK) Cipher() (cipher.Block, error) {
	keyLen, err := d.Algo.KeyLen()
	if err != nil {
		return nil, err
	}

	if d.Len() != keyLen {
		return nil, fmt.Errorf("%w: %s key is %d bytes, not %d", ErrInvalidKey, d.Algo, d.Len(), keyLen)
	}

	// Both supported algorithms are Blowfish, differing only in key length.
	return blowfish.NewCipher(d.Key())
}

// Release wipes the key and frees its memory.
func (d *DEK) Release() {
	if d.buf != nil {
		d.buf.Release()
	}
}

// String describes the key without revealing it.
func (d *DEK) String() string {
	return fmt.Sprintf("%s/%d", d.Algo, d.Len()*8)
}

var _ fmt.Stringer = &DEK{}

// Checksum returns the sum of all bytes of key, modulo 65536.
func Checksum(key []byte) uint16 {
	var csum uint16
	for _, b := range key {
		csum += uint16(b)
	}

	return csum
}
