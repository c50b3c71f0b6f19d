package seskey

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/codahale/seskey/pkg/seskey/internal/rng"
	"github.com/codahale/seskey/pkg/seskey/internal/secmem"
)

// sessionKeyOverhead is the number of frame bytes which aren't key or random padding: the two
// leading bytes, the padding terminator, the algorithm, and the checksum.
const sessionKeyOverhead = 6

// EncodeSessionKey encodes the session key into a frame of nbits bits and returns it as a secure
// Value. If the key plus its overhead doesn't fit, returns a *SizeError.
func EncodeSessionKey(dek *DEK, nbits int) (*Value, error) {
	return encodeSessionKey(dek, nbits, rng.Reader)
}

func encodeSessionKey(dek *DEK, nbits int, rand io.Reader) (*Value, error) {
	nframe := (nbits + 7) / 8

	keyLen, err := dek.Algo.KeyLen()
	if err != nil {
		return nil, err
	}

	key := dek.Key()
	if len(key) != keyLen {
		return nil, fmt.Errorf("%w: %s key is %d bytes, not %d", ErrInvalidKey, dek.Algo, len(key), keyLen)
	}

	// At least one byte of random padding is required.
	if nframe <= 0 || len(key)+sessionKeyOverhead+1 > nframe {
		return nil, sizeError("session key", len(key), nbits, len(key)+sessionKeyOverhead+1)
	}

	// Checksum the key before it's copied anywhere.
	csum := Checksum(key)

	frame, err := secmem.Secure.Alloc(nframe)
	if err != nil {
		return nil, err
	}

	defer frame.Release()

	b := frame.Bytes()
	n := 0

	b[n] = 0x00
	n++

	b[n] = 0x02 // block type 2
	n++

	// Fill the padding with non-zero random bytes so the terminator is unambiguous.
	padLen := nframe - sessionKeyOverhead - len(key)
	if err := rng.NonZero(rand, b[n:n+padLen]); err != nil {
		return nil, fmt.Errorf("can't generate padding: %w", err)
	}

	n += padLen

	b[n] = 0x00
	n++

	b[n] = byte(dek.Algo)
	n++

	n += copy(b[n:], key)

	binary.BigEndian.PutUint16(b[n:], csum)
	n += 2

	if n != nframe {
		return nil, fmt.Errorf("%w: session key frame is %d of %d bytes", ErrInternal, n, nframe)
	}

	return newValue(b, true), nil
}

// DecodeSessionKey decodes a session key frame of nbits bits, as produced by EncodeSessionKey after
// the public-key operation has been reversed. The frame layout and the key checksum are verified.
func DecodeSessionKey(v *Value, nbits int) (*DEK, error) {
	nframe := (nbits + 7) / 8
	if nframe <= 0 {
		return nil, fmt.Errorf("%w: %d bit frame", ErrInvalidFrame, nbits)
	}

	frame, err := secmem.Secure.Alloc(nframe)
	if err != nil {
		return nil, err
	}

	defer frame.Release()

	b := frame.Bytes()
	if err := v.fill(b); err != nil {
		return nil, err
	}

	if len(b) < sessionKeyOverhead+1 || b[0] != 0x00 || b[1] != 0x02 {
		return nil, fmt.Errorf("%w: not a session key frame", ErrInvalidFrame)
	}

	// Skip the random padding, which must be at least one byte.
	sep := bytes.IndexByte(b[2:], 0x00)
	if sep < 1 {
		return nil, fmt.Errorf("%w: missing padding", ErrInvalidFrame)
	}

	n := 2 + sep + 1
	if n >= nframe {
		return nil, fmt.Errorf("%w: truncated frame", ErrInvalidFrame)
	}

	algo := CipherAlgo(b[n])
	n++

	keyLen, err := algo.KeyLen()
	if err != nil {
		return nil, err
	}

	if nframe-n != keyLen+2 {
		return nil, fmt.Errorf("%w: %d bytes left for a %d byte %s key", ErrInvalidFrame, nframe-n, keyLen, algo)
	}

	key := b[n : n+keyLen]
	if Checksum(key) != binary.BigEndian.Uint16(b[n+keyLen:]) {
		return nil, ErrBadChecksum
	}

	return NewDEK(algo, key)
}
