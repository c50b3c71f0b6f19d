// Package rng provides the secure random source used for session keys and frame padding.
//
// At startup, a STROBE protocol is initialized:
//
//     INIT('seskey.rng', level=256)
//
// When a block of random data is required, a block B of equivalent size is read from the host
// machine's RNG, and the following operations performed:
//
//     AD(LE_U64(LEN(B)), meta=true)
//     KEY(B)
//     PRF(LEN(B)) -> B
//     RATCHET(32)
//
// This insulates the session keys somewhat against a compromised host RNG.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"sync"

	"github.com/sammyne/strobe"
)

// ratchetSize determines the amount of state to reset during each ratchet.
const ratchetSize = int(strobe.Bit256) / 8

// Read is a helper function that calls Reader.Read using io.ReadFull. On return, n == len(b) if and
// only if err == nil.
func Read(b []byte) (int, error) {
	return io.ReadFull(Reader, b)
}

// NonZero fills b with random bytes from r, none of which are zero. Zero bytes are redrawn one at a
// time until a non-zero value is obtained.
func NonZero(r io.Reader, b []byte) error {
	if _, err := io.ReadFull(r, b); err != nil {
		return err
	}

	for i := range b {
		for b[i] == 0 {
			if _, err := io.ReadFull(r, b[i:i+1]); err != nil {
				return err
			}
		}
	}

	return nil
}

// Reader is a global, shared instance of a cryptographically secure random number generator.
var Reader io.Reader = New(rand.Reader) //nolint:gochecknoglobals // need a singleton

// New returns a STROBE-whitened reader over the given source of entropy.
func New(src io.Reader) io.Reader {
	s, err := strobe.New("seskey.rng", strobe.Bit256)
	if err != nil {
		panic(err)
	}

	return &reader{rng: s, src: src}
}

type reader struct {
	mu     sync.Mutex
	rng    *strobe.Strobe
	src    io.Reader
	lenBuf [8]byte
}

func (r *reader) Read(p []byte) (n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Include length of PRF request as associated data.
	binary.LittleEndian.PutUint64(r.lenBuf[:], uint64(len(p)))
	must(r.rng.AD(r.lenBuf[:], &strobe.Options{Meta: true}))

	// Read a new block of data from the underlying RNG.
	if _, err := io.ReadFull(r.src, p); err != nil {
		return 0, err
	}

	// Re-key the protocol with the block.
	must(r.rng.KEY(p, false))

	// Return the results of the PRF.
	must(r.rng.PRF(p, false))

	// Ratchet the state of the RNG to prevent rollback.
	must(r.rng.RATCHET(ratchetSize))

	return len(p), nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
