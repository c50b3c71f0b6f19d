package md

import (
	"errors"
	"fmt"
	"hash"
	"io"
)

// ErrNotEnabled is returned when a digest is read for an algorithm the handle doesn't compute.
var ErrNotEnabled = errors.New("digest algorithm not enabled")

// Handle computes one or more digests over the same input. The first algorithm is the handle's
// primary algorithm.
//
// Secure records whether the input is secret. It decides whether frames built from the handle's
// digests are allocated from secure memory, so callers must set it whenever the hashed data is
// confidential.
type Handle struct {
	algos  []Algo
	hashes map[Algo]hash.Hash
	secure bool
}

// New returns a handle computing the given algorithm.
func New(algo Algo, secure bool) (*Handle, error) {
	h := &Handle{hashes: make(map[Algo]hash.Hash, 1), secure: secure}
	if err := h.Enable(algo); err != nil {
		return nil, err
	}

	return h, nil
}

// Enable adds another algorithm to the handle. Enabling an algorithm twice is a no-op.
func (h *Handle) Enable(algo Algo) error {
	if _, ok := h.hashes[algo]; ok {
		return nil
	}

	e, ok := table[algo]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAlgo, algo)
	}

	h.algos = append(h.algos, algo)
	h.hashes[algo] = e.new()

	return nil
}

// Algo returns the handle's primary algorithm.
func (h *Handle) Algo() Algo {
	return h.algos[0]
}

// Secure reports whether the handle's input is secret.
func (h *Handle) Secure() bool {
	return h.secure
}

// Write adds p to every enabled digest.
func (h *Handle) Write(p []byte) (n int, err error) {
	for _, algo := range h.algos {
		_, _ = h.hashes[algo].Write(p)
	}

	return len(p), nil
}

// Read returns the digest of everything written so far for the given algorithm. A zero algo
// selects the primary algorithm.
func (h *Handle) Read(algo Algo) ([]byte, error) {
	if algo == 0 {
		algo = h.Algo()
	}

	hh, ok := h.hashes[algo]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotEnabled, algo)
	}

	return hh.Sum(nil), nil
}

var _ io.Writer = &Handle{}
