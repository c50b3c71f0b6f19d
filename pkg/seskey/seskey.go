// Package seskey builds the PKCS#1-style frames which are fed to a public-key operation.
//
// Two frames are supported. A session key frame wraps a randomly generated symmetric key (DEK)
// for public-key encryption:
//
//     00 02 RND(n bytes) 00 A DEK(k bytes) CSUM(2 bytes)
//
// RND are non-zero random bytes, A is the cipher algorithm, and CSUM is the 16-bit additive
// checksum of the DEK. A digest frame wraps a message digest for public-key signing:
//
//     00 A PAD(n bytes) 00 ASN(asnlen bytes) MD(len bytes)
//
// PAD consists of 0xFF bytes, A is the digest algorithm, and ASN is the algorithm's DigestInfo
// prefix.
//
// Both frames are exactly as wide as the public-key modulus (in bytes), and are returned as Value
// instances. A frame which can't hold its contents is never truncated; ErrFrameSize is returned
// instead.
package seskey

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var (
	// ErrFrameSize is returned when a frame is too small to hold its contents. It indicates a key
	// or digest which doesn't match the size of the public-key modulus.
	ErrFrameSize = errors.New("frame too small")

	// ErrUnknownCipher is returned when a cipher algorithm identifier isn't supported.
	ErrUnknownCipher = errors.New("unknown cipher algorithm")

	// ErrInvalidKey is returned when a DEK's key doesn't match its algorithm's key length, e.g. after
	// the DEK has been released.
	ErrInvalidKey = errors.New("invalid session key")

	// ErrDigestLen is returned when a digest's length doesn't match the expected length.
	ErrDigestLen = errors.New("digest length mismatch")

	// ErrInvalidFrame is returned when a decoded session key frame is malformed.
	ErrInvalidFrame = errors.New("invalid frame")

	// ErrBadChecksum is returned when a decoded session key doesn't match its checksum.
	ErrBadChecksum = errors.New("bad session key checksum")

	// ErrInternal is returned if a frame's layout doesn't add up to its width. It should never
	// happen.
	ErrInternal = errors.New("internal frame layout error")
)

// SizeError describes a frame which can't be built.
type SizeError struct {
	Op   string // Op is the frame type, e.g. "session key".
	Size int    // Size is the length of the key or digest in bytes.
	Bits int    // Bits is the requested frame width in bits.
	Need int    // Need is the minimum frame width in bytes.
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("can't encode a %d bit %s in a %d bit frame (need %d bytes)",
		e.Size*8, e.Op, e.Bits, e.Need)
}

// Unwrap returns ErrFrameSize.
func (e *SizeError) Unwrap() error {
	return ErrFrameSize
}

func sizeError(op string, size, nbits, need int) error {
	err := &SizeError{Op: op, Size: size, Bits: nbits, Need: need}

	logger().WithFields(logrus.Fields{"op": op, "bits": nbits, "need": need}).
		WithError(ErrFrameSize).Errorln("Can't encode frame")

	return err
}

//nolint:gochecknoglobals // package logger
var pkgLogger atomic.Value

// SetLogger replaces the logger used to report frame errors. The default is the logrus standard
// logger.
func SetLogger(l logrus.FieldLogger) {
	pkgLogger.Store(&l)
}

func logger() logrus.FieldLogger {
	if l, ok := pkgLogger.Load().(*logrus.FieldLogger); ok {
		return *l
	}

	return logrus.StandardLogger()
}
