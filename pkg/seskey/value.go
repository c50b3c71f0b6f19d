package seskey

import (
	"fmt"
	"math/big"

	"github.com/codahale/seskey/pkg/seskey/internal/secmem"
)

// Value is a frame converted to an integer, ready for a public-key operation. The caller owns it
// and should call Release once the public-key operation is done. A released Value holds no
// integer; Bytes returns ErrInvalidFrame and BitLen returns 0.
type Value struct {
	i      *big.Int
	secure bool
}

func newValue(frame []byte, secure bool) *Value {
	return &Value{i: new(big.Int).SetBytes(frame), secure: secure}
}

// NewValue returns a Value for the given integer. The integer is copied.
func NewValue(i *big.Int, secure bool) *Value {
	return &Value{i: new(big.Int).Set(i), secure: secure}
}

// Int returns the underlying integer. It is only valid until Release is called.
func (v *Value) Int() *big.Int {
	return v.i
}

// Secure reports whether the value holds secret material.
func (v *Value) Secure() bool {
	return v.secure
}

// BitLen returns the length of the value in bits.
func (v *Value) BitLen() int {
	if v.i == nil {
		return 0
	}

	return v.i.BitLen()
}

// Bytes returns the value as a big-endian frame of exactly n bytes.
func (v *Value) Bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if err := v.fill(b); err != nil {
		return nil, err
	}

	return b, nil
}

func (v *Value) fill(b []byte) error {
	if v.i == nil {
		return fmt.Errorf("%w: value has been released", ErrInvalidFrame)
	}

	// FillBytes panics if the value doesn't fit.
	if v.i.Sign() < 0 || (v.i.BitLen()+7)/8 > len(b) {
		return fmt.Errorf("%w: value doesn't fit in %d bytes", ErrInvalidFrame, len(b))
	}

	v.i.FillBytes(b)

	return nil
}

// Release zeroes the value.
func (v *Value) Release() {
	if v.i == nil {
		return
	}

	words := v.i.Bits()
	for i := range words {
		words[i] = 0
	}

	v.i.SetInt64(0)
	v.i = nil
}

// Wipe overwrites b with zeros. Use it on frames returned by Value.Bytes for secure values.
func Wipe(b []byte) {
	secmem.Wipe(b)
}
