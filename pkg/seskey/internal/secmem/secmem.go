// Package secmem provides the two buffer allocators used for frames and keys.
//
// The secure allocator maps anonymous pages, locks them into RAM so they are never written to
// swap, and wipes and unmaps them on release. The normal allocator uses the Go heap and still
// wipes on release. Both sit behind the same Allocator interface, and For picks one by flag.
package secmem

import (
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// Allocator hands out buffers of a fixed size.
type Allocator interface {
	// Alloc returns a zeroed buffer of n bytes.
	Alloc(n int) (*Buffer, error)
	// Secure reports whether buffers from this allocator are kept out of swap.
	Secure() bool
}

// Buffer is a byte buffer which must be released after use.
type Buffer struct {
	b       []byte
	secure  bool
	release func([]byte) error
	once    sync.Once
}

// Bytes returns the buffer's contents. The slice is invalid after Release.
func (b *Buffer) Bytes() []byte {
	return b.b
}

// Len returns the size of the buffer.
func (b *Buffer) Len() int {
	return len(b.b)
}

// Secure reports whether the buffer came from the secure allocator.
func (b *Buffer) Secure() bool {
	return b.secure
}

// Release wipes the buffer and returns its memory. It is safe to call more than once.
func (b *Buffer) Release() {
	b.once.Do(func() {
		Wipe(b.b)

		if b.release != nil {
			if err := b.release(b.b); err != nil {
				logrus.WithError(err).Warnln("Can't release secure buffer")
			}
		}

		b.b = nil
	})
}

// Wipe overwrites b with zeros.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}

	runtime.KeepAlive(b)
}

//nolint:gochecknoglobals // stateless singletons
var (
	// Normal allocates from the Go heap.
	Normal Allocator = heapAllocator{}

	// Secure allocates locked, wiped pages.
	Secure Allocator = lockedAllocator{}
)

// For returns Secure if secure is true, Normal otherwise.
func For(secure bool) Allocator {
	if secure {
		return Secure
	}

	return Normal
}

type heapAllocator struct{}

func (heapAllocator) Alloc(n int) (*Buffer, error) {
	if n < 0 {
		return nil, ErrInvalidSize
	}

	return &Buffer{b: make([]byte, n)}, nil
}

func (heapAllocator) Secure() bool {
	return false
}

var _ Allocator = heapAllocator{}
