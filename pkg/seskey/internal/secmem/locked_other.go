//go:build !unix

package secmem

// lockedAllocator falls back to wiped heap buffers where page locking is unavailable.
type lockedAllocator struct{}

func (lockedAllocator) Alloc(n int) (*Buffer, error) {
	if n < 0 {
		return nil, ErrInvalidSize
	}

	return &Buffer{b: make([]byte, n), secure: true}, nil
}

func (lockedAllocator) Secure() bool {
	return true
}

var _ Allocator = lockedAllocator{}
