//go:build unix

package secmem

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

//nolint:gochecknoglobals // warn once per process
var mlockWarning sync.Once

type lockedAllocator struct{}

func (lockedAllocator) Alloc(n int) (*Buffer, error) {
	if n < 0 {
		return nil, ErrInvalidSize
	}

	// mmap refuses zero-length mappings.
	if n == 0 {
		return &Buffer{b: []byte{}, secure: true}, nil
	}

	b, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("can't map secure memory: %w", err)
	}

	locked := true

	if err := unix.Mlock(b); err != nil {
		// mlock is rlimited. Fall back to an unlocked mapping, which is still wiped on release.
		if !errors.Is(err, unix.EPERM) && !errors.Is(err, unix.ENOMEM) && !errors.Is(err, unix.EAGAIN) {
			_ = unix.Munmap(b)

			return nil, fmt.Errorf("can't lock secure memory: %w", err)
		}

		locked = false

		mlockWarning.Do(func() {
			logrus.WithError(err).Warnln("Using insecure memory: can't lock pages")
		})
	}

	return &Buffer{
		b:      b,
		secure: true,
		release: func(b []byte) error {
			if locked {
				if err := unix.Munlock(b); err != nil {
					return err
				}
			}

			return unix.Munmap(b)
		},
	}, nil
}

func (lockedAllocator) Secure() bool {
	return true
}

var _ Allocator = lockedAllocator{}
