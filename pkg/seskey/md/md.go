// Package md provides the message digest algorithms which can be framed for signing, their ASN.1
// DigestInfo prefixes, and digest handles.
package md

import (
	"crypto/md5"  //nolint:gosec // legacy framing
	"crypto/sha1" //nolint:gosec // legacy framing
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // legacy framing
)

// Algo is an OpenPGP message digest algorithm identifier.
type Algo byte

// Supported algorithms.
const (
	MD5    Algo = 1
	SHA1   Algo = 2
	RMD160 Algo = 3
	SHA256 Algo = 8
	SHA384 Algo = 9
	SHA512 Algo = 10
	SHA224 Algo = 11
)

// ErrUnknownAlgo is returned when a digest algorithm identifier is not in the table.
var ErrUnknownAlgo = errors.New("unknown digest algorithm")

// Descriptor is the ASN.1 DigestInfo prefix for an algorithm and the length of its digests.
type Descriptor struct {
	Prefix    []byte
	DigestLen int
}

type entry struct {
	name string
	desc Descriptor
	new  func() hash.Hash
}

//nolint:gochecknoglobals // constant table
var table = map[Algo]entry{
	MD5: {
		name: "md5",
		desc: Descriptor{
			Prefix: []byte{
				0x30, 0x20, 0x30, 0x0c, 0x06, 0x08, 0x2a, 0x86, 0x48,
				0x86, 0xf7, 0x0d, 0x02, 0x05, 0x05, 0x00, 0x04, 0x10,
			},
			DigestLen: md5.Size,
		},
		new: md5.New,
	},
	SHA1: {
		name: "sha1",
		desc: Descriptor{
			Prefix: []byte{
				0x30, 0x21, 0x30, 0x09, 0x06, 0x05, 0x2b, 0x0e, 0x03,
				0x02, 0x1a, 0x05, 0x00, 0x04, 0x14,
			},
			DigestLen: sha1.Size,
		},
		new: sha1.New,
	},
	RMD160: {
		name: "rmd160",
		desc: Descriptor{
			Prefix: []byte{
				0x30, 0x21, 0x30, 0x09, 0x06, 0x05, 0x2b, 0x24, 0x03,
				0x02, 0x01, 0x05, 0x00, 0x04, 0x14,
			},
			DigestLen: ripemd160.Size,
		},
		new: ripemd160.New,
	},
	SHA224: {
		name: "sha224",
		desc: Descriptor{
			Prefix: []byte{
				0x30, 0x2d, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01,
				0x65, 0x03, 0x04, 0x02, 0x04, 0x05, 0x00, 0x04, 0x1c,
			},
			DigestLen: sha256.Size224,
		},
		new: sha256.New224,
	},
	SHA256: {
		name: "sha256",
		desc: Descriptor{
			Prefix: []byte{
				0x30, 0x31, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01,
				0x65, 0x03, 0x04, 0x02, 0x01, 0x05, 0x00, 0x04, 0x20,
			},
			DigestLen: sha256.Size,
		},
		new: sha256.New,
	},
	SHA384: {
		name: "sha384",
		desc: Descriptor{
			Prefix: []byte{
				0x30, 0x41, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01,
				0x65, 0x03, 0x04, 0x02, 0x02, 0x05, 0x00, 0x04, 0x30,
			},
			DigestLen: sha512.Size384,
		},
		new: sha512.New384,
	},
	SHA512: {
		name: "sha512",
		desc: Descriptor{
			Prefix: []byte{
				0x30, 0x51, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01,
				0x65, 0x03, 0x04, 0x02, 0x03, 0x05, 0x00, 0x04, 0x40,
			},
			DigestLen: sha512.Size,
		},
		new: sha512.New,
	},
}

// Lookup returns the ASN.1 descriptor for the given algorithm.
func Lookup(algo Algo) (Descriptor, error) {
	e, ok := table[algo]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %d", ErrUnknownAlgo, algo)
	}

	// Hand out a copy so the table can't be modified.
	prefix := make([]byte, len(e.desc.Prefix))
	copy(prefix, e.desc.Prefix)

	return Descriptor{Prefix: prefix, DigestLen: e.desc.DigestLen}, nil
}

// Parse returns the algorithm with the given name (e.g. "sha256").
func Parse(name string) (Algo, error) {
	for algo, e := range table {
		if e.name == name {
			return algo, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgo, name)
}

// Names returns the names of all supported algorithms, ordered by identifier.
func Names() []string {
	names := make([]string, 0, len(table))

	for algo := Algo(0); algo < 0xff; algo++ {
		if e, ok := table[algo]; ok {
			names = append(names, e.name)
		}
	}

	return names
}

func (a Algo) String() string {
	if e, ok := table[a]; ok {
		return e.name
	}

	return fmt.Sprintf("algo(%d)", byte(a))
}

var _ fmt.Stringer = Algo(0)
