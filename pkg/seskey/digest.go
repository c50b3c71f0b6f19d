package seskey

import (
	"fmt"

	"github.com/codahale/seskey/pkg/seskey/internal/secmem"
	"github.com/codahale/seskey/pkg/seskey/md"
)

// EncodeDigestValue encodes the digest of the handle's primary algorithm into a frame of nbits bits,
// using the algorithm's ASN.1 prefix.
func EncodeDigestValue(h *md.Handle, nbits int) (*Value, error) {
	algo := h.Algo()

	d, err := md.Lookup(algo)
	if err != nil {
		return nil, err
	}

	return EncodeDigest(h, algo, d.DigestLen, nbits, d.Prefix)
}

// EncodeDigest encodes the algo digest from the handle, which must be digestLen bytes long, into a
// frame of nbits bits with the given ASN.1 prefix. The frame and the returned Value are secure if
// the handle is. If the digest and prefix don't fit with at least two bytes of padding, returns a
// *SizeError.
func EncodeDigest(h *md.Handle, algo md.Algo, digestLen, nbits int, asn []byte) (*Value, error) {
	nframe := (nbits + 7) / 8

	if digestLen+len(asn)+4 > nframe {
		return nil, sizeError("digest", digestLen, nbits, digestLen+len(asn)+5)
	}

	padLen := nframe - digestLen - len(asn) - 3
	if padLen <= 1 {
		return nil, sizeError("digest", digestLen, nbits, digestLen+len(asn)+5)
	}

	digest, err := h.Read(algo)
	if err != nil {
		return nil, err
	}

	if h.Secure() {
		defer secmem.Wipe(digest)
	}

	if len(digest) != digestLen {
		return nil, fmt.Errorf("%w: %s digest is %d bytes, not %d", ErrDigestLen, algo, len(digest), digestLen)
	}

	frame, err := secmem.For(h.Secure()).Alloc(nframe)
	if err != nil {
		return nil, err
	}

	defer frame.Release()

	b := frame.Bytes()
	n := 0

	b[n] = 0x00
	n++

	b[n] = byte(algo)
	n++

	for i := 0; i < padLen; i++ {
		b[n] = 0xff
		n++
	}

	b[n] = 0x00
	n++

	n += copy(b[n:], asn)
	n += copy(b[n:], digest)

	if n != nframe {
		return nil, fmt.Errorf("%w: digest frame is %d of %d bytes", ErrInternal, n, nframe)
	}

	return newValue(b, h.Secure()), nil
}
