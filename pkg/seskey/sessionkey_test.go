package seskey

import (
	"bytes"
	"crypto/rsa"
	"encoding/binary"
	"errors"
	"math/big"
	"testing"

	"github.com/codahale/gubbins/assert"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestEncodeSessionKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		algo  CipherAlgo
		nbits int
	}{
		{name: "blowfish 1024", algo: Blowfish, nbits: 1024},
		{name: "blowfish 2048", algo: Blowfish, nbits: 2048},
		{name: "blowfish 1023", algo: Blowfish, nbits: 1023},
		{name: "blowfish128 768", algo: Blowfish128, nbits: 768},
		{name: "blowfish128 1025", algo: Blowfish128, nbits: 1025},
		{name: "blowfish minimal", algo: Blowfish, nbits: 27 * 8},
		{name: "blowfish128 minimal", algo: Blowfish128, nbits: 23 * 8},
		{name: "blowfish128 minimal odd bits", algo: Blowfish128, nbits: 22*8 + 1},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			dek, err := MakeSessionKey(test.algo)
			if err != nil {
				t.Fatal(err)
			}

			defer dek.Release()

			v, err := EncodeSessionKey(dek, test.nbits)
			if err != nil {
				t.Fatal(err)
			}

			defer v.Release()

			nframe := (test.nbits + 7) / 8
			keyLen := dek.Len()
			padLen := nframe - 6 - keyLen

			frame, err := v.Bytes(nframe)
			if err != nil {
				t.Fatal(err)
			}

			assert.Equal(t, "secure", true, v.Secure())
			assert.Equal(t, "frame length", nframe, len(frame))
			assert.Equal(t, "byte 0", byte(0x00), frame[0])
			assert.Equal(t, "byte 1", byte(0x02), frame[1])
			assert.Equal(t, "zero padding bytes", -1, bytes.IndexByte(frame[2:2+padLen], 0x00))
			assert.Equal(t, "terminator", byte(0x00), frame[2+padLen])
			assert.Equal(t, "algo", byte(test.algo), frame[3+padLen])

			key := frame[4+padLen : 4+padLen+keyLen]
			assert.Equal(t, "key", dek.Key(), key)
			assert.Equal(t, "checksum", Checksum(key), binary.BigEndian.Uint16(frame[nframe-2:]))
		})
	}
}

func TestEncodeSessionKey_Example(t *testing.T) {
	t.Parallel()

	key := make([]byte, 20)
	for i := range key {
		key[i] = byte(200 + i)
	}

	dek, err := NewDEK(Blowfish, key)
	if err != nil {
		t.Fatal(err)
	}

	defer dek.Release()

	v, err := EncodeSessionKey(dek, 1024)
	if err != nil {
		t.Fatal(err)
	}

	frame, err := v.Bytes(128)
	if err != nil {
		t.Fatal(err)
	}

	// 20 * 200 + (0 + 1 + ... + 19) = 4190
	assert.Equal(t, "checksum", []byte{0x10, 0x5e}, frame[126:128])
	assert.Equal(t, "key", key, frame[106:126])
	assert.Equal(t, "algo", byte(42), frame[105])
	assert.Equal(t, "terminator", byte(0), frame[104])
	assert.Equal(t, "zero padding bytes", -1, bytes.IndexByte(frame[2:104], 0x00))
}

func TestEncodeSessionKey_Deterministic(t *testing.T) {
	t.Parallel()

	key := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

	dek, err := NewDEK(Blowfish128, key)
	if err != nil {
		t.Fatal(err)
	}

	defer dek.Release()

	// Zero draws are rejected and redrawn.
	rand := bytes.NewReader([]byte{0x00, 0xaa, 0x00, 0xbb, 0xcc})

	v, err := encodeSessionKey(dek, 25*8, rand)
	if err != nil {
		t.Fatal(err)
	}

	frame, err := v.Bytes(25)
	if err != nil {
		t.Fatal(err)
	}

	want := []byte{0x00, 0x02, 0xbb, 0xaa, 0xcc, 0x00, 0x04}
	want = append(want, key...)
	want = append(want, 0x00, 0x88)

	assert.Equal(t, "frame", want, frame)
}

func TestEncodeSessionKey_RandomFailure(t *testing.T) {
	t.Parallel()

	dek, err := NewDEK(Blowfish128, bytes.Repeat([]byte{1}, 16))
	if err != nil {
		t.Fatal(err)
	}

	defer dek.Release()

	_, err = encodeSessionKey(dek, 1024, bytes.NewReader(nil))
	if err == nil {
		t.Fatal("encoded a frame without randomness")
	}
}

func TestEncodeSessionKey_TooSmall(t *testing.T) {
	t.Parallel()

	dek, err := MakeSessionKey(Blowfish)
	if err != nil {
		t.Fatal(err)
	}

	defer dek.Release()

	for _, nbits := range []int{26 * 8, 26*8 - 3, 64, 1, 0, -8} {
		v, err := EncodeSessionKey(dek, nbits)

		if v != nil {
			t.Fatalf("encoded a %d bit frame", nbits)
		}

		assert.Equal(t, "error", ErrFrameSize, err, cmpopts.EquateErrors())

		var sizeErr *SizeError
		if !errors.As(err, &sizeErr) {
			t.Fatalf("%v is not a SizeError", err)
		}

		assert.Equal(t, "bits", nbits, sizeErr.Bits)
		assert.Equal(t, "need", 27, sizeErr.Need)
	}
}

func TestEncodeSessionKey_Released(t *testing.T) {
	t.Parallel()

	dek, err := MakeSessionKey(Blowfish)
	if err != nil {
		t.Fatal(err)
	}

	dek.Release()

	v, err := EncodeSessionKey(dek, 1024)
	if v != nil {
		t.Fatal("encoded a released key")
	}

	assert.Equal(t, "error", ErrInvalidKey, err, cmpopts.EquateErrors())
}

func TestEncodeSessionKey_InvalidDEK(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		dek  *DEK
		want error
	}{
		{name: "zero value", dek: &DEK{}, want: ErrUnknownCipher},
		{name: "no key", dek: &DEK{Algo: Blowfish}, want: ErrInvalidKey},
		{name: "no key blowfish128", dek: &DEK{Algo: Blowfish128}, want: ErrInvalidKey},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			v, err := EncodeSessionKey(test.dek, 1024)
			if v != nil {
				t.Fatal("encoded an invalid key")
			}

			assert.Equal(t, "error", test.want, err, cmpopts.EquateErrors())
		})
	}
}

func TestDecodeSessionKey(t *testing.T) {
	t.Parallel()

	for _, algo := range []CipherAlgo{Blowfish, Blowfish128} {
		dek, err := MakeSessionKey(algo)
		if err != nil {
			t.Fatal(err)
		}

		v, err := EncodeSessionKey(dek, 1024)
		if err != nil {
			t.Fatal(err)
		}

		got, err := DecodeSessionKey(v, 1024)
		if err != nil {
			t.Fatal(err)
		}

		assert.Equal(t, "algo", algo, got.Algo)
		assert.Equal(t, "key", dek.Key(), got.Key())

		got.Release()
		dek.Release()
		v.Release()
	}
}

func TestDecodeSessionKey_BadChecksum(t *testing.T) {
	t.Parallel()

	frame := sessionKeyFrame(t)
	frame[len(frame)-1] ^= 0x01

	_, err := DecodeSessionKey(NewValue(new(big.Int).SetBytes(frame), true), len(frame)*8)

	assert.Equal(t, "error", ErrBadChecksum, err, cmpopts.EquateErrors())
}

func TestDecodeSessionKey_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(frame []byte) []byte
		want   error
	}{
		{
			name: "block type",
			modify: func(frame []byte) []byte {
				frame[1] = 0x01

				return frame
			},
			want: ErrInvalidFrame,
		},
		{
			name: "no padding",
			modify: func(frame []byte) []byte {
				frame[2] = 0x00

				return frame
			},
			want: ErrInvalidFrame,
		},
		{
			name: "no terminator",
			modify: func(frame []byte) []byte {
				for i := 2; i < len(frame); i++ {
					frame[i] = 0x01
				}

				return frame
			},
			want: ErrInvalidFrame,
		},
		{
			name: "unknown cipher",
			modify: func(frame []byte) []byte {
				frame[len(frame)-19] = 0x07

				return frame
			},
			want: ErrUnknownCipher,
		},
		{
			name: "wrong key length",
			modify: func(frame []byte) []byte {
				// Claim a blowfish key while carrying a 16-byte key.
				frame[len(frame)-19] = byte(Blowfish)

				return frame
			},
			want: ErrInvalidFrame,
		},
		{
			name: "too large",
			modify: func(frame []byte) []byte {
				return append([]byte{0x01}, frame...)
			},
			want: ErrInvalidFrame,
		},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			frame := sessionKeyFrame(t)
			nbits := len(frame) * 8
			frame = test.modify(frame)

			_, err := DecodeSessionKey(NewValue(new(big.Int).SetBytes(frame), true), nbits)

			assert.Equal(t, "error", test.want, err, cmpopts.EquateErrors())
		})
	}
}

func TestDecodeSessionKey_ZeroBits(t *testing.T) {
	t.Parallel()

	_, err := DecodeSessionKey(NewValue(big.NewInt(0), true), 0)

	assert.Equal(t, "error", ErrInvalidFrame, err, cmpopts.EquateErrors())
}

func TestEncodeSessionKey_RSA(t *testing.T) {
	t.Parallel()

	key := testKey()

	dek, err := MakeSessionKey(Blowfish)
	if err != nil {
		t.Fatal(err)
	}

	defer dek.Release()

	v, err := EncodeSessionKey(dek, key.N.BitLen())
	if err != nil {
		t.Fatal(err)
	}

	defer v.Release()

	// Raw RSA: c = m^e mod n.
	c := new(big.Int).Exp(v.Int(), big.NewInt(int64(key.E)), key.N)
	ciphertext := c.FillBytes(make([]byte, key.Size()))

	// A standard PKCS#1 v1.5 decrypter recovers the algorithm, key, and checksum.
	msg, err := rsa.DecryptPKCS1v15(nil, key, ciphertext)
	if err != nil {
		t.Fatal(err)
	}

	want := []byte{byte(Blowfish)}
	want = append(want, dek.Key()...)
	want = binary.BigEndian.AppendUint16(want, dek.Checksum())

	assert.Equal(t, "message", want, msg)
}

// sessionKeyFrame returns a 64-byte session key frame for a fixed blowfish128 key.
func sessionKeyFrame(t *testing.T) []byte {
	t.Helper()

	dek, err := NewDEK(Blowfish128, []byte("ayellowsubmarine"))
	if err != nil {
		t.Fatal(err)
	}

	defer dek.Release()

	v, err := EncodeSessionKey(dek, 512)
	if err != nil {
		t.Fatal(err)
	}

	defer v.Release()

	frame, err := v.Bytes(64)
	if err != nil {
		t.Fatal(err)
	}

	return frame
}
