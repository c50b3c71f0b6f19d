package seskey

import (
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"

	"github.com/codahale/gubbins/assert"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

//nolint:gochecknoglobals // shared test key
var (
	testKeyOnce     sync.Once
	internalTestKey *rsa.PrivateKey
)

// testKey returns a singleton 2048-bit RSA key, to avoid generating one per test.
func testKey() *rsa.PrivateKey {
	testKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}

		internalTestKey = key
	})

	return internalTestKey
}

func TestSizeError(t *testing.T) {
	t.Parallel()

	err := &SizeError{Op: "session key", Size: 20, Bits: 160, Need: 27}

	assert.Equal(t, "message", "can't encode a 160 bit session key in a 160 bit frame (need 27 bytes)", err.Error())
	assert.Equal(t, "unwrap", ErrFrameSize, error(err), cmpopts.EquateErrors())
}

//nolint:paralleltest // replaces the package logger
func TestSetLogger(t *testing.T) {
	l, hook := logtest.NewNullLogger()

	SetLogger(l)
	t.Cleanup(func() { SetLogger(logrus.StandardLogger()) })

	dek, err := NewDEK(Blowfish128, []byte("ayellowsubmarine"))
	if err != nil {
		t.Fatal(err)
	}

	defer dek.Release()

	if _, err := EncodeSessionKey(dek, 128); err == nil {
		t.Fatal("encoded a key in a 128 bit frame")
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("nothing logged")
	}

	assert.Equal(t, "level", logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "op", "session key", entry.Data["op"])
	assert.Equal(t, "bits", 128, entry.Data["bits"])
	assert.Equal(t, "need", 23, entry.Data["need"])
}
