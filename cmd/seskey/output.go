package main

import (
	"encoding/hex"
	"errors"
	"io"
	"os"

	"github.com/codahale/seskey/pkg/seskey"
	"github.com/mr-tron/base58"
	"golang.org/x/term"
)

var errRawTerminal = errors.New("refusing to write a raw frame to a terminal")

func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}

	return os.Create(path)
}

// writeFrame writes the value as a frame of nbits bits in the given format.
func writeFrame(dst io.Writer, v *seskey.Value, nbits int, format string) error {
	frame, err := v.Bytes((nbits + 7) / 8)
	if err != nil {
		return err
	}

	defer seskey.Wipe(frame)

	var out []byte

	switch format {
	case "raw":
		if f, ok := dst.(interface{ Fd() uintptr }); ok && term.IsTerminal(int(f.Fd())) {
			return errRawTerminal
		}

		out = frame
	case "base58":
		out = []byte(base58.Encode(frame) + "\n")
	default:
		out = []byte(hex.EncodeToString(frame) + "\n")
	}

	_, err = dst.Write(out)

	return err
}

type nopCloser struct {
	*os.File
}

func (nopCloser) Close() error {
	return nil
}
