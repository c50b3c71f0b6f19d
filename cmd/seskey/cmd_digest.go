package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/codahale/seskey/pkg/seskey"
	"github.com/codahale/seskey/pkg/seskey/md"
	"github.com/sirupsen/logrus"
)

type digestCmd struct {
	Bits      int    `env:"SESKEY_BITS" default:"2048" help:"The width of the public-key modulus in bits."`
	PublicKey string `type:"existingfile" help:"A PEM-encoded RSA public key whose modulus sets the frame width."`
	Format    string `env:"SESKEY_FORMAT" default:"hex" enum:"hex,base58,raw" help:"The output format."`
	Output    string `short:"o" type:"path" default:"-" help:"The output path for the frame."`

	Message string `arg:"" default:"-" help:"The path to the message, or - for stdin."`

	Algo   string `name:"algo" default:"sha256" enum:"md5,sha1,rmd160,sha224,sha256,sha384,sha512" help:"The digest algorithm."`
	Secure bool   `help:"Treat the message as secret and keep the frame in secure memory."`
}

func (cmd *digestCmd) Run(_ *kong.Context) error {
	algo, err := md.Parse(cmd.Algo)
	if err != nil {
		return err
	}

	nbits, err := frameWidth(cmd.Bits, cmd.PublicKey)
	if err != nil {
		return err
	}

	h, err := md.New(algo, cmd.Secure)
	if err != nil {
		return err
	}

	// Open the message input.
	src, err := openInput(cmd.Message)
	if err != nil {
		return err
	}

	defer func() { _ = src.Close() }()

	// Hash the message.
	n, err := io.Copy(h, src)
	if err != nil {
		return err
	}

	// Encode the digest into a frame.
	v, err := seskey.EncodeDigestValue(h, nbits)
	if err != nil {
		return err
	}

	defer v.Release()

	logrus.WithFields(logrus.Fields{"algo": algo, "bytes": n, "bits": nbits}).Debugln("Encoded digest")

	// Open the frame output.
	dst, err := openOutput(cmd.Output)
	if err != nil {
		return err
	}

	defer func() { _ = dst.Close() }()

	return writeFrame(dst, v, nbits, cmd.Format)
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}

	return os.Open(path)
}
