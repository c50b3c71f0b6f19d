package main

import (
	"github.com/alecthomas/kong"
	"github.com/codahale/seskey/pkg/seskey"
	"github.com/sirupsen/logrus"
)

type sessionKeyCmd struct {
	Bits      int    `env:"SESKEY_BITS" default:"2048" help:"The width of the public-key modulus in bits."`
	PublicKey string `type:"existingfile" help:"A PEM-encoded RSA public key whose modulus sets the frame width."`
	Format    string `env:"SESKEY_FORMAT" default:"hex" enum:"hex,base58,raw" help:"The output format."`
	Output    string `short:"o" type:"path" default:"-" help:"The output path for the frame."`

	Cipher string `default:"blowfish" enum:"blowfish,blowfish128" help:"The session key's cipher algorithm."`
}

func (cmd *sessionKeyCmd) Run(_ *kong.Context) error {
	algo, err := seskey.ParseCipher(cmd.Cipher)
	if err != nil {
		return err
	}

	nbits, err := frameWidth(cmd.Bits, cmd.PublicKey)
	if err != nil {
		return err
	}

	// Generate a new session key.
	dek, err := seskey.MakeSessionKey(algo)
	if err != nil {
		return err
	}

	defer dek.Release()

	// Encode it into a frame.
	v, err := seskey.EncodeSessionKey(dek, nbits)
	if err != nil {
		return err
	}

	defer v.Release()

	logrus.WithFields(logrus.Fields{"dek": dek.String(), "bits": nbits}).Debugln("Encoded session key")

	// Open the frame output.
	dst, err := openOutput(cmd.Output)
	if err != nil {
		return err
	}

	defer func() { _ = dst.Close() }()

	return writeFrame(dst, v, nbits, cmd.Format)
}
