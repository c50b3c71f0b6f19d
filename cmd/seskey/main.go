package main

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"
)

type cli struct {
	LogLevel string `env:"SESKEY_LOG_LEVEL" default:"warn" enum:"debug,info,warn,error" help:"The log level."`

	SessionKey sessionKeyCmd `cmd:"" help:"Generate a session key and encode it into a frame."`
	Digest     digestCmd     `cmd:"" help:"Hash a message and encode the digest into a frame."`
}

func main() {
	var cli cli

	ctx := kong.Parse(&cli,
		kong.Name("seskey"),
		kong.Description("Build PKCS#1-style session key and digest frames."),
	)

	setupLogging(cli.LogLevel)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

func setupLogging(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.WarnLevel
	}

	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
}

// frameWidth returns the frame width in bits, from the public key if one was given.
func frameWidth(bits int, publicKey string) (int, error) {
	if publicKey == "" {
		return bits, nil
	}

	b, err := os.ReadFile(publicKey)
	if err != nil {
		return 0, err
	}

	return modulusBits(b)
}

var errNotRSA = errors.New("not an RSA public key")

func modulusBits(pemBytes []byte) (int, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return 0, fmt.Errorf("%w: no PEM block found", errNotRSA)
	}

	var (
		pub interface{}
		err error
	)

	switch block.Type {
	case "RSA PUBLIC KEY":
		pub, err = x509.ParsePKCS1PublicKey(block.Bytes)
	default:
		pub, err = x509.ParsePKIXPublicKey(block.Bytes)
	}

	if err != nil {
		return 0, err
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return 0, errNotRSA
	}

	return rsaPub.N.BitLen(), nil
}
