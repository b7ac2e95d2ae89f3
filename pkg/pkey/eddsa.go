package pkey

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"strings"

	"github.com/cloudflare/circl/sign/ed448"

	"github.com/keyfoundry/keybind/internal/native"
)

// Generate creates a fresh owning handle for the named algorithm.
// Recognized names are "ed25519", "ed448", "rsa-2048", "rsa-3072",
// "rsa-4096" and the EC curve names (P-256, P-384, ...).
func Generate(algorithm string) (*PKey, error) {
	switch strings.ToLower(algorithm) {
	case "ed25519":
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("generate Ed25519 key: %w", err)
		}
		return ownPrivate(priv)

	case "ed448":
		_, priv, err := ed448.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("generate Ed448 key: %w", err)
		}
		return ownPrivate(priv)

	case "rsa-2048", "rsa-3072", "rsa-4096":
		bits := 2048
		switch algorithm[len(algorithm)-4:] {
		case "3072":
			bits = 3072
		case "4096":
			bits = 4096
		}
		priv, err := rsa.GenerateKey(rand.Reader, bits)
		if err != nil {
			return nil, fmt.Errorf("generate RSA key: %w", err)
		}
		return ownPrivate(priv)
	}

	if curve, ok := native.CurveByName(algorithm); ok {
		priv, err := ecdsa.GenerateKey(curve, rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("generate EC key: %w", err)
		}
		return ownPrivate(priv)
	}

	return nil, fmt.Errorf("%w: unknown algorithm %q", ErrParameter, algorithm)
}

func ownPrivate(priv any) (*PKey, error) {
	obj, err := native.ImportPrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &PKey{obj: obj, owns: true}, nil
}
