package pkey

import (
	"fmt"

	"github.com/keyfoundry/keybind/internal/native"
	"github.com/keyfoundry/keybind/pkg/membuf"
)

// PassphraseFunc supplies the secret for encrypted PEM blocks. confirm is
// false when decrypting an existing key and true when a new passphrase is
// being chosen. The callback is invoked at most once per operation.
type PassphraseFunc = native.PassphraseFunc

// LoadKey reads a private key (with its public half) from src, which may
// be a []byte, string, *bytes.Buffer or io.Reader holding PEM data. The
// returned handle owns its provider object.
func LoadKey(src any, cb PassphraseFunc) (*PKey, error) {
	data, err := readAll(src)
	if err != nil {
		return nil, err
	}
	obj, err := native.ParseKey(data, cb)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}
	return &PKey{obj: obj, owns: true}, nil
}

// LoadPublicKey reads a public-key-only PEM structure from src. The
// passphrase callback mirrors LoadKey's signature; public keys carry no
// encryption, so it goes unused.
func LoadPublicKey(src any, cb PassphraseFunc) (*PKey, error) {
	data, err := readAll(src)
	if err != nil {
		return nil, err
	}
	obj, err := native.ParsePublicKey(data, cb)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}
	return &PKey{obj: obj, owns: true}, nil
}

func readAll(src any) ([]byte, error) {
	r, err := membuf.NewReader(src)
	if err != nil {
		return nil, err
	}
	return r.Bytes(), nil
}
