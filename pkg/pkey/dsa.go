// Package pkey exposes key-pair objects over the native provider layer.
//
// Every handle wraps exactly one provider key object and is either the
// exclusive owner of it (responsible for the single release) or a borrowing
// view. Handles are not safe for concurrent mutation of the same underlying
// object; callers keep a single-writer discipline, as the provider adds no
// locking of its own.
package pkey

import (
	"crypto/dsa" //nolint:staticcheck // DSA key objects are part of the public surface
	"crypto/rand"
	"encoding/asn1"
	"fmt"
	"math/big"

	"github.com/keyfoundry/keybind/internal/native"
)

// DSA is a handle to a DSA key object.
type DSA struct {
	obj    *native.Object
	owns   bool
	valid  bool
	closed bool
}

// dsaSigASN1 is the DER signature container: SEQUENCE { r, s }.
type dsaSigASN1 struct {
	R, S *big.Int
}

// NewDSAPublicKey builds a public-only DSA handle from raw big-endian
// parameters. The fields are installed in the order p, q, g, public-value;
// a decode failure releases the partially built object and reports which
// field was rejected. The result carries no private component: Sign fails
// on it, Verify works if the parameters are mathematically consistent.
func NewDSAPublicKey(p, q, g, pub []byte) (*DSA, error) {
	obj := native.DefaultRegistry.Alloc(native.AlgDSA)
	key := new(dsa.PublicKey)

	fields := []struct {
		name string
		slot **big.Int
		raw  []byte
	}{
		{"p", &key.P, p},
		{"q", &key.Q, q},
		{"g", &key.G, g},
		{"pub_key", &key.Y, pub},
	}
	for _, f := range fields {
		if err := native.SetBigField(f.slot, f.name, f.raw); err != nil {
			_ = obj.Release()
			return nil, fmt.Errorf("%w: %v", ErrParameter, err)
		}
	}

	obj.Public = key
	return &DSA{obj: obj, owns: true, valid: true}, nil
}

// GenerateDSA generates a fresh DSA key pair with the given parameter sizes.
func GenerateDSA(sizes dsa.ParameterSizes) (*DSA, error) {
	priv := new(dsa.PrivateKey)
	if err := dsa.GenerateParameters(&priv.Parameters, rand.Reader, sizes); err != nil {
		return nil, fmt.Errorf("generate DSA parameters: %w", err)
	}
	if err := dsa.GenerateKey(priv, rand.Reader); err != nil {
		return nil, fmt.Errorf("generate DSA key: %w", err)
	}

	obj := native.DefaultRegistry.Alloc(native.AlgDSA)
	obj.Private = priv
	obj.Public = &priv.PublicKey
	return &DSA{obj: obj, owns: true, valid: true}, nil
}

// Params returns the raw big-endian parameter set (p, q, g, public-value)
// of the handle, in the encoding NewDSAPublicKey accepts.
func (k *DSA) Params() (p, q, g, pub []byte, err error) {
	key, err := k.publicKey()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if p, err = native.EncodeBig(key.P); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: p: %v", ErrInvalidKey, err)
	}
	if q, err = native.EncodeBig(key.Q); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: q: %v", ErrInvalidKey, err)
	}
	if g, err = native.EncodeBig(key.G); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: g: %v", ErrInvalidKey, err)
	}
	if pub, err = native.EncodeBig(key.Y); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: pub_key: %v", ErrInvalidKey, err)
	}
	return p, q, g, pub, nil
}

// Sign signs a digest and returns the DER-encoded signature. It fails with
// ErrInvalidKey when the handle holds no private component.
func (k *DSA) Sign(digest []byte) ([]byte, error) {
	if !k.usable() {
		return nil, fmt.Errorf("%w: handle is closed or empty", ErrInvalidKey)
	}
	priv, ok := k.obj.Private.(*dsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: no private component", ErrInvalidKey)
	}
	r, s, err := dsa.Sign(rand.Reader, priv, digest)
	if err != nil {
		return nil, fmt.Errorf("DSA sign: %w", err)
	}
	return asn1.Marshal(dsaSigASN1{R: r, S: s})
}

// Verify checks a DER-encoded signature over a digest.
func (k *DSA) Verify(digest, sig []byte) bool {
	key, err := k.publicKey()
	if err != nil {
		return false
	}
	var decoded dsaSigASN1
	if rest, err := asn1.Unmarshal(sig, &decoded); err != nil || len(rest) != 0 {
		return false
	}
	return dsa.Verify(key, digest, decoded.R, decoded.S)
}

// HasPrivate reports whether the handle carries private material.
func (k *DSA) HasPrivate() bool {
	if !k.usable() {
		return false
	}
	_, ok := k.obj.Private.(*dsa.PrivateKey)
	return ok
}

// Close releases the underlying object if this handle owns it. Further
// calls are no-ops; the provider object itself is released at most once.
func (k *DSA) Close() error {
	if k.closed {
		return nil
	}
	k.closed = true
	k.valid = false
	if !k.owns {
		return nil
	}
	return k.obj.Release()
}

func (k *DSA) usable() bool {
	return k.valid && !k.closed && !k.obj.Released()
}

func (k *DSA) publicKey() (*dsa.PublicKey, error) {
	if !k.usable() {
		return nil, fmt.Errorf("%w: handle is closed or empty", ErrInvalidKey)
	}
	key, ok := k.obj.Public.(*dsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: no public component", ErrInvalidKey)
	}
	return key, nil
}
