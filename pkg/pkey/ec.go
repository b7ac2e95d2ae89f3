package pkey

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"

	"github.com/keyfoundry/keybind/internal/native"
)

// EC is a handle to an elliptic-curve key object.
type EC struct {
	obj    *native.Object
	owns   bool
	valid  bool
	closed bool
}

// NewECPublicKey builds a public-only EC handle from a named curve and a
// public-key octet string. Point-format validation is whatever the provider
// decode accepts: uncompressed first, compressed as fallback.
func NewECPublicKey(curveName string, octets []byte) (*EC, error) {
	curve, ok := native.CurveByName(curveName)
	if !ok {
		return nil, fmt.Errorf("%w: unknown curve %q", ErrParameter, curveName)
	}

	obj := native.DefaultRegistry.Alloc(native.AlgEC)
	x, y, err := native.DecodePoint(curve, octets)
	if err != nil {
		_ = obj.Release()
		return nil, fmt.Errorf("%w: %v", ErrParameter, err)
	}

	obj.Public = &ecdsa.PublicKey{Curve: curve, X: x, Y: y}
	return &EC{obj: obj, owns: true, valid: true}, nil
}

// GenerateEC generates a fresh key pair on the named curve.
func GenerateEC(curveName string) (*EC, error) {
	curve, ok := native.CurveByName(curveName)
	if !ok {
		return nil, fmt.Errorf("%w: unknown curve %q", ErrParameter, curveName)
	}
	priv, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate EC key: %w", err)
	}

	obj := native.DefaultRegistry.Alloc(native.AlgEC)
	obj.Private = priv
	obj.Public = &priv.PublicKey
	return &EC{obj: obj, owns: true, valid: true}, nil
}

// PublicOctets serializes the public-key field to the octet string the
// construction path accepts, so NewECPublicKey(Curve(), PublicOctets())
// reconstructs an equivalent public key.
func (k *EC) PublicOctets() ([]byte, error) {
	key, err := k.publicKey()
	if err != nil {
		return nil, err
	}
	out, err := native.EncodePoint(key.Curve, key.X, key.Y)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return out, nil
}

// Curve returns the canonical name of the handle's curve, or "" when the
// handle is not usable.
func (k *EC) Curve() string {
	key, err := k.publicKey()
	if err != nil {
		return ""
	}
	return key.Curve.Params().Name
}

// Sign signs a digest and returns the ASN.1 DER signature. It fails with
// ErrInvalidKey when the handle holds no private component.
func (k *EC) Sign(digest []byte) ([]byte, error) {
	if !k.usable() {
		return nil, fmt.Errorf("%w: handle is closed or empty", ErrInvalidKey)
	}
	priv, ok := k.obj.Private.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: no private component", ErrInvalidKey)
	}
	sig, err := ecdsa.SignASN1(rand.Reader, priv, digest)
	if err != nil {
		return nil, fmt.Errorf("EC sign: %w", err)
	}
	return sig, nil
}

// Verify checks an ASN.1 DER signature over a digest.
func (k *EC) Verify(digest, sig []byte) bool {
	key, err := k.publicKey()
	if err != nil {
		return false
	}
	return ecdsa.VerifyASN1(key, digest, sig)
}

// HasPrivate reports whether the handle carries private material.
func (k *EC) HasPrivate() bool {
	if !k.usable() {
		return false
	}
	_, ok := k.obj.Private.(*ecdsa.PrivateKey)
	return ok
}

// Close releases the underlying object if this handle owns it.
func (k *EC) Close() error {
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

func (k *EC) usable() bool {
	return k.valid && !k.closed && !k.obj.Released()
}

func (k *EC) publicKey() (*ecdsa.PublicKey, error) {
	if !k.usable() {
		return nil, fmt.Errorf("%w: handle is closed or empty", ErrInvalidKey)
	}
	key, ok := k.obj.Public.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: no public component", ErrInvalidKey)
	}
	return key, nil
}
