package pkey

import (
	"crypto"
	"crypto/dsa" //nolint:staticcheck // DSA key objects are part of the public surface
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/asn1"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/ed448"

	"github.com/keyfoundry/keybind/internal/native"
)

// PKey is the generic key handle. It either owns a provider object of its
// own (loaded or generated keys) or borrows the object of an
// algorithm-specific handle; a borrowing PKey never releases the object,
// that responsibility stays with the wrapped handle.
type PKey struct {
	obj    *native.Object
	owns   bool
	closed bool
}

var _ crypto.Signer = (*PKey)(nil)

// WrapDSA returns a generic view of a DSA handle. The PKey borrows the
// underlying object; closing it does not release anything.
func WrapDSA(k *DSA) (*PKey, error) {
	if !k.usable() {
		return nil, fmt.Errorf("%w: cannot wrap a closed or empty handle", ErrInvalidKey)
	}
	return &PKey{obj: k.obj, owns: false}, nil
}

// WrapEC returns a generic view of an EC handle, borrowing its object.
func WrapEC(k *EC) (*PKey, error) {
	if !k.usable() {
		return nil, fmt.Errorf("%w: cannot wrap a closed or empty handle", ErrInvalidKey)
	}
	return &PKey{obj: k.obj, owns: false}, nil
}

// FromPublicKey wraps an already-parsed public key in an owning handle.
// Supported types are the ones the PEM loader produces.
func FromPublicKey(pub crypto.PublicKey) (*PKey, error) {
	obj, err := native.ImportPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &PKey{obj: obj, owns: true}, nil
}

// Algorithm returns the algorithm family of the wrapped object.
func (p *PKey) Algorithm() native.KeyAlgorithm {
	if !p.usable() {
		return native.AlgUnknown
	}
	return p.obj.Algorithm
}

// Public returns the public key, satisfying crypto.Signer.
func (p *PKey) Public() crypto.PublicKey {
	if !p.usable() {
		return nil
	}
	return p.obj.Public
}

// HasPrivate reports whether the handle carries private material.
func (p *PKey) HasPrivate() bool {
	return p.usable() && p.obj.Private != nil
}

// Sign signs digest with the wrapped private key. For Ed25519 and Ed448
// the input is the full message, as those algorithms hash internally. A
// handle without private material fails with ErrInvalidKey rather than
// producing an unusable signature.
func (p *PKey) Sign(random io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	if !p.usable() {
		return nil, fmt.Errorf("%w: handle is closed or empty", ErrInvalidKey)
	}
	if p.obj.Private == nil {
		return nil, fmt.Errorf("%w: no private component", ErrInvalidKey)
	}

	switch priv := p.obj.Private.(type) {
	case *ecdsa.PrivateKey:
		return ecdsa.SignASN1(random, priv, digest)

	case ed25519.PrivateKey:
		return ed25519.Sign(priv, digest), nil

	case ed448.PrivateKey:
		return ed448.Sign(priv, digest, ""), nil

	case *dsa.PrivateKey:
		r, s, err := dsa.Sign(random, priv, digest)
		if err != nil {
			return nil, fmt.Errorf("DSA sign: %w", err)
		}
		return asn1.Marshal(dsaSigASN1{R: r, S: s})

	case *rsa.PrivateKey:
		// PSS callers (COSE PS256) hand their options through SignerOpts
		if pssOpts, ok := opts.(*rsa.PSSOptions); ok {
			return rsa.SignPSS(random, priv, pssOpts.Hash, digest, pssOpts)
		}
		hash := crypto.SHA256
		if opts != nil {
			hash = opts.HashFunc()
		}
		return rsa.SignPKCS1v15(random, priv, hash, digest)

	default:
		return nil, fmt.Errorf("unsupported private key type: %T", priv)
	}
}

// Verify checks a signature over digest with the wrapped public key. For
// RSA the digest must be a SHA-256 hash.
func (p *PKey) Verify(digest, sig []byte) bool {
	if !p.usable() || p.obj.Public == nil {
		return false
	}

	switch pub := p.obj.Public.(type) {
	case *ecdsa.PublicKey:
		return ecdsa.VerifyASN1(pub, digest, sig)

	case ed25519.PublicKey:
		return ed25519.Verify(pub, digest, sig)

	case ed448.PublicKey:
		return ed448.Verify(pub, digest, sig, "")

	case *dsa.PublicKey:
		var decoded dsaSigASN1
		if rest, err := asn1.Unmarshal(sig, &decoded); err != nil || len(rest) != 0 {
			return false
		}
		return dsa.Verify(pub, digest, decoded.R, decoded.S)

	case *rsa.PublicKey:
		return rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest, sig) == nil

	default:
		return false
	}
}

// PublicPEM serializes the public half in the PEM container LoadPublicKey
// reads back.
func (p *PKey) PublicPEM() ([]byte, error) {
	if !p.usable() {
		return nil, fmt.Errorf("%w: handle is closed or empty", ErrInvalidKey)
	}
	out, err := native.MarshalPublicKey(p.obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return out, nil
}

// PrivatePEM serializes the private key to PEM. A non-empty passphrase
// encrypts the block; otherwise cb, when non-nil, is asked once with
// confirm = true.
func (p *PKey) PrivatePEM(passphrase []byte, cb PassphraseFunc) ([]byte, error) {
	if !p.usable() {
		return nil, fmt.Errorf("%w: handle is closed or empty", ErrInvalidKey)
	}
	out, err := native.MarshalPrivateKey(p.obj, passphrase, native.PassphraseFunc(cb))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return out, nil
}

// Close releases the underlying object when this handle owns it; a
// borrowing handle only detaches.
func (p *PKey) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if !p.owns {
		return nil
	}
	return p.obj.Release()
}

func (p *PKey) usable() bool {
	return !p.closed && p.obj != nil && !p.obj.Released()
}
