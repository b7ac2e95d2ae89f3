package native

import (
	"crypto"
	"crypto/dsa" //nolint:staticcheck // DSA key support is part of the provider surface
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"fmt"
	"math/big"

	"github.com/cloudflare/circl/sign/ed448"
)

// PEM block types for keys the standard library has no container format for.
const (
	pemTypeEd448Private = "ED448 PRIVATE KEY"
	pemTypeEd448Public  = "ED448 PUBLIC KEY"
	pemTypeDSAPrivate   = "DSA PRIVATE KEY"
)

// dsaPrivASN1 is the traditional DSA private key structure:
// SEQUENCE { version, p, q, g, y, x }.
type dsaPrivASN1 struct {
	Version int
	P, Q, G *big.Int
	Y, X    *big.Int
}

// dsaParamsASN1 is the parameter block inside a DSA SubjectPublicKeyInfo.
type dsaParamsASN1 struct {
	P, Q, G *big.Int
}

var oidPublicKeyDSA = asn1.ObjectIdentifier{1, 2, 840, 10040, 4, 1}

// ParseKey reads a full key pair out of a PEM buffer. An encrypted block
// asks cb for the secret, at most once, with confirm = false. On failure no
// object is allocated; on success the caller owns the returned object.
func ParseKey(data []byte, cb PassphraseFunc) (*Object, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	keyBytes := block.Bytes
	if x509.IsEncryptedPEMBlock(block) { //nolint:staticcheck
		if cb == nil {
			return nil, fmt.Errorf("key is encrypted but no passphrase callback was supplied")
		}
		passphrase, err := cb(false)
		if err != nil {
			return nil, fmt.Errorf("passphrase callback: %w", err)
		}
		keyBytes, err = x509.DecryptPEMBlock(block, passphrase) //nolint:staticcheck
		if err != nil {
			return nil, fmt.Errorf("decrypt key: %w", err)
		}
	}

	var priv crypto.PrivateKey
	var err error

	switch block.Type {
	case "PRIVATE KEY":
		priv, err = x509.ParsePKCS8PrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("parse PKCS#8 key: %w", err)
		}

	case "EC PRIVATE KEY":
		priv, err = x509.ParseECPrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("parse EC key: %w", err)
		}

	case "RSA PRIVATE KEY":
		priv, err = x509.ParsePKCS1PrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("parse RSA key: %w", err)
		}

	case pemTypeDSAPrivate:
		priv, err = parseDSAPrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("parse DSA key: %w", err)
		}

	case pemTypeEd448Private:
		if len(keyBytes) != ed448.PrivateKeySize {
			return nil, fmt.Errorf("parse Ed448 key: %d bytes, want %d", len(keyBytes), ed448.PrivateKeySize)
		}
		priv = ed448.PrivateKey(keyBytes)

	default:
		return nil, fmt.Errorf("unknown PEM type: %s", block.Type)
	}

	alg, pub := keyInfo(priv)
	if alg == AlgUnknown {
		return nil, fmt.Errorf("unsupported private key type: %T", priv)
	}

	obj := DefaultRegistry.Alloc(alg)
	obj.Private = priv
	obj.Public = pub
	return obj, nil
}

// ParsePublicKey reads a public-key-only structure out of a PEM buffer.
// The passphrase callback is accepted for interface symmetry with ParseKey;
// public keys are never encrypted, so it is ignored.
func ParsePublicKey(data []byte, cb PassphraseFunc) (*Object, error) {
	_ = cb

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	var pub crypto.PublicKey
	var err error

	switch block.Type {
	case "PUBLIC KEY":
		pub, err = x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}

	case pemTypeEd448Public:
		if len(block.Bytes) != ed448.PublicKeySize {
			return nil, fmt.Errorf("parse Ed448 public key: %d bytes, want %d", len(block.Bytes), ed448.PublicKeySize)
		}
		pub = ed448.PublicKey(block.Bytes)

	default:
		return nil, fmt.Errorf("unknown PEM type: %s", block.Type)
	}

	alg := publicKeyAlgorithm(pub)
	if alg == AlgUnknown {
		return nil, fmt.Errorf("unsupported public key type: %T", pub)
	}

	obj := DefaultRegistry.Alloc(alg)
	obj.Public = pub
	return obj, nil
}

// MarshalPrivateKey serializes an object's private key to PEM. A non-empty
// passphrase encrypts the block; cb with confirm = true is consulted when
// the passphrase should come from the callback instead.
func MarshalPrivateKey(obj *Object, passphrase []byte, cb PassphraseFunc) ([]byte, error) {
	if obj == nil || obj.Private == nil {
		return nil, fmt.Errorf("no private key material")
	}

	if len(passphrase) == 0 && cb != nil {
		p, err := cb(true)
		if err != nil {
			return nil, fmt.Errorf("passphrase callback: %w", err)
		}
		passphrase = p
	}

	var block *pem.Block
	switch priv := obj.Private.(type) {
	case *ecdsa.PrivateKey, ed25519.PrivateKey, *rsa.PrivateKey:
		der, err := x509.MarshalPKCS8PrivateKey(obj.Private)
		if err != nil {
			return nil, fmt.Errorf("marshal private key: %w", err)
		}
		block = &pem.Block{Type: "PRIVATE KEY", Bytes: der}

	case *dsa.PrivateKey:
		der, err := asn1.Marshal(dsaPrivASN1{
			Version: 0,
			P:       priv.P, Q: priv.Q, G: priv.G,
			Y: priv.Y, X: priv.X,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal DSA key: %w", err)
		}
		block = &pem.Block{Type: pemTypeDSAPrivate, Bytes: der}

	case ed448.PrivateKey:
		block = &pem.Block{Type: pemTypeEd448Private, Bytes: priv}

	default:
		return nil, fmt.Errorf("unsupported private key type: %T", obj.Private)
	}

	if len(passphrase) > 0 {
		var err error
		block, err = x509.EncryptPEMBlock(rand.Reader, block.Type, block.Bytes, passphrase, x509.PEMCipherAES256) //nolint:staticcheck
		if err != nil {
			return nil, fmt.Errorf("encrypt private key: %w", err)
		}
	}

	return pem.EncodeToMemory(block), nil
}

// MarshalPublicKey serializes an object's public key to PEM in the same
// containers ParsePublicKey reads, so the two round-trip.
func MarshalPublicKey(obj *Object) ([]byte, error) {
	if obj == nil || obj.Public == nil {
		return nil, fmt.Errorf("no public key material")
	}

	switch pub := obj.Public.(type) {
	case *ecdsa.PublicKey, ed25519.PublicKey, *rsa.PublicKey:
		der, err := x509.MarshalPKIXPublicKey(obj.Public)
		if err != nil {
			return nil, fmt.Errorf("marshal public key: %w", err)
		}
		return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil

	case *dsa.PublicKey:
		der, err := marshalDSAPublicKey(pub)
		if err != nil {
			return nil, fmt.Errorf("marshal DSA public key: %w", err)
		}
		return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil

	case ed448.PublicKey:
		return pem.EncodeToMemory(&pem.Block{Type: pemTypeEd448Public, Bytes: pub}), nil

	default:
		return nil, fmt.Errorf("unsupported public key type: %T", obj.Public)
	}
}

// ImportPrivateKey wraps an already-parsed private key in a fresh object,
// deriving the public half. The caller owns the returned object.
func ImportPrivateKey(priv crypto.PrivateKey) (*Object, error) {
	alg, pub := keyInfo(priv)
	if alg == AlgUnknown {
		return nil, fmt.Errorf("unsupported private key type: %T", priv)
	}
	obj := DefaultRegistry.Alloc(alg)
	obj.Private = priv
	obj.Public = pub
	return obj, nil
}

// ImportPublicKey wraps an already-parsed public key in a fresh object.
func ImportPublicKey(pub crypto.PublicKey) (*Object, error) {
	alg := publicKeyAlgorithm(pub)
	if alg == AlgUnknown {
		return nil, fmt.Errorf("unsupported public key type: %T", pub)
	}
	obj := DefaultRegistry.Alloc(alg)
	obj.Public = pub
	return obj, nil
}

// parseDSAPrivateKey parses the traditional DSA private key structure.
func parseDSAPrivateKey(der []byte) (*dsa.PrivateKey, error) {
	var k dsaPrivASN1
	rest, err := asn1.Unmarshal(der, &k)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("trailing data after DSA key")
	}
	if k.Version != 0 {
		return nil, fmt.Errorf("unsupported DSA key version %d", k.Version)
	}
	return &dsa.PrivateKey{
		PublicKey: dsa.PublicKey{
			Parameters: dsa.Parameters{P: k.P, Q: k.Q, G: k.G},
			Y:          k.Y,
		},
		X: k.X,
	}, nil
}

// marshalDSAPublicKey builds a DSA SubjectPublicKeyInfo. The standard
// library parses this form but does not write it.
func marshalDSAPublicKey(pub *dsa.PublicKey) ([]byte, error) {
	params, err := asn1.Marshal(dsaParamsASN1{P: pub.P, Q: pub.Q, G: pub.G})
	if err != nil {
		return nil, err
	}
	y, err := asn1.Marshal(pub.Y)
	if err != nil {
		return nil, err
	}
	return asn1.Marshal(struct {
		Algo pkix.AlgorithmIdentifier
		Key  asn1.BitString
	}{
		Algo: pkix.AlgorithmIdentifier{
			Algorithm:  oidPublicKeyDSA,
			Parameters: asn1.RawValue{FullBytes: params},
		},
		Key: asn1.BitString{Bytes: y, BitLength: len(y) * 8},
	})
}

// keyInfo returns the algorithm tag and public half of a private key.
func keyInfo(priv crypto.PrivateKey) (KeyAlgorithm, crypto.PublicKey) {
	switch k := priv.(type) {
	case *ecdsa.PrivateKey:
		return AlgEC, &k.PublicKey
	case ed25519.PrivateKey:
		return AlgEd25519, k.Public()
	case *rsa.PrivateKey:
		return AlgRSA, &k.PublicKey
	case *dsa.PrivateKey:
		return AlgDSA, &k.PublicKey
	case ed448.PrivateKey:
		return AlgEd448, k.Public()
	}
	return AlgUnknown, nil
}

// publicKeyAlgorithm returns the algorithm tag of a public key.
func publicKeyAlgorithm(pub crypto.PublicKey) KeyAlgorithm {
	switch pub.(type) {
	case *ecdsa.PublicKey:
		return AlgEC
	case ed25519.PublicKey:
		return AlgEd25519
	case *rsa.PublicKey:
		return AlgRSA
	case *dsa.PublicKey:
		return AlgDSA
	case ed448.PublicKey:
		return AlgEd448
	}
	return AlgUnknown
}
