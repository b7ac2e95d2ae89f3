// Package envelope wraps payloads in COSE_Sign1 messages signed with a
// key handle. Only algorithms with a registered COSE identifier are
// accepted; DSA and Ed448 keys have none and are rejected up front.
package envelope

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"fmt"

	gocose "github.com/veraison/go-cose"

	"github.com/keyfoundry/keybind/pkg/pkey"
)

// Algorithm picks the COSE algorithm identifier for a handle's key type.
func Algorithm(key *pkey.PKey) (gocose.Algorithm, error) {
	switch pub := key.Public().(type) {
	case *ecdsa.PublicKey:
		switch pub.Curve {
		case elliptic.P256():
			return gocose.AlgorithmES256, nil
		case elliptic.P384():
			return gocose.AlgorithmES384, nil
		case elliptic.P521():
			return gocose.AlgorithmES512, nil
		}
		return 0, fmt.Errorf("no COSE algorithm for curve %s", pub.Curve.Params().Name)

	case ed25519.PublicKey:
		return gocose.AlgorithmEdDSA, nil

	case *rsa.PublicKey:
		return gocose.AlgorithmPS256, nil

	case nil:
		return 0, fmt.Errorf("handle has no public key")

	default:
		return 0, fmt.Errorf("no COSE algorithm for key type %T", pub)
	}
}

// Sign builds a COSE_Sign1 message over payload. contentType is placed in
// the protected header when non-empty.
func Sign(key *pkey.PKey, contentType string, payload []byte) ([]byte, error) {
	if !key.HasPrivate() {
		return nil, fmt.Errorf("signing requires a private key")
	}
	alg, err := Algorithm(key)
	if err != nil {
		return nil, err
	}
	signer, err := gocose.NewSigner(alg, key)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}

	protected := gocose.ProtectedHeader{
		gocose.HeaderLabelAlgorithm: alg,
	}
	if contentType != "" {
		protected[gocose.HeaderLabelContentType] = contentType
	}

	msg := gocose.NewSign1Message()
	msg.Headers = gocose.Headers{Protected: protected}
	msg.Payload = payload

	if err := msg.Sign(rand.Reader, nil, signer); err != nil {
		return nil, fmt.Errorf("sign message: %w", err)
	}
	return msg.MarshalCBOR()
}

// Verify checks a COSE_Sign1 message against the handle's public key and
// returns the embedded payload.
func Verify(key *pkey.PKey, message []byte) ([]byte, error) {
	alg, err := Algorithm(key)
	if err != nil {
		return nil, err
	}
	verifier, err := gocose.NewVerifier(alg, key.Public())
	if err != nil {
		return nil, fmt.Errorf("create verifier: %w", err)
	}

	var msg gocose.Sign1Message
	if err := msg.UnmarshalCBOR(message); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	if err := msg.Verify(nil, verifier); err != nil {
		return nil, fmt.Errorf("verify message: %w", err)
	}
	return msg.Payload, nil
}
