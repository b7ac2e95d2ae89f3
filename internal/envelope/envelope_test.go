package envelope

import (
	"bytes"
	"testing"

	gocose "github.com/veraison/go-cose"

	"github.com/keyfoundry/keybind/pkg/pkey"
)

func TestU_Envelope_SignVerify(t *testing.T) {
	tests := []struct {
		name      string
		algorithm string
		want      gocose.Algorithm
	}{
		{"[Unit] envelope: P-256 -> ES256", "P-256", gocose.AlgorithmES256},
		{"[Unit] envelope: P-384 -> ES384", "P-384", gocose.AlgorithmES384},
		{"[Unit] envelope: P-521 -> ES512", "P-521", gocose.AlgorithmES512},
		{"[Unit] envelope: ed25519 -> EdDSA", "ed25519", gocose.AlgorithmEdDSA},
		{"[Unit] envelope: rsa-2048 -> PS256", "rsa-2048", gocose.AlgorithmPS256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := pkey.Generate(tt.algorithm)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			defer func() { _ = key.Close() }()

			alg, err := Algorithm(key)
			if err != nil {
				t.Fatalf("Algorithm: %v", err)
			}
			if alg != tt.want {
				t.Errorf("Algorithm = %v, want %v", alg, tt.want)
			}

			payload := []byte(`{"sub":"test"}`)
			msg, err := Sign(key, "application/json", payload)
			if err != nil {
				t.Fatalf("Sign: %v", err)
			}

			got, err := Verify(key, msg)
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Errorf("payload = %q, want %q", got, payload)
			}
		})
	}
}

func TestU_Envelope_TamperDetected(t *testing.T) {
	key, err := pkey.Generate("P-256")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	defer func() { _ = key.Close() }()

	msg, err := Sign(key, "", []byte("original payload"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	// Flip a byte somewhere in the encoded message
	tampered := append([]byte(nil), msg...)
	tampered[len(tampered)/2] ^= 0x01
	if _, err := Verify(key, tampered); err == nil {
		t.Error("tampered message verified")
	}

	// A different key must not verify the original
	other, err := pkey.Generate("P-256")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	defer func() { _ = other.Close() }()
	if _, err := Verify(other, msg); err == nil {
		t.Error("message verified under the wrong key")
	}
}

func TestU_Envelope_UnsupportedAlgorithms(t *testing.T) {
	ed448Key, err := pkey.Generate("ed448")
	if err != nil {
		t.Fatalf("Generate(ed448): %v", err)
	}
	defer func() { _ = ed448Key.Close() }()
	if _, err := Algorithm(ed448Key); err == nil {
		t.Error("Ed448 mapped to a COSE algorithm")
	}
	if _, err := Sign(ed448Key, "", []byte("x")); err == nil {
		t.Error("Sign accepted an Ed448 key")
	}
}

func TestU_Envelope_SignRequiresPrivate(t *testing.T) {
	key, err := pkey.Generate("P-256")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	defer func() { _ = key.Close() }()

	pem, err := key.PublicPEM()
	if err != nil {
		t.Fatalf("PublicPEM: %v", err)
	}
	pub, err := pkey.LoadPublicKey(pem, nil)
	if err != nil {
		t.Fatalf("LoadPublicKey: %v", err)
	}
	defer func() { _ = pub.Close() }()

	if _, err := Sign(pub, "", []byte("x")); err == nil {
		t.Error("Sign accepted a public-only handle")
	}

	// But the public-only handle verifies fine
	msg, err := Sign(key, "", []byte("payload"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := Verify(pub, msg); err != nil {
		t.Errorf("Verify with public-only handle: %v", err)
	}
}
