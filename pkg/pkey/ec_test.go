package pkey

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"testing"

	"github.com/keyfoundry/keybind/internal/native"
)

func TestU_EC_OctetRoundTrip(t *testing.T) {
	curves := []string{"P-256", "P-384", "P-521"}

	for _, name := range curves {
		t.Run("[Unit] EC octets on "+name, func(t *testing.T) {
			src, err := GenerateEC(name)
			if err != nil {
				t.Fatalf("GenerateEC: %v", err)
			}
			defer func() { _ = src.Close() }()

			octets, err := src.PublicOctets()
			if err != nil {
				t.Fatalf("PublicOctets: %v", err)
			}
			if len(octets) == 0 || octets[0] != 0x04 {
				t.Fatalf("octets not in uncompressed form: % x...", octets[:1])
			}

			key, err := NewECPublicKey(src.Curve(), octets)
			if err != nil {
				t.Fatalf("NewECPublicKey: %v", err)
			}
			defer func() { _ = key.Close() }()

			back, err := key.PublicOctets()
			if err != nil {
				t.Fatalf("PublicOctets (rebuilt): %v", err)
			}
			if !bytes.Equal(back, octets) {
				t.Error("octet string changed across the round trip")
			}
			if key.Curve() != name {
				t.Errorf("Curve() = %q, want %q", key.Curve(), name)
			}
		})
	}
}

func TestU_EC_CompressedOctetsAccepted(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	compressed := elliptic.MarshalCompressed(elliptic.P256(), priv.X, priv.Y)

	key, err := NewECPublicKey("P-256", compressed)
	if err != nil {
		t.Fatalf("NewECPublicKey(compressed): %v", err)
	}
	defer func() { _ = key.Close() }()

	// Output is always uncompressed regardless of the input form
	octets, err := key.PublicOctets()
	if err != nil {
		t.Fatalf("PublicOctets: %v", err)
	}
	want := elliptic.Marshal(elliptic.P256(), priv.X, priv.Y) //nolint:staticcheck
	if !bytes.Equal(octets, want) {
		t.Error("compressed input did not decode to the same point")
	}
}

func TestU_EC_UnknownCurve(t *testing.T) {
	if _, err := NewECPublicKey("P-6144", []byte{0x04}); !IsParameter(err) {
		t.Errorf("unknown curve: error = %v, want ErrParameter", err)
	}
	if _, err := GenerateEC("wiggly-1"); !IsParameter(err) {
		t.Errorf("unknown curve: error = %v, want ErrParameter", err)
	}
}

func TestU_EC_BadPointReleasesObject(t *testing.T) {
	tests := []struct {
		name   string
		octets []byte
	}{
		{"[Unit] EC point: empty", nil},
		{"[Unit] EC point: bad prefix", []byte{0x07, 0x01, 0x02}},
		{"[Unit] EC point: truncated", []byte{0x04, 0x01, 0x02, 0x03}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			liveBefore := native.DefaultRegistry.Live()

			key, err := NewECPublicKey("P-256", tt.octets)
			if err == nil {
				_ = key.Close()
				t.Fatal("NewECPublicKey accepted an invalid point")
			}
			if !IsParameter(err) {
				t.Errorf("error = %v, want ErrParameter", err)
			}
			if live := native.DefaultRegistry.Live(); live != liveBefore {
				t.Errorf("live objects %d -> %d after failed construction", liveBefore, live)
			}
		})
	}
}

func TestU_EC_SignVerify(t *testing.T) {
	key, err := GenerateEC("P-256")
	if err != nil {
		t.Fatalf("GenerateEC: %v", err)
	}
	defer func() { _ = key.Close() }()

	if !key.HasPrivate() {
		t.Fatal("generated key claims no private material")
	}

	digest := sha256.Sum256([]byte("payload"))
	sig, err := key.Sign(digest[:])
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !key.Verify(digest[:], sig) {
		t.Error("valid signature rejected")
	}

	other := sha256.Sum256([]byte("other payload"))
	if key.Verify(other[:], sig) {
		t.Error("signature accepted for a different digest")
	}

	// A public-only handle rebuilt from octets still verifies
	octets, err := key.PublicOctets()
	if err != nil {
		t.Fatalf("PublicOctets: %v", err)
	}
	pub, err := NewECPublicKey("P-256", octets)
	if err != nil {
		t.Fatalf("NewECPublicKey: %v", err)
	}
	defer func() { _ = pub.Close() }()

	if pub.HasPrivate() {
		t.Error("public-only handle claims private material")
	}
	if !pub.Verify(digest[:], sig) {
		t.Error("public-only handle rejects a valid signature")
	}
	if _, err := pub.Sign(digest[:]); !IsInvalidKey(err) {
		t.Errorf("Sign on public-only handle: error = %v, want ErrInvalidKey", err)
	}
}

func TestU_EC_CloseIdempotent(t *testing.T) {
	key, err := GenerateEC("P-256")
	if err != nil {
		t.Fatalf("GenerateEC: %v", err)
	}
	if err := key.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := key.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := key.PublicOctets(); !IsInvalidKey(err) {
		t.Errorf("PublicOctets after Close: error = %v, want ErrInvalidKey", err)
	}
	if key.Curve() != "" {
		t.Errorf("Curve() after Close = %q, want empty", key.Curve())
	}
}
