package native

import (
	"bytes"
	"crypto/dsa" //nolint:staticcheck
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/cloudflare/circl/sign/ed448"
)

func mustECKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate EC key: %v", err)
	}
	return priv
}

func mustDSAKey(t *testing.T) *dsa.PrivateKey {
	t.Helper()
	var params dsa.Parameters
	if err := dsa.GenerateParameters(&params, rand.Reader, dsa.L1024N160); err != nil {
		t.Fatalf("generate DSA parameters: %v", err)
	}
	priv := &dsa.PrivateKey{PublicKey: dsa.PublicKey{Parameters: params}}
	if err := dsa.GenerateKey(priv, rand.Reader); err != nil {
		t.Fatalf("generate DSA key: %v", err)
	}
	return priv
}

func TestU_PEM_RoundTrip(t *testing.T) {
	ecKey := mustECKey(t)
	_, edKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate Ed25519 key: %v", err)
	}
	_, ed448Key, err := ed448.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate Ed448 key: %v", err)
	}

	tests := []struct {
		name string
		priv any
		alg  KeyAlgorithm
	}{
		{"[Unit] PEM: ECDSA P-256", ecKey, AlgEC},
		{"[Unit] PEM: Ed25519", edKey, AlgEd25519},
		{"[Unit] PEM: Ed448", ed448Key, AlgEd448},
		{"[Unit] PEM: DSA", mustDSAKey(t), AlgDSA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := ImportPrivateKey(tt.priv)
			if err != nil {
				t.Fatalf("ImportPrivateKey: %v", err)
			}
			defer func() { _ = src.Release() }()

			pemData, err := MarshalPrivateKey(src, nil, nil)
			if err != nil {
				t.Fatalf("MarshalPrivateKey: %v", err)
			}

			obj, err := ParseKey(pemData, nil)
			if err != nil {
				t.Fatalf("ParseKey: %v", err)
			}
			defer func() { _ = obj.Release() }()

			if obj.Algorithm != tt.alg {
				t.Errorf("algorithm = %s, want %s", obj.Algorithm, tt.alg)
			}
			if obj.Private == nil || obj.Public == nil {
				t.Error("parsed object missing key material")
			}
		})
	}
}

func TestU_PEM_PublicRoundTrip(t *testing.T) {
	ecKey := mustECKey(t)
	dsaKey := mustDSAKey(t)

	tests := []struct {
		name string
		pub  any
		alg  KeyAlgorithm
	}{
		{"[Unit] PEM public: ECDSA", &ecKey.PublicKey, AlgEC},
		{"[Unit] PEM public: DSA", &dsaKey.PublicKey, AlgDSA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := ImportPublicKey(tt.pub)
			if err != nil {
				t.Fatalf("ImportPublicKey: %v", err)
			}
			defer func() { _ = src.Release() }()

			pemData, err := MarshalPublicKey(src)
			if err != nil {
				t.Fatalf("MarshalPublicKey: %v", err)
			}

			obj, err := ParsePublicKey(pemData, nil)
			if err != nil {
				t.Fatalf("ParsePublicKey: %v", err)
			}
			defer func() { _ = obj.Release() }()

			if obj.Algorithm != tt.alg {
				t.Errorf("algorithm = %s, want %s", obj.Algorithm, tt.alg)
			}
			if obj.Private != nil {
				t.Error("public-only parse produced private material")
			}
		})
	}
}

// The DSA public SPKI marshaller must produce bytes the parser reads back
// to the same key.
func TestU_PEM_DSAPublicValues(t *testing.T) {
	dsaKey := mustDSAKey(t)

	src, err := ImportPublicKey(&dsaKey.PublicKey)
	if err != nil {
		t.Fatalf("ImportPublicKey: %v", err)
	}
	defer func() { _ = src.Release() }()

	pemData, err := MarshalPublicKey(src)
	if err != nil {
		t.Fatalf("MarshalPublicKey: %v", err)
	}
	obj, err := ParsePublicKey(pemData, nil)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	defer func() { _ = obj.Release() }()

	got, ok := obj.Public.(*dsa.PublicKey)
	if !ok {
		t.Fatalf("parsed type %T, want *dsa.PublicKey", obj.Public)
	}
	if got.P.Cmp(dsaKey.P) != 0 || got.Q.Cmp(dsaKey.Q) != 0 ||
		got.G.Cmp(dsaKey.G) != 0 || got.Y.Cmp(dsaKey.Y) != 0 {
		t.Error("DSA public key values changed across the round trip")
	}
}

func TestU_PEM_EncryptedKey(t *testing.T) {
	ecKey := mustECKey(t)
	src, err := ImportPrivateKey(ecKey)
	if err != nil {
		t.Fatalf("ImportPrivateKey: %v", err)
	}
	defer func() { _ = src.Release() }()

	passphrase := []byte("correct horse")
	pemData, err := MarshalPrivateKey(src, passphrase, nil)
	if err != nil {
		t.Fatalf("MarshalPrivateKey: %v", err)
	}
	if bytes.Contains(pemData, []byte("EC PRIVATE KEY")) && !bytes.Contains(pemData, []byte("ENCRYPTED")) {
		t.Error("encrypted PEM has no encryption headers")
	}

	calls := 0
	cb := func(confirm bool) ([]byte, error) {
		calls++
		if confirm {
			t.Error("decrypt callback called with confirm = true")
		}
		return passphrase, nil
	}

	obj, err := ParseKey(pemData, cb)
	if err != nil {
		t.Fatalf("ParseKey (encrypted): %v", err)
	}
	defer func() { _ = obj.Release() }()

	if calls != 1 {
		t.Errorf("passphrase callback called %d times, want exactly 1", calls)
	}
}

func TestU_PEM_EncryptedKeyNoCallback(t *testing.T) {
	ecKey := mustECKey(t)
	src, err := ImportPrivateKey(ecKey)
	if err != nil {
		t.Fatalf("ImportPrivateKey: %v", err)
	}
	defer func() { _ = src.Release() }()

	pemData, err := MarshalPrivateKey(src, []byte("secret"), nil)
	if err != nil {
		t.Fatalf("MarshalPrivateKey: %v", err)
	}

	if _, err := ParseKey(pemData, nil); err == nil {
		t.Error("ParseKey on encrypted PEM without callback succeeded")
	}
}

// MarshalPrivateKey consults the callback with confirm = true when no
// passphrase is supplied directly.
func TestU_PEM_MarshalConfirmCallback(t *testing.T) {
	ecKey := mustECKey(t)
	src, err := ImportPrivateKey(ecKey)
	if err != nil {
		t.Fatalf("ImportPrivateKey: %v", err)
	}
	defer func() { _ = src.Release() }()

	calls := 0
	cb := func(confirm bool) ([]byte, error) {
		calls++
		if !confirm {
			t.Error("marshal callback called with confirm = false")
		}
		return []byte("from-callback"), nil
	}

	pemData, err := MarshalPrivateKey(src, nil, cb)
	if err != nil {
		t.Fatalf("MarshalPrivateKey: %v", err)
	}
	if calls != 1 {
		t.Errorf("callback called %d times, want exactly 1", calls)
	}

	// The output must decrypt with the callback-provided secret
	obj, err := ParseKey(pemData, func(bool) ([]byte, error) {
		return []byte("from-callback"), nil
	})
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	_ = obj.Release()
}

func TestU_PEM_ParseGarbage(t *testing.T) {
	if _, err := ParseKey([]byte("not a pem block"), nil); err == nil {
		t.Error("ParseKey accepted garbage")
	}
	if _, err := ParsePublicKey([]byte("not a pem block"), nil); err == nil {
		t.Error("ParsePublicKey accepted garbage")
	}
}

// ParsePublicKey takes the callback for symmetry but never invokes it.
func TestU_PEM_PublicCallbackUnused(t *testing.T) {
	ecKey := mustECKey(t)
	src, err := ImportPublicKey(&ecKey.PublicKey)
	if err != nil {
		t.Fatalf("ImportPublicKey: %v", err)
	}
	defer func() { _ = src.Release() }()

	pemData, err := MarshalPublicKey(src)
	if err != nil {
		t.Fatalf("MarshalPublicKey: %v", err)
	}

	called := false
	obj, err := ParsePublicKey(pemData, func(bool) ([]byte, error) {
		called = true
		return nil, nil
	})
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	_ = obj.Release()

	if called {
		t.Error("public key load invoked the passphrase callback")
	}
}
