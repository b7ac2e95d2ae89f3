package native

import (
	"testing"
)

func TestU_LookupDigest(t *testing.T) {
	tests := []struct {
		name   string
		lookup string
		want   string
		found  bool
	}{
		{"[Unit] Digest lookup: plain name", "sha256", "sha256", true},
		{"[Unit] Digest lookup: uppercase", "SHA256", "sha256", true},
		{"[Unit] Digest lookup: dashed", "SHA-256", "sha256", true},
		{"[Unit] Digest lookup: underscored", "sha_512", "sha512", true},
		{"[Unit] Digest lookup: sha3", "sha3-384", "sha3-384", true},
		{"[Unit] Digest lookup: blake2b", "BLAKE2b-512", "blake2b-512", true},
		{"[Unit] Digest lookup: whitespace", "  sha1  ", "sha1", true},
		{"[Unit] Digest lookup: unknown", "whirlpool", "", false},
		{"[Unit] Digest lookup: empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := LookupDigest(tt.lookup)
			if ok != tt.found {
				t.Fatalf("LookupDigest(%q) found = %v, want %v", tt.lookup, ok, tt.found)
			}
			if ok && info.Name != tt.want {
				t.Errorf("LookupDigest(%q) = %s, want %s", tt.lookup, info.Name, tt.want)
			}
		})
	}
}

func TestU_DigestTable_Consistency(t *testing.T) {
	for _, name := range DigestNames() {
		info, ok := LookupDigest(name)
		if !ok {
			t.Errorf("canonical name %q does not resolve", name)
			continue
		}
		h := info.New()
		if h.Size() != info.Size {
			t.Errorf("%s: state size %d != declared size %d", name, h.Size(), info.Size)
		}
	}
}
