package native

import (
	"crypto"
	"crypto/md5"  //nolint:gosec // legacy digest kept for interoperability
	"crypto/sha1" //nolint:gosec // legacy digest kept for interoperability
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

// DigestInfo describes one digest algorithm known to the provider.
type DigestInfo struct {
	// Name is the canonical algorithm name.
	Name string

	// Hash is the toolkit identifier, used where a crypto.SignerOpts is needed.
	Hash crypto.Hash

	// Size is the digest length in bytes.
	Size int

	// New creates a fresh computation state.
	New func() hash.Hash
}

// digestTable is the provider's full name table, keyed by normalized name.
// It covers every digest the toolkit knows about, including the ones the
// fast-path tables upstream choose not to pre-register.
var digestTable = map[string]DigestInfo{
	"md5":    {Name: "md5", Hash: crypto.MD5, Size: md5.Size, New: md5.New},
	"sha1":   {Name: "sha1", Hash: crypto.SHA1, Size: sha1.Size, New: sha1.New},
	"sha224": {Name: "sha224", Hash: crypto.SHA224, Size: sha256.Size224, New: sha256.New224},
	"sha256": {Name: "sha256", Hash: crypto.SHA256, Size: sha256.Size, New: sha256.New},
	"sha384": {Name: "sha384", Hash: crypto.SHA384, Size: sha512.Size384, New: sha512.New384},
	"sha512": {Name: "sha512", Hash: crypto.SHA512, Size: sha512.Size, New: sha512.New},

	"sha3224": {Name: "sha3-224", Hash: crypto.SHA3_224, Size: 28, New: func() hash.Hash { return sha3.New224() }},
	"sha3256": {Name: "sha3-256", Hash: crypto.SHA3_256, Size: 32, New: func() hash.Hash { return sha3.New256() }},
	"sha3384": {Name: "sha3-384", Hash: crypto.SHA3_384, Size: 48, New: func() hash.Hash { return sha3.New384() }},
	"sha3512": {Name: "sha3-512", Hash: crypto.SHA3_512, Size: 64, New: func() hash.Hash { return sha3.New512() }},

	"blake2b256": {Name: "blake2b-256", Hash: crypto.BLAKE2b_256, Size: 32, New: mustBlake2(blake2b.New256)},
	"blake2b384": {Name: "blake2b-384", Hash: crypto.BLAKE2b_384, Size: 48, New: mustBlake2(blake2b.New384)},
	"blake2b512": {Name: "blake2b-512", Hash: crypto.BLAKE2b_512, Size: 64, New: mustBlake2(blake2b.New512)},
	"blake2s256": {Name: "blake2s-256", Hash: crypto.BLAKE2s_256, Size: 32, New: mustBlake2(blake2s.New256)},
}

// mustBlake2 adapts a keyed BLAKE2 constructor to a keyless hash.Hash
// factory. The constructors only fail for oversized keys, so a nil key
// cannot error.
func mustBlake2(ctor func(key []byte) (hash.Hash, error)) func() hash.Hash {
	return func() hash.Hash {
		h, err := ctor(nil)
		if err != nil {
			panic(err)
		}
		return h
	}
}

// LookupDigest resolves a digest name in the provider's full table.
// Names are matched case-insensitively and separator-insensitively, so
// "SHA-256", "sha_256" and "sha256" all resolve to the same entry.
func LookupDigest(name string) (DigestInfo, bool) {
	info, ok := digestTable[normalizeDigestName(name)]
	return info, ok
}

// DigestNames returns the canonical names of every digest in the table.
func DigestNames() []string {
	names := make([]string, 0, len(digestTable))
	for _, info := range digestTable {
		names = append(names, info.Name)
	}
	return names
}

func normalizeDigestName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "-", "")
	name = strings.ReplaceAll(name, "_", "")
	return name
}
