// Package native is the provider layer under the key handles in pkg/pkey.
// It allocates and tracks key objects, marshals raw parameter bytes into
// key-structure slots, parses PEM material, and serves the digest-name
// registry. The platform toolkit (crypto/* from the standard library plus
// cloudflare/circl for Ed448) does the actual mathematics.
//
// Every key object lives in a Registry that counts allocations and releases.
// A handle that owns its object must release it exactly once; the registry
// turns a second release into an error instead of a silent corruption, and
// the counters let tests prove that no object leaks.
package native

// KeyAlgorithm tags the algorithm family of a key object.
type KeyAlgorithm string

const (
	AlgUnknown KeyAlgorithm = ""
	AlgDSA     KeyAlgorithm = "dsa"
	AlgEC      KeyAlgorithm = "ec"
	AlgRSA     KeyAlgorithm = "rsa"
	AlgEd25519 KeyAlgorithm = "ed25519"
	AlgEd448   KeyAlgorithm = "ed448"
)

// String returns the algorithm tag as a string.
func (a KeyAlgorithm) String() string {
	if a == AlgUnknown {
		return "unknown"
	}
	return string(a)
}

// PassphraseFunc supplies the secret needed to decrypt or protect key
// material. The confirm flag is false when loading and true when a newly
// chosen secret should be confirmed. It is invoked at most once per load or
// generate call; retry policy belongs to the implementation, not to this
// package.
type PassphraseFunc func(confirm bool) ([]byte, error)
