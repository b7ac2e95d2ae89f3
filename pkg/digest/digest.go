// Package digest resolves digest-algorithm names to concrete descriptors
// and creates computation contexts bound to them.
//
// Resolution is a two-tier lookup. The first tier is a table of constants
// registered at process start, covering the overwhelmingly common names
// without a scan. The second tier is the provider's full name table, which
// also understands aliases and the less common algorithms. A name missing
// from both tiers is a distinct "not found" outcome, not an error: the
// typed error appears only when a context is requested for it.
package digest

import (
	"crypto"
	"errors"
	"fmt"
	"hash"

	"github.com/keyfoundry/keybind/internal/native"
)

// ErrUnknownAlgorithm is returned when a digest name resolves in neither
// lookup tier.
var ErrUnknownAlgorithm = errors.New("digest: unknown algorithm")

// Descriptor is an opaque reference to one digest algorithm.
type Descriptor struct {
	name  string
	hash  crypto.Hash
	size  int
	newFn func() hash.Hash
}

// Name returns the canonical algorithm name.
func (d *Descriptor) Name() string { return d.name }

// Size returns the digest length in bytes.
func (d *Descriptor) Size() int { return d.size }

// HashFunc returns the toolkit hash identifier, satisfying crypto.SignerOpts.
func (d *Descriptor) HashFunc() crypto.Hash { return d.hash }

// New returns a fresh hash state for this algorithm.
func (d *Descriptor) New() hash.Hash { return d.newFn() }

// fastPathNames are the constants registered in every Resolver's first tier.
var fastPathNames = []string{"md5", "sha1", "sha224", "sha256", "sha384", "sha512"}

// Resolver performs the two-tier name lookup.
// The zero value has an empty fast path and falls through to the provider
// table for every name; NewResolver pre-registers the common constants.
type Resolver struct {
	fast map[string]*Descriptor
}

// NewResolver returns a Resolver with the common digest constants
// pre-registered in its fast path.
func NewResolver() *Resolver {
	r := &Resolver{fast: make(map[string]*Descriptor, len(fastPathNames))}
	for _, name := range fastPathNames {
		info, ok := native.LookupDigest(name)
		if !ok {
			continue
		}
		r.fast[name] = descriptorFromInfo(info)
	}
	return r
}

// Resolve maps a digest name to its descriptor. The second return is false
// when the name is unknown to both tiers.
func (r *Resolver) Resolve(name string) (*Descriptor, bool) {
	if d, ok := r.fast[name]; ok {
		return d, true
	}
	info, ok := native.LookupDigest(name)
	if !ok {
		return nil, false
	}
	return descriptorFromInfo(info), true
}

func descriptorFromInfo(info native.DigestInfo) *Descriptor {
	return &Descriptor{name: info.Name, hash: info.Hash, size: info.Size, newFn: info.New}
}

// defaultResolver serves the package-level entry points.
var defaultResolver = NewResolver()

// Resolve maps a digest name to its descriptor using the default resolver.
func Resolve(name string) (*Descriptor, bool) {
	return defaultResolver.Resolve(name)
}

// Context is a running digest computation bound to one descriptor.
type Context struct {
	desc *Descriptor
	h    hash.Hash
}

// NewContext resolves name and initializes a computation context for it.
// An unresolvable name fails with ErrUnknownAlgorithm carrying the name.
func NewContext(name string) (*Context, error) {
	desc, ok := Resolve(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	return NewContextWithDescriptor(desc), nil
}

// NewContextWithDescriptor initializes a context for an already resolved
// descriptor.
func NewContextWithDescriptor(desc *Descriptor) *Context {
	return &Context{desc: desc, h: desc.New()}
}

// Descriptor returns the descriptor this context is bound to.
func (c *Context) Descriptor() *Descriptor { return c.desc }

// Write absorbs message bytes. It never fails.
func (c *Context) Write(p []byte) (int, error) { return c.h.Write(p) }

// Sum returns the digest of everything written so far without resetting
// the state.
func (c *Context) Sum() []byte { return c.h.Sum(nil) }

// Reset restores the context to its initial state.
func (c *Context) Reset() { c.h.Reset() }

// Hash computes the digest of data in one call.
func Hash(name string, data []byte) ([]byte, error) {
	ctx, err := NewContext(name)
	if err != nil {
		return nil, err
	}
	_, _ = ctx.Write(data)
	return ctx.Sum(), nil
}
