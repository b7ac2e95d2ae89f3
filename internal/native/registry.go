package native

import (
	"crypto"
	"fmt"
	"sync"
)

// Object is a tracked key structure. It holds the parsed key material for
// one algorithm family and belongs to exactly one owner at a time; borrowers
// may share it read-only but must never release it.
type Object struct {
	// Algorithm is fixed at allocation.
	Algorithm KeyAlgorithm

	// Public is set once construction succeeds. Private stays nil for
	// public-only objects.
	Public  crypto.PublicKey
	Private crypto.PrivateKey

	mu       sync.Mutex
	reg      *Registry
	released bool
}

// Release returns the object to the registry. A second release is an error:
// the first caller was the owner, anyone else was only borrowing.
func (o *Object) Release() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.released {
		return fmt.Errorf("native: object already released")
	}
	o.released = true
	o.Public = nil
	o.Private = nil
	o.reg.noteRelease()
	return nil
}

// Released reports whether the object has been released.
func (o *Object) Released() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.released
}

// Registry tracks live key objects. The counters are the ground truth for
// leak and double-release detection in tests.
type Registry struct {
	mu        sync.Mutex
	allocated uint64
	released  uint64
}

// DefaultRegistry tracks all objects allocated through package-level helpers.
var DefaultRegistry = &Registry{}

// Alloc creates a new empty key object for the given algorithm family.
// The caller owns the object and must release it exactly once.
func (r *Registry) Alloc(alg KeyAlgorithm) *Object {
	r.mu.Lock()
	r.allocated++
	r.mu.Unlock()
	return &Object{Algorithm: alg, reg: r}
}

func (r *Registry) noteRelease() {
	r.mu.Lock()
	r.released++
	r.mu.Unlock()
}

// Stats returns the number of objects allocated and released so far.
// allocated - released is the number of currently live objects.
func (r *Registry) Stats() (allocated, released uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allocated, r.released
}

// Live returns the number of objects not yet released.
func (r *Registry) Live() uint64 {
	a, rel := r.Stats()
	return a - rel
}
