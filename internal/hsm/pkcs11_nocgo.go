//go:build !cgo

// Stub implementations when CGO is not available. PKCS#11 access
// requires CGO.
package hsm

import (
	"crypto"
	"fmt"
)

var errNoCGO = fmt.Errorf("HSM support requires CGO (build with CGO_ENABLED=1)")

// LoadPublicKey reads a public key object from the token.
// This stub returns an error when CGO is not available.
func LoadPublicKey(_ Config) (crypto.PublicKey, error) {
	return nil, errNoCGO
}

// ListSlots lists the slots of a PKCS#11 module.
// This stub returns an error when CGO is not available.
func ListSlots(_ string) ([]SlotInfo, error) {
	return nil, errNoCGO
}

// ClosePools closes every open session pool.
// This stub does nothing when CGO is not available.
func ClosePools() {
	// No-op: HSM support requires CGO
}
