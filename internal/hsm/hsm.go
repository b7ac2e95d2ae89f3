// Package hsm imports public keys from PKCS#11 tokens. Private material
// never leaves the token; only CKO_PUBLIC_KEY objects are read.
package hsm

import (
	"fmt"

	"github.com/keyfoundry/keybind/internal/config"
)

// Config identifies a PKCS#11 module, token and key.
type Config struct {
	// ModulePath is the path to the PKCS#11 module (.so/.dylib/.dll)
	ModulePath string

	// TokenLabel is the label of the token to use
	TokenLabel string

	// TokenSerial identifies the token by serial number
	TokenSerial string

	// PIN is the user PIN for the token
	PIN string

	// KeyLabel is the label of the key to read
	KeyLabel string

	// KeyID is the CKA_ID of the key (hex encoded)
	KeyID string

	// SlotID is the slot ID (optional, use TokenLabel if not specified)
	SlotID *uint
}

// FromConfig builds an hsm.Config from the YAML HSM section, resolving
// the PIN from the environment.
func FromConfig(c *config.HSMConfig, keyLabel, keyID string) (*Config, error) {
	if c == nil {
		return nil, fmt.Errorf("no HSM configured")
	}
	pin, err := c.GetPIN()
	if err != nil {
		return nil, err
	}
	return &Config{
		ModulePath:  c.PKCS11.Lib,
		TokenLabel:  c.PKCS11.Token,
		TokenSerial: c.PKCS11.TokenSerial,
		PIN:         pin,
		KeyLabel:    keyLabel,
		KeyID:       keyID,
		SlotID:      c.PKCS11.Slot,
	}, nil
}

// SlotInfo describes one slot of a PKCS#11 module.
type SlotInfo struct {
	ID          uint
	Description string
	TokenLabel  string
	TokenSerial string
	HasToken    bool
}
