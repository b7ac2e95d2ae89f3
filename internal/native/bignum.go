package native

import (
	"fmt"
	"math/big"
)

// SetBigField decodes raw as a big-endian unsigned integer and installs it
// into the slot at dst, releasing whatever the slot held before. The decode
// happens first: a failed call leaves the previous slot value untouched, so
// the structure stays usable for a retry.
func SetBigField(dst **big.Int, field string, raw []byte) error {
	if dst == nil {
		return fmt.Errorf("native: no slot for field %s", field)
	}
	n, err := decodeBig(raw)
	if err != nil {
		return fmt.Errorf("native: decode field %s: %w", field, err)
	}
	// Decode succeeded; now the old value may go.
	*dst = n
	return nil
}

// decodeBig converts a big-endian byte string to a big integer.
func decodeBig(raw []byte) (*big.Int, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty integer encoding")
	}
	return new(big.Int).SetBytes(raw), nil
}

// EncodeBig returns the minimal big-endian encoding of n.
func EncodeBig(n *big.Int) ([]byte, error) {
	if n == nil {
		return nil, fmt.Errorf("native: encode nil integer")
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("native: encode negative integer")
	}
	return n.Bytes(), nil
}
