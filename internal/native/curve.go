package native

import (
	"crypto/elliptic"
	"fmt"
	"math/big"
)

// curves maps curve names and their common aliases to the toolkit curve.
var curves = map[string]elliptic.Curve{
	"P-224":     elliptic.P224(),
	"p224":      elliptic.P224(),
	"secp224r1": elliptic.P224(),

	"P-256":      elliptic.P256(),
	"p256":       elliptic.P256(),
	"prime256v1": elliptic.P256(),
	"secp256r1":  elliptic.P256(),

	"P-384":     elliptic.P384(),
	"p384":      elliptic.P384(),
	"secp384r1": elliptic.P384(),

	"P-521":     elliptic.P521(),
	"p521":      elliptic.P521(),
	"secp521r1": elliptic.P521(),
}

// CurveByName resolves a named curve. The second return is false when the
// name is not known to the toolkit.
func CurveByName(name string) (elliptic.Curve, bool) {
	c, ok := curves[name]
	return c, ok
}

// CurveNames returns the canonical names of all supported curves.
func CurveNames() []string {
	return []string{"P-224", "P-256", "P-384", "P-521"}
}

// DecodePoint parses a public-key octet string into curve coordinates.
// Uncompressed form is tried first, then compressed; the point format is
// whatever the toolkit accepts, nothing stricter.
func DecodePoint(curve elliptic.Curve, octets []byte) (x, y *big.Int, err error) {
	if len(octets) == 0 {
		return nil, nil, fmt.Errorf("native: empty point encoding")
	}
	//nolint:staticcheck // elliptic.Unmarshal is deprecated but matches the octet-string wire format
	x, y = elliptic.Unmarshal(curve, octets)
	if x != nil {
		return x, y, nil
	}
	x, y = elliptic.UnmarshalCompressed(curve, octets)
	if x != nil {
		return x, y, nil
	}
	return nil, nil, fmt.Errorf("native: point decode failed for curve %s", curve.Params().Name)
}

// EncodePoint serializes curve coordinates to the uncompressed octet string,
// the same encoding DecodePoint accepts, so the two round-trip.
func EncodePoint(curve elliptic.Curve, x, y *big.Int) ([]byte, error) {
	if x == nil || y == nil {
		return nil, fmt.Errorf("native: encode nil point")
	}
	//nolint:staticcheck // elliptic.Marshal is deprecated but still the octet-string wire format
	return elliptic.Marshal(curve, x, y), nil
}
