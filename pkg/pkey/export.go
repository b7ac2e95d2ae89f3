package pkey

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// DSAParameterSet is the portable form of a DSA public key: the domain
// parameters and public value as big-endian byte strings, the layout
// NewDSAPublicKey accepts.
type DSAParameterSet struct {
	P   []byte `cbor:"1,keyasint"`
	Q   []byte `cbor:"2,keyasint"`
	G   []byte `cbor:"3,keyasint"`
	Pub []byte `cbor:"4,keyasint"`
}

// ECParameterSet is the portable form of an EC public key: the curve name
// and the point in octet form.
type ECParameterSet struct {
	Curve string `cbor:"1,keyasint"`
	Point []byte `cbor:"2,keyasint"`
}

var cborEnc cbor.EncMode

func init() {
	var err error
	cborEnc, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

// ExportParams serializes the handle's public parameters to canonical CBOR.
func (k *DSA) ExportParams() ([]byte, error) {
	p, q, g, pub, err := k.Params()
	if err != nil {
		return nil, err
	}
	return cborEnc.Marshal(DSAParameterSet{P: p, Q: q, G: g, Pub: pub})
}

// ImportDSAParams decodes a CBOR parameter set and builds a public-only
// DSA handle from it.
func ImportDSAParams(data []byte) (*DSA, error) {
	var ps DSAParameterSet
	if err := cbor.Unmarshal(data, &ps); err != nil {
		return nil, fmt.Errorf("%w: decode parameter set: %v", ErrParameter, err)
	}
	return NewDSAPublicKey(ps.P, ps.Q, ps.G, ps.Pub)
}

// ExportParams serializes the handle's curve and public point to
// canonical CBOR.
func (k *EC) ExportParams() ([]byte, error) {
	point, err := k.PublicOctets()
	if err != nil {
		return nil, err
	}
	return cborEnc.Marshal(ECParameterSet{Curve: k.Curve(), Point: point})
}

// ImportECParams decodes a CBOR parameter set and builds a public-only EC
// handle from it.
func ImportECParams(data []byte) (*EC, error) {
	var ps ECParameterSet
	if err := cbor.Unmarshal(data, &ps); err != nil {
		return nil, fmt.Errorf("%w: decode parameter set: %v", ErrParameter, err)
	}
	return NewECPublicKey(ps.Curve, ps.Point)
}
