package dto

// KeyInspectRequest asks for details about a PEM-encoded key.
type KeyInspectRequest struct {
	// Key is the key to analyze.
	Key BinaryData `json:"key"`

	// Passphrase decrypts an encrypted private key ("env:NAME" supported).
	Passphrase string `json:"passphrase,omitempty"`

	// PublicOnly parses only the public key structure.
	PublicOnly bool `json:"public_only,omitempty"`
}

// KeyInspectResponse describes a parsed key.
type KeyInspectResponse struct {
	// Algorithm is the key algorithm family.
	Algorithm string `json:"algorithm"`

	// HasPrivate indicates whether private material was present.
	HasPrivate bool `json:"has_private"`

	// Curve is the EC curve name, when applicable.
	Curve string `json:"curve,omitempty"`

	// PublicKey is the PEM re-encoding of the public half.
	PublicKey BinaryData `json:"public_key"`
}

// VerifyRequest asks for a signature check.
type VerifyRequest struct {
	// Key is the public (or private) key in PEM form.
	Key BinaryData `json:"key"`

	// Digest is the base64-encoded digest that was signed.
	Digest string `json:"digest"`

	// Signature is the base64-encoded signature to check.
	Signature string `json:"signature"`
}

// VerifyResponse reports a signature check outcome.
type VerifyResponse struct {
	// Valid is true when the signature matches.
	Valid bool `json:"valid"`
}

// DigestRequest asks for a hash of the supplied data.
type DigestRequest struct {
	// Algorithm is the digest name (e.g. "sha256", "sha3-512").
	Algorithm string `json:"algorithm"`

	// Data is the base64-encoded input.
	Data string `json:"data"`
}

// DigestResponse carries the computed digest.
type DigestResponse struct {
	// Algorithm is the resolved digest name.
	Algorithm string `json:"algorithm"`

	// Digest is the hex-encoded result.
	Digest string `json:"digest"`

	// Size is the digest length in bytes.
	Size int `json:"size"`
}

// EnvelopeVerifyRequest asks for verification of a COSE_Sign1 message.
type EnvelopeVerifyRequest struct {
	// Key is the public key in PEM form.
	Key BinaryData `json:"key"`

	// Message is the base64-encoded COSE_Sign1 structure.
	Message string `json:"message"`
}

// EnvelopeVerifyResponse reports the envelope check and its payload.
type EnvelopeVerifyResponse struct {
	// Valid is true when the signature matches.
	Valid bool `json:"valid"`

	// Payload is the base64-encoded embedded payload, when valid.
	Payload string `json:"payload,omitempty"`
}
