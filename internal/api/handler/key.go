package handler

import (
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/keyfoundry/keybind/internal/api/dto"
	"github.com/keyfoundry/keybind/internal/config"
	"github.com/keyfoundry/keybind/pkg/pkey"
)

// KeyHandler handles key inspection and verification requests.
type KeyHandler struct{}

// NewKeyHandler creates a new KeyHandler.
func NewKeyHandler() *KeyHandler {
	return &KeyHandler{}
}

// Inspect handles POST /api/v1/keys/inspect
func (h *KeyHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	var req dto.KeyInspectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, &dto.APIError{
			Code:    "INVALID_REQUEST",
			Message: "Invalid JSON request body",
		})
		return
	}

	data, err := req.Key.Decode()
	if err != nil {
		respondError(w, http.StatusBadRequest, &dto.APIError{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	var cb pkey.PassphraseFunc
	if req.Passphrase != "" {
		cb = func(confirm bool) ([]byte, error) {
			return config.ResolvePassphrase(req.Passphrase), nil
		}
	}

	var key *pkey.PKey
	if req.PublicOnly {
		key, err = pkey.LoadPublicKey(data, cb)
	} else {
		key, err = pkey.LoadKey(data, cb)
	}
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, &dto.APIError{
			Code:    "KEY_LOAD_FAILED",
			Message: err.Error(),
		})
		return
	}
	defer func() { _ = key.Close() }()

	publicPEM, err := key.PublicPEM()
	if err != nil {
		respondError(w, http.StatusInternalServerError, &dto.APIError{
			Code:    "ENCODE_FAILED",
			Message: err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, dto.KeyInspectResponse{
		Algorithm:  key.Algorithm().String(),
		HasPrivate: key.HasPrivate(),
		Curve:      curveName(key),
		PublicKey:  dto.BinaryData{Data: string(publicPEM), Encoding: "pem"},
	})
}

// Verify handles POST /api/v1/keys/verify
func (h *KeyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, &dto.APIError{
			Code:    "INVALID_REQUEST",
			Message: "Invalid JSON request body",
		})
		return
	}

	keyData, err := req.Key.Decode()
	if err != nil {
		respondError(w, http.StatusBadRequest, &dto.APIError{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	digest, err := base64.StdEncoding.DecodeString(req.Digest)
	if err != nil {
		respondError(w, http.StatusBadRequest, &dto.APIError{
			Code:    "INVALID_REQUEST",
			Message: "digest is not valid base64",
		})
		return
	}
	sig, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		respondError(w, http.StatusBadRequest, &dto.APIError{
			Code:    "INVALID_REQUEST",
			Message: "signature is not valid base64",
		})
		return
	}

	key, err := pkey.LoadPublicKey(keyData, nil)
	if err != nil {
		// A private key PEM also carries the public half
		key, err = pkey.LoadKey(keyData, nil)
	}
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, &dto.APIError{
			Code:    "KEY_LOAD_FAILED",
			Message: err.Error(),
		})
		return
	}
	defer func() { _ = key.Close() }()

	respondJSON(w, http.StatusOK, dto.VerifyResponse{
		Valid: key.Verify(digest, sig),
	})
}

// curveName reports the EC curve of a handle, or "".
func curveName(key *pkey.PKey) string {
	if pub, ok := key.Public().(*ecdsa.PublicKey); ok {
		return pub.Curve.Params().Name
	}
	return ""
}
