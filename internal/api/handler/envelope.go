package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/keyfoundry/keybind/internal/api/dto"
	"github.com/keyfoundry/keybind/internal/envelope"
	"github.com/keyfoundry/keybind/pkg/pkey"
)

// EnvelopeHandler verifies COSE_Sign1 envelopes.
type EnvelopeHandler struct{}

// NewEnvelopeHandler creates a new EnvelopeHandler.
func NewEnvelopeHandler() *EnvelopeHandler {
	return &EnvelopeHandler{}
}

// Verify handles POST /api/v1/envelopes/verify
func (h *EnvelopeHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req dto.EnvelopeVerifyRequest
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
	message, err := base64.StdEncoding.DecodeString(req.Message)
	if err != nil {
		respondError(w, http.StatusBadRequest, &dto.APIError{
			Code:    "INVALID_REQUEST",
			Message: "message is not valid base64",
		})
		return
	}

	key, err := pkey.LoadPublicKey(keyData, nil)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, &dto.APIError{
			Code:    "KEY_LOAD_FAILED",
			Message: err.Error(),
		})
		return
	}
	defer func() { _ = key.Close() }()

	payload, err := envelope.Verify(key, message)
	if err != nil {
		respondJSON(w, http.StatusOK, dto.EnvelopeVerifyResponse{Valid: false})
		return
	}

	respondJSON(w, http.StatusOK, dto.EnvelopeVerifyResponse{
		Valid:   true,
		Payload: base64.StdEncoding.EncodeToString(payload),
	})
}
