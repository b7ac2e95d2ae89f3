package handler

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/keyfoundry/keybind/internal/api/dto"
	"github.com/keyfoundry/keybind/pkg/digest"
)

// DigestHandler computes digests over submitted data.
type DigestHandler struct{}

// NewDigestHandler creates a new DigestHandler.
func NewDigestHandler() *DigestHandler {
	return &DigestHandler{}
}

// Compute handles POST /api/v1/digest
func (h *DigestHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req dto.DigestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, &dto.APIError{
			Code:    "INVALID_REQUEST",
			Message: "Invalid JSON request body",
		})
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		respondError(w, http.StatusBadRequest, &dto.APIError{
			Code:    "INVALID_REQUEST",
			Message: "data is not valid base64",
		})
		return
	}

	ctx, err := digest.NewContext(req.Algorithm)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, &dto.APIError{
			Code:    "UNKNOWN_ALGORITHM",
			Message: err.Error(),
		})
		return
	}
	_, _ = ctx.Write(data)
	sum := ctx.Sum()

	respondJSON(w, http.StatusOK, dto.DigestResponse{
		Algorithm: ctx.Descriptor().Name(),
		Digest:    hex.EncodeToString(sum),
		Size:      len(sum),
	})
}
