package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rigaestates/listings-api/internal/domain"
	"github.com/rigaestates/listings-api/internal/http/response"
	"github.com/rigaestates/listings-api/pkg/logger"
)

// RequestAccess handles POST /v1/access/request.
func (h *Handlers) RequestAccess(w http.ResponseWriter, r *http.Request) {
	var req domain.AccessSubmission
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	if err := h.accessService.RequestAccess(r.Context(), &req); err != nil {
		writeAccessError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"message": "Access code sent to your email",
	})
}

// VerifyCode handles POST /v1/access/verify.
func (h *Handlers) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req domain.CodeSubmission
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	grant, err := h.accessService.VerifyCode(r.Context(), &req)
	if err != nil {
		writeAccessError(w, err)
		return
	}

	if err := h.remembered.Remember(w, req.Email, grant.ValidUntil); err != nil {
		logger.WarnContext(r.Context(), "Failed to set remember cookie", "error", err)
	}

	writeJSON(w, http.StatusOK, grant)
}

// MagicLink handles GET /v1/access/magic?token=.
func (h *Handlers) MagicLink(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		response.BadRequest(w, "Missing magic token")
		return
	}

	email, grant, err := h.accessService.VerifyMagicLink(r.Context(), token)
	if err != nil {
		writeAccessError(w, err)
		return
	}

	if err := h.remembered.Remember(w, email, grant.ValidUntil); err != nil {
		logger.WarnContext(r.Context(), "Failed to set remember cookie", "error", err)
	}

	writeJSON(w, http.StatusOK, grant)
}
