package handlers

import (
	"net/http"
	"time"

	"github.com/rigaestates/listings-api/internal/domain"
	"github.com/rigaestates/listings-api/internal/http/response"
)

type listingsResponse struct {
	Listings   []domain.Listing `json:"listings"`
	ValidUntil *time.Time       `json:"valid_until,omitempty"`
}

// Listings handles GET /v1/listings. The viewer email comes from the
// query param or, failing that, the remember cookie. Either way the
// grant is re-checked against the store; the cookie only saves the UI
// from prompting.
func (h *Handlers) Listings(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		if hinted, ok := h.remembered.Hint(r); ok {
			email = hinted
		}
	}

	listings, validUntil, err := h.listingGate.VisibleListings(r.Context(), email)
	if err != nil {
		response.InternalError(w, "Failed to load listings")
		return
	}

	writeJSON(w, http.StatusOK, listingsResponse{
		Listings:   listings,
		ValidUntil: validUntil,
	})
}
