package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/go-chi/chi/v5"

	"github.com/rigaestates/listings-api/internal/domain"
	"github.com/rigaestates/listings-api/internal/http/response"
	"github.com/rigaestates/listings-api/internal/platform/auth"
	"github.com/rigaestates/listings-api/pkg/events"
	"github.com/rigaestates/listings-api/pkg/logger"
)

// StaffLogin handles POST /v1/admin/login.
func (h *Handlers) StaffLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.StaffLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	staff, err := h.staffRepo.FindByEmail(r.Context(), req.Email)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to look up staff user", "error", err)
		response.InternalError(w, "Something went wrong")
		return
	}
	if staff == nil {
		response.Unauthorized(w, "Invalid credentials")
		return
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, staff.PasswordHash)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to verify password", "error", err)
		response.InternalError(w, "Something went wrong")
		return
	}
	if !valid {
		response.Unauthorized(w, "Invalid credentials")
		return
	}

	token, err := auth.NewStaffToken(staff.ID, staff.Email, staff.Role, h.config.Auth.JWTSecret, h.config.Auth.StaffTokenTTL)
	if err != nil {
		response.InternalError(w, "Failed to create token")
		return
	}

	resp := domain.StaffLoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(h.config.Auth.StaffTokenTTL.Seconds()),
	}
	resp.Staff.ID = staff.ID
	resp.Staff.Email = staff.Email
	resp.Staff.Name = staff.Name
	resp.Staff.Role = staff.Role

	writeJSON(w, http.StatusOK, resp)
}

// CreateProperty handles POST /v1/admin/properties.
func (h *Handlers) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	property, err := h.propertyRepo.Create(r.Context(), &req)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to create property", "error", err)
		response.InternalError(w, "Failed to create property")
		return
	}

	if err := h.bus.Publish(r.Context(), events.ListingPublished, events.ListingPublishedEvent{
		PropertyID:  property.ID,
		Visibility:  string(property.Visibility),
		PublishedAt: time.Now(),
	}); err != nil {
		logger.WarnContext(r.Context(), "Failed to publish listing.published", "error", err)
	}

	writeJSON(w, http.StatusCreated, property)
}

type visibilityPatch struct {
	Visibility domain.Visibility `json:"visibility"`
}

// SetPropertyVisibility handles PATCH /v1/admin/properties/{id}/visibility.
func (h *Handlers) SetPropertyVisibility(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid property ID")
		return
	}

	var patch visibilityPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	if !patch.Visibility.Valid() {
		response.BadRequest(w, "Visibility must be public or private")
		return
	}

	updated, err := h.propertyRepo.SetVisibility(r.Context(), id, patch.Visibility)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to update visibility", "error", err, "property_id", id)
		response.InternalError(w, "Failed to update visibility")
		return
	}
	if !updated {
		response.NotFound(w, "Property not found")
		return
	}

	if err := h.bus.Publish(r.Context(), events.ListingVisibility, events.ListingVisibilityEvent{
		PropertyID: id,
		Visibility: string(patch.Visibility),
		ChangedAt:  time.Now(),
	}); err != nil {
		logger.WarnContext(r.Context(), "Failed to publish listing.visibility.changed", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":         id,
		"visibility": patch.Visibility,
	})
}
