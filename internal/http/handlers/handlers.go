package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rigaestates/listings-api/internal/access"
	"github.com/rigaestates/listings-api/internal/domain"
	"github.com/rigaestates/listings-api/internal/gate"
	"github.com/rigaestates/listings-api/internal/http/response"
	"github.com/rigaestates/listings-api/internal/repo/postgres"
	"github.com/rigaestates/listings-api/internal/session"
	"github.com/rigaestates/listings-api/pkg/config"
	"github.com/rigaestates/listings-api/pkg/events"
)

type Handlers struct {
	accessService access.Service
	listingGate   gate.Gate
	remembered    *session.Cache
	staffRepo     postgres.StaffRepo
	propertyRepo  postgres.PropertyRepo
	bus           events.Publisher
	config        *config.Config
}

func New(
	accessService access.Service,
	listingGate gate.Gate,
	remembered *session.Cache,
	staffRepo postgres.StaffRepo,
	propertyRepo postgres.PropertyRepo,
	bus events.Publisher,
	config *config.Config,
) *Handlers {
	return &Handlers{
		accessService: accessService,
		listingGate:   listingGate,
		remembered:    remembered,
		staffRepo:     staffRepo,
		propertyRepo:  propertyRepo,
		bus:           bus,
		config:        config,
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeAccessError maps workflow errors onto the HTTP surface.
func writeAccessError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		response.BadRequest(w, vErr.Error())
	case errors.Is(err, domain.ErrNoPendingRequest):
		response.WriteError(w, http.StatusNotFound, "No pending access request. Please request access again.", response.CodeNoRequest)
	case errors.Is(err, domain.ErrInvalidCode):
		response.WriteError(w, http.StatusUnauthorized, "Incorrect code.", response.CodeInvalidCode)
	case errors.Is(err, domain.ErrTooManyAttempts):
		response.WriteError(w, http.StatusTooManyRequests, "Too many failed attempts. Please request a new code.", response.CodeTooManyAttempts)
	case errors.Is(err, domain.ErrDelivery):
		response.WriteError(w, http.StatusBadGateway, "Could not send the access code. Please try again.", response.CodeDeliveryFailed)
	default:
		response.InternalError(w, "Something went wrong")
	}
}
