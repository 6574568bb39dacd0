package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/grupomotriz/catalogo-backend/api/responses"
	"github.com/grupomotriz/catalogo-backend/api/validators"
	"github.com/grupomotriz/catalogo-backend/internal/catalog"
	pkgerrors "github.com/grupomotriz/catalogo-backend/pkg/errors"
	"github.com/grupomotriz/catalogo-backend/pkg/logger"
)

type reassignColorsRequest struct {
	ColorIDs []string `json:"color_ids" validate:"required,dive,uuid"`
}

// ReassignVehicleColors replaces a vehicle's color set. Colors that still own
// images block the request and come back in the error details.
func ReassignVehicleColors(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID, err := validators.ParseURLParamUUID(chi.URLParam(r, "vehicleId"), "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload reassignColorsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		colorIDs := make([]uuid.UUID, len(payload.ColorIDs))
		for i, raw := range payload.ColorIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "color_ids must be uuids"))
				return
			}
			colorIDs[i] = id
		}

		result, err := svc.ReassignColors(r.Context(), vehicleID, colorIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ListVehicleColors(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID, err := validators.ParseURLParamUUID(chi.URLParam(r, "vehicleId"), "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		links, err := svc.ListColors(r.Context(), vehicleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, links)
	}
}
