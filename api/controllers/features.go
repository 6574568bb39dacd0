package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/grupomotriz/catalogo-backend/api/responses"
	"github.com/grupomotriz/catalogo-backend/api/validators"
	"github.com/grupomotriz/catalogo-backend/internal/features"
	pkgerrors "github.com/grupomotriz/catalogo-backend/pkg/errors"
	"github.com/grupomotriz/catalogo-backend/pkg/logger"
)

type createFeatureRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Category string `json:"category" validate:"required"`
}

type setVehicleFeaturesRequest struct {
	FeatureIDs []string `json:"feature_ids" validate:"required,dive,uuid"`
}

func CreateFeature(svc features.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createFeatureRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Create(r.Context(), features.CreateInput{
			Name:     payload.Name,
			Category: payload.Category,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func ListFeatures(svc features.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dtos, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dtos)
	}
}

func DeleteFeature(svc features.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		featureID, err := validators.ParseURLParamUUID(chi.URLParam(r, "featureId"), "featureId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), featureID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// SetVehicleFeatures replaces the vehicle's feature set in one call.
func SetVehicleFeatures(svc features.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID, err := validators.ParseURLParamUUID(chi.URLParam(r, "vehicleId"), "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setVehicleFeaturesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		featureIDs := make([]uuid.UUID, len(payload.FeatureIDs))
		for i, raw := range payload.FeatureIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "feature_ids must be uuids"))
				return
			}
			featureIDs[i] = id
		}

		dtos, err := svc.SetVehicleFeatures(r.Context(), vehicleID, featureIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dtos)
	}
}
