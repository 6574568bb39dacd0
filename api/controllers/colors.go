package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/grupomotriz/catalogo-backend/api/responses"
	"github.com/grupomotriz/catalogo-backend/api/validators"
	"github.com/grupomotriz/catalogo-backend/internal/colors"
	"github.com/grupomotriz/catalogo-backend/pkg/logger"
)

type createColorRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=80"`
	HexCode string `json:"hex_code" validate:"required"`
	Active  bool   `json:"active"`
}

type updateColorRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=80"`
	HexCode *string `json:"hex_code,omitempty"`
	Active  *bool   `json:"active,omitempty"`
}

func CreateColor(svc colors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createColorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Create(r.Context(), colors.CreateInput{
			Name:    payload.Name,
			HexCode: payload.HexCode,
			Active:  payload.Active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func UpdateColor(svc colors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		colorID, err := validators.ParseURLParamUUID(chi.URLParam(r, "colorId"), "colorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateColorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Update(r.Context(), colorID, colors.UpdateInput{
			Name:    payload.Name,
			HexCode: payload.HexCode,
			Active:  payload.Active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ListColors(svc colors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly, err := validators.ParseQueryBool(r, "active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dtos, err := svc.List(r.Context(), activeOnly != nil && *activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dtos)
	}
}

func GetColor(svc colors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		colorID, err := validators.ParseURLParamUUID(chi.URLParam(r, "colorId"), "colorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Get(r.Context(), colorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// DeleteColor refuses to remove a swatch while any vehicle still links it.
func DeleteColor(svc colors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		colorID, err := validators.ParseURLParamUUID(chi.URLParam(r, "colorId"), "colorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), colorID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
