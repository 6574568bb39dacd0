package controllers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/grupomotriz/catalogo-backend/api/responses"
	"github.com/grupomotriz/catalogo-backend/api/validators"
	"github.com/grupomotriz/catalogo-backend/internal/media"
	pkgerrors "github.com/grupomotriz/catalogo-backend/pkg/errors"
	"github.com/grupomotriz/catalogo-backend/pkg/logger"
)

// UploadVehicleImage accepts a multipart upload. Optional form fields:
// color_link_id scopes the image to a color bucket, set_primary promotes it.
func UploadVehicleImage(svc media.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID, err := validators.ParseURLParamUUID(chi.URLParam(r, "vehicleId"), "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := media.UploadImageInput{}
		fileName, mimeType, data, err := readUploadedFile(r, maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.FileName = fileName
		input.MimeType = mimeType
		input.Data = data

		if raw := strings.TrimSpace(r.FormValue("color_link_id")); raw != "" {
			linkID, err := validators.ParseURLParamUUID(raw, "color_link_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.ColorLinkID = &linkID
		}
		input.SetPrimary = parseFormBool(r, "set_primary")

		dto, err := svc.UploadImage(r.Context(), vehicleID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func UploadVehicleVideo(svc media.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID, err := validators.ParseURLParamUUID(chi.URLParam(r, "vehicleId"), "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fileName, mimeType, data, err := readUploadedFile(r, maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UploadVideo(r.Context(), vehicleID, media.UploadVideoInput{
			FileName:   fileName,
			MimeType:   mimeType,
			Data:       data,
			SetPrimary: parseFormBool(r, "set_primary"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func ListVehicleImages(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID, err := validators.ParseURLParamUUID(chi.URLParam(r, "vehicleId"), "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		colorLinkID, err := validators.ParseQueryUUID(r, "color_link_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		images, err := svc.ListImages(r.Context(), vehicleID, colorLinkID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, images)
	}
}

func ListVehicleVideos(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID, err := validators.ParseURLParamUUID(chi.URLParam(r, "vehicleId"), "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		videos, err := svc.ListVideos(r.Context(), vehicleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, videos)
	}
}

// DeleteVehicleImage removes the bucket object first; the local row survives
// any remote failure so the catalog never references a file it cannot prove
// was deleted.
func DeleteVehicleImage(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		imageID, err := validators.ParseURLParamUUID(chi.URLParam(r, "imageId"), "imageId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteImage(r.Context(), imageID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func DeleteVehicleVideo(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID, err := validators.ParseURLParamUUID(chi.URLParam(r, "videoId"), "videoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteVideo(r.Context(), videoID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func readUploadedFile(r *http.Request, maxUploadBytes int64) (name, mimeType string, data []byte, err error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", "", nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "expected multipart form upload")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file field is required")
	}
	defer file.Close()

	data, err = io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return "", "", nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	return header.Filename, header.Header.Get("Content-Type"), data, nil
}

func parseFormBool(r *http.Request, key string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(r.FormValue(key)))
	if err != nil {
		return false
	}
	return value
}
