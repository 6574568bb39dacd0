package vehicles

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/grupomotriz/catalogo-backend/internal/catalog"
	"github.com/grupomotriz/catalogo-backend/internal/media"
	"github.com/grupomotriz/catalogo-backend/pkg/db/models"
)

// ListFilters describe the supported filter knobs for the vehicle listing.
type ListFilters struct {
	BrandID *uuid.UUID
	Active  *bool
	Year    *int
}

// VehicleDTO is the list/detail view of a vehicle.
type VehicleDTO struct {
	ID          uuid.UUID             `json:"id"`
	BrandID     uuid.UUID             `json:"brand_id"`
	BrandName   string                `json:"brand_name,omitempty"`
	Model       string                `json:"model"`
	Year        int                   `json:"year"`
	Slug        string                `json:"slug"`
	Description *string               `json:"description,omitempty"`
	Price       decimal.Decimal       `json:"price"`
	Active      bool                  `json:"active"`
	Colors      []catalog.ColorLinkDTO `json:"colors,omitempty"`
	Images      []media.ImageDTO      `json:"images,omitempty"`
	Videos      []media.VideoDTO      `json:"videos,omitempty"`
	Features    []FeatureDTO          `json:"features,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// FeatureDTO is the embedded feature view on vehicle responses.
type FeatureDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
}

// ListResult wraps a vehicle page with its next cursor.
type ListResult struct {
	Vehicles   []VehicleDTO `json:"vehicles"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// NewVehicleDTO maps a vehicle row; preloaded associations are included when
// present.
func NewVehicleDTO(vehicle *models.Vehicle) *VehicleDTO {
	dto := &VehicleDTO{
		ID:          vehicle.ID,
		BrandID:     vehicle.BrandID,
		Model:       vehicle.Model,
		Year:        vehicle.Year,
		Slug:        vehicle.Slug,
		Description: vehicle.Description,
		Price:       vehicle.Price,
		Active:      vehicle.Active,
		CreatedAt:   vehicle.CreatedAt,
		UpdatedAt:   vehicle.UpdatedAt,
	}
	if vehicle.Brand != nil {
		dto.BrandName = vehicle.Brand.Name
	}
	for _, link := range vehicle.ColorLinks {
		dto.Colors = append(dto.Colors, catalog.NewColorLinkDTO(link))
	}
	for _, image := range vehicle.Images {
		dto.Images = append(dto.Images, media.NewImageDTO(image))
	}
	for _, video := range vehicle.Videos {
		dto.Videos = append(dto.Videos, media.NewVideoDTO(video))
	}
	for _, feature := range vehicle.Features {
		dto.Features = append(dto.Features, FeatureDTO{
			ID:       feature.ID,
			Name:     feature.Name,
			Category: feature.Category.String(),
		})
	}
	return dto
}
