package media

import (
	"time"

	"github.com/google/uuid"

	"github.com/grupomotriz/catalogo-backend/pkg/db/models"
)

// ImageDTO is the API view of an image row.
type ImageDTO struct {
	ID          uuid.UUID  `json:"id"`
	VehicleID   uuid.UUID  `json:"vehicle_id"`
	ColorLinkID *uuid.UUID `json:"color_link_id,omitempty"`
	URL         string     `json:"url"`
	Order       int        `json:"order"`
	IsPrimary   bool       `json:"is_primary"`
	CreatedAt   time.Time  `json:"created_at"`
}

// VideoDTO is the API view of a video row.
type VideoDTO struct {
	ID        uuid.UUID `json:"id"`
	VehicleID uuid.UUID `json:"vehicle_id"`
	URL       string    `json:"url"`
	Order     int       `json:"order"`
	IsPrimary bool      `json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}

// NewImageDTO maps a persisted image row.
func NewImageDTO(image models.VehicleImage) ImageDTO {
	return ImageDTO{
		ID:          image.ID,
		VehicleID:   image.VehicleID,
		ColorLinkID: image.ColorLinkID,
		URL:         image.URL,
		Order:       image.Order,
		IsPrimary:   image.IsPrimary,
		CreatedAt:   image.CreatedAt,
	}
}

// NewVideoDTO maps a persisted video row.
func NewVideoDTO(video models.VehicleVideo) VideoDTO {
	return VideoDTO{
		ID:        video.ID,
		VehicleID: video.VehicleID,
		URL:       video.URL,
		Order:     video.Order,
		IsPrimary: video.IsPrimary,
		CreatedAt: video.CreatedAt,
	}
}
