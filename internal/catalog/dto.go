package catalog

import (
	"github.com/google/uuid"

	"github.com/grupomotriz/catalogo-backend/pkg/db/models"
)

// ColorLinkDTO is the API view of one color link.
type ColorLinkDTO struct {
	LinkID    uuid.UUID `json:"link_id"`
	ColorID   uuid.UUID `json:"color_id"`
	ColorName string    `json:"color_name,omitempty"`
	HexCode   string    `json:"hex_code,omitempty"`
	Order     int       `json:"order"`
}

// ReassignResult reports a committed color reassignment. Blocked requests
// never produce a result; they surface as a dependency-conflict error whose
// details carry the full blocked-color list.
type ReassignResult struct {
	Created []ColorLinkDTO `json:"created"`
	Removed []uuid.UUID    `json:"removed"`
	Links   []ColorLinkDTO `json:"links"`
}

// CascadeResult reports a completed vehicle cascade delete.
type CascadeResult struct {
	DeletedMediaCount int `json:"deleted_media_count"`
}

// NewColorLinkDTO maps a persisted link row.
func NewColorLinkDTO(link models.VehicleColor) ColorLinkDTO {
	dto := ColorLinkDTO{
		LinkID:  link.ID,
		ColorID: link.ColorID,
		Order:   link.Order,
	}
	if link.Color != nil {
		dto.ColorName = link.Color.Name
		dto.HexCode = link.Color.HexCode
	}
	return dto
}
