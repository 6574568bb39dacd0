package models

import (
	"time"

	"github.com/google/uuid"
)

// VehicleImage is an uploaded image backed by an object in the media bucket.
// ColorLinkID is nil for generic vehicle images and set for color-variant
// images; Order and IsPrimary are scoped to that distinction. Rows are only
// deleted through the media lifecycle service so the remote object is
// confirmed gone first.
type VehicleImage struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VehicleID   uuid.UUID  `gorm:"column:vehiculo_id;type:uuid;not null;index"`
	ColorLinkID *uuid.UUID `gorm:"column:color_vehiculo_id;type:uuid;index"`
	URL         string     `gorm:"column:url;not null"`
	GCSKey      string     `gorm:"column:gcs_key;not null;unique"`
	Order       int        `gorm:"column:orden;not null;default:0"`
	IsPrimary   bool       `gorm:"column:es_principal;not null;default:false"`
	CreatedAt   time.Time  `gorm:"column:creado_en;autoCreateTime"`
}

func (VehicleImage) TableName() string { return "imagenes_vehiculo" }

// InColorScope reports whether the image belongs to a color-variant bucket.
func (i VehicleImage) InColorScope() bool {
	return i.ColorLinkID != nil
}
