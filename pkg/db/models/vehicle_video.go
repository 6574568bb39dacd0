package models

import (
	"time"

	"github.com/google/uuid"
)

// VehicleVideo is an uploaded video. Videos are always vehicle-scoped; the
// ordering and single-primary rules match generic images.
type VehicleVideo struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VehicleID uuid.UUID `gorm:"column:vehiculo_id;type:uuid;not null;index"`
	URL       string    `gorm:"column:url;not null"`
	GCSKey    string    `gorm:"column:gcs_key;not null;unique"`
	Order     int       `gorm:"column:orden;not null;default:0"`
	IsPrimary bool      `gorm:"column:es_principal;not null;default:false"`
	CreatedAt time.Time `gorm:"column:creado_en;autoCreateTime"`
}

func (VehicleVideo) TableName() string { return "videos_vehiculo" }
