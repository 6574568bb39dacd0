package models

import (
	"time"

	"github.com/google/uuid"
)

// VehicleFeature is the plain join between vehicles and features.
type VehicleFeature struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VehicleID uuid.UUID `gorm:"column:vehiculo_id;type:uuid;not null;uniqueIndex:uq_caracteristica_vehiculo,priority:1"`
	FeatureID uuid.UUID `gorm:"column:caracteristica_id;type:uuid;not null;uniqueIndex:uq_caracteristica_vehiculo,priority:2"`
	CreatedAt time.Time `gorm:"column:creado_en;autoCreateTime"`
}

func (VehicleFeature) TableName() string { return "caracteristica_vehiculo" }
