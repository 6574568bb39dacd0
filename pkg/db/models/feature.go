package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/grupomotriz/catalogo-backend/pkg/enums"
)

// Feature is a global boolean tag (security, comfort, tech, ...).
type Feature struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string                `gorm:"column:nombre;not null;unique"`
	Category  enums.FeatureCategory `gorm:"column:categoria;not null"`
	CreatedAt time.Time             `gorm:"column:creado_en;autoCreateTime"`
}

func (Feature) TableName() string { return "caracteristicas" }
