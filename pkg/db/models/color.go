package models

import (
	"time"

	"github.com/google/uuid"
)

// Color is a global reusable swatch shared across vehicles. A color cannot be
// deleted while any color_vehiculo row references it.
type Color struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:nombre;not null;unique"`
	HexCode   string    `gorm:"column:codigo_hex;not null"`
	Active    bool      `gorm:"column:activo;not null;default:true"`
	CreatedAt time.Time `gorm:"column:creado_en;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:actualizado_en;autoUpdateTime"`
}

func (Color) TableName() string { return "colores" }
