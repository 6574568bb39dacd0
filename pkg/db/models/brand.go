package models

import (
	"time"

	"github.com/google/uuid"
)

// Brand is a vehicle manufacturer entry.
type Brand struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:nombre;not null;unique"`
	Active    bool      `gorm:"column:activo;not null;default:true"`
	CreatedAt time.Time `gorm:"column:creado_en;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:actualizado_en;autoUpdateTime"`
}

func (Brand) TableName() string { return "marcas" }
