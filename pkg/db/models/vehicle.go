package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Vehicle is the canonical catalog listing. Deleting a vehicle cascades to
// its color links, media and feature links; the cascade is orchestrated in
// the catalog service so remote objects are confirmed gone first.
type Vehicle struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BrandID     uuid.UUID       `gorm:"column:marca_id;type:uuid;not null"`
	Model       string          `gorm:"column:modelo;not null"`
	Year        int             `gorm:"column:anio;not null"`
	Slug        string          `gorm:"column:slug;not null;unique"`
	Description *string         `gorm:"column:descripcion"`
	Price       decimal.Decimal `gorm:"column:precio;type:numeric(12,2);not null"`
	Active      bool            `gorm:"column:activo;not null;default:true"`

	Brand      *Brand          `gorm:"foreignKey:BrandID"`
	ColorLinks []VehicleColor  `gorm:"foreignKey:VehicleID"`
	Images     []VehicleImage  `gorm:"foreignKey:VehicleID"`
	Videos     []VehicleVideo  `gorm:"foreignKey:VehicleID"`
	Features   []Feature       `gorm:"many2many:caracteristica_vehiculo;joinForeignKey:vehiculo_id;joinReferences:caracteristica_id"`

	CreatedAt time.Time `gorm:"column:creado_en;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:actualizado_en;autoUpdateTime"`
}

func (Vehicle) TableName() string { return "vehiculos" }
