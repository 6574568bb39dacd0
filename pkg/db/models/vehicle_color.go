package models

import (
	"time"

	"github.com/google/uuid"
)

// VehicleColor joins a vehicle with a global color and carries the display
// position. Rows are created and destroyed only through the catalog
// reassignment diff, never ad hoc. A link that owns images must not be
// deleted until those images are removed.
type VehicleColor struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VehicleID uuid.UUID `gorm:"column:vehiculo_id;type:uuid;not null;uniqueIndex:uq_color_vehiculo,priority:1"`
	ColorID   uuid.UUID `gorm:"column:color_id;type:uuid;not null;uniqueIndex:uq_color_vehiculo,priority:2"`
	Order     int       `gorm:"column:orden;not null;default:0"`

	Color  *Color         `gorm:"foreignKey:ColorID"`
	Images []VehicleImage `gorm:"foreignKey:ColorLinkID"`

	CreatedAt time.Time `gorm:"column:creado_en;autoCreateTime"`
}

func (VehicleColor) TableName() string { return "color_vehiculo" }
