package models

import (
	"time"

	"github.com/google/uuid"
)

// OrphanObject records a bucket object whose compensating delete failed after
// a local write error. The cron worker retries these until the object is gone.
type OrphanObject struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GCSKey    string    `gorm:"column:gcs_key;not null;unique"`
	Attempts  int       `gorm:"column:intentos;not null;default:0"`
	LastError *string   `gorm:"column:ultimo_error"`
	CreatedAt time.Time `gorm:"column:creado_en;autoCreateTime"`
}

func (OrphanObject) TableName() string { return "objetos_huerfanos" }
