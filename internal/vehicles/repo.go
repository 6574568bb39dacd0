package vehicles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grupomotriz/catalogo-backend/pkg/db/models"
	"github.com/grupomotriz/catalogo-backend/pkg/pagination"
)

// Repository covers vehicle persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new vehicle row.
func (r *Repository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

// Update saves the vehicle row.
func (r *Repository) Update(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Save(vehicle).Error
}

// FindByID loads the vehicle without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// FindBySlug loads the vehicle by its public slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// GetDetail loads the vehicle with brand, ordered color links, media and
// features preloaded.
func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).
		Preload("Brand").
		Preload("ColorLinks", func(db *gorm.DB) *gorm.DB {
			return db.Order("orden ASC")
		}).
		Preload("ColorLinks.Color").
		Preload("ColorLinks.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("orden ASC")
		}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Where("color_vehiculo_id IS NULL").Order("orden ASC")
		}).
		Preload("Videos", func(db *gorm.DB) *gorm.DB {
			return db.Order("orden ASC")
		}).
		Preload("Features").
		First(&vehicle, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// List pages through vehicles newest first using the shared cursor format.
func (r *Repository) List(ctx context.Context, filters ListFilters, cursor *pagination.Cursor, limit int) ([]models.Vehicle, error) {
	query := r.db.WithContext(ctx).
		Preload("Brand").
		Order("creado_en DESC, id DESC").
		Limit(limit)

	if filters.BrandID != nil {
		query = query.Where("marca_id = ?", *filters.BrandID)
	}
	if filters.Active != nil {
		query = query.Where("activo = ?", *filters.Active)
	}
	if filters.Year != nil {
		query = query.Where("anio = ?", *filters.Year)
	}
	if cursor != nil {
		query = query.Where(
			"(creado_en < ?) OR (creado_en = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Vehicle
	err := query.Find(&rows).Error
	return rows, err
}
