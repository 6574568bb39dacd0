package brands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grupomotriz/catalogo-backend/pkg/db/models"
)

// Repository wraps brand table access.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm handle required")
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Create(ctx context.Context, brand *models.Brand) error {
	return r.db.WithContext(ctx).Create(brand).Error
}

func (r *Repository) Update(ctx context.Context, brand *models.Brand) error {
	return r.db.WithContext(ctx).Save(brand).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).First(&brand, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.Brand, error) {
	query := r.db.WithContext(ctx).Order("nombre ASC")
	if activeOnly {
		query = query.Where("activo = ?", true)
	}
	var brands []models.Brand
	if err := query.Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *Repository) CountVehicles(ctx context.Context, brandID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("marca_id = ?", brandID).
		Count(&count).Error
	return count, err
}

func (r *Repository) CountVehiclesByBrand(ctx context.Context) (map[uuid.UUID]int64, error) {
	type row struct {
		BrandID uuid.UUID `gorm:"column:marca_id"`
		Total   int64     `gorm:"column:total"`
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Select("marca_id, COUNT(*) AS total").
		Group("marca_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.BrandID] = r.Total
	}
	return counts, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Brand{}, "id = ?", id).Error
}
