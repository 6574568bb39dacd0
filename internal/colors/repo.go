package colors

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grupomotriz/catalogo-backend/pkg/db/models"
)

// Repository wraps color table access.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm handle required")
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Create(ctx context.Context, color *models.Color) error {
	return r.db.WithContext(ctx).Create(color).Error
}

func (r *Repository) Update(ctx context.Context, color *models.Color) error {
	return r.db.WithContext(ctx).Save(color).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Color, error) {
	var color models.Color
	if err := r.db.WithContext(ctx).First(&color, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &color, nil
}

func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.Color, error) {
	query := r.db.WithContext(ctx).Order("nombre ASC")
	if activeOnly {
		query = query.Where("activo = ?", true)
	}
	var colors []models.Color
	if err := query.Find(&colors).Error; err != nil {
		return nil, err
	}
	return colors, nil
}

// CountLinks returns how many color_vehiculo rows reference the color.
func (r *Repository) CountLinks(ctx context.Context, colorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VehicleColor{}).
		Where("color_id = ?", colorID).
		Count(&count).Error
	return count, err
}

// CountLinksByColor returns link counts for every referenced color in one pass.
func (r *Repository) CountLinksByColor(ctx context.Context) (map[uuid.UUID]int64, error) {
	type row struct {
		ColorID uuid.UUID `gorm:"column:color_id"`
		Total   int64     `gorm:"column:total"`
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.VehicleColor{}).
		Select("color_id, COUNT(*) AS total").
		Group("color_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.ColorID] = r.Total
	}
	return counts, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Color{}, "id = ?", id).Error
}
