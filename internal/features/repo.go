package features

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grupomotriz/catalogo-backend/pkg/db/models"
)

// Repository wraps feature and caracteristica_vehiculo table access.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm handle required")
	}
	return &Repository{db: db}, nil
}

// WithTx returns a repository bound to the given transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, feature *models.Feature) error {
	return r.db.WithContext(ctx).Create(feature).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Feature, error) {
	var feature models.Feature
	if err := r.db.WithContext(ctx).First(&feature, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &feature, nil
}

func (r *Repository) FindVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *Repository) List(ctx context.Context) ([]models.Feature, error) {
	var features []models.Feature
	err := r.db.WithContext(ctx).
		Order("categoria ASC, nombre ASC").
		Find(&features).Error
	if err != nil {
		return nil, err
	}
	return features, nil
}

// FindExisting returns the subset of the given features that actually exist.
func (r *Repository) FindExisting(ctx context.Context, ids []uuid.UUID) ([]models.Feature, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var features []models.Feature
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&features).Error
	if err != nil {
		return nil, err
	}
	return features, nil
}

func (r *Repository) CountVehicleLinks(ctx context.Context, featureID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VehicleFeature{}).
		Where("caracteristica_id = ?", featureID).
		Count(&count).Error
	return count, err
}

func (r *Repository) ListVehicleFeatureIDs(ctx context.Context, vehicleID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.VehicleFeature{}).
		Where("vehiculo_id = ?", vehicleID).
		Pluck("caracteristica_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Repository) ListVehicleFeatures(ctx context.Context, vehicleID uuid.UUID) ([]models.Feature, error) {
	var features []models.Feature
	err := r.db.WithContext(ctx).
		Joins("JOIN caracteristica_vehiculo cv ON cv.caracteristica_id = caracteristicas.id").
		Where("cv.vehiculo_id = ?", vehicleID).
		Order("caracteristicas.categoria ASC, caracteristicas.nombre ASC").
		Find(&features).Error
	if err != nil {
		return nil, err
	}
	return features, nil
}

func (r *Repository) CreateVehicleFeatures(ctx context.Context, links []models.VehicleFeature) error {
	if len(links) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

func (r *Repository) DeleteVehicleFeatures(ctx context.Context, vehicleID uuid.UUID, featureIDs []uuid.UUID) error {
	if len(featureIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("vehiculo_id = ? AND caracteristica_id IN ?", vehicleID, featureIDs).
		Delete(&models.VehicleFeature{}).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Feature{}, "id = ?", id).Error
}
