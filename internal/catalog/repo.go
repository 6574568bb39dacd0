package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/grupomotriz/catalogo-backend/pkg/db/models"
)

// Repository covers the persistence surface of color reassignment and the
// vehicle cascade.
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

// FindVehicle loads the vehicle without associations.
func (r *Repository) FindVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// LockVehicle takes a row lock on the vehicle for the duration of the
// surrounding transaction, serializing concurrent reassignments per vehicle.
// SQLite (dev flag only) has no row locks; its writer lock covers the same
// guarantee.
func (r *Repository) LockVehicle(ctx context.Context, id uuid.UUID) error {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	var vehicle models.Vehicle
	return query.First(&vehicle, "id = ?", id).Error
}

// ListColorLinks returns the vehicle's color links ordered by display position.
func (r *Repository) ListColorLinks(ctx context.Context, vehicleID uuid.UUID) ([]models.VehicleColor, error) {
	var links []models.VehicleColor
	err := r.db.WithContext(ctx).
		Preload("Color").
		Where("vehiculo_id = ?", vehicleID).
		Order("orden ASC").
		Find(&links).
		Error
	return links, err
}

// ListActiveColors loads the active colors among the requested IDs.
func (r *Repository) ListActiveColors(ctx context.Context, ids []uuid.UUID) ([]models.Color, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var colors []models.Color
	err := r.db.WithContext(ctx).
		Where("id IN ? AND activo = ?", ids, true).
		Find(&colors).
		Error
	return colors, err
}

// CountImagesByLink counts images owned by the given color link.
func (r *Repository) CountImagesByLink(ctx context.Context, linkID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VehicleImage{}).
		Where("color_vehiculo_id = ?", linkID).
		Count(&count).
		Error
	return count, err
}

// CreateColorLinks inserts the new link rows.
func (r *Repository) CreateColorLinks(ctx context.Context, links []models.VehicleColor) error {
	if len(links) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

// DeleteColorLinks removes the given link rows.
func (r *Repository) DeleteColorLinks(ctx context.Context, linkIDs []uuid.UUID) error {
	if len(linkIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ?", linkIDs).
		Delete(&models.VehicleColor{}).
		Error
}

// ListVehicleImages returns every image of the vehicle, generic and
// color-scoped alike.
func (r *Repository) ListVehicleImages(ctx context.Context, vehicleID uuid.UUID) ([]models.VehicleImage, error) {
	var images []models.VehicleImage
	err := r.db.WithContext(ctx).
		Where("vehiculo_id = ?", vehicleID).
		Order("orden ASC").
		Find(&images).
		Error
	return images, err
}

// ListVehicleVideos returns every video of the vehicle.
func (r *Repository) ListVehicleVideos(ctx context.Context, vehicleID uuid.UUID) ([]models.VehicleVideo, error) {
	var videos []models.VehicleVideo
	err := r.db.WithContext(ctx).
		Where("vehiculo_id = ?", vehicleID).
		Order("orden ASC").
		Find(&videos).
		Error
	return videos, err
}

// RecordOrphans upserts ledger entries for bucket objects that still need a
// remote delete. Conflicting keys keep their attempt counter and get the
// latest cause.
func (r *Repository) RecordOrphans(ctx context.Context, gcsKeys []string, cause string) error {
	if len(gcsKeys) == 0 {
		return nil
	}
	orphans := make([]models.OrphanObject, len(gcsKeys))
	for i, key := range gcsKeys {
		orphans[i] = models.OrphanObject{
			ID:        uuid.New(),
			GCSKey:    key,
			LastError: &cause,
		}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "gcs_key"}},
			DoUpdates: clause.Assignments(map[string]any{
				"ultimo_error": cause,
			}),
		}).
		Create(&orphans).
		Error
}

// DeleteVehicleRows removes every local row owned by the vehicle, leaf first,
// finishing with the vehicle itself. Callers run this inside a transaction
// after all remote objects are confirmed gone.
func (r *Repository) DeleteVehicleRows(ctx context.Context, vehicleID uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("vehiculo_id = ?", vehicleID).Delete(&models.VehicleImage{}).Error; err != nil {
		return err
	}
	if err := tx.Where("vehiculo_id = ?", vehicleID).Delete(&models.VehicleVideo{}).Error; err != nil {
		return err
	}
	if err := tx.Where("vehiculo_id = ?", vehicleID).Delete(&models.VehicleFeature{}).Error; err != nil {
		return err
	}
	if err := tx.Where("vehiculo_id = ?", vehicleID).Delete(&models.VehicleColor{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", vehicleID).Delete(&models.Vehicle{}).Error
}
