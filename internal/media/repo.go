package media

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/grupomotriz/catalogo-backend/pkg/db/models"
)

// Repository covers media rows plus the orphan-object ledger.
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

// FindVehicle loads the owning vehicle.
func (r *Repository) FindVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// FindColorLink loads a color link row.
func (r *Repository) FindColorLink(ctx context.Context, id uuid.UUID) (*models.VehicleColor, error) {
	var link models.VehicleColor
	if err := r.db.WithContext(ctx).First(&link, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// LockVehicle serializes media mutations per vehicle, matching the isolation
// the reassignment path uses. SQLite (dev flag only) relies on its writer lock.
func (r *Repository) LockVehicle(ctx context.Context, id uuid.UUID) error {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	var vehicle models.Vehicle
	return query.First(&vehicle, "id = ?", id).Error
}

// CreateImage inserts the image row.
func (r *Repository) CreateImage(ctx context.Context, image *models.VehicleImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

// CreateVideo inserts the video row.
func (r *Repository) CreateVideo(ctx context.Context, video *models.VehicleVideo) error {
	return r.db.WithContext(ctx).Create(video).Error
}

// FindImage loads an image row.
func (r *Repository) FindImage(ctx context.Context, id uuid.UUID) (*models.VehicleImage, error) {
	var image models.VehicleImage
	if err := r.db.WithContext(ctx).First(&image, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// FindVideo loads a video row.
func (r *Repository) FindVideo(ctx context.Context, id uuid.UUID) (*models.VehicleVideo, error) {
	var video models.VehicleVideo
	if err := r.db.WithContext(ctx).First(&video, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

// FindImageByGCSKey resolves an image from its bucket key.
func (r *Repository) FindImageByGCSKey(ctx context.Context, gcsKey string) (*models.VehicleImage, error) {
	var image models.VehicleImage
	if err := r.db.WithContext(ctx).First(&image, "gcs_key = ?", gcsKey).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// FindVideoByGCSKey resolves a video from its bucket key.
func (r *Repository) FindVideoByGCSKey(ctx context.Context, gcsKey string) (*models.VehicleVideo, error) {
	var video models.VehicleVideo
	if err := r.db.WithContext(ctx).First(&video, "gcs_key = ?", gcsKey).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

// ListImagesInScope returns the images of one ordering scope: the vehicle's
// generic gallery when linkID is nil, otherwise the color bucket.
func (r *Repository) ListImagesInScope(ctx context.Context, vehicleID uuid.UUID, linkID *uuid.UUID) ([]models.VehicleImage, error) {
	query := r.db.WithContext(ctx).Where("vehiculo_id = ?", vehicleID)
	if linkID == nil {
		query = query.Where("color_vehiculo_id IS NULL")
	} else {
		query = query.Where("color_vehiculo_id = ?", *linkID)
	}
	var images []models.VehicleImage
	err := query.Order("orden ASC").Find(&images).Error
	return images, err
}

// ListVideos returns the vehicle's videos in display order.
func (r *Repository) ListVideos(ctx context.Context, vehicleID uuid.UUID) ([]models.VehicleVideo, error) {
	var videos []models.VehicleVideo
	err := r.db.WithContext(ctx).
		Where("vehiculo_id = ?", vehicleID).
		Order("orden ASC").
		Find(&videos).
		Error
	return videos, err
}

// DeleteImage removes the image row.
func (r *Repository) DeleteImage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.VehicleImage{}).Error
}

// DeleteVideo removes the video row.
func (r *Repository) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.VehicleVideo{}).Error
}

// DemotePrimaryImages clears es_principal across a scope before a new holder
// is promoted, keeping the single-primary invariant enforced up front.
func (r *Repository) DemotePrimaryImages(ctx context.Context, vehicleID uuid.UUID, linkID *uuid.UUID) error {
	query := r.db.WithContext(ctx).
		Model(&models.VehicleImage{}).
		Where("vehiculo_id = ? AND es_principal = ?", vehicleID, true)
	if linkID == nil {
		query = query.Where("color_vehiculo_id IS NULL")
	} else {
		query = query.Where("color_vehiculo_id = ?", *linkID)
	}
	return query.Update("es_principal", false).Error
}

// PromoteImage marks the image as the scope's primary.
func (r *Repository) PromoteImage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.VehicleImage{}).
		Where("id = ?", id).
		Update("es_principal", true).
		Error
}

// DemotePrimaryVideos clears es_principal across the vehicle's videos.
func (r *Repository) DemotePrimaryVideos(ctx context.Context, vehicleID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.VehicleVideo{}).
		Where("vehiculo_id = ? AND es_principal = ?", vehicleID, true).
		Update("es_principal", false).
		Error
}

// PromoteVideo marks the video as the vehicle's primary.
func (r *Repository) PromoteVideo(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.VehicleVideo{}).
		Where("id = ?", id).
		Update("es_principal", true).
		Error
}

// RecordOrphan upserts a ledger entry for a bucket object whose compensating
// delete failed. Conflicts bump the attempt counter and keep the latest error.
func (r *Repository) RecordOrphan(ctx context.Context, gcsKey, cause string) error {
	orphan := models.OrphanObject{
		ID:        uuid.New(),
		GCSKey:    gcsKey,
		Attempts:  0,
		LastError: &cause,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "gcs_key"}},
			DoUpdates: clause.Assignments(map[string]any{
				"ultimo_error": cause,
			}),
		}).
		Create(&orphan).
		Error
}

// DeleteOrphanByKey clears the ledger entry once the object is confirmed gone.
func (r *Repository) DeleteOrphanByKey(ctx context.Context, gcsKey string) error {
	return r.db.WithContext(ctx).
		Where("gcs_key = ?", gcsKey).
		Delete(&models.OrphanObject{}).
		Error
}

// ListOrphans returns ledger entries still under the attempt cap, oldest first.
func (r *Repository) ListOrphans(ctx context.Context, maxAttempts, limit int) ([]models.OrphanObject, error) {
	var orphans []models.OrphanObject
	err := r.db.WithContext(ctx).
		Where("intentos < ?", maxAttempts).
		Order("creado_en ASC").
		Limit(limit).
		Find(&orphans).Error
	if err != nil {
		return nil, err
	}
	return orphans, nil
}

// MarkOrphanAttempt bumps the retry counter and stores the latest failure.
func (r *Repository) MarkOrphanAttempt(ctx context.Context, id uuid.UUID, cause string) error {
	return r.db.WithContext(ctx).
		Model(&models.OrphanObject{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"intentos":     gorm.Expr("intentos + 1"),
			"ultimo_error": cause,
		}).
		Error
}
