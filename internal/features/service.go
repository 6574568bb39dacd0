package features

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grupomotriz/catalogo-backend/pkg/db"
	"github.com/grupomotriz/catalogo-backend/pkg/db/models"
	"github.com/grupomotriz/catalogo-backend/pkg/enums"
	pkgerrors "github.com/grupomotriz/catalogo-backend/pkg/errors"
)

// Service manages the global feature catalog and the feature set attached to
// each vehicle. SetVehicleFeatures replaces a vehicle's feature set with a
// minimal diff: rows for features already attached are left untouched.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*FeatureDTO, error)
	List(ctx context.Context) ([]FeatureDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetVehicleFeatures(ctx context.Context, vehicleID uuid.UUID, featureIDs []uuid.UUID) ([]FeatureDTO, error)
}

type CreateInput struct {
	Name     string
	Category string
}

// FeatureDTO is the API view of a feature tag.
type FeatureDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type detailInvalidator interface {
	Invalidate(ctx context.Context, vehicleIDs ...uuid.UUID)
}

type service struct {
	repo  *Repository
	tx    txRunner
	cache detailInvalidator
}

// NewService constructs the feature service. cache may be nil.
func NewService(repo *Repository, tx txRunner, cache detailInvalidator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("feature repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, cache: cache}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*FeatureDTO, error) {
	category, err := enums.ParseFeatureCategory(input.Category)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "feature name is required")
	}

	feature := &models.Feature{ID: uuid.New(), Name: name, Category: category}
	if err := s.repo.Create(ctx, feature); err != nil {
		if db.IsUniqueViolation(err, "uq_caracteristicas_nombre") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a feature with that name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert feature")
	}
	dto := newFeatureDTO(*feature)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]FeatureDTO, error) {
	features, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list features")
	}
	dtos := make([]FeatureDTO, len(features))
	for i, feature := range features {
		dtos[i] = newFeatureDTO(feature)
	}
	return dtos, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "feature not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load feature")
	}

	count, err := s.repo.CountVehicleLinks(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count feature usage")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeDependencyConflict,
			"feature is assigned to vehicles and cannot be deleted").
			WithDetails(map[string]any{"assigned_vehicles": count})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete feature")
	}
	return nil
}

func (s *service) SetVehicleFeatures(ctx context.Context, vehicleID uuid.UUID, featureIDs []uuid.UUID) ([]FeatureDTO, error) {
	if _, err := s.repo.FindVehicle(ctx, vehicleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}

	desired := dedupeIDs(featureIDs)

	known, err := s.repo.FindExisting(ctx, desired)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify features")
	}
	if missing := missingIDs(desired, known); len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidReference, "one or more features do not exist").
			WithDetails(map[string]any{"missing_feature_ids": missing})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		current, err := txRepo.ListVehicleFeatureIDs(ctx, vehicleID)
		if err != nil {
			return fmt.Errorf("load attached features: %w", err)
		}

		toRemove, toCreate := diffFeatureSets(current, desired)
		if len(toRemove) > 0 {
			if err := txRepo.DeleteVehicleFeatures(ctx, vehicleID, toRemove); err != nil {
				return fmt.Errorf("detach features: %w", err)
			}
		}
		if len(toCreate) > 0 {
			links := make([]models.VehicleFeature, len(toCreate))
			for i, featureID := range toCreate {
				links[i] = models.VehicleFeature{
					ID:        uuid.New(),
					VehicleID: vehicleID,
					FeatureID: featureID,
				}
			}
			if err := txRepo.CreateVehicleFeatures(ctx, links); err != nil {
				return fmt.Errorf("attach features: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace vehicle features")
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, vehicleID)
	}

	attached, err := s.repo.ListVehicleFeatures(ctx, vehicleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload vehicle features")
	}
	dtos := make([]FeatureDTO, len(attached))
	for i, feature := range attached {
		dtos[i] = newFeatureDTO(feature)
	}
	return dtos, nil
}

// diffFeatureSets computes the minimal add/remove sets between what a vehicle
// has and what the caller wants.
func diffFeatureSets(current, desired []uuid.UUID) (toRemove, toCreate []uuid.UUID) {
	desiredSet := make(map[uuid.UUID]struct{}, len(desired))
	for _, id := range desired {
		desiredSet[id] = struct{}{}
	}
	currentSet := make(map[uuid.UUID]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
		if _, ok := desiredSet[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range desired {
		if _, ok := currentSet[id]; !ok {
			toCreate = append(toCreate, id)
		}
	}
	return toRemove, toCreate
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missingIDs(desired []uuid.UUID, known []models.Feature) []uuid.UUID {
	knownSet := make(map[uuid.UUID]struct{}, len(known))
	for _, feature := range known {
		knownSet[feature.ID] = struct{}{}
	}
	var missing []uuid.UUID
	for _, id := range desired {
		if _, ok := knownSet[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func newFeatureDTO(feature models.Feature) FeatureDTO {
	return FeatureDTO{
		ID:       feature.ID,
		Name:     feature.Name,
		Category: feature.Category.String(),
	}
}
