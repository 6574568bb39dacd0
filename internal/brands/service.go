package brands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grupomotriz/catalogo-backend/pkg/db"
	"github.com/grupomotriz/catalogo-backend/pkg/db/models"
	pkgerrors "github.com/grupomotriz/catalogo-backend/pkg/errors"
)

// Service manages the brand roster. A brand with vehicles cannot be deleted.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*BrandDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*BrandDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*BrandDTO, error)
	List(ctx context.Context, activeOnly bool) ([]BrandDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CreateInput struct {
	Name   string
	Active bool
}

type UpdateInput struct {
	Name   *string
	Active *bool
}

// BrandDTO is the API view of a brand.
type BrandDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Active       bool      `json:"active"`
	VehicleCount int64     `json:"vehicle_count"`
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("brand repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*BrandDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand name is required")
	}
	brand := &models.Brand{ID: uuid.New(), Name: name, Active: input.Active}
	if err := s.repo.Create(ctx, brand); err != nil {
		if db.IsUniqueViolation(err, "uq_marcas_nombre") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a brand with that name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert brand")
	}
	return s.Get(ctx, brand.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*BrandDTO, error) {
	brand, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load brand")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand name is required")
		}
		brand.Name = name
	}
	if input.Active != nil {
		brand.Active = *input.Active
	}

	if err := s.repo.Update(ctx, brand); err != nil {
		if db.IsUniqueViolation(err, "uq_marcas_nombre") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a brand with that name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update brand")
	}
	return s.Get(ctx, brand.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*BrandDTO, error) {
	brand, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load brand")
	}
	count, err := s.repo.CountVehicles(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count brand vehicles")
	}
	dto := newBrandDTO(*brand, count)
	return &dto, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]BrandDTO, error) {
	brands, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list brands")
	}
	counts, err := s.repo.CountVehiclesByBrand(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count brand vehicles")
	}
	dtos := make([]BrandDTO, len(brands))
	for i, brand := range brands {
		dtos[i] = newBrandDTO(brand, counts[brand.ID])
	}
	return dtos, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load brand")
	}

	count, err := s.repo.CountVehicles(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count brand vehicles")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeDependencyConflict,
			"brand still has vehicles and cannot be deleted").
			WithDetails(map[string]any{"vehicle_count": count})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.New(pkgerrors.CodeDependencyConflict,
				"brand still has vehicles and cannot be deleted")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete brand")
	}
	return nil
}

func newBrandDTO(brand models.Brand, count int64) BrandDTO {
	return BrandDTO{
		ID:           brand.ID,
		Name:         brand.Name,
		Active:       brand.Active,
		VehicleCount: count,
	}
}
