package vehicles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/grupomotriz/catalogo-backend/internal/catalog"
	"github.com/grupomotriz/catalogo-backend/pkg/db"
	"github.com/grupomotriz/catalogo-backend/pkg/db/models"
	pkgerrors "github.com/grupomotriz/catalogo-backend/pkg/errors"
	"github.com/grupomotriz/catalogo-backend/pkg/pagination"
)

// Service exposes vehicle CRUD. Deletion is delegated to the catalog cascade
// so remote media is confirmed gone before any local row disappears.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*VehicleDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*VehicleDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*VehicleDTO, error)
	GetBySlug(ctx context.Context, slug string) (*VehicleDTO, error)
	List(ctx context.Context, filters ListFilters, page pagination.Params) (*ListResult, error)
	Delete(ctx context.Context, id uuid.UUID) (*catalog.CascadeResult, error)
}

// CreateInput holds the validated payload to create a vehicle.
type CreateInput struct {
	BrandID     uuid.UUID
	Model       string
	Year        int
	Description *string
	Price       decimal.Decimal
	Active      bool
}

// UpdateInput holds optional mutation values for a vehicle.
type UpdateInput struct {
	BrandID     *uuid.UUID
	Model       *string
	Year        *int
	Description *string
	Price       *decimal.Decimal
	Active      *bool
}

type brandLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Brand, error)
}

type cascadeDeleter interface {
	DeleteVehicleCascade(ctx context.Context, vehicleID uuid.UUID) (*catalog.CascadeResult, error)
}

type detailCache interface {
	GetDetail(ctx context.Context, vehicleID uuid.UUID, dest any) bool
	SetDetail(ctx context.Context, vehicleID uuid.UUID, value any)
	Invalidate(ctx context.Context, vehicleIDs ...uuid.UUID)
}

type service struct {
	repo     *Repository
	brands   brandLoader
	cascades cascadeDeleter
	cache    detailCache
}

// NewService constructs the vehicle service. cache may be nil, which disables
// detail response caching.
func NewService(repo *Repository, brands brandLoader, cascades cascadeDeleter, cache detailCache) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vehicle repository required")
	}
	if brands == nil {
		return nil, fmt.Errorf("brand repository required")
	}
	if cascades == nil {
		return nil, fmt.Errorf("cascade deleter required")
	}
	return &service{repo: repo, brands: brands, cascades: cascades, cache: cache}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*VehicleDTO, error) {
	if err := s.ensureBrand(ctx, input.BrandID); err != nil {
		return nil, err
	}

	vehicle := &models.Vehicle{
		ID:          uuid.New(),
		BrandID:     input.BrandID,
		Model:       strings.TrimSpace(input.Model),
		Year:        input.Year,
		Slug:        Slugify(fmt.Sprintf("%s %d", input.Model, input.Year)),
		Description: input.Description,
		Price:       input.Price,
		Active:      input.Active,
	}

	if err := s.repo.Create(ctx, vehicle); err != nil {
		if db.IsUniqueViolation(err, "uq_vehiculos_slug") {
			// Same model+year already listed; disambiguate with a short id.
			vehicle.Slug = fmt.Sprintf("%s-%s", vehicle.Slug, vehicle.ID.String()[:8])
			if retryErr := s.repo.Create(ctx, vehicle); retryErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, retryErr, "insert vehicle")
			}
		} else {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert vehicle")
		}
	}

	detail, err := s.repo.GetDetail(ctx, vehicle.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle detail")
	}
	return NewVehicleDTO(detail), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*VehicleDTO, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}

	if input.BrandID != nil {
		if err := s.ensureBrand(ctx, *input.BrandID); err != nil {
			return nil, err
		}
		vehicle.BrandID = *input.BrandID
	}
	if input.Model != nil {
		vehicle.Model = strings.TrimSpace(*input.Model)
	}
	if input.Year != nil {
		vehicle.Year = *input.Year
	}
	if input.Description != nil {
		vehicle.Description = input.Description
	}
	if input.Price != nil {
		vehicle.Price = *input.Price
	}
	if input.Active != nil {
		vehicle.Active = *input.Active
	}

	if err := s.repo.Update(ctx, vehicle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vehicle")
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, vehicle.ID)
	}

	detail, err := s.repo.GetDetail(ctx, vehicle.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle detail")
	}
	return NewVehicleDTO(detail), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*VehicleDTO, error) {
	if s.cache != nil {
		var cached VehicleDTO
		if s.cache.GetDetail(ctx, id, &cached) {
			return &cached, nil
		}
	}

	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle detail")
	}

	dto := NewVehicleDTO(detail)
	if s.cache != nil {
		s.cache.SetDetail(ctx, id, dto)
	}
	return dto, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*VehicleDTO, error) {
	vehicle, err := s.repo.FindBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return s.Get(ctx, vehicle.ID)
}

func (s *service) List(ctx context.Context, filters ListFilters, page pagination.Params) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(page.Limit)

	rows, err := s.repo.List(ctx, filters, cursor, pagination.LimitWithBuffer(page.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}

	result := &ListResult{Vehicles: []VehicleDTO{}}
	for i := range rows {
		if i == limit {
			last := rows[limit-1]
			result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
				CreatedAt: last.CreatedAt,
				ID:        last.ID,
			})
			break
		}
		result.Vehicles = append(result.Vehicles, *NewVehicleDTO(&rows[i]))
	}
	return result, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) (*catalog.CascadeResult, error) {
	return s.cascades.DeleteVehicleCascade(ctx, id)
}

func (s *service) ensureBrand(ctx context.Context, brandID uuid.UUID) error {
	if _, err := s.brands.FindByID(ctx, brandID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeInvalidReference, "brand not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load brand")
	}
	return nil
}

// Slugify lowercases, strips accents commonly found in Spanish model names
// and joins words with hyphens.
func Slugify(value string) string {
	replacer := strings.NewReplacer(
		"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n", "ü", "u",
	)
	clean := replacer.Replace(strings.ToLower(strings.TrimSpace(value)))

	var b strings.Builder
	b.Grow(len(clean))
	lastHyphen := true
	for _, r := range clean {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
