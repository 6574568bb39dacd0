package colors

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grupomotriz/catalogo-backend/pkg/db"
	"github.com/grupomotriz/catalogo-backend/pkg/db/models"
	pkgerrors "github.com/grupomotriz/catalogo-backend/pkg/errors"
)

var hexCodePattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Service exposes global color swatch management. Colors are shared across
// vehicles; deleting one is refused while any vehicle still links it.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ColorDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ColorDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ColorDTO, error)
	List(ctx context.Context, activeOnly bool) ([]ColorDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateInput holds the validated payload to create a color.
type CreateInput struct {
	Name    string
	HexCode string
	Active  bool
}

// UpdateInput holds optional mutation values for a color.
type UpdateInput struct {
	Name    *string
	HexCode *string
	Active  *bool
}

// ColorDTO is the API view of a color swatch.
type ColorDTO struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	HexCode string    `json:"hex_code"`
	Active  bool      `json:"active"`
	InUseBy int64     `json:"in_use_by"`
}

type service struct {
	repo *Repository
}

// NewService constructs the color service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("color repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ColorDTO, error) {
	if err := validateHexCode(input.HexCode); err != nil {
		return nil, err
	}

	color := &models.Color{
		ID:      uuid.New(),
		Name:    strings.TrimSpace(input.Name),
		HexCode: strings.ToUpper(strings.TrimSpace(input.HexCode)),
		Active:  input.Active,
	}
	if err := s.repo.Create(ctx, color); err != nil {
		if db.IsUniqueViolation(err, "uq_colores_nombre") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a color with that name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert color")
	}
	return s.Get(ctx, color.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ColorDTO, error) {
	color, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "color not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load color")
	}

	if input.Name != nil {
		color.Name = strings.TrimSpace(*input.Name)
	}
	if input.HexCode != nil {
		if err := validateHexCode(*input.HexCode); err != nil {
			return nil, err
		}
		color.HexCode = strings.ToUpper(strings.TrimSpace(*input.HexCode))
	}
	if input.Active != nil {
		color.Active = *input.Active
	}

	if err := s.repo.Update(ctx, color); err != nil {
		if db.IsUniqueViolation(err, "uq_colores_nombre") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a color with that name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update color")
	}
	return s.Get(ctx, color.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ColorDTO, error) {
	color, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "color not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load color")
	}
	usage, err := s.repo.CountLinks(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count color usage")
	}
	dto := newColorDTO(*color, usage)
	return &dto, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]ColorDTO, error) {
	colors, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list colors")
	}
	usage, err := s.repo.CountLinksByColor(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count color usage")
	}
	dtos := make([]ColorDTO, len(colors))
	for i, color := range colors {
		dtos[i] = newColorDTO(color, usage[color.ID])
	}
	return dtos, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "color not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load color")
	}

	usage, err := s.repo.CountLinks(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count color usage")
	}
	if usage > 0 {
		return pkgerrors.New(pkgerrors.CodeDependencyConflict,
			"color is assigned to vehicles and cannot be deleted").
			WithDetails(map[string]any{"assigned_vehicles": usage})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.New(pkgerrors.CodeDependencyConflict,
				"color is assigned to vehicles and cannot be deleted")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete color")
	}
	return nil
}

func validateHexCode(value string) error {
	if !hexCodePattern.MatchString(strings.TrimSpace(value)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "hex_code must look like #RRGGBB")
	}
	return nil
}

func newColorDTO(color models.Color, usage int64) ColorDTO {
	return ColorDTO{
		ID:      color.ID,
		Name:    color.Name,
		HexCode: color.HexCode,
		Active:  color.Active,
		InUseBy: usage,
	}
}
