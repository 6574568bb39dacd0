package vehicles

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grupomotriz/catalogo-backend/internal/brands"
	"github.com/grupomotriz/catalogo-backend/internal/catalog"
	"github.com/grupomotriz/catalogo-backend/pkg/db/models"
	pkgerrors "github.com/grupomotriz/catalogo-backend/pkg/errors"
	"github.com/grupomotriz/catalogo-backend/pkg/pagination"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Corolla 2024":        "corolla-2024",
		"  Año Nuevo  ":       "ano-nuevo",
		"GR Yaris!! (manual)": "gr-yaris-manual",
		"Überwagen":           "uberwagen",
	}
	for input, want := range cases {
		if got := Slugify(input); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", input, got, want)
		}
	}
}

func newVehicleTestService(t *testing.T) (Service, *stubCascadeDeleter, *Repository) {
	t.Helper()

	db := setupVehicleTestDB(t)
	repo := NewRepository(db)
	brandRepo, err := brands.NewRepository(db)
	require.NoError(t, err)

	cascades := &stubCascadeDeleter{result: &catalog.CascadeResult{DeletedMediaCount: 2}}
	svc, err := NewService(repo, brandRepo, cascades, nil)
	require.NoError(t, err)
	return svc, cascades, repo
}

func TestCreateVehicleBuildsSlug(t *testing.T) {
	svc, _, repo := newVehicleTestService(t)
	ctx := context.Background()
	brand := mustCreateBrand(t, repo.db)

	dto, err := svc.Create(ctx, CreateInput{
		BrandID: brand.ID,
		Model:   "Corolla Híbrido",
		Year:    2025,
		Price:   decimal.NewFromInt(520000),
		Active:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, "corolla-hibrido-2025", dto.Slug)
	assert.Equal(t, brand.ID, dto.BrandID)
	assert.Equal(t, brand.Name, dto.BrandName)
	assert.Equal(t, "Corolla Híbrido", dto.Model)
}

func TestCreateVehicleDisambiguatesDuplicateSlug(t *testing.T) {
	svc, _, repo := newVehicleTestService(t)
	ctx := context.Background()
	brand := mustCreateBrand(t, repo.db)

	input := CreateInput{
		BrandID: brand.ID,
		Model:   "Hilux",
		Year:    2024,
		Price:   decimal.NewFromInt(700000),
		Active:  true,
	}
	first, err := svc.Create(ctx, input)
	require.NoError(t, err)
	second, err := svc.Create(ctx, input)
	require.NoError(t, err)

	assert.Equal(t, "hilux-2024", first.Slug)
	assert.True(t, strings.HasPrefix(second.Slug, "hilux-2024-"))
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.Len(t, strings.TrimPrefix(second.Slug, "hilux-2024-"), 8)
}

func TestCreateVehicleRejectsUnknownBrand(t *testing.T) {
	svc, _, _ := newVehicleTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{
		BrandID: uuid.New(),
		Model:   "Fantasma",
		Year:    2024,
		Price:   decimal.NewFromInt(1),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidReference, typed.Code())
}

func TestUpdateVehicleAppliesOnlyProvidedFields(t *testing.T) {
	svc, _, repo := newVehicleTestService(t)
	ctx := context.Background()
	brand := mustCreateBrand(t, repo.db)
	vehicle := mustCreateVehicleRow(t, repo.db, brand.ID, "Rav4", 2023)

	newPrice := decimal.NewFromInt(815000)
	inactive := false
	dto, err := svc.Update(ctx, vehicle.ID, UpdateInput{
		Price:  &newPrice,
		Active: &inactive,
	})
	require.NoError(t, err)

	assert.Equal(t, "Rav4", dto.Model)
	assert.Equal(t, 2023, dto.Year)
	assert.False(t, dto.Active)
	assert.True(t, newPrice.Equal(dto.Price))
}

func TestUpdateVehicleNotFound(t *testing.T) {
	svc, _, _ := newVehicleTestService(t)

	_, err := svc.Update(context.Background(), uuid.New(), UpdateInput{})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListVehiclesPaginatesWithCursor(t *testing.T) {
	svc, _, repo := newVehicleTestService(t)
	ctx := context.Background()
	brand := mustCreateBrand(t, repo.db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	models := []string{"Primero", "Segundo", "Tercero"}
	for i, model := range models {
		row := mustCreateVehicleRow(t, repo.db, brand.ID, model, 2024)
		require.NoError(t, repo.db.Model(row).
			Update("creado_en", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	page1, err := svc.List(ctx, ListFilters{}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1.Vehicles, 2)
	assert.NotEmpty(t, page1.NextCursor)
	assert.Equal(t, "Tercero", page1.Vehicles[0].Model)
	assert.Equal(t, "Segundo", page1.Vehicles[1].Model)

	page2, err := svc.List(ctx, ListFilters{}, pagination.Params{Limit: 2, Cursor: page1.NextCursor})
	require.NoError(t, err)
	require.Len(t, page2.Vehicles, 1)
	assert.Empty(t, page2.NextCursor)
	assert.Equal(t, "Primero", page2.Vehicles[0].Model)
}

func TestListVehiclesFiltersByBrandAndYear(t *testing.T) {
	svc, _, repo := newVehicleTestService(t)
	ctx := context.Background()
	brandA := mustCreateBrand(t, repo.db)
	brandB := mustCreateBrand(t, repo.db)

	mustCreateVehicleRow(t, repo.db, brandA.ID, "Uno", 2023)
	mustCreateVehicleRow(t, repo.db, brandA.ID, "Dos", 2024)
	mustCreateVehicleRow(t, repo.db, brandB.ID, "Tres", 2024)

	year := 2024
	result, err := svc.List(ctx, ListFilters{BrandID: &brandA.ID, Year: &year}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, result.Vehicles, 1)
	assert.Equal(t, "Dos", result.Vehicles[0].Model)
}

func TestListVehiclesRejectsMalformedCursor(t *testing.T) {
	svc, _, _ := newVehicleTestService(t)

	_, err := svc.List(context.Background(), ListFilters{}, pagination.Params{Cursor: "no-es-base64!"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestGetBySlug(t *testing.T) {
	svc, _, repo := newVehicleTestService(t)
	ctx := context.Background()
	brand := mustCreateBrand(t, repo.db)
	vehicle := mustCreateVehicleRow(t, repo.db, brand.ID, "Camry", 2024)

	dto, err := svc.GetBySlug(ctx, vehicle.Slug)
	require.NoError(t, err)
	assert.Equal(t, vehicle.ID, dto.ID)

	_, err = svc.GetBySlug(ctx, "slug-inexistente")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestDeleteDelegatesToCascade(t *testing.T) {
	svc, cascades, repo := newVehicleTestService(t)
	ctx := context.Background()
	brand := mustCreateBrand(t, repo.db)
	vehicle := mustCreateVehicleRow(t, repo.db, brand.ID, "Tacoma", 2024)

	result, err := svc.Delete(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, vehicle.ID, cascades.calledWith)
	assert.Equal(t, 2, result.DeletedMediaCount)
}

type stubDetailCache struct {
	entries     map[uuid.UUID]VehicleDTO
	invalidated []uuid.UUID
}

func newStubDetailCache() *stubDetailCache {
	return &stubDetailCache{entries: map[uuid.UUID]VehicleDTO{}}
}

func (c *stubDetailCache) GetDetail(_ context.Context, id uuid.UUID, dest any) bool {
	dto, ok := c.entries[id]
	if !ok {
		return false
	}
	*dest.(*VehicleDTO) = dto
	return true
}

func (c *stubDetailCache) SetDetail(_ context.Context, id uuid.UUID, value any) {
	if dto, ok := value.(*VehicleDTO); ok {
		c.entries[id] = *dto
	}
}

func (c *stubDetailCache) Invalidate(_ context.Context, ids ...uuid.UUID) {
	c.invalidated = append(c.invalidated, ids...)
	for _, id := range ids {
		delete(c.entries, id)
	}
}

func TestGetServesCachedDetail(t *testing.T) {
	db := setupVehicleTestDB(t)
	repo := NewRepository(db)
	brandRepo, err := brands.NewRepository(db)
	require.NoError(t, err)
	cache := newStubDetailCache()
	svc, err := NewService(repo, brandRepo, &stubCascadeDeleter{}, cache)
	require.NoError(t, err)
	ctx := context.Background()

	brand := mustCreateBrand(t, db)
	vehicle := mustCreateVehicleRow(t, db, brand.ID, "Sienna", 2025)

	first, err := svc.Get(ctx, vehicle.ID)
	require.NoError(t, err)
	require.Contains(t, cache.entries, vehicle.ID)

	// Drop the row; a second read must still be answered from the cache.
	require.NoError(t, db.Delete(&models.Vehicle{}, "id = ?", vehicle.ID).Error)

	second, err := svc.Get(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Slug, second.Slug)
}

func TestUpdateInvalidatesCachedDetail(t *testing.T) {
	db := setupVehicleTestDB(t)
	repo := NewRepository(db)
	brandRepo, err := brands.NewRepository(db)
	require.NoError(t, err)
	cache := newStubDetailCache()
	svc, err := NewService(repo, brandRepo, &stubCascadeDeleter{}, cache)
	require.NoError(t, err)
	ctx := context.Background()

	brand := mustCreateBrand(t, db)
	vehicle := mustCreateVehicleRow(t, db, brand.ID, "Camry", 2024)

	_, err = svc.Get(ctx, vehicle.ID)
	require.NoError(t, err)

	year := 2026
	updated, err := svc.Update(ctx, vehicle.ID, UpdateInput{Year: &year})
	require.NoError(t, err)
	assert.Equal(t, 2026, updated.Year)
	assert.Contains(t, cache.invalidated, vehicle.ID)
}
