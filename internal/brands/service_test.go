package brands

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/grupomotriz/catalogo-backend/pkg/db/models"
	pkgerrors "github.com/grupomotriz/catalogo-backend/pkg/errors"
)

func setupBrandTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS marcas (
  id TEXT PRIMARY KEY,
  nombre TEXT NOT NULL UNIQUE,
  activo INTEGER NOT NULL DEFAULT 1,
  creado_en DATETIME,
  actualizado_en DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS vehiculos (
  id TEXT PRIMARY KEY,
  marca_id TEXT NOT NULL,
  modelo TEXT NOT NULL,
  anio INTEGER NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  descripcion TEXT,
  precio NUMERIC NOT NULL DEFAULT 0,
  activo INTEGER NOT NULL DEFAULT 1,
  creado_en DATETIME,
  actualizado_en DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newBrandTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := setupBrandTestDB(t)
	repo, err := NewRepository(db)
	require.NoError(t, err)
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, db
}

func TestCreateBrand(t *testing.T) {
	svc, _ := newBrandTestService(t)

	dto, err := svc.Create(context.Background(), CreateInput{Name: "  Toyota  ", Active: true})
	require.NoError(t, err)
	assert.Equal(t, "Toyota", dto.Name)
	assert.True(t, dto.Active)
	assert.Zero(t, dto.VehicleCount)
}

func TestCreateBrandDuplicateName(t *testing.T) {
	svc, _ := newBrandTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "Nissan", Active: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: "Nissan", Active: true})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestCreateBrandEmptyName(t *testing.T) {
	svc, _ := newBrandTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{Name: "   "})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestDeleteBrandBlockedWhileVehiclesExist(t *testing.T) {
	svc, db := newBrandTestService(t)
	ctx := context.Background()

	dto, err := svc.Create(ctx, CreateInput{Name: "Mazda", Active: true})
	require.NoError(t, err)

	vehicle := &models.Vehicle{
		ID:      uuid.New(),
		BrandID: dto.ID,
		Model:   "CX-5",
		Year:    2024,
		Slug:    "cx-5-2024",
		Price:   decimal.NewFromInt(600000),
		Active:  true,
	}
	require.NoError(t, db.Create(vehicle).Error)

	err = svc.Delete(ctx, dto.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependencyConflict, typed.Code())

	require.NoError(t, db.Delete(vehicle).Error)
	require.NoError(t, svc.Delete(ctx, dto.ID))
}

func TestListBrandsCountsVehicles(t *testing.T) {
	svc, db := newBrandTestService(t)
	ctx := context.Background()

	withCars, err := svc.Create(ctx, CreateInput{Name: "Honda", Active: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: "Retirada", Active: false})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.Vehicle{
			ID:      uuid.New(),
			BrandID: withCars.ID,
			Model:   fmt.Sprintf("Civic %d", i),
			Year:    2024,
			Slug:    fmt.Sprintf("civic-%d", i),
			Price:   decimal.NewFromInt(500000),
			Active:  true,
		}).Error)
	}

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Honda", active[0].Name)
	assert.Equal(t, int64(3), active[0].VehicleCount)
}

func TestUpdateBrandNotFound(t *testing.T) {
	svc, _ := newBrandTestService(t)

	name := "Nueva"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateInput{Name: &name})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
