package vehicles

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/grupomotriz/catalogo-backend/internal/catalog"
	"github.com/grupomotriz/catalogo-backend/pkg/db/models"
)

func setupVehicleTestDB(t *testing.T) *gorm.DB {
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
		`CREATE TABLE IF NOT EXISTS colores (
  id TEXT PRIMARY KEY,
  nombre TEXT NOT NULL UNIQUE,
  codigo_hex TEXT NOT NULL,
  activo INTEGER NOT NULL DEFAULT 1,
  creado_en DATETIME,
  actualizado_en DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS color_vehiculo (
  id TEXT PRIMARY KEY,
  vehiculo_id TEXT NOT NULL,
  color_id TEXT NOT NULL,
  orden INTEGER NOT NULL DEFAULT 0,
  creado_en DATETIME,
  UNIQUE (vehiculo_id, color_id),
  UNIQUE (vehiculo_id, orden)
);`,
		`CREATE TABLE IF NOT EXISTS imagenes_vehiculo (
  id TEXT PRIMARY KEY,
  vehiculo_id TEXT NOT NULL,
  color_vehiculo_id TEXT,
  url TEXT NOT NULL,
  gcs_key TEXT NOT NULL UNIQUE,
  orden INTEGER NOT NULL DEFAULT 0,
  es_principal INTEGER NOT NULL DEFAULT 0,
  creado_en DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS videos_vehiculo (
  id TEXT PRIMARY KEY,
  vehiculo_id TEXT NOT NULL,
  url TEXT NOT NULL,
  gcs_key TEXT NOT NULL UNIQUE,
  orden INTEGER NOT NULL DEFAULT 0,
  es_principal INTEGER NOT NULL DEFAULT 0,
  creado_en DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS caracteristicas (
  id TEXT PRIMARY KEY,
  nombre TEXT NOT NULL UNIQUE,
  categoria TEXT NOT NULL,
  creado_en DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS caracteristica_vehiculo (
  id TEXT PRIMARY KEY,
  vehiculo_id TEXT NOT NULL,
  caracteristica_id TEXT NOT NULL,
  creado_en DATETIME,
  UNIQUE (vehiculo_id, caracteristica_id)
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func mustCreateBrand(t *testing.T, db *gorm.DB) *models.Brand {
	t.Helper()
	brand := &models.Brand{ID: uuid.New(), Name: "Marca " + uuid.NewString(), Active: true}
	require.NoError(t, db.Create(brand).Error)
	return brand
}

func mustCreateVehicleRow(t *testing.T, db *gorm.DB, brandID uuid.UUID, model string, year int) *models.Vehicle {
	t.Helper()
	vehicle := &models.Vehicle{
		ID:      uuid.New(),
		BrandID: brandID,
		Model:   model,
		Year:    year,
		Slug:    Slugify(fmt.Sprintf("%s %d", model, year)) + "-" + uuid.NewString()[:8],
		Price:   decimal.NewFromInt(420000),
		Active:  true,
	}
	require.NoError(t, db.Create(vehicle).Error)
	return vehicle
}

type stubCascadeDeleter struct {
	calledWith uuid.UUID
	result     *catalog.CascadeResult
	err        error
}

func (s *stubCascadeDeleter) DeleteVehicleCascade(_ context.Context, vehicleID uuid.UUID) (*catalog.CascadeResult, error) {
	s.calledWith = vehicleID
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}
