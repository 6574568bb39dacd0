package catalog

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/grupomotriz/catalogo-backend/pkg/db/models"
	"github.com/grupomotriz/catalogo-backend/pkg/logger"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS marcas (
  id TEXT PRIMARY KEY,
  nombre TEXT NOT NULL,
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
		`CREATE TABLE IF NOT EXISTS caracteristica_vehiculo (
  id TEXT PRIMARY KEY,
  vehiculo_id TEXT NOT NULL,
  caracteristica_id TEXT NOT NULL,
  creado_en DATETIME,
  UNIQUE (vehiculo_id, caracteristica_id)
);`,
		`CREATE TABLE IF NOT EXISTS objetos_huerfanos (
  id TEXT PRIMARY KEY,
  gcs_key TEXT NOT NULL UNIQUE,
  intentos INTEGER NOT NULL DEFAULT 0,
  ultimo_error TEXT,
  creado_en DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "catalog-test", Output: io.Discard})
}

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fakeObjectStore struct {
	deleted  []string
	failures map[string]error
	onDelete func(key string)
}

func (f *fakeObjectStore) Upload(_ context.Context, key, _ string, _ []byte) (string, error) {
	return "https://storage.example.com/" + key, nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	if err, ok := f.failures[key]; ok {
		return err
	}
	f.deleted = append(f.deleted, key)
	if f.onDelete != nil {
		f.onDelete(key)
	}
	return nil
}

func mustCreateTestVehicle(t *testing.T, db *gorm.DB) *models.Vehicle {
	t.Helper()
	brand := &models.Brand{ID: uuid.New(), Name: "Marca " + uuid.NewString(), Active: true}
	require.NoError(t, db.Create(brand).Error)

	vehicle := &models.Vehicle{
		ID:      uuid.New(),
		BrandID: brand.ID,
		Model:   "Sedan X",
		Year:    2024,
		Slug:    "sedan-x-" + uuid.NewString(),
		Price:   decimal.NewFromInt(350000),
		Active:  true,
	}
	require.NoError(t, db.Create(vehicle).Error)
	return vehicle
}

func mustCreateTestColor(t *testing.T, db *gorm.DB, name string, active bool) *models.Color {
	t.Helper()
	color := &models.Color{
		ID:      uuid.New(),
		Name:    name + " " + uuid.NewString(),
		HexCode: "#112233",
		Active:  active,
	}
	require.NoError(t, db.Create(color).Error)
	return color
}

func mustCreateTestLink(t *testing.T, db *gorm.DB, vehicleID, colorID uuid.UUID, order int) *models.VehicleColor {
	t.Helper()
	link := &models.VehicleColor{
		ID:        uuid.New(),
		VehicleID: vehicleID,
		ColorID:   colorID,
		Order:     order,
	}
	require.NoError(t, db.Create(link).Error)
	return link
}

func mustCreateTestImage(t *testing.T, db *gorm.DB, vehicleID uuid.UUID, linkID *uuid.UUID, order int, primary bool) *models.VehicleImage {
	t.Helper()
	key := "media/image/" + uuid.NewString()
	img := &models.VehicleImage{
		ID:          uuid.New(),
		VehicleID:   vehicleID,
		ColorLinkID: linkID,
		URL:         "https://storage.example.com/" + key,
		GCSKey:      key,
		Order:       order,
		IsPrimary:   primary,
	}
	require.NoError(t, db.Create(img).Error)
	return img
}

func mustCreateTestVideo(t *testing.T, db *gorm.DB, vehicleID uuid.UUID, order int) *models.VehicleVideo {
	t.Helper()
	key := "media/video/" + uuid.NewString()
	video := &models.VehicleVideo{
		ID:        uuid.New(),
		VehicleID: vehicleID,
		URL:       "https://storage.example.com/" + key,
		GCSKey:    key,
		Order:     order,
	}
	require.NoError(t, db.Create(video).Error)
	return video
}
