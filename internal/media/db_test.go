package media

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
	"github.com/grupomotriz/catalogo-backend/pkg/storage/gcs"
)

func gcsNotFound() error {
	return gcs.ErrObjectNotFound
}

func setupMediaTestDB(t *testing.T) *gorm.DB {
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
  UNIQUE (vehiculo_id, color_id)
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
	return logger.New(logger.Options{ServiceName: "media-test", Output: io.Discard})
}

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type failingTxRunner struct {
	err error
}

func (r failingTxRunner) WithTx(context.Context, func(tx *gorm.DB) error) error {
	return r.err
}

type fakeObjectStore struct {
	uploaded      map[string][]byte
	deleted       []string
	uploadErr     error
	deleteErr     error
	deleteFailFor map[string]error
	onDelete      func(key string)
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{uploaded: map[string][]byte{}}
}

func (f *fakeObjectStore) Upload(_ context.Context, key, _ string, data []byte) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploaded[key] = data
	return "https://storage.example.com/" + key, nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if err, ok := f.deleteFailFor[key]; ok {
		return err
	}
	f.deleted = append(f.deleted, key)
	if f.onDelete != nil {
		f.onDelete(key)
	}
	return nil
}

func mustCreateVehicle(t *testing.T, db *gorm.DB) *models.Vehicle {
	t.Helper()
	brand := &models.Brand{ID: uuid.New(), Name: "Marca " + uuid.NewString(), Active: true}
	require.NoError(t, db.Create(brand).Error)

	vehicle := &models.Vehicle{
		ID:      uuid.New(),
		BrandID: brand.ID,
		Model:   "Pickup Z",
		Year:    2025,
		Slug:    "pickup-z-" + uuid.NewString(),
		Price:   decimal.NewFromInt(500000),
		Active:  true,
	}
	require.NoError(t, db.Create(vehicle).Error)
	return vehicle
}

func mustCreateColorLink(t *testing.T, db *gorm.DB, vehicleID uuid.UUID, order int) *models.VehicleColor {
	t.Helper()
	color := &models.Color{
		ID:      uuid.New(),
		Name:    "Color " + uuid.NewString(),
		HexCode: "#445566",
		Active:  true,
	}
	require.NoError(t, db.Create(color).Error)

	link := &models.VehicleColor{
		ID:        uuid.New(),
		VehicleID: vehicleID,
		ColorID:   color.ID,
		Order:     order,
	}
	require.NoError(t, db.Create(link).Error)
	return link
}

func mustCreateImage(t *testing.T, db *gorm.DB, vehicleID uuid.UUID, linkID *uuid.UUID, order int, primary bool) *models.VehicleImage {
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

func mustCreateVideo(t *testing.T, db *gorm.DB, vehicleID uuid.UUID, order int, primary bool) *models.VehicleVideo {
	t.Helper()
	key := "media/video/" + uuid.NewString()
	video := &models.VehicleVideo{
		ID:        uuid.New(),
		VehicleID: vehicleID,
		URL:       "https://storage.example.com/" + key,
		GCSKey:    key,
		Order:     order,
		IsPrimary: primary,
	}
	require.NoError(t, db.Create(video).Error)
	return video
}
