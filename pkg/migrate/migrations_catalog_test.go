package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCatalogMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_catalog_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no catalog migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS marcas",
		"CREATE TABLE IF NOT EXISTS vehiculos",
		"CREATE TABLE IF NOT EXISTS colores",
		"CREATE TABLE IF NOT EXISTS color_vehiculo",
		"CREATE TABLE IF NOT EXISTS imagenes_vehiculo",
		"CREATE TABLE IF NOT EXISTS videos_vehiculo",
		"CREATE TABLE IF NOT EXISTS caracteristicas",
		"CREATE TABLE IF NOT EXISTS caracteristica_vehiculo",
		"CREATE TABLE IF NOT EXISTS objetos_huerfanos",
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_color_vehiculo ",
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_color_vehiculo_orden",
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_imagenes_vehiculo_principal_color",
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_imagenes_vehiculo_principal_general",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}

	if !strings.Contains(content, "-- +goose Down") {
		t.Errorf("migration has no down section")
	}
}
