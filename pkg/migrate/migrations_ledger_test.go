package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestInventoryMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_inventory_items.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS inventory_items",
		"CHECK (stocks >= 0)",
		"CHECK (sold_stocks >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_keys ON inventory_items (account_key, product_key)",
		"DROP TABLE IF EXISTS inventory_items",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestReservationsMigrationCascades(t *testing.T) {
	content := readMigration(t, "*_create_reservations.sql")

	checks := []string{
		"CREATE TYPE reservation_status_enum AS ENUM ('pending', 'confirmed', 'cancelled')",
		"FOREIGN KEY (inventory_id) REFERENCES inventory_items(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"DROP TABLE IF EXISTS reservations",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestLogEntriesMigrationCascades(t *testing.T) {
	content := readMigration(t, "*_create_log_entries.sql")

	checks := []string{
		"CREATE TYPE log_action_enum AS ENUM ('restock', 'sell', 'reserve', 'confirm', 'cancel')",
		"FOREIGN KEY (inventory_id) REFERENCES inventory_items(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS log_entries",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
