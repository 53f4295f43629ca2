package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rdelgado-dev/stockroom-backend/pkg/migrate"
)

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir should validate: %v", err)
	}
}

func TestInventoryMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_inventory.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS inventory",
		"CHECK (item_current_quantity >= 0)",
		"CHECK (item_min_count >= 0)",
		"idx_inventory_name_project",
		"DROP TABLE IF EXISTS inventory",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestTransactionsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_transactions.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS transactions",
		"REFERENCES inventory(item_id)",
		"REFERENCES employees(employee_id)",
		"REFERENCES fixtures(fixture_id)",
		"linked_request_transaction_id BIGINT REFERENCES transactions(transaction_id)",
		"CHECK (quantity_used > 0)",
		"'transfer_in'",
		"DROP TABLE IF EXISTS transactions",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matches %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
