package guard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/rdelgado-dev/stockroom-backend/pkg/errors"
)

func setupGuardTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	inventory := `
CREATE TABLE IF NOT EXISTS inventory (
  item_id INTEGER PRIMARY KEY AUTOINCREMENT,
  item_name TEXT NOT NULL,
  item_description TEXT,
  item_part_number TEXT,
  item_current_quantity INTEGER NOT NULL DEFAULT 0,
  item_min_count INTEGER NOT NULL DEFAULT 0,
  item_unit TEXT,
  item_unit_price NUMERIC,
  item_manufacturer TEXT,
  item_type TEXT,
  test_area TEXT,
  project_name TEXT,
  item_life_cycle INTEGER NOT NULL DEFAULT 0,
  item_image_url TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(inventory).Error)
	return db
}

func seedItem(t *testing.T, db *gorm.DB, name, project string, qty int) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{
		ItemName:        name,
		CurrentQuantity: qty,
		ProjectName:     project,
		TestArea:        "EOL",
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestLockItemsReturnsAllRows(t *testing.T) {
	db := setupGuardTestDB(t)
	a := seedItem(t, db, "fuse-5a", "P1", 10)
	b := seedItem(t, db, "fuse-5a", "P2", 20)

	locked, err := LockItems(db, b.ID, a.ID, a.ID)
	require.NoError(t, err)
	require.Len(t, locked, 2)
	require.Equal(t, 10, locked[a.ID].CurrentQuantity)
	require.Equal(t, 20, locked[b.ID].CurrentQuantity)
}

func TestLockItemsMissingRowIsNotFound(t *testing.T) {
	db := setupGuardTestDB(t)
	a := seedItem(t, db, "fuse-5a", "P1", 10)

	_, err := LockItems(db, a.ID, a.ID+99)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestLockItemsEmptyInput(t *testing.T) {
	db := setupGuardTestDB(t)
	locked, err := LockItems(db)
	require.NoError(t, err)
	require.Empty(t, locked)
}

func TestSaveItemFlushesLockedRow(t *testing.T) {
	db := setupGuardTestDB(t)
	a := seedItem(t, db, "fuse-5a", "P1", 10)

	locked, err := LockItem(db, a.ID)
	require.NoError(t, err)
	locked.CurrentQuantity += 4
	require.NoError(t, SaveItem(context.Background(), db, locked))

	var reloaded models.InventoryItem
	require.NoError(t, db.First(&reloaded, "item_id = ?", a.ID).Error)
	require.Equal(t, 14, reloaded.CurrentQuantity)
}
