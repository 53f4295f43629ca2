package alerts

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rdelgado-dev/stockroom-backend/internal/inventory"
	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
	"github.com/rdelgado-dev/stockroom-backend/pkg/metrics"
)

func setupAlertsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	inventoryDDL := `
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
	require.NoError(t, conn.Exec(inventoryDDL).Error)
	return conn
}

func seedItem(t *testing.T, conn *gorm.DB, name, project, area string, qty, minCount int) {
	t.Helper()
	item := &models.InventoryItem{
		ItemName:        name,
		CurrentQuantity: qty,
		MinCount:        minCount,
		TestArea:        area,
		ProjectName:     project,
	}
	require.NoError(t, conn.Create(item).Error)
}

func TestLowStockFilters(t *testing.T) {
	conn := setupAlertsTestDB(t)
	svc, err := NewService(inventory.NewRepository(conn), metrics.NewTransactionMetrics(prometheus.NewRegistry()))
	require.NoError(t, err)

	seedItem(t, conn, "fuse-5a", "P1", "EOL", 2, 5)   // low, P1
	seedItem(t, conn, "relay-12v", "P1", "EOL", 9, 5) // healthy
	seedItem(t, conn, "fuse-5a", "P2", "ICT", 1, 5)   // low, P2

	project := "P1"
	alerts, err := svc.LowStock(context.Background(), inventory.ListFilters{Project: &project})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "fuse-5a", alerts[0].Item.ItemName)
	assert.Equal(t, "P1", alerts[0].Item.ProjectName)
	assert.Equal(t, 3, alerts[0].Shortage)

	area := "ICT"
	alerts, err = svc.LowStock(context.Background(), inventory.ListFilters{TestArea: &area})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "P2", alerts[0].Item.ProjectName)

	alerts, err = svc.LowStock(context.Background(), inventory.ListFilters{})
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
}

func TestLowStockBoundary(t *testing.T) {
	conn := setupAlertsTestDB(t)
	svc, err := NewService(inventory.NewRepository(conn), metrics.NewTransactionMetrics(prometheus.NewRegistry()))
	require.NoError(t, err)

	// Exactly at min_count is not low stock.
	seedItem(t, conn, "fuse-5a", "P1", "EOL", 5, 5)

	alerts, err := svc.LowStock(context.Background(), inventory.ListFilters{})
	require.NoError(t, err)
	assert.Empty(t, alerts)
}
