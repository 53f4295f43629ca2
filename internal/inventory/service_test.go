package inventory

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rdelgado-dev/stockroom-backend/internal/fixtures"
	"github.com/rdelgado-dev/stockroom-backend/internal/transactions"
	"github.com/rdelgado-dev/stockroom-backend/pkg/config"
	"github.com/rdelgado-dev/stockroom-backend/pkg/db"
	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
	"github.com/rdelgado-dev/stockroom-backend/pkg/enums"
	pkgerrors "github.com/rdelgado-dev/stockroom-backend/pkg/errors"
	"github.com/rdelgado-dev/stockroom-backend/pkg/metrics"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
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
	transactionsDDL := `
CREATE TABLE IF NOT EXISTS transactions (
  transaction_id INTEGER PRIMARY KEY AUTOINCREMENT,
  item_id INTEGER,
  employee_id INTEGER NOT NULL,
  fixture_id INTEGER NOT NULL,
  quantity_used INTEGER NOT NULL,
  transaction_type TEXT NOT NULL,
  remarks TEXT,
  test_area TEXT,
  project_name TEXT,
  linked_request_transaction_id INTEGER,
  created_at DATETIME
);`
	fixturesDDL := `
CREATE TABLE IF NOT EXISTS fixtures (
  fixture_id INTEGER PRIMARY KEY AUTOINCREMENT,
  fixture_name TEXT NOT NULL,
  test_area TEXT NOT NULL,
  project_name TEXT NOT NULL,
  asset_tag TEXT NOT NULL,
  fixture_serial_number TEXT NOT NULL
);`
	require.NoError(t, conn.Exec(inventoryDDL).Error)
	require.NoError(t, conn.Exec(transactionsDDL).Error)
	require.NoError(t, conn.Exec(fixturesDDL).Error)
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) *Service {
	t.Helper()
	return newTestServiceWithCfg(t, conn, config.InventoryConfig{})
}

func newTestServiceWithCfg(t *testing.T, conn *gorm.DB, cfg config.InventoryConfig) *Service {
	t.Helper()

	fixtureSvc, err := fixtures.NewService(fixtures.NewRepository(conn))
	require.NoError(t, err)

	svc, err := NewService(
		db.NewWithConn(conn),
		NewRepository(conn),
		transactions.NewRepository(conn),
		fixtureSvc,
		nil,
		metrics.NewTransactionMetrics(prometheus.NewRegistry()),
		cfg,
	)
	require.NoError(t, err)
	return svc
}

func seedFixture(t *testing.T, conn *gorm.DB) *models.Fixture {
	t.Helper()
	fixture := &models.Fixture{
		FixtureName:  "bench-01",
		TestArea:     "EOL",
		ProjectName:  "P1",
		AssetTag:     "AT-1",
		SerialNumber: "SN-1",
	}
	require.NoError(t, conn.Create(fixture).Error)
	return fixture
}

func seedItem(t *testing.T, conn *gorm.DB, name, project string, qty, minCount int) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{
		ItemName:        name,
		CurrentQuantity: qty,
		MinCount:        minCount,
		TestArea:        "EOL",
		ProjectName:     project,
	}
	require.NoError(t, conn.Create(item).Error)
	return item
}

func listLedger(t *testing.T, conn *gorm.DB) []models.Transaction {
	t.Helper()
	var rows []models.Transaction
	require.NoError(t, conn.Order("transaction_id ASC").Find(&rows).Error)
	return rows
}

func reloadItem(t *testing.T, conn *gorm.DB, id int64) *models.InventoryItem {
	t.Helper()
	var item models.InventoryItem
	require.NoError(t, conn.First(&item, "item_id = ?", id).Error)
	return &item
}

func TestRequestLocalFulfillment(t *testing.T) {
	conn := setupInventoryTestDB(t)
	svc := newTestService(t, conn)
	fixture := seedFixture(t, conn)
	item := seedItem(t, conn, "fuse-5a", "P1", 10, 3)

	result, err := svc.Request(context.Background(), RequestInput{
		ItemID:     item.ID,
		EmployeeID: 1,
		FixtureID:  fixture.ID,
		Quantity:   4,
	})
	require.NoError(t, err)
	assert.False(t, result.TransferUsed)
	assert.Equal(t, 6, result.NewQuantity)
	assert.Empty(t, result.Transfers)

	ledger := listLedger(t, conn)
	require.Len(t, ledger, 1)
	assert.Equal(t, enums.TransactionTypeRequest, ledger[0].TransactionType)
	assert.Equal(t, 4, ledger[0].QuantityUsed)
	assert.Equal(t, 6, reloadItem(t, conn, item.ID).CurrentQuantity)
}

func TestRequestCrossProjectTransfer(t *testing.T) {
	conn := setupInventoryTestDB(t)
	svc := newTestService(t, conn)
	fixture := seedFixture(t, conn)
	target := seedItem(t, conn, "fuse-5a", "P1", 2, 5)
	donor := seedItem(t, conn, "fuse-5a", "P2", 20, 5)

	result, err := svc.Request(context.Background(), RequestInput{
		ItemID:     target.ID,
		EmployeeID: 1,
		FixtureID:  fixture.ID,
		Quantity:   8,
	})
	require.NoError(t, err)
	assert.True(t, result.TransferUsed)
	assert.Equal(t, 0, result.NewQuantity)
	require.Len(t, result.Transfers, 1)
	assert.Equal(t, donor.ID, result.Transfers[0].FromItemID)
	assert.Equal(t, 6, result.Transfers[0].Quantity)

	assert.Equal(t, 0, reloadItem(t, conn, target.ID).CurrentQuantity)
	assert.Equal(t, 14, reloadItem(t, conn, donor.ID).CurrentQuantity)

	ledger := listLedger(t, conn)
	require.Len(t, ledger, 3)
	assert.Equal(t, enums.TransactionTypeTransferOut, ledger[0].TransactionType)
	assert.Equal(t, 6, ledger[0].QuantityUsed)
	require.NotNil(t, ledger[0].ItemID)
	assert.Equal(t, donor.ID, *ledger[0].ItemID)
	assert.Equal(t, enums.TransactionTypeTransferIn, ledger[1].TransactionType)
	assert.Equal(t, 6, ledger[1].QuantityUsed)
	require.NotNil(t, ledger[1].ItemID)
	assert.Equal(t, target.ID, *ledger[1].ItemID)
	assert.Equal(t, enums.TransactionTypeRequest, ledger[2].TransactionType)
	assert.Equal(t, 8, ledger[2].QuantityUsed)
	require.NotNil(t, ledger[2].Remarks)
	assert.Equal(t, "fulfilled with 2 local and 6 transferred units", *ledger[2].Remarks)
}

func TestRequestConservationAcrossTransfer(t *testing.T) {
	conn := setupInventoryTestDB(t)
	svc := newTestService(t, conn)
	fixture := seedFixture(t, conn)
	target := seedItem(t, conn, "fuse-5a", "P1", 3, 5)
	seedItem(t, conn, "fuse-5a", "P2", 4, 5)
	seedItem(t, conn, "fuse-5a", "P3", 9, 5)

	before := totalByName(t, conn, "fuse-5a")

	result, err := svc.Request(context.Background(), RequestInput{
		ItemID:     target.ID,
		EmployeeID: 1,
		FixtureID:  fixture.ID,
		Quantity:   10,
	})
	require.NoError(t, err)
	assert.True(t, result.TransferUsed)

	after := totalByName(t, conn, "fuse-5a")
	assert.Equal(t, before-10, after)
}

func totalByName(t *testing.T, conn *gorm.DB, name string) int {
	t.Helper()
	var total int
	require.NoError(t, conn.Model(&models.InventoryItem{}).
		Select("COALESCE(SUM(item_current_quantity), 0)").
		Where("item_name = ?", name).
		Scan(&total).Error)
	return total
}

func TestRequestDrainsManySmallDonors(t *testing.T) {
	conn := setupInventoryTestDB(t)
	svc := newTestService(t, conn)
	fixture := seedFixture(t, conn)
	target := seedItem(t, conn, "fuse-5a", "P0", 2, 5)

	// Reachable stock spread across more donor rows than any former cap.
	donorCount := 20
	for i := 0; i < donorCount; i++ {
		seedItem(t, conn, "fuse-5a", fmt.Sprintf("P%d", i+1), 1, 0)
	}

	result, err := svc.Request(context.Background(), RequestInput{
		ItemID:     target.ID,
		EmployeeID: 1,
		FixtureID:  fixture.ID,
		Quantity:   2 + donorCount,
	})
	require.NoError(t, err)
	assert.True(t, result.TransferUsed)
	assert.Equal(t, 0, result.NewQuantity)
	require.Len(t, result.Transfers, donorCount)
	assert.Equal(t, 0, totalByName(t, conn, "fuse-5a"))
}

func TestRequestDonorCapStillLimitsWhenSet(t *testing.T) {
	conn := setupInventoryTestDB(t)
	svc := newTestServiceWithCfg(t, conn, config.InventoryConfig{MaxTransferDonors: 2})
	fixture := seedFixture(t, conn)
	target := seedItem(t, conn, "fuse-5a", "P0", 0, 5)
	seedItem(t, conn, "fuse-5a", "P1", 1, 0)
	seedItem(t, conn, "fuse-5a", "P2", 1, 0)
	seedItem(t, conn, "fuse-5a", "P3", 1, 0)

	_, err := svc.Request(context.Background(), RequestInput{
		ItemID:     target.ID,
		EmployeeID: 1,
		FixtureID:  fixture.ID,
		Quantity:   3,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())
	assert.Equal(t, 3, totalByName(t, conn, "fuse-5a"))
}

func TestRequestInsufficientStockLeavesStateUnchanged(t *testing.T) {
	conn := setupInventoryTestDB(t)
	svc := newTestService(t, conn)
	fixture := seedFixture(t, conn)
	target := seedItem(t, conn, "fuse-5a", "P1", 2, 5)
	donor := seedItem(t, conn, "fuse-5a", "P2", 3, 5)

	_, err := svc.Request(context.Background(), RequestInput{
		ItemID:     target.ID,
		EmployeeID: 1,
		FixtureID:  fixture.ID,
		Quantity:   8,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())

	assert.Equal(t, 2, reloadItem(t, conn, target.ID).CurrentQuantity)
	assert.Equal(t, 3, reloadItem(t, conn, donor.ID).CurrentQuantity)
	assert.Empty(t, listLedger(t, conn))
}

func TestRequestValidation(t *testing.T) {
	conn := setupInventoryTestDB(t)
	svc := newTestService(t, conn)
	seedFixture(t, conn)

	_, err := svc.Request(context.Background(), RequestInput{ItemID: 1, EmployeeID: 1, FixtureID: 1, Quantity: 0})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidInput, typed.Code())

	_, err = svc.Request(context.Background(), RequestInput{ItemID: 999, EmployeeID: 1, FixtureID: 1, Quantity: 2})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestTransferMovesStock(t *testing.T) {
	conn := setupInventoryTestDB(t)
	svc := newTestService(t, conn)
	fixture := seedFixture(t, conn)
	source := seedItem(t, conn, "fuse-5a", "P2", 20, 5)
	dest := seedItem(t, conn, "fuse-5a", "P1", 2, 5)

	result, err := svc.Transfer(context.Background(), TransferInput{
		SourceItemID: source.ID,
		DestItemID:   dest.ID,
		Quantity:     6,
		EmployeeID:   1,
		FixtureID:    fixture.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 14, result.SourceQuantity)
	assert.Equal(t, 8, result.DestQuantity)

	ledger := listLedger(t, conn)
	require.Len(t, ledger, 2)
	assert.Equal(t, enums.TransactionTypeTransferOut, ledger[0].TransactionType)
	assert.Equal(t, enums.TransactionTypeTransferIn, ledger[1].TransactionType)
}

func TestTransferNameMismatch(t *testing.T) {
	conn := setupInventoryTestDB(t)
	svc := newTestService(t, conn)
	fixture := seedFixture(t, conn)
	source := seedItem(t, conn, "fuse-5a", "P2", 20, 5)
	dest := seedItem(t, conn, "relay-12v", "P1", 2, 5)

	_, err := svc.Transfer(context.Background(), TransferInput{
		SourceItemID: source.ID,
		DestItemID:   dest.ID,
		Quantity:     6,
		EmployeeID:   1,
		FixtureID:    fixture.ID,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidInput, typed.Code())
	assert.Empty(t, listLedger(t, conn))
}

func TestTransferInsufficientStock(t *testing.T) {
	conn := setupInventoryTestDB(t)
	svc := newTestService(t, conn)
	fixture := seedFixture(t, conn)
	source := seedItem(t, conn, "fuse-5a", "P2", 3, 5)
	dest := seedItem(t, conn, "fuse-5a", "P1", 2, 5)

	_, err := svc.Transfer(context.Background(), TransferInput{
		SourceItemID: source.ID,
		DestItemID:   dest.ID,
		Quantity:     6,
		EmployeeID:   1,
		FixtureID:    fixture.ID,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())
	assert.Equal(t, 3, reloadItem(t, conn, source.ID).CurrentQuantity)
	assert.Equal(t, 2, reloadItem(t, conn, dest.ID).CurrentQuantity)
}

func TestRestockUsesSystemFixtureWhenOmitted(t *testing.T) {
	conn := setupInventoryTestDB(t)
	svc := newTestService(t, conn)
	fixture := seedFixture(t, conn)
	item := seedItem(t, conn, "fuse-5a", "P1", 2, 5)

	result, err := svc.Restock(context.Background(), RestockInput{
		ItemID:     item.ID,
		EmployeeID: 1,
		Quantity:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, result.NewQuantity)

	ledger := listLedger(t, conn)
	require.Len(t, ledger, 1)
	assert.Equal(t, enums.TransactionTypeRestock, ledger[0].TransactionType)
	assert.Equal(t, fixture.ID, ledger[0].FixtureID)
}

func TestRestockWithEmptyFixtureDirectory(t *testing.T) {
	conn := setupInventoryTestDB(t)
	svc := newTestService(t, conn)
	item := seedItem(t, conn, "fuse-5a", "P1", 2, 5)

	_, err := svc.Restock(context.Background(), RestockInput{
		ItemID:     item.ID,
		EmployeeID: 1,
		Quantity:   10,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidInput, typed.Code())
	assert.Contains(t, typed.Message(), "no fixtures available")
}

func TestCreateOrAccumulateMergesWithinProject(t *testing.T) {
	conn := setupInventoryTestDB(t)
	svc := newTestService(t, conn)
	seedFixture(t, conn)
	existing := seedItem(t, conn, "fuse-5a", "P1", 5, 3)

	result, err := svc.CreateOrAccumulate(context.Background(), CreateItemInput{
		ItemName:    "fuse-5a",
		Quantity:    7,
		MinCount:    3,
		TestArea:    "EOL",
		ProjectName: "P1",
		EmployeeID:  1,
	})
	require.NoError(t, err)
	assert.True(t, result.Merged)
	assert.Equal(t, existing.ID, result.Item.ID)
	assert.Equal(t, 12, result.Item.CurrentQuantity)

	ledger := listLedger(t, conn)
	require.Len(t, ledger, 1)
	assert.Equal(t, enums.TransactionTypeRestock, ledger[0].TransactionType)
	assert.Equal(t, 7, ledger[0].QuantityUsed)
}

func TestCreateOrAccumulateKeepsProjectsSeparate(t *testing.T) {
	conn := setupInventoryTestDB(t)
	svc := newTestService(t, conn)
	seedFixture(t, conn)
	existing := seedItem(t, conn, "fuse-5a", "P1", 5, 3)

	result, err := svc.CreateOrAccumulate(context.Background(), CreateItemInput{
		ItemName:    "fuse-5a",
		Quantity:    7,
		MinCount:    3,
		TestArea:    "EOL",
		ProjectName: "P2",
		EmployeeID:  1,
	})
	require.NoError(t, err)
	assert.False(t, result.Merged)
	assert.NotEqual(t, existing.ID, result.Item.ID)
	assert.Equal(t, 7, result.Item.CurrentQuantity)
	assert.Equal(t, 5, reloadItem(t, conn, existing.ID).CurrentQuantity)
}

func TestUpdateItemMetadata(t *testing.T) {
	conn := setupInventoryTestDB(t)
	svc := newTestService(t, conn)
	item := seedItem(t, conn, "fuse-5a", "P1", 5, 3)

	minCount := 9
	price := decimal.RequireFromString("1.25")
	updated, err := svc.Update(context.Background(), item.ID, UpdateItemInput{
		MinCount:  &minCount,
		UnitPrice: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.MinCount)
	require.NotNil(t, updated.UnitPrice)
	assert.True(t, updated.UnitPrice.Equal(price))
	assert.Equal(t, 5, updated.CurrentQuantity)
}
