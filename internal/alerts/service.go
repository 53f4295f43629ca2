package alerts

import (
	"context"
	"fmt"

	"github.com/rdelgado-dev/stockroom-backend/internal/inventory"
	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
	"github.com/rdelgado-dev/stockroom-backend/pkg/metrics"
)

// Service answers low-stock queries. Pure reads; delivery of notifications
// belongs to an external collaborator.
type Service struct {
	items   *inventory.Repository
	metrics *metrics.TransactionMetrics
}

// NewService wires the alerts service.
func NewService(items *inventory.Repository, m *metrics.TransactionMetrics) (*Service, error) {
	if items == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &Service{items: items, metrics: m}, nil
}

// LowStockItem is an item below its reorder threshold.
type LowStockItem struct {
	Item     models.InventoryItem `json:"item"`
	Shortage int                  `json:"shortage"`
}

// LowStock returns items whose quantity sits below min_count, optionally
// filtered by project and test area.
func (s *Service) LowStock(ctx context.Context, filters inventory.ListFilters) ([]LowStockItem, error) {
	rows, err := s.items.ListLowStock(ctx, filters)
	if err != nil {
		return nil, err
	}

	alerts := make([]LowStockItem, 0, len(rows))
	for _, row := range rows {
		alerts = append(alerts, LowStockItem{
			Item:     row,
			Shortage: row.MinCount - row.CurrentQuantity,
		})
	}

	s.metrics.SetLowStockItems(len(alerts))
	return alerts, nil
}
