package guard

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/rdelgado-dev/stockroom-backend/pkg/errors"
)

// LockItems loads the requested inventory rows under an exclusive row lock,
// always in ascending item_id order so concurrent multi-item operations cannot
// deadlock each other. The lock is held until the surrounding transaction
// commits or rolls back.
//
// Returns NOT_FOUND when any requested item is missing. On sqlite (tests) the
// locking clause is skipped; the database serializes writers itself.
func LockItems(tx *gorm.DB, ids ...int64) (map[int64]*models.InventoryItem, error) {
	if len(ids) == 0 {
		return map[int64]*models.InventoryItem{}, nil
	}

	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	q := tx.Where("item_id IN ?", unique).Order("item_id ASC")
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var rows []models.InventoryItem
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	locked := make(map[int64]*models.InventoryItem, len(rows))
	for i := range rows {
		locked[rows[i].ID] = &rows[i]
	}

	for _, id := range unique {
		if _, ok := locked[id]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("item %d not found", id))
		}
	}

	return locked, nil
}

// LockItem locks a single inventory row.
func LockItem(tx *gorm.DB, id int64) (*models.InventoryItem, error) {
	locked, err := LockItems(tx, id)
	if err != nil {
		return nil, err
	}
	return locked[id], nil
}

// SaveItem flushes a locked item row inside the same transaction that took
// the lock.
func SaveItem(ctx context.Context, tx *gorm.DB, item *models.InventoryItem) error {
	return tx.WithContext(ctx).Save(item).Error
}
