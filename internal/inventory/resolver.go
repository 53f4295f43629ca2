package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/rdelgado-dev/stockroom-backend/internal/guard"
	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
	"github.com/rdelgado-dev/stockroom-backend/pkg/enums"
	pkgerrors "github.com/rdelgado-dev/stockroom-backend/pkg/errors"
)

// RequestInput withdraws stock for use on a fixture.
type RequestInput struct {
	ItemID     int64
	EmployeeID int64
	FixtureID  int64
	Quantity   int
}

// TransferLeg describes one donor-to-target movement executed while
// fulfilling a request.
type TransferLeg struct {
	FromItemID  int64  `json:"from_item_id"`
	FromProject string `json:"from_project"`
	ToItemID    int64  `json:"to_item_id"`
	Quantity    int    `json:"quantity"`
}

// RequestResult reports the committed request.
type RequestResult struct {
	NewQuantity  int                 `json:"new_quantity"`
	TransferUsed bool                `json:"transfer_used"`
	Transfers    []TransferLeg       `json:"transfers,omitempty"`
	Transaction  *models.Transaction `json:"transaction"`
}

// Request withdraws the quantity from the target item, pulling stock from
// same-named items in other projects when local stock is short. Either every
// movement and ledger entry commits, or none do.
func (s *Service) Request(ctx context.Context, input RequestInput) (*RequestResult, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "quantity must be a positive integer")
	}

	start := time.Now()
	var result RequestResult
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		target, err := guard.LockItem(tx, input.ItemID)
		if err != nil {
			return err
		}

		local := target.CurrentQuantity
		if local >= input.Quantity {
			return s.fulfillLocally(ctx, tx, target, input, &result)
		}
		return s.fulfillWithTransfers(ctx, tx, target, input, local, &result)
	})
	if err != nil {
		s.metrics.ObserveResolveDuration("error", time.Since(start))
		return nil, s.translate(ctx, "resolving request", err)
	}

	outcome := "local"
	if result.TransferUsed {
		outcome = "transfer"
	}
	s.metrics.ObserveResolveDuration(outcome, time.Since(start))
	s.metrics.IncRecorded(enums.TransactionTypeRequest.String())
	return &result, nil
}

func (s *Service) fulfillLocally(ctx context.Context, tx *gorm.DB, target *models.InventoryItem, input RequestInput, result *RequestResult) error {
	target.CurrentQuantity -= input.Quantity
	if err := s.repo.WithTx(tx).Save(ctx, target); err != nil {
		return err
	}

	remarks := fmt.Sprintf("fulfilled with %d local units", input.Quantity)
	entry := s.requestEntry(target, input, remarks)
	if err := s.ledger.WithTx(tx).Create(ctx, entry); err != nil {
		return err
	}

	result.NewQuantity = target.CurrentQuantity
	result.Transaction = entry
	return nil
}

func (s *Service) fulfillWithTransfers(ctx context.Context, tx *gorm.DB, target *models.InventoryItem, input RequestInput, local int, result *RequestResult) error {
	needed := input.Quantity - local

	candidates, err := s.repo.WithTx(tx).ListDonorCandidates(ctx, target.ItemName, target.ID, s.cfg.MaxTransferDonors)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return s.insufficient(target, input.Quantity, local)
	}

	// Lock target and donors together; the guard orders by ascending id so
	// concurrent transfers over the same rows cannot deadlock.
	ids := make([]int64, 0, len(candidates)+1)
	ids = append(ids, target.ID)
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}
	locked, err := guard.LockItems(tx, ids...)
	if err != nil {
		return err
	}
	target = locked[target.ID]

	// Quantities may have moved between the candidate scan and the lock.
	// Re-apply greedy largest-first on the locked values.
	donors := make([]*models.InventoryItem, 0, len(candidates))
	for _, c := range candidates {
		donor := locked[c.ID]
		if donor.CurrentQuantity > 0 {
			donors = append(donors, donor)
		}
	}
	sort.SliceStable(donors, func(i, j int) bool {
		if donors[i].CurrentQuantity != donors[j].CurrentQuantity {
			return donors[i].CurrentQuantity > donors[j].CurrentQuantity
		}
		return donors[i].ID < donors[j].ID
	})

	repo := s.repo.WithTx(tx)
	ledger := s.ledger.WithTx(tx)

	remaining := needed
	for _, donor := range donors {
		if remaining == 0 {
			break
		}
		take := donor.CurrentQuantity
		if take > remaining {
			take = remaining
		}

		donor.CurrentQuantity -= take
		target.CurrentQuantity += take
		remaining -= take

		if err := repo.Save(ctx, donor); err != nil {
			return err
		}

		outRemarks := fmt.Sprintf("transfer to item %d (%s)", target.ID, target.ProjectName)
		out := &models.Transaction{
			ItemID:          &donor.ID,
			EmployeeID:      input.EmployeeID,
			FixtureID:       input.FixtureID,
			QuantityUsed:    take,
			TransactionType: enums.TransactionTypeTransferOut,
			Remarks:         &outRemarks,
			TestArea:        &donor.TestArea,
			ProjectName:     &donor.ProjectName,
		}
		if err := ledger.Create(ctx, out); err != nil {
			return err
		}

		inRemarks := fmt.Sprintf("transfer from item %d (%s)", donor.ID, donor.ProjectName)
		in := &models.Transaction{
			ItemID:          &target.ID,
			EmployeeID:      input.EmployeeID,
			FixtureID:       input.FixtureID,
			QuantityUsed:    take,
			TransactionType: enums.TransactionTypeTransferIn,
			Remarks:         &inRemarks,
			TestArea:        &target.TestArea,
			ProjectName:     &target.ProjectName,
		}
		if err := ledger.Create(ctx, in); err != nil {
			return err
		}

		result.Transfers = append(result.Transfers, TransferLeg{
			FromItemID:  donor.ID,
			FromProject: donor.ProjectName,
			ToItemID:    target.ID,
			Quantity:    take,
		})
	}

	if remaining > 0 {
		return s.insufficient(target, input.Quantity, local)
	}

	transferred := needed
	target.CurrentQuantity -= input.Quantity
	if err := repo.Save(ctx, target); err != nil {
		return err
	}

	remarks := fmt.Sprintf("fulfilled with %d local and %d transferred units", local, transferred)
	entry := s.requestEntry(target, input, remarks)
	if err := ledger.Create(ctx, entry); err != nil {
		return err
	}

	result.NewQuantity = target.CurrentQuantity
	result.TransferUsed = true
	result.Transaction = entry
	return nil
}

func (s *Service) requestEntry(target *models.InventoryItem, input RequestInput, remarks string) *models.Transaction {
	return &models.Transaction{
		ItemID:          &target.ID,
		EmployeeID:      input.EmployeeID,
		FixtureID:       input.FixtureID,
		QuantityUsed:    input.Quantity,
		TransactionType: enums.TransactionTypeRequest,
		Remarks:         &remarks,
		TestArea:        &target.TestArea,
		ProjectName:     &target.ProjectName,
	}
}

func (s *Service) insufficient(target *models.InventoryItem, requested, local int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock,
		fmt.Sprintf("requested %d units of %q, only %d local", requested, target.ItemName, local)).
		WithDetails(map[string]any{
			"item_id":   target.ID,
			"requested": requested,
			"local":     local,
		})
}

// TransferInput moves stock between two same-named items.
type TransferInput struct {
	SourceItemID int64
	DestItemID   int64
	Quantity     int
	EmployeeID   int64
	FixtureID    int64
	Remarks      *string
}

// TransferResult reports the committed transfer.
type TransferResult struct {
	SourceQuantity int `json:"source_quantity"`
	DestQuantity   int `json:"dest_quantity"`
}

// Transfer moves quantity from the source item to the destination item. Both
// rows are locked in ascending id order; names must match.
func (s *Service) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "quantity must be a positive integer")
	}
	if input.SourceItemID == input.DestItemID {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "source and destination must differ")
	}

	var result TransferResult
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		locked, err := guard.LockItems(tx, input.SourceItemID, input.DestItemID)
		if err != nil {
			return err
		}
		source := locked[input.SourceItemID]
		dest := locked[input.DestItemID]

		if source.ItemName != dest.ItemName {
			return pkgerrors.New(pkgerrors.CodeInvalidInput,
				fmt.Sprintf("item name mismatch: %q vs %q", source.ItemName, dest.ItemName))
		}
		if source.CurrentQuantity < input.Quantity {
			return s.insufficient(source, input.Quantity, source.CurrentQuantity)
		}

		source.CurrentQuantity -= input.Quantity
		dest.CurrentQuantity += input.Quantity

		repo := s.repo.WithTx(tx)
		if err := repo.Save(ctx, source); err != nil {
			return err
		}
		if err := repo.Save(ctx, dest); err != nil {
			return err
		}

		outRemarks := fmt.Sprintf("transfer to item %d (%s)", dest.ID, dest.ProjectName)
		if input.Remarks != nil && *input.Remarks != "" {
			outRemarks = fmt.Sprintf("%s: %s", outRemarks, *input.Remarks)
		}
		out := &models.Transaction{
			ItemID:          &source.ID,
			EmployeeID:      input.EmployeeID,
			FixtureID:       input.FixtureID,
			QuantityUsed:    input.Quantity,
			TransactionType: enums.TransactionTypeTransferOut,
			Remarks:         &outRemarks,
			TestArea:        &source.TestArea,
			ProjectName:     &source.ProjectName,
		}

		inRemarks := fmt.Sprintf("transfer from item %d (%s)", source.ID, source.ProjectName)
		if input.Remarks != nil && *input.Remarks != "" {
			inRemarks = fmt.Sprintf("%s: %s", inRemarks, *input.Remarks)
		}
		in := &models.Transaction{
			ItemID:          &dest.ID,
			EmployeeID:      input.EmployeeID,
			FixtureID:       input.FixtureID,
			QuantityUsed:    input.Quantity,
			TransactionType: enums.TransactionTypeTransferIn,
			Remarks:         &inRemarks,
			TestArea:        &dest.TestArea,
			ProjectName:     &dest.ProjectName,
		}

		ledger := s.ledger.WithTx(tx)
		if err := ledger.Create(ctx, out); err != nil {
			return err
		}
		if err := ledger.Create(ctx, in); err != nil {
			return err
		}

		result.SourceQuantity = source.CurrentQuantity
		result.DestQuantity = dest.CurrentQuantity
		return nil
	})
	if err != nil {
		return nil, s.translate(ctx, "transferring stock", err)
	}

	s.metrics.IncRecorded(enums.TransactionTypeTransferOut.String())
	s.metrics.IncRecorded(enums.TransactionTypeTransferIn.String())
	return &result, nil
}
