package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/rdelgado-dev/stockroom-backend/internal/inventory"
	"github.com/rdelgado-dev/stockroom-backend/pkg/config"
	"github.com/rdelgado-dev/stockroom-backend/pkg/db"
	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/rdelgado-dev/stockroom-backend/pkg/errors"
	"github.com/rdelgado-dev/stockroom-backend/pkg/logger"
	"github.com/rdelgado-dev/stockroom-backend/pkg/metrics"
)

const weeklyReportJob = "weekly-report"

// Service generates and serves usage reports.
type Service struct {
	client  *db.Client
	repo    *Repository
	items   *inventory.Repository
	logg    *logger.Logger
	metrics *metrics.JobMetrics
	cfg     config.ReportsConfig
}

// NewService wires the reports service.
func NewService(
	client *db.Client,
	repo *Repository,
	items *inventory.Repository,
	logg *logger.Logger,
	m *metrics.JobMetrics,
	cfg config.ReportsConfig,
) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	if items == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &Service{client: client, repo: repo, items: items, logg: logg, metrics: m, cfg: cfg}, nil
}

// GenerateWeekly aggregates the past week's request usage per item and
// persists one report row per item, replacing any previous run for the same
// week. Returns the stored rows.
func (s *Service) GenerateWeekly(ctx context.Context, now time.Time) ([]models.Report, error) {
	start := time.Now()

	windowDays := s.cfg.WeeklyWindowDays
	if windowDays <= 0 {
		windowDays = 7
	}
	weekEnd := now.Truncate(24 * time.Hour)
	weekStart := weekEnd.AddDate(0, 0, -windowDays)

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteByWeekStart(ctx, weekStart); err != nil {
			return err
		}

		usage, err := repo.SumRequestUsage(ctx, weekStart)
		if err != nil {
			return err
		}

		items := s.items.WithTx(tx)
		var errs error
		for _, row := range usage {
			item, err := items.FindByID(ctx, row.ItemID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					errs = multierr.Append(errs, fmt.Errorf("report row for missing item %d", row.ItemID))
					continue
				}
				return err
			}
			report := &models.Report{
				WeekStartDate:   weekStart,
				WeekEndDate:     weekEnd,
				ItemID:          item.ID,
				ItemName:        item.ItemName,
				ItemDescription: item.Description,
				QuantityUsed:    row.QuantityUsed,
				CurrentQuantity: item.CurrentQuantity,
			}
			if err := repo.Create(ctx, report); err != nil {
				return err
			}
		}
		if errs != nil && s.logg != nil {
			s.logg.Warn(ctx, "weekly report skipped rows: "+errs.Error())
		}
		return nil
	})
	if err != nil {
		s.metrics.IncFailure(weeklyReportJob)
		return nil, err
	}

	rows, err := s.repo.ListByWeekStart(ctx, weekStart)
	if err != nil {
		s.metrics.IncFailure(weeklyReportJob)
		return nil, err
	}

	s.metrics.ObserveDuration(weeklyReportJob, time.Since(start))
	s.metrics.IncSuccess(weeklyReportJob)
	return rows, nil
}

// SpendingRow is the per-item spend over a window.
type SpendingRow struct {
	ItemID       int64           `json:"item_id"`
	ItemName     string          `json:"item_name"`
	ProjectName  string          `json:"project_name"`
	QuantityUsed int             `json:"quantity_used"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

// SpendingReport is the aggregate spend over a window.
type SpendingReport struct {
	Days      int             `json:"days"`
	Rows      []SpendingRow   `json:"rows"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// Spending prices the request usage of the last N days using each item's
// unit price. Items without a price are listed with zero cost.
func (s *Service) Spending(ctx context.Context, now time.Time, days int) (*SpendingReport, error) {
	if days <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "days must be a positive integer")
	}

	since := now.AddDate(0, 0, -days)
	usage, err := s.repo.SumRequestUsage(ctx, since)
	if err != nil {
		return nil, err
	}

	report := &SpendingReport{Days: days, TotalCost: decimal.Zero}
	for _, row := range usage {
		item, err := s.items.FindByID(ctx, row.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}

		price := decimal.Zero
		if item.UnitPrice != nil {
			price = *item.UnitPrice
		}
		cost := price.Mul(decimal.NewFromInt(int64(row.QuantityUsed)))

		report.Rows = append(report.Rows, SpendingRow{
			ItemID:       item.ID,
			ItemName:     item.ItemName,
			ProjectName:  item.ProjectName,
			QuantityUsed: row.QuantityUsed,
			UnitPrice:    price,
			TotalCost:    cost,
		})
		report.TotalCost = report.TotalCost.Add(cost)
	}
	return report, nil
}
