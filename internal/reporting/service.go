package reporting

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/conferia/conferia/internal/contributions"
	"github.com/conferia/conferia/internal/fines"
	"github.com/conferia/conferia/internal/schedule"
)

// LedgerSource exposes the contribution ledger snapshot the reports read.
type LedgerSource interface {
	GetConfig(ctx context.Context) (schedule.Config, error)
	ListPeriods(ctx context.Context) ([]schedule.Period, error)
	ListOrganizers(ctx context.Context) ([]contributions.Organizer, error)
	ListAllCells(ctx context.Context) ([]contributions.Cell, error)
}

// FineSource exposes the fine ledger snapshot.
type FineSource interface {
	ListAll(ctx context.Context) ([]fines.Fine, error)
}

// BudgetPort exposes stored budget lines per expense category.
type BudgetPort interface {
	ListBudgets(ctx context.Context) ([]BudgetRow, error)
	UpsertBudget(ctx context.Context, category string, budgeted, executed float64) error
}

// Service builds the treasury reports. Results are cached behind the
// versioned redis cache and concurrent loads collapse via singleflight.
type Service struct {
	ledger  LedgerSource
	fines   FineSource
	budgets BudgetPort
	cache   *Cache
	group   singleflight.Group
	now     func() time.Time
	logger  *slog.Logger
}

// NewService builds Service instance. The cache may be nil, in which case
// every call recomputes.
func NewService(ledger LedgerSource, fineSource FineSource, budgets BudgetPort, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		ledger:  ledger,
		fines:   fineSource,
		budgets: budgets,
		cache:   cache,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger,
	}
}

type summaryReport struct {
	Summaries []OrganizerSummary `json:"summaries"`
	Totals    GlobalTotals       `json:"totals"`
}

// Summary returns per-organizer standings plus the global totals.
func (s *Service) Summary(ctx context.Context) ([]OrganizerSummary, GlobalTotals, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "summary")
	if err != nil {
		return nil, GlobalTotals{}, err
	}
	var report summaryReport
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
		value, err, _ := s.group.Do(key, func() (interface{}, error) {
			return s.buildSummary(ctx)
		})
		return value, err
	})
	if err != nil {
		return nil, GlobalTotals{}, err
	}
	return report.Summaries, report.Totals, nil
}

func (s *Service) buildSummary(ctx context.Context) (summaryReport, error) {
	cfg, err := s.ledger.GetConfig(ctx)
	if err != nil {
		return summaryReport{}, err
	}
	periods, err := s.ledger.ListPeriods(ctx)
	if err != nil {
		return summaryReport{}, err
	}
	organizers, err := s.ledger.ListOrganizers(ctx)
	if err != nil {
		return summaryReport{}, err
	}
	cells, err := s.ledger.ListAllCells(ctx)
	if err != nil {
		return summaryReport{}, err
	}
	allFines, err := s.fines.ListAll(ctx)
	if err != nil {
		return summaryReport{}, err
	}
	summaries := Summarize(cfg, periods, organizers, cells, s.now())
	return summaryReport{Summaries: summaries, Totals: Totals(summaries, allFines)}, nil
}

// BudgetExecution returns every category's execution row with its status.
func (s *Service) BudgetExecution(ctx context.Context) ([]BudgetRow, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "budget")
	if err != nil {
		return nil, err
	}
	var rows []BudgetRow
	err = s.cache.FetchJSON(ctx, key, &rows, func(ctx context.Context) (interface{}, error) {
		value, err, _ := s.group.Do(key, func() (interface{}, error) {
			return s.budgets.ListBudgets(ctx)
		})
		return value, err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SetBudget upserts one category's budget line.
func (s *Service) SetBudget(ctx context.Context, category string, budgeted, executed float64) error {
	if err := s.budgets.UpsertBudget(ctx, category, budgeted, executed); err != nil {
		return err
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("bump report cache", slog.Any("error", err))
	}
	return nil
}

// PunctualityReport counts on-time versus late validated payments per
// organizer.
func (s *Service) PunctualityReport(ctx context.Context) ([]PunctualityRow, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "punctuality")
	if err != nil {
		return nil, err
	}
	var rows []PunctualityRow
	err = s.cache.FetchJSON(ctx, key, &rows, func(ctx context.Context) (interface{}, error) {
		value, err, _ := s.group.Do(key, func() (interface{}, error) {
			return s.buildPunctuality(ctx)
		})
		return value, err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) buildPunctuality(ctx context.Context) ([]PunctualityRow, error) {
	periods, err := s.ledger.ListPeriods(ctx)
	if err != nil {
		return nil, err
	}
	organizers, err := s.ledger.ListOrganizers(ctx)
	if err != nil {
		return nil, err
	}
	cells, err := s.ledger.ListAllCells(ctx)
	if err != nil {
		return nil, err
	}
	return Punctuality(periods, organizers, cells), nil
}
