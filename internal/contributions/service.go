package contributions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/conferia/conferia/internal/schedule"
	"github.com/conferia/conferia/internal/shared"
)

// RepositoryPort defines data access methods for the contribution ledger.
// Batch mutations are transactional: either every named cell changes state
// or none does.
type RepositoryPort interface {
	GetConfig(ctx context.Context) (schedule.Config, error)
	SaveConfig(ctx context.Context, cfg schedule.Config) error
	ListPeriods(ctx context.Context) ([]schedule.Period, error)
	ReplacePeriods(ctx context.Context, periods []schedule.Period) error
	ListOrganizers(ctx context.Context) ([]Organizer, error)
	ListCells(ctx context.Context, organizerID string) ([]Cell, error)
	ListAllCells(ctx context.Context) ([]Cell, error)
	ListSettledPeriodIDs(ctx context.Context) ([]string, error)
	SeedCells(ctx context.Context, cells []Cell) error
	SubmitCells(ctx context.Context, organizerID string, periodIDs []string, voucherRef string, paidAt time.Time) error
	ApproveCells(ctx context.Context, organizerID string, periodIDs []string, validatedAt time.Time) (float64, error)
	RejectCells(ctx context.Context, organizerID string, periodIDs []string) error
}

// SettlementRecorder is the account/ledger collaborator invoked on approval.
type SettlementRecorder interface {
	RecordSettlement(ctx context.Context, accountID string, amount float64, memo string) error
}

// ApprovalTrail persists the submit/approve/reject history.
type ApprovalTrail interface {
	Record(ctx context.Context, log shared.ApprovalLog) error
}

// Notifier receives approval events fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, event, organizerID, detail string)
}

// CacheBumper invalidates derived report caches after ledger mutations.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

const approvalModule = "contributions"

// Service handles contribution ledger business logic.
type Service struct {
	repo        RepositoryPort
	settlements SettlementRecorder
	approvals   ApprovalTrail
	notifier    Notifier
	cache       CacheBumper
	logger      *slog.Logger
}

// NewService builds Service instance. Approval trail, notifier and cache
// are optional collaborators.
func NewService(repo RepositoryPort, settlements SettlementRecorder, approvals ApprovalTrail, notifier Notifier, cache CacheBumper, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, settlements: settlements, approvals: approvals, notifier: notifier, cache: cache, logger: logger}
}

// Config returns the stored treasury configuration.
func (s *Service) Config(ctx context.Context) (schedule.Config, error) {
	return s.repo.GetConfig(ctx)
}

// Periods returns the ordered billing period sequence.
func (s *Service) Periods(ctx context.Context) ([]schedule.Period, error) {
	return s.repo.ListPeriods(ctx)
}

// Configure validates and applies a new treasury configuration,
// regenerating the period sequence. Shrinking the range below a period
// holding settled cells is rejected.
func (s *Service) Configure(ctx context.Context, cfg schedule.Config) ([]schedule.Period, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	settled, err := s.repo.ListSettledPeriodIDs(ctx)
	if err != nil {
		return nil, err
	}
	if err := schedule.GuardShrink(cfg.StartMonth, cfg.EndMonth, settled); err != nil {
		return nil, err
	}
	periods := schedule.Generate(cfg)
	if err := s.repo.SaveConfig(ctx, cfg); err != nil {
		return nil, err
	}
	if err := s.repo.ReplacePeriods(ctx, periods); err != nil {
		return nil, err
	}
	if err := s.seedPlan(ctx, cfg, periods); err != nil {
		return nil, err
	}
	s.bump(ctx)
	return periods, nil
}

// InitializePlan seeds a pending cell for every organizer and period pair.
// Already existing cells are left untouched, so re-initialising is safe.
func (s *Service) InitializePlan(ctx context.Context) error {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return err
	}
	periods, err := s.repo.ListPeriods(ctx)
	if err != nil {
		return err
	}
	if len(periods) == 0 {
		return errors.New("contributions: no periods configured")
	}
	if err := s.seedPlan(ctx, cfg, periods); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

func (s *Service) seedPlan(ctx context.Context, cfg schedule.Config, periods []schedule.Period) error {
	organizers, err := s.repo.ListOrganizers(ctx)
	if err != nil {
		return err
	}
	cells := make([]Cell, 0, len(organizers)*len(periods))
	for _, org := range organizers {
		for _, p := range periods {
			cells = append(cells, Cell{
				OrganizerID:    org.ID,
				PeriodID:       p.ID,
				State:          CellStatePending,
				ExpectedAmount: cfg.MonthlyAmount,
			})
		}
	}
	return s.repo.SeedCells(ctx, cells)
}

// GetCellState returns the cell state for one organizer and period,
// defaulting to PENDING when the cell does not exist.
func (s *Service) GetCellState(ctx context.Context, organizerID, periodID string) (CellState, error) {
	cells, err := s.repo.ListCells(ctx, organizerID)
	if err != nil {
		return "", err
	}
	return StateOf(CellLookup(cells), periodID), nil
}

// ListCells returns the organizer's cells ordered by period.
func (s *Service) ListCells(ctx context.Context, organizerID string) ([]Cell, error) {
	return s.repo.ListCells(ctx, organizerID)
}

// SelectForPayment validates that the requested periods form a prefix of
// the organizer's pending periods without mutating anything.
func (s *Service) SelectForPayment(ctx context.Context, organizerID string, periodIDs []string) error {
	cells, periodOrder, err := s.organizerSnapshot(ctx, organizerID)
	if err != nil {
		return err
	}
	return ValidateSelection(cells, periodOrder, periodIDs)
}

// SubmitPayment transitions the selected cells PENDING to
// AWAITING_VALIDATION, stamping the shared voucher reference. The batch is
// all-or-nothing; resubmitting a settled cell fails without changes.
func (s *Service) SubmitPayment(ctx context.Context, in SubmitPaymentInput) error {
	if in.VoucherRef == "" {
		return errors.New("contributions: voucher reference required")
	}
	if in.Amount <= 0 {
		return errors.New("contributions: amount must be positive")
	}
	cells, periodOrder, err := s.organizerSnapshot(ctx, in.OrganizerID)
	if err != nil {
		return err
	}
	if err := ValidateSelection(cells, periodOrder, in.PeriodIDs); err != nil {
		return err
	}
	if err := s.repo.SubmitCells(ctx, in.OrganizerID, in.PeriodIDs, in.VoucherRef, time.Now().UTC()); err != nil {
		return err
	}
	s.recordApproval(ctx, shared.ApprovalSubmit, in.OrganizerID, in.PeriodIDs, fmt.Sprintf("voucher %s amount %.2f", in.VoucherRef, in.Amount), in.ActorID)
	s.bump(ctx)
	return nil
}

// GroupByVoucher returns all cells submitted together with the named one.
func (s *Service) GroupByVoucher(ctx context.Context, organizerID, periodID string) ([]Cell, error) {
	cells, err := s.repo.ListCells(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	return VoucherGroup(cells, periodID)
}

// Approve transitions the named cells AWAITING_VALIDATION to PAID and
// records the settlement against the destination account. All-or-nothing.
func (s *Service) Approve(ctx context.Context, in ApproveInput) error {
	if len(in.PeriodIDs) == 0 {
		return fmt.Errorf("contributions: empty approval batch: %w", shared.ErrValidationRequired)
	}
	if in.AccountID == "" {
		return errors.New("contributions: destination account required")
	}
	total, err := s.repo.ApproveCells(ctx, in.OrganizerID, in.PeriodIDs, time.Now().UTC())
	if err != nil {
		return err
	}
	memo := fmt.Sprintf("contribution %s periods %v", in.OrganizerID, in.PeriodIDs)
	if err := s.settlements.RecordSettlement(ctx, in.AccountID, total, memo); err != nil {
		return fmt.Errorf("contributions: record settlement (%v): %w", err, shared.ErrCollaboratorUnavailable)
	}
	s.recordApproval(ctx, shared.ApprovalApprove, in.OrganizerID, in.PeriodIDs, "account "+in.AccountID, in.ActorID)
	s.notify(ctx, "contribution.approved", in.OrganizerID, memo)
	s.bump(ctx)
	return nil
}

// Reject transitions the named cells AWAITING_VALIDATION back to PENDING,
// clearing voucher evidence. The reason is kept in the approval trail.
func (s *Service) Reject(ctx context.Context, in RejectInput) error {
	if len(in.PeriodIDs) == 0 {
		return fmt.Errorf("contributions: empty rejection batch: %w", shared.ErrValidationRequired)
	}
	if in.Reason == "" {
		return errors.New("contributions: rejection reason required")
	}
	if err := s.repo.RejectCells(ctx, in.OrganizerID, in.PeriodIDs); err != nil {
		return err
	}
	s.recordApproval(ctx, shared.ApprovalReject, in.OrganizerID, in.PeriodIDs, in.Reason, in.ActorID)
	s.notify(ctx, "contribution.rejected", in.OrganizerID, in.Reason)
	s.bump(ctx)
	return nil
}

func (s *Service) organizerSnapshot(ctx context.Context, organizerID string) (map[string]Cell, []string, error) {
	periods, err := s.repo.ListPeriods(ctx)
	if err != nil {
		return nil, nil, err
	}
	order := make([]string, len(periods))
	for i, p := range periods {
		order[i] = p.ID
	}
	cells, err := s.repo.ListCells(ctx, organizerID)
	if err != nil {
		return nil, nil, err
	}
	return CellLookup(cells), order, nil
}

func (s *Service) recordApproval(ctx context.Context, action shared.ApprovalAction, organizerID string, periodIDs []string, note, actorID string) {
	if s.approvals == nil {
		return
	}
	for _, periodID := range periodIDs {
		err := s.approvals.Record(ctx, shared.ApprovalLog{
			Module:  approvalModule,
			RefID:   organizerID + ":" + periodID,
			ActorID: actorID,
			Action:  action,
			Note:    note,
			At:      time.Now().UTC(),
		})
		if err != nil {
			s.logger.Warn("record approval", slog.Any("error", err))
		}
	}
}

func (s *Service) notify(ctx context.Context, event, organizerID, detail string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, event, organizerID, detail)
}

func (s *Service) bump(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("bump report cache", slog.Any("error", err))
	}
}
