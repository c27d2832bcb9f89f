package fines

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/conferia/conferia/internal/shared"
)

// RepositoryPort defines data access methods for the fine ledger. State
// transitions are guarded on the source state at the storage layer.
type RepositoryPort interface {
	Insert(ctx context.Context, fine Fine) error
	Get(ctx context.Context, fineID string) (Fine, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]Fine, error)
	ListAll(ctx context.Context) ([]Fine, error)
	SubmitFine(ctx context.Context, fineID, voucherRef string, paidAt time.Time) error
	ApproveFine(ctx context.Context, fineID string, validatedAt time.Time) (Fine, error)
	RejectFine(ctx context.Context, fineID string) error
}

// SettlementRecorder is the account/ledger collaborator invoked on approval.
type SettlementRecorder interface {
	RecordSettlement(ctx context.Context, accountID string, amount float64, memo string) error
}

// ApprovalTrail persists the submit/approve/reject history.
type ApprovalTrail interface {
	Record(ctx context.Context, log shared.ApprovalLog) error
}

// Notifier receives fine events fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, event, organizerID, detail string)
}

// CacheBumper invalidates derived report caches after ledger mutations.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

const approvalModule = "fines"

// Service handles fine ledger business logic.
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

// Issue creates a pending fine against an organizer.
func (s *Service) Issue(ctx context.Context, in IssueInput) (Fine, error) {
	if in.OrganizerID == "" {
		return Fine{}, errors.New("fines: organizer required")
	}
	if in.Description == "" {
		return Fine{}, errors.New("fines: description required")
	}
	if in.Amount <= 0 {
		return Fine{}, errors.New("fines: amount must be positive")
	}
	fine := Fine{
		ID:          uuid.NewString(),
		OrganizerID: in.OrganizerID,
		Description: in.Description,
		Amount:      in.Amount,
		State:       FineStatePending,
		IssuedAt:    time.Now().UTC(),
		DueDate:     in.DueDate,
	}
	if err := s.repo.Insert(ctx, fine); err != nil {
		return Fine{}, err
	}
	s.notify(ctx, "fine.issued", in.OrganizerID, in.Description)
	s.bump(ctx)
	return fine, nil
}

// Get returns a single fine.
func (s *Service) Get(ctx context.Context, fineID string) (Fine, error) {
	return s.repo.Get(ctx, fineID)
}

// ListByOrganizer returns the organizer's fines newest first.
func (s *Service) ListByOrganizer(ctx context.Context, organizerID string) ([]Fine, error) {
	return s.repo.ListByOrganizer(ctx, organizerID)
}

// ListAll returns every fine newest first.
func (s *Service) ListAll(ctx context.Context) ([]Fine, error) {
	return s.repo.ListAll(ctx)
}

// SubmitPayment transitions a fine PENDING to AWAITING_VALIDATION, stamping
// the voucher reference. Resubmitting a settled fine fails without changes.
func (s *Service) SubmitPayment(ctx context.Context, in SubmitPaymentInput) error {
	if in.VoucherRef == "" {
		return errors.New("fines: voucher reference required")
	}
	if err := s.repo.SubmitFine(ctx, in.FineID, in.VoucherRef, time.Now().UTC()); err != nil {
		return err
	}
	s.recordApproval(ctx, shared.ApprovalSubmit, in.FineID, "voucher "+in.VoucherRef, in.ActorID)
	s.bump(ctx)
	return nil
}

// Approve transitions a fine AWAITING_VALIDATION to PAID and records the
// settlement against the destination account.
func (s *Service) Approve(ctx context.Context, in ApproveInput) error {
	if in.AccountID == "" {
		return errors.New("fines: destination account required")
	}
	fine, err := s.repo.ApproveFine(ctx, in.FineID, time.Now().UTC())
	if err != nil {
		return err
	}
	memo := fmt.Sprintf("fine %s (%s)", fine.ID, fine.Description)
	if err := s.settlements.RecordSettlement(ctx, in.AccountID, fine.Amount, memo); err != nil {
		return fmt.Errorf("fines: record settlement (%v): %w", err, shared.ErrCollaboratorUnavailable)
	}
	s.recordApproval(ctx, shared.ApprovalApprove, in.FineID, "account "+in.AccountID, in.ActorID)
	s.notify(ctx, "fine.approved", fine.OrganizerID, memo)
	s.bump(ctx)
	return nil
}

// Reject transitions a fine AWAITING_VALIDATION back to PENDING, clearing
// voucher evidence. The reason is kept in the approval trail.
func (s *Service) Reject(ctx context.Context, in RejectInput) error {
	if in.Reason == "" {
		return errors.New("fines: rejection reason required")
	}
	fine, err := s.repo.Get(ctx, in.FineID)
	if err != nil {
		return err
	}
	if err := s.repo.RejectFine(ctx, in.FineID); err != nil {
		return err
	}
	s.recordApproval(ctx, shared.ApprovalReject, in.FineID, in.Reason, in.ActorID)
	s.notify(ctx, "fine.rejected", fine.OrganizerID, in.Reason)
	s.bump(ctx)
	return nil
}

// PaidTotal sums validated fine amounts, the separately tracked revenue
// category used by the global report.
func (s *Service) PaidTotal(ctx context.Context) (float64, error) {
	fines, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, f := range fines {
		if f.State == FineStatePaid {
			total += f.Amount
		}
	}
	return total, nil
}

func (s *Service) recordApproval(ctx context.Context, action shared.ApprovalAction, fineID, note, actorID string) {
	if s.approvals == nil {
		return
	}
	err := s.approvals.Record(ctx, shared.ApprovalLog{
		Module:  approvalModule,
		RefID:   fineID,
		ActorID: actorID,
		Action:  action,
		Note:    note,
		At:      time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("record approval", slog.Any("error", err))
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
