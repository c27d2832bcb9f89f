package fines

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conferia/conferia/internal/shared"
)

type memoryFineRepo struct {
	fines map[string]*Fine
}

func newMemoryFineRepo() *memoryFineRepo {
	return &memoryFineRepo{fines: make(map[string]*Fine)}
}

func (r *memoryFineRepo) Insert(ctx context.Context, fine Fine) error {
	if _, exists := r.fines[fine.ID]; exists {
		return errors.New("duplicate fine id")
	}
	stored := fine
	r.fines[fine.ID] = &stored
	return nil
}

func (r *memoryFineRepo) Get(ctx context.Context, fineID string) (Fine, error) {
	f, ok := r.fines[fineID]
	if !ok {
		return Fine{}, fmt.Errorf("fines: %s: %w", fineID, shared.ErrNotFound)
	}
	return *f, nil
}

func (r *memoryFineRepo) ListByOrganizer(ctx context.Context, organizerID string) ([]Fine, error) {
	var fines []Fine
	for _, f := range r.fines {
		if f.OrganizerID == organizerID {
			fines = append(fines, *f)
		}
	}
	sort.Slice(fines, func(i, j int) bool { return fines[i].IssuedAt.After(fines[j].IssuedAt) })
	return fines, nil
}

func (r *memoryFineRepo) ListAll(ctx context.Context) ([]Fine, error) {
	var fines []Fine
	for _, f := range r.fines {
		fines = append(fines, *f)
	}
	sort.Slice(fines, func(i, j int) bool { return fines[i].IssuedAt.After(fines[j].IssuedAt) })
	return fines, nil
}

func (r *memoryFineRepo) SubmitFine(ctx context.Context, fineID, voucherRef string, paidAt time.Time) error {
	f, ok := r.fines[fineID]
	if !ok {
		return fmt.Errorf("fines: %s: %w", fineID, shared.ErrNotFound)
	}
	if f.State != FineStatePending {
		return fmt.Errorf("fines: %s is %s: %w", fineID, f.State, shared.ErrInvalidState)
	}
	f.State = FineStateAwaitingValidation
	f.VoucherRef = voucherRef
	at := paidAt
	f.PaidAt = &at
	return nil
}

func (r *memoryFineRepo) ApproveFine(ctx context.Context, fineID string, validatedAt time.Time) (Fine, error) {
	f, ok := r.fines[fineID]
	if !ok {
		return Fine{}, fmt.Errorf("fines: %s: %w", fineID, shared.ErrNotFound)
	}
	if f.State != FineStateAwaitingValidation {
		return Fine{}, fmt.Errorf("fines: %s is %s: %w", fineID, f.State, shared.ErrInvalidState)
	}
	f.State = FineStatePaid
	at := validatedAt
	f.ValidatedAt = &at
	return *f, nil
}

func (r *memoryFineRepo) RejectFine(ctx context.Context, fineID string) error {
	f, ok := r.fines[fineID]
	if !ok {
		return fmt.Errorf("fines: %s: %w", fineID, shared.ErrNotFound)
	}
	if f.State != FineStateAwaitingValidation {
		return fmt.Errorf("fines: %s is %s: %w", fineID, f.State, shared.ErrInvalidState)
	}
	f.State = FineStatePending
	f.VoucherRef = ""
	f.PaidAt = nil
	return nil
}

type memorySettlements struct {
	amounts []float64
	fail    bool
}

func (m *memorySettlements) RecordSettlement(ctx context.Context, accountID string, amount float64, memo string) error {
	if m.fail {
		return errors.New("account service down")
	}
	m.amounts = append(m.amounts, amount)
	return nil
}

type memoryApprovals struct {
	logs []shared.ApprovalLog
}

func (m *memoryApprovals) Record(ctx context.Context, log shared.ApprovalLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func issueTestFine(t *testing.T, svc *Service, organizerID string, amount float64) Fine {
	t.Helper()
	fine, err := svc.Issue(context.Background(), IssueInput{
		OrganizerID: organizerID,
		Description: "missed setup shift",
		Amount:      amount,
		ActorID:     "treasurer",
	})
	require.NoError(t, err)
	return fine
}

func TestIssueCreatesPendingFine(t *testing.T) {
	svc := NewService(newMemoryFineRepo(), &memorySettlements{}, nil, nil, nil, nil)

	fine := issueTestFine(t, svc, "O1", 25)
	require.NotEmpty(t, fine.ID)
	require.Equal(t, FineStatePending, fine.State)
	require.Equal(t, 25.0, fine.Amount)
	require.False(t, fine.IssuedAt.IsZero())
}

func TestIssueValidatesInput(t *testing.T) {
	svc := NewService(newMemoryFineRepo(), &memorySettlements{}, nil, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Issue(ctx, IssueInput{OrganizerID: "O1", Description: "late", Amount: 0})
	require.Error(t, err)

	_, err = svc.Issue(ctx, IssueInput{OrganizerID: "O1", Amount: 10})
	require.Error(t, err)
}

func TestSubmitApproveFlowRecordsSettlement(t *testing.T) {
	ctx := context.Background()
	settlements := &memorySettlements{}
	svc := NewService(newMemoryFineRepo(), settlements, nil, nil, nil, nil)

	fine := issueTestFine(t, svc, "O1", 25)

	require.NoError(t, svc.SubmitPayment(ctx, SubmitPaymentInput{FineID: fine.ID, VoucherRef: "v9", ActorID: "O1"}))

	got, err := svc.Get(ctx, fine.ID)
	require.NoError(t, err)
	require.Equal(t, FineStateAwaitingValidation, got.State)
	require.Equal(t, "v9", got.VoucherRef)

	require.NoError(t, svc.Approve(ctx, ApproveInput{FineID: fine.ID, AccountID: "A1", ActorID: "treasurer"}))

	got, err = svc.Get(ctx, fine.ID)
	require.NoError(t, err)
	require.Equal(t, FineStatePaid, got.State)
	require.Equal(t, []float64{25}, settlements.amounts)
}

func TestApprovalTrailStampsTimestamp(t *testing.T) {
	ctx := context.Background()
	approvals := &memoryApprovals{}
	svc := NewService(newMemoryFineRepo(), &memorySettlements{}, approvals, nil, nil, nil)

	fine := issueTestFine(t, svc, "O1", 25)

	before := time.Now().UTC()
	require.NoError(t, svc.SubmitPayment(ctx, SubmitPaymentInput{FineID: fine.ID, VoucherRef: "v1", ActorID: "O1"}))
	require.NoError(t, svc.Approve(ctx, ApproveInput{FineID: fine.ID, AccountID: "A1", ActorID: "treasurer"}))

	require.Len(t, approvals.logs, 2)
	for _, log := range approvals.logs {
		require.False(t, log.At.IsZero())
		require.False(t, log.At.Before(before))
	}
}

func TestSubmitRejectsSettledFine(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryFineRepo(), &memorySettlements{}, nil, nil, nil, nil)

	fine := issueTestFine(t, svc, "O1", 25)
	require.NoError(t, svc.SubmitPayment(ctx, SubmitPaymentInput{FineID: fine.ID, VoucherRef: "v1", ActorID: "O1"}))

	err := svc.SubmitPayment(ctx, SubmitPaymentInput{FineID: fine.ID, VoucherRef: "v2", ActorID: "O1"})
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestApprovePendingFineIsInvalidState(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryFineRepo(), &memorySettlements{}, nil, nil, nil, nil)

	fine := issueTestFine(t, svc, "O1", 25)
	err := svc.Approve(ctx, ApproveInput{FineID: fine.ID, AccountID: "A1", ActorID: "treasurer"})
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestApproveUnknownFine(t *testing.T) {
	svc := NewService(newMemoryFineRepo(), &memorySettlements{}, nil, nil, nil, nil)

	err := svc.Approve(context.Background(), ApproveInput{FineID: "ghost", AccountID: "A1", ActorID: "treasurer"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestApproveSurfacesSettlementFailure(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryFineRepo(), &memorySettlements{fail: true}, nil, nil, nil, nil)

	fine := issueTestFine(t, svc, "O1", 25)
	require.NoError(t, svc.SubmitPayment(ctx, SubmitPaymentInput{FineID: fine.ID, VoucherRef: "v1", ActorID: "O1"}))

	err := svc.Approve(ctx, ApproveInput{FineID: fine.ID, AccountID: "A1", ActorID: "treasurer"})
	require.ErrorIs(t, err, shared.ErrCollaboratorUnavailable)
}

func TestRejectReturnsFineToPending(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryFineRepo(), &memorySettlements{}, nil, nil, nil, nil)

	fine := issueTestFine(t, svc, "O1", 25)
	require.NoError(t, svc.SubmitPayment(ctx, SubmitPaymentInput{FineID: fine.ID, VoucherRef: "v1", ActorID: "O1"}))
	require.NoError(t, svc.Reject(ctx, RejectInput{FineID: fine.ID, Reason: "wrong amount", ActorID: "treasurer"}))

	got, err := svc.Get(ctx, fine.ID)
	require.NoError(t, err)
	require.Equal(t, FineStatePending, got.State)
	require.Empty(t, got.VoucherRef)
	require.Nil(t, got.PaidAt)

	// The fine can be resubmitted after rejection.
	require.NoError(t, svc.SubmitPayment(ctx, SubmitPaymentInput{FineID: fine.ID, VoucherRef: "v2", ActorID: "O1"}))
}

func TestRejectPendingFineIsInvalidState(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryFineRepo(), &memorySettlements{}, nil, nil, nil, nil)

	fine := issueTestFine(t, svc, "O1", 25)
	err := svc.Reject(ctx, RejectInput{FineID: fine.ID, Reason: "noop", ActorID: "treasurer"})
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestPaidTotalCountsOnlyValidatedFines(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryFineRepo(), &memorySettlements{}, nil, nil, nil, nil)

	paid := issueTestFine(t, svc, "O1", 25)
	require.NoError(t, svc.SubmitPayment(ctx, SubmitPaymentInput{FineID: paid.ID, VoucherRef: "v1", ActorID: "O1"}))
	require.NoError(t, svc.Approve(ctx, ApproveInput{FineID: paid.ID, AccountID: "A1", ActorID: "treasurer"}))

	submitted := issueTestFine(t, svc, "O2", 40)
	require.NoError(t, svc.SubmitPayment(ctx, SubmitPaymentInput{FineID: submitted.ID, VoucherRef: "v2", ActorID: "O2"}))

	issueTestFine(t, svc, "O3", 60)

	total, err := svc.PaidTotal(ctx)
	require.NoError(t, err)
	require.Equal(t, 25.0, total)
}
