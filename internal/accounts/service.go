package accounts

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/conferia/conferia/internal/shared"
)

// RepositoryPort defines data access methods for treasury accounts.
// RecordTransaction appends the movement and adjusts the balance in one
// transaction.
type RepositoryPort interface {
	Insert(ctx context.Context, account Account) error
	Get(ctx context.Context, accountID string) (Account, error)
	List(ctx context.Context) ([]Account, error)
	Delete(ctx context.Context, accountID string) error
	RecordTransaction(ctx context.Context, txn Transaction) error
	ListTransactions(ctx context.Context, accountID string) ([]Transaction, error)
}

// AuditPort records account lifecycle events.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles treasury account business logic. It implements the
// settlement collaborator used by the contribution and fine ledgers.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// Create opens a new treasury account with zero balance.
func (s *Service) Create(ctx context.Context, in CreateAccountInput) (Account, error) {
	if in.Name == "" {
		return Account{}, errors.New("accounts: name required")
	}
	if in.Kind != KindCash && in.Kind != KindBank {
		return Account{}, errors.New("accounts: kind must be CASH or BANK")
	}
	account := Account{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Kind:      in.Kind,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, account); err != nil {
		return Account{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "account.create",
			Entity:   "account",
			EntityID: account.ID,
			Meta:     map[string]any{"name": account.Name, "kind": string(account.Kind)},
			At:       account.CreatedAt,
		})
	}
	return account, nil
}

// Get returns a single account.
func (s *Service) Get(ctx context.Context, accountID string) (Account, error) {
	return s.repo.Get(ctx, accountID)
}

// List returns every account.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.repo.List(ctx)
}

// Delete removes an account. Accounts holding transactions cannot be
// deleted; the repository surfaces shared.ErrConfigurationConflict.
func (s *Service) Delete(ctx context.Context, accountID string) error {
	if err := s.repo.Delete(ctx, accountID); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "account.delete",
			Entity:   "account",
			EntityID: accountID,
			At:       time.Now().UTC(),
		})
	}
	return nil
}

// RecordSettlement appends a validated payment to the account and adjusts
// its balance atomically.
func (s *Service) RecordSettlement(ctx context.Context, accountID string, amount float64, memo string) error {
	if amount <= 0 {
		return errors.New("accounts: settlement amount must be positive")
	}
	txn := Transaction{
		ID:         uuid.NewString(),
		AccountID:  accountID,
		Amount:     amount,
		Memo:       memo,
		RecordedAt: time.Now().UTC(),
	}
	if err := s.repo.RecordTransaction(ctx, txn); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "account.settle",
			Entity:   "account",
			EntityID: accountID,
			Meta:     map[string]any{"amount": amount, "memo": memo},
			At:       txn.RecordedAt,
		})
	}
	s.logger.Info("settlement recorded",
		slog.String("account", accountID),
		slog.Float64("amount", amount))
	return nil
}

// Transactions returns an account's movements newest first.
func (s *Service) Transactions(ctx context.Context, accountID string) ([]Transaction, error) {
	if _, err := s.repo.Get(ctx, accountID); err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, accountID)
}
