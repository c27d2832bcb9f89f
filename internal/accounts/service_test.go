package accounts

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conferia/conferia/internal/shared"
)

type memoryAccountRepo struct {
	accounts     map[string]*Account
	transactions map[string][]Transaction
}

func newMemoryAccountRepo() *memoryAccountRepo {
	return &memoryAccountRepo{
		accounts:     make(map[string]*Account),
		transactions: make(map[string][]Transaction),
	}
}

func (r *memoryAccountRepo) Insert(ctx context.Context, account Account) error {
	stored := account
	r.accounts[account.ID] = &stored
	return nil
}

func (r *memoryAccountRepo) Get(ctx context.Context, accountID string) (Account, error) {
	a, ok := r.accounts[accountID]
	if !ok {
		return Account{}, fmt.Errorf("accounts: %s: %w", accountID, shared.ErrNotFound)
	}
	return *a, nil
}

func (r *memoryAccountRepo) List(ctx context.Context) ([]Account, error) {
	var accounts []Account
	for _, a := range r.accounts {
		accounts = append(accounts, *a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts, nil
}

func (r *memoryAccountRepo) Delete(ctx context.Context, accountID string) error {
	if _, ok := r.accounts[accountID]; !ok {
		return fmt.Errorf("accounts: %s: %w", accountID, shared.ErrNotFound)
	}
	if n := len(r.transactions[accountID]); n > 0 {
		return fmt.Errorf("accounts: %s holds %d transactions: %w", accountID, n, shared.ErrConfigurationConflict)
	}
	delete(r.accounts, accountID)
	return nil
}

func (r *memoryAccountRepo) RecordTransaction(ctx context.Context, txn Transaction) error {
	a, ok := r.accounts[txn.AccountID]
	if !ok {
		return fmt.Errorf("accounts: %s: %w", txn.AccountID, shared.ErrNotFound)
	}
	a.Balance += txn.Amount
	r.transactions[txn.AccountID] = append(r.transactions[txn.AccountID], txn)
	return nil
}

func (r *memoryAccountRepo) ListTransactions(ctx context.Context, accountID string) ([]Transaction, error) {
	return r.transactions[accountID], nil
}

func createTestAccount(t *testing.T, svc *Service) Account {
	t.Helper()
	account, err := svc.Create(context.Background(), CreateAccountInput{Name: "main cash box", Kind: KindCash})
	require.NoError(t, err)
	return account
}

func TestCreateAccount(t *testing.T) {
	svc := NewService(newMemoryAccountRepo(), nil, nil)

	account := createTestAccount(t, svc)
	require.NotEmpty(t, account.ID)
	require.Equal(t, 0.0, account.Balance)

	_, err := svc.Create(context.Background(), CreateAccountInput{Name: "x", Kind: "WALLET"})
	require.Error(t, err)
}

func TestRecordSettlementAdjustsBalance(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryAccountRepo(), nil, nil)
	account := createTestAccount(t, svc)

	require.NoError(t, svc.RecordSettlement(ctx, account.ID, 100, "contribution O1"))
	require.NoError(t, svc.RecordSettlement(ctx, account.ID, 25, "fine O2"))

	got, err := svc.Get(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, 125.0, got.Balance)

	txns, err := svc.Transactions(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, txns, 2)
}

func TestRecordSettlementValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryAccountRepo(), nil, nil)
	account := createTestAccount(t, svc)

	require.Error(t, svc.RecordSettlement(ctx, account.ID, 0, "zero"))
	require.ErrorIs(t, svc.RecordSettlement(ctx, "ghost", 10, "missing"), shared.ErrNotFound)
}

func TestDeleteAccountWithTransactionsRejected(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryAccountRepo(), nil, nil)
	account := createTestAccount(t, svc)

	require.NoError(t, svc.RecordSettlement(ctx, account.ID, 50, "contribution"))

	err := svc.Delete(ctx, account.ID)
	require.ErrorIs(t, err, shared.ErrConfigurationConflict)

	// Still listed afterwards.
	accounts, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
}

func TestDeleteEmptyAccount(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryAccountRepo(), nil, nil)
	account := createTestAccount(t, svc)

	require.NoError(t, svc.Delete(ctx, account.ID))

	_, err := svc.Get(ctx, account.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
