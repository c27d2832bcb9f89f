package accounts

import "time"

// AccountKind enumerates treasury account kinds.
type AccountKind string

const (
	// KindCash is a physical cash box.
	KindCash AccountKind = "CASH"
	// KindBank is a bank account.
	KindBank AccountKind = "BANK"
)

// Account is a treasury destination for validated payments.
type Account struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Kind      AccountKind `json:"kind"`
	Balance   float64     `json:"balance"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Transaction is one settled movement on an account. Settlements from the
// contribution and fine ledgers append here on approval.
type Transaction struct {
	ID         string    `json:"id"`
	AccountID  string    `json:"accountId"`
	Amount     float64   `json:"amount"`
	Memo       string    `json:"memo"`
	RecordedAt time.Time `json:"recordedAt"`
}

// CreateAccountInput bundles account creation.
type CreateAccountInput struct {
	Name string
	Kind AccountKind
}
