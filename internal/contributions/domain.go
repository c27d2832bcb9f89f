package contributions

import "time"

// CellState enumerates contribution cell states.
type CellState string

const (
	// CellStatePending marks an unpaid cell, the default for missing records.
	CellStatePending CellState = "PENDING"
	// CellStateAwaitingValidation marks a submitted payment waiting for the treasurer.
	CellStateAwaitingValidation CellState = "AWAITING_VALIDATION"
	// CellStatePaid marks a validated payment. Terminal.
	CellStatePaid CellState = "PAID"
)

// Cell is the payment record for one organizer in one billing period.
type Cell struct {
	OrganizerID    string     `json:"organizerId"`
	PeriodID       string     `json:"periodId"`
	State          CellState  `json:"state"`
	ExpectedAmount float64    `json:"expectedAmount"`
	VoucherRef     string     `json:"voucherRef,omitempty"`
	PaidAt         *time.Time `json:"paidAt,omitempty"`
	ValidatedAt    *time.Time `json:"validatedAt,omitempty"`
}

// Organizer is a committee member owing recurring monthly dues.
type Organizer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// SubmitPaymentInput bundles a contribution payment submission.
type SubmitPaymentInput struct {
	OrganizerID string
	PeriodIDs   []string
	VoucherRef  string
	Amount      float64
	ActorID     string
}

// ApproveInput bundles a treasurer approval of a submitted batch.
type ApproveInput struct {
	OrganizerID string
	PeriodIDs   []string
	AccountID   string
	ActorID     string
}

// RejectInput bundles a treasurer rejection of a submitted batch.
type RejectInput struct {
	OrganizerID string
	PeriodIDs   []string
	Reason      string
	ActorID     string
}
