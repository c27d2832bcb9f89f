package fines

import "time"

// FineState enumerates fine states. The machine mirrors contribution cells
// but each fine transitions on its own, with no cross-entity ordering.
type FineState string

const (
	// FineStatePending marks an unpaid fine.
	FineStatePending FineState = "PENDING"
	// FineStateAwaitingValidation marks a submitted payment waiting for the treasurer.
	FineStateAwaitingValidation FineState = "AWAITING_VALIDATION"
	// FineStatePaid marks a validated payment. Terminal.
	FineStatePaid FineState = "PAID"
)

// Fine is a one-off penalty charged to an organizer.
type Fine struct {
	ID          string     `json:"id"`
	OrganizerID string     `json:"organizerId"`
	Description string     `json:"description"`
	Amount      float64    `json:"amount"`
	State       FineState  `json:"state"`
	IssuedAt    time.Time  `json:"issuedAt"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	VoucherRef  string     `json:"voucherRef,omitempty"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	ValidatedAt *time.Time `json:"validatedAt,omitempty"`
}

// IssueInput bundles a treasurer fine issuance.
type IssueInput struct {
	OrganizerID string
	Description string
	Amount      float64
	DueDate     *time.Time
	ActorID     string
}

// SubmitPaymentInput bundles a fine payment submission.
type SubmitPaymentInput struct {
	FineID     string
	VoucherRef string
	ActorID    string
}

// ApproveInput bundles a treasurer approval of a submitted fine.
type ApproveInput struct {
	FineID    string
	AccountID string
	ActorID   string
}

// RejectInput bundles a treasurer rejection of a submitted fine.
type RejectInput struct {
	FineID  string
	Reason  string
	ActorID string
}
