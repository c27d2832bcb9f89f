package reporting

import (
	"time"

	"github.com/conferia/conferia/internal/contributions"
	"github.com/conferia/conferia/internal/fines"
	"github.com/conferia/conferia/internal/schedule"
)

// OrganizerSummary aggregates one organizer's contribution standing.
type OrganizerSummary struct {
	OrganizerID      string  `json:"organizerId"`
	Name             string  `json:"name"`
	TotalExpected    float64 `json:"totalExpected"`
	TotalPaid        float64 `json:"totalPaid"`
	OutstandingCount int     `json:"outstandingCount"`
	IsLate           bool    `json:"isLate"`
}

// GlobalTotals sums contribution figures across all organizers. Paid fines
// are a separate revenue category, never folded into the per-period totals.
type GlobalTotals struct {
	TotalExpected    float64 `json:"totalExpected"`
	TotalPaid        float64 `json:"totalPaid"`
	TotalOutstanding float64 `json:"totalOutstanding"`
	PaidFines        float64 `json:"paidFines"`
	OrganizerCount   int     `json:"organizerCount"`
	LateCount        int     `json:"lateCount"`
}

// BudgetStatus enumerates budget execution levels.
type BudgetStatus string

const (
	// BudgetNormal covers execution below 80 percent.
	BudgetNormal BudgetStatus = "NORMAL"
	// BudgetAlert covers execution from 80 up to and including 100 percent.
	BudgetAlert BudgetStatus = "ALERT"
	// BudgetExceeded covers execution above 100 percent.
	BudgetExceeded BudgetStatus = "EXCEEDED"
)

// BudgetRow is one expense category's execution against its budget.
type BudgetRow struct {
	Category string       `json:"category"`
	Budgeted float64      `json:"budgeted"`
	Executed float64      `json:"executed"`
	Pct      float64      `json:"pct"`
	Status   BudgetStatus `json:"status"`
}

// PunctualityRow counts one organizer's validated payments against the
// period deadlines.
type PunctualityRow struct {
	OrganizerID string `json:"organizerId"`
	Name        string `json:"name"`
	OnTime      int    `json:"onTime"`
	Late        int    `json:"late"`
}

// EvaluateBudget computes the execution percentage and its status band.
// Both band boundaries are inclusive on the ALERT side: exactly 80 and
// exactly 100 are ALERT. A zero budget reports 0 percent, NORMAL.
func EvaluateBudget(budgeted, executed float64) (float64, BudgetStatus) {
	if budgeted <= 0 {
		return 0, BudgetNormal
	}
	pct := executed / budgeted * 100
	switch {
	case pct > 100:
		return pct, BudgetExceeded
	case pct >= 80:
		return pct, BudgetAlert
	default:
		return pct, BudgetNormal
	}
}

// Summarize computes per-organizer standings from the ledger snapshot.
// Lateness compares the period deadline to now on the UTC wall clock.
func Summarize(cfg schedule.Config, periods []schedule.Period, organizers []contributions.Organizer, cells []contributions.Cell, now time.Time) []OrganizerSummary {
	deadlines := make(map[string]time.Time, len(periods))
	for _, p := range periods {
		deadlines[p.ID] = p.Deadline
	}
	byOrganizer := make(map[string][]contributions.Cell)
	for _, c := range cells {
		byOrganizer[c.OrganizerID] = append(byOrganizer[c.OrganizerID], c)
	}

	summaries := make([]OrganizerSummary, 0, len(organizers))
	for _, org := range organizers {
		summary := OrganizerSummary{
			OrganizerID:   org.ID,
			Name:          org.Name,
			TotalExpected: float64(len(periods)) * cfg.MonthlyAmount,
		}
		known := make(map[string]contributions.CellState, len(byOrganizer[org.ID]))
		for _, c := range byOrganizer[org.ID] {
			known[c.PeriodID] = c.State
			if c.State == contributions.CellStatePaid {
				summary.TotalPaid += c.ExpectedAmount
			}
		}
		for _, p := range periods {
			state, ok := known[p.ID]
			if !ok {
				state = contributions.CellStatePending
			}
			if state == contributions.CellStatePaid {
				continue
			}
			summary.OutstandingCount++
			if state == contributions.CellStatePending && deadlines[p.ID].Before(now) {
				summary.IsLate = true
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// Totals folds summaries and the fine ledger into the global report.
func Totals(summaries []OrganizerSummary, allFines []fines.Fine) GlobalTotals {
	totals := GlobalTotals{OrganizerCount: len(summaries)}
	for _, s := range summaries {
		totals.TotalExpected += s.TotalExpected
		totals.TotalPaid += s.TotalPaid
		if s.IsLate {
			totals.LateCount++
		}
	}
	totals.TotalOutstanding = totals.TotalExpected - totals.TotalPaid
	for _, f := range allFines {
		if f.State == fines.FineStatePaid {
			totals.PaidFines += f.Amount
		}
	}
	return totals
}

// Punctuality counts validated payments settled on or before their period
// deadline versus after it. Unvalidated cells are not counted.
func Punctuality(periods []schedule.Period, organizers []contributions.Organizer, cells []contributions.Cell) []PunctualityRow {
	deadlines := make(map[string]time.Time, len(periods))
	for _, p := range periods {
		deadlines[p.ID] = p.Deadline
	}
	names := make(map[string]string, len(organizers))
	rows := make(map[string]*PunctualityRow, len(organizers))
	order := make([]string, 0, len(organizers))
	for _, org := range organizers {
		names[org.ID] = org.Name
		rows[org.ID] = &PunctualityRow{OrganizerID: org.ID, Name: org.Name}
		order = append(order, org.ID)
	}
	for _, c := range cells {
		if c.State != contributions.CellStatePaid || c.ValidatedAt == nil {
			continue
		}
		row, ok := rows[c.OrganizerID]
		if !ok {
			continue
		}
		deadline, ok := deadlines[c.PeriodID]
		if !ok {
			continue
		}
		// On time means validated no later than end of deadline day.
		if c.ValidatedAt.Before(deadline.Add(24 * time.Hour)) {
			row.OnTime++
		} else {
			row.Late++
		}
	}
	out := make([]PunctualityRow, 0, len(order))
	for _, id := range order {
		out = append(out, *rows[id])
	}
	return out
}
