package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conferia/conferia/internal/contributions"
	"github.com/conferia/conferia/internal/fines"
	"github.com/conferia/conferia/internal/schedule"
)

func quarterPlan(t *testing.T) (schedule.Config, []schedule.Period) {
	t.Helper()
	cfg := schedule.Config{MonthlyAmount: 50, DeadlineDay: 5, StartMonth: "2026-01", EndMonth: "2026-03"}
	require.NoError(t, cfg.Validate())
	return cfg, schedule.Generate(cfg)
}

func paidCell(organizerID, periodID string, validatedAt time.Time) contributions.Cell {
	return contributions.Cell{
		OrganizerID:    organizerID,
		PeriodID:       periodID,
		State:          contributions.CellStatePaid,
		ExpectedAmount: 50,
		ValidatedAt:    &validatedAt,
	}
}

func TestEvaluateBudgetBands(t *testing.T) {
	cases := []struct {
		name     string
		budgeted float64
		executed float64
		pct      float64
		status   BudgetStatus
	}{
		{"below alert", 1000, 795, 79.5, BudgetNormal},
		{"alert lower bound", 1000, 800, 80, BudgetAlert},
		{"inside alert", 1000, 950, 95, BudgetAlert},
		{"alert upper bound", 1000, 1000, 100, BudgetAlert},
		{"exceeded", 1000, 1001, 100.1, BudgetExceeded},
		{"zero budget", 0, 500, 0, BudgetNormal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pct, status := EvaluateBudget(tc.budgeted, tc.executed)
			require.InDelta(t, tc.pct, pct, 0.0001)
			require.Equal(t, tc.status, status)
		})
	}
}

func TestSummarizePaidAndOutstanding(t *testing.T) {
	cfg, periods := quarterPlan(t)
	organizers := []contributions.Organizer{{ID: "O1", Name: "Ana"}}
	validated := time.Date(2026, 1, 4, 10, 0, 0, 0, time.UTC)
	cells := []contributions.Cell{
		paidCell("O1", "2026-01", validated),
		paidCell("O1", "2026-02", validated),
		{OrganizerID: "O1", PeriodID: "2026-03", State: contributions.CellStatePending, ExpectedAmount: 50},
	}
	now := time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)

	summaries := Summarize(cfg, periods, organizers, cells, now)
	require.Len(t, summaries, 1)
	require.Equal(t, 150.0, summaries[0].TotalExpected)
	require.Equal(t, 100.0, summaries[0].TotalPaid)
	require.Equal(t, 1, summaries[0].OutstandingCount)
	// 2026-03 deadline (March 5) is still ahead of now.
	require.False(t, summaries[0].IsLate)
}

func TestSummarizeFlagsLateOrganizer(t *testing.T) {
	cfg, periods := quarterPlan(t)
	organizers := []contributions.Organizer{{ID: "O1", Name: "Ana"}}
	now := time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)

	// No cells at all: every period counts as pending.
	summaries := Summarize(cfg, periods, organizers, nil, now)
	require.Len(t, summaries, 1)
	require.Equal(t, 3, summaries[0].OutstandingCount)
	require.True(t, summaries[0].IsLate)
}

func TestSummarizeAwaitingValidationIsNotLatePaid(t *testing.T) {
	cfg, periods := quarterPlan(t)
	organizers := []contributions.Organizer{{ID: "O1", Name: "Ana"}}
	cells := []contributions.Cell{
		{OrganizerID: "O1", PeriodID: "2026-01", State: contributions.CellStateAwaitingValidation, ExpectedAmount: 50},
		{OrganizerID: "O1", PeriodID: "2026-02", State: contributions.CellStatePending, ExpectedAmount: 50},
		{OrganizerID: "O1", PeriodID: "2026-03", State: contributions.CellStatePending, ExpectedAmount: 50},
	}
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	summaries := Summarize(cfg, periods, organizers, cells, now)
	// Submitted but unvalidated counts as outstanding, not paid, but does
	// not mark the organizer late for that period.
	require.Equal(t, 0.0, summaries[0].TotalPaid)
	require.Equal(t, 3, summaries[0].OutstandingCount)
	require.False(t, summaries[0].IsLate)
}

func TestTotalsKeepFinesSeparate(t *testing.T) {
	summaries := []OrganizerSummary{
		{OrganizerID: "O1", TotalExpected: 150, TotalPaid: 100, IsLate: true},
		{OrganizerID: "O2", TotalExpected: 150, TotalPaid: 150},
	}
	allFines := []fines.Fine{
		{ID: "f1", OrganizerID: "O1", Amount: 25, State: fines.FineStatePaid},
		{ID: "f2", OrganizerID: "O2", Amount: 40, State: fines.FineStateAwaitingValidation},
	}

	totals := Totals(summaries, allFines)
	require.Equal(t, 300.0, totals.TotalExpected)
	require.Equal(t, 250.0, totals.TotalPaid)
	require.Equal(t, 50.0, totals.TotalOutstanding)
	require.Equal(t, 25.0, totals.PaidFines)
	require.Equal(t, 2, totals.OrganizerCount)
	require.Equal(t, 1, totals.LateCount)
}

func TestPunctualityCountsValidatedOnly(t *testing.T) {
	_, periods := quarterPlan(t)
	organizers := []contributions.Organizer{{ID: "O1", Name: "Ana"}, {ID: "O2", Name: "Luis"}}

	onTime := time.Date(2026, 1, 5, 18, 0, 0, 0, time.UTC)
	late := time.Date(2026, 2, 15, 9, 0, 0, 0, time.UTC)
	cells := []contributions.Cell{
		paidCell("O1", "2026-01", onTime),
		paidCell("O1", "2026-02", late),
		{OrganizerID: "O2", PeriodID: "2026-01", State: contributions.CellStateAwaitingValidation, ExpectedAmount: 50},
	}

	rows := Punctuality(periods, organizers, cells)
	require.Len(t, rows, 2)
	require.Equal(t, 1, rows[0].OnTime)
	require.Equal(t, 1, rows[0].Late)
	require.Equal(t, 0, rows[1].OnTime)
	require.Equal(t, 0, rows[1].Late)
}
