package contributions

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conferia/conferia/internal/shared"
)

var planQ1 = []string{"2026-01", "2026-02", "2026-03"}

func cellsWith(states map[string]CellState) map[string]Cell {
	cells := make(map[string]Cell, len(states))
	for period, state := range states {
		c := Cell{OrganizerID: "O1", PeriodID: period, State: state, ExpectedAmount: 50}
		if state != CellStatePending {
			c.VoucherRef = "v-" + period
		}
		cells[period] = c
	}
	return cells
}

func TestStateOfDefaultsToPending(t *testing.T) {
	require.Equal(t, CellStatePending, StateOf(map[string]Cell{}, "2026-01"))
}

func TestValidateSelectionAcceptsPrefix(t *testing.T) {
	cells := cellsWith(map[string]CellState{
		"2026-01": CellStatePending,
		"2026-02": CellStatePending,
		"2026-03": CellStatePending,
	})
	require.NoError(t, ValidateSelection(cells, planQ1, []string{"2026-01"}))
	require.NoError(t, ValidateSelection(cells, planQ1, []string{"2026-01", "2026-02"}))
	require.NoError(t, ValidateSelection(cells, planQ1, []string{"2026-02", "2026-01", "2026-03"}))
}

func TestValidateSelectionRejectsGap(t *testing.T) {
	// All three periods pending: selecting February alone skips January.
	cells := cellsWith(map[string]CellState{
		"2026-01": CellStatePending,
		"2026-02": CellStatePending,
		"2026-03": CellStatePending,
	})
	err := ValidateSelection(cells, planQ1, []string{"2026-02"})
	require.ErrorIs(t, err, shared.ErrSequenceViolation)
	require.Contains(t, err.Error(), "2026-01")
}

func TestValidateSelectionAfterSettledPrefix(t *testing.T) {
	cells := cellsWith(map[string]CellState{
		"2026-01": CellStatePaid,
		"2026-02": CellStateAwaitingValidation,
		"2026-03": CellStatePending,
	})
	// March is now the first pending period, so selecting it is legal.
	require.NoError(t, ValidateSelection(cells, planQ1, []string{"2026-03"}))
}

func TestValidateSelectionRejectsSettledCell(t *testing.T) {
	cells := cellsWith(map[string]CellState{
		"2026-01": CellStatePaid,
		"2026-02": CellStatePending,
		"2026-03": CellStatePending,
	})
	err := ValidateSelection(cells, planQ1, []string{"2026-01", "2026-02"})
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestValidateSelectionRejectsUnknownPeriod(t *testing.T) {
	cells := cellsWith(map[string]CellState{"2026-01": CellStatePending})
	err := ValidateSelection(cells, planQ1, []string{"2027-01"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestValidateSelectionRejectsEmpty(t *testing.T) {
	err := ValidateSelection(map[string]Cell{}, planQ1, nil)
	require.ErrorIs(t, err, shared.ErrValidationRequired)
}

func TestVoucherGroupReturnsBatch(t *testing.T) {
	cells := []Cell{
		{OrganizerID: "O1", PeriodID: "2026-01", State: CellStateAwaitingValidation, VoucherRef: "v1"},
		{OrganizerID: "O1", PeriodID: "2026-02", State: CellStateAwaitingValidation, VoucherRef: "v1"},
		{OrganizerID: "O1", PeriodID: "2026-03", State: CellStatePending},
	}
	group, err := VoucherGroup(cells, "2026-02")
	require.NoError(t, err)
	require.Len(t, group, 2)
	require.Equal(t, "2026-01", group[0].PeriodID)
	require.Equal(t, "2026-02", group[1].PeriodID)
}

func TestVoucherGroupRejectsPendingCell(t *testing.T) {
	cells := []Cell{
		{OrganizerID: "O1", PeriodID: "2026-01", State: CellStatePending},
	}
	_, err := VoucherGroup(cells, "2026-01")
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestVerifySequenceInvariant(t *testing.T) {
	ok := cellsWith(map[string]CellState{
		"2026-01": CellStatePaid,
		"2026-02": CellStateAwaitingValidation,
		"2026-03": CellStatePending,
	})
	require.True(t, VerifySequenceInvariant(ok, planQ1))

	broken := cellsWith(map[string]CellState{
		"2026-01": CellStatePending,
		"2026-02": CellStatePaid,
		"2026-03": CellStatePending,
	})
	require.False(t, VerifySequenceInvariant(broken, planQ1))
}
