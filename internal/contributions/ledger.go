package contributions

import (
	"fmt"
	"sort"
	"strings"

	"github.com/conferia/conferia/internal/shared"
)

// The ledger rules are pure functions over a snapshot of one organizer's
// cells. Period identifiers are canonical YYYY-MM strings, so lexicographic
// order is chronological order.

// CellLookup indexes cells by period for one organizer.
func CellLookup(cells []Cell) map[string]Cell {
	lookup := make(map[string]Cell, len(cells))
	for _, c := range cells {
		lookup[c.PeriodID] = c
	}
	return lookup
}

// StateOf returns the cell state for a period, defaulting to PENDING when no
// cell exists.
func StateOf(cells map[string]Cell, periodID string) CellState {
	if c, ok := cells[periodID]; ok {
		return c.State
	}
	return CellStatePending
}

// PendingPeriods returns the chronologically ordered pending periods of the
// organizer given the full ordered period sequence.
func PendingPeriods(cells map[string]Cell, orderedPeriodIDs []string) []string {
	var pending []string
	for _, id := range orderedPeriodIDs {
		if StateOf(cells, id) == CellStatePending {
			pending = append(pending, id)
		}
	}
	return pending
}

// ValidateSelection enforces the sequential-payment rule: the requested
// periods, sorted chronologically, must form a prefix of the organizer's
// currently pending periods. A request naming a period that is already
// submitted or paid fails with ErrInvalidState; a request skipping an
// earlier pending period fails with ErrSequenceViolation naming the gap.
func ValidateSelection(cells map[string]Cell, orderedPeriodIDs []string, requested []string) error {
	if len(requested) == 0 {
		return fmt.Errorf("contributions: no periods selected: %w", shared.ErrValidationRequired)
	}

	known := make(map[string]bool, len(orderedPeriodIDs))
	for _, id := range orderedPeriodIDs {
		known[id] = true
	}

	sorted := append([]string(nil), requested...)
	sort.Strings(sorted)

	for _, id := range sorted {
		if !known[id] {
			return fmt.Errorf("contributions: period %s not in plan: %w", id, shared.ErrNotFound)
		}
		if state := StateOf(cells, id); state != CellStatePending {
			return fmt.Errorf("contributions: period %s is %s: %w", id, state, shared.ErrInvalidState)
		}
	}

	pending := PendingPeriods(cells, orderedPeriodIDs)
	for i, id := range sorted {
		if i >= len(pending) || pending[i] != id {
			return fmt.Errorf("contributions: selection skips pending periods %s: %w",
				strings.Join(missingPrefix(pending, sorted), ", "), shared.ErrSequenceViolation)
		}
	}
	return nil
}

// missingPrefix lists the pending periods that must be selected first.
func missingPrefix(pending, requested []string) []string {
	selected := make(map[string]bool, len(requested))
	for _, id := range requested {
		selected[id] = true
	}
	var missing []string
	for _, id := range pending {
		if id > requested[len(requested)-1] {
			break
		}
		if !selected[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

// VoucherGroup returns every cell of the organizer sharing the voucher
// reference of the named cell, so a treasurer validating one voucher sees
// the whole submitted batch.
func VoucherGroup(cells []Cell, periodID string) ([]Cell, error) {
	var anchor *Cell
	for i := range cells {
		if cells[i].PeriodID == periodID {
			anchor = &cells[i]
			break
		}
	}
	if anchor == nil {
		return nil, fmt.Errorf("contributions: period %s has no cell: %w", periodID, shared.ErrNotFound)
	}
	if anchor.State != CellStateAwaitingValidation {
		return nil, fmt.Errorf("contributions: period %s is %s: %w", periodID, anchor.State, shared.ErrInvalidState)
	}

	var group []Cell
	for _, c := range cells {
		if c.VoucherRef != "" && c.VoucherRef == anchor.VoucherRef {
			group = append(group, c)
		}
	}
	sort.Slice(group, func(i, j int) bool { return group[i].PeriodID < group[j].PeriodID })
	return group, nil
}

// VerifySequenceInvariant reports whether the settled periods form a prefix
// of the ordered plan, i.e. no pending period precedes a settled one.
func VerifySequenceInvariant(cells map[string]Cell, orderedPeriodIDs []string) bool {
	seenPending := false
	for _, id := range orderedPeriodIDs {
		if StateOf(cells, id) == CellStatePending {
			seenPending = true
			continue
		}
		if seenPending {
			return false
		}
	}
	return true
}
