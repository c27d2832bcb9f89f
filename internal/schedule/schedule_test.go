package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conferia/conferia/internal/shared"
)

func TestGenerateQuarter(t *testing.T) {
	cfg := Config{MonthlyAmount: 50, DeadlineDay: 5, StartMonth: "2026-01", EndMonth: "2026-03"}
	require.NoError(t, cfg.Validate())

	periods := Generate(cfg)
	require.Len(t, periods, 3)
	require.Equal(t, "2026-01", periods[0].ID)
	require.Equal(t, "January", periods[0].Label)
	require.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), periods[0].Deadline)
	require.Equal(t, time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC), periods[1].Deadline)
	require.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), periods[2].Deadline)
}

func TestGenerateClampsDeadlineDay(t *testing.T) {
	cfg := Config{MonthlyAmount: 50, DeadlineDay: 31, StartMonth: "2026-01", EndMonth: "2026-04"}
	periods := Generate(cfg)
	require.Len(t, periods, 4)

	require.Equal(t, 31, periods[0].Deadline.Day())
	// February 2026 has 28 days.
	require.Equal(t, 28, periods[1].Deadline.Day())
	require.Equal(t, 31, periods[2].Deadline.Day())
	require.Equal(t, 30, periods[3].Deadline.Day())
}

func TestGenerateLeapFebruary(t *testing.T) {
	cfg := Config{MonthlyAmount: 50, DeadlineDay: 30, StartMonth: "2028-02", EndMonth: "2028-02"}
	periods := Generate(cfg)
	require.Len(t, periods, 1)
	require.Equal(t, 29, periods[0].Deadline.Day())
}

func TestGenerateCrossesYearBoundary(t *testing.T) {
	cfg := Config{MonthlyAmount: 50, DeadlineDay: 15, StartMonth: "2026-11", EndMonth: "2027-02"}
	periods := Generate(cfg)
	require.Len(t, periods, 4)
	require.Equal(t, "2026-11", periods[0].ID)
	require.Equal(t, "2026-12", periods[1].ID)
	require.Equal(t, "2027-01", periods[2].ID)
	require.Equal(t, "2027-02", periods[3].ID)
}

func TestGenerateEmptyWhenStartAfterEnd(t *testing.T) {
	cfg := Config{MonthlyAmount: 50, DeadlineDay: 5, StartMonth: "2026-06", EndMonth: "2026-01"}
	require.Empty(t, Generate(cfg))
}

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := Config{MonthlyAmount: 50, DeadlineDay: 10, StartMonth: "2026-01", EndMonth: "2026-12"}
	first := Generate(cfg)
	second := Generate(cfg)
	require.Equal(t, first, second)
}

func TestConfigValidate(t *testing.T) {
	base := Config{MonthlyAmount: 50, DeadlineDay: 5, StartMonth: "2026-01", EndMonth: "2026-03"}
	require.NoError(t, base.Validate())

	bad := base
	bad.DeadlineDay = 0
	require.Error(t, bad.Validate())

	bad = base
	bad.DeadlineDay = 32
	require.Error(t, bad.Validate())

	bad = base
	bad.MonthlyAmount = 0
	require.Error(t, bad.Validate())

	bad = base
	bad.StartMonth = "January 2026"
	require.Error(t, bad.Validate())
}

func TestGuardShrink(t *testing.T) {
	// Shrinking below settled periods must fail naming the latest conflict.
	err := GuardShrink("2026-01", "2026-02", []string{"2026-01", "2026-03", "2026-04"})
	require.ErrorIs(t, err, shared.ErrConfigurationConflict)
	require.Contains(t, err.Error(), "2026-04")

	// Shrinking over only unsettled periods succeeds.
	require.NoError(t, GuardShrink("2026-01", "2026-02", []string{"2026-01", "2026-02"}))
	require.NoError(t, GuardShrink("2026-01", "2026-02", nil))
}

func TestGuardShrinkStartMonth(t *testing.T) {
	// Moving the start forward past a settled period must fail naming the
	// earliest conflict.
	err := GuardShrink("2026-02", "2026-12", []string{"2026-01", "2026-02"})
	require.ErrorIs(t, err, shared.ErrConfigurationConflict)
	require.Contains(t, err.Error(), "2026-01")

	// Moving the start forward over unsettled months only is allowed.
	require.NoError(t, GuardShrink("2026-02", "2026-12", []string{"2026-02", "2026-03"}))
}
