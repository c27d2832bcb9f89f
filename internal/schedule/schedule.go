// Package schedule generates the billing periods of the contribution plan.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/conferia/conferia/internal/shared"
)

// Period represents one billable month in the contribution schedule.
// Periods are immutable once generated; configuration changes regenerate
// the whole sequence.
type Period struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Deadline time.Time `json:"deadline"`
}

// Config captures the contribution plan settings.
type Config struct {
	MonthlyAmount float64 `json:"monthlyAmount" validate:"gt=0"`
	DeadlineDay   int     `json:"deadlineDay" validate:"min=1,max=31"`
	StartMonth    string  `json:"startMonth" validate:"required"`
	EndMonth      string  `json:"endMonth" validate:"required"`
}

var monthLabels = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Validate ensures the configuration is coherent before generation.
func (c Config) Validate() error {
	if c.MonthlyAmount <= 0 {
		return errors.New("schedule: monthly amount must be positive")
	}
	if c.DeadlineDay < 1 || c.DeadlineDay > 31 {
		return errors.New("schedule: deadline day must be within 1..31")
	}
	if _, _, err := parseMonth(c.StartMonth); err != nil {
		return err
	}
	if _, _, err := parseMonth(c.EndMonth); err != nil {
		return err
	}
	return nil
}

// parseMonth splits a YYYY-MM identifier.
func parseMonth(id string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(id))
	if err != nil {
		return 0, 0, fmt.Errorf("schedule: invalid month %q", id)
	}
	return t.Year(), t.Month(), nil
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// PeriodID formats the canonical YYYY-MM identifier.
func PeriodID(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// Generate produces the ordered period sequence from start to end month
// inclusive. Each deadline day is clamped to the last valid day of its
// month. A start month after the end month yields an empty sequence.
func Generate(cfg Config) []Period {
	startYear, startMonth, err := parseMonth(cfg.StartMonth)
	if err != nil {
		return nil
	}
	endYear, endMonth, err := parseMonth(cfg.EndMonth)
	if err != nil {
		return nil
	}

	var periods []Period
	year, month := startYear, startMonth
	for year < endYear || (year == endYear && month <= endMonth) {
		day := cfg.DeadlineDay
		if last := daysIn(year, month); day > last {
			day = last
		}
		periods = append(periods, Period{
			ID:       PeriodID(year, month),
			Label:    monthLabels[month-1],
			Deadline: time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		})
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	return periods
}

// GuardShrink rejects a reconfiguration whose range would drop a period
// that already holds settled cells, from either end. Period identifiers
// compare lexicographically in chronological order, so the conflicting
// period is the extreme settled identifier outside the new bounds.
func GuardShrink(newStartMonth, newEndMonth string, settledPeriodIDs []string) error {
	if _, _, err := parseMonth(newStartMonth); err != nil {
		return err
	}
	if _, _, err := parseMonth(newEndMonth); err != nil {
		return err
	}
	conflict := ""
	for _, id := range settledPeriodIDs {
		if id > newEndMonth && id > conflict {
			conflict = id
		}
	}
	if conflict == "" {
		for _, id := range settledPeriodIDs {
			if id < newStartMonth && (conflict == "" || id < conflict) {
				conflict = id
			}
		}
	}
	if conflict != "" {
		return fmt.Errorf("schedule: period %s holds settled contributions: %w", conflict, shared.ErrConfigurationConflict)
	}
	return nil
}
