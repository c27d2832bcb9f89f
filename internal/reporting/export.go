package reporting

import (
	"encoding/csv"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

func formatAmount(v float64) string {
	return amountPrinter.Sprintf("%.2f", v)
}

// WriteSummaryCSV serialises the global totals and per-organizer standings
// to CSV.
func WriteSummaryCSV(w io.Writer, summaries []OrganizerSummary, totals GlobalTotals) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"Total Expected", formatAmount(totals.TotalExpected)},
		{"Total Paid", formatAmount(totals.TotalPaid)},
		{"Total Outstanding", formatAmount(totals.TotalOutstanding)},
		{"Paid Fines", formatAmount(totals.PaidFines)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{}); err != nil {
		return err
	}
	if err := writer.Write([]string{"Organizer", "Expected", "Paid", "Outstanding", "Late"}); err != nil {
		return err
	}
	for _, s := range summaries {
		late := "no"
		if s.IsLate {
			late = "yes"
		}
		if err := writer.Write([]string{
			s.Name,
			formatAmount(s.TotalExpected),
			formatAmount(s.TotalPaid),
			amountPrinter.Sprintf("%d", s.OutstandingCount),
			late,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteBudgetCSV emits budget execution rows as CSV.
func WriteBudgetCSV(w io.Writer, rows []BudgetRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Category", "Budgeted", "Executed", "Pct", "Status"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.Category,
			formatAmount(row.Budgeted),
			formatAmount(row.Executed),
			amountPrinter.Sprintf("%.1f", row.Pct),
			string(row.Status),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
