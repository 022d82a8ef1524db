package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/frahmantamala/expense-tracker-client/internal"
	"github.com/frahmantamala/expense-tracker-client/internal/aggregate"
	"github.com/shopspring/decimal"
)

var (
	outputJSON bool
	monthFlag  string

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	gainStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatBalance(d decimal.Decimal) string {
	if d.IsNegative() {
		return lossStyle.Render(aggregate.FormatAmount(d))
	}
	return gainStyle.Render(aggregate.FormatAmount(d))
}

// selectedMonth reads --month, defaulting to the current month.
func selectedMonth() (aggregate.MonthSelector, error) {
	if monthFlag == "" {
		return aggregate.MonthOf(time.Now()), nil
	}
	sel, err := aggregate.ParseMonth(monthFlag)
	if err != nil {
		return aggregate.MonthSelector{}, invalidFlag("month", "month must look like 2024-01")
	}
	return sel, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, invalidFlag("amount", fmt.Sprintf("amount %q is not a number", raw))
	}
	return amount, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalidFlag("id", fmt.Sprintf("id %q is not a positive number", raw))
	}
	return id, nil
}

func invalidFlag(field, message string) error {
	return internal.ErrInvalidInput.WithDetails(internal.ValidationErrors{
		Errors: []internal.ValidationError{{Field: field, Message: message, Code: string(internal.ErrCodeValidationFailed)}},
	})
}
