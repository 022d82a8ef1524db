package aggregate

import (
	"fmt"
	"time"
)

// MonthSelector picks a calendar month. Month is zero based, 0 is January.
type MonthSelector struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func NewMonthSelector(month, year int) (MonthSelector, error) {
	if month < 0 || month > 11 {
		return MonthSelector{}, fmt.Errorf("month %d out of range 0..11", month)
	}
	return MonthSelector{Month: month, Year: year}, nil
}

// MonthOf selects the month t falls in, in t's own location.
func MonthOf(t time.Time) MonthSelector {
	return MonthSelector{Month: int(t.Month()) - 1, Year: t.Year()}
}

// Step moves by delta months, carrying into the year in both directions.
func (m MonthSelector) Step(delta int) MonthSelector {
	total := m.Year*12 + m.Month + delta
	year, month := total/12, total%12
	if month < 0 {
		month += 12
		year--
	}
	return MonthSelector{Month: month, Year: year}
}

func (m MonthSelector) Next() MonthSelector { return m.Step(1) }

func (m MonthSelector) Previous() MonthSelector { return m.Step(-1) }

// Contains compares calendar month and year in t's location.
func (m MonthSelector) Contains(t time.Time) bool {
	return t.Year() == m.Year && int(t.Month())-1 == m.Month
}

func (m MonthSelector) String() string {
	return fmt.Sprintf("%s %d", time.Month(m.Month+1), m.Year)
}

// ParseMonth reads "2024-01" style values.
func ParseMonth(value string) (MonthSelector, error) {
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return MonthSelector{}, fmt.Errorf("month must look like 2024-01: %w", err)
	}
	return MonthOf(t), nil
}
