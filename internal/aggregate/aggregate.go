// Package aggregate derives monthly views from raw expense and income
// records: month filtering, sums, per category totals and net balance.
package aggregate

import (
	"iter"
	"time"

	"github.com/shopspring/decimal"
)

// OtherCategory names expenses that arrive without a category.
const OtherCategory = "Other"

type Dated interface {
	RecordDate() time.Time
}

type Valued interface {
	RecordAmount() decimal.Decimal
}

type Record interface {
	Dated
	Valued
}

type Categorized interface {
	Valued
	CategoryName() (string, bool)
}

// FilterByMonth yields the records dated within sel, in input order. The
// sequence is evaluated afresh on every range over it.
func FilterByMonth[T Dated](records []T, sel MonthSelector) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, r := range records {
			if !sel.Contains(r.RecordDate()) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// All yields every record.
func All[T any](records []T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, r := range records {
			if !yield(r) {
				return
			}
		}
	}
}

func SumAmounts[T Valued](seq iter.Seq[T]) decimal.Decimal {
	total := decimal.Zero
	for r := range seq {
		total = total.Add(r.RecordAmount())
	}
	return total
}

func Count[T any](seq iter.Seq[T]) int {
	n := 0
	for range seq {
		n++
	}
	return n
}

// CategoryTotals sums amounts per category name in a single pass. Names keep
// the order in which they were first seen.
func CategoryTotals[T Categorized](seq iter.Seq[T]) *Totals {
	totals := NewTotals()
	for r := range seq {
		name, ok := r.CategoryName()
		if !ok {
			name = OtherCategory
		}
		totals.Add(name, r.RecordAmount())
	}
	return totals
}

func NetBalance(incomeTotal, expenseTotal decimal.Decimal) decimal.Decimal {
	return incomeTotal.Sub(expenseTotal)
}

// FormatAmount renders an amount with two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
