package aggregate

import (
	"github.com/shopspring/decimal"
)

type CategorizedRecord interface {
	Dated
	Categorized
}

// Summary is everything the monthly dashboard shows.
type Summary struct {
	Month               MonthSelector   `json:"month"`
	ExpenseTotal        decimal.Decimal `json:"expense_total"`
	IncomeTotal         decimal.Decimal `json:"income_total"`
	NetBalance          decimal.Decimal `json:"net_balance"`
	ExpenseCount        int             `json:"expense_count"`
	IncomeCount         int             `json:"income_count"`
	AllTimeExpenseTotal decimal.Decimal `json:"all_time_expense_total"`
	Categories          *Totals         `json:"categories"`
}

func (s Summary) Positive() bool {
	return !s.NetBalance.IsNegative()
}

func Summarize[E CategorizedRecord, I Record](expenses []E, incomes []I, sel MonthSelector) Summary {
	monthExpenses := FilterByMonth(expenses, sel)
	monthIncomes := FilterByMonth(incomes, sel)

	expenseTotal := SumAmounts(monthExpenses)
	incomeTotal := SumAmounts(monthIncomes)

	return Summary{
		Month:               sel,
		ExpenseTotal:        expenseTotal,
		IncomeTotal:         incomeTotal,
		NetBalance:          NetBalance(incomeTotal, expenseTotal),
		ExpenseCount:        Count(monthExpenses),
		IncomeCount:         Count(monthIncomes),
		AllTimeExpenseTotal: SumAmounts(All(expenses)),
		Categories:          CategoryTotals(monthExpenses),
	}
}
