package expense

import (
	"time"

	expenseDatamodel "github.com/frahmantamala/expense-tracker-client/internal/core/datamodel/expense"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Expense struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	CategoryID  int64           `json:"category_id"`
	Category    *Category       `json:"category,omitempty"`
}

func (e Expense) RecordDate() time.Time {
	return e.Date
}

func (e Expense) RecordAmount() decimal.Decimal {
	return e.Amount
}

// CategoryName reports the category name, or false when the record came
// back without one.
func (e Expense) CategoryName() (string, bool) {
	if e.Category == nil || e.Category.Name == "" {
		return "", false
	}
	return e.Category.Name, true
}

func FromDataModel(e *expenseDatamodel.Expense) Expense {
	out := Expense{
		ID:         e.ID,
		Amount:     e.Amount,
		Date:       e.Date.Time,
		CategoryID: e.CategoryID,
	}
	if e.Description != nil {
		out.Description = *e.Description
	}
	if e.Category != nil {
		out.Category = &Category{ID: e.Category.ID, Name: e.Category.Name}
	}
	return out
}

func FromDataModelSlice(expenses []expenseDatamodel.Expense) []Expense {
	result := make([]Expense, len(expenses))
	for i := range expenses {
		result[i] = FromDataModel(&expenses[i])
	}
	return result
}
