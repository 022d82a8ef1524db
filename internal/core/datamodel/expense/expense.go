package expense

import (
	"github.com/frahmantamala/expense-tracker-client/internal/core/datamodel"
	"github.com/frahmantamala/expense-tracker-client/internal/core/datamodel/category"
	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          int64               `json:"id"`
	UserID      int64               `json:"user_id"`
	Description *string             `json:"description"`
	Amount      decimal.Decimal     `json:"amount"`
	CategoryID  int64               `json:"category_id"`
	Date        datamodel.Timestamp `json:"date"`
	Category    *category.Category  `json:"category"`
}

// ExpenseInput is the body of create and update calls. Amount travels as a
// JSON number.
type ExpenseInput struct {
	Description *string `json:"description"`
	Amount      float64 `json:"amount"`
	CategoryID  int64   `json:"category_id"`
}
