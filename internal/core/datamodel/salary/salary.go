package salary

import (
	"github.com/frahmantamala/expense-tracker-client/internal/core/datamodel"
	"github.com/shopspring/decimal"
)

type Salary struct {
	ID          int64               `json:"id"`
	UserID      int64               `json:"user_id"`
	Description *string             `json:"description"`
	Amount      decimal.Decimal     `json:"amount"`
	Date        datamodel.Timestamp `json:"date"`
}

type SalaryInput struct {
	Description *string `json:"description"`
	Amount      float64 `json:"amount"`
}
