package expense

import (
	"errors"

	apperrors "github.com/frahmantamala/expense-tracker-client/internal"
	"github.com/frahmantamala/expense-tracker-client/internal/core/common/validation"
	expenseDatamodel "github.com/frahmantamala/expense-tracker-client/internal/core/datamodel/expense"
	"github.com/shopspring/decimal"
)

// ExpenseDTO is the payload of create and update. Update replaces
// description, amount and category as a whole.
type ExpenseDTO struct {
	Description string
	Amount      decimal.Decimal
	CategoryID  int64
}

func (dto ExpenseDTO) Validate() *apperrors.AppError {
	return validation.ValidateExpense(dto.Amount, dto.CategoryID, dto.Description)
}

func (dto ExpenseDTO) toInput() expenseDatamodel.ExpenseInput {
	in := expenseDatamodel.ExpenseInput{
		Amount:     dto.Amount.InexactFloat64(),
		CategoryID: dto.CategoryID,
	}
	if dto.Description != "" {
		desc := dto.Description
		in.Description = &desc
	}
	return in
}

// DefaultPageSize matches the API's own default limit.
const DefaultPageSize = 100

var ErrExpenseNotFound = errors.New("expense not found")
