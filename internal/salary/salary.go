// Package salary is the client for the user's income entries.
package salary

import (
	"errors"
	"time"

	apperrors "github.com/frahmantamala/expense-tracker-client/internal"
	"github.com/frahmantamala/expense-tracker-client/internal/core/common/validation"
	salaryDatamodel "github.com/frahmantamala/expense-tracker-client/internal/core/datamodel/salary"
	"github.com/shopspring/decimal"
)

type Salary struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
}

func (s Salary) RecordDate() time.Time {
	return s.Date
}

func (s Salary) RecordAmount() decimal.Decimal {
	return s.Amount
}

func FromDataModel(s *salaryDatamodel.Salary) Salary {
	out := Salary{
		ID:     s.ID,
		Amount: s.Amount,
		Date:   s.Date.Time,
	}
	if s.Description != nil {
		out.Description = *s.Description
	}
	return out
}

func FromDataModelSlice(salaries []salaryDatamodel.Salary) []Salary {
	result := make([]Salary, len(salaries))
	for i := range salaries {
		result[i] = FromDataModel(&salaries[i])
	}
	return result
}

type SalaryDTO struct {
	Description string
	Amount      decimal.Decimal
}

func (dto SalaryDTO) Validate() *apperrors.AppError {
	return validation.ValidateSalary(dto.Amount, dto.Description)
}

func (dto SalaryDTO) toInput() salaryDatamodel.SalaryInput {
	in := salaryDatamodel.SalaryInput{Amount: dto.Amount.InexactFloat64()}
	if dto.Description != "" {
		desc := dto.Description
		in.Description = &desc
	}
	return in
}

const DefaultPageSize = 100

var ErrSalaryNotFound = errors.New("salary not found")
