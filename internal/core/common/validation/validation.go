package validation

import (
	"fmt"
	"net/mail"

	errors "github.com/frahmantamala/expense-tracker-client/internal"
	"github.com/shopspring/decimal"
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return &v.fields[len(v.fields)-1]
}

func fieldError(field, message string, code errors.ErrorCode) *errors.AppError {
	return errors.NewValidationError(message, code).WithDetails(errors.ValidationErrors{
		Errors: []errors.ValidationError{{Field: field, Message: message, Code: string(code)}},
	})
}

func (fv *FieldValidator) Required() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		switch v := value.(type) {
		case string:
			if v == "" {
				return fieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		case int64:
			if v == 0 {
				return fieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && len(v) > max {
			return fieldError(fv.FieldName, fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Email() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(string)
		if !ok || v == "" {
			return nil
		}
		if _, err := mail.ParseAddress(v); err != nil {
			return fieldError(fv.FieldName, fmt.Sprintf("%s must be a valid email address", fv.FieldName), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

// NonNegative rejects amounts below zero. The API accepts zero.
func (fv *FieldValidator) NonNegative() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(decimal.Decimal); ok && v.IsNegative() {
			return fieldError(fv.FieldName, fmt.Sprintf("%s must not be negative", fv.FieldName), errors.ErrCodeInvalidAmount)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) PositiveID(code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(int64); ok && v <= 0 {
			return fieldError(fv.FieldName, fmt.Sprintf("%s must be a positive id", fv.FieldName), code)
		}
		return nil
	})
	return fv
}

// Validate runs every registered validator and folds the failures into a
// single InvalidInput error.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			appErr := validator(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(errors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
				continue
			}
			validationErrors = append(validationErrors, errors.ValidationError{
				Field:   field.FieldName,
				Message: appErr.Message,
				Code:    string(appErr.Code),
			})
		}
	}

	if len(validationErrors) > 0 {
		return errors.ErrInvalidInput.WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

func ValidateCredentials(username, password string) *errors.AppError {
	validator := NewValidator()
	validator.Field("username", username).Required()
	validator.Field("password", password).Required()
	return validator.Validate()
}

func ValidateRegistration(username, email, password string) *errors.AppError {
	validator := NewValidator()
	validator.Field("username", username).Required().MaxLength(150)
	validator.Field("email", email).Required().Email()
	validator.Field("password", password).Required()
	return validator.Validate()
}

func ValidateExpense(amount decimal.Decimal, categoryID int64, description string) *errors.AppError {
	validator := NewValidator()
	validator.Field("amount", amount).NonNegative()
	validator.Field("category_id", categoryID).PositiveID(errors.ErrCodeInvalidCategory)
	validator.Field("description", description).MaxLength(500)
	return validator.Validate()
}

func ValidateSalary(amount decimal.Decimal, description string) *errors.AppError {
	validator := NewValidator()
	validator.Field("amount", amount).NonNegative()
	validator.Field("description", description).MaxLength(500)
	return validator.Validate()
}
