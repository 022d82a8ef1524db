package auth

import (
	errors "github.com/frahmantamala/expense-tracker-client/internal"
	"github.com/frahmantamala/expense-tracker-client/internal/core/common/validation"
)

// LoginDTO is what the token endpoint expects, sent form encoded.
type LoginDTO struct {
	Username string
	Password string
}

func (d LoginDTO) Validate() *errors.AppError {
	return validation.ValidateCredentials(d.Username, d.Password)
}

type RegisterDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d RegisterDTO) Validate() *errors.AppError {
	return validation.ValidateRegistration(d.Username, d.Email, d.Password)
}
