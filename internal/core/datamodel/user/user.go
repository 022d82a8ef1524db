package user

import "github.com/frahmantamala/expense-tracker-client/internal/core/datamodel"

// User is the profile returned by /api/users/me.
type User struct {
	ID        int64               `json:"id"`
	Username  string              `json:"username"`
	Email     string              `json:"email"`
	IsActive  bool                `json:"is_active"`
	CreatedAt datamodel.Timestamp `json:"created_at"`
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
