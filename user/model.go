package user

import (
	"time"

	"github.com/curasys/fhir-gateway/lib/auth"
)

// User is a registered account. PasswordHash never leaves the process: it is
// excluded from JSON encoding and only consulted by Authenticate.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         auth.Role `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TokenPair is the result of a successful authentication or refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
