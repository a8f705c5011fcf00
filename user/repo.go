package user

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned by Repository lookups that match no user.
var ErrUserNotFound = errors.New("user not found")

// Repository persists user accounts. Implementations must return
// ErrUserNotFound (possibly wrapped) when a lookup matches nothing.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user User) error
}
