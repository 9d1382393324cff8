package repository

import (
	"context"

	"elektropregled/internal/domain"
)

// UsersRepository reads user accounts.
type UsersRepository interface {
	// GetUserByUsername wraps sql.ErrNoRows when the login is unknown.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}
