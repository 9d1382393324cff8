package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"elektropregled/internal/domain"
)

type PostgresUsersRepository struct {
	db *sql.DB
}

func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

func (r *PostgresUsersRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if username == "" {
		return nil, fmt.Errorf("user not found: %w", sql.ErrNoRows)
	}
	var u domain.User
	var role string
	err := r.db.QueryRowContext(ctx, `
		SELECT id_korisnika, ime, prezime, korisnicko_ime, lozinka, uloga
		FROM korisnik
		WHERE korisnicko_ime = $1
	`, username).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.PasswordHash, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.Role = domain.Role(role)
	return &u, nil
}
