package postgres

import (
	"context"
	"errors"
	"fmt"

	"trailmate/internal/models"
	"trailmate/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = `id, given_name, family_name, email, username, password_hash,
		email_verification_token, email_verified_at, created_at`

func (r *PostgresRepo) SaveUser(ctx context.Context, u models.User) error {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (id, given_name, family_name, email, username, password_hash, email_verification_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`

	_, err := r.pool.Exec(ctx, query,
		u.ID,
		u.GivenName,
		u.FamilyName,
		u.Email,
		u.Username,
		u.PassHash,
		u.EmailVerificationToken,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Same error for an email and a username collision; the caller
			// must not learn which field clashed.
			return storage.ErrUserExists
		}

		return fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) UserByID(ctx context.Context, id string) (models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1;
	`

	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// UserByLogin matches either email or username, case-sensitive.
func (r *PostgresRepo) UserByLogin(ctx context.Context, login string) (models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 OR username = $1;
	`

	return r.scanUser(r.pool.QueryRow(ctx, query, login))
}

func (r *PostgresRepo) UserByVerificationToken(ctx context.Context, token string) (models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email_verification_token = $1;
	`

	return r.scanUser(r.pool.QueryRow(ctx, query, token))
}

func (r *PostgresRepo) SetEmailVerified(ctx context.Context, userID string) error {
	query := `UPDATE users SET email_verified_at = NOW() WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, userID)

	return err
}

func (r *PostgresRepo) scanUser(row pgx.Row) (models.User, error) {
	var u models.User

	err := row.Scan(
		&u.ID,
		&u.GivenName,
		&u.FamilyName,
		&u.Email,
		&u.Username,
		&u.PassHash,
		&u.EmailVerificationToken,
		&u.EmailVerifiedAt,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, err
	}

	return u, nil
}
