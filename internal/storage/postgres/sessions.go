package postgres

import (
	"context"
	"errors"
	"fmt"

	"trailmate/internal/models"
	"trailmate/internal/storage"

	"github.com/jackc/pgx/v5"
)

const insertSessionQuery = `
	INSERT INTO user_sessions (id, user_id, refresh_token_hash, expires_at, family_id, caller_ip, caller_user_agent)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
`

func (r *PostgresRepo) SaveSession(ctx context.Context, s models.Session) error {
	const op = "storage.postgres.SaveSession"

	_, err := r.pool.Exec(ctx, insertSessionQuery,
		s.ID,
		s.UserID,
		s.RefreshTokenHash,
		s.ExpiresAt,
		s.FamilyID,
		s.CallerIP,
		s.CallerUserAgent,
	)
	if err != nil {
		return fmt.Errorf("%s: failed to save session: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) SessionByID(ctx context.Context, id string) (models.Session, error) {
	query := `
		SELECT id, user_id, refresh_token_hash, expires_at, family_id,
			caller_ip, caller_user_agent, invalidated_at, created_at
		FROM user_sessions
		WHERE id = $1;
	`

	var s models.Session

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.UserID,
		&s.RefreshTokenHash,
		&s.ExpiresAt,
		&s.FamilyID,
		&s.CallerIP,
		&s.CallerUserAgent,
		&s.InvalidatedAt,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, storage.ErrSessionNotFound
		}

		return models.Session{}, err
	}

	return s, nil
}

// RotateSession replaces the presented session with next inside one
// transaction. Concurrent rotations of the same family serialize on a
// transaction-scoped advisory lock keyed by the family id; the recency read
// is issued as its own statement after the lock is held, so under read
// committed it sees the row a just-committed rotation inserted. Row locks
// alone cannot guarantee that: a locking read that blocked on another
// transaction resumes on its original snapshot and never sees rows that
// transaction inserted, letting two exchanges of the same token both succeed.
//
// If the presented session is no longer the newest in its family, the raw
// token has been replayed after supersession. Every session in the family is
// invalidated and ErrSessionSuperseded is returned; the invalidation is
// committed before the error surfaces.
func (r *PostgresRepo) RotateSession(ctx context.Context, familyID, presentedID string, next models.Session) error {
	const op = "storage.postgres.RotateSession"

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, familyID); err != nil {
		return fmt.Errorf("%s: failed to lock family: %w", op, err)
	}

	rows, err := tx.Query(ctx, `
		SELECT id
		FROM user_sessions
		WHERE family_id = $1
		ORDER BY created_at DESC, id DESC;
	`, familyID)
	if err != nil {
		return fmt.Errorf("%s: failed to read family: %w", op, err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("%s: failed to collect family: %w", op, err)
	}

	if len(ids) == 0 {
		return storage.ErrSessionNotFound
	}

	if ids[0] != presentedID {
		_, err := tx.Exec(ctx, `
			UPDATE user_sessions SET invalidated_at = NOW() WHERE family_id = $1;
		`, familyID)
		if err != nil {
			return fmt.Errorf("%s: failed to invalidate family: %w", op, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("%s: failed to commit invalidation: %w", op, err)
		}

		return storage.ErrSessionSuperseded
	}

	_, err = tx.Exec(ctx, insertSessionQuery,
		next.ID,
		next.UserID,
		next.RefreshTokenHash,
		next.ExpiresAt,
		next.FamilyID,
		next.CallerIP,
		next.CallerUserAgent,
	)
	if err != nil {
		return fmt.Errorf("%s: failed to insert next session: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: failed to commit rotation: %w", op, err)
	}

	return nil
}
