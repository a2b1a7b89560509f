package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"trailmate/internal/models"

	"github.com/jackc/pgx/v5"
)

func (r *PostgresRepo) EnqueueEvent(ctx context.Context, payload any) error {
	const op = "storage.postgres.EnqueueEvent"

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal payload: %w", op, err)
	}

	_, err = r.pool.Exec(ctx, `INSERT INTO queues (payload) VALUES ($1);`, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DrainPendingEvents claims up to limit pending events with SKIP LOCKED, so
// concurrent consumers never double-process a row, and hands each to fn.
// Events whose fn succeeds are marked completed; a failing event stays
// pending until its tries are exhausted, then it is marked failed.
func (r *PostgresRepo) DrainPendingEvents(ctx context.Context, limit int, fn func(models.QueueEvent) error) (int, error) {
	const op = "storage.postgres.DrainPendingEvents"

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id, status, try_count, max_tries, payload
		FROM queues
		WHERE status = 'pending'
		ORDER BY id
		LIMIT $1
		FOR UPDATE SKIP LOCKED;
	`, limit)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to claim events: %w", op, err)
	}

	events, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.QueueEvent])
	if err != nil {
		return 0, fmt.Errorf("%s: failed to read events: %w", op, err)
	}

	processed := 0

	for _, e := range events {
		status := "completed"

		if fnErr := fn(e); fnErr != nil {
			status = "pending"
			if e.TryCount+1 >= e.MaxTries {
				status = "failed"
			}
		} else {
			processed++
		}

		_, err := tx.Exec(ctx, `
			UPDATE queues
			SET try_count = try_count + 1, status = $2, update_time = NOW()
			WHERE id = $1;
		`, e.ID, status)
		if err != nil {
			return processed, fmt.Errorf("%s: failed to update event: %w", op, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return processed, fmt.Errorf("%s: failed to commit: %w", op, err)
	}

	return processed, nil
}
