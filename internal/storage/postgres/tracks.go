package postgres

import (
	"context"
	"fmt"

	"trailmate/internal/models"

	"github.com/jackc/pgx/v5"
)

func (r *PostgresRepo) Tracks(ctx context.Context) ([]models.Track, error) {
	const op = "storage.postgres.Tracks"

	rows, err := r.pool.Query(ctx, `SELECT id, name FROM tracks;`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tracks, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.Track])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tracks, nil
}

func (r *PostgresRepo) SaveTrack(ctx context.Context, t models.Track) error {
	const op = "storage.postgres.SaveTrack"

	_, err := r.pool.Exec(ctx, `INSERT INTO tracks (id, name) VALUES ($1, $2);`, t.ID, t.Name)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
