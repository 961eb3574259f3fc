package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/models"
	"github.com/piresc/tallytrack/services/votes"
)

// ApplyTally adds delta to the nominee's count at most once per intent.
//
// The tally_applied flag is claimed in the same transaction as the increment,
// so a second caller for the same intent sees zero claimed rows and skips.
// increment_votes is tried first; any failure rolls back and the
// read-modify-write fallback runs in a fresh transaction.
func (r *VoteRepo) ApplyTally(ctx context.Context, localID uuid.UUID, targetKey string, delta int) (models.TallyPath, error) {
	if delta <= 0 {
		return "", fmt.Errorf("invalid tally delta %d", delta)
	}

	path, err := r.applyAtomic(ctx, localID, targetKey, delta)
	if err == nil {
		return path, nil
	}

	r.logger.Warn("increment_votes failed, using fallback update",
		logger.String("local_id", localID.String()),
		logger.String("nominee_id", targetKey),
		logger.String("pg_code", pgCode(err)),
		logger.Err(err))

	return r.applyFallback(ctx, localID, targetKey, delta)
}

func (r *VoteRepo) applyAtomic(ctx context.Context, localID uuid.UUID, targetKey string, delta int) (models.TallyPath, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	claimed, err := claimTally(ctx, tx, localID)
	if err != nil {
		return "", err
	}
	if !claimed {
		return models.TallyPathSkipped, nil
	}

	if _, err := tx.ExecContext(ctx, `SELECT increment_votes($1, $2)`, targetKey, delta); err != nil {
		return "", fmt.Errorf("failed to call increment_votes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit tally: %w", err)
	}
	return models.TallyPathAtomic, nil
}

func (r *VoteRepo) applyFallback(ctx context.Context, localID uuid.UUID, targetKey string, delta int) (models.TallyPath, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	claimed, err := claimTally(ctx, tx, localID)
	if err != nil {
		return "", err
	}
	if !claimed {
		return models.TallyPathSkipped, nil
	}

	var current int64
	err = tx.QueryRowxContext(ctx, `SELECT votes FROM nominees WHERE id = $1 FOR UPDATE`, targetKey).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("failed to read tally %s: %w", targetKey, votes.ErrTargetNotFound)
		}
		return "", fmt.Errorf("failed to read tally: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE nominees SET votes = $1, updated_at = now() WHERE id = $2`, current+int64(delta), targetKey); err != nil {
		return "", fmt.Errorf("failed to update tally: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit tally: %w", err)
	}
	return models.TallyPathFallback, nil
}

func claimTally(ctx context.Context, tx *sqlx.Tx, localID uuid.UUID) (bool, error) {
	result, err := tx.ExecContext(ctx, `UPDATE votes SET tally_applied = true WHERE local_id = $1 AND tally_applied = false`, localID)
	if err != nil {
		return false, fmt.Errorf("failed to claim tally: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// ListUnappliedTallies returns completed intents whose tally was never applied, oldest first
func (r *VoteRepo) ListUnappliedTallies(ctx context.Context, limit int) ([]*models.PaymentIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM votes
		WHERE status = 'COMPLETED' AND tally_applied = false
		ORDER BY updated_at ASC LIMIT $1`

	var intents []*models.PaymentIntent
	if err := r.db.SelectContext(ctx, &intents, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list unapplied tallies: %w", err)
	}
	return intents, nil
}

// GetTally returns the nominee's current count
func (r *VoteRepo) GetTally(ctx context.Context, key string) (*models.TallyRecord, error) {
	var record models.TallyRecord
	err := r.db.GetContext(ctx, &record, `SELECT id, name, votes, updated_at FROM nominees WHERE id = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, votes.ErrTargetNotFound
		}
		return nil, fmt.Errorf("failed to get tally: %w", err)
	}
	return &record, nil
}
