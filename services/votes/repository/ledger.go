package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/models"
	"github.com/piresc/tallytrack/services/votes"
)

const (
	pgUniqueViolation   = "23505"
	pgUndefinedFunction = "42883"
)

const intentColumns = `local_id, checkout_request_id, merchant_request_id, voter_phone, nominee_id,
	votes_count, amount_expected, status, amount_received, mpesa_receipt_number,
	failure_reason, result_code, submit_error, tally_applied, created_at, updated_at`

// VoteRepo stores payment intents in the votes table and tallies in nominees
type VoteRepo struct {
	cfg    *models.Config
	db     *sqlx.DB
	logger *logger.ZapLogger
}

func NewVoteRepository(
	cfg *models.Config,
	db *sqlx.DB,
	l *logger.ZapLogger,
) *VoteRepo {
	return &VoteRepo{
		cfg:    cfg,
		db:     db,
		logger: l,
	}
}

// CreateIntent inserts a PENDING intent before the gateway is contacted
func (r *VoteRepo) CreateIntent(ctx context.Context, intent *models.PaymentIntent) error {
	now := time.Now().UTC()
	intent.Status = models.IntentStatusPending
	intent.TallyApplied = false
	intent.CreatedAt = now
	intent.UpdatedAt = now

	query := `
		INSERT INTO votes (
			local_id, voter_phone, nominee_id, votes_count, amount_expected,
			status, tally_applied, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		intent.LocalID,
		intent.PayerPhone,
		intent.TargetKey,
		intent.UnitCount,
		intent.AmountExpected,
		intent.Status,
		intent.TallyApplied,
		intent.CreatedAt,
		intent.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment intent: %w", err)
	}
	return nil
}

// AttachTrackingID records the gateway ids on an intent that has none yet
func (r *VoteRepo) AttachTrackingID(ctx context.Context, localID uuid.UUID, trackingID, merchantRequestID string) error {
	query := `
		UPDATE votes
		SET checkout_request_id = $1, merchant_request_id = $2, updated_at = now()
		WHERE local_id = $3 AND checkout_request_id IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, trackingID, nullString(merchantRequestID), localID)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return fmt.Errorf("failed to attach tracking id %s: %w", trackingID, votes.ErrDuplicateTrackingID)
		}
		return fmt.Errorf("failed to attach tracking id: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no unattached intent %s: %w", localID, votes.ErrIntentNotFound)
	}
	return nil
}

// RecordSubmitError keeps the reason a push never left PENDING on the intent
func (r *VoteRepo) RecordSubmitError(ctx context.Context, localID uuid.UUID, reason string) error {
	query := `
		UPDATE votes SET submit_error = $1, updated_at = now()
		WHERE local_id = $2 AND checkout_request_id IS NULL
	`

	if _, err := r.db.ExecContext(ctx, query, reason, localID); err != nil {
		return fmt.Errorf("failed to record submit error: %w", err)
	}
	return nil
}

// FindByTrackingID returns the intent holding the gateway tracking id
func (r *VoteRepo) FindByTrackingID(ctx context.Context, trackingID string) (*models.PaymentIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM votes WHERE checkout_request_id = $1`

	var intent models.PaymentIntent
	if err := r.db.GetContext(ctx, &intent, query, trackingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, votes.ErrIntentNotFound
		}
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}
	return &intent, nil
}

// FindByMerchantRequestID returns the newest intent carrying the merchant request id
func (r *VoteRepo) FindByMerchantRequestID(ctx context.Context, merchantRequestID string) (*models.PaymentIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM votes WHERE merchant_request_id = $1 ORDER BY created_at DESC LIMIT 1`

	var intent models.PaymentIntent
	if err := r.db.GetContext(ctx, &intent, query, merchantRequestID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, votes.ErrIntentNotFound
		}
		return nil, fmt.Errorf("failed to get payment intent by merchant request id: %w", err)
	}
	return &intent, nil
}

// TransitionTerminal moves a PENDING intent to its outcome with a single
// compare-and-set. When the intent is already terminal the stored row is
// returned as a duplicate or a conflict and nothing is written.
func (r *VoteRepo) TransitionTerminal(ctx context.Context, trackingID string, outcome models.TerminalOutcome) (*models.TransitionResult, error) {
	if !outcome.Status.IsTerminal() {
		return nil, fmt.Errorf("invalid terminal status %q", outcome.Status)
	}

	var amount, receipt, reason interface{}
	if outcome.Status == models.IntentStatusCompleted {
		amount = nullInt64(outcome.AmountReceived)
		receipt = nullStringPtr(outcome.ReceiptRef)
	} else {
		reason = outcome.ResultDesc
	}

	query := `
		UPDATE votes
		SET status = $2, result_code = $3, amount_received = $4, mpesa_receipt_number = $5,
			failure_reason = $6, raw_callback = $7, updated_at = now()
		WHERE checkout_request_id = $1 AND status = 'PENDING'
		RETURNING ` + intentColumns

	var intent models.PaymentIntent
	err := r.db.GetContext(ctx, &intent, query,
		trackingID,
		outcome.Status,
		outcome.ResultCode,
		amount,
		receipt,
		reason,
		nullJSON(outcome.RawCallback),
	)
	if err == nil {
		return &models.TransitionResult{Kind: models.TransitionApplied, Intent: &intent}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to transition payment intent: %w", err)
	}

	current, err := r.FindByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, err
	}

	switch {
	case current.Status == outcome.Status:
		return &models.TransitionResult{Kind: models.TransitionDuplicate, Intent: current}, nil
	case current.Status.IsTerminal():
		return &models.TransitionResult{Kind: models.TransitionConflict, Intent: current}, nil
	default:
		return nil, fmt.Errorf("payment intent %s still %s after transition", trackingID, current.Status)
	}
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullStringPtr(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt64(n *int64) interface{} {
	if n == nil {
		return nil
	}
	return *n
}

func nullJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
