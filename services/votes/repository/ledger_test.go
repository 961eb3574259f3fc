package repository_test

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/models"
	"github.com/piresc/tallytrack/services/votes"
	"github.com/piresc/tallytrack/services/votes/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var intentColumns = []string{
	"local_id", "checkout_request_id", "merchant_request_id", "voter_phone", "nominee_id",
	"votes_count", "amount_expected", "status", "amount_received", "mpesa_receipt_number",
	"failure_reason", "result_code", "submit_error", "tally_applied", "created_at", "updated_at",
}

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	db := sqlx.NewDb(mockDB, "sqlmock")
	return db, mock
}

func newRepo(db *sqlx.DB) *repository.VoteRepo {
	return repository.NewVoteRepository(&models.Config{}, db, logger.NewNopLogger())
}

func intentRow(localID uuid.UUID, trackingID string, status models.IntentStatus, amountReceived interface{}, receipt interface{}) *sqlmock.Rows {
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(intentColumns).AddRow(
		localID.String(), trackingID, "29115-34620561-1", "254712345678", "nominee-1",
		3, int64(30), string(status), amountReceived, receipt,
		nil, nil, nil, false, now, now,
	)
}

func TestCreateIntent_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newRepo(db)

	intent := &models.PaymentIntent{
		LocalID:        uuid.New(),
		PayerPhone:     "254712345678",
		TargetKey:      "nominee-1",
		UnitCount:      3,
		AmountExpected: 30,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO votes")).
		WithArgs(intent.LocalID, "254712345678", "nominee-1", 3, int64(30), models.IntentStatusPending, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CreateIntent(context.Background(), intent)

	assert.NoError(t, err)
	assert.Equal(t, models.IntentStatusPending, intent.Status)
	assert.False(t, intent.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachTrackingID(t *testing.T) {
	localID := uuid.New()

	t.Run("success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := newRepo(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE votes")).
			WithArgs("ws_CO_1", "m-1", localID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.AttachTrackingID(context.Background(), localID, "ws_CO_1", "m-1")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate tracking id", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := newRepo(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE votes")).
			WithArgs("ws_CO_1", "m-1", localID).
			WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

		err := repo.AttachTrackingID(context.Background(), localID, "ws_CO_1", "m-1")

		assert.ErrorIs(t, err, votes.ErrDuplicateTrackingID)
	})

	t.Run("already attached", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := newRepo(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE votes")).
			WithArgs("ws_CO_1", nil, localID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.AttachTrackingID(context.Background(), localID, "ws_CO_1", "")

		assert.ErrorIs(t, err, votes.ErrIntentNotFound)
	})
}

func TestRecordSubmitError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newRepo(db)
	localID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE votes SET submit_error")).
		WithArgs("gateway unavailable", localID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.RecordSubmitError(context.Background(), localID, "gateway unavailable")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByTrackingID(t *testing.T) {
	localID := uuid.New()

	t.Run("found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := newRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT local_id")).
			WithArgs("ws_CO_1").
			WillReturnRows(intentRow(localID, "ws_CO_1", models.IntentStatusPending, nil, nil))

		intent, err := repo.FindByTrackingID(context.Background(), "ws_CO_1")

		require.NoError(t, err)
		assert.Equal(t, localID, intent.LocalID)
		assert.Equal(t, "ws_CO_1", intent.Tracking())
		assert.Equal(t, 3, intent.UnitCount)
		assert.Nil(t, intent.AmountReceived)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := newRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT local_id")).
			WithArgs("ws_CO_missing").
			WillReturnRows(sqlmock.NewRows(intentColumns))

		_, err := repo.FindByTrackingID(context.Background(), "ws_CO_missing")

		assert.ErrorIs(t, err, votes.ErrIntentNotFound)
	})

	t.Run("by merchant request id", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := newRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE merchant_request_id = $1")).
			WithArgs("29115-34620561-1").
			WillReturnRows(intentRow(localID, "ws_CO_1", models.IntentStatusPending, nil, nil))

		intent, err := repo.FindByMerchantRequestID(context.Background(), "29115-34620561-1")

		require.NoError(t, err)
		assert.Equal(t, localID, intent.LocalID)
	})
}

func TestTransitionTerminal(t *testing.T) {
	localID := uuid.New()
	amount := int64(30)
	receipt := "NLJ7RT61SV"
	completed := models.TerminalOutcome{
		Status:         models.IntentStatusCompleted,
		ResultCode:     0,
		ResultDesc:     "The service request is processed successfully.",
		AmountReceived: &amount,
		ReceiptRef:     &receipt,
		RawCallback:    json.RawMessage(`{"Body":{}}`),
	}

	t.Run("applied", func(t *testing.T) {
		// Arrange
		db, mock := setupMockDB(t)
		repo := newRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE votes")).
			WithArgs("ws_CO_1", models.IntentStatusCompleted, 0, int64(30), "NLJ7RT61SV", nil, `{"Body":{}}`).
			WillReturnRows(intentRow(localID, "ws_CO_1", models.IntentStatusCompleted, int64(30), "NLJ7RT61SV"))

		// Act
		result, err := repo.TransitionTerminal(context.Background(), "ws_CO_1", completed)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.TransitionApplied, result.Kind)
		assert.Equal(t, models.IntentStatusCompleted, result.Intent.Status)
		assert.Equal(t, int64(30), *result.Intent.AmountReceived)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed outcome stores reason only", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := newRepo(db)

		failed := models.TerminalOutcome{Status: models.IntentStatusFailed, ResultCode: 1032, ResultDesc: "Request cancelled by user"}

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE votes")).
			WithArgs("ws_CO_1", models.IntentStatusFailed, 1032, nil, nil, "Request cancelled by user", nil).
			WillReturnRows(intentRow(localID, "ws_CO_1", models.IntentStatusFailed, nil, nil))

		result, err := repo.TransitionTerminal(context.Background(), "ws_CO_1", failed)

		require.NoError(t, err)
		assert.Equal(t, models.TransitionApplied, result.Kind)
	})

	t.Run("duplicate", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := newRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE votes")).
			WillReturnRows(sqlmock.NewRows(intentColumns))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT local_id")).
			WithArgs("ws_CO_1").
			WillReturnRows(intentRow(localID, "ws_CO_1", models.IntentStatusCompleted, int64(30), "NLJ7RT61SV"))

		result, err := repo.TransitionTerminal(context.Background(), "ws_CO_1", completed)

		require.NoError(t, err)
		assert.Equal(t, models.TransitionDuplicate, result.Kind)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflict", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := newRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE votes")).
			WillReturnRows(sqlmock.NewRows(intentColumns))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT local_id")).
			WithArgs("ws_CO_1").
			WillReturnRows(intentRow(localID, "ws_CO_1", models.IntentStatusFailed, nil, nil))

		result, err := repo.TransitionTerminal(context.Background(), "ws_CO_1", completed)

		require.NoError(t, err)
		assert.Equal(t, models.TransitionConflict, result.Kind)
		assert.Equal(t, models.IntentStatusFailed, result.Intent.Status)
	})

	t.Run("unknown tracking id", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := newRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE votes")).
			WillReturnRows(sqlmock.NewRows(intentColumns))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT local_id")).
			WithArgs("ws_CO_unknown").
			WillReturnRows(sqlmock.NewRows(intentColumns))

		_, err := repo.TransitionTerminal(context.Background(), "ws_CO_unknown", completed)

		assert.ErrorIs(t, err, votes.ErrIntentNotFound)
	})

	t.Run("rejects pending outcome", func(t *testing.T) {
		db, _ := setupMockDB(t)
		repo := newRepo(db)

		_, err := repo.TransitionTerminal(context.Background(), "ws_CO_1", models.TerminalOutcome{Status: models.IntentStatusPending})

		assert.Error(t, err)
	})
}
