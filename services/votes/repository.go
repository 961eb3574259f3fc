package votes

import (
	"context"

	"github.com/google/uuid"
	"github.com/piresc/tallytrack/internal/pkg/models"
)

// VoteRepo is the pending request ledger and the tally store
//
//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks github.com/piresc/tallytrack/services/votes VoteRepo,StatusCache
type VoteRepo interface {
	CreateIntent(ctx context.Context, intent *models.PaymentIntent) error
	AttachTrackingID(ctx context.Context, localID uuid.UUID, trackingID, merchantRequestID string) error
	RecordSubmitError(ctx context.Context, localID uuid.UUID, reason string) error
	FindByTrackingID(ctx context.Context, trackingID string) (*models.PaymentIntent, error)
	FindByMerchantRequestID(ctx context.Context, merchantRequestID string) (*models.PaymentIntent, error)
	TransitionTerminal(ctx context.Context, trackingID string, outcome models.TerminalOutcome) (*models.TransitionResult, error)
	ApplyTally(ctx context.Context, localID uuid.UUID, targetKey string, delta int) (models.TallyPath, error)
	ListUnappliedTallies(ctx context.Context, limit int) ([]*models.PaymentIntent, error)
	GetTally(ctx context.Context, key string) (*models.TallyRecord, error)
}

// StatusCache keeps terminal status snapshots. Get returns nil, nil on a miss.
type StatusCache interface {
	Get(ctx context.Context, trackingID string) (*models.StatusView, error)
	Set(ctx context.Context, view *models.StatusView) error
}
