package votes

import (
	"context"

	"github.com/piresc/tallytrack/internal/pkg/models"
)

// VoteUC defines the vote payment business logic
//
//go:generate mockgen -destination=mocks/mock_usecase.go -package=mocks github.com/piresc/tallytrack/services/votes VoteUC
type VoteUC interface {
	SubmitVote(ctx context.Context, req models.VoteSubmitRequest) (*models.VoteSubmitResult, error)
	HandleCallback(ctx context.Context, body []byte) models.CallbackDisposition
	GetStatus(ctx context.Context, trackingID string) (*models.StatusView, error)
	GetTally(ctx context.Context, nomineeID string) (*models.TallyRecord, error)
	ReapplyTally(ctx context.Context, trackingID string) (models.TallyPath, error)
	SweepUnappliedTallies(ctx context.Context, limit int) (*models.SweepResult, error)
}
