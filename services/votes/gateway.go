package votes

import (
	"context"

	"github.com/piresc/tallytrack/internal/pkg/models"
)

// VoteGW groups the outbound collaborators: Daraja, Turnstile and NATS
//
//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks github.com/piresc/tallytrack/services/votes VoteGW
type VoteGW interface {
	ObtainCredential(ctx context.Context) (*models.AccessToken, error)
	InvalidateCredential(ctx context.Context) error
	PushPayment(ctx context.Context, cred *models.AccessToken, req models.PushRequest) (*models.PushResult, error)
	VerifyHuman(ctx context.Context, token, remoteIP string) (bool, error)
	PublishVoteResolved(ctx context.Context, event models.VoteResolvedEvent) error
	PublishTallyUnapplied(ctx context.Context, event models.TallyUnappliedEvent) error
}
