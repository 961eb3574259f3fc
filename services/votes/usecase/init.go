package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/models"
	"github.com/piresc/tallytrack/internal/pkg/retry"
	"github.com/piresc/tallytrack/services/votes"
)

var trackingIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,64}$`)

// voteUC implements votes.VoteUC
type voteUC struct {
	cfg     *models.Config
	repo    votes.VoteRepo
	cache   votes.StatusCache
	gw      votes.VoteGW
	retrier *retry.Retrier
	logger  *logger.ZapLogger
	now     func() time.Time
}

// NewVoteUC creates the vote use case
func NewVoteUC(
	cfg *models.Config,
	repo votes.VoteRepo,
	cache votes.StatusCache,
	gw votes.VoteGW,
	l *logger.ZapLogger,
) (votes.VoteUC, error) {
	if cfg.Vote.UnitPrice <= 0 {
		return nil, fmt.Errorf("vote unit price must be positive, got %d", cfg.Vote.UnitPrice)
	}

	return &voteUC{
		cfg:     cfg,
		repo:    repo,
		cache:   cache,
		gw:      gw,
		retrier: retry.New(ledgerRetryConfig(), l),
		logger:  l,
		now:     time.Now,
	}, nil
}

// ledgerRetryConfig retries transient ledger writes but never a constraint outcome
func ledgerRetryConfig() retry.Config {
	cfg := retry.DefaultConfig()
	cfg.BaseDelay = 200 * time.Millisecond
	cfg.MaxDelay = 2 * time.Second
	cfg.IsRetryable = func(err error) bool {
		return !errors.Is(err, votes.ErrDuplicateTrackingID) &&
			!errors.Is(err, votes.ErrIntentNotFound) &&
			!errors.Is(err, context.Canceled)
	}
	return cfg
}

func validTrackingID(id string) bool {
	return trackingIDPattern.MatchString(id)
}
