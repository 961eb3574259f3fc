package usecase

import (
	"context"
	"strings"

	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/models"
	"github.com/piresc/tallytrack/services/votes"
)

// GetStatus returns the payment's status, serving settled views from the cache
func (uc *voteUC) GetStatus(ctx context.Context, trackingID string) (*models.StatusView, error) {
	if !validTrackingID(trackingID) {
		return nil, votes.ErrInvalidTrackingID
	}

	cached, err := uc.cache.Get(ctx, trackingID)
	if err != nil {
		uc.logger.Warn("Failed to read cached payment status", logger.String("tracking_id", trackingID), logger.Err(err))
	} else if cached != nil {
		return cached, nil
	}

	intent, err := uc.repo.FindByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, err
	}

	// A completed row read before its tally is claimed must not be cached,
	// or it would shadow the applied view written by the reconciler.
	view := models.NewStatusView(intent)
	if view.Settled() {
		if err := uc.cache.Set(ctx, view); err != nil {
			uc.logger.Warn("Failed to cache payment status", logger.String("tracking_id", trackingID), logger.Err(err))
		}
	}
	return view, nil
}

// GetTally returns the nominee's current vote count
func (uc *voteUC) GetTally(ctx context.Context, nomineeID string) (*models.TallyRecord, error) {
	nomineeID = strings.TrimSpace(nomineeID)
	if nomineeID == "" {
		return nil, votes.ErrMissingTarget
	}
	return uc.repo.GetTally(ctx, nomineeID)
}
