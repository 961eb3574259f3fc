package usecase

import (
	"context"
	"fmt"

	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/metrics"
	"github.com/piresc/tallytrack/internal/pkg/models"
	nrpkg "github.com/piresc/tallytrack/internal/pkg/newrelic"
	"github.com/piresc/tallytrack/services/votes"
)

const (
	defaultSweepLimit = 100
	maxSweepLimit     = 1000
)

// applyTally counts a completed intent. An intent recorded without a unit
// count is counted from the amount received.
func (uc *voteUC) applyTally(ctx context.Context, intent *models.PaymentIntent) (models.TallyPath, error) {
	delta := intent.UnitCount
	if delta <= 0 && intent.AmountReceived != nil {
		delta = int(*intent.AmountReceived / uc.cfg.Vote.UnitPrice)
	}
	if delta <= 0 {
		return "", fmt.Errorf("cannot determine votes count for %s", intent.Tracking())
	}

	var path models.TallyPath
	err := nrpkg.WithSegment(ctx, "Votes.ApplyTally", func() error {
		var err error
		path, err = uc.repo.ApplyTally(ctx, intent.LocalID, intent.TargetKey, delta)
		return err
	})
	return path, err
}

// ReapplyTally retries the tally for one completed payment. Repeating it is safe.
func (uc *voteUC) ReapplyTally(ctx context.Context, trackingID string) (models.TallyPath, error) {
	if !validTrackingID(trackingID) {
		return "", votes.ErrInvalidTrackingID
	}

	intent, err := uc.repo.FindByTrackingID(ctx, trackingID)
	if err != nil {
		return "", err
	}
	if intent.Status != models.IntentStatusCompleted {
		return "", fmt.Errorf("%w: %s is %s", votes.ErrNotCompleted, trackingID, intent.Status)
	}
	if intent.TallyApplied {
		return models.TallyPathSkipped, nil
	}

	path, err := uc.applyTally(ctx, intent)
	if err != nil {
		return "", err
	}

	metrics.ObserveTally(string(path))
	uc.refreshApplied(ctx, intent)
	uc.logger.Info("Tally reapplied", logger.String("tracking_id", trackingID), logger.String("path", string(path)))
	return path, nil
}

// SweepUnappliedTallies reapplies every completed payment still missing from the tally
func (uc *voteUC) SweepUnappliedTallies(ctx context.Context, limit int) (*models.SweepResult, error) {
	if limit <= 0 {
		limit = defaultSweepLimit
	}
	if limit > maxSweepLimit {
		limit = maxSweepLimit
	}

	intents, err := uc.repo.ListUnappliedTallies(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := &models.SweepResult{Scanned: len(intents)}
	for _, intent := range intents {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		path, err := uc.applyTally(ctx, intent)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, fmt.Sprintf("%s: %v", intent.Tracking(), err))
			uc.logger.Warn("Tally sweep failed for payment", logger.String("tracking_id", intent.Tracking()), logger.Err(err))
			continue
		}

		metrics.ObserveTally(string(path))
		if path == models.TallyPathSkipped {
			result.Skipped++
			continue
		}
		result.Applied++
		uc.refreshApplied(ctx, intent)
	}

	uc.logger.Info("Tally sweep finished",
		logger.Int("scanned", result.Scanned),
		logger.Int("applied", result.Applied),
		logger.Int("skipped", result.Skipped),
		logger.Int("failed", result.Failed))
	return result, nil
}

func (uc *voteUC) refreshApplied(ctx context.Context, intent *models.PaymentIntent) {
	intent.TallyApplied = true
	if err := uc.cache.Set(ctx, models.NewStatusView(intent)); err != nil {
		uc.logger.Warn("Failed to cache payment status", logger.String("tracking_id", intent.Tracking()), logger.Err(err))
	}
}
