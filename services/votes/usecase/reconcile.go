package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/metrics"
	"github.com/piresc/tallytrack/internal/pkg/models"
	"github.com/piresc/tallytrack/internal/utils"
	"github.com/piresc/tallytrack/services/votes"
	"github.com/piresc/tallytrack/services/votes/callback"
	"go.uber.org/zap"
)

const maxLoggedBody = 4096

// HandleCallback reconciles one callback delivery. It never returns an error:
// every anomaly becomes a disposition that is logged and counted.
func (uc *voteUC) HandleCallback(ctx context.Context, body []byte) (disposition models.CallbackDisposition) {
	defer func() {
		metrics.ObserveCallback(string(disposition))
	}()

	env, err := callback.Decode(body)
	if err != nil || env.Shape == callback.ShapeUnknown {
		uc.logger.Warn("Ignoring callback with unknown shape",
			logger.ByteString("raw", truncateBody(body)),
			logger.Err(err))
		return models.CallbackIgnoredUnknownShape
	}
	if !env.HasResultCode {
		uc.logger.Warn("Ignoring callback without result code",
			logger.String("checkout_request_id", env.CheckoutRequestID),
			logger.ByteString("raw", truncateBody(body)))
		return models.CallbackIgnoredMalformed
	}

	intent, disposition := uc.resolveIntent(ctx, env, body)
	if intent == nil {
		return disposition
	}
	trackingID := intent.Tracking()

	log := uc.logger.With(
		logger.String("tracking_id", trackingID),
		logger.String("local_id", intent.LocalID.String()),
		logger.Int("result_code", env.ResultCode),
	)

	outcome := uc.classifyOutcome(env, intent, log)

	result, err := uc.repo.TransitionTerminal(ctx, trackingID, outcome)
	if err != nil {
		if errors.Is(err, votes.ErrIntentNotFound) {
			log.Warn("Payment disappeared before transition", logger.ByteString("raw", truncateBody(body)))
			return models.CallbackUnknownTransaction
		}
		log.Error("Failed to record callback outcome", logger.ByteString("raw", truncateBody(body)), logger.Err(err))
		return models.CallbackLedgerError
	}

	switch result.Kind {
	case models.TransitionDuplicate:
		log.Info("Duplicate callback ignored", logger.String("status", string(result.Intent.Status)))
		return models.CallbackDuplicate
	case models.TransitionConflict:
		log.Warn("Conflicting callback ignored",
			logger.String("stored_status", string(result.Intent.Status)),
			logger.String("incoming_status", string(outcome.Status)))
		return models.CallbackConflict
	}

	resolved := result.Intent
	view := models.NewStatusView(resolved)

	disposition = models.CallbackFailed
	if resolved.Status == models.IntentStatusCompleted {
		disposition = models.CallbackCompleted

		path, err := uc.applyTally(ctx, resolved)
		if err != nil {
			log.Error("Payment completed but tally not applied", logger.Err(err))
			uc.publishTallyUnapplied(ctx, resolved, err)
			disposition = models.CallbackCompletedUnapplied
		} else {
			metrics.ObserveTally(string(path))
			view.TallyApplied = true
			log.Info("Vote tallied", logger.String("path", string(path)), logger.Int("votes", resolved.UnitCount))
		}
	} else {
		log.Info("Payment failed", logger.String("reason", outcome.ResultDesc))
	}

	uc.announce(ctx, resolved, view)
	return disposition
}

// resolveIntent finds the intent a callback refers to, by CheckoutRequestID
// first and MerchantRequestID second. Unmatched callbacks are logged with
// their raw body so a confirmed payment can still be reviewed by hand.
func (uc *voteUC) resolveIntent(ctx context.Context, env *callback.Envelope, body []byte) (*models.PaymentIntent, models.CallbackDisposition) {
	checkoutID := env.CheckoutRequestID
	merchantID := env.MerchantRequestID

	if checkoutID == "" && merchantID == "" {
		uc.logger.Warn("Ignoring callback without request ids",
			logger.Int("result_code", env.ResultCode),
			logger.ByteString("raw", truncateBody(body)))
		return nil, models.CallbackIgnoredMalformed
	}
	if (checkoutID != "" && !validTrackingID(checkoutID)) || (merchantID != "" && !validTrackingID(merchantID)) {
		uc.logger.Warn("Ignoring callback with malformed request id",
			logger.String("checkout_request_id", checkoutID),
			logger.String("merchant_request_id", merchantID),
			logger.Int("result_code", env.ResultCode),
			logger.ByteString("raw", truncateBody(body)))
		return nil, models.CallbackIgnoredMalformed
	}

	if checkoutID != "" {
		intent, err := uc.repo.FindByTrackingID(ctx, checkoutID)
		switch {
		case err == nil:
			return intent, ""
		case !errors.Is(err, votes.ErrIntentNotFound):
			uc.logger.Error("Failed to look up payment",
				logger.String("checkout_request_id", checkoutID),
				logger.ByteString("raw", truncateBody(body)),
				logger.Err(err))
			return nil, models.CallbackLedgerError
		}
	}

	if merchantID != "" {
		intent, err := uc.repo.FindByMerchantRequestID(ctx, merchantID)
		switch {
		case err == nil && intent.Tracking() != "":
			uc.logger.Info("Callback matched by merchant request id",
				logger.String("checkout_request_id", checkoutID),
				logger.String("merchant_request_id", merchantID),
				logger.String("tracking_id", intent.Tracking()))
			return intent, ""
		case err != nil && !errors.Is(err, votes.ErrIntentNotFound):
			uc.logger.Error("Failed to look up payment",
				logger.String("merchant_request_id", merchantID),
				logger.ByteString("raw", truncateBody(body)),
				logger.Err(err))
			return nil, models.CallbackLedgerError
		}
	}

	uc.logger.Warn("Callback for unknown transaction",
		logger.String("checkout_request_id", checkoutID),
		logger.String("merchant_request_id", merchantID),
		logger.Int("result_code", env.ResultCode),
		logger.ByteString("raw", truncateBody(body)))
	return nil, models.CallbackUnknownTransaction
}

func (uc *voteUC) classifyOutcome(env *callback.Envelope, intent *models.PaymentIntent, log *zap.Logger) models.TerminalOutcome {
	outcome := models.TerminalOutcome{
		ResultCode:  env.ResultCode,
		ResultDesc:  env.ResultDesc,
		RawCallback: env.Raw,
	}

	if env.ResultCode != 0 {
		outcome.Status = models.IntentStatusFailed
		if outcome.ResultDesc == "" {
			outcome.ResultDesc = fmt.Sprintf("result code %d", env.ResultCode)
		}
		return outcome
	}

	outcome.Status = models.IntentStatusCompleted
	outcome.AmountReceived = env.Metadata.Amount
	outcome.ReceiptRef = env.Metadata.Receipt

	if amount := env.Metadata.Amount; amount != nil && *amount != intent.AmountExpected {
		metrics.ObserveAmountMismatch()
		log.Warn("Amount received differs from amount expected",
			logger.Int64("amount_expected", intent.AmountExpected),
			logger.Int64("amount_received", *amount))
	}

	if env.Metadata.Phone != "" {
		phone, err := utils.NormalizeMSISDN(env.Metadata.Phone)
		if err != nil || phone != intent.PayerPhone {
			log.Warn("Callback phone differs from payer phone",
				logger.String("payer_phone", utils.MaskMSISDN(intent.PayerPhone)),
				logger.String("callback_phone", utils.MaskMSISDN(env.Metadata.Phone)))
		}
	}

	return outcome
}

// announce caches the settled view and publishes vote.resolved, both best effort.
// An unapplied view stays uncached until the reapply path settles it.
func (uc *voteUC) announce(ctx context.Context, intent *models.PaymentIntent, view *models.StatusView) {
	if view.Settled() {
		if err := uc.cache.Set(ctx, view); err != nil {
			uc.logger.Warn("Failed to cache payment status", logger.String("tracking_id", view.TrackingID), logger.Err(err))
		}
	}

	event := models.VoteResolvedEvent{
		TrackingID: intent.Tracking(),
		Status:     intent.Status,
		TargetKey:  intent.TargetKey,
		UnitCount:  intent.UnitCount,
		ResolvedAt: uc.now().UTC(),
	}
	if err := uc.gw.PublishVoteResolved(ctx, event); err != nil {
		uc.logger.Warn("Failed to publish vote resolved event", logger.String("tracking_id", view.TrackingID), logger.Err(err))
	}
}

func (uc *voteUC) publishTallyUnapplied(ctx context.Context, intent *models.PaymentIntent, cause error) {
	event := models.TallyUnappliedEvent{
		TrackingID: intent.Tracking(),
		LocalID:    intent.LocalID,
		TargetKey:  intent.TargetKey,
		UnitCount:  intent.UnitCount,
		Error:      cause.Error(),
		OccurredAt: uc.now().UTC(),
	}
	if err := uc.gw.PublishTallyUnapplied(ctx, event); err != nil {
		uc.logger.Error("Failed to publish tally unapplied event", logger.String("tracking_id", event.TrackingID), logger.Err(err))
	}
}

func truncateBody(body []byte) []byte {
	if len(body) > maxLoggedBody {
		return body[:maxLoggedBody]
	}
	return body
}
