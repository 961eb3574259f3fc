package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/piresc/tallytrack/internal/pkg/jwt"
	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/metrics"
	"github.com/piresc/tallytrack/internal/pkg/models"
	"github.com/piresc/tallytrack/internal/utils"
	"github.com/piresc/tallytrack/services/votes"
)

// SubmitVote validates the request, records a PENDING intent and prompts the payer's phone.
// The intent is written before the gateway is called so every push has a ledger row.
func (uc *voteUC) SubmitVote(ctx context.Context, req models.VoteSubmitRequest) (*models.VoteSubmitResult, error) {
	result, err := uc.submitVote(ctx, req)
	metrics.ObserveSubmission(submissionOutcome(err))
	return result, err
}

func (uc *voteUC) submitVote(ctx context.Context, req models.VoteSubmitRequest) (*models.VoteSubmitResult, error) {
	nomineeID := strings.TrimSpace(req.NomineeID)
	if nomineeID == "" {
		return nil, votes.ErrMissingTarget
	}
	if req.VotesCount < 1 || (uc.cfg.Vote.MaxUnits > 0 && req.VotesCount > uc.cfg.Vote.MaxUnits) {
		return nil, fmt.Errorf("%w: must be between 1 and %d", votes.ErrInvalidUnitCount, uc.cfg.Vote.MaxUnits)
	}
	phone, err := utils.NormalizeMSISDN(req.VoterPhone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", votes.ErrInvalidPhone, err)
	}

	human, err := uc.gw.VerifyHuman(ctx, req.CaptchaToken, req.RemoteIP)
	if err != nil {
		uc.logger.Error("Bot verification unavailable", logger.Err(err))
		return nil, fmt.Errorf("failed to verify submission: %w", err)
	}
	if !human {
		return nil, votes.ErrVerificationFailed
	}

	if _, err := uc.repo.GetTally(ctx, nomineeID); err != nil {
		return nil, err
	}

	intent := &models.PaymentIntent{
		LocalID:        uuid.New(),
		PayerPhone:     phone,
		TargetKey:      nomineeID,
		UnitCount:      req.VotesCount,
		AmountExpected: int64(req.VotesCount) * uc.cfg.Vote.UnitPrice,
		Status:         models.IntentStatusPending,
	}
	if err := uc.repo.CreateIntent(ctx, intent); err != nil {
		return nil, err
	}

	log := uc.logger.With(
		logger.String("local_id", intent.LocalID.String()),
		logger.String("nominee_id", nomineeID),
		logger.String("phone", utils.MaskMSISDN(phone)),
		logger.Int64("amount", intent.AmountExpected),
	)

	push, err := uc.push(ctx, intent)
	if err != nil {
		log.Warn("STK push failed", logger.Err(err))
		if recErr := uc.repo.RecordSubmitError(ctx, intent.LocalID, err.Error()); recErr != nil {
			log.Error("Failed to record submit error", logger.Err(recErr))
		}
		return nil, err
	}

	attachErr := uc.retrier.Execute(ctx, "attach_tracking_id", func(ctx context.Context) error {
		return uc.repo.AttachTrackingID(ctx, intent.LocalID, push.CheckoutRequestID, push.MerchantRequestID)
	})
	if attachErr != nil {
		log.Error("Payment prompted but tracking id not recorded",
			logger.String("tracking_id", push.CheckoutRequestID),
			logger.String("merchant_request_id", push.MerchantRequestID),
			logger.Err(attachErr))
		return nil, fmt.Errorf("failed to record tracking id: %w", attachErr)
	}

	result := &models.VoteSubmitResult{
		TrackingID:        push.CheckoutRequestID,
		MerchantRequestID: push.MerchantRequestID,
		LocalID:           intent.LocalID,
		AmountExpected:    intent.AmountExpected,
		Status:            models.IntentStatusPending,
		CustomerMessage:   push.CustomerMessage,
	}

	token, err := jwt.IssueStatusToken(push.CheckoutRequestID, uc.cfg.JWT)
	if err != nil {
		log.Warn("Failed to issue status token", logger.Err(err))
	} else {
		result.StatusToken = token
	}

	log.Info("STK push accepted", logger.String("tracking_id", push.CheckoutRequestID))
	return result, nil
}

// push obtains a credential and sends the STK push. A rejected credential is
// dropped from the cache and fetched once more.
func (uc *voteUC) push(ctx context.Context, intent *models.PaymentIntent) (*models.PushResult, error) {
	req := models.PushRequest{
		Phone:     intent.PayerPhone,
		Amount:    intent.AmountExpected,
		Reference: intent.TargetKey,
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		cred, err := uc.gw.ObtainCredential(ctx)
		if err != nil {
			return nil, err
		}

		result, err := uc.gw.PushPayment(ctx, cred, req)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !errors.Is(err, votes.ErrCredentialRejected) {
			return nil, err
		}
		if invErr := uc.gw.InvalidateCredential(ctx); invErr != nil {
			uc.logger.Warn("Failed to invalidate Daraja credential", logger.Err(invErr))
		}
	}
	return nil, lastErr
}

func submissionOutcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, votes.ErrMissingTarget), errors.Is(err, votes.ErrInvalidUnitCount), errors.Is(err, votes.ErrInvalidPhone):
		return "invalid"
	case errors.Is(err, votes.ErrVerificationFailed):
		return "unverified"
	case errors.Is(err, votes.ErrTargetNotFound):
		return "unknown_nominee"
	case errors.Is(err, votes.ErrGatewayUnavailable):
		return "gateway_unavailable"
	case errors.Is(err, votes.ErrCredentialRejected), errors.Is(err, votes.ErrPushRejected):
		return "gateway_rejected"
	default:
		return "error"
	}
}
