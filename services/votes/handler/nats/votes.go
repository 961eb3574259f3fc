package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/piresc/tallytrack/internal/pkg/constants"
	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/models"
	natspkg "github.com/piresc/tallytrack/internal/pkg/nats"
	nrpkg "github.com/piresc/tallytrack/internal/pkg/newrelic"
	"github.com/piresc/tallytrack/internal/pkg/retry"
	"github.com/piresc/tallytrack/services/votes"
)

const messageTimeout = 30 * time.Second

// Notifier pushes resolved statuses to open status sockets
type Notifier interface {
	Notify(view *models.StatusView) int
	SubscriberCount(trackingID string) int
}

// VotesHandler consumes vote events published on NATS
type VotesHandler struct {
	voteUC     votes.VoteUC
	natsClient *natspkg.Client
	hub        Notifier
	retrier    *retry.Retrier
	nrApp      *newrelic.Application
	subs       []*nats.Subscription
}

// NewVotesHandler creates a new votes NATS handler
func NewVotesHandler(
	voteUC votes.VoteUC,
	client *natspkg.Client,
	hub Notifier,
	nrApp *newrelic.Application,
	l *logger.ZapLogger,
) *VotesHandler {
	cfg := retry.DefaultConfig()
	cfg.IsRetryable = isReapplyRetryable

	return &VotesHandler{
		voteUC:     voteUC,
		natsClient: client,
		hub:        hub,
		retrier:    retry.New(cfg, l),
		nrApp:      nrApp,
		subs:       make([]*nats.Subscription, 0),
	}
}

// InitNATSConsumers subscribes to tally retries and resolution broadcasts.
// Tally retries use a queue group so one replica handles each event.
func (h *VotesHandler) InitNATSConsumers() error {
	logger.Info("Initializing NATS consumers for votes service")

	sub, err := h.natsClient.QueueSubscribe(constants.SubjectTallyUnapplied, constants.QueueTallyReapply, h.handleTallyUnapplied)
	if err != nil {
		logger.Error("Failed to subscribe to tally unapplied events",
			logger.String("subject", constants.SubjectTallyUnapplied),
			logger.Err(err))
		return fmt.Errorf("failed to subscribe to %s: %w", constants.SubjectTallyUnapplied, err)
	}
	h.subs = append(h.subs, sub)

	sub, err = h.natsClient.Subscribe(constants.SubjectVoteResolved, h.handleVoteResolved)
	if err != nil {
		logger.Error("Failed to subscribe to vote resolved events",
			logger.String("subject", constants.SubjectVoteResolved),
			logger.Err(err))
		return fmt.Errorf("failed to subscribe to %s: %w", constants.SubjectVoteResolved, err)
	}
	h.subs = append(h.subs, sub)

	logger.Info("Successfully initialized NATS consumers for votes service",
		logger.Int("subscriptions", len(h.subs)))
	return nil
}

// Close unsubscribes every consumer
func (h *VotesHandler) Close() {
	for _, sub := range h.subs {
		if err := sub.Unsubscribe(); err != nil {
			logger.Warn("Failed to unsubscribe", logger.String("subject", sub.Subject), logger.Err(err))
		}
	}
	h.subs = nil
}

func (h *VotesHandler) handleTallyUnapplied(msg *nats.Msg) {
	txn := h.nrApp.StartTransaction("NATS.Votes.HandleTallyUnapplied")
	defer txn.End()
	nrpkg.AddTransactionAttribute(txn, "message.subject", msg.Subject)

	ctx, cancel := context.WithTimeout(newrelic.NewContext(context.Background(), txn), messageTimeout)
	defer cancel()

	if err := h.processTallyUnapplied(ctx, msg.Data); err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		logger.ErrorCtx(ctx, "Error handling tally unapplied event", logger.Err(err))
	}
}

func (h *VotesHandler) handleVoteResolved(msg *nats.Msg) {
	txn := h.nrApp.StartTransaction("NATS.Votes.HandleVoteResolved")
	defer txn.End()
	nrpkg.AddTransactionAttribute(txn, "message.subject", msg.Subject)

	ctx, cancel := context.WithTimeout(newrelic.NewContext(context.Background(), txn), messageTimeout)
	defer cancel()

	if err := h.processVoteResolved(ctx, msg.Data); err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		logger.ErrorCtx(ctx, "Error handling vote resolved event", logger.Err(err))
	}
}

// processTallyUnapplied retries the tally for a completed payment that was left uncounted
func (h *VotesHandler) processTallyUnapplied(ctx context.Context, data []byte) error {
	var event models.TallyUnappliedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to unmarshal tally unapplied event: %w", err)
	}
	if event.TrackingID == "" {
		return fmt.Errorf("tally unapplied event without tracking id")
	}

	if txn := nrpkg.FromContext(ctx); txn != nil {
		nrpkg.AddTransactionAttribute(txn, "tracking_id", event.TrackingID)
	}

	var path models.TallyPath
	err := h.retrier.Execute(ctx, "reapply_tally", func(ctx context.Context) error {
		var err error
		path, err = h.voteUC.ReapplyTally(ctx, event.TrackingID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to reapply tally for %s: %w", event.TrackingID, err)
	}

	logger.InfoCtx(ctx, "Tally reapplied from event",
		logger.String("tracking_id", event.TrackingID),
		logger.String("path", string(path)))
	return nil
}

// processVoteResolved refreshes any status socket watching the payment
func (h *VotesHandler) processVoteResolved(ctx context.Context, data []byte) error {
	var event models.VoteResolvedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to unmarshal vote resolved event: %w", err)
	}

	if h.hub == nil || h.hub.SubscriberCount(event.TrackingID) == 0 {
		return nil
	}

	view, err := h.voteUC.GetStatus(ctx, event.TrackingID)
	if err != nil {
		return fmt.Errorf("failed to load status for %s: %w", event.TrackingID, err)
	}

	delivered := h.hub.Notify(view)
	logger.DebugCtx(ctx, "Pushed resolved status to sockets",
		logger.String("tracking_id", event.TrackingID),
		logger.Int("delivered", delivered))
	return nil
}

func isReapplyRetryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, votes.ErrIntentNotFound),
		errors.Is(err, votes.ErrNotCompleted),
		errors.Is(err, votes.ErrInvalidTrackingID),
		errors.Is(err, votes.ErrTargetNotFound):
		return false
	}
	return true
}
