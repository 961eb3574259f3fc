package http

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/metrics"
	"github.com/piresc/tallytrack/internal/pkg/models"
	nrpkg "github.com/piresc/tallytrack/internal/pkg/newrelic"
	"github.com/piresc/tallytrack/services/votes"
)

const (
	maxCallbackBody       = 64 << 10
	defaultProcessTimeout = 30 * time.Second
	defaultMaxInFlight    = 32
	maxLoggedShedBody     = 4096
)

// CallbackAck is the body Daraja expects back
type CallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

// CallbackHandler acknowledges gateway callbacks and reconciles them in the background.
// slots bounds running reconciliations; queue bounds every live worker,
// running or waiting, so a burst cannot park unbounded goroutines.
type CallbackHandler struct {
	voteUC  votes.VoteUC
	timeout time.Duration
	slots   chan struct{}
	queue   chan struct{}
	wg      sync.WaitGroup
}

// NewCallbackHandler creates a callback handler bounded by cfg
func NewCallbackHandler(voteUC votes.VoteUC, cfg models.CallbackConfig) *CallbackHandler {
	timeout := time.Duration(cfg.ProcessTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultProcessTimeout
	}
	maxInFlight := cfg.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	maxQueued := cfg.MaxQueued
	if maxQueued < maxInFlight {
		maxQueued = maxInFlight * 4
	}

	return &CallbackHandler{
		voteUC:  voteUC,
		timeout: timeout,
		slots:   make(chan struct{}, maxInFlight),
		queue:   make(chan struct{}, maxQueued),
	}
}

// HandleCallback always answers 200. Reconciliation runs after the ack on a
// detached context so a slow ledger never delays the gateway.
func (h *CallbackHandler) HandleCallback(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Votes.HandleCallback")

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxCallbackBody))
	if err != nil {
		logger.Warn("Failed to read callback body", logger.Err(err))
	}

	ackErr := c.JSON(http.StatusOK, CallbackAck{ResultCode: 0, ResultDesc: "Accepted"})

	if len(body) > 0 {
		h.dispatch(nrpkg.Detach(c.Request().Context()), body)
	}
	return ackErr
}

// dispatch hands the body to a worker, or sheds it when the queue is full.
// A shed body is logged so the payment can still be reconciled by hand.
func (h *CallbackHandler) dispatch(ctx context.Context, body []byte) {
	select {
	case h.queue <- struct{}{}:
	default:
		raw := body
		if len(raw) > maxLoggedShedBody {
			raw = raw[:maxLoggedShedBody]
		}
		metrics.ObserveCallback(string(models.CallbackShed))
		logger.Error("Callback shed, reconciler saturated",
			logger.Int("queued", len(h.queue)),
			logger.ByteString("raw", raw))
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer func() { <-h.queue }()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic while reconciling callback", logger.Any("panic", r))
			}
		}()

		h.slots <- struct{}{}
		defer func() { <-h.slots }()

		ctx, cancel := context.WithTimeout(ctx, h.timeout)
		defer cancel()

		disposition := h.voteUC.HandleCallback(ctx, body)
		logger.Debug("Callback reconciled", logger.String("disposition", string(disposition)))
	}()
}

// Drain waits for in-flight reconciliations or until ctx is done
func (h *CallbackHandler) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
