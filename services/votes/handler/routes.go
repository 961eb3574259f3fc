package handler

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/middleware"
	"github.com/piresc/tallytrack/internal/pkg/models"
	natspkg "github.com/piresc/tallytrack/internal/pkg/nats"
	wspkg "github.com/piresc/tallytrack/internal/pkg/websocket"
	"github.com/piresc/tallytrack/services/votes"
	httpHandler "github.com/piresc/tallytrack/services/votes/handler/http"
	natsHandler "github.com/piresc/tallytrack/services/votes/handler/nats"
	wsHandler "github.com/piresc/tallytrack/services/votes/handler/websocket"
)

// Handler combines all handlers for the votes service
type Handler struct {
	votesHTTP    *httpHandler.VotesHandler
	callbackHTTP *httpHandler.CallbackHandler
	votesNATS    *natsHandler.VotesHandler
	statusWS     *wsHandler.StatusSocket
	cfg          *models.Config
}

// NewHandler creates a new combined handler
func NewHandler(
	voteUC votes.VoteUC,
	natsClient *natspkg.Client,
	wsManager *wspkg.Manager,
	cfg *models.Config,
	nrApp *newrelic.Application,
	l *logger.ZapLogger,
) *Handler {
	return &Handler{
		votesHTTP:    httpHandler.NewVotesHandler(voteUC),
		callbackHTTP: httpHandler.NewCallbackHandler(voteUC, cfg.Callback),
		votesNATS:    natsHandler.NewVotesHandler(voteUC, natsClient, wsManager, nrApp, l),
		statusWS:     wsHandler.NewStatusSocket(voteUC, wsManager),
		cfg:          cfg,
	}
}

// RegisterRoutes registers all HTTP and WebSocket routes.
// submitLimiter guards vote submission and may be nil.
func (h *Handler) RegisterRoutes(e *echo.Echo, submitLimiter echo.MiddlewareFunc) {
	api := e.Group("/api")

	submitMiddleware := []echo.MiddlewareFunc{}
	if submitLimiter != nil {
		submitMiddleware = append(submitMiddleware, submitLimiter)
	}
	api.POST("/submit-vote", h.votesHTTP.SubmitVote, submitMiddleware...)
	api.POST("/callback", h.callbackHTTP.HandleCallback)
	api.GET("/payment-status", h.votesHTTP.GetPaymentStatusByQuery)
	api.GET("/payment-status/:trackingId", h.votesHTTP.GetPaymentStatus)
	api.GET("/nominees/:nomineeId/votes", h.votesHTTP.GetTally)

	e.GET("/ws/payment-status/:trackingId", h.statusWS.Handle)

	// Operator endpoints (API key required)
	internal := e.Group("/internal", middleware.APIKey(h.cfg.APIKey))
	internal.POST("/tallies/reapply", h.votesHTTP.ReapplyTallies)
	internal.POST("/tallies/:trackingId/reapply", h.votesHTTP.ReapplyTally)
}

// InitNATSConsumers initializes all NATS consumers
func (h *Handler) InitNATSConsumers() error {
	return h.votesNATS.InitNATSConsumers()
}

// Shutdown stops consuming events and waits for in-flight callbacks
func (h *Handler) Shutdown(ctx context.Context) error {
	h.votesNATS.Close()
	return h.callbackHTTP.Drain(ctx)
}
