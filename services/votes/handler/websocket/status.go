package websocket

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/piresc/tallytrack/internal/pkg/constants"
	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/models"
	nrpkg "github.com/piresc/tallytrack/internal/pkg/newrelic"
	wspkg "github.com/piresc/tallytrack/internal/pkg/websocket"
	"github.com/piresc/tallytrack/services/votes"
)

const (
	pingInterval   = 25 * time.Second
	writeWait      = 10 * time.Second
	maxSocketLife  = 5 * time.Minute
	lookupTimeout  = 5 * time.Second
	maxClientFrame = 512
)

// StatusSocket streams one payment's status until it resolves
type StatusSocket struct {
	voteUC   votes.VoteUC
	manager  *wspkg.Manager
	lifetime time.Duration
}

// NewStatusSocket creates the status stream handler
func NewStatusSocket(voteUC votes.VoteUC, manager *wspkg.Manager) *StatusSocket {
	return &StatusSocket{
		voteUC:   voteUC,
		manager:  manager,
		lifetime: maxSocketLife,
	}
}

// Handle upgrades /ws/payment-status/:trackingId once the status token checks out
func (s *StatusSocket) Handle(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Votes.StatusSocket")

	trackingID := c.Param("trackingId")
	return s.manager.HandleConnection(c, trackingID, func(sub *wspkg.Subscriber, conn *websocket.Conn) error {
		s.stream(sub, conn)
		return nil
	})
}

func (s *StatusSocket) stream(sub *wspkg.Subscriber, conn *websocket.Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	view, err := s.voteUC.GetStatus(ctx, sub.TrackingID)
	cancel()
	if err != nil {
		code, msg := constants.ErrorInternal, "status lookup failed"
		if errors.Is(err, votes.ErrIntentNotFound) || errors.Is(err, votes.ErrInvalidTrackingID) {
			code, msg = constants.ErrorNotFound, "payment not found"
		} else {
			logger.Error("Status socket lookup failed",
				logger.String("tracking_id", sub.TrackingID),
				logger.Err(err))
		}
		_ = s.manager.SendErrorMessage(conn, code, msg)
		return
	}

	if !s.send(conn, view) || view.Status.IsTerminal() {
		return
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(maxClientFrame)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	lifetime := time.NewTimer(s.lifetime)
	defer lifetime.Stop()

	for {
		select {
		case <-closed:
			return
		case <-lifetime.C:
			s.closeWith(conn, websocket.CloseNormalClosure, "status stream expired")
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case update := <-sub.Updates:
			if !s.send(conn, update) {
				return
			}
			if update.Status.IsTerminal() {
				s.closeWith(conn, websocket.CloseNormalClosure, string(update.Status))
				return
			}
		}
	}
}

func (s *StatusSocket) send(conn *websocket.Conn, view *models.StatusView) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.manager.SendMessage(conn, constants.EventPaymentStatus, view); err != nil {
		logger.Debug("Status socket write failed",
			logger.String("tracking_id", view.TrackingID),
			logger.Err(err))
		return false
	}
	return true
}

func (s *StatusSocket) closeWith(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
