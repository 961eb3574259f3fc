package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/piresc/tallytrack/internal/pkg/constants"
	pkgjwt "github.com/piresc/tallytrack/internal/pkg/jwt"
	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/models"
)

// Subscriber receives status updates for one tracking id
type Subscriber struct {
	TrackingID string
	Updates    chan *models.StatusView
}

// Manager authenticates status sockets and fans out resolved payments to them
type Manager struct {
	sync.RWMutex
	subscribers map[string]map[*Subscriber]struct{}
	cfg         models.JWTConfig
	upgrader    websocket.Upgrader
	logger      *logger.ZapLogger
}

// NewManager creates a manager; an empty origin list allows any origin
func NewManager(jwtConfig models.JWTConfig, allowedOrigins []string, l *logger.ZapLogger) *Manager {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin != "" && origin != "*" {
			allowed[origin] = struct{}{}
		}
	}

	return &Manager{
		subscribers: make(map[string]map[*Subscriber]struct{}),
		cfg:         jwtConfig,
		logger:      l,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				_, ok := allowed[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

// HandleConnection checks the status token in the query string, upgrades and hands the socket over
func (m *Manager) HandleConnection(c echo.Context, trackingID string, handle func(*Subscriber, *websocket.Conn) error) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "status token is required")
	}
	if err := pkgjwt.AuthorizeTracking(token, m.cfg.Secret, trackingID); err != nil {
		m.logger.Warn("Status token rejected",
			logger.String("tracking_id", trackingID),
			logger.Err(err))
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid status token")
	}

	ws, err := m.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	sub := m.Subscribe(trackingID)
	defer m.Unsubscribe(sub)

	return handle(sub, ws)
}

// Subscribe registers interest in one tracking id
func (m *Manager) Subscribe(trackingID string) *Subscriber {
	sub := &Subscriber{
		TrackingID: trackingID,
		Updates:    make(chan *models.StatusView, 1),
	}

	m.Lock()
	defer m.Unlock()
	if m.subscribers[trackingID] == nil {
		m.subscribers[trackingID] = make(map[*Subscriber]struct{})
	}
	m.subscribers[trackingID][sub] = struct{}{}
	return sub
}

// Unsubscribe removes a subscriber
func (m *Manager) Unsubscribe(sub *Subscriber) {
	m.Lock()
	defer m.Unlock()

	subs := m.subscribers[sub.TrackingID]
	delete(subs, sub)
	if len(subs) == 0 {
		delete(m.subscribers, sub.TrackingID)
	}
}

// SubscriberCount returns the number of sockets watching trackingID
func (m *Manager) SubscriberCount(trackingID string) int {
	m.RLock()
	defer m.RUnlock()
	return len(m.subscribers[trackingID])
}

// Notify delivers view to every subscriber of its tracking id without blocking.
// A subscriber with an unread update keeps the newer one.
func (m *Manager) Notify(view *models.StatusView) int {
	m.RLock()
	defer m.RUnlock()

	delivered := 0
	for sub := range m.subscribers[view.TrackingID] {
		select {
		case sub.Updates <- view:
			delivered++
			continue
		default:
		}

		select {
		case <-sub.Updates:
		default:
		}
		select {
		case sub.Updates <- view:
			delivered++
		default:
		}
	}
	return delivered
}

// SendMessage sends a message to a WebSocket client
func (m *Manager) SendMessage(conn *websocket.Conn, event string, data interface{}) error {
	if conn == nil {
		return nil
	}

	rawData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("error marshaling message data: %w", err)
	}

	return conn.WriteJSON(models.WSMessage{
		Event: event,
		Data:  rawData,
	})
}

// SendErrorMessage sends an error message to a WebSocket client
func (m *Manager) SendErrorMessage(conn *websocket.Conn, code string, message string) error {
	return m.SendMessage(conn, constants.EventError, models.WSErrorMessage{
		Code:    code,
		Message: message,
	})
}
