package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/piresc/tallytrack/internal/pkg/constants"
	pkgjwt "github.com/piresc/tallytrack/internal/pkg/jwt"
	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJWT = models.JWTConfig{Secret: "ws-secret", Expiration: 5, Issuer: "tallytrack"}

func TestSubscribeNotify(t *testing.T) {
	m := NewManager(testJWT, nil, logger.NewNopLogger())

	first := m.Subscribe("ws_CO_1")
	second := m.Subscribe("ws_CO_1")
	other := m.Subscribe("ws_CO_2")
	assert.Equal(t, 2, m.SubscriberCount("ws_CO_1"))

	delivered := m.Notify(&models.StatusView{TrackingID: "ws_CO_1", Status: models.IntentStatusCompleted})

	assert.Equal(t, 2, delivered)
	assert.Equal(t, models.IntentStatusCompleted, (<-first.Updates).Status)
	assert.Equal(t, models.IntentStatusCompleted, (<-second.Updates).Status)
	assert.Len(t, other.Updates, 0)

	m.Unsubscribe(first)
	m.Unsubscribe(second)
	assert.Equal(t, 0, m.SubscriberCount("ws_CO_1"))
}

func TestNotify_KeepsLatest(t *testing.T) {
	m := NewManager(testJWT, nil, logger.NewNopLogger())
	sub := m.Subscribe("ws_CO_1")

	m.Notify(&models.StatusView{TrackingID: "ws_CO_1", Status: models.IntentStatusPending})
	m.Notify(&models.StatusView{TrackingID: "ws_CO_1", Status: models.IntentStatusFailed})

	assert.Equal(t, models.IntentStatusFailed, (<-sub.Updates).Status)
}

func newServer(t *testing.T, m *Manager) *httptest.Server {
	t.Helper()
	e := echo.New()
	e.GET("/ws/payment-status/:trackingId", func(c echo.Context) error {
		return m.HandleConnection(c, c.Param("trackingId"), func(sub *Subscriber, conn *websocket.Conn) error {
			return m.SendMessage(conn, constants.EventPaymentStatus, &models.StatusView{TrackingID: sub.TrackingID})
		})
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleConnection(t *testing.T) {
	m := NewManager(testJWT, nil, logger.NewNopLogger())
	srv := newServer(t, m)
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/payment-status/ws_CO_1"

	t.Run("missing token", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(base, nil)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token for another payment", func(t *testing.T) {
		token, err := pkgjwt.IssueStatusToken("ws_CO_2", testJWT)
		require.NoError(t, err)

		_, resp, err := websocket.DefaultDialer.Dial(base+"?token="+token, nil)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := pkgjwt.IssueStatusToken("ws_CO_1", testJWT)
		require.NoError(t, err)

		conn, _, err := websocket.DefaultDialer.Dial(base+"?token="+token, nil)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg models.WSMessage
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, constants.EventPaymentStatus, msg.Event)
		assert.Contains(t, string(msg.Data), "ws_CO_1")
	})
}

func TestCheckOrigin(t *testing.T) {
	m := NewManager(testJWT, []string{"https://vote.example.com"}, logger.NewNopLogger())

	allowed := httptest.NewRequest(http.MethodGet, "/", nil)
	allowed.Header.Set("Origin", "https://vote.example.com")
	denied := httptest.NewRequest(http.MethodGet, "/", nil)
	denied.Header.Set("Origin", "https://evil.example.com")

	assert.True(t, m.upgrader.CheckOrigin(allowed))
	assert.False(t, m.upgrader.CheckOrigin(denied))
}
