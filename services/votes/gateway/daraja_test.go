package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/piresc/tallytrack/internal/pkg/circuitbreaker"
	"github.com/piresc/tallytrack/internal/pkg/database"
	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/models"
	"github.com/piresc/tallytrack/services/votes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 10, 6, 30, 0, 0, time.UTC)

func testDarajaConfig(baseURL string) models.DarajaConfig {
	return models.DarajaConfig{
		Environment:      "sandbox",
		BaseURL:          baseURL,
		ConsumerKey:      "key",
		ConsumerSecret:   "secret",
		ShortCode:        "174379",
		PassKey:          "passkey",
		CallbackBaseURL:  "https://votes.example.com",
		TransactionType:  "CustomerPayBillOnline",
		AccountLabel:     "Under 40 Awards",
		TimeoutSeconds:   2,
		TokenSkewSeconds: 60,
		BreakerFailures:  2,
		BreakerCooldown:  30,
	}
}

func newTestDaraja(t *testing.T, handler http.HandlerFunc, cache TokenCache) *DarajaClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	d := NewDarajaClient(testDarajaConfig(server.URL), cache, logger.NewNopLogger())
	d.now = func() time.Time { return fixedNow }
	return d
}

func newTestTokenCache(t *testing.T) (*RedisTokenCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	return NewRedisTokenCache(client, "174379"), mr
}

func TestObtainCredential_FetchesAndCaches(t *testing.T) {
	// Arrange
	var calls int32
	cache, mr := newTestTokenCache(t)
	d := newTestDaraja(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/oauth/v1/generate", r.URL.Path)
		assert.Equal(t, "client_credentials", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("key:secret")), r.Header.Get("Authorization"))
		w.Write([]byte(`{"access_token":"tok-1","expires_in":"3599"}`))
	}, cache)

	// Act
	first, err := d.ObtainCredential(context.Background())
	require.NoError(t, err)
	second, err := d.ObtainCredential(context.Background())
	require.NoError(t, err)

	// Assert
	assert.Equal(t, "tok-1", first.Value)
	assert.Equal(t, fixedNow.Add(3599*time.Second), first.ExpiresAt)
	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, mr.Exists("daraja:token:174379"))
	assert.Equal(t, 3539*time.Second, mr.TTL("daraja:token:174379"))
}

func TestObtainCredential_NumericExpiryWithoutCache(t *testing.T) {
	d := newTestDaraja(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"tok-2","expires_in":120}`))
	}, nil)

	token, err := d.ObtainCredential(context.Background())

	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(2*time.Minute), token.ExpiresAt)
}

func TestObtainCredential_RefreshesNearExpiry(t *testing.T) {
	cache, _ := newTestTokenCache(t)
	require.NoError(t, cache.Set(context.Background(), &models.AccessToken{Value: "stale", ExpiresAt: fixedNow.Add(30 * time.Second)}, time.Hour))

	d := newTestDaraja(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"fresh","expires_in":"3599"}`))
	}, cache)

	token, err := d.ObtainCredential(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "fresh", token.Value)
}

func TestObtainCredential_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind error
	}{
		{name: "bad credentials", status: http.StatusBadRequest, body: `{"errorCode":"400.008.01","errorMessage":"Invalid Authentication passed"}`, wantKind: votes.ErrCredentialRejected},
		{name: "unauthorized", status: http.StatusUnauthorized, wantKind: votes.ErrCredentialRejected},
		{name: "server error", status: http.StatusServiceUnavailable, wantKind: votes.ErrGatewayUnavailable},
		{name: "empty token", status: http.StatusOK, body: `{"expires_in":"3599"}`, wantKind: votes.ErrGatewayUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDaraja(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, nil)

			_, err := d.ObtainCredential(context.Background())

			assert.ErrorIs(t, err, tt.wantKind)
		})
	}
}

func TestInvalidateCredential(t *testing.T) {
	cache, mr := newTestTokenCache(t)
	require.NoError(t, cache.Set(context.Background(), &models.AccessToken{Value: "tok", ExpiresAt: fixedNow.Add(time.Hour)}, time.Hour))
	d := newTestDaraja(t, func(w http.ResponseWriter, r *http.Request) {}, cache)

	err := d.InvalidateCredential(context.Background())

	assert.NoError(t, err)
	assert.False(t, mr.Exists("daraja:token:174379"))
}

func TestPushPayment_Success(t *testing.T) {
	// Arrange
	var payload models.STKPushPayload
	d := newTestDaraja(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mpesa/stkpush/v1/processrequest", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Write([]byte(`{"MerchantRequestID":"29115-34620561-1","CheckoutRequestID":"ws_CO_191220191020363925","ResponseCode":"0","ResponseDescription":"Success. Request accepted for processing","CustomerMessage":"Success. Request accepted for processing"}`))
	}, nil)
	cred := &models.AccessToken{Value: "tok", ExpiresAt: fixedNow.Add(time.Hour)}

	// Act
	result, err := d.PushPayment(context.Background(), cred, models.PushRequest{
		Phone:     "254712345678",
		Amount:    30,
		Reference: "3f1c2a9e-77b1-4a8e-9d1e-0c5c1f0a2b3c",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_191220191020363925", result.CheckoutRequestID)
	assert.Equal(t, "29115-34620561-1", result.MerchantRequestID)

	assert.Equal(t, "20250110093000", payload.Timestamp)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("174379passkey20250110093000")), payload.Password)
	assert.Equal(t, "174379", payload.BusinessShortCode)
	assert.Equal(t, "174379", payload.PartyB)
	assert.Equal(t, "254712345678", payload.PartyA)
	assert.Equal(t, "254712345678", payload.PhoneNumber)
	assert.Equal(t, int64(30), payload.Amount)
	assert.Equal(t, "https://votes.example.com/api/callback", payload.CallBackURL)
	assert.Equal(t, "3f1c2a9e-77b1-4a8e-9", payload.AccountReference)
	assert.Equal(t, "Under 40 Awards 3f1c2a9e-77b", payload.TransactionDesc)
}

func TestPushPayment_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind error
		wantCode string
	}{
		{name: "invalid amount", status: http.StatusBadRequest, body: `{"requestId":"1","errorCode":"400.002.02","errorMessage":"Bad Request - Invalid Amount"}`, wantKind: votes.ErrPushRejected, wantCode: "400.002.02"},
		{name: "expired token", status: http.StatusUnauthorized, body: `{"errorCode":"404.001.04","errorMessage":"Invalid Access Token"}`, wantKind: votes.ErrCredentialRejected, wantCode: "404.001.04"},
		{name: "server error", status: http.StatusInternalServerError, wantKind: votes.ErrGatewayUnavailable},
		{name: "non zero response code", status: http.StatusOK, body: `{"ResponseCode":"1","ResponseDescription":"Rejected"}`, wantKind: votes.ErrPushRejected, wantCode: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDaraja(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, nil)
			cred := &models.AccessToken{Value: "tok", ExpiresAt: fixedNow.Add(time.Hour)}

			_, err := d.PushPayment(context.Background(), cred, models.PushRequest{Phone: "254712345678", Amount: 10, Reference: "n-1"})

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
			var gwErr *votes.GatewayError
			require.ErrorAs(t, err, &gwErr)
			assert.Equal(t, tt.wantCode, gwErr.Code)
		})
	}
}

func TestPushPayment_ExpiredCredential(t *testing.T) {
	d := newTestDaraja(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("push must not be sent with an expired token")
	}, nil)

	_, err := d.PushPayment(context.Background(), &models.AccessToken{Value: "tok", ExpiresAt: fixedNow.Add(-time.Second)}, models.PushRequest{})

	assert.ErrorIs(t, err, votes.ErrCredentialRejected)
}

func TestPushPayment_BreakerOpens(t *testing.T) {
	var calls int32
	d := newTestDaraja(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}, nil)
	cred := &models.AccessToken{Value: "tok", ExpiresAt: fixedNow.Add(time.Hour)}

	for i := 0; i < 3; i++ {
		_, err := d.PushPayment(context.Background(), cred, models.PushRequest{Reference: "n-1"})
		assert.ErrorIs(t, err, votes.ErrGatewayUnavailable)
	}

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, circuitbreaker.StateOpen, d.Breaker().State())
}

func TestPushPayment_RejectionsDoNotTripBreaker(t *testing.T) {
	d := newTestDaraja(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}, nil)
	cred := &models.AccessToken{Value: "tok", ExpiresAt: fixedNow.Add(time.Hour)}

	for i := 0; i < 3; i++ {
		_, err := d.PushPayment(context.Background(), cred, models.PushRequest{Reference: "n-1"})
		assert.ErrorIs(t, err, votes.ErrPushRejected)
	}

	assert.Equal(t, circuitbreaker.StateClosed, d.Breaker().State())
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 20))
	assert.Equal(t, "ñññ", truncateRunes(strings.Repeat("ñ", 25), 3))
}
