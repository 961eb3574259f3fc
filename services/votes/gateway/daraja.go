package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/piresc/tallytrack/internal/pkg/circuitbreaker"
	pkghttp "github.com/piresc/tallytrack/internal/pkg/http"
	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/metrics"
	"github.com/piresc/tallytrack/internal/pkg/models"
	"github.com/piresc/tallytrack/services/votes"
)

const (
	tokenPath    = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath  = "/mpesa/stkpush/v1/processrequest"
	callbackPath = "/api/callback"

	maxAccountReference = 20
	descriptionIDRunes  = 12
	defaultTokenTTL     = 3599 * time.Second
	timestampLayout     = "20060102150405"
)

var nairobi = loadNairobi()

func loadNairobi() *time.Location {
	loc, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		return time.FixedZone("EAT", 3*60*60)
	}
	return loc
}

// TokenCache shares the Daraja credential between instances. Get returns nil, nil on a miss.
type TokenCache interface {
	Get(ctx context.Context) (*models.AccessToken, error)
	Set(ctx context.Context, token *models.AccessToken, ttl time.Duration) error
	Delete(ctx context.Context) error
}

// DarajaClient talks to the M-Pesa Daraja API
type DarajaClient struct {
	cfg     models.DarajaConfig
	client  *pkghttp.Client
	breaker *circuitbreaker.CircuitBreaker
	cache   TokenCache
	logger  *logger.ZapLogger
	now     func() time.Time
}

// NewDarajaClient creates a Daraja client. cache may be nil.
func NewDarajaClient(cfg models.DarajaConfig, cache TokenCache, l *logger.ZapLogger) *DarajaClient {
	breakerCfg := circuitbreaker.DefaultConfig("daraja")
	if cfg.BreakerFailures > 0 {
		breakerCfg.FailureThreshold = uint32(cfg.BreakerFailures)
	}
	if cfg.BreakerCooldown > 0 {
		breakerCfg.Timeout = time.Duration(cfg.BreakerCooldown) * time.Second
	}
	breakerCfg.IsFailure = votes.IsRetryable

	return &DarajaClient{
		cfg:     cfg,
		client:  pkghttp.NewClient(cfg.BaseURL, time.Duration(cfg.TimeoutSeconds)*time.Second),
		breaker: circuitbreaker.New(breakerCfg, l),
		cache:   cache,
		logger:  l,
		now:     time.Now,
	}
}

// Breaker exposes the circuit breaker for health reporting
func (d *DarajaClient) Breaker() *circuitbreaker.CircuitBreaker {
	return d.breaker
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   json.Number `json:"expires_in"`
}

// ObtainCredential returns a usable access token, from the cache when possible
func (d *DarajaClient) ObtainCredential(ctx context.Context) (*models.AccessToken, error) {
	skew := time.Duration(d.cfg.TokenSkewSeconds) * time.Second

	if d.cache != nil {
		token, err := d.cache.Get(ctx)
		if err != nil {
			d.logger.Warn("Failed to read cached Daraja token", logger.Err(err))
		} else if token.UsableAt(d.now(), skew) {
			return token, nil
		}
	}

	var token *models.AccessToken
	err := d.execute(ctx, "token", func(ctx context.Context) error {
		header := http.Header{}
		header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(d.cfg.ConsumerKey+":"+d.cfg.ConsumerSecret)))

		resp, err := d.client.Get(ctx, tokenPath, header)
		if err != nil {
			return &votes.GatewayError{Op: "token", Message: err.Error(), Kind: votes.ErrGatewayUnavailable}
		}
		if !resp.IsSuccess() {
			return classify("token", resp)
		}

		var body tokenResponse
		if err := resp.DecodeJSON(&body); err != nil || body.AccessToken == "" {
			return &votes.GatewayError{Op: "token", StatusCode: resp.StatusCode, Message: "malformed token response", Kind: votes.ErrGatewayUnavailable}
		}

		ttl := defaultTokenTTL
		if secs, err := strconv.Atoi(strings.TrimSpace(body.ExpiresIn.String())); err == nil && secs > 0 {
			ttl = time.Duration(secs) * time.Second
		}
		token = &models.AccessToken{Value: body.AccessToken, ExpiresAt: d.now().Add(ttl)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		if ttl := token.ExpiresAt.Sub(d.now()) - skew; ttl > 0 {
			if err := d.cache.Set(ctx, token, ttl); err != nil {
				d.logger.Warn("Failed to cache Daraja token", logger.Err(err))
			}
		}
	}

	return token, nil
}

// InvalidateCredential drops the cached token after Daraja rejected it
func (d *DarajaClient) InvalidateCredential(ctx context.Context) error {
	if d.cache == nil {
		return nil
	}
	return d.cache.Delete(ctx)
}

// PushPayment sends an STK push prompting the payer to approve the charge
func (d *DarajaClient) PushPayment(ctx context.Context, cred *models.AccessToken, req models.PushRequest) (*models.PushResult, error) {
	now := d.now()
	if !cred.UsableAt(now, 0) {
		return nil, &votes.GatewayError{Op: "push", Message: "access token expired", Kind: votes.ErrCredentialRejected}
	}

	timestamp := now.In(nairobi).Format(timestampLayout)
	description := req.Description
	if description == "" {
		description = strings.TrimSpace(d.cfg.AccountLabel + " " + truncateRunes(req.Reference, descriptionIDRunes))
	}

	payload := models.STKPushPayload{
		BusinessShortCode: d.cfg.ShortCode,
		Password:          d.password(timestamp),
		Timestamp:         timestamp,
		TransactionType:   d.cfg.TransactionType,
		Amount:            req.Amount,
		PartyA:            req.Phone,
		PartyB:            d.cfg.ShortCode,
		PhoneNumber:       req.Phone,
		CallBackURL:       d.cfg.CallbackBaseURL + callbackPath,
		AccountReference:  truncateRunes(req.Reference, maxAccountReference),
		TransactionDesc:   description,
	}

	var result models.PushResult
	err := d.execute(ctx, "push", func(ctx context.Context) error {
		header := http.Header{}
		header.Set("Authorization", "Bearer "+cred.Value)

		resp, err := d.client.PostJSON(ctx, stkPushPath, payload, header)
		if err != nil {
			return &votes.GatewayError{Op: "push", Message: err.Error(), Kind: votes.ErrGatewayUnavailable}
		}
		if !resp.IsSuccess() {
			return classify("push", resp)
		}

		if err := resp.DecodeJSON(&result); err != nil {
			return &votes.GatewayError{Op: "push", StatusCode: resp.StatusCode, Message: "malformed push response", Kind: votes.ErrGatewayUnavailable}
		}
		if result.ResponseCode != "0" || result.CheckoutRequestID == "" {
			return &votes.GatewayError{
				Op:         "push",
				StatusCode: resp.StatusCode,
				Code:       result.ResponseCode,
				Message:    result.ResponseDescription,
				Kind:       votes.ErrPushRejected,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// password is base64(shortcode + passkey + timestamp)
func (d *DarajaClient) password(timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(d.cfg.ShortCode + d.cfg.PassKey + timestamp))
}

func (d *DarajaClient) execute(ctx context.Context, op string, fn func(context.Context) error) error {
	err := d.breaker.Execute(ctx, fn)
	if errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
		err = &votes.GatewayError{Op: op, Message: err.Error(), Kind: votes.ErrGatewayUnavailable}
	}
	metrics.ObserveGatewayRequest(op, outcome(err))
	return err
}

// classify maps a non-2xx Daraja response onto the gateway error taxonomy
func classify(op string, resp *pkghttp.Response) error {
	var body models.DarajaErrorBody
	_ = resp.DecodeJSON(&body)

	gwErr := &votes.GatewayError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Code:       body.ErrorCode,
		Message:    body.ErrorMessage,
	}

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		gwErr.Kind = votes.ErrGatewayUnavailable
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden || op == "token":
		gwErr.Kind = votes.ErrCredentialRejected
	default:
		gwErr.Kind = votes.ErrPushRejected
	}
	if gwErr.Message == "" {
		gwErr.Message = http.StatusText(resp.StatusCode)
	}
	return gwErr
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, votes.ErrGatewayUnavailable):
		return "unavailable"
	case errors.Is(err, votes.ErrCredentialRejected):
		return "credential_rejected"
	case errors.Is(err, votes.ErrPushRejected):
		return "rejected"
	default:
		return "error"
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

