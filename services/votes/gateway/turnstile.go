package gateway

import (
	"context"
	"net/url"
	"time"

	pkghttp "github.com/piresc/tallytrack/internal/pkg/http"
	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/metrics"
	"github.com/piresc/tallytrack/internal/pkg/models"
	"github.com/piresc/tallytrack/services/votes"
)

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
	Hostname   string   `json:"hostname"`
}

// TurnstileClient verifies Cloudflare Turnstile tokens
type TurnstileClient struct {
	secret string
	client *pkghttp.Client
	logger *logger.ZapLogger
}

func NewTurnstileClient(cfg models.TurnstileConfig, l *logger.ZapLogger) *TurnstileClient {
	return &TurnstileClient{
		secret: cfg.Secret,
		client: pkghttp.NewClient(cfg.VerifyURL, time.Duration(cfg.TimeoutSeconds)*time.Second),
		logger: l,
	}
}

// VerifyHuman checks a widget token. Verification is skipped when no secret is configured.
func (t *TurnstileClient) VerifyHuman(ctx context.Context, token, remoteIP string) (bool, error) {
	if t.secret == "" {
		t.logger.Warn("Turnstile secret not configured, skipping bot verification")
		return true, nil
	}
	if token == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", t.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	resp, err := t.client.PostForm(ctx, "", form)
	if err != nil {
		metrics.ObserveGatewayRequest("turnstile", "unavailable")
		return false, &votes.GatewayError{Op: "turnstile", Message: err.Error(), Kind: votes.ErrGatewayUnavailable}
	}
	if !resp.IsSuccess() {
		metrics.ObserveGatewayRequest("turnstile", "unavailable")
		return false, &votes.GatewayError{Op: "turnstile", StatusCode: resp.StatusCode, Kind: votes.ErrGatewayUnavailable}
	}

	var body siteverifyResponse
	if err := resp.DecodeJSON(&body); err != nil {
		metrics.ObserveGatewayRequest("turnstile", "unavailable")
		return false, &votes.GatewayError{Op: "turnstile", StatusCode: resp.StatusCode, Message: "malformed siteverify response", Kind: votes.ErrGatewayUnavailable}
	}

	if !body.Success {
		metrics.ObserveGatewayRequest("turnstile", "rejected")
		t.logger.Info("Turnstile rejected token", logger.Any("error_codes", body.ErrorCodes))
		return false, nil
	}

	metrics.ObserveGatewayRequest("turnstile", "success")
	return true, nil
}
