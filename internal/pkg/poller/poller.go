package poller

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	pkghttp "github.com/piresc/tallytrack/internal/pkg/http"
	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/models"
	"github.com/piresc/tallytrack/internal/utils"
)

// ErrPollTimeout means attempts ran out while the payment was still pending.
// The payment may still resolve later; it is not a failure.
var ErrPollTimeout = errors.New("payment still pending after polling")

// Fetcher returns the current status of one payment
type Fetcher interface {
	FetchStatus(ctx context.Context, trackingID string) (*models.StatusView, error)
}

// Result is the outcome of a completed poll
type Result struct {
	View     *models.StatusView
	Attempts int
}

// Poller asks for a payment's status on a fixed interval until it is terminal
type Poller struct {
	fetcher     Fetcher
	interval    time.Duration
	maxAttempts int
	logger      *logger.ZapLogger
}

// New creates a poller; non-positive settings fall back to 3s and 10 attempts
func New(fetcher Fetcher, interval time.Duration, maxAttempts int, l *logger.ZapLogger) *Poller {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &Poller{fetcher: fetcher, interval: interval, maxAttempts: maxAttempts, logger: l}
}

// Await polls until the status is COMPLETED or FAILED. Fetch errors count as
// attempts and are retried. On exhaustion it returns the last view seen and
// ErrPollTimeout. Cancelling ctx stops polling but not the payment.
func (p *Poller) Await(ctx context.Context, trackingID string) (*Result, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var last *models.StatusView
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		view, err := p.fetcher.FetchStatus(ctx, trackingID)
		switch {
		case err != nil:
			p.logger.Debug("Status fetch failed",
				logger.String("tracking_id", trackingID),
				logger.Int("attempt", attempt),
				logger.Err(err))
		case view.Status.IsTerminal():
			return &Result{View: view, Attempts: attempt}, nil
		default:
			last = view
		}

		if attempt == p.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return &Result{View: last, Attempts: attempt}, ctx.Err()
		case <-ticker.C:
		}
	}

	return &Result{View: last, Attempts: p.maxAttempts}, ErrPollTimeout
}

// HTTPFetcher reads status from the votes service
type HTTPFetcher struct {
	client *pkghttp.Client
}

// NewHTTPFetcher creates a fetcher against baseURL
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: pkghttp.NewClient(baseURL, timeout)}
}

// FetchStatus calls GET /api/payment-status/:trackingId
func (f *HTTPFetcher) FetchStatus(ctx context.Context, trackingID string) (*models.StatusView, error) {
	resp, err := f.client.Get(ctx, "/api/payment-status/"+url.PathEscape(trackingID), nil)
	if err != nil {
		return nil, err
	}

	var view models.StatusView
	if err := utils.ParseJSONResponse(resp.Body, &view); err != nil {
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, err)
	}
	return &view, nil
}
