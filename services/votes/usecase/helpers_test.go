package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/models"
	"github.com/piresc/tallytrack/internal/pkg/retry"
	"github.com/piresc/tallytrack/services/votes"
	"github.com/piresc/tallytrack/services/votes/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func testConfig() *models.Config {
	return &models.Config{
		Vote: models.VoteConfig{UnitPrice: 10, MaxUnits: 1000},
		JWT:  models.JWTConfig{Secret: "test-secret", Expiration: 30, Issuer: "tallytrack"},
	}
}

func newTestUC(t *testing.T, repo votes.VoteRepo, cache votes.StatusCache, gw votes.VoteGW) *voteUC {
	t.Helper()
	uc, err := NewVoteUC(testConfig(), repo, cache, gw, logger.NewNopLogger())
	require.NoError(t, err)

	impl := uc.(*voteUC)
	retryCfg := ledgerRetryConfig()
	retryCfg.BaseDelay = time.Millisecond
	retryCfg.MaxDelay = time.Millisecond
	impl.retrier = retry.New(retryCfg, logger.NewNopLogger())
	impl.now = func() time.Time { return fixedNow }
	return impl
}

// observeLogs swaps the usecase logger for one recording every entry
func observeLogs(uc *voteUC) *observer.ObservedLogs {
	core, logs := observer.New(zapcore.DebugLevel)
	uc.logger = &logger.ZapLogger{Logger: zap.New(core)}
	return logs
}

type testDeps struct {
	repo  *mocks.MockVoteRepo
	cache *mocks.MockStatusCache
	gw    *mocks.MockVoteGW
}

func newMockedUC(t *testing.T) (*voteUC, testDeps) {
	ctrl := gomock.NewController(t)
	deps := testDeps{
		repo:  mocks.NewMockVoteRepo(ctrl),
		cache: mocks.NewMockStatusCache(ctrl),
		gw:    mocks.NewMockVoteGW(ctrl),
	}
	return newTestUC(t, deps.repo, deps.cache, deps.gw), deps
}

func pendingIntent(trackingID string, units int) *models.PaymentIntent {
	merchantID := "29115-34620561-1"
	return &models.PaymentIntent{
		LocalID:           uuid.New(),
		TrackingID:        &trackingID,
		MerchantRequestID: &merchantID,
		PayerPhone:        "254712345678",
		TargetKey:         "nominee-1",
		UnitCount:         units,
		AmountExpected:    int64(units) * 10,
		Status:            models.IntentStatusPending,
		CreatedAt:         fixedNow,
		UpdatedAt:         fixedNow,
	}
}

func resolvedCopy(intent *models.PaymentIntent, outcome models.TerminalOutcome) *models.PaymentIntent {
	out := *intent
	out.Status = outcome.Status
	out.AmountReceived = outcome.AmountReceived
	out.ReceiptRef = outcome.ReceiptRef
	if outcome.Status == models.IntentStatusFailed {
		reason := outcome.ResultDesc
		out.FailureReason = &reason
	}
	code := outcome.ResultCode
	out.ResultCode = &code
	out.UpdatedAt = fixedNow.Add(time.Minute)
	return &out
}

func stkBody(checkoutID string, resultCode int, amount int64) []byte {
	if resultCode != 0 {
		return []byte(fmt.Sprintf(`{"Body":{"stkCallback":{"MerchantRequestID":"29115-34620561-1","CheckoutRequestID":%q,"ResultCode":%d,"ResultDesc":"Request cancelled by user"}}}`, checkoutID, resultCode))
	}
	return []byte(fmt.Sprintf(`{"Body":{"stkCallback":{"MerchantRequestID":"29115-34620561-1","CheckoutRequestID":%q,"ResultCode":0,"ResultDesc":"The service request is processed successfully.","CallbackMetadata":{"Item":[{"Name":"Amount","Value":%d},{"Name":"MpesaReceiptNumber","Value":"NLJ7RT61SV"},{"Name":"PhoneNumber","Value":254712345678}]}}}}`, checkoutID, amount))
}

// fakeLedger is an in-memory VoteRepo with the same compare-and-set and
// claim semantics as the Postgres repository
type fakeLedger struct {
	mu         sync.Mutex
	byLocal    map[uuid.UUID]*models.PaymentIntent
	tallies    map[string]int64
	increments int
}

func newFakeLedger(nominees ...string) *fakeLedger {
	l := &fakeLedger{byLocal: map[uuid.UUID]*models.PaymentIntent{}, tallies: map[string]int64{}}
	for _, n := range nominees {
		l.tallies[n] = 0
	}
	return l
}

func (l *fakeLedger) find(trackingID string) *models.PaymentIntent {
	for _, intent := range l.byLocal {
		if intent.Tracking() == trackingID {
			return intent
		}
	}
	return nil
}

func (l *fakeLedger) CreateIntent(ctx context.Context, intent *models.PaymentIntent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *intent
	l.byLocal[intent.LocalID] = &cp
	return nil
}

func (l *fakeLedger) AttachTrackingID(ctx context.Context, localID uuid.UUID, trackingID, merchantRequestID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	intent, ok := l.byLocal[localID]
	if !ok || intent.TrackingID != nil {
		return votes.ErrIntentNotFound
	}
	if l.find(trackingID) != nil {
		return votes.ErrDuplicateTrackingID
	}
	intent.TrackingID = &trackingID
	intent.MerchantRequestID = &merchantRequestID
	return nil
}

func (l *fakeLedger) RecordSubmitError(ctx context.Context, localID uuid.UUID, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if intent, ok := l.byLocal[localID]; ok {
		intent.SubmitError = &reason
	}
	return nil
}

func (l *fakeLedger) FindByTrackingID(ctx context.Context, trackingID string) (*models.PaymentIntent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	intent := l.find(trackingID)
	if intent == nil {
		return nil, votes.ErrIntentNotFound
	}
	cp := *intent
	return &cp, nil
}

func (l *fakeLedger) FindByMerchantRequestID(ctx context.Context, merchantRequestID string) (*models.PaymentIntent, error) {
	return nil, votes.ErrIntentNotFound
}

func (l *fakeLedger) TransitionTerminal(ctx context.Context, trackingID string, outcome models.TerminalOutcome) (*models.TransitionResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	intent := l.find(trackingID)
	if intent == nil {
		return nil, votes.ErrIntentNotFound
	}
	if intent.Status == models.IntentStatusPending {
		*intent = *resolvedCopy(intent, outcome)
		cp := *intent
		return &models.TransitionResult{Kind: models.TransitionApplied, Intent: &cp}, nil
	}
	cp := *intent
	if intent.Status == outcome.Status {
		return &models.TransitionResult{Kind: models.TransitionDuplicate, Intent: &cp}, nil
	}
	return &models.TransitionResult{Kind: models.TransitionConflict, Intent: &cp}, nil
}

func (l *fakeLedger) ApplyTally(ctx context.Context, localID uuid.UUID, targetKey string, delta int) (models.TallyPath, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	intent := l.byLocal[localID]
	if intent.TallyApplied {
		return models.TallyPathSkipped, nil
	}
	intent.TallyApplied = true
	l.tallies[targetKey] += int64(delta)
	l.increments++
	return models.TallyPathAtomic, nil
}

func (l *fakeLedger) ListUnappliedTallies(ctx context.Context, limit int) ([]*models.PaymentIntent, error) {
	return nil, nil
}

func (l *fakeLedger) GetTally(ctx context.Context, key string) (*models.TallyRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	count, ok := l.tallies[key]
	if !ok {
		return nil, votes.ErrTargetNotFound
	}
	return &models.TallyRecord{Key: key, CurrentCount: count}, nil
}

// memoryCache is a StatusCache keeping only settled views
type memoryCache struct {
	mu    sync.Mutex
	views map[string]*models.StatusView
}

func newMemoryCache() *memoryCache {
	return &memoryCache{views: map[string]*models.StatusView{}}
}

func (c *memoryCache) Get(ctx context.Context, trackingID string) (*models.StatusView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.views[trackingID], nil
}

func (c *memoryCache) Set(ctx context.Context, view *models.StatusView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if view.Settled() {
		c.views[view.TrackingID] = view
	}
	return nil
}
