package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/models"
	"github.com/piresc/tallytrack/internal/pkg/retry"
	"github.com/piresc/tallytrack/services/votes"
	"github.com/piresc/tallytrack/services/votes/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHub struct {
	subscribers map[string]int
	notified    []*models.StatusView
}

func (f *fakeHub) Notify(view *models.StatusView) int {
	f.notified = append(f.notified, view)
	return f.subscribers[view.TrackingID]
}

func (f *fakeHub) SubscriberCount(trackingID string) int {
	return f.subscribers[trackingID]
}

func newTestHandler(t *testing.T, hub Notifier) (*VotesHandler, *mocks.MockVoteUC) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockVoteUC := mocks.NewMockVoteUC(ctrl)

	h := NewVotesHandler(mockVoteUC, nil, hub, nil, logger.NewNopLogger())
	cfg := retry.DefaultConfig()
	cfg.IsRetryable = isReapplyRetryable
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = time.Millisecond
	h.retrier = retry.New(cfg, logger.NewNopLogger())
	return h, mockVoteUC
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestProcessTallyUnapplied_RetriesTransientFailure(t *testing.T) {
	// Arrange
	h, mockVoteUC := newTestHandler(t, nil)
	data := mustJSON(t, models.TallyUnappliedEvent{TrackingID: "ws_CO_1", TargetKey: "nom-1", UnitCount: 2})

	gomock.InOrder(
		mockVoteUC.EXPECT().ReapplyTally(gomock.Any(), "ws_CO_1").Return(models.TallyPath(""), errors.New("connection reset")),
		mockVoteUC.EXPECT().ReapplyTally(gomock.Any(), "ws_CO_1").Return(models.TallyPathAtomic, nil),
	)

	// Act
	err := h.processTallyUnapplied(context.Background(), data)

	// Assert
	assert.NoError(t, err)
}

func TestProcessTallyUnapplied_PermanentFailureNotRetried(t *testing.T) {
	h, mockVoteUC := newTestHandler(t, nil)
	data := mustJSON(t, models.TallyUnappliedEvent{TrackingID: "ws_CO_1"})

	mockVoteUC.EXPECT().ReapplyTally(gomock.Any(), "ws_CO_1").Return(models.TallyPath(""), votes.ErrTargetNotFound).Times(1)

	err := h.processTallyUnapplied(context.Background(), data)

	assert.ErrorIs(t, err, votes.ErrTargetNotFound)
}

func TestProcessTallyUnapplied_BadPayload(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	assert.Error(t, h.processTallyUnapplied(context.Background(), []byte("not json")))
	assert.Error(t, h.processTallyUnapplied(context.Background(), []byte(`{"unit_count":1}`)))
}

func TestProcessVoteResolved(t *testing.T) {
	t.Run("no subscribers skips the lookup", func(t *testing.T) {
		hub := &fakeHub{subscribers: map[string]int{}}
		h, _ := newTestHandler(t, hub)
		data := mustJSON(t, models.VoteResolvedEvent{TrackingID: "ws_CO_1", Status: models.IntentStatusCompleted})

		err := h.processVoteResolved(context.Background(), data)

		assert.NoError(t, err)
		assert.Empty(t, hub.notified)
	})

	t.Run("pushes the fresh status", func(t *testing.T) {
		hub := &fakeHub{subscribers: map[string]int{"ws_CO_1": 2}}
		h, mockVoteUC := newTestHandler(t, hub)
		data := mustJSON(t, models.VoteResolvedEvent{TrackingID: "ws_CO_1", Status: models.IntentStatusCompleted})

		view := &models.StatusView{TrackingID: "ws_CO_1", Status: models.IntentStatusCompleted, TallyApplied: true}
		mockVoteUC.EXPECT().GetStatus(gomock.Any(), "ws_CO_1").Return(view, nil)

		err := h.processVoteResolved(context.Background(), data)

		assert.NoError(t, err)
		require.Len(t, hub.notified, 1)
		assert.Equal(t, view, hub.notified[0])
	})

	t.Run("status lookup failure", func(t *testing.T) {
		hub := &fakeHub{subscribers: map[string]int{"ws_CO_1": 1}}
		h, mockVoteUC := newTestHandler(t, hub)
		data := mustJSON(t, models.VoteResolvedEvent{TrackingID: "ws_CO_1"})

		mockVoteUC.EXPECT().GetStatus(gomock.Any(), "ws_CO_1").Return(nil, votes.ErrIntentNotFound)

		err := h.processVoteResolved(context.Background(), data)

		assert.ErrorIs(t, err, votes.ErrIntentNotFound)
		assert.Empty(t, hub.notified)
	})
}

func TestIsReapplyRetryable(t *testing.T) {
	assert.True(t, isReapplyRetryable(errors.New("timeout")))
	assert.False(t, isReapplyRetryable(votes.ErrNotCompleted))
	assert.False(t, isReapplyRetryable(votes.ErrIntentNotFound))
	assert.False(t, isReapplyRetryable(context.Canceled))
}
