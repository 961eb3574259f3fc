package gateway

import (
	"context"

	"github.com/piresc/tallytrack/internal/pkg/constants"
	"github.com/piresc/tallytrack/internal/pkg/models"
)

// Publisher is the part of the NATS client the gateway needs
type Publisher interface {
	PublishJSON(subject string, v interface{}) error
}

// EventPublisher emits vote lifecycle events on NATS
type EventPublisher struct {
	nats Publisher
}

func NewEventPublisher(nats Publisher) *EventPublisher {
	return &EventPublisher{nats: nats}
}

// PublishVoteResolved announces a terminal transition
func (p *EventPublisher) PublishVoteResolved(ctx context.Context, event models.VoteResolvedEvent) error {
	return p.nats.PublishJSON(constants.SubjectVoteResolved, event)
}

// PublishTallyUnapplied asks a worker to retry a tally that failed after completion
func (p *EventPublisher) PublishTallyUnapplied(ctx context.Context, event models.TallyUnappliedEvent) error {
	return p.nats.PublishJSON(constants.SubjectTallyUnapplied, event)
}
