package models

import (
	"time"

	"github.com/google/uuid"
)

// VoteResolvedEvent is published once an intent reaches a terminal state
type VoteResolvedEvent struct {
	TrackingID string       `json:"tracking_id"`
	Status     IntentStatus `json:"status"`
	TargetKey  string       `json:"target_key"`
	UnitCount  int          `json:"unit_count"`
	ResolvedAt time.Time    `json:"resolved_at"`
}

// TallyUnappliedEvent is published when a completed payment could not be counted
type TallyUnappliedEvent struct {
	TrackingID string    `json:"tracking_id"`
	LocalID    uuid.UUID `json:"local_id"`
	TargetKey  string    `json:"target_key"`
	UnitCount  int       `json:"unit_count"`
	Error      string    `json:"error"`
	OccurredAt time.Time `json:"occurred_at"`
}
