package gateway

import "github.com/piresc/tallytrack/services/votes"

// VoteGW joins the Daraja, Turnstile and NATS clients behind votes.VoteGW
type VoteGW struct {
	*DarajaClient
	*TurnstileClient
	*EventPublisher
}

func NewVoteGW(daraja *DarajaClient, turnstile *TurnstileClient, events *EventPublisher) *VoteGW {
	return &VoteGW{
		DarajaClient:    daraja,
		TurnstileClient: turnstile,
		EventPublisher:  events,
	}
}

var _ votes.VoteGW = (*VoteGW)(nil)
