package constants

// NATS Subjects
const (
	// Vote events
	SubjectVoteResolved = "vote.resolved"

	// Tally events
	SubjectTallyUnapplied = "tally.unapplied"
)

// NATS queue groups
const (
	QueueTallyReapply = "votes-tally-reapply"
)
