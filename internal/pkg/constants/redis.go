package constants

// Redis key formats
const (
	// Gateway
	KeyDarajaToken = "daraja:token:%s" // Format: daraja:token:{short_code}

	// Votes
	KeyVoteStatus = "vote:status:%s" // Format: vote:status:{tracking_id}

	// Rate Limiting
	KeyRateLimit = "rate:limit:%s" // Format: rate:limit:{resource}
)
