package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// IntentStatus is the lifecycle state of a payment intent
type IntentStatus string

const (
	IntentStatusPending   IntentStatus = "PENDING"
	IntentStatusCompleted IntentStatus = "COMPLETED"
	IntentStatusFailed    IntentStatus = "FAILED"
)

// IsTerminal reports whether no further transition is allowed
func (s IntentStatus) IsTerminal() bool {
	return s == IntentStatusCompleted || s == IntentStatusFailed
}

// PaymentIntent is one vote payment attempt as recorded in the votes table
type PaymentIntent struct {
	LocalID           uuid.UUID    `json:"local_id" db:"local_id"`
	TrackingID        *string      `json:"tracking_id,omitempty" db:"checkout_request_id"`
	MerchantRequestID *string      `json:"merchant_request_id,omitempty" db:"merchant_request_id"`
	PayerPhone        string       `json:"payer_phone" db:"voter_phone"`
	TargetKey         string       `json:"target_key" db:"nominee_id"`
	UnitCount         int          `json:"unit_count" db:"votes_count"`
	AmountExpected    int64        `json:"amount_expected" db:"amount_expected"`
	Status            IntentStatus `json:"status" db:"status"`
	AmountReceived    *int64       `json:"amount_received,omitempty" db:"amount_received"`
	ReceiptRef        *string      `json:"receipt_ref,omitempty" db:"mpesa_receipt_number"`
	FailureReason     *string      `json:"failure_reason,omitempty" db:"failure_reason"`
	ResultCode        *int         `json:"result_code,omitempty" db:"result_code"`
	SubmitError       *string      `json:"submit_error,omitempty" db:"submit_error"`
	TallyApplied      bool         `json:"tally_applied" db:"tally_applied"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at" db:"updated_at"`
}

// Tracking returns the gateway tracking id or an empty string before attachment
func (p *PaymentIntent) Tracking() string {
	if p == nil || p.TrackingID == nil {
		return ""
	}
	return *p.TrackingID
}

// TerminalOutcome is the classified result of a gateway callback
type TerminalOutcome struct {
	Status         IntentStatus
	ResultCode     int
	ResultDesc     string
	AmountReceived *int64
	ReceiptRef     *string
	RawCallback    json.RawMessage
}

// TransitionKind describes what TransitionTerminal did
type TransitionKind string

const (
	// TransitionApplied means the intent moved from PENDING to the outcome
	TransitionApplied TransitionKind = "applied"
	// TransitionDuplicate means the same terminal outcome was already recorded
	TransitionDuplicate TransitionKind = "duplicate"
	// TransitionConflict means a different terminal outcome was already recorded
	TransitionConflict TransitionKind = "conflict"
)

// TransitionResult carries the intent as it stands after a transition attempt
type TransitionResult struct {
	Kind   TransitionKind
	Intent *PaymentIntent
}

// TallyRecord is the per-nominee vote counter
type TallyRecord struct {
	Key          string    `json:"nominee_id" db:"id"`
	Name         string    `json:"name" db:"name"`
	CurrentCount int64     `json:"votes" db:"votes"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// TallyPath records which counter update path ran
type TallyPath string

const (
	TallyPathAtomic   TallyPath = "atomic"
	TallyPathFallback TallyPath = "fallback"
	TallyPathSkipped  TallyPath = "skipped"
)

// CallbackDisposition is the reconciler's verdict for one callback delivery
type CallbackDisposition string

const (
	CallbackCompleted           CallbackDisposition = "completed"
	CallbackFailed              CallbackDisposition = "failed"
	CallbackCompletedUnapplied  CallbackDisposition = "completed_tally_pending"
	CallbackDuplicate           CallbackDisposition = "duplicate"
	CallbackConflict            CallbackDisposition = "conflict"
	CallbackUnknownTransaction  CallbackDisposition = "unknown_transaction"
	CallbackIgnoredMalformed    CallbackDisposition = "ignored_malformed"
	CallbackIgnoredUnknownShape CallbackDisposition = "ignored_unknown_shape"
	CallbackLedgerError         CallbackDisposition = "ledger_error"
	CallbackShed                CallbackDisposition = "shed"
)

// VoteSubmitRequest is the vote submission body
type VoteSubmitRequest struct {
	NomineeID    string `json:"nominee_id"`
	VoterPhone   string `json:"voter_phone"`
	VotesCount   int    `json:"votes_count"`
	CaptchaToken string `json:"captchaToken"`
	RemoteIP     string `json:"-"`
}

// VoteSubmitResult is returned once the payer's phone has been prompted
type VoteSubmitResult struct {
	TrackingID        string       `json:"tracking_id"`
	MerchantRequestID string       `json:"merchant_request_id"`
	LocalID           uuid.UUID    `json:"local_id"`
	AmountExpected    int64        `json:"amount_expected"`
	Status            IntentStatus `json:"status"`
	StatusToken       string       `json:"status_token,omitempty"`
	CustomerMessage   string       `json:"customer_message,omitempty"`
}

// StatusView is the public projection of a payment intent
type StatusView struct {
	TrackingID     string       `json:"tracking_id"`
	Status         IntentStatus `json:"status"`
	AmountExpected int64        `json:"amount_expected"`
	AmountReceived *int64       `json:"amount_received,omitempty"`
	ReceiptRef     *string      `json:"receipt_ref,omitempty"`
	FailureReason  *string      `json:"failure_reason,omitempty"`
	TallyApplied   bool         `json:"tally_applied"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NewStatusView projects an intent for status queries
func NewStatusView(p *PaymentIntent) *StatusView {
	return &StatusView{
		TrackingID:     p.Tracking(),
		Status:         p.Status,
		AmountExpected: p.AmountExpected,
		AmountReceived: p.AmountReceived,
		ReceiptRef:     p.ReceiptRef,
		FailureReason:  p.FailureReason,
		TallyApplied:   p.TallyApplied,
		UpdatedAt:      p.UpdatedAt,
	}
}

// Settled reports whether the view can no longer change: FAILED, or
// COMPLETED with the tally applied
func (v *StatusView) Settled() bool {
	if v == nil {
		return false
	}
	return v.Status == IntentStatusFailed || (v.Status == IntentStatusCompleted && v.TallyApplied)
}

// SweepResult summarises an offline tally reapply run
type SweepResult struct {
	Scanned  int      `json:"scanned"`
	Applied  int      `json:"applied"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	Failures []string `json:"failures,omitempty"`
}
