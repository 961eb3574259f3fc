package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/models"
	nrpkg "github.com/piresc/tallytrack/internal/pkg/newrelic"
	"github.com/piresc/tallytrack/internal/utils"
	"github.com/piresc/tallytrack/services/votes"
)

// VotesHandler handles vote submission, status and tally requests
type VotesHandler struct {
	voteUC votes.VoteUC
}

// NewVotesHandler creates a new votes HTTP handler
func NewVotesHandler(voteUC votes.VoteUC) *VotesHandler {
	return &VotesHandler{
		voteUC: voteUC,
	}
}

// SubmitVote validates a vote and sends the STK push to the voter's phone
func (h *VotesHandler) SubmitVote(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Votes.SubmitVote")

	var req models.VoteSubmitRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body")
	}
	req.RemoteIP = c.RealIP()

	result, err := h.voteUC.SubmitVote(c.Request().Context(), req)
	if err != nil {
		return errorResponse(c, txn, err)
	}

	nrpkg.AddTransactionAttribute(txn, "tracking_id", result.TrackingID)
	return utils.SuccessResponse(c, http.StatusCreated, "STK push sent. Check your phone to complete payment.", result)
}

// GetPaymentStatus returns the status of one payment
func (h *VotesHandler) GetPaymentStatus(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Votes.GetPaymentStatus")

	return h.paymentStatus(c, txn, c.Param("trackingId"))
}

// GetPaymentStatusByQuery serves ?checkoutRequestId= lookups
func (h *VotesHandler) GetPaymentStatusByQuery(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Votes.GetPaymentStatusByQuery")

	trackingID := c.QueryParam("checkoutRequestId")
	if trackingID == "" {
		return utils.BadRequestResponse(c, "checkoutRequestId is required")
	}
	return h.paymentStatus(c, txn, trackingID)
}

func (h *VotesHandler) paymentStatus(c echo.Context, txn *newrelic.Transaction, trackingID string) error {
	view, err := h.voteUC.GetStatus(c.Request().Context(), trackingID)
	if err != nil {
		return errorResponse(c, txn, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Payment status retrieved", view)
}

// GetTally returns the nominee's vote count
func (h *VotesHandler) GetTally(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Votes.GetTally")

	record, err := h.voteUC.GetTally(c.Request().Context(), c.Param("nomineeId"))
	if err != nil {
		return errorResponse(c, txn, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Vote count retrieved", record)
}

// ReapplyTallies sweeps completed payments whose tally was never applied
func (h *VotesHandler) ReapplyTallies(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Votes.ReapplyTallies")

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return utils.BadRequestResponse(c, "limit must be a non-negative integer")
		}
		limit = n
	}

	result, err := h.voteUC.SweepUnappliedTallies(c.Request().Context(), limit)
	if err != nil {
		return errorResponse(c, txn, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Tally sweep finished", result)
}

// ReapplyTally reapplies the tally of one completed payment
func (h *VotesHandler) ReapplyTally(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Votes.ReapplyTally")

	trackingID := c.Param("trackingId")
	path, err := h.voteUC.ReapplyTally(c.Request().Context(), trackingID)
	if err != nil {
		return errorResponse(c, txn, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Tally reapplied", map[string]string{
		"tracking_id": trackingID,
		"path":        string(path),
	})
}

// errorResponse maps the vote error taxonomy onto HTTP statuses
func errorResponse(c echo.Context, txn *newrelic.Transaction, err error) error {
	switch {
	case errors.Is(err, votes.ErrMissingTarget),
		errors.Is(err, votes.ErrInvalidUnitCount),
		errors.Is(err, votes.ErrInvalidPhone),
		errors.Is(err, votes.ErrInvalidTrackingID):
		return utils.BadRequestResponse(c, err.Error())
	case errors.Is(err, votes.ErrVerificationFailed):
		return utils.ForbiddenResponse(c, "Bot verification failed, please try again")
	case errors.Is(err, votes.ErrTargetNotFound):
		return utils.NotFoundResponse(c, "Nominee not found")
	case errors.Is(err, votes.ErrIntentNotFound):
		return utils.NotFoundResponse(c, "Payment not found")
	case errors.Is(err, votes.ErrNotCompleted):
		return utils.ConflictResponse(c, err.Error())
	case errors.Is(err, votes.ErrGatewayUnavailable):
		nrpkg.NoticeTransactionError(txn, err)
		return utils.ServiceUnavailableResponse(c, "Payment service unavailable, please retry")
	case errors.Is(err, votes.ErrCredentialRejected), errors.Is(err, votes.ErrPushRejected):
		nrpkg.NoticeTransactionError(txn, err)
		return utils.BadGatewayResponse(c, "Payment request rejected: "+votes.Describe(err))
	default:
		nrpkg.NoticeTransactionError(txn, err)
		logger.Error("Vote request failed",
			logger.String("path", c.Path()),
			logger.Err(err))
		return utils.InternalServerErrorResponse(c, "")
	}
}
