package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/piresc/tallytrack/internal/pkg/config"
	pkghttp "github.com/piresc/tallytrack/internal/pkg/http"
	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/pkg/models"
	"github.com/piresc/tallytrack/internal/pkg/poller"
	"github.com/piresc/tallytrack/internal/utils"
)

const requestTimeout = 20 * time.Second

func main() {
	if len(os.Args) < 2 {
		usage(os.Stdout)
		os.Exit(1)
	}

	configs := config.InitConfig("config/votes.env")

	zapLogger, err := logger.InitZapLoggerFromConfig(configs, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli := newCLI(configs, zapLogger, os.Stdout)
	os.Exit(cli.run(ctx, os.Args[1:]))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: votectl <command> [args]")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  submit <nomineeId> <phone> <votes> [captchaToken]  - Start a payment and wait for it")
	fmt.Fprintln(w, "  status <trackingId>                                 - Wait for a payment to resolve")
	fmt.Fprintln(w, "  reapply [limit]                                     - Reapply tallies for completed payments")
}

type cli struct {
	client *pkghttp.Client
	poller *poller.Poller
	out    io.Writer
	logger *logger.ZapLogger
}

func newCLI(configs *models.Config, l *logger.ZapLogger, out io.Writer) *cli {
	baseURL := configs.Poller.BaseURL
	return &cli{
		client: pkghttp.NewClient(baseURL, requestTimeout, pkghttp.WithAPIKey(configs.APIKey.Internal)),
		poller: poller.New(
			poller.NewHTTPFetcher(baseURL, requestTimeout),
			time.Duration(configs.Poller.IntervalSeconds)*time.Second,
			configs.Poller.MaxAttempts,
			l,
		),
		out:    out,
		logger: l,
	}
}

func (c *cli) run(ctx context.Context, args []string) int {
	switch args[0] {
	case "submit":
		if len(args) < 4 {
			fmt.Fprintln(c.out, "Usage: votectl submit <nomineeId> <phone> <votes> [captchaToken]")
			return 1
		}
		count, err := strconv.Atoi(args[3])
		if err != nil {
			fmt.Fprintln(c.out, "Invalid vote count:", args[3])
			return 1
		}
		req := models.VoteSubmitRequest{NomineeID: args[1], VoterPhone: args[2], VotesCount: count}
		if len(args) > 4 {
			req.CaptchaToken = args[4]
		}
		return c.submit(ctx, req)
	case "status":
		if len(args) < 2 {
			fmt.Fprintln(c.out, "Usage: votectl status <trackingId>")
			return 1
		}
		return c.await(ctx, args[1])
	case "reapply":
		limit := 0
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 {
				fmt.Fprintln(c.out, "Invalid limit:", args[1])
				return 1
			}
			limit = n
		}
		return c.reapply(ctx, limit)
	default:
		fmt.Fprintln(c.out, "Unknown command:", args[0])
		usage(c.out)
		return 1
	}
}

func (c *cli) submit(ctx context.Context, req models.VoteSubmitRequest) int {
	resp, err := c.client.PostJSON(ctx, "/api/submit-vote", req, nil)
	if err != nil {
		c.logger.Warn("Vote submission failed", logger.Err(err))
		fmt.Fprintln(c.out, "Could not start payment, retry.")
		return 1
	}

	var result models.VoteSubmitResult
	if err := utils.ParseJSONResponse(resp.Body, &result); err != nil {
		if resp.StatusCode >= 500 {
			fmt.Fprintln(c.out, "Could not start payment, retry.")
		} else {
			fmt.Fprintf(c.out, "Vote rejected: %v\n", err)
		}
		return 1
	}

	fmt.Fprintf(c.out, "STK push sent to %s for KES %d. Tracking id: %s\n",
		utils.MaskMSISDN(req.VoterPhone), result.AmountExpected, result.TrackingID)
	return c.await(ctx, result.TrackingID)
}

func (c *cli) await(ctx context.Context, trackingID string) int {
	result, err := c.poller.Await(ctx, trackingID)
	msg, code := describeOutcome(result, err)
	fmt.Fprintln(c.out, msg)
	return code
}

// describeOutcome turns a poll result into the message shown to the voter.
// A timeout is not a failure: the callback may still arrive.
func describeOutcome(result *poller.Result, err error) (string, int) {
	switch {
	case errors.Is(err, poller.ErrPollTimeout):
		return "Payment still pending, check your phone.", 2
	case err != nil:
		return "Stopped waiting; the payment may still complete.", 2
	}

	view := result.View
	if view.Status == models.IntentStatusCompleted {
		msg := "Payment completed."
		if view.ReceiptRef != nil {
			msg = fmt.Sprintf("Payment completed. Receipt %s.", *view.ReceiptRef)
		}
		if !view.TallyApplied {
			msg += " Your votes will be counted shortly."
		}
		return msg, 0
	}

	if view.FailureReason != nil && *view.FailureReason != "" {
		return "Payment failed: " + *view.FailureReason, 1
	}
	return "Payment failed.", 1
}

func (c *cli) reapply(ctx context.Context, limit int) int {
	endpoint := "/internal/tallies/reapply"
	if limit > 0 {
		endpoint += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}

	resp, err := c.client.PostJSON(ctx, endpoint, nil, nil)
	if err != nil {
		fmt.Fprintln(c.out, "Reapply request failed:", err)
		return 1
	}

	var result models.SweepResult
	if err := utils.ParseJSONResponse(resp.Body, &result); err != nil {
		fmt.Fprintln(c.out, "Reapply rejected:", err)
		return 1
	}

	fmt.Fprintf(c.out, "Scanned %d, applied %d, skipped %d, failed %d\n",
		result.Scanned, result.Applied, result.Skipped, result.Failed)
	for _, failure := range result.Failures {
		fmt.Fprintln(c.out, "  ", failure)
	}
	if result.Failed > 0 {
		return 1
	}
	return 0
}
