package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/storefront-bff/internal/application/otpflow"
	"github.com/storefront-bff/internal/domain"
	"github.com/storefront-bff/internal/pkg/countdown"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <email>",
	Short: "Run an interactive OTP verification",
	Long: `Requests (or resumes) a one-time passcode for <email> and reads codes
from stdin until one verifies. Type "resend" to request a fresh code.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		otpType, _ := cmd.Flags().GetString("type")
		auto, _ := cmd.Flags().GetBool("generate")
		poll, _ := cmd.Flags().GetDuration("poll")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return runVerify(ctx, os.Stdin, os.Stdout, otpflow.Options{
			Email:        strings.ToLower(strings.TrimSpace(args[0])),
			OTPType:      domain.OTPType(otpType),
			AutoGenerate: auto,
			PollInterval: poll,
		})
	},
}

func init() {
	verifyCmd.Flags().String("type", string(domain.OTPTypeEmailVerification), "OTP type (email_verification, login, password_reset)")
	verifyCmd.Flags().Bool("generate", true, "Issue a new code instead of resuming an outstanding one")
	verifyCmd.Flags().Duration("poll", 5*time.Second, "Status polling interval")
}

func runVerify(ctx context.Context, in io.Reader, out io.Writer, opts otpflow.Options) error {
	done := make(chan string, 1)
	p := &snapshotPrinter{w: out}
	opts.OnChange = p.print
	opts.OnComplete = func(requestID string) {
		select {
		case done <- requestID:
		default:
		}
	}

	flow := otpflow.New(client, opts)
	defer flow.Close()

	if err := flow.Start(ctx); err != nil {
		return fmt.Errorf("starting verification: %w", err)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- strings.TrimSpace(sc.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case requestID := <-done:
			if jsonOut {
				printJSON(map[string]string{"otp_request_id": requestID})
			} else {
				p.printf("verified, request id %s\n", requestID)
			}
			return nil
		case line, ok := <-lines:
			if !ok {
				if flow.Snapshot().State == otpflow.StateSuccess {
					lines = nil
					continue
				}
				return errors.New("input closed before the code was verified")
			}
			handleVerifyInput(ctx, flow, p, line)
		}
	}
}

func handleVerifyInput(ctx context.Context, flow *otpflow.Flow, p *snapshotPrinter, line string) {
	var err error
	switch strings.ToLower(line) {
	case "":
		return
	case "resend":
		err = flow.Resend(ctx)
	case "generate":
		err = flow.Generate(ctx)
	default:
		err = flow.Submit(ctx, line)
	}

	var fe *otpflow.Error
	switch {
	case err == nil, errors.As(err, &fe):
		// Request failures are already on screen via the snapshot.
	case errors.Is(err, otpflow.ErrResendLocked):
		p.printf("resend available in %s\n", countdown.Format(flow.Snapshot().ResendIn))
	default:
		p.printf("%v\n", err)
	}
}

// snapshotPrinter writes a line whenever the flow changes in a way worth
// reporting: a new state, a new error, or the countdown crossing a severity
// threshold. Plain ticks are not printed.
type snapshotPrinter struct {
	w io.Writer

	mu       sync.Mutex
	last     otpflow.Snapshot
	severity countdown.Severity
	started  bool
}

func (p *snapshotPrinter) print(s otpflow.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sev := countdown.SeverityFor(s.ExpiresIn)
	changed := !p.started ||
		s.State != p.last.State ||
		s.Error != p.last.Error ||
		s.CanResend != p.last.CanResend ||
		(s.State == otpflow.StateAwaitingInput && sev != p.severity)
	p.started = true
	p.last = s
	p.severity = sev
	if !changed || jsonOut {
		return
	}
	fmt.Fprintln(p.w, formatSnapshot(s))
}

func (p *snapshotPrinter) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format, args...)
}
