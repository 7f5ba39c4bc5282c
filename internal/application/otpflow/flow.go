// Package otpflow drives one OTP verification: issuing a code, keeping the
// server status fresh, collecting the digits and verifying them.
package otpflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/storefront-bff/internal/domain"
	"github.com/storefront-bff/internal/pkg/countdown"
)

// State is where the flow stands from the user's point of view.
type State string

const (
	StateIdle          State = "idle"
	StateGenerating    State = "generating"
	StateAwaitingInput State = "awaiting_input"
	StateVerifying     State = "verifying"
	StateSuccess       State = "success"
	StateFailed        State = "failed"
)

// User-facing messages for failures the server did not describe.
const (
	ErrNetworkMessage = "Network error. Please check your connection and try again."
	ErrExpiredMessage = "Your code has expired. Please request a new one."
)

var (
	ErrIncompleteCode = errors.New("code is incomplete")
	ErrResendLocked   = errors.New("resend is not available yet")
	ErrBusy           = errors.New("another request is in progress")
	ErrFinished       = errors.New("verification already finished")
)

// Error is a failed request with the message to show the user.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// API is the subset of the backend client the flow needs.
type API interface {
	OTPStatus(ctx context.Context, email string, otpType domain.OTPType) (*domain.OTPResponse, error)
	GenerateOTP(ctx context.Context, req domain.OTPRequest) (*domain.OTPResponse, error)
	ResendOTP(ctx context.Context, req domain.OTPRequest) (*domain.OTPResponse, error)
	VerifyOTP(ctx context.Context, req domain.OTPVerifyRequest) (*domain.OTPResponse, error)
}

type Options struct {
	Email        string
	OTPType      domain.OTPType
	AutoGenerate bool
	CodeLength   int           // default domain.OTPCodeLength
	PollInterval time.Duration // default 5s
	SuccessDelay time.Duration // default 1s
	TickInterval time.Duration // countdown tick, default 1s

	// OnComplete receives the otp_request_id SuccessDelay after a successful verify.
	OnComplete func(requestID string)
	// OnChange is called with a fresh snapshot after every visible change.
	OnChange func(Snapshot)
}

// Snapshot is a point-in-time copy of the flow for rendering.
type Snapshot struct {
	State     State
	Status    *domain.OTPStatus
	Error     string
	Code      string
	Focus     int
	ExpiresIn int // seconds on the code countdown
	ResendIn  int // seconds until resend unlocks
	CanResend bool
	RequestID string
}

type Flow struct {
	api  API
	opts Options

	ctx    context.Context // owns background polling; cancelled by Close
	cancel context.CancelFunc

	expiry *countdown.Timer
	resend *countdown.Timer

	mu          sync.Mutex
	state       State
	status      *domain.OTPStatus
	errMsg      string
	requestID   string
	input       *CodeInput
	resendReady bool
	expired     bool
	seq         uint64 // last issued request number
	applied     uint64 // request number of the last response applied
	inflight    bool   // a generate, resend or verify is outstanding
	polling     bool
	pollStop    chan struct{}
	complete    *time.Timer
	closed      bool
}

func New(api API, opts Options) *Flow {
	if opts.CodeLength <= 0 {
		opts.CodeLength = domain.OTPCodeLength
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.SuccessDelay <= 0 {
		opts.SuccessDelay = time.Second
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	f := &Flow{
		api:    api,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		state:  StateIdle,
		input:  NewCodeInput(opts.CodeLength),
	}
	f.expiry = countdown.New(0,
		countdown.WithInterval(opts.TickInterval),
		countdown.OnTick(func(int) { f.emit() }),
		countdown.OnDone(f.onExpired),
	)
	f.resend = countdown.New(0,
		countdown.WithInterval(opts.TickInterval),
		countdown.OnTick(func(int) { f.emit() }),
		countdown.OnDone(f.onResendUnlocked),
	)
	return f
}

// Start issues a code when AutoGenerate is set. Otherwise it asks the server
// whether a code is already outstanding and resumes it.
func (f *Flow) Start(ctx context.Context) error {
	if f.opts.AutoGenerate {
		return f.Generate(ctx)
	}
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrFinished
	}
	seq := f.nextSeqLocked()
	f.mu.Unlock()

	resp, err := f.api.OTPStatus(ctx, f.opts.Email, f.opts.OTPType)

	f.mu.Lock()
	if err != nil || f.staleLocked(seq) || resp.OTPStatus == nil {
		f.mu.Unlock()
		if err != nil {
			return wrapError(err)
		}
		return nil
	}
	f.applied = seq
	f.applyStatusLocked(resp.OTPStatus)
	if resp.OTPStatus.HasActiveOTP && f.state == StateIdle {
		f.state = StateAwaitingInput
		f.startPollingLocked()
	}
	f.mu.Unlock()
	f.emit()
	return nil
}

// Generate requests a new code. On failure the flow stays idle.
func (f *Flow) Generate(ctx context.Context) error {
	f.mu.Lock()
	if err := f.beginLocked(); err != nil {
		f.mu.Unlock()
		return err
	}
	prev := f.state
	f.state = StateGenerating
	f.errMsg = ""
	seq := f.nextSeqLocked()
	f.mu.Unlock()
	f.emit()

	resp, err := f.api.GenerateOTP(ctx, domain.OTPRequest{Email: f.opts.Email, OTPType: f.opts.OTPType})

	f.mu.Lock()
	f.inflight = false
	if f.closed {
		f.mu.Unlock()
		return ErrFinished
	}
	f.applied = max(f.applied, seq)
	if err != nil {
		fe := wrapError(err)
		f.errMsg = fe.Message
		if prev == StateGenerating || prev == StateSuccess {
			prev = StateIdle
		}
		f.state = prev
		f.mu.Unlock()
		f.emit()
		return fe
	}
	f.issuedLocked(resp.OTPStatus)
	f.mu.Unlock()
	f.emit()
	return nil
}

// Resend asks for a fresh code. It is refused while the server-supplied
// resend countdown is still running.
func (f *Flow) Resend(ctx context.Context) error {
	f.mu.Lock()
	if !f.resendReady {
		f.mu.Unlock()
		return ErrResendLocked
	}
	if err := f.beginLocked(); err != nil {
		f.mu.Unlock()
		return err
	}
	f.errMsg = ""
	seq := f.nextSeqLocked()
	f.mu.Unlock()
	f.emit()

	resp, err := f.api.ResendOTP(ctx, domain.OTPRequest{Email: f.opts.Email, OTPType: f.opts.OTPType})

	f.mu.Lock()
	f.inflight = false
	if f.closed {
		f.mu.Unlock()
		return ErrFinished
	}
	f.applied = max(f.applied, seq)
	if err != nil {
		fe := wrapError(err)
		f.errMsg = fe.Message
		if resp != nil && resp.OTPStatus != nil {
			f.applyStatusLocked(resp.OTPStatus)
		}
		f.mu.Unlock()
		f.emit()
		return fe
	}
	f.issuedLocked(resp.OTPStatus)
	f.mu.Unlock()
	f.emit()
	return nil
}

// Submit verifies code. An empty code submits whatever is in the input boxes.
func (f *Flow) Submit(ctx context.Context, code string) error {
	f.mu.Lock()
	if code == "" {
		code = f.input.Value()
	}
	code = NormalizeCode(code, f.opts.CodeLength)
	if len(code) != f.opts.CodeLength {
		f.mu.Unlock()
		return ErrIncompleteCode
	}
	if err := f.beginLocked(); err != nil {
		f.mu.Unlock()
		return err
	}
	f.input.Paste(code)
	f.state = StateVerifying
	f.errMsg = ""
	seq := f.nextSeqLocked()
	f.mu.Unlock()
	f.emit()

	resp, err := f.api.VerifyOTP(ctx, domain.OTPVerifyRequest{Email: f.opts.Email, Code: code, OTPType: f.opts.OTPType})

	f.mu.Lock()
	f.inflight = false
	if f.closed {
		f.mu.Unlock()
		return ErrFinished
	}
	f.applied = max(f.applied, seq)
	if err != nil {
		fe := wrapError(err)
		f.errMsg = fe.Message
		f.state = StateFailed
		f.input.Clear()
		if resp != nil && resp.OTPStatus != nil {
			f.applyStatusLocked(resp.OTPStatus)
			if !resp.OTPStatus.HasActiveOTP {
				f.stopPollingLocked()
			}
		}
		f.mu.Unlock()
		f.emit()
		return fe
	}
	f.state = StateSuccess
	f.requestID = resp.OTPRequestID
	f.stopPollingLocked()
	f.expiry.Stop()
	f.resend.Stop()
	if f.opts.OnComplete != nil {
		requestID := resp.OTPRequestID
		f.complete = time.AfterFunc(f.opts.SuccessDelay, func() {
			f.mu.Lock()
			closed := f.closed
			f.mu.Unlock()
			if !closed {
				f.opts.OnComplete(requestID)
			}
		})
	}
	f.mu.Unlock()
	f.emit()
	return nil
}

// Type, Paste and Backspace edit the code boxes. Editing after a failure
// clears the error and returns the flow to awaiting input.

func (f *Flow) Type(index int, s string) {
	f.edit(func(in *CodeInput) { in.Type(index, s) })
}

func (f *Flow) Paste(s string) {
	f.edit(func(in *CodeInput) { in.Paste(s) })
}

func (f *Flow) Backspace() {
	f.edit(func(in *CodeInput) { in.Backspace() })
}

func (f *Flow) edit(fn func(*CodeInput)) {
	f.mu.Lock()
	if f.state == StateVerifying || f.state == StateSuccess || f.closed {
		f.mu.Unlock()
		return
	}
	fn(f.input)
	if f.state == StateFailed {
		f.state = StateAwaitingInput
		f.errMsg = ""
	}
	f.mu.Unlock()
	f.emit()
}

// Close stops polling, countdowns and any pending completion callback.
func (f *Flow) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.stopPollingLocked()
	if f.complete != nil {
		f.complete.Stop()
	}
	f.mu.Unlock()

	f.expiry.Stop()
	f.resend.Stop()
	f.cancel()
}

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Flow) snapshotLocked() Snapshot {
	s := Snapshot{
		State:     f.state,
		Error:     f.errMsg,
		Code:      f.input.Value(),
		Focus:     f.input.Focus(),
		ExpiresIn: f.expiry.Remaining(),
		ResendIn:  f.resend.Remaining(),
		CanResend: f.resendReady,
		RequestID: f.requestID,
	}
	if f.status != nil {
		st := *f.status
		s.Status = &st
	}
	return s
}

func (f *Flow) emit() {
	if f.opts.OnChange == nil {
		return
	}
	f.opts.OnChange(f.Snapshot())
}

func (f *Flow) beginLocked() error {
	switch {
	case f.closed || f.state == StateSuccess:
		return ErrFinished
	case f.inflight:
		return ErrBusy
	}
	f.inflight = true
	return nil
}

func (f *Flow) nextSeqLocked() uint64 {
	f.seq++
	return f.seq
}

// staleLocked reports whether a response to request seq arrived after a
// newer response was already applied.
func (f *Flow) staleLocked(seq uint64) bool {
	return seq < f.applied
}

// issuedLocked moves the flow to awaiting input after a code was sent.
func (f *Flow) issuedLocked(st *domain.OTPStatus) {
	f.state = StateAwaitingInput
	f.errMsg = ""
	f.expired = false
	f.input.Clear()
	if st != nil {
		f.applyStatusLocked(st)
	}
	f.startPollingLocked()
}

// applyStatusLocked replaces the server status and re-arms both countdowns.
// Countdowns are only restarted with a positive value here: a zero value
// would fire their callbacks synchronously while f.mu is held.
func (f *Flow) applyStatusLocked(st *domain.OTPStatus) {
	cp := *st
	f.status = &cp

	if st.HasActiveOTP && st.TimeRemaining > 0 {
		f.expired = false
		f.expiry.Reset(st.TimeRemaining)
		f.expiry.Start()
	} else {
		f.expiry.Stop()
		f.expiry.Reset(0)
		if st.HasActiveOTP {
			f.expireLocked()
		}
	}

	// Without a running countdown only the server can unlock resend, e.g.
	// can_resend=false with no countdown means the resend limit is reached.
	f.resendReady = st.CanResend
	if !st.CanResend && st.ResendCountdown > 0 {
		f.resend.Reset(st.ResendCountdown)
		f.resend.Start()
	} else {
		f.resend.Stop()
		f.resend.Reset(0)
	}
}

func (f *Flow) onExpired() {
	f.mu.Lock()
	if f.closed || f.state == StateSuccess {
		f.mu.Unlock()
		return
	}
	f.expireLocked()
	f.mu.Unlock()
	f.emit()
}

// expireLocked clears the input and reports expiry without a server round-trip.
func (f *Flow) expireLocked() {
	if f.expired || (f.state != StateAwaitingInput && f.state != StateFailed) {
		return
	}
	f.expired = true
	f.input.Clear()
	f.errMsg = ErrExpiredMessage
	f.state = StateFailed
	f.stopPollingLocked()
}

func (f *Flow) onResendUnlocked() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.resendReady = true
	f.mu.Unlock()
	f.emit()
}

func (f *Flow) startPollingLocked() {
	if f.polling || f.closed {
		return
	}
	f.polling = true
	stop := make(chan struct{})
	f.pollStop = stop
	go f.pollLoop(stop)
}

func (f *Flow) stopPollingLocked() {
	if !f.polling {
		return
	}
	f.polling = false
	close(f.pollStop)
	f.pollStop = nil
}

func (f *Flow) pollLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(f.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-f.ctx.Done():
			return
		case <-ticker.C:
			f.poll()
		}
	}
}

// poll refreshes the server status. It is skipped while a mutation is in
// flight, and its answer is dropped if a newer response landed meanwhile.
func (f *Flow) poll() {
	f.mu.Lock()
	if f.closed || f.inflight || (f.state != StateAwaitingInput && f.state != StateFailed) {
		f.mu.Unlock()
		return
	}
	seq := f.nextSeqLocked()
	f.mu.Unlock()

	resp, err := f.api.OTPStatus(f.ctx, f.opts.Email, f.opts.OTPType)
	if err != nil {
		slog.Debug("otp status poll failed", "err", err)
		return
	}
	if resp == nil || resp.OTPStatus == nil {
		return
	}

	f.mu.Lock()
	if f.closed || f.inflight || f.staleLocked(seq) || (f.state != StateAwaitingInput && f.state != StateFailed) {
		f.mu.Unlock()
		slog.Debug("discarding stale otp status", "seq", seq)
		return
	}
	f.applied = seq
	f.applyStatusLocked(resp.OTPStatus)
	if !resp.OTPStatus.HasActiveOTP {
		f.stopPollingLocked()
	}
	f.mu.Unlock()
	f.emit()
}

// wrapError turns a client error into the message the user sees: the
// server's own text for business failures, a fixed one for anything else.
func wrapError(err error) *Error {
	var ue *domain.UpstreamError
	if errors.As(err, &ue) && ue.Message != "" {
		return &Error{Message: ue.Message, Err: err}
	}
	return &Error{Message: ErrNetworkMessage, Err: err}
}
