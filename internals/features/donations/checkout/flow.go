package checkout

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

type Navigator interface {
	Navigate(url string)
}

type NavigatorFunc func(url string)

func (f NavigatorFunc) Navigate(url string) { f(url) }

type Options struct {
	Amounts   AmountConfig
	Sessions  SessionCreator
	Widgets   WidgetFactory
	Strategy  Strategy
	Navigator Navigator

	SessionTimeout time.Duration // default 15s
	ConfirmTimeout time.Duration // default 2m
}

// Snapshot is a consistent copy of the flow state.
type Snapshot struct {
	Open       bool
	State      State
	Generation uint64

	Amount      int64
	Currency    string
	Preset      int64
	AmountInput string
	AmountError string

	Email      string
	EmailError string

	Error       string // session or confirm failure
	Token       string // token of the mounted widget
	RedirectURL string
}

type Flow struct {
	opts     Options
	validate *validator.Validate

	mu       sync.Mutex
	open     bool
	state    State
	gen      uint64
	selector *AmountSelector
	binder   *Binder
	session  *Session
	email    string
	emailErr string
	errMsg   string
	redirect string
	cancel   context.CancelFunc

	notifyMu  sync.Mutex
	listeners []func(Snapshot)

	wg sync.WaitGroup
}

func NewFlow(opts Options) *Flow {
	if opts.SessionTimeout <= 0 {
		opts.SessionTimeout = 15 * time.Second
	}
	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = 2 * time.Minute
	}
	return &Flow{
		opts:     opts,
		validate: validator.New(),
		selector: NewAmountSelector(opts.Amounts),
		binder:   NewBinder(opts.Widgets),
	}
}

// OnChange registers l to receive a snapshot after every transition.
// Listeners run synchronously, in order, and must not call back into
// the Flow.
func (f *Flow) OnChange(l func(Snapshot)) {
	f.notifyMu.Lock()
	f.listeners = append(f.listeners, l)
	f.notifyMu.Unlock()
}

// Open starts a fresh checkout in the idle state.
func (f *Flow) Open() {
	f.mu.Lock()
	f.resetLocked()
	f.open = true
	f.publishLocked()
}

// Close cancels everything in flight and forgets the amount, the
// session and the donor input.
func (f *Flow) Close() {
	f.mu.Lock()
	f.resetLocked()
	f.open = false
	f.publishLocked()
}

func (f *Flow) resetLocked() {
	f.gen++
	f.cancelLocked()
	f.binder.Unbind()
	f.selector.Reset()
	f.session = nil
	f.email = ""
	f.emailErr = ""
	f.errMsg = ""
	f.redirect = ""
	f.state = StateIdle
}

func (f *Flow) SelectPreset(amount int64) error {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return ErrClosed
	}
	changed, err := f.selector.SelectPreset(amount)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	if changed {
		f.commitLocked()
	}
	f.publishLocked()
	return nil
}

// EnterAmount takes free-form major-unit input. Invalid input is
// reported through Snapshot.AmountError, not as an error.
func (f *Flow) EnterAmount(raw string) error {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.selector.Enter(raw) {
		f.commitLocked()
	}
	f.publishLocked()
	return nil
}

func (f *Flow) SetEmail(email string) error {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return ErrClosed
	}
	f.email = strings.TrimSpace(email)
	f.emailErr = ""
	f.publishLocked()
	return nil
}

// commitLocked throws away the current session and starts a new one for
// the selector's amount.
func (f *Flow) commitLocked() {
	f.gen++
	f.cancelLocked()
	f.binder.Unbind()
	f.session = nil
	f.errMsg = ""
	f.redirect = ""
	f.state = StateCreatingSession

	ctx, cancel := context.WithTimeout(context.Background(), f.opts.SessionTimeout)
	f.cancel = cancel
	gen, amount := f.gen, f.selector.Amount()

	f.wg.Add(1)
	go f.createSession(ctx, cancel, gen, amount)
}

func (f *Flow) createSession(ctx context.Context, cancel context.CancelFunc, gen uint64, amount int64) {
	defer f.wg.Done()
	defer cancel()

	s, err := f.callCreateSession(ctx, amount)

	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		return
	}
	f.cancel = nil

	if err != nil {
		log.Printf("[WARN] checkout: session for %d failed: %v", amount, err)
		f.state = StateSessionError
		f.errMsg = userMessage(err, msgSessionFailed)
		f.publishLocked()
		return
	}

	s.Amount = amount
	if _, err := f.binder.Bind(s); err != nil {
		log.Printf("[ERROR] checkout: widget for session %s: %v", s.SessionID, err)
		f.state = StateSessionError
		f.errMsg = userMessage(err, msgWidgetFailed)
		f.publishLocked()
		return
	}
	f.session = &s
	f.state = StateFormReady
	f.publishLocked()
}

func (f *Flow) callCreateSession(ctx context.Context, amount int64) (s Session, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] checkout: session creator panicked: %v", r)
			err = &Error{Kind: KindUnexpected, Message: msgUnexpected, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return f.opts.Sessions.CreateSession(ctx, amount)
}

// Submit validates the donor input and confirms the payment. It returns
// a *Error of KindValidation when local checks fail; the confirmation
// itself completes asynchronously.
func (f *Flow) Submit() error {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return ErrClosed
	}
	switch f.state {
	case StateFormReady, StateSubmitError:
	case StateSubmitting:
		f.mu.Unlock()
		return ErrSubmitInFlight
	default:
		f.mu.Unlock()
		return ErrNotReady
	}

	if f.selector.FieldError() != "" {
		f.publishLocked()
		return &Error{Kind: KindValidation, Message: msgFixAmountFirst}
	}
	if err := f.validate.Var(f.email, "required,email"); err != nil {
		f.emailErr = msgInvalidEmail
		f.publishLocked()
		return &Error{Kind: KindValidation, Message: msgInvalidEmail}
	}

	f.emailErr = ""
	f.errMsg = ""
	f.state = StateSubmitting

	ctx, cancel := context.WithTimeout(context.Background(), f.opts.ConfirmTimeout)
	f.cancel = cancel
	gen, w, s, d := f.gen, f.binder.Widget(), *f.session, Donor{Email: f.email}

	f.wg.Add(1)
	f.publishLocked()

	go f.confirm(ctx, cancel, gen, w, s, d)
	return nil
}

func (f *Flow) confirm(ctx context.Context, cancel context.CancelFunc, gen uint64, w Widget, s Session, d Donor) {
	defer f.wg.Done()
	defer cancel()

	target, err := f.callConfirm(ctx, w, s, d)

	f.mu.Lock()
	if gen != f.gen || f.state != StateSubmitting {
		f.mu.Unlock()
		return
	}
	f.cancel = nil

	if err != nil && sessionEnded(err) {
		log.Printf("[WARN] checkout: session %s ended during confirm: %v", s.SessionID, err)
		f.binder.Unbind()
		f.session = nil
		f.state = StateSessionError
		f.errMsg = userMessage(err, msgSessionFailed)
		f.publishLocked()
		return
	}
	if err != nil {
		log.Printf("[WARN] checkout: confirm for session %s failed: %v", s.SessionID, err)
		f.state = StateSubmitError
		f.errMsg = userMessage(err, msgConfirmFailed)
		f.publishLocked()
		return
	}

	// the session is spent
	f.gen++
	f.binder.Unbind()
	f.session = nil
	f.state = StateSuccess
	f.redirect = target
	f.publishLocked()

	if f.opts.Navigator != nil {
		f.opts.Navigator.Navigate(target)
	}
}

func (f *Flow) callConfirm(ctx context.Context, w Widget, s Session, d Donor) (target string, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] checkout: confirmation panicked: %v", r)
			err = &Error{Kind: KindUnexpected, Message: msgUnexpected, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return f.opts.Strategy.Confirm(ctx, w, s, d)
}

func (f *Flow) cancelLocked() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

// publishLocked releases f.mu and hands the snapshot to listeners.
// notifyMu is taken before f.mu is released so listeners see
// snapshots in the order they were taken.
func (f *Flow) publishLocked() {
	snap := f.snapshotLocked()
	f.notifyMu.Lock()
	f.mu.Unlock()
	defer f.notifyMu.Unlock()
	for _, l := range f.listeners {
		l(snap)
	}
}

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Flow) snapshotLocked() Snapshot {
	return Snapshot{
		Open:        f.open,
		State:       f.state,
		Generation:  f.gen,
		Amount:      f.selector.Amount(),
		Currency:    f.opts.Amounts.Currency,
		Preset:      f.selector.Preset(),
		AmountInput: f.selector.Input(),
		AmountError: f.selector.FieldError(),
		Email:       f.email,
		EmailError:  f.emailErr,
		Error:       f.errMsg,
		Token:       f.binder.Token(),
		RedirectURL: f.redirect,
	}
}

// Wait blocks until every request started so far has resolved.
func (f *Flow) Wait() {
	f.wg.Wait()
}
