package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"k9medics_backend/internals/features/donations/checkout"
)

// terminalWidgets stands in for the browser payment form: it prints
// the provider's payment page and polls the backend until the session
// settles.
type terminalWidgets struct {
	client *checkout.Client
	out    io.Writer
	poll   time.Duration
}

func (f *terminalWidgets) Construct(s checkout.Session) (checkout.Widget, error) {
	if s.SessionID == "" {
		return nil, errors.New("session has no id to track")
	}
	poll := f.poll
	if poll <= 0 {
		poll = defaultPollInterval
	}
	return &terminalWidget{session: s, client: f.client, out: f.out, poll: poll}, nil
}

type terminalWidget struct {
	session checkout.Session
	client  *checkout.Client
	out     io.Writer
	poll    time.Duration
	closed  atomic.Bool
}

func (w *terminalWidget) Submit(ctx context.Context) error {
	if w.closed.Load() {
		return checkout.ConfirmError("The payment form was closed.")
	}
	if w.session.RedirectURL == "" {
		return checkout.ConfirmError("This payment session cannot be paid from the terminal.")
	}
	return nil
}

func (w *terminalWidget) Confirm(ctx context.Context, p checkout.ConfirmParams) (checkout.ConfirmResult, error) {
	fmt.Fprintf(w.out, "Open this link to pay (receipt goes to %s):\n  %s\n", p.Email, w.session.RedirectURL)

	t := time.NewTicker(w.poll)
	defer t.Stop()
	for {
		v, err := w.client.VerifySession(ctx, w.session.SessionID)
		if err != nil {
			log.Printf("[WARN] verify %s: %v", w.session.SessionID, err)
		} else {
			switch paymentOutcome(v.Status) {
			case outcomePaid:
				return checkout.ConfirmResult{
					SessionID:   w.session.SessionID,
					RedirectURL: checkout.ConfirmationURL(p.ReturnURL, w.session.SessionID),
				}, nil
			case outcomeFailed:
				return checkout.ConfirmResult{}, checkout.SessionEndedError(fmt.Sprintf("The payment was not completed (%s).", v.Status))
			}
		}

		select {
		case <-ctx.Done():
			return checkout.ConfirmResult{}, ctx.Err()
		case <-t.C:
		}
	}
}

func (w *terminalWidget) Teardown() { w.closed.Store(true) }

type outcome int

const (
	outcomePending outcome = iota
	outcomePaid
	outcomeFailed
)

// paymentOutcome reads provider status strings from both gateways.
func paymentOutcome(status string) outcome {
	switch strings.ToLower(status) {
	case "complete", "paid", "settlement", "capture":
		return outcomePaid
	case "expired", "expire", "cancel", "deny", "failure", "failed":
		return outcomeFailed
	}
	return outcomePending
}
