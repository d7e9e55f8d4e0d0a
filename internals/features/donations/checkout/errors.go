package checkout

import (
	"context"
	"errors"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindSession
	KindConfirm
	KindUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindSession:
		return "session"
	case KindConfirm:
		return "confirm"
	}
	return "unexpected"
}

// Error carries a message that is safe to show to the donor.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// ConfirmError builds the error a Widget returns when the provider rejects a payment.
func ConfirmError(message string) error {
	return &Error{Kind: KindConfirm, Message: message}
}

// SessionEndedError reports that the provider invalidated the session
// (expired, cancelled). The flow drops the session instead of offering
// a retry against it.
func SessionEndedError(message string) error {
	return &Error{Kind: KindSession, Message: message}
}

func sessionEnded(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == KindSession
}

var (
	ErrClosed         = errors.New("checkout is closed")
	ErrNotReady       = errors.New("payment form is not ready")
	ErrSubmitInFlight = errors.New("a payment is already being submitted")
	ErrUnknownPreset  = errors.New("amount is not one of the presets")
)

const (
	msgInvalidEmail     = "Please enter a valid email address"
	msgSessionFailed    = "We couldn't start the payment. Please try again."
	msgWidgetFailed     = "The payment form could not be loaded. Please try again."
	msgConfirmFailed    = "Your payment could not be completed. Please try again."
	msgNoRedirect       = "Payment finished without a confirmation page. Please contact us before trying again."
	msgTimeout          = "The payment service took too long to respond. Please try again."
	msgUnexpected       = "Something went wrong. Please try again."
	msgFixAmountFirst   = "Please fix the donation amount first"
	msgInvalidAmount    = "Please enter a valid amount"
	msgAmountOutOfRange = "Please enter an amount between %s and %s"
)

// userMessage picks the donor-facing text for err.
func userMessage(err error, fallback string) string {
	var ce *Error
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return msgTimeout
	}
	return fallback
}
