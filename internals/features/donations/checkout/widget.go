package checkout

import "context"

// ConfirmParams is what the donor hands the provider at confirmation.
type ConfirmParams struct {
	Email     string
	ReturnURL string
}

// ConfirmResult is the provider's verdict. Redirect-based widgets fill
// RedirectURL; embedded ones report the session they confirmed.
type ConfirmResult struct {
	RedirectURL string
	SessionID   string
}

// Widget is a payment form bound to one session for its whole life.
type Widget interface {
	// Submit runs the widget's own field validation.
	Submit(ctx context.Context) error
	// Confirm returns a ConfirmError for a rejected payment the donor may
	// retry, or a SessionEndedError when the session can no longer be paid.
	Confirm(ctx context.Context, p ConfirmParams) (ConfirmResult, error)
	// Teardown may be called from another goroutine while Submit or
	// Confirm is still running; their ctx is cancelled first.
	Teardown()
}

type WidgetFactory interface {
	Construct(s Session) (Widget, error)
}

type WidgetFactoryFunc func(s Session) (Widget, error)

func (f WidgetFactoryFunc) Construct(s Session) (Widget, error) { return f(s) }

// Binder owns the live widget. A new token always means a new widget;
// the old one is torn down first.
type Binder struct {
	factory WidgetFactory
	token   string
	widget  Widget
}

func NewBinder(f WidgetFactory) *Binder {
	return &Binder{factory: f}
}

func (b *Binder) Bind(s Session) (Widget, error) {
	if b.widget != nil && b.token == s.Token {
		return b.widget, nil
	}
	b.Unbind()

	w, err := b.factory.Construct(s)
	if err != nil {
		return nil, err
	}
	b.widget = w
	b.token = s.Token
	return w, nil
}

func (b *Binder) Unbind() {
	if b.widget != nil {
		b.widget.Teardown()
	}
	b.widget = nil
	b.token = ""
}

func (b *Binder) Widget() Widget { return b.widget }
func (b *Binder) Token() string  { return b.token }
