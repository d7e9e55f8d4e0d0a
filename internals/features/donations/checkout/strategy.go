package checkout

import (
	"context"
	"net/url"
	"strings"
)

// Donor is the input collected next to the payment form.
type Donor struct {
	Email string
}

// Strategy confirms a payment through a bound widget and returns the
// URL of the confirmation view.
type Strategy interface {
	Name() string
	Confirm(ctx context.Context, w Widget, s Session, d Donor) (string, error)
}

// HostedStrategy relies on the provider to send the donor back to
// ReturnURL. A confirmation without a redirect is a failure.
type HostedStrategy struct {
	ReturnURL string
}

func (HostedStrategy) Name() string { return "hosted" }

func (h HostedStrategy) Confirm(ctx context.Context, w Widget, s Session, d Donor) (string, error) {
	if err := w.Submit(ctx); err != nil {
		return "", err
	}
	res, err := w.Confirm(ctx, ConfirmParams{Email: d.Email, ReturnURL: h.ReturnURL})
	if err != nil {
		return "", err
	}
	if res.RedirectURL == "" {
		return "", ConfirmError(msgNoRedirect)
	}
	return res.RedirectURL, nil
}

// EmbeddedStrategy confirms inline and builds the confirmation URL itself.
type EmbeddedStrategy struct {
	ReturnURL string
}

func (EmbeddedStrategy) Name() string { return "embedded" }

func (e EmbeddedStrategy) Confirm(ctx context.Context, w Widget, s Session, d Donor) (string, error) {
	if err := w.Submit(ctx); err != nil {
		return "", err
	}
	res, err := w.Confirm(ctx, ConfirmParams{Email: d.Email, ReturnURL: e.ReturnURL})
	if err != nil {
		return "", err
	}

	id := res.SessionID
	if id == "" {
		id = s.SessionID
	}
	if id == "" {
		id = s.Token
	}
	return ConfirmationURL(e.ReturnURL, id), nil
}

// ConfirmationURL appends the escaped session id to the confirmation page URL.
func ConfirmationURL(base, id string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "session_id=" + url.QueryEscape(id)
}
