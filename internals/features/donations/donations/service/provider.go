package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"k9medics_backend/internals/configs"
	"k9medics_backend/internals/features/donations/donations/model"
)

var (
	// ErrProvider wraps any failure reported by the payment provider.
	ErrProvider = errors.New("payment provider error")
	// ErrSessionNotFound is returned by LookupSession for unknown ids.
	ErrSessionNotFound = errors.New("payment session not found")
)

// ProviderSession is what a provider hands back for a freshly created
// checkout. Token is the opaque value the payment widget is bound to.
type ProviderSession struct {
	Token       string
	SessionID   string
	RedirectURL string
}

// SessionStatus is a provider-side view of a checkout.
type SessionStatus struct {
	SessionID      string
	ProviderStatus string
	Status         string // internal donation status
	PaymentMethod  string
	AmountTotal    *int64 // minor units
	Currency       *string
	PaidAt         *time.Time
	Raw            map[string]interface{}
}

type Provider interface {
	Name() string
	CreateSession(ctx context.Context, d *model.Donation) (*ProviderSession, error)
	LookupSession(ctx context.Context, sessionID string) (*SessionStatus, error)
}

// NewProvider picks the provider configured by PAYMENT_PROVIDER.
func NewProvider(cfg configs.CheckoutConfig) (Provider, error) {
	switch cfg.Provider {
	case configs.ProviderStripe:
		if cfg.StripeSecretKey == "" {
			return nil, fmt.Errorf("stripe provider selected but STRIPE_SECRET_KEY is empty")
		}
		return NewStripeProvider(cfg), nil
	case configs.ProviderMidtrans:
		if cfg.MidtransServerKey == "" {
			return nil, fmt.Errorf("midtrans provider selected but MIDTRANS_SERVER_KEY is empty")
		}
		return NewMidtransProvider(cfg), nil
	}
	return nil, fmt.Errorf("unknown payment provider %q", cfg.Provider)
}

// appendSessionQuery adds session_id=<value> to a return URL. The value is
// not escaped so provider placeholders like {CHECKOUT_SESSION_ID} survive.
func appendSessionQuery(base, value string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "session_id=" + value
}
