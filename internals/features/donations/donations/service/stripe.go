package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"k9medics_backend/internals/configs"
	"k9medics_backend/internals/features/donations/donations/model"
)

const (
	StripeUIModeEmbedded = "embedded"
	StripeUIModeHosted   = "hosted"

	stripeProductName = "K9 Medic Unit Donation"
)

type StripeProvider struct {
	uiMode    string
	returnURL string

	newSession func(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error)
	retrieve   func(ctx context.Context, id string) (*stripe.CheckoutSession, error)
}

func NewStripeProvider(cfg configs.CheckoutConfig) *StripeProvider {
	sc := stripe.NewClient(cfg.StripeSecretKey)

	return &StripeProvider{
		uiMode:     cfg.StripeUIMode,
		returnURL:  cfg.ReturnURL,
		newSession: sc.V1CheckoutSessions.Create,
		retrieve: func(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
			return sc.V1CheckoutSessions.Retrieve(ctx, id, nil)
		},
	}
}

func (p *StripeProvider) Name() string { return model.GatewayStripe }

func (p *StripeProvider) CreateSession(ctx context.Context, d *model.Donation) (*ProviderSession, error) {
	params := &stripe.CheckoutSessionCreateParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SubmitType:        stripe.String(string(stripe.CheckoutSessionSubmitTypeDonate)),
		ClientReferenceID: stripe.String(d.DonationOrderID),
		Metadata: map[string]string{
			"order_id":    d.DonationOrderID,
			"donation_id": d.DonationID.String(),
		},
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency: stripe.String(d.DonationCurrency),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(stripeProductName),
					},
					UnitAmount: stripe.Int64(d.DonationAmount),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if d.DonationEmail != nil {
		params.CustomerEmail = stripe.String(*d.DonationEmail)
	}

	returnURL := appendSessionQuery(p.returnURL, "{CHECKOUT_SESSION_ID}")
	if p.uiMode == StripeUIModeHosted {
		params.SuccessURL = stripe.String(returnURL)
		params.CancelURL = stripe.String(p.returnURL)
	} else {
		params.UIMode = stripe.String(string(stripe.CheckoutSessionUIModeEmbedded))
		params.ReturnURL = stripe.String(returnURL)
	}

	s, err := p.newSession(ctx, params)
	if err != nil {
		return nil, convertStripeError(err)
	}

	// hosted sessions carry no client secret; the session id is the token
	token := s.ClientSecret
	if token == "" {
		token = s.ID
	}
	return &ProviderSession{
		Token:       token,
		SessionID:   s.ID,
		RedirectURL: s.URL,
	}, nil
}

func (p *StripeProvider) LookupSession(ctx context.Context, sessionID string) (*SessionStatus, error) {
	s, err := p.retrieve(ctx, sessionID)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == 404 {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, convertStripeError(err)
	}
	return stripeSessionStatus(s), nil
}

func stripeSessionStatus(s *stripe.CheckoutSession) *SessionStatus {
	st := &SessionStatus{
		SessionID:      s.ID,
		ProviderStatus: string(s.Status),
		Status:         MapStripeStatus(string(s.Status), string(s.PaymentStatus)),
		Raw: map[string]interface{}{
			"status":         string(s.Status),
			"payment_status": string(s.PaymentStatus),
		},
	}
	amount := s.AmountTotal
	st.AmountTotal = &amount
	if s.Currency != "" {
		cur := string(s.Currency)
		st.Currency = &cur
	}
	if st.Status == model.DonationStatusPaid {
		now := time.Now()
		st.PaidAt = &now
	}
	if len(s.PaymentMethodTypes) > 0 {
		st.PaymentMethod = s.PaymentMethodTypes[0]
	}
	return st
}

func convertStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return fmt.Errorf("%w: %s", ErrProvider, stripeErr.Msg)
	}
	return fmt.Errorf("%w: %v", ErrProvider, err)
}

var ErrInvalidSignature = errors.New("invalid webhook signature")

// StripeWebhookStatus verifies a Stripe webhook payload and returns the
// checkout session status it carries. Events that do not concern a
// checkout session return (nil, nil).
func StripeWebhookStatus(payload []byte, sigHeader, secret string) (*SessionStatus, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return stripeEventStatus(event)
}

func stripeEventStatus(event stripe.Event) (*SessionStatus, error) {
	switch event.Type {
	case "checkout.session.completed",
		"checkout.session.async_payment_succeeded",
		"checkout.session.async_payment_failed",
		"checkout.session.expired":
	default:
		return nil, nil
	}

	var s stripe.CheckoutSession
	if err := sonic.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}

	st := stripeSessionStatus(&s)
	switch event.Type {
	case "checkout.session.async_payment_succeeded":
		st.Status = model.DonationStatusPaid
		if st.PaidAt == nil {
			now := time.Now()
			st.PaidAt = &now
		}
	case "checkout.session.async_payment_failed":
		st.Status = model.DonationStatusFailed
		st.PaidAt = nil
	}
	st.Raw["event"] = string(event.Type)
	return st, nil
}
