package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/stripe/stripe-go/v82"

	"k9medics_backend/internals/features/donations/donations/model"
)

func newDonation(amount int64) *model.Donation {
	email := "donor@example.com"
	return &model.Donation{
		DonationID:       uuid.New(),
		DonationOrderID:  "DONATION-test",
		DonationAmount:   amount,
		DonationCurrency: "usd",
		DonationEmail:    &email,
		DonationStatus:   model.DonationStatusPending,
	}
}

func TestMapStripeStatus(t *testing.T) {
	tests := []struct {
		status, paymentStatus, want string
	}{
		{"complete", "paid", model.DonationStatusPaid},
		{"complete", "no_payment_required", model.DonationStatusPaid},
		{"complete", "unpaid", model.DonationStatusPending},
		{"open", "unpaid", model.DonationStatusPending},
		{"expired", "unpaid", model.DonationStatusExpired},
		{"weird", "", ""},
	}
	for _, tt := range tests {
		if got := MapStripeStatus(tt.status, tt.paymentStatus); got != tt.want {
			t.Errorf("MapStripeStatus(%q, %q) = %q, want %q", tt.status, tt.paymentStatus, got, tt.want)
		}
	}
}

func TestMapMidtransStatus(t *testing.T) {
	tests := []struct {
		tx, fraud, want string
	}{
		{"settlement", "", model.DonationStatusPaid},
		{"capture", "accept", model.DonationStatusPaid},
		{"capture", "challenge", model.DonationStatusPending},
		{"pending", "", model.DonationStatusPending},
		{"expire", "", model.DonationStatusExpired},
		{"cancel", "", model.DonationStatusCanceled},
		{"deny", "", model.DonationStatusFailed},
		{"authorize", "", ""},
	}
	for _, tt := range tests {
		if got := MapMidtransStatus(tt.tx, tt.fraud); got != tt.want {
			t.Errorf("MapMidtransStatus(%q, %q) = %q, want %q", tt.tx, tt.fraud, got, tt.want)
		}
	}
}

func TestStatusUpdatesNeverLeavePaid(t *testing.T) {
	d := newDonation(5000)
	d.DonationStatus = model.DonationStatusPaid

	if got := statusUpdates(d, StatusUpdate{Status: model.DonationStatusExpired}); len(got) != 0 {
		t.Errorf("statusUpdates on paid donation = %v, want none", got)
	}
}

func TestStatusUpdatesPaidTransition(t *testing.T) {
	d := newDonation(5000)
	paidAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	got := statusUpdates(d, StatusUpdate{
		Status:        model.DonationStatusPaid,
		PaymentMethod: "card",
		PaidAt:        &paidAt,
		Metadata:      map[string]interface{}{"status": "complete"},
	})
	if got["donation_status"] != model.DonationStatusPaid {
		t.Errorf("donation_status = %v", got["donation_status"])
	}
	if got["donation_payment_method"] != "card" {
		t.Errorf("donation_payment_method = %v", got["donation_payment_method"])
	}
	if _, ok := got["donation_metadata"]; !ok {
		t.Error("expected metadata to be written")
	}
	if d.DonationPaidAt == nil || !d.DonationPaidAt.Equal(paidAt) {
		t.Errorf("DonationPaidAt = %v", d.DonationPaidAt)
	}

	// replaying the same update is a no-op
	if again := statusUpdates(d, StatusUpdate{Status: model.DonationStatusPaid, PaymentMethod: "card"}); len(again) != 0 {
		t.Errorf("replay updates = %v, want none", again)
	}
}

func TestAppendSessionQuery(t *testing.T) {
	if got := appendSessionQuery("https://k9.org/thanks", "{CHECKOUT_SESSION_ID}"); got != "https://k9.org/thanks?session_id={CHECKOUT_SESSION_ID}" {
		t.Errorf("got %q", got)
	}
	if got := appendSessionQuery("https://k9.org/thanks?lang=en", "abc"); got != "https://k9.org/thanks?lang=en&session_id=abc" {
		t.Errorf("got %q", got)
	}
}

/* ===================== Stripe ===================== */

func TestStripeCreateSessionEmbedded(t *testing.T) {
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")

	var captured *stripe.CheckoutSessionCreateParams
	p := &StripeProvider{
		uiMode:    StripeUIModeEmbedded,
		returnURL: "https://k9.org/thanks",
		newSession: func(gotCtx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error) {
			if gotCtx.Value(ctxKey{}) != "req-1" {
				t.Error("request context not passed to Stripe")
			}
			captured = params
			return &stripe.CheckoutSession{ID: "cs_test_1", ClientSecret: "cs_test_1_secret"}, nil
		},
	}

	got, err := p.CreateSession(ctx, newDonation(5000))
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if got.Token != "cs_test_1_secret" || got.SessionID != "cs_test_1" {
		t.Errorf("CreateSession() = %+v", got)
	}
	if *captured.UIMode != "embedded" {
		t.Errorf("UIMode = %q", *captured.UIMode)
	}
	if *captured.ReturnURL != "https://k9.org/thanks?session_id={CHECKOUT_SESSION_ID}" {
		t.Errorf("ReturnURL = %q", *captured.ReturnURL)
	}
	if *captured.LineItems[0].PriceData.UnitAmount != 5000 {
		t.Errorf("UnitAmount = %d", *captured.LineItems[0].PriceData.UnitAmount)
	}
	if *captured.CustomerEmail != "donor@example.com" {
		t.Errorf("CustomerEmail = %q", *captured.CustomerEmail)
	}
}

func TestStripeCreateSessionHostedUsesSessionIDAsToken(t *testing.T) {
	p := &StripeProvider{
		uiMode:    StripeUIModeHosted,
		returnURL: "https://k9.org/thanks",
		newSession: func(_ context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error) {
			if params.SuccessURL == nil || params.UIMode != nil {
				t.Errorf("hosted params = %+v", params)
			}
			return &stripe.CheckoutSession{ID: "cs_test_2", URL: "https://checkout.stripe.com/c/pay/cs_test_2"}, nil
		},
	}

	got, err := p.CreateSession(context.Background(), newDonation(2500))
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if got.Token != "cs_test_2" || got.RedirectURL == "" {
		t.Errorf("CreateSession() = %+v", got)
	}
}

func TestStripeCreateSessionError(t *testing.T) {
	p := &StripeProvider{
		newSession: func(context.Context, *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error) {
			return nil, &stripe.Error{Msg: "Invalid currency"}
		},
	}

	_, err := p.CreateSession(context.Background(), newDonation(2500))
	if !errors.Is(err, ErrProvider) || !strings.Contains(err.Error(), "Invalid currency") {
		t.Errorf("error = %v", err)
	}
}

func TestStripeLookupSession(t *testing.T) {
	p := &StripeProvider{
		retrieve: func(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
			return &stripe.CheckoutSession{
				ID:                 id,
				Status:             stripe.CheckoutSessionStatusComplete,
				PaymentStatus:      stripe.CheckoutSessionPaymentStatusPaid,
				AmountTotal:        5000,
				Currency:           stripe.CurrencyUSD,
				PaymentMethodTypes: []string{"card"},
			}, nil
		},
	}

	st, err := p.LookupSession(context.Background(), "cs_test_1")
	if err != nil {
		t.Fatalf("LookupSession() error = %v", err)
	}
	if st.ProviderStatus != "complete" || st.Status != model.DonationStatusPaid {
		t.Errorf("status = %q / %q", st.ProviderStatus, st.Status)
	}
	if st.AmountTotal == nil || *st.AmountTotal != 5000 || st.Currency == nil || *st.Currency != "usd" {
		t.Errorf("amount/currency = %v / %v", st.AmountTotal, st.Currency)
	}
	if st.PaidAt == nil || st.PaymentMethod != "card" {
		t.Errorf("PaidAt = %v, PaymentMethod = %q", st.PaidAt, st.PaymentMethod)
	}
}

func TestStripeLookupSessionNotFound(t *testing.T) {
	p := &StripeProvider{
		retrieve: func(context.Context, string) (*stripe.CheckoutSession, error) {
			return nil, &stripe.Error{HTTPStatusCode: 404, Msg: "No such checkout.session"}
		},
	}
	if _, err := p.LookupSession(context.Background(), "cs_missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound", err)
	}
}

/* ===================== Midtrans ===================== */

func TestMidtransCreateSession(t *testing.T) {
	var captured *snap.Request
	p := &MidtransProvider{
		returnURL: "https://k9.org/thanks",
		createTx: func(req *snap.Request) (*snap.Response, *midtrans.Error) {
			captured = req
			return &snap.Response{Token: "snap-token", RedirectURL: "https://app.midtrans.com/snap/v2/vtweb/snap-token"}, nil
		},
	}

	d := newDonation(5000000)
	got, err := p.CreateSession(context.Background(), d)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if got.Token != "snap-token" || got.SessionID != d.DonationOrderID {
		t.Errorf("CreateSession() = %+v", got)
	}
	if captured.TransactionDetails.GrossAmt != 50000 {
		t.Errorf("GrossAmt = %d, want 50000", captured.TransactionDetails.GrossAmt)
	}
	if captured.Callbacks.Finish != "https://k9.org/thanks?session_id=DONATION-test" {
		t.Errorf("Finish = %q", captured.Callbacks.Finish)
	}
}

func TestMidtransCreateSessionRejectsFractionalAmount(t *testing.T) {
	p := &MidtransProvider{
		createTx: func(*snap.Request) (*snap.Response, *midtrans.Error) {
			t.Fatal("provider must not be called")
			return nil, nil
		},
	}
	if _, err := p.CreateSession(context.Background(), newDonation(2550)); !errors.Is(err, ErrProvider) {
		t.Errorf("error = %v, want ErrProvider", err)
	}
}

func TestMidtransLookupSession(t *testing.T) {
	p := &MidtransProvider{
		checkTx: func(orderID string) (*coreapi.TransactionStatusResponse, *midtrans.Error) {
			return &coreapi.TransactionStatusResponse{
				OrderID:           orderID,
				TransactionStatus: "settlement",
				GrossAmount:       "50000.00",
				Currency:          "IDR",
				PaymentType:       "gopay",
				SettlementTime:    "2026-01-02 10:00:00",
			}, nil
		},
	}

	st, err := p.LookupSession(context.Background(), "DONATION-1")
	if err != nil {
		t.Fatalf("LookupSession() error = %v", err)
	}
	if st.Status != model.DonationStatusPaid || st.PaymentMethod != "gopay" {
		t.Errorf("status = %q method = %q", st.Status, st.PaymentMethod)
	}
	if *st.AmountTotal != 5000000 || *st.Currency != "idr" {
		t.Errorf("amount = %d currency = %s", *st.AmountTotal, *st.Currency)
	}
}

func TestMidtransLookupSessionError(t *testing.T) {
	p := &MidtransProvider{
		checkTx: func(string) (*coreapi.TransactionStatusResponse, *midtrans.Error) {
			return nil, &midtrans.Error{Message: "boom", StatusCode: 500}
		},
	}
	if _, err := p.LookupSession(context.Background(), "x"); !errors.Is(err, ErrProvider) {
		t.Errorf("error = %v, want ErrProvider", err)
	}
}

/* ===================== StatusSync ===================== */

type fakeRepository struct {
	Repository
	ApplyStatusFunc func(ctx context.Context, sessionID string, upd StatusUpdate) (*model.Donation, bool, error)
}

func (f *fakeRepository) ApplyStatus(ctx context.Context, sessionID string, upd StatusUpdate) (*model.Donation, bool, error) {
	return f.ApplyStatusFunc(ctx, sessionID, upd)
}

type chanNotifier chan *model.Donation

func (c chanNotifier) DonationPaid(_ context.Context, d *model.Donation) error {
	c <- d
	return nil
}

func TestStatusSyncNotifiesOnPaidTransition(t *testing.T) {
	notified := make(chanNotifier, 1)
	repo := &fakeRepository{
		ApplyStatusFunc: func(_ context.Context, sessionID string, upd StatusUpdate) (*model.Donation, bool, error) {
			d := newDonation(5000)
			d.DonationStatus = upd.Status
			return d, true, nil
		},
	}
	sync := NewStatusSync(repo, notified)

	_, changed, err := sync.Apply(context.Background(), &SessionStatus{SessionID: "cs_1", Status: model.DonationStatusPaid})
	if err != nil || !changed {
		t.Fatalf("Apply() changed = %v, err = %v", changed, err)
	}

	select {
	case d := <-notified:
		if d.DonationStatus != model.DonationStatusPaid {
			t.Errorf("notified status = %q", d.DonationStatus)
		}
	case <-time.After(time.Second):
		t.Fatal("notifier was not called")
	}
}

func TestStatusSyncSkipsUnknownStatus(t *testing.T) {
	repo := &fakeRepository{
		ApplyStatusFunc: func(context.Context, string, StatusUpdate) (*model.Donation, bool, error) {
			t.Fatal("repository must not be called")
			return nil, false, nil
		},
	}
	d, changed, err := NewStatusSync(repo, nil).Apply(context.Background(), &SessionStatus{SessionID: "cs_1"})
	if d != nil || changed || err != nil {
		t.Errorf("Apply() = %v, %v, %v", d, changed, err)
	}
}

func TestPaidMessage(t *testing.T) {
	d := newDonation(5000)
	d.DonationPaymentGateway = model.GatewayStripe
	msg := PaidMessage(d)
	for _, want := range []string{"$50.00", "DONATION-test", "stripe", "donor@example.com"} {
		if !strings.Contains(msg, want) {
			t.Errorf("PaidMessage() = %q, missing %q", msg, want)
		}
	}
}

/* ===================== Webhook payloads ===================== */

func TestStripeEventStatus(t *testing.T) {
	raw := []byte(`{"id":"cs_test_9","object":"checkout.session","status":"complete","payment_status":"unpaid","amount_total":2500,"currency":"usd"}`)

	tests := []struct {
		eventType string
		want      string
	}{
		{"checkout.session.completed", model.DonationStatusPending},
		{"checkout.session.async_payment_succeeded", model.DonationStatusPaid},
		{"checkout.session.async_payment_failed", model.DonationStatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			st, err := stripeEventStatus(stripe.Event{
				Type: stripe.EventType(tt.eventType),
				Data: &stripe.EventData{Raw: raw},
			})
			if err != nil {
				t.Fatalf("stripeEventStatus() error = %v", err)
			}
			if st.SessionID != "cs_test_9" || st.Status != tt.want {
				t.Errorf("got session %q status %q, want %q", st.SessionID, st.Status, tt.want)
			}
		})
	}
}

func TestStripeEventStatusIgnoresOtherEvents(t *testing.T) {
	st, err := stripeEventStatus(stripe.Event{Type: "payment_intent.created", Data: &stripe.EventData{}})
	if st != nil || err != nil {
		t.Errorf("got %v, %v; want nil, nil", st, err)
	}
}

func TestStripeWebhookStatusRejectsBadSignature(t *testing.T) {
	_, err := StripeWebhookStatus([]byte(`{}`), "t=1,v1=deadbeef", "whsec_test")
	if !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("error = %v, want ErrInvalidSignature", err)
	}
}

func TestMidtransNotification(t *testing.T) {
	n := &MidtransNotification{
		OrderID:           "DONATION-1",
		StatusCode:        "200",
		GrossAmount:       "50000.00",
		TransactionStatus: "capture",
		FraudStatus:       "accept",
		PaymentType:       "credit_card",
		Currency:          "IDR",
		SignatureKey:      midtransSignature("DONATION-1", "200", "50000.00", "server-key"),
	}

	if !n.VerifySignature("server-key") {
		t.Error("VerifySignature() = false for a valid signature")
	}
	if n.VerifySignature("other-key") {
		t.Error("VerifySignature() = true for the wrong key")
	}

	st := n.SessionStatus()
	if st.Status != model.DonationStatusPaid || st.SessionID != "DONATION-1" || *st.AmountTotal != 5000000 {
		t.Errorf("SessionStatus() = %+v", st)
	}
}

func TestGrossToMinor(t *testing.T) {
	tests := map[string]int64{"50000.00": 5000000, "10000": 1000000, " 1.5 ": 150}
	for in, want := range tests {
		if got, ok := grossToMinor(in); !ok || got != want {
			t.Errorf("grossToMinor(%q) = %d, %v; want %d", in, got, ok, want)
		}
	}
	if _, ok := grossToMinor("abc"); ok {
		t.Error("grossToMinor(abc) should fail")
	}
}

func TestStripeCreateSessionHonoursCancellation(t *testing.T) {
	p := &StripeProvider{
		newSession: func(ctx context.Context, _ *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.CreateSession(ctx, newDonation(2500))
	if !errors.Is(err, ErrProvider) || !strings.Contains(err.Error(), "context canceled") {
		t.Errorf("error = %v", err)
	}
}
