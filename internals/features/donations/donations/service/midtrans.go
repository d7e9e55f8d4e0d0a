package service

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	"k9medics_backend/internals/configs"
	"k9medics_backend/internals/features/donations/donations/model"
)

type MidtransProvider struct {
	returnURL string

	createTx func(req *snap.Request) (*snap.Response, *midtrans.Error)
	checkTx  func(orderID string) (*coreapi.TransactionStatusResponse, *midtrans.Error)
}

// Call once at bootstrap.
func NewMidtransProvider(cfg configs.CheckoutConfig) *MidtransProvider {
	env := midtrans.Sandbox
	if cfg.MidtransUseProd {
		env = midtrans.Production
	}

	var snapClient snap.Client
	snapClient.New(cfg.MidtransServerKey, env)
	var coreClient coreapi.Client
	coreClient.New(cfg.MidtransServerKey, env)

	return &MidtransProvider{
		returnURL: cfg.ReturnURL,
		createTx:  snapClient.CreateTransaction,
		checkTx:   coreClient.CheckTransaction,
	}
}

func (p *MidtransProvider) Name() string { return model.GatewayMidtrans }

// Midtrans takes gross_amount in whole currency units, donations are stored in minor units.
func (p *MidtransProvider) CreateSession(ctx context.Context, d *model.Donation) (*ProviderSession, error) {
	if d.DonationAmount%100 != 0 {
		return nil, fmt.Errorf("%w: midtrans requires whole currency amounts, got %d minor units", ErrProvider, d.DonationAmount)
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  d.DonationOrderID,
			GrossAmt: d.DonationAmount / 100,
		},
		Callbacks: &snap.Callbacks{
			Finish: appendSessionQuery(p.returnURL, d.DonationOrderID),
		},
	}
	if d.DonationEmail != nil {
		req.CustomerDetail = &midtrans.CustomerDetails{Email: *d.DonationEmail}
	}

	resp, mErr := p.createTx(req)
	if mErr != nil {
		return nil, fmt.Errorf("%w: %s", ErrProvider, mErr.Message)
	}

	return &ProviderSession{
		Token:       resp.Token,
		SessionID:   d.DonationOrderID,
		RedirectURL: resp.RedirectURL,
	}, nil
}

func (p *MidtransProvider) LookupSession(ctx context.Context, orderID string) (*SessionStatus, error) {
	resp, mErr := p.checkTx(orderID)
	if mErr != nil {
		if mErr.StatusCode == 404 {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, orderID)
		}
		return nil, fmt.Errorf("%w: %s", ErrProvider, mErr.Message)
	}

	txStatus := strings.ToLower(resp.TransactionStatus)
	st := &SessionStatus{
		SessionID:      orderID,
		ProviderStatus: txStatus,
		Status:         MapMidtransStatus(txStatus, strings.ToLower(resp.FraudStatus)),
		PaymentMethod:  resp.PaymentType,
		Raw: map[string]interface{}{
			"transaction_status": resp.TransactionStatus,
			"fraud_status":       resp.FraudStatus,
			"gross_amount":       resp.GrossAmount,
		},
	}
	if amt, ok := grossToMinor(resp.GrossAmount); ok {
		st.AmountTotal = &amt
	}
	if resp.Currency != "" {
		cur := strings.ToLower(resp.Currency)
		st.Currency = &cur
	}
	if st.Status == model.DonationStatusPaid {
		t := parseMidtransTime(resp.SettlementTime, resp.TransactionTime)
		st.PaidAt = &t
	}
	return st, nil
}

// grossToMinor converts Midtrans "50000.00" to minor units.
func grossToMinor(gross string) (int64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(gross), 64)
	if err != nil {
		return 0, false
	}
	return int64(f*100 + 0.5), true
}

func parseMidtransTime(candidates ...string) time.Time {
	const layout = "2006-01-02 15:04:05"
	for _, s := range candidates {
		if s == "" {
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Now()
}

// MidtransNotification is the HTTP notification Midtrans posts for a
// transaction. It arrives as JSON or as a form post.
type MidtransNotification struct {
	OrderID           string `json:"order_id" form:"order_id"`
	StatusCode        string `json:"status_code" form:"status_code"`
	GrossAmount       string `json:"gross_amount" form:"gross_amount"`
	SignatureKey      string `json:"signature_key" form:"signature_key"`
	TransactionStatus string `json:"transaction_status" form:"transaction_status"`
	FraudStatus       string `json:"fraud_status" form:"fraud_status"`
	PaymentType       string `json:"payment_type" form:"payment_type"`
	Currency          string `json:"currency" form:"currency"`
	TransactionTime   string `json:"transaction_time" form:"transaction_time"`
	SettlementTime    string `json:"settlement_time" form:"settlement_time"`
}

// VerifySignature checks sha512(order_id+status_code+gross_amount+server_key).
func (n *MidtransNotification) VerifySignature(serverKey string) bool {
	if n.SignatureKey == "" || serverKey == "" {
		return false
	}
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + serverKey))
	expected := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(n.SignatureKey))) == 1
}

func (n *MidtransNotification) SessionStatus() *SessionStatus {
	txStatus := strings.ToLower(n.TransactionStatus)
	st := &SessionStatus{
		SessionID:      n.OrderID,
		ProviderStatus: txStatus,
		Status:         MapMidtransStatus(txStatus, strings.ToLower(n.FraudStatus)),
		PaymentMethod:  n.PaymentType,
		Raw: map[string]interface{}{
			"transaction_status": n.TransactionStatus,
			"fraud_status":       n.FraudStatus,
			"status_code":        n.StatusCode,
			"gross_amount":       n.GrossAmount,
		},
	}
	if amt, ok := grossToMinor(n.GrossAmount); ok {
		st.AmountTotal = &amt
	}
	if n.Currency != "" {
		cur := strings.ToLower(n.Currency)
		st.Currency = &cur
	}
	if st.Status == model.DonationStatusPaid {
		t := parseMidtransTime(n.SettlementTime, n.TransactionTime)
		st.PaidAt = &t
	}
	return st
}
