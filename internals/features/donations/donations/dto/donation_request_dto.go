package dto

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"k9medics_backend/internals/features/donations/donations/model"
)

/* ===================== Checkout session ===================== */

// CreateSessionRequest is the body of POST /checkout/sessions.
// Amount is in minor currency units.
type CreateSessionRequest struct {
	Amount int64   `json:"amount" validate:"required,gt=0"`
	Email  *string `json:"email" validate:"omitempty,email,max=255"`
}

// Validate checks the tags and the configured [min,max] bounds.
func (r *CreateSessionRequest) Validate(v *validator.Validate, min, max int64) error {
	if v == nil {
		v = validator.New()
	}
	if err := v.Struct(r); err != nil {
		return describeValidation(err)
	}
	if r.Amount < min || r.Amount > max {
		return fmt.Errorf("amount must be between %d and %d", min, max)
	}
	return nil
}

func (r *CreateSessionRequest) NormalizedEmail() *string {
	if r.Email == nil {
		return nil
	}
	e := strings.ToLower(strings.TrimSpace(*r.Email))
	if e == "" {
		return nil
	}
	return &e
}

// CreateSessionResponse mirrors the public contract `{ clientSecret }`.
// SessionID and RedirectURL are extras for redirect-based clients.
type CreateSessionResponse struct {
	ClientSecret string `json:"clientSecret"`
	SessionID    string `json:"sessionId,omitempty"`
	RedirectURL  string `json:"redirectUrl,omitempty"`
}

// VerifySessionResponse mirrors `{ status, amount_total, currency }`.
type VerifySessionResponse struct {
	Status      string  `json:"status"`
	AmountTotal *int64  `json:"amount_total"`
	Currency    *string `json:"currency"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type CheckoutConfigResponse struct {
	Currency  string  `json:"currency"`
	MinAmount int64   `json:"min_amount"`
	MaxAmount int64   `json:"max_amount"`
	Presets   []int64 `json:"presets"`
}

/* ===================== Admin ===================== */

type DonationResponse struct {
	DonationID    string  `json:"donation_id"`
	OrderID       string  `json:"order_id"`
	Amount        int64   `json:"amount"`
	Currency      string  `json:"currency"`
	Email         *string `json:"email,omitempty"`
	Status        string  `json:"status"`
	Gateway       string  `json:"gateway"`
	SessionID     string  `json:"session_id,omitempty"`
	PaymentMethod *string `json:"payment_method,omitempty"`
	PaidAt        *string `json:"paid_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func FromModel(d model.Donation) DonationResponse {
	out := DonationResponse{
		DonationID:    d.DonationID.String(),
		OrderID:       d.DonationOrderID,
		Amount:        d.DonationAmount,
		Currency:      d.DonationCurrency,
		Email:         d.DonationEmail,
		Status:        d.DonationStatus,
		Gateway:       d.DonationPaymentGateway,
		SessionID:     d.SessionID(),
		PaymentMethod: d.DonationPaymentMethod,
		CreatedAt:     d.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if d.DonationPaidAt != nil {
		s := d.DonationPaidAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		out.PaidAt = &s
	}
	return out
}

func FromModels(list []model.Donation) []DonationResponse {
	out := make([]DonationResponse, 0, len(list))
	for _, d := range list {
		out = append(out, FromModel(d))
	}
	return out
}

/* ===================== Helpers ===================== */

func describeValidation(err error) error {
	ve, ok := err.(validator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return err
	}
	fe := ve[0]
	switch fe.Field() {
	case "Amount":
		return fmt.Errorf("amount must be a positive integer in minor units")
	case "Email":
		return fmt.Errorf("email is not a valid email address")
	}
	return fmt.Errorf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag())
}
