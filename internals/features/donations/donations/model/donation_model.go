package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* ===================== Constants ===================== */

const (
	DonationStatusPending  = "pending"
	DonationStatusPaid     = "paid"
	DonationStatusExpired  = "expired"
	DonationStatusCanceled = "canceled"
	DonationStatusFailed   = "failed"
)

const (
	GatewayStripe   = "stripe"
	GatewayMidtrans = "midtrans"
)

/* ===================== Model ===================== */

type Donation struct {
	DonationID uuid.UUID `gorm:"column:donation_id;type:uuid;default:gen_random_uuid();primaryKey" json:"donation_id"`

	DonationOrderID string `gorm:"column:donation_order_id;type:varchar(100);not null;unique" json:"donation_order_id"`

	// minor currency units
	DonationAmount   int64   `gorm:"column:donation_amount;not null;check:donation_amount > 0" json:"donation_amount"`
	DonationCurrency string  `gorm:"column:donation_currency;type:varchar(3);not null;default:'usd'" json:"donation_currency"`
	DonationEmail    *string `gorm:"column:donation_email;type:varchar(255)" json:"donation_email,omitempty"`

	DonationStatus string `gorm:"column:donation_status;type:varchar(20);default:'pending';index" json:"donation_status"`

	DonationPaymentGateway string  `gorm:"column:donation_payment_gateway;type:varchar(50);default:'stripe'" json:"donation_payment_gateway"`
	DonationSessionID      *string `gorm:"column:donation_session_id;type:varchar(255);uniqueIndex" json:"donation_session_id,omitempty"`
	DonationPaymentToken   *string `gorm:"column:donation_payment_token;type:text" json:"-"`
	DonationPaymentMethod  *string `gorm:"column:donation_payment_method;type:varchar(50)" json:"donation_payment_method,omitempty"`

	DonationPaidAt *time.Time `gorm:"column:donation_paid_at" json:"donation_paid_at,omitempty"`

	// last provider payload we acted on
	DonationMetadata datatypes.JSONMap `gorm:"column:donation_metadata;type:jsonb" json:"donation_metadata,omitempty"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"deleted_at,omitempty"`
}

func (Donation) TableName() string { return "donations" }

/* ===================== Helpers ===================== */

// IsTerminal is true once the donation can no longer change status.
func (d *Donation) IsTerminal() bool {
	switch d.DonationStatus {
	case DonationStatusPaid, DonationStatusExpired, DonationStatusCanceled, DonationStatusFailed:
		return true
	}
	return false
}

func (d *Donation) SessionID() string {
	if d.DonationSessionID == nil {
		return ""
	}
	return *d.DonationSessionID
}
