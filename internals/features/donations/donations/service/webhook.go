package service

import (
	"context"
	"log"
	"time"

	"k9medics_backend/internals/features/donations/donations/model"
)

/* ===================== Status mapping ===================== */

// MapStripeStatus maps a Checkout Session status/payment_status pair to the internal status.
func MapStripeStatus(status, paymentStatus string) string {
	switch status {
	case "complete":
		switch paymentStatus {
		case "paid", "no_payment_required":
			return model.DonationStatusPaid
		}
		// async payment methods settle later
		return model.DonationStatusPending
	case "expired":
		return model.DonationStatusExpired
	case "open":
		return model.DonationStatusPending
	}
	return ""
}

// MapMidtransStatus maps transaction_status/fraud_status to the internal status.
func MapMidtransStatus(txStatus, fraudStatus string) string {
	switch txStatus {
	case "capture", "settlement", "success":
		if txStatus == "capture" && fraudStatus == "challenge" {
			return model.DonationStatusPending
		}
		return model.DonationStatusPaid
	case "pending":
		return model.DonationStatusPending
	case "expire", "expired":
		return model.DonationStatusExpired
	case "cancel", "canceled", "refund", "partial_refund":
		return model.DonationStatusCanceled
	case "deny", "failure", "failed":
		return model.DonationStatusFailed
	}
	return ""
}

/* ===================== Status sync ===================== */

// StatusSync applies provider status changes to stored donations and
// fires the paid notification exactly once per transition.
type StatusSync struct {
	Repo     Repository
	Notifier Notifier
}

func NewStatusSync(repo Repository, notifier Notifier) *StatusSync {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &StatusSync{Repo: repo, Notifier: notifier}
}

// Apply stores st against the donation owning st.SessionID. Unknown
// statuses are ignored and return (nil, false, nil).
func (s *StatusSync) Apply(ctx context.Context, st *SessionStatus) (*model.Donation, bool, error) {
	if st == nil || st.Status == "" {
		return nil, false, nil
	}

	d, changed, err := s.Repo.ApplyStatus(ctx, st.SessionID, StatusUpdate{
		Status:        st.Status,
		PaymentMethod: st.PaymentMethod,
		PaidAt:        st.PaidAt,
		Metadata:      st.Raw,
	})
	if err != nil {
		return nil, false, err
	}

	if changed {
		log.Printf("[INFO] donation %s -> %s", d.DonationOrderID, d.DonationStatus)
		if d.DonationStatus == model.DonationStatusPaid {
			// the notifier must not hold up the webhook response
			go func(d model.Donation) {
				nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := s.Notifier.DonationPaid(nctx, &d); err != nil {
					log.Printf("[WARN] paid notification for %s failed: %v", d.DonationOrderID, err)
				}
			}(*d)
		}
	}
	return d, changed, nil
}
