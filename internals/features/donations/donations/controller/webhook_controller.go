package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"k9medics_backend/internals/features/donations/donations/service"
)

type WebhookController struct {
	Sync                *service.StatusSync
	StripeWebhookSecret string
	MidtransServerKey   string
}

func NewWebhookController(sync *service.StatusSync, stripeSecret, midtransKey string) *WebhookController {
	return &WebhookController{
		Sync:                sync,
		StripeWebhookSecret: stripeSecret,
		MidtransServerKey:   midtransKey,
	}
}

// 🟢 STRIPE WEBHOOK
func (ctrl *WebhookController) Stripe(c *fiber.Ctx) error {
	if ctrl.StripeWebhookSecret == "" {
		log.Println("[ERROR] stripe webhook received but STRIPE_WEBHOOK_SECRET is empty")
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	st, err := service.StripeWebhookStatus(c.Body(), c.Get("Stripe-Signature"), ctrl.StripeWebhookSecret)
	if err != nil {
		log.Printf("[WARN] stripe webhook rejected: %v", err)
		return jsonError(c, fiber.StatusBadRequest, "Invalid webhook")
	}
	if st == nil {
		return c.SendStatus(fiber.StatusOK)
	}
	return ctrl.apply(c, st)
}

// 🟢 MIDTRANS WEBHOOK
func (ctrl *WebhookController) Midtrans(c *fiber.Ctx) error {
	var body service.MidtransNotification
	if err := c.BodyParser(&body); err != nil || body.OrderID == "" {
		return jsonError(c, fiber.StatusBadRequest, "Invalid webhook")
	}
	if !body.VerifySignature(ctrl.MidtransServerKey) {
		log.Printf("[WARN] midtrans webhook for %s has a bad signature", body.OrderID)
		return jsonError(c, fiber.StatusUnauthorized, "Invalid signature")
	}
	return ctrl.apply(c, body.SessionStatus())
}

func (ctrl *WebhookController) apply(c *fiber.Ctx, st *service.SessionStatus) error {
	if _, _, err := ctrl.Sync.Apply(c.UserContext(), st); err != nil {
		if errors.Is(err, service.ErrDonationNotFound) {
			// not ours; acknowledge so the provider stops retrying
			log.Printf("[INFO] webhook for unknown session %s ignored", st.SessionID)
			return c.SendStatus(fiber.StatusOK)
		}
		log.Printf("[ERROR] webhook for %s failed: %v", st.SessionID, err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	return c.SendStatus(fiber.StatusOK)
}
