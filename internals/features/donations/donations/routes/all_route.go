package route

import (
	"github.com/gofiber/fiber/v2"

	"k9medics_backend/internals/configs"
	"k9medics_backend/internals/features/donations/donations/controller"
	"k9medics_backend/internals/features/donations/donations/service"
	rateLimiter "k9medics_backend/internals/middlewares"
)

// CheckoutPublicRoutes mounts under /api/public/checkout.
func CheckoutPublicRoutes(r fiber.Router, repo service.Repository, provider service.Provider, sync *service.StatusSync, cfg configs.CheckoutConfig) {
	checkoutCtrl := controller.NewCheckoutController(repo, provider, sync, cfg)
	webhookCtrl := controller.NewWebhookController(sync, cfg.StripeWebhookSecret, cfg.MidtransServerKey)

	r.Get("/config", checkoutCtrl.Config)
	r.Post("/sessions", rateLimiter.CheckoutRateLimiter(), checkoutCtrl.CreateSession)
	r.Get("/sessions/verify", checkoutCtrl.VerifySession)

	r.Post("/webhooks/stripe", webhookCtrl.Stripe)
	r.Post("/webhooks/midtrans", webhookCtrl.Midtrans)
}

// DonationAdminRoutes mounts under /api/a/donations.
func DonationAdminRoutes(r fiber.Router, repo service.Repository) {
	ctrl := controller.NewDonationAdminController(repo)

	r.Get("/", ctrl.List)
	r.Get("/summary", ctrl.Summary)
	r.Get("/:id", ctrl.Get)
}
