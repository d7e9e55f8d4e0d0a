package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"k9medics_backend/internals/configs"
	"k9medics_backend/internals/features/donations/donations/dto"
	"k9medics_backend/internals/features/donations/donations/model"
	"k9medics_backend/internals/features/donations/donations/service"
)

type CheckoutController struct {
	Repo      service.Repository
	Provider  service.Provider
	Sync      *service.StatusSync
	Cfg       configs.CheckoutConfig
	Validator *validator.Validate
}

func NewCheckoutController(repo service.Repository, provider service.Provider, sync *service.StatusSync, cfg configs.CheckoutConfig) *CheckoutController {
	return &CheckoutController{
		Repo:      repo,
		Provider:  provider,
		Sync:      sync,
		Cfg:       cfg,
		Validator: validator.New(),
	}
}

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: msg})
}

// 🟢 CREATE SESSION: record a pending donation and open a payment session for it
func (ctrl *CheckoutController) CreateSession(c *fiber.Ctx) error {
	var body dto.CreateSessionRequest
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "amount must be a positive integer in minor units")
	}
	if err := body.Validate(ctrl.Validator, ctrl.Cfg.MinAmount, ctrl.Cfg.MaxAmount); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	id := uuid.New()
	donation := &model.Donation{
		DonationID:             id,
		DonationOrderID:        "DONATION-" + id.String(),
		DonationAmount:         body.Amount,
		DonationCurrency:       ctrl.Cfg.Currency,
		DonationEmail:          body.NormalizedEmail(),
		DonationStatus:         model.DonationStatusPending,
		DonationPaymentGateway: ctrl.Provider.Name(),
	}

	ctx := c.UserContext()
	if err := ctrl.Repo.Create(ctx, donation); err != nil {
		log.Printf("[ERROR] create donation: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Failed to record donation")
	}

	sess, err := ctrl.Provider.CreateSession(ctx, donation)
	if err != nil {
		log.Printf("[ERROR] %s session for %s: %v", ctrl.Provider.Name(), donation.DonationOrderID, err)
		if mErr := ctrl.Repo.MarkFailed(ctx, donation.DonationID, err.Error()); mErr != nil {
			log.Printf("[WARN] mark donation %s failed: %v", donation.DonationOrderID, mErr)
		}
		return jsonError(c, fiber.StatusBadGateway, err.Error())
	}

	if err := ctrl.Repo.AttachSession(ctx, donation.DonationID, sess.SessionID, sess.Token); err != nil {
		log.Printf("[ERROR] attach session %s: %v", sess.SessionID, err)
		return jsonError(c, fiber.StatusInternalServerError, "Failed to record payment session")
	}

	log.Printf("[INFO] donation %s session %s amount=%d", donation.DonationOrderID, sess.SessionID, donation.DonationAmount)
	return c.JSON(dto.CreateSessionResponse{
		ClientSecret: sess.Token,
		SessionID:    sess.SessionID,
		RedirectURL:  sess.RedirectURL,
	})
}

// 🟢 VERIFY SESSION: used by the confirmation view after the provider redirects back
func (ctrl *CheckoutController) VerifySession(c *fiber.Ctx) error {
	sessionID := strings.TrimSpace(c.Query("session_id"))
	if sessionID == "" {
		return jsonError(c, fiber.StatusBadRequest, "session_id is required")
	}

	st, err := ctrl.Provider.LookupSession(c.UserContext(), sessionID)
	if err != nil {
		log.Printf("[ERROR] verify session %s: %v", sessionID, err)
		return jsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	if ctrl.Sync != nil {
		if _, _, err := ctrl.Sync.Apply(c.UserContext(), st); err != nil && !errors.Is(err, service.ErrDonationNotFound) {
			log.Printf("[WARN] sync donation for session %s: %v", sessionID, err)
		}
	}

	return c.JSON(dto.VerifySessionResponse{
		Status:      st.ProviderStatus,
		AmountTotal: st.AmountTotal,
		Currency:    st.Currency,
	})
}

// 🟢 CONFIG: presets and bounds for the amount selector
func (ctrl *CheckoutController) Config(c *fiber.Ctx) error {
	presets := ctrl.Cfg.Presets
	if presets == nil {
		presets = []int64{}
	}
	return c.JSON(dto.CheckoutConfigResponse{
		Currency:  ctrl.Cfg.Currency,
		MinAmount: ctrl.Cfg.MinAmount,
		MaxAmount: ctrl.Cfg.MaxAmount,
		Presets:   presets,
	})
}
