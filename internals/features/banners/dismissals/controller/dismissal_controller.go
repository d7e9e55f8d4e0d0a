package controller

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"k9medics_backend/internals/features/banners/dismissals/service"
	helper "k9medics_backend/internals/helpers"
)

const visitorCookie = "visitor_id"

type dismissalStore interface {
	Dismiss(ctx context.Context, banner, visitor string, now time.Time) error
	IsDismissed(ctx context.Context, banner, visitor string, now time.Time) (bool, error)
}

type DismissalController struct {
	Store dismissalStore
	Now   func() time.Time
}

func NewDismissalController(store dismissalStore) *DismissalController {
	return &DismissalController{Store: store, Now: time.Now}
}

// visitorID returns the visitor cookie, issuing a fresh one when it is missing or malformed.
func (ctrl *DismissalController) visitorID(c *fiber.Ctx) string {
	if v := strings.TrimSpace(c.Cookies(visitorCookie)); v != "" {
		if _, err := uuid.Parse(v); err == nil {
			return v
		}
	}
	id := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     visitorCookie,
		Value:    id,
		Path:     "/",
		Expires:  ctrl.Now().Add(365 * 24 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return id
}

// GET /api/public/banners/:key
func (ctrl *DismissalController) Status(c *fiber.Ctx) error {
	key := c.Params("key")
	if !service.ValidBannerKey(key) {
		return helper.JsonError(c, fiber.StatusBadRequest, service.ErrInvalidBannerKey.Error())
	}

	dismissed, err := ctrl.Store.IsDismissed(c.UserContext(), key, ctrl.visitorID(c), ctrl.Now())
	if err != nil {
		// a broken store should not hide the banner
		log.Printf("[WARN] banner %s lookup: %v", key, err)
		dismissed = false
	}
	return c.JSON(fiber.Map{"dismissed": dismissed})
}

// POST /api/public/banners/:key/dismiss
func (ctrl *DismissalController) Dismiss(c *fiber.Ctx) error {
	key := c.Params("key")
	err := ctrl.Store.Dismiss(c.UserContext(), key, ctrl.visitorID(c), ctrl.Now())
	switch {
	case errors.Is(err, service.ErrInvalidBannerKey):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	case err != nil:
		log.Printf("[ERROR] banner %s dismiss: %v", key, err)
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "Could not save dismissal")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
