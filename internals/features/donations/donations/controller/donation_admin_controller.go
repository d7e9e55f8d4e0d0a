package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"k9medics_backend/internals/features/donations/donations/dto"
	"k9medics_backend/internals/features/donations/donations/model"
	"k9medics_backend/internals/features/donations/donations/service"
	helper "k9medics_backend/internals/helpers"
)

type DonationAdminController struct {
	Repo service.Repository
}

func NewDonationAdminController(repo service.Repository) *DonationAdminController {
	return &DonationAdminController{Repo: repo}
}

var listableStatuses = map[string]bool{
	model.DonationStatusPending:  true,
	model.DonationStatusPaid:     true,
	model.DonationStatusExpired:  true,
	model.DonationStatusCanceled: true,
	model.DonationStatusFailed:   true,
}

// GET /api/a/donations?status=&page=&per_page=
func (ctrl *DonationAdminController) List(c *fiber.Ctx) error {
	status := strings.ToLower(strings.TrimSpace(c.Query("status")))
	if status != "" && !listableStatuses[status] {
		return helper.JsonError(c, fiber.StatusBadRequest, "unknown status filter")
	}

	p := helper.ResolvePaging(c, 20, 100)
	list, total, err := ctrl.Repo.List(c.UserContext(), service.ListFilter{
		Status: status,
		Offset: p.Offset,
		Limit:  p.Limit,
	})
	if err != nil {
		log.Printf("[ERROR] list donations: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load donations")
	}

	return helper.JsonList(c, "ok", dto.FromModels(list), helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

// GET /api/a/donations/:id
func (ctrl *DonationAdminController) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid donation id")
	}

	d, err := ctrl.Repo.FindByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrDonationNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "donation not found")
		}
		log.Printf("[ERROR] get donation %s: %v", id, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load donation")
	}
	return helper.JsonOK(c, "ok", dto.FromModel(*d))
}

// GET /api/a/donations/summary
func (ctrl *DonationAdminController) Summary(c *fiber.Ctx) error {
	totals, err := ctrl.Repo.Summary(c.UserContext())
	if err != nil {
		log.Printf("[ERROR] donation summary: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load summary")
	}
	if totals == nil {
		totals = []service.CurrencyTotal{}
	}
	return helper.JsonOK(c, "ok", totals)
}
