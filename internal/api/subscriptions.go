package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/project-tktt/vacancy-hub/internal/domain"
	apperrors "github.com/project-tktt/vacancy-hub/internal/errors"
	"github.com/project-tktt/vacancy-hub/internal/subscription"
)

type createSubscriptionRequest struct {
	UserID  string          `json:"userId"`
	Filters domain.Filters  `json:"filters"`
	Sources []domain.Source `json:"sources"`
}

func (h *Handler) CreateSubscription(c *fiber.Ctx) error {
	if err := validate(createSubscriptionSchema, c.Body()); err != nil {
		return err
	}
	var req createSubscriptionRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperrors.InvalidInput("invalid payload", err)
	}
	sub, err := h.subscriptions.Create(c.UserContext(), req.UserID, normalizeLocation(req.Filters), req.Sources)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": sub})
}

func (h *Handler) ListSubscriptions(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return apperrors.InvalidInput("userId is required", nil)
	}
	subs, err := h.subscriptions.ListByUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return ok(c, subs)
}

func (h *Handler) GetSubscription(c *fiber.Ctx) error {
	sub, err := h.subscriptions.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, sub)
}

func (h *Handler) UpdateSubscription(c *fiber.Ctx) error {
	if err := validate(patchSubscriptionSchema, c.Body()); err != nil {
		return err
	}
	var patch subscription.Patch
	if err := json.Unmarshal(c.Body(), &patch); err != nil {
		return apperrors.InvalidInput("invalid payload", err)
	}
	if patch.Filters != nil {
		f := normalizeLocation(*patch.Filters)
		patch.Filters = &f
	}
	sub, err := h.subscriptions.Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return ok(c, sub)
}

func (h *Handler) DeleteSubscription(c *fiber.Ctx) error {
	if err := h.subscriptions.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// normalizeLocation maps location codes to the stored display value
func normalizeLocation(f domain.Filters) domain.Filters {
	if lt, ok := domain.ParseLocationType(string(f.LocationType)); ok {
		f.LocationType = lt
	}
	return f
}
