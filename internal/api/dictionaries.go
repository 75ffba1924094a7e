package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/domain"
	apperrors "github.com/project-tktt/vacancy-hub/internal/errors"
	"github.com/project-tktt/vacancy-hub/internal/queue"
)

func (h *Handler) DictionaryStats(c *fiber.Ctx) error {
	stats, err := h.dictionary.Stats(c.UserContext())
	if err != nil {
		return apperrors.Internal("dictionary stats", err)
	}
	return ok(c, stats)
}

func (h *Handler) ListDictionary(c *fiber.Ctx) error {
	src, err := parseSource(c.Params("source"))
	if err != nil {
		return err
	}
	entries, err := h.dictionary.List(c.UserContext(), src)
	if err != nil {
		return apperrors.Internal("list dictionary", err)
	}
	if entries == nil {
		entries = []*domain.DictionaryEntry{}
	}
	return ok(c, entries)
}

func (h *Handler) ClearDictionary(c *fiber.Ctx) error {
	src, err := parseSource(c.Params("source"))
	if err != nil {
		return err
	}
	n, err := h.dictionary.Clear(c.UserContext(), src)
	if err != nil {
		return apperrors.Internal("clear dictionary", err)
	}
	return ok(c, fiber.Map{"deleted": n})
}

type dictionarySearchRequest struct {
	Query   string          `json:"query"`
	Sources []domain.Source `json:"sources"`
}

// SearchDictionary ranks the stored titles of each source against a query
func (h *Handler) SearchDictionary(c *fiber.Ctx) error {
	if err := validate(dictionarySearchSchema, c.Body()); err != nil {
		return err
	}
	var req dictionarySearchRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperrors.InvalidInput("invalid payload", err)
	}
	if len(req.Sources) == 0 {
		req.Sources = domain.AllSources()
	}
	res, err := h.dictionary.FindProfessionMappings(c.UserContext(), req.Query, req.Sources)
	if err != nil {
		return apperrors.Internal("find profession mappings", err)
	}
	return ok(c, res)
}

// RefreshDictionary queues a rebuild when a queue is configured and runs it
// inline otherwise
func (h *Handler) RefreshDictionary(c *fiber.Ctx) error {
	if err := validate(dictionaryRefreshSchema, c.Body()); err != nil {
		return err
	}
	var req struct {
		Source domain.Source `json:"source"`
	}
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return apperrors.InvalidInput("invalid payload", err)
		}
	}

	if h.queue != nil {
		queued, err := h.queue.Enqueue(c.UserContext(), queue.JobRefreshDictionary, queue.BackgroundJob{Source: req.Source}, queue.EnqueueOptions{
			Priority:  queue.PriorityHigh,
			DedupeKey: queue.DedupeKey(queue.JobRefreshDictionary, req.Source, ""),
		})
		if err != nil {
			return apperrors.Unavailable("enqueue dictionary refresh", err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"success": true, "data": fiber.Map{"queued": queued}})
	}

	if h.refresher == nil {
		return apperrors.Unavailable("dictionary refresh is not configured", nil)
	}
	var (
		n   int
		err error
	)
	if req.Source == "" {
		n, err = h.refresher.RefreshAll(c.UserContext(), domain.AllSources())
	} else {
		n, err = h.refresher.Refresh(c.UserContext(), req.Source)
	}
	if err != nil {
		return apperrors.Internal("refresh dictionary", err)
	}
	h.logger.Info("dictionary refreshed inline", zap.String("source", string(req.Source)), zap.Int("entries", n))
	return ok(c, fiber.Map{"saved": n})
}
