// Package api exposes the aggregator over HTTP with fiber.
package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/dictionary"
	"github.com/project-tktt/vacancy-hub/internal/domain"
	apperrors "github.com/project-tktt/vacancy-hub/internal/errors"
	"github.com/project-tktt/vacancy-hub/internal/manager"
	"github.com/project-tktt/vacancy-hub/internal/queue"
	"github.com/project-tktt/vacancy-hub/internal/storage"
	"github.com/project-tktt/vacancy-hub/internal/subscription"
)

// ResultCache is the part of the result cache the API manages directly
type ResultCache interface {
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context, userID string) (int, error)
	ClearKey(ctx context.Context, key string) error
}

type Enqueuer interface {
	Enqueue(ctx context.Context, name string, payload queue.BackgroundJob, opts queue.EnqueueOptions) (bool, error)
	QueueLength(ctx context.Context) (int64, error)
}

type DictionaryRefresher interface {
	Refresh(ctx context.Context, source domain.Source) (int, error)
	RefreshAll(ctx context.Context, sources []domain.Source) (int, error)
}

// Deps are the services behind the routes. Cache, Queue and Refresher are optional.
type Deps struct {
	Manager       *manager.Manager
	Dictionary    *dictionary.Service
	Refresher     DictionaryRefresher
	Subscriptions *subscription.Service
	ParseLogs     storage.ParseLogStore
	Cache         ResultCache
	Queue         Enqueuer
	Logger        *zap.Logger
}

type Handler struct {
	manager       *manager.Manager
	dictionary    *dictionary.Service
	refresher     DictionaryRefresher
	subscriptions *subscription.Service
	parseLogs     storage.ParseLogStore
	cache         ResultCache
	queue         Enqueuer
	logger        *zap.Logger
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		manager:       d.Manager,
		dictionary:    d.Dictionary,
		refresher:     d.Refresher,
		subscriptions: d.Subscriptions,
		parseLogs:     d.ParseLogs,
		cache:         d.Cache,
		queue:         d.Queue,
		logger:        d.Logger,
	}
}

// NewApp builds the fiber app with every route registered
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "vacancy-hub",
		ErrorHandler: h.handleError,
	})
	h.Register(app)
	return app
}

func (h *Handler) Register(app *fiber.App) {
	app.Get("/health", h.Health)

	api := app.Group("/api")
	api.Get("/vacancies", h.SearchVacancies)
	api.Post("/vacancies/force-parse", h.ForceParse)
	api.Get("/parse-logs", h.ParseLogs)

	api.Get("/cache/:userId/exists", h.CacheExists)
	api.Delete("/cache/:userId", h.ClearCache)
	api.Delete("/cache/:userId/search", h.ClearCachedSearch)

	api.Get("/dictionaries", h.DictionaryStats)
	api.Post("/dictionaries/search", h.SearchDictionary)
	api.Post("/dictionaries/refresh", h.RefreshDictionary)
	api.Get("/dictionaries/:source", h.ListDictionary)
	api.Delete("/dictionaries/:source", h.ClearDictionary)

	api.Post("/subscriptions", h.CreateSubscription)
	api.Get("/subscriptions", h.ListSubscriptions)
	api.Get("/subscriptions/:id", h.GetSubscription)
	api.Patch("/subscriptions/:id", h.UpdateSubscription)
	api.Delete("/subscriptions/:id", h.DeleteSubscription)
}

// Health reports ok and, with a queue, the number of pending jobs. An
// unreachable queue makes it 503.
func (h *Handler) Health(c *fiber.Ctx) error {
	if h.queue == nil {
		return c.JSON(fiber.Map{"status": "ok"})
	}
	n, err := h.queue.QueueLength(c.UserContext())
	if err != nil {
		h.logger.Warn("queue length", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "error": "queue unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok", "pendingJobs": n})
}

// handleError renders every failure as {success: false, error}
func (h *Handler) handleError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := "internal error"

	var fe *fiber.Error
	var de *apperrors.DomainError
	switch {
	case errors.As(err, &fe):
		status, msg = fe.Code, fe.Message
	case errors.As(err, &de):
		msg = de.Message
		switch de.Type {
		case apperrors.ErrTypeInvalidInput, apperrors.ErrTypeValidation:
			status = fiber.StatusBadRequest
		case apperrors.ErrTypeNotFound:
			status = fiber.StatusNotFound
		case apperrors.ErrTypeRateLimit:
			status = fiber.StatusTooManyRequests
		case apperrors.ErrTypeUnavailable:
			status = fiber.StatusServiceUnavailable
		default:
			msg = "internal error"
		}
	}

	if status >= fiber.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func parseSource(raw string) (domain.Source, error) {
	src, ok := domain.ParseSource(raw)
	if !ok {
		return "", apperrors.InvalidInput("unknown source "+raw, nil)
	}
	return src, nil
}
