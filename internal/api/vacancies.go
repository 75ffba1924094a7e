package api

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/project-tktt/vacancy-hub/internal/domain"
	apperrors "github.com/project-tktt/vacancy-hub/internal/errors"
	"github.com/project-tktt/vacancy-hub/internal/manager"
)

// SearchVacancies serves GET /api/vacancies
func (h *Handler) SearchVacancies(c *fiber.Ctx) error {
	req, err := searchRequest(c)
	if err != nil {
		return err
	}
	resp, err := h.manager.Search(c.UserContext(), req)
	if err != nil {
		return apperrors.Internal("search vacancies", err)
	}
	return c.JSON(resp)
}

type forceParseRequest struct {
	Query    string          `json:"query"`
	Sources  []domain.Source `json:"sources"`
	MaxPages int             `json:"maxPages"`
}

// ForceParse serves POST /api/vacancies/force-parse
func (h *Handler) ForceParse(c *fiber.Ctx) error {
	if err := validate(forceParseSchema, c.Body()); err != nil {
		return err
	}
	var req forceParseRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperrors.InvalidInput("invalid payload", err)
	}
	outcomes := h.manager.ForceParse(c.UserContext(), req.Sources, strings.TrimSpace(req.Query), req.MaxPages)
	return ok(c, outcomes)
}

// ParseLogs serves GET /api/parse-logs
func (h *Handler) ParseLogs(c *fiber.Ctx) error {
	var source domain.Source
	if raw := c.Query("source"); raw != "" {
		src, err := parseSource(raw)
		if err != nil {
			return err
		}
		source = src
	}
	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		return err
	}
	logs, err := h.parseLogs.Recent(c.UserContext(), source, limit)
	if err != nil {
		return apperrors.Internal("list parse logs", err)
	}
	if logs == nil {
		logs = []*domain.ParseLog{}
	}
	return ok(c, logs)
}

// CacheExists serves GET /api/cache/:userId/exists; the search filters come
// in the query string as for /api/vacancies
func (h *Handler) CacheExists(c *fiber.Ctx) error {
	if h.cache == nil {
		return apperrors.Unavailable("cache is not configured", nil)
	}
	key, err := h.cacheKey(c)
	if err != nil {
		return err
	}
	exists, err := h.cache.Exists(c.UserContext(), key)
	if err != nil {
		return apperrors.Cache("check cache", err)
	}
	return ok(c, fiber.Map{"key": key, "exists": exists})
}

// ClearCache serves DELETE /api/cache/:userId
func (h *Handler) ClearCache(c *fiber.Ctx) error {
	if h.cache == nil {
		return apperrors.Unavailable("cache is not configured", nil)
	}
	n, err := h.cache.Clear(c.UserContext(), c.Params("userId"))
	if err != nil {
		return apperrors.Cache("clear cache", err)
	}
	return ok(c, fiber.Map{"cleared": n})
}

// ClearCachedSearch serves DELETE /api/cache/:userId/search, dropping the one
// search described by the query string
func (h *Handler) ClearCachedSearch(c *fiber.Ctx) error {
	if h.cache == nil {
		return apperrors.Unavailable("cache is not configured", nil)
	}
	key, err := h.cacheKey(c)
	if err != nil {
		return err
	}
	if err := h.cache.ClearKey(c.UserContext(), key); err != nil {
		return apperrors.Cache("clear cached search", err)
	}
	return ok(c, fiber.Map{"key": key})
}

// cacheKey is the key /api/vacancies would use for the same query string
func (h *Handler) cacheKey(c *fiber.Ctx) (string, error) {
	req, err := searchRequest(c)
	if err != nil {
		return "", err
	}
	req.UserID = c.Params("userId")
	return h.manager.CacheKey(c.UserContext(), req), nil
}

func searchRequest(c *fiber.Ctx) (manager.SearchRequest, error) {
	f, err := filtersFromQuery(c)
	if err != nil {
		return manager.SearchRequest{}, err
	}
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return manager.SearchRequest{}, err
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return manager.SearchRequest{}, err
	}

	req := manager.SearchRequest{
		Filters: f,
		Query:   strings.TrimSpace(c.Query("query")),
		Mode:    manager.ModeRegular,
		UserID:  c.Query("userId"),
		Page:    page,
		Limit:   limit,
	}
	if semantic, _ := strconv.ParseBool(c.Query("useSemanticSearch")); semantic {
		req.Mode = manager.ModeSemantic
	}
	if c.Query("searchBy") == "category" {
		req.Mode = manager.ModeCategory
	}
	return req, nil
}

func filtersFromQuery(c *fiber.Ctx) (domain.Filters, error) {
	f := domain.Filters{
		Keywords:  list(c.Query("keywords")),
		Locations: list(c.Query("locations")),
		Skills:    list(c.Query("skills")),
		Category:  strings.TrimSpace(c.Query("category")),
	}

	if raw := c.Query("salaryMin"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, apperrors.InvalidInput("salaryMin must be a non-negative integer", err)
		}
		f.SalaryMin = &n
	}
	for _, s := range list(c.Query("experience")) {
		f.Experience = append(f.Experience, domain.Experience(s))
	}
	for _, s := range list(c.Query("schedule")) {
		f.Schedule = append(f.Schedule, domain.Schedule(s))
	}
	for _, s := range list(c.Query("employment")) {
		f.Employment = append(f.Employment, domain.Employment(s))
	}

	sources := list(c.Query("sources"))
	sources = append(sources, list(c.Query("source"))...)
	for _, s := range sources {
		src, err := parseSource(s)
		if err != nil {
			return f, err
		}
		f.Sources = append(f.Sources, src)
	}

	if raw := c.Query("locationType"); raw != "" {
		lt, ok := domain.ParseLocationType(raw)
		if !ok {
			return f, apperrors.InvalidInput("unknown locationType "+raw, nil)
		}
		f.LocationType = lt
	}
	if raw := c.Query("publishedSince"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, apperrors.InvalidInput("publishedSince must be RFC 3339", err)
		}
		f.PublishedSince = &t
	}
	return f, nil
}

// list splits a comma separated query value
func list(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.InvalidInput(key+" must be a non-negative integer", err)
	}
	return n, nil
}
