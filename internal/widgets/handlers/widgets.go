package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"widget-board/internal/common/logging"
	"widget-board/internal/widgets/mapper"
	"widget-board/internal/widgets/models"
	"widget-board/internal/widgets/service"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	defaultPage         = 1
	defaultPageSize     = 10
	defaultJournalLimit = 50
	maxJournalLimit     = 1000
)

var filterParams = []string{"bottomLeftX", "bottomLeftY", "upperRightX", "upperRightY"}

// EventLog отдаёт последние записи журнала изменений.
type EventLog interface {
	Recent(ctx context.Context, limit int) ([]models.Event, error)
}

// ============================================================
// Widget Handler
// ============================================================

type WidgetHandler struct {
	service     *service.WidgetService
	journal     EventLog
	renderer    *mapper.Renderer
	validate    *validator.Validate
	logger      *log.Logger
	basePath    string
	maxPageSize int64
}

type Option func(*WidgetHandler)

// WithJournal включает GET /journal. Без него маршрут отвечает 404.
func WithJournal(journal EventLog) Option {
	return func(h *WidgetHandler) { h.journal = journal }
}

func WithLogger(l *log.Logger) Option {
	return func(h *WidgetHandler) { h.logger = l }
}

// WithMaxPageSize ограничивает параметр size у списка.
func WithMaxPageSize(n int) Option {
	return func(h *WidgetHandler) {
		if n > 0 {
			h.maxPageSize = int64(n)
		}
	}
}

func NewWidgetHandler(svc *service.WidgetService, opts ...Option) *WidgetHandler {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})

	h := &WidgetHandler{
		service:     svc,
		renderer:    mapper.NewRenderer(),
		validate:    validate,
		logger:      logging.Discard(),
		basePath:    "/api/widgets",
		maxPageSize: 500,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes регистрирует API виджетов на router.
func (h *WidgetHandler) Routes(router fiber.Router) {
	widgets := router.Group(h.basePath)

	widgets.Get("/", h.List)
	widgets.Post("/", h.Create)
	widgets.Delete("/", h.DeleteAll)

	widgets.Get("/render.svg", h.RenderSVG)
	widgets.Get("/journal", h.Journal)

	widgets.Get("/:id", h.Get)
	widgets.Put("/:id", h.Update)
	widgets.Delete("/:id", h.Delete)
}

// ============================================================
// Queries
// ============================================================

// List отдаёт страницу виджетов по возрастанию zIndex, с фильтром по области.
func (h *WidgetHandler) List(c fiber.Ctx) error {
	var (
		query pageQuery
		err   error
	)
	if query.Page, err = queryInt(c, "page", defaultPage); err != nil {
		return badRequest(c, err.Error())
	}
	if query.Size, err = queryInt(c, "size", defaultPageSize); err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.validate.Struct(query); err != nil {
		return badRequest(c, validationMessage(err))
	}
	if query.Size > h.maxPageSize {
		return badRequest(c, fmt.Sprintf("size must be at most %d", h.maxPageSize))
	}

	filter, filterQuery, err := parseFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	page, err := h.service.FindPage(c.Context(), models.Pageable{Page: query.Page, Size: query.Size}, filter)
	if err != nil {
		return h.fail(c, err)
	}

	mapped := models.MapPage(page, h.withItemLinks)

	return c.JSON(pageResponse{
		Items: mapped.Items,
		Page: pageMeta{
			Number:     mapped.Number,
			Size:       mapped.Size,
			TotalItems: mapped.TotalItems,
			TotalPages: mapped.TotalPages(),
		},
		Links: h.pageLinks(mapped, filterQuery),
	})
}

func (h *WidgetHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid widget id")
	}

	w, err := h.service.FindByID(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(h.withItemLinks(w))
}

// RenderSVG рисует доску от дальних виджетов к ближним.
func (h *WidgetHandler) RenderSVG(c fiber.Ctx) error {
	widgets, err := h.service.FindAll(c.Context())
	if err != nil {
		return h.fail(c, err)
	}

	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(h.renderer.Render(widgets))
}

// Journal отдаёт последние изменения доски, новые первыми.
func (h *WidgetHandler) Journal(c fiber.Ctx) error {
	if h.journal == nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "journal disabled"})
	}

	limit, err := queryInt(c, "limit", defaultJournalLimit)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.validate.Var(limit, fmt.Sprintf("min=1,max=%d", maxJournalLimit)); err != nil {
		return badRequest(c, fmt.Sprintf("limit must be between 1 and %d", maxJournalLimit))
	}

	events, err := h.journal.Recent(c.Context(), int(limit))
	if err != nil {
		return h.fail(c, err)
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, mapEvent(e))
	}
	return c.JSON(fiber.Map{"events": out})
}

// ============================================================
// Mutations
// ============================================================

func (h *WidgetHandler) Create(c fiber.Ctx) error {
	req, err := h.decodeWidget(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	w, err := h.service.Save(c.Context(), req.input())
	if err != nil {
		return h.fail(c, err)
	}

	h.logger.Info("widget created", "id", w.ID, "z", w.ZIndex)
	return c.Status(http.StatusCreated).JSON(h.withItemLinks(w))
}

// Update требует zIndex: без него непонятно, куда ставить виджет.
func (h *WidgetHandler) Update(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid widget id")
	}

	req, err := h.decodeWidget(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	w, err := h.service.Update(c.Context(), id, req.input())
	if err != nil {
		return h.fail(c, err)
	}

	h.logger.Info("widget updated", "id", w.ID, "z", w.ZIndex)
	return c.JSON(h.withItemLinks(w))
}

func (h *WidgetHandler) Delete(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid widget id")
	}

	w, err := h.service.Delete(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}

	h.logger.Info("widget deleted", "id", w.ID)
	resp := mapWidget(w)
	resp.Links = []link{{Rel: "widgets", Href: h.basePath, Type: "GET"}}
	return c.JSON(resp)
}

func (h *WidgetHandler) DeleteAll(c fiber.Ctx) error {
	if err := h.service.DeleteAll(c.Context()); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// ============================================================
// Helpers
// ============================================================

func (h *WidgetHandler) decodeWidget(c fiber.Ctx) (widgetRequest, error) {
	var req widgetRequest
	if len(c.Body()) == 0 {
		return req, errors.New("empty body")
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return req, errors.New("invalid json")
	}
	if err := h.validate.Struct(req); err != nil {
		return req, errors.New(validationMessage(err))
	}
	return req, nil
}

func (h *WidgetHandler) withItemLinks(w *models.Widget) widgetResponse {
	resp := mapWidget(w)
	resp.Links = h.itemLinks(w.ID)
	return resp
}

// fail переводит ошибки сервиса в HTTP-статусы.
func (h *WidgetHandler) fail(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidArgument):
		return badRequest(c, err.Error())
	case errors.Is(err, models.ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		h.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func queryInt(c fiber.Ctx, key string, defaultVal int64) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}

// parseFilter читает границы области. Вторым значением возвращает их же в
// виде query-строки для ссылок навигации.
func parseFilter(c fiber.Ctx) (models.Filter, string, error) {
	var (
		bounds [4]*int64
		query  = url.Values{}
	)
	for i, key := range filterParams {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return models.Filter{}, "", fmt.Errorf("%s must be an integer", key)
		}
		bounds[i] = &v
		query.Set(key, raw)
	}

	filter := models.Filter{
		BottomLeftX: bounds[0],
		BottomLeftY: bounds[1],
		UpperRightX: bounds[2],
		UpperRightY: bounds[3],
	}
	if len(query) == 0 {
		return filter, "", nil
	}
	return filter, "&" + query.Encode(), nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
