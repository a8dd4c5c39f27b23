package handlers

import (
	"fmt"
	"time"

	"widget-board/internal/widgets/models"
	"widget-board/internal/widgets/service"

	"github.com/google/uuid"
)

// ============================================================
// Requests
// ============================================================

type widgetRequest struct {
	X      int64  `json:"xCoordinate"`
	Y      int64  `json:"yCoordinate"`
	ZIndex *int64 `json:"zIndex"`
	Width  int64  `json:"width" validate:"min=1"`
	Height int64  `json:"height" validate:"min=1"`
}

func (r widgetRequest) input() service.WidgetInput {
	return service.WidgetInput{
		X:      r.X,
		Y:      r.Y,
		ZIndex: r.ZIndex,
		Width:  r.Width,
		Height: r.Height,
	}
}

type pageQuery struct {
	Page int64 `validate:"min=1"`
	Size int64 `validate:"min=1"`
}

// ============================================================
// Responses
// ============================================================

type link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
	Type string `json:"type"`
}

type widgetResponse struct {
	ID         uuid.UUID `json:"id"`
	X          int64     `json:"xCoordinate"`
	Y          int64     `json:"yCoordinate"`
	ZIndex     int64     `json:"zIndex"`
	Width      int64     `json:"width"`
	Height     int64     `json:"height"`
	ModifiedAt time.Time `json:"modifiedAt"`
	Links      []link    `json:"links,omitempty"`
}

type pageMeta struct {
	Number     int64 `json:"number"`
	Size       int64 `json:"size"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int64 `json:"totalPages"`
}

type pageResponse struct {
	Items []widgetResponse `json:"items"`
	Page  pageMeta         `json:"page"`
	Links []link           `json:"links"`
}

type eventResponse struct {
	Seq        int64     `json:"seq"`
	Kind       string    `json:"kind"`
	WidgetID   uuid.UUID `json:"widgetId"`
	ZIndex     int64     `json:"zIndex"`
	OccurredAt time.Time `json:"occurredAt"`
}

func mapWidget(w *models.Widget) widgetResponse {
	return widgetResponse{
		ID:         w.ID,
		X:          w.X,
		Y:          w.Y,
		ZIndex:     w.ZIndex,
		Width:      w.Width,
		Height:     w.Height,
		ModifiedAt: w.ModifiedAt,
	}
}

func mapEvent(e models.Event) eventResponse {
	return eventResponse{
		Seq:        e.Seq,
		Kind:       string(e.Kind),
		WidgetID:   e.WidgetID,
		ZIndex:     e.ZIndex,
		OccurredAt: e.OccurredAt,
	}
}

// ============================================================
// Links
// ============================================================

func (h *WidgetHandler) itemLinks(id uuid.UUID) []link {
	item := fmt.Sprintf("%s/%s", h.basePath, id)
	return []link{
		{Rel: "self", Href: item, Type: "GET"},
		{Rel: "widgets", Href: h.basePath, Type: "GET"},
		{Rel: "update", Href: item, Type: "PUT"},
		{Rel: "delete", Href: item, Type: "DELETE"},
	}
}

// pageLinks строит ссылки постраничной навигации; filterQuery уже
// закодирован и либо пуст, либо начинается с "&".
func (h *WidgetHandler) pageLinks(page models.Page[widgetResponse], filterQuery string) []link {
	at := func(n int64) string {
		return fmt.Sprintf("%s?page=%d&size=%d%s", h.basePath, n, page.Size, filterQuery)
	}

	links := []link{
		{Rel: "self", Href: at(page.Number), Type: "GET"},
		{Rel: "create", Href: h.basePath, Type: "POST"},
	}
	if page.Number > 1 {
		links = append(links, link{Rel: "prev", Href: at(page.Number - 1), Type: "GET"})
	}
	if page.Number < page.TotalPages() {
		links = append(links, link{Rel: "next", Href: at(page.Number + 1), Type: "GET"})
	}
	return links
}
