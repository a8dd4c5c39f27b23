package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================
// Journal Events
// ============================================================

type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventShifted EventKind = "shifted"
	EventDeleted EventKind = "deleted"
	EventCleared EventKind = "cleared"
)

// Event - одно зафиксированное изменение доски. Для EventCleared WidgetID
// равен uuid.Nil.
type Event struct {
	Seq        int64     `json:"seq"`
	Kind       EventKind `json:"kind"`
	WidgetID   uuid.UUID `json:"widgetId"`
	ZIndex     int64     `json:"zIndex"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewWidgetEvent(kind EventKind, w *Widget) Event {
	return Event{Kind: kind, WidgetID: w.ID, ZIndex: w.ZIndex, OccurredAt: w.ModifiedAt}
}
