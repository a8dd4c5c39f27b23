package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================
// Widget Model
// ============================================================

// Widget - прямоугольник на доске с уникальным zIndex.
//
// Виджет не меняется после создания. Перемещение по zIndex даёт новое
// значение через WithZIndex или Shifted, и хранилище заменяет его целиком.
type Widget struct {
	ID         uuid.UUID `json:"id"`
	X          int64     `json:"x"`
	Y          int64     `json:"y"`
	ZIndex     int64     `json:"zIndex"`
	Width      int64     `json:"width"`
	Height     int64     `json:"height"`
	ModifiedAt time.Time `json:"modifiedAt"`
	BottomLeft Point     `json:"-"`
	UpperRight Point     `json:"-"`
}

// NewWidget проверяет геометрию и вычисляет углы.
func NewWidget(id uuid.UUID, x, y, zIndex, width, height int64, modifiedAt time.Time) (*Widget, error) {
	rect, err := NewRectangle(x, y, width, height)
	if err != nil {
		return nil, err
	}

	return &Widget{
		ID:         id,
		X:          x,
		Y:          y,
		ZIndex:     zIndex,
		Width:      width,
		Height:     height,
		ModifiedAt: modifiedAt,
		BottomLeft: rect.BottomLeft(),
		UpperRight: rect.UpperRight(),
	}, nil
}

// WithZIndex возвращает копию на zIndex с отметкой modifiedAt.
func (w *Widget) WithZIndex(zIndex int64, modifiedAt time.Time) *Widget {
	cp := *w
	cp.ZIndex = zIndex
	cp.ModifiedAt = modifiedAt
	return &cp
}

// Shifted возвращает копию, сдвинутую на шаг вперёд.
func (w *Widget) Shifted(modifiedAt time.Time) *Widget {
	return w.WithZIndex(w.ZIndex+1, modifiedAt)
}

// Bounds возвращает габариты виджета. Геометрия проверена при создании,
// так что прямоугольник всегда корректен.
func (w *Widget) Bounds() Rectangle {
	rect, _ := NewRectangleFromCorners(w.BottomLeft, w.UpperRight)
	return rect
}
