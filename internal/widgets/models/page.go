package models

import (
	"fmt"
	"math"
)

// ============================================================
// Pagination
// ============================================================

// Pageable - запрос страницы, нумерация с 1.
type Pageable struct {
	Page int64
	Size int64
}

// Validate отклоняет page и size меньше единицы.
func (p Pageable) Validate() error {
	if p.Page <= 0 {
		return fmt.Errorf("%w: page must be greater than 0", ErrInvalidArgument)
	}
	if p.Size <= 0 {
		return fmt.Errorf("%w: size must be greater than 0", ErrInvalidArgument)
	}
	return nil
}

// Skip - число элементов до запрошенной страницы. При переполнении
// возвращает math.MaxInt64: такая страница заведомо пуста.
func (p Pageable) Skip() int64 {
	if p.Size > 0 && p.Page-1 > math.MaxInt64/p.Size {
		return math.MaxInt64
	}
	return (p.Page - 1) * p.Size
}

// Page - срез списка, упорядоченного по zIndex. Только для чтения.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Number     int64 `json:"number"`
	Size       int64 `json:"size"`
	TotalItems int64 `json:"totalItems"`
}

func NewPage[T any](items []T, req Pageable, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Number: req.Page, Size: req.Size, TotalItems: total}
}

func EmptyPage[T any](req Pageable, total int64) Page[T] {
	return NewPage[T](nil, req, total)
}

// MapPage сохраняет метаданные страницы и преобразует элементы через fn.
func MapPage[T, R any](p Page[T], fn func(T) R) Page[R] {
	items := make([]R, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, fn(item))
	}
	return Page[R]{Items: items, Number: p.Number, Size: p.Size, TotalItems: p.TotalItems}
}

func (p Page[T]) ItemCount() int {
	return len(p.Items)
}

// TotalPages = ceil(TotalItems/Size), 0 при нулевом Size.
func (p Page[T]) TotalPages() int64 {
	if p.Size == 0 {
		return 0
	}
	pages := p.TotalItems / p.Size
	if p.TotalItems%p.Size != 0 {
		pages++
	}
	return pages
}

// ============================================================
// Spatial filter
// ============================================================

// Filter - необязательная область запроса. Задаются либо все четыре
// границы, либо ни одной.
type Filter struct {
	BottomLeftX *int64
	BottomLeftY *int64
	UpperRightX *int64
	UpperRightY *int64
}

// NewFilter собирает полностью заданный фильтр.
func NewFilter(bottomLeftX, bottomLeftY, upperRightX, upperRightY int64) Filter {
	return Filter{
		BottomLeftX: &bottomLeftX,
		BottomLeftY: &bottomLeftY,
		UpperRightX: &upperRightX,
		UpperRightY: &upperRightY,
	}
}

func (f Filter) IsEmpty() bool {
	return f.BottomLeftX == nil && f.BottomLeftY == nil && f.UpperRightX == nil && f.UpperRightY == nil
}

func (f Filter) IsFilled() bool {
	return f.BottomLeftX != nil && f.BottomLeftY != nil && f.UpperRightX != nil && f.UpperRightY != nil
}

// Rectangle проверяет фильтр и возвращает область запроса. Для пустого
// фильтра ok == false.
func (f Filter) Rectangle() (rect Rectangle, ok bool, err error) {
	if f.IsEmpty() {
		return Rectangle{}, false, nil
	}
	if !f.IsFilled() {
		return Rectangle{}, false, fmt.Errorf("%w: all filter bounds must be set together", ErrInvalidArgument)
	}

	rect, err = NewRectangleFromCorners(
		Point{X: *f.BottomLeftX, Y: *f.BottomLeftY},
		Point{X: *f.UpperRightX, Y: *f.UpperRightY},
	)
	if err != nil {
		return Rectangle{}, false, fmt.Errorf("filter: %w", err)
	}
	return rect, true, nil
}
