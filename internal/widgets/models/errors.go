package models

import "errors"

// ============================================================
// Error Kinds
// ============================================================

var (
	// ErrInvalidArgument - вход, который доска не принимает: размеры,
	// пагинация, неполный или вывернутый фильтр.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound - виджета с таким id на доске нет.
	ErrNotFound = errors.New("not found")
)
