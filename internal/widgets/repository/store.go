package repository

import (
	"bytes"
	"math"
	"sort"

	"widget-board/internal/widgets/models"

	"github.com/google/btree"
	"github.com/google/uuid"
)

// ============================================================
// Widget Store
// ============================================================

const treeDegree = 32

// Store хранит доску в трёх упорядоченных индексах над одними и теми же
// виджетами: по id, по zIndex и по габаритам. Каждая запись обновляет все три.
//
// Своих блокировок у Store нет: писателей упорядочивает вызывающий. Clone
// можно читать из других горутин, пока оригинал продолжает меняться.
// Уникальность zIndex тоже обеспечивает вызывающий.
type Store struct {
	byID    *btree.BTreeG[*models.Widget]
	byZ     *btree.BTreeG[*models.Widget]
	bySpace *btree.BTreeG[*models.Widget]
}

func NewStore() *Store {
	return &Store{
		byID:    btree.NewG(treeDegree, lessByID),
		byZ:     btree.NewG(treeDegree, lessByZIndex),
		bySpace: btree.NewG(treeDegree, lessBySpace),
	}
}

// Clone возвращает ленивую копию: узлы общие до первой записи
// (copy-on-write), после чего копией и оригиналом можно пользоваться
// параллельно.
func (s *Store) Clone() *Store {
	return &Store{
		byID:    s.byID.Clone(),
		byZ:     s.byZ.Clone(),
		bySpace: s.bySpace.Clone(),
	}
}

// ============================================================
// Queries
// ============================================================

func (s *Store) Count() int64 {
	return int64(s.byID.Len())
}

// HighestZIndex возвращает самый передний zIndex; ok == false на пустой доске.
func (s *Store) HighestZIndex() (z int64, ok bool) {
	w, ok := s.byZ.Max()
	if !ok {
		return 0, false
	}
	return w.ZIndex, true
}

// CeilingZIndex возвращает наименьший zIndex >= target.
func (s *Store) CeilingZIndex(target int64) (z int64, ok bool) {
	s.byZ.AscendGreaterOrEqual(zPivot(target), func(w *models.Widget) bool {
		z, ok = w.ZIndex, true
		return false
	})
	return z, ok
}

func (s *Store) ByID(id uuid.UUID) (*models.Widget, bool) {
	return s.byID.Get(&models.Widget{ID: id})
}

// AllSortedByZIndex перечисляет все виджеты от дальнего к ближнему.
func (s *Store) AllSortedByZIndex() []*models.Widget {
	out := make([]*models.Widget, 0, s.byZ.Len())
	s.byZ.Ascend(func(w *models.Widget) bool {
		out = append(out, w)
		return true
	})
	return out
}

// WindowSortedByZIndex пропускает skip виджетов в порядке zIndex и отдаёт не больше take.
func (s *Store) WindowSortedByZIndex(skip, take int64) []*models.Widget {
	if skip < 0 {
		skip = 0
	}
	if take <= 0 || skip >= int64(s.byZ.Len()) {
		return []*models.Widget{}
	}

	out := make([]*models.Widget, 0, min(take, int64(s.byZ.Len())-skip))
	var seen int64
	s.byZ.Ascend(func(w *models.Widget) bool {
		if seen < skip {
			seen++
			return true
		}
		out = append(out, w)
		return int64(len(out)) < take
	})
	return out
}

// TailFromZIndex перечисляет виджеты с zIndex >= zIndex по возрастанию.
func (s *Store) TailFromZIndex(zIndex int64) []*models.Widget {
	var out []*models.Widget
	s.byZ.AscendGreaterOrEqual(zPivot(zIndex), func(w *models.Widget) bool {
		out = append(out, w)
		return true
	})
	return out
}

// InArea возвращает виджеты, чьи углы лежат внутри области запроса,
// отсортированные по zIndex и обрезанные окном skip/take.
//
// Каждая координата углов сверяется с диапазоном своей оси: bottomLeft.x и
// upperRight.x в [bl.X, ur.X], bottomLeft.y и upperRight.y в [bl.Y, ur.Y].
// Пересекающиеся, но выступающие за область виджеты не попадают. Вырожденная
// область не находит ничего.
func (s *Store) InArea(bottomLeft, upperRight models.Point, skip, take int64) []*models.Widget {
	matches := s.inArea(bottomLeft, upperRight)
	if skip < 0 {
		skip = 0
	}
	if take <= 0 || skip >= int64(len(matches)) {
		return []*models.Widget{}
	}
	return matches[skip : skip+min(take, int64(len(matches))-skip)]
}

func (s *Store) inArea(bottomLeft, upperRight models.Point) []*models.Widget {
	area, err := models.NewRectangleFromCorners(bottomLeft, upperRight)
	if err != nil {
		return nil
	}

	pivot := &models.Widget{
		ID:         uuid.Nil,
		ZIndex:     math.MinInt64,
		BottomLeft: models.Point{X: bottomLeft.X, Y: math.MinInt64},
		UpperRight: models.Point{X: math.MinInt64, Y: math.MinInt64},
	}

	var out []*models.Widget
	s.bySpace.AscendGreaterOrEqual(pivot, func(w *models.Widget) bool {
		if w.BottomLeft.X > upperRight.X {
			return false
		}
		if area.Contains(w.Bounds()) {
			out = append(out, w)
		}
		return true
	})

	sort.Slice(out, func(i, j int) bool { return lessByZIndexThenID(out[i], out[j]) })
	return out
}

// ============================================================
// Mutations
// ============================================================

// Upsert вставляет w или целиком заменяет виджет с тем же id. Старые записи
// в индексах zIndex и габаритов удаляются до вставки новых.
func (s *Store) Upsert(w *models.Widget) {
	if old, ok := s.byID.ReplaceOrInsert(w); ok {
		s.dropSecondary(old)
	}
	s.byZ.ReplaceOrInsert(w)
	s.bySpace.ReplaceOrInsert(w)
}

// UpsertAll применяет Upsert к каждому виджету по порядку.
func (s *Store) UpsertAll(widgets []*models.Widget) {
	for _, w := range widgets {
		s.Upsert(w)
	}
}

// Remove удаляет виджет с id из w из всех индексов. Неизвестный id
// ничего не меняет.
func (s *Store) Remove(w *models.Widget) (*models.Widget, bool) {
	old, ok := s.byID.Delete(w)
	if !ok {
		return nil, false
	}
	s.dropSecondary(old)
	return old, true
}

func (s *Store) Clear() {
	s.byID.Clear(false)
	s.byZ.Clear(false)
	s.bySpace.Clear(false)
}

// dropSecondary убирает old из индексов zIndex и габаритов. Слот zIndex
// освобождается, только если ещё принадлежит old: при сдвиге серии туда
// мог уже переехать сосед.
func (s *Store) dropSecondary(old *models.Widget) {
	if cur, ok := s.byZ.Get(old); ok && cur.ID == old.ID {
		s.byZ.Delete(old)
	}
	s.bySpace.Delete(old)
}

// ============================================================
// Orderings
// ============================================================

func zPivot(z int64) *models.Widget {
	return &models.Widget{ZIndex: z}
}

func lessByID(a, b *models.Widget) bool {
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

func lessByZIndex(a, b *models.Widget) bool {
	return a.ZIndex < b.ZIndex
}

func lessByZIndexThenID(a, b *models.Widget) bool {
	if a.ZIndex != b.ZIndex {
		return a.ZIndex < b.ZIndex
	}
	return lessByID(a, b)
}

// lessBySpace сортирует по (bottomLeft.x, bottomLeft.y, upperRight.x,
// upperRight.y), при равенстве по zIndex и id: виджеты с одинаковыми
// габаритами остаются разными ключами.
func lessBySpace(a, b *models.Widget) bool {
	switch {
	case a.BottomLeft.X != b.BottomLeft.X:
		return a.BottomLeft.X < b.BottomLeft.X
	case a.BottomLeft.Y != b.BottomLeft.Y:
		return a.BottomLeft.Y < b.BottomLeft.Y
	case a.UpperRight.X != b.UpperRight.X:
		return a.UpperRight.X < b.UpperRight.X
	case a.UpperRight.Y != b.UpperRight.Y:
		return a.UpperRight.Y < b.UpperRight.Y
	}
	return lessByZIndexThenID(a, b)
}
