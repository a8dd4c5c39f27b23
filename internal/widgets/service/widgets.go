package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"widget-board/internal/widgets/metrics"
	"widget-board/internal/widgets/models"
	"widget-board/internal/widgets/ordering"
	"widget-board/internal/widgets/repository"

	"github.com/google/uuid"
)

// WidgetInput - данные виджета от клиента. ZIndex == nil при сохранении
// ставит виджет впереди всех.
type WidgetInput struct {
	X      int64
	Y      int64
	ZIndex *int64
	Width  int64
	Height int64
}

func (in WidgetInput) validate() error {
	_, err := models.NewRectangle(in.X, in.Y, in.Width, in.Height)
	return err
}

// ============================================================
// Queries
// ============================================================

func (s *WidgetService) FindByID(ctx context.Context, id uuid.UUID) (w *models.Widget, err error) {
	started := time.Now()
	defer func() { metrics.ObserveOperation("find_by_id", started, err) }()

	var ok bool
	s.read("find_by_id", func(store *repository.Store) {
		w, ok = store.ByID(id)
	})
	if !ok {
		return nil, fmt.Errorf("widget %s: %w", id, models.ErrNotFound)
	}
	return w, nil
}

// FindPage отдаёт страницу по zIndex, при заданном filter - только виджеты,
// чьи углы внутри области. TotalItems - всегда число виджетов на доске, в
// том числе для отфильтрованной страницы.
func (s *WidgetService) FindPage(ctx context.Context, req models.Pageable, filter models.Filter) (page models.Page[*models.Widget], err error) {
	started := time.Now()
	defer func() { metrics.ObserveOperation("find_page", started, err) }()

	if err := req.Validate(); err != nil {
		return models.Page[*models.Widget]{}, err
	}
	area, filtered, err := filter.Rectangle()
	if err != nil {
		return models.Page[*models.Widget]{}, err
	}

	skip := req.Skip()
	s.read("find_page", func(store *repository.Store) {
		total := store.Count()
		if skip >= total {
			page = models.EmptyPage[*models.Widget](req, total)
			return
		}

		var items []*models.Widget
		if filtered {
			items = store.InArea(area.BottomLeft(), area.UpperRight(), skip, req.Size)
		} else {
			items = store.WindowSortedByZIndex(skip, req.Size)
		}
		page = models.NewPage(items, req, total)
	})
	return page, nil
}

// FindAll отдаёт всю доску от дальних виджетов к ближним.
func (s *WidgetService) FindAll(ctx context.Context) (widgets []*models.Widget, err error) {
	started := time.Now()
	defer func() { metrics.ObserveOperation("find_all", started, err) }()

	s.read("find_all", func(store *repository.Store) {
		widgets = store.AllSortedByZIndex()
	})
	return widgets, nil
}

// ============================================================
// Mutations
// ============================================================

// Save добавляет виджет с новым id. Без zIndex он встаёт перед самым
// передним (на пустой доске в 0). Занятый zIndex сдвигает серию вперёд.
func (s *WidgetService) Save(ctx context.Context, in WidgetInput) (saved *models.Widget, err error) {
	started := time.Now()
	defer func() { metrics.ObserveOperation("save", started, err) }()

	if err := in.validate(); err != nil {
		return nil, err
	}

	var shifted []*models.Widget
	err = s.write("save", func(store *repository.Store) (func() []models.Event, error) {
		now := s.now()

		z, err := saveZIndex(store, in.ZIndex)
		if err != nil {
			return nil, err
		}
		shifted = ordering.ShiftedCopies(store, z, nil, now)
		if err := checkShiftOverflow(shifted); err != nil {
			return nil, err
		}

		w, err := models.NewWidget(uuid.New(), in.X, in.Y, z, in.Width, in.Height, now)
		if err != nil {
			return nil, err
		}
		saved = w

		return func() []models.Event {
			store.UpsertAll(shifted)
			store.Upsert(w)
			return append([]models.Event{models.NewWidgetEvent(models.EventCreated, w)}, shiftEvents(shifted)...)
		}, nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Shifted(len(shifted))
	s.logger.Debug("widget saved", "id", saved.ID, "z", saved.ZIndex, "shifted", len(shifted))
	return saved, nil
}

// Update заменяет геометрию и zIndex виджета, сохраняя id. Переход на
// занятый zIndex сдвигает серию, останавливаясь на освобождаемом слоте.
func (s *WidgetService) Update(ctx context.Context, id uuid.UUID, in WidgetInput) (updated *models.Widget, err error) {
	started := time.Now()
	defer func() { metrics.ObserveOperation("update", started, err) }()

	if in.ZIndex == nil {
		return nil, fmt.Errorf("%w: zIndex is required on update", models.ErrInvalidArgument)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	target := *in.ZIndex
	var shifted []*models.Widget
	err = s.write("update", func(store *repository.Store) (func() []models.Event, error) {
		now := s.now()

		old, ok := store.ByID(id)
		if !ok {
			return nil, fmt.Errorf("widget %s: %w", id, models.ErrNotFound)
		}

		shifted = nil
		if target != old.ZIndex {
			vacated := old.ZIndex
			shifted = ordering.ShiftedCopies(store, target, &vacated, now)
			if err := checkShiftOverflow(shifted); err != nil {
				return nil, err
			}
		}

		w, err := models.NewWidget(id, in.X, in.Y, target, in.Width, in.Height, now)
		if err != nil {
			return nil, err
		}
		updated = w

		return func() []models.Event {
			store.Remove(old)
			store.UpsertAll(shifted)
			store.Upsert(w)
			return append([]models.Event{models.NewWidgetEvent(models.EventUpdated, w)}, shiftEvents(shifted)...)
		}, nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Shifted(len(shifted))
	s.logger.Debug("widget updated", "id", id, "z", target, "shifted", len(shifted))
	return updated, nil
}

// Delete удаляет виджет и возвращает его. Остальные zIndex не меняются,
// разрыв остаётся.
func (s *WidgetService) Delete(ctx context.Context, id uuid.UUID) (removed *models.Widget, err error) {
	started := time.Now()
	defer func() { metrics.ObserveOperation("delete", started, err) }()

	err = s.write("delete", func(store *repository.Store) (func() []models.Event, error) {
		old, ok := store.ByID(id)
		if !ok {
			return nil, fmt.Errorf("widget %s: %w", id, models.ErrNotFound)
		}
		removed = old
		return func() []models.Event {
			store.Remove(old)
			return []models.Event{{Kind: models.EventDeleted, WidgetID: id, ZIndex: old.ZIndex, OccurredAt: s.now()}}
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("widget deleted", "id", id, "z", removed.ZIndex)
	return removed, nil
}

// DeleteAll очищает доску.
func (s *WidgetService) DeleteAll(ctx context.Context) (err error) {
	started := time.Now()
	defer func() { metrics.ObserveOperation("delete_all", started, err) }()

	err = s.write("delete_all", func(store *repository.Store) (func() []models.Event, error) {
		return func() []models.Event {
			store.Clear()
			return []models.Event{{Kind: models.EventCleared, WidgetID: uuid.Nil, OccurredAt: s.now()}}
		}, nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("board cleared")
	return nil
}

// ============================================================
// Helpers
// ============================================================

func saveZIndex(store *repository.Store, requested *int64) (int64, error) {
	if requested != nil {
		return *requested, nil
	}
	highest, ok := store.HighestZIndex()
	if !ok {
		return 0, nil
	}
	if highest == math.MaxInt64 {
		return 0, fmt.Errorf("%w: no z-index left in front of %d", models.ErrInvalidArgument, highest)
	}
	return highest + 1, nil
}

// checkShiftOverflow отклоняет сдвиг, который вывел бы виджет за
// максимальный zIndex.
func checkShiftOverflow(shifted []*models.Widget) error {
	if n := len(shifted); n > 0 && shifted[n-1].ZIndex == math.MinInt64 {
		return fmt.Errorf("%w: shifting would overflow the z-index range", models.ErrInvalidArgument)
	}
	return nil
}

func shiftEvents(shifted []*models.Widget) []models.Event {
	events := make([]models.Event, 0, len(shifted))
	for _, w := range shifted {
		events = append(events, models.NewWidgetEvent(models.EventShifted, w))
	}
	return events
}
