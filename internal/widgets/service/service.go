// Package service - граница транзакций доски виджетов.
//
// WidgetService владеет хранилищем и одной Stamped-блокировкой. Чтения идут
// по последнему опубликованному снимку под оптимистичным штампом и один раз
// повторяются под shared-блокировкой, если за это время писал писатель.
// Изменения планируются под shared-блокировкой, затем она повышается до
// exclusive и план применяется. Если повысить не удалось, shared-захват
// отпускается, берётся exclusive и план считается заново: старый мог
// устареть.
//
// Виджеты, которые отдаёт сервис, общие и неизменяемые: менять их нельзя.
package service

import (
	"context"
	"sync/atomic"
	"time"

	"widget-board/internal/common/lock"
	"widget-board/internal/common/logging"
	"widget-board/internal/widgets/metrics"
	"widget-board/internal/widgets/models"
	"widget-board/internal/widgets/repository"

	"github.com/charmbracelet/log"
)

// Recorder получает зафиксированные изменения в порядке фиксации. Append
// вызывается из одной горутины, по одному пакету на изменение.
type Recorder interface {
	Append(ctx context.Context, events ...models.Event) error
}

type Option func(*WidgetService)

// WithRecorder пишет каждое зафиксированное изменение в r. Сервис с
// рекордером нужно закрыть через Close, чтобы дописать очередь.
func WithRecorder(r Recorder) Option {
	return func(s *WidgetService) { s.recorder = r }
}

func WithLogger(l *log.Logger) Option {
	return func(s *WidgetService) { s.logger = l }
}

// WithClock подменяет источник времени для modifiedAt.
func WithClock(now func() time.Time) Option {
	return func(s *WidgetService) { s.now = now }
}

// ============================================================
// Widget Service
// ============================================================

type WidgetService struct {
	lock     *lock.Stamped
	store    *repository.Store
	snapshot atomic.Pointer[repository.Store]
	recorder Recorder
	logger   *log.Logger
	now      func() time.Time

	// events ставятся в очередь под exclusive-блокировкой, поэтому их
	// порядок совпадает с порядком фиксации. closed защищён ею же.
	events  chan []models.Event
	drained chan struct{}
	closed  bool
}

const recorderQueueSize = 1024

// New оборачивает store. Сервис становится его единственным писателем,
// напрямую store после этого трогать нельзя.
func New(store *repository.Store, opts ...Option) *WidgetService {
	s := &WidgetService{
		lock:   lock.NewStamped(),
		store:  store,
		logger: logging.Discard(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(store.Clone())
	metrics.SetLiveWidgets(store.Count())

	if s.recorder != nil {
		s.events = make(chan []models.Event, recorderQueueSize)
		s.drained = make(chan struct{})
		go s.drain()
	}
	return s
}

// Close останавливает приём событий и ждёт, пока рекордер допишет очередь.
// Изменения после Close в журнал не попадают.
func (s *WidgetService) Close() {
	if s.events == nil {
		return
	}
	s.lock.Lock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	s.lock.Unlock()
	<-s.drained
}

// ============================================================
// Concurrency protocol
// ============================================================

// read выполняет fn по опубликованному снимку под оптимистичным штампом.
// Если за это время блокировку брал писатель, fn выполняется ещё раз по
// живому хранилищу под shared-блокировкой. fn только присваивает результаты.
func (s *WidgetService) read(op string, fn func(*repository.Store)) {
	if stamp, ok := s.lock.TryOptimisticRead(); ok {
		fn(s.snapshot.Load())
		if s.lock.Validate(stamp) {
			return
		}
		metrics.OptimisticRetry(op)
	}

	s.lock.RLock()
	defer s.lock.RUnlock()
	fn(s.store)
}

// plan читает хранилище, не меняя его, и возвращает записи для применения.
// За один вызов может выполниться несколько раз. apply возвращает события
// для журнала.
type plan func(store *repository.Store) (apply func() []models.Event, err error)

// write выполняет p под shared-блокировкой, повышает её и применяет план.
// Если повышение не удалось, ждёт exclusive и выполняет p заново.
func (s *WidgetService) write(op string, p plan) error {
	s.lock.RLock()
	exclusive := false

	for {
		apply, err := p(s.store)
		if err != nil {
			if exclusive {
				s.lock.Unlock()
			} else {
				s.lock.RUnlock()
			}
			return err
		}

		if !exclusive && !s.lock.TryUpgrade() {
			metrics.UpgradeFallback(op)
			s.logger.Debug("lock upgrade refused, retrying exclusively", "op", op)
			s.lock.RUnlock()
			s.lock.Lock()
			exclusive = true
			continue
		}

		events := apply()
		s.snapshot.Store(s.store.Clone())
		metrics.SetLiveWidgets(s.store.Count())
		s.enqueue(events)
		s.lock.Unlock()
		return nil
	}
}

// enqueue вызывается под exclusive-блокировкой. Полная очередь тормозит
// писателей, пока рекордер её не разберёт.
func (s *WidgetService) enqueue(events []models.Event) {
	if s.events == nil || s.closed || len(events) == 0 {
		return
	}
	s.events <- events
}

// drain - единственный потребитель очереди. Ошибка журнала только
// логируется: изменение доски уже зафиксировано.
func (s *WidgetService) drain() {
	defer close(s.drained)
	for events := range s.events {
		if err := s.recorder.Append(context.Background(), events...); err != nil {
			s.logger.Error("journal append failed", "events", len(events), "err", err)
		}
	}
}
