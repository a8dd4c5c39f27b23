package metrics

import (
	"errors"
	"time"

	"widget-board/internal/widgets/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================
// Prometheus Metrics for the Widget Board
// ============================================================

var (
	// operationsTotal - вызовы сервиса.
	// Labels: op (save, update, delete, delete_all, find_by_id, find_page, find_all),
	// outcome (ok, invalid_argument, not_found, error)
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "widget_board",
		Subsystem: "service",
		Name:      "operations_total",
		Help:      "Total widget service operations by outcome",
	}, []string{"op", "outcome"})

	// operationLatency - длительность вызова вместе с ожиданием блокировки.
	// Labels: op
	operationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "widget_board",
		Subsystem: "service",
		Name:      "operation_latency_seconds",
		Help:      "Widget service operation latency in seconds",
		Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	}, []string{"op"})

	// optimisticRetries - чтения, у которых штамп не прошёл проверку и
	// которые пересчитаны под shared-блокировкой.
	// Labels: op
	optimisticRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "widget_board",
		Subsystem: "lock",
		Name:      "optimistic_retries_total",
		Help:      "Reads recomputed under the shared lock after a failed optimistic validation",
	}, []string{"op"})

	// upgradeFallbacks - изменения, не сумевшие повысить блокировку и
	// пересчитанные под exclusive.
	// Labels: op
	upgradeFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "widget_board",
		Subsystem: "lock",
		Name:      "upgrade_fallbacks_total",
		Help:      "Mutations that fell back from lock upgrade to a full exclusive acquisition",
	}, []string{"op"})

	// shiftedWidgets - виджеты, сдвинутые из-за коллизий zIndex.
	shiftedWidgets = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "widget_board",
		Subsystem: "ordering",
		Name:      "shifted_widgets_total",
		Help:      "Widgets moved forward to resolve z-index collisions",
	})

	// liveWidgets - число виджетов на доске.
	liveWidgets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "widget_board",
		Subsystem: "store",
		Name:      "widgets",
		Help:      "Number of widgets currently on the board",
	})
)

// ObserveOperation учитывает результат и длительность одного вызова сервиса.
func ObserveOperation(op string, started time.Time, err error) {
	operationsTotal.WithLabelValues(op, Outcome(err)).Inc()
	operationLatency.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func OptimisticRetry(op string) {
	optimisticRetries.WithLabelValues(op).Inc()
}

func UpgradeFallback(op string) {
	upgradeFallbacks.WithLabelValues(op).Inc()
}

func Shifted(n int) {
	if n > 0 {
		shiftedWidgets.Add(float64(n))
	}
}

func SetLiveWidgets(n int64) {
	liveWidgets.Set(float64(n))
}

// Outcome переводит ошибку в значение метки outcome.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
