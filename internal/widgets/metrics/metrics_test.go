package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"widget-board/internal/widgets/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "invalid_argument", Outcome(fmt.Errorf("size: %w", models.ErrInvalidArgument)))
	assert.Equal(t, "not_found", Outcome(fmt.Errorf("widget x: %w", models.ErrNotFound)))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}

func TestObserveOperation(t *testing.T) {
	before := testutil.ToFloat64(operationsTotal.WithLabelValues("metrics_test", "not_found"))

	ObserveOperation("metrics_test", time.Now(), models.ErrNotFound)

	assert.Equal(t, before+1, testutil.ToFloat64(operationsTotal.WithLabelValues("metrics_test", "not_found")))
}

func TestShiftedIgnoresEmptyRuns(t *testing.T) {
	before := testutil.ToFloat64(shiftedWidgets)

	Shifted(0)
	Shifted(3)

	assert.Equal(t, before+3, testutil.ToFloat64(shiftedWidgets))
}

func TestSetLiveWidgets(t *testing.T) {
	SetLiveWidgets(42)
	assert.Equal(t, float64(42), testutil.ToFloat64(liveWidgets))
}
