package mapper

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"widget-board/internal/widgets/models"
)

// ============================================================
// Renderer
// ============================================================

const (
	defaultCanvas = 1000
	canvasPadding = 10
)

// palette перебирается по zIndex, соседние виджеты различимы.
var palette = []string{"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f", "#edc948", "#b07aa1", "#ff9da7"}

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render рисует виджеты в SVG. widgets отсортированы по возрастанию zIndex,
// поздние элементы рисуются поверх ранних. Ось y доски направлена вверх, в
// SVG вниз, поэтому она переворачивается.
func (r *Renderer) Render(widgets []*models.Widget) string {
	minX, minY, maxX, maxY := r.boardBounds(widgets)
	width := maxX - minX + 2*canvasPadding
	height := maxY - minY + 2*canvasPadding

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		formatFloat(width), formatFloat(height), formatFloat(width), formatFloat(height)))
	builder.WriteString("\n")

	for _, w := range widgets {
		builder.WriteString("  ")
		builder.WriteString(r.renderWidget(w, minX, maxY))
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	return builder.String()
}

// ============================================================
// Sizing
// ============================================================

func (r *Renderer) boardBounds(widgets []*models.Widget) (minX, minY, maxX, maxY float64) {
	if len(widgets) == 0 {
		return 0, 0, defaultCanvas, defaultCanvas
	}

	minX, minY = math.MaxFloat64, math.MaxFloat64
	maxX, maxY = -math.MaxFloat64, -math.MaxFloat64
	for _, w := range widgets {
		minX = math.Min(minX, float64(w.BottomLeft.X))
		minY = math.Min(minY, float64(w.BottomLeft.Y))
		maxX = math.Max(maxX, float64(w.UpperRight.X))
		maxY = math.Max(maxY, float64(w.UpperRight.Y))
	}
	return minX, minY, maxX, maxY
}

// ============================================================
// Element renderers
// ============================================================

func (r *Renderer) renderWidget(w *models.Widget, minX, maxY float64) string {
	x := float64(w.BottomLeft.X) - minX + canvasPadding
	y := maxY - float64(w.UpperRight.Y) + canvasPadding
	width := float64(w.UpperRight.X - w.BottomLeft.X)
	height := float64(w.UpperRight.Y - w.BottomLeft.Y)

	return fmt.Sprintf(`<rect id="%s" data-z="%d" x="%s" y="%s" width="%s" height="%s" fill="%s" fill-opacity="0.8" stroke="#000" />`,
		w.ID, w.ZIndex, formatFloat(x), formatFloat(y), formatFloat(width), formatFloat(height), colorFor(w.ZIndex))
}

func colorFor(z int64) string {
	i := z % int64(len(palette))
	if i < 0 {
		i += int64(len(palette))
	}
	return palette[i]
}

// ============================================================
// Formatting helpers
// ============================================================

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
