// Package ordering разрешает коллизии zIndex на доске.
//
// Виджет, поставленный на занятый zIndex, сдвигает занявшего и всю идущую
// следом непрерывную серию на один шаг вперёд. Серия заканчивается на первом
// разрыве больше единицы, так что вставка перенумеровывает только тех, с кем
// реально столкнулась.
package ordering

import (
	"time"

	"widget-board/internal/widgets/models"
)

// ZIndexView - часть хранилища, нужная для расчёта сдвига.
type ZIndexView interface {
	CeilingZIndex(target int64) (int64, bool)
	TailFromZIndex(zIndex int64) []*models.Widget
}

// NeedsShift сообщает, занят ли target.
func NeedsShift(view ZIndexView, target int64) bool {
	ceil, ok := view.CeilingZIndex(target)
	return ok && ceil == target
}

// ShiftedCopies возвращает виджеты, которые нужно сдвинуть, чтобы занять
// target: уже сдвинутые, с отметкой now, по возрастанию zIndex.
//
// Обход начинается с target и останавливается на первом разрыве больше
// единицы относительно предыдущего виджета серии. Если задан exclude, обход
// останавливается и на этом zIndex: update передаёт свой старый слот, чтобы
// виджет не толкал сам себя. Возвращаются новые значения, view не меняется.
func ShiftedCopies(view ZIndexView, target int64, exclude *int64, now time.Time) []*models.Widget {
	if !NeedsShift(view, target) {
		return nil
	}

	tail := view.TailFromZIndex(target)
	shifted := make([]*models.Widget, 0, len(tail))
	for i, w := range tail {
		if i > 0 && w.ZIndex-tail[i-1].ZIndex > 1 {
			break
		}
		if exclude != nil && w.ZIndex == *exclude {
			break
		}
		shifted = append(shifted, w.Shifted(now))
	}
	return shifted
}
