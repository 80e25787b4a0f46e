package domain

import "github.com/samber/lo"

// LineChanges описывает, что нужно сделать с позициями заказа при сохранении.
type LineChanges struct {
	// Removed: позиции, которые нужно явно удалить из хранилища.
	Removed []OrderLine
	// Updated: существующие позиции с перезаписанными полями; ID не меняется.
	Updated []OrderLine
	// Added: новые позиции без ID, его назначит хранилище.
	Added []OrderLine
}

// Empty сообщает, что позиции не затронуты.
func (c LineChanges) Empty() bool {
	return len(c.Removed) == 0 && len(c.Updated) == 0 && len(c.Added) == 0
}

// ReconcileLines приводит order.Lines к входящему набору позиций.
//
// Позиции, чьих ID нет во входящем наборе, убираются из заказа и попадают в Removed.
// Входящая позиция с ID существующей перезаписывает её изменяемые поля (артикул,
// название, количество, цену), остальные входящие добавляются как новые с ID=0.
// Порядок: сначала удаление, затем upsert.
func ReconcileLines(order *Order, incoming []OrderLine) LineChanges {
	var changes LineChanges

	incomingIDs := lo.SliceToMap(incoming, func(line OrderLine) (int64, struct{}) {
		return line.ID, struct{}{}
	})
	isKept := func(line OrderLine, _ int) bool {
		_, ok := incomingIDs[line.ID]
		return ok
	}

	changes.Removed = lo.Reject(order.Lines, isKept)
	lines := lo.Filter(order.Lines, isKept)

	positions := make(map[int64]int, len(lines))
	for i, line := range lines {
		positions[line.ID] = i
	}

	var updatedOrder []int64
	updated := make(map[int64]struct{}, len(lines))
	for _, in := range incoming {
		idx, exists := positions[in.ID]
		if !exists {
			line := OrderLine{
				ArticleID:   in.ArticleID,
				ProductName: in.ProductName,
				Quantity:    in.Quantity,
				PriceMinor:  in.PriceMinor,
			}
			if order.ID != 0 {
				orderID := order.ID
				line.OrderID = &orderID
			}
			lines = append(lines, line)
			changes.Added = append(changes.Added, line)
			continue
		}

		current := &lines[idx]
		current.ArticleID = in.ArticleID
		current.ProductName = in.ProductName
		current.Quantity = in.Quantity
		current.PriceMinor = in.PriceMinor

		if _, seen := updated[current.ID]; !seen {
			updated[current.ID] = struct{}{}
			updatedOrder = append(updatedOrder, current.ID)
		}
	}

	for _, id := range updatedOrder {
		changes.Updated = append(changes.Updated, lines[positions[id]])
	}

	order.Lines = lines
	return changes
}
