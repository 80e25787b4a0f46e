package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
)

// orderRow: скалярные поля заказа; позиции хранятся отдельно, как в реляционной схеме.
type orderRow struct {
	id           int64
	orderNumber  string
	customerName string
	orderDate    time.Time
}

// Store: общее in-memory состояние для репозиториев артикулов, заказов и позиций.
// Каскадное удаление позиций и обнуление ссылок на артикул выполняются под одной блокировкой.
type Store struct {
	mu       sync.RWMutex
	articles map[int64]domain.Article
	orders   map[int64]orderRow
	lines    map[int64]domain.OrderLine

	nextArticleID int64
	nextOrderID   int64
	nextLineID    int64
}

// NewStore создаёт пустое хранилище для локальной разработки и тестов.
func NewStore() *Store {
	return &Store{
		articles: make(map[int64]domain.Article),
		orders:   make(map[int64]orderRow),
		lines:    make(map[int64]domain.OrderLine),
	}
}

// linesOfLocked возвращает позиции заказа в порядке создания. Вызывать под блокировкой.
func (s *Store) linesOfLocked(orderID int64) []domain.OrderLine {
	result := make([]domain.OrderLine, 0)
	for _, line := range s.lines {
		if line.OrderID != nil && *line.OrderID == orderID {
			result = append(result, cloneLine(line))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (s *Store) orderLocked(row orderRow) domain.Order {
	return domain.Order{
		ID:           row.id,
		OrderNumber:  row.orderNumber,
		CustomerName: row.customerName,
		OrderDate:    row.orderDate,
		Lines:        s.linesOfLocked(row.id),
	}
}

// checkRefsLocked повторяет поведение внешних ключей order_lines.
func (s *Store) checkRefsLocked(line domain.OrderLine) error {
	if line.OrderID != nil {
		if _, ok := s.orders[*line.OrderID]; !ok {
			return domain.ErrUnknownReference
		}
	}
	if line.ArticleID != nil {
		if _, ok := s.articles[*line.ArticleID]; !ok {
			return domain.ErrUnknownReference
		}
	}
	return nil
}

func (s *Store) insertLineLocked(line domain.OrderLine) domain.OrderLine {
	s.nextLineID++
	line = cloneLine(line)
	line.ID = s.nextLineID
	s.lines[line.ID] = line
	return cloneLine(line)
}

// cloneLine отвязывает указатели ссылок от вызывающего кода.
func cloneLine(line domain.OrderLine) domain.OrderLine {
	line.OrderID = cloneRef(line.OrderID)
	line.ArticleID = cloneRef(line.ArticleID)
	return line
}

func cloneRef(ref *int64) *int64 {
	if ref == nil {
		return nil
	}
	v := *ref
	return &v
}
