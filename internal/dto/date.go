package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
)

// DateLayout: формат даты заказа на проводе.
const DateLayout = "2006-01-02"

// Date: календарная дата без времени (YYYY-MM-DD).
type Date struct {
	time.Time
}

// NewDate отбрасывает время суток.
func NewDate(t time.Time) Date {
	return Date{Time: domain.DateOnly(t)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(DateLayout))
}

// UnmarshalJSON принимает YYYY-MM-DD и, для совместимости с клиентами, RFC3339.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		d.Time = time.Time{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("orderDate: %w", err)
	}

	if t, err := time.Parse(DateLayout, raw); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("orderDate %q must be YYYY-MM-DD", raw)
	}
	d.Time = domain.DateOnly(t)
	return nil
}
