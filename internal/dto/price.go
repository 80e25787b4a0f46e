package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Price: денежная сумма в минимальных единицах (центах). На проводе это JSON-число
// с не более чем двумя знаками после запятой; преобразование точное, без float.
type Price int64

var (
	maxPrice = decimal.NewFromInt(math.MaxInt64)
	minPrice = decimal.NewFromInt(math.MinInt64)
)

// MarshalJSON всегда пишет два знака после запятой.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalJSON принимает число или строку с числом; null даёт 0.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("price: %w", err)
		}
	}

	minor, err := ParsePrice(raw)
	if err != nil {
		return err
	}
	*p = minor
	return nil
}

// ParsePrice разбирает десятичную запись суммы в центы.
func ParsePrice(raw string) (Price, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("price %q is not a decimal number", raw)
	}
	if d.Exponent() < -2 && !d.Equal(d.Truncate(2)) {
		return 0, fmt.Errorf("price %q has more than two fraction digits", raw)
	}
	cents := d.Shift(2)
	if cents.GreaterThan(maxPrice) || cents.LessThan(minPrice) {
		return 0, fmt.Errorf("price %q is out of range", raw)
	}
	return Price(cents.IntPart()), nil
}

// Decimal возвращает сумму в основных единицах.
func (p Price) Decimal() decimal.Decimal {
	return decimal.New(int64(p), -2)
}

// Minor возвращает сумму в центах.
func (p Price) Minor() int64 {
	return int64(p)
}

func (p Price) String() string {
	return p.Decimal().StringFixed(2)
}
