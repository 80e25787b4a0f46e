package sqlstore

import (
	"database/sql"
	"fmt"
	"time"
)

// timeLayouts: строковые форматы времени, которые драйверы возвращают для TEXT-колонок.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// scanTime принимает time.Time (pgx), unix-наносекунды (SQLite INTEGER) и строки.
type scanTime struct {
	dst *time.Time
}

func (s scanTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s.dst = time.Time{}
	case time.Time:
		*s.dst = v.UTC()
	case int64:
		*s.dst = time.Unix(0, v).UTC()
	case []byte:
		return s.parse(string(v))
	case string:
		return s.parse(v)
	default:
		return fmt.Errorf("unsupported time value %T", src)
	}
	return nil
}

func (s scanTime) parse(raw string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			*s.dst = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unsupported time format %q", raw)
}

// EncodeUnixNano кодирует время в INTEGER-колонку SQLite; нулевое время становится NULL.
func EncodeUnixNano(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().UnixNano()
}

func refFromNull(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}
