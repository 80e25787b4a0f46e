package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw     string
		want    Price
		wantErr bool
	}{
		{raw: "12", want: 1200},
		{raw: "12.5", want: 1250},
		{raw: "12.50", want: 1250},
		{raw: "0.01", want: 1},
		{raw: "-3.10", want: -310},
		{raw: "1e2", want: 10000},
		{raw: "12.500", want: 1250},
		{raw: "12.345", wantErr: true},
		{raw: "1/4", wantErr: true},
		{raw: "1/3", wantErr: true},
		{raw: "0x10", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "99999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParsePrice(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %d", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParsePrice(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestPriceString(t *testing.T) {
	tests := map[Price]string{
		0:     "0.00",
		5:     "0.05",
		1250:  "12.50",
		-310:  "-3.10",
		10000: "100.00",
	}
	for price, want := range tests {
		if got := price.String(); got != want {
			t.Errorf("Price(%d).String() = %q, want %q", int64(price), got, want)
		}
	}
}

func TestPriceDecimal(t *testing.T) {
	if got := Price(1999).Decimal().String(); got != "19.99" {
		t.Fatalf("Price(1999).Decimal() = %s", got)
	}
	if got := Price(-5).Decimal().StringFixed(2); got != "-0.05" {
		t.Fatalf("Price(-5).Decimal() = %s", got)
	}
}

func TestPriceJSON(t *testing.T) {
	var body struct {
		Price Price `json:"price"`
	}

	if err := json.Unmarshal([]byte(`{"price": 19.99}`), &body); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if body.Price != 1999 {
		t.Fatalf("unexpected price: %d", body.Price)
	}

	if err := json.Unmarshal([]byte(`{"price": "7.5"}`), &body); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if body.Price != 750 {
		t.Fatalf("unexpected price: %d", body.Price)
	}

	if err := json.Unmarshal([]byte(`{"price": 0.001}`), &body); err == nil {
		t.Fatal("expected error for three fraction digits")
	}

	if err := json.Unmarshal([]byte(`{"price": "1/4"}`), &body); err == nil {
		t.Fatal("expected error for a fraction")
	} else if !strings.Contains(err.Error(), "not a decimal number") {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := json.Marshal(struct {
		Price Price `json:"price"`
	}{Price: 1999})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"price":19.99}` {
		t.Fatalf("unexpected json: %s", raw)
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2024-12-20"`), &d); err != nil {
		t.Fatalf("unmarshal date: %v", err)
	}
	if !d.Equal(time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date: %s", d.Time)
	}

	if err := json.Unmarshal([]byte(`"2024-12-20T23:30:00Z"`), &d); err != nil {
		t.Fatalf("unmarshal rfc3339: %v", err)
	}
	if !d.Equal(time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("time of day must be dropped, got %s", d.Time)
	}

	if err := json.Unmarshal([]byte(`"20.12.2024"`), &d); err == nil {
		t.Fatal("expected error for unsupported layout")
	}

	raw, err := json.Marshal(NewDate(time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("marshal date: %v", err)
	}
	if string(raw) != `"2024-01-02"` {
		t.Fatalf("unexpected json: %s", raw)
	}
}
