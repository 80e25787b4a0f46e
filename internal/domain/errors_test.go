package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "order", err: ErrOrderNotFound, want: true},
		{name: "article", err: ErrArticleNotFound, want: true},
		{name: "order line", err: ErrOrderLineNotFound, want: true},
		{name: "wrapped", err: fmt.Errorf("load: %w", ErrOrderNotFound), want: true},
		{name: "argument", err: ErrInvalidArgument, want: false},
		{name: "nil error", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNotFoundMessages(t *testing.T) {
	if ErrOrderNotFound.Error() != "Order not found" {
		t.Fatalf("unexpected message: %q", ErrOrderNotFound.Error())
	}
	if ErrArticleNotFound.Error() != "Article not found" {
		t.Fatalf("unexpected message: %q", ErrArticleNotFound.Error())
	}
	if ErrOrderLineNotFound.Error() != "OrderLine not found" {
		t.Fatalf("unexpected message: %q", ErrOrderLineNotFound.Error())
	}
}

func TestValidationError(t *testing.T) {
	if err := NewValidationError(nil); err != nil {
		t.Fatalf("expected nil for empty problems, got %v", err)
	}

	err := NewValidationError([]error{ErrCustomerNameRequired, ErrLinePriceNegative})
	if !IsInvalidArgument(err) {
		t.Fatal("validation error must be an invalid argument")
	}
	if !errors.Is(err, ErrLinePriceNegative) {
		t.Fatal("validation error must expose its problems")
	}
	want := "customer name is required; order line price must be non-negative"
	if err.Error() != want {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	single := NewValidationError([]error{ErrOrderDateRequired})
	if single.Error() != "order date is required" {
		t.Fatalf("unexpected single message: %q", single.Error())
	}
}

func TestIsInvalidArgument_LineIDMismatch(t *testing.T) {
	if !IsInvalidArgument(ErrOrderLineIDMismatch) {
		t.Fatal("line id mismatch must be an invalid argument")
	}
	if IsInvalidArgument(ErrOrderLineNotFound) {
		t.Fatal("not found must not be an invalid argument")
	}
}

func TestIsIdempotencyConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "idempotency already exists", err: ErrIdempotencyKeyAlreadyExists, want: true},
		{name: "idempotency hash mismatch", err: ErrIdempotencyHashMismatch, want: true},
		{name: "wrapped idempotency conflict", err: errors.Join(ErrIdempotencyHashMismatch, errors.New("extra context")), want: true},
		{name: "non idempotency error", err: ErrOrderNotFound, want: false},
		{name: "nil error", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsIdempotencyConflict(tt.err); got != tt.want {
				t.Errorf("IsIdempotencyConflict() = %v, want %v", got, tt.want)
			}
		})
	}
}
