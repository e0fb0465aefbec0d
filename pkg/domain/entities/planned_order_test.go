package entities

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newTestOrder(t *testing.T) *PlannedOrder {
	t.Helper()
	release := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	due := release.AddDate(0, 0, 7)
	order, err := NewPlannedOrder("GEAR-100", Production, decimal.NewFromInt(50), release, due, LotForLot)
	if err != nil {
		t.Fatalf("Expected valid order creation to succeed: %v", err)
	}
	return order
}

func TestPlannedOrder_Validation(t *testing.T) {
	release := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	due := release.AddDate(0, 0, 7)

	order := newTestOrder(t)
	if order.Status != Draft {
		t.Errorf("Expected new order in Draft status, got %s", order.Status)
	}

	testCases := []struct {
		name     string
		itemID   ItemID
		quantity decimal.Decimal
		release  time.Time
		due      time.Time
	}{
		{"empty item", "", decimal.NewFromInt(10), release, due},
		{"zero quantity", "GEAR-100", decimal.Zero, release, due},
		{"negative quantity", "GEAR-100", decimal.NewFromInt(-5), release, due},
		{"release after due", "GEAR-100", decimal.NewFromInt(10), due, release},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPlannedOrder(tc.itemID, Production, tc.quantity, tc.release, tc.due, LotForLot)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
		})
	}
}

func TestPlannedOrder_LifecycleTransitions(t *testing.T) {
	order := newTestOrder(t)

	steps := []PlannedOrderStatus{Confirmed, Released}
	for _, next := range steps {
		if err := order.Transition(next); err != nil {
			t.Fatalf("Expected transition to %s to succeed: %v", next, err)
		}
		if order.Status != next {
			t.Errorf("Expected status %s, got %s", next, order.Status)
		}
	}

	if err := order.Convert("WO-4711"); err != nil {
		t.Fatalf("Expected conversion of released order to succeed: %v", err)
	}
	if order.Status != Converted {
		t.Errorf("Expected status Converted, got %s", order.Status)
	}
	if order.ConvertedRef != "WO-4711" {
		t.Errorf("Expected converted ref WO-4711, got %s", order.ConvertedRef)
	}
}

func TestPlannedOrder_InvalidTransitions(t *testing.T) {
	testCases := []struct {
		name string
		from PlannedOrderStatus
		to   PlannedOrderStatus
	}{
		{"draft to released", Draft, Released},
		{"draft to converted", Draft, Converted},
		{"confirmed to converted", Confirmed, Converted},
		{"confirmed to draft", Confirmed, Draft},
		{"released to confirmed", Released, Confirmed},
		{"converted is terminal", Converted, Cancelled},
		{"cancelled is terminal", Cancelled, Confirmed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			order := newTestOrder(t)
			order.Status = tc.from

			err := order.Transition(tc.to)
			if err == nil {
				t.Fatalf("Expected transition %s -> %s to be rejected", tc.from, tc.to)
			}

			var invalid *InvalidTransitionError
			if !errors.As(err, &invalid) {
				t.Fatalf("Expected InvalidTransitionError, got %T", err)
			}
			if invalid.From != tc.from || invalid.To != tc.to {
				t.Errorf("Expected error for %s -> %s, got %s -> %s", tc.from, tc.to, invalid.From, invalid.To)
			}
			if order.Status != tc.from {
				t.Errorf("Expected status unchanged at %s, got %s", tc.from, order.Status)
			}
		})
	}
}

func TestPlannedOrder_CancelFromNonTerminalStates(t *testing.T) {
	for _, from := range []PlannedOrderStatus{Draft, Confirmed, Released} {
		order := newTestOrder(t)
		order.Status = from
		if err := order.Cancel(); err != nil {
			t.Fatalf("Expected cancel from %s to succeed: %v", from, err)
		}
		if order.Status != Cancelled {
			t.Errorf("Expected status Cancelled, got %s", order.Status)
		}
	}
}

func TestPlannedOrder_ConvertRequiresReleased(t *testing.T) {
	order := newTestOrder(t)
	if err := order.Convert("WO-1"); err == nil {
		t.Fatal("Expected conversion of draft order to fail")
	}

	order.Status = Released
	if err := order.Convert(""); err == nil {
		t.Fatal("Expected conversion without execution reference to fail")
	}
	if order.Status != Released {
		t.Errorf("Expected failed conversion to leave status Released, got %s", order.Status)
	}
}
