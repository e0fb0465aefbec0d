package memory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/planwerk/mrp/pkg/domain/entities"
)

func newStoredOrder(t *testing.T, itemID entities.ItemID, status entities.PlannedOrderStatus) *entities.PlannedOrder {
	t.Helper()
	release := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	order, err := entities.NewPlannedOrder(itemID, entities.Production, decimal.NewFromInt(10),
		release, release.AddDate(0, 0, 7), entities.LotForLot)
	if err != nil {
		t.Fatalf("Failed to create planned order: %v", err)
	}
	order.Status = status
	return order
}

func TestPlanRepository_GetUnconvertedOrders(t *testing.T) {
	repo := NewPlanRepository()

	orders := []*entities.PlannedOrder{
		newStoredOrder(t, "DRAFT_ITEM", entities.Draft),
		newStoredOrder(t, "CONFIRMED_ITEM", entities.Confirmed),
		newStoredOrder(t, "RELEASED_ITEM", entities.Released),
		newStoredOrder(t, "CONVERTED_ITEM", entities.Converted),
		newStoredOrder(t, "CANCELLED_ITEM", entities.Cancelled),
	}
	if err := repo.SaveOrders("plan-1", orders); err != nil {
		t.Fatalf("Failed to save orders: %v", err)
	}

	open, err := repo.GetUnconvertedOrders("plan-1")
	if err != nil {
		t.Fatalf("Failed to get unconverted orders: %v", err)
	}
	if len(open) != 3 {
		t.Fatalf("Expected 3 open orders, got %d", len(open))
	}
	for _, order := range open {
		if order.Status == entities.Converted || order.Status == entities.Cancelled {
			t.Errorf("Expected terminal orders excluded, got %s for %s", order.Status, order.ItemID)
		}
	}
}

func TestPlanRepository_SaveOrdersReplaces(t *testing.T) {
	repo := NewPlanRepository()

	first := []*entities.PlannedOrder{newStoredOrder(t, "ITEM_A", entities.Draft)}
	if err := repo.SaveOrders("plan-1", first); err != nil {
		t.Fatalf("Failed to save first orders: %v", err)
	}

	second := []*entities.PlannedOrder{
		newStoredOrder(t, "ITEM_B", entities.Draft),
		newStoredOrder(t, "ITEM_C", entities.Draft),
	}
	if err := repo.SaveOrders("plan-1", second); err != nil {
		t.Fatalf("Failed to save second orders: %v", err)
	}

	open, err := repo.GetUnconvertedOrders("plan-1")
	if err != nil {
		t.Fatalf("Failed to get orders: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("Expected 2 orders after replace, got %d", len(open))
	}
	for _, order := range open {
		if order.ItemID == "ITEM_A" {
			t.Error("Expected first save to be replaced, found ITEM_A")
		}
	}
}

func TestPlanRepository_ChangedItems(t *testing.T) {
	repo := NewPlanRepository()

	repo.MarkChanged("plan-1", "ITEM_A", "ITEM_B")
	repo.MarkChanged("plan-1", "ITEM_B")
	repo.MarkChanged("plan-2", "ITEM_C")

	changed, err := repo.GetChangedItems("plan-1")
	if err != nil {
		t.Fatalf("Failed to get changed items: %v", err)
	}
	if len(changed) != 2 {
		t.Errorf("Expected 2 changed items, got %d", len(changed))
	}

	repo.ClearChanged("plan-1")
	changed, err = repo.GetChangedItems("plan-1")
	if err != nil {
		t.Fatalf("Failed to get changed items after clear: %v", err)
	}
	if len(changed) != 0 {
		t.Errorf("Expected no changed items after clear, got %d", len(changed))
	}

	// other plans are untouched
	other, err := repo.GetChangedItems("plan-2")
	if err != nil {
		t.Fatalf("Failed to get changed items for plan-2: %v", err)
	}
	if len(other) != 1 {
		t.Errorf("Expected 1 changed item for plan-2, got %d", len(other))
	}
}
