package memory

import (
	"github.com/planwerk/mrp/pkg/domain/entities"
	"github.com/planwerk/mrp/pkg/domain/repositories"
)

// PlanRepository keeps prior-run planned orders and changed item sets per
// plan for net-change planning
type PlanRepository struct {
	orders       map[string][]entities.PlannedOrder
	changedItems map[string]map[entities.ItemID]bool
}

// NewPlanRepository creates a new in-memory plan repository
func NewPlanRepository() *PlanRepository {
	return &PlanRepository{
		orders:       make(map[string][]entities.PlannedOrder),
		changedItems: make(map[string]map[entities.ItemID]bool),
	}
}

// Verify interface compliance
var _ repositories.PlanRepository = (*PlanRepository)(nil)

// SaveOrders replaces the stored orders for a plan
func (r *PlanRepository) SaveOrders(planID string, orders []*entities.PlannedOrder) error {
	stored := make([]entities.PlannedOrder, 0, len(orders))
	for _, order := range orders {
		stored = append(stored, *order)
	}
	r.orders[planID] = stored
	return nil
}

// MarkChanged records items whose inputs changed since the last run
func (r *PlanRepository) MarkChanged(planID string, itemIDs ...entities.ItemID) {
	changed, exists := r.changedItems[planID]
	if !exists {
		changed = make(map[entities.ItemID]bool)
		r.changedItems[planID] = changed
	}
	for _, id := range itemIDs {
		changed[id] = true
	}
}

// ClearChanged resets the changed item set after a successful run
func (r *PlanRepository) ClearChanged(planID string) {
	delete(r.changedItems, planID)
}

// GetUnconvertedOrders returns the plan's orders that are still open,
// excluding converted and cancelled ones
func (r *PlanRepository) GetUnconvertedOrders(planID string) ([]*entities.PlannedOrder, error) {
	stored := r.orders[planID]
	var orders []*entities.PlannedOrder
	for i := range stored {
		switch stored[i].Status {
		case entities.Converted, entities.Cancelled:
			continue
		}
		orders = append(orders, &stored[i])
	}
	return orders, nil
}

// GetChangedItems returns the items whose inputs changed since the last run
func (r *PlanRepository) GetChangedItems(planID string) ([]entities.ItemID, error) {
	changed := r.changedItems[planID]
	items := make([]entities.ItemID, 0, len(changed))
	for id := range changed {
		items = append(items, id)
	}
	return items, nil
}
