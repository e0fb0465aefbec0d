package memory

import (
	"github.com/shopspring/decimal"

	"github.com/planwerk/mrp/pkg/domain/entities"
	"github.com/planwerk/mrp/pkg/domain/repositories"
)

// SupplyRepository provides in-memory stock and open supply storage
type SupplyRepository struct {
	onHand   map[entities.ItemID]decimal.Decimal
	receipts []entities.ScheduledReceipt
}

// NewSupplyRepository creates a new in-memory supply repository
func NewSupplyRepository() *SupplyRepository {
	return &SupplyRepository{
		onHand: make(map[entities.ItemID]decimal.Decimal),
	}
}

// Verify interface compliance
var _ repositories.SupplyRepository = (*SupplyRepository)(nil)

// SetOnHand records on-hand stock for an item
func (r *SupplyRepository) SetOnHand(itemID entities.ItemID, quantity decimal.Decimal) {
	r.onHand[itemID] = quantity
}

// AddScheduledReceipt adds an open supply order
func (r *SupplyRepository) AddScheduledReceipt(receipt entities.ScheduledReceipt) {
	r.receipts = append(r.receipts, receipt)
}

// GetAllOnHand returns on-hand stock per item
func (r *SupplyRepository) GetAllOnHand() (map[entities.ItemID]decimal.Decimal, error) {
	onHand := make(map[entities.ItemID]decimal.Decimal, len(r.onHand))
	for id, qty := range r.onHand {
		onHand[id] = qty
	}
	return onHand, nil
}

// GetScheduledReceipts returns all open supply orders
func (r *SupplyRepository) GetScheduledReceipts() ([]*entities.ScheduledReceipt, error) {
	var receipts []*entities.ScheduledReceipt
	for i := range r.receipts {
		receipts = append(receipts, &r.receipts[i])
	}
	return receipts, nil
}
