package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BomLine represents a single line in a bill of materials
type BomLine struct {
	ParentID    ItemID
	ComponentID ItemID
	QuantityPer decimal.Decimal
	// ScrapRate in [0, 1); component demand is inflated by 1/(1-ScrapRate)
	ScrapRate decimal.Decimal
	// IsPhantom marks a pass-through assembly whose components are
	// consumed directly by the parent
	IsPhantom bool
	// OperationSeq is the routing operation at which the component is consumed
	OperationSeq int
	// OffsetDays shifts the component's consumption relative to the
	// parent's planned release
	OffsetDays int
}

// NewBomLine creates a validated BomLine
func NewBomLine(parentID, componentID ItemID, quantityPer, scrapRate decimal.Decimal) (*BomLine, error) {
	if string(parentID) == "" {
		return nil, fmt.Errorf("parent item id cannot be empty")
	}
	if string(componentID) == "" {
		return nil, fmt.Errorf("component item id cannot be empty")
	}
	if parentID == componentID {
		return nil, fmt.Errorf("parent and component cannot be the same item: %s", parentID)
	}
	if !quantityPer.IsPositive() {
		return nil, fmt.Errorf("quantity per must be positive, got %s", quantityPer)
	}
	if scrapRate.IsNegative() || scrapRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("scrap rate must be in [0, 1), got %s", scrapRate)
	}

	return &BomLine{
		ParentID:    parentID,
		ComponentID: componentID,
		QuantityPer: quantityPer,
		ScrapRate:   scrapRate,
	}, nil
}

// CoProduct represents an alternate output produced alongside the primary
// item of a bill of materials
type CoProduct struct {
	ParentID ItemID
	ItemID   ItemID
	// YieldPercent of the parent's order quantity produced as this output
	YieldPercent decimal.Decimal
	// CostAllocationPercent of the order cost carried by this output
	CostAllocationPercent decimal.Decimal
}

// NewCoProduct creates a validated CoProduct
func NewCoProduct(parentID, itemID ItemID, yieldPercent, costAllocationPercent decimal.Decimal) (*CoProduct, error) {
	if string(parentID) == "" {
		return nil, fmt.Errorf("parent item id cannot be empty")
	}
	if string(itemID) == "" {
		return nil, fmt.Errorf("co-product item id cannot be empty")
	}
	if parentID == itemID {
		return nil, fmt.Errorf("co-product cannot be its own parent: %s", parentID)
	}
	if !yieldPercent.IsPositive() {
		return nil, fmt.Errorf("yield percent must be positive, got %s", yieldPercent)
	}

	return &CoProduct{
		ParentID:              parentID,
		ItemID:                itemID,
		YieldPercent:          yieldPercent,
		CostAllocationPercent: costAllocationPercent,
	}, nil
}
