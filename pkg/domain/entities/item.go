package entities

import (
	"github.com/shopspring/decimal"
)

// ItemID represents a unique item identifier
type ItemID string

// WorkCenterID represents a unique work center identifier
type WorkCenterID string

// OrderType represents the replenishment type of an item or planned order
type OrderType int

const (
	Production OrderType = iota
	Purchase
)

// String method for OrderType enum
func (o OrderType) String() string {
	switch o {
	case Production:
		return "Production"
	case Purchase:
		return "Purchase"
	default:
		return "Unknown"
	}
}

// LotSizePolicy represents the lot sizing policy for an item. The zero
// value is unspecified: such items use the plan's default policy.
type LotSizePolicy int

const (
	PolicyUnspecified LotSizePolicy = iota
	LotForLot
	FixedOrderQuantity
	PeriodsOfSupply
)

// String method for LotSizePolicy enum
func (l LotSizePolicy) String() string {
	switch l {
	case PolicyUnspecified:
		return "Unspecified"
	case LotForLot:
		return "LotForLot"
	case FixedOrderQuantity:
		return "FixedOrderQuantity"
	case PeriodsOfSupply:
		return "PeriodsOfSupply"
	default:
		return "Unknown"
	}
}

// Item represents immutable item master data for a planning run
type Item struct {
	ID            ItemID
	Code          string
	Name          string
	UnitOfMeasure string
	LeadTimeDays  int
	SafetyStock   decimal.Decimal
	LotSizePolicy LotSizePolicy
	// FixedLotSize is the lot size used by FixedOrderQuantity
	FixedLotSize decimal.Decimal
	// SupplyPeriods is the forward window used by PeriodsOfSupply
	SupplyPeriods int
	OrderType     OrderType
	// MaxOrderQty caps a single planned order; zero means unlimited
	MaxOrderQty decimal.Decimal
}
