package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CapacityStatus classifies a work center's load in one bucket
type CapacityStatus int

const (
	CapacityNormal CapacityStatus = iota
	CapacityWarning
	CapacityOverload
)

// String method for CapacityStatus enum
func (s CapacityStatus) String() string {
	switch s {
	case CapacityNormal:
		return "Normal"
	case CapacityWarning:
		return "Warning"
	case CapacityOverload:
		return "Overload"
	default:
		return "Unknown"
	}
}

// CapacityLoadDetail is the traceable contribution of one order operation
// to a work center bucket
type CapacityLoadDetail struct {
	OrderID      uuid.UUID
	ItemID       ItemID
	OperationSeq int
	WorkCenterID WorkCenterID
	Period       int
	SetupHours   decimal.Decimal
	RunHours     decimal.Decimal
	QueueHours   decimal.Decimal
	MoveHours    decimal.Decimal
	TotalHours   decimal.Decimal
	// ShiftedHours records load moved out of this bucket by finite leveling
	ShiftedHours decimal.Decimal
	// ShiftedToPeriod is the receiving bucket, or -1 when nothing moved
	ShiftedToPeriod int
}

// CapacityRequirement aggregates required versus available load for one
// work center and bucket
type CapacityRequirement struct {
	WorkCenterID      WorkCenterID
	Period            int
	PeriodStart       time.Time
	AvailableCapacity decimal.Decimal
	RequiredCapacity  decimal.Decimal
	// LoadPercent is RequiredCapacity / AvailableCapacity * 100
	LoadPercent decimal.Decimal
	Status      CapacityStatus
	Details     []*CapacityLoadDetail
}
