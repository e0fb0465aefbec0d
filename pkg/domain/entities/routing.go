package entities

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// WorkCenterType represents the kind of resource a work center provides
type WorkCenterType int

const (
	Machine WorkCenterType = iota
	Labor
	Subcontract
	Mixed
)

// String method for WorkCenterType enum
func (w WorkCenterType) String() string {
	switch w {
	case Machine:
		return "Machine"
	case Labor:
		return "Labor"
	case Subcontract:
		return "Subcontract"
	case Mixed:
		return "Mixed"
	default:
		return "Unknown"
	}
}

// Operation represents a single routing step bound to a work center
type Operation struct {
	Sequence     int
	Name         string
	WorkCenterID WorkCenterID
	// SetupHours is incurred once per order
	SetupHours decimal.Decimal
	// RunHoursPerUnit scales with order quantity
	RunHoursPerUnit decimal.Decimal
	QueueHours      decimal.Decimal
	MoveHours       decimal.Decimal
}

// Routing represents the ordered operation sequence for an item
type Routing struct {
	ItemID     ItemID
	Operations []Operation
}

// NewRouting creates a validated Routing with operations ordered by sequence
func NewRouting(itemID ItemID, operations []Operation) (*Routing, error) {
	if string(itemID) == "" {
		return nil, fmt.Errorf("routing item id cannot be empty")
	}
	if len(operations) == 0 {
		return nil, fmt.Errorf("routing for %s must have at least one operation", itemID)
	}

	ops := make([]Operation, len(operations))
	copy(ops, operations)
	sort.Slice(ops, func(i, j int) bool { return ops[i].Sequence < ops[j].Sequence })

	seen := make(map[int]bool, len(ops))
	for _, op := range ops {
		if op.Sequence <= 0 {
			return nil, fmt.Errorf("routing for %s: operation sequence must be positive, got %d", itemID, op.Sequence)
		}
		if seen[op.Sequence] {
			return nil, fmt.Errorf("routing for %s: duplicate operation sequence %d", itemID, op.Sequence)
		}
		seen[op.Sequence] = true
		if string(op.WorkCenterID) == "" {
			return nil, fmt.Errorf("routing for %s: operation %d has no work center", itemID, op.Sequence)
		}
	}

	return &Routing{ItemID: itemID, Operations: ops}, nil
}

// CalendarException overrides a work center's available hours on one date
type CalendarException struct {
	Date           time.Time
	AvailableHours decimal.Decimal
}

// WorkCenter represents a capacity-bearing resource
type WorkCenter struct {
	ID   WorkCenterID
	Code string
	Name string
	Type WorkCenterType
	// DailyCapacityHours is the available capacity per calendar day
	DailyCapacityHours decimal.Decimal
	// Efficiency in (0, 1]; run time is divided by it
	Efficiency decimal.Decimal
	Calendar   []CalendarException
}

// AvailableHoursOn returns the work center's capacity for a single date,
// honoring calendar exceptions
func (w *WorkCenter) AvailableHoursOn(date time.Time) decimal.Decimal {
	y, m, d := date.Date()
	for _, exc := range w.Calendar {
		ey, em, ed := exc.Date.Date()
		if ey == y && em == m && ed == d {
			return exc.AvailableHours
		}
	}
	return w.DailyCapacityHours
}
