package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlannedOrderStatus represents the lifecycle state of a planned order
type PlannedOrderStatus int

const (
	Draft PlannedOrderStatus = iota
	Confirmed
	Released
	Converted
	Cancelled
)

// String method for PlannedOrderStatus enum
func (s PlannedOrderStatus) String() string {
	switch s {
	case Draft:
		return "Draft"
	case Confirmed:
		return "Confirmed"
	case Released:
		return "Released"
	case Converted:
		return "Converted"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// statusTransitions is the one-way transition table for planned orders.
// Cancelled is reachable from every non-terminal state; Converted and
// Cancelled are terminal.
var statusTransitions = map[PlannedOrderStatus][]PlannedOrderStatus{
	Draft:     {Confirmed, Cancelled},
	Confirmed: {Released, Cancelled},
	Released:  {Converted, Cancelled},
}

// InvalidTransitionError is returned when a planned order is moved to a
// state the transition table does not allow
type InvalidTransitionError struct {
	OrderID uuid.UUID
	From    PlannedOrderStatus
	To      PlannedOrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("planned order %s: invalid transition %s -> %s", e.OrderID, e.From, e.To)
}

// CoProductOutput is a linked alternate output of a planned order
type CoProductOutput struct {
	ItemID                ItemID
	Quantity              decimal.Decimal
	CostAllocationPercent decimal.Decimal
}

// PlannedOrder represents a planned production or purchase order
type PlannedOrder struct {
	ID       uuid.UUID
	ItemID   ItemID
	Type     OrderType
	Quantity decimal.Decimal
	// ReleaseDate may precede the plan's current date; such orders are
	// flagged past due rather than silently moved
	ReleaseDate   time.Time
	DueDate       time.Time
	ReleasePeriod int
	DuePeriod     int
	LotSizePolicy LotSizePolicy
	Status        PlannedOrderStatus
	// ConvertedRef links to the execution order created from this one
	ConvertedRef string
	CoProducts   []CoProductOutput
	// CarriedForward marks orders copied unchanged from the prior run in
	// net-change mode
	CarriedForward bool
}

// NewPlannedOrder creates a validated PlannedOrder in Draft status
func NewPlannedOrder(
	itemID ItemID,
	orderType OrderType,
	quantity decimal.Decimal,
	releaseDate, dueDate time.Time,
	policy LotSizePolicy,
) (*PlannedOrder, error) {
	if string(itemID) == "" {
		return nil, fmt.Errorf("item id cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("quantity must be positive, got %s", quantity)
	}
	if releaseDate.After(dueDate) {
		return nil, fmt.Errorf("release date %v cannot be after due date %v", releaseDate, dueDate)
	}

	return &PlannedOrder{
		ID:            uuid.New(),
		ItemID:        itemID,
		Type:          orderType,
		Quantity:      quantity,
		ReleaseDate:   releaseDate,
		DueDate:       dueDate,
		LotSizePolicy: policy,
		Status:        Draft,
	}, nil
}

// CanTransition reports whether the transition table allows moving to the
// given status
func (o *PlannedOrder) CanTransition(to PlannedOrderStatus) bool {
	for _, allowed := range statusTransitions[o.Status] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition moves the order to the given status, rejecting moves the
// transition table does not allow
func (o *PlannedOrder) Transition(to PlannedOrderStatus) error {
	if !o.CanTransition(to) {
		return &InvalidTransitionError{OrderID: o.ID, From: o.Status, To: to}
	}
	o.Status = to
	return nil
}

// Convert binds the order to an externally created execution order and
// moves it to the terminal Converted state. The order must be Released.
func (o *PlannedOrder) Convert(executionRef string) error {
	if executionRef == "" {
		return fmt.Errorf("planned order %s: execution order reference cannot be empty", o.ID)
	}
	if err := o.Transition(Converted); err != nil {
		return err
	}
	o.ConvertedRef = executionRef
	return nil
}

// Cancel moves the order to Cancelled from any non-terminal state
func (o *PlannedOrder) Cancel() error {
	return o.Transition(Cancelled)
}
