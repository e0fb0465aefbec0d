package events

import (
	"github.com/google/uuid"

	"github.com/planwerk/mrp/pkg/domain/entities"
)

// Event types recorded during a planning run
const (
	RunStarted   = "plan.run.started"
	RunCompleted = "plan.run.completed"
	RunFailed    = "plan.run.failed"
	RunCancelled = "plan.run.cancelled"

	OrderTransitioned = "plan.order.transitioned"
)

// RunStartedData describes the beginning of a run
type RunStartedData struct {
	PlanID    string
	PlanName  string
	NetChange bool
}

// RunCompletedData summarizes a finished run
type RunCompletedData struct {
	PlanID        string
	Requirements  int
	PlannedOrders int
	Exceptions    int
}

// RunFailedData carries the failure reason
type RunFailedData struct {
	PlanID string
	Reason string
}

// OrderTransitionedData records a planned order status change
type OrderTransitionedData struct {
	OrderID uuid.UUID
	ItemID  entities.ItemID
	From    entities.PlannedOrderStatus
	To      entities.PlannedOrderStatus
}

// NewRunStarted creates a run-started event for the plan's stream
func NewRunStarted(planID, planName string, netChange bool) Event {
	return NewEvent(RunStarted, planID, RunStartedData{PlanID: planID, PlanName: planName, NetChange: netChange})
}

// NewRunCompleted creates a run-completed event
func NewRunCompleted(planID string, requirements, orders, exceptions int) Event {
	return NewEvent(RunCompleted, planID, RunCompletedData{
		PlanID:        planID,
		Requirements:  requirements,
		PlannedOrders: orders,
		Exceptions:    exceptions,
	})
}

// NewRunFailed creates a run-failed event
func NewRunFailed(planID, reason string) Event {
	return NewEvent(RunFailed, planID, RunFailedData{PlanID: planID, Reason: reason})
}

// NewRunCancelled creates a run-cancelled event
func NewRunCancelled(planID string) Event {
	return NewEvent(RunCancelled, planID, RunFailedData{PlanID: planID, Reason: "cancelled"})
}

// NewOrderTransitioned creates an order lifecycle event
func NewOrderTransitioned(planID string, order *entities.PlannedOrder, from entities.PlannedOrderStatus) Event {
	return NewEvent(OrderTransitioned, planID, OrderTransitionedData{
		OrderID: order.ID,
		ItemID:  order.ItemID,
		From:    from,
		To:      order.Status,
	})
}
