package dto

import (
	"time"

	"github.com/planwerk/mrp/pkg/domain/entities"
)

// RunSummary carries run metadata for reporting
type RunSummary struct {
	PlanID       string
	PlanName     string
	StartedAt    time.Time
	FinishedAt   time.Time
	ItemsPlanned int
	NetChange    bool
}

// PlanResult is the complete output of one planning run. A run either
// returns a full result or nothing; there is no partial output.
type PlanResult struct {
	Requirements  []*entities.Requirement
	PlannedOrders []*entities.PlannedOrder
	Exceptions    []*entities.MrpException

	// Capacity outputs are nil when capacity planning is disabled
	CapacityRequirements []*entities.CapacityRequirement
	CapacityExceptions   []*entities.CapacityException

	Summary RunSummary
}
