package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/planwerk/mrp/pkg/domain/entities"
)

// PlanSnapshot is the immutable input set a planning run computes from.
// It is assembled from the collaborator repositories before the run starts
// so the computation itself never blocks on I/O.
type PlanSnapshot struct {
	Items             map[entities.ItemID]*entities.Item
	BomLines          []*entities.BomLine
	CoProducts        []*entities.CoProduct
	Routings          map[entities.ItemID]*entities.Routing
	WorkCenters       map[entities.WorkCenterID]*entities.WorkCenter
	ScheduleLines     []*entities.MasterScheduleLine
	TimeFence         entities.TimeFence
	OnHand            map[entities.ItemID]decimal.Decimal
	ScheduledReceipts []*entities.ScheduledReceipt

	// PriorOrders and ChangedItems feed net-change mode
	PriorOrders  []*entities.PlannedOrder
	ChangedItems []entities.ItemID
}

// Validate checks the referential preconditions a run depends on. Failures
// here are fatal: the run aborts before producing any output.
func (s *PlanSnapshot) Validate() error {
	if len(s.Items) == 0 {
		return fmt.Errorf("snapshot contains no items")
	}
	for _, line := range s.ScheduleLines {
		if _, exists := s.Items[line.ItemID]; !exists {
			return fmt.Errorf("master schedule references unknown item %s", line.ItemID)
		}
	}
	for _, routing := range s.Routings {
		if _, exists := s.Items[routing.ItemID]; !exists {
			return fmt.Errorf("routing references unknown item %s", routing.ItemID)
		}
		for _, op := range routing.Operations {
			if _, exists := s.WorkCenters[op.WorkCenterID]; !exists {
				return fmt.Errorf("routing for %s operation %d references unknown work center %s",
					routing.ItemID, op.Sequence, op.WorkCenterID)
			}
		}
	}
	for _, receipt := range s.ScheduledReceipts {
		if _, exists := s.Items[receipt.ItemID]; !exists {
			return fmt.Errorf("scheduled receipt references unknown item %s", receipt.ItemID)
		}
	}
	return nil
}
