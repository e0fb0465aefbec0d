// Package repositories defines the read-only collaborator interfaces the
// planning engine loads its input snapshot from. Implementations must not
// be called mid-computation; the orchestrator reads everything up front.
package repositories

import (
	"github.com/shopspring/decimal"

	"github.com/planwerk/mrp/pkg/domain/entities"
)

// ItemRepository provides item master data
type ItemRepository interface {
	GetItem(id entities.ItemID) (*entities.Item, error)
	GetAllItems() ([]*entities.Item, error)
}

// BOMRepository provides bill of material structures and co-products
type BOMRepository interface {
	GetBomLines(parentID entities.ItemID) ([]*entities.BomLine, error)
	GetAllBomLines() ([]*entities.BomLine, error)
	GetAllCoProducts() ([]*entities.CoProduct, error)
}

// RoutingRepository provides operation routings per item
type RoutingRepository interface {
	GetRouting(itemID entities.ItemID) (*entities.Routing, error)
	GetAllRoutings() ([]*entities.Routing, error)
}

// WorkCenterRepository provides work centers and their calendars
type WorkCenterRepository interface {
	GetWorkCenter(id entities.WorkCenterID) (*entities.WorkCenter, error)
	GetAllWorkCenters() ([]*entities.WorkCenter, error)
}

// ScheduleRepository provides master schedule demand lines
type ScheduleRepository interface {
	GetScheduleLines() ([]*entities.MasterScheduleLine, error)
	GetTimeFence() (entities.TimeFence, error)
}

// SupplyRepository provides on-hand stock and open supply orders
type SupplyRepository interface {
	GetAllOnHand() (map[entities.ItemID]decimal.Decimal, error)
	GetScheduledReceipts() ([]*entities.ScheduledReceipt, error)
}

// PlanRepository provides the prior run's state for net-change planning
type PlanRepository interface {
	GetUnconvertedOrders(planID string) ([]*entities.PlannedOrder, error)
	GetChangedItems(planID string) ([]entities.ItemID, error)
}
