package orchestration

import (
	"fmt"

	"github.com/planwerk/mrp/pkg/application/dto"
	"github.com/planwerk/mrp/pkg/domain/entities"
	"github.com/planwerk/mrp/pkg/domain/repositories"
)

// SnapshotLoader assembles an immutable PlanSnapshot from the collaborator
// repositories. All reads happen up front; the planning computation never
// touches a repository.
type SnapshotLoader struct {
	items       repositories.ItemRepository
	boms        repositories.BOMRepository
	routings    repositories.RoutingRepository
	workCenters repositories.WorkCenterRepository
	schedule    repositories.ScheduleRepository
	supply      repositories.SupplyRepository
	plans       repositories.PlanRepository
}

// NewSnapshotLoader creates a loader. The plan repository may be nil when
// net-change planning is not used.
func NewSnapshotLoader(
	items repositories.ItemRepository,
	boms repositories.BOMRepository,
	routings repositories.RoutingRepository,
	workCenters repositories.WorkCenterRepository,
	schedule repositories.ScheduleRepository,
	supply repositories.SupplyRepository,
	plans repositories.PlanRepository,
) *SnapshotLoader {
	return &SnapshotLoader{
		items:       items,
		boms:        boms,
		routings:    routings,
		workCenters: workCenters,
		schedule:    schedule,
		supply:      supply,
		plans:       plans,
	}
}

// Load reads the full input set for one run. When netChange is true the
// prior run's unconverted orders and changed item set are included.
func (l *SnapshotLoader) Load(planID string, netChange bool) (*dto.PlanSnapshot, error) {
	items, err := l.items.GetAllItems()
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	itemMap := make(map[entities.ItemID]*entities.Item, len(items))
	for _, item := range items {
		itemMap[item.ID] = item
	}

	bomLines, err := l.boms.GetAllBomLines()
	if err != nil {
		return nil, fmt.Errorf("failed to load bom lines: %w", err)
	}
	coProducts, err := l.boms.GetAllCoProducts()
	if err != nil {
		return nil, fmt.Errorf("failed to load co-products: %w", err)
	}

	routings, err := l.routings.GetAllRoutings()
	if err != nil {
		return nil, fmt.Errorf("failed to load routings: %w", err)
	}
	routingMap := make(map[entities.ItemID]*entities.Routing, len(routings))
	for _, routing := range routings {
		routingMap[routing.ItemID] = routing
	}

	workCenters, err := l.workCenters.GetAllWorkCenters()
	if err != nil {
		return nil, fmt.Errorf("failed to load work centers: %w", err)
	}
	wcMap := make(map[entities.WorkCenterID]*entities.WorkCenter, len(workCenters))
	for _, wc := range workCenters {
		wcMap[wc.ID] = wc
	}

	scheduleLines, err := l.schedule.GetScheduleLines()
	if err != nil {
		return nil, fmt.Errorf("failed to load master schedule: %w", err)
	}
	fence, err := l.schedule.GetTimeFence()
	if err != nil {
		return nil, fmt.Errorf("failed to load time fence: %w", err)
	}

	onHand, err := l.supply.GetAllOnHand()
	if err != nil {
		return nil, fmt.Errorf("failed to load on-hand stock: %w", err)
	}
	receipts, err := l.supply.GetScheduledReceipts()
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduled receipts: %w", err)
	}

	snapshot := &dto.PlanSnapshot{
		Items:             itemMap,
		BomLines:          bomLines,
		CoProducts:        coProducts,
		Routings:          routingMap,
		WorkCenters:       wcMap,
		ScheduleLines:     scheduleLines,
		TimeFence:         fence,
		OnHand:            onHand,
		ScheduledReceipts: receipts,
	}

	if netChange {
		if l.plans == nil {
			return nil, fmt.Errorf("net-change planning requires a plan repository")
		}
		snapshot.PriorOrders, err = l.plans.GetUnconvertedOrders(planID)
		if err != nil {
			return nil, fmt.Errorf("failed to load prior orders: %w", err)
		}
		snapshot.ChangedItems, err = l.plans.GetChangedItems(planID)
		if err != nil {
			return nil, fmt.Errorf("failed to load changed items: %w", err)
		}
	}
	return snapshot, nil
}
