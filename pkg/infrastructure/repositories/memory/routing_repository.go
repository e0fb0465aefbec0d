package memory

import (
	"fmt"

	"github.com/planwerk/mrp/pkg/domain/entities"
	"github.com/planwerk/mrp/pkg/domain/repositories"
)

// RoutingRepository provides in-memory routing storage
type RoutingRepository struct {
	routings    []entities.Routing
	routingsMap map[entities.ItemID]int
}

// NewRoutingRepository creates a new in-memory routing repository
func NewRoutingRepository(expectedRoutings int) *RoutingRepository {
	return &RoutingRepository{
		routings:    make([]entities.Routing, 0, expectedRoutings),
		routingsMap: make(map[entities.ItemID]int, expectedRoutings),
	}
}

// Verify interface compliance
var _ repositories.RoutingRepository = (*RoutingRepository)(nil)

// LoadRoutings loads routings into the repository
func (r *RoutingRepository) LoadRoutings(routings []*entities.Routing) error {
	for _, routing := range routings {
		r.AddRouting(*routing)
	}
	return nil
}

// AddRouting adds a routing to the repository
func (r *RoutingRepository) AddRouting(routing entities.Routing) {
	r.routingsMap[routing.ItemID] = len(r.routings)
	r.routings = append(r.routings, routing)
}

// GetRouting returns the routing for an item
func (r *RoutingRepository) GetRouting(itemID entities.ItemID) (*entities.Routing, error) {
	index, exists := r.routingsMap[itemID]
	if !exists {
		return nil, fmt.Errorf("routing not found for item: %s", itemID)
	}
	return &r.routings[index], nil
}

// GetAllRoutings returns all routings
func (r *RoutingRepository) GetAllRoutings() ([]*entities.Routing, error) {
	var routings []*entities.Routing
	for i := range r.routings {
		routings = append(routings, &r.routings[i])
	}
	return routings, nil
}

// WorkCenterRepository provides in-memory work center storage
type WorkCenterRepository struct {
	workCenters []entities.WorkCenter
	wcMap       map[entities.WorkCenterID]int
}

// NewWorkCenterRepository creates a new in-memory work center repository
func NewWorkCenterRepository(expectedWorkCenters int) *WorkCenterRepository {
	return &WorkCenterRepository{
		workCenters: make([]entities.WorkCenter, 0, expectedWorkCenters),
		wcMap:       make(map[entities.WorkCenterID]int, expectedWorkCenters),
	}
}

// Verify interface compliance
var _ repositories.WorkCenterRepository = (*WorkCenterRepository)(nil)

// LoadWorkCenters loads work centers into the repository
func (r *WorkCenterRepository) LoadWorkCenters(workCenters []*entities.WorkCenter) error {
	for _, wc := range workCenters {
		r.AddWorkCenter(*wc)
	}
	return nil
}

// AddWorkCenter adds a work center to the repository
func (r *WorkCenterRepository) AddWorkCenter(wc entities.WorkCenter) {
	r.wcMap[wc.ID] = len(r.workCenters)
	r.workCenters = append(r.workCenters, wc)
}

// GetWorkCenter returns a work center by id
func (r *WorkCenterRepository) GetWorkCenter(id entities.WorkCenterID) (*entities.WorkCenter, error) {
	index, exists := r.wcMap[id]
	if !exists {
		return nil, fmt.Errorf("work center not found: %s", id)
	}
	return &r.workCenters[index], nil
}

// GetAllWorkCenters returns all work centers
func (r *WorkCenterRepository) GetAllWorkCenters() ([]*entities.WorkCenter, error) {
	var workCenters []*entities.WorkCenter
	for i := range r.workCenters {
		workCenters = append(workCenters, &r.workCenters[i])
	}
	return workCenters, nil
}
