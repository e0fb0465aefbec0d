package memory

import (
	"github.com/planwerk/mrp/pkg/domain/entities"
	"github.com/planwerk/mrp/pkg/domain/repositories"
)

// ScheduleRepository provides in-memory master schedule storage
type ScheduleRepository struct {
	lines []entities.MasterScheduleLine
	fence entities.TimeFence
}

// NewScheduleRepository creates a new in-memory schedule repository
func NewScheduleRepository(expectedLines int) *ScheduleRepository {
	return &ScheduleRepository{
		lines: make([]entities.MasterScheduleLine, 0, expectedLines),
	}
}

// Verify interface compliance
var _ repositories.ScheduleRepository = (*ScheduleRepository)(nil)

// LoadScheduleLines loads demand lines into the repository
func (r *ScheduleRepository) LoadScheduleLines(lines []*entities.MasterScheduleLine) error {
	for _, line := range lines {
		r.AddScheduleLine(*line)
	}
	return nil
}

// AddScheduleLine adds a demand line to the repository
func (r *ScheduleRepository) AddScheduleLine(line entities.MasterScheduleLine) {
	r.lines = append(r.lines, line)
}

// SetTimeFence sets the fence configuration
func (r *ScheduleRepository) SetTimeFence(fence entities.TimeFence) {
	r.fence = fence
}

// GetScheduleLines returns all demand lines
func (r *ScheduleRepository) GetScheduleLines() ([]*entities.MasterScheduleLine, error) {
	var lines []*entities.MasterScheduleLine
	for i := range r.lines {
		lines = append(lines, &r.lines[i])
	}
	return lines, nil
}

// GetTimeFence returns the fence configuration
func (r *ScheduleRepository) GetTimeFence() (entities.TimeFence, error) {
	return r.fence, nil
}
