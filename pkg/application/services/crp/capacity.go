// Package crp translates planned orders and routings into time-bucketed
// work center load, classifies it against available capacity, and
// optionally levels overloads by shifting load forward.
package crp

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/planwerk/mrp/pkg/domain/entities"
)

// Config holds the capacity stage parameters
type Config struct {
	Horizon           entities.Horizon
	IncludeSetupTimes bool
	IncludeEfficiency bool
	// OverloadThreshold and BottleneckThreshold are load percentages
	OverloadThreshold   decimal.Decimal
	BottleneckThreshold decimal.Decimal
	FiniteLeveling      bool
}

// Calculator accumulates operation time from planned orders into capacity
// requirements per work center and bucket
type Calculator struct {
	cfg         Config
	routings    map[entities.ItemID]*entities.Routing
	workCenters map[entities.WorkCenterID]*entities.WorkCenter
}

// NewCalculator creates a calculator over the snapshot's routings and
// work centers
func NewCalculator(
	cfg Config,
	routings map[entities.ItemID]*entities.Routing,
	workCenters map[entities.WorkCenterID]*entities.WorkCenter,
) *Calculator {
	return &Calculator{cfg: cfg, routings: routings, workCenters: workCenters}
}

type wcPeriod struct {
	wc     entities.WorkCenterID
	period int
}

// Calculate walks every plannable order's routing and produces one
// CapacityRequirement per loaded work center and bucket, with a load
// detail per contributing order operation
func (c *Calculator) Calculate(ctx context.Context, orders []*entities.PlannedOrder) ([]*entities.CapacityRequirement, error) {
	buckets := c.cfg.Horizon.Buckets()
	index := make(map[wcPeriod]*entities.CapacityRequirement)

	for _, order := range orders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if order.Status == entities.Cancelled || order.Status == entities.Converted {
			continue
		}
		if order.Type != entities.Production {
			continue
		}
		routing := c.routings[order.ItemID]
		if routing == nil {
			continue
		}

		span := order.DuePeriod - order.ReleasePeriod
		if span < 0 {
			span = 0
		}
		opCount := len(routing.Operations)

		for i, op := range routing.Operations {
			workCenter := c.workCenters[op.WorkCenterID]
			if workCenter == nil {
				continue
			}

			// spread operations proportionally across the order's span
			bucket := order.ReleasePeriod + i*span/opCount
			if bucket < 0 {
				bucket = 0
			}
			if bucket >= buckets {
				bucket = buckets - 1
			}

			setup := decimal.Zero
			if c.cfg.IncludeSetupTimes {
				setup = op.SetupHours
			}
			run := op.RunHoursPerUnit.Mul(order.Quantity)
			if c.cfg.IncludeEfficiency && workCenter.Efficiency.IsPositive() {
				run = run.Div(workCenter.Efficiency)
			}
			total := setup.Add(run).Add(op.QueueHours).Add(op.MoveHours)

			detail := &entities.CapacityLoadDetail{
				OrderID:         order.ID,
				ItemID:          order.ItemID,
				OperationSeq:    op.Sequence,
				WorkCenterID:    op.WorkCenterID,
				Period:          bucket,
				SetupHours:      setup,
				RunHours:        run,
				QueueHours:      op.QueueHours,
				MoveHours:       op.MoveHours,
				TotalHours:      total,
				ShiftedHours:    decimal.Zero,
				ShiftedToPeriod: -1,
			}

			req := c.ensureRequirement(index, op.WorkCenterID, bucket)
			req.RequiredCapacity = req.RequiredCapacity.Add(total)
			req.Details = append(req.Details, detail)
		}
	}

	result := make([]*entities.CapacityRequirement, 0, len(index))
	for _, req := range index {
		result = append(result, req)
	}
	sortRequirements(result)
	return result, nil
}

func (c *Calculator) ensureRequirement(
	index map[wcPeriod]*entities.CapacityRequirement,
	wc entities.WorkCenterID,
	bucket int,
) *entities.CapacityRequirement {
	key := wcPeriod{wc: wc, period: bucket}
	if req, exists := index[key]; exists {
		return req
	}
	req := &entities.CapacityRequirement{
		WorkCenterID:      wc,
		Period:            bucket,
		PeriodStart:       c.cfg.Horizon.StartOf(bucket),
		AvailableCapacity: availableHours(c.cfg.Horizon, c.workCenters[wc], bucket),
		RequiredCapacity:  decimal.Zero,
		LoadPercent:       decimal.Zero,
		Status:            entities.CapacityNormal,
	}
	index[key] = req
	return req
}

// availableHours sums the work center's daily capacity over the bucket's
// days, honoring calendar exceptions
func availableHours(horizon entities.Horizon, wc *entities.WorkCenter, bucket int) decimal.Decimal {
	if wc == nil {
		return decimal.Zero
	}
	start := horizon.StartOf(bucket)
	total := decimal.Zero
	for d := 0; d < horizon.BucketDays; d++ {
		total = total.Add(wc.AvailableHoursOn(start.AddDate(0, 0, d)))
	}
	return total
}

func sortRequirements(reqs []*entities.CapacityRequirement) {
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].WorkCenterID != reqs[j].WorkCenterID {
			return reqs[i].WorkCenterID < reqs[j].WorkCenterID
		}
		return reqs[i].Period < reqs[j].Period
	})
}
