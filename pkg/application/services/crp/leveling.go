package crp

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/planwerk/mrp/pkg/domain/entities"
)

// Leveler classifies work center load and, in finite mode, shifts
// overloaded hours forward into later buckets with spare capacity
type Leveler struct {
	cfg         Config
	workCenters map[entities.WorkCenterID]*entities.WorkCenter
}

// NewLeveler creates a leveler sharing the calculator's configuration
func NewLeveler(cfg Config, workCenters map[entities.WorkCenterID]*entities.WorkCenter) *Leveler {
	return &Leveler{cfg: cfg, workCenters: workCenters}
}

// Level classifies every requirement, levels overloads when finite mode is
// on, and returns the capacity exceptions. The requirement slice is
// re-sorted and may gain buckets that received shifted load.
func (l *Leveler) Level(ctx context.Context, reqs []*entities.CapacityRequirement) ([]*entities.CapacityRequirement, []*entities.CapacityException, error) {
	byWC := make(map[entities.WorkCenterID][]*entities.CapacityRequirement)
	order := make([]entities.WorkCenterID, 0)
	for _, req := range reqs {
		if _, seen := byWC[req.WorkCenterID]; !seen {
			order = append(order, req.WorkCenterID)
		}
		byWC[req.WorkCenterID] = append(byWC[req.WorkCenterID], req)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	var all []*entities.CapacityRequirement
	var exceptions []*entities.CapacityException

	for _, wc := range order {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		wcReqs := byWC[wc]
		sort.Slice(wcReqs, func(i, j int) bool { return wcReqs[i].Period < wcReqs[j].Period })

		for _, req := range wcReqs {
			l.classify(req)
		}

		if l.cfg.FiniteLeveling {
			wcReqs = l.levelWorkCenter(wc, wcReqs)
		}

		for _, req := range wcReqs {
			if req.Status == entities.CapacityOverload {
				exceptions = append(exceptions, entities.NewCapacityException(
					entities.Overload,
					entities.SeverityCritical,
					wc,
					req.Period,
					fmt.Sprintf("load %s%% of %s available hours", req.LoadPercent.Round(1), req.AvailableCapacity.Round(1)),
					"reschedule orders or add capacity",
				))
			}
		}

		if exc := l.detectBottleneck(wc, wcReqs); exc != nil {
			exceptions = append(exceptions, exc)
		}

		all = append(all, wcReqs...)
	}

	sortRequirements(all)
	return all, exceptions, nil
}

// classify computes the load percentage and status for one bucket
func (l *Leveler) classify(req *entities.CapacityRequirement) {
	if !req.AvailableCapacity.IsPositive() {
		req.LoadPercent = decimal.Zero
		if req.RequiredCapacity.IsPositive() {
			req.Status = entities.CapacityOverload
		} else {
			req.Status = entities.CapacityNormal
		}
		return
	}

	req.LoadPercent = req.RequiredCapacity.Div(req.AvailableCapacity).Mul(decimal.NewFromInt(100))
	switch {
	case req.LoadPercent.GreaterThanOrEqual(l.cfg.OverloadThreshold):
		req.Status = entities.CapacityOverload
	case req.LoadPercent.GreaterThanOrEqual(l.cfg.BottleneckThreshold):
		req.Status = entities.CapacityWarning
	default:
		req.Status = entities.CapacityNormal
	}
}

// levelWorkCenter greedily moves excess hours from overloaded buckets to
// the earliest later bucket with spare capacity. Load never moves to a
// bucket before its order's release, and whatever cannot be placed stays
// where it is and keeps its Overload status.
func (l *Leveler) levelWorkCenter(wc entities.WorkCenterID, wcReqs []*entities.CapacityRequirement) []*entities.CapacityRequirement {
	buckets := l.cfg.Horizon.Buckets()
	byPeriod := make(map[int]*entities.CapacityRequirement, len(wcReqs))
	for _, req := range wcReqs {
		byPeriod[req.Period] = req
	}

	ensure := func(period int) *entities.CapacityRequirement {
		if req, exists := byPeriod[period]; exists {
			return req
		}
		req := &entities.CapacityRequirement{
			WorkCenterID:      wc,
			Period:            period,
			PeriodStart:       l.cfg.Horizon.StartOf(period),
			AvailableCapacity: availableHours(l.cfg.Horizon, l.workCenters[wc], period),
			RequiredCapacity:  decimal.Zero,
			LoadPercent:       decimal.Zero,
			Status:            entities.CapacityNormal,
		}
		byPeriod[period] = req
		wcReqs = append(wcReqs, req)
		return req
	}

	periods := make([]int, 0, len(byPeriod))
	for period := range byPeriod {
		periods = append(periods, period)
	}
	sort.Ints(periods)

	for _, period := range periods {
		source := byPeriod[period]
		excess := source.RequiredCapacity.Sub(source.AvailableCapacity)
		if !excess.IsPositive() {
			continue
		}

		// largest contributions move first
		details := append([]*entities.CapacityLoadDetail(nil), source.Details...)
		sort.Slice(details, func(i, j int) bool {
			if !details[i].TotalHours.Equal(details[j].TotalHours) {
				return details[i].TotalHours.GreaterThan(details[j].TotalHours)
			}
			return details[i].OperationSeq < details[j].OperationSeq
		})

		for _, detail := range details {
			if !excess.IsPositive() {
				break
			}
			movable := detail.TotalHours.Sub(detail.ShiftedHours)
			if !movable.IsPositive() {
				continue
			}

			for target := period + 1; target < buckets; target++ {
				targetReq := ensure(target)
				slack := targetReq.AvailableCapacity.Sub(targetReq.RequiredCapacity)
				if !slack.IsPositive() {
					continue
				}

				move := decimal.Min(excess, movable, slack)
				detail.ShiftedHours = detail.ShiftedHours.Add(move)
				detail.ShiftedToPeriod = target
				source.RequiredCapacity = source.RequiredCapacity.Sub(move)
				targetReq.RequiredCapacity = targetReq.RequiredCapacity.Add(move)
				excess = excess.Sub(move)
				break
			}
		}
	}

	for _, req := range byPeriod {
		l.classify(req)
	}
	return wcReqs
}

// detectBottleneck flags a work center whose load sits at or above the
// bottleneck threshold in at least half of its loaded buckets
func (l *Leveler) detectBottleneck(wc entities.WorkCenterID, wcReqs []*entities.CapacityRequirement) *entities.CapacityException {
	loaded := 0
	near := 0
	firstLoaded := -1
	for _, req := range wcReqs {
		if !req.RequiredCapacity.IsPositive() {
			continue
		}
		loaded++
		if firstLoaded < 0 || req.Period < firstLoaded {
			firstLoaded = req.Period
		}
		if req.LoadPercent.GreaterThanOrEqual(l.cfg.BottleneckThreshold) {
			near++
		}
	}
	if loaded == 0 || near*2 < loaded {
		return nil
	}
	return entities.NewCapacityException(
		entities.Bottleneck,
		entities.SeverityWarning,
		wc,
		firstLoaded,
		fmt.Sprintf("load at or above %s%% in %d of %d loaded periods", l.cfg.BottleneckThreshold, near, loaded),
		"review routing alternatives or extend shifts",
	)
}
