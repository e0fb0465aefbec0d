// Package mrp implements the demand netting core: per item and time
// bucket, gross requirements are netted against projected supply to
// produce net requirements, planned receipts and planned orders.
package mrp

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/planwerk/mrp/pkg/application/dto"
	"github.com/planwerk/mrp/pkg/domain/entities"
	"github.com/planwerk/mrp/pkg/domain/services/bomgraph"
	"github.com/planwerk/mrp/pkg/domain/services/lotsizing"
)

// Config holds the netting parameters for one run
type Config struct {
	Horizon            entities.Horizon
	CurrentDate        time.Time
	DefaultPolicy      entities.LotSizePolicy
	IncludeSafetyStock bool
	NetChange          bool
	Precision          int32
}

// Result is the netting stage output
type Result struct {
	Requirements  []*entities.Requirement
	PlannedOrders []*entities.PlannedOrder
	Exceptions    []*entities.MrpException
}

// Engine nets one immutable snapshot. Items are processed in ascending
// low-level-code order so parent planned releases become component gross
// requirements before the component is netted.
type Engine struct {
	cfg   Config
	graph *bomgraph.Graph
	snap  *dto.PlanSnapshot
}

// NewEngine creates a netting engine over a validated snapshot and graph
func NewEngine(cfg Config, graph *bomgraph.Graph, snap *dto.PlanSnapshot) *Engine {
	return &Engine{cfg: cfg, graph: graph, snap: snap}
}

// Net runs the netting pass. Cancellation is checked between items; a
// cancelled run returns ctx.Err() and no partial result.
func (e *Engine) Net(ctx context.Context) (*Result, error) {
	buckets := e.cfg.Horizon.Buckets()
	if buckets == 0 {
		return nil, fmt.Errorf("horizon contains no buckets")
	}

	state := &nettingState{
		buckets:     buckets,
		independent: e.independentDemand(buckets),
		receipts:    e.bucketedReceipts(buckets),
		dependent:   make(map[entities.ItemID][]decimal.Decimal),
		orphaned:    make(map[string]bool),
	}

	recompute := e.recomputeSet()
	result := &Result{}

	if err := e.carryPriorOrders(state, recompute, result); err != nil {
		return nil, err
	}

	for _, itemID := range e.graph.ItemsByLevel() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item := e.snap.Items[itemID]
		if recompute != nil && !recompute[itemID] {
			continue
		}
		if !state.hasActivity(itemID) && !e.safetyDeficit(item) {
			continue
		}

		reqs, orders, err := e.netItem(item, state)
		if err != nil {
			return nil, fmt.Errorf("failed to net item %s: %w", itemID, err)
		}
		result.Requirements = append(result.Requirements, reqs...)
		result.PlannedOrders = append(result.PlannedOrders, orders...)

		for _, order := range orders {
			e.propagateDependentDemand(order, state, result)
		}
	}

	return result, nil
}

type nettingState struct {
	buckets     int
	independent map[entities.ItemID][]decimal.Decimal
	receipts    map[entities.ItemID][]decimal.Decimal
	dependent   map[entities.ItemID][]decimal.Decimal
	// orphaned dedupes OrphanedDemand exceptions per parent/component pair
	orphaned map[string]bool
}

func (s *nettingState) hasActivity(id entities.ItemID) bool {
	for _, series := range []map[entities.ItemID][]decimal.Decimal{s.independent, s.dependent, s.receipts} {
		for _, qty := range series[id] {
			if !qty.IsZero() {
				return true
			}
		}
	}
	return false
}

// safetyDeficit reports whether on-hand already sits below the item's
// safety stock. Such items must be netted even with no demand or supply
// in the horizon, so the deficit produces a replenishment order.
func (e *Engine) safetyDeficit(item *entities.Item) bool {
	if !e.cfg.IncludeSafetyStock {
		return false
	}
	return e.snap.OnHand[item.ID].LessThan(item.SafetyStock)
}

// policyFor resolves an item's lot-sizing policy, falling back to the
// plan default and finally to lot-for-lot
func (e *Engine) policyFor(item *entities.Item) entities.LotSizePolicy {
	if item.LotSizePolicy != entities.PolicyUnspecified {
		return item.LotSizePolicy
	}
	if e.cfg.DefaultPolicy != entities.PolicyUnspecified {
		return e.cfg.DefaultPolicy
	}
	return entities.LotForLot
}

func (s *nettingState) addDependent(id entities.ItemID, bucket int, qty decimal.Decimal) {
	if s.dependent[id] == nil {
		s.dependent[id] = make([]decimal.Decimal, s.buckets)
		for i := range s.dependent[id] {
			s.dependent[id][i] = decimal.Zero
		}
	}
	s.dependent[id][bucket] = s.dependent[id][bucket].Add(qty)
}

// independentDemand buckets master schedule lines, gated by the time
// fence: the frozen zone plans customer orders only, the slushy zone the
// larger of forecast and orders, the free zone their sum.
func (e *Engine) independentDemand(buckets int) map[entities.ItemID][]decimal.Decimal {
	fence := e.snap.TimeFence
	out := make(map[entities.ItemID][]decimal.Decimal)

	for _, line := range e.snap.ScheduleLines {
		bucket := e.cfg.Horizon.BucketOf(line.PeriodStart)
		if bucket < 0 || bucket >= buckets {
			continue
		}

		var qty decimal.Decimal
		switch {
		case bucket < fence.FrozenPeriods:
			qty = line.OrderQty
		case bucket < fence.FrozenPeriods+fence.SlushyPeriods:
			qty = decimal.Max(line.ForecastQty, line.OrderQty)
		default:
			qty = line.ForecastQty.Add(line.OrderQty)
		}
		if qty.IsZero() {
			continue
		}

		if out[line.ItemID] == nil {
			out[line.ItemID] = zeroSeries(buckets)
		}
		out[line.ItemID][bucket] = out[line.ItemID][bucket].Add(qty)
	}
	return out
}

// bucketedReceipts buckets open supply; receipts due before the horizon
// count as available in the first bucket
func (e *Engine) bucketedReceipts(buckets int) map[entities.ItemID][]decimal.Decimal {
	out := make(map[entities.ItemID][]decimal.Decimal)
	for _, receipt := range e.snap.ScheduledReceipts {
		bucket := e.cfg.Horizon.BucketOf(receipt.DueDate)
		if bucket >= buckets {
			continue
		}
		if bucket < 0 {
			bucket = 0
		}
		if out[receipt.ItemID] == nil {
			out[receipt.ItemID] = zeroSeries(buckets)
		}
		out[receipt.ItemID][bucket] = out[receipt.ItemID][bucket].Add(receipt.Quantity)
	}
	return out
}

// recomputeSet returns the downward closure of changed items for
// net-change mode, or nil when every item is re-netted
func (e *Engine) recomputeSet() map[entities.ItemID]bool {
	if !e.cfg.NetChange {
		return nil
	}
	return e.graph.Descendants(e.snap.ChangedItems)
}

// carryPriorOrders folds the prior run's unconverted orders into this run.
// Confirmed and Released orders are firm: they count as scheduled receipts
// and are carried into the result unchanged. Draft orders are superseded
// for re-netted items and carried forward for untouched ones.
func (e *Engine) carryPriorOrders(state *nettingState, recompute map[entities.ItemID]bool, result *Result) error {
	for _, prior := range e.snap.PriorOrders {
		switch prior.Status {
		case entities.Converted, entities.Cancelled:
			continue
		}

		carried := *prior
		carried.CarriedForward = true
		carried.DuePeriod = clampBucket(e.cfg.Horizon.BucketOf(prior.DueDate), state.buckets)
		carried.ReleasePeriod = clampBucket(e.cfg.Horizon.BucketOf(prior.ReleaseDate), state.buckets)

		firm := prior.Status == entities.Confirmed || prior.Status == entities.Released
		replanned := recompute == nil || recompute[prior.ItemID]

		if !firm && replanned {
			// draft orders of re-netted items are superseded by the new plan
			continue
		}

		if firm {
			if state.receipts[prior.ItemID] == nil {
				state.receipts[prior.ItemID] = zeroSeries(state.buckets)
			}
			state.receipts[prior.ItemID][carried.DuePeriod] = state.receipts[prior.ItemID][carried.DuePeriod].Add(prior.Quantity)
		}

		result.PlannedOrders = append(result.PlannedOrders, &carried)
		e.propagateDependentDemand(&carried, state, result)
	}
	return nil
}

// netItem runs the projected-available-balance recurrence for one item:
// PAB[t] = PAB[t-1] + receipts[t] - gross[t], with planned receipts
// created whenever the balance would fall below safety stock.
func (e *Engine) netItem(item *entities.Item, state *nettingState) ([]*entities.Requirement, []*entities.PlannedOrder, error) {
	independent := state.independent[item.ID]
	dependent := state.dependent[item.ID]
	receipts := state.receipts[item.ID]

	safety := decimal.Zero
	if e.cfg.IncludeSafetyStock {
		safety = item.SafetyStock
	}
	pab := e.snap.OnHand[item.ID]
	policy := e.policyFor(item)
	leadBuckets := (item.LeadTimeDays + e.cfg.Horizon.BucketDays - 1) / e.cfg.Horizon.BucketDays

	reqs := make([]*entities.Requirement, state.buckets)
	var orders []*entities.PlannedOrder
	// lastCovered is the final bucket consumed by a periods-of-supply
	// order; covered buckets never spawn another order
	lastCovered := -1

	for t := 0; t < state.buckets; t++ {
		gross := seriesAt(independent, t).Add(seriesAt(dependent, t))
		scheduled := seriesAt(receipts, t)

		req := &entities.Requirement{
			ItemID:            item.ID,
			Period:            t,
			PeriodStart:       e.cfg.Horizon.StartOf(t),
			GrossRequirement:  gross,
			ScheduledReceipts: scheduled,
			SafetyStock:       safety,
			NetRequirement:    decimal.Zero,
			PlannedReceipt:    decimal.Zero,
			PlannedRelease:    decimal.Zero,
		}
		reqs[t] = req

		net := safety.Add(gross).Sub(pab).Sub(scheduled)
		if net.IsNegative() {
			net = decimal.Zero
		}
		req.NetRequirement = net

		plannedReceipt := decimal.Zero
		if net.IsPositive() && t > lastCovered {
			sized, err := lotsizing.Compute(policy, net, lotsizing.Context{
				FixedLotSize:  item.FixedLotSize,
				SupplyPeriods: item.SupplyPeriods,
				Lookahead: func(n int) decimal.Decimal {
					return e.lookaheadNet(independent, dependent, receipts, t+n, state.buckets)
				},
			})
			if err != nil {
				return nil, nil, err
			}
			plannedReceipt = sized.OrderQuantity.Round(e.cfg.Precision)
			lastCovered = t + sized.PeriodsCovered - 1

			req.PlannedReceipt = plannedReceipt

			releaseBucket := t - leadBuckets
			itemOrders, err := e.buildOrders(item, policy, plannedReceipt, releaseBucket, t)
			if err != nil {
				return nil, nil, err
			}
			orders = append(orders, itemOrders...)

			releaseRow := releaseBucket
			if releaseRow < 0 {
				releaseRow = 0
			}
			reqs[releaseRow].PlannedRelease = reqs[releaseRow].PlannedRelease.Add(plannedReceipt)
		}

		pab = pab.Add(scheduled).Add(plannedReceipt).Sub(gross)
		req.ProjectedOnHand = pab
	}

	return reqs, orders, nil
}

// lookaheadNet estimates the net requirement in a future bucket assuming
// the balance sits at safety stock after the covering order, which is
// exact for the periods-of-supply window
func (e *Engine) lookaheadNet(independent, dependent, receipts []decimal.Decimal, t, buckets int) decimal.Decimal {
	if t >= buckets {
		return decimal.Zero
	}
	net := seriesAt(independent, t).Add(seriesAt(dependent, t)).Sub(seriesAt(receipts, t))
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// buildOrders creates one or more draft planned orders for a receipt,
// splitting at the item's maximum order quantity. A release forced before
// the horizon keeps its computed date so the exception detector can flag
// it instead of it being silently dropped.
func (e *Engine) buildOrders(item *entities.Item, policy entities.LotSizePolicy, quantity decimal.Decimal, releaseBucket, dueBucket int) ([]*entities.PlannedOrder, error) {
	releaseDate := e.cfg.Horizon.StartOf(releaseBucket)
	dueDate := e.cfg.Horizon.StartOf(dueBucket)
	releasePeriod := releaseBucket
	if releasePeriod < 0 {
		releasePeriod = 0
	}

	chunks := []decimal.Decimal{quantity}
	if item.MaxOrderQty.IsPositive() && quantity.GreaterThan(item.MaxOrderQty) {
		chunks = chunks[:0]
		remaining := quantity
		for remaining.IsPositive() {
			chunk := decimal.Min(remaining, item.MaxOrderQty)
			chunks = append(chunks, chunk)
			remaining = remaining.Sub(chunk)
		}
	}

	orders := make([]*entities.PlannedOrder, 0, len(chunks))
	for _, chunk := range chunks {
		order, err := entities.NewPlannedOrder(item.ID, item.OrderType, chunk, releaseDate, dueDate, policy)
		if err != nil {
			return nil, err
		}
		order.ReleasePeriod = releasePeriod
		order.DuePeriod = dueBucket

		for _, cp := range e.graph.CoProductsFor(item.ID) {
			hundred := decimal.NewFromInt(100)
			order.CoProducts = append(order.CoProducts, entities.CoProductOutput{
				ItemID:                cp.ItemID,
				Quantity:              chunk.Mul(cp.YieldPercent).Div(hundred).Round(e.cfg.Precision),
				CostAllocationPercent: cp.CostAllocationPercent,
			})
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// propagateDependentDemand pushes an order's component demand into the
// buckets where the components are consumed. A component missing from the
// item master raises an OrphanedDemand exception instead of failing the
// run.
func (e *Engine) propagateDependentDemand(order *entities.PlannedOrder, state *nettingState, result *Result) {
	components, err := e.graph.EffectiveComponents(order.ItemID)
	if err != nil {
		// depth was validated at graph build; treat as no components
		return
	}

	for _, comp := range components {
		qty := order.Quantity.Mul(comp.QuantityPer).Round(e.cfg.Precision)
		if !qty.IsPositive() {
			continue
		}

		if _, known := e.snap.Items[comp.ItemID]; !known {
			key := string(order.ItemID) + "|" + string(comp.ItemID)
			if !state.orphaned[key] {
				state.orphaned[key] = true
				result.Exceptions = append(result.Exceptions, entities.NewMrpException(
					entities.OrphanedDemand,
					entities.SeverityWarning,
					comp.ItemID,
					order.ReleasePeriod,
					fmt.Sprintf("dependent demand from %s references unknown component %s", order.ItemID, comp.ItemID),
				))
			}
			continue
		}

		bucket := order.ReleasePeriod + comp.OffsetDays/e.cfg.Horizon.BucketDays
		if bucket < 0 {
			bucket = 0
		}
		if bucket >= state.buckets {
			continue
		}
		state.addDependent(comp.ItemID, bucket, qty)
	}
}

func zeroSeries(n int) []decimal.Decimal {
	series := make([]decimal.Decimal, n)
	for i := range series {
		series[i] = decimal.Zero
	}
	return series
}

func seriesAt(series []decimal.Decimal, i int) decimal.Decimal {
	if series == nil || i < 0 || i >= len(series) {
		return decimal.Zero
	}
	return series[i]
}

func clampBucket(bucket, buckets int) int {
	if bucket < 0 {
		return 0
	}
	if bucket >= buckets {
		return buckets - 1
	}
	return bucket
}
