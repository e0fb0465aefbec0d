// Package orchestration wires the planning stages into the single run
// entry point: snapshot in, PlanResult out, with per-plan mutual
// exclusion and cooperative cancellation.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/planwerk/mrp/pkg/application/dto"
	"github.com/planwerk/mrp/pkg/application/services/crp"
	"github.com/planwerk/mrp/pkg/application/services/mrp"
	"github.com/planwerk/mrp/pkg/domain/entities"
	"github.com/planwerk/mrp/pkg/domain/services/bomgraph"
	"github.com/planwerk/mrp/pkg/infrastructure/events"
	"github.com/planwerk/mrp/pkg/infrastructure/metrics"
)

// ErrRunInProgress is returned when a run is requested for a plan that is
// already executing. Concurrent runs are rejected, never queued.
var ErrRunInProgress = errors.New("planning run already in progress")

// CapacityMode selects the capacity planning behavior for a run
type CapacityMode int

const (
	CapacityOff CapacityMode = iota
	CapacityInfinite
	CapacityFinite
)

// String method for CapacityMode enum
func (m CapacityMode) String() string {
	switch m {
	case CapacityOff:
		return "Off"
	case CapacityInfinite:
		return "Infinite"
	case CapacityFinite:
		return "Finite"
	default:
		return "Unknown"
	}
}

// PlanConfig is the full configuration contract for one planning run
type PlanConfig struct {
	PlanID       string    `validate:"required"`
	PlanName     string    ``
	HorizonStart time.Time `validate:"required"`
	HorizonEnd   time.Time `validate:"required,gtfield=HorizonStart"`
	BucketDays   int       `validate:"min=1"`
	// CurrentDate is the plan's "now"; zero means the horizon start
	CurrentDate time.Time

	DefaultLotSizePolicy entities.LotSizePolicy
	IncludeSafetyStock   bool
	NetChange            bool

	CapacityMode        CapacityMode
	OverloadThreshold   float64 `validate:"gt=0"`
	BottleneckThreshold float64 `validate:"gt=0,ltefield=OverloadThreshold"`
	IncludeSetupTimes   bool
	IncludeEfficiency   bool

	QuantityPrecision int32 `validate:"min=0,max=8"`
	MaxBomDepth       int   `validate:"min=1"`
	ExcessMultiple    float64
	ExcessPeriods     int
}

// DefaultPlanConfig returns a config with the engine defaults filled in;
// callers set the plan identity and horizon
func DefaultPlanConfig() PlanConfig {
	return PlanConfig{
		BucketDays:          7,
		OverloadThreshold:   100,
		BottleneckThreshold: 90,
		IncludeSetupTimes:   true,
		IncludeEfficiency:   true,
		QuantityPrecision:   4,
		MaxBomDepth:         32,
		ExcessMultiple:      3,
		ExcessPeriods:       4,
	}
}

// Planner executes planning runs. It is safe for concurrent use; runs for
// distinct plans proceed in parallel while runs for the same plan are
// rejected with ErrRunInProgress.
type Planner struct {
	log      *logrus.Logger
	store    events.Store
	metrics  *metrics.Metrics
	validate *validator.Validate

	mutex  sync.Mutex
	active map[string]bool
}

// NewPlanner creates a planner. The event store and metrics may be nil.
func NewPlanner(log *logrus.Logger, store events.Store, m *metrics.Metrics) *Planner {
	if log == nil {
		log = logrus.New()
	}
	return &Planner{
		log:      log,
		store:    store,
		metrics:  m,
		validate: validator.New(),
		active:   make(map[string]bool),
	}
}

// Run executes one planning run over an immutable snapshot. Precondition
// failures abort before any output exists; a cancelled run yields no
// result at all.
func (p *Planner) Run(ctx context.Context, cfg PlanConfig, snapshot *dto.PlanSnapshot) (*dto.PlanResult, error) {
	if err := p.validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid plan configuration: %w", err)
	}

	if !p.acquire(cfg.PlanID) {
		p.observe(metrics.OutcomeRejected, 0)
		return nil, fmt.Errorf("plan %s: %w", cfg.PlanID, ErrRunInProgress)
	}
	defer p.release(cfg.PlanID)

	started := time.Now()
	p.append(events.NewRunStarted(cfg.PlanID, cfg.PlanName, cfg.NetChange))
	p.log.WithFields(logrus.Fields{
		"plan":      cfg.PlanID,
		"netChange": cfg.NetChange,
		"capacity":  cfg.CapacityMode.String(),
	}).Info("planning run started")

	result, err := p.execute(ctx, cfg, snapshot)
	duration := time.Since(started)

	switch {
	case err == nil:
		result.Summary.StartedAt = started
		result.Summary.FinishedAt = started.Add(duration)
		p.append(events.NewRunCompleted(cfg.PlanID, len(result.Requirements), len(result.PlannedOrders), len(result.Exceptions)))
		p.observe(metrics.OutcomeCompleted, duration)
		p.recordExceptionMetrics(result)
		p.log.WithFields(logrus.Fields{
			"plan":          cfg.PlanID,
			"duration":      duration.String(),
			"requirements":  len(result.Requirements),
			"plannedOrders": len(result.PlannedOrders),
			"exceptions":    len(result.Exceptions),
		}).Info("planning run completed")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		p.append(events.NewRunCancelled(cfg.PlanID))
		p.observe(metrics.OutcomeCancelled, duration)
		p.log.WithField("plan", cfg.PlanID).Warn("planning run cancelled")
	default:
		p.append(events.NewRunFailed(cfg.PlanID, err.Error()))
		p.observe(metrics.OutcomeFailed, duration)
		p.log.WithFields(logrus.Fields{
			"plan":  cfg.PlanID,
			"error": err.Error(),
		}).Error("planning run failed")
	}

	if err != nil {
		return nil, err
	}
	return result, nil
}

// execute runs the stages; everything here is pure CPU over the snapshot
func (p *Planner) execute(ctx context.Context, cfg PlanConfig, snapshot *dto.PlanSnapshot) (*dto.PlanResult, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("plan %s: snapshot is required", cfg.PlanID)
	}
	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("plan %s: %w", cfg.PlanID, err)
	}

	horizon, err := entities.NewHorizon(cfg.HorizonStart, cfg.HorizonEnd, cfg.BucketDays)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", cfg.PlanID, err)
	}
	currentDate := cfg.CurrentDate
	if currentDate.IsZero() {
		currentDate = horizon.Start
	}

	graph, err := bomgraph.Build(bomgraph.Config{
		MaxDepth:  cfg.MaxBomDepth,
		Precision: cfg.QuantityPrecision,
	}, snapshot.Items, snapshot.BomLines, snapshot.CoProducts)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", cfg.PlanID, err)
	}

	engine := mrp.NewEngine(mrp.Config{
		Horizon:            horizon,
		CurrentDate:        currentDate,
		DefaultPolicy:      cfg.DefaultLotSizePolicy,
		IncludeSafetyStock: cfg.IncludeSafetyStock,
		NetChange:          cfg.NetChange,
		Precision:          cfg.QuantityPrecision,
	}, graph, snapshot)

	netting, err := engine.Net(ctx)
	if err != nil {
		return nil, err
	}

	detector := mrp.NewDetector(mrp.DetectorConfig{
		Horizon:        horizon,
		CurrentDate:    currentDate,
		ExcessMultiple: decimal.NewFromFloat(cfg.ExcessMultiple),
		ExcessPeriods:  cfg.ExcessPeriods,
	}, snapshot.Items)

	result := &dto.PlanResult{
		Requirements:  netting.Requirements,
		PlannedOrders: netting.PlannedOrders,
		Exceptions:    append(netting.Exceptions, detector.Detect(netting.Requirements, netting.PlannedOrders)...),
		Summary: dto.RunSummary{
			PlanID:       cfg.PlanID,
			PlanName:     cfg.PlanName,
			ItemsPlanned: countItems(netting.Requirements),
			NetChange:    cfg.NetChange,
		},
	}

	if cfg.CapacityMode != CapacityOff {
		crpCfg := crp.Config{
			Horizon:             horizon,
			IncludeSetupTimes:   cfg.IncludeSetupTimes,
			IncludeEfficiency:   cfg.IncludeEfficiency,
			OverloadThreshold:   decimal.NewFromFloat(cfg.OverloadThreshold),
			BottleneckThreshold: decimal.NewFromFloat(cfg.BottleneckThreshold),
			FiniteLeveling:      cfg.CapacityMode == CapacityFinite,
		}

		calculator := crp.NewCalculator(crpCfg, snapshot.Routings, snapshot.WorkCenters)
		capacityReqs, err := calculator.Calculate(ctx, result.PlannedOrders)
		if err != nil {
			return nil, err
		}

		leveler := crp.NewLeveler(crpCfg, snapshot.WorkCenters)
		leveled, capacityExcs, err := leveler.Level(ctx, capacityReqs)
		if err != nil {
			return nil, err
		}
		result.CapacityRequirements = leveled
		result.CapacityExceptions = capacityExcs
	}

	if p.metrics != nil {
		p.metrics.PlannedOrders.Set(float64(len(result.PlannedOrders)))
	}
	return result, nil
}

// TransitionOrder moves a planned order through its lifecycle and records
// the change in the plan's audit stream. Invalid moves are rejected by the
// order's transition table and leave the stream untouched.
func (p *Planner) TransitionOrder(planID string, order *entities.PlannedOrder, to entities.PlannedOrderStatus) error {
	from := order.Status
	if err := order.Transition(to); err != nil {
		return err
	}
	p.append(events.NewOrderTransitioned(planID, order, from))
	p.log.WithFields(logrus.Fields{
		"plan":  planID,
		"order": order.ID,
		"item":  order.ItemID,
		"from":  from.String(),
		"to":    order.Status.String(),
	}).Info("planned order transitioned")
	return nil
}

// ConvertOrder binds a released order to its execution order and records
// the terminal transition
func (p *Planner) ConvertOrder(planID string, order *entities.PlannedOrder, executionRef string) error {
	from := order.Status
	if err := order.Convert(executionRef); err != nil {
		return err
	}
	p.append(events.NewOrderTransitioned(planID, order, from))
	return nil
}

func (p *Planner) acquire(planID string) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.active[planID] {
		return false
	}
	p.active[planID] = true
	return true
}

func (p *Planner) release(planID string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	delete(p.active, planID)
}

func (p *Planner) append(event events.Event) {
	if p.store == nil {
		return
	}
	if err := p.store.Append(event.StreamID(), event); err != nil {
		p.log.WithField("event", event.Type()).Warn("failed to append audit event")
	}
}

func (p *Planner) observe(outcome string, duration time.Duration) {
	if p.metrics != nil {
		p.metrics.ObserveRun(outcome, duration)
	}
}

func (p *Planner) recordExceptionMetrics(result *dto.PlanResult) {
	if p.metrics == nil {
		return
	}
	for _, exc := range result.Exceptions {
		p.metrics.ExceptionsTotal.WithLabelValues(exc.Type.String()).Inc()
	}
	for _, exc := range result.CapacityExceptions {
		p.metrics.ExceptionsTotal.WithLabelValues(exc.Type.String()).Inc()
	}
}

func countItems(requirements []*entities.Requirement) int {
	seen := make(map[entities.ItemID]bool)
	for _, req := range requirements {
		seen[req.ItemID] = true
	}
	return len(seen)
}
