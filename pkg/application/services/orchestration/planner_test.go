package orchestration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/planwerk/mrp/pkg/application/dto"
	"github.com/planwerk/mrp/pkg/domain/entities"
	"github.com/planwerk/mrp/pkg/infrastructure/events"
	"github.com/planwerk/mrp/pkg/infrastructure/metrics"
)

var testStart = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func testPlanConfig() PlanConfig {
	cfg := DefaultPlanConfig()
	cfg.PlanID = "test-plan"
	cfg.HorizonStart = testStart
	cfg.HorizonEnd = testStart.AddDate(0, 0, 28)
	cfg.CapacityMode = CapacityFinite
	return cfg
}

// testSnapshot builds a two-level structure: GEARBOX uses 2 GEAR, both
// with routings over one milling work center.
func testSnapshot() *dto.PlanSnapshot {
	gearbox := &entities.Item{ID: "GEARBOX", LeadTimeDays: 7, LotSizePolicy: entities.LotForLot, OrderType: entities.Production}
	gear := &entities.Item{ID: "GEAR", LeadTimeDays: 0, LotSizePolicy: entities.LotForLot, OrderType: entities.Production}

	routing := func(itemID entities.ItemID) *entities.Routing {
		return &entities.Routing{
			ItemID: itemID,
			Operations: []entities.Operation{{
				Sequence:        10,
				WorkCenterID:    "MILL",
				SetupHours:      decimal.NewFromInt(1),
				RunHoursPerUnit: decimal.RequireFromString("0.25"),
			}},
		}
	}

	return &dto.PlanSnapshot{
		Items: map[entities.ItemID]*entities.Item{"GEARBOX": gearbox, "GEAR": gear},
		BomLines: []*entities.BomLine{{
			ParentID:    "GEARBOX",
			ComponentID: "GEAR",
			QuantityPer: decimal.NewFromInt(2),
			ScrapRate:   decimal.Zero,
		}},
		Routings: map[entities.ItemID]*entities.Routing{
			"GEARBOX": routing("GEARBOX"),
			"GEAR":    routing("GEAR"),
		},
		WorkCenters: map[entities.WorkCenterID]*entities.WorkCenter{
			"MILL": {
				ID:                 "MILL",
				DailyCapacityHours: decimal.NewFromInt(8),
				Efficiency:         decimal.NewFromInt(1),
			},
		},
		ScheduleLines: []*entities.MasterScheduleLine{{
			ItemID:      "GEARBOX",
			PeriodStart: testStart.AddDate(0, 0, 14),
			ForecastQty: decimal.NewFromInt(10),
		}},
		OnHand: map[entities.ItemID]decimal.Decimal{},
	}
}

func TestRun_EndToEnd(t *testing.T) {
	store := events.NewInMemoryStore()
	planner := NewPlanner(nil, store, metrics.New(prometheus.NewRegistry()))

	result, err := planner.Run(context.Background(), testPlanConfig(), testSnapshot())
	if err != nil {
		t.Fatalf("Expected run to succeed: %v", err)
	}

	if result.Summary.ItemsPlanned != 2 {
		t.Errorf("Expected 2 items planned, got %d", result.Summary.ItemsPlanned)
	}
	if len(result.PlannedOrders) != 2 {
		t.Fatalf("Expected 2 planned orders, got %d", len(result.PlannedOrders))
	}
	for _, order := range result.PlannedOrders {
		if order.Status != entities.Draft {
			t.Errorf("Expected new orders in Draft status, got %s", order.Status)
		}
	}
	if len(result.CapacityRequirements) == 0 {
		t.Error("Expected capacity requirements with finite mode on")
	}

	recorded, err := store.Read("test-plan")
	if err != nil {
		t.Fatalf("Expected event stream read to succeed: %v", err)
	}
	if len(recorded) != 2 {
		t.Fatalf("Expected started and completed events, got %d", len(recorded))
	}
	if recorded[0].Type() != events.RunStarted || recorded[1].Type() != events.RunCompleted {
		t.Errorf("Expected started then completed, got %s then %s", recorded[0].Type(), recorded[1].Type())
	}
}

func TestRun_CapacityOffSkipsCapacityStage(t *testing.T) {
	planner := NewPlanner(nil, nil, nil)

	cfg := testPlanConfig()
	cfg.CapacityMode = CapacityOff

	result, err := planner.Run(context.Background(), cfg, testSnapshot())
	if err != nil {
		t.Fatalf("Expected run to succeed: %v", err)
	}
	if result.CapacityRequirements != nil {
		t.Error("Expected no capacity output with capacity off")
	}
}

func TestRun_RejectsConcurrentRunForSamePlan(t *testing.T) {
	planner := NewPlanner(nil, nil, nil)

	if !planner.acquire("test-plan") {
		t.Fatal("Expected to acquire idle plan")
	}
	defer planner.release("test-plan")

	_, err := planner.Run(context.Background(), testPlanConfig(), testSnapshot())
	if !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("Expected ErrRunInProgress, got %v", err)
	}

	// a different plan is unaffected
	other := testPlanConfig()
	other.PlanID = "other-plan"
	if _, err := planner.Run(context.Background(), other, testSnapshot()); err != nil {
		t.Errorf("Expected run for a different plan to proceed: %v", err)
	}
}

func TestRun_ReleasesPlanAfterCompletion(t *testing.T) {
	planner := NewPlanner(nil, nil, nil)

	for i := 0; i < 2; i++ {
		if _, err := planner.Run(context.Background(), testPlanConfig(), testSnapshot()); err != nil {
			t.Fatalf("Run %d: expected sequential runs to succeed: %v", i, err)
		}
	}
}

func TestRun_CancellationYieldsNoResult(t *testing.T) {
	store := events.NewInMemoryStore()
	planner := NewPlanner(nil, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := planner.Run(ctx, testPlanConfig(), testSnapshot())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if result != nil {
		t.Error("Expected no result from a cancelled run")
	}

	recorded, err := store.Read("test-plan")
	if err != nil {
		t.Fatalf("Expected event stream read to succeed: %v", err)
	}
	last := recorded[len(recorded)-1]
	if last.Type() != events.RunCancelled {
		t.Errorf("Expected cancelled event, got %s", last.Type())
	}
}

func TestRun_RejectsInvalidConfig(t *testing.T) {
	planner := NewPlanner(nil, nil, nil)

	cfg := testPlanConfig()
	cfg.PlanID = ""
	if _, err := planner.Run(context.Background(), cfg, testSnapshot()); err == nil {
		t.Error("Expected missing plan id to be rejected")
	}

	cfg = testPlanConfig()
	cfg.HorizonEnd = cfg.HorizonStart
	if _, err := planner.Run(context.Background(), cfg, testSnapshot()); err == nil {
		t.Error("Expected empty horizon to be rejected")
	}

	cfg = testPlanConfig()
	cfg.BottleneckThreshold = cfg.OverloadThreshold + 10
	if _, err := planner.Run(context.Background(), cfg, testSnapshot()); err == nil {
		t.Error("Expected bottleneck threshold above overload threshold to be rejected")
	}
}

func TestRun_InvalidSnapshotFailsBeforeOutput(t *testing.T) {
	store := events.NewInMemoryStore()
	planner := NewPlanner(nil, store, nil)

	snapshot := testSnapshot()
	snapshot.ScheduleLines = append(snapshot.ScheduleLines, &entities.MasterScheduleLine{
		ItemID:      "UNKNOWN",
		PeriodStart: testStart,
		ForecastQty: decimal.NewFromInt(1),
	})

	result, err := planner.Run(context.Background(), testPlanConfig(), snapshot)
	if err == nil {
		t.Fatal("Expected invalid snapshot to fail the run")
	}
	if result != nil {
		t.Error("Expected no output from a failed run")
	}

	recorded, _ := store.Read("test-plan")
	last := recorded[len(recorded)-1]
	if last.Type() != events.RunFailed {
		t.Errorf("Expected failed event, got %s", last.Type())
	}
}

func TestTransitionOrder_RecordsAuditEvents(t *testing.T) {
	store := events.NewInMemoryStore()
	planner := NewPlanner(nil, store, nil)

	order, err := entities.NewPlannedOrder(
		"GEARBOX", entities.Production, decimal.NewFromInt(10),
		testStart, testStart.AddDate(0, 0, 7), entities.LotForLot,
	)
	if err != nil {
		t.Fatalf("Expected valid order: %v", err)
	}

	if err := planner.TransitionOrder("test-plan", order, entities.Confirmed); err != nil {
		t.Fatalf("Expected Draft to Confirmed to succeed: %v", err)
	}

	recorded, err := store.Read("test-plan")
	if err != nil {
		t.Fatalf("Expected event stream read to succeed: %v", err)
	}
	if len(recorded) != 1 {
		t.Fatalf("Expected 1 transition event, got %d", len(recorded))
	}
	if recorded[0].Type() != events.OrderTransitioned {
		t.Fatalf("Expected %s event, got %s", events.OrderTransitioned, recorded[0].Type())
	}
	data, ok := recorded[0].Data().(events.OrderTransitionedData)
	if !ok {
		t.Fatalf("Expected OrderTransitionedData, got %T", recorded[0].Data())
	}
	if data.OrderID != order.ID || data.ItemID != "GEARBOX" {
		t.Errorf("Expected event to identify the order, got %s for %s", data.OrderID, data.ItemID)
	}
	if data.From != entities.Draft || data.To != entities.Confirmed {
		t.Errorf("Expected Draft to Confirmed, got %s to %s", data.From, data.To)
	}

	// an invalid move is rejected and leaves the stream untouched
	err = planner.TransitionOrder("test-plan", order, entities.Converted)
	var invalid *entities.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected InvalidTransitionError, got %v", err)
	}
	recorded, _ = store.Read("test-plan")
	if len(recorded) != 1 {
		t.Errorf("Expected no event from a rejected transition, got %d", len(recorded))
	}
}

func TestConvertOrder_EmitsTerminalTransition(t *testing.T) {
	store := events.NewInMemoryStore()
	planner := NewPlanner(nil, store, nil)

	order, err := entities.NewPlannedOrder(
		"GEAR", entities.Production, decimal.NewFromInt(5),
		testStart, testStart.AddDate(0, 0, 7), entities.LotForLot,
	)
	if err != nil {
		t.Fatalf("Expected valid order: %v", err)
	}
	if err := planner.TransitionOrder("test-plan", order, entities.Confirmed); err != nil {
		t.Fatalf("Expected Draft to Confirmed to succeed: %v", err)
	}
	if err := planner.TransitionOrder("test-plan", order, entities.Released); err != nil {
		t.Fatalf("Expected Confirmed to Released to succeed: %v", err)
	}

	if err := planner.ConvertOrder("test-plan", order, "WO-1001"); err != nil {
		t.Fatalf("Expected conversion to succeed: %v", err)
	}
	if order.Status != entities.Converted {
		t.Errorf("Expected Converted status, got %s", order.Status)
	}
	if order.ConvertedRef != "WO-1001" {
		t.Errorf("Expected execution reference WO-1001, got %s", order.ConvertedRef)
	}

	recorded, _ := store.Read("test-plan")
	if len(recorded) != 3 {
		t.Fatalf("Expected 3 transition events, got %d", len(recorded))
	}
	data := recorded[2].Data().(events.OrderTransitionedData)
	if data.From != entities.Released || data.To != entities.Converted {
		t.Errorf("Expected Released to Converted, got %s to %s", data.From, data.To)
	}
}

func TestRun_CyclicBomFailsRun(t *testing.T) {
	planner := NewPlanner(nil, nil, nil)

	snapshot := testSnapshot()
	snapshot.BomLines = append(snapshot.BomLines, &entities.BomLine{
		ParentID:    "GEAR",
		ComponentID: "GEARBOX",
		QuantityPer: decimal.NewFromInt(1),
		ScrapRate:   decimal.Zero,
	})

	if _, err := planner.Run(context.Background(), testPlanConfig(), snapshot); err == nil {
		t.Fatal("Expected cyclic BOM to fail the run")
	}
}
