package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/planwerk/mrp/pkg/application/dto"
	"github.com/planwerk/mrp/pkg/application/services/orchestration"
	"github.com/planwerk/mrp/pkg/domain/entities"
	"github.com/planwerk/mrp/pkg/infrastructure/events"
)

func main() {
	ctx := context.Background()

	snapshot := setupGearboxPlant()

	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	cfg := orchestration.DefaultPlanConfig()
	cfg.PlanID = "demo"
	cfg.PlanName = "Gearbox Demo Plan"
	cfg.HorizonStart = start
	cfg.HorizonEnd = start.AddDate(0, 0, 56)
	cfg.CapacityMode = orchestration.CapacityFinite

	planner := orchestration.NewPlanner(nil, events.NewInMemoryStore(), nil)

	fmt.Println("🏭 Running material and capacity plan...")
	fmt.Printf("Horizon: %s to %s in %d-day buckets\n\n",
		cfg.HorizonStart.Format("2006-01-02"), cfg.HorizonEnd.Format("2006-01-02"), cfg.BucketDays)

	result, err := planner.Run(ctx, cfg, snapshot)
	if err != nil {
		fmt.Printf("❌ Planning failed: %v\n", err)
		return
	}

	fmt.Println("📊 Plan Results:")
	fmt.Printf("  Items Planned: %d\n", result.Summary.ItemsPlanned)
	fmt.Printf("  Planned Orders: %d\n", len(result.PlannedOrders))
	fmt.Printf("  Exceptions: %d\n", len(result.Exceptions))
	fmt.Printf("  Capacity Buckets: %d\n\n", len(result.CapacityRequirements))

	if len(result.PlannedOrders) > 0 {
		fmt.Println("📝 Planned Orders:")
		for _, order := range result.PlannedOrders {
			fmt.Printf("  %s: %s units (Release: %s, Due: %s)\n",
				order.ItemID,
				order.Quantity.String(),
				order.ReleaseDate.Format("2006-01-02"),
				order.DueDate.Format("2006-01-02"))
		}
		fmt.Println()
	}

	if len(result.Exceptions) > 0 {
		fmt.Println("⚠️  Exceptions:")
		for _, exc := range result.Exceptions {
			fmt.Printf("  [%s] %s: %s\n", exc.Severity, exc.ItemID, exc.Message)
		}
		fmt.Println()
	}

	for _, req := range result.CapacityRequirements {
		if req.Status != entities.CapacityNormal {
			fmt.Printf("🔧 %s period %d: %s%% load (%s)\n",
				req.WorkCenterID, req.Period, req.LoadPercent.Round(1), req.Status)
		}
	}

	fmt.Println("✅ Planning complete!")
}

func setupGearboxPlant() *dto.PlanSnapshot {
	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	items := map[entities.ItemID]*entities.Item{
		"GEARBOX": {
			ID:            "GEARBOX",
			Name:          "Gearbox Assembly",
			UnitOfMeasure: "EA",
			LeadTimeDays:  14,
			LotSizePolicy: entities.LotForLot,
			OrderType:     entities.Production,
		},
		"GEAR": {
			ID:            "GEAR",
			Name:          "Spur Gear",
			UnitOfMeasure: "EA",
			LeadTimeDays:  7,
			LotSizePolicy: entities.FixedOrderQuantity,
			FixedLotSize:  decimal.NewFromInt(50),
			OrderType:     entities.Production,
		},
		"STEEL_BLANK": {
			ID:            "STEEL_BLANK",
			Name:          "Forged Steel Blank",
			UnitOfMeasure: "EA",
			LeadTimeDays:  21,
			SafetyStock:   decimal.NewFromInt(20),
			LotSizePolicy: entities.PeriodsOfSupply,
			SupplyPeriods: 2,
			OrderType:     entities.Purchase,
		},
	}

	bomLines := []*entities.BomLine{
		{ParentID: "GEARBOX", ComponentID: "GEAR", QuantityPer: decimal.NewFromInt(4), ScrapRate: decimal.Zero},
		{ParentID: "GEAR", ComponentID: "STEEL_BLANK", QuantityPer: decimal.NewFromInt(1), ScrapRate: decimal.RequireFromString("0.05")},
	}

	routings := map[entities.ItemID]*entities.Routing{
		"GEARBOX": {
			ItemID: "GEARBOX",
			Operations: []entities.Operation{
				{Sequence: 10, WorkCenterID: "ASSEMBLY", SetupHours: decimal.NewFromInt(1), RunHoursPerUnit: decimal.RequireFromString("0.5")},
			},
		},
		"GEAR": {
			ItemID: "GEAR",
			Operations: []entities.Operation{
				{Sequence: 10, WorkCenterID: "MILL", SetupHours: decimal.NewFromInt(2), RunHoursPerUnit: decimal.RequireFromString("0.25")},
				{Sequence: 20, WorkCenterID: "GRIND", SetupHours: decimal.NewFromInt(1), RunHoursPerUnit: decimal.RequireFromString("0.1")},
			},
		},
	}

	workCenters := map[entities.WorkCenterID]*entities.WorkCenter{
		"ASSEMBLY": {ID: "ASSEMBLY", Name: "Final Assembly", DailyCapacityHours: decimal.NewFromInt(8), Efficiency: decimal.NewFromInt(1)},
		"MILL":     {ID: "MILL", Name: "CNC Milling", DailyCapacityHours: decimal.NewFromInt(16), Efficiency: decimal.RequireFromString("0.85")},
		"GRIND":    {ID: "GRIND", Name: "Gear Grinding", DailyCapacityHours: decimal.NewFromInt(8), Efficiency: decimal.RequireFromString("0.9")},
	}

	scheduleLines := []*entities.MasterScheduleLine{
		{ItemID: "GEARBOX", PeriodStart: start.AddDate(0, 0, 21), ForecastQty: decimal.NewFromInt(30)},
		{ItemID: "GEARBOX", PeriodStart: start.AddDate(0, 0, 28), ForecastQty: decimal.NewFromInt(25), OrderQty: decimal.NewFromInt(10)},
		{ItemID: "GEARBOX", PeriodStart: start.AddDate(0, 0, 35), ForecastQty: decimal.NewFromInt(30)},
	}

	return &dto.PlanSnapshot{
		Items:         items,
		BomLines:      bomLines,
		Routings:      routings,
		WorkCenters:   workCenters,
		ScheduleLines: scheduleLines,
		OnHand: map[entities.ItemID]decimal.Decimal{
			"GEAR":        decimal.NewFromInt(40),
			"STEEL_BLANK": decimal.NewFromInt(100),
		},
		ScheduledReceipts: []*entities.ScheduledReceipt{
			{ItemID: "STEEL_BLANK", Quantity: decimal.NewFromInt(50), DueDate: start.AddDate(0, 0, 10)},
		},
	}
}
