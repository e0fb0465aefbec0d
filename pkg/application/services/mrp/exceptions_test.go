package mrp

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/planwerk/mrp/pkg/domain/entities"
)

func newTestDetector(t *testing.T, items map[entities.ItemID]*entities.Item) *Detector {
	t.Helper()
	return NewDetector(DetectorConfig{
		Horizon:        weeklyHorizon(t, 4),
		CurrentDate:    testStart,
		ExcessMultiple: decimal.NewFromInt(3),
		ExcessPeriods:  2,
	}, items)
}

func exceptionsOfType(exceptions []*entities.MrpException, et entities.MrpExceptionType) []*entities.MrpException {
	var out []*entities.MrpException
	for _, exc := range exceptions {
		if exc.Type == et {
			out = append(out, exc)
		}
	}
	return out
}

func TestDetect_PastDue(t *testing.T) {
	items := map[entities.ItemID]*entities.Item{"A": {ID: "A"}}
	detector := newTestDetector(t, items)

	lateRelease := testStart.AddDate(0, 0, -7)
	late, err := entities.NewPlannedOrder("A", entities.Production, decimal.NewFromInt(10),
		lateRelease, testStart, entities.LotForLot)
	if err != nil {
		t.Fatalf("Expected valid order: %v", err)
	}

	onTime, err := entities.NewPlannedOrder("A", entities.Production, decimal.NewFromInt(10),
		testStart.AddDate(0, 0, 7), testStart.AddDate(0, 0, 14), entities.LotForLot)
	if err != nil {
		t.Fatalf("Expected valid order: %v", err)
	}

	carried := *late
	carried.CarriedForward = true

	exceptions := detector.Detect(nil, []*entities.PlannedOrder{late, onTime, &carried})
	pastDue := exceptionsOfType(exceptions, entities.PastDue)
	if len(pastDue) != 1 {
		t.Fatalf("Expected exactly 1 past due exception, got %d", len(pastDue))
	}
	if pastDue[0].Severity != entities.SeverityWarning {
		t.Errorf("Expected warning severity, got %s", pastDue[0].Severity)
	}
}

func TestDetect_Unfulfillable(t *testing.T) {
	items := map[entities.ItemID]*entities.Item{
		"LONG": {ID: "LONG", LeadTimeDays: 21},
	}
	detector := newTestDetector(t, items)

	requirements := []*entities.Requirement{
		{
			ItemID:         "LONG",
			Period:         1,
			PeriodStart:    testStart.AddDate(0, 0, 7),
			NetRequirement: decimal.NewFromInt(5),
		},
		{
			ItemID:         "LONG",
			Period:         3,
			PeriodStart:    testStart.AddDate(0, 0, 21),
			NetRequirement: decimal.NewFromInt(5),
		},
	}

	exceptions := detector.Detect(requirements, nil)
	unfulfillable := exceptionsOfType(exceptions, entities.Unfulfillable)
	if len(unfulfillable) != 1 {
		t.Fatalf("Expected 1 unfulfillable exception, got %d", len(unfulfillable))
	}
	if unfulfillable[0].Period != 1 {
		t.Errorf("Expected exception in period 1, got %d", unfulfillable[0].Period)
	}
	if unfulfillable[0].Severity != entities.SeverityCritical {
		t.Errorf("Expected critical severity, got %s", unfulfillable[0].Severity)
	}
}

func TestDetect_ExcessInventory(t *testing.T) {
	items := map[entities.ItemID]*entities.Item{"A": {ID: "A"}}
	detector := newTestDetector(t, items)

	// average gross 10, threshold 30; on hand above it in two consecutive
	// buckets trips the rule
	mk := func(period int, gross, pab int64) *entities.Requirement {
		return &entities.Requirement{
			ItemID:           "A",
			Period:           period,
			PeriodStart:      testStart.AddDate(0, 0, period*7),
			GrossRequirement: decimal.NewFromInt(gross),
			ProjectedOnHand:  decimal.NewFromInt(pab),
		}
	}
	requirements := []*entities.Requirement{
		mk(0, 10, 20),
		mk(1, 10, 50),
		mk(2, 10, 50),
		mk(3, 10, 20),
	}

	exceptions := detector.Detect(requirements, nil)
	excess := exceptionsOfType(exceptions, entities.ExcessInventory)
	if len(excess) != 1 {
		t.Fatalf("Expected 1 excess inventory exception, got %d", len(excess))
	}
	if excess[0].Period != 1 {
		t.Errorf("Expected streak starting in period 1, got %d", excess[0].Period)
	}

	// a broken streak must not trip
	requirements[2].ProjectedOnHand = decimal.NewFromInt(20)
	exceptions = detector.Detect(requirements, nil)
	if got := exceptionsOfType(exceptions, entities.ExcessInventory); len(got) != 0 {
		t.Errorf("Expected no exception for a broken streak, got %d", len(got))
	}
}

func TestDetect_NoDemandNoExcess(t *testing.T) {
	items := map[entities.ItemID]*entities.Item{"IDLE": {ID: "IDLE"}}
	detector := newTestDetector(t, items)

	requirements := []*entities.Requirement{{
		ItemID:          "IDLE",
		Period:          0,
		PeriodStart:     testStart,
		ProjectedOnHand: decimal.NewFromInt(1000),
	}}

	if exceptions := detector.Detect(requirements, nil); len(exceptions) != 0 {
		t.Errorf("Expected no exceptions without gross demand, got %d", len(exceptions))
	}
}

func TestDetect_PastDueBoundary(t *testing.T) {
	items := map[entities.ItemID]*entities.Item{"A": {ID: "A"}}
	detector := newTestDetector(t, items)

	exact, err := entities.NewPlannedOrder("A", entities.Production, decimal.NewFromInt(1),
		testStart, testStart.Add(time.Hour), entities.LotForLot)
	if err != nil {
		t.Fatalf("Expected valid order: %v", err)
	}

	exceptions := detector.Detect(nil, []*entities.PlannedOrder{exact})
	if got := exceptionsOfType(exceptions, entities.PastDue); len(got) != 0 {
		t.Errorf("Expected release on the plan date not to be past due, got %d", len(got))
	}
}
