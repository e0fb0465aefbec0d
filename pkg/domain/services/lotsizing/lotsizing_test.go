package lotsizing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/planwerk/mrp/pkg/domain/entities"
)

func TestCompute_LotForLot(t *testing.T) {
	net := decimal.RequireFromString("37.5")
	result, err := Compute(entities.LotForLot, net, Context{})
	if err != nil {
		t.Fatalf("Expected lot-for-lot to succeed: %v", err)
	}
	if !result.OrderQuantity.Equal(net) {
		t.Errorf("Expected order quantity %s, got %s", net, result.OrderQuantity)
	}
	if result.PeriodsCovered != 1 {
		t.Errorf("Expected 1 period covered, got %d", result.PeriodsCovered)
	}
}

func TestCompute_FixedOrderQuantity(t *testing.T) {
	testCases := []struct {
		name     string
		net      string
		lotSize  string
		expected string
	}{
		{"exact multiple", "100", "50", "100"},
		{"rounds up to next lot", "101", "50", "150"},
		{"single lot covers", "7", "50", "50"},
		{"fractional lot size", "10", "2.5", "10"},
		{"fractional rounds up", "11", "2.5", "12.5"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Compute(entities.FixedOrderQuantity,
				decimal.RequireFromString(tc.net),
				Context{FixedLotSize: decimal.RequireFromString(tc.lotSize)})
			if err != nil {
				t.Fatalf("Expected fixed order quantity to succeed: %v", err)
			}
			if !result.OrderQuantity.Equal(decimal.RequireFromString(tc.expected)) {
				t.Errorf("Expected order quantity %s, got %s", tc.expected, result.OrderQuantity)
			}
		})
	}

	_, err := Compute(entities.FixedOrderQuantity, decimal.NewFromInt(10), Context{})
	if err == nil {
		t.Error("Expected error without a positive fixed lot size")
	}
}

func TestCompute_PeriodsOfSupply(t *testing.T) {
	future := []decimal.Decimal{
		decimal.NewFromInt(20),
		decimal.NewFromInt(30),
		decimal.NewFromInt(999),
	}

	result, err := Compute(entities.PeriodsOfSupply, decimal.NewFromInt(10), Context{
		SupplyPeriods: 3,
		Lookahead: func(n int) decimal.Decimal {
			return future[n-1]
		},
	})
	if err != nil {
		t.Fatalf("Expected periods of supply to succeed: %v", err)
	}
	// 10 + 20 + 30; the fourth bucket is outside the window
	if !result.OrderQuantity.Equal(decimal.NewFromInt(60)) {
		t.Errorf("Expected order quantity 60, got %s", result.OrderQuantity)
	}
	if result.PeriodsCovered != 3 {
		t.Errorf("Expected 3 periods covered, got %d", result.PeriodsCovered)
	}

	_, err = Compute(entities.PeriodsOfSupply, decimal.NewFromInt(10), Context{SupplyPeriods: 0})
	if err == nil {
		t.Error("Expected error for a zero supply window")
	}
}

func TestCompute_NegativeNet(t *testing.T) {
	if _, err := Compute(entities.LotForLot, decimal.NewFromInt(-1), Context{}); err == nil {
		t.Error("Expected error for negative net requirement")
	}
}
