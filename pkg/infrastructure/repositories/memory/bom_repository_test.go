package memory

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/planwerk/mrp/pkg/domain/entities"
)

func TestBOMRepository_AddAndGetBomLine(t *testing.T) {
	repo := NewBOMRepository(10)

	line := entities.BomLine{
		ParentID:    "GEARBOX",
		ComponentID: "GEAR",
		QuantityPer: decimal.NewFromInt(2),
		ScrapRate:   decimal.RequireFromString("0.05"),
	}
	repo.AddBomLine(line)

	lines, err := repo.GetBomLines("GEARBOX")
	if err != nil {
		t.Fatalf("Failed to get BOM lines: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("Expected 1 BOM line, got %d", len(lines))
	}

	retrieved := lines[0]
	if retrieved.ComponentID != line.ComponentID {
		t.Errorf("Expected component %s, got %s", line.ComponentID, retrieved.ComponentID)
	}
	if !retrieved.QuantityPer.Equal(line.QuantityPer) {
		t.Errorf("Expected quantity per %s, got %s", line.QuantityPer, retrieved.QuantityPer)
	}
	if !retrieved.ScrapRate.Equal(line.ScrapRate) {
		t.Errorf("Expected scrap rate %s, got %s", line.ScrapRate, retrieved.ScrapRate)
	}
}

func TestBOMRepository_MultipleComponents(t *testing.T) {
	repo := NewBOMRepository(10)

	for i := 1; i <= 3; i++ {
		repo.AddBomLine(entities.BomLine{
			ParentID:    "ASSEMBLY",
			ComponentID: entities.ItemID(fmt.Sprintf("COMPONENT_%d", i)),
			QuantityPer: decimal.NewFromInt(int64(i)),
		})
	}

	lines, err := repo.GetBomLines("ASSEMBLY")
	if err != nil {
		t.Fatalf("Failed to get BOM lines: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("Expected 3 BOM lines, got %d", len(lines))
	}

	for i, line := range lines {
		expectedComponent := entities.ItemID(fmt.Sprintf("COMPONENT_%d", i+1))
		if line.ComponentID != expectedComponent {
			t.Errorf("Expected component %s at index %d, got %s", expectedComponent, i, line.ComponentID)
		}
		if !line.QuantityPer.Equal(decimal.NewFromInt(int64(i + 1))) {
			t.Errorf("Expected quantity %d at index %d, got %s", i+1, i, line.QuantityPer)
		}
	}
}

func TestBOMRepository_GetBomLines_LeafItem(t *testing.T) {
	repo := NewBOMRepository(10)

	lines, err := repo.GetBomLines("RAW_STOCK")
	if err != nil {
		t.Fatalf("Failed to get BOM lines for leaf item: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("Expected no BOM lines for a leaf item, got %d", len(lines))
	}
}

func TestBOMRepository_CoProducts(t *testing.T) {
	repo := NewBOMRepository(10)

	repo.AddCoProduct(entities.CoProduct{
		ParentID:     "RESIN",
		ItemID:       "BYPRODUCT",
		YieldPercent: decimal.NewFromInt(25),
	})

	coProducts, err := repo.GetAllCoProducts()
	if err != nil {
		t.Fatalf("Failed to get co-products: %v", err)
	}
	if len(coProducts) != 1 {
		t.Fatalf("Expected 1 co-product, got %d", len(coProducts))
	}
	if coProducts[0].ItemID != "BYPRODUCT" {
		t.Errorf("Expected co-product BYPRODUCT, got %s", coProducts[0].ItemID)
	}
	if !coProducts[0].YieldPercent.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Expected yield 25, got %s", coProducts[0].YieldPercent)
	}
}
