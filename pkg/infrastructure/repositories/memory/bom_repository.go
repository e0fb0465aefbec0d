package memory

import (
	"github.com/planwerk/mrp/pkg/domain/entities"
	"github.com/planwerk/mrp/pkg/domain/repositories"
)

// BOMRepository provides in-memory BOM and co-product storage
type BOMRepository struct {
	bomLines   []entities.BomLine
	bomIndexes map[entities.ItemID][]int
	coProducts []entities.CoProduct
}

// NewBOMRepository creates a new in-memory BOM repository
func NewBOMRepository(expectedLines int) *BOMRepository {
	return &BOMRepository{
		bomLines:   make([]entities.BomLine, 0, expectedLines),
		bomIndexes: make(map[entities.ItemID][]int),
	}
}

// Verify interface compliance
var _ repositories.BOMRepository = (*BOMRepository)(nil)

// LoadBomLines loads BOM lines into the repository
func (r *BOMRepository) LoadBomLines(lines []*entities.BomLine) error {
	for _, line := range lines {
		r.AddBomLine(*line)
	}
	return nil
}

// AddBomLine adds a BOM line to the repository
func (r *BOMRepository) AddBomLine(line entities.BomLine) {
	index := len(r.bomLines)
	r.bomLines = append(r.bomLines, line)
	r.bomIndexes[line.ParentID] = append(r.bomIndexes[line.ParentID], index)
}

// AddCoProduct adds a co-product definition to the repository
func (r *BOMRepository) AddCoProduct(coProduct entities.CoProduct) {
	r.coProducts = append(r.coProducts, coProduct)
}

// GetBomLines returns all BOM lines for a parent item
func (r *BOMRepository) GetBomLines(parentID entities.ItemID) ([]*entities.BomLine, error) {
	indexes, exists := r.bomIndexes[parentID]
	if !exists {
		return []*entities.BomLine{}, nil
	}

	var lines []*entities.BomLine
	for _, index := range indexes {
		lines = append(lines, &r.bomLines[index])
	}
	return lines, nil
}

// GetAllBomLines returns all BOM lines
func (r *BOMRepository) GetAllBomLines() ([]*entities.BomLine, error) {
	var lines []*entities.BomLine
	for i := range r.bomLines {
		lines = append(lines, &r.bomLines[i])
	}
	return lines, nil
}

// GetAllCoProducts returns all co-product definitions
func (r *BOMRepository) GetAllCoProducts() ([]*entities.CoProduct, error) {
	var coProducts []*entities.CoProduct
	for i := range r.coProducts {
		coProducts = append(coProducts, &r.coProducts[i])
	}
	return coProducts, nil
}
