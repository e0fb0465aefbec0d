// Package bomgraph resolves bill of material structures into an explicit
// adjacency graph with cycle and depth guards, and answers the explosion
// and ordering questions the netting engine asks.
package bomgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/planwerk/mrp/pkg/domain/entities"
)

// CycleError reports a BOM structure that is not a DAG. It is a fatal
// precondition failure, detected before any planning output is produced.
type CycleError struct {
	Path []entities.ItemID
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = string(id)
	}
	return fmt.Sprintf("bom cycle detected: %s", strings.Join(parts, " -> "))
}

// DepthError reports an explosion that exceeded the configured maximum
// depth. The limit guards against data errors, not legitimate structures.
type DepthError struct {
	ItemID   entities.ItemID
	MaxDepth int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("bom explosion for %s exceeded maximum depth %d", e.ItemID, e.MaxDepth)
}

// Config holds explosion guards and rounding behavior
type Config struct {
	MaxDepth int
	// Precision is the decimal places exploded quantities are rounded to
	// at each level
	Precision int32
}

// DefaultConfig returns the guards used when the caller has no opinion
func DefaultConfig() Config {
	return Config{MaxDepth: 32, Precision: 4}
}

// ExplodedComponent is one line of a flattened explosion result
type ExplodedComponent struct {
	ItemID     entities.ItemID
	Quantity   decimal.Decimal
	OffsetDays int
	Level      int
}

// EffectiveComponent is a first-level component of an item with phantom
// assemblies resolved through and scrap folded into the quantity-per
type EffectiveComponent struct {
	ItemID      entities.ItemID
	QuantityPer decimal.Decimal
	OffsetDays  int
}

// Graph is an immutable adjacency view over one snapshot's BOM data
type Graph struct {
	cfg        Config
	items      map[entities.ItemID]*entities.Item
	children   map[entities.ItemID][]*entities.BomLine
	coProducts map[entities.ItemID][]*entities.CoProduct
	lowLevel   map[entities.ItemID]int
}

// Build validates the BOM structure and returns a graph ready for
// explosion. A cyclic structure fails with *CycleError before any other
// work happens.
func Build(
	cfg Config,
	items map[entities.ItemID]*entities.Item,
	lines []*entities.BomLine,
	coProducts []*entities.CoProduct,
) (*Graph, error) {
	g := &Graph{
		cfg:        cfg,
		items:      items,
		children:   make(map[entities.ItemID][]*entities.BomLine),
		coProducts: make(map[entities.ItemID][]*entities.CoProduct),
	}

	for _, line := range lines {
		if _, exists := items[line.ParentID]; !exists {
			return nil, fmt.Errorf("bom line parent %s is not in the item master", line.ParentID)
		}
		g.children[line.ParentID] = append(g.children[line.ParentID], line)
	}
	// deterministic traversal order regardless of input order
	for parent := range g.children {
		kids := g.children[parent]
		sort.Slice(kids, func(i, j int) bool {
			if kids[i].OperationSeq != kids[j].OperationSeq {
				return kids[i].OperationSeq < kids[j].OperationSeq
			}
			return kids[i].ComponentID < kids[j].ComponentID
		})
	}

	for _, cp := range coProducts {
		g.coProducts[cp.ParentID] = append(g.coProducts[cp.ParentID], cp)
	}

	if cycle := g.findCycle(); cycle != nil {
		return nil, &CycleError{Path: cycle}
	}

	g.computeLowLevelCodes()
	return g, nil
}

// findCycle runs DFS with a recursion stack over every parent and returns
// the first cycle path found, or nil for a valid DAG
func (g *Graph) findCycle() []entities.ItemID {
	visited := make(map[entities.ItemID]bool)
	onStack := make(map[entities.ItemID]bool)

	parents := make([]entities.ItemID, 0, len(g.children))
	for parent := range g.children {
		parents = append(parents, parent)
	}
	sort.Slice(parents, func(i, j int) bool { return parents[i] < parents[j] })

	for _, parent := range parents {
		if visited[parent] {
			continue
		}
		if cycle := g.dfsCycle(parent, visited, onStack, nil); cycle != nil {
			return cycle
		}
	}
	return nil
}

func (g *Graph) dfsCycle(
	current entities.ItemID,
	visited, onStack map[entities.ItemID]bool,
	path []entities.ItemID,
) []entities.ItemID {
	visited[current] = true
	onStack[current] = true
	path = append(path, current)

	for _, line := range g.children[current] {
		child := line.ComponentID
		if onStack[child] {
			return append(path, child)
		}
		if visited[child] {
			continue
		}
		if cycle := g.dfsCycle(child, visited, onStack, path); cycle != nil {
			return cycle
		}
	}

	onStack[current] = false
	return nil
}

// computeLowLevelCodes assigns each item its maximum depth of use across
// the whole structure. Netting processes items in ascending code order so
// every parent is planned before its components.
func (g *Graph) computeLowLevelCodes() {
	g.lowLevel = make(map[entities.ItemID]int)
	inDegree := make(map[entities.ItemID]int)

	nodes := make(map[entities.ItemID]bool)
	for id := range g.items {
		nodes[id] = true
	}
	for parent, lines := range g.children {
		nodes[parent] = true
		for _, line := range lines {
			nodes[line.ComponentID] = true
			inDegree[line.ComponentID]++
		}
	}

	queue := make([]entities.ItemID, 0, len(nodes))
	for id := range nodes {
		g.lowLevel[id] = 0
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, line := range g.children[current] {
			child := line.ComponentID
			if g.lowLevel[current]+1 > g.lowLevel[child] {
				g.lowLevel[child] = g.lowLevel[current] + 1
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
}

// LowLevelCode returns the item's netting level (0 = top level)
func (g *Graph) LowLevelCode(id entities.ItemID) int {
	return g.lowLevel[id]
}

// ItemsByLevel returns all known items ordered by low-level code, then id.
// The ordering is total, so netting is deterministic across runs.
func (g *Graph) ItemsByLevel() []entities.ItemID {
	ids := make([]entities.ItemID, 0, len(g.items))
	for id := range g.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		li, lj := g.lowLevel[ids[i]], g.lowLevel[ids[j]]
		if li != lj {
			return li < lj
		}
		return ids[i] < ids[j]
	})
	return ids
}

// CoProductsFor returns the co-products attached to an item's BOM
func (g *Graph) CoProductsFor(id entities.ItemID) []*entities.CoProduct {
	return g.coProducts[id]
}

// HasComponents reports whether the item has any BOM lines
func (g *Graph) HasComponents(id entities.ItemID) bool {
	return len(g.children[id]) > 0
}

// Explode flattens the structure under root for a target quantity. Scrap
// inflates each level by 1/(1-scrapRate), phantoms are expanded
// transparently, and duplicate component/offset pairs are accumulated.
func (g *Graph) Explode(root entities.ItemID, quantity decimal.Decimal) ([]ExplodedComponent, error) {
	if _, exists := g.items[root]; !exists {
		return nil, fmt.Errorf("explosion root %s is not in the item master", root)
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("explosion quantity must be positive, got %s", quantity)
	}

	type key struct {
		item   entities.ItemID
		offset int
	}
	acc := make(map[key]*ExplodedComponent)

	var walk func(parent entities.ItemID, parentQty decimal.Decimal, offset, depth int) error
	walk = func(parent entities.ItemID, parentQty decimal.Decimal, offset, depth int) error {
		if depth > g.cfg.MaxDepth {
			return &DepthError{ItemID: root, MaxDepth: g.cfg.MaxDepth}
		}
		for _, line := range g.children[parent] {
			required := scrapAdjust(parentQty.Mul(line.QuantityPer), line.ScrapRate).Round(g.cfg.Precision)
			lineOffset := offset + line.OffsetDays

			if line.IsPhantom {
				// phantom components are pulled up one level; the
				// phantom itself is never emitted
				if err := walk(line.ComponentID, required, lineOffset, depth+1); err != nil {
					return err
				}
				continue
			}

			k := key{item: line.ComponentID, offset: lineOffset}
			if existing, ok := acc[k]; ok {
				existing.Quantity = existing.Quantity.Add(required)
				if depth < existing.Level {
					existing.Level = depth
				}
			} else {
				acc[k] = &ExplodedComponent{
					ItemID:     line.ComponentID,
					Quantity:   required,
					OffsetDays: lineOffset,
					Level:      depth,
				}
			}

			if err := walk(line.ComponentID, required, lineOffset, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(root, quantity, 0, 1); err != nil {
		return nil, err
	}

	result := make([]ExplodedComponent, 0, len(acc))
	for _, c := range acc {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ItemID != result[j].ItemID {
			return result[i].ItemID < result[j].ItemID
		}
		return result[i].OffsetDays < result[j].OffsetDays
	})
	return result, nil
}

// EffectiveComponents returns the item's direct components with phantom
// chains multiplied through. Quantity-per values carry scrap inflation but
// are not rounded; netting rounds after scaling by the order quantity.
func (g *Graph) EffectiveComponents(parent entities.ItemID) ([]EffectiveComponent, error) {
	var out []EffectiveComponent

	var walk func(id entities.ItemID, factor decimal.Decimal, offset, depth int) error
	walk = func(id entities.ItemID, factor decimal.Decimal, offset, depth int) error {
		if depth > g.cfg.MaxDepth {
			return &DepthError{ItemID: parent, MaxDepth: g.cfg.MaxDepth}
		}
		for _, line := range g.children[id] {
			per := scrapAdjust(factor.Mul(line.QuantityPer), line.ScrapRate)
			lineOffset := offset + line.OffsetDays
			if line.IsPhantom {
				if err := walk(line.ComponentID, per, lineOffset, depth+1); err != nil {
					return err
				}
				continue
			}
			out = append(out, EffectiveComponent{
				ItemID:      line.ComponentID,
				QuantityPer: per,
				OffsetDays:  lineOffset,
			})
		}
		return nil
	}

	if err := walk(parent, decimal.NewFromInt(1), 0, 1); err != nil {
		return nil, err
	}
	return out, nil
}

// Descendants expands a changed-item set downward through the structure,
// used by net-change planning to find everything that must be re-netted
func (g *Graph) Descendants(roots []entities.ItemID) map[entities.ItemID]bool {
	closure := make(map[entities.ItemID]bool)
	queue := append([]entities.ItemID(nil), roots...)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if closure[current] {
			continue
		}
		closure[current] = true
		for _, line := range g.children[current] {
			queue = append(queue, line.ComponentID)
		}
	}
	return closure
}

func scrapAdjust(qty, scrapRate decimal.Decimal) decimal.Decimal {
	if scrapRate.IsZero() {
		return qty
	}
	return qty.Div(decimal.NewFromInt(1).Sub(scrapRate))
}
