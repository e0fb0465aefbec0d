// Package csv loads planning input data from CSV files.
package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/planwerk/mrp/pkg/domain/entities"
)

const dateFormat = "2006-01-02"

// Loader handles loading planning data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadItems loads item master data from a CSV file
func (l *Loader) LoadItems(filename string) ([]*entities.Item, error) {
	records, err := readRecords(filename, "items")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"item_id", "code", "name", "unit_of_measure", "lead_time_days", "lot_size_policy", "fixed_lot_size", "supply_periods", "safety_stock", "order_type", "max_order_qty"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("items CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var items []*entities.Item
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("items CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}
		item, err := parseItem(record)
		if err != nil {
			return nil, fmt.Errorf("items CSV row %d: %w", i+2, err)
		}
		items = append(items, &item)
	}
	return items, nil
}

// LoadBomLines loads BOM structure from a CSV file
func (l *Loader) LoadBomLines(filename string) ([]*entities.BomLine, error) {
	records, err := readRecords(filename, "BOM")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"parent_id", "component_id", "quantity_per", "scrap_rate", "is_phantom", "operation_seq", "offset_days"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("BOM CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var lines []*entities.BomLine
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("BOM CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}
		line, err := parseBomLine(record)
		if err != nil {
			return nil, fmt.Errorf("BOM CSV row %d: %w", i+2, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// LoadCoProducts loads co-product definitions from a CSV file
func (l *Loader) LoadCoProducts(filename string) ([]*entities.CoProduct, error) {
	records, err := readRecords(filename, "co-products")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"parent_id", "item_id", "yield_percent", "cost_allocation_percent"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("co-products CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var coProducts []*entities.CoProduct
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("co-products CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}
		yield, err := parseDecimal(record[2], "yield_percent")
		if err != nil {
			return nil, fmt.Errorf("co-products CSV row %d: %w", i+2, err)
		}
		costShare, err := parseDecimal(record[3], "cost_allocation_percent")
		if err != nil {
			return nil, fmt.Errorf("co-products CSV row %d: %w", i+2, err)
		}
		coProduct, err := entities.NewCoProduct(entities.ItemID(record[0]), entities.ItemID(record[1]), yield, costShare)
		if err != nil {
			return nil, fmt.Errorf("co-products CSV row %d: %w", i+2, err)
		}
		coProducts = append(coProducts, coProduct)
	}
	return coProducts, nil
}

// LoadRoutings loads operation routings from a CSV file. Rows for the same
// item are collected into one routing.
func (l *Loader) LoadRoutings(filename string) ([]*entities.Routing, error) {
	records, err := readRecords(filename, "routings")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"item_id", "sequence", "name", "work_center_id", "setup_hours", "run_hours_per_unit", "queue_hours", "move_hours"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("routings CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	operations := make(map[entities.ItemID][]entities.Operation)
	var order []entities.ItemID
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("routings CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}
		itemID := entities.ItemID(record[0])
		op, err := parseOperation(record)
		if err != nil {
			return nil, fmt.Errorf("routings CSV row %d: %w", i+2, err)
		}
		if _, exists := operations[itemID]; !exists {
			order = append(order, itemID)
		}
		operations[itemID] = append(operations[itemID], op)
	}

	var routings []*entities.Routing
	for _, itemID := range order {
		routing, err := entities.NewRouting(itemID, operations[itemID])
		if err != nil {
			return nil, fmt.Errorf("routings CSV: %w", err)
		}
		routings = append(routings, routing)
	}
	return routings, nil
}

// LoadWorkCenters loads work centers from a CSV file
func (l *Loader) LoadWorkCenters(filename string) ([]*entities.WorkCenter, error) {
	records, err := readRecords(filename, "work centers")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"work_center_id", "code", "name", "type", "daily_capacity_hours", "efficiency"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("work centers CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var workCenters []*entities.WorkCenter
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("work centers CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}
		wc, err := parseWorkCenter(record)
		if err != nil {
			return nil, fmt.Errorf("work centers CSV row %d: %w", i+2, err)
		}
		workCenters = append(workCenters, &wc)
	}
	return workCenters, nil
}

// LoadCalendarExceptions loads per-date capacity overrides and attaches
// them to the given work centers
func (l *Loader) LoadCalendarExceptions(filename string, workCenters []*entities.WorkCenter) error {
	records, err := readRecords(filename, "calendar")
	if err != nil {
		return err
	}

	expectedHeader := []string{"work_center_id", "date", "available_hours"}
	if !validateHeader(records[0], expectedHeader) {
		return fmt.Errorf("calendar CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	index := make(map[entities.WorkCenterID]*entities.WorkCenter, len(workCenters))
	for _, wc := range workCenters {
		index[wc.ID] = wc
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return fmt.Errorf("calendar CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}
		wc, exists := index[entities.WorkCenterID(record[0])]
		if !exists {
			return fmt.Errorf("calendar CSV row %d: unknown work center %s", i+2, record[0])
		}
		date, err := time.Parse(dateFormat, record[1])
		if err != nil {
			return fmt.Errorf("calendar CSV row %d: invalid date: %s (expected YYYY-MM-DD)", i+2, record[1])
		}
		hours, err := parseDecimal(record[2], "available_hours")
		if err != nil {
			return fmt.Errorf("calendar CSV row %d: %w", i+2, err)
		}
		wc.Calendar = append(wc.Calendar, entities.CalendarException{Date: date, AvailableHours: hours})
	}
	return nil
}

// LoadSchedule loads master schedule demand lines from a CSV file
func (l *Loader) LoadSchedule(filename string) ([]*entities.MasterScheduleLine, error) {
	records, err := readRecords(filename, "schedule")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"item_id", "period_start", "forecast_qty", "order_qty"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("schedule CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var lines []*entities.MasterScheduleLine
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("schedule CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}
		periodStart, err := time.Parse(dateFormat, record[1])
		if err != nil {
			return nil, fmt.Errorf("schedule CSV row %d: invalid period_start: %s (expected YYYY-MM-DD)", i+2, record[1])
		}
		forecast, err := parseDecimal(record[2], "forecast_qty")
		if err != nil {
			return nil, fmt.Errorf("schedule CSV row %d: %w", i+2, err)
		}
		orderQty, err := parseDecimal(record[3], "order_qty")
		if err != nil {
			return nil, fmt.Errorf("schedule CSV row %d: %w", i+2, err)
		}
		lines = append(lines, &entities.MasterScheduleLine{
			ItemID:      entities.ItemID(record[0]),
			PeriodStart: periodStart,
			ForecastQty: forecast,
			OrderQty:    orderQty,
		})
	}
	return lines, nil
}

// LoadSupply loads on-hand stock and scheduled receipts from a CSV file.
// Rows with an empty due_date are on-hand stock.
func (l *Loader) LoadSupply(filename string) (map[entities.ItemID]decimal.Decimal, []*entities.ScheduledReceipt, error) {
	records, err := readRecords(filename, "supply")
	if err != nil {
		return nil, nil, err
	}

	expectedHeader := []string{"item_id", "quantity", "due_date"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, nil, fmt.Errorf("supply CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	onHand := make(map[entities.ItemID]decimal.Decimal)
	var receipts []*entities.ScheduledReceipt
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, nil, fmt.Errorf("supply CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}
		itemID := entities.ItemID(record[0])
		quantity, err := parseDecimal(record[1], "quantity")
		if err != nil {
			return nil, nil, fmt.Errorf("supply CSV row %d: %w", i+2, err)
		}

		dueDateStr := strings.TrimSpace(record[2])
		if dueDateStr == "" {
			onHand[itemID] = onHand[itemID].Add(quantity)
			continue
		}
		dueDate, err := time.Parse(dateFormat, dueDateStr)
		if err != nil {
			return nil, nil, fmt.Errorf("supply CSV row %d: invalid due_date: %s (expected YYYY-MM-DD)", i+2, dueDateStr)
		}
		receipts = append(receipts, &entities.ScheduledReceipt{
			ItemID:   itemID,
			DueDate:  dueDate,
			Quantity: quantity,
		})
	}
	return onHand, receipts, nil
}

// Helper functions for parsing CSV records

func readRecords(filename, label string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", label, filename, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", label, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", label)
	}
	return records, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}
	return true
}

func parseItem(record []string) (entities.Item, error) {
	leadTimeDays, err := strconv.Atoi(record[4])
	if err != nil {
		return entities.Item{}, fmt.Errorf("invalid lead_time_days: %s", record[4])
	}
	policy, err := parseLotSizePolicy(record[5])
	if err != nil {
		return entities.Item{}, err
	}
	fixedLotSize, err := parseDecimal(record[6], "fixed_lot_size")
	if err != nil {
		return entities.Item{}, err
	}
	supplyPeriods, err := strconv.Atoi(record[7])
	if err != nil {
		return entities.Item{}, fmt.Errorf("invalid supply_periods: %s", record[7])
	}
	safetyStock, err := parseDecimal(record[8], "safety_stock")
	if err != nil {
		return entities.Item{}, err
	}
	orderType, err := parseOrderType(record[9])
	if err != nil {
		return entities.Item{}, err
	}
	maxOrderQty, err := parseDecimal(record[10], "max_order_qty")
	if err != nil {
		return entities.Item{}, err
	}

	return entities.Item{
		ID:            entities.ItemID(record[0]),
		Code:          record[1],
		Name:          record[2],
		UnitOfMeasure: record[3],
		LeadTimeDays:  leadTimeDays,
		LotSizePolicy: policy,
		FixedLotSize:  fixedLotSize,
		SupplyPeriods: supplyPeriods,
		SafetyStock:   safetyStock,
		OrderType:     orderType,
		MaxOrderQty:   maxOrderQty,
	}, nil
}

func parseBomLine(record []string) (*entities.BomLine, error) {
	quantityPer, err := parseDecimal(record[2], "quantity_per")
	if err != nil {
		return nil, err
	}
	scrapRate, err := parseDecimal(record[3], "scrap_rate")
	if err != nil {
		return nil, err
	}
	isPhantom, err := strconv.ParseBool(record[4])
	if err != nil {
		return nil, fmt.Errorf("invalid is_phantom: %s", record[4])
	}
	operationSeq, err := strconv.Atoi(record[5])
	if err != nil {
		return nil, fmt.Errorf("invalid operation_seq: %s", record[5])
	}
	offsetDays, err := strconv.Atoi(record[6])
	if err != nil {
		return nil, fmt.Errorf("invalid offset_days: %s", record[6])
	}

	line, err := entities.NewBomLine(entities.ItemID(record[0]), entities.ItemID(record[1]), quantityPer, scrapRate)
	if err != nil {
		return nil, err
	}
	line.IsPhantom = isPhantom
	line.OperationSeq = operationSeq
	line.OffsetDays = offsetDays
	return line, nil
}

func parseOperation(record []string) (entities.Operation, error) {
	sequence, err := strconv.Atoi(record[1])
	if err != nil {
		return entities.Operation{}, fmt.Errorf("invalid sequence: %s", record[1])
	}
	setup, err := parseDecimal(record[4], "setup_hours")
	if err != nil {
		return entities.Operation{}, err
	}
	run, err := parseDecimal(record[5], "run_hours_per_unit")
	if err != nil {
		return entities.Operation{}, err
	}
	queue, err := parseDecimal(record[6], "queue_hours")
	if err != nil {
		return entities.Operation{}, err
	}
	move, err := parseDecimal(record[7], "move_hours")
	if err != nil {
		return entities.Operation{}, err
	}

	return entities.Operation{
		Sequence:        sequence,
		Name:            record[2],
		WorkCenterID:    entities.WorkCenterID(record[3]),
		SetupHours:      setup,
		RunHoursPerUnit: run,
		QueueHours:      queue,
		MoveHours:       move,
	}, nil
}

func parseWorkCenter(record []string) (entities.WorkCenter, error) {
	wcType, err := parseWorkCenterType(record[3])
	if err != nil {
		return entities.WorkCenter{}, err
	}
	capacity, err := parseDecimal(record[4], "daily_capacity_hours")
	if err != nil {
		return entities.WorkCenter{}, err
	}
	efficiency, err := parseDecimal(record[5], "efficiency")
	if err != nil {
		return entities.WorkCenter{}, err
	}
	if !efficiency.IsPositive() || efficiency.GreaterThan(decimal.NewFromInt(1)) {
		return entities.WorkCenter{}, fmt.Errorf("efficiency must be in (0, 1], got %s", efficiency)
	}

	return entities.WorkCenter{
		ID:                 entities.WorkCenterID(record[0]),
		Code:               record[1],
		Name:               record[2],
		Type:               wcType,
		DailyCapacityHours: capacity,
		Efficiency:         efficiency,
	}, nil
}

func parseDecimal(s, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %s", field, s)
	}
	return value, nil
}

func parseLotSizePolicy(s string) (entities.LotSizePolicy, error) {
	switch strings.ToLower(s) {
	case "":
		// empty means use the plan's default policy
		return entities.PolicyUnspecified, nil
	case "lotforlot", "lot-for-lot":
		return entities.LotForLot, nil
	case "fixedorderquantity", "fixed":
		return entities.FixedOrderQuantity, nil
	case "periodsofsupply", "periods-of-supply":
		return entities.PeriodsOfSupply, nil
	default:
		return entities.PolicyUnspecified, fmt.Errorf("invalid lot_size_policy: %s (expected: LotForLot, FixedOrderQuantity, or PeriodsOfSupply)", s)
	}
}

func parseOrderType(s string) (entities.OrderType, error) {
	switch strings.ToLower(s) {
	case "production":
		return entities.Production, nil
	case "purchase":
		return entities.Purchase, nil
	default:
		return entities.Production, fmt.Errorf("invalid order_type: %s (expected: Production or Purchase)", s)
	}
}

func parseWorkCenterType(s string) (entities.WorkCenterType, error) {
	switch strings.ToLower(s) {
	case "machine":
		return entities.Machine, nil
	case "labor":
		return entities.Labor, nil
	case "subcontract":
		return entities.Subcontract, nil
	case "mixed":
		return entities.Mixed, nil
	default:
		return entities.Machine, fmt.Errorf("invalid type: %s (expected: Machine, Labor, Subcontract, or Mixed)", s)
	}
}
