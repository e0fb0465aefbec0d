package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/planwerk/mrp/pkg/application/dto"
)

var requirementHeaders = []string{
	"Item", "Period", "Period Start", "Gross", "Scheduled Receipts",
	"Projected On Hand", "Safety Stock", "Net", "Planned Receipt", "Planned Release",
}

var orderHeaders = []string{
	"Item", "Quantity", "Release Date", "Due Date", "Type", "Policy", "Status", "Carried",
}

var capacityHeaders = []string{
	"Work Center", "Period", "Period Start", "Required Hours", "Available Hours", "Load %", "Status",
}

var exceptionHeaders = []string{
	"Kind", "Type", "Severity", "Subject", "Period", "Message",
}

// generateExcelOutput writes the full plan result as a workbook with one
// sheet per output set
func generateExcelOutput(result *dto.PlanResult, config Config) error {
	f := excelize.NewFile()
	defer f.Close()

	boldStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRequirementsSheet(f, result, boldStyle); err != nil {
		return err
	}
	if err := writeOrdersSheet(f, result, boldStyle); err != nil {
		return err
	}
	if err := writeCapacitySheet(f, result, boldStyle); err != nil {
		return err
	}
	if err := writeExceptionsSheet(f, result, boldStyle); err != nil {
		return err
	}

	outputDir := config.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(outputDir, "plan_results.xlsx")
	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	if config.Verbose {
		fmt.Printf("💾 Results saved to: %s\n", filename)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		cell := col + "1"
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func writeRequirementsSheet(f *excelize.File, result *dto.PlanResult, style int) error {
	sheet := "Requirements"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, requirementHeaders, style); err != nil {
		return err
	}
	for i, req := range result.Requirements {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), string(req.ItemID))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), req.Period)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), req.PeriodStart.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), req.GrossRequirement.String())
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), req.ScheduledReceipts.String())
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), req.ProjectedOnHand.String())
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), req.SafetyStock.String())
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), req.NetRequirement.String())
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), req.PlannedReceipt.String())
		f.SetCellValue(sheet, fmt.Sprintf("J%d", row), req.PlannedRelease.String())
	}
	return nil
}

func writeOrdersSheet(f *excelize.File, result *dto.PlanResult, style int) error {
	sheet := "Planned Orders"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, orderHeaders, style); err != nil {
		return err
	}
	for i, order := range result.PlannedOrders {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), string(order.ItemID))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), order.Quantity.String())
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), order.ReleaseDate.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), order.DueDate.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), order.Type.String())
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), order.LotSizePolicy.String())
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), order.Status.String())
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), order.CarriedForward)
	}
	return nil
}

func writeCapacitySheet(f *excelize.File, result *dto.PlanResult, style int) error {
	sheet := "Capacity"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, capacityHeaders, style); err != nil {
		return err
	}
	for i, req := range result.CapacityRequirements {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), string(req.WorkCenterID))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), req.Period)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), req.PeriodStart.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), req.RequiredCapacity.StringFixed(2))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), req.AvailableCapacity.StringFixed(2))
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), req.LoadPercent.StringFixed(1))
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), req.Status.String())
	}
	return nil
}

func writeExceptionsSheet(f *excelize.File, result *dto.PlanResult, style int) error {
	sheet := "Exceptions"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, exceptionHeaders, style); err != nil {
		return err
	}
	row := 2
	for _, exc := range result.Exceptions {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "MRP")
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), exc.Type.String())
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), exc.Severity.String())
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), string(exc.ItemID))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), exc.Period)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), exc.Message)
		row++
	}
	for _, exc := range result.CapacityExceptions {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Capacity")
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), exc.Type.String())
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), exc.Severity.String())
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), string(exc.WorkCenterID))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), exc.Period)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), exc.Message)
		row++
	}
	return nil
}
