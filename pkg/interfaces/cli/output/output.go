package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/planwerk/mrp/pkg/application/dto"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	RunTime   time.Duration
}

// Generate creates output in the specified format
func Generate(result *dto.PlanResult, config Config) error {
	switch config.Format {
	case "text":
		return generateTextOutput(result, config)
	case "json":
		return generateJSONOutput(result, config)
	case "excel":
		return generateExcelOutput(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(result *dto.PlanResult, config Config) error {
	fmt.Printf("📊 Planning Results Summary\n")
	fmt.Printf("===========================\n\n")

	fmt.Printf("Plan: %s\n", result.Summary.PlanID)
	fmt.Printf("Items Planned: %d\n", result.Summary.ItemsPlanned)
	fmt.Printf("Planned Orders: %d\n", len(result.PlannedOrders))
	fmt.Printf("Exceptions: %d\n", len(result.Exceptions)+len(result.CapacityExceptions))
	fmt.Printf("Run Time: %v\n\n", config.RunTime)

	if len(result.PlannedOrders) > 0 {
		fmt.Printf("📋 Planned Orders:\n")
		fmt.Printf("%-15s %-12s %-12s %-12s %-12s %-10s\n",
			"Item", "Qty", "Release", "Due", "Type", "Status")
		fmt.Printf("%-15s %-12s %-12s %-12s %-12s %-10s\n",
			"---------------", "------------", "------------", "------------", "------------", "----------")

		for _, order := range result.PlannedOrders {
			fmt.Printf("%-15s %-12s %-12s %-12s %-12s %-10s\n",
				order.ItemID,
				order.Quantity.String(),
				order.ReleaseDate.Format("2006-01-02"),
				order.DueDate.Format("2006-01-02"),
				order.Type.String(),
				order.Status.String())
		}
		fmt.Println()
	}

	if len(result.Exceptions) > 0 {
		fmt.Printf("⚠️  Planning Exceptions:\n")
		fmt.Printf("%-18s %-10s %-15s %s\n", "Type", "Severity", "Item", "Message")
		fmt.Printf("%-18s %-10s %-15s %s\n",
			"------------------", "----------", "---------------", "-------")

		for _, exc := range result.Exceptions {
			fmt.Printf("%-18s %-10s %-15s %s\n",
				exc.Type.String(), exc.Severity.String(), exc.ItemID, exc.Message)
		}
		fmt.Println()
	}

	if len(result.CapacityRequirements) > 0 {
		fmt.Printf("🏭 Capacity Load:\n")
		fmt.Printf("%-15s %-8s %-12s %-12s %-10s %-10s\n",
			"Work Center", "Period", "Required", "Available", "Load %", "Status")
		fmt.Printf("%-15s %-8s %-12s %-12s %-10s %-10s\n",
			"---------------", "--------", "------------", "------------", "----------", "----------")

		for _, req := range result.CapacityRequirements {
			fmt.Printf("%-15s %-8d %-12s %-12s %-10s %-10s\n",
				req.WorkCenterID,
				req.Period,
				req.RequiredCapacity.StringFixed(2),
				req.AvailableCapacity.StringFixed(2),
				req.LoadPercent.StringFixed(1),
				req.Status.String())
		}
		fmt.Println()
	}

	if len(result.CapacityExceptions) > 0 {
		fmt.Printf("⚠️  Capacity Exceptions:\n")
		for _, exc := range result.CapacityExceptions {
			fmt.Printf("  [%s] %s: %s\n", exc.Severity.String(), exc.Type.String(), exc.Message)
		}
		fmt.Println()
	}

	return nil
}

// generateJSONOutput creates JSON output
func generateJSONOutput(result *dto.PlanResult, config Config) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, "plan_results.json")
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	if config.Verbose {
		fmt.Printf("💾 Results saved to: %s\n", filename)
	}
	return nil
}
