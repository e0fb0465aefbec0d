// Package commands implements the CLI entry points for the planning engine.
package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/planwerk/mrp/pkg/application/services/orchestration"
	"github.com/planwerk/mrp/pkg/config"
	"github.com/planwerk/mrp/pkg/domain/entities"
	"github.com/planwerk/mrp/pkg/infrastructure/events"
	"github.com/planwerk/mrp/pkg/infrastructure/metrics"
	"github.com/planwerk/mrp/pkg/infrastructure/repositories/csv"
	"github.com/planwerk/mrp/pkg/infrastructure/repositories/memory"
	"github.com/planwerk/mrp/pkg/interfaces/cli/output"
)

// Config holds configuration for the plan command
type Config struct {
	ConfigFile string
	DataDir    string
	PlanID     string
	Start      string
	Format     string
	OutputDir  string
	NetChange  bool
	Capacity   string
	Verbose    bool
}

// PlanCommand loads a data set, executes a planning run and writes the
// results
type PlanCommand struct {
	config Config
}

// NewPlanCommand creates a new plan command with the given configuration
func NewPlanCommand(config Config) *PlanCommand {
	return &PlanCommand{config: config}
}

// Execute runs the plan command
func (c *PlanCommand) Execute(ctx context.Context) error {
	cfg, err := config.Load(c.config.ConfigFile)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Log, c.config.Verbose)
	if err != nil {
		return err
	}

	dataDir := c.config.DataDir
	if dataDir == "" {
		dataDir = cfg.Data.Dir
	}

	loader, err := loadRepositories(dataDir)
	if err != nil {
		return err
	}

	snapshot, err := loader.Load(c.config.PlanID, c.config.NetChange)
	if err != nil {
		return err
	}

	planCfg, err := c.buildPlanConfig(cfg)
	if err != nil {
		return err
	}

	planner := orchestration.NewPlanner(log, events.NewInMemoryStore(), metrics.New(prometheus.NewRegistry()))

	runCtx := ctx
	if cfg.Planning.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.Planning.RunTimeout)
		defer cancel()
	}

	started := time.Now()
	result, err := planner.Run(runCtx, planCfg, snapshot)
	if err != nil {
		return err
	}

	return output.Generate(result, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
		RunTime:   time.Since(started),
	})
}

// buildPlanConfig merges file/env settings with command line overrides
func (c *PlanCommand) buildPlanConfig(cfg *config.Config) (orchestration.PlanConfig, error) {
	planCfg := orchestration.DefaultPlanConfig()
	planCfg.PlanID = c.config.PlanID
	planCfg.BucketDays = cfg.Planning.BucketDays
	planCfg.IncludeSafetyStock = cfg.Planning.IncludeSafetyStock
	planCfg.NetChange = c.config.NetChange
	planCfg.QuantityPrecision = cfg.Planning.QuantityPrecision
	planCfg.MaxBomDepth = cfg.Planning.MaxBomDepth
	planCfg.ExcessMultiple = cfg.Planning.ExcessMultiple
	planCfg.ExcessPeriods = cfg.Planning.ExcessPeriods
	planCfg.OverloadThreshold = cfg.Capacity.OverloadThreshold
	planCfg.BottleneckThreshold = cfg.Capacity.BottleneckThreshold
	planCfg.IncludeSetupTimes = cfg.Capacity.IncludeSetupTimes
	planCfg.IncludeEfficiency = cfg.Capacity.IncludeEfficiency

	switch cfg.Planning.DefaultLotPolicy {
	case "fixed":
		planCfg.DefaultLotSizePolicy = entities.FixedOrderQuantity
	case "periods-of-supply":
		planCfg.DefaultLotSizePolicy = entities.PeriodsOfSupply
	default:
		planCfg.DefaultLotSizePolicy = entities.LotForLot
	}

	capacityMode := c.config.Capacity
	if capacityMode == "" {
		capacityMode = cfg.Capacity.Mode
	}
	switch capacityMode {
	case "off":
		planCfg.CapacityMode = orchestration.CapacityOff
	case "infinite":
		planCfg.CapacityMode = orchestration.CapacityInfinite
	case "finite":
		planCfg.CapacityMode = orchestration.CapacityFinite
	default:
		return planCfg, fmt.Errorf("invalid capacity mode: %s (expected: off, infinite, or finite)", capacityMode)
	}

	planCfg.HorizonStart = time.Now().Truncate(24 * time.Hour)
	if c.config.Start != "" {
		start, err := time.Parse("2006-01-02", c.config.Start)
		if err != nil {
			return planCfg, fmt.Errorf("invalid start date: %s (expected YYYY-MM-DD)", c.config.Start)
		}
		planCfg.HorizonStart = start
	}
	planCfg.HorizonEnd = planCfg.HorizonStart.AddDate(0, 0, cfg.Planning.HorizonDays)
	planCfg.CurrentDate = planCfg.HorizonStart

	return planCfg, nil
}

// loadRepositories reads the CSV data set and fills the in-memory
// repositories
func loadRepositories(dataDir string) (*orchestration.SnapshotLoader, error) {
	csvLoader := csv.NewLoader()

	items, err := csvLoader.LoadItems(filepath.Join(dataDir, "items.csv"))
	if err != nil {
		return nil, fmt.Errorf("error loading items: %w", err)
	}
	bomLines, err := csvLoader.LoadBomLines(filepath.Join(dataDir, "bom.csv"))
	if err != nil {
		return nil, fmt.Errorf("error loading BOM: %w", err)
	}
	var coProducts []*entities.CoProduct
	if path := filepath.Join(dataDir, "co_products.csv"); fileExists(path) {
		coProducts, err = csvLoader.LoadCoProducts(path)
		if err != nil {
			return nil, fmt.Errorf("error loading co-products: %w", err)
		}
	}
	routings, err := csvLoader.LoadRoutings(filepath.Join(dataDir, "routings.csv"))
	if err != nil {
		return nil, fmt.Errorf("error loading routings: %w", err)
	}
	workCenters, err := csvLoader.LoadWorkCenters(filepath.Join(dataDir, "work_centers.csv"))
	if err != nil {
		return nil, fmt.Errorf("error loading work centers: %w", err)
	}
	if path := filepath.Join(dataDir, "calendar.csv"); fileExists(path) {
		if err := csvLoader.LoadCalendarExceptions(path, workCenters); err != nil {
			return nil, fmt.Errorf("error loading calendar: %w", err)
		}
	}
	scheduleLines, err := csvLoader.LoadSchedule(filepath.Join(dataDir, "schedule.csv"))
	if err != nil {
		return nil, fmt.Errorf("error loading schedule: %w", err)
	}
	onHand, receipts, err := csvLoader.LoadSupply(filepath.Join(dataDir, "supply.csv"))
	if err != nil {
		return nil, fmt.Errorf("error loading supply: %w", err)
	}

	itemRepo := memory.NewItemRepository(len(items))
	if err := itemRepo.LoadItems(items); err != nil {
		return nil, err
	}
	bomRepo := memory.NewBOMRepository(len(bomLines))
	if err := bomRepo.LoadBomLines(bomLines); err != nil {
		return nil, err
	}
	for _, coProduct := range coProducts {
		bomRepo.AddCoProduct(*coProduct)
	}
	routingRepo := memory.NewRoutingRepository(len(routings))
	if err := routingRepo.LoadRoutings(routings); err != nil {
		return nil, err
	}
	wcRepo := memory.NewWorkCenterRepository(len(workCenters))
	if err := wcRepo.LoadWorkCenters(workCenters); err != nil {
		return nil, err
	}
	scheduleRepo := memory.NewScheduleRepository(len(scheduleLines))
	if err := scheduleRepo.LoadScheduleLines(scheduleLines); err != nil {
		return nil, err
	}
	supplyRepo := memory.NewSupplyRepository()
	for itemID, qty := range onHand {
		supplyRepo.SetOnHand(itemID, qty)
	}
	for _, receipt := range receipts {
		supplyRepo.AddScheduledReceipt(*receipt)
	}

	return orchestration.NewSnapshotLoader(
		itemRepo, bomRepo, routingRepo, wcRepo, scheduleRepo, supplyRepo, memory.NewPlanRepository(),
	), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func newLogger(cfg config.LogConfig, verbose bool) (*logrus.Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %s", cfg.Level)
	}
	if verbose && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log, nil
}
