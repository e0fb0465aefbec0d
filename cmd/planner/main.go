package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/planwerk/mrp/pkg/interfaces/cli/commands"
)

func main() {
	// Command line flags
	var (
		configFile = flag.String("config", "", "Path to configuration file (optional)")
		dataDir    = flag.String("data", "", "Path to directory containing CSV input files")
		planID     = flag.String("plan", "default", "Plan identifier")
		start      = flag.String("start", "", "Horizon start date (YYYY-MM-DD, default today)")
		format     = flag.String("format", "text", "Output format: text, json, excel")
		outputDir  = flag.String("output", "", "Output directory for results (optional)")
		netChange  = flag.Bool("net-change", false, "Replan only changed items")
		capacity   = flag.String("capacity", "", "Capacity mode: off, infinite, finite")
		verbose    = flag.Bool("verbose", false, "Enable verbose output")
	)

	flag.Parse()

	config := commands.Config{
		ConfigFile: *configFile,
		DataDir:    *dataDir,
		PlanID:     *planID,
		Start:      *start,
		Format:     *format,
		OutputDir:  *outputDir,
		NetChange:  *netChange,
		Capacity:   *capacity,
		Verbose:    *verbose,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := commands.NewPlanCommand(config)
	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
