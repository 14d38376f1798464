// Package cmd hosts the CLI entry points.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/voltsim/besstwin/app"
	"github.com/voltsim/besstwin/config"
	"github.com/voltsim/besstwin/infra/logger"
)

var (
	cfgPath string
	steps   int
	seed    int64
	csvOut  string
)

var rootCmd = &cobra.Command{
	Use:   "besstwin",
	Short: "Battery energy storage site simulator",
	Long:  "besstwin runs a multi-level electro-thermal simulation of a grid-scale battery site through a commissioning test cycle or a custom test sequence.",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.Flags().IntVar(&steps, "steps", 0, "cap the run at this many steps (0 = use configured duration)")
	rootCmd.Flags().Int64Var(&seed, "seed", -1, "override the random seed (-1 = use configured seed)")
	rootCmd.Flags().StringVar(&csvOut, "out", "", "override the CSV output path")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.New("main")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Warnf("config %s not loaded (%v), using defaults", cfgPath, err)
		cfg = config.Default()
	}
	if steps > 0 {
		cfg.Simulation.MaxSteps = steps
	}
	if seed >= 0 {
		cfg.Seed = seed
	}
	if csvOut != "" {
		cfg.Export.CSVPath = csvOut
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}
