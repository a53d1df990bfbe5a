package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/GoSim-25-26J-441/swarm-core/internal/engine"
	"github.com/GoSim-25-26J-441/swarm-core/internal/metrics"
	"github.com/GoSim-25-26J-441/swarm-core/internal/objective"
	"github.com/GoSim-25-26J-441/swarm-core/internal/refine"
	"github.com/GoSim-25-26J-441/swarm-core/internal/render"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one optimization and print each generation",
		Args:  cobra.NoArgs,
		RunE:  runOptimization,
	}
	f := cmd.Flags()
	f.Int("generations", 0, "number of generations")
	f.Int("particles", 0, "swarm size")
	f.Int("dimensions", 0, "search space dimensions")
	f.Int64("seed", 0, "random seed (0 derives one from the clock)")
	f.String("objective", "", "objective function (rastrigin, ackley, rosenbrock, sphere)")
	f.String("plot-dir", "", "write one PNG per generation to this directory")
	f.Bool("refine", false, "polish the final best with Nelder-Mead")
	return cmd
}

// applyRunFlags copies explicitly set flags over the config file values.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("generations") {
		cfg.Swarm.Generations, _ = f.GetInt("generations")
	}
	if f.Changed("particles") {
		cfg.Swarm.ParticleCount, _ = f.GetInt("particles")
	}
	if f.Changed("dimensions") {
		cfg.Swarm.Dimensions, _ = f.GetInt("dimensions")
	}
	if f.Changed("seed") {
		cfg.Swarm.Seed, _ = f.GetInt64("seed")
	}
	if f.Changed("objective") {
		cfg.Swarm.Objective, _ = f.GetString("objective")
	}
	if f.Changed("plot-dir") {
		cfg.Output.PlotDir, _ = f.GetString("plot-dir")
	}
	if f.Changed("refine") {
		cfg.Swarm.Refine, _ = f.GetBool("refine")
	}
}

func runOptimization(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)
	if err := config.ValidateSwarm(&cfg.Swarm); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obj, err := objective.New(cfg.Swarm.Objective)
	if err != nil {
		return err
	}
	rng := utils.NewRandSource(cfg.Swarm.Seed)
	eng, err := engine.New(cfg.Swarm.Params(), obj, rng)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	collector := metrics.NewCollector()
	observers := engine.Observers{
		collector,
		render.NewConsoleSink(out, cfg.Output.LogEvery),
	}
	if cfg.LogFormat == "json" {
		observers = append(observers, render.NewLogSink(logger.Default, cfg.Output.LogEvery))
	}

	var plots *render.PlotSink
	if cfg.Output.PlotDir != "" {
		plots, err = render.NewPlotSink(cfg.Output.PlotDir, cfg.Output.PlotEvery, cfg.Output.PlotLimit)
		if err != nil {
			return err
		}
		observers = append(observers, plots)
	}

	collector.Start()
	res, err := eng.Run(ctx, observers)
	collector.Stop()
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}

	fmt.Fprintf(out, "Best: %v (%f) seed=%d evaluations=%d\n", res.Best, res.BestValue, rng.Seed(), res.Evaluations)

	if cfg.Swarm.Refine {
		refined, err := refine.Refine(obj, res.Best, res.BestValue, refine.Options{})
		if err != nil {
			logger.Warn("refinement failed", "error", err)
		} else {
			fmt.Fprintf(out, "Refined (%s): %v (%f)\n", refined.Method, refined.Best, refined.BestValue)
		}
	}

	if plots != nil {
		if err := plots.Err(); err != nil {
			logger.Warn("some generation plots failed", "error", err)
		}
		if cfg.Output.ConvergencePlot {
			path := filepath.Join(cfg.Output.PlotDir, "convergence.png")
			if err := render.WriteConvergence(path, obj.Name(), collector.History()); err != nil {
				return fmt.Errorf("convergence plot: %w", err)
			}
			logger.Info("plots written", "dir", cfg.Output.PlotDir, "generations", len(plots.Files()))
		}
	}
	return nil
}

