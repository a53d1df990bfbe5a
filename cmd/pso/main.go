// Command pso runs particle swarm optimizations, either once from the
// command line or as a daemon serving the run API over gRPC and HTTP.
package main

import (
	"os"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "pso",
		Short:        "Particle swarm optimizer",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "YAML config file")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newRunCmd(), newServeCmd())
	return root
}

// loadConfig reads --config, falling back to the defaults, applies
// --log-level and installs the default logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	logger.SetDefault(logger.NewFormat(cfg.LogFormat, cfg.LogLevel, cmd.ErrOrStderr()))
	return cfg, nil
}
