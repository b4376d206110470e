// Command headless-report runs the station simulation without a window,
// either as a batch of seeded runs with an aggregate report or as a live
// terminal view.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Garsondee/Station-Sense/internal/content"
	"github.com/Garsondee/Station-Sense/internal/logging"
	"github.com/Garsondee/Station-Sense/internal/sim"
)

var (
	levelPath  string
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:           "headless-report",
	Short:         "Run the station simulation without a window",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&levelPath, "level", "", "level YAML (default: built-in station)")
	pf.StringVar(&configPath, "config", "", "simulation config YAML (default: built-in values)")
	pf.StringVar(&logLevel, "log-level", "", "log level (default: $LOG_LEVEL or info)")
	pf.StringVar(&logFormat, "log-format", "", "text or json (default: $LOG_FORMAT or text)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadInputs reads the level and config named by the persistent flags.
func loadInputs() (*content.Level, sim.Config, error) {
	var (
		lvl *content.Level
		err error
	)
	if levelPath == "" {
		lvl, err = content.Default()
	} else {
		lvl, err = content.Load(levelPath)
	}
	if err != nil {
		return nil, sim.Config{}, err
	}

	cfg := sim.DefaultConfig()
	if configPath != "" {
		if cfg, err = sim.LoadConfig(configPath); err != nil {
			return nil, sim.Config{}, err
		}
	}
	return lvl, cfg, nil
}

func newLogger() (*logrus.Logger, error) {
	return logging.New(logging.Options{Level: logLevel, Format: logFormat})
}
