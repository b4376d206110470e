// Command game opens the station simulation in a window.
package main

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/Garsondee/Station-Sense/internal/content"
	"github.com/Garsondee/Station-Sense/internal/logging"
	"github.com/Garsondee/Station-Sense/internal/sim"
	"github.com/Garsondee/Station-Sense/internal/viewer"
)

var (
	levelPath  string
	configPath string
	demo       bool
	seed       int64
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:          "game",
	Short:        "Play Station Sense",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, err := logging.New(logging.Options{Level: logLevel})
		if err != nil {
			return err
		}

		var lvl *content.Level
		if levelPath == "" {
			lvl, err = content.Default()
		} else {
			lvl, err = content.Load(levelPath)
		}
		if err != nil {
			return err
		}
		cfg := sim.DefaultConfig()
		if configPath != "" {
			if cfg, err = sim.LoadConfig(configPath); err != nil {
				return err
			}
		}
		cfg.DemoMode = cfg.DemoMode || demo
		if cmd.Flags().Changed("seed") {
			cfg.Seed = seed
		}

		w, err := sim.NewWorld(lvl, cfg, sim.WithLogger(log))
		if err != nil {
			return err
		}
		w.Populate()

		g := viewer.New(w, log)
		ebiten.SetWindowTitle("Station Sense")
		ebiten.SetWindowSize(g.Size())
		return ebiten.RunGame(g)
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&levelPath, "level", "", "level YAML (default: built-in station)")
	f.StringVar(&configPath, "config", "", "simulation config YAML")
	f.BoolVar(&demo, "demo", false, "watch the AI play with the whole map in view")
	f.Int64Var(&seed, "seed", 1, "RNG seed")
	f.StringVar(&logLevel, "log-level", "", "log level (default: $LOG_LEVEL or info)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
