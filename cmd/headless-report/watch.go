package main

import (
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/Garsondee/Station-Sense/internal/logging"
	"github.com/Garsondee/Station-Sense/internal/sim"
	"github.com/Garsondee/Station-Sense/internal/termview"
)

var (
	watchSeed int64
	watchFPS  int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a demo-mode run live in the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		lvl, cfg, err := loadInputs()
		if err != nil {
			return err
		}
		cfg.DemoMode = true
		if cmd.Flags().Changed("seed") {
			cfg.Seed = watchSeed
		}

		// Log lines would tear the terminal view.
		log := logging.Discard()
		w, err := sim.NewWorld(lvl, cfg, sim.WithLogger(log))
		if err != nil {
			return err
		}
		w.Populate()

		screen, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		if err := screen.Init(); err != nil {
			return err
		}
		defer screen.Fini()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
		defer stop()
		if err := termview.New(screen, w, log).Run(ctx, watchFPS); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().Int64Var(&watchSeed, "seed", 1, "RNG seed")
	watchCmd.Flags().IntVar(&watchFPS, "fps", 30, "frames per second")
}
