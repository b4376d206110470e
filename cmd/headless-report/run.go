package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Garsondee/Station-Sense/internal/content"
	"github.com/Garsondee/Station-Sense/internal/sim"
)

var (
	runs     int
	ticks    int
	seedBase int64
	seedStep int64
	demo     bool
	summary  bool
	tail     int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run seeded simulations and print a per-run and aggregate report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if runs <= 0 {
			return fmt.Errorf("--runs must be > 0")
		}
		if ticks <= 0 {
			return fmt.Errorf("--ticks must be > 0")
		}
		lvl, cfg, err := loadInputs()
		if err != nil {
			return err
		}
		log, err := newLogger()
		if err != nil {
			return err
		}
		cfg.DemoMode = cfg.DemoMode || demo
		return report(cmd.OutOrStdout(), lvl, cfg, log)
	},
}

func init() {
	f := runCmd.Flags()
	f.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	f.IntVar(&ticks, "ticks", 7200, "maximum ticks per run")
	f.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	f.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	f.BoolVar(&demo, "demo", false, "run in demo mode (whole map on screen, player inert)")
	f.BoolVar(&summary, "summary", false, "print the SimLog summary and final agent states after each run")
	f.IntVar(&tail, "tail", 0, "print the SimLog entries of the last N ticks of each run")
}

// runStats is what the report keeps from one run.
type runStats struct {
	runIndex int
	seed     int64

	outcome     sim.Outcome
	endTick     int
	description string

	firstAttackTick  int
	firstDestroyTick int
	firstExposeTick  int
	lastAttackTick   int

	attacks     int
	repairs     int
	destroyed   int
	sitesTotal  int
	flees       int
	shots       int
	playerHits  int
	spawned     int
	captured    int
	stateChange int
	lost        map[string]struct{}
}

func report(out io.Writer, lvl *content.Level, cfg sim.Config, log logrus.FieldLogger) error {
	fmt.Fprintf(out, "=== Headless Station Report ===\n")
	fmt.Fprintf(out, "level=%s runs=%d ticks=%d seed_base=%d seed_step=%d demo=%v\n\n",
		lvl.Name, runs, ticks, seedBase, seedStep, cfg.DemoMode)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		c := cfg
		c.Seed = seedBase + int64(i)*seedStep
		rs, sl, w, err := runOnce(i+1, lvl, c, log)
		if err != nil {
			return err
		}
		all = append(all, rs)
		printRun(out, rs)
		if summary {
			fmt.Fprintln(out, sl.Summary(w))
			printSnapshot(out, w.Snapshot())
		}
		if tail > 0 {
			fmt.Fprintf(out, "--- Last %d ticks ---\n", tail)
			fmt.Fprintln(out, sl.FormatRange(rs.endTick-tail+1, rs.endTick))
		}
	}
	printAggregate(out, all)
	return nil
}

func runOnce(runIndex int, lvl *content.Level, cfg sim.Config, log logrus.FieldLogger) (runStats, *sim.SimLog, *sim.World, error) {
	sl := sim.NewSimLog(false)
	w, err := sim.NewWorld(lvl, cfg, sim.WithLogger(log.WithField("run", runIndex)), sim.WithSimLog(sl))
	if err != nil {
		return runStats{}, nil, nil, err
	}
	w.Populate()
	for i := 0; i < ticks; i++ {
		if w.Tick(sim.DefaultDT, sim.Intent{}) != sim.OutcomeRunning {
			break
		}
	}
	return collectStats(runIndex, cfg.Seed, w, sl), sl, w, nil
}

func collectStats(runIndex int, seed int64, w *sim.World, sl *sim.SimLog) runStats {
	r := w.Report()
	entries := sl.Entries()
	lastAttack := -1
	if e, ok := sl.LastOf("site", "attacked"); ok {
		lastAttack = e.Tick
	}
	lost := map[string]struct{}{}
	for _, e := range sl.Filter("site", "destroyed") {
		lost[e.Value] = struct{}{}
	}
	return runStats{
		runIndex:         runIndex,
		seed:             seed,
		outcome:          r.Outcome,
		endTick:          r.Tick,
		description:      r.Description,
		firstAttackTick:  sl.FirstTick("site", "attacked"),
		firstDestroyTick: sl.FirstTick("site", "destroyed"),
		firstExposeTick:  sl.FirstTick("exposure", "exposed"),
		lastAttackTick:   lastAttack,
		attacks:          sl.CountCategory("site", "attacked"),
		repairs:          sl.CountCategory("site", "working"),
		destroyed:        r.SitesDestroyed,
		sitesTotal:       r.SitesTotal,
		flees:            countContaining(entries, "state", "change", "→ fleeing"),
		shots:            sl.CountCategory("combat", "fire"),
		playerHits:       r.PlayerHits,
		spawned:          r.InfiltratorsSpawned,
		captured:         r.InfiltratorsCaptured,
		stateChange:      sl.CountCategory("state", "change"),
		lost:             lost,
	}
}

func countContaining(entries []sim.SimLogEntry, category, key, contains string) int {
	n := 0
	for _, e := range entries {
		if e.Category == category && e.Key == key && strings.Contains(e.Value, contains) {
			n++
		}
	}
	return n
}

// detectStalemate flags runs that hit the tick limit without the station
// moving toward either end state.
func detectStalemate(rs runStats) (bool, string) {
	if rs.outcome != sim.OutcomeRunning {
		return false, "finished_" + rs.outcome.String()
	}
	if rs.attacks == 0 {
		return true, "no_sabotage_attempts"
	}
	if rs.destroyed == 0 && rs.repairs >= rs.attacks {
		return true, "every_attack_interrupted"
	}
	return false, "in_progress"
}

func printRun(out io.Writer, rs runStats) {
	fmt.Fprintf(out, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprintf(out, "outcome=%s end_tick=%d description=%s\n", rs.outcome, rs.endTick, rs.description)
	fmt.Fprintf(out, "phase_markers: first_attack=%d last_attack=%d first_destroy=%d first_exposure=%d\n",
		rs.firstAttackTick, rs.lastAttackTick, rs.firstDestroyTick, rs.firstExposeTick)
	fmt.Fprintf(out, "site_events: attacked=%d repaired=%d destroyed=%d/%d\n",
		rs.attacks, rs.repairs, rs.destroyed, rs.sitesTotal)
	fmt.Fprintf(out, "agent_events: state_change=%d flee=%d shots=%d player_hits=%d\n",
		rs.stateChange, rs.flees, rs.shots, rs.playerHits)
	fmt.Fprintf(out, "infiltrators: spawned=%d captured=%d\n", rs.spawned, rs.captured)
	fmt.Fprintf(out, "systems_lost: %s\n", joinSet(rs.lost))
	if stale, reason := detectStalemate(rs); stale {
		fmt.Fprintf(out, "stalemate: %s\n", reason)
	}
	fmt.Fprintln(out)
}

func printSnapshot(out io.Writer, snap sim.Snapshot) {
	fmt.Fprintf(out, "--- Final state at T=%d (%s) ---\n", snap.Tick, snap.Outcome)
	for _, a := range snap.Agents {
		flags := ""
		if !a.AIEnabled {
			flags += " captured"
		}
		if a.Exposed {
			flags += " exposed"
		}
		fmt.Fprintf(out, "  %-4s %-11s %-10s (%.0f,%.0f)%s\n", a.Label, a.Kind, a.State, a.X, a.Y, flags)
	}
	for _, s := range snap.Sites {
		fmt.Fprintf(out, "  site %-18s %s\n", s.Name, s.State)
	}
	fmt.Fprintln(out)
}

func printAggregate(out io.Writer, all []runStats) {
	outcomes := map[sim.Outcome]int{}
	totalAttacks, totalRepairs, totalDestroyed, totalFlees, totalShots := 0, 0, 0, 0, 0
	var attackTicks, destroyTicks, endTicks []int
	lostCounts := map[string]int{}
	stalemates := 0

	for _, rs := range all {
		outcomes[rs.outcome]++
		totalAttacks += rs.attacks
		totalRepairs += rs.repairs
		totalDestroyed += rs.destroyed
		totalFlees += rs.flees
		totalShots += rs.shots
		endTicks = append(endTicks, rs.endTick)
		if rs.firstAttackTick >= 0 {
			attackTicks = append(attackTicks, rs.firstAttackTick)
		}
		if rs.firstDestroyTick >= 0 {
			destroyTicks = append(destroyTicks, rs.firstDestroyTick)
		}
		for name := range rs.lost {
			lostCounts[name]++
		}
		if stale, _ := detectStalemate(rs); stale {
			stalemates++
		}
	}

	n := len(all)
	fmt.Fprintln(out, "=== Aggregate ===")
	fmt.Fprintf(out, "runs=%d won=%d lost=%d running=%d stalemate=%d\n",
		n, outcomes[sim.OutcomeWon], outcomes[sim.OutcomeLost], outcomes[sim.OutcomeRunning], stalemates)
	fmt.Fprintf(out, "avg_events_per_run: attacked=%.1f repaired=%.1f destroyed=%.1f flee=%.1f shots=%.1f\n",
		avg(totalAttacks, n), avg(totalRepairs, n), avg(totalDestroyed, n), avg(totalFlees, n), avg(totalShots, n))
	fmt.Fprintf(out, "phase_marker_avg_ticks: first_attack=%s first_destroy=%s end=%s\n",
		avgTickString(attackTicks), avgTickString(destroyTicks), avgTickString(endTicks))

	if len(lostCounts) > 0 {
		fmt.Fprintln(out, "\n--- Systems lost (runs) ---")
		names := make([]string, 0, len(lostCounts))
		for name := range lostCounts {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if lostCounts[names[i]] != lostCounts[names[j]] {
				return lostCounts[names[i]] > lostCounts[names[j]]
			}
			return names[i] < names[j]
		})
		for _, name := range names {
			fmt.Fprintf(out, "  %-18s %d\n", name, lostCounts[name])
		}
	}
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinSet(s map[string]struct{}) string {
	if len(s) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(s))
	for k := range s {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return strings.Join(labels, ",")
}
