package sim

import (
	"fmt"
	"sort"
	"strings"
)

// SimLogEntry is one recorded event.
type SimLogEntry struct {
	Tick     int
	Agent    string  // label e.g. "C4", "I2", "P", or "--" for global events
	Kind     string  // "civilian", "infiltrator", "player", or "--"
	Category string  // state, move, site, exposure, combat, player, ray, spawn, outcome
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] I3   site      attacked         reactor-core
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s",
		e.Tick, e.Agent, e.Category, e.Key, e.Value)
}

// SimLog collects structured events during a run. Unlike the viewer's event
// panel it is unbounded and machine-readable.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-tick position entries
// are also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Add records a new entry.
func (sl *SimLog) Add(tick int, agent, kind, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Agent:    agent,
		Kind:     kind,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, agent, kind, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, agent, kind, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Len returns the number of recorded entries.
func (sl *SimLog) Len() int { return len(sl.entries) }

// Since returns the entries recorded after the first n.
func (sl *SimLog) Since(n int) []SimLogEntry {
	if n >= len(sl.entries) {
		return nil
	}
	if n < 0 {
		n = 0
	}
	return sl.entries[n:]
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterAgent returns entries for a specific agent label.
func (sl *SimLog) FilterAgent(label string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Agent == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// FirstTick returns the tick of the earliest entry matching category+key,
// or -1.
func (sl *SimLog) FirstTick(category, key string) int {
	for _, e := range sl.entries {
		if e.Category == category && (key == "" || e.Key == key) {
			return e.Tick
		}
	}
	return -1
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns a log string filtered to a tick range.
func (sl *SimLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range sl.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the world.
func (sl *SimLog) Summary(w *World) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", w.tick)

	// State distribution per kind.
	counts := map[AgentKind]map[State]int{}
	for _, n := range w.NPCs() {
		if _, ok := counts[n.Kind()]; !ok {
			counts[n.Kind()] = map[State]int{}
		}
		counts[n.Kind()][n.state]++
	}
	for _, kind := range []AgentKind{AgentCivilian, AgentInfiltrator} {
		states, ok := counts[kind]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "%s states: ", kind)
		for _, s := range []State{StateIdle, StateNavigating, StateFleeing, StateArrived, StateActing} {
			if n := states[s]; n > 0 {
				fmt.Fprintf(&sb, "%s=%d  ", s, n)
			}
		}
		sb.WriteByte('\n')
	}

	// Sites by state.
	byState := map[SiteState][]string{}
	for _, s := range w.sites {
		byState[s.state] = append(byState[s.state], s.Name)
	}
	for _, st := range []SiteState{SiteWorking, SiteAttacked, SiteDestroyed} {
		names := byState[st]
		if len(names) == 0 {
			continue
		}
		sort.Strings(names)
		fmt.Fprintf(&sb, "Sites %s: %s\n", st, strings.Join(names, ", "))
	}

	p := w.player
	fmt.Fprintf(&sb, "Player: health=%.2f charge=%.2f at (%.0f,%.0f)\n", p.health, p.charge, p.pos.X, p.pos.Y)
	fmt.Fprintf(&sb, "Infiltrators: active=%d spawned=%d captured=%d\n",
		w.activeInfiltrators, w.infiltratorsAdded, w.captured)
	return sb.String()
}
