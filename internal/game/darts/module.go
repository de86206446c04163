// Package darts implements the countdown game: every participant (or team)
// counts down from 501, three throws form one atomic turn, and landing on
// exactly zero wins the game.
package darts

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/tavernkeep/tavern/internal/game"
	"github.com/tavernkeep/tavern/internal/identity"
)

const (
	// StartingScore is the countdown starting total.
	StartingScore = 501

	// ThrowsPerTurn is how many rolls form one atomic turn.
	ThrowsPerTurn = 3

	minThrow = 1
	maxThrow = 60
)

// TeamA and TeamB index the two fixed team slots in team mode.
const (
	TeamA = iota
	TeamB
	teamCount
)

type team struct {
	name    string
	score   int
	backup  int
	members []string
}

// Module is the countdown game state machine.
type Module struct {
	logger    *log.Logger
	announcer game.Announcer
	bus       game.EventBus

	startScore int

	order    []string // identity keys in roster order
	displays map[string]string

	scores      map[string]int
	roundTotals map[string][]int // accepted turn totals this round
	backup      map[string]int   // scores at round start

	teamMode    bool
	teams       [teamCount]*team
	playerTeams map[string]int // key -> team index

	throwing string // key currently buffering a turn
	throws   []int

	roundActive  bool
	roundOver    bool
	announced    bool
	winner       string // display or team name
	lastAnnounce string
}

// New creates a darts module counting down from the given starting score.
// A startScore of 0 selects the default 501.
func New(logger *log.Logger, announcer game.Announcer, bus game.EventBus, startScore int) *Module {
	if startScore <= 0 {
		startScore = StartingScore
	}
	m := &Module{
		logger:      logger.WithPrefix("darts"),
		announcer:   announcer,
		bus:         bus,
		startScore:  startScore,
		displays:    make(map[string]string),
		scores:      make(map[string]int),
		roundTotals: make(map[string][]int),
		backup:      make(map[string]int),
		playerTeams: make(map[string]int),
	}
	m.teams[TeamA] = &team{name: "Team A", score: startScore}
	m.teams[TeamB] = &team{name: "Team B", score: startScore}
	return m
}

// Name implements game.Module.
func (m *Module) Name() string { return "Darts 501" }

// RoundActive implements game.Module.
func (m *Module) RoundActive() bool { return m.roundActive }

// RoundOver implements game.Module.
func (m *Module) RoundOver() bool { return m.roundOver }

// CurrentActor implements game.Module. Darts has no enforced turn order; the
// participant currently buffering throws is reported instead.
func (m *Module) CurrentActor() string { return m.throwing }

// Winners implements game.Module.
func (m *Module) Winners() []string {
	if m.winner == "" {
		return nil
	}
	return []string{m.winner}
}

// LastAnnounce implements game.Module.
func (m *Module) LastAnnounce() string { return m.lastAnnounce }

// Stand implements game.Module; not meaningful for darts.
func (m *Module) Stand(string) {}

// TeamMode reports whether team play is enabled.
func (m *Module) TeamMode() bool { return m.teamMode }

// SetTeamMode toggles team play. Enabling resets pools and assignments.
func (m *Module) SetTeamMode(enabled bool) {
	if m.teamMode == enabled {
		return
	}
	m.teamMode = enabled
	if enabled {
		m.teams[TeamA] = &team{name: "Team A", score: m.startScore}
		m.teams[TeamB] = &team{name: "Team B", score: m.startScore}
		m.playerTeams = make(map[string]int)
	}
}

// TeamName returns the label of the given team slot.
func (m *Module) TeamName(index int) string {
	if index < 0 || index >= teamCount {
		return ""
	}
	return m.teams[index].name
}

// RenameTeam updates a team's label. Labels are display-only; membership is
// tracked by slot index.
func (m *Module) RenameTeam(index int, name string) {
	if index < 0 || index >= teamCount || name == "" {
		return
	}
	m.teams[index].name = name
}

// TeamScore returns the team pool for the given slot.
func (m *Module) TeamScore(index int) int {
	if index < 0 || index >= teamCount {
		return 0
	}
	return m.teams[index].score
}

// AssignToTeam places a roster member on a team slot, removing them from the
// other slot if needed.
func (m *Module) AssignToTeam(raw string, index int) {
	if index < 0 || index >= teamCount {
		return
	}
	key, display := identity.Resolve(raw)
	if _, ok := m.scores[key]; !ok {
		return
	}
	m.displays[key] = display

	if prev, ok := m.playerTeams[key]; ok && prev != index {
		m.teams[prev].members = removeKey(m.teams[prev].members, key)
	}
	m.playerTeams[key] = index
	if !containsKey(m.teams[index].members, key) {
		m.teams[index].members = append(m.teams[index].members, key)
	}
}

// SyncRoster implements game.Module. Newcomers are seeded at the starting
// score; departures are dropped only between rounds.
func (m *Module) SyncRoster(rawNames []string) {
	present := make(map[string]bool, len(rawNames))
	keys := make([]string, 0, len(rawNames))
	for _, raw := range rawNames {
		key, display := identity.Resolve(raw)
		if key == "" || present[key] {
			continue
		}
		present[key] = true
		keys = append(keys, key)
		m.displays[key] = display
	}

	if m.roundActive {
		// Never disturb an in-progress round; newcomers merge, nobody leaves.
		for _, key := range keys {
			if _, ok := m.scores[key]; !ok {
				m.seed(key)
				m.order = append(m.order, key)
			}
		}
		return
	}

	for _, key := range m.order {
		if !present[key] {
			delete(m.scores, key)
			delete(m.roundTotals, key)
			delete(m.backup, key)
			if idx, ok := m.playerTeams[key]; ok {
				m.teams[idx].members = removeKey(m.teams[idx].members, key)
				delete(m.playerTeams, key)
			}
		}
	}

	m.order = m.order[:0]
	for _, key := range keys {
		m.order = append(m.order, key)
		if _, ok := m.scores[key]; !ok {
			m.seed(key)
		}
	}
}

func (m *Module) seed(key string) {
	m.scores[key] = m.startScore
	m.roundTotals[key] = nil
	m.logger.Debug("seeded player", "key", key, "score", m.startScore)
}

// StartRound implements game.Module.
func (m *Module) StartRound() {
	m.roundActive = true
	m.roundOver = false
	m.announced = false
	m.winner = ""
	m.lastAnnounce = ""
	m.throwing = ""
	m.throws = m.throws[:0]

	for _, key := range m.order {
		if _, ok := m.scores[key]; !ok {
			m.seed(key)
		}
		m.backup[key] = m.scores[key]
		m.roundTotals[key] = nil
	}
	for _, t := range m.teams {
		t.backup = t.score
	}

	m.bus.Publish(game.NewRoundStartEvent(game.VariantDarts, m.order))
	m.logger.Debug("round started", "players", len(m.order), "teamMode", m.teamMode)
}

// SubmitRoll implements game.Module. Throws buffer per player; the third
// throw closes the turn and applies the total atomically.
func (m *Module) SubmitRoll(key string, value int) {
	if !m.roundActive || m.roundOver {
		return
	}
	if value < minThrow || value > maxThrow {
		m.logger.Debug("ignoring out-of-range throw", "key", key, "value", value)
		return
	}
	if _, ok := m.scores[key]; !ok {
		m.logger.Debug("ignoring throw from unknown player", "key", key)
		return
	}

	// A different player's throw abandons any partial turn in the buffer.
	if m.throwing != key {
		m.throwing = key
		m.throws = m.throws[:0]
	}

	m.throws = append(m.throws, value)
	m.logger.Debug("dart thrown", "key", key, "value", value, "dart", len(m.throws))
	m.bus.Publish(game.NewRollAcceptedEvent(game.VariantDarts, key, m.displayName(key), value))

	if len(m.throws) == ThrowsPerTurn {
		throws := make([]int, ThrowsPerTurn)
		copy(throws, m.throws)
		m.throws = m.throws[:0]
		m.throwing = ""
		m.applyTurn(key, throws)
	}
}

// applyTurn applies a complete three-throw turn. Going below zero busts: the
// turn is rejected and (in team mode) the team pool reverts to its round-start
// backup.
func (m *Module) applyTurn(key string, throws []int) {
	total := 0
	for _, v := range throws {
		total += v
	}

	if m.teamMode {
		idx, ok := m.playerTeams[key]
		if !ok {
			m.logger.Debug("throw from unassigned player in team mode", "key", key)
			return
		}
		t := m.teams[idx]
		newScore := t.score - total
		if newScore < 0 {
			t.score = t.backup
			m.logger.Debug("team busted, reverting to round start", "team", t.name, "score", t.backup)
			return
		}
		t.score = newScore
		m.logger.Debug("team turn accepted", "team", t.name, "total", total, "score", newScore)
		if newScore == 0 {
			m.declareWinner(t.name)
		}
		return
	}

	current := m.scores[key]
	newScore := current - total
	if newScore < 0 {
		m.logger.Debug("turn busted", "key", key, "total", total, "score", current)
		return
	}

	m.scores[key] = newScore
	m.roundTotals[key] = append(m.roundTotals[key], total)
	m.logger.Debug("turn accepted", "key", key, "total", total, "score", newScore)

	if newScore == 0 {
		m.declareWinner(m.displayName(key))
	}
}

func (m *Module) declareWinner(name string) {
	m.winner = name
	m.roundActive = false
	m.roundOver = true
	m.announce(fmt.Sprintf("%s wins!", name))
}

// EndRound implements game.Module.
func (m *Module) EndRound() {
	if !m.roundActive && !m.roundOver {
		return
	}

	m.roundActive = false
	m.roundOver = false
	m.throwing = ""
	m.throws = m.throws[:0]

	if m.winner != "" {
		m.announce(fmt.Sprintf("%s wins!", m.winner))
		return
	}
	m.announce("[Darts] Round ended.")
}

func (m *Module) announce(message string) {
	m.lastAnnounce = message
	if m.announced {
		return
	}
	m.announced = true
	m.announcer.Announce(message)
	m.bus.Publish(game.NewRoundEndEvent(game.VariantDarts, m.Winners(), message))
}

// ResetGame clears all scores back to the starting total.
func (m *Module) ResetGame() {
	m.roundActive = false
	m.roundOver = false
	m.announced = false
	m.winner = ""
	m.lastAnnounce = ""
	m.throwing = ""
	m.throws = m.throws[:0]
	m.playerTeams = make(map[string]int)
	m.teams[TeamA] = &team{name: "Team A", score: m.startScore}
	m.teams[TeamB] = &team{name: "Team B", score: m.startScore}

	for _, key := range m.order {
		m.seed(key)
	}
	m.backup = make(map[string]int)
}

// Score returns a participant's current countdown score.
func (m *Module) Score(key string) int { return m.scores[key] }

// RoundTotals returns the accepted turn totals for a participant this round.
func (m *Module) RoundTotals(key string) []int {
	out := make([]int, len(m.roundTotals[key]))
	copy(out, m.roundTotals[key])
	return out
}

// Scores returns a snapshot of all countdown scores.
func (m *Module) Scores() map[string]int {
	out := make(map[string]int, len(m.scores))
	for k, v := range m.scores {
		out[k] = v
	}
	return out
}

func (m *Module) displayName(key string) string {
	if d, ok := m.displays[key]; ok {
		return d
	}
	return key
}

func removeKey(keys []string, key string) []string {
	for i, k := range keys {
		if k == key {
			return append(keys[:i], keys[i+1:]...)
		}
	}
	return keys
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
