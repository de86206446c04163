// Package deathroll implements the escalating roll duel: each roll caps the
// next, and whoever rolls a 1 loses.
package deathroll

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/tavernkeep/tavern/internal/game"
	"github.com/tavernkeep/tavern/internal/identity"
)

// StartingMax is the default opening ceiling.
const StartingMax = 1000

// Roll is one accepted roll in the round's history.
type Roll struct {
	Key   string
	Value int
}

// Module is the escalating duel state machine. The ceiling never rises: each
// accepted roll becomes the new upper bound, and a roll of exactly 1 ends the
// round with the roller as loser.
type Module struct {
	logger    *log.Logger
	announcer game.Announcer
	bus       game.EventBus

	startMax   int
	currentMax int

	party    []string
	displays map[string]string

	history []Roll

	roundActive  bool
	roundOver    bool
	announced    bool
	winner       string // identity key
	loser        string // identity key
	lastAnnounce string
}

// New creates a deathroll module. A startMax of 0 selects the default 1000.
func New(logger *log.Logger, announcer game.Announcer, bus game.EventBus, startMax int) *Module {
	if startMax <= 0 {
		startMax = StartingMax
	}
	return &Module{
		logger:     logger.WithPrefix("deathroll"),
		announcer:  announcer,
		bus:        bus,
		startMax:   startMax,
		currentMax: startMax,
		displays:   make(map[string]string),
	}
}

// Name implements game.Module.
func (m *Module) Name() string { return "Deathroll" }

// RoundActive implements game.Module.
func (m *Module) RoundActive() bool { return m.roundActive }

// RoundOver implements game.Module.
func (m *Module) RoundOver() bool { return m.roundOver }

// CurrentActor implements game.Module; deathroll alternation is by courtesy,
// not enforcement.
func (m *Module) CurrentActor() string { return "" }

// Winners implements game.Module.
func (m *Module) Winners() []string {
	if m.winner == "" {
		return nil
	}
	return []string{m.displayName(m.winner)}
}

// LastAnnounce implements game.Module.
func (m *Module) LastAnnounce() string { return m.lastAnnounce }

// Stand implements game.Module; not meaningful for deathroll.
func (m *Module) Stand(string) {}

// CurrentMax returns the live ceiling.
func (m *Module) CurrentMax() int { return m.currentMax }

// Loser returns the display name of the round's loser, or "".
func (m *Module) Loser() string {
	if m.loser == "" {
		return ""
	}
	return m.displayName(m.loser)
}

// History returns the accepted rolls this round, in order.
func (m *Module) History() []Roll {
	out := make([]Roll, len(m.history))
	copy(out, m.history)
	return out
}

// SyncRoster implements game.Module. Membership only changes between rounds;
// display names refresh any time.
func (m *Module) SyncRoster(rawNames []string) {
	keys := make([]string, 0, len(rawNames))
	seen := make(map[string]bool, len(rawNames))
	for _, raw := range rawNames {
		key, display := identity.Resolve(raw)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
		m.displays[key] = display
	}

	if m.roundActive {
		return
	}
	m.party = keys
}

// StartRound implements game.Module.
func (m *Module) StartRound() {
	m.roundActive = true
	m.roundOver = false
	m.announced = false
	m.winner = ""
	m.loser = ""
	m.lastAnnounce = ""
	m.history = m.history[:0]
	m.currentMax = m.startMax

	m.bus.Publish(game.NewRoundStartEvent(game.VariantDeathroll, m.party))
	m.logger.Debug("round started", "max", m.currentMax)
}

// SubmitRoll implements game.Module. Duplicate (key, value) pairs are ignored
// to guard against retransmission; a roll equal to the ceiling holds it steady.
func (m *Module) SubmitRoll(key string, value int) {
	if !m.roundActive || m.roundOver {
		return
	}
	if !m.inParty(key) {
		m.logger.Debug("ignoring roll from outside party", "key", key)
		return
	}
	for _, r := range m.history {
		if r.Key == key && r.Value == value {
			m.logger.Debug("ignoring duplicate roll", "key", key, "value", value)
			return
		}
	}
	if value < 1 || value > m.currentMax {
		m.logger.Debug("ignoring out-of-range roll", "key", key, "value", value, "max", m.currentMax)
		return
	}

	m.history = append(m.history, Roll{Key: key, Value: value})
	m.logger.Debug("roll accepted", "key", key, "value", value, "max", m.currentMax)
	m.bus.Publish(game.NewRollAcceptedEvent(game.VariantDeathroll, key, m.displayName(key), value))

	if value == 1 {
		m.loser = key
		m.winner = m.lastOtherRoller(key)
		m.roundActive = false
		m.roundOver = true
		m.announce(fmt.Sprintf("[Deathroll] %s lost the deathroll!", m.displayName(key)))
		return
	}

	m.currentMax = value
}

// lastOtherRoller walks the history backwards for the most recent roller other
// than the loser; in a duel that is the opponent.
func (m *Module) lastOtherRoller(loser string) string {
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].Key != loser {
			return m.history[i].Key
		}
	}
	return ""
}

// EndRound implements game.Module.
func (m *Module) EndRound() {
	if !m.roundActive && !m.roundOver {
		return
	}

	m.roundActive = false
	m.roundOver = true

	if m.winner != "" {
		m.announce(fmt.Sprintf("[Deathroll] Winner: %s", m.displayName(m.winner)))
		return
	}
	m.announce("[Deathroll] Round ended with no winner.")
}

func (m *Module) announce(message string) {
	m.lastAnnounce = message
	if m.announced {
		return
	}
	m.announced = true
	m.announcer.Announce(message)
	m.bus.Publish(game.NewRoundEndEvent(game.VariantDeathroll, m.Winners(), message))
}

func (m *Module) inParty(key string) bool {
	if key == "" {
		return false
	}
	for _, k := range m.party {
		if k == key {
			return true
		}
	}
	return false
}

func (m *Module) displayName(key string) string {
	if d, ok := m.displays[key]; ok {
		return d
	}
	return key
}
