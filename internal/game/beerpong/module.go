// Package beerpong implements the elimination cup game. Shooters roll 1-100
// against a target that rises with how much they have already drunk; hits make
// the opposition drink, misses make the shooter drink, and the last party or
// team with cups remaining wins.
package beerpong

import (
	"fmt"
	rand "math/rand/v2"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/tavernkeep/tavern/internal/game"
	"github.com/tavernkeep/tavern/internal/identity"
)

// hitTargets is indexed by the shooter's consumed-drink count and clamped at
// the last entry: the drunker the shooter, the harder the shot.
var hitTargets = [...]int{65, 70, 75, 80, 85, 90}

const (
	// SoloCups is each player's cup allocation in 1v1 play.
	SoloCups = 10

	// TeamCups is each player's cup allocation in team play; the shared team
	// pool starts at TeamCups per member.
	TeamCups = 5

	minRoll = 1
	maxRoll = 100
)

// Player holds one participant's cup state.
type Player struct {
	Key      string
	Display  string
	CupsLeft int
	Drinks   int
	Out      bool
}

// Team is a shared cup pool over an ordered set of member keys.
type Team struct {
	Name     string
	CupsLeft int
	Out      bool
	Members  []string
}

type rollPair struct {
	key   string
	value int
}

// Module is the elimination cup game state machine.
type Module struct {
	logger    *log.Logger
	announcer game.Announcer
	bus       game.EventBus
	rng       *rand.Rand

	players map[string]*Player
	order   []string // keys in roster order

	teamMode    bool
	teams       map[string]*Team
	teamOrder   []string
	playerTeams map[string]string // key -> team name

	seen []rollPair // accepted (key, value) pairs this round

	roundActive  bool
	roundOver    bool
	announced    bool
	winners      []string
	lastAnnounce string
}

// New creates a beerpong module. The RNG picks which member of a hit team
// drinks; inject a seeded source for reproducible tests.
func New(logger *log.Logger, announcer game.Announcer, bus game.EventBus, rng *rand.Rand) *Module {
	return &Module{
		logger:      logger.WithPrefix("beerpong"),
		announcer:   announcer,
		bus:         bus,
		rng:         rng,
		players:     make(map[string]*Player),
		teams:       make(map[string]*Team),
		playerTeams: make(map[string]string),
	}
}

// Name implements game.Module.
func (m *Module) Name() string { return "Beer Pong" }

// RoundActive implements game.Module.
func (m *Module) RoundActive() bool { return m.roundActive }

// RoundOver implements game.Module.
func (m *Module) RoundOver() bool { return m.roundOver }

// CurrentActor implements game.Module; beerpong is free-for-all.
func (m *Module) CurrentActor() string { return "" }

// Winners implements game.Module.
func (m *Module) Winners() []string {
	out := make([]string, len(m.winners))
	copy(out, m.winners)
	return out
}

// LastAnnounce implements game.Module.
func (m *Module) LastAnnounce() string { return m.lastAnnounce }

// Stand implements game.Module; not meaningful for beerpong.
func (m *Module) Stand(string) {}

// TeamMode reports whether team play is enabled.
func (m *Module) TeamMode() bool { return m.teamMode }

// SetTeamMode toggles team play, resetting cups, drinks and assignments.
func (m *Module) SetTeamMode(enabled bool) {
	if m.teamMode == enabled {
		return
	}
	m.teamMode = enabled
	m.ClearTeams()

	for _, p := range m.players {
		p.Out = false
		p.Drinks = 0
		if enabled {
			p.CupsLeft = TeamCups
		} else {
			p.CupsLeft = SoloCups
		}
	}
}

// ClearTeams removes all team assignments.
func (m *Module) ClearTeams() {
	m.teams = make(map[string]*Team)
	m.teamOrder = m.teamOrder[:0]
	m.playerTeams = make(map[string]string)
}

// AssignToTeam places a participant on the named team, creating the team on
// first use and dissolving any team left empty.
func (m *Module) AssignToTeam(raw, teamName string) {
	key := identity.Key(raw)
	if _, ok := m.players[key]; !ok || teamName == "" {
		return
	}

	if prev, ok := m.playerTeams[key]; ok && prev != teamName {
		t := m.teams[prev]
		t.Members = removeKey(t.Members, key)
		if len(t.Members) == 0 {
			delete(m.teams, prev)
			m.teamOrder = removeKey(m.teamOrder, prev)
		}
	}

	t, ok := m.teams[teamName]
	if !ok {
		t = &Team{Name: teamName}
		m.teams[teamName] = t
		m.teamOrder = append(m.teamOrder, teamName)
	}
	if !containsKey(t.Members, key) {
		t.Members = append(t.Members, key)
	}
	m.playerTeams[key] = teamName
}

// SyncRoster implements game.Module. Departed players leave their teams and
// are removed; newcomers get a fresh cup allocation.
func (m *Module) SyncRoster(rawNames []string) {
	present := make(map[string]bool, len(rawNames))
	resolved := make([]struct{ key, display string }, 0, len(rawNames))
	for _, raw := range rawNames {
		key, display := identity.Resolve(raw)
		if key == "" || present[key] {
			continue
		}
		present[key] = true
		resolved = append(resolved, struct{ key, display string }{key, display})
	}

	for _, key := range m.order {
		if present[key] {
			continue
		}
		if teamName, ok := m.playerTeams[key]; ok {
			t := m.teams[teamName]
			t.Members = removeKey(t.Members, key)
			delete(m.playerTeams, key)
		}
		delete(m.players, key)
	}

	m.order = m.order[:0]
	for _, r := range resolved {
		m.order = append(m.order, r.key)
		if p, ok := m.players[r.key]; ok {
			p.Display = r.display
			continue
		}
		cups := SoloCups
		if m.teamMode {
			cups = TeamCups
		}
		m.players[r.key] = &Player{Key: r.key, Display: r.display, CupsLeft: cups}
	}
}

// StartRound implements game.Module.
func (m *Module) StartRound() {
	m.roundActive = true
	m.roundOver = false
	m.announced = false
	m.winners = nil
	m.lastAnnounce = ""
	m.seen = m.seen[:0]

	for _, p := range m.players {
		p.Drinks = 0
		p.Out = false
		if m.teamMode {
			p.CupsLeft = TeamCups
		} else {
			p.CupsLeft = SoloCups
		}
	}
	if m.teamMode {
		for _, t := range m.teams {
			t.CupsLeft = len(t.Members) * TeamCups
			t.Out = false
		}
	}

	m.bus.Publish(game.NewRoundStartEvent(game.VariantBeerPong, m.order))
	m.logger.Debug("round started", "players", len(m.order), "teamMode", m.teamMode)
}

// Target returns the hit threshold for a shooter with the given drink count.
func Target(drinks int) int {
	if drinks >= len(hitTargets) {
		return hitTargets[len(hitTargets)-1]
	}
	if drinks < 0 {
		return hitTargets[0]
	}
	return hitTargets[drinks]
}

// SubmitRoll implements game.Module. Duplicate (key, value) pairs within a
// round are discarded to guard against chat retransmission.
func (m *Module) SubmitRoll(key string, value int) {
	if !m.roundActive || m.roundOver {
		return
	}
	if value < minRoll || value > maxRoll {
		m.logger.Debug("ignoring out-of-range roll", "key", key, "value", value)
		return
	}
	shooter, ok := m.players[key]
	if !ok || shooter.Out {
		m.logger.Debug("ignoring roll from unknown or out player", "key", key)
		return
	}
	for _, pair := range m.seen {
		if pair.key == key && pair.value == value {
			m.logger.Debug("ignoring duplicate roll", "key", key, "value", value)
			return
		}
	}
	m.seen = append(m.seen, rollPair{key, value})
	m.bus.Publish(game.NewRollAcceptedEvent(game.VariantBeerPong, key, shooter.Display, value))

	target := Target(shooter.Drinks)
	if value >= target {
		m.logger.Debug("hit", "key", key, "roll", value, "target", target)
		m.resolveHit(shooter)
	} else {
		m.logger.Debug("miss", "key", key, "roll", value, "target", target)
		m.resolveMiss(shooter)
	}
}

func (m *Module) resolveHit(shooter *Player) {
	if m.teamMode {
		m.resolveTeamHit(shooter)
		return
	}

	var opponent *Player
	for _, key := range m.order {
		p := m.players[key]
		if p.Key != shooter.Key && !p.Out {
			opponent = p
			break
		}
	}
	if opponent == nil {
		m.finishRound()
		return
	}

	opponent.CupsLeft--
	opponent.Drinks++
	if opponent.CupsLeft <= 0 {
		m.eliminate(opponent)
	}
	m.checkSoloEnd()
}

func (m *Module) resolveTeamHit(shooter *Player) {
	teamName, ok := m.playerTeams[shooter.Key]
	if !ok {
		m.logger.Debug("shooter has no team", "key", shooter.Key)
		return
	}
	shooterTeam := m.teams[teamName]

	var targetTeam *Team
	for _, name := range m.teamOrder {
		t := m.teams[name]
		if t != shooterTeam && !t.Out {
			targetTeam = t
			break
		}
	}
	if targetTeam == nil {
		m.finishRound()
		return
	}

	targetTeam.CupsLeft--

	// One random not-yet-out member drinks individually.
	candidates := make([]*Player, 0, len(targetTeam.Members))
	for _, key := range targetTeam.Members {
		if p := m.players[key]; p != nil && !p.Out && p.CupsLeft > 0 {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) > 0 {
		unlucky := candidates[m.rng.IntN(len(candidates))]
		unlucky.CupsLeft--
		unlucky.Drinks++
		if unlucky.CupsLeft <= 0 {
			m.eliminate(unlucky)
		}
	}

	if targetTeam.CupsLeft <= 0 {
		targetTeam.Out = true
		m.logger.Debug("team out", "team", targetTeam.Name)
	}
	m.checkTeamEnd()
}

func (m *Module) resolveMiss(shooter *Player) {
	shooter.Drinks++
	shooter.CupsLeft--

	if m.teamMode {
		if teamName, ok := m.playerTeams[shooter.Key]; ok {
			t := m.teams[teamName]
			t.CupsLeft--
			if t.CupsLeft <= 0 {
				t.Out = true
				m.logger.Debug("team out", "team", t.Name)
			}
		}
	}

	if shooter.CupsLeft <= 0 {
		m.eliminate(shooter)
	}

	if m.teamMode {
		m.checkTeamEnd()
	} else {
		m.checkSoloEnd()
	}
}

func (m *Module) eliminate(p *Player) {
	p.Out = true
	m.logger.Debug("player out", "key", p.Key)
	m.bus.Publish(game.NewPlayerOutEvent(game.VariantBeerPong, p.Key, p.Display))
}

func (m *Module) checkSoloEnd() {
	remaining := 0
	for _, p := range m.players {
		if !p.Out {
			remaining++
		}
	}
	if remaining <= 1 {
		m.finishRound()
	}
}

func (m *Module) checkTeamEnd() {
	remaining := 0
	for _, t := range m.teams {
		if !t.Out {
			remaining++
		}
	}
	if remaining <= 1 {
		m.finishRound()
	}
}

// EndRound implements game.Module. The un-out side wins.
func (m *Module) EndRound() {
	if !m.roundActive && !m.roundOver {
		return
	}
	m.finishRound()
}

func (m *Module) finishRound() {
	m.roundActive = false
	m.roundOver = true
	m.seen = m.seen[:0]

	m.winners = m.winners[:0]
	if m.teamMode {
		for _, name := range m.teamOrder {
			if !m.teams[name].Out {
				m.winners = append(m.winners, name)
			}
		}
	} else {
		for _, key := range m.order {
			if p := m.players[key]; p != nil && !p.Out {
				m.winners = append(m.winners, p.Display)
			}
		}
	}

	if len(m.winners) > 0 {
		m.announce(fmt.Sprintf("[Beer Pong] Winner(s): %s", strings.Join(m.winners, ", ")))
	} else {
		m.announce("[Beer Pong] No winners this round.")
	}
}

func (m *Module) announce(message string) {
	m.lastAnnounce = message
	if m.announced {
		return
	}
	m.announced = true
	m.announcer.Announce(message)
	m.bus.Publish(game.NewRoundEndEvent(game.VariantBeerPong, m.Winners(), message))
}

// PlayerStatus returns a participant's cup state, or nil.
func (m *Module) PlayerStatus(key string) *Player {
	p, ok := m.players[key]
	if !ok {
		return nil
	}
	snapshot := *p
	return &snapshot
}

// TeamStatus returns a team's pool state, or nil.
func (m *Module) TeamStatus(name string) *Team {
	t, ok := m.teams[name]
	if !ok {
		return nil
	}
	snapshot := *t
	snapshot.Members = append([]string(nil), t.Members...)
	return &snapshot
}

// IsPlayerOut reports whether the participant has been eliminated.
func (m *Module) IsPlayerOut(key string) bool {
	p, ok := m.players[key]
	return ok && p.Out
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
