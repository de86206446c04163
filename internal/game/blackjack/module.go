package blackjack

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/tavernkeep/tavern/internal/game"
	"github.com/tavernkeep/tavern/internal/identity"
)

// Card values arrive as rolls; anything above 10 is noise from other dice.
const (
	minCard = 1
	maxCard = 10
)

// Module is the card game state machine. Turn order is roster order with the
// dealer pinned last; rolls land in the roller's own hand regardless of whose
// turn it is, so the current actor is advisory.
type Module struct {
	logger    *log.Logger
	announcer game.Announcer
	bus       game.EventBus

	party    []string          // identity keys in roster order
	displays map[string]string // key -> most recent display name

	hands     map[string]*Hand
	handOrder []string // keys in first-roll order, for stable evaluation

	turnOrder  []string
	currentIdx int
	dealer     string

	roundActive bool
	roundOver   bool
	announced   bool

	winners      []string
	winningScore int
	lastAnnounce string
}

// New creates a blackjack module.
func New(logger *log.Logger, announcer game.Announcer, bus game.EventBus) *Module {
	return &Module{
		logger:    logger.WithPrefix("blackjack"),
		announcer: announcer,
		bus:       bus,
		displays:  make(map[string]string),
		hands:     make(map[string]*Hand),
	}
}

// Name implements game.Module.
func (m *Module) Name() string { return "Blackjack" }

// RoundActive implements game.Module.
func (m *Module) RoundActive() bool { return m.roundActive }

// RoundOver implements game.Module.
func (m *Module) RoundOver() bool { return m.roundOver }

// CurrentActor returns the identity key whose turn it is.
func (m *Module) CurrentActor() string {
	if len(m.turnOrder) == 0 {
		return ""
	}
	return m.turnOrder[m.currentIdx]
}

// Winners implements game.Module.
func (m *Module) Winners() []string {
	out := make([]string, 0, len(m.winners))
	for _, key := range m.winners {
		out = append(out, m.displayName(key))
	}
	return out
}

// LastAnnounce implements game.Module.
func (m *Module) LastAnnounce() string { return m.lastAnnounce }

// Dealer returns the dealer's identity key, or "".
func (m *Module) Dealer() string { return m.dealer }

// SetDealer assigns the dealer from a raw name. Only current roster members
// may deal; an empty name clears the assignment.
func (m *Module) SetDealer(raw string) {
	if raw == "" {
		m.dealer = ""
		m.rebuildTurnOrder()
		return
	}

	key, display := identity.Resolve(raw)
	if !m.inParty(key) {
		m.logger.Debug("ignoring invalid dealer", "name", raw)
		return
	}

	m.displays[key] = display
	m.dealer = key
	m.logger.Debug("dealer set", "dealer", key)
	m.rebuildTurnOrder()
}

// SyncRoster implements game.Module. Membership is recomputed from the
// snapshot; the dealer is cleared if no longer present.
func (m *Module) SyncRoster(rawNames []string) {
	dealer := m.dealer

	m.party = m.party[:0]
	for _, raw := range rawNames {
		key, display := identity.Resolve(raw)
		if key == "" {
			continue
		}
		if !m.inParty(key) {
			m.party = append(m.party, key)
		}
		m.displays[key] = display
	}

	if dealer != "" && !m.inParty(dealer) {
		m.dealer = ""
		m.logger.Debug("dealer cleared, no longer in party", "dealer", dealer)
	}

	m.rebuildTurnOrder()
}

// StartRound implements game.Module.
func (m *Module) StartRound() {
	m.hands = make(map[string]*Hand)
	m.handOrder = m.handOrder[:0]
	m.winners = nil
	m.winningScore = 0
	m.lastAnnounce = ""
	m.currentIdx = 0
	m.roundActive = true
	m.roundOver = false
	m.announced = false

	m.rebuildTurnOrder()

	m.logger.Debug("round started", "turnOrder", strings.Join(m.turnOrder, ", "))
	m.bus.Publish(game.NewRoundStartEvent(game.VariantBlackjack, m.turnOrder))
}

// SubmitRoll implements game.Module. An accepted roll lands in the roller's
// current sub-hand; bust or 21 finishes the sub-hand and play auto-advances.
func (m *Module) SubmitRoll(key string, value int) {
	if !m.roundActive || m.roundOver {
		return
	}
	if value < minCard || value > maxCard {
		m.logger.Debug("ignoring out-of-range card", "key", key, "value", value)
		return
	}
	if !m.inParty(key) {
		m.logger.Debug("ignoring roll from unknown player", "key", key)
		return
	}

	hand := m.ensureHand(key)
	if hand.AllDone() {
		return
	}

	hand.AddCard(value)
	m.logger.Debug("card drawn", "key", key, "hand", hand.CurrentIndex()+1, "score", hand.CurrentScore())
	m.bus.Publish(game.NewRollAcceptedEvent(game.VariantBlackjack, key, m.displayName(key), value))

	if hand.CurrentScore() > 21 {
		hand.Finish()
		m.logger.Debug("hand busted", "key", key, "hand", hand.CurrentIndex()+1)
	} else if hand.CurrentScore() == 21 {
		hand.Finish()
		m.logger.Debug("hand hit 21", "key", key, "hand", hand.CurrentIndex()+1)
	}

	if hand.Done(hand.CurrentIndex()) {
		m.advance(hand)
	}
}

// Stand implements game.Module.
func (m *Module) Stand(key string) {
	if !m.roundActive || m.roundOver {
		return
	}
	if !m.inTurnOrder(key) {
		return
	}
	hand, ok := m.hands[key]
	if !ok || hand.Done(hand.CurrentIndex()) {
		return
	}

	hand.Finish()
	m.logger.Debug("player stands", "key", key, "score", hand.CurrentScore())
	m.advance(hand)
}

// Split splits the roller's current sub-hand if it is a two-card pair.
func (m *Module) Split(key string) {
	if !m.roundActive || m.roundOver {
		return
	}
	hand, ok := m.hands[key]
	if !ok || !hand.Split() {
		m.logger.Debug("split refused", "key", key)
		return
	}
	m.logger.Debug("hand split", "key", key)
}

// EndRound implements game.Module. Winner evaluation is dealer-relative when a
// dealer has rolled; otherwise the best not-busted score wins.
func (m *Module) EndRound() {
	if !m.roundActive && !m.roundOver {
		return
	}

	m.roundActive = false
	m.roundOver = false
	m.currentIdx = 0

	if len(m.hands) == 0 {
		m.winners = nil
		m.winningScore = 0
		m.announce("[Blackjack] Round ended. No players rolled.")
		return
	}

	if dealerHand, ok := m.hands[m.dealer]; m.dealer != "" && ok {
		m.resolveAgainstDealer(dealerHand)
	} else {
		m.resolveBestScore()
	}
}

// resolveAgainstDealer applies the dealer rule: every not-busted non-dealer
// sub-hand that beats the dealer's best score wins. A player is listed once no
// matter how many of their sub-hands qualify, but every qualifying score is
// reported.
func (m *Module) resolveAgainstDealer(dealerHand *Hand) {
	dealerScore := dealerHand.BestScore()
	dealerBusted := dealerScore == 0 || dealerScore > 21

	m.logger.Debug("dealer evaluated", "score", dealerScore, "busted", dealerBusted)

	m.winners = nil
	winningScores := make(map[string][]int)

	for _, key := range m.handOrder {
		if key == m.dealer {
			continue
		}
		hand := m.hands[key]
		for i := range hand.Hands() {
			score := hand.Score(i)
			if score > 21 {
				continue
			}
			if dealerBusted || score > dealerScore {
				if len(winningScores[key]) == 0 {
					m.winners = append(m.winners, key)
				}
				winningScores[key] = append(winningScores[key], score)
			}
		}
	}

	if len(m.winners) == 0 {
		m.winners = []string{m.dealer}
		m.winningScore = dealerScore
		m.announce("[Blackjack] Dealer wins!")
		return
	}

	best := 0
	parts := make([]string, 0, len(m.winners))
	for _, key := range m.winners {
		scores := winningScores[key]
		handParts := make([]string, len(scores))
		for i, s := range scores {
			handParts[i] = fmt.Sprintf("Hand %d: %d", i+1, s)
			if s > best {
				best = s
			}
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", m.displayName(key), strings.Join(handParts, ", ")))
	}
	m.winningScore = best

	m.announce(fmt.Sprintf("[Blackjack] Winner(s): %s against dealer (%d)!", strings.Join(parts, ", "), dealerScore))
}

// resolveBestScore is the dealerless fallback: the highest not-busted score
// takes the round, ties share it.
func (m *Module) resolveBestScore() {
	best := 0
	for _, key := range m.handOrder {
		if s := m.hands[key].BestScore(); s > best {
			best = s
		}
	}

	m.winners = nil
	for _, key := range m.handOrder {
		if best > 0 && m.hands[key].BestScore() == best {
			m.winners = append(m.winners, key)
		}
	}
	m.winningScore = best

	if len(m.winners) == 0 {
		m.announce("[Blackjack] No winners this round.")
		return
	}

	names := make([]string, len(m.winners))
	for i, key := range m.winners {
		names[i] = m.displayName(key)
	}
	m.announce(fmt.Sprintf("[Blackjack] Winner(s): %s with %d!", strings.Join(names, ", "), best))
}

func (m *Module) announce(message string) {
	m.lastAnnounce = message
	if m.announced {
		return
	}
	m.announced = true
	m.announcer.Announce(message)
	m.bus.Publish(game.NewRoundEndEvent(game.VariantBlackjack, m.Winners(), message))
}

// advance moves to the roller's next unfinished sub-hand, or to the next
// player still holding one, or ends the round.
func (m *Module) advance(hand *Hand) {
	if hand.Advance() {
		m.logger.Debug("moved to next sub-hand", "key", hand.Key(), "hand", hand.CurrentIndex()+1)
		return
	}
	m.nextTurn()
}

func (m *Module) nextTurn() {
	if len(m.turnOrder) == 0 {
		m.roundOver = true
		return
	}

	for i := 0; i < len(m.turnOrder); i++ {
		m.currentIdx = (m.currentIdx + 1) % len(m.turnOrder)
		key := m.turnOrder[m.currentIdx]
		if hand, ok := m.hands[key]; ok && !hand.AllDone() {
			m.logger.Debug("next turn", "key", key)
			return
		}
	}

	m.roundOver = true
	m.logger.Debug("round over, all hands finished")
}

// ensureHand creates the participant's hand on first roll.
func (m *Module) ensureHand(key string) *Hand {
	hand, ok := m.hands[key]
	if !ok {
		hand = NewHand(key, m.displayName(key))
		m.hands[key] = hand
		m.handOrder = append(m.handOrder, key)
	} else {
		hand.SetDisplay(m.displayName(key))
	}
	return hand
}

// Hands returns a per-participant snapshot keyed by identity key.
func (m *Module) Hands() map[string]*Hand {
	out := make(map[string]*Hand, len(m.hands))
	for k, v := range m.hands {
		out[k] = v
	}
	return out
}

// IsPlayerDone reports whether the participant has no playable sub-hand left.
func (m *Module) IsPlayerDone(key string) bool {
	hand, ok := m.hands[key]
	return !ok || hand.AllDone()
}

func (m *Module) rebuildTurnOrder() {
	m.turnOrder = m.turnOrder[:0]
	for _, key := range m.party {
		if key != m.dealer {
			m.turnOrder = append(m.turnOrder, key)
		}
	}
	if m.dealer != "" {
		m.turnOrder = append(m.turnOrder, m.dealer)
	}
	if m.currentIdx >= len(m.turnOrder) {
		m.currentIdx = 0
	}
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

func (m *Module) inTurnOrder(key string) bool {
	for _, k := range m.turnOrder {
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
