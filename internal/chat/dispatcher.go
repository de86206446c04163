// Package chat turns raw chat lines into game module calls. Each game variant
// owns a dispatcher that knows the roll-announcement shape it listens for,
// which channels it watches, and which module receives the extracted value.
package chat

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/tavernkeep/tavern/internal/game"
	"github.com/tavernkeep/tavern/internal/game/blackjack"
	"github.com/tavernkeep/tavern/internal/identity"
)

// Channel is the chat channel a message arrived on.
type Channel string

const (
	ChannelParty Channel = "party"
	ChannelSay   Channel = "say"
	ChannelYell  Channel = "yell"
	ChannelShout Channel = "shout"
	ChannelTell  Channel = "tell"
)

// Message is one chat line as delivered by the transport.
type Message struct {
	Channel Channel
	Sender  string
	Text    string
}

// Dispatcher consumes chat messages for one game variant.
type Dispatcher interface {
	Handle(msg Message)
}

// Roll-announcement patterns. The in-game dice line reads
// "Random! (1-100) 78"; the bound shows only when it isn't the default.
var (
	blackjackRollPattern = regexp.MustCompile(`Random! \(1-11\) (\d{1,2})`)
	beerPongRollPattern  = regexp.MustCompile(`Random! \(1-100\) (\d+)`)
	openRollPattern      = regexp.MustCompile(`Random!(?: \(1-(\d+)\))? (\d+)`)
)

// BlackjackDispatcher feeds the card game: 1-11 dice rolls plus the "stand"
// and "split" chat keywords. Keywords pass through even between rounds; the
// module gates them.
type BlackjackDispatcher struct {
	module *blackjack.Module
	logger *log.Logger
}

// NewBlackjackDispatcher creates a dispatcher bound to a blackjack module.
func NewBlackjackDispatcher(module *blackjack.Module, logger *log.Logger) *BlackjackDispatcher {
	return &BlackjackDispatcher{module: module, logger: logger.WithPrefix("chat.blackjack")}
}

// Handle implements Dispatcher.
func (d *BlackjackDispatcher) Handle(msg Message) {
	if msg.Channel != ChannelParty {
		return
	}

	key, _ := identity.Resolve(msg.Sender)
	if key == "" {
		return
	}

	if match := blackjackRollPattern.FindStringSubmatch(msg.Text); match != nil {
		value, err := strconv.Atoi(match[1])
		if err != nil {
			return
		}
		d.logger.Debug("captured roll", "sender", msg.Sender, "value", value)
		d.module.SubmitRoll(key, value)
		return
	}

	switch strings.ToLower(strings.TrimSpace(msg.Text)) {
	case "stand":
		d.logger.Debug("captured stand", "sender", msg.Sender)
		d.module.Stand(key)
	case "split":
		d.logger.Debug("captured split", "sender", msg.Sender)
		d.module.Split(key)
	}
}

// DartsDispatcher feeds the countdown game from party, say and yell channels.
// Dart throws are 1-60.
type DartsDispatcher struct {
	module game.Module
	logger *log.Logger
}

// NewDartsDispatcher creates a dispatcher bound to a darts module.
func NewDartsDispatcher(module game.Module, logger *log.Logger) *DartsDispatcher {
	return &DartsDispatcher{module: module, logger: logger.WithPrefix("chat.darts")}
}

// Handle implements Dispatcher.
func (d *DartsDispatcher) Handle(msg Message) {
	if !d.module.RoundActive() {
		return
	}
	if msg.Channel != ChannelParty && msg.Channel != ChannelSay && msg.Channel != ChannelYell {
		return
	}

	value, ok := extractOpenRoll(msg.Text)
	if !ok || value < 1 || value > 60 {
		return
	}

	key, _ := identity.Resolve(msg.Sender)
	if key == "" {
		return
	}

	d.logger.Debug("captured throw", "sender", msg.Sender, "value", value)
	d.module.SubmitRoll(key, value)
}

// BeerPongDispatcher feeds the cup game: party-channel 1-100 rolls only.
type BeerPongDispatcher struct {
	module game.Module
	logger *log.Logger
}

// NewBeerPongDispatcher creates a dispatcher bound to a beerpong module.
func NewBeerPongDispatcher(module game.Module, logger *log.Logger) *BeerPongDispatcher {
	return &BeerPongDispatcher{module: module, logger: logger.WithPrefix("chat.beerpong")}
}

// Handle implements Dispatcher.
func (d *BeerPongDispatcher) Handle(msg Message) {
	if msg.Channel != ChannelParty || !d.module.RoundActive() {
		return
	}

	match := beerPongRollPattern.FindStringSubmatch(msg.Text)
	if match == nil {
		return
	}
	value, err := strconv.Atoi(match[1])
	if err != nil {
		return
	}

	key, _ := identity.Resolve(msg.Sender)
	if key == "" {
		return
	}

	d.logger.Debug("captured roll", "sender", msg.Sender, "value", value)
	d.module.SubmitRoll(key, value)
}

// DeathrollDispatcher feeds the duel: party-channel rolls of any bound, since
// the ceiling shrinks as the round progresses.
type DeathrollDispatcher struct {
	module game.Module
	logger *log.Logger
}

// NewDeathrollDispatcher creates a dispatcher bound to a deathroll module.
func NewDeathrollDispatcher(module game.Module, logger *log.Logger) *DeathrollDispatcher {
	return &DeathrollDispatcher{module: module, logger: logger.WithPrefix("chat.deathroll")}
}

// Handle implements Dispatcher.
func (d *DeathrollDispatcher) Handle(msg Message) {
	if msg.Channel != ChannelParty || !d.module.RoundActive() {
		return
	}

	value, ok := extractOpenRoll(msg.Text)
	if !ok {
		return
	}

	key, _ := identity.Resolve(msg.Sender)
	if key == "" {
		return
	}

	d.logger.Debug("captured roll", "sender", msg.Sender, "value", value)
	d.module.SubmitRoll(key, value)
}

// extractOpenRoll parses the open-bound roll shape, matching both
// "Random! 589" and "Random! (1-589) 13".
func extractOpenRoll(text string) (int, bool) {
	match := openRollPattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return 0, false
	}
	value, err := strconv.Atoi(match[2])
	if err != nil {
		return 0, false
	}
	return value, true
}

// Router fans one chat message out to every registered dispatcher.
type Router struct {
	dispatchers []Dispatcher
}

// NewRouter creates a router over the given dispatchers.
func NewRouter(dispatchers ...Dispatcher) *Router {
	return &Router{dispatchers: dispatchers}
}

// Handle implements Dispatcher.
func (r *Router) Handle(msg Message) {
	if strings.TrimSpace(msg.Sender) == "" || strings.TrimSpace(msg.Text) == "" {
		return
	}
	for _, d := range r.dispatchers {
		d.Handle(msg)
	}
}
