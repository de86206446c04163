package server

import (
	"context"
	rand "math/rand/v2"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/tavernkeep/tavern/internal/chat"
	"github.com/tavernkeep/tavern/internal/game"
	"github.com/tavernkeep/tavern/internal/game/beerpong"
	"github.com/tavernkeep/tavern/internal/game/blackjack"
	"github.com/tavernkeep/tavern/internal/game/darts"
	"github.com/tavernkeep/tavern/internal/game/deathroll"
)

// Broadcaster delivers a frame to every connected client.
type Broadcaster interface {
	Broadcast(frame *Frame)
}

// GameService owns the four game modules and processes all inbound frames on
// a single goroutine, so module state never needs locking.
type GameService struct {
	logger      *log.Logger
	broadcaster Broadcaster
	bus         game.EventBus
	sync        *game.Synchronizer

	blackjack *blackjack.Module
	darts     *darts.Module
	beerpong  *beerpong.Module
	deathroll *deathroll.Module

	router *chat.Router
	frames chan Frame

	// configuredDealer is applied once the named player shows up in a roster
	// snapshot, since a dealer must be a party member.
	configuredDealer string
}

// NewGameService wires the modules, dispatchers and announcers together.
// Announcements go to the console and to every connected client.
func NewGameService(logger *log.Logger, cfg *Config, broadcaster Broadcaster, rng *rand.Rand, console game.Announcer) *GameService {
	bus := game.NewEventBus()

	s := &GameService{
		logger:      logger.WithPrefix("games"),
		broadcaster: broadcaster,
		bus:         bus,
		frames:      make(chan Frame, 256),
	}

	bus.Subscribe(&eventLogger{logger: s.logger})

	announcerFor := func(variant game.Variant) game.Announcer {
		return MultiAnnouncer{
			console,
			&broadcastAnnouncer{gameName: string(variant), broadcaster: broadcaster},
		}
	}

	s.blackjack = blackjack.New(logger, announcerFor(game.VariantBlackjack), bus)
	s.darts = darts.New(logger, announcerFor(game.VariantDarts), bus, cfg.Games.DartsStartScore)
	s.beerpong = beerpong.New(logger, announcerFor(game.VariantBeerPong), bus, rng)
	s.deathroll = deathroll.New(logger, announcerFor(game.VariantDeathroll), bus, cfg.Games.DeathrollStartMax)

	s.configuredDealer = cfg.Games.BlackjackDealer

	s.sync = game.NewSynchronizer(logger, s.blackjack, s.darts, s.beerpong, s.deathroll)

	s.router = chat.NewRouter(
		chat.NewBlackjackDispatcher(s.blackjack, logger),
		chat.NewDartsDispatcher(s.darts, logger),
		chat.NewBeerPongDispatcher(s.beerpong, logger),
		chat.NewDeathrollDispatcher(s.deathroll, logger),
	)

	return s
}

// Run processes frames until the context is cancelled.
func (s *GameService) Run(ctx context.Context) {
	for {
		select {
		case frame := <-s.frames:
			s.handleFrame(&frame)
		case <-ctx.Done():
			return
		}
	}
}

// Submit queues a frame for processing. Frames are dropped with a warning if
// the queue is full rather than blocking the transport.
func (s *GameService) Submit(frame Frame) {
	select {
	case s.frames <- frame:
	default:
		s.logger.Warn("frame queue full, dropping frame", "type", frame.Type)
	}
}

// Resync re-applies the last roster snapshot, picking up membership changes
// that modules deferred during an active round.
func (s *GameService) Resync() {
	s.Submit(Frame{Type: FrameControl, Action: ActionRoster, Game: "all", Members: nil})
}

func (s *GameService) handleFrame(frame *Frame) {
	switch frame.Type {
	case FrameChat:
		s.router.Handle(chat.Message{
			Channel: chat.Channel(frame.Channel),
			Sender:  frame.Sender,
			Text:    frame.Text,
		})
	case FrameControl:
		s.handleControl(frame)
	default:
		s.logger.Debug("ignoring frame", "type", frame.Type)
	}
}

func (s *GameService) handleControl(frame *Frame) {
	if frame.Action == ActionRoster {
		if frame.Members == nil {
			s.sync.Resync()
			return
		}
		s.sync.Sync(frame.Members)
		if s.configuredDealer != "" && s.blackjack.Dealer() == "" {
			s.blackjack.SetDealer(s.configuredDealer)
		}
		return
	}

	module := s.moduleFor(frame.Game)
	if module == nil {
		s.logger.Warn("control frame for unknown game", "game", frame.Game)
		return
	}

	switch frame.Action {
	case ActionStart:
		s.logger.Info("starting round", "game", module.Name())
		module.StartRound()

	case ActionEnd:
		s.logger.Info("ending round", "game", module.Name())
		module.EndRound()

	case ActionReset:
		s.handleReset(frame.Game)

	case ActionDealer:
		if frame.Game != string(game.VariantBlackjack) {
			s.logger.Warn("dealer action only applies to blackjack", "game", frame.Game)
			return
		}
		s.blackjack.SetDealer(frame.Target)

	case ActionTeamMode:
		s.handleTeamMode(frame.Game, frame.Target)

	case ActionAssign:
		s.handleAssign(frame)

	default:
		s.logger.Warn("unknown control action", "action", frame.Action)
	}
}

func (s *GameService) handleReset(gameName string) {
	switch gameName {
	case string(game.VariantDarts):
		s.darts.ResetGame()
	case string(game.VariantBeerPong):
		s.beerpong.ClearTeams()
	default:
		s.logger.Warn("reset not supported", "game", gameName)
	}
}

func (s *GameService) handleTeamMode(gameName, target string) {
	enabled := strings.EqualFold(target, "on")
	switch gameName {
	case string(game.VariantDarts):
		s.darts.SetTeamMode(enabled)
	case string(game.VariantBeerPong):
		s.beerpong.SetTeamMode(enabled)
	default:
		s.logger.Warn("team mode not supported", "game", gameName)
	}
}

func (s *GameService) handleAssign(frame *Frame) {
	switch frame.Game {
	case string(game.VariantDarts):
		index, err := strconv.Atoi(frame.Target)
		if err != nil {
			s.logger.Warn("invalid darts team index", "target", frame.Target)
			return
		}
		for _, member := range frame.Members {
			s.darts.AssignToTeam(member, index)
		}
	case string(game.VariantBeerPong):
		for _, member := range frame.Members {
			s.beerpong.AssignToTeam(member, frame.Target)
		}
	default:
		s.logger.Warn("team assignment not supported", "game", frame.Game)
	}
}

func (s *GameService) moduleFor(gameName string) game.Module {
	switch gameName {
	case string(game.VariantBlackjack):
		return s.blackjack
	case string(game.VariantDarts):
		return s.darts
	case string(game.VariantBeerPong):
		return s.beerpong
	case string(game.VariantDeathroll):
		return s.deathroll
	}
	return nil
}

// Blackjack exposes the card game module for status queries.
func (s *GameService) Blackjack() *blackjack.Module { return s.blackjack }

// Darts exposes the countdown module for status queries.
func (s *GameService) Darts() *darts.Module { return s.darts }

// BeerPong exposes the cup game module for status queries.
func (s *GameService) BeerPong() *beerpong.Module { return s.beerpong }

// Deathroll exposes the duel module for status queries.
func (s *GameService) Deathroll() *deathroll.Module { return s.deathroll }

// Roster returns the last synced party snapshot.
func (s *GameService) Roster() []string { return s.sync.Members() }

// eventLogger records every published domain event.
type eventLogger struct {
	logger *log.Logger
}

// OnEvent implements game.EventSubscriber.
func (l *eventLogger) OnEvent(event game.Event) {
	switch e := event.(type) {
	case game.RollAcceptedEvent:
		l.logger.Debug("roll accepted", "game", e.Game(), "player", e.Display, "value", e.Value)
	case game.RoundStartEvent:
		l.logger.Info("round started", "game", e.Game(), "participants", len(e.Participants))
	case game.RoundEndEvent:
		l.logger.Info("round ended", "game", e.Game(), "winners", e.Winners)
	case game.PlayerOutEvent:
		l.logger.Info("player out", "game", e.Game(), "player", e.Display)
	}
}
