package game

import "time"

// EventType identifies a game domain event.
type EventType string

const (
	EventTypeRoundStart   EventType = "round_start"
	EventTypeRoundEnd     EventType = "round_end"
	EventTypeRollAccepted EventType = "roll_accepted"
	EventTypePlayerOut    EventType = "player_out"
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	return string(et)
}

// Event is any domain event published by a game module.
type Event interface {
	EventType() EventType
	Game() Variant
	Timestamp() time.Time
}

// RoundStartEvent is published when a round begins.
type RoundStartEvent struct {
	Variant      Variant
	Participants []string // identity keys in turn order, if turn-based
	timestamp    time.Time
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }
func (e RoundStartEvent) Game() Variant        { return e.Variant }
func (e RoundStartEvent) Timestamp() time.Time { return e.timestamp }

// NewRoundStartEvent creates a round start event.
func NewRoundStartEvent(variant Variant, participants []string) RoundStartEvent {
	keys := make([]string, len(participants))
	copy(keys, participants)
	return RoundStartEvent{Variant: variant, Participants: keys, timestamp: time.Now()}
}

// RoundEndEvent is published when a round resolves, whether by EndRound or by
// the variant's own resolution rule.
type RoundEndEvent struct {
	Variant   Variant
	Winners   []string // display names
	Summary   string   // the announce message
	timestamp time.Time
}

func (e RoundEndEvent) EventType() EventType { return EventTypeRoundEnd }
func (e RoundEndEvent) Game() Variant        { return e.Variant }
func (e RoundEndEvent) Timestamp() time.Time { return e.timestamp }

// NewRoundEndEvent creates a round end event.
func NewRoundEndEvent(variant Variant, winners []string, summary string) RoundEndEvent {
	names := make([]string, len(winners))
	copy(names, winners)
	return RoundEndEvent{Variant: variant, Winners: names, Summary: summary, timestamp: time.Now()}
}

// RollAcceptedEvent is published for every roll that mutates game state.
type RollAcceptedEvent struct {
	Variant   Variant
	Key       string
	Display   string
	Value     int
	timestamp time.Time
}

func (e RollAcceptedEvent) EventType() EventType { return EventTypeRollAccepted }
func (e RollAcceptedEvent) Game() Variant        { return e.Variant }
func (e RollAcceptedEvent) Timestamp() time.Time { return e.timestamp }

// NewRollAcceptedEvent creates a roll accepted event.
func NewRollAcceptedEvent(variant Variant, key, display string, value int) RollAcceptedEvent {
	return RollAcceptedEvent{Variant: variant, Key: key, Display: display, Value: value, timestamp: time.Now()}
}

// PlayerOutEvent is published when a participant is eliminated.
type PlayerOutEvent struct {
	Variant   Variant
	Key       string
	Display   string
	timestamp time.Time
}

func (e PlayerOutEvent) EventType() EventType { return EventTypePlayerOut }
func (e PlayerOutEvent) Game() Variant        { return e.Variant }
func (e PlayerOutEvent) Timestamp() time.Time { return e.timestamp }

// NewPlayerOutEvent creates a player out event.
func NewPlayerOutEvent(variant Variant, key, display string) PlayerOutEvent {
	return PlayerOutEvent{Variant: variant, Key: key, Display: display, timestamp: time.Now()}
}

// EventSubscriber receives published events.
type EventSubscriber interface {
	OnEvent(event Event)
}

// EventBus manages event publishing and subscription.
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event Event)
}

// SimpleEventBus is a synchronous in-memory event bus. Delivery happens
// inline on the publisher's goroutine, preserving event order.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus.
func NewEventBus() EventBus {
	return &SimpleEventBus{subscribers: make([]EventSubscriber, 0)}
}

// Subscribe adds a subscriber to receive events.
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers.
func (bus *SimpleEventBus) Publish(event Event) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
