// Package game defines the contract shared by the four party game modules and
// the plumbing that is common to all of them: the event bus, the announce side
// effect and the roster synchronizer.
//
// A Module owns exactly one live round at a time. All mutation happens
// synchronously inside the handler for one incoming chat or roster event; the
// host is responsible for funneling events through a single goroutine.
package game

// Variant tags the four game rule sets.
type Variant string

const (
	VariantBlackjack Variant = "blackjack"
	VariantDarts     Variant = "darts"
	VariantBeerPong  Variant = "beerpong"
	VariantDeathroll Variant = "deathroll"
)

// Module is the common round-lifecycle contract implemented by every game
// variant. Operations are total: invalid input or an invalid state for the
// operation results in a no-op, never an error or a panic.
type Module interface {
	// Name returns the human-readable game name.
	Name() string

	// SyncRoster reconciles the participant set against a roster snapshot of
	// raw display names. Blanks and duplicates are tolerated. An active
	// round's progress is never reset for retained participants.
	SyncRoster(rawNames []string)

	// StartRound begins a new round, resetting per-round state.
	StartRound()

	// EndRound finalizes the round, computes winners and emits the announce
	// message. Safe to call on an already-resolved round.
	EndRound()

	// SubmitRoll records a roll for the participant with the given identity
	// key. Out-of-range values, unknown participants and rolls outside an
	// active round are silently discarded.
	SubmitRoll(key string, value int)

	// Stand handles the "stand" chat keyword. Only meaningful for the card
	// game; other variants ignore it.
	Stand(key string)

	// RoundActive reports whether a round is currently accepting rolls.
	RoundActive() bool

	// RoundOver reports whether the last round has resolved.
	RoundOver() bool

	// CurrentActor returns the identity key of the participant whose turn it
	// is, or "" for free-for-all variants.
	CurrentActor() string

	// Winners returns the display names of the last round's winners.
	Winners() []string

	// LastAnnounce returns the most recent announce message, or "".
	LastAnnounce() string
}

// Announcer receives the one formatted result string per completed round.
// The reference host echoes it to connected chat clients.
type Announcer interface {
	Announce(message string)
}

// AnnouncerFunc adapts a function to the Announcer interface.
type AnnouncerFunc func(string)

// Announce implements Announcer.
func (f AnnouncerFunc) Announce(message string) { f(message) }

// NopAnnouncer discards all announcements.
var NopAnnouncer = AnnouncerFunc(func(string) {})
