package chat

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavernkeep/tavern/internal/game"
	"github.com/tavernkeep/tavern/internal/game/blackjack"
)

type recordedRoll struct {
	key   string
	value int
}

// stubModule records SubmitRoll calls and exposes a settable active flag.
type stubModule struct {
	active bool
	rolls  []recordedRoll
}

func (s *stubModule) Name() string         { return "Stub" }
func (s *stubModule) SyncRoster([]string)  {}
func (s *stubModule) StartRound()          {}
func (s *stubModule) EndRound()            {}
func (s *stubModule) Stand(string)         {}
func (s *stubModule) RoundActive() bool    { return s.active }
func (s *stubModule) RoundOver() bool      { return false }
func (s *stubModule) CurrentActor() string { return "" }
func (s *stubModule) Winners() []string    { return nil }
func (s *stubModule) LastAnnounce() string { return "" }
func (s *stubModule) SubmitRoll(key string, value int) {
	s.rolls = append(s.rolls, recordedRoll{key: key, value: value})
}

func testLogger() *log.Logger { return log.New(io.Discard) }

func TestBlackjackDispatcherRollAndKeywords(t *testing.T) {
	m := blackjack.New(testLogger(), game.NopAnnouncer, game.NewEventBus())
	m.SyncRoster([]string{"Alice Aman"})
	m.StartRound()
	d := NewBlackjackDispatcher(m, testLogger())

	d.Handle(Message{Channel: ChannelParty, Sender: "Alice Aman", Text: "Random! (1-11) 5"})
	d.Handle(Message{Channel: ChannelParty, Sender: "Alice Aman", Text: "Random! (1-11) 9"})
	d.Handle(Message{Channel: ChannelParty, Sender: "AliceAman", Text: "Stand"})

	m.EndRound()
	require.Equal(t, []string{"Alice Aman"}, m.Winners())
	assert.Contains(t, m.LastAnnounce(), "14")
}

func TestBlackjackDispatcherSplit(t *testing.T) {
	m := blackjack.New(testLogger(), game.NopAnnouncer, game.NewEventBus())
	m.SyncRoster([]string{"Alice Aman"})
	m.StartRound()
	d := NewBlackjackDispatcher(m, testLogger())

	d.Handle(Message{Channel: ChannelParty, Sender: "Alice Aman", Text: "Random! (1-11) 8"})
	d.Handle(Message{Channel: ChannelParty, Sender: "Alice Aman", Text: "Random! (1-11) 8"})
	d.Handle(Message{Channel: ChannelParty, Sender: "Alice Aman", Text: "split"})

	h := m.Hands()["alice aman"]
	require.NotNil(t, h)
	assert.Len(t, h.Hands(), 2)
}

func TestBlackjackDispatcherPartyOnly(t *testing.T) {
	m := blackjack.New(testLogger(), game.NopAnnouncer, game.NewEventBus())
	m.SyncRoster([]string{"Alice Aman"})
	m.StartRound()
	d := NewBlackjackDispatcher(m, testLogger())

	d.Handle(Message{Channel: ChannelSay, Sender: "Alice Aman", Text: "Random! (1-11) 5"})
	assert.NotContains(t, m.Hands(), "alice aman")
}

func TestDartsDispatcherChannelsAndRange(t *testing.T) {
	stub := &stubModule{active: true}
	d := NewDartsDispatcher(stub, testLogger())

	d.Handle(Message{Channel: ChannelParty, Sender: "Alice Aman", Text: "Random! (1-60) 42"})
	d.Handle(Message{Channel: ChannelSay, Sender: "Alice Aman", Text: "Random! (1-60) 17"})
	d.Handle(Message{Channel: ChannelYell, Sender: "Alice Aman", Text: "Random! (1-60) 3"})
	d.Handle(Message{Channel: ChannelTell, Sender: "Alice Aman", Text: "Random! (1-60) 9"})
	d.Handle(Message{Channel: ChannelParty, Sender: "Alice Aman", Text: "Random! (1-100) 77"})

	require.Len(t, stub.rolls, 3, "tell channel and out-of-range values dropped")
	assert.Equal(t, recordedRoll{key: "alice aman", value: 42}, stub.rolls[0])
}

func TestDartsDispatcherInactiveRound(t *testing.T) {
	stub := &stubModule{active: false}
	d := NewDartsDispatcher(stub, testLogger())

	d.Handle(Message{Channel: ChannelParty, Sender: "Alice Aman", Text: "Random! (1-60) 42"})
	assert.Empty(t, stub.rolls)
}

func TestBeerPongDispatcher(t *testing.T) {
	stub := &stubModule{active: true}
	d := NewBeerPongDispatcher(stub, testLogger())

	d.Handle(Message{Channel: ChannelParty, Sender: "Alice Aman", Text: "Random! (1-100) 78"})
	d.Handle(Message{Channel: ChannelParty, Sender: "Alice Aman", Text: "Random! (1-11) 7"})
	d.Handle(Message{Channel: ChannelSay, Sender: "Alice Aman", Text: "Random! (1-100) 50"})

	require.Len(t, stub.rolls, 1)
	assert.Equal(t, recordedRoll{key: "alice aman", value: 78}, stub.rolls[0])
}

func TestDeathrollDispatcherOpenBound(t *testing.T) {
	stub := &stubModule{active: true}
	d := NewDeathrollDispatcher(stub, testLogger())

	d.Handle(Message{Channel: ChannelParty, Sender: "Alice Aman", Text: "Random! 589"})
	d.Handle(Message{Channel: ChannelParty, Sender: "Bob Brown", Text: "Random! (1-589) 13"})
	d.Handle(Message{Channel: ChannelSay, Sender: "Bob Brown", Text: "Random! 100"})

	require.Len(t, stub.rolls, 2)
	assert.Equal(t, recordedRoll{key: "alice aman", value: 589}, stub.rolls[0])
	assert.Equal(t, recordedRoll{key: "bob brown", value: 13}, stub.rolls[1])
}

func TestRouterFansOut(t *testing.T) {
	a := &stubModule{active: true}
	b := &stubModule{active: true}
	router := NewRouter(
		NewDartsDispatcher(a, testLogger()),
		NewDeathrollDispatcher(b, testLogger()),
	)

	router.Handle(Message{Channel: ChannelParty, Sender: "Alice Aman", Text: "Random! (1-60) 42"})
	assert.Len(t, a.rolls, 1)
	assert.Len(t, b.rolls, 1, "42 is within the open-bound pattern too")

	router.Handle(Message{Channel: ChannelParty, Sender: "  ", Text: "Random! (1-60) 42"})
	assert.Len(t, a.rolls, 1, "blank sender dropped at the router")
}
