package beerpong

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavernkeep/tavern/internal/game"
	"github.com/tavernkeep/tavern/internal/randutil"
)

type captureAnnouncer struct {
	messages []string
}

func (c *captureAnnouncer) Announce(message string) {
	c.messages = append(c.messages, message)
}

func newTestModule(t *testing.T) (*Module, *captureAnnouncer) {
	t.Helper()
	announcer := &captureAnnouncer{}
	m := New(log.New(io.Discard), announcer, game.NewEventBus(), randutil.New(1))
	return m, announcer
}

func TestTargetTable(t *testing.T) {
	assert.Equal(t, 65, Target(0))
	assert.Equal(t, 70, Target(1))
	assert.Equal(t, 90, Target(5))
	assert.Equal(t, 90, Target(12), "clamped at last entry")
}

func TestHitAndMissOneVsOne(t *testing.T) {
	m, _ := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman", "Bob Brown"})
	m.StartRound()

	// Sober shooter needs 65. 70 hits: the opponent drinks.
	m.SubmitRoll("alice aman", 70)
	bob := m.PlayerStatus("bob brown")
	assert.Equal(t, SoloCups-1, bob.CupsLeft)
	assert.Equal(t, 1, bob.Drinks)

	// 40 misses: the shooter drinks.
	m.SubmitRoll("alice aman", 40)
	alice := m.PlayerStatus("alice aman")
	assert.Equal(t, SoloCups-1, alice.CupsLeft)
	assert.Equal(t, 1, alice.Drinks)
}

func TestTargetRisesWithDrinks(t *testing.T) {
	m, _ := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman", "Bob Brown"})
	m.StartRound()

	m.SubmitRoll("alice aman", 40) // miss, alice now 1 drink
	// 68 would hit a sober shooter but alice's target is now 70.
	m.SubmitRoll("alice aman", 68)
	alice := m.PlayerStatus("alice aman")
	assert.Equal(t, 2, alice.Drinks, "68 below raised target counts as a miss")
}

func TestDuplicateRollIgnored(t *testing.T) {
	m, _ := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman", "Bob Brown"})
	m.StartRound()

	m.SubmitRoll("alice aman", 70)
	m.SubmitRoll("alice aman", 70)
	bob := m.PlayerStatus("bob brown")
	assert.Equal(t, SoloCups-1, bob.CupsLeft, "state changed only once")
	assert.Equal(t, 1, bob.Drinks)
}

func TestEliminationEndsRound(t *testing.T) {
	m, announcer := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman", "Bob Brown"})
	m.StartRound()

	// Ten distinct hits empty bob's rack.
	for i := 0; i < SoloCups; i++ {
		m.SubmitRoll("alice aman", 90-i)
	}

	assert.True(t, m.IsPlayerOut("bob brown"))
	assert.True(t, m.RoundOver())
	assert.Equal(t, []string{"Alice Aman"}, m.Winners())
	require.Len(t, announcer.messages, 1)
	assert.Equal(t, "[Beer Pong] Winner(s): Alice Aman", announcer.messages[0])
}

func TestOutPlayerRollsIgnored(t *testing.T) {
	m, _ := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman", "Bob Brown", "Cara Cord"})
	m.StartRound()

	// Knock bob out with ten hits (they land on the first not-out opponent).
	for i := 0; i < SoloCups; i++ {
		m.SubmitRoll("alice aman", 90-i)
	}
	require.True(t, m.IsPlayerOut("bob brown"))
	require.True(t, m.RoundActive(), "two players remain")

	m.SubmitRoll("bob brown", 99)
	cara := m.PlayerStatus("cara cord")
	assert.Equal(t, SoloCups, cara.CupsLeft, "rolls from out players are discarded")
}

func TestTeamModeHit(t *testing.T) {
	m, _ := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman", "Bob Brown", "Cara Cord", "Dave Dunn"})
	m.SetTeamMode(true)
	m.AssignToTeam("Alice Aman", "Reds")
	m.AssignToTeam("Bob Brown", "Reds")
	m.AssignToTeam("Cara Cord", "Blues")
	m.AssignToTeam("Dave Dunn", "Blues")
	m.StartRound()

	require.Equal(t, 2*TeamCups, m.TeamStatus("Blues").CupsLeft)

	m.SubmitRoll("alice aman", 70)
	blues := m.TeamStatus("Blues")
	assert.Equal(t, 2*TeamCups-1, blues.CupsLeft)

	// Exactly one blue member drank.
	cara := m.PlayerStatus("cara cord")
	dave := m.PlayerStatus("dave dunn")
	assert.Equal(t, 1, cara.Drinks+dave.Drinks)
	assert.Equal(t, 2*TeamCups-1, cara.CupsLeft+dave.CupsLeft)
}

func TestTeamModeMissDrainsOwnPool(t *testing.T) {
	m, _ := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman", "Cara Cord"})
	m.SetTeamMode(true)
	m.AssignToTeam("Alice Aman", "Reds")
	m.AssignToTeam("Cara Cord", "Blues")
	m.StartRound()

	m.SubmitRoll("alice aman", 10)
	alice := m.PlayerStatus("alice aman")
	assert.Equal(t, TeamCups-1, alice.CupsLeft)
	assert.Equal(t, 1, alice.Drinks)
	assert.Equal(t, TeamCups-1, m.TeamStatus("Reds").CupsLeft)
}

func TestTeamEliminationWins(t *testing.T) {
	m, announcer := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman", "Cara Cord"})
	m.SetTeamMode(true)
	m.AssignToTeam("Alice Aman", "Reds")
	m.AssignToTeam("Cara Cord", "Blues")
	m.StartRound()

	for i := 0; i < TeamCups; i++ {
		m.SubmitRoll("alice aman", 90-i)
	}

	assert.True(t, m.RoundOver())
	assert.Equal(t, []string{"Reds"}, m.Winners())
	require.Len(t, announcer.messages, 1)
	assert.Equal(t, "[Beer Pong] Winner(s): Reds", announcer.messages[0])
}

func TestRosterRemovalCleansTeams(t *testing.T) {
	m, _ := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman", "Bob Brown"})
	m.SetTeamMode(true)
	m.AssignToTeam("Alice Aman", "Reds")
	m.AssignToTeam("Bob Brown", "Reds")

	m.SyncRoster([]string{"Alice Aman"})
	reds := m.TeamStatus("Reds")
	require.NotNil(t, reds)
	assert.Equal(t, []string{"alice aman"}, reds.Members)
	assert.Nil(t, m.PlayerStatus("bob brown"))
}

func TestEndRoundWithSurvivors(t *testing.T) {
	m, announcer := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman", "Bob Brown"})
	m.StartRound()
	m.SubmitRoll("alice aman", 70)
	m.EndRound()

	assert.ElementsMatch(t, []string{"Alice Aman", "Bob Brown"}, m.Winners())
	require.Len(t, announcer.messages, 1)

	// A second EndRound does not re-announce.
	m.EndRound()
	assert.Len(t, announcer.messages, 1)
}

func TestRollsOutsideRoundIgnored(t *testing.T) {
	m, _ := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman", "Bob Brown"})

	m.SubmitRoll("alice aman", 70)
	assert.Equal(t, SoloCups, m.PlayerStatus("bob brown").CupsLeft)

	m.StartRound()
	m.SubmitRoll("alice aman", 0)
	m.SubmitRoll("alice aman", 101)
	m.SubmitRoll("stranger stan", 70)
	assert.Equal(t, SoloCups, m.PlayerStatus("alice aman").CupsLeft)
	assert.Equal(t, SoloCups, m.PlayerStatus("bob brown").CupsLeft)
}
