package darts

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavernkeep/tavern/internal/game"
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
	m := New(log.New(io.Discard), announcer, game.NewEventBus(), 0)
	return m, announcer
}

func throwTurn(m *Module, key string, throws ...int) {
	for _, v := range throws {
		m.SubmitRoll(key, v)
	}
}

func TestTurnAppliesAtomically(t *testing.T) {
	m, _ := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman", "Bob Brown"})
	m.StartRound()

	throwTurn(m, "alice aman", 60, 60, 60)
	assert.Equal(t, 321, m.Score("alice aman"))
	assert.Equal(t, []int{180}, m.RoundTotals("alice aman"))
	assert.Equal(t, StartingScore, m.Score("bob brown"))
}

func TestPartialTurnNotApplied(t *testing.T) {
	m, _ := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman"})
	m.StartRound()

	m.SubmitRoll("alice aman", 60)
	m.SubmitRoll("alice aman", 60)
	assert.Equal(t, StartingScore, m.Score("alice aman"), "score unchanged until third throw")
}

func TestBustRejectsWholeTurn(t *testing.T) {
	m, _ := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman"})
	m.StartRound()

	throwTurn(m, "alice aman", 60, 60, 60) // 321
	throwTurn(m, "alice aman", 60, 60, 60) // 141
	throwTurn(m, "alice aman", 60, 60, 30) // would go to -9
	assert.Equal(t, 141, m.Score("alice aman"))
	assert.Equal(t, []int{180, 180}, m.RoundTotals("alice aman"))
}

func TestExactZeroWins(t *testing.T) {
	m, announcer := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman"})
	m.StartRound()

	throwTurn(m, "alice aman", 60, 60, 60) // 321
	throwTurn(m, "alice aman", 60, 60, 60) // 141
	throwTurn(m, "alice aman", 60, 60, 21) // exactly 0

	assert.Equal(t, 0, m.Score("alice aman"))
	assert.True(t, m.RoundOver())
	assert.False(t, m.RoundActive())
	assert.Equal(t, []string{"Alice Aman"}, m.Winners())
	require.Len(t, announcer.messages, 1)
	assert.Equal(t, "Alice Aman wins!", announcer.messages[0])
}

func TestInterleavedThrowAbandonsBuffer(t *testing.T) {
	m, _ := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman", "Bob Brown"})
	m.StartRound()

	m.SubmitRoll("alice aman", 50)
	m.SubmitRoll("alice aman", 50)
	m.SubmitRoll("bob brown", 20) // alice's partial turn is dropped
	m.SubmitRoll("bob brown", 20)
	m.SubmitRoll("bob brown", 20)

	assert.Equal(t, StartingScore, m.Score("alice aman"))
	assert.Equal(t, StartingScore-60, m.Score("bob brown"))
}

func TestThrowValidation(t *testing.T) {
	m, _ := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman"})
	m.StartRound()

	m.SubmitRoll("alice aman", 0)
	m.SubmitRoll("alice aman", 61)
	m.SubmitRoll("stranger stan", 20)
	assert.Empty(t, m.CurrentActor())

	m.EndRound()
	m.SubmitRoll("alice aman", 20)
	assert.Equal(t, StartingScore, m.Score("alice aman"))
}

func TestRosterSeedsAndRemoves(t *testing.T) {
	m, _ := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman", "Bob Brown"})
	assert.Equal(t, StartingScore, m.Score("alice aman"))

	// Mid-round: newcomers merge, departures are retained.
	m.StartRound()
	m.SyncRoster([]string{"Alice Aman", "Cara Cord"})
	assert.Equal(t, StartingScore, m.Score("cara cord"))
	assert.Equal(t, StartingScore, m.Score("bob brown"))
	m.EndRound()

	// Idle: departures are dropped.
	m.SyncRoster([]string{"Alice Aman"})
	_, ok := m.Scores()["bob brown"]
	assert.False(t, ok)
}

func TestScoresPersistAcrossRounds(t *testing.T) {
	m, _ := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman"})
	m.StartRound()
	throwTurn(m, "alice aman", 20, 20, 20)
	m.EndRound()

	m.StartRound()
	assert.Equal(t, 441, m.Score("alice aman"), "countdown continues across rounds")
}

func TestTeamModeScoring(t *testing.T) {
	m, announcer := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman", "Bob Brown"})
	m.SetTeamMode(true)
	m.AssignToTeam("Alice Aman", TeamA)
	m.AssignToTeam("Bob Brown", TeamB)
	m.RenameTeam(TeamA, "Sharks")
	m.StartRound()

	throwTurn(m, "alice aman", 60, 60, 60)
	assert.Equal(t, 321, m.TeamScore(TeamA))
	assert.Equal(t, StartingScore, m.TeamScore(TeamB))

	// Bust reverts the team pool to its round-start score.
	throwTurn(m, "alice aman", 60, 60, 60) // 141
	throwTurn(m, "alice aman", 60, 60, 60) // would go negative
	assert.Equal(t, StartingScore, m.TeamScore(TeamA))

	throwTurn(m, "alice aman", 60, 60, 60) // 321
	throwTurn(m, "alice aman", 60, 60, 60) // 141
	throwTurn(m, "alice aman", 60, 60, 21) // 0
	assert.Equal(t, []string{"Sharks"}, m.Winners())
	require.NotEmpty(t, announcer.messages)
	assert.Equal(t, "Sharks wins!", announcer.messages[0])
}

func TestTeamReassignment(t *testing.T) {
	m, _ := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman"})
	m.SetTeamMode(true)
	m.AssignToTeam("Alice Aman", TeamA)
	m.AssignToTeam("Alice Aman", TeamB)
	m.StartRound()

	throwTurn(m, "alice aman", 10, 10, 10)
	assert.Equal(t, StartingScore, m.TeamScore(TeamA))
	assert.Equal(t, StartingScore-30, m.TeamScore(TeamB))
}

func TestResetGame(t *testing.T) {
	m, _ := newTestModule(t)
	m.SyncRoster([]string{"Alice Aman"})
	m.StartRound()
	throwTurn(m, "alice aman", 20, 20, 20)
	m.EndRound()

	m.ResetGame()
	assert.Equal(t, StartingScore, m.Score("alice aman"))
	assert.False(t, m.RoundActive())
}
