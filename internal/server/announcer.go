package server

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/tavernkeep/tavern/internal/game"
)

var announceStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("214"))

// ConsoleAnnouncer writes announcements to a terminal writer.
type ConsoleAnnouncer struct {
	out io.Writer
}

// NewConsoleAnnouncer creates an announcer writing styled lines to out.
func NewConsoleAnnouncer(out io.Writer) *ConsoleAnnouncer {
	return &ConsoleAnnouncer{out: out}
}

// Announce implements game.Announcer.
func (a *ConsoleAnnouncer) Announce(message string) {
	fmt.Fprintln(a.out, announceStyle.Render(message))
}

// MultiAnnouncer fans one announcement out to several sinks.
type MultiAnnouncer []game.Announcer

// Announce implements game.Announcer.
func (m MultiAnnouncer) Announce(message string) {
	for _, a := range m {
		a.Announce(message)
	}
}

// broadcastAnnouncer forwards announcements to every connected client as
// announce frames tagged with the originating game.
type broadcastAnnouncer struct {
	gameName    string
	broadcaster Broadcaster
}

// Announce implements game.Announcer.
func (b *broadcastAnnouncer) Announce(message string) {
	b.broadcaster.Broadcast(NewAnnounceFrame(b.gameName, message))
}
