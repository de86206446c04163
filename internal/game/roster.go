package game

import (
	"strings"

	"github.com/charmbracelet/log"
)

// RosterProvider supplies the current set of raw player names for the party.
// Implemented by the host; polled by the synchronizer.
type RosterProvider interface {
	PartyMembers() []string
}

// Synchronizer fans roster snapshots out to every registered module. Each
// module applies its own retention policy for in-progress rounds.
type Synchronizer struct {
	modules []Module
	logger  *log.Logger
	last    []string
}

// NewSynchronizer creates a roster synchronizer over the given modules.
func NewSynchronizer(logger *log.Logger, modules ...Module) *Synchronizer {
	return &Synchronizer{
		modules: modules,
		logger:  logger.WithPrefix("roster"),
	}
}

// Sync cleans the snapshot (trims, drops blanks and duplicates) and applies it
// to all modules. The cleaned snapshot is retained for Resync.
func (s *Synchronizer) Sync(rawNames []string) {
	cleaned := make([]string, 0, len(rawNames))
	seen := make(map[string]bool, len(rawNames))
	for _, name := range rawNames {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		cleaned = append(cleaned, name)
	}

	s.logger.Debug("syncing roster", "members", len(cleaned))
	s.last = cleaned
	for _, m := range s.modules {
		m.SyncRoster(cleaned)
	}
}

// Resync re-applies the last snapshot. Used by the host's periodic poll to
// pick up modules registered after the last roster change.
func (s *Synchronizer) Resync() {
	if s.last == nil {
		return
	}
	for _, m := range s.modules {
		m.SyncRoster(s.last)
	}
}

// Members returns the last cleaned snapshot.
func (s *Synchronizer) Members() []string {
	out := make([]string, len(s.last))
	copy(out, s.last)
	return out
}
