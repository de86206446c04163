package server

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// RosterPoller periodically re-applies the roster so that membership changes
// deferred during an active round land once the round ends.
type RosterPoller struct {
	service  *GameService
	interval time.Duration
	clock    quartz.Clock
	logger   *log.Logger
}

// NewRosterPoller creates a poller driving the given service.
func NewRosterPoller(service *GameService, interval time.Duration, clock quartz.Clock, logger *log.Logger) *RosterPoller {
	return &RosterPoller{
		service:  service,
		interval: interval,
		clock:    clock,
		logger:   logger.WithPrefix("poller"),
	}
}

// Run ticks until the context is cancelled.
func (p *RosterPoller) Run(ctx context.Context) {
	ticker := p.clock.TickerFunc(ctx, p.interval, func() error {
		p.logger.Debug("resyncing roster")
		p.service.Resync()
		return nil
	})
	_ = ticker.Wait()
}
