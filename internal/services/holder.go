package services

import "sync/atomic"

// GatekeeperHolder publishes the current Gatekeeper. Requests load it once
// and keep using that instance; a preference change stores a new one.
type GatekeeperHolder struct {
	p atomic.Pointer[Gatekeeper]
}

// NewGatekeeperHolder returns a holder publishing g.
func NewGatekeeperHolder(g *Gatekeeper) *GatekeeperHolder {
	h := &GatekeeperHolder{}
	h.p.Store(g)
	return h
}

// Load returns the current Gatekeeper.
func (h *GatekeeperHolder) Load() *Gatekeeper { return h.p.Load() }

// Store replaces the current Gatekeeper.
func (h *GatekeeperHolder) Store(g *Gatekeeper) { h.p.Store(g) }
