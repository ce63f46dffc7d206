package api

import (
	"sync"

	"pocketchat/pkg/logger"
)

// NetState is the client's view of connectivity. It is set explicitly
// through the control surface rather than sniffed from the OS; the send
// pipeline consults it as its delivery probe. The offline-to-online edge
// fires the drain hook.
type NetState struct {
	mu       sync.Mutex
	online   bool
	onOnline func()
}

// NewNetState starts in the given state. onOnline runs (on the caller's
// goroutine) each time the state flips from offline to online; it may be
// nil.
func NewNetState(online bool, onOnline func()) *NetState {
	return &NetState{online: online, onOnline: onOnline}
}

// Online implements send.Probe.
func (n *NetState) Online() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.online
}

// Set records the new state. Setting online when already online is a
// no-op and does not re-fire the hook.
func (n *NetState) Set(online bool) {
	n.mu.Lock()
	was := n.online
	n.online = online
	hook := n.onOnline
	n.mu.Unlock()

	if online && !was {
		logger.Info("network_restored")
		if hook != nil {
			hook()
		}
	} else if !online && was {
		logger.Info("network_lost")
	}
}
