package exporter

import (
	"sync"

	"github.com/rs/zerolog/log"
)

type ServerState byte

const (
	Unknown ServerState = iota
	Online
	Offline
)

func (state ServerState) String() string {
	var text string
	switch state {
	case Unknown:
		text = "Unknown"
	case Online:
		text = "Online"
	case Offline:
		text = "Offline"
	}
	return text
}

// stateTracker remembers the last known state of every target and logs when
// it changes.
type stateTracker struct {
	mu     sync.Mutex
	states map[string]ServerState
}

func newStateTracker() *stateTracker {
	return &stateTracker{
		states: make(map[string]ServerState),
	}
}

func (tracker *stateTracker) set(target string, state ServerState) {
	tracker.mu.Lock()
	old := tracker.states[target]
	tracker.states[target] = state
	tracker.mu.Unlock()

	if old == state {
		return
	}
	if state == Offline {
		log.Warn().Str("target", target).Stringer("previous", old).Msg("target went offline")
		return
	}
	log.Info().Str("target", target).Stringer("previous", old).Msg("target is online")
}

func (tracker *stateTracker) get(target string) ServerState {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return tracker.states[target]
}

func (tracker *stateTracker) forget(target string) {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	delete(tracker.states, target)
}
