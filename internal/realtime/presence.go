package realtime

import (
	"github.com/rs/zerolog"
)

// PresenceTracker keeps the in-memory map of connected users. A user may
// hold several simultaneous connections (multi-device); only the aggregate
// 0<->1 edges count as going online or offline, so reconnect storms on other
// devices never produce a signal.
//
// All state lives on a single owning goroutine and every mutation or query
// is a message to it. There are no shared locks to get wrong; lost updates
// would corrupt the last-device-disconnected edge detection.
type PresenceTracker struct {
	ops  chan func()
	quit chan struct{}

	// Owned by the run goroutine. Never touched from outside it.
	connections map[string]map[string]struct{}
	online      map[string]struct{}

	logger zerolog.Logger
}

func NewPresenceTracker(logger zerolog.Logger) *PresenceTracker {
	t := &PresenceTracker{
		ops:         make(chan func()),
		quit:        make(chan struct{}),
		connections: make(map[string]map[string]struct{}),
		online:      make(map[string]struct{}),
		logger:      logger,
	}
	go t.run()
	return t
}

func (t *PresenceTracker) run() {
	for {
		select {
		case fn := <-t.ops:
			fn()
		case <-t.quit:
			return
		}
	}
}

// do runs fn on the owning goroutine and waits for it. After Close it
// becomes a no-op so late callers do not block forever.
func (t *PresenceTracker) do(fn func()) {
	done := make(chan struct{})
	select {
	case t.ops <- func() { fn(); close(done) }:
		<-done
	case <-t.quit:
	}
}

// Close stops the owning goroutine. Only meant for shutdown and tests.
func (t *PresenceTracker) Close() {
	close(t.quit)
}

// Connect registers a connection for the user and reports whether this was
// the user's first open connection, i.e. the user just became online.
func (t *PresenceTracker) Connect(userID, connectionID string) bool {
	var becameOnline bool
	t.do(func() {
		set, ok := t.connections[userID]
		if !ok {
			set = make(map[string]struct{})
			t.connections[userID] = set
		}
		set[connectionID] = struct{}{}

		if _, wasOnline := t.online[userID]; !wasOnline {
			t.online[userID] = struct{}{}
			becameOnline = true
		}
	})
	if becameOnline {
		t.logger.Debug().Str("user_id", userID).Msg("User came online")
	}
	return becameOnline
}

// Disconnect removes a connection and reports whether it was the user's last
// one, i.e. the user just went offline. Unknown connections are ignored.
func (t *PresenceTracker) Disconnect(userID, connectionID string) bool {
	var becameOffline bool
	t.do(func() {
		set, ok := t.connections[userID]
		if !ok {
			return
		}
		delete(set, connectionID)
		if len(set) == 0 {
			delete(t.connections, userID)
			delete(t.online, userID)
			becameOffline = true
		}
	})
	if becameOffline {
		t.logger.Debug().Str("user_id", userID).Msg("User went offline")
	}
	return becameOffline
}

func (t *PresenceTracker) IsOnline(userID string) bool {
	var online bool
	t.do(func() {
		_, online = t.online[userID]
	})
	return online
}

// OnlineUserIDs returns a snapshot copy of the online set.
func (t *PresenceTracker) OnlineUserIDs() []string {
	var ids []string
	t.do(func() {
		ids = make([]string, 0, len(t.online))
		for id := range t.online {
			ids = append(ids, id)
		}
	})
	return ids
}

func (t *PresenceTracker) ConnectionCount(userID string) int {
	var count int
	t.do(func() {
		count = len(t.connections[userID])
	})
	return count
}

func (t *PresenceTracker) OnlineCount() int {
	var count int
	t.do(func() {
		count = len(t.online)
	})
	return count
}
