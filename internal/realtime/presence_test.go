package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newTracker(t *testing.T) *PresenceTracker {
	t.Helper()
	tr := NewPresenceTracker(zerolog.Nop())
	t.Cleanup(tr.Close)
	return tr
}

func TestFirstConnectionSignalsOnline(t *testing.T) {
	tr := newTracker(t)

	assert.True(t, tr.Connect("u1", "c1"))
	assert.True(t, tr.IsOnline("u1"))
	assert.Equal(t, 1, tr.OnlineCount())
}

func TestSecondDeviceIsSilent(t *testing.T) {
	tr := newTracker(t)

	assert.True(t, tr.Connect("u1", "c1"))
	assert.False(t, tr.Connect("u1", "c2"))
	assert.Equal(t, 2, tr.ConnectionCount("u1"))
	assert.Equal(t, 1, tr.OnlineCount())
}

func TestOnlyLastDisconnectSignalsOffline(t *testing.T) {
	tr := newTracker(t)

	tr.Connect("u1", "c1")
	tr.Connect("u1", "c2")

	assert.False(t, tr.Disconnect("u1", "c1"))
	assert.True(t, tr.IsOnline("u1"))

	assert.True(t, tr.Disconnect("u1", "c2"))
	assert.False(t, tr.IsOnline("u1"))
	assert.Zero(t, tr.ConnectionCount("u1"))
}

func TestUnknownDisconnectIsIgnored(t *testing.T) {
	tr := newTracker(t)

	assert.False(t, tr.Disconnect("ghost", "c1"))

	tr.Connect("u1", "c1")
	assert.False(t, tr.Disconnect("u1", "never-registered"))
	assert.True(t, tr.IsOnline("u1"))
}

func TestReconnectAfterOfflineSignalsAgain(t *testing.T) {
	tr := newTracker(t)

	assert.True(t, tr.Connect("u1", "c1"))
	assert.True(t, tr.Disconnect("u1", "c1"))
	assert.True(t, tr.Connect("u1", "c2"))
}

func TestDuplicateConnectionIDCollapses(t *testing.T) {
	tr := newTracker(t)

	tr.Connect("u1", "c1")
	tr.Connect("u1", "c1")
	assert.Equal(t, 1, tr.ConnectionCount("u1"))

	// One disconnect is enough; the duplicate registered no second connection.
	assert.True(t, tr.Disconnect("u1", "c1"))
}

func TestOnlineUserIDsSnapshot(t *testing.T) {
	tr := newTracker(t)

	tr.Connect("u1", "c1")
	tr.Connect("u2", "c1")

	ids := tr.OnlineUserIDs()
	assert.ElementsMatch(t, []string{"u1", "u2"}, ids)

	// Mutating the snapshot does not touch tracker state.
	ids[0] = "mangled"
	assert.True(t, tr.IsOnline("u1"))
	assert.True(t, tr.IsOnline("u2"))
}

func TestConcurrentChurnKeepsCountsExact(t *testing.T) {
	tr := newTracker(t)

	const users = 8
	const connsPerUser = 20

	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		for c := 0; c < connsPerUser; c++ {
			wg.Add(1)
			go func(u, c int) {
				defer wg.Done()
				userID := fmt.Sprintf("user-%d", u)
				connID := fmt.Sprintf("conn-%d", c)
				tr.Connect(userID, connID)
				if c%2 == 0 {
					tr.Disconnect(userID, connID)
				}
			}(u, c)
		}
	}
	wg.Wait()

	for u := 0; u < users; u++ {
		userID := fmt.Sprintf("user-%d", u)
		assert.Equal(t, connsPerUser/2, tr.ConnectionCount(userID))
		assert.True(t, tr.IsOnline(userID))
	}
	assert.Equal(t, users, tr.OnlineCount())
}

func TestOperationsAfterCloseDoNotBlock(t *testing.T) {
	tr := NewPresenceTracker(zerolog.Nop())
	tr.Connect("u1", "c1")
	tr.Close()

	// Late callers get zero values instead of hanging on a dead goroutine.
	assert.False(t, tr.Connect("u2", "c1"))
	assert.False(t, tr.IsOnline("u1"))
	assert.Zero(t, tr.OnlineCount())
}
