package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"lendbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRunnerCommitsOnSuccess(t *testing.T) {
	ledger := NewMemoryLedgerStore()
	users := NewMemoryUserStore()
	runner := NewMemoryRunner(ledger, users)
	ctx := context.Background()

	tx := models.NewTransaction("a", "b", 10, models.TransactionTypeLent, "")
	err := runner.WithTransaction(ctx, func(q Querier) error {
		return ledger.Create(ctx, q, tx)
	})
	require.NoError(t, err)

	stored, err := ledger.Find(ctx, nil, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, stored.ID)
}

func TestMemoryRunnerRollsBackOnError(t *testing.T) {
	ledger := NewMemoryLedgerStore()
	users := NewMemoryUserStore()
	runner := NewMemoryRunner(ledger, users)
	ctx := context.Background()

	user := models.NewUser("alice", "alice@example.com", "hash")
	require.NoError(t, users.Create(ctx, nil, user))

	tx := models.NewTransaction("a", "b", 10, models.TransactionTypeLent, "")
	boom := errors.New("boom")

	err := runner.WithTransaction(ctx, func(q Querier) error {
		if err := ledger.Create(ctx, q, tx); err != nil {
			return err
		}
		user.TotalLent = 10
		user.RecalculateBalance()
		if err := users.Save(ctx, q, user); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// Both stores are back to their pre-fn state.
	_, err = ledger.Find(ctx, nil, tx.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	restored, err := users.Find(ctx, nil, user.ID)
	require.NoError(t, err)
	assert.Zero(t, restored.TotalLent)
	assert.Zero(t, restored.NetBalance)
}

func TestLedgerStoreReturnsClones(t *testing.T) {
	ledger := NewMemoryLedgerStore()
	ctx := context.Background()

	tx := models.NewTransaction("a", "b", 10, models.TransactionTypeLent, "")
	require.NoError(t, ledger.Create(ctx, nil, tx))

	got, err := ledger.Find(ctx, nil, tx.ID)
	require.NoError(t, err)
	got.Status = models.TransactionStatusCompleted

	again, err := ledger.Find(ctx, nil, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, again.Status)
}

func TestLedgerStoreSaveUnknownID(t *testing.T) {
	ledger := NewMemoryLedgerStore()
	ctx := context.Background()

	tx := models.NewTransaction("a", "b", 10, models.TransactionTypeLent, "")
	assert.ErrorIs(t, ledger.Save(ctx, nil, tx), ErrNotFound)
	assert.ErrorIs(t, ledger.Delete(ctx, nil, tx.ID), ErrNotFound)
}

func TestFindByParticipantFiltersAndSorts(t *testing.T) {
	ledger := NewMemoryLedgerStore()
	ctx := context.Background()

	older := models.NewTransaction("a", "b", 10, models.TransactionTypeLent, "")
	older.Timestamp = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := models.NewTransaction("b", "a", 20, models.TransactionTypeLent, "")
	newer.Timestamp = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	unrelated := models.NewTransaction("c", "d", 30, models.TransactionTypeLent, "")

	for _, tx := range []*models.Transaction{older, newer, unrelated} {
		require.NoError(t, ledger.Create(ctx, nil, tx))
	}

	got, err := ledger.FindByParticipant(ctx, nil, "a", "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)

	got, err = ledger.FindByParticipant(ctx, nil, "a", models.TransactionStatusAccepted)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUserStoreSaveRequiresAllRows(t *testing.T) {
	users := NewMemoryUserStore()
	ctx := context.Background()

	alice := models.NewUser("alice", "alice@example.com", "hash")
	require.NoError(t, users.Create(ctx, nil, alice))

	ghost := models.NewUser("ghost", "ghost@example.com", "hash")
	alice.TotalLent = 99

	// One unknown row fails the whole batch before anything is written.
	err := users.Save(ctx, nil, alice, ghost)
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := users.Find(ctx, nil, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.TotalLent)
}

func TestFriendStoreSymmetry(t *testing.T) {
	friends := NewMemoryFriendStore()
	ctx := context.Background()

	require.NoError(t, friends.Add(ctx, nil, "a", "b"))

	ok, err := friends.AreFriends(ctx, nil, "a", "b")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = friends.AreFriends(ctx, nil, "b", "a")
	require.NoError(t, err)
	assert.True(t, ok)

	// Adding twice is a no-op.
	require.NoError(t, friends.Add(ctx, nil, "b", "a"))
	ids, err := friends.ListIDs(ctx, nil, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)

	require.NoError(t, friends.Remove(ctx, nil, "a", "b"))
	ok, err = friends.AreFriends(ctx, nil, "b", "a")
	require.NoError(t, err)
	assert.False(t, ok)
}
