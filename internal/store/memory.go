package store

import (
	"context"
	"sort"
	"sync"

	"lendbook/internal/models"
)

// In-memory store implementations. They back the service and handler tests
// and honor the same contracts as the MySQL stores, including rollback of a
// failed unit of work (MemoryRunner snapshots state and restores it when fn
// returns an error). The Querier argument is ignored and may be nil.

type MemoryLedgerStore struct {
	mu           sync.RWMutex
	transactions map[string]*models.Transaction
}

func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{transactions: make(map[string]*models.Transaction)}
}

func (s *MemoryLedgerStore) Find(ctx context.Context, _ Querier, id string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (s *MemoryLedgerStore) FindForUpdate(ctx context.Context, q Querier, id string) (*models.Transaction, error) {
	// MemoryRunner serializes units of work, so a plain read is already
	// race-free here.
	return s.Find(ctx, q, id)
}

func (s *MemoryLedgerStore) FindByParticipant(ctx context.Context, _ Querier, userID string, status models.TransactionStatus) ([]*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Transaction
	for _, t := range s.transactions {
		if !t.IsParticipant(userID) {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		clone := *t
		out = append(out, &clone)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryLedgerStore) FindPendingForReceiver(ctx context.Context, _ Querier, receiverID string) ([]*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Transaction
	for _, t := range s.transactions {
		if t.ReceiverID == receiverID && t.Status == models.TransactionStatusPending {
			clone := *t
			out = append(out, &clone)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryLedgerStore) FindBetween(ctx context.Context, _ Querier, userA, userB string) ([]*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Transaction
	for _, t := range s.transactions {
		if (t.SenderID == userA && t.ReceiverID == userB) || (t.SenderID == userB && t.ReceiverID == userA) {
			clone := *t
			out = append(out, &clone)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(ts []*models.Transaction) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Timestamp.Equal(ts[j].Timestamp) {
			return ts[i].ID < ts[j].ID
		}
		return ts[i].Timestamp.After(ts[j].Timestamp)
	})
}

func (s *MemoryLedgerStore) Create(ctx context.Context, _ Querier, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *t
	s.transactions[t.ID] = &clone
	return nil
}

func (s *MemoryLedgerStore) Save(ctx context.Context, _ Querier, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[t.ID]; !ok {
		return ErrNotFound
	}
	clone := *t
	s.transactions[t.ID] = &clone
	return nil
}

func (s *MemoryLedgerStore) Delete(ctx context.Context, _ Querier, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *MemoryLedgerStore) snapshot() map[string]*models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[string]*models.Transaction, len(s.transactions))
	for id, t := range s.transactions {
		clone := *t
		snap[id] = &clone
	}
	return snap
}

func (s *MemoryLedgerStore) restore(snap map[string]*models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = snap
}

type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*models.User)}
}

func (s *MemoryUserStore) Find(ctx context.Context, _ Querier, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, _ Querier, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) ExistsByEmailOrUsername(ctx context.Context, _ Querier, email, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryUserStore) Create(ctx context.Context, _ Querier, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *u
	s.users[u.ID] = &clone
	return nil
}

func (s *MemoryUserStore) Save(ctx context.Context, _ Querier, users ...*models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		if _, ok := s.users[u.ID]; !ok {
			return ErrNotFound
		}
	}
	for _, u := range users {
		clone := *u
		s.users[u.ID] = &clone
	}
	return nil
}

func (s *MemoryUserStore) snapshot() map[string]*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[string]*models.User, len(s.users))
	for id, u := range s.users {
		clone := *u
		snap[id] = &clone
	}
	return snap
}

func (s *MemoryUserStore) restore(snap map[string]*models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap
}

type MemoryFriendStore struct {
	mu      sync.RWMutex
	friends map[string]map[string]bool
}

func NewMemoryFriendStore() *MemoryFriendStore {
	return &MemoryFriendStore{friends: make(map[string]map[string]bool)}
}

func (s *MemoryFriendStore) Add(ctx context.Context, _ Querier, userID, friendID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.link(userID, friendID)
	s.link(friendID, userID)
	return nil
}

func (s *MemoryFriendStore) link(a, b string) {
	if s.friends[a] == nil {
		s.friends[a] = make(map[string]bool)
	}
	s.friends[a][b] = true
}

func (s *MemoryFriendStore) Remove(ctx context.Context, _ Querier, userID, friendID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.friends[userID], friendID)
	delete(s.friends[friendID], userID)
	return nil
}

func (s *MemoryFriendStore) ListIDs(ctx context.Context, _ Querier, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id := range s.friends[userID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryFriendStore) AreFriends(ctx context.Context, _ Querier, userID, friendID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.friends[userID][friendID], nil
}

// MemoryRunner serializes units of work and restores a pre-fn snapshot when
// fn fails, mirroring a database rollback.
type MemoryRunner struct {
	mu     sync.Mutex
	ledger *MemoryLedgerStore
	users  *MemoryUserStore
}

func NewMemoryRunner(ledger *MemoryLedgerStore, users *MemoryUserStore) *MemoryRunner {
	return &MemoryRunner{ledger: ledger, users: users}
}

func (r *MemoryRunner) WithTransaction(ctx context.Context, fn func(q Querier) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ledgerSnap := r.ledger.snapshot()
	userSnap := r.users.snapshot()

	if err := fn(nil); err != nil {
		r.ledger.restore(ledgerSnap)
		r.users.restore(userSnap)
		return err
	}
	return nil
}
