package store

import (
	"context"
	"database/sql"
	"errors"

	"lendbook/internal/models"
)

var ErrNotFound = errors.New("record not found")

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Store methods take it from the caller so they join whatever unit of work
// the caller is running.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxRunner is the explicit atomic unit of work: every write inside fn lands
// together or not at all.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(q Querier) error) error
}

type LedgerStore interface {
	Find(ctx context.Context, q Querier, id string) (*models.Transaction, error)
	// FindForUpdate locks the row for the duration of the surrounding
	// transaction, serializing racing mutations on the same id.
	FindForUpdate(ctx context.Context, q Querier, id string) (*models.Transaction, error)
	// FindByParticipant returns transactions where the user is sender or
	// receiver, newest first. An empty status matches all statuses.
	FindByParticipant(ctx context.Context, q Querier, userID string, status models.TransactionStatus) ([]*models.Transaction, error)
	FindPendingForReceiver(ctx context.Context, q Querier, receiverID string) ([]*models.Transaction, error)
	FindBetween(ctx context.Context, q Querier, userA, userB string) ([]*models.Transaction, error)
	Create(ctx context.Context, q Querier, t *models.Transaction) error
	Save(ctx context.Context, q Querier, t *models.Transaction) error
	Delete(ctx context.Context, q Querier, id string) error
}

type UserStore interface {
	Find(ctx context.Context, q Querier, id string) (*models.User, error)
	FindByEmail(ctx context.Context, q Querier, email string) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, q Querier, email, username string) (bool, error)
	Create(ctx context.Context, q Querier, u *models.User) error
	// Save persists one or more users in a single call. Writes happen in
	// ascending id order so concurrent units of work touching the same pair
	// of users never lock rows in opposite order.
	Save(ctx context.Context, q Querier, users ...*models.User) error
}

type FriendStore interface {
	Add(ctx context.Context, q Querier, userID, friendID string) error
	Remove(ctx context.Context, q Querier, userID, friendID string) error
	ListIDs(ctx context.Context, q Querier, userID string) ([]string, error)
	AreFriends(ctx context.Context, q Querier, userID, friendID string) (bool, error)
}
